package ipo

import (
	"math/rand"
	"reflect"
	"testing"
	"time"

	"IPOWatch/internal/domain/models"
)

func f(v float64) *float64 { return &v }

func sampleRows() []models.CanonicalRow {
	return []models.CanonicalRow{
		{Month: "2024-02", IssueAmount: f(10), Funds: f(1.5)},
		{Month: "2024-01", IssueAmount: f(100), Funds: f(5)},
		{Month: "2024-01", IssueAmount: nil, Funds: f(120)},
		{Month: "2023-12", IssueAmount: f(7), Funds: nil},
		{Month: "2024-02", IssueAmount: nil, Funds: nil},
	}
}

func TestAggregateCountsAndSums(t *testing.T) {
	agg := Aggregate(sampleRows())

	jan := agg.ByMonth["2024-01"]
	if jan.IPOCount != 2 || jan.IssueAmountSum != 100 || jan.FundsSum != 125 {
		t.Fatalf("unexpected january %+v", jan)
	}
	feb := agg.ByMonth["2024-02"]
	if feb.IPOCount != 2 || feb.IssueAmountSum != 10 || feb.FundsSum != 1.5 {
		t.Fatalf("absent values should count but add 0: %+v", feb)
	}

	months := make([]string, 0, len(agg.Ordered))
	total := 0
	for _, a := range agg.Ordered {
		months = append(months, a.Month)
		total += a.IPOCount
	}
	if !reflect.DeepEqual(months, []string{"2023-12", "2024-01", "2024-02"}) {
		t.Fatalf("not ascending: %v", months)
	}
	if total != len(sampleRows()) {
		t.Fatalf("count sum %d != rows %d", total, len(sampleRows()))
	}
}

func TestAggregateEmpty(t *testing.T) {
	agg := Aggregate(nil)
	if len(agg.ByMonth) != 0 || len(agg.Ordered) != 0 {
		t.Fatalf("expected empty aggregation, got %+v", agg)
	}
}

func TestAggregateIdempotent(t *testing.T) {
	rows := sampleRows()
	a := Aggregate(rows)
	b := Aggregate(rows)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("aggregation not deterministic")
	}
}

func TestAggregateOrderIndependentPerMonth(t *testing.T) {
	rows := sampleRows()
	want := Aggregate(rows)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := 0; i < 20; i++ {
		shuffled := append([]models.CanonicalRow(nil), rows...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		got := Aggregate(shuffled)
		if !reflect.DeepEqual(got.Ordered, want.Ordered) {
			t.Fatalf("shuffle changed result: %+v vs %+v", got.Ordered, want.Ordered)
		}
	}
}

func TestEndToEndJanuaryExample(t *testing.T) {
	raw := []models.RawRecord{
		{ListDate: "20240105", Amount: "100", Funds: "5"},
		{ListDate: "20240110", Amount: "200", Funds: "120"},
	}
	norm := Normalize(raw, models.Window{}, time.Local)
	agg := Aggregate(norm.Rows)

	want := models.MonthlyAggregate{Month: "2024-01", IPOCount: 2, IssueAmountSum: 300, FundsSum: 125}
	if len(agg.Ordered) != 1 || agg.Ordered[0] != want {
		t.Fatalf("unexpected aggregation %+v", agg.Ordered)
	}

	now := time.Date(2024, 1, 20, 9, 0, 0, 0, time.Local)
	d := Evaluate(agg.ByMonth, now, DefaultThresholds())
	if !d.ShouldSend || d.Reason != models.ReasonFunds {
		t.Fatalf("expected funds-only trigger, got %+v", d)
	}
}
