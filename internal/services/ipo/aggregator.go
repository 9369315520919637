package ipo

import (
	"sort"

	"IPOWatch/internal/domain/models"
)

// Aggregation holds per-month aggregates both keyed and in ascending month order.
type Aggregation struct {
	ByMonth map[string]models.MonthlyAggregate
	Ordered []models.MonthlyAggregate
}

// Aggregate groups rows by month in a single pass. Absent numerics count toward
// ipo_count and add 0 to their sum. Sums follow input order.
func Aggregate(rows []models.CanonicalRow) Aggregation {
	acc := make(map[string]*models.MonthlyAggregate)
	for _, r := range rows {
		a, ok := acc[r.Month]
		if !ok {
			a = &models.MonthlyAggregate{Month: r.Month}
			acc[r.Month] = a
		}
		a.IPOCount++
		if r.IssueAmount != nil {
			a.IssueAmountSum += *r.IssueAmount
		}
		if r.Funds != nil {
			a.FundsSum += *r.Funds
		}
	}

	out := Aggregation{
		ByMonth: make(map[string]models.MonthlyAggregate, len(acc)),
		Ordered: make([]models.MonthlyAggregate, 0, len(acc)),
	}
	for month, a := range acc {
		out.ByMonth[month] = *a
		out.Ordered = append(out.Ordered, *a)
	}
	// YYYY-MM sorts lexically in calendar order.
	sort.Slice(out.Ordered, func(i, j int) bool { return out.Ordered[i].Month < out.Ordered[j].Month })
	return out
}
