package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"IPOWatch/internal/domain/models"
	"IPOWatch/internal/repository"
	"IPOWatch/internal/usecase"
	"IPOWatch/pkg/cache"
	xhttp "IPOWatch/pkg/http"
	xlogger "IPOWatch/pkg/logger"
)

func newTestServer(t *testing.T, snap *models.Snapshot) *xhttp.Server {
	t.Helper()
	mc := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })
	store := repository.NewCacheSnapshotStore(mc, time.Minute)
	if snap != nil {
		if err := store.Save(context.Background(), snap); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	h := NewIPOEchoHandler(xlogger.NewNop(), usecase.NewStatusReader(store))
	return xhttp.NewServer(h, xhttp.WithCORS(false))
}

func do(t *testing.T, s *xhttp.Server, target string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	var body map[string]json.RawMessage
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func sampleSnapshot() *models.Snapshot {
	aggs := make([]models.MonthlyAggregate, 0, 12)
	for _, m := range []string{"2023-11", "2023-12", "2024-01", "2024-02"} {
		aggs = append(aggs, models.MonthlyAggregate{Month: m, IPOCount: 1, FundsSum: 10})
	}
	return &models.Snapshot{
		RunAt:      time.Date(2024, 2, 20, 9, 0, 0, 0, time.UTC),
		Window:     models.Window{Start: "20190101", End: "20240220"},
		Aggregates: aggs,
		Decision:   models.NotificationDecision{Month: "2024-02", IPOCount: 1, FundsSum: 10},
	}
}

func TestMonthlyNotFoundBeforeFirstPass(t *testing.T) {
	rec, _ := do(t, newTestServer(t, nil), "/api/ipo/monthly")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body)
	}
}

func TestMonthlyFiltersAndLimits(t *testing.T) {
	s := newTestServer(t, sampleSnapshot())

	rec, body := do(t, s, "/api/ipo/monthly?from=2023-12&limit=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	var data models.MonthlyResponse
	if err := json.Unmarshal(body["data"], &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data.Total != 3 || len(data.Rows) != 2 {
		t.Fatalf("unexpected total %d rows %d", data.Total, len(data.Rows))
	}
	if data.Rows[0].Month != "2024-01" || data.Rows[1].Month != "2024-02" {
		t.Fatalf("expected the most recent months ascending, got %+v", data.Rows)
	}
}

func TestMonthlyRejectsBadQuery(t *testing.T) {
	s := newTestServer(t, sampleSnapshot())
	for _, q := range []string{"?limit=-1", "?limit=601", "?limit=abc", "?from=2024-13", "?from=2024-02&to=2024-01"} {
		rec, _ := do(t, s, "/api/ipo/monthly"+q)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", q, rec.Code)
		}
	}
}

func TestDecisionAndHealth(t *testing.T) {
	s := newTestServer(t, sampleSnapshot())

	rec, body := do(t, s, "/api/ipo/decision")
	if rec.Code != http.StatusOK {
		t.Fatalf("decision status %d", rec.Code)
	}
	var d models.DecisionResponse
	_ = json.Unmarshal(body["data"], &d)
	if d.Decision.Month != "2024-02" {
		t.Fatalf("unexpected decision %+v", d)
	}

	rec, body = do(t, s, "/healthz")
	if rec.Code != http.StatusOK || string(body["status"]) != `"ok"` || body["last_run"] == nil {
		t.Fatalf("unexpected health %d %s", rec.Code, rec.Body)
	}
}
