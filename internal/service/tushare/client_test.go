package tushare

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"IPOWatch/internal/domain/models"
	"IPOWatch/internal/service/ratelimit"
)

func TestFetchNewSharesMapsColumns(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.APIName != "new_share" || req.Token != "tok" {
			t.Errorf("unexpected request %+v", req)
		}
		if req.Params["start_date"] != "20240101" || req.Params["end_date"] != "20240131" {
			t.Errorf("unexpected params %+v", req.Params)
		}
		_, _ = io.WriteString(w, `{"code":0,"msg":"","data":{
			"fields":["ts_code","name","list_date","amount","funds"],
			"items":[["688001.SH","华兴源创","20240105",100,5.25],["300001.SZ","x",null,"",null]]}}`)
	}))
	defer srv.Close()

	c := New("tok", WithBaseURL(srv.URL), WithTimeout(time.Second))
	recs, err := c.FetchNewShares(context.Background(), models.Window{Start: "20240101", End: "20240131"})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	first := recs[0]
	if first.TSCode != "688001.SH" || first.ListDate != "20240105" || first.Amount != "100" || first.Funds != "5.25" {
		t.Fatalf("unexpected first record %+v", first)
	}
	if recs[1].ListDate != "" || recs[1].Funds != "" || recs[1].Price != "" {
		t.Fatalf("nulls and missing columns should be empty: %+v", recs[1])
	}
}

func TestFetchNewSharesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"code":40101,"msg":"token invalid","data":null}`)
	}))
	defer srv.Close()

	_, err := New("bad", WithBaseURL(srv.URL)).FetchNewShares(context.Background(), models.Window{})
	if !errors.Is(err, ErrAPI) {
		t.Fatalf("expected ErrAPI, got %v", err)
	}
}

func TestFetchNewSharesTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := New("tok", WithBaseURL(srv.URL), WithTimeout(50*time.Millisecond)).
		FetchNewShares(context.Background(), models.Window{})
	if err == nil {
		t.Fatalf("expected timeout error")
	}
}

func TestFetchNewSharesRateLimited(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = io.WriteString(w, `{"code":0,"msg":"","data":{"fields":[],"items":[]}}`)
	}))
	defer srv.Close()

	c := New("tok", WithBaseURL(srv.URL), WithTimeout(50*time.Millisecond), WithRateLimit(ratelimit.New(1, 1)))
	if _, err := c.FetchNewShares(context.Background(), models.Window{}); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := c.FetchNewShares(context.Background(), models.Window{}); err == nil {
		t.Fatalf("second call within the minute should hit the limiter timeout")
	}
	if calls != 1 {
		t.Fatalf("expected one upstream call, got %d", calls)
	}
}
