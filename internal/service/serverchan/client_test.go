package serverchan

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestPushSendsTitleAndDesp(t *testing.T) {
	var gotPath, gotTitle, gotDesp string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotTitle = r.URL.Query().Get("title")
		gotDesp = r.URL.Query().Get("desp")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"code":0}`))
	}))
	defer srv.Close()

	c := New(" SCT123 ", srv.URL+"/", time.Second)
	if err := c.Push(context.Background(), "2024-01 IPO提示", "- 月份: 2024-01"); err != nil {
		t.Fatalf("push: %v", err)
	}
	if gotPath != "/SCT123.send" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotTitle != "2024-01 IPO提示" || gotDesp != "- 月份: 2024-01" {
		t.Fatalf("unexpected query %q %q", gotTitle, gotDesp)
	}
}

func TestPushNon2xxFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	if err := New("k", srv.URL, time.Second).Push(context.Background(), "t", "b"); err == nil {
		t.Fatalf("expected error on 403")
	}
}

func TestPushWithoutKey(t *testing.T) {
	c := New("  ", "", time.Second)
	if c.Configured() {
		t.Fatalf("blank key should not be configured")
	}
	if err := c.Push(context.Background(), "t", "b"); !errors.Is(err, ErrNoSendKey) {
		t.Fatalf("expected ErrNoSendKey, got %v", err)
	}
}
