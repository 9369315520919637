package logger

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(&Config{Level: "loud"}); err == nil {
		t.Fatalf("expected error for bad level")
	}
}

func TestJSONFileOutput(t *testing.T) {
	p := filepath.Join(t.TempDir(), "app.log")
	l, err := New(&Config{Level: "info", Format: "json", Output: p})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	l.Debug("hidden")
	l.With(String("component", "pipeline")).Warn("pass failed",
		Int("rows", 3),
		Error(errors.New("boom")),
		Bool("sent", false),
	)

	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected debug to be filtered, got %d lines", len(lines))
	}

	var rec map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec["level"] != "warn" || rec["message"] != "pass failed" {
		t.Fatalf("unexpected record %v", rec)
	}
	if rec["component"] != "pipeline" || rec["error"] != "boom" || rec["rows"] != float64(3) {
		t.Fatalf("fields missing %v", rec)
	}
}

func TestNopDiscards(t *testing.T) {
	l := NewNop()
	l.Info("nothing", String("k", "v"))
	l.With(Int("n", 1)).Error("still nothing")
}
