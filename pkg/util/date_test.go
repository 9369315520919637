package util

import (
	"testing"
	"time"
)

func TestParseDateCompactAndDashed(t *testing.T) {
	for _, s := range []string{"20240105", "2024-01-05", " 20240105 "} {
		got, ok := ParseDate(s, time.UTC)
		if !ok {
			t.Fatalf("expected ok for %q", s)
		}
		if got.Format(DateLayout) != "20240105" {
			t.Fatalf("unexpected date %v for %q", got, s)
		}
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "nan", "2024010", "20241305", "None"} {
		if _, ok := ParseDate(s, time.UTC); ok {
			t.Fatalf("expected %q to be rejected", s)
		}
	}
}

func TestMonthKey(t *testing.T) {
	d := time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC)
	if got := MonthKey(d); got != "2024-03" {
		t.Fatalf("unexpected month %s", got)
	}
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("18:30")
	if err != nil || h != 18 || m != 30 {
		t.Fatalf("unexpected %d:%d err=%v", h, m, err)
	}
	if _, _, err := ParseClock("25:00"); err == nil {
		t.Fatalf("expected error for 25:00")
	}
}

func TestResolveWindowDefaults(t *testing.T) {
	today := time.Date(2024, 10, 10, 12, 0, 0, 0, time.UTC)
	start, end := ResolveWindow("", "", today)
	if end != "20241010" {
		t.Fatalf("unexpected end %s", end)
	}
	if start != today.AddDate(0, 0, -DefaultLookbackDays).Format(DateLayout) {
		t.Fatalf("unexpected start %s", start)
	}

	start, end = ResolveWindow("2024-01-01", "20240131", today)
	if start != "20240101" || end != "20240131" {
		t.Fatalf("explicit window not kept: %s %s", start, end)
	}
}
