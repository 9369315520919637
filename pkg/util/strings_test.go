package util

import "testing"

func TestParseOptionalFloat(t *testing.T) {
	cases := map[string]*float64{
		"":      nil,
		"  ":    nil,
		"abc":   nil,
		"NaN":   nil,
		"+Inf":  nil,
		"0":     ptr(0),
		"12.5":  ptr(12.5),
		" 300 ": ptr(300),
	}
	for in, want := range cases {
		got := ParseOptionalFloat(in)
		if (got == nil) != (want == nil) {
			t.Fatalf("%q: got %v want %v", in, got, want)
		}
		if got != nil && *got != *want {
			t.Fatalf("%q: got %v want %v", in, *got, *want)
		}
	}
}

func TestFormatOptionalFloat(t *testing.T) {
	if FormatOptionalFloat(nil) != "" {
		t.Fatalf("nil should render empty")
	}
	if got := FormatOptionalFloat(ptr(125)); got != "125" {
		t.Fatalf("unexpected %s", got)
	}
}

func ptr(v float64) *float64 { return &v }
