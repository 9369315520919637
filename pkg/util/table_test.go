package util

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestWriteTableAlignsColumns(t *testing.T) {
	var sb strings.Builder
	err := WriteTable(&sb, []string{"month", "上市家数"}, [][]string{
		{"2024-01", "2"},
		{"2024-02", "11"},
	})
	if err != nil {
		t.Fatalf("write table: %v", err)
	}
	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), sb.String())
	}
	w := runewidth.StringWidth(lines[0])
	for _, l := range lines[1:] {
		if runewidth.StringWidth(l) != w {
			t.Fatalf("misaligned line %q (width %d, header %d)", l, runewidth.StringWidth(l), w)
		}
	}
	if !strings.HasSuffix(lines[2], "11") {
		t.Fatalf("unexpected last line %q", lines[2])
	}
}
