package util

import (
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// WriteTable renders rows as space-separated, right-aligned columns. Widths are
// measured in terminal cells so wide (CJK) text lines up.
func WriteTable(w io.Writer, headers []string, rows [][]string) error {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if cw := runewidth.StringWidth(row[i]); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	var b strings.Builder
	writeLine := func(cells []string) {
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(runewidth.FillLeft(cell, widths[i]))
		}
		b.WriteByte('\n')
	}

	writeLine(headers)
	for _, row := range rows {
		writeLine(row)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
