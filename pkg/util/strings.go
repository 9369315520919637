package util

import (
	"math"
	"strconv"
	"strings"
)

// ParseOptionalFloat returns nil for empty, non-numeric, NaN or infinite input.
func ParseOptionalFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// FormatFloat renders v without trailing zeros.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatOptionalFloat renders nil as an empty cell.
func FormatOptionalFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return FormatFloat(*v)
}
