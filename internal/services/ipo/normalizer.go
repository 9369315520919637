package ipo

import (
	"time"

	"IPOWatch/internal/domain/models"
	"IPOWatch/pkg/util"
)

// NormalizeResult is the Normalizer output for one pass.
type NormalizeResult struct {
	Rows []models.CanonicalRow
	// Kept are the raw records behind Rows, in the same order.
	Kept []models.RawRecord
	// Dropped counts records without a parseable list_date.
	Dropped int
	// OutOfWindow counts dated records outside the requested window.
	OutOfWindow int
}

// Normalize turns provider records into canonical rows, preserving input order.
// An empty window bound is open. Dropped records are a warning signal, not an error.
func Normalize(records []models.RawRecord, w models.Window, loc *time.Location) NormalizeResult {
	res := NormalizeResult{
		Rows: make([]models.CanonicalRow, 0, len(records)),
		Kept: make([]models.RawRecord, 0, len(records)),
	}
	start, hasStart := util.ParseDate(w.Start, loc)
	end, hasEnd := util.ParseDate(w.End, loc)

	for _, r := range records {
		listed, ok := util.ParseDate(r.ListDate, loc)
		if !ok {
			res.Dropped++
			continue
		}
		if (hasStart && listed.Before(start)) || (hasEnd && listed.After(end)) {
			res.OutOfWindow++
			continue
		}
		res.Rows = append(res.Rows, models.CanonicalRow{
			Month:       util.MonthKey(listed),
			IssueAmount: util.ParseOptionalFloat(r.Amount),
			Funds:       util.ParseOptionalFloat(r.Funds),
		})
		res.Kept = append(res.Kept, r)
	}
	return res
}
