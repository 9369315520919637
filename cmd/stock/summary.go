package main

import (
	"errors"
	"fmt"
	"io"

	"IPOWatch/internal/usecase"
	"IPOWatch/pkg/util"
)

// summaryMonths is how many trailing months the once summary prints.
const summaryMonths = 60

func writeSummary(w io.Writer, res *usecase.PassResult) error {
	snap := res.Snapshot
	fmt.Fprintf(w, "IPO monthly summary %s-%s\n", snap.Window.Start, snap.Window.End)

	aggs := snap.Aggregates
	if len(aggs) == 0 {
		fmt.Fprintln(w, "No data.")
	} else {
		if len(aggs) > summaryMonths {
			aggs = aggs[len(aggs)-summaryMonths:]
		}
		rows := make([][]string, 0, len(aggs))
		for _, a := range aggs {
			rows = append(rows, []string{
				a.Month,
				fmt.Sprint(a.IPOCount),
				util.FormatFloat(a.IssueAmountSum),
				util.FormatFloat(a.FundsSum),
			})
		}
		if err := util.WriteTable(w, []string{"month", "ipo_count", "issue_amount_sum", "funds_sum"}, rows); err != nil {
			return err
		}
	}

	d := snap.Decision
	fmt.Fprintf(w, "Current month %s: %d IPOs, funds %s 亿元\n", d.Month, d.IPOCount, util.FormatFloat(d.FundsSum))
	switch {
	case !d.ShouldSend:
		fmt.Fprintln(w, "Thresholds not exceeded, no notification.")
	case res.Notified:
		fmt.Fprintln(w, "Notified via Server酱")
	case errors.Is(res.NotifyErr, usecase.ErrNoPusher):
		fmt.Fprintln(w, "Notification skipped: no send key configured")
	default:
		fmt.Fprintf(w, "Notification failed: %v\n", res.NotifyErr)
	}
	return nil
}
