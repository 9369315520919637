package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"IPOWatch/internal/domain/models"
	drepo "IPOWatch/internal/domain/repository"
	"IPOWatch/pkg/util"
)

var rawHeader = []string{
	"ts_code", "sub_code", "name", "ipo_date", "issue_date", "list_date",
	"amount", "market_amount", "price", "pe", "limit_amount", "funds", "ballot",
}

var monthlyHeader = []string{"month", "ipo_count", "issue_amount_sum", "funds_sum"}

// CSVStore writes the raw and monthly tables as flat CSV files.
type CSVStore struct {
	rawPath     string
	monthlyPath string
}

func NewCSVStore(rawPath, monthlyPath string) *CSVStore {
	return &CSVStore{rawPath: rawPath, monthlyPath: monthlyPath}
}

var _ drepo.ResultStore = (*CSVStore)(nil)

// WriteRaw replaces the raw file with records, in the order given.
func (s *CSVStore) WriteRaw(_ context.Context, records []models.RawRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.TSCode, r.SubCode, r.Name, r.IPODate, r.IssueDate, r.ListDate,
			r.Amount, r.MarketAmount, r.Price, r.PE, r.LimitAmount, r.Funds, r.Ballot,
		})
	}
	return writeCSV(s.rawPath, rawHeader, rows)
}

// WriteMonthly replaces the monthly file with aggs.
func (s *CSVStore) WriteMonthly(_ context.Context, aggs []models.MonthlyAggregate) error {
	rows := make([][]string, 0, len(aggs))
	for _, a := range aggs {
		rows = append(rows, []string{
			a.Month,
			strconv.Itoa(a.IPOCount),
			util.FormatFloat(a.IssueAmountSum),
			util.FormatFloat(a.FundsSum),
		})
	}
	return writeCSV(s.monthlyPath, monthlyHeader, rows)
}

// writeCSV writes to a temp file next to path and renames it into place, so
// readers see either the old file or the complete new one.
func writeCSV(path string, header []string, rows [][]string) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}
