package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"IPOWatch/internal/domain/models"
	drepo "IPOWatch/internal/domain/repository"
	pkgch "IPOWatch/pkg/clickhouse"
)

const monthlyTable = "ipo_monthly"

// MonthlySchema is the DDL for the monthly mirror. ReplacingMergeTree keeps
// the newest version of each month once parts merge.
var MonthlySchema = []string{
	`CREATE TABLE IF NOT EXISTS ` + monthlyTable + ` (
		month            String,
		ipo_count        UInt32,
		issue_amount_sum Float64,
		funds_sum        Float64,
		updated_at       DateTime64(3)
	) ENGINE = ReplacingMergeTree(updated_at)
	ORDER BY month`,
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// CHMonthlySink mirrors monthly aggregates into ClickHouse.
type CHMonthlySink struct {
	db    execer
	close func() error
	now   func() time.Time
}

// NewCHMonthlySink creates the table if needed and returns the sink.
func NewCHMonthlySink(ctx context.Context, ch *pkgch.Client) (*CHMonthlySink, error) {
	if err := ch.InitSchema(ctx, MonthlySchema); err != nil {
		return nil, err
	}
	return &CHMonthlySink{db: ch, close: ch.Close, now: time.Now}, nil
}

var _ drepo.AggregateSink = (*CHMonthlySink)(nil)

func (s *CHMonthlySink) Name() string { return "clickhouse" }

// StoreMonthly inserts every month in one multi-row statement, all stamped
// with the same updated_at.
func (s *CHMonthlySink) StoreMonthly(ctx context.Context, aggs []models.MonthlyAggregate) error {
	if len(aggs) == 0 {
		return nil
	}

	stamp := s.now().UTC()
	values := make([]string, 0, len(aggs))
	args := make([]interface{}, 0, len(aggs)*5)
	for _, a := range aggs {
		values = append(values, "(?, ?, ?, ?, ?)")
		args = append(args, a.Month, uint32(a.IPOCount), a.IssueAmountSum, a.FundsSum, stamp)
	}

	q := fmt.Sprintf(
		"INSERT INTO %s (month, ipo_count, issue_amount_sum, funds_sum, updated_at) VALUES %s",
		monthlyTable, strings.Join(values, ","),
	)
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("clickhouse insert %s: %w", monthlyTable, err)
	}
	return nil
}

func (s *CHMonthlySink) Close() error {
	if s.close != nil {
		return s.close()
	}
	return nil
}
