package repository

import (
	"context"

	"IPOWatch/internal/domain/models"
)

// Provider fetches new-share records for an inclusive date window.
type Provider interface {
	FetchNewShares(ctx context.Context, w models.Window) ([]models.RawRecord, error)
}

// Pusher delivers one notification message.
type Pusher interface {
	Push(ctx context.Context, title, body string) error
}

// ResultStore persists the pass outputs. Each write replaces the previous
// content as a whole.
type ResultStore interface {
	WriteRaw(ctx context.Context, records []models.RawRecord) error
	WriteMonthly(ctx context.Context, aggs []models.MonthlyAggregate) error
}

// AggregateSink mirrors the monthly table to a secondary backend.
type AggregateSink interface {
	Name() string
	StoreMonthly(ctx context.Context, aggs []models.MonthlyAggregate) error
	Close() error
}

// SnapshotStore keeps the last pass outcome and guards against overlapping passes.
type SnapshotStore interface {
	Save(ctx context.Context, s *models.Snapshot) error
	Latest(ctx context.Context) (*models.Snapshot, error)
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
}

type Metrics interface {
	RecordPass(result string)
	RecordError(kind string)
	RecordRows(fetched, kept, dropped int)
	RecordNotification(result string)
	RecordLatency(op string, seconds float64)
	RecordCurrentMonth(count int, funds float64)
}
