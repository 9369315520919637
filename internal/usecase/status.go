package usecase

import (
	"context"
	"errors"
	"fmt"

	"IPOWatch/internal/domain/models"
	drepo "IPOWatch/internal/domain/repository"
)

// StatusReader answers status queries from the latest snapshot.
type StatusReader struct {
	snapshots drepo.SnapshotStore
}

func NewStatusReader(s drepo.SnapshotStore) *StatusReader {
	return &StatusReader{snapshots: s}
}

// Monthly returns the aggregates within [from, to] (YYYY-MM, either may be
// empty), keeping the most recent limit months in ascending order.
func (r *StatusReader) Monthly(ctx context.Context, req models.MonthlyRequest) (*models.MonthlyResponse, error) {
	if req.From != "" && req.To != "" && req.From > req.To {
		return nil, fmt.Errorf("from %s is after to %s", req.From, req.To)
	}
	snap, err := r.snapshots.Latest(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]models.MonthlyAggregate, 0, len(snap.Aggregates))
	for _, a := range snap.Aggregates {
		if req.From != "" && a.Month < req.From {
			continue
		}
		if req.To != "" && a.Month > req.To {
			continue
		}
		rows = append(rows, a)
	}
	total := len(rows)
	if req.Limit > 0 && len(rows) > req.Limit {
		rows = rows[len(rows)-req.Limit:]
	}

	return &models.MonthlyResponse{
		RunAt:  snap.RunAt,
		Window: snap.Window,
		Rows:   rows,
		Total:  total,
	}, nil
}

func (r *StatusReader) Decision(ctx context.Context) (*models.DecisionResponse, error) {
	snap, err := r.snapshots.Latest(ctx)
	if err != nil {
		return nil, err
	}
	return &models.DecisionResponse{RunAt: snap.RunAt, Decision: snap.Decision, Notified: snap.Notified}, nil
}

// Health is ok as long as the snapshot store answers; last_run is absent
// before the first pass.
func (r *StatusReader) Health(ctx context.Context) (*models.HealthResponse, error) {
	snap, err := r.snapshots.Latest(ctx)
	switch {
	case errors.Is(err, models.ErrNoSnapshot):
		return &models.HealthResponse{Status: "ok"}, nil
	case err != nil:
		return nil, err
	}
	runAt := snap.RunAt
	return &models.HealthResponse{Status: "ok", LastRun: &runAt}, nil
}
