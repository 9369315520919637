package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"IPOWatch/internal/domain/models"
	drepo "IPOWatch/internal/domain/repository"
	"IPOWatch/internal/services/ipo"
	applogger "IPOWatch/pkg/logger"
	"IPOWatch/pkg/util"
)

// PassResult is what one pass produced.
type PassResult struct {
	Snapshot   models.Snapshot
	Notified   bool
	NotifyErr  error
	SinkErrors map[string]error
}

// PipelineOption configures Pipeline.
type PipelineOption func(*Pipeline)

// Pipeline runs one monitoring pass: fetch, normalize, aggregate, persist,
// evaluate and notify, strictly in that order.
type Pipeline struct {
	provider  drepo.Provider
	store     drepo.ResultStore
	notifier  *Notifier
	metrics   drepo.Metrics
	log       *applogger.Logger
	sinks     []drepo.AggregateSink
	snapshots drepo.SnapshotStore

	window     models.Window
	thresholds ipo.Thresholds
	loc        *time.Location
	now        func() time.Time
}

func NewPipeline(
	provider drepo.Provider,
	store drepo.ResultStore,
	notifier *Notifier,
	metrics drepo.Metrics,
	log *applogger.Logger,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		provider:   provider,
		store:      store,
		notifier:   notifier,
		metrics:    metrics,
		log:        log,
		thresholds: ipo.DefaultThresholds(),
		loc:        time.Local,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = applogger.NewNop()
	}
	return p
}

// RunPass executes one pass. Fetch failures wrap models.ErrFetch and write
// failures wrap models.ErrPersist; in both cases nothing is notified. Mirror,
// snapshot and push failures are logged and do not fail the pass.
func (p *Pipeline) RunPass(ctx context.Context) (*PassResult, error) {
	began := p.now()

	if p.snapshots != nil {
		ok, err := p.snapshots.TryLock(ctx)
		switch {
		case err != nil:
			p.log.Warn("pass lease unavailable, running unguarded", applogger.Error(err))
		case !ok:
			p.metrics.RecordPass("locked")
			return nil, models.ErrPassLocked
		default:
			defer func() {
				if err := p.snapshots.Unlock(ctx); err != nil {
					p.log.Warn("release pass lease", applogger.Error(err))
				}
			}()
		}
	}

	from, to := util.ResolveWindow(p.window.Start, p.window.End, began.In(p.loc))
	w := models.Window{Start: from, End: to}
	log := p.log.With(applogger.String("start", w.Start), applogger.String("end", w.End))

	fetchStart := time.Now()
	records, err := p.provider.FetchNewShares(ctx, w)
	p.metrics.RecordLatency("fetch", time.Since(fetchStart).Seconds())
	if err != nil {
		p.metrics.RecordError("fetch")
		p.metrics.RecordPass("fetch_error")
		return nil, fmt.Errorf("%w: %w", models.ErrFetch, err)
	}

	norm := ipo.Normalize(records, w, p.loc)
	p.metrics.RecordRows(len(records), len(norm.Rows), norm.Dropped)
	if norm.Dropped > 0 {
		log.Warn("dropped records without a usable list_date",
			applogger.Int("dropped", norm.Dropped),
			applogger.Int("fetched", len(records)),
		)
	}
	agg := ipo.Aggregate(norm.Rows)

	if err := p.persist(ctx, norm.Kept, agg.Ordered); err != nil {
		p.metrics.RecordError("persist")
		p.metrics.RecordPass("persist_error")
		return nil, err
	}

	res := &PassResult{SinkErrors: p.mirror(ctx, agg.Ordered)}

	now := p.now()
	decision := ipo.Evaluate(agg.ByMonth, now, p.thresholds)
	p.metrics.RecordCurrentMonth(decision.IPOCount, decision.FundsSum)

	if decision.ShouldSend {
		res.Notified, res.NotifyErr = p.notify(ctx, decision)
	}

	res.Snapshot = models.Snapshot{
		RunAt:       now,
		Window:      w,
		Fetched:     len(records),
		Rows:        len(norm.Rows),
		Dropped:     norm.Dropped,
		OutOfWindow: norm.OutOfWindow,
		Aggregates:  agg.Ordered,
		Decision:    decision,
		Notified:    res.Notified,
	}
	if p.snapshots != nil {
		if err := p.snapshots.Save(ctx, &res.Snapshot); err != nil {
			p.metrics.RecordError("snapshot")
			log.Warn("save snapshot", applogger.Error(err))
		}
	}

	p.metrics.RecordPass("ok")
	p.metrics.RecordLatency("pass", p.now().Sub(began).Seconds())
	log.Info("pass completed",
		applogger.Int("fetched", len(records)),
		applogger.Int("rows", len(norm.Rows)),
		applogger.Int("months", len(agg.Ordered)),
		applogger.String("month", decision.Month),
		applogger.Int("ipo_count", decision.IPOCount),
		applogger.Float64("funds_sum", decision.FundsSum),
		applogger.Bool("should_send", decision.ShouldSend),
		applogger.Bool("notified", res.Notified),
	)
	return res, nil
}

func (p *Pipeline) persist(ctx context.Context, kept []models.RawRecord, aggs []models.MonthlyAggregate) error {
	t := time.Now()
	defer func() { p.metrics.RecordLatency("persist", time.Since(t).Seconds()) }()

	if err := p.store.WriteRaw(ctx, kept); err != nil {
		return fmt.Errorf("%w: raw: %w", models.ErrPersist, err)
	}
	if err := p.store.WriteMonthly(ctx, aggs); err != nil {
		return fmt.Errorf("%w: monthly: %w", models.ErrPersist, err)
	}
	return nil
}

func (p *Pipeline) mirror(ctx context.Context, aggs []models.MonthlyAggregate) map[string]error {
	var errs map[string]error
	for _, s := range p.sinks {
		if err := s.StoreMonthly(ctx, aggs); err != nil {
			if errs == nil {
				errs = make(map[string]error)
			}
			errs[s.Name()] = err
			p.metrics.RecordError("sink_" + s.Name())
			p.log.Warn("mirror monthly aggregates", applogger.String("sink", s.Name()), applogger.Error(err))
		}
	}
	return errs
}

func (p *Pipeline) notify(ctx context.Context, d models.NotificationDecision) (bool, error) {
	sent, err := p.notifier.Notify(ctx, d)
	switch {
	case errors.Is(err, ErrNoPusher):
		p.metrics.RecordNotification("skipped")
		p.log.Warn("notification skipped", applogger.String("month", d.Month), applogger.String("reason", "no send key"))
	case err != nil:
		p.metrics.RecordNotification("failed")
		p.metrics.RecordError("notify")
		p.log.Warn("notification failed", applogger.String("month", d.Month), applogger.Error(err))
	default:
		p.metrics.RecordNotification("sent")
		p.log.Info("notification sent", applogger.String("month", d.Month), applogger.String("reason", string(d.Reason)))
	}
	return sent, err
}

// WithWindow fixes the fetch window. Empty bounds fall back to the default
// lookback ending today.
func WithWindow(w models.Window) PipelineOption {
	return func(p *Pipeline) {
		p.window = w
	}
}

func WithSinks(sinks ...drepo.AggregateSink) PipelineOption {
	return func(p *Pipeline) {
		p.sinks = append(p.sinks, sinks...)
	}
}

// WithSnapshots enables the snapshot record and the pass lease.
func WithSnapshots(s drepo.SnapshotStore) PipelineOption {
	return func(p *Pipeline) {
		p.snapshots = s
	}
}

func WithThresholds(th ipo.Thresholds) PipelineOption {
	return func(p *Pipeline) {
		p.thresholds = th
	}
}

// WithClock overrides the wall clock used for the window and current month.
func WithClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) {
		p.now = now
	}
}
