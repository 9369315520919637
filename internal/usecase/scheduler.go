package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"IPOWatch/internal/domain/models"
	applogger "IPOWatch/pkg/logger"
	"IPOWatch/pkg/util"
)

const (
	ModeInterval = "interval"
	ModeDailyAt  = "daily_at"

	DefaultIntervalHours = 24
)

// ScheduleSpec selects how passes repeat. Only the fields of Mode apply.
type ScheduleSpec struct {
	Mode string

	// interval
	Interval time.Duration

	// daily_at
	Hour, Minute int
	RunOnStart   bool
}

// ParseSchedule validates raw settings into a ScheduleSpec. An empty mode
// means interval; a non-positive interval means DefaultIntervalHours.
func ParseSchedule(mode string, intervalHours float64, at string, runOnStart bool) (ScheduleSpec, error) {
	switch mode {
	case "", ModeInterval:
		if intervalHours <= 0 {
			intervalHours = DefaultIntervalHours
		}
		return ScheduleSpec{
			Mode:     ModeInterval,
			Interval: time.Duration(intervalHours * float64(time.Hour)),
		}, nil
	case ModeDailyAt:
		h, m, err := util.ParseClock(at)
		if err != nil {
			return ScheduleSpec{}, fmt.Errorf("%w: daily_at time: %w", models.ErrConfig, err)
		}
		return ScheduleSpec{Mode: ModeDailyAt, Hour: h, Minute: m, RunOnStart: runOnStart}, nil
	default:
		return ScheduleSpec{}, fmt.Errorf("%w: unknown schedule mode %q", models.ErrConfig, mode)
	}
}

// NextDailyRun returns the next local occurrence of hour:minute strictly
// after now.
func NextDailyRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(now.Year(), now.Month(), now.Day()+1, hour, minute, 0, 0, now.Location())
	}
	return next
}

// Clock abstracts waiting so the loop can be driven in tests.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// PassRunner runs one pass.
type PassRunner interface {
	RunPass(ctx context.Context) (*PassResult, error)
}

// Scheduler repeats passes according to a ScheduleSpec.
type Scheduler struct {
	runner PassRunner
	spec   ScheduleSpec
	clock  Clock
	log    *applogger.Logger
}

func NewScheduler(runner PassRunner, spec ScheduleSpec, log *applogger.Logger) *Scheduler {
	if log == nil {
		log = applogger.NewNop()
	}
	return &Scheduler{runner: runner, spec: spec, clock: realClock{}, log: log}
}

// WithClock swaps the scheduler clock.
func (s *Scheduler) WithClock(c Clock) *Scheduler {
	s.clock = c
	return s
}

// Run loops until ctx is cancelled. Cancellation is only observed between
// passes: a started pass runs on a context detached from ctx and finishes.
func (s *Scheduler) Run(ctx context.Context) error {
	switch s.spec.Mode {
	case ModeInterval:
		s.log.Info("scheduler started", applogger.String("mode", ModeInterval), applogger.Duration("interval", s.spec.Interval))
		for ctx.Err() == nil {
			s.runPass(ctx)
			if !s.sleep(ctx, s.spec.Interval) {
				break
			}
		}
	case ModeDailyAt:
		s.log.Info("scheduler started",
			applogger.String("mode", ModeDailyAt),
			applogger.String("at", fmt.Sprintf("%02d:%02d", s.spec.Hour, s.spec.Minute)),
		)
		if s.spec.RunOnStart && ctx.Err() == nil {
			s.runPass(ctx)
		}
		for ctx.Err() == nil {
			now := s.clock.Now()
			next := NextDailyRun(now, s.spec.Hour, s.spec.Minute)
			s.log.Info("next pass scheduled", applogger.Time("at", next))
			if !s.sleep(ctx, next.Sub(now)) {
				break
			}
			s.runPass(ctx)
		}
	default:
		return fmt.Errorf("%w: unknown schedule mode %q", models.ErrConfig, s.spec.Mode)
	}

	s.log.Info("scheduler stopped")
	return nil
}

func (s *Scheduler) runPass(ctx context.Context) {
	_, err := s.runner.RunPass(context.WithoutCancel(ctx))
	switch {
	case err == nil:
	case errors.Is(err, models.ErrPassLocked):
		s.log.Warn("pass skipped, another instance holds the lease")
	default:
		s.log.Warn("pass failed, retrying next cycle", applogger.Error(err))
	}
}

// sleep waits d and reports false if ctx ended first.
func (s *Scheduler) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-s.clock.After(d):
		return ctx.Err() == nil
	}
}
