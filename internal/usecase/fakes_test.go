package usecase

import (
	"context"
	"sync"
	"time"

	"IPOWatch/internal/domain/models"
)

type fakeProvider struct {
	records []models.RawRecord
	err     error
	window  models.Window
	calls   int
}

func (f *fakeProvider) FetchNewShares(_ context.Context, w models.Window) ([]models.RawRecord, error) {
	f.calls++
	f.window = w
	return f.records, f.err
}

type fakeStore struct {
	raw     []models.RawRecord
	monthly []models.MonthlyAggregate
	rawErr  error
	writes  int
}

func (f *fakeStore) WriteRaw(_ context.Context, r []models.RawRecord) error {
	if f.rawErr != nil {
		return f.rawErr
	}
	f.writes++
	f.raw = r
	return nil
}

func (f *fakeStore) WriteMonthly(_ context.Context, a []models.MonthlyAggregate) error {
	f.writes++
	f.monthly = a
	return nil
}

type fakePusher struct {
	title, body string
	calls       int
	err         error
}

func (f *fakePusher) Push(_ context.Context, title, body string) error {
	f.calls++
	f.title, f.body = title, body
	return f.err
}

type fakeSink struct {
	name string
	got  []models.MonthlyAggregate
	err  error
}

func (f *fakeSink) Name() string { return f.name }
func (f *fakeSink) StoreMonthly(_ context.Context, a []models.MonthlyAggregate) error {
	f.got = a
	return f.err
}
func (f *fakeSink) Close() error { return nil }

type fakeSnapshots struct {
	saved    *models.Snapshot
	locked   bool
	unlocked int
}

func (f *fakeSnapshots) Save(_ context.Context, s *models.Snapshot) error {
	f.saved = s
	return nil
}

func (f *fakeSnapshots) Latest(context.Context) (*models.Snapshot, error) {
	if f.saved == nil {
		return nil, models.ErrNoSnapshot
	}
	return f.saved, nil
}

func (f *fakeSnapshots) TryLock(context.Context) (bool, error) {
	if f.locked {
		return false, nil
	}
	f.locked = true
	return true, nil
}

func (f *fakeSnapshots) Unlock(context.Context) error {
	f.locked = false
	f.unlocked++
	return nil
}

type fakeMetrics struct {
	mu            sync.Mutex
	passes        map[string]int
	notifications map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{passes: map[string]int{}, notifications: map[string]int{}}
}

func (m *fakeMetrics) RecordPass(r string) {
	m.mu.Lock()
	m.passes[r]++
	m.mu.Unlock()
}
func (m *fakeMetrics) RecordError(string)              {}
func (m *fakeMetrics) RecordRows(int, int, int)        {}
func (m *fakeMetrics) RecordLatency(string, float64)   {}
func (m *fakeMetrics) RecordCurrentMonth(int, float64) {}
func (m *fakeMetrics) RecordNotification(r string) {
	m.mu.Lock()
	m.notifications[r]++
	m.mu.Unlock()
}

type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	slept []time.Duration
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// After advances the clock by d and fires immediately.
func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	c.slept = append(c.slept, d)
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}
