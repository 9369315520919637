package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"IPOWatch/internal/domain/models"
	drepo "IPOWatch/internal/domain/repository"
	"IPOWatch/pkg/cache"
)

var (
	snapshotKey = cache.GenerateKey("ipo", "snapshot", "latest")
	passLockKey = cache.GenerateKey("ipo", "pass", "lock")
)

// CacheSnapshotStore keeps the latest snapshot and the pass lease in a
// cache.Service (memory for a single process, Redis when shared).
type CacheSnapshotStore struct {
	c       cache.Service
	lockTTL time.Duration
}

func NewCacheSnapshotStore(c cache.Service, lockTTL time.Duration) *CacheSnapshotStore {
	if lockTTL <= 0 {
		lockTTL = 30 * time.Minute
	}
	return &CacheSnapshotStore{c: c, lockTTL: lockTTL}
}

var _ drepo.SnapshotStore = (*CacheSnapshotStore)(nil)

// Save overwrites the latest snapshot.
func (s *CacheSnapshotStore) Save(ctx context.Context, snap *models.Snapshot) error {
	if err := s.c.Set(ctx, snapshotKey, snap, 0); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Latest returns models.ErrNoSnapshot until the first Save.
func (s *CacheSnapshotStore) Latest(ctx context.Context) (*models.Snapshot, error) {
	var snap models.Snapshot
	if err := s.c.Get(ctx, snapshotKey, &snap); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, models.ErrNoSnapshot
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return &snap, nil
}

func (s *CacheSnapshotStore) TryLock(ctx context.Context) (bool, error) {
	return s.c.TryLock(ctx, passLockKey, s.lockTTL)
}

func (s *CacheSnapshotStore) Unlock(ctx context.Context) error {
	return s.c.Unlock(ctx, passLockKey)
}
