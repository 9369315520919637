package cache

import (
	"context"
	"errors"
	"time"
)

var ErrCacheMiss = errors.New("cache: key not found")

// Service is the key/value surface shared by the memory and Redis caches.
// Values are stored JSON encoded; Get decodes into dest.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	// TryLock takes key for ttl if nobody holds it.
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Unlock releases a lock taken by this instance. A lock that expired
	// and was taken by someone else is left alone.
	Unlock(ctx context.Context, key string) error
	Close() error
}
