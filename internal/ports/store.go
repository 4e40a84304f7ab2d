package ports

import (
	"context"
	"time"
)

// Store is a shared key/value cache tier behind the in-process memo caches.
// Get reports found=false without error on a miss.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
