package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Cache is a small byte-oriented cache used for hot catalog lookups.
// Redis backs it in production; an in-memory implementation covers tests
// and deployments without Redis.
type Cache interface {
	// Get returns the value for key, or ErrCacheMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key with the given TTL. TTL 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases underlying resources.
	Close() error
}
