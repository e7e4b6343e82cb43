package cache

import (
	"context"
	"time"
)

// Cache is the contract for the cache layer. It keeps the repository
// decorator agnostic of the backing store (Redis today).
type Cache interface {
	// Get reads the value at key and unmarshals it into dest.
	// found=false means cache miss; dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value at key with the given TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes keys from the cache.
	Delete(ctx context.Context, keys ...string) error

	// Ping verifies the connection.
	Ping(ctx context.Context) error
}
