// Package cache holds short-lived shared state: job status, rate-limit
// counters and, with the redis result backend, result blobs. RedisCache is
// used when REDIS_URL is set and MemoryCache otherwise.
package cache

import (
	"context"
	"time"
)

// Cache must be safe for concurrent use. Get reports a miss as found=false
// with a nil error.
type Cache interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// SetNX stores value only if key is absent and reports whether it did.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	SetJobStatus(ctx context.Context, jobID string, status string, ttl time.Duration) error
	GetJobStatus(ctx context.Context, jobID string) (string, bool, error)
	// IncrWithExpiry increments key and starts its expiry on the first
	// increment only, giving a fixed window.
	IncrWithExpiry(ctx context.Context, key string, expiry time.Duration) (int64, error)
}

func setJobStatus(ctx context.Context, c Cache, jobID, status string, ttl time.Duration) error {
	return c.Set(ctx, JobStatusKey(jobID), []byte(status), ttl)
}

func getJobStatus(ctx context.Context, c Cache, jobID string) (string, bool, error) {
	val, found, err := c.Get(ctx, JobStatusKey(jobID))
	if err != nil || !found {
		return "", false, err
	}
	return string(val), true, nil
}
