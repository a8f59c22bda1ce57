package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kiranshivaraju/reelinsight/internal/cache"
	"github.com/kiranshivaraju/reelinsight/pkg/models"
)

// RedisStore keeps results as JSON documents under cache.ResultKey.
// A zero ttl keeps results until they are evicted by Redis.
type RedisStore struct {
	cache cache.Cache
	ttl   time.Duration
}

func NewRedisStore(c cache.Cache, ttl time.Duration) *RedisStore {
	return &RedisStore{cache: c, ttl: ttl}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.cache.Ping(ctx)
}

func (s *RedisStore) Put(ctx context.Context, result *models.ReelResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	stored, err := s.cache.SetNX(ctx, cache.ResultKey(result.ID), data, s.ttl)
	if err != nil {
		return fmt.Errorf("put result: %w", err)
	}
	if !stored {
		return ErrDuplicateKey
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.ReelResult, error) {
	data, found, err := s.cache.Get(ctx, cache.ResultKey(id))
	if err != nil {
		return nil, fmt.Errorf("get result: %w", err)
	}
	if !found {
		return nil, ErrNotFound
	}
	var r models.ReelResult
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode result %s: %w", id, err)
	}
	return &r, nil
}
