package store

import (
	"context"
	"sync"

	"github.com/kiranshivaraju/reelinsight/pkg/models"
)

// MemoryStore keeps results in a process-local map. Contents are lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	results map[string]models.ReelResult
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{results: make(map[string]models.ReelResult)}
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Put(_ context.Context, result *models.ReelResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.results[result.ID]; ok {
		return ErrDuplicateKey
	}
	s.results[result.ID] = cloneResult(result)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*models.ReelResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneResult(&r)
	return &out, nil
}

func cloneResult(r *models.ReelResult) models.ReelResult {
	out := *r
	out.Analysis.Topics = append([]string(nil), r.Analysis.Topics...)
	out.Analysis.Keywords = append([]string(nil), r.Analysis.Keywords...)
	return out
}
