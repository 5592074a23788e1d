package repository

import (
	"context"
	"sync"

	"github.com/okian/scoreboard/internal/domain/model"
)

// MemoryStore keeps records in process memory in insertion order.
type MemoryStore struct {
	mu      sync.RWMutex
	index   map[string]int
	records []model.PlayerRecord
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{index: make(map[string]int)}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, name string) (model.PlayerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[name]
	if !ok {
		return model.PlayerRecord{}, ErrNotFound
	}
	return clone(s.records[i]), nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context) ([]model.PlayerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.PlayerRecord, len(s.records))
	for i, r := range s.records {
		out[i] = clone(r)
	}
	return out, nil
}

// Insert implements Store.
func (s *MemoryStore) Insert(_ context.Context, rec model.PlayerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[rec.Name]; ok {
		return ErrDuplicate
	}
	s.index[rec.Name] = len(s.records)
	s.records = append(s.records, clone(rec))
	return nil
}

// Update implements Store.
func (s *MemoryStore) Update(_ context.Context, name string, patch model.Patch) error {
	if !patch.Level.Valid() {
		return ErrBadPatch
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[name]
	if !ok {
		return ErrNotFound
	}
	if patch.Name != name {
		if _, taken := s.index[patch.Name]; taken {
			return ErrDuplicate
		}
	}
	rec := s.records[i]
	patch.ApplyTo(&rec)
	if rec.Name != name {
		delete(s.index, name)
		s.index[rec.Name] = i
	}
	s.records[i] = rec
	return nil
}

// Len returns the number of records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close implements Store. It is a no-op.
func (s *MemoryStore) Close() error { return nil }

// clone copies r so callers never share the OverallAvg pointer with the store.
func clone(r model.PlayerRecord) model.PlayerRecord {
	if r.OverallAvg != nil {
		v := *r.OverallAvg
		r.OverallAvg = &v
	}
	return r
}
