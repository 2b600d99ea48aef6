package store

import (
	"context"
	"sync"

	"github.com/i474232898/weatherpi/internal/weather"
)

// MemoryStore is a concurrency-safe in-memory single-slot store.
// It does not survive a restart.
type MemoryStore struct {
	mu  sync.RWMutex
	rec *weather.Record
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a copy of the stored record, or weather.ErrCacheMiss.
func (s *MemoryStore) Load(ctx context.Context) (weather.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.rec == nil {
		return weather.Record{}, weather.ErrCacheMiss
	}
	return copyRecord(*s.rec), nil
}

// Save replaces the stored record.
func (s *MemoryStore) Save(ctx context.Context, rec weather.Record) error {
	cp := copyRecord(rec)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.rec = &cp
	return nil
}

func copyRecord(rec weather.Record) weather.Record {
	intervals := make([]weather.Interval, len(rec.Intervals))
	copy(intervals, rec.Intervals)
	cp := rec
	cp.Intervals = intervals
	return cp
}
