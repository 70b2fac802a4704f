package livestream

import (
	"context"
	"sync"
)

// Store is the persistence abstraction for stream state.
// Implementations can be in-memory, SQL-backed, or remote.
type Store interface {
	// Upsert inserts rec or replaces the existing record with the same
	// StreamID. The replace is atomic per key; the last write wins.
	Upsert(ctx context.Context, rec StreamRecord) error

	// Lookup returns the record for streamID. An unknown ID yields
	// found == false and a nil error.
	Lookup(ctx context.Context, streamID string) (rec StreamRecord, found bool, err error)
}

// LiveCounter is implemented by stores that can report how many streams are
// currently live. Used to refresh the live-streams gauge before a scrape.
type LiveCounter interface {
	LiveCount(ctx context.Context) (int, error)
}

// InMemoryStore is a concurrency-safe in-memory implementation of Store.
type InMemoryStore struct {
	mu      sync.RWMutex
	streams map[string]StreamRecord
}

// NewInMemoryStore returns a new empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		streams: make(map[string]StreamRecord),
	}
}

// Upsert implements Store.Upsert.
func (s *InMemoryStore) Upsert(_ context.Context, rec StreamRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streams[rec.StreamID] = rec
	return nil
}

// Lookup implements Store.Lookup.
func (s *InMemoryStore) Lookup(_ context.Context, streamID string) (StreamRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.streams[streamID]
	return rec, ok, nil
}

// Len returns the number of stored records.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.streams)
}

// LiveCount implements LiveCounter.
func (s *InMemoryStore) LiveCount(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, rec := range s.streams {
		if rec.IsLive {
			n++
		}
	}
	return n, nil
}
