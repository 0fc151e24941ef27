package cooldown

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps entries in process memory. Entries are never evicted;
// the map grows with the number of distinct recipients contacted.
type MemoryStore struct {
	window time.Duration
	mu     sync.Mutex
	last   map[string]time.Time
}

func NewMemoryStore(window time.Duration) *MemoryStore {
	return &MemoryStore{
		window: window,
		last:   make(map[string]time.Time),
	}
}

func (s *MemoryStore) CheckAndRecord(_ context.Context, recipientID string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if last, ok := s.last[recipientID]; ok && now.Sub(last) < s.window {
		return false, nil
	}
	s.last[recipientID] = now
	return true, nil
}

func (s *MemoryStore) Release(_ context.Context, recipientID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if last, ok := s.last[recipientID]; ok && last.Equal(at) {
		delete(s.last, recipientID)
	}
	return nil
}

func (s *MemoryStore) Size(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.last), nil
}

func (s *MemoryStore) Last(_ context.Context, recipientID string) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.last[recipientID]
	return t, ok, nil
}
