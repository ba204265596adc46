package intent

import (
	"context"
	"errors"
	"sync"
	"time"
)

type memoryEntry struct {
	in        Intent
	expiresAt time.Time
}

// MemoryStore is a process-local Store for tests and single-instance deployments.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{ttl: ttl, entries: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryStore) Record(_ context.Context, sessionID string, in Intent) error {
	if sessionID == "" {
		return errors.New("empty session id")
	}
	if err := in.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if in.RecordedAt.IsZero() {
		in.RecordedAt = now
	}
	s.gcLocked(now)
	s.entries[sessionID] = memoryEntry{in: in, expiresAt: now.Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Consume(_ context.Context, sessionID string) (Intent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[sessionID]
	if !ok {
		return Intent{}, ErrNoIntent
	}
	delete(s.entries, sessionID)
	if !s.now().Before(e.expiresAt) {
		return Intent{}, ErrNoIntent
	}
	return e.in, nil
}

func (s *MemoryStore) gcLocked(now time.Time) {
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
		}
	}
}
