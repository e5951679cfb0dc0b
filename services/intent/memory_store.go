package intent

import (
	"context"
	"sync"
	"time"

	"tripdesk/models"
)

type memoryEntry struct {
	intent    models.SubmissionIntent
	expiresAt time.Time
}

// MemoryStore is a single-process Store.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) Save(_ context.Context, in models.SubmissionIntent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := memoryEntry{intent: in}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	s.entries[in.VisitorID] = e
	return nil
}

func (s *MemoryStore) Take(_ context.Context, visitorID string) (*models.SubmissionIntent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, err := s.lookupLocked(visitorID)
	if err != nil {
		return nil, err
	}
	delete(s.entries, visitorID)
	return in, nil
}

func (s *MemoryStore) Peek(_ context.Context, visitorID string) (*models.SubmissionIntent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookupLocked(visitorID)
}

func (s *MemoryStore) Discard(_ context.Context, visitorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, visitorID)
	return nil
}

func (s *MemoryStore) lookupLocked(visitorID string) (*models.SubmissionIntent, error) {
	e, ok := s.entries[visitorID]
	if !ok {
		return nil, ErrIntentNotFound
	}
	if !e.expiresAt.IsZero() && s.now().After(e.expiresAt) {
		delete(s.entries, visitorID)
		return nil, ErrIntentNotFound
	}
	in := e.intent
	return &in, nil
}
