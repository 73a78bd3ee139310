package session

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	s       AdminSession
	expires time.Time
}

// MemoryStore is a process-local Store. Expired entries are dropped when read.
type MemoryStore struct {
	mu  sync.Mutex
	ttl time.Duration
	now func() time.Time
	m   map[int64]entry
}

// NewMemoryStore builds a MemoryStore; now defaults to time.Now.
func NewMemoryStore(ttl time.Duration, now func() time.Time) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{ttl: ttl, now: now, m: make(map[int64]entry)}
}

func (s *MemoryStore) Get(_ context.Context, userID int64) (AdminSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[userID]
	if !ok {
		return AdminSession{}, ErrNotFound
	}
	if !s.now().Before(e.expires) {
		delete(s.m, userID)
		return AdminSession{}, ErrNotFound
	}
	return e.s, nil
}

func (s *MemoryStore) Set(_ context.Context, userID int64, sess AdminSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[userID] = entry{s: sess, expires: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, userID)
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}
