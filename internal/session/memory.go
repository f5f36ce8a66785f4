package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	secret    string
	expiresAt time.Time
}

// MemoryStore keeps session secrets in process memory. Used as the failover
// target and in tests; sessions do not survive a restart.
type MemoryStore struct {
	entries sync.Map
	ttl     time.Duration
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl}
}

func (s *MemoryStore) Get(ctx context.Context, sessionID string) (string, error) {
	val, ok := s.entries.Load(sessionID)
	if !ok {
		return "", nil
	}
	entry := val.(memoryEntry)
	if s.ttl > 0 && time.Now().After(entry.expiresAt) {
		s.entries.Delete(sessionID)
		return "", nil
	}
	return entry.secret, nil
}

func (s *MemoryStore) Set(ctx context.Context, sessionID, secret string) error {
	s.entries.Store(sessionID, memoryEntry{
		secret:    secret,
		expiresAt: time.Now().Add(s.ttl),
	})
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context, sessionID string) error {
	s.entries.Delete(sessionID)
	return nil
}
