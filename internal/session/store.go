package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const DefaultCleanupInterval = time.Minute

// Store persists session records keyed by session id.
type Store interface {
	Save(ctx context.Context, id string, identity Identity, ttl time.Duration) error
	// Get reports false when the record is missing or expired.
	Get(ctx context.Context, id string) (Identity, bool, error)
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	identity  Identity
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
	logger  *zap.Logger
}

func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
		logger:  logger.Named("session_store"),
	}
}

func (s *MemoryStore) Save(ctx context.Context, id string, identity Identity, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = memoryEntry{identity: identity, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (Identity, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok || !s.now().Before(e.expiresAt) {
		return Identity{}, false, nil
	}
	return e.identity, true, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// Len returns the number of records, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// CleanupExpired drops records that expired at or before now.
func (s *MemoryStore) CleanupExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// StartCleanup sweeps expired records until ctx is done.
func (s *MemoryStore) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.CleanupExpired(s.now()); removed > 0 {
				s.logger.Debug("expired sessions removed", zap.Int("count", removed))
			}
		}
	}
}
