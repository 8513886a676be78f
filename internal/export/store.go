package export

import (
	"context"
	"sync"
	"time"

	"github.com/vietddude/tipbot/internal/core/domain"
	"github.com/vietddude/tipbot/internal/metrics"
)

// Key identifies the single live challenge slot for one sender.
type Key struct {
	Platform domain.Platform
	Handle   string
}

func (k Key) String() string {
	return string(k.Platform) + ":" + k.Handle
}

// ChallengeStore holds at most one live challenge per key. All operations
// must be atomic per key: two concurrent ConsumeIfMatch calls with the same
// correct code may succeed at most once.
type ChallengeStore interface {
	// Put stores a challenge, superseding any unconsumed prior one, and
	// schedules its removal after ttl.
	Put(ctx context.Context, key Key, code string, ttl time.Duration) error
	// ConsumeIfMatch deletes the challenge and returns true only when a
	// live challenge exists and code matches it exactly.
	ConsumeIfMatch(ctx context.Context, key Key, code string) (bool, error)
	// Delete removes any challenge for key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key Key) error
}

// MemoryStore is the in-process ChallengeStore used when no Redis is
// configured. Expiry runs on a per-entry timer; a consumed challenge
// cancels its timer, and a fired timer only deletes its own entry.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

type memoryEntry struct {
	code  string
	timer *time.Timer
}

// NewMemoryStore creates an empty in-memory challenge store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*memoryEntry)}
}

func (s *MemoryStore) Put(ctx context.Context, key Key, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key.String()
	if prev, ok := s.entries[k]; ok {
		prev.timer.Stop()
	}

	e := &memoryEntry{code: code}
	e.timer = time.AfterFunc(ttl, func() {
		s.expire(k, e)
	})
	s.entries[k] = e
	return nil
}

// expire removes the entry only if it is still the one the timer was armed
// for, so a superseding Put is never clobbered.
func (s *MemoryStore) expire(k string, e *memoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.entries[k]; ok && cur == e {
		delete(s.entries, k)
		metrics.ChallengesExpired.Inc()
	}
}

func (s *MemoryStore) ConsumeIfMatch(ctx context.Context, key Key, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key.String()
	e, ok := s.entries[k]
	if !ok || e.code != code {
		return false, nil
	}
	e.timer.Stop()
	delete(s.entries, k)
	return true, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key.String()
	if e, ok := s.entries[k]; ok {
		e.timer.Stop()
		delete(s.entries, k)
	}
	return nil
}
