package repository

import (
	"sync"
	"time"

	bCtx "github.com/arkpunks/goapi/base/ctx"
	"github.com/arkpunks/goapi/domain"
	"github.com/arkpunks/goapi/domain/mint"
)

// memoryRateLimit tracks mint timestamps per identity in process memory.
// State is lost on restart; the authoritative supply check lives in the
// registry reconciliation service, so that loss is tolerated.
type memoryRateLimit struct {
	mu     sync.Mutex
	byUser map[domain.PubKey][]time.Time
}

func NewMemoryRateLimit() mint.RateLimitStore {
	return &memoryRateLimit{byUser: map[domain.PubKey][]time.Time{}}
}

func (s *memoryRateLimit) Allow(c bCtx.Ctx, identity domain.PubKey, cap int, window time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prune(identity.ToLower(), window)) < cap
}

func (s *memoryRateLimit) Record(c bCtx.Ctx, identity domain.PubKey, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := identity.ToLower()
	s.byUser[id] = append(s.byUser[id], at)
}

// prune drops timestamps that fell out of the rolling window. Called under
// the lock.
func (s *memoryRateLimit) prune(id domain.PubKey, window time.Duration) []time.Time {
	cutoff := time.Now().Add(-window)
	kept := s.byUser[id][:0]
	for _, t := range s.byUser[id] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		delete(s.byUser, id)
		return nil
	}
	s.byUser[id] = kept
	return kept
}
