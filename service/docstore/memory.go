package docstore

import (
	"strings"
	"sync"

	bCtx "github.com/arkpunks/goapi/base/ctx"
	"github.com/arkpunks/goapi/domain"
)

// MemoryStore is an in-process DocumentStore for tests and local runs. It
// can simulate outages so read-modify-write abort paths are testable.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
	// Unavailable makes every call fail with domain.ErrStoreUnavailable.
	Unavailable bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: map[string][]byte{}}
}

func (s *MemoryStore) Read(c bCtx.Ctx, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Unavailable {
		return nil, domain.ErrStoreUnavailable
	}
	body, ok := s.docs[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := make([]byte, len(body))
	copy(cp, body)
	return cp, nil
}

func (s *MemoryStore) Write(c bCtx.Ctx, name string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Unavailable {
		return domain.ErrStoreUnavailable
	}
	cp := make([]byte, len(body))
	copy(cp, body)
	s.docs[name] = cp
	return nil
}

func (s *MemoryStore) List(c bCtx.Ctx, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Unavailable {
		return nil, domain.ErrStoreUnavailable
	}
	names := []string{}
	for name := range s.docs {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	return names, nil
}
