// Package kmutex provides a mutex keyed by string, used to serialize swap
// execution per token and document writes per document name inside one
// process. Cross-process callers are not serialized; the backing document
// store has no compare-and-swap, which remains a documented limitation.
package kmutex

import "sync"

type Kmutex struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func New() *Kmutex {
	return &Kmutex{locks: map[string]*entry{}}
}

func (k *Kmutex) Lock(key string) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
}

func (k *Kmutex) Unlock(key string) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		k.mu.Unlock()
		panic("kmutex: unlock of unlocked key " + key)
	}
	e.refs--
	if e.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()

	e.mu.Unlock()
}
