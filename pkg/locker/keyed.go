package locker

import (
	"context"
	"sync"
)

// Keyed hands out one mutex per key. Entries are reference counted and
// dropped once nobody holds or waits for them, so the map stays proportional
// to the number of keys in use.
type Keyed[K comparable] struct {
	mu    sync.Mutex
	locks map[K]*entry
}

type entry struct {
	ch   chan struct{}
	refs int
}

func NewKeyed[K comparable]() *Keyed[K] {
	return &Keyed[K]{locks: make(map[K]*entry)}
}

func (k *Keyed[K]) acquireEntry(key K) *entry {
	k.mu.Lock()
	defer k.mu.Unlock()

	e, ok := k.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		k.locks[key] = e
	}
	e.refs++
	return e
}

func (k *Keyed[K]) releaseEntry(key K, e *entry) {
	k.mu.Lock()
	defer k.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(k.locks, key)
	}
}

// Lock blocks until key is free or ctx is done. The returned function releases
// the lock and must be called exactly once.
func (k *Keyed[K]) Lock(ctx context.Context, key K) (func(), error) {
	e := k.acquireEntry(key)

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		k.releaseEntry(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			k.releaseEntry(key, e)
		})
	}, nil
}

// Len reports how many keys currently have holders or waiters.
func (k *Keyed[K]) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
