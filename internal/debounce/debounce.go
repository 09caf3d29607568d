// Package debounce coalesces bursts of calls into one trailing call per key.
package debounce

import (
	"sync"
	"time"
)

type entry struct {
	timer *time.Timer
	gen   uint64
}

// Keyed debounces independently per key. A call for one key never resets
// or cancels another key's pending call.
type Keyed[K comparable] struct {
	delay time.Duration

	mu      sync.Mutex
	pending map[K]entry
	gen     uint64
	stopped bool
}

func NewKeyed[K comparable](delay time.Duration) *Keyed[K] {
	return &Keyed[K]{delay: delay, pending: make(map[K]entry)}
}

func (k *Keyed[K]) Call(key K, fn func()) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.stopped {
		return
	}
	if e, ok := k.pending[key]; ok {
		e.timer.Stop()
	}
	k.gen++
	gen := k.gen
	k.pending[key] = entry{
		gen: gen,
		timer: time.AfterFunc(k.delay, func() {
			k.mu.Lock()
			e, ok := k.pending[key]
			if !ok || e.gen != gen {
				k.mu.Unlock()
				return
			}
			delete(k.pending, key)
			k.mu.Unlock()
			fn()
		}),
	}
}

// Cancel drops the pending call for key, reporting whether one existed.
func (k *Keyed[K]) Cancel(key K) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, ok := k.pending[key]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(k.pending, key)
	return true
}

func (k *Keyed[K]) Pending() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.pending)
}

// Stop cancels every pending call and ignores later ones.
func (k *Keyed[K]) Stop() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.stopped = true
	for key, e := range k.pending {
		e.timer.Stop()
		delete(k.pending, key)
	}
}
