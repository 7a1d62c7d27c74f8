// Package pool provides bounded object pooling to reduce GC pressure under
// high cache churn. Pooling is a throughput optimization only; dropping the
// pool and allocating fresh objects is always correct.
package pool

import (
	"sync"
)

// Pool recycles objects of type T. Get returns a previously released object
// if any are pooled, otherwise it constructs a fresh one via the factory.
// Put resets the object and stores it unless the pool is full.
type Pool[T any] struct {
	mu      sync.Mutex
	items   []T
	factory func() T
	reset   func(T)
	maxSize int

	stats Stats
}

// Stats tracks pool usage counters
type Stats struct {
	Gets     uint64 `json:"gets"`
	Puts     uint64 `json:"puts"`
	Hits     uint64 `json:"hits"`
	Discards uint64 `json:"discards"`
}

// New creates a pool holding at most maxSize idle objects. The factory must
// not be nil; reset may be nil when objects carry no reusable state.
func New[T any](maxSize int, factory func() T, reset func(T)) *Pool[T] {
	if maxSize <= 0 {
		maxSize = 64
	}
	return &Pool[T]{
		items:   make([]T, 0, maxSize),
		factory: factory,
		reset:   reset,
		maxSize: maxSize,
	}
}

// Get returns a pooled object or a freshly constructed one
func (p *Pool[T]) Get() T {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stats.Gets++
	if n := len(p.items); n > 0 {
		item := p.items[n-1]
		var zero T
		p.items[n-1] = zero // release reference
		p.items = p.items[:n-1]
		p.stats.Hits++
		return item
	}
	return p.factory()
}

// Put resets the object and returns it to the pool. Objects offered to a
// full pool are dropped for the GC to reclaim.
func (p *Pool[T]) Put(item T) {
	if p.reset != nil {
		p.reset(item)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.stats.Puts++
	if len(p.items) >= p.maxSize {
		p.stats.Discards++
		return
	}
	p.items = append(p.items, item)
}

// Len returns the number of idle pooled objects
func (p *Pool[T]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}

// Cap returns the maximum number of idle objects the pool retains
func (p *Pool[T]) Cap() int {
	return p.maxSize
}

// Drain discards all idle objects. The memory pressure monitor calls this
// through its Drainable registration during cleanup passes.
func (p *Pool[T]) Drain() {
	p.mu.Lock()
	defer p.mu.Unlock()

	var zero T
	for i := range p.items {
		p.items[i] = zero
	}
	p.items = p.items[:0]
}

// GetStats returns a copy of the usage counters
func (p *Pool[T]) GetStats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}
