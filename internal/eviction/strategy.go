// Package eviction implements the pluggable eviction policies used by the
// cache store: lru, mru, lfu, fifo, random, ttl, and arc.
//
// Strategies hold only key references and per-key position bookkeeping; the
// store owns the entries themselves. All notifications carry the entry's
// access metadata so a strategy's bookkeeping can always be rebuilt as a pure
// function of the live entry table, which is what makes runtime strategy
// swapping possible.
package eviction

import (
	"sort"
	"time"

	"github.com/cachebox/cachebox/pkg/errors"
)

// Meta is the strategy-visible slice of an entry's metadata
type Meta struct {
	AccessCount    int64
	CreatedAt      time.Time
	LastAccessedAt time.Time
	ExpiresAt      time.Time // zero means no TTL
}

// Strategy decides eviction order. Implementations are not safe for
// concurrent use; the store serializes all calls under its own lock.
type Strategy interface {
	// Name returns the registered strategy name
	Name() string

	// OnInsert records a newly inserted or overwritten key
	OnInsert(key string, meta Meta)

	// OnAccess records a successful read of a live key
	OnAccess(key string, meta Meta)

	// OnRemove forgets a key. Unknown keys are ignored, so callers may
	// always pair it with a table removal without checking membership.
	OnRemove(key string)

	// SelectVictim returns the key to evict next, or false when nothing is
	// tracked. The adaptive strategy also retires the victim into its ghost
	// lists here; callers must still follow up with OnRemove.
	SelectVictim() (string, bool)

	// SetCapacity reconfigures the target entry count
	SetCapacity(capacity int)

	// Len returns the number of tracked keys
	Len() int

	// Stats returns strategy-specific counters for stats snapshots
	Stats() map[string]interface{}
}

var factories = map[string]func(capacity int) Strategy{
	"lru":    func(c int) Strategy { return newRecency(c, false) },
	"mru":    func(c int) Strategy { return newRecency(c, true) },
	"lfu":    newLFU,
	"fifo":   newFIFO,
	"random": newRandom,
	"ttl":    newTTL,
	"arc":    newARC,
}

// New creates the named strategy. Unknown names return an INVALID_STRATEGY
// error so the store can keep its previous strategy.
func New(name string, capacity int) (Strategy, error) {
	factory, ok := factories[name]
	if !ok {
		return nil, errors.NewInvalidStrategy(name, Names())
	}
	return factory(capacity), nil
}

// Names returns the registered strategy names, sorted
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsValid reports whether name is a registered strategy
func IsValid(name string) bool {
	_, ok := factories[name]
	return ok
}
