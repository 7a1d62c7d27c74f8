package eviction

import (
	"math"
	"time"

	"github.com/cachebox/cachebox/internal/pqueue"
)

// noExpiry orders entries without a TTL after every real deadline
var noExpiry = time.Unix(0, math.MaxInt64)

// ttlStrategy evicts the entry closest to expiry first. The heap is keyed by
// expiry time with lazy invalidation: each key carries a sequence number,
// and popped items whose sequence no longer matches are stale and skipped.
type ttlStrategy struct {
	capacity int
	heap     *pqueue.Queue[ttlItem]
	seqs     map[string]uint64
	nextSeq  uint64
}

type ttlItem struct {
	key       string
	expiresAt time.Time
	seq       uint64
}

func newTTL(capacity int) Strategy {
	return &ttlStrategy{
		capacity: capacity,
		heap: pqueue.New(func(a, b ttlItem) bool {
			return a.expiresAt.Before(b.expiresAt)
		}),
		seqs: make(map[string]uint64),
	}
}

func (s *ttlStrategy) Name() string { return "ttl" }

func (s *ttlStrategy) OnInsert(key string, meta Meta) {
	expiresAt := meta.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = noExpiry
	}
	s.nextSeq++
	s.seqs[key] = s.nextSeq
	s.heap.Push(ttlItem{key: key, expiresAt: expiresAt, seq: s.nextSeq})
}

// OnAccess is a no-op: reading an entry does not move its deadline
func (s *ttlStrategy) OnAccess(string, Meta) {}

func (s *ttlStrategy) OnRemove(key string) {
	delete(s.seqs, key)
}

func (s *ttlStrategy) SelectVictim() (string, bool) {
	for {
		item, ok := s.heap.Peek()
		if !ok {
			return "", false
		}
		if seq, live := s.seqs[item.key]; live && seq == item.seq {
			return item.key, true
		}
		// Stale heap entry from a remove or overwrite
		s.heap.Pop()
	}
}

func (s *ttlStrategy) SetCapacity(capacity int) {
	s.capacity = capacity
}

func (s *ttlStrategy) Len() int {
	return len(s.seqs)
}

func (s *ttlStrategy) Stats() map[string]interface{} {
	return map[string]interface{}{
		"tracked":   len(s.seqs),
		"capacity":  s.capacity,
		"heap_size": s.heap.Len(),
	}
}
