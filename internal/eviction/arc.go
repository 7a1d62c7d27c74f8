package eviction

import (
	"container/list"
)

// arcStrategy implements adaptive replacement caching. Live keys sit in T1
// (seen once, recent) or T2 (seen at least twice, recent); B1 and B2 are
// ghost lists remembering keys recently evicted from T1 and T2 without their
// values. The target size p of T1 adapts on ghost hits: a B1 hit means the
// recency side is underprovisioned and grows p, a B2 hit shrinks it. The
// result shifts between recency-favoring and frequency-favoring behavior
// with no external tuning.
//
// Invariants maintained here: |T1|+|T2| <= c, |T1|+|B1| <= c, |T2|+|B2| <= 2c.
type arcStrategy struct {
	capacity int
	p        int // adaptive target size for T1

	t1, t2, b1, b2 *arcList

	// lastGhostB2 marks that the most recent admission was a B2 ghost hit,
	// which biases the next replacement toward T1 when |T1| == p
	lastGhostB2 bool

	ghostHitsB1 uint64
	ghostHitsB2 uint64
}

// arcList is a keyed doubly linked list, front = most recent
type arcList struct {
	order     *list.List
	positions map[string]*list.Element
}

func newArcList() *arcList {
	return &arcList{
		order:     list.New(),
		positions: make(map[string]*list.Element),
	}
}

func (l *arcList) len() int { return len(l.positions) }

func (l *arcList) contains(key string) bool {
	_, ok := l.positions[key]
	return ok
}

func (l *arcList) pushFront(key string) {
	l.positions[key] = l.order.PushFront(key)
}

func (l *arcList) remove(key string) bool {
	elem, ok := l.positions[key]
	if !ok {
		return false
	}
	l.order.Remove(elem)
	delete(l.positions, key)
	return true
}

// dropOldest removes and returns the least recent key
func (l *arcList) dropOldest() (string, bool) {
	elem := l.order.Back()
	if elem == nil {
		return "", false
	}
	key := elem.Value.(string)
	l.order.Remove(elem)
	delete(l.positions, key)
	return key, true
}

func (l *arcList) clearTo(other *arcList, key string) {
	if l.remove(key) {
		other.pushFront(key)
	}
}

func newARC(capacity int) Strategy {
	if capacity < 1 {
		capacity = 1
	}
	return &arcStrategy{
		capacity: capacity,
		t1:       newArcList(),
		t2:       newArcList(),
		b1:       newArcList(),
		b2:       newArcList(),
	}
}

func (s *arcStrategy) Name() string { return "arc" }

// OnInsert admits a new key, consulting the ghost lists to adapt p
func (s *arcStrategy) OnInsert(key string, meta Meta) {
	if s.t1.contains(key) || s.t2.contains(key) {
		// Overwrite of a live key behaves like a hit
		s.OnAccess(key, meta)
		return
	}

	switch {
	case s.b1.contains(key):
		// Recency ghost hit: grow the recency side and admit as "seen twice"
		s.p = min(s.capacity, s.p+s.adaptStep(s.b2.len(), s.b1.len()))
		s.b1.remove(key)
		s.ghostHitsB1++
		s.lastGhostB2 = false
		s.t2.pushFront(key)

	case s.b2.contains(key):
		// Frequency ghost hit: shrink the recency side, key re-enters T1
		s.p = max(0, s.p-s.adaptStep(s.b1.len(), s.b2.len()))
		s.b2.remove(key)
		s.ghostHitsB2++
		s.lastGhostB2 = true
		s.t1.pushFront(key)

	default:
		s.lastGhostB2 = false
		// Keep |T1|+|B1| <= c before a plain admission into T1
		if s.t1.len()+s.b1.len() >= s.capacity && s.b1.len() > 0 {
			s.b1.dropOldest()
		}
		if s.totalTracked() >= 2*s.capacity && s.b2.len() > 0 {
			s.b2.dropOldest()
		}
		s.t1.pushFront(key)
	}
}

// OnAccess promotes a hit in T1 or T2 to the most recent end of T2
func (s *arcStrategy) OnAccess(key string, _ Meta) {
	switch {
	case s.t1.contains(key):
		s.t1.clearTo(s.t2, key)
	case s.t2.contains(key):
		s.t2.remove(key)
		s.t2.pushFront(key)
	}
}

// OnRemove forgets a live key without ghosting it; explicit removals carry
// no replacement signal
func (s *arcStrategy) OnRemove(key string) {
	if s.t1.remove(key) {
		return
	}
	s.t2.remove(key)
}

// SelectVictim picks which live list to shrink based on p, retires the
// victim into the matching ghost list, and trims ghosts to their budgets.
func (s *arcStrategy) SelectVictim() (string, bool) {
	if s.t1.len() == 0 && s.t2.len() == 0 {
		return "", false
	}

	fromT1 := s.t1.len() > 0 &&
		(s.t1.len() > s.p ||
			(s.t1.len() == s.p && s.lastGhostB2) ||
			s.t2.len() == 0)

	var key string
	if fromT1 {
		key, _ = s.t1.dropOldest()
		s.b1.pushFront(key)
	} else {
		key, _ = s.t2.dropOldest()
		s.b2.pushFront(key)
	}

	s.trimGhosts()
	return key, true
}

func (s *arcStrategy) SetCapacity(capacity int) {
	if capacity < 1 {
		capacity = 1
	}
	s.capacity = capacity
	if s.p > capacity {
		s.p = capacity
	}
	s.trimGhosts()
}

func (s *arcStrategy) Len() int {
	return s.t1.len() + s.t2.len()
}

func (s *arcStrategy) Stats() map[string]interface{} {
	return map[string]interface{}{
		"t1":            s.t1.len(),
		"t2":            s.t2.len(),
		"b1":            s.b1.len(),
		"b2":            s.b2.len(),
		"p":             s.p,
		"capacity":      s.capacity,
		"ghost_hits_b1": s.ghostHitsB1,
		"ghost_hits_b2": s.ghostHitsB2,
	}
}

// adaptStep is max(1, |other|/|hit|): the less history a ghost list has
// relative to its sibling, the harder a hit on it pulls p
func (s *arcStrategy) adaptStep(other, hit int) int {
	if hit <= 0 {
		return 1
	}
	step := other / hit
	if step < 1 {
		step = 1
	}
	return step
}

func (s *arcStrategy) totalTracked() int {
	return s.t1.len() + s.t2.len() + s.b1.len() + s.b2.len()
}

func (s *arcStrategy) trimGhosts() {
	for s.t1.len()+s.b1.len() > s.capacity && s.b1.len() > 0 {
		s.b1.dropOldest()
	}
	for s.t2.len()+s.b2.len() > 2*s.capacity && s.b2.len() > 0 {
		s.b2.dropOldest()
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
