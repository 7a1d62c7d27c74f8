package eviction

import (
	"container/list"
)

// recencyStrategy keeps a doubly linked list of keys ordered by recency,
// front = most recently used. It serves both lru (evict back) and mru
// (evict front).
type recencyStrategy struct {
	capacity  int
	evictMRU  bool
	order     *list.List
	positions map[string]*list.Element
}

func newRecency(capacity int, evictMRU bool) Strategy {
	return &recencyStrategy{
		capacity:  capacity,
		evictMRU:  evictMRU,
		order:     list.New(),
		positions: make(map[string]*list.Element),
	}
}

func (s *recencyStrategy) Name() string {
	if s.evictMRU {
		return "mru"
	}
	return "lru"
}

func (s *recencyStrategy) OnInsert(key string, _ Meta) {
	if elem, exists := s.positions[key]; exists {
		s.order.MoveToFront(elem)
		return
	}
	s.positions[key] = s.order.PushFront(key)
}

func (s *recencyStrategy) OnAccess(key string, _ Meta) {
	if elem, exists := s.positions[key]; exists {
		s.order.MoveToFront(elem)
	}
}

func (s *recencyStrategy) OnRemove(key string) {
	if elem, exists := s.positions[key]; exists {
		s.order.Remove(elem)
		delete(s.positions, key)
	}
}

func (s *recencyStrategy) SelectVictim() (string, bool) {
	var elem *list.Element
	if s.evictMRU {
		elem = s.order.Front()
	} else {
		elem = s.order.Back()
	}
	if elem == nil {
		return "", false
	}
	return elem.Value.(string), true
}

func (s *recencyStrategy) SetCapacity(capacity int) {
	s.capacity = capacity
}

func (s *recencyStrategy) Len() int {
	return len(s.positions)
}

func (s *recencyStrategy) Stats() map[string]interface{} {
	return map[string]interface{}{
		"tracked":  len(s.positions),
		"capacity": s.capacity,
	}
}
