package eviction

import (
	"container/list"
)

// fifoStrategy evicts in insertion order. Access never reorders; an
// overwrite of a live key keeps its original queue position.
type fifoStrategy struct {
	capacity  int
	order     *list.List // front = newest insertion
	positions map[string]*list.Element
}

func newFIFO(capacity int) Strategy {
	return &fifoStrategy{
		capacity:  capacity,
		order:     list.New(),
		positions: make(map[string]*list.Element),
	}
}

func (s *fifoStrategy) Name() string { return "fifo" }

func (s *fifoStrategy) OnInsert(key string, _ Meta) {
	if _, exists := s.positions[key]; exists {
		return
	}
	s.positions[key] = s.order.PushFront(key)
}

func (s *fifoStrategy) OnAccess(string, Meta) {}

func (s *fifoStrategy) OnRemove(key string) {
	if elem, exists := s.positions[key]; exists {
		s.order.Remove(elem)
		delete(s.positions, key)
	}
}

func (s *fifoStrategy) SelectVictim() (string, bool) {
	elem := s.order.Back()
	if elem == nil {
		return "", false
	}
	return elem.Value.(string), true
}

func (s *fifoStrategy) SetCapacity(capacity int) {
	s.capacity = capacity
}

func (s *fifoStrategy) Len() int {
	return len(s.positions)
}

func (s *fifoStrategy) Stats() map[string]interface{} {
	return map[string]interface{}{
		"tracked":  len(s.positions),
		"capacity": s.capacity,
	}
}
