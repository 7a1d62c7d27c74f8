package eviction

import (
	"math/rand"
)

// randomStrategy keeps no ordering at all; a victim is sampled uniformly
// from the live keys. The slice plus index map gives O(1) insert, remove,
// and sampling via swap-delete.
type randomStrategy struct {
	capacity int
	keys     []string
	index    map[string]int
	rng      *rand.Rand
}

func newRandom(capacity int) Strategy {
	return &randomStrategy{
		capacity: capacity,
		index:    make(map[string]int),
		rng:      rand.New(rand.NewSource(rand.Int63())),
	}
}

func (s *randomStrategy) Name() string { return "random" }

func (s *randomStrategy) OnInsert(key string, _ Meta) {
	if _, exists := s.index[key]; exists {
		return
	}
	s.index[key] = len(s.keys)
	s.keys = append(s.keys, key)
}

func (s *randomStrategy) OnAccess(string, Meta) {}

func (s *randomStrategy) OnRemove(key string) {
	i, exists := s.index[key]
	if !exists {
		return
	}
	last := len(s.keys) - 1
	s.keys[i] = s.keys[last]
	s.index[s.keys[i]] = i
	s.keys = s.keys[:last]
	delete(s.index, key)
}

func (s *randomStrategy) SelectVictim() (string, bool) {
	if len(s.keys) == 0 {
		return "", false
	}
	return s.keys[s.rng.Intn(len(s.keys))], true
}

func (s *randomStrategy) SetCapacity(capacity int) {
	s.capacity = capacity
}

func (s *randomStrategy) Len() int {
	return len(s.keys)
}

func (s *randomStrategy) Stats() map[string]interface{} {
	return map[string]interface{}{
		"tracked":  len(s.keys),
		"capacity": s.capacity,
	}
}
