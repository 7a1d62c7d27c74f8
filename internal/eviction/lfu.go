package eviction

import (
	"container/list"
)

// lfuStrategy buckets keys by access frequency. Each bucket is a recency
// list (front = most recent), so frequency ties break toward the least
// recently touched key. Frequencies are seeded from the entry's existing
// access count, which lets a rebuild after a strategy swap preserve the
// frequency order the entries already earned.
type lfuStrategy struct {
	capacity int
	minFreq  int64
	buckets  map[int64]*list.List
	nodes    map[string]*lfuNode
}

type lfuNode struct {
	key  string
	freq int64
	elem *list.Element
}

func newLFU(capacity int) Strategy {
	return &lfuStrategy{
		capacity: capacity,
		buckets:  make(map[int64]*list.List),
		nodes:    make(map[string]*lfuNode),
	}
}

func (s *lfuStrategy) Name() string { return "lfu" }

func (s *lfuStrategy) OnInsert(key string, meta Meta) {
	if node, exists := s.nodes[key]; exists {
		// Overwrite of a live key counts as a touch
		s.promote(node)
		return
	}

	freq := meta.AccessCount
	if freq < 1 {
		freq = 1
	}

	node := &lfuNode{key: key, freq: freq}
	node.elem = s.bucket(freq).PushFront(node)
	s.nodes[key] = node

	if len(s.nodes) == 1 || freq < s.minFreq {
		s.minFreq = freq
	}
}

func (s *lfuStrategy) OnAccess(key string, _ Meta) {
	if node, exists := s.nodes[key]; exists {
		s.promote(node)
	}
}

func (s *lfuStrategy) OnRemove(key string) {
	node, exists := s.nodes[key]
	if !exists {
		return
	}
	s.unlink(node)
	delete(s.nodes, key)
}

func (s *lfuStrategy) SelectVictim() (string, bool) {
	if len(s.nodes) == 0 {
		return "", false
	}

	bucket := s.buckets[s.minFreq]
	if bucket == nil || bucket.Len() == 0 {
		s.rescanMinFreq()
		bucket = s.buckets[s.minFreq]
	}

	elem := bucket.Back()
	return elem.Value.(*lfuNode).key, true
}

func (s *lfuStrategy) SetCapacity(capacity int) {
	s.capacity = capacity
}

func (s *lfuStrategy) Len() int {
	return len(s.nodes)
}

func (s *lfuStrategy) Stats() map[string]interface{} {
	return map[string]interface{}{
		"tracked":  len(s.nodes),
		"capacity": s.capacity,
		"min_freq": s.minFreq,
		"buckets":  len(s.buckets),
	}
}

func (s *lfuStrategy) bucket(freq int64) *list.List {
	b, ok := s.buckets[freq]
	if !ok {
		b = list.New()
		s.buckets[freq] = b
	}
	return b
}

func (s *lfuStrategy) promote(node *lfuNode) {
	oldFreq := node.freq
	s.unlink(node)
	node.freq = oldFreq + 1
	node.elem = s.bucket(node.freq).PushFront(node)

	if oldFreq == s.minFreq {
		if b := s.buckets[oldFreq]; b == nil || b.Len() == 0 {
			s.minFreq = oldFreq + 1
		}
	}
}

func (s *lfuStrategy) unlink(node *lfuNode) {
	bucket := s.buckets[node.freq]
	bucket.Remove(node.elem)
	if bucket.Len() == 0 {
		delete(s.buckets, node.freq)
	}
}

// rescanMinFreq recomputes minFreq after lazy drift. Seeded frequencies are
// sparse, so the vacated minFreq+1 slot is not guaranteed to exist.
func (s *lfuStrategy) rescanMinFreq() {
	first := true
	for freq, bucket := range s.buckets {
		if bucket.Len() == 0 {
			continue
		}
		if first || freq < s.minFreq {
			s.minFreq = freq
			first = false
		}
	}
}
