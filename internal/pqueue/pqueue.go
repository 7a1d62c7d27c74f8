// Package pqueue implements a generic binary min-heap priority queue.
package pqueue

// Queue is a min-heap ordered by the caller-supplied less function
type Queue[T any] struct {
	items []T
	less  func(a, b T) bool
}

// New creates an empty queue ordered by less
func New[T any](less func(a, b T) bool) *Queue[T] {
	return &Queue[T]{
		items: make([]T, 0),
		less:  less,
	}
}

// Len returns the number of queued items
func (q *Queue[T]) Len() int {
	return len(q.items)
}

// Push adds an item in O(log n)
func (q *Queue[T]) Push(item T) {
	q.items = append(q.items, item)
	q.up(len(q.items) - 1)
}

// Pop removes and returns the minimum item in O(log n)
func (q *Queue[T]) Pop() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}

	min := q.items[0]
	last := len(q.items) - 1
	q.items[0] = q.items[last]
	q.items[last] = zero // release reference for GC
	q.items = q.items[:last]
	if len(q.items) > 0 {
		q.down(0)
	}
	return min, true
}

// Peek returns the minimum item without removing it
func (q *Queue[T]) Peek() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	return q.items[0], true
}

// Clear removes all items
func (q *Queue[T]) Clear() {
	q.items = q.items[:0]
}

func (q *Queue[T]) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !q.less(q.items[i], q.items[parent]) {
			break
		}
		q.items[i], q.items[parent] = q.items[parent], q.items[i]
		i = parent
	}
}

func (q *Queue[T]) down(i int) {
	n := len(q.items)
	for {
		left := 2*i + 1
		if left >= n {
			break
		}
		smallest := left
		if right := left + 1; right < n && q.less(q.items[right], q.items[left]) {
			smallest = right
		}
		if !q.less(q.items[smallest], q.items[i]) {
			break
		}
		q.items[i], q.items[smallest] = q.items[smallest], q.items[i]
		i = smallest
	}
}
