package pqueue

import (
	"math/rand"
	"sort"
	"testing"
)

func intQueue() *Queue[int] {
	return New(func(a, b int) bool { return a < b })
}

func TestPushPopOrdering(t *testing.T) {
	q := intQueue()
	for _, v := range []int{5, 1, 4, 2, 3} {
		q.Push(v)
	}
	for want := 1; want <= 5; want++ {
		got, ok := q.Pop()
		if !ok {
			t.Fatalf("Pop() empty at %d", want)
		}
		if got != want {
			t.Errorf("Pop() = %d, want %d", got, want)
		}
	}
	if _, ok := q.Pop(); ok {
		t.Error("Pop() on drained queue reported ok")
	}
}

func TestPeekDoesNotRemove(t *testing.T) {
	q := intQueue()
	q.Push(2)
	q.Push(1)

	for i := 0; i < 3; i++ {
		v, ok := q.Peek()
		if !ok || v != 1 {
			t.Fatalf("Peek() = %d, %v; want 1, true", v, ok)
		}
	}
	if q.Len() != 2 {
		t.Errorf("Len() = %d after Peek, want 2", q.Len())
	}
}

func TestEmptyQueue(t *testing.T) {
	q := intQueue()
	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
	if _, ok := q.Peek(); ok {
		t.Error("Peek() on empty queue reported ok")
	}
	if _, ok := q.Pop(); ok {
		t.Error("Pop() on empty queue reported ok")
	}
}

func TestClear(t *testing.T) {
	q := intQueue()
	for i := 0; i < 10; i++ {
		q.Push(i)
	}
	q.Clear()
	if q.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", q.Len())
	}
	q.Push(7)
	if v, ok := q.Pop(); !ok || v != 7 {
		t.Errorf("Pop() after Clear = %d, %v; want 7, true", v, ok)
	}
}

func TestRandomizedHeapProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	q := intQueue()
	var want []int
	for i := 0; i < 500; i++ {
		v := rng.Intn(1000)
		q.Push(v)
		want = append(want, v)
	}
	sort.Ints(want)

	for i, w := range want {
		got, ok := q.Pop()
		if !ok || got != w {
			t.Fatalf("Pop() #%d = %d, %v; want %d", i, got, ok, w)
		}
	}
}

func TestMaxHeapComparator(t *testing.T) {
	q := New(func(a, b int) bool { return a > b })
	for _, v := range []int{3, 9, 1} {
		q.Push(v)
	}
	if v, _ := q.Pop(); v != 9 {
		t.Errorf("max-heap Pop() = %d, want 9", v)
	}
}
