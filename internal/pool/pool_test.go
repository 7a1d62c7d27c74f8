package pool

import (
	"testing"
)

type buffer struct {
	data []byte
	used bool
}

func newBufferPool(max int) *Pool[*buffer] {
	return New(max,
		func() *buffer { return &buffer{data: make([]byte, 0, 64)} },
		func(b *buffer) {
			b.data = b.data[:0]
			b.used = false
		},
	)
}

func TestGetConstructsWhenEmpty(t *testing.T) {
	p := newBufferPool(4)
	b := p.Get()
	if b == nil {
		t.Fatal("Get() returned nil from factory")
	}
	stats := p.GetStats()
	if stats.Gets != 1 || stats.Hits != 0 {
		t.Errorf("stats = %+v, want 1 get, 0 hits", stats)
	}
}

func TestPutGetReuse(t *testing.T) {
	p := newBufferPool(4)
	b := p.Get()
	p.Put(b)

	got := p.Get()
	if got != b {
		t.Error("Get() did not return the pooled object")
	}
	stats := p.GetStats()
	if stats.Hits != 1 {
		t.Errorf("stats.Hits = %d, want 1", stats.Hits)
	}
}

// Objects handed back to the pool must come out indistinguishable from
// freshly constructed ones.
func TestPutResetsObject(t *testing.T) {
	p := newBufferPool(4)
	b := p.Get()
	b.data = append(b.data, []byte("stale payload")...)
	b.used = true
	p.Put(b)

	got := p.Get()
	if len(got.data) != 0 {
		t.Errorf("reused buffer has %d stale bytes", len(got.data))
	}
	if got.used {
		t.Error("reused buffer kept its used flag")
	}
}

func TestFullPoolDiscards(t *testing.T) {
	p := newBufferPool(2)
	bufs := []*buffer{p.Get(), p.Get(), p.Get()}
	for _, b := range bufs {
		p.Put(b)
	}
	if p.Len() != 2 {
		t.Errorf("Len() = %d, want pool capped at 2", p.Len())
	}
	stats := p.GetStats()
	if stats.Discards != 1 {
		t.Errorf("stats.Discards = %d, want 1", stats.Discards)
	}
}

func TestDrain(t *testing.T) {
	p := newBufferPool(8)
	for i := 0; i < 5; i++ {
		p.Put(p.Get())
		p.Put(&buffer{})
	}
	if p.Len() == 0 {
		t.Fatal("pool unexpectedly empty before Drain")
	}
	p.Drain()
	if p.Len() != 0 {
		t.Errorf("Len() = %d after Drain, want 0", p.Len())
	}
	// the pool keeps working after a drain
	if b := p.Get(); b == nil {
		t.Error("Get() after Drain returned nil")
	}
}

func TestDefaultCapacity(t *testing.T) {
	p := New(0, func() int { return 0 }, nil)
	if p.Cap() != 64 {
		t.Errorf("Cap() = %d for zero maxSize, want default 64", p.Cap())
	}
}

func TestNilResetAllowed(t *testing.T) {
	p := New[int](2, func() int { return 41 }, nil)
	p.Put(7)
	if v := p.Get(); v != 7 {
		t.Errorf("Get() = %d, want pooled 7", v)
	}
	if v := p.Get(); v != 41 {
		t.Errorf("Get() = %d, want factory 41", v)
	}
}
