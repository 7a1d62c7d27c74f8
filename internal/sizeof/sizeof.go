// Package sizeof estimates the in-memory byte footprint of arbitrary values.
//
// Estimates are approximate by design: the store only needs footprints that
// are stable and roughly proportional to real usage so that byte budgets and
// pressure levels behave sensibly. Estimation never fails; cyclic or
// pathologically deep values degrade to a flat fallback cost.
package sizeof

import (
	"reflect"
	"sync"
)

const (
	// Per-value base costs, approximating Go runtime representations
	stringOverhead    = 16
	numberCost        = 8
	boolCost          = 1
	nilCost           = 8
	pointerCost       = 8
	containerOverhead = 48

	// fallbackCost is charged for values the estimator refuses to walk:
	// cycles, excessive depth, or kinds with no meaningful payload size
	fallbackCost = 64

	maxDepth = 8
)

// Estimator computes byte estimates and memoizes results for composite
// values keyed by identity, so repeated queries on the same unmodified
// object are O(1).
type Estimator struct {
	mu   sync.Mutex
	memo map[uintptr]int64
}

// NewEstimator creates an estimator with an empty memo table
func NewEstimator() *Estimator {
	return &Estimator{
		memo: make(map[uintptr]int64),
	}
}

// EstimateString returns the byte estimate for a string: a fixed overhead
// plus 1-4 bytes per code point by UTF-8 expansion range.
func (e *Estimator) EstimateString(s string) int64 {
	cost := int64(stringOverhead)
	for _, r := range s {
		switch {
		case r < 0x80:
			cost++
		case r < 0x800:
			cost += 2
		case r < 0x10000:
			cost += 3
		default:
			cost += 4
		}
	}
	return cost
}

// Estimate returns a non-negative byte estimate for an arbitrary value.
// It never panics.
func (e *Estimator) Estimate(v interface{}) (size int64) {
	defer func() {
		if recover() != nil {
			size = fallbackCost
		}
	}()

	if v == nil {
		return nilCost
	}

	rv := reflect.ValueOf(v)

	if id, ok := identity(rv); ok {
		e.mu.Lock()
		cached, hit := e.memo[id]
		e.mu.Unlock()
		if hit {
			return cached
		}
	}

	visited := make(map[uintptr]struct{})
	size = e.estimateValue(rv, 0, visited)

	if id, ok := identity(rv); ok {
		e.mu.Lock()
		e.memo[id] = size
		e.mu.Unlock()
	}
	return size
}

// Invalidate drops the memoized estimate for a composite value, forcing a
// recomputation on the next query. Call it after mutating a cached object.
func (e *Estimator) Invalidate(v interface{}) {
	if v == nil {
		return
	}
	rv := reflect.ValueOf(v)
	if id, ok := identity(rv); ok {
		e.mu.Lock()
		delete(e.memo, id)
		e.mu.Unlock()
	}
}

// Reset clears the whole memo table
func (e *Estimator) Reset() {
	e.mu.Lock()
	e.memo = make(map[uintptr]int64)
	e.mu.Unlock()
}

// MemoLen returns the number of memoized identities
func (e *Estimator) MemoLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.memo)
}

// identity returns a stable identity for reference-kind values. Value kinds
// (plain strings, numbers, structs by value) have no identity and are never
// memoized.
func identity(rv reflect.Value) (uintptr, bool) {
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice:
		if rv.IsNil() {
			return 0, false
		}
		return rv.Pointer(), true
	default:
		return 0, false
	}
}

func (e *Estimator) estimateValue(rv reflect.Value, depth int, visited map[uintptr]struct{}) int64 {
	if depth > maxDepth {
		return fallbackCost
	}

	switch rv.Kind() {
	case reflect.Invalid:
		return nilCost

	case reflect.String:
		return e.EstimateString(rv.String())

	case reflect.Bool:
		return boolCost

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return numberCost

	case reflect.Complex64, reflect.Complex128:
		return 2 * numberCost

	case reflect.Ptr:
		if rv.IsNil() {
			return pointerCost
		}
		if !e.markVisited(rv, visited) {
			return fallbackCost
		}
		return pointerCost + e.estimateValue(rv.Elem(), depth+1, visited)

	case reflect.Interface:
		if rv.IsNil() {
			return pointerCost
		}
		return pointerCost + e.estimateValue(rv.Elem(), depth+1, visited)

	case reflect.Slice:
		if rv.IsNil() {
			return pointerCost
		}
		if !e.markVisited(rv, visited) {
			return fallbackCost
		}
		return containerOverhead + e.sumElements(rv, depth, visited)

	case reflect.Array:
		return containerOverhead + e.sumElements(rv, depth, visited)

	case reflect.Map:
		if rv.IsNil() {
			return pointerCost
		}
		if !e.markVisited(rv, visited) {
			return fallbackCost
		}
		size := int64(containerOverhead)
		iter := rv.MapRange()
		for iter.Next() {
			size += e.estimateValue(iter.Key(), depth+1, visited)
			size += e.estimateValue(iter.Value(), depth+1, visited)
		}
		return size

	case reflect.Struct:
		size := int64(containerOverhead)
		for i := 0; i < rv.NumField(); i++ {
			size += e.estimateValue(rv.Field(i), depth+1, visited)
		}
		return size

	default:
		// Chan, Func, UnsafePointer: charge the header only
		return pointerCost
	}
}

func (e *Estimator) sumElements(rv reflect.Value, depth int, visited map[uintptr]struct{}) int64 {
	var size int64
	for i := 0; i < rv.Len(); i++ {
		size += e.estimateValue(rv.Index(i), depth+1, visited)
	}
	return size
}

// markVisited records a reference identity, reporting false when it was
// already seen on this walk (a cycle).
func (e *Estimator) markVisited(rv reflect.Value, visited map[uintptr]struct{}) bool {
	id := rv.Pointer()
	if _, seen := visited[id]; seen {
		return false
	}
	visited[id] = struct{}{}
	return true
}
