package store

import (
	"github.com/cachebox/cachebox/pkg/types"
)

// BatchSet stores each item in caller order with per-item semantics: one
// capacity failure does not abort the remaining items. The returned slice
// has one error (or nil) per input.
func (s *Store) BatchSet(items []types.BatchItem) []error {
	results := make([]error, len(items))
	for i, item := range items {
		if item.TTL > 0 {
			results[i] = s.Set(item.Key, item.Value, item.TTL)
		} else {
			results[i] = s.Set(item.Key, item.Value)
		}
	}
	return results
}

// BatchGet looks up each key in caller order
func (s *Store) BatchGet(keys []string) []types.BatchResult {
	results := make([]types.BatchResult, len(keys))
	for i, key := range keys {
		value, found := s.Get(key)
		results[i] = types.BatchResult{Key: key, Value: value, Found: found}
	}
	return results
}

// BatchRemove removes each key in caller order, reporting per-key presence
func (s *Store) BatchRemove(keys []string) []bool {
	results := make([]bool, len(keys))
	for i, key := range keys {
		results[i] = s.Remove(key)
	}
	return results
}

// BatchHas checks each key in caller order without counting accesses
func (s *Store) BatchHas(keys []string) []bool {
	results := make([]bool, len(keys))
	for i, key := range keys {
		results[i] = s.Has(key)
	}
	return results
}
