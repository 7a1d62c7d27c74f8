package store

import (
	"time"

	"github.com/cachebox/cachebox/pkg/memmon"
	"github.com/cachebox/cachebox/pkg/types"
)

// Stats returns hit/miss/eviction counters and utilization
func (s *Store) Stats() types.CacheStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := types.CacheStats{
		Hits:      s.hits,
		Misses:    s.misses,
		Evictions: s.totalEvictions,
		Size:      s.usedBytes,
		Capacity:  s.maxBytes,
	}
	if total := s.hits + s.misses; total > 0 {
		stats.HitRate = float64(s.hits) / float64(total)
	}
	if s.maxBytes > 0 {
		stats.Utilization = float64(s.usedBytes) / float64(s.maxBytes)
	}
	return stats
}

// EvictionStats returns a read-only snapshot of eviction activity,
// including the active strategy's internal counters
func (s *Store) EvictionStats() types.EvictionStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return types.EvictionStats{
		TotalEvictions: s.totalEvictions,
		StrategyName:   s.strategyName,
		StrategyStats:  s.strategy.Stats(),
	}
}

// StorageStats returns a read-only snapshot of the entry table: live counts,
// byte usage, entries already past their deadline but not yet swept, and the
// insertion-time spread
func (s *Store) StorageStats() types.StorageStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	stats := types.StorageStats{
		TotalItems: len(s.entries),
		TotalSize:  s.usedBytes,
	}

	for _, e := range s.entries {
		if e.expired(now) {
			stats.ExpiredItems++
		}
		if stats.OldestItem.IsZero() || e.createdAt.Before(stats.OldestItem) {
			stats.OldestItem = e.createdAt
		}
		if e.createdAt.After(stats.NewestItem) {
			stats.NewestItem = e.createdAt
		}
	}
	return stats
}

// MonitorStats exposes the pressure monitor's snapshot
func (s *Store) MonitorStats() memmon.MonitorStats {
	return s.monitor.Stats()
}
