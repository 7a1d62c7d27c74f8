package types

import (
	"time"
)

// CacheStats represents cache performance statistics
type CacheStats struct {
	Hits        uint64  `json:"hits"`
	Misses      uint64  `json:"misses"`
	Evictions   uint64  `json:"evictions"`
	Size        int64   `json:"size"`
	Capacity    int64   `json:"capacity"`
	HitRate     float64 `json:"hit_rate"`
	Utilization float64 `json:"utilization"`
}

// EvictionStats is a read-only snapshot of eviction activity
type EvictionStats struct {
	TotalEvictions uint64                 `json:"total_evictions"`
	StrategyName   string                 `json:"strategy_name"`
	StrategyStats  map[string]interface{} `json:"strategy_stats,omitempty"`
}

// StorageStats is a read-only snapshot of what the store currently holds
type StorageStats struct {
	TotalItems   int       `json:"total_items"`
	TotalSize    int64     `json:"total_size"`
	ExpiredItems int       `json:"expired_items"`
	OldestItem   time.Time `json:"oldest_item"`
	NewestItem   time.Time `json:"newest_item"`
}

// BatchItem is one key/value pair for a batch set operation
type BatchItem struct {
	Key   string        `json:"key"`
	Value string        `json:"value"`
	TTL   time.Duration `json:"ttl,omitempty"`
}

// BatchResult is the outcome of one key in a batch get operation
type BatchResult struct {
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
	Found bool   `json:"found"`
}
