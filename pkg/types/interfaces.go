package types

import (
	"time"
)

// Cache defines the key/value caching interface implemented by the store engine
type Cache interface {
	Set(key, value string, ttl ...time.Duration) error
	Get(key string) (string, bool)
	Remove(key string) bool
	Has(key string) bool
	Clear()
	Keys() []string
	Len() int
	Size() int64
	Cleanup() int
	Stats() CacheStats
	Destroy()
}

// BatchCache extends Cache with batch operations executed in caller order
type BatchCache interface {
	Cache
	BatchSet(items []BatchItem) []error
	BatchGet(keys []string) []BatchResult
	BatchRemove(keys []string) []bool
	BatchHas(keys []string) []bool
}

// Engine is the full engine surface: caching, batches, runtime strategy
// swapping, and statistics snapshots
type Engine interface {
	BatchCache
	SetEvictionStrategy(name string) error
	StrategyName() string
	EvictionStats() EvictionStats
	StorageStats() StorageStats
}

// MetricsRecorder defines the metrics collection interface consumed by the
// engine; implementations are optional and must be cheap when disabled
type MetricsRecorder interface {
	RecordOperation(operation string, duration time.Duration)
	RecordHit()
	RecordMiss()
	RecordEviction(strategy string)
	RecordCleanup(removed int)
	SetItems(count int)
	SetSizeBytes(bytes int64)
	SetPressureLevel(level int)
}

// SizeEstimator estimates the byte footprint of arbitrary values
type SizeEstimator interface {
	Estimate(v interface{}) int64
	EstimateString(s string) int64
}
