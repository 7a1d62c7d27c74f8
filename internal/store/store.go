package store

import (
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cachebox/cachebox/internal/config"
	"github.com/cachebox/cachebox/internal/eviction"
	"github.com/cachebox/cachebox/internal/pool"
	"github.com/cachebox/cachebox/internal/sizeof"
	"github.com/cachebox/cachebox/pkg/errors"
	"github.com/cachebox/cachebox/pkg/memmon"
	"github.com/cachebox/cachebox/pkg/types"
	"github.com/cachebox/cachebox/pkg/utils"
)

// entryOverhead approximates the bookkeeping cost of one entry beyond its
// key and value payloads
const entryOverhead = 64

// entry is the store's record for one live key. Strategies never hold
// entries, only keys; the store owns every entry exclusively.
type entry struct {
	key            string
	value          string
	createdAt      time.Time
	expiresAt      time.Time // zero means no TTL
	sizeBytes      int64
	accessCount    int64
	lastAccessedAt time.Time
}

func (e *entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

func (e *entry) meta() eviction.Meta {
	return eviction.Meta{
		AccessCount:    e.accessCount,
		CreatedAt:      e.createdAt,
		LastAccessedAt: e.lastAccessedAt,
		ExpiresAt:      e.expiresAt,
	}
}

// Store is the in-memory cache engine: it owns the entry table and wires
// together the eviction strategy, the memory pressure monitor, and the
// entry pool. A single mutex guards all state; every public operation is
// atomic with respect to the table and the strategy bookkeeping.
type Store struct {
	mu sync.Mutex

	entries      map[string]*entry
	strategy     eviction.Strategy
	strategyName string

	maxEntries          int
	maxBytes            int64
	usedBytes           int64
	defaultTTL          time.Duration
	maxEvictionRatio    float64
	severeEvictionRatio float64

	hits           uint64
	misses         uint64
	totalEvictions uint64

	estimator *sizeof.Estimator
	entryPool *pool.Pool[*entry]
	monitor   *memmon.Monitor
	logger    *utils.StructuredLogger
	recorder  types.MetricsRecorder

	// pressure mirrors the monitor's level; the severe eviction ratio
	// applies while it reads high or critical
	pressure atomic.Int32

	stopCh    chan struct{}
	wg        sync.WaitGroup
	destroyed int32
}

// Option configures optional store collaborators
type Option func(*Store)

// WithMonitor supplies a shared pressure monitor instead of a private one
func WithMonitor(m *memmon.Monitor) Option {
	return func(s *Store) { s.monitor = m }
}

// WithMetrics attaches a metrics recorder
func WithMetrics(r types.MetricsRecorder) Option {
	return func(s *Store) { s.recorder = r }
}

// WithLogger supplies the logger
func WithLogger(l *utils.StructuredLogger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates a store from configuration. A nil configuration uses defaults.
func New(cfg *config.Configuration, opts ...Option) (*Store, error) {
	if cfg == nil {
		cfg = config.NewDefault()
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.WrapError(err, errors.ErrCodeConfigValidation, "invalid store configuration").
			WithComponent("store")
	}

	strategy, err := eviction.New(cfg.Store.EvictionPolicy, cfg.Store.MaxEntries)
	if err != nil {
		return nil, err
	}

	s := &Store{
		entries:             make(map[string]*entry),
		strategy:            strategy,
		strategyName:        cfg.Store.EvictionPolicy,
		maxEntries:          cfg.Store.MaxEntries,
		maxBytes:            cfg.MaxSizeBytes(),
		defaultTTL:          cfg.Store.DefaultTTL,
		maxEvictionRatio:    cfg.Store.MaxEvictionRatio,
		severeEvictionRatio: cfg.Store.SevereEvictionRatio,
		estimator:           sizeof.NewEstimator(),
		stopCh:              make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = newLoggerFromConfig(cfg)
	}
	s.logger = s.logger.WithComponent("store")

	if s.monitor == nil {
		monCfg := memmon.MonitorConfig{
			LimitBytes:        cfg.MemoryLimitBytes(),
			MediumWatermark:   cfg.Memory.MediumWatermark,
			HighWatermark:     cfg.Memory.HighWatermark,
			CriticalWatermark: cfg.Memory.CriticalWatermark,
			CleanupCooldown:   cfg.Memory.CleanupCooldown,
			AutoRespond:       cfg.Memory.AutoRespond,
			DrainThreshold:    cfg.Memory.DrainThreshold,
			GCOnCleanup:       cfg.Memory.GCOnCleanup,
			ProfileDir:        cfg.Memory.ProfileDir,
			Logger:            s.logger,
		}
		s.monitor = memmon.NewMonitor(monCfg)
	}

	s.entryPool = pool.New(cfg.Store.EntryPoolSize,
		func() *entry { return &entry{} },
		func(e *entry) { *e = entry{} },
	)
	s.monitor.RegisterDrainable(s.entryPool)

	s.monitor.OnPressure(func(level memmon.PressureLevel, _ int64) {
		s.pressure.Store(int32(level))
		if s.recorder != nil {
			s.recorder.SetPressureLevel(int(level))
		}
	})

	if cfg.Store.CleanupInterval > 0 {
		s.wg.Add(1)
		go s.sweepLoop(cfg.Store.CleanupInterval)
	}

	s.logger.Info("Cache store created", map[string]interface{}{
		"max_entries":      s.maxEntries,
		"max_bytes":        s.maxBytes,
		"eviction_policy":  s.strategyName,
		"cleanup_interval": cfg.Store.CleanupInterval,
	})

	return s, nil
}

// Set stores a value under key, evicting victims if the table would exceed
// its item or byte budget. Eviction in one call is capped at a ratio of the
// table; when even that cannot make room the call fails with
// CAPACITY_EXCEEDED and the new entry is not inserted.
func (s *Store) Set(key, value string, ttl ...time.Duration) error {
	start := time.Now()
	defer s.observe("set", start)

	s.mu.Lock()
	defer s.mu.Unlock()

	if atomic.LoadInt32(&s.destroyed) == 1 {
		return errors.NewError(errors.ErrCodeStoreDestroyed, "store has been destroyed").
			WithComponent("store").WithOperation("set")
	}

	sizeBytes := s.estimator.EstimateString(key) + s.estimator.EstimateString(value) + entryOverhead
	if sizeBytes > s.maxBytes {
		return errors.NewCapacityExceeded(key, sizeBytes, s.maxBytes).
			WithComponent("store").WithOperation("set")
	}

	now := time.Now()
	var expiresAt time.Time
	effectiveTTL := s.defaultTTL
	if len(ttl) > 0 {
		effectiveTTL = ttl[0]
	}
	if effectiveTTL > 0 {
		expiresAt = now.Add(effectiveTTL)
	}

	existing, overwrite := s.entries[key]

	var neededBytes int64
	neededItems := 0
	if overwrite {
		neededBytes = sizeBytes - existing.sizeBytes
	} else {
		neededBytes = sizeBytes
		neededItems = 1
	}

	if err := s.makeRoom(key, neededBytes, neededItems); err != nil {
		return err
	}

	// The eviction pass may have chosen this very key as a victim, turning
	// the overwrite into a fresh insert that must be charged at full size,
	// not the delta; make room again for the difference
	if _, alive := s.entries[key]; overwrite && !alive {
		if err := s.makeRoom(key, sizeBytes, 1); err != nil {
			return err
		}
	}

	existing, overwrite = s.entries[key]

	if overwrite {
		delta := sizeBytes - existing.sizeBytes
		existing.value = value
		existing.createdAt = now
		existing.expiresAt = expiresAt
		existing.sizeBytes = sizeBytes
		s.usedBytes += delta
		s.monitor.RecordDelta(delta, "store")
		// Overwrite counts as a touch for the strategy
		s.strategy.OnInsert(key, existing.meta())
	} else {
		e := s.entryPool.Get()
		e.key = key
		e.value = value
		e.createdAt = now
		e.expiresAt = expiresAt
		e.sizeBytes = sizeBytes
		e.lastAccessedAt = now
		s.entries[key] = e
		s.usedBytes += sizeBytes
		s.monitor.RecordDelta(sizeBytes, "store")
		s.strategy.OnInsert(key, e.meta())
	}

	s.updateGauges()
	return nil
}

// Get returns the value for key. Expired entries are removed eagerly and
// reported as misses.
func (s *Store) Get(key string) (string, bool) {
	start := time.Now()
	defer s.observe("get", start)

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		s.misses++
		if s.recorder != nil {
			s.recorder.RecordMiss()
		}
		return "", false
	}

	now := time.Now()
	if e.expired(now) {
		s.removeLocked(key)
		s.updateGauges()
		s.misses++
		if s.recorder != nil {
			s.recorder.RecordMiss()
		}
		return "", false
	}

	e.accessCount++
	e.lastAccessedAt = now
	s.strategy.OnAccess(key, e.meta())
	s.hits++
	if s.recorder != nil {
		s.recorder.RecordHit()
	}
	return e.value, true
}

// Has reports whether key is live without counting as an access
func (s *Store) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	return ok && !e.expired(time.Now())
}

// Remove deletes key, reporting whether it was present
func (s *Store) Remove(key string) bool {
	start := time.Now()
	defer s.observe("remove", start)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return false
	}
	s.removeLocked(key)
	s.updateGauges()
	return true
}

// Clear removes all entries and resets eviction statistics. Strategy
// bookkeeping is rebuilt from scratch: after a full wipe the adaptive
// strategy's ghost lists would describe evictions that no longer happened.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.entries {
		s.removeLocked(key)
	}
	if fresh, err := eviction.New(s.strategyName, s.maxEntries); err == nil {
		s.strategy = fresh
	}
	s.totalEvictions = 0
	s.updateGauges()
}

// Cleanup sweeps every expired entry and returns how many were removed.
// The interval goroutine calls this on a timer; it is also safe to call
// directly.
func (s *Store) Cleanup() int {
	start := time.Now()
	defer s.observe("cleanup", start)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var expiredKeys []string
	for key, e := range s.entries {
		if e.expired(now) {
			expiredKeys = append(expiredKeys, key)
		}
	}
	for _, key := range expiredKeys {
		s.removeLocked(key)
	}

	if len(expiredKeys) > 0 {
		s.updateGauges()
		s.logger.Debug("Expiry sweep removed entries", map[string]interface{}{
			"removed": len(expiredKeys),
		})
	}
	if s.recorder != nil {
		s.recorder.RecordCleanup(len(expiredKeys))
	}
	return len(expiredKeys)
}

// SetEvictionStrategy swaps the active strategy at runtime. Entries are
// preserved; the new strategy's bookkeeping is rebuilt purely from the live
// entry table and its access metadata. An unknown name leaves the previous
// strategy in place.
func (s *Store) SetEvictionStrategy(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	strategy, err := eviction.New(name, s.maxEntries)
	if err != nil {
		return err
	}

	ordered := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		ordered = append(ordered, e)
	}
	if name == "fifo" {
		sort.Slice(ordered, func(i, j int) bool {
			return ordered[i].createdAt.Before(ordered[j].createdAt)
		})
	} else {
		// Least recently accessed first so the most recent ends up at the
		// hot end of recency-ordered structures
		sort.Slice(ordered, func(i, j int) bool {
			return ordered[i].lastAccessedAt.Before(ordered[j].lastAccessedAt)
		})
	}
	for _, e := range ordered {
		strategy.OnInsert(e.key, e.meta())
	}

	old := s.strategyName
	s.strategy = strategy
	s.strategyName = name

	s.logger.Info("Eviction strategy swapped", map[string]interface{}{
		"from":    old,
		"to":      name,
		"entries": len(ordered),
	})
	return nil
}

// StrategyName returns the active strategy name
func (s *Store) StrategyName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.strategyName
}

// Keys returns all live keys in unspecified order
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}
	return keys
}

// Len returns the number of live entries
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Size returns the estimated byte usage of live entries
func (s *Store) Size() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usedBytes
}

// Destroy stops the sweep goroutine and releases all entries and pools.
// It is idempotent.
func (s *Store) Destroy() {
	if !atomic.CompareAndSwapInt32(&s.destroyed, 0, 1) {
		return
	}

	close(s.stopCh)
	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.entries {
		s.removeLocked(key)
	}
	s.entryPool.Drain()
	s.estimator.Reset()
	s.updateGauges()

	s.logger.Info("Cache store destroyed", nil)
}

// newLoggerFromConfig builds the default logger from the global config
// section; WithLogger overrides it entirely. Validate has already vetted the
// level, so the INFO fallback only covers unvalidated configurations.
func newLoggerFromConfig(cfg *config.Configuration) *utils.StructuredLogger {
	level, err := utils.ParseLogLevel(cfg.Global.LogLevel)
	if err != nil {
		level = utils.INFO
	}
	format := utils.FormatText
	if strings.EqualFold(cfg.Global.LogFormat, "json") {
		format = utils.FormatJSON
	}
	logger, _ := utils.NewStructuredLogger(&utils.StructuredLoggerConfig{
		Level:         level,
		Output:        os.Stdout,
		Format:        format,
		IncludeCaller: true,
	})
	return logger
}

// makeRoom evicts strategy-chosen victims until the new entry fits, capped
// at the eviction ratio for this single call. Must be called with the lock
// held.
func (s *Store) makeRoom(key string, neededBytes int64, neededItems int) error {
	ratio := s.maxEvictionRatio
	if memmon.PressureLevel(s.pressure.Load()) >= memmon.PressureHigh {
		ratio = s.severeEvictionRatio
	}
	maxEvictions := int(float64(len(s.entries)) * ratio)
	if maxEvictions < 1 {
		maxEvictions = 1
	}

	evicted := 0
	for len(s.entries)+neededItems > s.maxEntries || s.usedBytes+neededBytes > s.maxBytes {
		if evicted >= maxEvictions {
			return errors.NewCapacityExceeded(key, neededBytes, s.maxBytes-s.usedBytes).
				WithComponent("store").WithOperation("set").
				WithDetail("evicted_this_call", evicted)
		}

		victim, ok := s.strategy.SelectVictim()
		if !ok {
			return errors.NewCapacityExceeded(key, neededBytes, s.maxBytes-s.usedBytes).
				WithComponent("store").WithOperation("set")
		}

		s.removeLocked(victim)
		s.totalEvictions++
		evicted++
		if s.recorder != nil {
			s.recorder.RecordEviction(s.strategyName)
		}
	}
	return nil
}

// removeLocked removes one entry, keeping the table, the strategy, and the
// monitor in sync. Must be called with the lock held.
func (s *Store) removeLocked(key string) {
	e, ok := s.entries[key]
	if !ok {
		return
	}

	s.strategy.OnRemove(key)
	delete(s.entries, key)
	s.usedBytes -= e.sizeBytes
	s.monitor.RecordDelta(-e.sizeBytes, "store")
	s.entryPool.Put(e)
}

func (s *Store) sweepLoop(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.Cleanup()
		}
	}
}

func (s *Store) updateGauges() {
	if s.recorder == nil {
		return
	}
	s.recorder.SetItems(len(s.entries))
	s.recorder.SetSizeBytes(s.usedBytes)
}

func (s *Store) observe(operation string, start time.Time) {
	if s.recorder != nil {
		s.recorder.RecordOperation(operation, time.Since(start))
	}
}
