// Package memmon tracks aggregate cache memory usage against a configured
// ceiling, classifies pressure, and drives proactive and emergency cleanup.
package memmon

import (
	"runtime"
	"sync"
	"time"

	"github.com/cachebox/cachebox/pkg/utils"
)

// PressureLevel is a coarse classification of usage relative to the ceiling
type PressureLevel int

const (
	PressureLow PressureLevel = iota
	PressureMedium
	PressureHigh
	PressureCritical
)

// String returns the string representation of the pressure level
func (l PressureLevel) String() string {
	switch l {
	case PressureLow:
		return "low"
	case PressureMedium:
		return "medium"
	case PressureHigh:
		return "high"
	case PressureCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Drainable is anything holding recyclable objects the monitor may release
// under pressure; object pools implement it.
type Drainable interface {
	Drain()
	Len() int
}

// PressureCallback is invoked on every usage change when auto-response is
// enabled. Panics in callbacks are recovered and logged so one misbehaving
// consumer cannot corrupt the store.
type PressureCallback func(level PressureLevel, usedBytes int64)

// MonitorConfig configures pressure monitoring behavior
type MonitorConfig struct {
	// LimitBytes is the memory ceiling usage is measured against
	LimitBytes int64

	// Watermarks divide usage/limit into pressure levels
	MediumWatermark   float64
	HighWatermark     float64
	CriticalWatermark float64

	// CleanupCooldown rate-limits proactive cleanup at high pressure.
	// Emergency cleanup at critical pressure ignores it.
	CleanupCooldown time.Duration

	// AutoRespond enables classification plus cleanup on every delta
	AutoRespond bool

	// DrainThreshold is the idle-object count above which a registered
	// drainable is drained during cleanup
	DrainThreshold int

	// GCOnCleanup requests a runtime GC hint after draining
	GCOnCleanup bool

	// ProfileDir, when set, receives a pprof heap dump on the first
	// emergency cleanup for after-the-fact analysis
	ProfileDir string

	// Logger for monitoring events
	Logger *utils.StructuredLogger
}

// DefaultMonitorConfig returns sensible defaults
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		LimitBytes:        64 * 1024 * 1024, // 64MB
		MediumWatermark:   0.60,
		HighWatermark:     0.80,
		CriticalWatermark: 0.95,
		CleanupCooldown:   30 * time.Second,
		AutoRespond:       true,
		DrainThreshold:    16,
		GCOnCleanup:       true,
	}
}

// MonitorStats is a snapshot of monitor activity
type MonitorStats struct {
	UsedBytes         int64         `json:"used_bytes"`
	LimitBytes        int64         `json:"limit_bytes"`
	PeakBytes         int64         `json:"peak_bytes"`
	Level             PressureLevel `json:"level"`
	ProactiveCleanups uint64        `json:"proactive_cleanups"`
	EmergencyCleanups uint64        `json:"emergency_cleanups"`
	CallbackPanics    uint64        `json:"callback_panics"`
	LastCleanup       time.Time     `json:"last_cleanup"`
}

// Monitor tracks usage deltas reported by the store and responds to pressure
type Monitor struct {
	config MonitorConfig
	logger *utils.StructuredLogger

	mu          sync.Mutex
	used        int64
	peak        int64
	lastCleanup time.Time
	callbacks   []PressureCallback
	drainables  []Drainable

	proactiveCleanups uint64
	emergencyCleanups uint64
	callbackPanics    uint64
	profiled          bool
}

// NewMonitor creates a new pressure monitor
func NewMonitor(config MonitorConfig) *Monitor {
	if config.Logger == nil {
		logger, _ := utils.NewStructuredLogger(utils.DefaultStructuredLoggerConfig())
		config.Logger = logger
	}
	if config.LimitBytes <= 0 {
		config.LimitBytes = DefaultMonitorConfig().LimitBytes
	}

	return &Monitor{
		config: config,
		logger: config.Logger.WithComponent("memmon"),
	}
}

// RecordDelta adjusts tracked usage, floored at zero. With auto-response
// enabled it classifies the new level, notifies callbacks, and triggers
// proactive cleanup at high pressure (cooldown permitting) or emergency
// cleanup at critical pressure unconditionally.
func (m *Monitor) RecordDelta(bytes int64, tag string) {
	m.mu.Lock()
	m.used += bytes
	if m.used < 0 {
		m.used = 0
	}
	if m.used > m.peak {
		m.peak = m.used
	}
	used := m.used
	level := m.classify(used)
	auto := m.config.AutoRespond
	var callbacks []PressureCallback
	if auto {
		callbacks = append(callbacks, m.callbacks...)
	}
	m.mu.Unlock()

	if !auto {
		return
	}

	m.notify(callbacks, level, used)

	switch level {
	case PressureHigh:
		m.maybeCleanup(tag, false)
	case PressureCritical:
		m.logger.Warn("Critical memory pressure", map[string]interface{}{
			"used_bytes":  used,
			"limit_bytes": m.config.LimitBytes,
			"engine":      tag,
		})
		m.maybeCleanup(tag, true)
	}
}

// Usage returns the currently tracked byte usage
func (m *Monitor) Usage() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.used
}

// Limit returns the configured ceiling
func (m *Monitor) Limit() int64 {
	return m.config.LimitBytes
}

// Level classifies the current usage
func (m *Monitor) Level() PressureLevel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.classify(m.used)
}

// HasEnoughMemory reports whether bytes more would stay under the ceiling
func (m *Monitor) HasEnoughMemory(bytes int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.used+bytes <= m.config.LimitBytes
}

// RequestMemory is a best-effort reservation check: if bytes more would
// exceed the ceiling, it attempts one cleanup pass and re-checks before
// reporting failure. It never blocks waiting for memory.
func (m *Monitor) RequestMemory(bytes int64) bool {
	if m.HasEnoughMemory(bytes) {
		return true
	}
	m.maybeCleanup("request", true)
	return m.HasEnoughMemory(bytes)
}

// OnPressure registers a callback invoked on usage changes
func (m *Monitor) OnPressure(cb PressureCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, cb)
}

// RegisterDrainable registers a pool to drain during cleanup passes
func (m *Monitor) RegisterDrainable(d Drainable) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drainables = append(m.drainables, d)
}

// Stats returns a snapshot of monitor activity
func (m *Monitor) Stats() MonitorStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MonitorStats{
		UsedBytes:         m.used,
		LimitBytes:        m.config.LimitBytes,
		PeakBytes:         m.peak,
		Level:             m.classify(m.used),
		ProactiveCleanups: m.proactiveCleanups,
		EmergencyCleanups: m.emergencyCleanups,
		CallbackPanics:    m.callbackPanics,
		LastCleanup:       m.lastCleanup,
	}
}

// Reset zeroes tracked usage. The store unwinds its usage entry by entry
// through RecordDelta, so a monitor shared by several stores is never reset
// wholesale.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.used = 0
}

// classify must be called with the lock held
func (m *Monitor) classify(used int64) PressureLevel {
	ratio := float64(used) / float64(m.config.LimitBytes)
	switch {
	case ratio >= m.config.CriticalWatermark:
		return PressureCritical
	case ratio >= m.config.HighWatermark:
		return PressureHigh
	case ratio >= m.config.MediumWatermark:
		return PressureMedium
	default:
		return PressureLow
	}
}

// maybeCleanup runs a cleanup pass. Proactive passes respect the cooldown;
// emergency passes bypass it because correctness under critical pressure
// matters more than smoothness.
func (m *Monitor) maybeCleanup(tag string, emergency bool) {
	m.mu.Lock()
	if !emergency && time.Since(m.lastCleanup) < m.config.CleanupCooldown {
		m.mu.Unlock()
		return
	}
	m.lastCleanup = time.Now()
	firstEmergency := false
	if emergency {
		m.emergencyCleanups++
		firstEmergency = !m.profiled
		m.profiled = true
	} else {
		m.proactiveCleanups++
	}
	drainables := append([]Drainable(nil), m.drainables...)
	m.mu.Unlock()

	if firstEmergency && m.config.ProfileDir != "" {
		if profiler, err := NewProfiler(m.config.ProfileDir); err == nil {
			if err := profiler.WriteHeapProfile(""); err != nil {
				m.logger.Warn("Heap profile failed", map[string]interface{}{"error": err.Error()})
			}
		}
	}

	drained := 0
	for _, d := range drainables {
		if emergency || d.Len() > m.config.DrainThreshold {
			d.Drain()
			drained++
		}
	}

	if m.config.GCOnCleanup {
		runtime.GC()
	}

	m.logger.Debug("Cleanup pass completed", map[string]interface{}{
		"emergency":       emergency,
		"pools_drained":   drained,
		"engine":          tag,
		"gc_on_cleanup":   m.config.GCOnCleanup,
		"drain_threshold": m.config.DrainThreshold,
	})
}

// notify invokes callbacks outside the monitor lock, recovering panics
func (m *Monitor) notify(callbacks []PressureCallback, level PressureLevel, used int64) {
	for _, cb := range callbacks {
		m.safeInvoke(cb, level, used)
	}
}

func (m *Monitor) safeInvoke(cb PressureCallback, level PressureLevel, used int64) {
	defer func() {
		if r := recover(); r != nil {
			m.mu.Lock()
			m.callbackPanics++
			m.mu.Unlock()
			m.logger.Error("Pressure callback panicked", map[string]interface{}{
				"panic": r,
				"level": level.String(),
			})
		}
	}()
	cb(level, used)
}
