package memmon

import (
	"io"
	"testing"
	"time"

	"github.com/cachebox/cachebox/pkg/utils"
)

func quietLogger(t *testing.T) *utils.StructuredLogger {
	t.Helper()
	logger, err := utils.NewStructuredLogger(&utils.StructuredLoggerConfig{
		Level:  utils.FATAL,
		Output: io.Discard,
	})
	if err != nil {
		t.Fatalf("NewStructuredLogger: %v", err)
	}
	return logger
}

func testConfig(t *testing.T, limit int64) MonitorConfig {
	cfg := DefaultMonitorConfig()
	cfg.LimitBytes = limit
	cfg.GCOnCleanup = false
	cfg.Logger = quietLogger(t)
	return cfg
}

// drainablePool is a minimal Drainable for tests
type drainablePool struct {
	size    int
	drained int
}

func (p *drainablePool) Drain() { p.drained++; p.size = 0 }
func (p *drainablePool) Len() int {
	return p.size
}

func TestLevelClassification(t *testing.T) {
	m := NewMonitor(testConfig(t, 1000))

	tests := []struct {
		used int64
		want PressureLevel
	}{
		{0, PressureLow},
		{599, PressureLow},
		{600, PressureMedium},
		{799, PressureMedium},
		{800, PressureHigh},
		{949, PressureHigh},
		{950, PressureCritical},
		{1000, PressureCritical},
	}
	for _, tt := range tests {
		m.Reset()
		m.RecordDelta(tt.used, "test")
		if got := m.Level(); got != tt.want {
			t.Errorf("Level() at %d/1000 = %s, want %s", tt.used, got, tt.want)
		}
	}
}

func TestUsageFlooredAtZero(t *testing.T) {
	m := NewMonitor(testConfig(t, 1000))
	m.RecordDelta(100, "test")
	m.RecordDelta(-500, "test")
	if got := m.Usage(); got != 0 {
		t.Errorf("Usage() = %d after over-release, want 0", got)
	}
}

func TestPeakTracking(t *testing.T) {
	m := NewMonitor(testConfig(t, 1000))
	m.RecordDelta(400, "test")
	m.RecordDelta(-300, "test")
	m.RecordDelta(100, "test")

	stats := m.Stats()
	if stats.PeakBytes != 400 {
		t.Errorf("PeakBytes = %d, want 400", stats.PeakBytes)
	}
	if stats.UsedBytes != 200 {
		t.Errorf("UsedBytes = %d, want 200", stats.UsedBytes)
	}
}

func TestCallbacksObserveLevelChanges(t *testing.T) {
	m := NewMonitor(testConfig(t, 1000))

	var levels []PressureLevel
	m.OnPressure(func(level PressureLevel, _ int64) {
		levels = append(levels, level)
	})

	m.RecordDelta(500, "test") // low
	m.RecordDelta(200, "test") // medium
	m.RecordDelta(150, "test") // high

	want := []PressureLevel{PressureLow, PressureMedium, PressureHigh}
	if len(levels) != len(want) {
		t.Fatalf("got %d callback invocations, want %d", len(levels), len(want))
	}
	for i, w := range want {
		if levels[i] != w {
			t.Errorf("callback %d saw %s, want %s", i, levels[i], w)
		}
	}
}

func TestCallbackPanicIsRecovered(t *testing.T) {
	m := NewMonitor(testConfig(t, 1000))
	m.OnPressure(func(PressureLevel, int64) {
		panic("misbehaving consumer")
	})
	calls := 0
	m.OnPressure(func(PressureLevel, int64) { calls++ })

	m.RecordDelta(100, "test") // must not panic the caller
	m.RecordDelta(100, "test")

	if calls != 2 {
		t.Errorf("later callback ran %d times, want 2 despite earlier panics", calls)
	}
	if got := m.Stats().CallbackPanics; got != 2 {
		t.Errorf("CallbackPanics = %d, want 2", got)
	}
}

func TestProactiveCleanupRespectsCooldown(t *testing.T) {
	cfg := testConfig(t, 1000)
	cfg.CleanupCooldown = time.Hour
	m := NewMonitor(cfg)

	pool := &drainablePool{size: 100}
	m.RegisterDrainable(pool)

	m.RecordDelta(850, "test") // high: proactive cleanup
	m.RecordDelta(10, "test")  // still high: cooldown suppresses the second

	stats := m.Stats()
	if stats.ProactiveCleanups != 1 {
		t.Errorf("ProactiveCleanups = %d, want 1 (cooldown)", stats.ProactiveCleanups)
	}
	if pool.drained != 1 {
		t.Errorf("pool drained %d times, want 1", pool.drained)
	}
}

func TestEmergencyCleanupBypassesCooldown(t *testing.T) {
	cfg := testConfig(t, 1000)
	cfg.CleanupCooldown = time.Hour
	m := NewMonitor(cfg)

	pool := &drainablePool{size: 100}
	m.RegisterDrainable(pool)

	m.RecordDelta(960, "test") // critical: emergency
	pool.size = 100
	m.RecordDelta(10, "test") // still critical: emergency again, no cooldown

	stats := m.Stats()
	if stats.EmergencyCleanups != 2 {
		t.Errorf("EmergencyCleanups = %d, want 2", stats.EmergencyCleanups)
	}
	if pool.drained != 2 {
		t.Errorf("pool drained %d times, want 2", pool.drained)
	}
}

func TestDrainThreshold(t *testing.T) {
	cfg := testConfig(t, 1000)
	cfg.CleanupCooldown = 0
	cfg.DrainThreshold = 16
	m := NewMonitor(cfg)

	small := &drainablePool{size: 4}
	large := &drainablePool{size: 64}
	m.RegisterDrainable(small)
	m.RegisterDrainable(large)

	m.RecordDelta(850, "test") // high: proactive, threshold applies

	if small.drained != 0 {
		t.Error("pool under the threshold should not be drained proactively")
	}
	if large.drained != 1 {
		t.Error("pool over the threshold should be drained")
	}

	// emergency drains everything regardless of size
	small.size = 4
	m.RecordDelta(110, "test") // critical
	if small.drained != 1 {
		t.Error("emergency cleanup should drain small pools too")
	}
}

func TestAutoRespondDisabled(t *testing.T) {
	cfg := testConfig(t, 1000)
	cfg.AutoRespond = false
	m := NewMonitor(cfg)

	called := false
	m.OnPressure(func(PressureLevel, int64) { called = true })
	pool := &drainablePool{size: 100}
	m.RegisterDrainable(pool)

	m.RecordDelta(990, "test")

	if called {
		t.Error("callbacks must not fire with AutoRespond off")
	}
	if pool.drained != 0 {
		t.Error("cleanup must not run with AutoRespond off")
	}
	if got := m.Usage(); got != 990 {
		t.Errorf("Usage() = %d, tracking should continue regardless", got)
	}
}

func TestHasEnoughMemory(t *testing.T) {
	m := NewMonitor(testConfig(t, 1000))
	m.RecordDelta(400, "test")

	if !m.HasEnoughMemory(600) {
		t.Error("HasEnoughMemory(600) = false at 400/1000")
	}
	if m.HasEnoughMemory(601) {
		t.Error("HasEnoughMemory(601) = true at 400/1000")
	}
}

func TestRequestMemoryTriesCleanup(t *testing.T) {
	cfg := testConfig(t, 1000)
	m := NewMonitor(cfg)

	// a drainable that releases tracked bytes when drained, the way the
	// store's entry pool reduces heap footprint
	m.RegisterDrainable(&drainablePool{size: 100})
	m.OnPressure(func(PressureLevel, int64) {})
	m.RecordDelta(900, "test")

	if m.RequestMemory(200) {
		t.Error("RequestMemory(200) = true with only 100 free and nothing reclaimable")
	}
	if got := m.Stats().EmergencyCleanups; got < 1 {
		t.Error("RequestMemory should have attempted a cleanup pass")
	}
	if !m.RequestMemory(50) {
		t.Error("RequestMemory(50) = false with 100 free")
	}
}

func TestReset(t *testing.T) {
	m := NewMonitor(testConfig(t, 1000))
	m.RecordDelta(700, "test")
	m.Reset()
	if m.Usage() != 0 {
		t.Errorf("Usage() = %d after Reset, want 0", m.Usage())
	}
	if m.Level() != PressureLow {
		t.Errorf("Level() = %s after Reset, want low", m.Level())
	}
}

func TestDefaultLimitApplied(t *testing.T) {
	cfg := testConfig(t, 0)
	m := NewMonitor(cfg)
	if m.Limit() != DefaultMonitorConfig().LimitBytes {
		t.Errorf("Limit() = %d, want default", m.Limit())
	}
}

func TestPressureLevelString(t *testing.T) {
	levels := map[PressureLevel]string{
		PressureLow:      "low",
		PressureMedium:   "medium",
		PressureHigh:     "high",
		PressureCritical: "critical",
	}
	for level, want := range levels {
		if got := level.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", level, got, want)
		}
	}
	if got := PressureLevel(42).String(); got != "unknown" {
		t.Errorf("unknown level String() = %q", got)
	}
}
