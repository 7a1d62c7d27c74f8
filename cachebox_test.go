package cachebox_test

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cachebox/cachebox"
	"github.com/cachebox/cachebox/pkg/types"
	"github.com/cachebox/cachebox/pkg/utils"
)

func quietLogger(t *testing.T) *utils.StructuredLogger {
	t.Helper()
	logger, err := utils.NewStructuredLogger(&utils.StructuredLoggerConfig{
		Level:  utils.FATAL,
		Output: io.Discard,
	})
	require.NoError(t, err)
	return logger
}

func newCache(t *testing.T, opts ...cachebox.Option) types.Engine {
	t.Helper()
	opts = append(opts, cachebox.WithLogger(quietLogger(t)), cachebox.WithCleanupInterval(0))
	cache, err := cachebox.New(opts...)
	require.NoError(t, err)
	t.Cleanup(cache.Destroy)
	return cache
}

func TestDefaultCache(t *testing.T) {
	cache := newCache(t)

	require.NoError(t, cache.Set("greeting", "hello"))
	v, ok := cache.Get("greeting")
	assert.True(t, ok)
	assert.Equal(t, "hello", v)
	assert.Equal(t, "lru", cache.StrategyName())
}

func TestOptionsApply(t *testing.T) {
	cache := newCache(t,
		cachebox.WithMaxEntries(2),
		cachebox.WithEvictionPolicy("fifo"),
	)

	require.NoError(t, cache.Set("a", "1"))
	require.NoError(t, cache.Set("b", "2"))
	require.NoError(t, cache.Set("c", "3"))

	assert.Equal(t, 2, cache.Len())
	assert.False(t, cache.Has("a"), "fifo evicts the oldest insertion")
	assert.Equal(t, "fifo", cache.StrategyName())
}

func TestDefaultTTLOption(t *testing.T) {
	cache := newCache(t, cachebox.WithDefaultTTL(10*time.Millisecond))

	require.NoError(t, cache.Set("fleeting", "v"))
	time.Sleep(25 * time.Millisecond)

	_, ok := cache.Get("fleeting")
	assert.False(t, ok)
}

func TestInvalidPolicyFailsConstruction(t *testing.T) {
	_, err := cachebox.New(
		cachebox.WithEvictionPolicy("clock"),
		cachebox.WithLogger(quietLogger(t)),
	)
	assert.Error(t, err)
}

func TestConfigFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cachebox.yaml")
	yaml := `
store:
  max_entries: 3
  eviction_policy: lfu
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cache := newCache(t, cachebox.WithConfigFile(path))
	assert.Equal(t, "lfu", cache.StrategyName())

	// explicit options win over the file
	override := newCache(t,
		cachebox.WithConfigFile(path),
		cachebox.WithEvictionPolicy("arc"),
	)
	assert.Equal(t, "arc", override.StrategyName())
}

func TestEnvOverlay(t *testing.T) {
	t.Setenv("CACHEBOX_EVICTION_POLICY", "ttl")
	t.Setenv("CACHEBOX_MAX_ENTRIES", "7")

	cache := newCache(t, cachebox.WithEnv())
	assert.Equal(t, "ttl", cache.StrategyName())
}

func TestMetricsEndpointStopsWithCache(t *testing.T) {
	cache := newCache(t, cachebox.WithMetrics(19481))
	require.NoError(t, cache.Set("a", "1"))

	url := "http://127.0.0.1:19481/metrics"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond, "metrics endpoint should come up")

	cache.Destroy()

	_, err := http.Get(url)
	assert.Error(t, err, "metrics listener must shut down with the cache")
}

func TestEngineInterfaceSurface(t *testing.T) {
	cache := newCache(t, cachebox.WithMaxEntries(100))

	errs := cache.BatchSet([]types.BatchItem{
		{Key: "a", Value: "1"},
		{Key: "b", Value: "2"},
	})
	for _, err := range errs {
		require.NoError(t, err)
	}

	results := cache.BatchGet([]string{"a", "b"})
	assert.True(t, results[0].Found)
	assert.True(t, results[1].Found)

	require.NoError(t, cache.SetEvictionStrategy("random"))
	assert.Equal(t, "random", cache.StrategyName())
	assert.Equal(t, 2, cache.EvictionStats().StrategyStats["tracked"])
	assert.Equal(t, 2, cache.StorageStats().TotalItems)

	stats := cache.Stats()
	assert.Equal(t, uint64(2), stats.Hits)

	cache.Clear()
	assert.Zero(t, cache.Len())
}
