// Package cachebox is an in-memory key/value cache engine with pluggable
// eviction strategies (lru, mru, lfu, fifo, random, ttl, arc), byte and
// item budgets, TTL expiry, and memory-pressure-driven cleanup.
//
// Values are opaque strings; serialize before storing. Every operation is
// atomic with respect to the cache, but sequences of operations are not
// serialized against concurrent callers.
//
//	cache, err := cachebox.New(
//		cachebox.WithMaxEntries(10_000),
//		cachebox.WithMaxSize("32MB"),
//		cachebox.WithEvictionPolicy("arc"),
//	)
//	if err != nil { ... }
//	defer cache.Destroy()
//
//	_ = cache.Set("user:42", payload, 5*time.Minute)
//	value, ok := cache.Get("user:42")
package cachebox

import (
	"context"
	"time"

	"github.com/cachebox/cachebox/internal/config"
	"github.com/cachebox/cachebox/internal/metrics"
	"github.com/cachebox/cachebox/internal/store"
	"github.com/cachebox/cachebox/pkg/types"
	"github.com/cachebox/cachebox/pkg/utils"
)

// Option configures a cache built by New
type Option func(*builder)

type builder struct {
	cfg      *config.Configuration
	file     string
	env      bool
	logger   *utils.StructuredLogger
	recorder types.MetricsRecorder
}

// WithConfigFile overlays a YAML configuration file
func WithConfigFile(path string) Option {
	return func(b *builder) { b.file = path }
}

// WithEnv overlays CACHEBOX_* environment variables
func WithEnv() Option {
	return func(b *builder) { b.env = true }
}

// WithMaxEntries sets the item budget
func WithMaxEntries(n int) Option {
	return func(b *builder) { b.cfg.Store.MaxEntries = n }
}

// WithMaxSize sets the byte budget, e.g. "64MB"
func WithMaxSize(size string) Option {
	return func(b *builder) {
		b.cfg.Store.MaxSize = size
		b.cfg.Memory.Limit = size
	}
}

// WithEvictionPolicy selects the eviction strategy
func WithEvictionPolicy(name string) Option {
	return func(b *builder) { b.cfg.Store.EvictionPolicy = name }
}

// WithDefaultTTL applies a TTL to entries stored without one
func WithDefaultTTL(ttl time.Duration) Option {
	return func(b *builder) { b.cfg.Store.DefaultTTL = ttl }
}

// WithCleanupInterval sets the expiry sweep period; zero disables the sweeper
func WithCleanupInterval(interval time.Duration) Option {
	return func(b *builder) { b.cfg.Store.CleanupInterval = interval }
}

// WithLogger supplies a structured logger
func WithLogger(logger *utils.StructuredLogger) Option {
	return func(b *builder) { b.logger = logger }
}

// WithMetrics enables the Prometheus endpoint on the given port
func WithMetrics(port int) Option {
	return func(b *builder) {
		b.cfg.Monitoring.Enabled = true
		b.cfg.Monitoring.Port = port
	}
}

// New builds a cache engine. Options apply over the defaults; a config file
// overlay, when given, is applied first so explicit options win.
func New(opts ...Option) (types.Engine, error) {
	b := &builder{cfg: config.NewDefault()}
	for _, opt := range opts {
		opt(b)
	}

	if b.file != "" {
		base := config.NewDefault()
		if err := base.LoadFromFile(b.file); err != nil {
			return nil, err
		}
		// Re-apply explicit options on top of the file contents
		b.cfg = base
		for _, opt := range opts {
			opt(b)
		}
	}
	if b.env {
		if err := b.cfg.LoadFromEnv(); err != nil {
			return nil, err
		}
	}

	storeOpts := []store.Option{}
	if b.logger != nil {
		storeOpts = append(storeOpts, store.WithLogger(b.logger))
	}

	var collector *metrics.Collector
	if b.cfg.Monitoring.Enabled {
		c, err := metrics.NewCollector(&metrics.Config{
			Enabled:   true,
			Port:      b.cfg.Monitoring.Port,
			Path:      b.cfg.Monitoring.Path,
			Namespace: b.cfg.Monitoring.Namespace,
		})
		if err != nil {
			return nil, err
		}
		if err := c.Start(context.Background()); err != nil {
			return nil, err
		}
		collector = c
		b.recorder = c
	}
	if b.recorder != nil {
		storeOpts = append(storeOpts, store.WithMetrics(b.recorder))
	}

	s, err := store.New(b.cfg, storeOpts...)
	if err != nil {
		if collector != nil {
			_ = collector.Stop(context.Background())
		}
		return nil, err
	}
	if collector != nil {
		return &engine{Engine: s, collector: collector}, nil
	}
	return s, nil
}

// engine ties the metrics endpoint's lifetime to the store's: Destroy shuts
// the HTTP listener down along with the cache.
type engine struct {
	types.Engine
	collector *metrics.Collector
}

func (e *engine) Destroy() {
	e.Engine.Destroy()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = e.collector.Stop(ctx)
}
