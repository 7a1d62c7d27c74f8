package metrics

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cachebox/cachebox/pkg/utils"
)

// Collector exposes engine activity as Prometheus metrics. It implements
// types.MetricsRecorder; a disabled collector is a cheap no-op so the store
// can always hold one.
type Collector struct {
	config   *Config
	registry *prometheus.Registry

	hitCounter      prometheus.Counter
	missCounter     prometheus.Counter
	evictionCounter *prometheus.CounterVec
	cleanupCounter  prometheus.Counter
	expiredCounter  prometheus.Counter

	itemsGauge    prometheus.Gauge
	sizeGauge     prometheus.Gauge
	pressureGauge prometheus.Gauge

	operationDuration *prometheus.HistogramVec

	logger *utils.Logger
	server *http.Server
}

// Config represents metrics configuration
type Config struct {
	Enabled   bool   `yaml:"enabled"`
	Port      int    `yaml:"port"`
	Path      string `yaml:"path"`
	Namespace string `yaml:"namespace"`
}

// NewCollector creates a new metrics collector
func NewCollector(config *Config) (*Collector, error) {
	if config == nil {
		config = &Config{
			Enabled:   true,
			Port:      9180,
			Path:      "/metrics",
			Namespace: "cachebox",
		}
	}

	if !config.Enabled {
		return &Collector{config: config}, nil
	}

	collector := &Collector{
		config:   config,
		registry: prometheus.NewRegistry(),
		logger:   utils.NewLogger(utils.WARN, os.Stderr),
	}

	if err := collector.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	return collector, nil
}

func (c *Collector) initMetrics() error {
	ns := c.config.Namespace

	c.hitCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "hits_total",
		Help:      "Total number of cache hits",
	})
	c.missCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "misses_total",
		Help:      "Total number of cache misses",
	})
	c.evictionCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "evictions_total",
		Help:      "Total number of capacity evictions by strategy",
	}, []string{"strategy"})
	c.cleanupCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "cleanup_runs_total",
		Help:      "Total number of expiry sweep runs",
	})
	c.expiredCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "expired_total",
		Help:      "Total number of entries removed by expiry",
	})

	c.itemsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: ns,
		Name:      "items",
		Help:      "Current number of live cache entries",
	})
	c.sizeGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: ns,
		Name:      "size_bytes",
		Help:      "Current estimated byte usage of live entries",
	})
	c.pressureGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: ns,
		Name:      "memory_pressure_level",
		Help:      "Current memory pressure level (0=low 1=medium 2=high 3=critical)",
	})

	c.operationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: ns,
		Name:      "operation_duration_seconds",
		Help:      "Duration of cache operations",
		Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
	}, []string{"operation"})

	collectors := []prometheus.Collector{
		c.hitCounter, c.missCounter, c.evictionCounter, c.cleanupCounter,
		c.expiredCounter, c.itemsGauge, c.sizeGauge, c.pressureGauge,
		c.operationDuration,
	}
	for _, collector := range collectors {
		if err := c.registry.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

// Start starts the metrics HTTP endpoint
func (c *Collector) Start(ctx context.Context) error {
	if !c.config.Enabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(c.config.Path, promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))

	c.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", c.config.Port),
		Handler:           mux,
		ReadHeaderTimeout: 30 * time.Second, // Prevent Slowloris attacks
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		if err := c.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			c.logger.Error("metrics server error: %v", err)
		}
	}()

	return nil
}

// Stop stops the metrics HTTP endpoint
func (c *Collector) Stop(ctx context.Context) error {
	if c.server != nil {
		return c.server.Shutdown(ctx)
	}
	return nil
}

// Registry exposes the underlying registry for embedding in a host process
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordOperation records the duration of a cache operation
func (c *Collector) RecordOperation(operation string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.operationDuration.With(prometheus.Labels{"operation": operation}).Observe(duration.Seconds())
}

// RecordHit records a cache hit
func (c *Collector) RecordHit() {
	if !c.config.Enabled {
		return
	}
	c.hitCounter.Inc()
}

// RecordMiss records a cache miss
func (c *Collector) RecordMiss() {
	if !c.config.Enabled {
		return
	}
	c.missCounter.Inc()
}

// RecordEviction records a capacity eviction under the given strategy
func (c *Collector) RecordEviction(strategy string) {
	if !c.config.Enabled {
		return
	}
	c.evictionCounter.With(prometheus.Labels{"strategy": strategy}).Inc()
}

// RecordCleanup records an expiry sweep and how many entries it removed
func (c *Collector) RecordCleanup(removed int) {
	if !c.config.Enabled {
		return
	}
	c.cleanupCounter.Inc()
	c.expiredCounter.Add(float64(removed))
}

// SetItems updates the live entry count gauge
func (c *Collector) SetItems(count int) {
	if !c.config.Enabled {
		return
	}
	c.itemsGauge.Set(float64(count))
}

// SetSizeBytes updates the byte usage gauge
func (c *Collector) SetSizeBytes(bytes int64) {
	if !c.config.Enabled {
		return
	}
	c.sizeGauge.Set(float64(bytes))
}

// SetPressureLevel updates the pressure level gauge
func (c *Collector) SetPressureLevel(level int) {
	if !c.config.Enabled {
		return
	}
	c.pressureGauge.Set(float64(level))
}
