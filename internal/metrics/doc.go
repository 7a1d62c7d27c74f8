/*
Package metrics exposes engine activity through Prometheus.

The Collector owns a private registry and implements types.MetricsRecorder,
so the store and monitor observe into it without depending on Prometheus
types. Start serves the registry over promhttp on the configured port;
embedding hosts can instead pull Registry() into their own mux.

Metric families, all under the configured namespace: hits_total,
misses_total, evictions_total{strategy}, cleanup_runs_total, expired_total,
items, size_bytes, memory_pressure_level, operation_duration_seconds{operation}.
*/
package metrics
