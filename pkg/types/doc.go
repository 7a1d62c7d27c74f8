/*
Package types provides the core interfaces, data structures, and type definitions for cachebox.

This package serves as the foundation for the cachebox engine, defining the contracts
between components and the statistics snapshots they expose.

# Architecture Overview

cachebox follows a layered architecture with well-defined interfaces between components:

	┌─────────────────────────────────────────────┐
	│              Application                    │
	└─────────────────────────────────────────────┘
	                      │
	┌─────────────────────────────────────────────┐
	│            Cache Store Engine               │
	│            (internal/store)                 │
	└─────────────────────────────────────────────┘
	     │              │               │
	┌──────────┐  ┌───────────────┐  ┌──────────────┐
	│ Eviction │  │ Memory        │  │ Size         │
	│ Strategy │  │ Pressure      │  │ Estimator    │
	│ (internal│  │ Monitor       │  │ (internal/   │
	│ /eviction)│ │ (pkg/memmon)  │  │ sizeof)      │
	└──────────┘  └───────────────┘  └──────────────┘

The Cache interface is implemented by the store engine; MetricsRecorder is the
seam through which Prometheus metrics observe it without the engine depending
on a concrete collector.
*/
package types
