/*
Package config provides YAML-backed configuration for the cache engine.

Configuration is loaded in layers: NewDefault supplies working defaults,
LoadFromFile overlays a YAML file, and LoadFromEnv overlays CACHEBOX_*
environment variables. Validate should run after all layers.

	cfg := config.NewDefault()
	if err := cfg.LoadFromFile("cachebox.yaml"); err != nil { ... }
	if err := cfg.LoadFromEnv(); err != nil { ... }
	if err := cfg.Validate(); err != nil { ... }

Byte budgets accept human-readable sizes ("512KB", "64MB", "2GB"). The
pressure watermarks (0.60/0.80/0.95) and eviction-ratio caps (0.30/0.50)
default to the engine's standard tuning but are plain tunables.
*/
package config
