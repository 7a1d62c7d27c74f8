package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/cachebox/cachebox/internal/eviction"
)

// Configuration represents the complete engine configuration
type Configuration struct {
	Global     GlobalConfig     `yaml:"global"`
	Store      StoreConfig      `yaml:"store"`
	Memory     MemoryConfig     `yaml:"memory"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
}

// GlobalConfig represents global settings
type GlobalConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// StoreConfig represents cache store settings
type StoreConfig struct {
	MaxEntries      int           `yaml:"max_entries"`
	MaxSize         string        `yaml:"max_size"`
	EvictionPolicy  string        `yaml:"eviction_policy"`
	DefaultTTL      time.Duration `yaml:"default_ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`

	// MaxEvictionRatio caps how much of the table a single set may evict;
	// SevereEvictionRatio applies instead at high or critical pressure
	MaxEvictionRatio    float64 `yaml:"max_eviction_ratio"`
	SevereEvictionRatio float64 `yaml:"severe_eviction_ratio"`

	// EntryPoolSize bounds the idle entry-object pool
	EntryPoolSize int `yaml:"entry_pool_size"`
}

// MemoryConfig represents pressure monitor settings
type MemoryConfig struct {
	Limit             string        `yaml:"limit"`
	MediumWatermark   float64       `yaml:"medium_watermark"`
	HighWatermark     float64       `yaml:"high_watermark"`
	CriticalWatermark float64       `yaml:"critical_watermark"`
	CleanupCooldown   time.Duration `yaml:"cleanup_cooldown"`
	AutoRespond       bool          `yaml:"auto_respond"`
	DrainThreshold    int           `yaml:"drain_threshold"`
	GCOnCleanup       bool          `yaml:"gc_on_cleanup"`
	ProfileDir        string        `yaml:"profile_dir"`
}

// MonitoringConfig represents metrics endpoint settings
type MonitoringConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Port      int    `yaml:"port"`
	Path      string `yaml:"path"`
	Namespace string `yaml:"namespace"`
}

// NewDefault returns a configuration with sensible defaults. The pressure
// watermarks and eviction-ratio caps are tunables, not derived constants.
func NewDefault() *Configuration {
	return &Configuration{
		Global: GlobalConfig{
			LogLevel:  "INFO",
			LogFormat: "text",
		},
		Store: StoreConfig{
			MaxEntries:          10000,
			MaxSize:             "64MB",
			EvictionPolicy:      "lru",
			DefaultTTL:          0,
			CleanupInterval:     time.Minute,
			MaxEvictionRatio:    0.30,
			SevereEvictionRatio: 0.50,
			EntryPoolSize:       256,
		},
		Memory: MemoryConfig{
			Limit:             "64MB",
			MediumWatermark:   0.60,
			HighWatermark:     0.80,
			CriticalWatermark: 0.95,
			CleanupCooldown:   30 * time.Second,
			AutoRespond:       true,
			DrainThreshold:    16,
			GCOnCleanup:       true,
		},
		Monitoring: MonitoringConfig{
			Enabled:   false,
			Port:      9180,
			Path:      "/metrics",
			Namespace: "cachebox",
		},
	}
}

// LoadFromFile loads configuration from a YAML file
func (c *Configuration) LoadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// LoadFromEnv loads configuration overrides from environment variables
func (c *Configuration) LoadFromEnv() error {
	if val := os.Getenv("CACHEBOX_LOG_LEVEL"); val != "" {
		c.Global.LogLevel = val
	}
	if val := os.Getenv("CACHEBOX_LOG_FORMAT"); val != "" {
		c.Global.LogFormat = val
	}

	if val := os.Getenv("CACHEBOX_MAX_ENTRIES"); val != "" {
		if entries, err := strconv.Atoi(val); err == nil {
			c.Store.MaxEntries = entries
		}
	}
	if val := os.Getenv("CACHEBOX_MAX_SIZE"); val != "" {
		c.Store.MaxSize = val
	}
	if val := os.Getenv("CACHEBOX_EVICTION_POLICY"); val != "" {
		c.Store.EvictionPolicy = val
	}
	if val := os.Getenv("CACHEBOX_DEFAULT_TTL"); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			c.Store.DefaultTTL = duration
		}
	}
	if val := os.Getenv("CACHEBOX_CLEANUP_INTERVAL"); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			c.Store.CleanupInterval = duration
		}
	}

	if val := os.Getenv("CACHEBOX_MEMORY_LIMIT"); val != "" {
		c.Memory.Limit = val
	}
	if val := os.Getenv("CACHEBOX_METRICS_ENABLED"); val != "" {
		c.Monitoring.Enabled = strings.ToLower(val) == "true"
	}
	if val := os.Getenv("CACHEBOX_METRICS_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.Monitoring.Port = port
		}
	}

	return nil
}

// SaveToFile saves the configuration to a YAML file
func (c *Configuration) SaveToFile(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Configuration) Validate() error {
	if c.Store.MaxEntries <= 0 {
		return fmt.Errorf("max_entries must be greater than 0")
	}

	if _, err := ParseSize(c.Store.MaxSize); err != nil {
		return fmt.Errorf("invalid max_size: %w", err)
	}

	if _, err := ParseSize(c.Memory.Limit); err != nil {
		return fmt.Errorf("invalid memory limit: %w", err)
	}

	if !eviction.IsValid(c.Store.EvictionPolicy) {
		return fmt.Errorf("invalid eviction_policy: %s (must be one of: %s)",
			c.Store.EvictionPolicy, strings.Join(eviction.Names(), ", "))
	}

	if c.Store.MaxEvictionRatio <= 0 || c.Store.MaxEvictionRatio > 1 {
		return fmt.Errorf("max_eviction_ratio must be in (0, 1]")
	}
	if c.Store.SevereEvictionRatio < c.Store.MaxEvictionRatio || c.Store.SevereEvictionRatio > 1 {
		return fmt.Errorf("severe_eviction_ratio must be in [max_eviction_ratio, 1]")
	}

	if !(c.Memory.MediumWatermark < c.Memory.HighWatermark &&
		c.Memory.HighWatermark < c.Memory.CriticalWatermark) {
		return fmt.Errorf("memory watermarks must be strictly increasing")
	}
	if c.Memory.MediumWatermark <= 0 || c.Memory.CriticalWatermark > 1 {
		return fmt.Errorf("memory watermarks must be in (0, 1]")
	}

	validLogLevels := []string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR", "FATAL"}
	logLevelValid := false
	for _, level := range validLogLevels {
		if strings.ToUpper(c.Global.LogLevel) == level {
			logLevelValid = true
			break
		}
	}
	if !logLevelValid {
		return fmt.Errorf("invalid log_level: %s (must be one of: %s)",
			c.Global.LogLevel, strings.Join(validLogLevels, ", "))
	}

	return nil
}

// MaxSizeBytes returns the store byte budget
func (c *Configuration) MaxSizeBytes() int64 {
	size, _ := ParseSize(c.Store.MaxSize)
	return size
}

// MemoryLimitBytes returns the pressure monitor ceiling
func (c *Configuration) MemoryLimitBytes() int64 {
	size, _ := ParseSize(c.Memory.Limit)
	return size
}

// ParseSize converts human-readable sizes like "64MB" or "2GB" to bytes.
// Bare numbers are taken as bytes.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}

	multiplier := int64(1)
	switch {
	case strings.HasSuffix(s, "TB"):
		multiplier = 1 << 40
		s = strings.TrimSuffix(s, "TB")
	case strings.HasSuffix(s, "GB"):
		multiplier = 1 << 30
		s = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1 << 20
		s = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1 << 10
		s = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		s = strings.TrimSuffix(s, "B")
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value: %q", s)
	}
	if value < 0 {
		return 0, fmt.Errorf("size cannot be negative")
	}

	return int64(value * float64(multiplier)), nil
}
