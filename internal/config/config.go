// Package config provides HCL configuration handling for iptx.
//
// The config file is optional: every field has a default derived from
// the brand identity, and a missing file simply yields the defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/hclsimple"

	"grimm.is/iptx/internal/brand"
	"grimm.is/iptx/internal/execlock"
)

// Config is the top-level iptx configuration.
type Config struct {
	Tool *ToolConfig `hcl:"tool,block"`
	Lock *LockConfig `hcl:"lock,block"`
	Log  *LogConfig  `hcl:"log,block"`
}

// ToolConfig selects the xtables binaries to wrap.
type ToolConfig struct {
	// IPv4Path and IPv6Path may be bare names (resolved via $PATH) or
	// absolute paths.
	IPv4Path string `hcl:"ipv4_path,optional"`
	IPv6Path string `hcl:"ipv6_path,optional"`
}

// LockConfig describes the advisory lock used for binaries without
// --wait support.
type LockConfig struct {
	Path string `hcl:"path,optional"`

	// Retry policy for contended acquisitions. Unbounded reproduces
	// the historical tight loop with no backoff and no attempt limit.
	MaxAttempts    int     `hcl:"max_attempts,optional"`
	InitialDelayMS int     `hcl:"initial_delay_ms,optional"`
	MaxDelayMS     int     `hcl:"max_delay_ms,optional"`
	BackoffFactor  float64 `hcl:"backoff_factor,optional"`
	NoJitter       bool    `hcl:"no_jitter,optional"`
	Unbounded      bool    `hcl:"unbounded,optional"`
}

// LogConfig controls log output.
type LogConfig struct {
	Level string `hcl:"level,optional"`
	JSON  bool   `hcl:"json,optional"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads an HCL config file and applies defaults and validation.
// A missing file is not an error; it yields Default().
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	var cfg Config
	if err := hclsimple.DecodeFile(path, nil, &cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadBytes decodes config from memory. The filename determines the
// syntax and must end in .hcl or .json.
func LoadBytes(filename string, data []byte) (*Config, error) {
	var cfg Config
	if err := hclsimple.Decode(filename, data, nil, &cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", filename, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Tool == nil {
		c.Tool = &ToolConfig{}
	}
	if c.Tool.IPv4Path == "" {
		c.Tool.IPv4Path = "iptables"
	}
	if c.Tool.IPv6Path == "" {
		c.Tool.IPv6Path = "ip6tables"
	}

	if c.Lock == nil {
		c.Lock = &LockConfig{}
	}
	if c.Lock.Path == "" {
		c.Lock.Path = brand.DefaultLockPath
	}
	def := execlock.DefaultAcquireConfig()
	if c.Lock.MaxAttempts == 0 {
		c.Lock.MaxAttempts = def.MaxAttempts
	}
	if c.Lock.InitialDelayMS == 0 {
		c.Lock.InitialDelayMS = int(def.InitialDelay / time.Millisecond)
	}
	if c.Lock.MaxDelayMS == 0 {
		c.Lock.MaxDelayMS = int(def.MaxDelay / time.Millisecond)
	}
	if c.Lock.BackoffFactor == 0 {
		c.Lock.BackoffFactor = def.BackoffFactor
	}

	if c.Log == nil {
		c.Log = &LogConfig{}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Lock.MaxAttempts < 1 {
		return fmt.Errorf("lock.max_attempts must be at least 1, got %d", c.Lock.MaxAttempts)
	}
	if c.Lock.BackoffFactor < 1 {
		return fmt.Errorf("lock.backoff_factor must be at least 1, got %g", c.Lock.BackoffFactor)
	}
	if c.Lock.InitialDelayMS < 0 || c.Lock.MaxDelayMS < 0 {
		return errors.New("lock delays must not be negative")
	}
	if c.Lock.MaxDelayMS < c.Lock.InitialDelayMS {
		return fmt.Errorf("lock.max_delay_ms (%d) must not be below lock.initial_delay_ms (%d)",
			c.Lock.MaxDelayMS, c.Lock.InitialDelayMS)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log.level %q", c.Log.Level)
	}
	return nil
}

// AcquireConfig converts the lock settings into an execlock policy.
func (c *Config) AcquireConfig() execlock.AcquireConfig {
	return execlock.AcquireConfig{
		MaxAttempts:   c.Lock.MaxAttempts,
		InitialDelay:  time.Duration(c.Lock.InitialDelayMS) * time.Millisecond,
		MaxDelay:      time.Duration(c.Lock.MaxDelayMS) * time.Millisecond,
		BackoffFactor: c.Lock.BackoffFactor,
		Jitter:        !c.Lock.NoJitter,
		Unbounded:     c.Lock.Unbounded,
	}
}
