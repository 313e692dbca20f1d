package config

import (
	"fmt"
	"os"
	"time"
)

const (
	EnvWorkbenchClassifyTimeout = "DOCROUTE_WORKBENCH_CLASSIFY_TIMEOUT"
	EnvWorkbenchSessionTTL      = "DOCROUTE_WORKBENCH_SESSION_TTL"
	EnvWorkbenchSweepInterval   = "DOCROUTE_WORKBENCH_SWEEP_INTERVAL"
	EnvWorkbenchArchive         = "DOCROUTE_WORKBENCH_ARCHIVE"
)

// WorkbenchConfig holds classification session parameters.
type WorkbenchConfig struct {
	ClassifyTimeout string `toml:"classify_timeout"`
	SessionTTL      string `toml:"session_ttl"`
	SweepInterval   string `toml:"sweep_interval"`
	Archive         bool   `toml:"archive"`
}

// ClassifyTimeoutDuration returns ClassifyTimeout as a time.Duration.
func (c *WorkbenchConfig) ClassifyTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ClassifyTimeout)
	return d
}

// SessionTTLDuration returns SessionTTL as a time.Duration.
func (c *WorkbenchConfig) SessionTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.SessionTTL)
	return d
}

// SweepIntervalDuration returns SweepInterval as a time.Duration.
func (c *WorkbenchConfig) SweepIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.SweepInterval)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *WorkbenchConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay. Archive is enabled by
// either side.
func (c *WorkbenchConfig) Merge(overlay *WorkbenchConfig) {
	if overlay.ClassifyTimeout != "" {
		c.ClassifyTimeout = overlay.ClassifyTimeout
	}
	if overlay.SessionTTL != "" {
		c.SessionTTL = overlay.SessionTTL
	}
	if overlay.SweepInterval != "" {
		c.SweepInterval = overlay.SweepInterval
	}
	if overlay.Archive {
		c.Archive = true
	}
}

func (c *WorkbenchConfig) loadDefaults() {
	if c.ClassifyTimeout == "" {
		c.ClassifyTimeout = "2m"
	}
	if c.SessionTTL == "" {
		c.SessionTTL = "1h"
	}
	if c.SweepInterval == "" {
		c.SweepInterval = "5m"
	}
}

func (c *WorkbenchConfig) loadEnv() {
	if v := os.Getenv(EnvWorkbenchClassifyTimeout); v != "" {
		c.ClassifyTimeout = v
	}
	if v := os.Getenv(EnvWorkbenchSessionTTL); v != "" {
		c.SessionTTL = v
	}
	if v := os.Getenv(EnvWorkbenchSweepInterval); v != "" {
		c.SweepInterval = v
	}
	if v := os.Getenv(EnvWorkbenchArchive); v != "" {
		c.Archive = v == "true" || v == "1"
	}
}

func (c *WorkbenchConfig) validate() error {
	for name, v := range map[string]string{
		"classify_timeout": c.ClassifyTimeout,
		"session_ttl":      c.SessionTTL,
		"sweep_interval":   c.SweepInterval,
	} {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}
