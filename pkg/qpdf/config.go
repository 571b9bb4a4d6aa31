package qpdf

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Env maps environment variable names for engine configuration.
type Env struct {
	Binary        string
	Timeout       string
	AllowWarnings string
}

// Config contains engine invocation settings.
type Config struct {
	// Binary is the qpdf executable name or path.
	// Default: "qpdf"
	Binary string `toml:"binary"`

	// Timeout bounds a single engine invocation.
	// Default: "2m"
	Timeout string `toml:"timeout"`

	// AllowWarnings treats exit status 3 (succeeded with warnings) as success.
	AllowWarnings bool `toml:"allow_warnings"`
}

// TimeoutDuration parses and returns the invocation timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *Config) Merge(overlay *Config) {
	if overlay.Binary != "" {
		c.Binary = overlay.Binary
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.AllowWarnings {
		c.AllowWarnings = true
	}
}

func (c *Config) loadDefaults() {
	if c.Binary == "" {
		c.Binary = "qpdf"
	}
	if c.Timeout == "" {
		c.Timeout = "2m"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Binary != "" {
		if v := os.Getenv(env.Binary); v != "" {
			c.Binary = v
		}
	}
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
	if env.AllowWarnings != "" {
		if v := os.Getenv(env.AllowWarnings); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.AllowWarnings = b
			}
		}
	}
}

func (c *Config) validate() error {
	if c.Binary == "" {
		return fmt.Errorf("binary required")
	}

	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	return nil
}
