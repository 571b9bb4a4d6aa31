package tempfile

import (
	"fmt"
	"os"
)

// Env maps environment variable names for temp store configuration.
type Env struct {
	Dir string
}

// Config contains temp store configuration.
type Config struct {
	// Dir is the directory new temp files are created in.
	// Default: os.TempDir()
	Dir string `toml:"dir"`
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
	if overlay.Dir != "" {
		c.Dir = overlay.Dir
	}
}

func (c *Config) loadDefaults() {
	if c.Dir == "" {
		c.Dir = os.TempDir()
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Dir != "" {
		if v := os.Getenv(env.Dir); v != "" {
			c.Dir = v
		}
	}
}

func (c *Config) validate() error {
	if c.Dir == "" {
		return fmt.Errorf("dir required")
	}
	return nil
}
