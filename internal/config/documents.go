package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/docker/go-units"
)

const (
	EnvDocumentsMaxInputSize     = "DOCUMENTS_MAX_INPUT_SIZE"
	EnvDocumentsStrictValidation = "DOCUMENTS_STRICT_VALIDATION"
)

// DocumentsConfig controls how source and input PDFs are validated.
type DocumentsConfig struct {
	// MaxInputSize rejects larger inputs. "0" disables the limit.
	// Default: "100MB"
	MaxInputSize    string `toml:"max_input_size"`
	maxInputSizeVal int64

	// StrictValidation runs structural validation in addition to the header check.
	StrictValidation bool `toml:"strict_validation"`
}

// MaxInputSizeBytes returns the parsed input limit. Valid after Finalize.
func (c *DocumentsConfig) MaxInputSizeBytes() int64 {
	return c.maxInputSizeVal
}

// Finalize applies defaults, loads environment overrides, and validates the documents configuration.
func (c *DocumentsConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *DocumentsConfig) Merge(overlay *DocumentsConfig) {
	if size, err := units.FromHumanSize(overlay.MaxInputSize); err == nil {
		c.MaxInputSize = overlay.MaxInputSize
		c.maxInputSizeVal = size
	}
	if overlay.StrictValidation {
		c.StrictValidation = true
	}
}

func (c *DocumentsConfig) loadDefaults() {
	if c.MaxInputSize == "" {
		c.MaxInputSize = "100MB"
	}
}

func (c *DocumentsConfig) loadEnv() {
	if v := os.Getenv(EnvDocumentsMaxInputSize); v != "" {
		c.MaxInputSize = v
	}
	if v := os.Getenv(EnvDocumentsStrictValidation); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.StrictValidation = b
		}
	}
}

func (c *DocumentsConfig) validate() error {
	size, err := units.FromHumanSize(c.MaxInputSize)
	if err != nil {
		return fmt.Errorf("invalid max_input_size: %w", err)
	}
	if size < 0 {
		return fmt.Errorf("max_input_size must not be negative")
	}
	c.maxInputSizeVal = size

	return nil
}
