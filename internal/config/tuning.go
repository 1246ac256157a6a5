package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Sunshengjin/rmf-core/collision"
	"github.com/Sunshengjin/rmf-core/traffic"
)

// TuningConfig carries the numeric tolerances of the conflict-detection
// core. All fields are optional; fields omitted from the JSON keep their
// built-in defaults, so partial configs are safe.
type TuningConfig struct {
	// Extrema search params
	DiscriminantTolerance *float64 `json:"discriminant_tolerance,omitempty"`

	// Continuous-collision params
	ContactTolerance *float64 `json:"contact_tolerance,omitempty"`
	MaxIterations    *int     `json:"max_iterations,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields unset.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file must
// have a .json extension and stay under the maximum size.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *TuningConfig) Validate() error {
	if c.DiscriminantTolerance != nil && *c.DiscriminantTolerance <= 0 {
		return fmt.Errorf("discriminant_tolerance must be positive, got %f", *c.DiscriminantTolerance)
	}
	if c.ContactTolerance != nil && *c.ContactTolerance <= 0 {
		return fmt.Errorf("contact_tolerance must be positive, got %f", *c.ContactTolerance)
	}
	if c.MaxIterations != nil && *c.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be at least 1, got %d", *c.MaxIterations)
	}
	return nil
}

// DetectorConfig converts the tuning values into a detector configuration,
// filling unset fields with the production defaults.
func (c *TuningConfig) DetectorConfig() traffic.DetectorConfig {
	out := traffic.DefaultDetectorConfig()
	if c.DiscriminantTolerance != nil {
		out.DiscriminantTolerance = *c.DiscriminantTolerance
	}
	if c.ContactTolerance != nil {
		out.Narrowphase.ContactTolerance = *c.ContactTolerance
	}
	if c.MaxIterations != nil {
		out.Narrowphase.MaxIterations = *c.MaxIterations
	}
	return out
}

// NarrowphaseRequest converts the tuning values into a standalone
// narrowphase request.
func (c *TuningConfig) NarrowphaseRequest() collision.Request {
	req := collision.DefaultRequest()
	if c.ContactTolerance != nil {
		req.ContactTolerance = *c.ContactTolerance
	}
	if c.MaxIterations != nil {
		req.MaxIterations = *c.MaxIterations
	}
	return req
}
