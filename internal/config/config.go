// Package config loads boxscan runtime configuration. The schema mirrors
// the /api/config endpoint so the same JSON serves startup configuration
// and inspection.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// Config is the root runtime configuration. All fields are optional in
// the JSON file; the Get* accessors supply defaults, so partial configs
// are safe.
type Config struct {
	// Report delivery
	ReportURL     *string `json:"report_url,omitempty"`
	ReportTimeout *string `json:"report_timeout,omitempty"` // duration string like "10s"

	// API server
	Listen *string `json:"listen,omitempty"`

	// Measurement history store
	DBPath *string `json:"db_path,omitempty"`

	// Simulated detector
	SimBoxWidth       *float64 `json:"sim_box_width,omitempty"`
	SimBoxHeight      *float64 `json:"sim_box_height,omitempty"`
	SimBoxLength      *float64 `json:"sim_box_length,omitempty"`
	SimNoiseSigma     *float64 `json:"sim_noise_sigma,omitempty"`
	SimRefineInterval *string  `json:"sim_refine_interval,omitempty"` // duration string like "250ms"
	SimSeed           *uint64  `json:"sim_seed,omitempty"`
}

// Empty returns a Config with every field unset.
func Empty() *Config {
	return &Config{}
}

// Load reads a Config from a JSON file. The path must carry a .json
// extension and stay under the size cap.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks field values without applying defaults.
func (c *Config) Validate() error {
	if c.ReportURL != nil && *c.ReportURL != "" {
		u, err := url.Parse(*c.ReportURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("report_url %q is not an absolute URL", *c.ReportURL)
		}
	}
	if c.ReportTimeout != nil && *c.ReportTimeout != "" {
		if _, err := time.ParseDuration(*c.ReportTimeout); err != nil {
			return fmt.Errorf("invalid report_timeout %q: %w", *c.ReportTimeout, err)
		}
	}
	if c.SimRefineInterval != nil && *c.SimRefineInterval != "" {
		if _, err := time.ParseDuration(*c.SimRefineInterval); err != nil {
			return fmt.Errorf("invalid sim_refine_interval %q: %w", *c.SimRefineInterval, err)
		}
	}
	for name, dim := range map[string]*float64{
		"sim_box_width":  c.SimBoxWidth,
		"sim_box_height": c.SimBoxHeight,
		"sim_box_length": c.SimBoxLength,
	} {
		if dim != nil && *dim <= 0 {
			return fmt.Errorf("%s must be positive, got %f", name, *dim)
		}
	}
	if c.SimNoiseSigma != nil && *c.SimNoiseSigma < 0 {
		return fmt.Errorf("sim_noise_sigma must be non-negative, got %f", *c.SimNoiseSigma)
	}
	return nil
}

// GetReportURL returns the collector endpoint or the default.
func (c *Config) GetReportURL() string {
	if c.ReportURL == nil || *c.ReportURL == "" {
		return "http://localhost:9090/api/boxes"
	}
	return *c.ReportURL
}

// GetReportTimeout parses the report timeout or returns the default.
func (c *Config) GetReportTimeout() time.Duration {
	if c.ReportTimeout == nil || *c.ReportTimeout == "" {
		return 10 * time.Second
	}
	d, err := time.ParseDuration(*c.ReportTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// GetListen returns the API listen address or the default.
func (c *Config) GetListen() string {
	if c.Listen == nil || *c.Listen == "" {
		return ":8080"
	}
	return *c.Listen
}

// GetDBPath returns the sqlite path or the default.
func (c *Config) GetDBPath() string {
	if c.DBPath == nil || *c.DBPath == "" {
		return "boxscan.db"
	}
	return *c.DBPath
}

// GetSimBoxWidth returns the simulated box width or the default.
func (c *Config) GetSimBoxWidth() float64 {
	if c.SimBoxWidth == nil {
		return 0.3
	}
	return *c.SimBoxWidth
}

// GetSimBoxHeight returns the simulated box height or the default.
func (c *Config) GetSimBoxHeight() float64 {
	if c.SimBoxHeight == nil {
		return 0.2
	}
	return *c.SimBoxHeight
}

// GetSimBoxLength returns the simulated box length or the default.
func (c *Config) GetSimBoxLength() float64 {
	if c.SimBoxLength == nil {
		return 0.45
	}
	return *c.SimBoxLength
}

// GetSimNoiseSigma returns the simulated extent noise or the default.
func (c *Config) GetSimNoiseSigma() float64 {
	if c.SimNoiseSigma == nil {
		return 0.01
	}
	return *c.SimNoiseSigma
}

// GetSimRefineInterval parses the refine interval or returns the default.
func (c *Config) GetSimRefineInterval() time.Duration {
	if c.SimRefineInterval == nil || *c.SimRefineInterval == "" {
		return 250 * time.Millisecond
	}
	d, err := time.ParseDuration(*c.SimRefineInterval)
	if err != nil {
		return 250 * time.Millisecond
	}
	return d
}

// GetSimSeed returns the noise seed; zero means seed randomly.
func (c *Config) GetSimSeed() uint64 {
	if c.SimSeed == nil {
		return 0
	}
	return *c.SimSeed
}
