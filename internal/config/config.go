// Package config holds dsstar's YAML configuration, adapted from the
// teacher's internal/config.Config: DefaultConfig/Load/Save/applyEnvOverrides
// (SPEC_FULL.md §10 "Configuration"), trimmed to the settings the
// orchestrator, smoke harness, and CLI actually consume.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all dsstar configuration.
type Config struct {
	MaxIters        int    `yaml:"max_iters"`
	ModelTimeout    string `yaml:"model_timeout"`
	ModelBaseURL    string `yaml:"model_base_url"`
	ArtifactStoreRoot string `yaml:"artifact_store_root"`
	DebugMode       bool   `yaml:"debug_mode"`
	LogLevel        string `yaml:"log_level"`

	Browser BrowserConfig `yaml:"browser"`
}

// BrowserConfig mirrors the subset of the teacher's browser.Config the smoke
// harness needs.
type BrowserConfig struct {
	Headless            bool `yaml:"headless"`
	ViewportWidth        int  `yaml:"viewport_width"`
	ViewportHeight       int  `yaml:"viewport_height"`
	NavigationTimeoutMs  int  `yaml:"navigation_timeout_ms"`
	SettleTimeMs         int  `yaml:"settle_time_ms"`
}

// DefaultConfig returns dsstar's default configuration, matching §3's
// MaxIters default (8, bounds 1..10) and §5's default per-call model
// deadline (~120s).
func DefaultConfig() *Config {
	return &Config{
		MaxIters:          8,
		ModelTimeout:       "120s",
		ModelBaseURL:       "http://localhost:8090/api/model",
		ArtifactStoreRoot:  ".dsstar/runs",
		DebugMode:          false,
		LogLevel:           "info",
		Browser: BrowserConfig{
			Headless:           true,
			ViewportWidth:      1280,
			ViewportHeight:     800,
			NavigationTimeoutMs: 30000,
			SettleTimeMs:       1500,
		},
	}
}

// Load reads YAML config from path, falling back to DefaultConfig (with env
// overrides applied) if the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes cfg to path as YAML, creating parent directories as needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// applyEnvOverrides mirrors the teacher's env-override convention.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DSSTAR_MAX_ITERS"); v != "" {
		if n, err := parseBoundedInt(v, 1, 10); err == nil {
			c.MaxIters = n
		}
	}
	if v := os.Getenv("DSSTAR_MODEL_BASE_URL"); v != "" {
		c.ModelBaseURL = v
	}
	if v := os.Getenv("DSSTAR_DEBUG"); v == "true" || v == "1" {
		c.DebugMode = true
	}
}

func parseBoundedInt(s string, min, max int) (int, error) {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0, err
	}
	if n < min {
		n = min
	}
	if n > max {
		n = max
	}
	return n, nil
}

// GetModelTimeout returns the per-call model deadline as a duration,
// falling back to 120s on a malformed value.
func (c *Config) GetModelTimeout() time.Duration {
	d, err := time.ParseDuration(c.ModelTimeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// ClampMaxIters enforces the 1..10 bound from §3, defaulting to 8.
func ClampMaxIters(requested int) int {
	if requested <= 0 {
		return 8
	}
	if requested > 10 {
		return 10
	}
	return requested
}
