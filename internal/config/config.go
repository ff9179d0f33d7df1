package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"dashnav/internal/logging"

	"gopkg.in/yaml.v3"
)

// Config holds all dashnav configuration.
type Config struct {
	// Dashboard under test
	Dashboard DashboardConfig `yaml:"dashboard"`

	// Chrome / DevTools connection
	Browser BrowserConfig `yaml:"browser"`

	// Walk behaviour
	Verify VerifyConfig `yaml:"verify"`

	// DOM contract
	Selectors SelectorsConfig `yaml:"selectors"`

	// Metrics export
	Metrics MetricsConfig `yaml:"metrics"`

	// Logging
	Logging logging.Config `yaml:"logging"`
}

// DashboardConfig locates the dashboard and its expected sidebar.
type DashboardConfig struct {
	BaseURL     string `yaml:"base_url"`
	TreeFile    string `yaml:"tree_file"`    // empty = built-in tree
	FixturesDir string `yaml:"fixtures_dir"` // empty = embedded payloads
}

// MetricsConfig configures the textfile export.
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Dashboard: DashboardConfig{
			BaseURL: "https://localhost:8443/",
		},
		Browser: BrowserConfig{
			Headless:          true,
			ViewportWidth:     1920,
			ViewportHeight:    1080,
			NavigationTimeout: "30s",
		},
		Verify: VerifyConfig{
			Timeout:                 "4s",
			PollInterval:            "100ms",
			VerifySubmenuComponents: true,
		},
		Selectors: DefaultSelectors(),
		Logging: logging.Config{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file. A missing or empty file yields
// defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if u := os.Getenv("DASHNAV_URL"); u != "" {
		c.Dashboard.BaseURL = u
	}
	if u := os.Getenv("DASHNAV_DEBUGGER_URL"); u != "" {
		c.Browser.DebuggerURL = u
	}
	if v := os.Getenv("DASHNAV_HEADLESS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Browser.Headless = b
		} else {
			logging.BootWarn("ignoring DASHNAV_HEADLESS=%q: %v", v, err)
		}
	}
	if v := os.Getenv("DASHNAV_TIMEOUT"); v != "" {
		c.Verify.Timeout = v
	}
	if v := os.Getenv("DASHNAV_METRICS_FILE"); v != "" {
		c.Metrics.TextfilePath = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Dashboard.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("dashboard.base_url must be an absolute URL, got %q", c.Dashboard.BaseURL)
	}
	for name, v := range map[string]string{
		"verify.timeout":             c.Verify.Timeout,
		"verify.poll_interval":       c.Verify.PollInterval,
		"browser.navigation_timeout": c.Browser.NavigationTimeout,
	} {
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, v)
		}
	}
	if c.Browser.ViewportWidth < 0 || c.Browser.ViewportHeight < 0 {
		return fmt.Errorf("browser viewport must not be negative")
	}
	return c.Selectors.Validate()
}

func parseDuration(v string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
