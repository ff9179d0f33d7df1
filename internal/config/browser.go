package config

import "time"

// BrowserConfig configures how Chrome is reached.
type BrowserConfig struct {
	DebuggerURL       string   `yaml:"debugger_url"` // connect instead of launching
	Launch            []string `yaml:"launch"`       // binary followed by flags
	Headless          bool     `yaml:"headless"`
	ViewportWidth     int      `yaml:"viewport_width"`
	ViewportHeight    int      `yaml:"viewport_height"`
	NavigationTimeout string   `yaml:"navigation_timeout"`
}

// GetNavigationTimeout returns the navigation timeout as a duration.
func (c BrowserConfig) GetNavigationTimeout() time.Duration {
	return parseDuration(c.NavigationTimeout, 30*time.Second)
}
