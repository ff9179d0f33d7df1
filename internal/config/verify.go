package config

import "time"

// VerifyConfig configures the sidebar walk.
type VerifyConfig struct {
	Timeout      string `yaml:"timeout"`       // per lookup
	PollInterval string `yaml:"poll_interval"` // between lookups

	// Assert the component of submenu leaves as well as top-level leaves.
	VerifySubmenuComponents bool `yaml:"verify_submenu_components"`
}

// GetTimeout returns the per-lookup timeout.
func (c VerifyConfig) GetTimeout() time.Duration {
	return parseDuration(c.Timeout, 4*time.Second)
}

// GetPollInterval returns the poll interval.
func (c VerifyConfig) GetPollInterval() time.Duration {
	return parseDuration(c.PollInterval, 100*time.Millisecond)
}
