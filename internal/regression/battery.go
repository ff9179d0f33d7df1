// Package regression runs a battery of sidebar walks described in YAML,
// one per dashboard or expected tree, stopping at the first failure.
package regression

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dashnav/internal/pageobject"

	"gopkg.in/yaml.v3"
)

// Battery is a collection of sidebar walks.
type Battery struct {
	Version int    `yaml:"version"`
	Walks   []Walk `yaml:"walks"`
}

// Walk is a single sidebar walk against one dashboard.
// Empty fields fall back to the loaded configuration.
type Walk struct {
	ID                    string `yaml:"id"`
	URL                   string `yaml:"url,omitempty"`
	TreeFile              string `yaml:"tree_file,omitempty"`
	SkipSubmenuComponents bool   `yaml:"skip_submenu_components,omitempty"`
	TimeoutSec            int    `yaml:"timeout_sec,omitempty"`
}

// Result captures execution outcome for a walk.
type Result struct {
	WalkID     string
	Success    bool
	Steps      int
	Error      string
	DurationMs int64
}

// Runner performs one walk.
type Runner func(ctx context.Context, w Walk) (*pageobject.Report, error)

// LoadBattery reads a YAML battery file from disk.
func LoadBattery(path string) (*Battery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read battery: %w", err)
	}
	var b Battery
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse battery YAML: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Validate checks every walk has a unique id.
func (b *Battery) Validate() error {
	seen := make(map[string]bool, len(b.Walks))
	for i, w := range b.Walks {
		id := strings.TrimSpace(w.ID)
		if id == "" {
			return fmt.Errorf("walk %d has no id", i)
		}
		if seen[id] {
			return fmt.Errorf("duplicate walk id %q", id)
		}
		seen[id] = true
	}
	return nil
}

// RunBattery executes all walks in order.
func RunBattery(ctx context.Context, b *Battery, run Runner) ([]Result, error) {
	if b == nil || len(b.Walks) == 0 {
		return nil, nil
	}

	results := make([]Result, 0, len(b.Walks))

	for _, w := range b.Walks {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		start := time.Now()
		res := Result{WalkID: w.ID}

		timeout := time.Duration(w.TimeoutSec) * time.Second
		if timeout <= 0 {
			timeout = 5 * time.Minute
		}
		wctx, cancel := context.WithTimeout(ctx, timeout)
		report, err := run(wctx, w)
		cancel()

		if report != nil {
			res.Steps = len(report.Steps)
		}
		if err != nil {
			res.Error = err.Error()
		} else {
			res.Success = true
		}

		res.DurationMs = time.Since(start).Milliseconds()
		results = append(results, res)

		// Fail-fast on the first broken walk.
		if !res.Success {
			break
		}
	}

	return results, nil
}

// Failed returns the first failing result, if any.
func Failed(results []Result) (Result, bool) {
	for _, r := range results {
		if !r.Success {
			return r, true
		}
	}
	return Result{}, false
}

// DefaultBatteryPath returns the conventional battery path in dir.
func DefaultBatteryPath(dir string) string {
	return filepath.Join(dir, "dashnav-battery.yaml")
}
