package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"dashnav/internal/browser"
	"dashnav/internal/config"
	"dashnav/internal/fixtures"
	"dashnav/internal/logging"
	"dashnav/internal/metrics"
	"dashnav/internal/nav"
	"dashnav/internal/pageobject"
	"dashnav/internal/regression"
	"dashnav/internal/wait"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verifyURL         string
	verifyTree        string
	verifyNoSubmenu   bool
	verifyMetricsFile string
	verifyBattery     string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Walk the dashboard sidebar and check every entry",
	Long: `Opens the dashboard landing page, registers the status fixtures, then
clicks every sidebar entry in order. Leaves must render their component;
branches must expose every child inside their own submenu.

The first failing entry aborts the walk and the command exits non-zero.`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().StringVar(&verifyURL, "url", "", "Dashboard base URL (overrides config)")
	verifyCmd.Flags().StringVar(&verifyTree, "tree", "", "YAML file with the expected sidebar")
	verifyCmd.Flags().BoolVar(&verifyNoSubmenu, "no-submenu-check", false, "Click submenu entries without asserting their component")
	verifyCmd.Flags().StringVar(&verifyMetricsFile, "metrics-file", "", "Write run metrics in Prometheus text format")
	verifyCmd.Flags().StringVar(&verifyBattery, "battery", "", "YAML battery of walks to run instead of a single walk (default ./dashnav-battery.yaml when present)")
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	applyVerifyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	tree, err := loadTree(cfg.Dashboard.TreeFile)
	if err != nil {
		return err
	}
	stubs, err := fixtures.Load(cfg.Dashboard.FixturesDir)
	if err != nil {
		return err
	}

	rec := metrics.NewRecorder()
	mgr := browser.NewSessionManager(browserConfig(cfg))
	if err := mgr.Start(ctx); err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer func() {
		if err := mgr.Shutdown(context.Background()); err != nil {
			logger.Warn("browser shutdown", zap.Error(err))
		}
	}()

	var walkErr error
	if path := batteryPath(verifyBattery, "."); path != "" {
		logger.Info("running battery", zap.String("path", path))
		walkErr = runBatteryWalks(ctx, cmd.OutOrStdout(), path, mgr, rec, stubs)
	} else {
		var report *pageobject.Report
		report, walkErr = walk(ctx, mgr, cfg, tree, stubs, rec)
		if report != nil {
			if err := report.WriteText(cmd.OutOrStdout()); err != nil {
				return err
			}
		}
	}
	if err := writeMetrics(rec, cfg.Metrics.TextfilePath); err != nil {
		return err
	}
	return walkErr
}

// walk opens a fresh page and verifies tree against the dashboard in c.
func walk(ctx context.Context, mgr *browser.SessionManager, c *config.Config, tree nav.Tree, stubs []fixtures.Stub, rec *metrics.Recorder) (*pageobject.Report, error) {
	page, err := mgr.OpenPage(ctx, c.Dashboard.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer func() {
		if err := mgr.ClosePage(page.Session().ID); err != nil {
			logger.Debug("close page", zap.Error(err))
		}
	}()
	page.OnIntercept(func(s fixtures.Stub) { rec.RecordInterceptHit(s.Name) })

	helper := pageobject.NewNavigationHelper(page, helperOptions(c, stubs, rec))

	// The landing page polls the status endpoints as soon as it loads.
	if err := page.Intercept(ctx, stubs); err != nil {
		return nil, fmt.Errorf("failed to register intercepts: %w", err)
	}
	if err := helper.Visit(ctx, "index"); err != nil {
		return nil, err
	}

	logger.Info("Walking sidebar",
		zap.String("url", c.Dashboard.BaseURL),
		zap.Int("entries", len(tree)))
	timer := logging.StartTimer(logging.CategoryNavigation, "verify")
	defer timer.Stop()
	return helper.VerifyNavigations(ctx, tree)
}

// batteryPath returns the battery to run: the flag value, or the
// conventional file in dir when it exists. Empty means a single walk.
func batteryPath(flag, dir string) string {
	if flag != "" {
		return flag
	}
	path := regression.DefaultBatteryPath(dir)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func runBatteryWalks(ctx context.Context, out io.Writer, path string, mgr *browser.SessionManager, rec *metrics.Recorder, stubs []fixtures.Stub) error {
	b, err := regression.LoadBattery(path)
	if err != nil {
		return err
	}

	results, err := regression.RunBattery(ctx, b, func(ctx context.Context, w regression.Walk) (*pageobject.Report, error) {
		wc := *cfg
		if w.URL != "" {
			wc.Dashboard.BaseURL = w.URL
		}
		if w.TreeFile != "" {
			wc.Dashboard.TreeFile = w.TreeFile
		}
		if w.SkipSubmenuComponents {
			wc.Verify.VerifySubmenuComponents = false
		}
		tree, err := loadTree(wc.Dashboard.TreeFile)
		if err != nil {
			return nil, err
		}
		report, err := walk(ctx, mgr, &wc, tree, stubs, rec)
		if report != nil {
			fmt.Fprintf(out, "== %s (%s)\n", w.ID, wc.Dashboard.BaseURL)
			if werr := report.WriteText(out); werr != nil {
				return report, werr
			}
		}
		return report, err
	})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WALK\tRESULT\tSTEPS\tDURATION")
	for _, r := range results {
		result := "ok"
		if !r.Success {
			result = "FAIL"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%dms\n", r.WalkID, result, r.Steps, r.DurationMs)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if r, failed := regression.Failed(results); failed {
		return fmt.Errorf("walk %s failed: %s", r.WalkID, r.Error)
	}
	return nil
}

func applyVerifyFlags(c *config.Config) {
	if verifyURL != "" {
		c.Dashboard.BaseURL = verifyURL
	}
	if verifyTree != "" {
		c.Dashboard.TreeFile = verifyTree
	}
	if verifyNoSubmenu {
		c.Verify.VerifySubmenuComponents = false
	}
	if verifyMetricsFile != "" {
		c.Metrics.TextfilePath = verifyMetricsFile
	}
}

func loadTree(path string) (nav.Tree, error) {
	if path == "" {
		return nav.DashboardTree(), nil
	}
	return nav.LoadFile(path)
}

func browserConfig(c *config.Config) browser.Config {
	return browser.Config{
		DebuggerURL:       c.Browser.DebuggerURL,
		Launch:            c.Browser.Launch,
		Headless:          c.Browser.Headless,
		ViewportWidth:     c.Browser.ViewportWidth,
		ViewportHeight:    c.Browser.ViewportHeight,
		NavigationTimeout: c.Browser.GetNavigationTimeout(),
	}
}

func helperOptions(c *config.Config, stubs []fixtures.Stub, rec *metrics.Recorder) pageobject.Options {
	return pageobject.Options{
		BaseURL:   c.Dashboard.BaseURL,
		Selectors: c.Selectors,
		Wait: wait.Options{
			Timeout:  c.Verify.GetTimeout(),
			Interval: c.Verify.GetPollInterval(),
		},
		Stubs:                 stubs,
		SkipSubmenuComponents: !c.Verify.VerifySubmenuComponents,
		Metrics:               rec,
	}
}

func writeMetrics(rec *metrics.Recorder, path string) error {
	if path == "" {
		return nil
	}
	if err := rec.WriteTextfile(path); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	logging.Get(logging.CategoryMetrics).Debug("wrote metrics to %s", path)
	return nil
}
