// Package main implements the dashnav CLI.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"dashnav/internal/config"
	"dashnav/internal/logging"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	// Global flags
	verbose    bool
	configPath string
	envFile    string
	timeout    time.Duration

	// Logger
	logger *zap.Logger

	// Loaded configuration
	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "dashnav",
	Short: "dashnav - storage dashboard sidebar verification",
	Long: `dashnav drives a headless browser through the navigation sidebar of the
storage dashboard, clicking every entry in order and checking that the
expected component renders.

Status endpoints the dashboard polls on load are answered from bundled
fixtures so the walk does not depend on those backends.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadEnvFile(envFile); err != nil {
			return err
		}

		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if verbose {
			loaded.Logging.Level = "debug"
		}
		if err := logging.Initialize(loaded.Logging); err != nil {
			return err
		}
		cfg = loaded
		logger = logging.Root()
		logger.Debug("configuration loaded", zap.String("path", configPath))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the dashnav version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "dashnav %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "dashnav.yaml", "Config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file loaded before config")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Minute, "Overall operation timeout")

	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(fixturesCmd)
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadEnvFile loads path into the environment without overriding variables
// already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}
