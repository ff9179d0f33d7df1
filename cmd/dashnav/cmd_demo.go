package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dashnav/internal/demo"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	demoAddr        string
	demoTree        string
	demoStatusDelay time.Duration
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Serve a mock dashboard with the expected sidebar",
	Long: `Serves a small dashboard whose sidebar follows the same DOM contract as
the real one, rendering each entry's component when clicked. Point verify
at it to try the walk without a cluster:

  dashnav demo --addr 127.0.0.1:8080 &
  dashnav verify --url http://127.0.0.1:8080/`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

func init() {
	demoCmd.Flags().StringVar(&demoAddr, "addr", "127.0.0.1:8080", "Listen address")
	demoCmd.Flags().StringVar(&demoTree, "tree", "", "YAML file with the sidebar to serve")
	demoCmd.Flags().DurationVar(&demoStatusDelay, "status-delay", 0, "Delay real status responses")
}

func runDemo(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	path := demoTree
	if path == "" && cfg != nil {
		path = cfg.Dashboard.TreeFile
	}
	tree, err := loadTree(path)
	if err != nil {
		return err
	}
	stubs, err := loadStubs()
	if err != nil {
		return err
	}

	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	srv, err := demo.New(tree, demo.Options{StatusDelay: demoStatusDelay, Stubs: stubs})
	if err != nil {
		return err
	}
	logger.Info("Starting demo dashboard", zap.String("addr", demoAddr))
	return srv.ListenAndServe(ctx, demoAddr)
}
