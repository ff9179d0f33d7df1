package main

import (
	"fmt"
	"text/tabwriter"

	"dashnav/internal/fixtures"
	"dashnav/internal/logging"

	"github.com/spf13/cobra"
)

var fixturesCmd = &cobra.Command{
	Use:   "fixtures",
	Short: "List the status fixtures served during a walk",
	Args:  cobra.NoArgs,
	RunE:  runFixturesList,
}

var fixturesDumpCmd = &cobra.Command{
	Use:   "dump [dir]",
	Short: "Write the fixture payloads to a directory for editing",
	Long: `Writes every status payload into dir under its fixture file name.
Point dashboard.fixtures_dir at the directory to use the edited payloads.`,
	Args: cobra.ExactArgs(1),
	RunE: runFixturesDump,
}

func init() {
	fixturesCmd.AddCommand(fixturesDumpCmd)
}

func loadStubs() ([]fixtures.Stub, error) {
	dir := ""
	if cfg != nil {
		dir = cfg.Dashboard.FixturesDir
	}
	return fixtures.Load(dir)
}

func runFixturesList(cmd *cobra.Command, args []string) error {
	stubs, err := loadStubs()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPATH\tFILE\tSTATUS\tBYTES")
	for _, s := range stubs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", s.Name, s.Path, s.File, s.Status, len(s.Body))
	}
	return tw.Flush()
}

func runFixturesDump(cmd *cobra.Command, args []string) error {
	stubs, err := loadStubs()
	if err != nil {
		return err
	}
	if err := fixtures.Dump(args[0], stubs); err != nil {
		return err
	}
	logging.Get(logging.CategoryFixtures).Info("wrote %d fixtures to %s", len(stubs), args[0])
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d fixtures to %s\n", len(stubs), args[0])
	return nil
}
