package main

import (
	"errors"
	"fmt"

	"dashnav/internal/diff"
	"dashnav/internal/nav"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	treeFile string
	treeYAML bool
)

var errTreesDiffer = errors.New("trees differ")

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the expected sidebar",
	Long: `Prints the sidebar the walk expects, either the built-in dashboard tree
or the one loaded from --tree. Use --yaml to get an editable starting point.`,
	Args: cobra.NoArgs,
	RunE: runTree,
}

var treeDiffCmd = &cobra.Command{
	Use:   "diff [old] new",
	Short: "Show how two sidebar trees differ",
	Long: `Prints a unified diff of two tree outlines. With one argument the
expected tree (built-in or --tree) is compared against it. Exits non-zero
when the trees differ.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runTreeDiff,
}

func init() {
	treeCmd.PersistentFlags().StringVar(&treeFile, "tree", "", "YAML file with the expected sidebar")
	treeCmd.Flags().BoolVar(&treeYAML, "yaml", false, "Print as YAML")
	treeCmd.AddCommand(treeDiffCmd)
}

func expectedTreePath() string {
	if treeFile == "" && cfg != nil {
		return cfg.Dashboard.TreeFile
	}
	return treeFile
}

func runTree(cmd *cobra.Command, args []string) error {
	tree, err := loadTree(expectedTreePath())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if treeYAML {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(tree); err != nil {
			return fmt.Errorf("encode tree: %w", err)
		}
		return enc.Close()
	}
	return tree.WriteOutline(out)
}

func runTreeDiff(cmd *cobra.Command, args []string) error {
	oldPath, newPath := expectedTreePath(), args[0]
	if len(args) == 2 {
		oldPath, newPath = args[0], args[1]
	}
	oldTree, err := loadTree(oldPath)
	if err != nil {
		return err
	}
	newTree, err := nav.LoadFile(newPath)
	if err != nil {
		return err
	}

	oldName := oldPath
	if oldName == "" {
		oldName = "built-in"
	}
	r := diff.Trees(oldName, newPath, oldTree, newTree)
	if err := r.WriteUnified(cmd.OutOrStdout()); err != nil {
		return err
	}
	if r.Changed() {
		return errTreesDiffer
	}
	return nil
}
