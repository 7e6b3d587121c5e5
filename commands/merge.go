package commands

import (
	"fmt"

	"github.com/penwyp/go-runalyze/internal/analyzer"
	"github.com/spf13/cobra"
)

var mergeOut string

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge all yearly files into all_activities.json",
	Args:  cobra.NoArgs,
	RunE:  runMerge,
}

func init() {
	rootCmd.AddCommand(mergeCmd)

	mergeCmd.Flags().StringVar(&mergeOut, "out", "",
		"Output file (default <dir>/all_activities.json)")
}

func runMerge(cmd *cobra.Command, args []string) error {
	a, err := newAnalyzer(cmd, &analyzer.Config{})
	if err != nil {
		return err
	}

	out := mergeOut
	if out != "" {
		out = expandPath(out)
	}
	path, n, err := a.Merge(out)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Merged %d activities into %s\n", n, path)
	return nil
}
