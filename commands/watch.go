package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/penwyp/go-runalyze/internal/analyzer"
	"github.com/penwyp/go-runalyze/internal/util"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [report-dir]",
	Short: "Keep yearly files in sync with saved report pages",
	Long: `Parses every saved page named like debug-YYYY.html in report-dir (default
--dir) into activities-YYYY.json, then does so again whenever a page changes.
Stop with Ctrl+C.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	reportDir := dataDir
	if len(args) == 1 {
		reportDir = expandPath(args[0])
	}

	a, err := newAnalyzer(cmd, &analyzer.Config{})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	if util.IsTerminal(os.Stdout) {
		fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", reportDir)
	}
	return a.Watch(ctx, reportDir, func(file string, err error) {
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", file, err)
			return
		}
		fmt.Fprintf(out, "%s: synced\n", file)
	})
}
