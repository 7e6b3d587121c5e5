package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/penwyp/go-runalyze/internal/analyzer"
	"github.com/penwyp/go-runalyze/internal/core/model"
	"github.com/penwyp/go-runalyze/internal/util"
	"github.com/spf13/cobra"
)

var (
	// Logging related
	debug bool

	// Data path
	dataDir string

	// Output related
	outputFormat string
	outFile      string
	timezone     string

	// Rollup
	duration string
	field    string
	reduce   string
	groupBy  string

	rootCmd = &cobra.Command{
		Use:   "go-runalyze [flags]",
		Short: "Runalyze activity export and rollup tool",
		Long: `go-runalyze downloads the Runalyze data browser for each year, converts the
activity table into canonical values (meters, seconds, fractions, Celsius)
and keeps one activities-YYYY.json file per year.

Without a subcommand it rolls a field up per day over every yearly file.

Examples:
  go-runalyze fetch --from-year 2016                 # Download missing or stale years
  go-runalyze                                        # Daily distance over all years
  go-runalyze --group-by week --duration 3m          # Weekly distance of the last 3 months
  go-runalyze --field Duration --reduce max          # Longest activity per day
  go-runalyze --group-by month --output xlsx --out rollup.xlsx
  go-runalyze parse debug-2024.html                  # Extract a saved page as JSON
  go-runalyze merge                                  # Write all_activities.json`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		RunE:              runRollup,
	}
)

const (
	defaultLogFile = "~/.go-runalyze/logs/app.log"
	defaultDataDir = "."
)

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "dir", defaultDataDir,
		"Directory holding the activities-YYYY.json files")
	rootCmd.PersistentFlags().StringVar(&timezone, "timezone", "Local",
		"Timezone of activity dates (e.g., Europe/Berlin, UTC)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode")

	addRollupFlags(rootCmd)
}

func addRollupFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&duration, "duration", "d", "",
		"Time duration to look back (e.g., 7d, 2w, 3m, 1y)")
	cmd.Flags().StringVar(&field, "field", model.FieldDistance,
		"Numeric activity field to roll up")
	cmd.Flags().StringVar(&reduce, "reduce", model.ReduceSum,
		"Reducer applied per day (sum, max, count, avg)")
	cmd.Flags().StringVar(&groupBy, "group-by", model.GroupByDay,
		"Group days by period (day, week, month)")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table",
		"Output format (table, json, csv, xlsx, summary)")
	cmd.Flags().StringVar(&outFile, "out", "rollup.xlsx",
		"Output file for xlsx output")
}

// setup initializes logging and the timezone once per invocation.
func setup(cmd *cobra.Command, args []string) error {
	logLevel := "info"
	if debug {
		logLevel = "debug"
	}

	if err := util.InitLogger(logLevel, expandPath(defaultLogFile), debug); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: logging disabled: %v\n", err)
	}
	if err := util.InitializeTimeProvider(timezone); err != nil {
		return err
	}

	dataDir = expandPath(dataDir)
	return nil
}

func newAnalyzer(cmd *cobra.Command, config *analyzer.Config) (*analyzer.Analyzer, error) {
	config.DataDir = dataDir
	config.Timezone = timezone
	config.Output = cmd.OutOrStdout()
	return analyzer.New(config)
}

func runRollup(cmd *cobra.Command, args []string) error {
	a, err := newAnalyzer(cmd, &analyzer.Config{
		OutputFormat: outputFormat,
		OutFile:      expandPath(outFile),
		Duration:     duration,
		Field:        field,
		Reduce:       reduce,
		GroupBy:      groupBy,
	})
	if err != nil {
		return err
	}
	if err := a.Run(); err != nil {
		return err
	}

	if outputFormat == "xlsx" {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", expandPath(outFile))
	}
	return nil
}

func Execute() error {
	return rootCmd.Execute()
}

// Helper functions

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}
