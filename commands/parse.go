package commands

import (
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-runalyze/internal/analyzer"
	"github.com/penwyp/go-runalyze/internal/data/scanner"
	"github.com/spf13/cobra"
)

var (
	parseYear int
	parseOut  string
)

var parseCmd = &cobra.Command{
	Use:   "parse <file.html|dir>...",
	Short: "Extract activities from saved data browser pages",
	Long: `Extracts the activity table of saved data browser pages and prints the
activities as a JSON array. Directories are scanned for .html files.

Dates are rewritten to ISO-8601 using --year, or the year in the file name
(e.g. debug-2024.html). Pages without a known year keep their date cells.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().IntVar(&parseYear, "year", 0,
		"Year of the pages (0 = from file name)")
	parseCmd.Flags().StringVar(&parseOut, "out", "",
		"Write JSON to this file instead of stdout")
}

func runParse(cmd *cobra.Command, args []string) error {
	files, err := collectReports(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no HTML files found")
	}

	a, err := newAnalyzer(cmd, &analyzer.Config{})
	if err != nil {
		return err
	}

	activities, err := a.ParseReports(files, parseYear)
	if err != nil {
		return err
	}

	data, err := sonic.ConfigStd.MarshalIndent(activities, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if parseOut != "" {
		return os.WriteFile(expandPath(parseOut), data, 0644)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

// collectReports expands directories to the report pages they contain.
func collectReports(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		found, err := scanner.NewFileScanner(arg).Scan()
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}
