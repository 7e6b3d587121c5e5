package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/penwyp/go-runalyze/internal/analyzer"
	"github.com/penwyp/go-runalyze/internal/config"
	"github.com/penwyp/go-runalyze/internal/runalyze"
	"github.com/spf13/cobra"
)

var (
	fetchFromYear    int
	fetchToYear      int
	fetchMaxAge      time.Duration
	fetchSaveHTML    bool
	fetchConcurrency int
	fetchEnvFile     string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the activities of each year",
	Long: `Downloads the data browser page of every year from --to-year back to
--from-year, extracts its activity table and writes activities-YYYY.json.

Years whose file exists are skipped; the current year is downloaded again
once its file is older than --max-age.

The session cookie is read from RUNALYZE_COOKIE (or a .env file), or from the
file named by RUNALYZE_COOKIE_FILE (default "cookie").`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().IntVar(&fetchFromYear, "from-year", 2016,
		"Oldest year to fetch")
	fetchCmd.Flags().IntVar(&fetchToYear, "to-year", 0,
		"Newest year to fetch (0 = current year)")
	fetchCmd.Flags().DurationVar(&fetchMaxAge, "max-age", analyzer.DefaultMaxAge,
		"Age after which the current year is fetched again")
	fetchCmd.Flags().BoolVar(&fetchSaveHTML, "save-html", false,
		"Keep each downloaded page as debug-YYYY.html")
	fetchCmd.Flags().IntVar(&fetchConcurrency, "concurrency", 2,
		"Years downloaded at the same time")
	fetchCmd.Flags().StringVar(&fetchEnvFile, "env-file", ".env",
		"Environment file with RUNALYZE_* settings")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(fetchEnvFile)
	if err != nil {
		return err
	}

	a, err := newAnalyzer(cmd, &analyzer.Config{
		FromYear:    fetchFromYear,
		ToYear:      fetchToYear,
		MaxAge:      fetchMaxAge,
		SaveHTML:    fetchSaveHTML,
		Concurrency: fetchConcurrency,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	return fetchWith(ctx, cmd, a, runalyze.NewClient(cfg))
}

func fetchWith(ctx context.Context, cmd *cobra.Command, a *analyzer.Analyzer, source analyzer.ReportSource) error {
	results, err := a.Fetch(ctx, source)

	out := cmd.OutOrStdout()
	for _, r := range results {
		status := "up to date"
		if r.Fetched {
			status = "fetched (" + r.Reason.String() + ")"
		}
		fmt.Fprintf(out, "%d: %4d activities, %s\n", r.Year, r.Activities, status)
	}
	return err
}
