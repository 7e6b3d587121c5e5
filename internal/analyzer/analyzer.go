package analyzer

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"runtime"
	"strconv"
	"time"

	"github.com/penwyp/go-runalyze/internal/core/model"
	"github.com/penwyp/go-runalyze/internal/data/aggregator"
	"github.com/penwyp/go-runalyze/internal/data/cache"
	"github.com/penwyp/go-runalyze/internal/data/parser"
	"github.com/penwyp/go-runalyze/internal/presentation/formatter"
	"github.com/penwyp/go-runalyze/internal/util"
)

// DefaultMaxAge is how long the current year's result file stays fresh.
const DefaultMaxAge = 12 * time.Hour

type Config struct {
	DataDir      string
	OutputFormat string
	OutFile      string
	Timezone     string
	Duration     string
	Field        string
	Reduce       string
	GroupBy      string
	Concurrency  int
	// Fetch settings
	FromYear int
	ToYear   int
	MaxAge   time.Duration
	SaveHTML bool
	// Output defaults to stdout
	Output io.Writer
}

type Analyzer struct {
	config   *Config
	store    *cache.YearStore
	parser   *parser.Parser
	location *time.Location
}

func New(config *Config) (*Analyzer, error) {
	if config.Concurrency <= 0 {
		config.Concurrency = runtime.NumCPU()
	}
	if config.Output == nil {
		config.Output = os.Stdout
	}

	loc, err := util.LoadLocation(config.Timezone)
	if err != nil {
		return nil, err
	}

	store, err := cache.NewYearStore(config.DataDir, config.MaxAge)
	if err != nil {
		return nil, fmt.Errorf("failed to open data directory: %w", err)
	}

	return &Analyzer{
		config:   config,
		store:    store,
		parser:   parser.NewParser(config.Concurrency),
		location: loc,
	}, nil
}

// Store returns the per-year result files of the data directory.
func (a *Analyzer) Store() *cache.YearStore {
	return a.store
}

// Run loads every yearly result file, rolls the configured field up per day
// and writes the report.
func (a *Analyzer) Run() error {
	startTime := time.Now()
	util.LogInfo("Starting rollup of Runalyze activities...")

	loadStart := time.Now()
	activities, err := a.store.LoadAll()
	if err != nil {
		return fmt.Errorf("failed to load activities: %w", err)
	}
	if len(activities) == 0 {
		return fmt.Errorf("no activities found in %s, run fetch first", a.config.DataDir)
	}
	util.LogDebug(fmt.Sprintf("Phase 1 - Load duration: %v, %d activities", time.Since(loadStart), len(activities)))

	report, err := a.Report(activities)
	if err != nil {
		return err
	}

	outputStart := time.Now()
	f, err := formatter.New(a.config.OutputFormat, a.config.Output, a.config.OutFile)
	if err != nil {
		return err
	}
	if err := f.Format(report); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	util.LogDebug(fmt.Sprintf("Phase 3 - Output duration: %v", time.Since(outputStart)))

	util.LogDebug(fmt.Sprintf("Total duration: %v", time.Since(startTime)))
	return nil
}

// Report builds the rollup report of activities.
func (a *Analyzer) Report(activities []model.Activity) (*formatter.Report, error) {
	field := a.config.Field
	if field == "" {
		field = model.FieldDistance
	}
	reduce := a.config.Reduce
	if reduce == "" {
		reduce = model.ReduceSum
	}
	groupBy := a.config.GroupBy
	if groupBy == "" {
		groupBy = model.GroupByDay
	}

	agg, err := aggregator.NewAggregator(field, reduce, a.location)
	if err != nil {
		return nil, err
	}

	filtered, err := a.filterByDuration(activities)
	if err != nil {
		return nil, err
	}

	rollupStart := time.Now()
	days, err := agg.Daily(filtered)
	if err != nil {
		return nil, fmt.Errorf("failed to roll up %s: %w", field, err)
	}
	periods, err := agg.Group(days, groupBy)
	if err != nil {
		return nil, err
	}
	summary, err := agg.Summarize(filtered)
	if err != nil {
		return nil, err
	}
	util.LogDebug(fmt.Sprintf("Phase 2 - Rollup duration: %v, %d days, %d periods", time.Since(rollupStart), len(days), len(periods)))

	report := &formatter.Report{
		Field:   field,
		Reduce:  reduce,
		GroupBy: groupBy,
		Rows:    make([]formatter.Row, len(periods)),
		Summary: &formatter.Summary{
			From:          summary.From,
			To:            summary.To,
			Days:          summary.Days,
			ActiveDays:    summary.ActiveDays,
			Activities:    summary.Activities,
			Skipped:       summary.Skipped,
			Value:         summary.Value,
			LongestStreak: summary.LongestStreak,
			LongestGap:    summary.LongestGap,
		},
	}
	for i, p := range periods {
		report.Rows[i] = formatter.Row{
			Period:     p.Period,
			Start:      p.Start,
			Days:       p.Days,
			Activities: p.Activities,
			Value:      p.Value,
		}
	}
	return report, nil
}

// filterByDuration keeps activities dated within the configured duration
// before now. Activities without a date are left for the aggregator to count.
func (a *Analyzer) filterByDuration(activities []model.Activity) ([]model.Activity, error) {
	if a.config.Duration == "" {
		return activities, nil
	}

	fromTime, err := parseDuration(a.config.Duration, a.location)
	if err != nil {
		return nil, err
	}
	from := model.Day(fromTime)

	var filtered []model.Activity
	for _, act := range activities {
		t, err := act.Date(model.FieldSetting)
		if err != nil || !t.In(a.location).Before(from) {
			filtered = append(filtered, act)
		}
	}
	util.LogDebug(fmt.Sprintf("Duration filter %s: %d -> %d activities", a.config.Duration, len(activities), len(filtered)))
	return filtered, nil
}

var durationPattern = regexp.MustCompile(`(\d+)([hymwd])`)

func parseDuration(durationStr string, loc *time.Location) (time.Time, error) {
	now := time.Now().In(loc)

	matches := durationPattern.FindAllStringSubmatch(durationStr, -1)
	if len(matches) == 0 {
		return time.Time{}, fmt.Errorf("invalid duration format: %s", durationStr)
	}

	from := now
	for _, match := range matches {
		value, err := strconv.Atoi(match[1])
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid number in duration: %s", match[1])
		}

		switch match[2] {
		case "h":
			from = from.Add(-time.Duration(value) * time.Hour)
		case "d":
			from = from.AddDate(0, 0, -value)
		case "w":
			from = from.AddDate(0, 0, -7*value)
		case "m":
			from = from.AddDate(0, -value, 0)
		case "y":
			from = from.AddDate(-value, 0, 0)
		}
	}

	return from, nil
}
