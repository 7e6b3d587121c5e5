package formatter

import (
	"fmt"
	"io"
	"time"

	"github.com/penwyp/go-runalyze/internal/core/model"
	"github.com/penwyp/go-runalyze/internal/util"
)

// Row is one period of a rollup report.
type Row struct {
	Period     string    `json:"period"`
	Start      time.Time `json:"start"`
	Days       int       `json:"days"`
	Activities int       `json:"activities"`
	Value      float64   `json:"value"`
}

// Summary carries range-wide figures printed below a report.
type Summary struct {
	From          time.Time `json:"from"`
	To            time.Time `json:"to"`
	Days          int       `json:"days"`
	ActiveDays    int       `json:"activeDays"`
	Activities    int       `json:"activities"`
	Skipped       int       `json:"skipped,omitempty"`
	Value         float64   `json:"value"`
	LongestStreak int       `json:"longestStreak"`
	LongestGap    int       `json:"longestGap"`
}

// Report is a complete rollup ready to be rendered.
type Report struct {
	Field   string   `json:"field"`
	Reduce  string   `json:"reduce"`
	GroupBy string   `json:"groupBy"`
	Rows    []Row    `json:"rows"`
	Summary *Summary `json:"summary,omitempty"`
}

// Formatter renders a report.
type Formatter interface {
	Format(report *Report) error
}

// Output formats accepted by New
const (
	OutputTable   = "table"
	OutputJSON    = "json"
	OutputCSV     = "csv"
	OutputXLSX    = "xlsx"
	OutputSummary = "summary"
)

// New returns the formatter for output writing to w. xlsxPath is only used by
// the xlsx output.
func New(output string, w io.Writer, xlsxPath string) (Formatter, error) {
	switch output {
	case OutputTable, "":
		return NewTableFormatter(w), nil
	case OutputJSON:
		return NewJSONFormatter(w), nil
	case OutputCSV:
		return NewCSVFormatter(w), nil
	case OutputSummary:
		return NewSummaryFormatter(w), nil
	case OutputXLSX:
		if xlsxPath == "" {
			return nil, fmt.Errorf("xlsx output needs a file path")
		}
		return NewXLSXFormatter(xlsxPath), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (expected table, json, csv, xlsx or summary)", output)
	}
}

// valueHeader names the value column, e.g. "Distance (sum)".
func valueHeader(r *Report) string {
	return fmt.Sprintf("%s (%s)", r.Field, r.Reduce)
}

// formatValue renders v in the unit people expect for the field: meters as
// kilometers and seconds as a clock.
func formatValue(field, reduce string, v float64) string {
	if reduce == model.ReduceCount {
		return util.FormatNumber(v, 0)
	}
	switch field {
	case model.FieldDistance:
		return util.FormatKilometers(v)
	case model.FieldDuration, model.FieldPace:
		return util.FormatClock(v)
	case model.FieldTemperature:
		return util.FormatNumber(v, 1) + " °C"
	case model.FieldElevation:
		return util.FormatNumber(v, 0) + " m"
	default:
		return util.FormatNumber(v, 2)
	}
}
