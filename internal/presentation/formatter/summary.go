package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-runalyze/internal/util"
)

// SummaryFormatter prints the range-wide figures of a report.
type SummaryFormatter struct {
	out io.Writer
}

func NewSummaryFormatter(w io.Writer) *SummaryFormatter {
	return &SummaryFormatter{out: w}
}

func (f *SummaryFormatter) Format(report *Report) error {
	w := f.out
	rule := strings.Repeat("=", min(60, util.TerminalWidth(60)))
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "Runalyze Activity Summary")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)

	s := report.Summary
	if s == nil {
		fmt.Fprintln(w, "No data to summarize")
		fmt.Fprintln(w)
		fmt.Fprintln(w, rule)
		return nil
	}

	from, to := s.From.Format("2006-01-02"), s.To.Format("2006-01-02")
	if from == to {
		fmt.Fprintf(w, "Date Range: %s\n", from)
	} else {
		fmt.Fprintf(w, "Date Range: %s to %s\n", from, to)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Activity:")
	fmt.Fprintf(w, "  Activities:      %d\n", s.Activities)
	fmt.Fprintf(w, "  Active days:     %d of %d\n", s.ActiveDays, s.Days)
	fmt.Fprintf(w, "  Longest streak:  %d days\n", s.LongestStreak)
	fmt.Fprintf(w, "  Longest break:   %d days\n", s.LongestGap)
	if s.Skipped > 0 {
		fmt.Fprintf(w, "  Without date:    %d\n", s.Skipped)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s: %s\n", valueHeader(report), formatValue(report.Field, report.Reduce, s.Value))
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)

	return nil
}
