package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-runalyze/internal/util"
)

type TableFormatter struct {
	out io.Writer
}

func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{out: w}
}

func (f *TableFormatter) Format(report *Report) error {
	headers := []string{"Period", "Days", "Activities", valueHeader(report)}

	rows := make([][]string, 0, len(report.Rows)+1)
	for _, r := range report.Rows {
		rows = append(rows, []string{
			r.Period,
			util.FormatNumber(float64(r.Days), 0),
			util.FormatNumber(float64(r.Activities), 0),
			formatValue(report.Field, report.Reduce, r.Value),
		})
	}

	var total []string
	if s := report.Summary; s != nil {
		total = []string{
			"Total",
			util.FormatNumber(float64(s.Days), 0),
			util.FormatNumber(float64(s.Activities), 0),
			formatValue(report.Field, report.Reduce, s.Value),
		}
	}

	widths := f.calculateColumnWidths(headers, rows, total)

	f.printBorder(widths, "top")
	f.printRow(headers, widths)
	f.printBorder(widths, "middle")
	for _, row := range rows {
		f.printRow(row, widths)
	}
	if total != nil {
		f.printBorder(widths, "middle")
		f.printRow(total, widths)
	}
	f.printBorder(widths, "bottom")

	return nil
}

// calculateColumnWidths sizes each column to its widest display value
func (f *TableFormatter) calculateColumnWidths(headers []string, rows [][]string, total []string) []int {
	widths := make([]int, len(headers))
	measure := func(values []string) {
		for i, value := range values {
			if w := util.GetDisplayWidth(value); w > widths[i] {
				widths[i] = w
			}
		}
	}

	measure(headers)
	for _, row := range rows {
		measure(row)
	}
	if total != nil {
		measure(total)
	}

	for i := range widths {
		if widths[i] < 6 {
			widths[i] = 6
		}
	}
	return widths
}

// printBorder prints table borders (top, middle, bottom)
func (f *TableFormatter) printBorder(widths []int, borderType string) {
	var left, middle, right string

	switch borderType {
	case "top":
		left, middle, right = "┌", "┬", "┐"
	case "middle":
		left, middle, right = "├", "┼", "┤"
	case "bottom":
		left, middle, right = "└", "┴", "┘"
	}

	var b strings.Builder
	b.WriteString(left)
	for i, width := range widths {
		b.WriteString(strings.Repeat("─", width+2))
		if i < len(widths)-1 {
			b.WriteString(middle)
		}
	}
	b.WriteString(right)
	fmt.Fprintln(f.out, b.String())
}

// printRow left-aligns the period column and right-aligns the figures
func (f *TableFormatter) printRow(values []string, widths []int) {
	var b strings.Builder
	b.WriteString("│")
	for i, value := range values {
		b.WriteString(" ")
		b.WriteString(util.PadString(value, widths[i], i == 0))
		b.WriteString(" │")
	}
	fmt.Fprintln(f.out, b.String())
}
