package formatter

import (
	"encoding/csv"
	"io"
	"strconv"
)

type CSVFormatter struct {
	out io.Writer
}

func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{out: w}
}

// Format writes raw canonical values (meters, seconds) so the file can be
// loaded back without unit parsing.
func (f *CSVFormatter) Format(report *Report) error {
	w := csv.NewWriter(f.out)

	headers := []string{"Period", "Start", "Days", "Activities", valueHeader(report)}
	if err := w.Write(headers); err != nil {
		return err
	}

	for _, row := range report.Rows {
		record := []string{
			row.Period,
			row.Start.Format("2006-01-02"),
			strconv.Itoa(row.Days),
			strconv.Itoa(row.Activities),
			strconv.FormatFloat(row.Value, 'f', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
