package extractor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/penwyp/go-runalyze/internal/core/model"
)

var (
	// ErrNoTable is returned when the document holds no <table>.
	ErrNoTable = errors.New("no table found in document")
	// ErrNoHeaders is returned when the table has no header cells.
	ErrNoHeaders = errors.New("no header cells found in table")
)

// RowError is one data row whose value count does not fit the header list.
type RowError struct {
	Index  int
	Values []model.Value
}

// StructureError reports rows whose value count is neither the header count
// nor one less. It usually means the page layout changed upstream.
type StructureError struct {
	Headers []string
	Rows    []RowError
}

func (e *StructureError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "invalid rows found: %d row(s) do not match %d headers %q",
		len(e.Rows), len(e.Headers), e.Headers)
	for _, row := range e.Rows {
		fmt.Fprintf(&b, "; row %d has %d values %s", row.Index, len(row.Values), formatValues(row.Values))
	}
	return b.String()
}

// BackfillError reports a merged row with no earlier row to inherit its
// leading field from.
type BackfillError struct {
	Index   int
	Values  []model.Value
	Headers []string
}

func (e *BackfillError) Error() string {
	return fmt.Sprintf("unable to find a previous dated row for row %d %s (headers %q)",
		e.Index, formatValues(e.Values), e.Headers)
}

func formatValues(values []model.Value) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%q", v.String())
	}
	return "[" + strings.Join(parts, " ") + "]"
}
