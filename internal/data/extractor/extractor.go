// Package extractor turns the Runalyze data browser table into uniform
// activity records keyed by header name.
package extractor

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/penwyp/go-runalyze/internal/core/model"
	"github.com/penwyp/go-runalyze/internal/core/units"
	"github.com/penwyp/go-runalyze/internal/util"
)

// Table is the extracted header list and the records aligned with it.
type Table struct {
	Headers    []string
	Activities []model.Activity
}

// Extractor reads activity tables. It holds no per-document state and is
// safe for concurrent use.
type Extractor struct {
	coercer  *units.Coercer
	complete func(model.Value) bool
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithCoercer replaces the default unit grammar.
func WithCoercer(c *units.Coercer) Option {
	return func(e *Extractor) {
		e.coercer = c
	}
}

// WithCompleteField sets the predicate that decides whether a row's leading
// field can be inherited by a following merged row.
func WithCompleteField(pred func(model.Value) bool) Option {
	return func(e *Extractor) {
		e.complete = pred
	}
}

// HasDateSeparator reports whether v is text containing a "/" date separator.
func HasDateSeparator(v model.Value) bool {
	return !v.IsNumeric() && strings.Contains(v.Text(), "/")
}

// New creates an Extractor with the default grammar and date predicate.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		coercer:  units.NewCoercer(units.Rules()...),
		complete: HasDateSeparator,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract reads the first table of doc with a default Extractor.
func Extract(doc *goquery.Document, opts ...Option) (*Table, error) {
	return New(opts...).Extract(doc)
}

// ParseActivities parses raw HTML and returns its activity records.
func ParseActivities(r io.Reader, opts ...Option) ([]model.Activity, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	table, err := New(opts...).Extract(doc)
	if err != nil {
		return nil, err
	}
	return table.Activities, nil
}

// Extract reads the first table of doc. The document is not modified.
func (e *Extractor) Extract(doc *goquery.Document) (*Table, error) {
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, ErrNoTable
	}

	headers := e.headers(table)
	if len(headers) == 0 {
		return nil, ErrNoHeaders
	}

	rows := e.rows(table)
	util.LogDebug(fmt.Sprintf("Extracted %d headers and %d activity rows", len(headers), len(rows)))

	rows, err := e.reconcile(headers, rows)
	if err != nil {
		return nil, err
	}

	activities := make([]model.Activity, len(rows))
	for i, row := range rows {
		activity := make(model.Activity, len(headers))
		for j, header := range headers {
			activity[header] = row[j]
		}
		activities[i] = activity
	}

	return &Table{Headers: headers, Activities: activities}, nil
}

// headers prefers each header cell's text, then its title attribute. Titles
// of icon-only cells get model.IconSuffix.
func (e *Extractor) headers(table *goquery.Selection) []string {
	cells := table.Find("thead td span")
	if cells.Length() == 0 {
		cells = table.Find("thead th")
	}

	var headers []string
	seen := make(map[string]int)
	cells.Each(func(_ int, cell *goquery.Selection) {
		name := cellText(cell)
		if name == "" {
			title, _ := cell.Attr("title")
			name = strings.TrimSpace(title)
			if icon := cell.Find("i").First(); icon.Length() > 0 {
				if name == "" {
					name, _ = icon.Attr("class")
				}
				name += model.IconSuffix
			}
		}

		// Repeated names would collapse two columns into one field.
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s (%d)", name, n)
		}
		headers = append(headers, name)
	})
	return headers
}

// rows returns the coerced values of every activity row. Only the first
// tbody holds activities; the second one is the summary.
func (e *Extractor) rows(table *goquery.Selection) [][]model.Value {
	var rows [][]model.Value
	table.Find("tbody").First().Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() <= 3 {
			return
		}

		var values []model.Value
		cells.Each(func(_ int, td *goquery.Selection) {
			// The inline menu cell has no header.
			if td.Find("div.inline-menu").Length() > 0 {
				return
			}
			values = append(values, e.cellValue(td))
		})

		// Leading cell is the row selector.
		if len(values) > 0 {
			values = values[1:]
		}
		rows = append(rows, values)
	})
	return rows
}

func (e *Extractor) cellValue(td *goquery.Selection) model.Value {
	v := e.coercer.Coerce(cellText(td))
	if !v.IsEmpty() {
		return v
	}
	if class, ok := td.Find("i").First().Attr("class"); ok {
		return model.TextValue(strings.TrimSpace(class))
	}
	return v
}

// reconcile backfills merged rows and rejects rows that do not fit headers.
func (e *Extractor) reconcile(headers []string, rows [][]model.Value) ([][]model.Value, error) {
	n := len(headers)
	out := make([][]model.Value, len(rows))

	for i, row := range rows {
		if len(row) != n-1 {
			out[i] = row
			continue
		}

		lead, ok := e.previousLead(out[:i])
		if !ok {
			util.LogWarn(fmt.Sprintf("Merged row %d has no previous dated row", i))
			return nil, &BackfillError{Index: i, Values: row, Headers: headers}
		}

		merged := make([]model.Value, 0, n)
		merged = append(merged, lead)
		merged = append(merged, row...)
		out[i] = merged
	}

	var bad []RowError
	for i, row := range out {
		if len(row) != n {
			bad = append(bad, RowError{Index: i, Values: row})
		}
	}
	if len(bad) > 0 {
		return nil, &StructureError{Headers: headers, Rows: bad}
	}

	return out, nil
}

// previousLead scans backwards for the nearest row with a complete leading field.
func (e *Extractor) previousLead(rows [][]model.Value) (model.Value, bool) {
	for i := len(rows) - 1; i >= 0; i-- {
		if len(rows[i]) > 0 && e.complete(rows[i][0]) {
			return rows[i][0], true
		}
	}
	return model.Value{}, false
}

// cellText returns the trimmed text of s with whitespace runs, non-breaking
// spaces included, collapsed to a single space.
func cellText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}
