package extractor

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/bytedance/sonic"
	"github.com/penwyp/go-runalyze/internal/core/model"
	"github.com/penwyp/go-runalyze/internal/core/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const headerHTML = `<thead><tr>
<td></td>
<td><span>Setting</span></td>
<td><span class="tooltip" title="Sport"><i class="icon-sport"></i></span></td>
<td><span>Distance</span></td>
<td><span>Duration</span></td>
<td><span>Pace</span></td>
<td><span title="Temperature"></span></td>
</tr></thead>`

const menuCell = `<td><div class="inline-menu"><ul><li>Edit</li></ul></div></td>`

func datedRow(date, sport, distance, duration, pace, temp string) string {
	return fmt.Sprintf(`<tr><td><input type="checkbox"></td>%s<td>%s</td><td><i class="%s"></i></td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
		menuCell, date, sport, distance, duration, pace, temp)
}

func mergedRow(sport, distance, duration, pace, temp string) string {
	return fmt.Sprintf(`<tr><td><input type="checkbox"></td>%s<td><i class="%s"></i></td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
		menuCell, sport, distance, duration, pace, temp)
}

const footerBody = `<tbody><tr><td></td><td>Total</td><td></td><td>99 mi</td><td>9:59:59</td><td></td><td></td><td></td></tr></tbody>`

func page(rows ...string) string {
	return `<html><body><table>` + headerHTML +
		`<tbody>` + strings.Join(rows, "\n") + `</tbody>` +
		footerBody + `</table></body></html>`
}

func newDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func number(t *testing.T, a model.Activity, field string) float64 {
	t.Helper()
	f, ok := a.Float(field)
	require.True(t, ok, "field %q should be numeric, got %q", field, a[field].String())
	return f
}

func TestExtractHeaders(t *testing.T) {
	table, err := Extract(newDoc(t, page(datedRow("03/05 Tue", "icon-running", "10 mi", "1:20:00", "8:00/mi", "78 °F"))))
	require.NoError(t, err)

	assert.Equal(t, []string{"Setting", "Sport icon", "Distance", "Duration", "Pace", "Temperature"}, table.Headers)
}

func TestExtractCoercesCells(t *testing.T) {
	table, err := Extract(newDoc(t, page(datedRow("03/05 Tue", "icon-running", "10 mi", "1:20:00", "8:00/mi", "78 °F"))))
	require.NoError(t, err)
	require.Len(t, table.Activities, 1)

	a := table.Activities[0]
	assert.Equal(t, model.TextValue("03/05 Tue"), a["Setting"])
	assert.Equal(t, model.TextValue("icon-running"), a["Sport icon"])
	assert.InDelta(t, 16093.44, number(t, a, "Distance"), 1e-9)
	assert.InDelta(t, 4800, number(t, a, "Duration"), 1e-9)
	assert.InDelta(t, 8*60, number(t, a, "Pace"), 1e-9)
	assert.InDelta(t, 25.5555555, number(t, a, "Temperature"), 1e-6)
}

func TestExtractRowAndFieldCounts(t *testing.T) {
	const rowCount = 12
	var rows []string
	for i := 0; i < rowCount; i++ {
		rows = append(rows, datedRow(fmt.Sprintf("03/%02d", i+1), "icon-running", "5 km", "25:00", "5:00/km", "10 °C"))
	}

	table, err := Extract(newDoc(t, page(rows...)))
	require.NoError(t, err)

	assert.Len(t, table.Activities, rowCount)
	for _, a := range table.Activities {
		assert.Len(t, a, len(table.Headers))
	}
}

func TestExtractBackfillsMergedRows(t *testing.T) {
	table, err := Extract(newDoc(t, page(
		datedRow("03/05 Tue", "icon-running", "10 mi", "1:20:00", "8:00/mi", "78 °F"),
		mergedRow("icon-bike", "20 km", "45:00", "2:15/km", "12 °C"),
		mergedRow("icon-swim", "1 km", "30:00", "3:00/km", "12 °C"),
		datedRow("03/04 Mon", "icon-running", "3 mi", "27:00", "9:00/mi", "60 °F"),
		mergedRow("icon-yoga", "0 km", "20:00", "0:00/km", "20 °C"),
	)))
	require.NoError(t, err)
	require.Len(t, table.Activities, 5)

	dates := make([]string, len(table.Activities))
	for i, a := range table.Activities {
		dates[i] = a["Setting"].Text()
		assert.Len(t, a, len(table.Headers))
	}
	assert.Equal(t, []string{"03/05 Tue", "03/05 Tue", "03/05 Tue", "03/04 Mon", "03/04 Mon"}, dates)
	assert.Equal(t, model.TextValue("icon-bike"), table.Activities[1]["Sport icon"])
	assert.InDelta(t, 20000, number(t, table.Activities[1], "Distance"), 1e-9)
}

func TestExtractIgnoresFooterAndShortRows(t *testing.T) {
	html := `<table>` + headerHTML + `<tbody>
<tr><td colspan="8">March 2024</td></tr>
` + datedRow("03/05 Tue", "icon-running", "10 mi", "1:20:00", "8:00/mi", "78 °F") + `
</tbody>
<tbody>
` + datedRow("03/01 Fri", "icon-running", "99 mi", "9:00:00", "8:00/mi", "78 °F") + `
` + datedRow("03/02 Sat", "icon-running", "99 mi", "9:00:00", "8:00/mi", "78 °F") + `
</tbody></table>`

	table, err := Extract(newDoc(t, html))
	require.NoError(t, err)
	require.Len(t, table.Activities, 1)
	assert.Equal(t, "03/05 Tue", table.Activities[0]["Setting"].Text())
}

func TestExtractBackfillWithoutPreviousRow(t *testing.T) {
	_, err := Extract(newDoc(t, page(
		mergedRow("icon-bike", "20 km", "45:00", "2:15/km", "12 °C"),
		datedRow("03/05 Tue", "icon-running", "10 mi", "1:20:00", "8:00/mi", "78 °F"),
	)))
	require.Error(t, err)

	var backfillErr *BackfillError
	require.True(t, errors.As(err, &backfillErr))
	assert.Equal(t, 0, backfillErr.Index)
	assert.Len(t, backfillErr.Values, 5)
	assert.Len(t, backfillErr.Headers, 6)
}

func TestExtractStructureMismatch(t *testing.T) {
	short := `<tr><td></td>` + menuCell + `<td>20 km</td><td>45:00</td><td>12 °C</td><td>x</td></tr>`

	_, err := Extract(newDoc(t, page(
		datedRow("03/05 Tue", "icon-running", "10 mi", "1:20:00", "8:00/mi", "78 °F"),
		short,
	)))
	require.Error(t, err)

	var structErr *StructureError
	require.True(t, errors.As(err, &structErr))
	assert.Equal(t, []string{"Setting", "Sport icon", "Distance", "Duration", "Pace", "Temperature"}, structErr.Headers)
	require.Len(t, structErr.Rows, 1)
	assert.Equal(t, 1, structErr.Rows[0].Index)
	assert.Len(t, structErr.Rows[0].Values, 4)
	assert.Contains(t, err.Error(), "row 1 has 4 values")
}

func TestExtractIsIdempotent(t *testing.T) {
	doc := newDoc(t, page(
		datedRow("03/05 Tue", "icon-running", "10 mi", "1:20:00", "8:00/mi", "78 °F"),
		mergedRow("icon-bike", "20 km", "45:00", "2:15/km", "12 °C"),
	))
	before, err := doc.Html()
	require.NoError(t, err)

	first, err := Extract(doc)
	require.NoError(t, err)
	second, err := Extract(doc)
	require.NoError(t, err)

	a, err := sonic.ConfigStd.Marshal(first.Activities)
	require.NoError(t, err)
	b, err := sonic.ConfigStd.Marshal(second.Activities)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))

	after, err := doc.Html()
	require.NoError(t, err)
	assert.Equal(t, before, after, "extraction must not modify the document")
}

func TestExtractNoTable(t *testing.T) {
	_, err := Extract(newDoc(t, `<html><body><p>Session expired</p></body></html>`))
	assert.ErrorIs(t, err, ErrNoTable)
}

func TestExtractNoHeaders(t *testing.T) {
	_, err := Extract(newDoc(t, `<table><tbody><tr><td>1</td></tr></tbody></table>`))
	assert.ErrorIs(t, err, ErrNoHeaders)
}

func TestExtractHeaderCellFallback(t *testing.T) {
	html := `<table><thead><tr><th>Date</th><th>Distance</th><th title="Notes"></th><th>Distance</th></tr></thead>
<tbody><tr><td>sel</td><td>2024/03/05</td><td>5 km</td><td>ok</td><td>6 km</td></tr></tbody></table>`

	table, err := Extract(newDoc(t, html))
	require.NoError(t, err)
	assert.Equal(t, []string{"Date", "Distance", "Notes", "Distance (2)"}, table.Headers)
	require.Len(t, table.Activities, 1)
	assert.InDelta(t, 6000, number(t, table.Activities[0], "Distance (2)"), 1e-9)
}

func TestExtractCustomPredicateAndCoercer(t *testing.T) {
	html := `<table><thead><tr><th>Day</th><th>Distance</th><th>Time</th><th>Note</th></tr></thead><tbody>
<tr><td>sel</td><td>2024-03-05</td><td>5 km</td><td>25:00</td><td>easy</td></tr>
<tr><td>sel</td><td>3 km</td><td>15:00</td><td>cooldown</td></tr>
</tbody></table>`

	isoDate := func(v model.Value) bool {
		return !v.IsNumeric() && strings.Count(v.Text(), "-") == 2
	}

	table, err := Extract(newDoc(t, html), WithCompleteField(isoDate))
	require.NoError(t, err)
	require.Len(t, table.Activities, 2)
	assert.Equal(t, "2024-03-05", table.Activities[1]["Day"].Text())

	_, err = Extract(newDoc(t, html))
	var backfillErr *BackfillError
	assert.True(t, errors.As(err, &backfillErr), "default predicate needs a '/' date")

	plain, err := Extract(newDoc(t, html), WithCompleteField(isoDate), WithCoercer(units.NewCoercer()))
	require.NoError(t, err)
	assert.Equal(t, model.TextValue("5 km"), plain.Activities[0]["Distance"])
}

func TestParseActivities(t *testing.T) {
	activities, err := ParseActivities(strings.NewReader(page(
		datedRow("03/05 Tue", "icon-running", "10 mi", "1:20:00", "8:00/mi", "78 °F"),
	)))
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, "03/05 Tue", activities[0]["Setting"].Text())
}
