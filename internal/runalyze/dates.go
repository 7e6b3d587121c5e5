package runalyze

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/penwyp/go-runalyze/internal/core/model"
)

var dateSeparators = regexp.MustCompile(`[\s/]`)

// SettingDate turns a data browser date cell such as "03/05 Tue" into local
// midnight of that month and day in year.
func SettingDate(text string, year int, loc *time.Location) (time.Time, error) {
	parts := dateSeparators.Split(text, -1)
	if len(parts) < 2 {
		return time.Time{}, fmt.Errorf("invalid date cell %q", text)
	}

	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("invalid month in date cell %q", text)
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("invalid day in date cell %q", text)
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if t.Day() != day {
		return time.Time{}, fmt.Errorf("date cell %q does not exist in %d", text, year)
	}
	return t, nil
}

// NormalizeDates returns copies of activities whose field holds an RFC 3339
// timestamp instead of the month/day cell text. The input is not modified.
func NormalizeDates(activities []model.Activity, field string, year int, loc *time.Location) ([]model.Activity, error) {
	out := make([]model.Activity, len(activities))
	for i, a := range activities {
		v, ok := a[field]
		if !ok {
			return nil, fmt.Errorf("activity %d has no %q field", i, field)
		}

		t, err := SettingDate(v.Text(), year, loc)
		if err != nil {
			return nil, fmt.Errorf("activity %d: %w", i, err)
		}

		normalized := a.Clone()
		normalized[field] = model.TextValue(t.Format(time.RFC3339))
		out[i] = normalized
	}
	return out, nil
}
