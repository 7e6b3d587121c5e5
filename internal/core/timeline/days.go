package timeline

import (
	"time"

	"github.com/penwyp/go-runalyze/internal/core/model"
)

// Days returns every calendar day from start to end inclusive, each as the
// model.Day of that date in start's location. It returns nil when end is
// before start.
func Days(start, end time.Time) []time.Time {
	loc := start.Location()
	y, m, d := start.Date()
	// Advance the end by one day so the half-open enumeration keeps the last day.
	stop := civilDay(end.In(loc), 1)

	var days []time.Time
	for i := 0; ; i++ {
		// Each day is derived from the calendar date, never from the previous key.
		day := model.Day(time.Date(y, m, d+i, 12, 0, 0, 0, loc))
		if !day.Before(stop) {
			break
		}
		days = append(days, day)
	}
	return days
}

// civilDay returns the model.Day that lies offset calendar days after t.
func civilDay(t time.Time, offset int) time.Time {
	y, m, d := t.Date()
	return model.Day(time.Date(y, m, d+offset, 12, 0, 0, 0, t.Location()))
}

// Extent returns the earliest and latest record dates.
func Extent[T any](records []T, date func(T) time.Time) (time.Time, time.Time, error) {
	if len(records) == 0 {
		return time.Time{}, time.Time{}, ErrEmptyInput
	}

	lo := date(records[0])
	hi := lo
	for _, r := range records[1:] {
		d := date(r)
		if d.Before(lo) {
			lo = d
		}
		if d.After(hi) {
			hi = d
		}
	}
	return lo, hi, nil
}

// dayKey buckets t by its calendar day in loc.
func dayKey(t time.Time, loc *time.Location) time.Time {
	return model.Day(t.In(loc))
}
