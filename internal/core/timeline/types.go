// Package timeline turns dated records into complete per-day series: every
// calendar day between the earliest and latest record gets an entry, even
// when no record falls on it.
package timeline

import (
	"errors"
	"time"
)

// ErrEmptyInput is returned when there are no records to take a date range
// from.
var ErrEmptyInput = errors.New("timeline: no records, date range is undefined")

// DayValue is one reduced day of a rollup.
type DayValue[V any] struct {
	Day   time.Time `json:"day"`
	Value V         `json:"value"`
}
