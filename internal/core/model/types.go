package model

import (
	"fmt"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
)

// Value is a canonical cell value: a float in a fixed base unit (meters,
// seconds, 0-1 fraction, Celsius) or the original text when no unit pattern
// matched. No unit metadata is kept.
type Value struct {
	num     float64
	text    string
	numeric bool
}

// NumberValue wraps a canonical number.
func NumberValue(f float64) Value {
	return Value{num: f, numeric: true}
}

// TextValue wraps passthrough text.
func TextValue(s string) Value {
	return Value{text: s}
}

// Float returns the numeric value and whether the value is numeric.
func (v Value) Float() (float64, bool) {
	return v.num, v.numeric
}

// Text returns the passthrough text, or "" for numeric values.
func (v Value) Text() string {
	return v.text
}

func (v Value) IsNumeric() bool {
	return v.numeric
}

// IsEmpty reports whether the value is the empty passthrough string.
func (v Value) IsEmpty() bool {
	return !v.numeric && v.text == ""
}

func (v Value) String() string {
	if v.numeric {
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	}
	return v.text
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.numeric {
		return sonic.Marshal(v.num)
	}
	return sonic.Marshal(v.text)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	// Numbers first, then plain strings
	var f float64
	if err := sonic.Unmarshal(data, &f); err == nil {
		*v = NumberValue(f)
		return nil
	}

	var s string
	if err := sonic.Unmarshal(data, &s); err == nil {
		*v = TextValue(s)
		return nil
	}

	return fmt.Errorf("value must be either a number or a string: %s", string(data))
}

// Activity maps header names to canonical values for one logged event.
type Activity map[string]Value

// Float returns the numeric value of field, if present and numeric.
func (a Activity) Float(field string) (float64, bool) {
	v, ok := a[field]
	if !ok {
		return 0, false
	}
	return v.Float()
}

// Date parses field as an ISO-8601 timestamp or a plain yyyy-mm-dd date.
func (a Activity) Date(field string) (time.Time, error) {
	v, ok := a[field]
	if !ok {
		return time.Time{}, fmt.Errorf("activity has no %q field", field)
	}
	if v.IsNumeric() {
		return time.Time{}, fmt.Errorf("field %q is numeric, not a date: %s", field, v)
	}

	text := v.Text()
	if t, err := time.Parse(time.RFC3339, text); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", text, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("field %q is not an ISO-8601 date: %q", field, text)
	}
	return t, nil
}

// Clone returns a shallow copy of the activity.
func (a Activity) Clone() Activity {
	out := make(Activity, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Day truncates t to the first instant of its calendar day in t's location.
// That is midnight, except on days where a DST change skips midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	// A skipped midnight normalises into the previous day.
	for day.Day() != d {
		day = day.Add(time.Hour)
	}
	return day
}
