// Package units converts the textual cell encodings of the Runalyze data
// browser into canonical numbers: meters for distance, seconds for durations
// and paces, a 0-1 fraction for percentages and Celsius for temperatures.
package units

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/penwyp/go-runalyze/internal/core/model"
)

// Length conversion factors to meters.
const (
	MetersPerMile      = 1609.344
	MetersPerKilometer = 1000.0
	MetersPerFoot      = 0.3048
)

// Rule is one entry of the ordered coercion grammar. Convert receives the
// submatches of Pattern and returns the canonical number.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Convert func(match []string) (float64, error)
}

// Coercer applies an ordered list of rules, first match wins.
type Coercer struct {
	rules []Rule
}

// NewCoercer creates a Coercer that evaluates rules in the given order.
func NewCoercer(rules ...Rule) *Coercer {
	return &Coercer{rules: rules}
}

// Coerce converts a trimmed cell token into its canonical value. Tokens that
// match no rule, or that match a rule but fail to parse as numbers, are
// returned unchanged as text. Coerce never fails.
func (c *Coercer) Coerce(token string) model.Value {
	token = strings.TrimSpace(token)
	for _, rule := range c.rules {
		match := rule.Pattern.FindStringSubmatch(token)
		if match == nil {
			continue
		}
		f, err := rule.Convert(match)
		if err != nil {
			break
		}
		return model.NumberValue(f)
	}
	return model.TextValue(token)
}

var defaultCoercer = NewCoercer(Rules()...)

// Coerce converts token with the default Runalyze grammar.
func Coerce(token string) model.Value {
	return defaultCoercer.Coerce(token)
}

// Rules returns the default grammar in priority order.
func Rules() []Rule {
	return []Rule{
		{Name: "number", Pattern: regexp.MustCompile(`^([\d.]+)$`), Convert: scaled(1)},
		{Name: "percent", Pattern: regexp.MustCompile(`^([\d.]+)\s+%$`), Convert: scaled(0.01)},
		{Name: "miles", Pattern: regexp.MustCompile(`^([\d.]+)\s+mi$`), Convert: scaled(MetersPerMile)},
		{Name: "kilometers", Pattern: regexp.MustCompile(`^([\d.]+)\s+km$`), Convert: scaled(MetersPerKilometer)},
		{Name: "feet", Pattern: regexp.MustCompile(`^([\d.]+)\s+ft$`), Convert: scaled(MetersPerFoot)},
		{Name: "pace", Pattern: regexp.MustCompile(`^(\d+):(\d+)\s*/\s*(mi|km)$`), Convert: pace},
		{Name: "fahrenheit", Pattern: regexp.MustCompile(`^(-?[\d.]+)\s*°\s*F$`), Convert: fahrenheit},
		{Name: "celsius", Pattern: regexp.MustCompile(`^(-?[\d.]+)\s*°\s*C$`), Convert: scaled(1)},
		{Name: "minutes", Pattern: regexp.MustCompile(`^(\d+):(\d+)$`), Convert: clock},
		{Name: "hours", Pattern: regexp.MustCompile(`^(\d+):(\d+):(\d+)$`), Convert: clock},
	}
}

func scaled(factor float64) func([]string) (float64, error) {
	return func(match []string) (float64, error) {
		f, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			return 0, err
		}
		return f * factor, nil
	}
}

// pace is minutes*60 + seconds/meters-per-unit; only the seconds are divided.
func pace(match []string) (float64, error) {
	minutes, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, err
	}
	seconds, err := strconv.ParseFloat(match[2], 64)
	if err != nil {
		return 0, err
	}
	unit := MetersPerKilometer
	if match[3] == "mi" {
		unit = MetersPerMile
	}
	return minutes*60 + seconds/unit, nil
}

func fahrenheit(match []string) (float64, error) {
	f, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, err
	}
	return (f - 32) * 5 / 9, nil
}

// clock converts mm:ss or hh:mm:ss into seconds.
func clock(match []string) (float64, error) {
	var total float64
	for _, part := range match[1:] {
		n, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return 0, err
		}
		total = total*60 + n
	}
	return total, nil
}
