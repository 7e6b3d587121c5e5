package units

import (
	"regexp"
	"testing"

	"github.com/penwyp/go-runalyze/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceNumeric(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		expected float64
	}{
		{name: "integer", token: "42", expected: 42},
		{name: "decimal", token: "3.25", expected: 3.25},
		{name: "percent", token: "77 %", expected: 0.77},
		{name: "miles", token: "10 mi", expected: 16093.44},
		{name: "fractional_miles", token: "3.1 mi", expected: 3.1 * MetersPerMile},
		{name: "kilometers", token: "5.2 km", expected: 5200},
		{name: "feet", token: "1000 ft", expected: 304.8},
		{name: "pace_per_mile", token: "8:30/mi", expected: 8*60 + 30/MetersPerMile},
		{name: "pace_per_km", token: "5:10 /km", expected: 5*60 + 10/MetersPerKilometer},
		{name: "fahrenheit", token: "78 °F", expected: 25.555555555555557},
		{name: "fahrenheit_below_zero", token: "-4 °F", expected: -20},
		{name: "celsius", token: "12 °C", expected: 12},
		{name: "minutes_seconds", token: "34:56", expected: 2096},
		{name: "hours_minutes_seconds", token: "2:34:56", expected: 9296},
		{name: "surrounding_space", token: "  7 ", expected: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Coerce(tt.token)
			f, ok := v.Float()
			require.True(t, ok, "token %q should be numeric, got %q", tt.token, v.String())
			assert.InDelta(t, tt.expected, f, 1e-9)
		})
	}
}

func TestCoercePassthrough(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		expected string
	}{
		{name: "word", token: "DNF", expected: "DNF"},
		{name: "date", token: "03/05 Tue", expected: "03/05 Tue"},
		{name: "empty", token: "", expected: ""},
		{name: "blank", token: "   ", expected: ""},
		{name: "malformed_number", token: "1.2.3", expected: "1.2.3"},
		{name: "lone_dot", token: ".", expected: "."},
		{name: "unknown_unit", token: "12 yd", expected: "12 yd"},
		{name: "missing_space_before_unit", token: "10mi", expected: "10mi"},
		{name: "four_part_clock", token: "1:2:3:4", expected: "1:2:3:4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Coerce(tt.token)
			assert.False(t, v.IsNumeric())
			assert.Equal(t, tt.expected, v.Text())
		})
	}
}

func TestRulesMatchAtMostOnce(t *testing.T) {
	tokens := []string{
		"42", "77 %", "10 mi", "5 km", "100 ft", "8:30/mi", "5:10/km",
		"78 °F", "12 °C", "34:56", "2:34:56",
	}

	rules := Rules()
	for _, token := range tokens {
		matched := 0
		for _, rule := range rules {
			if rule.Pattern.MatchString(token) {
				matched++
			}
		}
		assert.Equal(t, 1, matched, "token %q", token)
	}
}

func TestCustomCoercerOrder(t *testing.T) {
	yards := Rule{
		Name:    "yards",
		Pattern: regexp.MustCompile(`^([\d.]+)\s+yd$`),
		Convert: scaled(0.9144),
	}

	c := NewCoercer(append(Rules(), yards)...)
	f, ok := c.Coerce("100 yd").Float()
	require.True(t, ok)
	assert.InDelta(t, 91.44, f, 1e-9)

	empty := NewCoercer()
	assert.Equal(t, model.TextValue("42"), empty.Coerce("42"))
}
