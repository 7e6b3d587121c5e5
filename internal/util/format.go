package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatNumber formats n with thousands separators and the given decimals.
func FormatNumber(n float64, decimals int) string {
	s := strconv.FormatFloat(math.Abs(n), 'f', decimals, 64)
	intPart, decPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	if n < 0 && strings.Trim(s, "0.") != "" {
		b.WriteByte('-')
	}
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	if decPart != "" {
		b.WriteByte('.')
		b.WriteString(decPart)
	}
	return b.String()
}

// FormatKilometers renders a distance in meters as kilometers.
func FormatKilometers(meters float64) string {
	return FormatNumber(meters/1000, 2) + " km"
}

// FormatClock renders seconds as h:mm:ss, or m:ss below one hour.
func FormatClock(seconds float64) string {
	total := int64(math.Round(seconds))
	sign := ""
	if total < 0 {
		sign = "-"
		total = -total
	}

	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%s%d:%02d:%02d", sign, h, m, s)
	}
	return fmt.Sprintf("%s%d:%02d", sign, m, s)
}
