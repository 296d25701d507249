package report

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// signedNumber matches one number as it appears in report text. Digits may be
// grouped in threes by a space, '.' or ','; any other space ends the number.
const signedNumber = `[-+]?\b(?:\d{1,3}(?:[\s.,]\d{3})+|\d+)(?:[.,]\d+)?`

var (
	numericRunPattern     = regexp.MustCompile(`[-+]?\d[\d\s.,]*`)
	bracketPercentPattern = regexp.MustCompile(`\(\s*([-+]?\d[\d\s.,]*)\s*%\s*\)`)
	plainPercentPattern   = regexp.MustCompile(`([-+]?\d[\d\s.,]*)\s*%`)
)

// ParseNumber converts a locale-ambiguous numeric token to a float.
//
// When both ',' and '.' appear, the rightmost one is the decimal separator and
// the other one groups thousands. A lone ',' is a decimal separator. Whitespace,
// a trailing '%' and a trailing parenthetical annex are ignored. The second
// return value is false for empty or unparsable input.
func ParseNumber(token string) (float64, bool) {
	raw := strings.Join(strings.Fields(token), "")
	if i := strings.IndexByte(raw, '('); i > 0 {
		raw = raw[:i]
	}
	raw = strings.TrimSuffix(raw, "%")
	if raw == "" {
		return 0, false
	}

	lastComma := strings.LastIndexByte(raw, ',')
	lastDot := strings.LastIndexByte(raw, '.')
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			raw = strings.ReplaceAll(raw, ".", "")
			raw = strings.ReplaceAll(raw, ",", ".")
		} else {
			raw = strings.ReplaceAll(raw, ",", "")
		}
	case lastComma >= 0:
		raw = strings.ReplaceAll(raw, ",", ".")
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

// MetricNumber parses the leading numeric run of a raw metric token.
func MetricNumber(raw string) (float64, bool) {
	match := numericRunPattern.FindString(raw)
	if match == "" {
		return 0, false
	}
	return ParseNumber(match)
}

// MetricPercent parses the percentage carried by a raw metric token. A
// bracketed annex such as "120 (12,5 %)" takes precedence over a plain "12.5%".
func MetricPercent(raw string) (float64, bool) {
	if m := bracketPercentPattern.FindStringSubmatch(raw); m != nil {
		return ParseNumber(m[1])
	}
	if m := plainPercentPattern.FindStringSubmatch(raw); m != nil {
		return ParseNumber(m[1])
	}
	return 0, false
}

// round rounds half away from zero to the given number of decimal places.
func round(value float64, places int32) float64 {
	return decimal.NewFromFloat(value).Round(places).InexactFloat64()
}

func roundPtr(value *float64, places int32) *float64 {
	if value == nil {
		return nil
	}
	r := round(*value, places)
	return &r
}

func floatPtr(value float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &value
}

func intPtr(value float64, ok bool) *int {
	if !ok {
		return nil
	}
	i := int(math.Round(value))
	return &i
}
