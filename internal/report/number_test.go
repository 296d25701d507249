package report

import (
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1.234,56", 1234.56, true},
		{"1,234.56", 1234.56, true},
		{"12,5", 12.5, true},
		{"-45.30", -45.3, true},
		{"+7", 7, true},
		{"1 234.50", 1234.5, true},
		{"12.5%", 12.5, true},
		{"120 (12,5 %)", 120, true},
		{"", 0, false},
		{"   ", 0, false},
		{"abc", 0, false},
		{"(12)", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseNumber(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestMetricPercent(t *testing.T) {
	v, ok := MetricPercent("120 (12,5 %)")
	assert.True(t, ok)
	assert.InDelta(t, 12.5, v, 1e-9)

	v, ok = MetricPercent("8.73%")
	assert.True(t, ok)
	assert.InDelta(t, 8.73, v, 1e-9)

	_, ok = MetricPercent("1000")
	assert.False(t, ok)
}

func TestMetricNumber(t *testing.T) {
	v, ok := MetricNumber("-1 250,75 USD")
	assert.True(t, ok)
	assert.InDelta(t, -1250.75, v, 1e-9)

	_, ok = MetricNumber("n/a")
	assert.False(t, ok)
}

func TestRoundHalfAwayFromZero(t *testing.T) {
	assert.Equal(t, 1.13, round(1.125, 2))
	assert.Equal(t, -1.13, round(-1.125, 2))
	assert.Nil(t, roundPtr(nil, 2))
}

// groupThousands inserts sep between groups of three digits.
func groupThousands(whole int64, sep string) string {
	digits := fmt.Sprintf("%d", whole)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteString(sep)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// For any amount, the European and the US rendering parse to the same value.
func TestProperty_ParseNumberSeparatorSymmetry(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("comma-decimal and dot-decimal agree", prop.ForAll(
		func(cents int64) bool {
			whole, frac := cents/100, cents%100
			us := fmt.Sprintf("%s.%02d", groupThousands(whole, ","), frac)
			eu := fmt.Sprintf("%s,%02d", groupThousands(whole, "."), frac)

			a, okA := ParseNumber(us)
			b, okB := ParseNumber(eu)
			if !okA || !okB {
				t.Logf("failed to parse %q or %q", us, eu)
				return false
			}
			return a == b
		},
		gen.Int64Range(0, 100_000_000_000),
	))

	properties.TestingRun(t)
}
