package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade-report/internal/models"
)

func TestExtractMetric(t *testing.T) {
	growth := metric("Growth", 20, PercentRequired, beforeFirst, `Growth`)
	factor := metric("Profit Factor", 30, PercentForbidden, afterFirst, `Profit\s*Factor`)

	tests := []struct {
		name   string
		text   string
		d      Descriptor
		want   string
		wantOK bool
	}{
		{"nearest before", "Balance 1000 12.5% Growth", growth, "12.5%", true},
		{"falls back to after", "Growth: 7,25 %", growth, "7,25 %", true},
		{"skips percent token", "Profit Factor 12% 2.31", factor, "2.31", true},
		{"bracket annex kept", "Profit Factor: 120 (12.5%)", metric("X", 30, PercentAny, afterFirst, `Profit\s*Factor`), "120 (12.5%)", true},
		{"outside window", "Profit Factor ................................... 2.31", factor, "", false},
		{"missing label", "Recovery Factor 3.1", factor, "", false},
		{"empty text", "", factor, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractMetric(tt.text, tt.d)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractMetric_LaterOccurrence(t *testing.T) {
	d := metric("Balance", 10, PercentForbidden, afterFirst, `Balance`)
	got, ok := ExtractMetric("Balance chart ... Balance 1 500.25", d)
	assert.True(t, ok)
	assert.Equal(t, "1 500.25", got)
}

func TestDescriptorsCoverEverySection(t *testing.T) {
	require.Len(t, catalog, len(models.SectionKeys))
	for i, key := range models.SectionKeys {
		assert.Equal(t, key, catalog[i].Key)
		assert.NotEmpty(t, catalog[i].Metrics, key)
		assert.NotEqual(t, string(key), SectionTitle(key))
	}
	assert.Equal(t, "unknown", SectionTitle("unknown"))
}
