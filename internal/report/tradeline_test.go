package report

import (
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade-report/internal/models"
)

func TestExtractTradeLine_Buy(t *testing.T) {
	trade, ok := ExtractTradeLine("2024.03.14 10:15 EURUSD buy 1.0850 1.0920 45.30")
	require.True(t, ok)

	assert.Equal(t, "EURUSD", trade.Symbol)
	assert.Equal(t, models.SideLong, trade.Side)
	assert.Equal(t, 1.085, trade.EntryPrice)
	assert.Equal(t, 1.092, trade.ExitPrice)
	assert.Equal(t, 45.3, trade.ProfitLoss)
	assert.Equal(t, time.Date(2024, 3, 14, 10, 15, 0, 0, time.UTC), trade.Date)
	assert.Equal(t, "Import MT5 (BUY)", trade.Notes)
}

func TestExtractTradeLine_SellDayFirst(t *testing.T) {
	trade, ok := ExtractTradeLine("14.03.2024 EURUSD sell 1.0920 1.0850 -12,40")
	require.True(t, ok)

	assert.Equal(t, models.SideShort, trade.Side)
	assert.Equal(t, 1.092, trade.EntryPrice)
	assert.Equal(t, 1.085, trade.ExitPrice)
	assert.Equal(t, -12.4, trade.ProfitLoss)
	assert.Equal(t, time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), trade.Date)
	assert.Equal(t, "Import MT5 (SELL)", trade.Notes)
}

func TestExtractTradeLine_Rejects(t *testing.T) {
	lines := map[string]string{
		"no side":       "2024.03.14 EURUSD 1.0850 1.0920 45.30",
		"no date":       "EURUSD buy 1.0850 1.0920 45.30",
		"invalid date":  "2024.02.31 EURUSD buy 1.0850 1.0920 45.30",
		"no symbol":     "2024.03.14 buy balance 1.0850 45.30",
		"one number":    "2024.03.14 EURUSD buy 45.30",
		"no price":      "2024.03.14 EURUSD buy 10 45.30",
		"header row":    "Time Symbol Type Volume Price Profit",
		"empty":         "",
		"only keywords": "buy sell",
	}
	for name, line := range lines {
		t.Run(name, func(t *testing.T) {
			_, ok := ExtractTradeLine(line)
			assert.False(t, ok)
		})
	}
}

func TestExtractTrades_DeduplicatesInOrder(t *testing.T) {
	text := strings.Join([]string{
		"Deals",
		"2024.03.15 11:00   GBPUSD sell 1.2700 1.2650 50.00",
		"2024.03.14 10:15 EURUSD buy 1.0850 1.0920 45.30",
		"2024.03.15 11:00 GBPUSD  sell 1.2700 1.2650 50.00",
		"Total 95.30",
	}, "\n")

	trades := ExtractTrades(text)
	require.Len(t, trades, 2)
	assert.Equal(t, "GBPUSD", trades[0].Symbol)
	assert.Equal(t, "EURUSD", trades[1].Symbol)
}

func TestExtractTrades_Empty(t *testing.T) {
	assert.Empty(t, ExtractTrades("1. Summary\n12.5% Growth"))
}

// Arbitrary input never panics and accepted trades always carry a positive price.
func TestProperty_ExtractTradeLineTotal(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	properties.Property("extraction is total", prop.ForAll(
		func(prefix, suffix string) bool {
			line := prefix + " 2024.03.14 EURUSD buy " + suffix
			trade, ok := ExtractTradeLine(CompactSpaces(line))
			if !ok {
				return true
			}
			return trade.EntryPrice > 0 && trade.ExitPrice > 0 && trade.Symbol != ""
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
