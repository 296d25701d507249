package store

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "trade-report/internal/errors"
	"trade-report/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "trades.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleTrades() []models.TradeRecord {
	return []models.TradeRecord{
		{
			Symbol: "EURUSD", Side: models.SideLong, EntryPrice: 1.085, ExitPrice: 1.092, ProfitLoss: 45.3,
			Date: time.Date(2024, 3, 14, 10, 15, 0, 0, time.UTC), Notes: "Import MT5 (BUY)", Source: models.SourceImport,
		},
		{
			Symbol: "GBPUSD", Side: models.SideShort, EntryPrice: 1.27, ExitPrice: 1.265, ProfitLoss: 50,
			Date: time.Date(2024, 3, 15, 11, 0, 0, 0, time.UTC), Notes: "Import MT5 (SELL)", Source: models.SourceImport,
		},
	}
}

func TestSaveImported(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	trades := sampleTrades()

	batch, err := s.SaveImported(ctx, ImportRequest{OwnerID: "u1", StrategyName: "scalper", Document: "a.pdf", Trades: trades})
	require.NoError(t, err)

	assert.NotEmpty(t, batch.ID)
	assert.Equal(t, 2, batch.ImportedCount)
	assert.Equal(t, 0, batch.SkippedCount)
	for _, tr := range trades {
		assert.NotEmpty(t, tr.ID)
		assert.Equal(t, "u1", tr.OwnerID)
		assert.Equal(t, "scalper", tr.StrategyName)
	}

	got, err := s.ListTrades(ctx, TradeFilter{OwnerID: "u1"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "GBPUSD", got[0].Symbol, "newest first")
	assert.Equal(t, models.SideShort, got[0].Side)
	assert.True(t, trades[1].Date.Equal(got[0].Date))
	assert.Equal(t, "Import MT5 (SELL)", got[0].Notes)
}

func TestSaveImported_SkipsDuplicates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.SaveImported(ctx, ImportRequest{OwnerID: "u1", Trades: sampleTrades()})
	require.NoError(t, err)

	batch, err := s.SaveImported(ctx, ImportRequest{OwnerID: "u1", Trades: sampleTrades()})
	require.NoError(t, err)
	assert.Equal(t, 0, batch.ImportedCount)
	assert.Equal(t, 2, batch.SkippedCount)

	other, err := s.SaveImported(ctx, ImportRequest{OwnerID: "u2", Trades: sampleTrades()})
	require.NoError(t, err)
	assert.Equal(t, 2, other.ImportedCount)

	imports, err := s.ListImports(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Len(t, imports, 2)
}

func TestSaveImported_RequiresOwner(t *testing.T) {
	s := newTestStore(t)
	_, err := s.SaveImported(context.Background(), ImportRequest{Trades: sampleTrades()})
	assert.ErrorIs(t, err, apperrors.ErrInputValidation)
}

func TestListTrades_Filters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.SaveImported(ctx, ImportRequest{OwnerID: "u1", StrategyName: "swing", Trades: sampleTrades()})
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter TradeFilter
		want   int
	}{
		{"symbol", TradeFilter{Symbol: "EURUSD"}, 1},
		{"side", TradeFilter{Side: models.SideShort}, 1},
		{"strategy", TradeFilter{StrategyName: "swing"}, 2},
		{"unknown strategy", TradeFilter{StrategyName: "none"}, 0},
		{"from date", TradeFilter{StartDate: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)}, 1},
		{"until date", TradeFilter{EndDate: time.Date(2024, 3, 14, 23, 0, 0, 0, time.UTC)}, 1},
		{"limit", TradeFilter{Limit: 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListTrades(ctx, tt.filter)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestListTrades_CancelledContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.ListTrades(ctx, TradeFilter{})
	assert.ErrorIs(t, err, apperrors.ErrDatabaseError)
}

// Property: saving trades and listing them back preserves every field.
func TestProperty_TradeRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	symbols := []string{"EURUSD", "GBPUSD", "XAUUSD", "US500", "BTCUSD"}
	run := 0

	properties.Property("save then list produces equivalent trades", prop.ForAll(
		func(symbolIdx int, entry, exit, pnl float64, minutes int, short bool) bool {
			run++
			owner := fmt.Sprintf("owner-%d", run)
			side := models.SideLong
			if short {
				side = models.SideShort
			}
			in := models.TradeRecord{
				Symbol:     symbols[symbolIdx%len(symbols)],
				Side:       side,
				EntryPrice: entry,
				ExitPrice:  exit,
				ProfitLoss: pnl,
				Date:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(minutes) * time.Minute),
				Source:     models.SourceImport,
			}

			if _, err := s.SaveImported(ctx, ImportRequest{OwnerID: owner, Trades: []models.TradeRecord{in}}); err != nil {
				t.Logf("save failed: %v", err)
				return false
			}
			out, err := s.ListTrades(ctx, TradeFilter{OwnerID: owner})
			if err != nil || len(out) != 1 {
				t.Logf("list failed: %v (%d rows)", err, len(out))
				return false
			}
			got := out[0]
			return got.Symbol == in.Symbol &&
				got.Side == in.Side &&
				math.Abs(got.EntryPrice-in.EntryPrice) < 1e-9 &&
				math.Abs(got.ExitPrice-in.ExitPrice) < 1e-9 &&
				math.Abs(got.ProfitLoss-in.ProfitLoss) < 1e-9 &&
				got.Date.Equal(in.Date)
		},
		gen.IntRange(0, 100),
		gen.Float64Range(0.0001, 100000),
		gen.Float64Range(0.0001, 100000),
		gen.Float64Range(-10000, 10000),
		gen.IntRange(0, 525600),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

func TestIsBusy(t *testing.T) {
	assert.True(t, isBusy(sqlite3.Error{Code: sqlite3.ErrBusy}))
	assert.True(t, isBusy(apperrors.NewStoreError("commit import", sqlite3.Error{Code: sqlite3.ErrLocked})))
	assert.False(t, isBusy(sqlite3.Error{Code: sqlite3.ErrConstraint}))
	assert.False(t, isBusy(fmt.Errorf("plain")))
}
