package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade-report/internal/models"
)

const sampleTitle = "Trade Report [01.01.2024 - 01.03.2024]"

var samplePages = []string{
	"1. Summary 12.5% Growth 8.73% Drawdown",
	"2. Profit & Loss 1000 Gross Profit -400 Gross Loss",
	"3. Long & Short 6 (60.00%) Long 4 (40.00%) Short Trades: 10 Win Trades: 55.5%",
	"4. Symbols 600.00 EURUSD Profit Factor by Symbols EURUSD 2.15 Netto Profit by Symbols",
	"5. Risks 1500.00 Balance 8.73% Drawdown Best trade: 120.50 Worst trade: -80.25 Max. consecutive wins: 4 Max. consecutive losses: 2",
}

func clock() time.Time { return fixedNow }

func deriveSample(t *testing.T, pages []string, title string, opts DeriveOptions) models.DerivedMetrics {
	t.Helper()
	if opts.Now == nil {
		opts.Now = clock
	}
	return Derive(BuildSections(pages, 0), title, nil, opts)
}

func TestDerive_FullReport(t *testing.T) {
	d := deriveSample(t, samplePages, sampleTitle, DeriveOptions{})

	require.NotNil(t, d.ReportPeriod)
	assert.Equal(t, models.ReportPeriod{Start: "2024-01-01", End: "2024-03-01"}, *d.ReportPeriod)

	s := d.Summary
	assert.Equal(t, 12.5, *s.GrowthPct)
	assert.Equal(t, 8.73, *s.DrawdownPct)
	assert.Equal(t, 8.73, *s.MaxDrawdownPct)
	assert.Equal(t, 2.5, *s.ProfitFactor)
	assert.Equal(t, 900.0, *s.StartBalance)
	assert.Equal(t, 1500.0, *s.FinalBalance)
	assert.Equal(t, 1.167, *s.TradesPerWeek)
	assert.InDelta(t, 7.6365, *s.RecoveryFactor, 1e-9)
	assert.Nil(t, s.SharpRatio)
	assert.Nil(t, s.AvgHoldMinutes)

	pl := d.ProfitLoss
	assert.Equal(t, 1000.0, *pl.GrossProfit)
	assert.Equal(t, -400.0, *pl.GrossLoss)
	assert.Equal(t, 600.0, *pl.NetPnL)

	ls := d.LongShort
	assert.Equal(t, 6, *ls.LongCount)
	assert.Equal(t, 60.0, *ls.LongPct)
	assert.Equal(t, 4, *ls.ShortCount)
	assert.Equal(t, 40.0, *ls.ShortPct)
	assert.Equal(t, 10, *ls.TotalTrades)
	assert.Equal(t, 55.5, *ls.WinRatePct)
	assert.Nil(t, ls.WinTrades)

	sym := d.Symbols
	require.NotNil(t, sym.PrimarySymbol)
	assert.Equal(t, "EURUSD", *sym.PrimarySymbol)
	assert.Equal(t, 600.0, *sym.NetProfit)
	assert.Equal(t, 2.15, *sym.ProfitFactor)
	require.Len(t, sym.Items, 1)
	assert.Equal(t, "EURUSD", sym.Items[0].Symbol)

	r := d.Risks
	assert.Equal(t, 120.5, *r.BestTrade)
	assert.Equal(t, -80.25, *r.WorstTrade)
	assert.Equal(t, 4, *r.MaxConsecutiveWins)
	assert.Equal(t, 2, *r.MaxConsecutiveLosses)

	require.Len(t, d.Visuals.EquityCurve, 3)
	assert.Equal(t, 900.0, d.Visuals.EquityCurve[0].Value)
	assert.Equal(t, 1500.0, d.Visuals.EquityCurve[2].Value)
}

func TestDerive_ProfitFactorFromGross(t *testing.T) {
	d := deriveSample(t, []string{"1. Summary", "2. Profit & Loss 1000 Gross Profit -400 Gross Loss"}, "", DeriveOptions{})

	assert.Equal(t, 2.5, *d.Summary.ProfitFactor)
	assert.Equal(t, 600.0, *d.ProfitLoss.NetPnL)
	assert.Nil(t, d.ReportPeriod)
}

func TestDerive_AdjacentNumbersStaySeparate(t *testing.T) {
	d := deriveSample(t, []string{"1. Summary Balance 1000 12.5% Growth"}, "", DeriveOptions{})
	assert.Equal(t, 12.5, *d.Summary.GrowthPct)

	d = deriveSample(t, []string{"1. Summary", "2. Profit & Loss 1 500.00 Gross Profit -1 000 Gross Loss"}, "", DeriveOptions{})
	assert.Equal(t, 1500.0, *d.ProfitLoss.GrossProfit)
	assert.Equal(t, 500.0, *d.ProfitLoss.NetPnL)
}

func TestDerive_ClusterRecoveryIsLastResort(t *testing.T) {
	pages := []string{"1. Summary Total051.42052.3101012.500%100%8.73%0%100%31.2%01130s1d47m"}

	d := deriveSample(t, pages, "", DeriveOptions{Recovery: []RecoveryStrategy{CompositeClusterStrategy{}}})
	s := d.Summary
	assert.Equal(t, 1.42, *s.SharpRatio)
	assert.Equal(t, 2.31, *s.ProfitFactor)
	assert.Equal(t, 12.5, *s.RecoveryFactor)
	assert.Equal(t, 8.73, *s.MaxDrawdownPct)
	assert.Equal(t, 31.2, *s.MaxDepositLoadPct)
	assert.Equal(t, 3.0, *s.TradesPerWeek)
	assert.Equal(t, 47.0, *s.AvgHoldMinutes)
	assert.Nil(t, s.DrawdownPct)

	withGross := append([]string{pages[0]}, "2. Profit & Loss 900 Gross Profit -300 Gross Loss")
	d = deriveSample(t, withGross, "", DeriveOptions{Recovery: []RecoveryStrategy{CompositeClusterStrategy{}}})
	assert.Equal(t, 3.0, *d.Summary.ProfitFactor)

	d = deriveSample(t, pages, "", DeriveOptions{})
	assert.Nil(t, d.Summary.SharpRatio)
	assert.Nil(t, d.Summary.ProfitFactor)
}

type panickyStrategy struct{}

func (panickyStrategy) Name() string { return "panicky" }

func (panickyStrategy) Recover(string) (RecoveredMetrics, bool) { panic("boom") }

func TestDerive_PanickingStrategyIsSkipped(t *testing.T) {
	pages := []string{"1. Summary Total051.42052.3101012.500%100%8.73%0%100%31.2%01130s1d47m"}
	d := deriveSample(t, pages, "", DeriveOptions{Recovery: []RecoveryStrategy{panickyStrategy{}, CompositeClusterStrategy{}}})
	assert.Equal(t, 1.42, *d.Summary.SharpRatio)
}

func TestDerive_Empty(t *testing.T) {
	d := deriveSample(t, nil, "", DeriveOptions{})

	assert.Nil(t, d.Summary.ProfitFactor)
	assert.Nil(t, d.ProfitLoss.NetPnL)
	assert.Nil(t, d.Symbols.PrimarySymbol)
	assert.NotNil(t, d.Symbols.Items)
	assert.Empty(t, d.Symbols.Items)
	assert.Empty(t, d.Visuals.EquityCurve)
}

func TestDerive_TotalTradesSkipsWinLabel(t *testing.T) {
	d := deriveSample(t, []string{"", "", "3. Long & Short Win Trades: 7 (70%) Trades: 10"}, "", DeriveOptions{})
	assert.Equal(t, 10, *d.LongShort.TotalTrades)
	assert.Equal(t, 7, *d.LongShort.WinTrades)
}

func TestDerive_TotalTradesFromLongShort(t *testing.T) {
	d := deriveSample(t, []string{"3. Long & Short 6 (60%) Long 4 (40%) Short"}, "", DeriveOptions{})
	assert.Equal(t, 10, *d.LongShort.TotalTrades)
}

func TestParseReportPeriod(t *testing.T) {
	p := ParseReportPeriod("Report [05.02.2024 – 09.02.2024]")
	require.NotNil(t, p)
	assert.Equal(t, "2024-02-05", p.Start)
	assert.Equal(t, "2024-02-09", p.End)

	assert.Nil(t, ParseReportPeriod("Report [31.02.2024 - 01.03.2024]"))
	assert.Nil(t, ParseReportPeriod("Report"))
}

func TestPrimarySymbolSkipsBlacklist(t *testing.T) {
	assert.Equal(t, "GBPUSD", primarySymbol("NETTO PROFIT USD GBPUSD XAUUSD"))
	assert.Empty(t, primarySymbol("TOTAL LONG SHORT"))
}
