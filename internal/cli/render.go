package cli

import (
	"fmt"
	"strings"

	"trade-report/internal/ingest"
	"trade-report/internal/models"
	"trade-report/internal/report"
	"trade-report/internal/store"
)

// RenderSummary prints a parsed report as a set of panels.
func RenderSummary(out *Output, doc string, r *models.SummaryReport) {
	d := r.Derived

	header := []string{
		fmt.Sprintf("Document:  %s", doc),
		fmt.Sprintf("Pages:     %d", r.PageCount),
	}
	if d.ReportPeriod != nil {
		header = append(header, fmt.Sprintf("Period:    %s to %s", d.ReportPeriod.Start, d.ReportPeriod.End))
	}
	out.Panel(r.ReportTitle, header)

	out.Panel(report.SectionTitle(models.SectionSummary), []string{
		row("Growth", FormatOptionalPercent(d.Summary.GrowthPct)),
		row("Drawdown", FormatOptionalPercent(d.Summary.DrawdownPct)),
		row("Profit factor", FormatOptional(d.Summary.ProfitFactor, 2)),
		row("Recovery factor", FormatOptional(d.Summary.RecoveryFactor, 2)),
		row("Sharp ratio", FormatOptional(d.Summary.SharpRatio, 2)),
		row("Start balance", FormatOptionalAmount(d.Summary.StartBalance)),
		row("Final balance", FormatOptionalAmount(d.Summary.FinalBalance)),
		row("Max drawdown", FormatOptionalPercent(d.Summary.MaxDrawdownPct)),
		row("Max deposit load", FormatOptionalPercent(d.Summary.MaxDepositLoadPct)),
		row("Trades per week", FormatOptional(d.Summary.TradesPerWeek, 3)),
		row("Avg hold time", FormatMinutes(d.Summary.AvgHoldMinutes)),
	})

	out.Panel(report.SectionTitle(models.SectionProfitLoss), []string{
		row("Gross profit", FormatOptionalAmount(d.ProfitLoss.GrossProfit)),
		row("Gross loss", FormatOptionalAmount(d.ProfitLoss.GrossLoss)),
		row("Net P/L", pnlOrMissing(out, d.ProfitLoss.NetPnL)),
		row("Commissions", FormatOptionalAmount(d.ProfitLoss.Commissions)),
		row("Swaps", FormatOptionalAmount(d.ProfitLoss.Swaps)),
		row("Dividends", FormatOptionalAmount(d.ProfitLoss.Dividends)),
	})

	out.Panel(report.SectionTitle(models.SectionLongShort), []string{
		row("Trades", FormatOptionalInt(d.LongShort.TotalTrades)),
		row("Long", countWithPct(d.LongShort.LongCount, d.LongShort.LongPct)),
		row("Short", countWithPct(d.LongShort.ShortCount, d.LongShort.ShortPct)),
		row("Win rate", FormatOptionalPercent(d.LongShort.WinRatePct)),
		row("Win trades", FormatOptionalInt(d.LongShort.WinTrades)),
		row("Average P/L", FormatOptionalAmount(d.LongShort.AvgPL)),
	})

	symbols := []string{
		row("Primary symbol", FormatOptionalString(d.Symbols.PrimarySymbol)),
		row("Net profit", FormatOptionalAmount(d.Symbols.NetProfit)),
		row("Profit factor", FormatOptional(d.Symbols.ProfitFactor, 2)),
		row("Manual trades", FormatOptionalInt(d.Symbols.ManualTrades)),
		row("Signals", FormatOptionalInt(d.Symbols.Signals)),
	}
	for _, item := range d.Symbols.Items {
		symbols = append(symbols, row("  "+item.Symbol, FormatOptionalAmount(item.NetPnL)))
	}
	out.Panel(report.SectionTitle(models.SectionSymbols), symbols)

	out.Panel(report.SectionTitle(models.SectionRisks), []string{
		row("Balance", FormatOptionalAmount(d.Risks.Balance)),
		row("Drawdown", FormatOptionalPercent(d.Risks.DrawdownPct)),
		row("Deposit load", FormatOptionalPercent(d.Risks.DepositLoadPct)),
		row("Best trade", FormatOptionalAmount(d.Risks.BestTrade)),
		row("Worst trade", FormatOptionalAmount(d.Risks.WorstTrade)),
		row("Max consecutive wins", FormatOptionalInt(d.Risks.MaxConsecutiveWins)),
		row("Max consecutive losses", FormatOptionalInt(d.Risks.MaxConsecutiveLosses)),
		row("Max consecutive profit", FormatOptionalAmount(d.Risks.MaxConsecutiveProfit)),
		row("Max consecutive loss", FormatOptionalAmount(d.Risks.MaxConsecutiveLoss)),
	})

	if len(d.Visuals.EquityCurve) > 0 {
		first := d.Visuals.EquityCurve[0]
		last := d.Visuals.EquityCurve[len(d.Visuals.EquityCurve)-1]
		out.Dim("Equity curve: %d points, %s %s to %s %s",
			len(d.Visuals.EquityCurve), first.Date, FormatAmount(first.Value), last.Date, FormatAmount(last.Value))
	}
	var days []string
	for _, wd := range d.Visuals.WeekdayDistribution {
		if wd.Count > 0 {
			days = append(days, fmt.Sprintf("%s %d", wd.Day, wd.Count))
		}
	}
	if len(days) > 0 {
		out.Dim("Trades by weekday: %s", strings.Join(days, ", "))
	}
}

// RenderTrades prints trade records as a table.
func RenderTrades(out *Output, trades []models.TradeRecord) {
	if len(trades) == 0 {
		out.Warning("No trades found")
		return
	}

	table := NewTable(out, "Date", "Symbol", "Side", "Entry", "Exit", "P/L", "Strategy")
	total := 0.0
	wins := 0
	for _, t := range trades {
		table.AddRow(
			FormatDateTime(t.Date),
			t.Symbol,
			string(t.Side),
			FormatPrice(t.EntryPrice),
			FormatPrice(t.ExitPrice),
			out.PnL(t.ProfitLoss),
			TruncateString(t.StrategyName, 24),
		)
		total += t.ProfitLoss
		if t.IsWin() {
			wins++
		}
	}
	table.Render()
	out.Println()
	out.Printf("%d trades, %d winning, net %s\n", len(trades), wins, out.PnL(total))
}

// RenderImport prints the outcome of a trades-mode upload.
func RenderImport(out *Output, res *ingest.Result) {
	RenderTrades(out, res.Trades)
	if res.Batch == nil {
		out.Dim("Not saved (use --save to store these trades)")
		return
	}
	out.Success("Imported %d trades from %s (%d already stored)",
		res.Batch.ImportedCount, res.Document, res.Batch.SkippedCount)
	out.Dim("Import %s", res.Batch.ID)
}

// RenderImports prints import batches as a table.
func RenderImports(out *Output, batches []store.ImportBatch) {
	if len(batches) == 0 {
		out.Warning("No imports found")
		return
	}
	table := NewTable(out, "Imported at", "Document", "Strategy", "Imported", "Skipped", "ID")
	for _, b := range batches {
		table.AddRow(
			FormatDateTime(b.CreatedAt),
			TruncateString(b.Document, 32),
			b.StrategyName,
			fmt.Sprintf("%d", b.ImportedCount),
			fmt.Sprintf("%d", b.SkippedCount),
			b.ID,
		)
	}
	table.Render()
}

func row(label, value string) string {
	return fmt.Sprintf("%-24s %s", label, value)
}

func countWithPct(count *int, pct *float64) string {
	if count == nil {
		return missing
	}
	if pct == nil {
		return fmt.Sprintf("%d", *count)
	}
	return fmt.Sprintf("%d (%.2f%%)", *count, *pct)
}

func pnlOrMissing(out *Output, v *float64) string {
	if v == nil {
		return missing
	}
	return out.PnL(*v)
}
