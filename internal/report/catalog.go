package report

import (
	"regexp"

	"trade-report/internal/models"
)

// sectionDef describes one canonical section: how its heading looks and which
// metrics live in it.
type sectionDef struct {
	Key     models.SectionKey
	Title   string
	Heading *regexp.Regexp
	Metrics []Descriptor
}

var (
	afterFirst  = []Order{After, Before}
	beforeFirst = []Order{Before, After}
)

func metric(label string, window int, percent PercentRule, orders []Order, patterns ...string) Descriptor {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(`(?i)` + p)
	}
	return Descriptor{
		Label:    label,
		Patterns: compiled,
		Orders:   orders,
		Window:   window,
		Percent:  percent,
	}
}

// catalog is ordered like models.SectionKeys.
var catalog = []sectionDef{
	{
		Key:     models.SectionSummary,
		Title:   "Summary",
		Heading: regexp.MustCompile(`(?i)\b1\.\s*Summary\b`),
		Metrics: []Descriptor{
			metric("Growth", 24, PercentRequired, beforeFirst, `Growth`),
			metric("Drawdown", 26, PercentRequired, beforeFirst, `Drawdown`, `Max\.?\s*Drawdown`),
			metric("Profit Factor", 52, PercentForbidden, afterFirst, `Profit\s*Factor`),
			metric("Recovery Factor", 52, PercentForbidden, afterFirst, `Recovery\s*Factor`),
			metric("Sharp Ratio", 52, PercentForbidden, afterFirst, `Sharp\s*Ratio`, `Sharpe\s*Ratio`),
			metric("Trades per Week", 36, PercentAny, afterFirst, `Trades\s*per\s*Week`),
			metric("Gross Profit", 28, PercentForbidden, beforeFirst, `Gross\s*Profit`),
			metric("Gross Loss", 28, PercentForbidden, beforeFirst, `Gross\s*Loss`),
		},
	},
	{
		Key:     models.SectionProfitLoss,
		Title:   "Profit & Loss",
		Heading: regexp.MustCompile(`(?i)\b2\.\s*Profit\s*&\s*Loss\b`),
		Metrics: []Descriptor{
			metric("Profit", 24, PercentForbidden, beforeFirst, `\bProfit\b`),
			metric("Loss", 24, PercentForbidden, beforeFirst, `\bLoss\b`),
			metric("Gross Profit", 28, PercentForbidden, beforeFirst, `Gross\s*Profit`),
			metric("Gross Loss", 28, PercentForbidden, beforeFirst, `Gross\s*Loss`),
			metric("Commissions", 24, PercentAny, afterFirst, `Commissions`),
			metric("Swaps", 24, PercentAny, afterFirst, `Swaps`),
			metric("Dividends", 24, PercentAny, afterFirst, `Dividends`),
		},
	},
	{
		Key:     models.SectionLongShort,
		Title:   "Long & Short",
		Heading: regexp.MustCompile(`(?i)\b3\.\s*Long\s*&\s*Short\b`),
		Metrics: []Descriptor{
			metric("Long", 24, PercentAny, beforeFirst, `\bLong\b`),
			metric("Short", 24, PercentAny, beforeFirst, `\bShort\b`),
			metric("Netto P/L", 28, PercentAny, afterFirst, `Netto\s*P/L`, `Net\s*P/L`),
			metric("Average P/L", 26, PercentForbidden, afterFirst, `Average\s*P/L`),
			metric("Trades", 22, PercentAny, afterFirst, `\bTrades\b`),
			metric("Win Trades", 24, PercentAny, afterFirst, `Win\s*Trades`),
			metric("Win Rate", 32, PercentRequired, afterFirst, `Win\s*Trades`),
		},
	},
	{
		Key:     models.SectionSymbols,
		Title:   "Symbols",
		Heading: regexp.MustCompile(`(?i)\b4\.\s*Symbols\b`),
		Metrics: []Descriptor{
			metric("Netto Profit", 26, PercentAny, beforeFirst, `Netto\s*Profit`, `Net\s*Profit`),
			metric("Profit Factor by Symbols", 52, PercentForbidden, afterFirst, `Profit\s*Factor\s*by\s*Symbols`),
			metric("Fees by Symbols", 22, PercentAny, afterFirst, `Fees\s*by\s*Symbols`),
			metric("Manual Trading", 20, PercentAny, beforeFirst, `Manual\s*Trading`),
			metric("Trading Signals", 20, PercentAny, beforeFirst, `Trading\s*Signals`),
		},
	},
	{
		Key:     models.SectionRisks,
		Title:   "Risks",
		Heading: regexp.MustCompile(`(?i)\b5\.\s*Risks\b`),
		Metrics: []Descriptor{
			metric("Balance", 26, PercentForbidden, beforeFirst, `Balance`),
			metric("Drawdown", 18, PercentRequired, afterFirst, `Drawdown`),
			metric("Deposit Load", 18, PercentRequired, afterFirst, `Deposit\s*Load`),
			metric("Best trade", 24, PercentForbidden, afterFirst, `Best\s*trade`),
			metric("Worst trade", 24, PercentForbidden, afterFirst, `Worst\s*trade`),
			metric("Max. consecutive wins", 18, PercentAny, afterFirst, `Max\.?\s*consecutive\s*wins`),
			metric("Max. consecutive losses", 18, PercentAny, afterFirst, `Max\.?\s*consecutive\s*losses`),
			metric("Max. consecutive profit", 24, PercentAny, afterFirst, `Max\.?\s*consecutive\s*profit`),
			metric("Max. consecutive loss", 24, PercentAny, afterFirst, `Max\.?\s*consecutive\s*loss\b`),
		},
	},
}

// SectionTitle returns the display title of a canonical section.
func SectionTitle(key models.SectionKey) string {
	for _, def := range catalog {
		if def.Key == key {
			return def.Title
		}
	}
	return string(key)
}
