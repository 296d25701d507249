package models

// SectionKey identifies one of the five canonical regions of a broker performance report.
type SectionKey string

const (
	SectionSummary    SectionKey = "summary"
	SectionProfitLoss SectionKey = "profit_loss"
	SectionLongShort  SectionKey = "long_short"
	SectionSymbols    SectionKey = "symbols"
	SectionRisks      SectionKey = "risks"
)

// SectionKeys lists the canonical sections in report order.
var SectionKeys = []SectionKey{
	SectionSummary,
	SectionProfitLoss,
	SectionLongShort,
	SectionSymbols,
	SectionRisks,
}

// Section is one canonical region of a report with the raw metric tokens found in it.
type Section struct {
	Key     SectionKey        `json:"key" yaml:"key"`
	Title   string            `json:"title" yaml:"title"`
	Metrics map[string]string `json:"metrics" yaml:"metrics"`
	Excerpt string            `json:"excerpt" yaml:"excerpt"`
	RawText string            `json:"raw_text,omitempty" yaml:"-"`
}

// SummaryReport is the result of parsing a report in summary mode.
type SummaryReport struct {
	ReportTitle string         `json:"report_title" yaml:"report_title"`
	PageCount   int            `json:"page_count" yaml:"page_count"`
	Sections    []Section      `json:"sections" yaml:"sections"`
	Derived     DerivedMetrics `json:"derived" yaml:"derived"`
}

// ReportPeriod is the reporting window named in the report title, as ISO dates.
type ReportPeriod struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

// DerivedMetrics groups the metrics computed from a report. Every scalar is optional.
type DerivedMetrics struct {
	ReportPeriod *ReportPeriod     `json:"report_period" yaml:"report_period"`
	Summary      SummaryMetrics    `json:"summary" yaml:"summary"`
	ProfitLoss   ProfitLossMetrics `json:"profit_loss" yaml:"profit_loss"`
	LongShort    LongShortMetrics  `json:"long_short" yaml:"long_short"`
	Symbols      SymbolMetrics     `json:"symbols" yaml:"symbols"`
	Risks        RiskMetrics       `json:"risks" yaml:"risks"`
	Visuals      Visuals           `json:"visuals" yaml:"visuals"`
}

// SummaryMetrics holds headline account statistics.
type SummaryMetrics struct {
	GrowthPct         *float64 `json:"growth_pct" yaml:"growth_pct"`
	DrawdownPct       *float64 `json:"drawdown_pct" yaml:"drawdown_pct"`
	ProfitFactor      *float64 `json:"profit_factor" yaml:"profit_factor"`
	StartBalance      *float64 `json:"start_balance" yaml:"start_balance"`
	FinalBalance      *float64 `json:"final_balance" yaml:"final_balance"`
	SharpRatio        *float64 `json:"sharp_ratio" yaml:"sharp_ratio"`
	RecoveryFactor    *float64 `json:"recovery_factor" yaml:"recovery_factor"`
	MaxDrawdownPct    *float64 `json:"max_drawdown_pct" yaml:"max_drawdown_pct"`
	MaxDepositLoadPct *float64 `json:"max_deposit_load_pct" yaml:"max_deposit_load_pct"`
	TradesPerWeek     *float64 `json:"trades_per_week" yaml:"trades_per_week"`
	AvgHoldMinutes    *float64 `json:"avg_hold_minutes" yaml:"avg_hold_minutes"`
}

// ProfitLossMetrics holds gross results and costs.
type ProfitLossMetrics struct {
	GrossProfit *float64 `json:"gross_profit" yaml:"gross_profit"`
	GrossLoss   *float64 `json:"gross_loss" yaml:"gross_loss"`
	NetPnL      *float64 `json:"net_pnl" yaml:"net_pnl"`
	Commissions *float64 `json:"commissions" yaml:"commissions"`
	Swaps       *float64 `json:"swaps" yaml:"swaps"`
	Dividends   *float64 `json:"dividends" yaml:"dividends"`
}

// LongShortMetrics holds the direction breakdown.
type LongShortMetrics struct {
	LongCount   *int     `json:"long_count" yaml:"long_count"`
	LongPct     *float64 `json:"long_pct" yaml:"long_pct"`
	ShortCount  *int     `json:"short_count" yaml:"short_count"`
	ShortPct    *float64 `json:"short_pct" yaml:"short_pct"`
	TotalTrades *int     `json:"total_trades" yaml:"total_trades"`
	WinRatePct  *float64 `json:"win_rate_pct" yaml:"win_rate_pct"`
	WinTrades   *int     `json:"win_trades" yaml:"win_trades"`
	NetPnL      *float64 `json:"net_pnl" yaml:"net_pnl"`
	AvgPL       *float64 `json:"avg_pl" yaml:"avg_pl"`
}

// SymbolMetrics holds the per-instrument breakdown.
type SymbolMetrics struct {
	PrimarySymbol *string      `json:"primary_symbol" yaml:"primary_symbol"`
	NetProfit     *float64     `json:"net_profit" yaml:"net_profit"`
	ProfitFactor  *float64     `json:"profit_factor" yaml:"profit_factor"`
	ManualTrades  *int         `json:"manual_trades" yaml:"manual_trades"`
	Signals       *int         `json:"signals" yaml:"signals"`
	Items         []SymbolItem `json:"items" yaml:"items"`
}

// SymbolItem is one row of the symbol breakdown.
type SymbolItem struct {
	Symbol       string   `json:"symbol" yaml:"symbol"`
	NetPnL       *float64 `json:"net_pnl" yaml:"net_pnl"`
	ProfitFactor *float64 `json:"profit_factor" yaml:"profit_factor"`
}

// RiskMetrics holds balance and streak statistics.
type RiskMetrics struct {
	Balance              *float64 `json:"balance" yaml:"balance"`
	DrawdownPct          *float64 `json:"drawdown_pct" yaml:"drawdown_pct"`
	DepositLoadPct       *float64 `json:"deposit_load_pct" yaml:"deposit_load_pct"`
	BestTrade            *float64 `json:"best_trade" yaml:"best_trade"`
	WorstTrade           *float64 `json:"worst_trade" yaml:"worst_trade"`
	MaxConsecutiveWins   *int     `json:"max_consecutive_wins" yaml:"max_consecutive_wins"`
	MaxConsecutiveLosses *int     `json:"max_consecutive_losses" yaml:"max_consecutive_losses"`
	MaxConsecutiveProfit *float64 `json:"max_consecutive_profit" yaml:"max_consecutive_profit"`
	MaxConsecutiveLoss   *float64 `json:"max_consecutive_loss" yaml:"max_consecutive_loss"`
}

// Visuals carries chart-ready series. Both slices are always non-nil.
type Visuals struct {
	EquityCurve         []EquityCurvePoint `json:"equity_curve" yaml:"equity_curve"`
	WeekdayDistribution []WeekdayCount     `json:"weekday_distribution" yaml:"weekday_distribution"`
}

// EquityCurvePoint is one cumulative balance snapshot.
type EquityCurvePoint struct {
	Date  string  `json:"date" yaml:"date"`
	Value float64 `json:"value" yaml:"value"`
}

// WeekdayCount is the number of trades closed on a weekday.
type WeekdayCount struct {
	Day   string `json:"day" yaml:"day"`
	Count int    `json:"count" yaml:"count"`
}
