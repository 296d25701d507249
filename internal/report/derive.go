package report

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"trade-report/internal/models"
)

// Anchored probes read values whose label and value survive extraction in a
// fixed order. They run before the windowed descriptor tokens.
var (
	growthProbe          = probe(`(<num>)%\s*Growth`)
	summaryDrawdownProbe = probe(`(<num>)%\s*Drawdown`)
	grossProfitProbe     = probe(`(<num>)\s*Gross\s*Profit`)
	plainProfitProbe     = probe(`(<num>)\s*Profit\b`)
	grossLossProbe       = probe(`(<num>)\s*Gross\s*Loss`)
	plainLossProbe       = probe(`(<num>)\s*Loss\b`)
	commissionsProbe     = probe(`(<num>)\s*Commissions`)
	swapsProbe           = probe(`(<num>)\s*Swaps`)
	dividendsProbe       = probe(`(<num>)\s*Dividends`)

	nettoPLProbe    = probe(`Netto\s*P/L:\s*(<num>)`)
	longPairProbe   = probe(`(\d+)\s*\(([\d.,]+)%\)\s*Long`)
	shortPairProbe  = probe(`(\d+)\s*\(([\d.,]+)%\)\s*Short`)
	tradesProbe     = probe(`(?:\b(\w+)\s*)?\bTrades:\s*(\d+)`)
	winRateProbe    = probe(`Win\s*Trades:\s*([+-]?\d[\d.,]*)%`)
	winTradesProbe  = probe(`Win\s*Trades:\s*(\d+)(?:\s|\(|$)`)
	averagePLProbe  = probe(`Average\s*P/L:\s*(<num>%?)`)
	symbolHeadProbe = probe(`4\.\s*Symbols\s*(<num>)\s*([A-Z][A-Z0-9]{2,10})`)
	symbolPFSegment = probe(`Profit\s*Factor\s*by\s*Symbols(.*?)Netto\s*Profit\s*by\s*Symbols`)
	symbolNetProbe  = probe(`(<num>)\s*Netto\s*Profit`)
	manualProbe     = probe(`(\d+)\s*Manual\s*Trading`)
	signalsProbe    = probe(`(\d+)\s*Trading\s*Signals`)

	riskBalanceProbe     = probe(`Risks\s*(<num>)\s*Balance`)
	riskDrawdownProbe    = probe(`Balance\s*(<num>)%\s*Drawdown`)
	riskDepositLoadProbe = probe(`Balance\s*(<num>)%\s*Deposit\s*Load`)
	bestTradeProbe       = probe(`Best\s*trade:\s*(<num>)`)
	worstTradeProbe      = probe(`Worst\s*trade:\s*(<num>)`)
	consecWinsProbe      = probe(`Max\.?\s*consecutive\s*wins:\s*(<num>)`)
	consecLossesProbe    = probe(`Max\.?\s*consecutive\s*losses:\s*(<num>)`)
	consecProfitProbe    = probe(`Max\.?\s*consecutive\s*profit:\s*(<num>)`)
	consecLossProbe      = probe(`Max\.?\s*consecutive\s*loss:\s*(<num>)`)

	periodPattern        = regexp.MustCompile(`\[(\d{2}\.\d{2}\.\d{4})\s*[–-]\s*(\d{2}\.\d{2}\.\d{4})\]`)
	symbolPFPattern      = regexp.MustCompile(`[+-]?\d{1,2}\.\d{1,4}`)
	primarySymbolPattern = regexp.MustCompile(`\b[A-Z]{2,8}\d{0,3}\b`)
)

var primarySymbolBlacklist = map[string]struct{}{
	"DEMO": {}, "USD": {}, "MTWTFSS": {}, "CFD": {}, "YEAR": {}, "TOTAL": {},
	"NETTO": {}, "PROFIT": {}, "SYMBOLS": {}, "RISKS": {}, "LONG": {}, "SHORT": {},
	"GAIN": {}, "LOSS": {}, "BALANCE": {}, "EQUITY": {},
}

// labels whose "Trades:" value is not the trade total
var tradesLabelExclusions = map[string]struct{}{
	"win": {}, "loss": {},
}

// probe compiles a case-insensitive pattern in which <num> stands for one
// report number.
func probe(pattern string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + strings.ReplaceAll(pattern, "<num>", signedNumber))
}

// DeriveOptions controls the fallbacks used by Derive.
type DeriveOptions struct {
	// Recovery strategies are consulted, in order, only for values every
	// structured source left empty. An empty list disables recovery.
	Recovery []RecoveryStrategy
	Now      func() time.Time
	Logger   zerolog.Logger
}

// sectionView exposes one section's text and descriptor tokens.
type sectionView struct {
	text    string
	metrics map[string]string
}

func (v sectionView) find(patterns ...*regexp.Regexp) *float64 {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(v.text); m != nil {
			if value, ok := ParseNumber(m[1]); ok {
				return &value
			}
		}
	}
	return nil
}

func (v sectionView) findInt(patterns ...*regexp.Regexp) *int {
	if f := v.find(patterns...); f != nil {
		return intPtr(*f, true)
	}
	return nil
}

func (v sectionView) number(label string) *float64 {
	raw, ok := v.metrics[label]
	if !ok {
		return nil
	}
	return floatPtr(MetricNumber(raw))
}

func (v sectionView) percent(label string) *float64 {
	raw, ok := v.metrics[label]
	if !ok {
		return nil
	}
	return floatPtr(MetricPercent(raw))
}

func (v sectionView) integer(label string) *int {
	if f := v.number(label); f != nil {
		return intPtr(*f, true)
	}
	return nil
}

// deriver holds the state of a single Derive call.
type deriver struct {
	views     map[models.SectionKey]sectionView
	opts      DeriveOptions
	recovered *RecoveredMetrics
	tried     bool
}

func (d *deriver) view(key models.SectionKey) sectionView {
	return d.views[key]
}

// salvage runs the recovery strategies at most once per call.
func (d *deriver) salvage() RecoveredMetrics {
	if !d.tried {
		d.tried = true
		summary := d.view(models.SectionSummary).text
		for _, s := range d.opts.Recovery {
			if rm, ok := safeRecover(s, summary); ok {
				d.opts.Logger.Debug().Str("strategy", s.Name()).Msg("Recovered summary metrics from degraded text")
				d.recovered = &rm
				break
			}
		}
	}
	if d.recovered == nil {
		return RecoveredMetrics{}
	}
	return *d.recovered
}

func safeRecover(s RecoveryStrategy, text string) (rm RecoveredMetrics, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			rm, ok = RecoveredMetrics{}, false
		}
	}()
	return s.Recover(text)
}

// Derive computes the nested metrics structure from the segmented sections,
// the report title and the trades found in the same document. It never fails;
// a value no source can provide is left nil.
func Derive(sections []models.Section, title string, trades []models.TradeRecord, opts DeriveOptions) models.DerivedMetrics {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	d := &deriver{views: make(map[models.SectionKey]sectionView, len(sections)), opts: opts}
	for _, s := range sections {
		d.views[s.Key] = sectionView{text: s.RawText, metrics: s.Metrics}
	}

	summary := d.view(models.SectionSummary)
	pnl := d.view(models.SectionProfitLoss)
	ls := d.view(models.SectionLongShort)

	period := ParseReportPeriod(title)

	growth := coalesce(summary.find(growthProbe), summary.percent("Growth"))
	summaryDrawdown := coalesce(summary.find(summaryDrawdownProbe), summary.percent("Drawdown"))

	grossProfit := coalesce(
		pnl.find(grossProfitProbe, plainProfitProbe),
		pnl.number("Gross Profit"),
		summary.find(grossProfitProbe),
		summary.number("Gross Profit"),
	)
	grossLoss := coalesce(
		pnl.find(grossLossProbe, plainLossProbe),
		pnl.number("Gross Loss"),
		summary.find(grossLossProbe),
		summary.number("Gross Loss"),
	)

	netPnL := coalesce(ls.find(nettoPLProbe), ls.number("Netto P/L"))
	if netPnL == nil && (grossProfit != nil || grossLoss != nil) {
		sum := valueOr(grossProfit, 0) + valueOr(grossLoss, 0)
		netPnL = &sum
	}

	longShort := d.deriveLongShort(netPnL)
	symbols := d.deriveSymbols()
	riskMetrics := d.deriveRisks()

	profitFactor := d.profitFactor(grossProfit, grossLoss, symbols.ProfitFactor)

	var startBalance *float64
	if riskMetrics.Balance != nil && netPnL != nil {
		sb := *riskMetrics.Balance - *netPnL
		startBalance = &sb
	}

	drawdown := coalesce(summaryDrawdown, riskMetrics.DrawdownPct)
	maxDrawdown := drawdown
	if maxDrawdown == nil {
		maxDrawdown = d.salvage().MaxDrawdownPct
	}

	recoveryFactor := summary.number("Recovery Factor")
	if recoveryFactor == nil && netPnL != nil && startBalance != nil && maxDrawdown != nil && *maxDrawdown > 0 {
		if ddAbs := *startBalance * (*maxDrawdown / 100); ddAbs > 0 {
			rf := *netPnL / ddAbs
			recoveryFactor = &rf
		}
	}
	if recoveryFactor == nil {
		recoveryFactor = d.salvage().RecoveryFactor
	}

	tradesPerWeek := summary.number("Trades per Week")
	if tradesPerWeek == nil {
		tradesPerWeek = tradesPerWeekOver(longShort.TotalTrades, period)
	}
	if tradesPerWeek == nil {
		tradesPerWeek = d.salvage().TradesPerWeek
	}

	sharpRatio := summary.number("Sharp Ratio")
	if sharpRatio == nil {
		sharpRatio = d.salvage().SharpRatio
	}

	maxDepositLoad := d.salvage().MaxDepositLoadPct
	avgHold := d.salvage().AvgHoldMinutes

	visuals := SynthesizeEquity(trades, startBalance, riskMetrics.Balance, period, opts.Now())

	return models.DerivedMetrics{
		ReportPeriod: period,
		Summary: models.SummaryMetrics{
			GrowthPct:         growth,
			DrawdownPct:       drawdown,
			ProfitFactor:      roundPtr(profitFactor, 4),
			StartBalance:      roundPtr(startBalance, 2),
			FinalBalance:      roundPtr(riskMetrics.Balance, 2),
			SharpRatio:        roundPtr(sharpRatio, 4),
			RecoveryFactor:    roundPtr(recoveryFactor, 4),
			MaxDrawdownPct:    maxDrawdown,
			MaxDepositLoadPct: maxDepositLoad,
			TradesPerWeek:     roundPtr(tradesPerWeek, 3),
			AvgHoldMinutes:    avgHold,
		},
		ProfitLoss: models.ProfitLossMetrics{
			GrossProfit: roundPtr(grossProfit, 2),
			GrossLoss:   roundPtr(grossLoss, 2),
			NetPnL:      roundPtr(netPnL, 2),
			Commissions: coalesce(pnl.find(commissionsProbe), pnl.number("Commissions")),
			Swaps:       coalesce(pnl.find(swapsProbe), pnl.number("Swaps")),
			Dividends:   coalesce(pnl.find(dividendsProbe), pnl.number("Dividends")),
		},
		LongShort: longShort,
		Symbols:   symbols,
		Risks:     riskMetrics,
		Visuals:   visuals,
	}
}

// profitFactor prefers the gross ratio, then the symbols section, then recovery.
func (d *deriver) profitFactor(grossProfit, grossLoss, symbolPF *float64) *float64 {
	if grossProfit != nil && grossLoss != nil && *grossLoss != 0 {
		pf := math.Abs(*grossProfit / *grossLoss)
		return &pf
	}
	if symbolPF != nil {
		return symbolPF
	}
	return d.salvage().ProfitFactor
}

func (d *deriver) deriveLongShort(netPnL *float64) models.LongShortMetrics {
	ls := d.view(models.SectionLongShort)
	out := models.LongShortMetrics{NetPnL: netPnL}

	if m := longPairProbe.FindStringSubmatch(ls.text); m != nil {
		out.LongCount = intPtr(ParseNumber(m[1]))
		out.LongPct = floatPtr(ParseNumber(m[2]))
	}
	if m := shortPairProbe.FindStringSubmatch(ls.text); m != nil {
		out.ShortCount = intPtr(ParseNumber(m[1]))
		out.ShortPct = floatPtr(ParseNumber(m[2]))
	}

	for _, m := range tradesProbe.FindAllStringSubmatch(ls.text, -1) {
		if _, skip := tradesLabelExclusions[strings.ToLower(m[1])]; skip {
			continue
		}
		out.TotalTrades = intPtr(ParseNumber(m[2]))
		break
	}
	if out.TotalTrades == nil && out.LongCount != nil && out.ShortCount != nil {
		total := *out.LongCount + *out.ShortCount
		out.TotalTrades = &total
	}

	out.WinRatePct = roundPtr(coalesce(ls.find(winRateProbe), ls.percent("Win Rate")), 2)
	out.WinTrades = ls.findInt(winTradesProbe)

	for _, m := range averagePLProbe.FindAllStringSubmatch(ls.text, -1) {
		if strings.Contains(m[1], "%") {
			continue
		}
		if v, ok := ParseNumber(m[1]); ok {
			out.AvgPL = &v
			break
		}
	}
	if out.AvgPL == nil {
		out.AvgPL = ls.number("Average P/L")
	}
	return out
}

func (d *deriver) deriveSymbols() models.SymbolMetrics {
	sym := d.view(models.SectionSymbols)
	out := models.SymbolMetrics{Items: []models.SymbolItem{}}

	var primary string
	if m := symbolHeadProbe.FindStringSubmatch(sym.text); m != nil {
		primary = strings.ToUpper(m[2])
		out.NetProfit = floatPtr(ParseNumber(m[1]))
	} else {
		primary = primarySymbol(sym.text)
	}
	if out.NetProfit == nil {
		out.NetProfit = coalesce(sym.find(symbolNetProbe), sym.number("Netto Profit"))
	}
	if primary != "" {
		out.PrimarySymbol = &primary
	}

	if m := symbolPFSegment.FindStringSubmatch(sym.text); m != nil {
		segment := m[1]
		if primary != "" {
			segment = strings.ReplaceAll(segment, primary, " ")
		}
		if candidates := symbolPFPattern.FindAllString(segment, -1); len(candidates) > 0 {
			out.ProfitFactor = floatPtr(ParseNumber(candidates[len(candidates)-1]))
		}
	}
	if out.ProfitFactor == nil {
		out.ProfitFactor = sym.number("Profit Factor by Symbols")
	}

	out.ManualTrades = coalesceInt(sym.findInt(manualProbe), sym.integer("Manual Trading"))
	out.Signals = coalesceInt(sym.findInt(signalsProbe), sym.integer("Trading Signals"))

	if primary != "" {
		out.Items = append(out.Items, models.SymbolItem{
			Symbol:       primary,
			NetPnL:       out.NetProfit,
			ProfitFactor: out.ProfitFactor,
		})
	}
	return out
}

func (d *deriver) deriveRisks() models.RiskMetrics {
	r := d.view(models.SectionRisks)
	return models.RiskMetrics{
		Balance:              coalesce(r.find(riskBalanceProbe), r.number("Balance")),
		DrawdownPct:          coalesce(r.find(riskDrawdownProbe), r.percent("Drawdown")),
		DepositLoadPct:       coalesce(r.find(riskDepositLoadProbe), r.percent("Deposit Load")),
		BestTrade:            coalesce(r.find(bestTradeProbe), r.number("Best trade")),
		WorstTrade:           coalesce(r.find(worstTradeProbe), r.number("Worst trade")),
		MaxConsecutiveWins:   coalesceInt(r.findInt(consecWinsProbe), r.integer("Max. consecutive wins")),
		MaxConsecutiveLosses: coalesceInt(r.findInt(consecLossesProbe), r.integer("Max. consecutive losses")),
		MaxConsecutiveProfit: coalesce(r.find(consecProfitProbe), r.number("Max. consecutive profit")),
		MaxConsecutiveLoss:   coalesce(r.find(consecLossProbe), r.number("Max. consecutive loss")),
	}
}

// ParseReportPeriod reads a "[dd.mm.yyyy - dd.mm.yyyy]" range from a report
// title. It returns nil when the title carries no valid range.
func ParseReportPeriod(title string) *models.ReportPeriod {
	m := periodPattern.FindStringSubmatch(title)
	if m == nil {
		return nil
	}
	start, errStart := time.Parse("02.01.2006", m[1])
	end, errEnd := time.Parse("02.01.2006", m[2])
	if errStart != nil || errEnd != nil {
		return nil
	}
	return &models.ReportPeriod{Start: start.Format(isoDate), End: end.Format(isoDate)}
}

func tradesPerWeekOver(total *int, period *models.ReportPeriod) *float64 {
	if total == nil || *total == 0 || period == nil {
		return nil
	}
	start, errStart := time.Parse(isoDate, period.Start)
	end, errEnd := time.Parse(isoDate, period.End)
	if errStart != nil || errEnd != nil {
		return nil
	}
	weeks := math.Max(end.Sub(start).Hours()/24/7, 1.0/7)
	tpw := float64(*total) / weeks
	return &tpw
}

func primarySymbol(text string) string {
	for _, token := range primarySymbolPattern.FindAllString(text, -1) {
		if _, blocked := primarySymbolBlacklist[token]; !blocked {
			return token
		}
	}
	return ""
}

func coalesce(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func coalesceInt(values ...*int) *int {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
