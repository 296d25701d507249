package report

import "regexp"

// RecoveredMetrics holds summary values salvaged from degraded text.
type RecoveredMetrics struct {
	SharpRatio        *float64
	ProfitFactor      *float64
	RecoveryFactor    *float64
	MaxDrawdownPct    *float64
	MaxDepositLoadPct *float64
	TradesPerWeek     *float64
	AvgHoldMinutes    *float64
}

// RecoveryStrategy salvages summary metrics when structured extraction finds
// nothing. Strategies run only on demand and only over the summary text.
type RecoveryStrategy interface {
	Name() string
	Recover(summaryText string) (RecoveredMetrics, bool)
}

// compositeClusterPattern matches the summary statistics table when the text
// layer glued its cells together, e.g.
// "Total051.42052.3101012.500%100%8.73%0%100%31.2%01130s1d47m".
var compositeClusterPattern = regexp.MustCompile(
	`(?i)Total0?5(?P<sharp>\d+\.\d{2})0?5(?P<pf>\d+\.\d{2})0?10(?P<recovery>\d+\.\d{2})` +
		`0%100%(?P<maxdd>\d+\.\d+)%0%100%(?P<deposit>\d+\.\d+)%011(?P<tradesw>\d)0s1d(?P<holdm>\d+)m`)

// CompositeClusterStrategy decodes the run of summary values that some MT5
// exports emit without separators, splitting it by position.
type CompositeClusterStrategy struct{}

func (CompositeClusterStrategy) Name() string { return "composite-cluster" }

func (CompositeClusterStrategy) Recover(summaryText string) (RecoveredMetrics, bool) {
	m := compositeClusterPattern.FindStringSubmatch(CompactSpaces(summaryText))
	if m == nil {
		return RecoveredMetrics{}, false
	}
	group := func(name string) *float64 {
		return floatPtr(ParseNumber(m[compositeClusterPattern.SubexpIndex(name)]))
	}
	return RecoveredMetrics{
		SharpRatio:        group("sharp"),
		ProfitFactor:      group("pf"),
		RecoveryFactor:    group("recovery"),
		MaxDrawdownPct:    group("maxdd"),
		MaxDepositLoadPct: group("deposit"),
		TradesPerWeek:     group("tradesw"),
		AvgHoldMinutes:    group("holdm"),
	}, true
}
