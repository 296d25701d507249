package report

import (
	"sort"
	"time"

	"trade-report/internal/models"
)

const isoDate = "2006-01-02"

var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// SynthesizeEquity builds the chart series for a report.
//
// With trades, the curve accumulates each trade's result on top of start (or
// zero) in date order and the weekday distribution counts trades per day.
// Without trades but with a known start balance, a coarse curve is
// interpolated between start and end across the report period. Otherwise both
// series are empty. now is used only when the period gives no date at all.
func SynthesizeEquity(trades []models.TradeRecord, start, end *float64, period *models.ReportPeriod, now time.Time) models.Visuals {
	visuals := models.Visuals{
		EquityCurve:         []models.EquityCurvePoint{},
		WeekdayDistribution: []models.WeekdayCount{},
	}

	if len(trades) == 0 {
		if start == nil {
			return visuals
		}
		visuals.EquityCurve = interpolateCurve(*start, end, period, now)
		return visuals
	}

	sorted := make([]models.TradeRecord, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	running := 0.0
	if start != nil {
		running = *start
	}
	counts := make(map[time.Weekday]int, 7)
	for _, t := range sorted {
		running += t.ProfitLoss
		visuals.EquityCurve = append(visuals.EquityCurve, models.EquityCurvePoint{
			Date:  t.Date.Format(isoDate),
			Value: round(running, 2),
		})
		counts[t.Date.Weekday()]++
	}
	for _, day := range weekdayOrder {
		visuals.WeekdayDistribution = append(visuals.WeekdayDistribution, models.WeekdayCount{
			Day:   day.String()[:3],
			Count: counts[day],
		})
	}
	return visuals
}

func interpolateCurve(start float64, end *float64, period *models.ReportPeriod, now time.Time) []models.EquityCurvePoint {
	var periodStart, periodEnd string
	if period != nil {
		periodStart, periodEnd = period.Start, period.End
	}
	defaultEnd := firstNonEmpty(periodEnd, periodStart, now.UTC().Format(isoDate))
	startDate := firstNonEmpty(periodStart, defaultEnd)
	endDate := firstNonEmpty(periodEnd, defaultEnd)

	endValue := start
	if end != nil {
		endValue = *end
	}

	if startDate != endDate {
		from, errFrom := time.Parse(isoDate, startDate)
		to, errTo := time.Parse(isoDate, endDate)
		if errFrom == nil && errTo == nil {
			days := int(to.Sub(from).Hours() / 24)
			if days < 1 {
				days = 1
			}
			steps := min(max(days/30, 2), 8)

			curve := make([]models.EquityCurvePoint, 0, steps+1)
			for i := 0; i <= steps; i++ {
				ratio := float64(i) / float64(steps)
				curve = append(curve, models.EquityCurvePoint{
					Date:  from.AddDate(0, 0, int(float64(days)*ratio)).Format(isoDate),
					Value: round(start+(endValue-start)*ratio, 2),
				})
			}
			return curve
		}
	}

	return []models.EquityCurvePoint{
		{Date: startDate, Value: round(start, 2)},
		{Date: defaultEnd, Value: round(endValue, 2)},
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
