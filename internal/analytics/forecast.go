package analytics

import "math"

// Forecast projects revenue and spend forward along their linear
// trends. ConfidencePercent is a coefficient-of-variation style
// heuristic in [0,100] — it is NOT a statistical confidence level, just
// a consistency score: the more the history wobbles relative to its
// mean, the lower it goes.
type Forecast struct {
	ProjectedRevenue  float64 `json:"projected_revenue"`
	ProjectedSpend    float64 `json:"projected_spend"`
	ConfidencePercent float64 `json:"confidence_percent"`
	RevenueTrend      float64 `json:"revenue_trend"`
	SpendTrend        float64 `json:"spend_trend"`
}

// Project extends the last observed revenue and spend along their trend
// slopes for projectionDays. Projections clamp at zero since spend and
// revenue cannot be negative. Empty history yields a zero forecast, and
// a negative projectionDays is treated as zero days.
func Project(revenues, spends []float64, projectionDays int) Forecast {
	if len(revenues) == 0 && len(spends) == 0 {
		return Forecast{}
	}
	if projectionDays < 0 {
		projectionDays = 0
	}

	revenueTrend := TrendSlope(revenues)
	spendTrend := TrendSlope(spends)

	var currentRevenue, currentSpend float64
	if len(revenues) > 0 {
		currentRevenue = revenues[len(revenues)-1]
	}
	if len(spends) > 0 {
		currentSpend = spends[len(spends)-1]
	}

	return Forecast{
		ProjectedRevenue:  Round2(ProjectValue(currentRevenue, revenueTrend, projectionDays)),
		ProjectedSpend:    Round2(ProjectValue(currentSpend, spendTrend, projectionDays)),
		ConfidencePercent: consistencyConfidence(revenues),
		RevenueTrend:      Round4(revenueTrend),
		SpendTrend:        Round4(spendTrend),
	}
}

// ProjectValue extends a single current value along a trend slope,
// floored at zero.
func ProjectValue(current, slope float64, projectionDays int) float64 {
	if projectionDays < 0 {
		projectionDays = 0
	}
	return math.Max(0, current+slope*float64(projectionDays))
}

// ProjectMonthlyRevenue extrapolates total revenue observed over
// daysElapsed to a 30-day run rate. Zero days elapsed means no basis
// for a projection and yields 0.
func ProjectMonthlyRevenue(totalRevenue float64, daysElapsed int) float64 {
	if daysElapsed <= 0 {
		return 0
	}
	dailyAverage := totalRevenue / float64(daysElapsed)
	return Round2(dailyAverage * 30)
}

func consistencyConfidence(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	c := 100 - Variance(values)/math.Max(Mean(values), 1)*100
	return Round2(math.Min(100, math.Max(0, c)))
}
