package analytics

import "github.com/prismads/prism/internal/models"

// CalculatedMetrics is the derived-metric block of a performance
// report, shaped for the reporting API.
type CalculatedMetrics struct {
	DerivedMetrics

	ImpressionVariance      float64 `json:"impression_variance"`
	SpendVariance           float64 `json:"spend_variance"`
	ImpressionTrend         float64 `json:"impression_trend"`
	SpendTrend              float64 `json:"spend_trend"`
	RiskScore               float64 `json:"risk_score"`
	ProjectedMonthlyRevenue float64 `json:"projected_monthly_revenue"`
}

// DailyMetric is one period's raw observations in the report breakdown.
type DailyMetric struct {
	Date        string  `json:"date"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Conversions int64   `json:"conversions"`
	Spend       float64 `json:"spend"`
	Revenue     float64 `json:"revenue"`
}

// PerformanceReport is the full analytics output for one campaign and
// date-range query. It is assembled per request from the input samples
// and never mutated afterwards.
type PerformanceReport struct {
	Totals

	Calculated   CalculatedMetrics `json:"calculated_metrics"`
	Forecast     Forecast          `json:"forecast"`
	DailyMetrics []DailyMetric     `json:"daily_metrics"`
}

// BuildReport assembles the full performance report for a chronological
// window of samples. An empty collection produces a report of zero and
// degenerate values rather than an error; every field has a defined
// no-data default.
func BuildReport(samples []models.MetricSample, cfg RiskConfig) PerformanceReport {
	totals := Aggregate(samples)
	derived := Derive(totals)

	impressions := make([]float64, len(samples))
	spends := make([]float64, len(samples))
	revenues := make([]float64, len(samples))
	daily := make([]DailyMetric, len(samples))
	for i, s := range samples {
		impressions[i] = float64(s.Impressions)
		spends[i] = s.Spend
		revenues[i] = s.Revenue
		daily[i] = DailyMetric{
			Date:        s.Date.Format("2006-01-02"),
			Impressions: s.Impressions,
			Clicks:      s.Clicks,
			Conversions: s.Conversions,
			Spend:       s.Spend,
			Revenue:     s.Revenue,
		}
	}

	impressionStats := SeriesStats(impressions)
	spendStats := SeriesStats(spends)

	risk := ScoreRisk(derived.CTRPercent, derived.CVRPercent, derived.ROAS, impressionStats.Variance, cfg)

	return PerformanceReport{
		Totals: totals,
		Calculated: CalculatedMetrics{
			DerivedMetrics:          derived,
			ImpressionVariance:      Round2(impressionStats.Variance),
			SpendVariance:           Round2(spendStats.Variance),
			ImpressionTrend:         Round4(impressionStats.TrendSlope),
			SpendTrend:              Round4(spendStats.TrendSlope),
			RiskScore:               risk,
			ProjectedMonthlyRevenue: ProjectMonthlyRevenue(totals.Revenue, totals.SampleCount),
		},
		Forecast:     Project(revenues, spends, 30),
		DailyMetrics: daily,
	}
}
