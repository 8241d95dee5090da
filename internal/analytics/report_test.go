package analytics

import (
	"testing"
	"time"

	"github.com/prismads/prism/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReport(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC)
	}

	samples := []models.MetricSample{
		{CampaignID: "cmp_1", Date: day(1), Impressions: 1000, Clicks: 50, Conversions: 5, Spend: 100, Revenue: 500},
		{CampaignID: "cmp_1", Date: day(2), Impressions: 2000, Clicks: 80, Conversions: 8, Spend: 150, Revenue: 700},
	}

	report := BuildReport(samples, DefaultRiskConfig())

	// Totals
	assert.Equal(t, int64(3000), report.Impressions)
	assert.Equal(t, int64(130), report.Clicks)
	assert.Equal(t, int64(13), report.Conversions)
	assert.Equal(t, 250.0, report.Spend)
	assert.Equal(t, 1200.0, report.Revenue)
	assert.Equal(t, 2, report.SampleCount)

	// Derived metrics
	assert.InDelta(t, 4.33, report.Calculated.CTRPercent, 0.01)
	assert.Equal(t, 4.8, report.Calculated.ROAS)
	assert.Equal(t, 950.0, report.Calculated.Profit)
	assert.Equal(t, 10.0, report.Calculated.CVRPercent)

	// Series statistics over the daily impression and spend values
	assert.InDelta(t, 500000, report.Calculated.ImpressionVariance, 0.01)
	assert.InDelta(t, 1250, report.Calculated.SpendVariance, 0.01)
	assert.InDelta(t, 1000, report.Calculated.ImpressionTrend, 0.0001)
	assert.InDelta(t, 50, report.Calculated.SpendTrend, 0.0001)

	// Risk and projections
	assert.GreaterOrEqual(t, report.Calculated.RiskScore, 0.0)
	assert.LessOrEqual(t, report.Calculated.RiskScore, 100.0)
	assert.Equal(t, 18000.0, report.Calculated.ProjectedMonthlyRevenue) // 1200/2 * 30

	// 30-day forecast from the revenue/spend series
	assert.Equal(t, 6700.0, report.Forecast.ProjectedRevenue) // 700 + 200*30
	assert.Equal(t, 1650.0, report.Forecast.ProjectedSpend)   // 150 + 50*30

	// Daily breakdown preserves order and raw values
	require.Len(t, report.DailyMetrics, 2)
	assert.Equal(t, "2025-06-01", report.DailyMetrics[0].Date)
	assert.Equal(t, int64(1000), report.DailyMetrics[0].Impressions)
	assert.Equal(t, "2025-06-02", report.DailyMetrics[1].Date)
	assert.Equal(t, 700.0, report.DailyMetrics[1].Revenue)
}

func TestBuildReportEmptyInput(t *testing.T) {
	report := BuildReport(nil, DefaultRiskConfig())

	assert.Equal(t, Totals{}, report.Totals)
	assert.Zero(t, report.Calculated.CTRPercent)
	assert.Zero(t, report.Calculated.ImpressionVariance)
	assert.Zero(t, report.Calculated.ImpressionTrend)
	assert.Zero(t, report.Calculated.ProjectedMonthlyRevenue)
	assert.Equal(t, Forecast{}, report.Forecast)
	assert.Empty(t, report.DailyMetrics)

	// No data means every rate sub-score is at its worst; the score is
	// still a defined value inside the range, never an error.
	assert.InDelta(t, 90, report.Calculated.RiskScore, 0.01)
}

func TestBuildReportSingleSample(t *testing.T) {
	samples := []models.MetricSample{
		{CampaignID: "cmp_9", Date: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
			Impressions: 500, Clicks: 25, Conversions: 2, Spend: 40, Revenue: 90},
	}

	report := BuildReport(samples, DefaultRiskConfig())

	// One observation: no variance, no trend, but totals and rates hold.
	assert.Equal(t, 5.0, report.Calculated.CTRPercent)
	assert.Zero(t, report.Calculated.ImpressionVariance)
	assert.Zero(t, report.Calculated.ImpressionTrend)
	assert.Equal(t, 2700.0, report.Calculated.ProjectedMonthlyRevenue) // 90 * 30
	// Last value carried forward with zero slope.
	assert.Equal(t, 90.0, report.Forecast.ProjectedRevenue)
}
