package ads

import (
	"context"
	"testing"
	"time"

	"github.com/prismads/prism/internal/config"
	"github.com/prismads/prism/internal/models"
	"github.com/prismads/prism/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testAnalyticsConfig() config.AnalyticsConfig {
	return config.AnalyticsConfig{
		ExcellentCTR:  5,
		ExcellentCVR:  10,
		ExcellentROAS: 5,
		VarianceScale: 1_000_000,
		ForecastDays:  30,
	}
}

func testQualityConfig() config.QualityConfig {
	return config.QualityConfig{
		ScoreThreshold:   3.5,
		MinCTRPercent:    0.5,
		MaxFileSizeBytes: 10 * 1024 * 1024,
		MaxVideoSeconds:  30,
	}
}

type analyticsFixture struct {
	svc       *AnalyticsService
	campaigns storage.CampaignRepo
	store     *storage.InMemoryMetricStore
}

func newAnalyticsFixture(t *testing.T) *analyticsFixture {
	t.Helper()
	campaigns := storage.NewInMemoryCampaignRepo()
	store := storage.NewInMemoryMetricStore()
	svc := NewAnalyticsService(
		campaigns, store, storage.NoopReportCache{},
		testAnalyticsConfig(), testQualityConfig(),
		zap.NewNop(), nil,
	)
	return &analyticsFixture{svc: svc, campaigns: campaigns, store: store}
}

func (f *analyticsFixture) addCampaign(t *testing.T, id, name string, status models.CampaignStatus) *models.Campaign {
	t.Helper()
	c := &models.Campaign{
		ID: id, Name: name, AdvertiserID: "adv_1",
		Status: status, TotalBudget: 10000,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, f.campaigns.Upsert(context.Background(), c))
	return c
}

func (f *analyticsFixture) addSample(t *testing.T, campaignID string, daysAgo int, imps, clicks, convs int64, spend, revenue float64) {
	t.Helper()
	require.NoError(t, f.store.Insert(context.Background(), &models.MetricSample{
		CampaignID:  campaignID,
		Date:        time.Now().UTC().AddDate(0, 0, -daysAgo).Truncate(24 * time.Hour),
		Impressions: imps, Clicks: clicks, Conversions: convs,
		Spend: spend, Revenue: revenue,
	}))
}

func TestCampaignPerformance(t *testing.T) {
	ctx := context.Background()
	f := newAnalyticsFixture(t)
	f.addCampaign(t, "cmp_1", "Launch", models.CampaignStatusActive)
	f.addSample(t, "cmp_1", 2, 1000, 50, 5, 100, 500)
	f.addSample(t, "cmp_1", 1, 2000, 80, 8, 150, 700)

	from := time.Now().UTC().AddDate(0, 0, -7)
	to := time.Now().UTC()

	report, err := f.svc.CampaignPerformance(ctx, "cmp_1", from, to)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), report.Impressions)
	assert.Equal(t, int64(130), report.Clicks)
	assert.Equal(t, 4.8, report.Calculated.ROAS)
	assert.Len(t, report.DailyMetrics, 2)
}

func TestCampaignPerformanceUnknownCampaign(t *testing.T) {
	f := newAnalyticsFixture(t)
	_, err := f.svc.CampaignPerformance(context.Background(), "missing", time.Now().AddDate(0, 0, -7), time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIngestSample(t *testing.T) {
	ctx := context.Background()
	f := newAnalyticsFixture(t)
	f.addCampaign(t, "cmp_1", "Launch", models.CampaignStatusActive)

	err := f.svc.IngestSample(ctx, &models.MetricSample{
		CampaignID: "cmp_1", Impressions: 100, Clicks: 2,
	})
	require.NoError(t, err)

	// The date defaults to today when omitted.
	rows, err := f.store.ListByCampaign(ctx, "cmp_1",
		time.Now().UTC().AddDate(0, 0, -1), time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].Date.IsZero())

	assert.ErrorIs(t, f.svc.IngestSample(ctx, &models.MetricSample{CampaignID: "missing"}), ErrNotFound)
	assert.Error(t, f.svc.IngestSample(ctx, &models.MetricSample{}))
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	f := newAnalyticsFixture(t)
	f.addCampaign(t, "cmp_1", "Leader", models.CampaignStatusActive)
	f.addCampaign(t, "cmp_2", "Trailing", models.CampaignStatusPaused)
	f.addSample(t, "cmp_1", 1, 1000, 50, 5, 100, 900)
	f.addSample(t, "cmp_2", 1, 2000, 20, 1, 200, 300)

	dash, err := f.svc.Dashboard(ctx, 7)
	require.NoError(t, err)

	assert.Equal(t, 2, dash.TotalCampaigns)
	assert.Equal(t, 1, dash.ActiveCampaigns)
	assert.Equal(t, int64(3000), dash.Totals.Impressions)
	assert.Equal(t, 1200.0, dash.Totals.Revenue)
	// 70 clicks / 3000 impressions.
	assert.InDelta(t, 2.33, dash.Averages.CTRPercent, 0.01)

	require.Len(t, dash.TopCampaigns, 2)
	assert.Equal(t, "cmp_1", dash.TopCampaigns[0].CampaignID)
	assert.Equal(t, "Leader", dash.TopCampaigns[0].CampaignName)
}

func TestTrends(t *testing.T) {
	ctx := context.Background()
	f := newAnalyticsFixture(t)
	f.addCampaign(t, "cmp_1", "Riser", models.CampaignStatusActive)
	// CTR climbs day over day: 1%, 2%, 3%.
	f.addSample(t, "cmp_1", 3, 1000, 10, 0, 10, 0)
	f.addSample(t, "cmp_1", 2, 1000, 20, 0, 10, 0)
	f.addSample(t, "cmp_1", 1, 1000, 30, 0, 10, 0)

	report, err := f.svc.Trends(ctx, storage.MetricCTR, "daily", 7, []string{"cmp_1"})
	require.NoError(t, err)
	require.Len(t, report.Series, 1)

	series := report.Series[0]
	assert.Equal(t, "Riser", series.CampaignName)
	require.Len(t, series.Points, 3)
	assert.Equal(t, "up", series.Direction)
	assert.InDelta(t, 1.0, series.Stats.TrendSlope, 1e-9)

	_, err = f.svc.Trends(ctx, storage.MetricCTR, "daily", 7, []string{"missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTrendsWeeklyFold(t *testing.T) {
	ctx := context.Background()
	f := newAnalyticsFixture(t)
	f.addCampaign(t, "cmp_1", "Weekly", models.CampaignStatusActive)
	// Two weeks of flat-but-different CTR: 1% for the older week, 3%
	// for the recent one.
	for d := 7; d <= 13; d++ {
		f.addSample(t, "cmp_1", d, 1000, 10, 0, 0, 0)
	}
	for d := 1; d <= 6; d++ {
		f.addSample(t, "cmp_1", d, 1000, 30, 0, 0, 0)
	}

	report, err := f.svc.Trends(ctx, storage.MetricCTR, "weekly", 14, []string{"cmp_1"})
	require.NoError(t, err)
	require.Len(t, report.Series, 1)
	require.Len(t, report.Series[0].Points, 2)
	assert.InDelta(t, 1.0, report.Series[0].Points[0].Value, 1e-9)
	assert.InDelta(t, 3.0, report.Series[0].Points[1].Value, 1e-9)
	assert.Equal(t, "up", report.Series[0].Direction)
}

func TestABTest(t *testing.T) {
	ctx := context.Background()
	f := newAnalyticsFixture(t)
	f.addCampaign(t, "cmp_a", "Control", models.CampaignStatusActive)
	f.addCampaign(t, "cmp_b", "Variant", models.CampaignStatusActive)

	// Control CTR hovers near 1%, variant near 10%. The heuristic
	// p-value is conservative, so the gap has to be wide for
	// significance.
	controlClicks := []int64{10, 11, 9, 10, 10, 11, 9}
	variantClicks := []int64{100, 101, 99, 100, 102, 98, 100}
	for i := 0; i < 7; i++ {
		f.addSample(t, "cmp_a", 7-i, 1000, controlClicks[i], 0, 10, 0)
		f.addSample(t, "cmp_b", 7-i, 1000, variantClicks[i], 0, 10, 0)
	}

	report, err := f.svc.ABTest(ctx, "cmp_a", "cmp_b", storage.MetricCTR, 10)
	require.NoError(t, err)

	assert.True(t, report.Result.Significant)
	assert.Greater(t, report.Result.EffectSize, 0.0)
	assert.Contains(t, report.Recommendation, "test campaign")
	assert.InDelta(t, 1.0, report.ControlMean, 0.1)
	assert.InDelta(t, 10.0, report.TestMean, 0.1)

	_, err = f.svc.ABTest(ctx, "cmp_a", "missing", storage.MetricCTR, 10)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestABTestInsufficientData(t *testing.T) {
	ctx := context.Background()
	f := newAnalyticsFixture(t)
	f.addCampaign(t, "cmp_a", "Control", models.CampaignStatusActive)
	f.addCampaign(t, "cmp_b", "Variant", models.CampaignStatusActive)
	f.addSample(t, "cmp_a", 1, 1000, 10, 0, 10, 0)
	f.addSample(t, "cmp_b", 1, 1000, 40, 0, 10, 0)

	report, err := f.svc.ABTest(ctx, "cmp_a", "cmp_b", storage.MetricCTR, 7)
	require.NoError(t, err)

	assert.False(t, report.Result.Significant)
	assert.Equal(t, 1.0, report.Result.PValue)
	assert.Contains(t, report.Recommendation, "No statistically significant")
}

func TestForecast(t *testing.T) {
	ctx := context.Background()
	f := newAnalyticsFixture(t)
	f.addCampaign(t, "cmp_1", "Grower", models.CampaignStatusActive)
	f.addSample(t, "cmp_1", 2, 1000, 50, 5, 100, 500)
	f.addSample(t, "cmp_1", 1, 1000, 50, 5, 150, 700)

	report, err := f.svc.Forecast(ctx, "cmp_1", 30)
	require.NoError(t, err)

	// Last revenue 700 plus slope 200 over 30 days.
	assert.Equal(t, 6700.0, report.Forecast.ProjectedRevenue)
	assert.Equal(t, 1650.0, report.Forecast.ProjectedSpend)
	// 1200 over 2 observed days extrapolated to 30.
	assert.Equal(t, 18000.0, report.ProjectedMonthlyRevenue)
	assert.Equal(t, 30, report.ProjectionDays)

	_, err = f.svc.Forecast(ctx, "missing", 30)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAlerts(t *testing.T) {
	ctx := context.Background()
	f := newAnalyticsFixture(t)

	// Healthy active campaign: no alerts.
	f.addCampaign(t, "cmp_ok", "Healthy", models.CampaignStatusActive)
	f.addSample(t, "cmp_ok", 1, 5000, 250, 25, 100, 900)

	// Low CTR with enough impressions to matter.
	f.addCampaign(t, "cmp_low", "Sleeper", models.CampaignStatusActive)
	f.addSample(t, "cmp_low", 1, 10000, 10, 0, 50, 100)

	// Over budget: critical.
	over := f.addCampaign(t, "cmp_over", "Runaway", models.CampaignStatusActive)
	over.Spend = 12000
	require.NoError(t, f.campaigns.Upsert(ctx, over))
	f.addSample(t, "cmp_over", 1, 5000, 250, 25, 100, 900)

	// Paused campaigns are not scanned.
	f.addCampaign(t, "cmp_paused", "Parked", models.CampaignStatusPaused)
	f.addSample(t, "cmp_paused", 1, 10000, 10, 0, 50, 10)

	alerts, err := f.svc.Alerts(ctx)
	require.NoError(t, err)

	types := make(map[string]Alert)
	for _, a := range alerts {
		types[a.Type+":"+a.CampaignID] = a
	}

	low, ok := types["low_ctr:cmp_low"]
	require.True(t, ok)
	assert.Equal(t, SeverityMedium, low.Severity)

	crit, ok := types["budget_exceeded:cmp_over"]
	require.True(t, ok)
	assert.Equal(t, SeverityCritical, crit.Severity)

	_, healthyFlagged := types["low_ctr:cmp_ok"]
	assert.False(t, healthyFlagged)
	_, pausedFlagged := types["low_ctr:cmp_paused"]
	assert.False(t, pausedFlagged)
}

func TestAlertsAutoPause(t *testing.T) {
	ctx := context.Background()
	campaigns := storage.NewInMemoryCampaignRepo()
	store := storage.NewInMemoryMetricStore()

	qcfg := testQualityConfig()
	qcfg.AutoPause = true
	svc := NewAnalyticsService(campaigns, store, storage.NoopReportCache{},
		testAnalyticsConfig(), qcfg, zap.NewNop(), nil)

	c := &models.Campaign{
		ID: "cmp_1", Name: "Runaway", AdvertiserID: "adv_1",
		Status: models.CampaignStatusActive, TotalBudget: 1000, Spend: 1500,
	}
	require.NoError(t, campaigns.Upsert(ctx, c))

	alerts, err := svc.Alerts(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, alerts)

	paused, err := campaigns.GetByID(ctx, "cmp_1")
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusPaused, paused.Status)
}
