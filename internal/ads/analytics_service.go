package ads

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/prismads/prism/internal/analytics"
	"github.com/prismads/prism/internal/config"
	"github.com/prismads/prism/internal/metrics"
	"github.com/prismads/prism/internal/models"
	"github.com/prismads/prism/internal/storage"
	"go.uber.org/zap"
)

// Alert severities, ordered.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Alert thresholds that were never configurable in practice. The
// low-CTR floor comes from config; the rest are fixed.
const (
	alertMinImpressions  = 1000
	alertHighCPC         = 5.0
	alertBudgetWarnRatio = 0.9
)

// AnalyticsService is the request-facing wrapper over the analytics
// core: it fetches metric rows, delegates all math to pure functions
// and caches rendered reports.
type AnalyticsService struct {
	campaigns storage.CampaignRepo
	store     storage.MetricStore
	cache     storage.ReportCache

	riskCfg      analytics.RiskConfig
	qualityCfg   config.QualityConfig
	forecastDays int

	logger *zap.Logger
	prom   *metrics.Metrics
}

// NewAnalyticsService constructs an AnalyticsService. cache may be a
// NoopReportCache; prom may be nil in tests.
func NewAnalyticsService(
	campaigns storage.CampaignRepo,
	store storage.MetricStore,
	cache storage.ReportCache,
	analyticsCfg config.AnalyticsConfig,
	qualityCfg config.QualityConfig,
	logger *zap.Logger,
	prom *metrics.Metrics,
) *AnalyticsService {
	return &AnalyticsService{
		campaigns: campaigns,
		store:     store,
		cache:     cache,
		riskCfg: analytics.RiskConfig{
			ExcellentCTR:   analyticsCfg.ExcellentCTR,
			ExcellentCVR:   analyticsCfg.ExcellentCVR,
			ExcellentROAS:  analyticsCfg.ExcellentROAS,
			VarianceScale:  analyticsCfg.VarianceScale,
			CTRWeight:      0.3,
			CVRWeight:      0.3,
			ROASWeight:     0.3,
			VarianceWeight: 0.1,
		},
		qualityCfg:   qualityCfg,
		forecastDays: analyticsCfg.ForecastDays,
		logger:       logger,
		prom:         prom,
	}
}

// IngestSample records one delivery metric sample for a campaign.
func (s *AnalyticsService) IngestSample(ctx context.Context, sample *models.MetricSample) error {
	if sample.CampaignID == "" {
		return fmt.Errorf("campaign_id is required")
	}
	c, err := s.campaigns.GetByID(ctx, sample.CampaignID)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("campaign %s: %w", sample.CampaignID, ErrNotFound)
	}
	if sample.Date.IsZero() {
		sample.Date = time.Now().UTC().Truncate(24 * time.Hour)
	}

	if err := s.store.Insert(ctx, sample); err != nil {
		return err
	}
	// Invalidate is best effort; a stale report expires with its TTL
	// anyway.
	if err := s.cache.Invalidate(ctx, reportCacheKey(sample.CampaignID)); err != nil {
		s.logger.Warn("report cache invalidation failed", zap.Error(err))
	}
	if s.prom != nil {
		s.prom.RecordMetricSample(sample.CampaignID)
	}
	return nil
}

func reportCacheKey(campaignID string) string {
	return "performance:" + campaignID
}

// cachedReport is the envelope stored in the report cache: the window
// is part of the identity, so a range change misses.
type cachedReport struct {
	From   string                      `json:"from"`
	To     string                      `json:"to"`
	Report analytics.PerformanceReport `json:"report"`
}

// CampaignPerformance builds the full performance report for one
// campaign over [from, to].
func (s *AnalyticsService) CampaignPerformance(ctx context.Context, campaignID string, from, to time.Time) (*analytics.PerformanceReport, error) {
	c, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}

	fromKey, toKey := from.Format("2006-01-02"), to.Format("2006-01-02")
	key := reportCacheKey(campaignID)

	if payload, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("report cache get failed", zap.Error(err))
	} else if payload != nil {
		var cached cachedReport
		if err := json.Unmarshal(payload, &cached); err == nil && cached.From == fromKey && cached.To == toKey {
			if s.prom != nil {
				s.prom.RecordReportCache(true)
			}
			return &cached.Report, nil
		}
	}
	if s.prom != nil {
		s.prom.RecordReportCache(false)
	}

	start := time.Now()
	samples, err := s.store.ListByCampaign(ctx, campaignID, from, to)
	if err != nil {
		return nil, err
	}
	report := analytics.BuildReport(samples, s.riskCfg)
	if s.prom != nil {
		s.prom.RecordReport("campaign_performance", time.Since(start))
	}

	if payload, err := json.Marshal(cachedReport{From: fromKey, To: toKey, Report: report}); err == nil {
		if err := s.cache.Set(ctx, key, payload); err != nil {
			s.logger.Warn("report cache set failed", zap.Error(err))
		}
	}

	return &report, nil
}

// CampaignSummary is one campaign's line in the dashboard.
type CampaignSummary struct {
	CampaignID   string `json:"campaign_id"`
	CampaignName string `json:"campaign_name"`
	analytics.Totals
	CTRPercent float64 `json:"ctr_percent"`
	ROAS       float64 `json:"roas"`
}

// DashboardReport aggregates delivery across all campaigns for the
// requested trailing window.
type DashboardReport struct {
	Days            int                      `json:"days"`
	TotalCampaigns  int                      `json:"total_campaigns"`
	ActiveCampaigns int                      `json:"active_campaigns"`
	Totals          analytics.Totals         `json:"totals"`
	Averages        analytics.DerivedMetrics `json:"averages"`
	TopCampaigns    []CampaignSummary        `json:"top_campaigns"`
}

// Dashboard builds the cross-campaign dashboard for the last `days`
// days.
func (s *AnalyticsService) Dashboard(ctx context.Context, days int) (*DashboardReport, error) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -days)

	campaigns, err := s.campaigns.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	samples, err := s.store.ListRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	byCampaign := make(map[string][]models.MetricSample)
	for _, sample := range samples {
		byCampaign[sample.CampaignID] = append(byCampaign[sample.CampaignID], sample)
	}

	names := make(map[string]string, len(campaigns))
	active := 0
	for _, c := range campaigns {
		names[c.ID] = c.Name
		if c.Status == models.CampaignStatusActive {
			active++
		}
	}
	if s.prom != nil {
		s.prom.UpdateActiveCampaigns(active)
	}

	totals := analytics.Aggregate(samples)

	summaries := make([]CampaignSummary, 0, len(byCampaign))
	for id, rows := range byCampaign {
		t := analytics.Aggregate(rows)
		d := analytics.Derive(t)
		summaries = append(summaries, CampaignSummary{
			CampaignID:   id,
			CampaignName: names[id],
			Totals:       t,
			CTRPercent:   d.CTRPercent,
			ROAS:         d.ROAS,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Revenue != summaries[j].Revenue {
			return summaries[i].Revenue > summaries[j].Revenue
		}
		return summaries[i].CampaignID < summaries[j].CampaignID
	})
	if len(summaries) > 5 {
		summaries = summaries[:5]
	}

	if s.prom != nil {
		s.prom.RecordReport("dashboard", time.Since(start))
	}

	return &DashboardReport{
		Days:            days,
		TotalCampaigns:  len(campaigns),
		ActiveCampaigns: active,
		Totals:          totals,
		Averages:        analytics.Derive(totals),
		TopCampaigns:    summaries,
	}, nil
}

// TrendSeries is one campaign's trend line for a single metric.
type TrendSeries struct {
	CampaignID   string                    `json:"campaign_id"`
	CampaignName string                    `json:"campaign_name"`
	Points       []storage.MetricPoint     `json:"points"`
	Stats        analytics.TrendStatistics `json:"stats"`
	Direction    string                    `json:"direction"` // up, down, flat
}

// TrendReport carries per-campaign series for one metric.
type TrendReport struct {
	Metric string        `json:"metric"`
	Period string        `json:"period"`
	Days   int           `json:"days"`
	Series []TrendSeries `json:"series"`
}

// Trends computes per-campaign trend lines over the last `days` days.
// metric and period arrive pre-validated by the request layer; an
// empty campaignIDs list means all campaigns.
func (s *AnalyticsService) Trends(ctx context.Context, metric, period string, days int, campaignIDs []string) (*TrendReport, error) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -days)

	if len(campaignIDs) == 0 {
		campaigns, err := s.campaigns.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		for _, c := range campaigns {
			campaignIDs = append(campaignIDs, c.ID)
		}
	}

	report := &TrendReport{Metric: metric, Period: period, Days: days}
	for _, id := range campaignIDs {
		c, err := s.campaigns.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, fmt.Errorf("campaign %s: %w", id, ErrNotFound)
		}

		points, err := s.store.MetricSeries(ctx, id, metric, from, to)
		if err != nil {
			return nil, err
		}
		if period == "weekly" {
			points = foldWeekly(points)
		}

		values := make([]float64, len(points))
		for i, p := range points {
			values[i] = p.Value
		}
		stats := analytics.SeriesStats(values)

		report.Series = append(report.Series, TrendSeries{
			CampaignID:   id,
			CampaignName: c.Name,
			Points:       points,
			Stats:        stats,
			Direction:    trendDirection(stats.TrendSlope),
		})
	}

	return report, nil
}

// foldWeekly averages daily points into 7-day buckets anchored at the
// first observed day. Rate metrics average rather than sum.
func foldWeekly(points []storage.MetricPoint) []storage.MetricPoint {
	if len(points) == 0 {
		return points
	}
	anchor := points[0].Date
	type bucket struct {
		sum   float64
		count int
	}
	buckets := make(map[int]*bucket)
	for _, p := range points {
		week := int(p.Date.Sub(anchor).Hours() / (24 * 7))
		b, ok := buckets[week]
		if !ok {
			b = &bucket{}
			buckets[week] = b
		}
		b.sum += p.Value
		b.count++
	}

	weeks := make([]int, 0, len(buckets))
	for w := range buckets {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)

	folded := make([]storage.MetricPoint, 0, len(weeks))
	for _, w := range weeks {
		b := buckets[w]
		folded = append(folded, storage.MetricPoint{
			Date:  anchor.AddDate(0, 0, w*7),
			Value: b.sum / float64(b.count),
		})
	}
	return folded
}

func trendDirection(slope float64) string {
	switch {
	case slope > 1e-9:
		return "up"
	case slope < -1e-9:
		return "down"
	default:
		return "flat"
	}
}

// ABTestReport is the outcome of comparing two campaigns on one metric.
type ABTestReport struct {
	Metric            string                       `json:"metric"`
	ControlCampaignID string                       `json:"control_campaign_id"`
	TestCampaignID    string                       `json:"test_campaign_id"`
	ControlMean       float64                      `json:"control_mean"`
	TestMean          float64                      `json:"test_mean"`
	Result            analytics.SignificanceResult `json:"result"`
	Recommendation    string                       `json:"recommendation"`
}

// ABTest compares the daily series of two campaigns over the last
// `days` days and attaches a plain-language recommendation.
func (s *AnalyticsService) ABTest(ctx context.Context, controlID, testID, metric string, days int) (*ABTestReport, error) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -days)

	for _, id := range []string{controlID, testID} {
		c, err := s.campaigns.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, fmt.Errorf("campaign %s: %w", id, ErrNotFound)
		}
	}

	controlPoints, err := s.store.MetricSeries(ctx, controlID, metric, from, to)
	if err != nil {
		return nil, err
	}
	testPoints, err := s.store.MetricSeries(ctx, testID, metric, from, to)
	if err != nil {
		return nil, err
	}

	control := pointValues(controlPoints)
	test := pointValues(testPoints)
	result := analytics.Compare(control, test)

	if s.prom != nil {
		s.prom.RecordABTest()
	}

	return &ABTestReport{
		Metric:            metric,
		ControlCampaignID: controlID,
		TestCampaignID:    testID,
		ControlMean:       analytics.Round2(analytics.Mean(control)),
		TestMean:          analytics.Round2(analytics.Mean(test)),
		Result:            result,
		Recommendation:    abTestRecommendation(result),
	}, nil
}

func pointValues(points []storage.MetricPoint) []float64 {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	return values
}

func abTestRecommendation(r analytics.SignificanceResult) string {
	if !r.Significant {
		return "No statistically significant difference detected. Continue the test or collect more data before shifting budget."
	}
	if r.EffectSize > 0 {
		return "The test campaign significantly outperforms the control. Consider shifting budget toward the test configuration."
	}
	return "The control campaign significantly outperforms the test. Keep the control configuration and retire the variant."
}

// ForecastReport wraps a projection with its input window.
type ForecastReport struct {
	CampaignID              string             `json:"campaign_id"`
	HistoryDays             int                `json:"history_days"`
	ProjectionDays          int                `json:"projection_days"`
	Forecast                analytics.Forecast `json:"forecast"`
	ProjectedMonthlyRevenue float64            `json:"projected_monthly_revenue"`
}

// Forecast projects a campaign's revenue and spend daysAhead days
// forward from its recent history.
func (s *AnalyticsService) Forecast(ctx context.Context, campaignID string, daysAhead int) (*ForecastReport, error) {
	c, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}

	historyDays := s.forecastDays
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -historyDays)

	samples, err := s.store.ListByCampaign(ctx, campaignID, from, to)
	if err != nil {
		return nil, err
	}

	revenues, spends, observedDays := dailyFinancials(samples)
	forecast := analytics.Project(revenues, spends, daysAhead)

	var totalRevenue float64
	for _, r := range revenues {
		totalRevenue += r
	}

	if s.prom != nil {
		s.prom.RecordForecast()
	}

	return &ForecastReport{
		CampaignID:              campaignID,
		HistoryDays:             historyDays,
		ProjectionDays:          daysAhead,
		Forecast:                forecast,
		ProjectedMonthlyRevenue: analytics.ProjectMonthlyRevenue(totalRevenue, observedDays),
	}, nil
}

// dailyFinancials folds samples into chronological per-day revenue and
// spend series.
func dailyFinancials(samples []models.MetricSample) (revenues, spends []float64, days int) {
	type daily struct {
		revenue float64
		spend   float64
	}
	byDay := make(map[time.Time]*daily)
	for _, s := range samples {
		day := s.Date.Truncate(24 * time.Hour)
		d, ok := byDay[day]
		if !ok {
			d = &daily{}
			byDay[day] = d
		}
		d.revenue += s.Revenue
		d.spend += s.Spend
	}

	keys := make([]time.Time, 0, len(byDay))
	for day := range byDay {
		keys = append(keys, day)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	for _, day := range keys {
		revenues = append(revenues, byDay[day].revenue)
		spends = append(spends, byDay[day].spend)
	}
	return revenues, spends, len(keys)
}

// Alert flags a campaign whose recent delivery crossed a monitored
// threshold.
type Alert struct {
	CampaignID   string  `json:"campaign_id"`
	CampaignName string  `json:"campaign_name"`
	Type         string  `json:"type"`
	Severity     string  `json:"severity"`
	Message      string  `json:"message"`
	Value        float64 `json:"value"`
	Threshold    float64 `json:"threshold"`
}

// Alerts scans active campaigns over the last 7 days and raises
// low-CTR, high-CPC, negative-ROAS and budget alerts. Critical budget
// alerts pause the campaign when auto-pause is enabled.
func (s *AnalyticsService) Alerts(ctx context.Context) ([]Alert, error) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -7)

	campaigns, err := s.campaigns.GetByStatus(ctx, models.CampaignStatusActive)
	if err != nil {
		return nil, err
	}

	alerts := make([]Alert, 0)
	for _, c := range campaigns {
		samples, err := s.store.ListByCampaign(ctx, c.ID, from, to)
		if err != nil {
			return nil, err
		}
		totals := analytics.Aggregate(samples)
		derived := analytics.Derive(totals)

		if totals.Impressions >= alertMinImpressions && derived.CTRPercent < s.qualityCfg.MinCTRPercent {
			alerts = append(alerts, Alert{
				CampaignID:   c.ID,
				CampaignName: c.Name,
				Type:         "low_ctr",
				Severity:     SeverityMedium,
				Message:      fmt.Sprintf("CTR %.2f%% is below the %.2f%% floor", derived.CTRPercent, s.qualityCfg.MinCTRPercent),
				Value:        derived.CTRPercent,
				Threshold:    s.qualityCfg.MinCTRPercent,
			})
		}

		if derived.CPC > alertHighCPC {
			alerts = append(alerts, Alert{
				CampaignID:   c.ID,
				CampaignName: c.Name,
				Type:         "high_cpc",
				Severity:     SeverityMedium,
				Message:      fmt.Sprintf("CPC %.2f exceeds %.2f", derived.CPC, alertHighCPC),
				Value:        derived.CPC,
				Threshold:    alertHighCPC,
			})
		}

		if totals.Spend > 0 && derived.ROAS < 1 {
			alerts = append(alerts, Alert{
				CampaignID:   c.ID,
				CampaignName: c.Name,
				Type:         "negative_roas",
				Severity:     SeverityHigh,
				Message:      fmt.Sprintf("ROAS %.2f means the campaign spends more than it returns", derived.ROAS),
				Value:        derived.ROAS,
				Threshold:    1,
			})
		}

		switch {
		case c.TotalBudget > 0 && c.Spend >= c.TotalBudget:
			alerts = append(alerts, Alert{
				CampaignID:   c.ID,
				CampaignName: c.Name,
				Type:         "budget_exceeded",
				Severity:     SeverityCritical,
				Message:      fmt.Sprintf("lifetime spend %.2f has exhausted the %.2f budget", c.Spend, c.TotalBudget),
				Value:        c.Spend,
				Threshold:    c.TotalBudget,
			})
			if s.qualityCfg.AutoPause {
				if err := s.pauseCampaign(ctx, c); err != nil {
					s.logger.Error("auto-pause failed",
						zap.String("campaign_id", c.ID), zap.Error(err))
				}
			}
		case c.TotalBudget > 0 && c.Spend >= c.TotalBudget*alertBudgetWarnRatio:
			alerts = append(alerts, Alert{
				CampaignID:   c.ID,
				CampaignName: c.Name,
				Type:         "budget_near_limit",
				Severity:     SeverityHigh,
				Message:      fmt.Sprintf("lifetime spend %.2f is over 90%% of the %.2f budget", c.Spend, c.TotalBudget),
				Value:        c.Spend,
				Threshold:    c.TotalBudget * alertBudgetWarnRatio,
			})
		}
	}

	if s.prom != nil {
		for _, a := range alerts {
			s.prom.RecordAlert(a.Severity)
		}
	}

	return alerts, nil
}

func (s *AnalyticsService) pauseCampaign(ctx context.Context, c *models.Campaign) error {
	c.Status = models.CampaignStatusPaused
	c.UpdatedAt = time.Now().UTC()
	if err := s.campaigns.Upsert(ctx, c); err != nil {
		return err
	}
	s.logger.Warn("campaign auto-paused on critical alert",
		zap.String("campaign_id", c.ID),
		zap.String("campaign_name", c.Name),
	)
	if s.prom != nil {
		s.prom.RecordAutoPause()
	}
	return nil
}
