package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the analytics service.
type Metrics struct {
	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec

	// Report metrics
	ReportsGenerated *prometheus.CounterVec
	ReportLatency    *prometheus.HistogramVec
	ReportCacheHits  *prometheus.CounterVec

	// Analytics metrics
	ABTestsRun    prometheus.Counter
	ForecastsRun  prometheus.Counter
	AlertsRaised  *prometheus.CounterVec
	AutoPauses    prometheus.Counter
	AdReviews     *prometheus.CounterVec

	// Ingestion metrics
	MetricSamples *prometheus.CounterVec

	// System metrics
	ActiveCampaigns prometheus.Gauge
	DBConnections   *prometheus.GaugeVec
	GeoLookupLatency *prometheus.HistogramVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics *Metrics

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests by route and status",
			},
			[]string{"route", "method", "status"},
		),
		HTTPLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_latency_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"route"},
		),

		ReportsGenerated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reports_generated_total",
				Help:      "Performance reports generated by type",
			},
			[]string{"report_type"},
		),
		ReportLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "report_latency_seconds",
				Help:      "Report computation latency",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"report_type"},
		),
		ReportCacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "report_cache_total",
				Help:      "Report cache lookups by outcome",
			},
			[]string{"outcome"}, // hit, miss
		),

		ABTestsRun: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ab_tests_total",
				Help:      "A/B test comparisons run",
			},
		),
		ForecastsRun: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "forecasts_total",
				Help:      "Forecast projections computed",
			},
		),
		AlertsRaised: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "alerts_raised_total",
				Help:      "Performance alerts raised by severity",
			},
			[]string{"severity"},
		),
		AutoPauses: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auto_pauses_total",
				Help:      "Campaigns paused automatically on critical alerts",
			},
		),
		AdReviews: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ad_reviews_total",
				Help:      "Ad reviews by resulting approval status",
			},
			[]string{"status"},
		),

		MetricSamples: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "metric_samples_total",
				Help:      "Delivery metric samples ingested",
			},
			[]string{"campaign_id"},
		),

		ActiveCampaigns: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_campaigns",
				Help:      "Number of active campaigns",
			},
		),
		DBConnections: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_connections",
				Help:      "Database connection pool stats",
			},
			[]string{"state"}, // idle, in_use, total
		),
		GeoLookupLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "geo_lookup_latency_seconds",
				Help:      "GeoIP lookup latency",
				Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01},
			},
			[]string{"cache_hit"},
		),

		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_hits_total",
				Help:      "Rate limit rejections",
			},
			[]string{"endpoint"},
		),
	}

	DefaultMetrics = m
	return m
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records one served HTTP request.
func (m *Metrics) RecordHTTPRequest(route, method, status string, latency time.Duration) {
	m.HTTPRequests.WithLabelValues(route, method, status).Inc()
	m.HTTPLatency.WithLabelValues(route).Observe(latency.Seconds())
}

// RecordReport records a generated report and its computation time.
func (m *Metrics) RecordReport(reportType string, latency time.Duration) {
	m.ReportsGenerated.WithLabelValues(reportType).Inc()
	m.ReportLatency.WithLabelValues(reportType).Observe(latency.Seconds())
}

// RecordReportCache records a report cache lookup outcome.
func (m *Metrics) RecordReportCache(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.ReportCacheHits.WithLabelValues(outcome).Inc()
}

// RecordABTest records one A/B comparison.
func (m *Metrics) RecordABTest() {
	m.ABTestsRun.Inc()
}

// RecordForecast records one forecast computation.
func (m *Metrics) RecordForecast() {
	m.ForecastsRun.Inc()
}

// RecordAlert records a raised alert.
func (m *Metrics) RecordAlert(severity string) {
	m.AlertsRaised.WithLabelValues(severity).Inc()
}

// RecordAutoPause records an automatic campaign pause.
func (m *Metrics) RecordAutoPause() {
	m.AutoPauses.Inc()
}

// RecordAdReview records an ad review outcome.
func (m *Metrics) RecordAdReview(status string) {
	m.AdReviews.WithLabelValues(status).Inc()
}

// RecordMetricSample records one ingested delivery sample.
func (m *Metrics) RecordMetricSample(campaignID string) {
	m.MetricSamples.WithLabelValues(campaignID).Inc()
}

// RecordGeoLookup records a geo lookup.
func (m *Metrics) RecordGeoLookup(cacheHit bool, latency time.Duration) {
	hit := "false"
	if cacheHit {
		hit = "true"
	}
	m.GeoLookupLatency.WithLabelValues(hit).Observe(latency.Seconds())
}

// UpdateDBStats updates database connection metrics.
func (m *Metrics) UpdateDBStats(idle, inUse, total int) {
	m.DBConnections.WithLabelValues("idle").Set(float64(idle))
	m.DBConnections.WithLabelValues("in_use").Set(float64(inUse))
	m.DBConnections.WithLabelValues("total").Set(float64(total))
}

// UpdateActiveCampaigns updates the active campaign count.
func (m *Metrics) UpdateActiveCampaigns(n int) {
	m.ActiveCampaigns.Set(float64(n))
}

// RecordRateLimitHit records a rate limit hit.
func (m *Metrics) RecordRateLimitHit(endpoint string) {
	m.RateLimitHits.WithLabelValues(endpoint).Inc()
}
