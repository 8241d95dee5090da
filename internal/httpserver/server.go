package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prismads/prism/internal/ads"
	"github.com/prismads/prism/internal/config"
	"github.com/prismads/prism/internal/database"
	"github.com/prismads/prism/internal/metrics"
	"github.com/prismads/prism/internal/middleware"
	"github.com/prismads/prism/internal/models"
	"github.com/prismads/prism/internal/storage"
	"github.com/prismads/prism/internal/targeting"
	"go.uber.org/zap"
)

const (
	apiPrefix = "/api/v1"

	defaultReportDays = 30
	maxReportDays     = 365
	maxProjectionDays = 90
)

// Dependencies holds all external dependencies for the server. Any of
// the database handles may be nil; the server falls back to in-memory
// storage so the service stays usable in development.
type Dependencies struct {
	DB         *database.PostgresDB
	Redis      *database.RedisDB
	ClickHouse *database.ClickHouseDB
	Config     *config.Config
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
}

// Server wraps HTTP handlers and the campaign/analytics services.
type Server struct {
	advertiserService *ads.AdvertiserService
	campaignService   *ads.CampaignService
	adService         *ads.AdService
	analyticsService  *ads.AnalyticsService
	qualityService    *ads.QualityService
	targetingService  *ads.TargetingService
	logger            *zap.Logger
	config            *config.Config
	metrics           *metrics.Metrics
}

// NewServer constructs a new http.Handler with all routes registered
// and the middleware chain applied.
func NewServer(deps *Dependencies) http.Handler {
	// Initialize repositories
	var advRepo storage.AdvertiserRepo
	var cRepo storage.CampaignRepo
	var adRepo storage.AdRepo

	if deps.DB != nil {
		advRepo = storage.NewPostgresAdvertiserRepo(deps.DB.Pool)
		cRepo = storage.NewPostgresCampaignRepo(deps.DB.Pool)
		adRepo = storage.NewPostgresAdRepo(deps.DB.Pool)
	} else {
		advRepo = storage.NewInMemoryAdvertiserRepo()
		cRepo = storage.NewInMemoryCampaignRepo()
		adRepo = storage.NewInMemoryAdRepo()
	}

	// Metric rows go to ClickHouse when the warehouse is configured,
	// otherwise they share the Postgres instance or stay in memory.
	var store storage.MetricStore
	switch {
	case deps.ClickHouse != nil:
		store = storage.NewClickHouseMetricStore(deps.ClickHouse.Conn)
	case deps.DB != nil:
		store = storage.NewPostgresMetricStore(deps.DB.Pool)
	default:
		store = storage.NewInMemoryMetricStore()
	}

	var cache storage.ReportCache = storage.NoopReportCache{}
	if deps.Redis != nil {
		cache = storage.NewRedisReportCache(deps.Redis.Client, deps.Config.Redis.ReportTTL)
	}

	// Initialize geo provider for audience insights
	var geo targeting.GeoProvider
	if deps.Config.Geo.Enabled {
		mm, err := targeting.NewMaxMindGeoProvider(deps.Config.Geo.DatabasePath)
		if err != nil {
			deps.Logger.Warn("failed to initialize geo provider, audience insights degraded", zap.Error(err))
		} else {
			geo = targeting.NewCachedGeoProvider(mm, 10000, time.Hour)
		}
	}

	// Initialize services
	s := &Server{
		advertiserService: ads.NewAdvertiserService(advRepo),
		campaignService:   ads.NewCampaignService(cRepo, adRepo, advRepo),
		adService:         ads.NewAdService(adRepo, cRepo),
		analyticsService: ads.NewAnalyticsService(
			cRepo, store, cache,
			deps.Config.Analytics, deps.Config.Quality,
			deps.Logger, deps.Metrics,
		),
		qualityService:   ads.NewQualityService(adRepo, deps.Config.Quality, deps.Logger, deps.Metrics),
		targetingService: ads.NewTargetingService(cRepo, geo, deps.Logger, deps.Metrics),
		logger:           deps.Logger,
		config:           deps.Config,
		metrics:          deps.Metrics,
	}

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", s.handleHealth)

	// Prometheus metrics
	if deps.Config.Metrics.Enabled {
		mux.Handle(deps.Config.Metrics.Path, metrics.Handler())
	}

	// Advertisers
	mux.HandleFunc(apiPrefix+"/advertisers", s.handleAdvertisers)
	mux.HandleFunc(apiPrefix+"/advertisers/", s.handleAdvertiserByID)

	// Campaigns and campaign sub-resources
	mux.HandleFunc(apiPrefix+"/campaigns", s.handleCampaigns)
	mux.HandleFunc(apiPrefix+"/campaigns/", s.handleCampaignByID)

	// Ads
	mux.HandleFunc(apiPrefix+"/ads", s.handleAds)
	mux.HandleFunc(apiPrefix+"/ads/", s.handleAdByID)

	// Analytics
	mux.HandleFunc(apiPrefix+"/analytics/dashboard", s.handleDashboard)
	mux.HandleFunc(apiPrefix+"/analytics/performance", s.handlePerformance)
	mux.HandleFunc(apiPrefix+"/analytics/trends", s.handleTrends)
	mux.HandleFunc(apiPrefix+"/analytics/ab-test", s.handleABTest)
	mux.HandleFunc(apiPrefix+"/analytics/forecast", s.handleForecast)
	mux.HandleFunc(apiPrefix+"/analytics/alerts", s.handleAlerts)
	mux.HandleFunc(apiPrefix+"/analytics/audience-insights", s.handleAudienceInsights)

	// Targeting
	mux.HandleFunc(apiPrefix+"/targeting/optimize", s.handleOptimizeTargeting)

	// Middleware chain, outermost first.
	recovery := middleware.NewRecoveryMiddleware(deps.Logger)
	logging := middleware.NewLoggingMiddleware(deps.Logger, deps.Metrics)
	rateLimit := middleware.NewRateLimitMiddleware(deps.Config.RateLimit, deps.Logger)
	rateLimit.SetMetrics(deps.Metrics)
	auth := middleware.NewAuthMiddleware(deps.Config.Auth, deps.Logger)

	var handler http.Handler = mux
	handler = auth.Handler(handler)
	handler = rateLimit.Handler(handler)
	handler = logging.Handler(handler)
	handler = recovery.Handler(handler)

	return handler
}

// ---- Health Check ----

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// ---- Advertisers CRUD ----

func (s *Server) handleAdvertisers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list, err := s.advertiserService.ListAdvertisers(r.Context())
		if err != nil {
			s.logger.Error("failed to list advertisers", zap.Error(err))
			s.errorResponse(w, "failed to list", http.StatusInternalServerError)
			return
		}
		s.jsonResponse(w, list)

	case http.MethodPost:
		var a models.Advertiser
		if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
			s.errorResponse(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := s.advertiserService.UpsertAdvertiser(r.Context(), &a); err != nil {
			s.errorResponse(w, "failed to save: "+err.Error(), http.StatusBadRequest)
			return
		}
		s.jsonResponse(w, a)

	default:
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleAdvertiserByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, apiPrefix+"/advertisers/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		adv, err := s.advertiserService.GetAdvertiser(r.Context(), id)
		if err != nil {
			s.errorResponse(w, "error: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if adv == nil {
			http.NotFound(w, r)
			return
		}
		s.jsonResponse(w, adv)

	case http.MethodDelete:
		if err := s.advertiserService.DeleteAdvertiser(r.Context(), id); err != nil {
			s.errorResponse(w, "failed to delete: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// ---- Campaigns CRUD ----

func (s *Server) handleCampaigns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		status := models.CampaignStatus(q.Get("status"))
		switch status {
		case "", models.CampaignStatusDraft, models.CampaignStatusActive,
			models.CampaignStatusPaused, models.CampaignStatusCompleted:
		default:
			s.errorResponse(w, "invalid status", http.StatusBadRequest)
			return
		}
		list, err := s.campaignService.ListCampaigns(r.Context(), q.Get("advertiser_id"), status)
		if err != nil {
			s.logger.Error("failed to list campaigns", zap.Error(err))
			s.errorResponse(w, "failed to list", http.StatusInternalServerError)
			return
		}
		s.jsonResponse(w, list)

	case http.MethodPost:
		var c models.Campaign
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			s.errorResponse(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := s.campaignService.UpsertCampaign(r.Context(), &c); err != nil {
			if errors.Is(err, ads.ErrNotFound) {
				s.errorResponse(w, "advertiser not found", http.StatusNotFound)
				return
			}
			s.errorResponse(w, "failed to save: "+err.Error(), http.StatusBadRequest)
			return
		}
		s.jsonResponse(w, c)

	default:
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleCampaignByID dispatches /campaigns/{id} and its sub-resources:
// status, performance, metrics, quality-report.
func (s *Server) handleCampaignByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, apiPrefix+"/campaigns/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		http.NotFound(w, r)
		return
	}

	switch sub {
	case "":
		s.campaignEntity(w, r, id)
	case "status":
		s.campaignStatus(w, r, id)
	case "performance":
		s.campaignPerformance(w, r, id)
	case "metrics":
		s.campaignMetrics(w, r, id)
	case "quality-report":
		s.campaignQualityReport(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) campaignEntity(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		c, err := s.campaignService.GetCampaign(r.Context(), id)
		if err != nil {
			s.logger.Error("failed to get campaign", zap.Error(err))
			s.errorResponse(w, "error: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if c == nil {
			http.NotFound(w, r)
			return
		}
		s.jsonResponse(w, c)

	case http.MethodDelete:
		if err := s.campaignService.DeleteCampaign(r.Context(), id); err != nil {
			s.errorResponse(w, "failed to delete: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) campaignStatus(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPut && r.Method != http.MethodPost {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		Status models.CampaignStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.errorResponse(w, "invalid json", http.StatusBadRequest)
		return
	}

	updated, err := s.campaignService.UpdateStatus(r.Context(), id, body.Status)
	if err != nil {
		if errors.Is(err, ads.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.errorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.jsonResponse(w, updated)
}

func (s *Server) campaignPerformance(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	from, to, err := parseDateRange(r)
	if err != nil {
		s.errorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := s.analyticsService.CampaignPerformance(r.Context(), id, from, to)
	if err != nil {
		if errors.Is(err, ads.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("failed to build performance report", zap.Error(err))
		s.errorResponse(w, "failed to build report", http.StatusInternalServerError)
		return
	}
	s.jsonResponse(w, report)
}

func (s *Server) campaignMetrics(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var sample models.MetricSample
	if err := json.NewDecoder(r.Body).Decode(&sample); err != nil {
		s.errorResponse(w, "invalid json", http.StatusBadRequest)
		return
	}
	sample.CampaignID = id
	if sample.Hour < 0 || sample.Hour > 23 {
		s.errorResponse(w, "hour must be in [0,23]", http.StatusBadRequest)
		return
	}

	if err := s.analyticsService.IngestSample(r.Context(), &sample); err != nil {
		if errors.Is(err, ads.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.errorResponse(w, "failed to ingest: "+err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "accepted"})
}

func (s *Server) campaignQualityReport(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	report, err := s.qualityService.CampaignQualityReport(r.Context(), id)
	if err != nil {
		s.logger.Error("failed to build quality report", zap.Error(err))
		s.errorResponse(w, "failed to build report", http.StatusInternalServerError)
		return
	}
	s.jsonResponse(w, report)
}

// ---- Ads CRUD ----

func (s *Server) handleAds(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list, err := s.adService.ListAds(r.Context(), r.URL.Query().Get("campaign_id"))
		if err != nil {
			s.errorResponse(w, "failed to list", http.StatusInternalServerError)
			return
		}
		s.jsonResponse(w, list)

	case http.MethodPost:
		var ad models.Ad
		if err := json.NewDecoder(r.Body).Decode(&ad); err != nil {
			s.errorResponse(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := s.adService.UpsertAd(r.Context(), &ad); err != nil {
			if errors.Is(err, ads.ErrNotFound) {
				s.errorResponse(w, "campaign not found", http.StatusNotFound)
				return
			}
			s.errorResponse(w, "failed to save: "+err.Error(), http.StatusBadRequest)
			return
		}
		s.jsonResponse(w, ad)

	default:
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleAdByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, apiPrefix+"/ads/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		http.NotFound(w, r)
		return
	}

	if sub == "review" {
		s.adReview(w, r, id)
		return
	}
	if sub != "" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		ad, err := s.adService.GetAd(r.Context(), id)
		if err != nil {
			s.errorResponse(w, "error: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if ad == nil {
			http.NotFound(w, r)
			return
		}
		s.jsonResponse(w, ad)

	case http.MethodDelete:
		if err := s.adService.DeleteAd(r.Context(), id); err != nil {
			s.errorResponse(w, "failed to delete: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) adReview(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result, err := s.qualityService.ReviewAd(r.Context(), id)
	if err != nil {
		if errors.Is(err, ads.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("ad review failed", zap.Error(err))
		s.errorResponse(w, "review failed", http.StatusInternalServerError)
		return
	}
	s.jsonResponse(w, result)
}

// ---- Analytics ----

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	days, err := parseDays(r, "days", defaultReportDays, maxReportDays)
	if err != nil {
		s.errorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := s.analyticsService.Dashboard(r.Context(), days)
	if err != nil {
		s.logger.Error("failed to build dashboard", zap.Error(err))
		s.errorResponse(w, "failed to build dashboard", http.StatusInternalServerError)
		return
	}
	s.jsonResponse(w, report)
}

// handlePerformance is the query-parameter form of the per-campaign
// performance report, kept for dashboard clients that batch analytics
// calls under one path prefix.
func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	campaignID := r.URL.Query().Get("campaign_id")
	if campaignID == "" {
		s.errorResponse(w, "campaign_id required", http.StatusBadRequest)
		return
	}
	s.campaignPerformance(w, r, campaignID)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	metric := q.Get("metric")
	if metric == "" {
		metric = storage.MetricCTR
	}
	if !storage.ValidMetric(metric) {
		s.errorResponse(w, "invalid metric", http.StatusBadRequest)
		return
	}

	period := q.Get("period")
	if period == "" {
		period = "daily"
	}
	if period != "daily" && period != "weekly" {
		s.errorResponse(w, "period must be daily or weekly", http.StatusBadRequest)
		return
	}

	days, err := parseDays(r, "days", defaultReportDays, maxReportDays)
	if err != nil {
		s.errorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	var campaignIDs []string
	if raw := q.Get("campaign_ids"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				campaignIDs = append(campaignIDs, id)
			}
		}
	}

	report, err := s.analyticsService.Trends(r.Context(), metric, period, days, campaignIDs)
	if err != nil {
		if errors.Is(err, ads.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("failed to build trend report", zap.Error(err))
		s.errorResponse(w, "failed to build trends", http.StatusInternalServerError)
		return
	}
	s.jsonResponse(w, report)
}

func (s *Server) handleABTest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	controlID := q.Get("control_id")
	testID := q.Get("test_id")
	if controlID == "" || testID == "" {
		s.errorResponse(w, "control_id and test_id required", http.StatusBadRequest)
		return
	}
	if controlID == testID {
		s.errorResponse(w, "control_id and test_id must differ", http.StatusBadRequest)
		return
	}

	metric := q.Get("metric")
	if metric == "" {
		metric = storage.MetricCTR
	}
	if !storage.ValidMetric(metric) {
		s.errorResponse(w, "invalid metric", http.StatusBadRequest)
		return
	}

	days, err := parseDays(r, "days", defaultReportDays, maxReportDays)
	if err != nil {
		s.errorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := s.analyticsService.ABTest(r.Context(), controlID, testID, metric, days)
	if err != nil {
		if errors.Is(err, ads.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("failed to run ab test", zap.Error(err))
		s.errorResponse(w, "failed to run test", http.StatusInternalServerError)
		return
	}
	s.jsonResponse(w, report)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	campaignID := r.URL.Query().Get("campaign_id")
	if campaignID == "" {
		s.errorResponse(w, "campaign_id required", http.StatusBadRequest)
		return
	}

	daysAhead, err := parseDays(r, "projection_days", s.config.Analytics.ForecastDays, maxProjectionDays)
	if err != nil {
		s.errorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := s.analyticsService.Forecast(r.Context(), campaignID, daysAhead)
	if err != nil {
		if errors.Is(err, ads.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("failed to build forecast", zap.Error(err))
		s.errorResponse(w, "failed to build forecast", http.StatusInternalServerError)
		return
	}
	s.jsonResponse(w, report)
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	alerts, err := s.analyticsService.Alerts(r.Context())
	if err != nil {
		s.logger.Error("failed to scan alerts", zap.Error(err))
		s.errorResponse(w, "failed to scan alerts", http.StatusInternalServerError)
		return
	}
	s.jsonResponse(w, map[string]interface{}{
		"count":  len(alerts),
		"alerts": alerts,
	})
}

func (s *Server) handleAudienceInsights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		CampaignID string   `json:"campaign_id"`
		ViewerIPs  []string `json:"viewer_ips"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.errorResponse(w, "invalid json", http.StatusBadRequest)
		return
	}
	if body.CampaignID == "" {
		s.errorResponse(w, "campaign_id required", http.StatusBadRequest)
		return
	}

	insights, err := s.targetingService.Insights(r.Context(), body.CampaignID, body.ViewerIPs)
	if err != nil {
		if errors.Is(err, ads.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("failed to build audience insights", zap.Error(err))
		s.errorResponse(w, "failed to build insights", http.StatusInternalServerError)
		return
	}
	s.jsonResponse(w, insights)
}

// ---- Targeting ----

func (s *Server) handleOptimizeTargeting(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	campaignID := r.URL.Query().Get("campaign_id")
	if campaignID == "" {
		s.errorResponse(w, "campaign_id required", http.StatusBadRequest)
		return
	}

	rec, err := s.targetingService.OptimizeTargeting(r.Context(), campaignID)
	if err != nil {
		if errors.Is(err, ads.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("failed to optimize targeting", zap.Error(err))
		s.errorResponse(w, "failed to optimize", http.StatusInternalServerError)
		return
	}
	s.jsonResponse(w, rec)
}

// ---- Query Parsing Helpers ----

// parseDays reads an integer day-count parameter with a default and an
// inclusive upper bound.
func parseDays(r *http.Request, param string, def, max int) (int, error) {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > max {
		return 0, errors.New(param + " must be an integer in [1," + strconv.Itoa(max) + "]")
	}
	return n, nil
}

// parseDateRange reads from/to (2006-01-02) or falls back to a trailing
// `days` window ending now.
func parseDateRange(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()
	fromStr, toStr := q.Get("from"), q.Get("to")

	if fromStr == "" && toStr == "" {
		days, err := parseDays(r, "days", defaultReportDays, maxReportDays)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to := time.Now().UTC()
		return to.AddDate(0, 0, -days), to, nil
	}

	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("from must be YYYY-MM-DD")
	}
	to := time.Now().UTC()
	if toStr != "" {
		to, err = time.Parse("2006-01-02", toStr)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("to must be YYYY-MM-DD")
		}
		// Make the end date inclusive of its whole day.
		to = to.Add(24*time.Hour - time.Nanosecond)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, errors.New("to must not precede from")
	}
	return from, to, nil
}

// ---- Helper Methods ----

func (s *Server) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) errorResponse(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
