package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prismads/prism/internal/config"
	"github.com/prismads/prism/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	return &config.Config{
		Auth:      config.AuthConfig{Enabled: false},
		RateLimit: config.RateLimitConfig{Enabled: false},
		Metrics:   config.MetricsConfig{Enabled: false},
		Quality: config.QualityConfig{
			ScoreThreshold:   3.5,
			MinCTRPercent:    0.5,
			MaxFileSizeBytes: 10 * 1024 * 1024,
			MaxVideoSeconds:  30,
		},
		Analytics: config.AnalyticsConfig{
			ExcellentCTR:  5,
			ExcellentCVR:  10,
			ExcellentROAS: 5,
			VarianceScale: 1_000_000,
			ForecastDays:  30,
		},
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	handler := NewServer(&Dependencies{
		Config: testConfig(),
		Logger: zap.NewNop(),
	})
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body interface{}, out interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	var body map[string]string
	resp := doJSON(t, http.MethodGet, ts.URL+"/health", nil, &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestAdvertiserCRUD(t *testing.T) {
	ts := newTestServer(t)

	var created models.Advertiser
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/advertisers",
		models.Advertiser{Name: "Lumen Pictures"}, &created)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, created.ID)

	var fetched models.Advertiser
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/v1/advertisers/"+created.ID, nil, &fetched)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Lumen Pictures", fetched.Name)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/v1/advertisers/missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCampaignLifecycle(t *testing.T) {
	ts := newTestServer(t)

	// Campaign with no advertiser is rejected.
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/campaigns",
		models.Campaign{Name: "Orphan", AdvertiserID: "missing", TotalBudget: 100}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var adv models.Advertiser
	doJSON(t, http.MethodPost, ts.URL+"/api/v1/advertisers",
		models.Advertiser{Name: "Acme"}, &adv)

	var campaign models.Campaign
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/v1/campaigns",
		models.Campaign{Name: "Launch", AdvertiserID: adv.ID, TotalBudget: 3000}, &campaign)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.CampaignStatusDraft, campaign.Status)

	// Activating a campaign with no ads fails.
	resp = doJSON(t, http.MethodPut, ts.URL+"/api/v1/campaigns/"+campaign.ID+"/status",
		map[string]string{"status": "active"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var ad models.Ad
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/v1/ads",
		models.Ad{CampaignID: campaign.ID, Title: "Stream the finale today"}, &ad)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.ApprovalPending, ad.ApprovalStatus)

	var updated models.Campaign
	resp = doJSON(t, http.MethodPut, ts.URL+"/api/v1/campaigns/"+campaign.ID+"/status",
		map[string]string{"status": "active"}, &updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.CampaignStatusActive, updated.Status)
}

func TestMetricsIngestionAndPerformance(t *testing.T) {
	ts := newTestServer(t)

	var adv models.Advertiser
	doJSON(t, http.MethodPost, ts.URL+"/api/v1/advertisers",
		models.Advertiser{Name: "Acme"}, &adv)
	var campaign models.Campaign
	doJSON(t, http.MethodPost, ts.URL+"/api/v1/campaigns",
		models.Campaign{Name: "Launch", AdvertiserID: adv.ID, TotalBudget: 3000}, &campaign)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/campaigns/"+campaign.ID+"/metrics",
		map[string]interface{}{
			"impressions": 1000, "clicks": 50, "conversions": 5,
			"spend": 100.0, "revenue": 250.0,
		}, nil)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	// Out-of-range hour is rejected before it reaches the store.
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/v1/campaigns/"+campaign.ID+"/metrics",
		map[string]interface{}{"impressions": 10, "hour": 24}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var report map[string]interface{}
	resp = doJSON(t, http.MethodGet,
		ts.URL+"/api/v1/campaigns/"+campaign.ID+"/performance?days=7", nil, &report)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1000, report["total_impressions"])
	assert.Contains(t, report, "calculated_metrics")
	assert.Contains(t, report, "daily_metrics")

	resp = doJSON(t, http.MethodGet,
		ts.URL+"/api/v1/campaigns/missing/performance", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdReviewEndpoint(t *testing.T) {
	ts := newTestServer(t)

	var adv models.Advertiser
	doJSON(t, http.MethodPost, ts.URL+"/api/v1/advertisers",
		models.Advertiser{Name: "Acme"}, &adv)
	var campaign models.Campaign
	doJSON(t, http.MethodPost, ts.URL+"/api/v1/campaigns",
		models.Campaign{Name: "Launch", AdvertiserID: adv.ID, TotalBudget: 3000}, &campaign)
	var ad models.Ad
	doJSON(t, http.MethodPost, ts.URL+"/api/v1/ads", models.Ad{
		CampaignID:      campaign.ID,
		Title:           "Stream the new season",
		Description:     "All episodes available now.",
		CreativeURL:     "https://cdn.example.com/creative.mp4",
		ClickThroughURL: "https://example.com/watch",
	}, &ad)

	var result map[string]interface{}
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/ads/"+ad.ID+"/review", nil, &result)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(models.ApprovalApproved), result["status"])

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/v1/ads/missing/review", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAnalyticsValidation(t *testing.T) {
	ts := newTestServer(t)

	cases := []struct {
		name string
		path string
	}{
		{"invalid trend metric", "/api/v1/analytics/trends?metric=bounce_rate"},
		{"invalid trend period", "/api/v1/analytics/trends?period=hourly"},
		{"days out of range", "/api/v1/analytics/dashboard?days=9999"},
		{"ab test missing ids", "/api/v1/analytics/ab-test"},
		{"ab test same ids", "/api/v1/analytics/ab-test?control_id=a&test_id=a"},
		{"forecast missing campaign", "/api/v1/analytics/forecast"},
		{"forecast projection too long", "/api/v1/analytics/forecast?campaign_id=a&projection_days=120"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodGet, ts.URL+tc.path, nil, nil)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}

	var dashboard map[string]interface{}
	resp := doJSON(t, http.MethodGet, ts.URL+"/api/v1/analytics/dashboard", nil, &dashboard)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var alerts map[string]interface{}
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/v1/analytics/alerts", nil, &alerts)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, alerts["count"])
}

func TestAuthEnforced(t *testing.T) {
	cfg := testConfig()
	cfg.Auth = config.AuthConfig{
		Enabled:   true,
		MasterKey: "secret-key",
		SkipPaths: []string{"/health"},
	}
	handler := NewServer(&Dependencies{Config: cfg, Logger: zap.NewNop()})
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL + "/api/v1/campaigns")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Skip paths stay open.
	resp, err = http.Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/campaigns", nil)
	require.NoError(t, err)
	req.Header.Set("X-API-Key", "secret-key")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
