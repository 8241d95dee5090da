package storage

import (
	"context"
	"time"

	"github.com/prismads/prism/internal/models"
)

// Metric names accepted by MetricStore.MetricSeries.
const (
	MetricCTR  = "ctr"
	MetricCVR  = "cvr"
	MetricCPC  = "cpc"
	MetricROAS = "roas"
)

// ValidMetric reports whether name is a supported series metric.
func ValidMetric(name string) bool {
	switch name {
	case MetricCTR, MetricCVR, MetricCPC, MetricROAS:
		return true
	}
	return false
}

// =============================================
// ADVERTISER REPOSITORY
// =============================================

// AdvertiserRepo defines operations for advertiser storage.
type AdvertiserRepo interface {
	ListAll(ctx context.Context) ([]*models.Advertiser, error)
	GetByID(ctx context.Context, id string) (*models.Advertiser, error)
	Upsert(ctx context.Context, a *models.Advertiser) error
	Delete(ctx context.Context, id string) error
}

// =============================================
// CAMPAIGN REPOSITORY
// =============================================

// CampaignRepo defines operations for campaign storage.
type CampaignRepo interface {
	// Basic CRUD
	ListAll(ctx context.Context) ([]*models.Campaign, error)
	GetByID(ctx context.Context, id string) (*models.Campaign, error)
	Upsert(ctx context.Context, c *models.Campaign) error
	Delete(ctx context.Context, id string) error

	// Queries
	GetByAdvertiser(ctx context.Context, advertiserID string) ([]*models.Campaign, error)
	GetByStatus(ctx context.Context, status models.CampaignStatus) ([]*models.Campaign, error)
}

// =============================================
// AD REPOSITORY
// =============================================

// AdRepo defines operations for ad creative storage.
type AdRepo interface {
	ListByCampaign(ctx context.Context, campaignID string) ([]*models.Ad, error)
	GetByID(ctx context.Context, id string) (*models.Ad, error)
	Upsert(ctx context.Context, ad *models.Ad) error
	Delete(ctx context.Context, id string) error

	// UpdateReview records the outcome of an ad review pass.
	UpdateReview(ctx context.Context, id string, status models.ApprovalStatus, score float64) error
}

// =============================================
// METRIC STORE
// =============================================

// MetricPoint is one dated value of a derived metric series.
type MetricPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// MetricStore defines operations for the daily delivery metric rows that
// feed reporting. Ranges are inclusive on both ends.
type MetricStore interface {
	Insert(ctx context.Context, sample *models.MetricSample) error
	ListByCampaign(ctx context.Context, campaignID string, from, to time.Time) ([]models.MetricSample, error)
	ListRange(ctx context.Context, from, to time.Time) ([]models.MetricSample, error)

	// MetricSeries returns one point per day for the named metric
	// (ctr, cvr, cpc or roas), oldest first.
	MetricSeries(ctx context.Context, campaignID, metric string, from, to time.Time) ([]MetricPoint, error)
}

// =============================================
// REPORT CACHE
// =============================================

// ReportCache stores rendered performance reports for a short TTL so
// repeated dashboard loads do not recompute statistics. Get returns
// nil with no error on a miss.
type ReportCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, payload []byte) error
	Invalidate(ctx context.Context, key string) error
}
