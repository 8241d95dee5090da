package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prismads/prism/internal/models"
)

// PostgresMetricStore implements MetricStore using PostgreSQL. One row
// per campaign per day per hour; re-delivery of the same slot adds to
// the existing counters.
type PostgresMetricStore struct {
	pool *pgxpool.Pool
}

// NewPostgresMetricStore creates a new PostgreSQL-backed metric store.
func NewPostgresMetricStore(pool *pgxpool.Pool) *PostgresMetricStore {
	return &PostgresMetricStore{pool: pool}
}

// Insert records one metric sample, accumulating into an existing slot.
func (s *PostgresMetricStore) Insert(ctx context.Context, sample *models.MetricSample) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO ad_metrics (campaign_id, date, hour, impressions, clicks, conversions, spend, revenue)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (campaign_id, date, hour) DO UPDATE SET
			impressions = ad_metrics.impressions + EXCLUDED.impressions,
			clicks = ad_metrics.clicks + EXCLUDED.clicks,
			conversions = ad_metrics.conversions + EXCLUDED.conversions,
			spend = ad_metrics.spend + EXCLUDED.spend,
			revenue = ad_metrics.revenue + EXCLUDED.revenue
	`, sample.CampaignID, sample.Date, sample.Hour,
		sample.Impressions, sample.Clicks, sample.Conversions, sample.Spend, sample.Revenue)

	if err != nil {
		return fmt.Errorf("failed to insert metric sample: %w", err)
	}
	return nil
}

// ListByCampaign returns the campaign's samples inside [from, to].
func (s *PostgresMetricStore) ListByCampaign(ctx context.Context, campaignID string, from, to time.Time) ([]models.MetricSample, error) {
	return s.querySamples(ctx, `
		SELECT campaign_id, date, hour, impressions, clicks, conversions, spend, revenue
		FROM ad_metrics
		WHERE campaign_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date, hour
	`, campaignID, from, to)
}

// ListRange returns all samples across campaigns inside [from, to].
func (s *PostgresMetricStore) ListRange(ctx context.Context, from, to time.Time) ([]models.MetricSample, error) {
	return s.querySamples(ctx, `
		SELECT campaign_id, date, hour, impressions, clicks, conversions, spend, revenue
		FROM ad_metrics
		WHERE date BETWEEN $1 AND $2
		ORDER BY date, campaign_id, hour
	`, from, to)
}

// MetricSeries returns one point per day for the named metric.
func (s *PostgresMetricStore) MetricSeries(ctx context.Context, campaignID, metric string, from, to time.Time) ([]MetricPoint, error) {
	samples, err := s.ListByCampaign(ctx, campaignID, from, to)
	if err != nil {
		return nil, err
	}
	return SeriesFromSamples(samples, metric), nil
}

func (s *PostgresMetricStore) querySamples(ctx context.Context, query string, args ...any) ([]models.MetricSample, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query metric samples: %w", err)
	}
	defer rows.Close()

	var samples []models.MetricSample
	for rows.Next() {
		var m models.MetricSample
		if err := rows.Scan(&m.CampaignID, &m.Date, &m.Hour,
			&m.Impressions, &m.Clicks, &m.Conversions, &m.Spend, &m.Revenue); err != nil {
			return nil, err
		}
		samples = append(samples, m)
	}

	return samples, rows.Err()
}
