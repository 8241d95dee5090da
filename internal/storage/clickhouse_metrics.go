package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/prismads/prism/internal/models"
)

// ClickHouseMetricStore implements MetricStore on the ClickHouse
// warehouse. The ad_metrics table uses a SummingMergeTree keyed on
// (campaign_id, date, hour), so duplicate inserts for the same slot
// collapse into summed counters at merge time.
type ClickHouseMetricStore struct {
	conn driver.Conn
}

// NewClickHouseMetricStore creates a metric store over an open
// ClickHouse connection.
func NewClickHouseMetricStore(conn driver.Conn) *ClickHouseMetricStore {
	return &ClickHouseMetricStore{conn: conn}
}

// Insert records one metric sample.
func (s *ClickHouseMetricStore) Insert(ctx context.Context, sample *models.MetricSample) error {
	err := s.conn.Exec(ctx, `
		INSERT INTO ad_metrics (campaign_id, date, hour, impressions, clicks, conversions, spend, revenue)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, sample.CampaignID, sample.Date, int32(sample.Hour),
		sample.Impressions, sample.Clicks, sample.Conversions, sample.Spend, sample.Revenue)

	if err != nil {
		return fmt.Errorf("failed to insert metric sample: %w", err)
	}
	return nil
}

// ListByCampaign returns the campaign's samples inside [from, to].
func (s *ClickHouseMetricStore) ListByCampaign(ctx context.Context, campaignID string, from, to time.Time) ([]models.MetricSample, error) {
	return s.querySamples(ctx, `
		SELECT campaign_id, date, toInt32(hour),
			sum(impressions), sum(clicks), sum(conversions), sum(spend), sum(revenue)
		FROM ad_metrics
		WHERE campaign_id = ? AND date BETWEEN ? AND ?
		GROUP BY campaign_id, date, hour
		ORDER BY date, hour
	`, campaignID, from, to)
}

// ListRange returns all samples across campaigns inside [from, to].
func (s *ClickHouseMetricStore) ListRange(ctx context.Context, from, to time.Time) ([]models.MetricSample, error) {
	return s.querySamples(ctx, `
		SELECT campaign_id, date, toInt32(hour),
			sum(impressions), sum(clicks), sum(conversions), sum(spend), sum(revenue)
		FROM ad_metrics
		WHERE date BETWEEN ? AND ?
		GROUP BY campaign_id, date, hour
		ORDER BY date, campaign_id, hour
	`, from, to)
}

// MetricSeries returns one point per day for the named metric.
func (s *ClickHouseMetricStore) MetricSeries(ctx context.Context, campaignID, metric string, from, to time.Time) ([]MetricPoint, error) {
	samples, err := s.ListByCampaign(ctx, campaignID, from, to)
	if err != nil {
		return nil, err
	}
	return SeriesFromSamples(samples, metric), nil
}

func (s *ClickHouseMetricStore) querySamples(ctx context.Context, query string, args ...any) ([]models.MetricSample, error) {
	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query metric samples: %w", err)
	}
	defer rows.Close()

	var samples []models.MetricSample
	for rows.Next() {
		var m models.MetricSample
		var hour int32
		if err := rows.Scan(&m.CampaignID, &m.Date, &hour,
			&m.Impressions, &m.Clicks, &m.Conversions, &m.Spend, &m.Revenue); err != nil {
			return nil, err
		}
		m.Hour = int(hour)
		samples = append(samples, m)
	}

	return samples, rows.Err()
}
