package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/prismads/prism/internal/models"
)

// InMemoryMetricStore is a thread-safe in-memory implementation of
// MetricStore. Samples are kept per campaign in date order.
type InMemoryMetricStore struct {
	mu      sync.RWMutex
	samples map[string][]models.MetricSample
}

// NewInMemoryMetricStore creates an empty in-memory metric store.
func NewInMemoryMetricStore() *InMemoryMetricStore {
	return &InMemoryMetricStore{
		samples: make(map[string][]models.MetricSample),
	}
}

// Insert records one metric sample.
func (s *InMemoryMetricStore) Insert(ctx context.Context, sample *models.MetricSample) error {
	if sample == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := append(s.samples[sample.CampaignID], *sample)
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		return rows[i].Hour < rows[j].Hour
	})
	s.samples[sample.CampaignID] = rows
	return nil
}

// ListByCampaign returns the campaign's samples inside [from, to].
func (s *InMemoryMetricStore) ListByCampaign(ctx context.Context, campaignID string, from, to time.Time) ([]models.MetricSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []models.MetricSample
	for _, row := range s.samples[campaignID] {
		if inRange(row.Date, from, to) {
			res = append(res, row)
		}
	}
	return res, nil
}

// ListRange returns all samples across campaigns inside [from, to].
func (s *InMemoryMetricStore) ListRange(ctx context.Context, from, to time.Time) ([]models.MetricSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []models.MetricSample
	for _, rows := range s.samples {
		for _, row := range rows {
			if inRange(row.Date, from, to) {
				res = append(res, row)
			}
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].Date.Equal(res[j].Date) {
			return res[i].Date.Before(res[j].Date)
		}
		return res[i].CampaignID < res[j].CampaignID
	})
	return res, nil
}

// MetricSeries returns one point per day for the named metric.
func (s *InMemoryMetricStore) MetricSeries(ctx context.Context, campaignID, metric string, from, to time.Time) ([]MetricPoint, error) {
	samples, err := s.ListByCampaign(ctx, campaignID, from, to)
	if err != nil {
		return nil, err
	}
	return SeriesFromSamples(samples, metric), nil
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

// SeriesFromSamples folds raw samples into one derived-metric point per
// day, oldest first. Days with a zero denominator yield a zero point
// rather than being dropped, so chart axes stay continuous. All metric
// store backends share this fold so the day math lives in one place.
func SeriesFromSamples(samples []models.MetricSample, metric string) []MetricPoint {
	type dayTotals struct {
		impressions int64
		clicks      int64
		conversions int64
		spend       float64
		revenue     float64
	}

	byDay := make(map[time.Time]*dayTotals)
	for _, s := range samples {
		day := s.Date.Truncate(24 * time.Hour)
		t, ok := byDay[day]
		if !ok {
			t = &dayTotals{}
			byDay[day] = t
		}
		t.impressions += s.Impressions
		t.clicks += s.Clicks
		t.conversions += s.Conversions
		t.spend += s.Spend
		t.revenue += s.Revenue
	}

	days := make([]time.Time, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	points := make([]MetricPoint, 0, len(days))
	for _, day := range days {
		t := byDay[day]
		var v float64
		switch metric {
		case MetricCTR:
			if t.impressions > 0 {
				v = float64(t.clicks) / float64(t.impressions) * 100
			}
		case MetricCVR:
			if t.clicks > 0 {
				v = float64(t.conversions) / float64(t.clicks) * 100
			}
		case MetricCPC:
			if t.clicks > 0 {
				v = t.spend / float64(t.clicks)
			}
		case MetricROAS:
			if t.spend > 0 {
				v = t.revenue / t.spend
			}
		}
		points = append(points, MetricPoint{Date: day, Value: v})
	}
	return points
}
