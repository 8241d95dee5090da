package analytics

import (
	"testing"
	"time"

	"github.com/prismads/prism/internal/models"
)

func TestAggregate(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name     string
		samples  []models.MetricSample
		expected Totals
	}{
		{
			name:     "empty collection",
			samples:  nil,
			expected: Totals{},
		},
		{
			name: "single sample",
			samples: []models.MetricSample{
				{Date: day(1), Impressions: 1000, Clicks: 50, Conversions: 5, Spend: 100, Revenue: 500},
			},
			expected: Totals{Impressions: 1000, Clicks: 50, Conversions: 5, Spend: 100, Revenue: 500, SampleCount: 1},
		},
		{
			name: "multiple samples sum fieldwise",
			samples: []models.MetricSample{
				{Date: day(1), Impressions: 1000, Clicks: 50, Conversions: 5, Spend: 100, Revenue: 500},
				{Date: day(2), Impressions: 2000, Clicks: 80, Conversions: 8, Spend: 150, Revenue: 700},
			},
			expected: Totals{Impressions: 3000, Clicks: 130, Conversions: 13, Spend: 250, Revenue: 1200, SampleCount: 2},
		},
		{
			name: "clicks above impressions still sum",
			samples: []models.MetricSample{
				{Date: day(1), Impressions: 10, Clicks: 50},
			},
			expected: Totals{Impressions: 10, Clicks: 50, SampleCount: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(tt.samples)
			if got != tt.expected {
				t.Errorf("Aggregate() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}
