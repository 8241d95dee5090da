package analytics

import "github.com/prismads/prism/internal/models"

// Totals holds the summed volume and financial metrics for a collection
// of samples.
type Totals struct {
	Impressions int64   `json:"total_impressions"`
	Clicks      int64   `json:"total_clicks"`
	Conversions int64   `json:"total_conversions"`
	Spend       float64 `json:"total_spend"`
	Revenue     float64 `json:"total_revenue"`
	SampleCount int     `json:"sample_count"`
}

// Aggregate sums metric samples into totals. An empty collection is a
// valid input and yields all-zero totals; downstream ratio computations
// treat zero denominators as zero rather than failing.
func Aggregate(samples []models.MetricSample) Totals {
	var t Totals
	for _, s := range samples {
		t.Impressions += s.Impressions
		t.Clicks += s.Clicks
		t.Conversions += s.Conversions
		t.Spend += s.Spend
		t.Revenue += s.Revenue
	}
	t.SampleCount = len(samples)
	return t
}
