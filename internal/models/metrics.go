package models

import "time"

// MetricSample is one time-bucketed observation of campaign delivery.
// Samples are produced by the metrics store per query and never mutated
// afterwards; all analytics over them are pure functions.
//
// Clicks exceeding impressions is not rejected here; ratio computations
// downstream must tolerate it and still produce a value.
type MetricSample struct {
	CampaignID string    `json:"campaign_id"`
	Date       time.Time `json:"date"`
	Hour       int       `json:"hour,omitempty"` // 0-23 for hourly rows, 0 for daily

	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Conversions int64   `json:"conversions"`
	Spend       float64 `json:"spend"`
	Revenue     float64 `json:"revenue"`
}
