package models

import (
	"errors"
	"time"
)

type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusPaused    CampaignStatus = "paused"
	CampaignStatusCompleted CampaignStatus = "completed"
)

type CampaignObjective string

const (
	ObjectiveBrandAwareness CampaignObjective = "brand_awareness"
	ObjectiveTraffic        CampaignObjective = "traffic"
	ObjectiveConversions    CampaignObjective = "conversions"
	ObjectiveVideoViews     CampaignObjective = "video_views"
	ObjectiveSubscriptions  CampaignObjective = "subscriptions"
)

// TargetingCriteria describes who and where a campaign is shown.
// The streaming front end edits these as free-form selections, so each
// dimension stays a plain list rather than a nested rule tree.
type TargetingCriteria struct {
	Demographics []string `json:"demographics,omitempty"`  // age bands: 18-24, 25-34, ...
	ContentTypes []string `json:"content_types,omitempty"` // movies, tv_shows, sports, ...
	Countries    []string `json:"countries,omitempty"`     // ISO 3166-1 alpha-2 codes
	Regions      []string `json:"regions,omitempty"`
}

// Campaign is an advertising campaign for the streaming platform.
type Campaign struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	AdvertiserID string            `json:"advertiser_id"`
	Status       CampaignStatus    `json:"status"`
	Objective    CampaignObjective `json:"objective,omitempty"`

	// Budget
	TotalBudget float64   `json:"total_budget"`
	DailyBudget float64   `json:"daily_budget,omitempty"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`

	Targeting TargetingCriteria `json:"targeting"`

	// Lifetime delivery counters, maintained by the ingestion pipeline.
	ImpressionsServed int64   `json:"impressions_served"`
	Clicks            int64   `json:"clicks"`
	Conversions       int64   `json:"conversions"`
	Spend             float64 `json:"spend"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedBy string    `json:"created_by,omitempty"`
}

func (c *Campaign) Validate() error {
	if c.ID == "" {
		return errors.New("id is required")
	}
	if c.Name == "" {
		return errors.New("name is required")
	}
	if c.AdvertiserID == "" {
		return errors.New("advertiser_id is required")
	}
	if c.TotalBudget <= 0 {
		return errors.New("total_budget must be > 0")
	}
	if !c.EndDate.IsZero() && !c.StartDate.IsZero() && c.EndDate.Before(c.StartDate) {
		return errors.New("end_date must not precede start_date")
	}
	switch c.Status {
	case "", CampaignStatusDraft, CampaignStatusActive, CampaignStatusPaused, CampaignStatusCompleted:
	default:
		return errors.New("invalid status")
	}
	return nil
}

// DurationDays returns the scheduled length of the campaign in days,
// never less than one.
func (c *Campaign) DurationDays() int {
	days := int(c.EndDate.Sub(c.StartDate).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}
