package models

import (
	"errors"
	"time"
)

type AdFormat string

const (
	FormatBanner      AdFormat = "banner"
	FormatVideo       AdFormat = "video"
	FormatInteractive AdFormat = "interactive"
)

type ApprovalStatus string

const (
	ApprovalPending     ApprovalStatus = "pending"
	ApprovalApproved    ApprovalStatus = "approved"
	ApprovalNeedsReview ApprovalStatus = "needs_review"
	ApprovalRejected    ApprovalStatus = "rejected"
)

// Ad is a single creative belonging to a campaign.
type Ad struct {
	ID         string `json:"id"`
	CampaignID string `json:"campaign_id"`

	// Content
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	CreativeURL     string `json:"creative_url,omitempty"`
	ClickThroughURL string `json:"click_through_url,omitempty"`

	// Specifications
	Format          AdFormat `json:"format,omitempty"`
	DurationSeconds int      `json:"duration_seconds,omitempty"` // video only
	FileSizeBytes   int64    `json:"file_size_bytes,omitempty"`

	// Quality control, set by the review pipeline.
	QualityScore   float64        `json:"quality_score,omitempty"`
	ApprovalStatus ApprovalStatus `json:"approval_status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Ad) Validate() error {
	if a.ID == "" {
		return errors.New("id is required")
	}
	if a.CampaignID == "" {
		return errors.New("campaign_id is required")
	}
	if a.Title == "" {
		return errors.New("title is required")
	}
	switch a.Format {
	case "", FormatBanner, FormatVideo, FormatInteractive:
	default:
		return errors.New("invalid format")
	}
	return nil
}
