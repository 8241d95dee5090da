package models

import (
	"errors"
	"time"
)

type AdvertiserTier string

const (
	TierPremium  AdvertiserTier = "premium"
	TierStandard AdvertiserTier = "standard"
	TierBasic    AdvertiserTier = "basic"
)

// Advertiser represents an advertiser account on the platform.
type Advertiser struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	CompanyName string         `json:"company_name,omitempty"`
	Industry    string         `json:"industry,omitempty"`
	Tier        AdvertiserTier `json:"tier,omitempty"`

	// Contact information
	ContactEmail string `json:"contact_email,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`

	// Business details
	MonthlyAdSpend float64 `json:"monthly_ad_spend,omitempty"`
	AccountManager string  `json:"account_manager,omitempty"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Advertiser) Validate() error {
	if a.ID == "" {
		return errors.New("id is required")
	}
	if a.Name == "" {
		return errors.New("name is required")
	}
	switch a.Tier {
	case "", TierPremium, TierStandard, TierBasic:
	default:
		return errors.New("invalid tier")
	}
	return nil
}
