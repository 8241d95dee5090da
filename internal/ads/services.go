package ads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prismads/prism/internal/models"
	"github.com/prismads/prism/internal/storage"
)

// ErrNotFound is returned when a referenced entity does not exist.
var ErrNotFound = errors.New("not found")

// AdvertiserService provides CRUD operations over advertisers.
// It wraps a repository and adds ID assignment, timestamp management
// and validation.
type AdvertiserService struct {
	repo storage.AdvertiserRepo
}

// NewAdvertiserService constructs a new AdvertiserService.
func NewAdvertiserService(repo storage.AdvertiserRepo) *AdvertiserService {
	return &AdvertiserService{repo: repo}
}

// ListAdvertisers returns all advertisers.
func (s *AdvertiserService) ListAdvertisers(ctx context.Context) ([]*models.Advertiser, error) {
	return s.repo.ListAll(ctx)
}

// GetAdvertiser returns an advertiser by ID, nil when absent.
func (s *AdvertiserService) GetAdvertiser(ctx context.Context, id string) (*models.Advertiser, error) {
	return s.repo.GetByID(ctx, id)
}

// UpsertAdvertiser validates and saves an advertiser. A missing ID is
// assigned; CreatedAt is set once, UpdatedAt on every save.
func (s *AdvertiserService) UpsertAdvertiser(ctx context.Context, a *models.Advertiser) error {
	now := time.Now().UTC()
	if a.ID == "" {
		a.ID = uuid.NewString()
		a.IsActive = true
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	if err := a.Validate(); err != nil {
		return err
	}
	return s.repo.Upsert(ctx, a)
}

// DeleteAdvertiser removes an advertiser.
func (s *AdvertiserService) DeleteAdvertiser(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// CampaignService provides CRUD and lifecycle operations over campaigns.
type CampaignService struct {
	repo    storage.CampaignRepo
	adRepo  storage.AdRepo
	advRepo storage.AdvertiserRepo
}

// NewCampaignService constructs a CampaignService.
func NewCampaignService(repo storage.CampaignRepo, adRepo storage.AdRepo, advRepo storage.AdvertiserRepo) *CampaignService {
	return &CampaignService{repo: repo, adRepo: adRepo, advRepo: advRepo}
}

// ListCampaigns returns all campaigns, optionally filtered by
// advertiser or status. Both filters empty means everything.
func (s *CampaignService) ListCampaigns(ctx context.Context, advertiserID string, status models.CampaignStatus) ([]*models.Campaign, error) {
	switch {
	case advertiserID != "":
		campaigns, err := s.repo.GetByAdvertiser(ctx, advertiserID)
		if err != nil {
			return nil, err
		}
		if status == "" {
			return campaigns, nil
		}
		filtered := campaigns[:0]
		for _, c := range campaigns {
			if c.Status == status {
				filtered = append(filtered, c)
			}
		}
		return filtered, nil
	case status != "":
		return s.repo.GetByStatus(ctx, status)
	default:
		return s.repo.ListAll(ctx)
	}
}

// GetCampaign returns a campaign by ID, nil when absent.
func (s *CampaignService) GetCampaign(ctx context.Context, id string) (*models.Campaign, error) {
	return s.repo.GetByID(ctx, id)
}

// UpsertCampaign validates the campaign against its advertiser,
// defaults the daily budget and saves it. New campaigns start as
// drafts unless a status was given.
func (s *CampaignService) UpsertCampaign(ctx context.Context, c *models.Campaign) error {
	now := time.Now().UTC()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	if c.Status == "" {
		c.Status = models.CampaignStatusDraft
	}

	if err := c.Validate(); err != nil {
		return err
	}

	adv, err := s.advRepo.GetByID(ctx, c.AdvertiserID)
	if err != nil {
		return err
	}
	if adv == nil {
		return fmt.Errorf("advertiser %s: %w", c.AdvertiserID, ErrNotFound)
	}

	// A campaign without an explicit daily budget spreads the total
	// evenly over its scheduled days.
	if c.DailyBudget <= 0 {
		c.DailyBudget = c.TotalBudget / float64(c.DurationDays())
	}

	return s.repo.Upsert(ctx, c)
}

// UpdateStatus transitions a campaign between lifecycle states.
// Activation requires at least one ad so an empty campaign cannot
// serve.
func (s *CampaignService) UpdateStatus(ctx context.Context, id string, status models.CampaignStatus) (*models.Campaign, error) {
	switch status {
	case models.CampaignStatusDraft, models.CampaignStatusActive,
		models.CampaignStatusPaused, models.CampaignStatusCompleted:
	default:
		return nil, fmt.Errorf("invalid status %q", status)
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}

	if status == models.CampaignStatusActive && c.Status == models.CampaignStatusDraft {
		ads, err := s.adRepo.ListByCampaign(ctx, id)
		if err != nil {
			return nil, err
		}
		if len(ads) == 0 {
			return nil, errors.New("cannot activate a campaign with no ads")
		}
	}

	c.Status = status
	c.UpdatedAt = time.Now().UTC()
	if err := s.repo.Upsert(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCampaign removes a campaign.
func (s *CampaignService) DeleteCampaign(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// AdService provides CRUD operations over ad creatives.
type AdService struct {
	repo         storage.AdRepo
	campaignRepo storage.CampaignRepo
}

// NewAdService constructs an AdService.
func NewAdService(repo storage.AdRepo, campaignRepo storage.CampaignRepo) *AdService {
	return &AdService{repo: repo, campaignRepo: campaignRepo}
}

// ListAds returns all ads in a campaign.
func (s *AdService) ListAds(ctx context.Context, campaignID string) ([]*models.Ad, error) {
	return s.repo.ListByCampaign(ctx, campaignID)
}

// GetAd returns an ad by ID, nil when absent.
func (s *AdService) GetAd(ctx context.Context, id string) (*models.Ad, error) {
	return s.repo.GetByID(ctx, id)
}

// UpsertAd validates the ad against its campaign and saves it. New ads
// enter the review queue as pending.
func (s *AdService) UpsertAd(ctx context.Context, ad *models.Ad) error {
	now := time.Now().UTC()
	if ad.ID == "" {
		ad.ID = uuid.NewString()
	}
	if ad.CreatedAt.IsZero() {
		ad.CreatedAt = now
	}
	ad.UpdatedAt = now
	if ad.ApprovalStatus == "" {
		ad.ApprovalStatus = models.ApprovalPending
	}

	if err := ad.Validate(); err != nil {
		return err
	}

	c, err := s.campaignRepo.GetByID(ctx, ad.CampaignID)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("campaign %s: %w", ad.CampaignID, ErrNotFound)
	}

	return s.repo.Upsert(ctx, ad)
}

// DeleteAd removes an ad.
func (s *AdService) DeleteAd(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
