package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/prismads/prism/internal/models"
)

// InMemoryCampaignRepo is a thread-safe in-memory implementation of
// CampaignRepo keyed by campaign ID.
type InMemoryCampaignRepo struct {
	mu        sync.RWMutex
	campaigns map[string]*models.Campaign
}

// NewInMemoryCampaignRepo creates an empty in-memory campaign repo.
func NewInMemoryCampaignRepo() *InMemoryCampaignRepo {
	return &InMemoryCampaignRepo{
		campaigns: make(map[string]*models.Campaign),
	}
}

// ListAll returns all campaigns, newest first.
func (r *InMemoryCampaignRepo) ListAll(ctx context.Context) ([]*models.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]*models.Campaign, 0, len(r.campaigns))
	for _, c := range r.campaigns {
		cp := *c
		res = append(res, &cp)
	}
	sortCampaigns(res)
	return res, nil
}

// GetByID returns the campaign with the given ID or nil if not found.
func (r *InMemoryCampaignRepo) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.campaigns[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

// GetByAdvertiser returns all campaigns owned by the given advertiser.
func (r *InMemoryCampaignRepo) GetByAdvertiser(ctx context.Context, advertiserID string) ([]*models.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var res []*models.Campaign
	for _, c := range r.campaigns {
		if c.AdvertiserID == advertiserID {
			cp := *c
			res = append(res, &cp)
		}
	}
	sortCampaigns(res)
	return res, nil
}

// GetByStatus returns all campaigns in the given lifecycle status.
func (r *InMemoryCampaignRepo) GetByStatus(ctx context.Context, status models.CampaignStatus) ([]*models.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var res []*models.Campaign
	for _, c := range r.campaigns {
		if c.Status == status {
			cp := *c
			res = append(res, &cp)
		}
	}
	sortCampaigns(res)
	return res, nil
}

// Upsert inserts or updates the given campaign.
func (r *InMemoryCampaignRepo) Upsert(ctx context.Context, c *models.Campaign) error {
	if c == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.campaigns[c.ID] = &cp
	return nil
}

// Delete removes the campaign with the given ID.
func (r *InMemoryCampaignRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.campaigns, id)
	return nil
}

// sortCampaigns orders by creation time descending with ID as a
// tiebreaker so listings stay deterministic.
func sortCampaigns(cs []*models.Campaign) {
	sort.Slice(cs, func(i, j int) bool {
		if !cs[i].CreatedAt.Equal(cs[j].CreatedAt) {
			return cs[i].CreatedAt.After(cs[j].CreatedAt)
		}
		return cs[i].ID < cs[j].ID
	})
}
