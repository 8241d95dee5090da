package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/prismads/prism/internal/models"
)

// InMemoryAdRepo is a thread-safe in-memory implementation of AdRepo.
type InMemoryAdRepo struct {
	mu  sync.RWMutex
	ads map[string]*models.Ad
}

// NewInMemoryAdRepo creates an empty in-memory ad repo.
func NewInMemoryAdRepo() *InMemoryAdRepo {
	return &InMemoryAdRepo{
		ads: make(map[string]*models.Ad),
	}
}

// ListByCampaign returns all ads belonging to the given campaign,
// oldest first.
func (r *InMemoryAdRepo) ListByCampaign(ctx context.Context, campaignID string) ([]*models.Ad, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var res []*models.Ad
	for _, ad := range r.ads {
		if ad.CampaignID == campaignID {
			cp := *ad
			res = append(res, &cp)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].CreatedAt.Before(res[j].CreatedAt)
		}
		return res[i].ID < res[j].ID
	})
	return res, nil
}

// GetByID returns the ad with the given ID or nil if not found.
func (r *InMemoryAdRepo) GetByID(ctx context.Context, id string) (*models.Ad, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ad, ok := r.ads[id]; ok {
		cp := *ad
		return &cp, nil
	}
	return nil, nil
}

// Upsert inserts or updates the given ad.
func (r *InMemoryAdRepo) Upsert(ctx context.Context, ad *models.Ad) error {
	if ad == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *ad
	r.ads[ad.ID] = &cp
	return nil
}

// Delete removes the ad with the given ID.
func (r *InMemoryAdRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ads, id)
	return nil
}

// UpdateReview records the review outcome for an ad.
func (r *InMemoryAdRepo) UpdateReview(ctx context.Context, id string, status models.ApprovalStatus, score float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ad, ok := r.ads[id]
	if !ok {
		return fmt.Errorf("ad %s not found", id)
	}
	ad.ApprovalStatus = status
	ad.QualityScore = score
	ad.UpdatedAt = time.Now().UTC()
	return nil
}
