package storage

import (
	"context"
	"sync"

	"github.com/prismads/prism/internal/models"
)

// InMemoryAdvertiserRepo is a thread-safe in-memory implementation of
// AdvertiserRepo. It is intended for development and testing; production
// deployments use the PostgreSQL repositories.
type InMemoryAdvertiserRepo struct {
	mu          sync.RWMutex
	advertisers map[string]*models.Advertiser
}

// NewInMemoryAdvertiserRepo creates an empty in-memory advertiser repo.
func NewInMemoryAdvertiserRepo() *InMemoryAdvertiserRepo {
	return &InMemoryAdvertiserRepo{
		advertisers: make(map[string]*models.Advertiser),
	}
}

// ListAll returns a slice of all advertisers.
func (r *InMemoryAdvertiserRepo) ListAll(ctx context.Context) ([]*models.Advertiser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]*models.Advertiser, 0, len(r.advertisers))
	for _, a := range r.advertisers {
		cp := *a
		res = append(res, &cp)
	}
	return res, nil
}

// GetByID returns the advertiser with the given ID or nil if not found.
func (r *InMemoryAdvertiserRepo) GetByID(ctx context.Context, id string) (*models.Advertiser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if a, ok := r.advertisers[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

// Upsert inserts or updates the given advertiser. It stores a shallow
// copy to avoid external mutation of the stored object.
func (r *InMemoryAdvertiserRepo) Upsert(ctx context.Context, a *models.Advertiser) error {
	if a == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.advertisers[a.ID] = &cp
	return nil
}

// Delete removes the advertiser with the given ID.
func (r *InMemoryAdvertiserRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.advertisers, id)
	return nil
}
