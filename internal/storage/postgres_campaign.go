package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prismads/prism/internal/models"
)

// PostgresCampaignRepo implements CampaignRepo using PostgreSQL.
// Targeting criteria are stored as a JSONB column.
type PostgresCampaignRepo struct {
	pool *pgxpool.Pool
}

// NewPostgresCampaignRepo creates a new PostgreSQL-backed campaign repository.
func NewPostgresCampaignRepo(pool *pgxpool.Pool) *PostgresCampaignRepo {
	return &PostgresCampaignRepo{pool: pool}
}

const campaignColumns = `id, name, advertiser_id, status, objective,
	total_budget, daily_budget, start_date, end_date, targeting,
	impressions_served, clicks, conversions, spend,
	created_at, updated_at, created_by`

// ListAll returns all campaigns, newest first.
func (r *PostgresCampaignRepo) ListAll(ctx context.Context) ([]*models.Campaign, error) {
	return r.queryCampaigns(ctx, `
		SELECT `+campaignColumns+`
		FROM campaigns ORDER BY created_at DESC
	`)
}

// GetByID returns the campaign with the given ID or nil if not found.
func (r *PostgresCampaignRepo) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+campaignColumns+`
		FROM campaigns WHERE id = $1
	`, id)

	c, err := scanCampaign(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	return c, nil
}

// GetByAdvertiser returns all campaigns owned by the given advertiser.
func (r *PostgresCampaignRepo) GetByAdvertiser(ctx context.Context, advertiserID string) ([]*models.Campaign, error) {
	return r.queryCampaigns(ctx, `
		SELECT `+campaignColumns+`
		FROM campaigns WHERE advertiser_id = $1 ORDER BY created_at DESC
	`, advertiserID)
}

// GetByStatus returns all campaigns in the given lifecycle status.
func (r *PostgresCampaignRepo) GetByStatus(ctx context.Context, status models.CampaignStatus) ([]*models.Campaign, error) {
	return r.queryCampaigns(ctx, `
		SELECT `+campaignColumns+`
		FROM campaigns WHERE status = $1 ORDER BY created_at DESC
	`, string(status))
}

// Upsert inserts or updates the given campaign.
func (r *PostgresCampaignRepo) Upsert(ctx context.Context, c *models.Campaign) error {
	targetingJSON, err := json.Marshal(c.Targeting)
	if err != nil {
		return fmt.Errorf("failed to encode targeting: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO campaigns (`+campaignColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			advertiser_id = EXCLUDED.advertiser_id,
			status = EXCLUDED.status,
			objective = EXCLUDED.objective,
			total_budget = EXCLUDED.total_budget,
			daily_budget = EXCLUDED.daily_budget,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			targeting = EXCLUDED.targeting,
			impressions_served = EXCLUDED.impressions_served,
			clicks = EXCLUDED.clicks,
			conversions = EXCLUDED.conversions,
			spend = EXCLUDED.spend,
			updated_at = EXCLUDED.updated_at
	`, c.ID, c.Name, c.AdvertiserID, string(c.Status), nullString(string(c.Objective)),
		c.TotalBudget, c.DailyBudget, c.StartDate, c.EndDate, targetingJSON,
		c.ImpressionsServed, c.Clicks, c.Conversions, c.Spend,
		c.CreatedAt, c.UpdatedAt, nullString(c.CreatedBy))

	if err != nil {
		return fmt.Errorf("failed to upsert campaign: %w", err)
	}
	return nil
}

// Delete deletes a campaign by ID. Ads and metric rows cascade at the
// schema level.
func (r *PostgresCampaignRepo) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete campaign: %w", err)
	}
	return nil
}

func (r *PostgresCampaignRepo) queryCampaigns(ctx context.Context, query string, args ...any) ([]*models.Campaign, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []*models.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}

	return campaigns, rows.Err()
}

func scanCampaign(row pgx.Row) (*models.Campaign, error) {
	var c models.Campaign
	var objective, createdBy *string
	var targetingJSON []byte

	err := row.Scan(
		&c.ID, &c.Name, &c.AdvertiserID, &c.Status, &objective,
		&c.TotalBudget, &c.DailyBudget, &c.StartDate, &c.EndDate, &targetingJSON,
		&c.ImpressionsServed, &c.Clicks, &c.Conversions, &c.Spend,
		&c.CreatedAt, &c.UpdatedAt, &createdBy,
	)
	if err != nil {
		return nil, err
	}

	if objective != nil {
		c.Objective = models.CampaignObjective(*objective)
	}
	if createdBy != nil {
		c.CreatedBy = *createdBy
	}
	if len(targetingJSON) > 0 {
		if err := json.Unmarshal(targetingJSON, &c.Targeting); err != nil {
			return nil, fmt.Errorf("failed to decode targeting: %w", err)
		}
	}

	return &c, nil
}
