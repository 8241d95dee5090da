package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prismads/prism/internal/models"
)

// PostgresAdRepo implements AdRepo using PostgreSQL.
type PostgresAdRepo struct {
	pool *pgxpool.Pool
}

// NewPostgresAdRepo creates a new PostgreSQL-backed ad repository.
func NewPostgresAdRepo(pool *pgxpool.Pool) *PostgresAdRepo {
	return &PostgresAdRepo{pool: pool}
}

const adColumns = `id, campaign_id, title, description, creative_url,
	click_through_url, format, duration_seconds, file_size_bytes,
	quality_score, approval_status, created_at, updated_at`

// ListByCampaign returns all ads for a campaign, oldest first.
func (r *PostgresAdRepo) ListByCampaign(ctx context.Context, campaignID string) ([]*models.Ad, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+adColumns+`
		FROM ads WHERE campaign_id = $1 ORDER BY created_at
	`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ads: %w", err)
	}
	defer rows.Close()

	var ads []*models.Ad
	for rows.Next() {
		ad, err := scanAd(rows)
		if err != nil {
			return nil, err
		}
		ads = append(ads, ad)
	}

	return ads, rows.Err()
}

// GetByID returns the ad with the given ID or nil if not found.
func (r *PostgresAdRepo) GetByID(ctx context.Context, id string) (*models.Ad, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+adColumns+`
		FROM ads WHERE id = $1
	`, id)

	ad, err := scanAd(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ad: %w", err)
	}
	return ad, nil
}

// Upsert inserts or updates the given ad.
func (r *PostgresAdRepo) Upsert(ctx context.Context, ad *models.Ad) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO ads (`+adColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			campaign_id = EXCLUDED.campaign_id,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			creative_url = EXCLUDED.creative_url,
			click_through_url = EXCLUDED.click_through_url,
			format = EXCLUDED.format,
			duration_seconds = EXCLUDED.duration_seconds,
			file_size_bytes = EXCLUDED.file_size_bytes,
			quality_score = EXCLUDED.quality_score,
			approval_status = EXCLUDED.approval_status,
			updated_at = EXCLUDED.updated_at
	`, ad.ID, ad.CampaignID, ad.Title, nullString(ad.Description), nullString(ad.CreativeURL),
		nullString(ad.ClickThroughURL), nullString(string(ad.Format)), ad.DurationSeconds, ad.FileSizeBytes,
		ad.QualityScore, string(ad.ApprovalStatus), ad.CreatedAt, ad.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert ad: %w", err)
	}
	return nil
}

// Delete deletes an ad by ID.
func (r *PostgresAdRepo) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM ads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete ad: %w", err)
	}
	return nil
}

// UpdateReview records the review outcome for an ad.
func (r *PostgresAdRepo) UpdateReview(ctx context.Context, id string, status models.ApprovalStatus, score float64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE ads SET approval_status = $2, quality_score = $3, updated_at = $4
		WHERE id = $1
	`, id, string(status), score, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update ad review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ad %s not found", id)
	}
	return nil
}

func scanAd(row pgx.Row) (*models.Ad, error) {
	var ad models.Ad
	var description, creativeURL, clickURL, format *string

	err := row.Scan(
		&ad.ID, &ad.CampaignID, &ad.Title, &description, &creativeURL,
		&clickURL, &format, &ad.DurationSeconds, &ad.FileSizeBytes,
		&ad.QualityScore, &ad.ApprovalStatus, &ad.CreatedAt, &ad.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description != nil {
		ad.Description = *description
	}
	if creativeURL != nil {
		ad.CreativeURL = *creativeURL
	}
	if clickURL != nil {
		ad.ClickThroughURL = *clickURL
	}
	if format != nil {
		ad.Format = models.AdFormat(*format)
	}

	return &ad, nil
}
