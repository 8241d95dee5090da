package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prismads/prism/internal/models"
)

// PostgresAdvertiserRepo implements AdvertiserRepo using PostgreSQL.
type PostgresAdvertiserRepo struct {
	pool *pgxpool.Pool
}

// NewPostgresAdvertiserRepo creates a new PostgreSQL-backed advertiser repository.
func NewPostgresAdvertiserRepo(pool *pgxpool.Pool) *PostgresAdvertiserRepo {
	return &PostgresAdvertiserRepo{pool: pool}
}

const advertiserColumns = `id, name, company_name, industry, tier,
	contact_email, contact_phone, monthly_ad_spend, account_manager,
	is_active, created_at, updated_at`

// ListAll returns all advertisers ordered by name.
func (r *PostgresAdvertiserRepo) ListAll(ctx context.Context) ([]*models.Advertiser, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+advertiserColumns+`
		FROM advertisers ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list advertisers: %w", err)
	}
	defer rows.Close()

	var advertisers []*models.Advertiser
	for rows.Next() {
		a, err := scanAdvertiser(rows)
		if err != nil {
			return nil, err
		}
		advertisers = append(advertisers, a)
	}

	return advertisers, rows.Err()
}

// GetByID returns an advertiser by ID or nil if not found.
func (r *PostgresAdvertiserRepo) GetByID(ctx context.Context, id string) (*models.Advertiser, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+advertiserColumns+`
		FROM advertisers WHERE id = $1
	`, id)

	a, err := scanAdvertiser(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get advertiser: %w", err)
	}
	return a, nil
}

// Upsert inserts or updates an advertiser.
func (r *PostgresAdvertiserRepo) Upsert(ctx context.Context, a *models.Advertiser) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO advertisers (`+advertiserColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			company_name = EXCLUDED.company_name,
			industry = EXCLUDED.industry,
			tier = EXCLUDED.tier,
			contact_email = EXCLUDED.contact_email,
			contact_phone = EXCLUDED.contact_phone,
			monthly_ad_spend = EXCLUDED.monthly_ad_spend,
			account_manager = EXCLUDED.account_manager,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at
	`, a.ID, a.Name, nullString(a.CompanyName), nullString(a.Industry),
		nullString(string(a.Tier)), nullString(a.ContactEmail), nullString(a.ContactPhone),
		a.MonthlyAdSpend, nullString(a.AccountManager),
		a.IsActive, a.CreatedAt, a.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert advertiser: %w", err)
	}
	return nil
}

// Delete deletes an advertiser by ID.
func (r *PostgresAdvertiserRepo) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM advertisers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete advertiser: %w", err)
	}
	return nil
}

func scanAdvertiser(row pgx.Row) (*models.Advertiser, error) {
	var a models.Advertiser
	var companyName, industry, tier, email, phone, manager *string

	err := row.Scan(
		&a.ID, &a.Name, &companyName, &industry, &tier,
		&email, &phone, &a.MonthlyAdSpend, &manager,
		&a.IsActive, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if companyName != nil {
		a.CompanyName = *companyName
	}
	if industry != nil {
		a.Industry = *industry
	}
	if tier != nil {
		a.Tier = models.AdvertiserTier(*tier)
	}
	if email != nil {
		a.ContactEmail = *email
	}
	if phone != nil {
		a.ContactPhone = *phone
	}
	if manager != nil {
		a.AccountManager = *manager
	}

	return &a, nil
}

// nullString converts an empty string to nil for nullable columns.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
