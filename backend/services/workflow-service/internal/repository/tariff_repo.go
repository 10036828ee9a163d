package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"solarshare/backend/services/workflow-service/internal/models"
)

// TariffRepository handles tariff lookups.
type TariffRepository struct {
	pool *pgxpool.Pool
}

// NewTariffRepository returns repository.
func NewTariffRepository(pool *pgxpool.Pool) *TariffRepository {
	return &TariffRepository{pool: pool}
}

// GetActive returns the most recently updated active tariff.
func (r *TariffRepository) GetActive(ctx context.Context) (*models.Tariff, error) {
	const query = `
		SELECT id, name, price_per_kwh, is_active, updated_at
		FROM tariffs
		WHERE is_active = true
		ORDER BY updated_at DESC
		LIMIT 1
	`
	var t models.Tariff
	if err := r.pool.QueryRow(ctx, query).Scan(
		&t.ID,
		&t.Name,
		&t.PricePerKWh,
		&t.IsActive,
		&t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}
