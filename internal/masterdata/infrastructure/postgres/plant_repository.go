package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	masterdata "solarfleet/internal/masterdata/domain"
)

const defaultPlantsTable = "plants"

// DBTX is the minimal query surface shared with transactions.
type DBTX interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// PlantRepository is a Postgres implementation for plant master data.
type PlantRepository struct {
	db    DBTX
	table string
}

// NewPlantRepository constructs a repository.
func NewPlantRepository(db DBTX, opts ...PlantOption) *PlantRepository {
	repo := &PlantRepository{db: db, table: defaultPlantsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// PlantOption configures the repository.
type PlantOption func(*PlantRepository)

// WithPlantsTable overrides the default table name.
func WithPlantsTable(table string) PlantOption {
	return func(repo *PlantRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// ListPlants returns all plants ordered by display name.
func (r *PlantRepository) ListPlants(ctx context.Context) ([]masterdata.Plant, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("plant repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT id, name, source_api, capacity_kwp, COALESCE(profile_id, '')
FROM %s
ORDER BY name ASC`, r.table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", masterdata.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	return scanPlants(rows)
}

// ListPlantsByIDs returns the plants with the given ids, ordered by name.
func (r *PlantRepository) ListPlantsByIDs(ctx context.Context, ids []int64) ([]masterdata.Plant, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("plant repo: nil db")
	}
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
SELECT id, name, source_api, capacity_kwp, COALESCE(profile_id, '')
FROM %s
WHERE id = ANY($1)
ORDER BY name ASC`, r.table)

	rows, err := r.db.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", masterdata.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	return scanPlants(rows)
}

func scanPlants(rows *sql.Rows) ([]masterdata.Plant, error) {
	var result []masterdata.Plant
	for rows.Next() {
		var plant masterdata.Plant
		if err := rows.Scan(
			&plant.ID,
			&plant.Name,
			&plant.SourceAPI,
			&plant.CapacityKWp,
			&plant.ProfileID,
		); err != nil {
			return nil, fmt.Errorf("%w: %v", masterdata.ErrStorageUnavailable, err)
		}
		if err := plant.Validate(); err != nil {
			return nil, err
		}
		result = append(result, plant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", masterdata.ErrStorageUnavailable, err)
	}
	return result, nil
}
