package postgres

import (
	"context"
	"errors"
	"fmt"

	masterdata "solarfleet/internal/masterdata/domain"
)

const defaultInvertersTable = "inverters"

// InverterRepository is a Postgres implementation for inverter master data.
type InverterRepository struct {
	db    DBTX
	table string
}

// NewInverterRepository constructs a repository.
func NewInverterRepository(db DBTX, opts ...InverterOption) *InverterRepository {
	repo := &InverterRepository{db: db, table: defaultInvertersTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// InverterOption configures the repository.
type InverterOption func(*InverterRepository)

// WithInvertersTable overrides the default table name.
func WithInvertersTable(table string) InverterOption {
	return func(repo *InverterRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// ListByPlants returns inverters belonging to the given plants, ordered by name.
func (r *InverterRepository) ListByPlants(ctx context.Context, plantIDs []int64) ([]masterdata.Inverter, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("inverter repo: nil db")
	}
	if len(plantIDs) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
SELECT id, name, plant_id
FROM %s
WHERE plant_id = ANY($1)
ORDER BY name ASC`, r.table)

	rows, err := r.db.QueryContext(ctx, query, plantIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", masterdata.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var result []masterdata.Inverter
	for rows.Next() {
		var inverter masterdata.Inverter
		if err := rows.Scan(&inverter.ID, &inverter.Name, &inverter.PlantID); err != nil {
			return nil, fmt.Errorf("%w: %v", masterdata.ErrStorageUnavailable, err)
		}
		result = append(result, inverter)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", masterdata.ErrStorageUnavailable, err)
	}
	return result, nil
}
