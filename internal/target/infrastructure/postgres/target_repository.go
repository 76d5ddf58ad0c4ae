package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	target "solarfleet/internal/target/domain"
)

const defaultTargetsTable = "plant_targets"

// TargetRepository reads the per-profile, per-day target table. Values in
// this table are already plant-specific, so no capacity scaling applies.
type TargetRepository struct {
	db    *sql.DB
	table string
}

// NewTargetRepository constructs a repository.
func NewTargetRepository(db *sql.DB, opts ...Option) *TargetRepository {
	repo := &TargetRepository{db: db, table: defaultTargetsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// Option configures the repository.
type Option func(*TargetRepository)

// WithTargetsTable overrides the default table name.
func WithTargetsTable(table string) Option {
	return func(repo *TargetRepository) {
		if repo != nil && table != "" {
			repo.table = table
		}
	}
}

// DayTargets returns bands for the profiles covering [start, end] inclusive.
func (r *TargetRepository) DayTargets(ctx context.Context, profileIDs []string, start, end time.Time) (target.DayTargetTable, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("target repo: nil db")
	}
	if len(profileIDs) == 0 {
		return target.DayTargetTable{}, nil
	}
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return nil, target.ErrInvalidRange
	}

	query := fmt.Sprintf(`
SELECT profile_id, day, min_kwh, max_kwh
FROM %s
WHERE profile_id = ANY($1)
	AND day >= $2
	AND day <= $3
ORDER BY profile_id, day ASC`, r.table)

	rows, err := r.db.QueryContext(ctx, query, profileIDs, start.Format(target.DayKeyLayout), end.Format(target.DayKeyLayout))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", target.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	table := make(target.DayTargetTable)
	for rows.Next() {
		var profileID string
		var day time.Time
		var band target.Band
		if err := rows.Scan(&profileID, &day, &band.MinKWh, &band.MaxKWh); err != nil {
			return nil, fmt.Errorf("%w: %v", target.ErrStorageUnavailable, err)
		}
		days := table[profileID]
		if days == nil {
			days = make(map[string]target.Band)
			table[profileID] = days
		}
		days[day.Format(target.DayKeyLayout)] = band
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", target.ErrStorageUnavailable, err)
	}
	return table, nil
}

// ReferenceCapacity reports that table values are pre-scaled.
func (r *TargetRepository) ReferenceCapacity(string) (float64, bool) { return 0, false }
