package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	readings "solarfleet/internal/readings/domain"
)

const (
	defaultReadingsTable  = "readings"
	defaultInvertersTable = "inverters"
	defaultPlantsTable    = "plants"
	defaultRowCap         = 500000
)

// ReadingQuery is a Postgres implementation of the reading store gateway.
// It joins readings against inverter and plant master data so the caller
// gets display names without a second round trip.
type ReadingQuery struct {
	db             *sql.DB
	readingsTable  string
	invertersTable string
	plantsTable    string
	rowCap         int
}

// NewReadingQuery constructs a query with default table names and row cap.
func NewReadingQuery(db *sql.DB, opts ...QueryOption) *ReadingQuery {
	query := &ReadingQuery{
		db:             db,
		readingsTable:  defaultReadingsTable,
		invertersTable: defaultInvertersTable,
		plantsTable:    defaultPlantsTable,
		rowCap:         defaultRowCap,
	}
	for _, opt := range opts {
		opt(query)
	}
	return query
}

// QueryOption configures the reading query.
type QueryOption func(*ReadingQuery)

// WithReadingsTable overrides the readings table name.
func WithReadingsTable(table string) QueryOption {
	return func(query *ReadingQuery) {
		if query != nil && table != "" {
			query.readingsTable = table
		}
	}
}

// WithRowCap overrides the maximum number of rows fetched per query.
func WithRowCap(limit int) QueryOption {
	return func(query *ReadingQuery) {
		if query != nil && limit > 0 {
			query.rowCap = limit
		}
	}
}

// ListReadings returns readings within [start, end) ordered by timestamp.
// One row beyond the cap is probed so truncation can be reported without a
// separate count query.
func (q *ReadingQuery) ListReadings(ctx context.Context, inverterIDs []int64, start, end time.Time) (*readings.ReadingPage, error) {
	if q == nil || q.db == nil {
		return nil, errors.New("reading query: nil db")
	}
	if len(inverterIDs) == 0 {
		return nil, readings.ErrNoDevices
	}
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return nil, readings.ErrInvalidRange
	}

	query := fmt.Sprintf(`
SELECT r.ts, r.power_kw, r.energy_wh, r.inverter_id, i.name, p.id, p.name
FROM %s r
JOIN %s i ON r.inverter_id = i.id
JOIN %s p ON i.plant_id = p.id
WHERE r.inverter_id = ANY($1)
	AND r.ts >= $2
	AND r.ts < $3
ORDER BY r.ts ASC
LIMIT $4`, q.readingsTable, q.invertersTable, q.plantsTable)

	rows, err := q.db.QueryContext(ctx, query, inverterIDs, start.UTC(), end.UTC(), q.rowCap+1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", readings.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	page := &readings.ReadingPage{}
	for rows.Next() {
		var reading readings.IntervalReading
		if err := rows.Scan(
			&reading.TS,
			&reading.PowerKW,
			&reading.EnergyWh,
			&reading.InverterID,
			&reading.InverterName,
			&reading.PlantID,
			&reading.PlantName,
		); err != nil {
			return nil, fmt.Errorf("%w: %v", readings.ErrStorageUnavailable, err)
		}
		reading.TS = reading.TS.UTC()
		page.Readings = append(page.Readings, reading)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", readings.ErrStorageUnavailable, err)
	}

	if len(page.Readings) > q.rowCap {
		page.Readings = page.Readings[:q.rowCap]
		page.Truncated = true
	}
	return page, nil
}

// ListLastSeen returns the most recent reading timestamp per inverter,
// newest first.
func (q *ReadingQuery) ListLastSeen(ctx context.Context, inverterIDs []int64) ([]readings.LastSeen, error) {
	if q == nil || q.db == nil {
		return nil, errors.New("reading query: nil db")
	}
	if len(inverterIDs) == 0 {
		return nil, readings.ErrNoDevices
	}

	query := fmt.Sprintf(`
SELECT r.inverter_id, i.name, p.name, MAX(r.ts) AS last_seen
FROM %s r
JOIN %s i ON r.inverter_id = i.id
JOIN %s p ON i.plant_id = p.id
WHERE r.inverter_id = ANY($1)
GROUP BY r.inverter_id, i.name, p.name
ORDER BY last_seen DESC`, q.readingsTable, q.invertersTable, q.plantsTable)

	rows, err := q.db.QueryContext(ctx, query, inverterIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", readings.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var result []readings.LastSeen
	for rows.Next() {
		var seen readings.LastSeen
		if err := rows.Scan(&seen.InverterID, &seen.InverterName, &seen.PlantName, &seen.At); err != nil {
			return nil, fmt.Errorf("%w: %v", readings.ErrStorageUnavailable, err)
		}
		seen.At = seen.At.UTC()
		result = append(result, seen)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", readings.ErrStorageUnavailable, err)
	}
	return result, nil
}
