package readings

import (
	"context"
	"time"
)

// IntervalReading is one raw inverter reading: instantaneous power plus the
// energy produced in the interval. Timestamps are stored in UTC; display
// bucketing converts to the fleet's civil timezone.
type IntervalReading struct {
	TS           time.Time
	PowerKW      float64
	EnergyWh     float64
	InverterID   int64
	InverterName string
	PlantID      int64
	PlantName    string
}

// ReadingPage is the result of a reading fetch. Truncated is set when the
// configured row cap was hit; the readings present are still a valid prefix
// of the requested range.
type ReadingPage struct {
	Readings  []IntervalReading
	Truncated bool
}

// LastSeen is the most recent reading timestamp per inverter.
type LastSeen struct {
	InverterID   int64
	InverterName string
	PlantName    string
	At           time.Time
}

// ReadingQuery is the read-only gateway to the interval reading store.
type ReadingQuery interface {
	// ListReadings returns readings for the inverters within [start, end),
	// ordered by timestamp, capped by the gateway's row limit.
	ListReadings(ctx context.Context, inverterIDs []int64, start, end time.Time) (*ReadingPage, error)
	// ListLastSeen returns the latest reading timestamp per inverter.
	ListLastSeen(ctx context.Context, inverterIDs []int64) ([]LastSeen, error)
}
