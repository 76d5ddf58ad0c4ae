package target

import (
	"context"
	"time"
)

// DayKeyLayout formats a civil calendar day into the lookup key used by
// target tables.
const DayKeyLayout = "2006-01-02"

// Band is the expected minimum/maximum energy for one profile and day, in
// kWh at the capacity the source was calibrated for.
type Band struct {
	MinKWh float64
	MaxKWh float64
}

// DayTargetTable maps profile id -> civil day key -> band. A missing day is
// a valid state, never an error; the engine treats it as a zero band.
type DayTargetTable map[string]map[string]Band

// TargetSource is the capability interface over the evolving target
// schemas: a database table, a spreadsheet-era file, or the original fixed
// formula. The period engine does not change when the backing source does.
type TargetSource interface {
	// DayTargets returns bands for the given profiles covering the civil
	// dates [start, end] inclusive.
	DayTargets(ctx context.Context, profileIDs []string, start, end time.Time) (DayTargetTable, error)
	// ReferenceCapacity reports the calibration capacity of a profile when
	// the source's values must be scaled by plant capacity. Table-driven
	// sources return ok=false: their values are already plant-specific.
	ReferenceCapacity(profileID string) (kwp float64, ok bool)
}

// FormulaProfile is the early fixed-model calibration: reference capacity
// times a sun-hours band per day.
type FormulaProfile struct {
	ReferenceCapacityKWp float64
	MinSunHours          float64
	MaxSunHours          float64
}

// DefaultFormulaProfiles returns the calibration the fleet ran on before
// the per-day tables existed.
func DefaultFormulaProfiles() map[string]FormulaProfile {
	return map[string]FormulaProfile{
		"Xique-xique_132": {ReferenceCapacityKWp: 132, MinSunHours: 4.5, MaxSunHours: 5.5},
		"Canabrava_150":   {ReferenceCapacityKWp: 150, MinSunHours: 4.5, MaxSunHours: 5.5},
		"Riachão":         {ReferenceCapacityKWp: 118, MinSunHours: 4.5, MaxSunHours: 5.5},
	}
}

// FormulaSource synthesizes a per-day band from a sun-hours model. Values
// are at reference capacity; the engine scales them per plant.
type FormulaSource struct {
	profiles map[string]FormulaProfile
}

// NewFormulaSource constructs a formula source.
func NewFormulaSource(profiles map[string]FormulaProfile) *FormulaSource {
	if len(profiles) == 0 {
		profiles = DefaultFormulaProfiles()
	}
	return &FormulaSource{profiles: profiles}
}

// DayTargets synthesizes one band per calendar day in [start, end].
func (s *FormulaSource) DayTargets(_ context.Context, profileIDs []string, start, end time.Time) (DayTargetTable, error) {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return nil, ErrInvalidRange
	}

	table := make(DayTargetTable, len(profileIDs))
	for _, profileID := range profileIDs {
		profile, ok := s.profiles[profileID]
		if !ok {
			continue
		}
		band := Band{
			MinKWh: profile.ReferenceCapacityKWp * profile.MinSunHours,
			MaxKWh: profile.ReferenceCapacityKWp * profile.MaxSunHours,
		}
		days := make(map[string]Band)
		for cursor := start; !cursor.After(end); cursor = cursor.AddDate(0, 0, 1) {
			days[cursor.Format(DayKeyLayout)] = band
		}
		table[profileID] = days
	}
	return table, nil
}

// ReferenceCapacity reports the calibration capacity for scaling.
func (s *FormulaSource) ReferenceCapacity(profileID string) (float64, bool) {
	profile, ok := s.profiles[profileID]
	if !ok || profile.ReferenceCapacityKWp <= 0 {
		return 0, false
	}
	return profile.ReferenceCapacityKWp, true
}
