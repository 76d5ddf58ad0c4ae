// Package file loads the spreadsheet-era target tables: one yaml document
// per fleet listing per-profile daily bands. Kept for plants whose targets
// have not been migrated into the database table.
package file

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	target "solarfleet/internal/target/domain"
)

type tableFile struct {
	Profiles map[string][]struct {
		Day    string  `yaml:"day"`
		MinKWh float64 `yaml:"min_kwh"`
		MaxKWh float64 `yaml:"max_kwh"`
	} `yaml:"profiles"`
}

// TableSource serves day targets from an in-memory table loaded at startup.
// Values are plant-specific, like the database table.
type TableSource struct {
	table target.DayTargetTable
}

// Load reads and parses a yaml target table.
func Load(path string) (*TableSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("target file: %w", err)
	}
	return Parse(data)
}

// Parse builds a source from raw yaml.
func Parse(data []byte) (*TableSource, error) {
	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("target file: %w", err)
	}

	table := make(target.DayTargetTable, len(file.Profiles))
	for profileID, entries := range file.Profiles {
		days := make(map[string]target.Band, len(entries))
		for _, entry := range entries {
			day, err := time.Parse(target.DayKeyLayout, entry.Day)
			if err != nil {
				return nil, fmt.Errorf("target file: profile %s: %w", profileID, err)
			}
			if entry.MinKWh < 0 || entry.MaxKWh < 0 {
				return nil, target.ErrNegativeBand
			}
			days[day.Format(target.DayKeyLayout)] = target.Band{MinKWh: entry.MinKWh, MaxKWh: entry.MaxKWh}
		}
		table[profileID] = days
	}
	return &TableSource{table: table}, nil
}

// DayTargets returns bands for the profiles covering [start, end] inclusive.
func (s *TableSource) DayTargets(_ context.Context, profileIDs []string, start, end time.Time) (target.DayTargetTable, error) {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return nil, target.ErrInvalidRange
	}

	out := make(target.DayTargetTable, len(profileIDs))
	for _, profileID := range profileIDs {
		days, ok := s.table[profileID]
		if !ok {
			continue
		}
		selected := make(map[string]target.Band)
		for cursor := start; !cursor.After(end); cursor = cursor.AddDate(0, 0, 1) {
			dayKey := cursor.Format(target.DayKeyLayout)
			if band, ok := days[dayKey]; ok {
				selected[dayKey] = band
			}
		}
		out[profileID] = selected
	}
	return out, nil
}

// ReferenceCapacity reports that file values are pre-scaled.
func (s *TableSource) ReferenceCapacity(string) (float64, bool) { return 0, false }
