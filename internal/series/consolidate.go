package series

import (
	"sort"

	readings "solarfleet/internal/readings/domain"
)

// GroupBy selects the column key of a consolidated table.
type GroupBy string

const (
	GroupByPlant    GroupBy = "PLANT"
	GroupByInverter GroupBy = "INVERTER"
)

// IsValid checks if the grouping mode is supported.
func (g GroupBy) IsValid() bool {
	return g == GroupByPlant || g == GroupByInverter
}

// Key returns the grouping label for a reading. Inverter keys are prefixed
// with the plant name so same-named inverters in different plants stay
// distinct.
func (g GroupBy) Key(reading readings.IntervalReading) string {
	if g == GroupByInverter {
		return reading.PlantName + " - " + reading.InverterName
	}
	return reading.PlantName
}

// EnergyTable is a consolidated energy series: one row per calendar bucket,
// one column per grouping key, values in kWh. Missing combinations are zero,
// not absent.
type EnergyTable struct {
	Labels []string
	Keys   []string
	Values [][]float64
}

// TotalKWh sums the whole table.
func (t *EnergyTable) TotalKWh() float64 {
	if t == nil {
		return 0
	}
	var total float64
	for _, row := range t.Values {
		for _, v := range row {
			total += v
		}
	}
	return total
}

// Consolidate buckets interval readings onto the index and sums interval
// energy per (bucket, group). Raw values are in Wh; the division to kWh
// happens exactly once here, at table materialization, so nested resamples
// never compound rounding.
func Consolidate(input []readings.IntervalReading, index *BucketIndex, groupBy GroupBy) (*EnergyTable, error) {
	if index == nil {
		return nil, ErrNilIndex
	}
	if !groupBy.IsValid() {
		return nil, ErrInvalidGroupBy
	}

	sums := make(map[int]map[string]float64)
	keySet := make(map[string]struct{})
	for _, reading := range input {
		pos, ok := index.BucketOf(reading.TS)
		if !ok {
			continue
		}
		key := groupBy.Key(reading)
		keySet[key] = struct{}{}
		bucket := sums[pos]
		if bucket == nil {
			bucket = make(map[string]float64)
			sums[pos] = bucket
		}
		bucket[key] += reading.EnergyWh
	}

	keys := make([]string, 0, len(keySet))
	for key := range keySet {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	table := &EnergyTable{
		Labels: index.Labels(),
		Keys:   keys,
		Values: make([][]float64, index.Len()),
	}
	for pos := range table.Values {
		row := make([]float64, len(keys))
		for i, key := range keys {
			row[i] = sums[pos][key] / 1000.0
		}
		table.Values[pos] = row
	}
	return table, nil
}
