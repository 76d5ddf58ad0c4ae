package series

import (
	"sort"
	"time"

	readings "solarfleet/internal/readings/domain"
)

// PowerCurve is the fine-grained pivot of instantaneous power: exact
// timestamps on the rows, grouping keys on the columns, kW summed across
// devices sharing a key at the same instant. Used for the daily view only.
type PowerCurve struct {
	Times  []time.Time
	Keys   []string
	Values [][]float64
}

// BuildPowerCurve pivots power readings by local timestamp and grouping key.
func BuildPowerCurve(input []readings.IntervalReading, loc *time.Location, groupBy GroupBy) (*PowerCurve, error) {
	if loc == nil {
		return nil, ErrNilLocation
	}
	if !groupBy.IsValid() {
		return nil, ErrInvalidGroupBy
	}

	sums := make(map[time.Time]map[string]float64)
	keySet := make(map[string]struct{})
	for _, reading := range input {
		ts := reading.TS.In(loc)
		key := groupBy.Key(reading)
		keySet[key] = struct{}{}
		at := sums[ts]
		if at == nil {
			at = make(map[string]float64)
			sums[ts] = at
		}
		at[key] += reading.PowerKW
	}

	times := make([]time.Time, 0, len(sums))
	for ts := range sums {
		times = append(times, ts)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	keys := make([]string, 0, len(keySet))
	for key := range keySet {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	curve := &PowerCurve{Times: times, Keys: keys, Values: make([][]float64, len(times))}
	for i, ts := range times {
		row := make([]float64, len(keys))
		for j, key := range keys {
			row[j] = sums[ts][key]
		}
		curve.Values[i] = row
	}
	return curve, nil
}
