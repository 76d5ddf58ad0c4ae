package target

import (
	"context"
	"time"

	masterdata "solarfleet/internal/masterdata/domain"
	"solarfleet/internal/series"
)

// DailyBand is the period target at daily resolution: one (min, max) pair
// per calendar day in the requested range, summed across the selected
// plants. Days absent from the target table contribute a zero band and are
// counted in DaysWithoutTarget so the caller can qualify the KPI.
type DailyBand struct {
	Days              []time.Time
	Min               []float64
	Max               []float64
	DaysWithoutTarget int
}

// TotalMinKWh sums the minimum band over the period.
func (b *DailyBand) TotalMinKWh() float64 { return sum(b.Min) }

// TotalMaxKWh sums the maximum band over the period.
func (b *DailyBand) TotalMaxKWh() float64 { return sum(b.Max) }

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// BucketBand is a daily band resampled onto a bucket index, label-aligned
// with the consolidated energy table built from the same index.
type BucketBand struct {
	Labels []string
	Min    []float64
	Max    []float64
}

// PeriodTargetService computes period-level expected-generation bands.
type PeriodTargetService struct {
	resolver *ProfileResolver
	source   TargetSource
}

// NewPeriodTargetService constructs the service.
func NewPeriodTargetService(resolver *ProfileResolver, source TargetSource) (*PeriodTargetService, error) {
	if resolver == nil {
		return nil, ErrNilResolver
	}
	if source == nil {
		return nil, ErrNilSource
	}
	return &PeriodTargetService{resolver: resolver, source: source}, nil
}

// PeriodTarget produces the daily-resolution band for the plants over the
// civil dates [start, end] inclusive. Always one pair per calendar day;
// coarser rollups come from ResampleBand, never from a day-count factor.
func (s *PeriodTargetService) PeriodTarget(ctx context.Context, plants []masterdata.Plant, start, end time.Time, loc *time.Location) (*DailyBand, error) {
	if loc == nil {
		return nil, ErrNilLocation
	}
	if start.IsZero() || end.IsZero() {
		return nil, ErrInvalidRange
	}

	first := civilDay(start, loc)
	last := civilDay(end, loc)
	if last.Before(first) {
		return nil, ErrInvalidRange
	}

	profileByPlant := make(map[int64]string, len(plants))
	profileSet := make(map[string]struct{})
	for _, plant := range plants {
		profileID := s.resolver.Resolve(plant)
		profileByPlant[plant.ID] = profileID
		profileSet[profileID] = struct{}{}
	}
	profileIDs := make([]string, 0, len(profileSet))
	for profileID := range profileSet {
		profileIDs = append(profileIDs, profileID)
	}

	table, err := s.source.DayTargets(ctx, profileIDs, first, last)
	if err != nil {
		return nil, err
	}

	band := &DailyBand{}
	for cursor := first; !cursor.After(last); cursor = cursor.AddDate(0, 0, 1) {
		dayKey := cursor.Format(DayKeyLayout)
		var minSum, maxSum float64
		missing := false
		for _, plant := range plants {
			profileID := profileByPlant[plant.ID]
			entry, ok := table[profileID][dayKey]
			if !ok {
				missing = true
				continue
			}
			if entry.MinKWh < 0 || entry.MaxKWh < 0 {
				return nil, ErrNegativeBand
			}
			scale := 1.0
			if refCap, scaled := s.source.ReferenceCapacity(profileID); scaled && refCap > 0 {
				scale = plant.CapacityKWp / refCap
			}
			minSum += entry.MinKWh * scale
			maxSum += entry.MaxKWh * scale
		}
		if missing {
			band.DaysWithoutTarget++
		}
		band.Days = append(band.Days, cursor)
		band.Min = append(band.Min, minSum)
		band.Max = append(band.Max, maxSum)
	}
	return band, nil
}

// ResampleBand sums a daily band onto the shared bucket index. Monthly and
// yearly figures therefore use the actual number of days in each bucket.
func ResampleBand(band *DailyBand, index *series.BucketIndex) (*BucketBand, error) {
	if band == nil {
		return nil, ErrInvalidRange
	}
	if index == nil {
		return nil, series.ErrNilIndex
	}

	out := &BucketBand{
		Labels: index.Labels(),
		Min:    make([]float64, index.Len()),
		Max:    make([]float64, index.Len()),
	}
	for i, day := range band.Days {
		pos, ok := index.BucketOf(day)
		if !ok {
			continue
		}
		out.Min[pos] += band.Min[i]
		out.Max[pos] += band.Max[i]
	}
	return out, nil
}

func civilDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
