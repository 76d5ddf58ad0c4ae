package application

import (
	"context"
	"errors"
	"sort"
	"time"

	masterdata "solarfleet/internal/masterdata/domain"
	readings "solarfleet/internal/readings/domain"
	"solarfleet/internal/series"
	status "solarfleet/internal/status/domain"
	target "solarfleet/internal/target/domain"
)

// Clock provides time for liveness classification.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

// Now returns current time.
func (SystemClock) Now() time.Time { return time.Now() }

// PerformanceRequest carries one query's parameters. Everything the old
// dashboard kept in UI/session state is an explicit field here.
type PerformanceRequest struct {
	PlantIDs    []int64
	InverterIDs []int64 // empty selects every inverter of the chosen plants
	Start       time.Time
	End         time.Time // inclusive civil end date
	Granularity series.Granularity
	GroupBy     series.GroupBy
	WithTarget  bool
}

// KPIs are the period-level headline figures.
type KPIs struct {
	TotalEnergyKWh float64 `json:"total_energy_kwh"`
	TargetMinKWh   float64 `json:"target_min_kwh"`
	TargetMaxKWh   float64 `json:"target_max_kwh"`
	TargetMidKWh   float64 `json:"target_mid_kwh"`
	PerformancePct float64 `json:"performance_pct"`
}

// PerformanceResult is the bucket-aligned energy table plus the target band
// derived from the same bucket index.
type PerformanceResult struct {
	Table             *series.EnergyTable
	Band              *target.BucketBand // nil when the request skips targets
	Truncated         bool
	DaysWithoutTarget int
	KPIs              KPIs
}

// DayComparison is one day's detailed curve for the side-by-side view:
// summed power and cumulative energy over decimal hour of day.
type DayComparison struct {
	Day            time.Time
	Hours          []float64
	PowerKW        []float64
	CumulativeKWh  []float64
	TotalEnergyKWh float64
	PeakPowerKW    float64
}

// PerformanceService orchestrates the reading gateway, the series engine
// and the target engine for one user query. It holds no mutable state, so
// concurrent requests are independent.
type PerformanceService struct {
	plants    masterdata.PlantRepository
	inverters masterdata.InverterRepository
	readings  readings.ReadingQuery
	targets   *target.PeriodTargetService
	loc       *time.Location
	clock     Clock
}

// NewPerformanceService constructs the service.
func NewPerformanceService(
	plants masterdata.PlantRepository,
	inverters masterdata.InverterRepository,
	query readings.ReadingQuery,
	targets *target.PeriodTargetService,
	loc *time.Location,
	clock Clock,
) (*PerformanceService, error) {
	if plants == nil || inverters == nil || query == nil {
		return nil, errors.New("performance service: nil repository")
	}
	if targets == nil {
		return nil, target.ErrNilSource
	}
	if loc == nil {
		return nil, series.ErrNilLocation
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &PerformanceService{
		plants:    plants,
		inverters: inverters,
		readings:  query,
		targets:   targets,
		loc:       loc,
		clock:     clock,
	}, nil
}

// Performance runs the consolidated energy query and, when requested, the
// aligned target band. An empty selection yields an empty table, not an
// error.
func (s *PerformanceService) Performance(ctx context.Context, req PerformanceRequest) (*PerformanceResult, error) {
	index, err := series.NewBucketIndex(req.Start, req.End, req.Granularity, s.loc)
	if err != nil {
		return nil, err
	}

	plants, inverterIDs, err := s.selection(ctx, req.PlantIDs, req.InverterIDs)
	if err != nil {
		return nil, err
	}

	result := &PerformanceResult{}
	if len(inverterIDs) > 0 {
		start, end := s.fetchWindow(req.Start, req.End)
		page, err := s.readings.ListReadings(ctx, inverterIDs, start, end)
		if err != nil {
			return nil, err
		}
		result.Truncated = page.Truncated
		result.Table, err = series.Consolidate(page.Readings, index, req.GroupBy)
		if err != nil {
			return nil, err
		}
	} else {
		// Rows stay allocated so the empty selection still encodes as
		// zero-filled rows, not nulls.
		empty := &series.EnergyTable{
			Labels: index.Labels(),
			Keys:   []string{},
			Values: make([][]float64, index.Len()),
		}
		for i := range empty.Values {
			empty.Values[i] = []float64{}
		}
		result.Table = empty
	}
	result.KPIs.TotalEnergyKWh = result.Table.TotalKWh()

	if req.WithTarget {
		daily, err := s.targets.PeriodTarget(ctx, plants, req.Start, req.End, s.loc)
		if err != nil {
			return nil, err
		}
		result.Band, err = target.ResampleBand(daily, index)
		if err != nil {
			return nil, err
		}
		result.DaysWithoutTarget = daily.DaysWithoutTarget
		result.KPIs.TargetMinKWh = daily.TotalMinKWh()
		result.KPIs.TargetMaxKWh = daily.TotalMaxKWh()
		result.KPIs.TargetMidKWh = (result.KPIs.TargetMinKWh + result.KPIs.TargetMaxKWh) / 2
		if result.KPIs.TargetMidKWh > 0 {
			result.KPIs.PerformancePct = result.KPIs.TotalEnergyKWh / result.KPIs.TargetMidKWh * 100
		}
	}
	return result, nil
}

// PowerCurve builds the exact-timestamp power pivot for the daily view.
func (s *PerformanceService) PowerCurve(ctx context.Context, req PerformanceRequest) (*series.PowerCurve, bool, error) {
	_, inverterIDs, err := s.selection(ctx, req.PlantIDs, req.InverterIDs)
	if err != nil {
		return nil, false, err
	}
	if len(inverterIDs) == 0 {
		return &series.PowerCurve{}, false, nil
	}

	start, end := s.fetchWindow(req.Start, req.End)
	page, err := s.readings.ListReadings(ctx, inverterIDs, start, end)
	if err != nil {
		return nil, false, err
	}
	curve, err := series.BuildPowerCurve(page.Readings, s.loc, req.GroupBy)
	if err != nil {
		return nil, false, err
	}
	return curve, page.Truncated, nil
}

// CompareDays builds one detail curve per requested day: power and
// cumulative energy over decimal hour of day, with per-day totals and peak.
// Days with no data are omitted.
func (s *PerformanceService) CompareDays(ctx context.Context, plantIDs, inverterIDs []int64, days []time.Time) ([]DayComparison, error) {
	_, selected, err := s.selection(ctx, plantIDs, inverterIDs)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return nil, nil
	}

	var result []DayComparison
	for _, day := range days {
		start, end := s.fetchWindow(day, day)
		page, err := s.readings.ListReadings(ctx, selected, start, end)
		if err != nil {
			return nil, err
		}
		if len(page.Readings) == 0 {
			continue
		}
		result = append(result, s.compareDay(day, page.Readings))
	}
	return result, nil
}

func (s *PerformanceService) compareDay(day time.Time, input []readings.IntervalReading) DayComparison {
	type moment struct {
		powerKW  float64
		energyWh float64
	}
	byTime := make(map[time.Time]*moment)
	for _, reading := range input {
		ts := reading.TS.In(s.loc)
		m := byTime[ts]
		if m == nil {
			m = &moment{}
			byTime[ts] = m
		}
		m.powerKW += reading.PowerKW
		m.energyWh += reading.EnergyWh
	}

	times := make([]time.Time, 0, len(byTime))
	for ts := range byTime {
		times = append(times, ts)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	comparison := DayComparison{Day: civilDay(day, s.loc)}
	var cumulativeWh float64
	for _, ts := range times {
		m := byTime[ts]
		cumulativeWh += m.energyWh
		comparison.Hours = append(comparison.Hours, float64(ts.Hour())+float64(ts.Minute())/60)
		comparison.PowerKW = append(comparison.PowerKW, m.powerKW)
		comparison.CumulativeKWh = append(comparison.CumulativeKWh, cumulativeWh/1000.0)
		if m.powerKW > comparison.PeakPowerKW {
			comparison.PeakPowerKW = m.powerKW
		}
	}
	comparison.TotalEnergyKWh = cumulativeWh / 1000.0
	return comparison
}

// Status returns the fleet status list, newest signal first. A nil plant
// selection covers the whole fleet.
func (s *PerformanceService) Status(ctx context.Context, plantIDs []int64) ([]status.DeviceStatus, error) {
	var (
		plants []masterdata.Plant
		err    error
	)
	if len(plantIDs) == 0 {
		plants, err = s.plants.ListPlants(ctx)
	} else {
		plants, err = s.plants.ListPlantsByIDs(ctx, plantIDs)
	}
	if err != nil {
		return nil, err
	}
	if len(plants) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(plants))
	for _, plant := range plants {
		ids = append(ids, plant.ID)
	}
	inverters, err := s.inverters.ListByPlants(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(inverters) == 0 {
		return nil, nil
	}

	inverterIDs := make([]int64, 0, len(inverters))
	for _, inverter := range inverters {
		inverterIDs = append(inverterIDs, inverter.ID)
	}
	lastSeen, err := s.readings.ListLastSeen(ctx, inverterIDs)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().In(s.loc)
	result := make([]status.DeviceStatus, 0, len(lastSeen))
	for _, seen := range lastSeen {
		result = append(result, status.DeviceStatus{
			InverterName: seen.InverterName,
			PlantName:    seen.PlantName,
			LastSeen:     seen.At.In(s.loc),
			Status:       status.Classify(now, seen.At),
		})
	}
	return result, nil
}

// selection resolves the plant records and the final inverter id list for a
// request. An explicit inverter selection is restricted to the chosen
// plants' inverters.
func (s *PerformanceService) selection(ctx context.Context, plantIDs, inverterIDs []int64) ([]masterdata.Plant, []int64, error) {
	if len(plantIDs) == 0 {
		return nil, nil, errors.New("performance service: no plants selected")
	}
	plants, err := s.plants.ListPlantsByIDs(ctx, plantIDs)
	if err != nil {
		return nil, nil, err
	}
	if len(plants) == 0 {
		return nil, nil, nil
	}

	ids := make([]int64, 0, len(plants))
	for _, plant := range plants {
		ids = append(ids, plant.ID)
	}
	inverters, err := s.inverters.ListByPlants(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	if len(inverterIDs) == 0 {
		selected := make([]int64, 0, len(inverters))
		for _, inverter := range inverters {
			selected = append(selected, inverter.ID)
		}
		return plants, selected, nil
	}

	allowed := make(map[int64]struct{}, len(inverters))
	for _, inverter := range inverters {
		allowed[inverter.ID] = struct{}{}
	}
	var selected []int64
	for _, id := range inverterIDs {
		if _, ok := allowed[id]; ok {
			selected = append(selected, id)
		}
	}
	return plants, selected, nil
}

// fetchWindow widens the civil date range [start, end] into the UTC instant
// range [local start-of-day, local start-of-day-after-end) so the full end
// day is included.
func (s *PerformanceService) fetchWindow(start, end time.Time) (time.Time, time.Time) {
	first := civilDay(start, s.loc)
	last := civilDay(end, s.loc).AddDate(0, 0, 1)
	return first.UTC(), last.UTC()
}

func civilDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
