package target

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	masterdata "solarfleet/internal/masterdata/domain"
	"solarfleet/internal/series"
)

type stubSource struct {
	table  DayTargetTable
	refCap map[string]float64
	err    error
}

func (s *stubSource) DayTargets(_ context.Context, _ []string, _, _ time.Time) (DayTargetTable, error) {
	return s.table, s.err
}

func (s *stubSource) ReferenceCapacity(profileID string) (float64, bool) {
	kwp, ok := s.refCap[profileID]
	return kwp, ok
}

func periodService(t *testing.T, source TargetSource) *PeriodTargetService {
	t.Helper()
	resolver, err := NewProfileResolver(DefaultResolverConfig())
	require.NoError(t, err)
	service, err := NewPeriodTargetService(resolver, source)
	require.NoError(t, err)
	return service
}

func TestPeriodTargetOnePairPerDay(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	source := &stubSource{table: DayTargetTable{
		"Xique-xique_132": {
			"2024-05-01": {MinKWh: 400, MaxKWh: 600},
			"2024-05-02": {MinKWh: 400, MaxKWh: 600},
			"2024-05-03": {MinKWh: 350, MaxKWh: 550},
		},
	}}
	service := periodService(t, source)

	plants := []masterdata.Plant{{ID: 1, Name: "Usina 10", CapacityKWp: 132}}
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, loc)
	end := time.Date(2024, 5, 3, 0, 0, 0, 0, loc)

	band, err := service.PeriodTarget(context.Background(), plants, start, end, loc)
	require.NoError(t, err)

	require.Len(t, band.Days, 3)
	assert.Equal(t, []float64{400, 400, 350}, band.Min)
	assert.Equal(t, []float64{600, 600, 550}, band.Max)
	assert.Zero(t, band.DaysWithoutTarget)
	assert.InDelta(t, 1150, band.TotalMinKWh(), 1e-9)
	assert.InDelta(t, 1750, band.TotalMaxKWh(), 1e-9)
}

func TestPeriodTargetMissingDayIsZeroAndCounted(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	source := &stubSource{table: DayTargetTable{
		"Xique-xique_132": {
			"2024-05-01": {MinKWh: 400, MaxKWh: 600},
			"2024-05-02": {MinKWh: 400, MaxKWh: 600},
		},
	}}
	service := periodService(t, source)

	plants := []masterdata.Plant{{ID: 1, Name: "Usina 10", CapacityKWp: 132}}
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, loc)
	end := time.Date(2024, 5, 3, 0, 0, 0, 0, loc)

	band, err := service.PeriodTarget(context.Background(), plants, start, end, loc)
	require.NoError(t, err)

	require.Len(t, band.Days, 3)
	assert.Equal(t, []float64{400, 400, 0}, band.Min)
	assert.Equal(t, []float64{600, 600, 0}, band.Max)
	assert.Equal(t, 1, band.DaysWithoutTarget)
}

func TestPeriodTargetSumsAcrossPlants(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	source := &stubSource{table: DayTargetTable{
		"Xique-xique_132": {"2024-05-01": {MinKWh: 400, MaxKWh: 600}},
		"Canabrava_150":   {"2024-05-01": {MinKWh: 500, MaxKWh: 700}},
	}}
	service := periodService(t, source)

	plants := []masterdata.Plant{
		{ID: 1, Name: "Usina 10", CapacityKWp: 132},
		{ID: 2, Name: "Canabrava", CapacityKWp: 150},
	}
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, loc)

	band, err := service.PeriodTarget(context.Background(), plants, day, day, loc)
	require.NoError(t, err)

	assert.Equal(t, []float64{900}, band.Min)
	assert.Equal(t, []float64{1300}, band.Max)
}

func TestPeriodTargetScalesByReferenceCapacity(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	source := &stubSource{
		table: DayTargetTable{
			"Xique-xique_132": {"2024-05-01": {MinKWh: 594, MaxKWh: 726}},
		},
		refCap: map[string]float64{"Xique-xique_132": 132},
	}
	service := periodService(t, source)

	// Half the reference capacity means half the band.
	plants := []masterdata.Plant{{ID: 1, Name: "Usina 10", CapacityKWp: 66}}
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, loc)

	band, err := service.PeriodTarget(context.Background(), plants, day, day, loc)
	require.NoError(t, err)

	assert.InDelta(t, 297, band.Min[0], 1e-9)
	assert.InDelta(t, 363, band.Max[0], 1e-9)
}

func TestPeriodTargetRejectsNegativeBand(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	source := &stubSource{table: DayTargetTable{
		"Xique-xique_132": {"2024-05-01": {MinKWh: -1, MaxKWh: 600}},
	}}
	service := periodService(t, source)

	plants := []masterdata.Plant{{ID: 1, Name: "Usina 10", CapacityKWp: 132}}
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, loc)

	_, err = service.PeriodTarget(context.Background(), plants, day, day, loc)
	assert.ErrorIs(t, err, ErrNegativeBand)
}

func TestPeriodTargetRejectsReversedRange(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	service := periodService(t, &stubSource{})
	start := time.Date(2024, 5, 3, 0, 0, 0, 0, loc)
	end := time.Date(2024, 5, 1, 0, 0, 0, 0, loc)

	_, err = service.PeriodTarget(context.Background(), nil, start, end, loc)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestResampleBandMonthlyUsesActualDayCounts(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	source := NewFormulaSource(nil)
	service := periodService(t, source)

	// February 2024 is a leap month: 29 days, not a flat 30-day factor.
	plants := []masterdata.Plant{{ID: 1, Name: "Usina 10", CapacityKWp: 132}}
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, loc)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, loc)

	daily, err := service.PeriodTarget(context.Background(), plants, start, end, loc)
	require.NoError(t, err)

	index, err := series.NewBucketIndex(start, end, series.GranularityMonth, loc)
	require.NoError(t, err)

	resampled, err := ResampleBand(daily, index)
	require.NoError(t, err)

	require.Equal(t, []string{"02/2024", "03/2024"}, resampled.Labels)
	dayMin := 132 * 4.5
	dayMax := 132 * 5.5
	assert.InDelta(t, 29*dayMin, resampled.Min[0], 1e-6)
	assert.InDelta(t, 31*dayMin, resampled.Min[1], 1e-6)
	assert.InDelta(t, 29*dayMax, resampled.Max[0], 1e-6)
	assert.InDelta(t, 31*dayMax, resampled.Max[1], 1e-6)
}

func TestResampleBandTotalsMatchDaily(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	source := NewFormulaSource(nil)
	service := periodService(t, source)

	plants := []masterdata.Plant{{ID: 1, Name: "Usina 10", CapacityKWp: 132}}
	start := time.Date(2023, 11, 15, 0, 0, 0, 0, loc)
	end := time.Date(2024, 2, 10, 0, 0, 0, 0, loc)

	daily, err := service.PeriodTarget(context.Background(), plants, start, end, loc)
	require.NoError(t, err)

	index, err := series.NewBucketIndex(start, end, series.GranularityYear, loc)
	require.NoError(t, err)
	resampled, err := ResampleBand(daily, index)
	require.NoError(t, err)

	var minSum, maxSum float64
	for i := range resampled.Min {
		minSum += resampled.Min[i]
		maxSum += resampled.Max[i]
	}
	assert.InDelta(t, daily.TotalMinKWh(), minSum, 1e-6)
	assert.InDelta(t, daily.TotalMaxKWh(), maxSum, 1e-6)
}
