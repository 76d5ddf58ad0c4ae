package series

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	readings "solarfleet/internal/readings/domain"
)

func reading(ts time.Time, plant, inverter string, energyWh, powerKW float64) readings.IntervalReading {
	return readings.IntervalReading{
		TS:           ts,
		PowerKW:      powerKW,
		EnergyWh:     energyWh,
		InverterName: inverter,
		PlantName:    plant,
	}
}

func TestConsolidateGroupsByPlant(t *testing.T) {
	loc := saoPaulo(t)
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, loc)
	end := time.Date(2024, 5, 2, 0, 0, 0, 0, loc)
	index, err := NewBucketIndex(start, end, GranularityDay, loc)
	require.NoError(t, err)

	input := []readings.IntervalReading{
		reading(time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC), "Usina 10", "INV-1", 500, 30),
		reading(time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC), "Usina 10", "INV-2", 250, 15),
		reading(time.Date(2024, 5, 2, 13, 0, 0, 0, time.UTC), "Usina 10", "INV-1", 1000, 60),
		reading(time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC), "Canabrava", "INV-1", 2000, 120),
	}

	table, err := Consolidate(input, index, GroupByPlant)
	require.NoError(t, err)

	assert.Equal(t, []string{"Canabrava", "Usina 10"}, table.Keys)
	assert.Equal(t, []string{"01/05/2024", "02/05/2024"}, table.Labels)
	assert.InDelta(t, 2.0, table.Values[0][0], 1e-9)
	assert.InDelta(t, 0.75, table.Values[0][1], 1e-9)
	assert.InDelta(t, 0.0, table.Values[1][0], 1e-9)
	assert.InDelta(t, 1.0, table.Values[1][1], 1e-9)
	assert.InDelta(t, 3.75, table.TotalKWh(), 1e-9)
}

func TestConsolidateGroupsByInverterPrefixesPlant(t *testing.T) {
	loc := saoPaulo(t)
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, loc)
	index, err := NewBucketIndex(day, day, GranularityDay, loc)
	require.NoError(t, err)

	input := []readings.IntervalReading{
		reading(time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC), "Usina 10", "INV-1", 500, 30),
		reading(time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC), "Canabrava", "INV-1", 2000, 120),
	}

	table, err := Consolidate(input, index, GroupByInverter)
	require.NoError(t, err)

	assert.Equal(t, []string{"Canabrava - INV-1", "Usina 10 - INV-1"}, table.Keys)
}

func TestConsolidateDropsReadingsOutsideIndex(t *testing.T) {
	loc := saoPaulo(t)
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, loc)
	index, err := NewBucketIndex(day, day, GranularityDay, loc)
	require.NoError(t, err)

	input := []readings.IntervalReading{
		reading(time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC), "Usina 10", "INV-1", 500, 30),
		reading(time.Date(2024, 5, 7, 13, 0, 0, 0, time.UTC), "Usina 10", "INV-1", 9000, 30),
	}

	table, err := Consolidate(input, index, GroupByPlant)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, table.TotalKWh(), 1e-9)
}

func TestConsolidateMonthlyEqualsDailySum(t *testing.T) {
	loc := saoPaulo(t)
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, loc)
	end := time.Date(2024, 2, 29, 0, 0, 0, 0, loc)

	var input []readings.IntervalReading
	for day := 1; day <= 29; day++ {
		ts := time.Date(2024, 2, day, 15, 0, 0, 0, time.UTC)
		input = append(input, reading(ts, "Usina 10", "INV-1", 1500, 90))
	}

	daily, err := NewBucketIndex(start, end, GranularityDay, loc)
	require.NoError(t, err)
	monthly, err := NewBucketIndex(start, end, GranularityMonth, loc)
	require.NoError(t, err)

	dayTable, err := Consolidate(input, daily, GroupByPlant)
	require.NoError(t, err)
	monthTable, err := Consolidate(input, monthly, GroupByPlant)
	require.NoError(t, err)

	assert.Equal(t, 29, len(dayTable.Values))
	assert.Equal(t, 1, len(monthTable.Values))
	assert.InDelta(t, dayTable.TotalKWh(), monthTable.TotalKWh(), 1e-9)
	assert.InDelta(t, 29*1.5, monthTable.TotalKWh(), 1e-9)
}

func TestConsolidateRejectsBadGroupBy(t *testing.T) {
	loc := saoPaulo(t)
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, loc)
	index, err := NewBucketIndex(day, day, GranularityDay, loc)
	require.NoError(t, err)

	_, err = Consolidate(nil, index, GroupBy("REGION"))
	assert.ErrorIs(t, err, ErrInvalidGroupBy)
}

func TestConsolidateEmptyInputZeroFills(t *testing.T) {
	loc := saoPaulo(t)
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, loc)
	end := time.Date(2024, 5, 3, 0, 0, 0, 0, loc)
	index, err := NewBucketIndex(start, end, GranularityDay, loc)
	require.NoError(t, err)

	table, err := Consolidate(nil, index, GroupByPlant)
	require.NoError(t, err)
	assert.Len(t, table.Values, 3)
	assert.Empty(t, table.Keys)
	assert.Zero(t, table.TotalKWh())
}
