package interfaces

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"solarfleet/internal/report/application"
	"solarfleet/internal/series"
	target "solarfleet/internal/target/domain"
)

func sampleResult() *application.PerformanceResult {
	return &application.PerformanceResult{
		Table: &series.EnergyTable{
			Labels: []string{"01/05/2024", "02/05/2024"},
			Keys:   []string{"Usina 10"},
			Values: [][]float64{{500}, {600}},
		},
		Band: &target.BucketBand{
			Labels: []string{"01/05/2024", "02/05/2024"},
			Min:    []float64{400, 400},
			Max:    []float64{600, 600},
		},
		KPIs: application.KPIs{
			TotalEnergyKWh: 1100,
			TargetMinKWh:   800,
			TargetMaxKWh:   1200,
			TargetMidKWh:   1000,
			PerformancePct: 110,
		},
	}
}

func sampleMeta() ExportMeta {
	return ExportMeta{
		Start:       time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
		Granularity: "daily",
		GroupBy:     "plant",
	}
}

func TestBuildPerformancePDF(t *testing.T) {
	data, err := BuildPerformancePDF(sampleResult(), sampleMeta())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestBuildPerformancePDFNilResult(t *testing.T) {
	_, err := BuildPerformancePDF(nil, sampleMeta())
	assert.Error(t, err)
}

func TestBuildPerformanceXLSX(t *testing.T) {
	data, err := BuildPerformanceXLSX(sampleResult(), sampleMeta())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	total, err := f.GetCellValue("summary", "B7")
	require.NoError(t, err)
	assert.Equal(t, "1100", total)

	label, err := f.GetCellValue("energy", "A2")
	require.NoError(t, err)
	assert.Equal(t, "01/05/2024", label)

	value, err := f.GetCellValue("energy", "B3")
	require.NoError(t, err)
	assert.Equal(t, "600", value)
}

func TestBuildPerformanceXLSXWithoutBand(t *testing.T) {
	result := sampleResult()
	result.Band = nil

	data, err := BuildPerformanceXLSX(result, sampleMeta())
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
