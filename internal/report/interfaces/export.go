package interfaces

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"solarfleet/internal/report/application"
)

// ExportMeta describes the query a report was built from.
type ExportMeta struct {
	Start       time.Time
	End         time.Time
	Granularity string
	GroupBy     string
}

// BuildPerformancePDF renders a performance report as PDF: headline KPIs
// followed by the bucketed energy and target figures.
func BuildPerformancePDF(result *application.PerformanceResult, meta ExportMeta) ([]byte, error) {
	if result == nil || result.Table == nil {
		return nil, fmt.Errorf("export: nil result")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Generation Performance Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s to %s", meta.Start.Format("02/01/2006"), meta.End.Format("02/01/2006")))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Granularity: %s / grouped by %s", meta.Granularity, meta.GroupBy))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total Energy (kWh): %.2f", result.KPIs.TotalEnergyKWh))
	pdf.Ln(5)
	if result.Band != nil {
		pdf.Cell(0, 6, fmt.Sprintf("Target Band (kWh): %.2f - %.2f", result.KPIs.TargetMinKWh, result.KPIs.TargetMaxKWh))
		pdf.Ln(5)
		pdf.Cell(0, 6, fmt.Sprintf("Performance: %.1f%%", result.KPIs.PerformancePct))
		pdf.Ln(5)
	}
	if result.DaysWithoutTarget > 0 {
		pdf.Cell(0, 6, fmt.Sprintf("Days without target data: %d", result.DaysWithoutTarget))
		pdf.Ln(5)
	}
	if result.Truncated {
		pdf.Cell(0, 6, "Warning: reading fetch was truncated; figures are a lower bound")
		pdf.Ln(5)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(28, 6, "Period", "1", 0, "C", false, 0, "")
	for _, key := range result.Table.Keys {
		pdf.CellFormat(38, 6, key, "1", 0, "C", false, 0, "")
	}
	if result.Band != nil {
		pdf.CellFormat(24, 6, "Min", "1", 0, "C", false, 0, "")
		pdf.CellFormat(24, 6, "Max", "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for i, label := range result.Table.Labels {
		pdf.CellFormat(28, 6, label, "1", 0, "C", false, 0, "")
		for j := range result.Table.Keys {
			pdf.CellFormat(38, 6, fmt.Sprintf("%.2f", result.Table.Values[i][j]), "1", 0, "R", false, 0, "")
		}
		if result.Band != nil {
			pdf.CellFormat(24, 6, fmt.Sprintf("%.2f", result.Band.Min[i]), "1", 0, "R", false, 0, "")
			pdf.CellFormat(24, 6, fmt.Sprintf("%.2f", result.Band.Max[i]), "1", 0, "R", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildPerformanceXLSX renders a performance report as XLSX with a summary
// sheet and an energy sheet.
func BuildPerformanceXLSX(result *application.PerformanceResult, meta ExportMeta) ([]byte, error) {
	if result == nil || result.Table == nil {
		return nil, fmt.Errorf("export: nil result")
	}

	f := excelize.NewFile()
	summarySheet := "summary"
	energySheet := "energy"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(energySheet)

	_ = f.SetCellValue(summarySheet, "A1", "Generation Performance Report")
	_ = f.SetCellValue(summarySheet, "A3", "Start")
	_ = f.SetCellValue(summarySheet, "B3", meta.Start.Format("02/01/2006"))
	_ = f.SetCellValue(summarySheet, "A4", "End")
	_ = f.SetCellValue(summarySheet, "B4", meta.End.Format("02/01/2006"))
	_ = f.SetCellValue(summarySheet, "A5", "Granularity")
	_ = f.SetCellValue(summarySheet, "B5", meta.Granularity)
	_ = f.SetCellValue(summarySheet, "A6", "Grouped By")
	_ = f.SetCellValue(summarySheet, "B6", meta.GroupBy)
	_ = f.SetCellValue(summarySheet, "A7", "Total Energy (kWh)")
	_ = f.SetCellValue(summarySheet, "B7", result.KPIs.TotalEnergyKWh)
	if result.Band != nil {
		_ = f.SetCellValue(summarySheet, "A8", "Target Min (kWh)")
		_ = f.SetCellValue(summarySheet, "B8", result.KPIs.TargetMinKWh)
		_ = f.SetCellValue(summarySheet, "A9", "Target Max (kWh)")
		_ = f.SetCellValue(summarySheet, "B9", result.KPIs.TargetMaxKWh)
		_ = f.SetCellValue(summarySheet, "A10", "Performance (%)")
		_ = f.SetCellValue(summarySheet, "B10", result.KPIs.PerformancePct)
	}
	_ = f.SetCellValue(summarySheet, "A11", "Days Without Target")
	_ = f.SetCellValue(summarySheet, "B11", result.DaysWithoutTarget)
	_ = f.SetCellValue(summarySheet, "A12", "Truncated")
	_ = f.SetCellValue(summarySheet, "B12", result.Truncated)

	_ = f.SetCellValue(energySheet, "A1", "Period")
	for j, key := range result.Table.Keys {
		cell, _ := excelize.CoordinatesToCellName(j+2, 1)
		_ = f.SetCellValue(energySheet, cell, key)
	}
	bandOffset := len(result.Table.Keys) + 2
	if result.Band != nil {
		minCell, _ := excelize.CoordinatesToCellName(bandOffset, 1)
		maxCell, _ := excelize.CoordinatesToCellName(bandOffset+1, 1)
		_ = f.SetCellValue(energySheet, minCell, "Target Min (kWh)")
		_ = f.SetCellValue(energySheet, maxCell, "Target Max (kWh)")
	}
	for i, label := range result.Table.Labels {
		row := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetCellValue(energySheet, cell, label)
		for j := range result.Table.Keys {
			cell, _ := excelize.CoordinatesToCellName(j+2, row)
			_ = f.SetCellValue(energySheet, cell, result.Table.Values[i][j])
		}
		if result.Band != nil {
			minCell, _ := excelize.CoordinatesToCellName(bandOffset, row)
			maxCell, _ := excelize.CoordinatesToCellName(bandOffset+1, row)
			_ = f.SetCellValue(energySheet, minCell, result.Band.Min[i])
			_ = f.SetCellValue(energySheet, maxCell, result.Band.Max[i])
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
