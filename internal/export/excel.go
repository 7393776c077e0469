package export

import (
	"fmt"
	"io"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/marcenapp/internal/model"
)

const (
	summarySheet = "Summary"
	cutListSheet = "Cut List"
)

// WriteExcel writes a workbook with a per-sheet summary and the full cut list.
func WriteExcel(w io.Writer, result model.NestingResult, settings model.NestingSettings) error {
	f, err := buildWorkbook(result, settings)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// ExportExcel saves the workbook to path.
func ExportExcel(path string, result model.NestingResult, settings model.NestingSettings) error {
	f, err := buildWorkbook(result, settings)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func buildWorkbook(result model.NestingResult, settings model.NestingSettings) (*excelize.File, error) {
	if len(result.Sheets) == 0 {
		return nil, ErrNoSheets
	}

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("renaming sheet: %w", err)
	}
	if _, err := f.NewSheet(cutListSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("adding sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating style: %w", err)
	}

	if err := writeSummaryRows(f, result, settings, bold); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeCutListRows(f, result, bold); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeSummaryRows(f *excelize.File, result model.NestingResult, settings model.NestingSettings, bold int) error {
	rows := [][]interface{}{
		{"Stock", result.Stock.Label},
		{"Sheet size (mm)", fmt.Sprintf("%.0f x %.0f", result.Stock.Width, result.Stock.Height)},
		{"Kerf (mm)", result.Kerf},
		{"Margin (mm)", result.Margin},
		{"Sheets", len(result.Sheets)},
		{"Items", result.ItemCount()},
		{"Efficiency (%)", round1(result.Efficiency * 100)},
		{"Waste value", round1(result.WasteValue)},
		{},
		{"Sheet", "Material", "Items", "Used area (m²)", "Utilization (%)", "Sheet price"},
	}
	tableHeader := len(rows)
	for i, s := range result.Sheets {
		rows = append(rows, []interface{}{
			i + 1,
			s.Material,
			len(s.Items),
			round1(s.UsedArea / 1e6),
			round1(result.SheetEfficiency(i) * 100),
			settings.PriceFor(s.Material),
		})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("writing summary row %d: %w", i+1, err)
		}
	}
	if err := f.SetCellStyle(summarySheet, "A1", fmt.Sprintf("A%d", tableHeader-2), bold); err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, fmt.Sprintf("A%d", tableHeader), fmt.Sprintf("F%d", tableHeader), bold); err != nil {
		return err
	}
	return f.SetColWidth(summarySheet, "A", "F", 18)
}

func writeCutListRows(f *excelize.File, result model.NestingResult, bold int) error {
	header := make([]interface{}, len(cutListHeader))
	for i, h := range cutListHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(cutListSheet, "A1", &header); err != nil {
		return fmt.Errorf("writing cut list header: %w", err)
	}

	row := 2
	for i, s := range result.Sheets {
		for _, it := range s.Items {
			values := []interface{}{i + 1, it.Material, it.PartID, it.Name, it.Copy, it.X, it.Y, it.Width, it.Height, it.Grain.String()}
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(cutListSheet, cell, &values); err != nil {
				return fmt.Errorf("writing cut list row %d: %w", row, err)
			}
			row++
		}
	}
	if err := f.SetCellStyle(cutListSheet, "A1", "J1", bold); err != nil {
		return err
	}
	return f.SetColWidth(cutListSheet, "D", "D", 24)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
