// Package export writes nesting results as production documents: layout PDF,
// part labels, CSV and Excel part lists, DXF layouts, an HTML utilization
// chart and machine programs.
package export

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/marcenapp/internal/model"
)

// ErrNoSheets is returned when a result has nothing to export.
var ErrNoSheets = errors.New("no sheets to export")

type rgb struct {
	R, G, B int
}

var partColors = []rgb{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// colorIndex gives every part id a stable color across all sheets.
type colorIndex map[string]rgb

func newColorIndex(r model.NestingResult) colorIndex {
	idx := make(colorIndex)
	for _, s := range r.Sheets {
		for _, it := range s.Items {
			if _, ok := idx[it.PartID]; !ok {
				idx[it.PartID] = partColors[len(idx)%len(partColors)]
			}
		}
	}
	return idx
}

// A4 landscape, mm.
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendHeight = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// WritePDF renders one page per sheet followed by a summary page.
func WritePDF(w io.Writer, result model.NestingResult, settings model.NestingSettings) error {
	pdf, err := buildLayoutPDF(result, settings)
	if err != nil {
		return err
	}
	return pdf.Output(w)
}

// ExportPDF writes the layout document to path.
func ExportPDF(path string, result model.NestingResult, settings model.NestingSettings) error {
	pdf, err := buildLayoutPDF(result, settings)
	if err != nil {
		return err
	}
	return pdf.OutputFileAndClose(path)
}

func buildLayoutPDF(result model.NestingResult, settings model.NestingSettings) (*fpdf.Fpdf, error) {
	if len(result.Sheets) == 0 {
		return nil, ErrNoSheets
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Cutting layout", false)
	pdf.SetAutoPageBreak(false, marginBottom)
	colors := newColorIndex(result)

	for i := range result.Sheets {
		pdf.AddPage()
		renderSheetPage(pdf, result, i, colors)
	}
	pdf.AddPage()
	renderSummaryPage(pdf, result, settings)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("rendering layout PDF: %w", err)
	}
	return pdf, nil
}

func renderSheetPage(pdf *fpdf.Fpdf, result model.NestingResult, idx int, colors colorIndex) {
	sheet := result.Sheets[idx]
	stock := result.Stock

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Sheet %d of %d: %s (%.0f x %.0f mm)", idx+1, len(result.Sheets), sheet.Material, stock.Width, stock.Height)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Items: %d | Used: %.2f m2 of %.2f m2 | Efficiency: %.1f%% | Kerf %.1f mm | Margin %.1f mm",
		len(sheet.Items), sheet.UsedArea/1e6, stock.Area()/1e6, result.SheetEfficiency(idx)*100, result.Kerf, result.Margin)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawW := pageWidth - marginLeft - marginRight
	drawH := pageHeight - drawAreaTop - marginBottom - legendHeight
	scale := math.Min(drawW/stock.Width, drawH/stock.Height)
	canvasW := stock.Width * scale
	canvasH := stock.Height * scale
	offX := marginLeft + (drawW-canvasW)/2
	offY := drawAreaTop

	// Board
	pdf.SetFillColor(210, 180, 140)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offX, offY, canvasW, canvasH, "FD")

	// Trim margin
	if result.Margin > 0 {
		m := result.Margin * scale
		pdf.SetDrawColor(150, 60, 60)
		pdf.SetLineWidth(0.2)
		pdf.SetDashPattern([]float64{1.5, 1}, 0)
		pdf.Rect(offX+m, offY+m, canvasW-2*m, canvasH-2*m, "D")
		pdf.SetDashPattern([]float64{}, 0)
	}

	for _, it := range sheet.Items {
		col := colors[it.PartID]
		px, py := offX+it.X*scale, offY+it.Y*scale
		pw, ph := it.Width*scale, it.Height*scale

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(px, py, pw, ph, "FD")

		if pw <= 15 || ph <= 8 {
			continue
		}
		pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
		pdf.SetTextColor(0, 0, 0)
		centerText(pdf, it.Name, px, py+ph/2-4, pw)
		if ph > 14 {
			centerText(pdf, fmt.Sprintf("%.0fx%.0f", it.Width, it.Height), px, py+ph/2, pw)
		}
	}

	drawDimensions(pdf, stock, offX, offY, canvasW, canvasH)
	drawLegend(pdf, sheet, colors, offY+canvasH+6)
}

// centerText writes s centred in a box of width w, skipping it when it does not fit.
func centerText(pdf *fpdf.Fpdf, s string, x, y, w float64) {
	sw := pdf.GetStringWidth(s)
	if sw >= w-2 {
		return
	}
	pdf.SetXY(x+(w-sw)/2, y)
	pdf.CellFormat(sw, 4, s, "", 0, "C", false, 0, "")
}

func drawDimensions(pdf *fpdf.Fpdf, stock model.StockSheet, offX, offY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%.0f mm", stock.Width)
	lw := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offX+(canvasW-lw)/2, offY+canvasH+1)
	pdf.CellFormat(lw, 4, widthLabel, "", 0, "C", false, 0, "")

	heightLabel := fmt.Sprintf("%.0f mm", stock.Height)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offX-3, offY+canvasH/2)
	lh := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(offX-3-lh/2, offY+canvasH/2-2)
	pdf.CellFormat(lh, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// drawLegend lists each part on the sheet once with its unit count.
func drawLegend(pdf *fpdf.Fpdf, sheet model.Sheet, colors colorIndex, y float64) {
	type entry struct {
		id, label string
		count     int
	}
	var entries []*entry
	byID := make(map[string]*entry)
	for _, it := range sheet.Items {
		e, ok := byID[it.PartID]
		if !ok {
			e = &entry{id: it.PartID, label: fmt.Sprintf("%s (%.0fx%.0f)", it.Name, it.Width, it.Height)}
			byID[it.PartID] = e
			entries = append(entries, e)
		}
		e.count++
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(30, 4, "Parts placed:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	x := marginLeft + 32
	for _, e := range entries {
		text := fmt.Sprintf("%s x%d", e.label, e.count)
		w := pdf.GetStringWidth(text) + 6
		if x+w > pageWidth-marginRight {
			y += 5
			x = marginLeft
		}
		col := colors[e.id]
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(x, y+0.5, 3, 3, "F")
		pdf.SetXY(x+4, y)
		pdf.CellFormat(w-4, 4, text, "", 0, "L", false, 0, "")
		x += w + 2
	}
}

func renderSummaryPage(pdf *fpdf.Fpdf, result model.NestingResult, settings model.NestingSettings) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Cutting Plan Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18
	y = summaryBlock(pdf, y, "Overall", [][2]string{
		{"Sheets used", fmt.Sprintf("%d", len(result.Sheets))},
		{"Items placed", fmt.Sprintf("%d", result.ItemCount())},
		{"Efficiency", fmt.Sprintf("%.1f%%", result.Efficiency*100)},
		{"Waste value", fmt.Sprintf("%.2f", result.WasteValue)},
	})

	y += 5
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "By material", "", 0, "L", false, 0, "")
	y += 9

	widths := []float64{50, 30, 30, 40, 40}
	headers := []string{"Material", "Sheets", "Items", "Efficiency", "Sheet price"}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	x := marginLeft
	for i, h := range headers {
		pdf.SetXY(x, y)
		pdf.CellFormat(widths[i], 6, h, "1", 0, "C", true, 0, "")
		x += widths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	area := result.Stock.Area()
	for i, mat := range result.Materials() {
		var sheets, items int
		var used float64
		for _, s := range result.Sheets {
			if s.Material == mat {
				sheets++
				items += len(s.Items)
				used += s.UsedArea
			}
		}
		row := []string{
			mat,
			fmt.Sprintf("%d", sheets),
			fmt.Sprintf("%d", items),
			fmt.Sprintf("%.1f%%", used/(float64(sheets)*area)*100),
			fmt.Sprintf("%.2f", settings.PriceFor(mat)),
		}
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		x = marginLeft
		for j, c := range row {
			pdf.SetXY(x, y)
			pdf.CellFormat(widths[j], 6, c, "1", 0, "C", true, 0, "")
			x += widths[j]
		}
		y += 6
	}

	y += 8
	summaryBlock(pdf, y, "Settings", [][2]string{
		{"Stock", fmt.Sprintf("%s %.0f x %.0f mm", result.Stock.Label, result.Stock.Width, result.Stock.Height)},
		{"Kerf", fmt.Sprintf("%.1f mm", result.Kerf)},
		{"Margin", fmt.Sprintf("%.1f mm", result.Margin)},
	})

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by MarcenApp cut planner", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// summaryBlock prints a heading and label/value pairs, returning the next y.
func summaryBlock(pdf *fpdf.Fpdf, y float64, title string, rows [][2]string) float64 {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, title, "", 0, "L", false, 0, "")
	y += 9
	for _, r := range rows {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, r[0]+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(80, 6, r[1], "", 0, "L", false, 0, "")
		y += 7
	}
	return y
}

func labelFontSize(w, h float64) float64 {
	switch m := math.Min(w, h); {
	case m > 40:
		return 8
	case m > 20:
		return 7
	default:
		return 6
	}
}
