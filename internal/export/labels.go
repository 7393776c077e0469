package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/marcenapp/internal/model"
)

// LabelInfo is the payload encoded into each label's QR code.
type LabelInfo struct {
	PartID   string  `json:"id"`
	Name     string  `json:"name"`
	Material string  `json:"material"`
	Copy     int     `json:"copy"`
	Of       int     `json:"of"`
	Width    float64 `json:"width_mm"`
	Height   float64 `json:"height_mm"`
	Grain    string  `json:"grain,omitempty"`
	Sheet    int     `json:"sheet"` // 1-based
	X        float64 `json:"x_mm"`
	Y        float64 `json:"y_mm"`
}

// A4 sheet of 3 x 8 labels, 70 x 37 mm each.
const (
	labelMarginTop  = 4.5
	labelMarginLeft = 0.0
	labelWidth      = 70.0
	labelHeight     = 37.0
	labelCols       = 3
	labelRows       = 8
	labelsPerPage   = labelCols * labelRows
	qrSize          = 26.0
	labelPadding    = 3.0
)

// CollectLabelInfos returns one label per placed unit in sheet order.
func CollectLabelInfos(result model.NestingResult) []LabelInfo {
	totals := make(map[string]int)
	for _, s := range result.Sheets {
		for _, it := range s.Items {
			totals[it.PartID]++
		}
	}

	var labels []LabelInfo
	for i, s := range result.Sheets {
		for _, it := range s.Items {
			info := LabelInfo{
				PartID:   it.PartID,
				Name:     it.Name,
				Material: it.Material,
				Copy:     it.Copy,
				Of:       totals[it.PartID],
				Width:    it.Width,
				Height:   it.Height,
				Sheet:    i + 1,
				X:        it.X,
				Y:        it.Y,
			}
			if it.Grain != model.GrainNone {
				info.Grain = it.Grain.String()
			}
			labels = append(labels, info)
		}
	}
	return labels
}

// WriteLabels renders a PDF with one QR-coded label per placed unit.
func WriteLabels(w io.Writer, result model.NestingResult) error {
	pdf, err := buildLabelsPDF(result)
	if err != nil {
		return err
	}
	return pdf.Output(w)
}

// ExportLabels writes the label sheets to path.
func ExportLabels(path string, result model.NestingResult) error {
	pdf, err := buildLabelsPDF(result)
	if err != nil {
		return err
	}
	return pdf.OutputFileAndClose(path)
}

func buildLabelsPDF(result model.NestingResult) (*fpdf.Fpdf, error) {
	labels := CollectLabelInfos(result)
	if len(labels) == 0 {
		return nil, ErrNoSheets
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Part labels", false)
	pdf.SetAutoPageBreak(false, 0)

	for i, info := range labels {
		pos := i % labelsPerPage
		if pos == 0 {
			pdf.AddPage()
		}
		x := labelMarginLeft + float64(pos%labelCols)*labelWidth
		y := labelMarginTop + float64(pos/labelCols)*labelHeight
		if err := renderLabel(pdf, x, y, i, info); err != nil {
			return nil, fmt.Errorf("label for %q: %w", info.Name, err)
		}
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("rendering labels: %w", err)
	}
	return pdf, nil
}

func renderLabel(pdf *fpdf.Fpdf, x, y float64, n int, info LabelInfo) error {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	payload, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("encoding label payload: %w", err)
	}
	png, err := qrcode.Encode(string(payload), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("generating QR code: %w", err)
	}

	img := fmt.Sprintf("qr_%d", n)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(img, opts, bytes.NewReader(png))
	pdf.ImageOptions(img, x+labelWidth-qrSize-labelPadding, y+(labelHeight-qrSize)/2, qrSize, qrSize, false, opts, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	pdf.CellFormat(textW, 5, truncate(pdf, info.Name, textW), "", 0, "L", false, 0, "")

	lines := []string{
		fmt.Sprintf("%.0f x %.0f mm", info.Width, info.Height),
		fmt.Sprintf("%s  %d/%d", info.Material, info.Copy, info.Of),
		fmt.Sprintf("Sheet %d @ %.0f, %.0f", info.Sheet, info.X, info.Y),
	}
	if info.Grain != "" {
		lines = append(lines, "Grain: "+info.Grain)
	}
	pdf.SetFont("Helvetica", "", 7)
	for i, l := range lines {
		if i == 2 {
			pdf.SetTextColor(100, 100, 100)
		}
		pdf.SetXY(textX, y+labelPadding+6+float64(i)*4)
		pdf.CellFormat(textW, 3.5, truncate(pdf, l, textW), "", 0, "L", false, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)
	return nil
}

// truncate shortens s with "..." until it fits width w in the current font.
func truncate(pdf *fpdf.Fpdf, s string, w float64) string {
	if pdf.GetStringWidth(s) <= w {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > w {
		s = s[:len(s)-1]
	}
	return s + "..."
}
