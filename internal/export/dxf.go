package export

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"

	"github.com/piwi3910/marcenapp/internal/model"
)

// Sheets are laid out left to right with this gap between them (mm).
const dxfSheetGap = 100.0

const (
	layerSheets = "SHEETS"
	layerTrim   = "TRIM"
	layerParts  = "PARTS"
	layerText   = "LABELS"
)

// ExportDXF writes every sheet of the result as outlines in one drawing.
// DXF's Y axis points up, so layout coordinates are flipped per sheet.
func ExportDXF(path string, result model.NestingResult) error {
	if len(result.Sheets) == 0 {
		return ErrNoSheets
	}
	d, err := buildDrawing(result)
	if err != nil {
		return err
	}
	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("saving DXF: %w", err)
	}
	return nil
}

// WriteDXF streams the drawing to w through a temporary file.
func WriteDXF(w io.Writer, result model.NestingResult) error {
	tmp, err := os.CreateTemp("", "marcenapp-*.dxf")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	name := tmp.Name()
	tmp.Close()
	defer os.Remove(name)

	if err := ExportDXF(name, result); err != nil {
		return err
	}
	f, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("reopening DXF: %w", err)
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

func buildDrawing(result model.NestingResult) (*drawing.Drawing, error) {
	d := dxf.NewDrawing()
	layers := []struct {
		name string
		cl   color.ColorNumber
	}{
		{layerSheets, dxf.DefaultColor},
		{layerTrim, color.Red},
		{layerParts, color.Cyan},
		{layerText, color.Green},
	}
	for _, l := range layers {
		if _, err := d.AddLayer(l.name, l.cl, dxf.DefaultLineType, false); err != nil {
			return nil, fmt.Errorf("adding layer %s: %w", l.name, err)
		}
	}

	sw, sh := result.Stock.Width, result.Stock.Height
	m := result.Margin
	for i, s := range result.Sheets {
		ox := float64(i) * (sw + dxfSheetGap)

		if err := onLayer(d, layerSheets, func() error { return dxfRect(d, ox, 0, sw, sh) }); err != nil {
			return nil, err
		}
		if m > 0 {
			if err := onLayer(d, layerTrim, func() error { return dxfRect(d, ox+m, m, sw-2*m, sh-2*m) }); err != nil {
				return nil, err
			}
		}
		err := onLayer(d, layerText, func() error {
			_, err := d.Text(fmt.Sprintf("Sheet %d - %s", i+1, s.Material), ox, sh+20, 0, 40)
			return err
		})
		if err != nil {
			return nil, err
		}

		for _, it := range s.Items {
			y := sh - it.Y - it.Height
			if err := onLayer(d, layerParts, func() error { return dxfRect(d, ox+it.X, y, it.Width, it.Height) }); err != nil {
				return nil, err
			}
			th := math.Min(30, math.Min(it.Width, it.Height)/4)
			err := onLayer(d, layerText, func() error {
				_, err := d.Text(fmt.Sprintf("%s #%d", it.Name, it.Copy), ox+it.X+5, y+it.Height/2, 0, th)
				return err
			})
			if err != nil {
				return nil, err
			}
		}
	}
	return d, nil
}

func onLayer(d *drawing.Drawing, layer string, draw func() error) error {
	if err := d.ChangeLayer(layer); err != nil {
		return fmt.Errorf("switching to layer %s: %w", layer, err)
	}
	return draw()
}

// dxfRect draws an axis-aligned rectangle as four LINE entities.
func dxfRect(d *drawing.Drawing, x, y, w, h float64) error {
	corners := [][2]float64{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}
	for i, c := range corners {
		n := corners[(i+1)%len(corners)]
		if _, err := d.Line(c[0], c[1], 0, n[0], n[1], 0); err != nil {
			return fmt.Errorf("drawing line: %w", err)
		}
	}
	return nil
}
