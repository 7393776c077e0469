package model

import (
	"math"
	"sort"

	"github.com/google/uuid"
)

// Offcut is a rectangular remnant of a nested sheet large enough to reuse.
type Offcut struct {
	ID         string  `json:"id"`
	Material   string  `json:"material"`
	SheetIndex int     `json:"sheet_index"`
	X          float64 `json:"x"` // mm from left
	Y          float64 `json:"y"` // mm from top
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Value      float64 `json:"value"` // Share of the sheet price proportional to area
}

func (o Offcut) Area() float64 {
	return o.Width * o.Height
}

// ToStockSheet turns the remnant into stock for a later job.
func (o Offcut) ToStockSheet() StockSheet {
	return StockSheet{
		Label:         "Offcut " + o.Material,
		Width:         o.Width,
		Height:        o.Height,
		PricePerSheet: o.Value,
	}
}

// Remnants narrower than MinOffcutDimension or smaller than MinOffcutArea are waste.
const (
	MinOffcutDimension = 50.0
	MinOffcutArea      = 10000.0 // 100 x 100 mm
)

// DetectOffcuts finds the usable strip right of the rightmost item and the
// strip below the lowest item on sheet i. The bottom strip stops where the
// right strip begins so the two never overlap. Strips exclude one kerf next
// to the items and the trim margin on the outer edges.
func DetectOffcuts(r NestingResult, i int, price float64) []Offcut {
	if i < 0 || i >= len(r.Sheets) {
		return nil
	}
	sheet := r.Sheets[i]
	maxX := r.Stock.Width - r.Margin
	maxY := r.Stock.Height - r.Margin

	var right, bottom float64
	for _, it := range sheet.Items {
		right = math.Max(right, it.X+it.Width+r.Kerf)
		bottom = math.Max(bottom, it.Y+it.Height+r.Kerf)
	}

	var offcuts []Offcut
	add := func(x, y, w, h float64) {
		if w >= MinOffcutDimension && h >= MinOffcutDimension && w*h >= MinOffcutArea {
			offcuts = append(offcuts, Offcut{
				ID:         uuid.New().String()[:8],
				Material:   sheet.Material,
				SheetIndex: i,
				X:          x,
				Y:          y,
				Width:      w,
				Height:     h,
			})
		}
	}

	add(right, r.Margin, maxX-right, maxY-r.Margin)
	add(r.Margin, bottom, math.Min(right, maxX)-r.Margin, maxY-bottom)

	if area := r.Stock.Area(); price > 0 && area > 0 {
		for j := range offcuts {
			offcuts[j].Value = offcuts[j].Area() / area * price
		}
	}

	sort.SliceStable(offcuts, func(a, b int) bool {
		return offcuts[a].Area() > offcuts[b].Area()
	})
	return offcuts
}

// DetectAllOffcuts runs DetectOffcuts over every sheet, pricing each by its material.
func DetectAllOffcuts(r NestingResult, settings NestingSettings) []Offcut {
	var all []Offcut
	for i, s := range r.Sheets {
		all = append(all, DetectOffcuts(r, i, settings.PriceFor(s.Material))...)
	}
	return all
}

func TotalOffcutArea(offcuts []Offcut) float64 {
	var total float64
	for _, o := range offcuts {
		total += o.Area()
	}
	return total
}
