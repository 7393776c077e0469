package engine

import (
	"sort"

	"github.com/piwi3910/marcenapp/internal/model"
)

// Nester packs parts onto stock sheets with shelf first-fit-decreasing
// placement, one independent stream per material.
type Nester struct {
	Settings model.NestingSettings
}

func New(settings model.NestingSettings) *Nester {
	return &Nester{Settings: settings}
}

// ComputeNesting packs parts with the default material order and the stock
// price for every material. It returns a *ValidationError for malformed input
// and a *PartTooLargeError when a part cannot fit the usable sheet area.
func ComputeNesting(parts []model.Part, stock model.StockSheet, kerf, margin float64) (model.NestingResult, error) {
	settings := model.DefaultNestingSettings()
	settings.Stock = stock
	settings.Kerf = kerf
	settings.Margin = margin
	return New(settings).Compute(parts)
}

// Compute validates the input, rejects oversized parts and packs each
// material group in order. No partial result is returned on error.
func (n *Nester) Compute(parts []model.Part) (model.NestingResult, error) {
	s := n.Settings
	if err := validateInput(parts, s.Stock, s.Kerf, s.Margin, s.MaterialPrices); err != nil {
		return model.NestingResult{}, err
	}
	if err := checkFit(parts, s.Stock, s.Margin); err != nil {
		return model.NestingResult{}, err
	}

	result := model.NestingResult{
		Stock:  s.Stock,
		Kerf:   s.Kerf,
		Margin: s.Margin,
		Sheets: []model.Sheet{},
	}
	for _, g := range groupByMaterial(parts, s.MaterialOrder) {
		result.Sheets = append(result.Sheets, n.packGroup(g)...)
	}
	for i := range result.Sheets {
		for j := range result.Sheets[i].Items {
			result.Sheets[i].Items[j].SheetIndex = i
		}
	}

	result.Efficiency = efficiency(result)
	result.WasteValue = wasteValue(result, s)
	return result, nil
}

// checkFit collects every part wider or taller than the usable area.
func checkFit(parts []model.Part, stock model.StockSheet, margin float64) error {
	usableW := stock.Width - 2*margin
	usableH := stock.Height - 2*margin
	var oversized []OversizedPart
	for _, p := range parts {
		if p.Width > usableW || p.Height > usableH {
			oversized = append(oversized, OversizedPart{
				PartID: p.ID,
				Name:   p.Name,
				Width:  p.Width,
				Height: p.Height,
			})
		}
	}
	if len(oversized) > 0 {
		return &PartTooLargeError{Parts: oversized, UsableWidth: usableW, UsableHeight: usableH}
	}
	return nil
}

// materialGroup holds the parts of one material in input order.
type materialGroup struct {
	material string
	parts    []model.Part
}

// groupByMaterial splits parts by material tag. Groups follow order; tags not
// listed there follow in order of first appearance.
func groupByMaterial(parts []model.Part, order []string) []materialGroup {
	byTag := make(map[string][]model.Part)
	var seen []string
	for _, p := range parts {
		if _, ok := byTag[p.Material]; !ok {
			seen = append(seen, p.Material)
		}
		byTag[p.Material] = append(byTag[p.Material], p)
	}

	tags := model.OrderMaterials(seen, order)
	groups := make([]materialGroup, 0, len(tags))
	for _, tag := range tags {
		groups = append(groups, materialGroup{material: tag, parts: byTag[tag]})
	}
	return groups
}

// unit is one copy of a part waiting to be placed.
type unit struct {
	part model.Part
	copy int
}

func expandUnits(parts []model.Part) []unit {
	var units []unit
	for _, p := range parts {
		for c := 1; c <= p.Quantity; c++ {
			units = append(units, unit{part: p, copy: c})
		}
	}
	// Taller units anchor each row; equal heights keep input order.
	sort.SliceStable(units, func(i, j int) bool {
		return units[i].part.Height > units[j].part.Height
	})
	return units
}

// packGroup runs the shelf loop for one material. A new row starts only when
// the current row holds an item, and a sheet closes only when it holds an
// item, so a unit that fits the usable area is always placed.
func (n *Nester) packGroup(g materialGroup) []model.Sheet {
	var (
		sheetW = n.Settings.Stock.Width
		sheetH = n.Settings.Stock.Height
		kerf   = n.Settings.Kerf
		margin = n.Settings.Margin
	)

	var sheets []model.Sheet
	open := model.Sheet{Material: g.material}
	x, y, rowH := margin, margin, 0.0

	for _, u := range expandUnits(g.parts) {
		w, h := u.part.Width, u.part.Height

		if x > margin && x+w+kerf > sheetW-margin {
			x = margin
			y += rowH + kerf
			rowH = 0
		}
		if len(open.Items) > 0 && y+h+kerf > sheetH-margin {
			sheets = append(sheets, open)
			open = model.Sheet{Material: g.material}
			x, y, rowH = margin, margin, 0
		}

		open.Items = append(open.Items, model.PlacedItem{
			PartID:   u.part.ID,
			Name:     u.part.Name,
			Material: u.part.Material,
			Grain:    u.part.Grain,
			Copy:     u.copy,
			X:        x,
			Y:        y,
			Width:    w,
			Height:   h,
		})
		open.UsedArea += w * h

		x += w + kerf
		if h > rowH {
			rowH = h
		}
	}

	if len(open.Items) > 0 {
		sheets = append(sheets, open)
	}
	return sheets
}

// efficiency is used area over total sheet area, 0 with no sheets.
func efficiency(r model.NestingResult) float64 {
	total := float64(len(r.Sheets)) * r.Stock.Area()
	if total <= 0 {
		return 0
	}
	return r.UsedArea() / total
}

// wasteValue prices the unused fraction of each sheet at its material's price.
func wasteValue(r model.NestingResult, s model.NestingSettings) float64 {
	area := r.Stock.Area()
	if area <= 0 {
		return 0
	}
	var total float64
	for _, sheet := range r.Sheets {
		total += (1 - sheet.UsedArea/area) * s.PriceFor(sheet.Material)
	}
	return total
}
