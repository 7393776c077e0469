package model

import "math"

// PurchaseEstimate is a quick area-based answer to "how many sheets do I buy".
// It does not run the nesting engine.
type PurchaseEstimate struct {
	Material          string  `json:"material,omitempty"`
	TotalPartArea     float64 `json:"total_part_area"`     // sq mm, kerf allowance included
	TotalSquareMeters float64 `json:"total_square_meters"` // Same area in m2
	SheetArea         float64 `json:"sheet_area"`          // sq mm
	SheetsNeededExact float64 `json:"sheets_needed_exact"`
	SheetsNeededMin   int     `json:"sheets_needed_min"` // Ceiling of exact
	SheetsWithWaste   int     `json:"sheets_with_waste"` // Recommended purchase
	WastePercent      float64 `json:"waste_percent"`     // e.g. 15 for 15%
	EstimatedCost     float64 `json:"estimated_cost"`
	PricePerSheet     float64 `json:"price_per_sheet"`
	Kerf              float64 `json:"kerf"`
}

const sqmmPerSquareMeter = 1_000_000.0

// CalculatePurchaseEstimate computes how many sheets of stock to buy for parts.
// Every unit is grown by one kerf in both directions before summing.
func CalculatePurchaseEstimate(parts []Part, stock StockSheet, kerf, wastePercent float64) PurchaseEstimate {
	var totalPartArea float64
	for _, p := range parts {
		totalPartArea += (p.Width + kerf) * (p.Height + kerf) * float64(p.Quantity)
	}

	sheetArea := stock.Area()
	if sheetArea <= 0 {
		return PurchaseEstimate{
			TotalPartArea:     totalPartArea,
			TotalSquareMeters: totalPartArea / sqmmPerSquareMeter,
			WastePercent:      wastePercent,
			Kerf:              kerf,
		}
	}

	exact := totalPartArea / sheetArea
	minSheets := int(math.Ceil(exact))
	withWaste := int(math.Ceil(exact * (1.0 + wastePercent/100.0)))
	if withWaste < minSheets {
		withWaste = minSheets
	}

	return PurchaseEstimate{
		TotalPartArea:     totalPartArea,
		TotalSquareMeters: totalPartArea / sqmmPerSquareMeter,
		SheetArea:         sheetArea,
		SheetsNeededExact: exact,
		SheetsNeededMin:   minSheets,
		SheetsWithWaste:   withWaste,
		WastePercent:      wastePercent,
		EstimatedCost:     float64(withWaste) * stock.PricePerSheet,
		PricePerSheet:     stock.PricePerSheet,
		Kerf:              kerf,
	}
}

// EstimateByMaterial runs CalculatePurchaseEstimate once per material group,
// in settings.MaterialOrder followed by unlisted tags in first-seen order.
// Per-material price overrides replace the stock price.
func EstimateByMaterial(parts []Part, settings NestingSettings, wastePercent float64) []PurchaseEstimate {
	groups := make(map[string][]Part)
	var seen []string
	for _, p := range parts {
		if _, ok := groups[p.Material]; !ok {
			seen = append(seen, p.Material)
		}
		groups[p.Material] = append(groups[p.Material], p)
	}

	var out []PurchaseEstimate
	for _, material := range OrderMaterials(seen, settings.MaterialOrder) {
		stock := settings.Stock
		stock.PricePerSheet = settings.PriceFor(material)
		est := CalculatePurchaseEstimate(groups[material], stock, settings.Kerf, wastePercent)
		est.Material = material
		out = append(out, est)
	}
	return out
}

// OrderMaterials sorts tags by their position in priority; tags missing from
// priority keep their relative order and follow the listed ones.
func OrderMaterials(tags []string, priority []string) []string {
	rank := make(map[string]int, len(priority))
	for i, m := range priority {
		if _, dup := rank[m]; !dup {
			rank[m] = i
		}
	}
	present := make(map[string]bool, len(tags))
	for _, t := range tags {
		present[t] = true
	}

	out := make([]string, 0, len(tags))
	for _, m := range priority {
		if present[m] {
			out = append(out, m)
			present[m] = false
		}
	}
	for _, t := range tags {
		if _, listed := rank[t]; !listed && present[t] {
			out = append(out, t)
			present[t] = false
		}
	}
	return out
}
