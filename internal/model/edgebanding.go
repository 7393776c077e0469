package model

import (
	"math"
	"strings"
)

// EdgeBanding marks which sides of a part receive edge tape.
type EdgeBanding struct {
	Top    bool `json:"top" yaml:"top"`
	Bottom bool `json:"bottom" yaml:"bottom"`
	Left   bool `json:"left" yaml:"left"`
	Right  bool `json:"right" yaml:"right"`
}

// HasAny reports whether at least one side is banded.
func (e EdgeBanding) HasAny() bool {
	return e.Top || e.Bottom || e.Left || e.Right
}

// EdgeCount returns the number of banded sides.
func (e EdgeBanding) EdgeCount() int {
	n := 0
	for _, side := range []bool{e.Top, e.Bottom, e.Left, e.Right} {
		if side {
			n++
		}
	}
	return n
}

// LinearLength returns the banding length in mm for one piece of w x h.
// Top and bottom run along the width, left and right along the height.
func (e EdgeBanding) LinearLength(w, h float64) float64 {
	var total float64
	if e.Top {
		total += w
	}
	if e.Bottom {
		total += w
	}
	if e.Left {
		total += h
	}
	if e.Right {
		total += h
	}
	return total
}

func (e EdgeBanding) String() string {
	var sides []string
	if e.Top {
		sides = append(sides, "T")
	}
	if e.Bottom {
		sides = append(sides, "B")
	}
	if e.Left {
		sides = append(sides, "L")
	}
	if e.Right {
		sides = append(sides, "R")
	}
	if len(sides) == 0 {
		return "-"
	}
	return strings.Join(sides, "+")
}

// EdgeBandingSummary is the edge tape a cut list needs.
type EdgeBandingSummary struct {
	TotalLinearMM    float64            `json:"total_linear_mm"` // No waste
	TotalLinearM     float64            `json:"total_linear_m"`  // No waste
	WastePercent     float64            `json:"waste_percent"`
	TotalWithWasteMM float64            `json:"total_with_waste_mm"` // Rounded up to the next mm
	TotalWithWasteM  float64            `json:"total_with_waste_m"`
	PieceCount       int                `json:"piece_count"` // Units with at least one banded side
	EdgeCount        int                `json:"edge_count"`
	ByMaterial       map[string]float64 `json:"by_material"` // mm per material tag, no waste
}

// CalculateEdgeBanding sums banding over every unit of every part.
// wastePercent is added on top, e.g. 10 for 10%.
func CalculateEdgeBanding(parts []Part, wastePercent float64) EdgeBandingSummary {
	var totalMM float64
	var pieces, edges int
	byMaterial := make(map[string]float64)

	for _, p := range parts {
		if !p.EdgeBanding.HasAny() {
			continue
		}
		length := p.EdgeBanding.LinearLength(p.Width, p.Height) * float64(p.Quantity)
		totalMM += length
		byMaterial[p.Material] += length
		pieces += p.Quantity
		edges += p.EdgeBanding.EdgeCount() * p.Quantity
	}

	withWaste := math.Ceil(totalMM * (1.0 + wastePercent/100.0))

	return EdgeBandingSummary{
		TotalLinearMM:    totalMM,
		TotalLinearM:     totalMM / 1000.0,
		WastePercent:     wastePercent,
		TotalWithWasteMM: withWaste,
		TotalWithWasteM:  withWaste / 1000.0,
		PieceCount:       pieces,
		EdgeCount:        edges,
		ByMaterial:       byMaterial,
	}
}

// PartEdgeBanding is one row of the per-part banding breakdown.
type PartEdgeBanding struct {
	Name          string  `json:"name"`
	Material      string  `json:"material"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	Quantity      int     `json:"quantity"`
	Edges         string  `json:"edges"`           // e.g. "T+B+L+R"
	LengthPerUnit float64 `json:"length_per_unit"` // mm
	TotalLength   float64 `json:"total_length"`    // mm
}

func CalculatePerPartEdgeBanding(parts []Part) []PartEdgeBanding {
	var rows []PartEdgeBanding
	for _, p := range parts {
		if !p.EdgeBanding.HasAny() {
			continue
		}
		perUnit := p.EdgeBanding.LinearLength(p.Width, p.Height)
		rows = append(rows, PartEdgeBanding{
			Name:          p.Name,
			Material:      p.Material,
			Width:         p.Width,
			Height:        p.Height,
			Quantity:      p.Quantity,
			Edges:         p.EdgeBanding.String(),
			LengthPerUnit: perUnit,
			TotalLength:   perUnit * float64(p.Quantity),
		})
	}
	return rows
}
