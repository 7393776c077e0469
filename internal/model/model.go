package model

import "github.com/google/uuid"

// Grain represents the grain direction of a part. It is printed on labels and
// layouts but never changes how a part is packed.
type Grain int

const (
	GrainNone       Grain = iota // No grain marking
	GrainHorizontal              // Grain runs along the width
	GrainVertical                // Grain runs along the height
)

func (g Grain) String() string {
	switch g {
	case GrainHorizontal:
		return "Horizontal"
	case GrainVertical:
		return "Vertical"
	default:
		return "None"
	}
}

// Part represents a required rectangular piece to be cut.
type Part struct {
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Width       float64     `json:"width" yaml:"width" validate:"finite,gt=0"`   // mm
	Height      float64     `json:"height" yaml:"height" validate:"finite,gt=0"` // mm
	Quantity    int         `json:"quantity" yaml:"quantity" validate:"gte=1"`
	Material    string      `json:"material" yaml:"material" validate:"required"`
	Grain       Grain       `json:"grain" yaml:"grain"`
	EdgeBanding EdgeBanding `json:"edge_banding" yaml:"edge_banding"`
}

func NewPart(name string, w, h float64, qty int, material string) Part {
	return Part{
		ID:       uuid.New().String()[:8],
		Name:     name,
		Width:    w,
		Height:   h,
		Quantity: qty,
		Material: material,
		Grain:    GrainNone,
	}
}

// Area returns the area of one unit of the part in sq mm.
func (p Part) Area() float64 {
	return p.Width * p.Height
}

// StockSheet is the raw board every part is cut from.
type StockSheet struct {
	Label         string  `json:"label" yaml:"label"`
	Width         float64 `json:"width" yaml:"width" validate:"finite,gt=0"`   // mm
	Height        float64 `json:"height" yaml:"height" validate:"finite,gt=0"` // mm
	PricePerSheet float64 `json:"price_per_sheet" yaml:"price_per_sheet" validate:"finite,gte=0"`
}

// Area returns the sheet area in sq mm.
func (s StockSheet) Area() float64 {
	return s.Width * s.Height
}

// Reference board used by the workshop: 2730 x 1830 mm MDF.
const (
	DefaultSheetWidth  = 2730.0
	DefaultSheetHeight = 1830.0
	DefaultKerf        = 3.0
	DefaultMargin      = 10.0
	DefaultSheetPrice  = 300.0
)

// DefaultMaterialOrder is the packing and reporting order of material groups:
// decorative faces first, structural next, backing panels last.
var DefaultMaterialOrder = []string{"white", "wood", "backing"}

func DefaultStockSheet() StockSheet {
	return StockSheet{
		Label:         "MDF 2730x1830",
		Width:         DefaultSheetWidth,
		Height:        DefaultSheetHeight,
		PricePerSheet: DefaultSheetPrice,
	}
}

// NestingSettings holds everything the nesting engine needs besides the parts.
type NestingSettings struct {
	Stock          StockSheet         `json:"stock" yaml:"stock"`
	Kerf           float64            `json:"kerf" yaml:"kerf"`     // Saw blade width between items (mm)
	Margin         float64            `json:"margin" yaml:"margin"` // Trim on every sheet edge (mm)
	MaterialOrder  []string           `json:"material_order" yaml:"material_order"`
	MaterialPrices map[string]float64 `json:"material_prices,omitempty" yaml:"material_prices,omitempty"` // Per-material sheet price override
}

func DefaultNestingSettings() NestingSettings {
	order := make([]string, len(DefaultMaterialOrder))
	copy(order, DefaultMaterialOrder)
	return NestingSettings{
		Stock:         DefaultStockSheet(),
		Kerf:          DefaultKerf,
		Margin:        DefaultMargin,
		MaterialOrder: order,
	}
}

// PriceFor returns the sheet price for a material, falling back to the stock price.
func (s NestingSettings) PriceFor(material string) float64 {
	if p, ok := s.MaterialPrices[material]; ok {
		return p
	}
	return s.Stock.PricePerSheet
}

// PlacedItem is one unit of a part positioned on a sheet.
type PlacedItem struct {
	PartID     string  `json:"part_id"`
	Name       string  `json:"name"`
	Material   string  `json:"material"`
	Grain      Grain   `json:"grain"`
	Copy       int     `json:"copy"`        // 1-based unit number within the part's quantity
	SheetIndex int     `json:"sheet_index"` // 0-based index into NestingResult.Sheets
	X          float64 `json:"x"`           // From left edge (mm)
	Y          float64 `json:"y"`           // From top edge (mm)
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
}

// Area returns the item area in sq mm.
func (p PlacedItem) Area() float64 {
	return p.Width * p.Height
}

// Overlaps reports whether two items share any interior area.
func (p PlacedItem) Overlaps(o PlacedItem) bool {
	return p.X < o.X+o.Width && o.X < p.X+p.Width &&
		p.Y < o.Y+o.Height && o.Y < p.Y+p.Height
}

// Sheet is one stock sheet with the items nested on it.
type Sheet struct {
	Material string       `json:"material"`
	Items    []PlacedItem `json:"items"`
	UsedArea float64      `json:"used_area"` // Sum of item areas, kerf and margin excluded
}

// NestingResult is the full output of one nesting run.
type NestingResult struct {
	Stock      StockSheet `json:"stock"`
	Kerf       float64    `json:"kerf"`
	Margin     float64    `json:"margin"`
	Sheets     []Sheet    `json:"sheets"`
	Efficiency float64    `json:"efficiency"`  // 0..1
	WasteValue float64    `json:"waste_value"` // Unused area priced in sheet-equivalents
}

// SheetEfficiency returns the used fraction (0..1) of sheet i.
func (r NestingResult) SheetEfficiency(i int) float64 {
	area := r.Stock.Area()
	if area == 0 || i < 0 || i >= len(r.Sheets) {
		return 0
	}
	return r.Sheets[i].UsedArea / area
}

// ItemCount returns the number of placed items across all sheets.
func (r NestingResult) ItemCount() int {
	total := 0
	for _, s := range r.Sheets {
		total += len(s.Items)
	}
	return total
}

// UsedArea returns the total placed area across all sheets.
func (r NestingResult) UsedArea() float64 {
	var total float64
	for _, s := range r.Sheets {
		total += s.UsedArea
	}
	return total
}

// Materials returns the material tags in sheet order, without repeats.
func (r NestingResult) Materials() []string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range r.Sheets {
		if !seen[s.Material] {
			seen[s.Material] = true
			out = append(out, s.Material)
		}
	}
	return out
}

// SheetsFor returns the number of sheets used for one material.
func (r NestingResult) SheetsFor(material string) int {
	n := 0
	for _, s := range r.Sheets {
		if s.Material == material {
			n++
		}
	}
	return n
}

// Project ties everything together for save/load.
type Project struct {
	Name     string          `json:"name" yaml:"name"`
	Client   string          `json:"client,omitempty" yaml:"client,omitempty"`
	Parts    []Part          `json:"parts" yaml:"parts"`
	Settings NestingSettings `json:"settings" yaml:"settings"`
	Result   *NestingResult  `json:"result,omitempty" yaml:"-"`
}

func NewProject() Project {
	return Project{
		Name:     "Untitled",
		Parts:    []Part{},
		Settings: DefaultNestingSettings(),
	}
}
