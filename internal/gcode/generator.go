package gcode

import (
	"fmt"
	"math"
	"strings"

	"github.com/piwi3910/marcenapp/internal/model"
)

// MachineSettings describes the router and tool used to cut nested sheets.
type MachineSettings struct {
	Profile      string  `json:"profile"`
	ToolDiameter float64 `json:"tool_diameter"` // mm
	CutDepth     float64 `json:"cut_depth"`     // Board thickness plus breakthrough (mm)
	PassDepth    float64 `json:"pass_depth"`
	FeedRate     float64 `json:"feed_rate"`   // mm/min
	PlungeRate   float64 `json:"plunge_rate"` // mm/min
	SpindleSpeed int     `json:"spindle_speed"`
	SafeZ        float64 `json:"safe_z"`
	TabsPerSide  int     `json:"tabs_per_side"` // 0 disables holding tabs
	TabWidth     float64 `json:"tab_width"`
	TabHeight    float64 `json:"tab_height"`
}

// SettingsFromConfig takes the machine defaults saved in the app config.
func SettingsFromConfig(c model.AppConfig) MachineSettings {
	return MachineSettings{
		Profile:      c.GCodeProfile,
		ToolDiameter: c.ToolDiameter,
		CutDepth:     c.CutDepth,
		PassDepth:    c.PassDepth,
		FeedRate:     c.FeedRate,
		PlungeRate:   c.PlungeRate,
		SpindleSpeed: c.SpindleSpeed,
		SafeZ:        c.SafeZ,
		TabWidth:     8,
		TabHeight:    2,
	}
}

// Generator turns nested sheets into router programs. Machine coordinates
// put the origin at the sheet's bottom-left corner, so layout Y (measured
// from the top edge) is flipped.
type Generator struct {
	Settings MachineSettings
	profile  Profile
}

func New(settings MachineSettings) *Generator {
	return &Generator{
		Settings: settings,
		profile:  GetProfile(settings.Profile),
	}
}

// Profile returns the dialect the generator writes.
func (g *Generator) Profile() Profile {
	return g.profile
}

// GenerateSheet produces the program for sheet i of the result.
func (g *Generator) GenerateSheet(result model.NestingResult, i int) string {
	var b strings.Builder
	sheet := result.Sheets[i]

	g.writeHeader(&b, result, i)
	for n, item := range sheet.Items {
		g.writeItem(&b, item, result.Stock.Height, n+1)
	}
	g.writeFooter(&b)
	return b.String()
}

// GenerateAll produces one program per sheet.
func (g *Generator) GenerateAll(result model.NestingResult) []string {
	codes := make([]string, 0, len(result.Sheets))
	for i := range result.Sheets {
		codes = append(codes, g.GenerateSheet(result, i))
	}
	return codes
}

func (g *Generator) passes() int {
	if g.Settings.PassDepth <= 0 || g.Settings.PassDepth >= g.Settings.CutDepth {
		return 1
	}
	return int(math.Ceil(g.Settings.CutDepth / g.Settings.PassDepth))
}

func (g *Generator) writeHeader(b *strings.Builder, result model.NestingResult, i int) {
	p := g.profile
	sheet := result.Sheets[i]

	b.WriteString(g.comment(fmt.Sprintf("MarcenApp sheet %d of %d, material %s", i+1, len(result.Sheets), sheet.Material)))
	b.WriteString(g.comment(fmt.Sprintf("Stock %s: %.1f x %.1f mm", result.Stock.Label, result.Stock.Width, result.Stock.Height)))
	b.WriteString(g.comment(fmt.Sprintf("Items %d, utilization %.1f%%", len(sheet.Items), result.SheetEfficiency(i)*100)))
	b.WriteString(g.comment(fmt.Sprintf("Tool %.1fmm, feed %.0f, plunge %.0f mm/min",
		g.Settings.ToolDiameter, g.Settings.FeedRate, g.Settings.PlungeRate)))
	b.WriteString(g.comment(fmt.Sprintf("Depth %.1fmm in %d passes", g.Settings.CutDepth, g.passes())))
	b.WriteString(g.comment("Profile " + p.Name))
	b.WriteString("\n")

	for _, code := range p.StartCode {
		b.WriteString(code + "\n")
	}
	b.WriteString(fmt.Sprintf("%s Z%s\n", p.RapidMove, g.format(g.Settings.SafeZ)))
	if p.SpindleStart != "" {
		b.WriteString(fmt.Sprintf(p.SpindleStart+"\n", g.Settings.SpindleSpeed))
	}
	b.WriteString("\n")
}

func (g *Generator) writeFooter(b *strings.Builder) {
	p := g.profile
	b.WriteString(g.comment("End of sheet"))
	if p.SpindleStop != "" {
		b.WriteString(p.SpindleStop + "\n")
	}
	for _, code := range p.EndCode {
		b.WriteString(strings.ReplaceAll(code, "[SafeZ]", g.format(g.Settings.SafeZ)) + "\n")
	}
}

// writeItem cuts the perimeter of one item, offset outward by the tool radius.
func (g *Generator) writeItem(b *strings.Builder, item model.PlacedItem, sheetHeight float64, n int) {
	r := g.Settings.ToolDiameter / 2
	x0 := item.X - r
	x1 := item.X + item.Width + r
	y0 := sheetHeight - item.Y - item.Height - r
	y1 := sheetHeight - item.Y + r

	b.WriteString(g.comment(fmt.Sprintf("Item %d: %s #%d (%.1f x %.1f)", n, item.Name, item.Copy, item.Width, item.Height)))

	passes := g.passes()
	tabs := g.tabs(x1-x0, y1-y0)
	for pass := 1; pass <= passes; pass++ {
		depth := math.Min(float64(pass)*g.Settings.PassDepth, g.Settings.CutDepth)
		if passes == 1 {
			depth = g.Settings.CutDepth
		}
		b.WriteString(g.comment(fmt.Sprintf("Pass %d/%d at %.2fmm", pass, passes, depth)))
		b.WriteString(fmt.Sprintf("%s X%s Y%s\n", g.profile.RapidMove, g.format(x0), g.format(y0)))
		b.WriteString(fmt.Sprintf("%s Z%s F%s\n", g.profile.FeedMove, g.format(-depth), g.format(g.Settings.PlungeRate)))

		corners := [4][2]float64{{x1, y0}, {x1, y1}, {x0, y1}, {x0, y0}}
		from := [2]float64{x0, y0}
		for side, to := range corners {
			var sideTabs []float64
			if pass == passes {
				sideTabs = tabs[side]
			}
			g.writeSide(b, from, to, depth, sideTabs)
			from = to
		}
		b.WriteString(fmt.Sprintf("%s Z%s\n", g.profile.RapidMove, g.format(g.Settings.SafeZ)))
	}
	b.WriteString("\n")
}

// tabs returns tab centres per side as distances along that side.
// Sides run bottom, right, top, left.
func (g *Generator) tabs(w, h float64) [4][]float64 {
	var out [4][]float64
	n := g.Settings.TabsPerSide
	if n <= 0 || g.Settings.TabWidth <= 0 {
		return out
	}
	for side := range out {
		length := w
		if side%2 == 1 {
			length = h
		}
		if length < float64(n+1)*g.Settings.TabWidth {
			continue
		}
		spacing := length / float64(n+1)
		for t := 1; t <= n; t++ {
			out[side] = append(out[side], spacing*float64(t))
		}
	}
	return out
}

// writeSide feeds from one corner to the next, lifting over each tab.
func (g *Generator) writeSide(b *strings.Builder, from, to [2]float64, depth float64, tabs []float64) {
	feed := g.profile.FeedMove
	if len(tabs) == 0 {
		b.WriteString(fmt.Sprintf("%s X%s Y%s F%s\n", feed, g.format(to[0]), g.format(to[1]), g.format(g.Settings.FeedRate)))
		return
	}

	dx, dy := to[0]-from[0], to[1]-from[1]
	length := math.Hypot(dx, dy)
	ux, uy := dx/length, dy/length
	tabZ := math.Min(0, -(depth - g.Settings.TabHeight))
	half := g.Settings.TabWidth / 2

	for _, c := range tabs {
		start, end := c-half, c+half
		b.WriteString(fmt.Sprintf("%s X%s Y%s F%s\n", feed,
			g.format(from[0]+ux*start), g.format(from[1]+uy*start), g.format(g.Settings.FeedRate)))
		b.WriteString(fmt.Sprintf("%s Z%s\n", feed, g.format(tabZ)))
		b.WriteString(fmt.Sprintf("%s X%s Y%s\n", feed, g.format(from[0]+ux*end), g.format(from[1]+uy*end)))
		b.WriteString(fmt.Sprintf("%s Z%s F%s\n", feed, g.format(-depth), g.format(g.Settings.PlungeRate)))
	}
	b.WriteString(fmt.Sprintf("%s X%s Y%s F%s\n", feed, g.format(to[0]), g.format(to[1]), g.format(g.Settings.FeedRate)))
}

func (g *Generator) comment(text string) string {
	return g.profile.CommentPrefix + " " + text + g.profile.CommentSuffix + "\n"
}

// format prints a value with the profile's decimal places.
func (g *Generator) format(v float64) string {
	return fmt.Sprintf("%.*f", g.profile.DecimalPlaces, v)
}
