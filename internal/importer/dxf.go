package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/marcenapp/internal/model"
)

type point struct{ x, y float64 }

// bounds is an axis-aligned box that grows to cover added points.
type bounds struct {
	minX, minY, maxX, maxY float64
	empty                  bool
}

func newBounds() bounds {
	return bounds{empty: true}
}

func (b *bounds) add(p point) {
	if b.empty {
		*b = bounds{minX: p.x, minY: p.y, maxX: p.x, maxY: p.y}
		return
	}
	b.minX = math.Min(b.minX, p.x)
	b.minY = math.Min(b.minY, p.y)
	b.maxX = math.Max(b.maxX, p.x)
	b.maxY = math.Max(b.maxY, p.y)
}

func (b bounds) size() (float64, float64) {
	return b.maxX - b.minX, b.maxY - b.minY
}

type segment struct{ start, end point }

// ImportDXF turns every closed shape of a drawing into a rectangular part
// sized to the shape's bounding box. Closed LWPOLYLINEs, CIRCLEs and chains
// of LINE and ARC entities are recognised; other entities are skipped.
func ImportDXF(path string, opts Options) ImportResult {
	var result ImportResult

	drawing, err := dxf.Open(path)
	if err != nil {
		result.errorf("cannot open DXF file: %v", err)
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.errorf("DXF file contains no entities")
		return result
	}

	var shapes []bounds
	var segs []segment
	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			if len(e.Vertices) < 3 {
				result.warnf("skipped LWPOLYLINE with fewer than 3 vertices")
				continue
			}
			shapes = append(shapes, polylineBounds(e))
		case *entity.Circle:
			b := newBounds()
			b.add(point{e.Center[0] - e.Radius, e.Center[1] - e.Radius})
			b.add(point{e.Center[0] + e.Radius, e.Center[1] + e.Radius})
			shapes = append(shapes, b)
		case *entity.Arc:
			pts := arcPoints(e, 32)
			for i := 1; i < len(pts); i++ {
				segs = append(segs, segment{pts[i-1], pts[i]})
			}
		case *entity.Line:
			segs = append(segs, segment{
				start: point{e.Start[0], e.Start[1]},
				end:   point{e.End[0], e.End[1]},
			})
		}
	}

	shapes = append(shapes, chainSegments(segs, 0.01)...)
	if len(shapes) == 0 {
		result.errorf("no closed shapes found in DXF file")
		return result
	}

	material := opts.DefaultMaterial
	if material == "" {
		material = model.DefaultMaterialOrder[0]
	}
	for i, b := range shapes {
		w, h := b.size()
		if w < 0.01 || h < 0.01 {
			result.warnf("skipped degenerate shape (%.2f x %.2f mm)", w, h)
			continue
		}
		part := model.NewPart(fmt.Sprintf("DXF Part %d", i+1), round2(w), round2(h), 1, material)
		result.Parts = append(result.Parts, part)
	}
	return result
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// polylineBounds covers the vertices plus any bulge arcs between them.
func polylineBounds(lw *entity.LwPolyline) bounds {
	b := newBounds()
	n := len(lw.Vertices)
	for i, v := range lw.Vertices {
		cur := point{v[0], v[1]}
		b.add(cur)
		if i < len(lw.Bulges) && math.Abs(lw.Bulges[i]) > 1e-9 {
			next := point{lw.Vertices[(i+1)%n][0], lw.Vertices[(i+1)%n][1]}
			for _, p := range bulgePoints(cur, next, lw.Bulges[i], 32) {
				b.add(p)
			}
		}
	}
	return b
}

// bulgePoints samples the arc between p1 and p2 whose DXF bulge is the
// tangent of a quarter of the included angle; positive bulges run counter-clockwise.
func bulgePoints(p1, p2 point, bulge float64, steps int) []point {
	dx, dy := p2.x-p1.x, p2.y-p1.y
	chord := math.Hypot(dx, dy)
	if chord < 1e-9 {
		return []point{p1, p2}
	}
	theta := 4 * math.Atan(bulge)
	radius := chord / (2 * math.Sin(math.Abs(theta)/2))

	// Center sits on the chord's perpendicular bisector.
	mx, my := (p1.x+p2.x)/2, (p1.y+p2.y)/2
	d := math.Sqrt(math.Max(radius*radius-chord*chord/4, 0))
	sign := 1.0
	if (bulge > 0) == (math.Abs(theta) > math.Pi) {
		sign = -1.0
	}
	cx := mx - sign*d*dy/chord
	cy := my + sign*d*dx/chord

	start := math.Atan2(p1.y-cy, p1.x-cx)
	pts := make([]point, 0, steps+1)
	for i := 0; i <= steps; i++ {
		a := start + theta*float64(i)/float64(steps)
		pts = append(pts, point{cx + radius*math.Cos(a), cy + radius*math.Sin(a)})
	}
	return pts
}

func arcPoints(a *entity.Arc, steps int) []point {
	cx, cy, r := a.Circle.Center[0], a.Circle.Center[1], a.Circle.Radius
	start := a.Angle[0] * math.Pi / 180
	end := a.Angle[1] * math.Pi / 180
	if end <= start {
		end += 2 * math.Pi
	}
	pts := make([]point, steps+1)
	for i := range pts {
		ang := start + (end-start)*float64(i)/float64(steps)
		pts[i] = point{cx + r*math.Cos(ang), cy + r*math.Sin(ang)}
	}
	return pts
}

func pointsClose(a, b point, tol float64) bool {
	return math.Hypot(a.x-b.x, a.y-b.y) <= tol
}

// chainSegments joins loose segments end to end and returns the bounds of
// every chain that closes on itself, largest area first.
func chainSegments(segs []segment, tol float64) []bounds {
	used := make([]bool, len(segs))
	var out []bounds

	for first := range segs {
		if used[first] {
			continue
		}
		used[first] = true
		chain := []point{segs[first].start, segs[first].end}

		for extended := true; extended; {
			extended = false
			tail := chain[len(chain)-1]
			for i, s := range segs {
				if used[i] {
					continue
				}
				switch {
				case pointsClose(tail, s.start, tol):
					chain = append(chain, s.end)
				case pointsClose(tail, s.end, tol):
					chain = append(chain, s.start)
				default:
					continue
				}
				used[i] = true
				extended = true
				break
			}
		}

		if len(chain) < 4 || !pointsClose(chain[0], chain[len(chain)-1], tol) {
			continue
		}
		b := newBounds()
		for _, p := range chain {
			b.add(p)
		}
		out = append(out, b)
	}

	sort.SliceStable(out, func(i, j int) bool {
		wi, hi := out[i].size()
		wj, hj := out[j].size()
		return wi*hi > wj*hj
	})
	return out
}
