package shroud

import (
	"context"
	"fmt"
	"math"

	"github.com/Faultbox/terracore/pkg/geom"
)

// Grid is a regular heightfield. Samples outside every source's envelope
// are NaN.
type Grid struct {
	Origin     geom.Point3D
	Spacing    float64
	Cols, Rows int
	Z          []float64
}

// At returns the sample at column c, row r.
func (g *Grid) At(c, r int) float64 {
	return g.Z[r*g.Cols+c]
}

// Point returns the 3D position of sample c, r.
func (g *Grid) Point(c, r int) geom.Point3D {
	return geom.P(g.Origin.X+float64(c)*g.Spacing, g.Origin.Y+float64(r)*g.Spacing, g.At(c, r))
}

// ElevationAt interpolates the heightfield bilinearly at x, y. It reports
// false outside the grid or next to samples outside the envelope.
func (g *Grid) ElevationAt(x, y float64) (float64, bool) {
	fx := (x - g.Origin.X) / g.Spacing
	fy := (y - g.Origin.Y) / g.Spacing
	if fx < 0 || fy < 0 || fx > float64(g.Cols-1) || fy > float64(g.Rows-1) {
		return 0, false
	}

	c := min(int(fx), g.Cols-2)
	r := min(int(fy), g.Rows-2)
	tx, ty := fx-float64(c), fy-float64(r)

	z00, z10 := g.At(c, r), g.At(c+1, r)
	z01, z11 := g.At(c, r+1), g.At(c+1, r+1)
	if math.IsNaN(z00) || math.IsNaN(z10) || math.IsNaN(z01) || math.IsNaN(z11) {
		return 0, false
	}
	bottom := z00 + (z10-z00)*tx
	top := z01 + (z11-z01)*tx
	return bottom + (top-bottom)*ty, true
}

// BuildGrid sizes the grid over the padded source extents and samples
// the envelope, checking for cancellation between rows.
func BuildGrid(ctx context.Context, sources []Source, p Params, progress ProgressFunc) (*Grid, error) {
	if err := validate(sources, p); err != nil {
		return nil, err
	}
	if progress == nil {
		progress = func(float64, string) {}
	}
	maxCells := p.MaxCells
	if maxCells <= 0 {
		maxCells = DefaultMaxCells
	}

	bounds := geom.EmptyBBox()
	maxPad := 0.0
	for _, s := range sources {
		pad := padding(s, p)
		maxPad = math.Max(maxPad, pad)
		bounds = bounds.Union(geom.BBoxOf(s.Position).Inflate(pad))
	}
	if maxPad == 0 {
		return nil, fmt.Errorf("%w: sources have no reach", ErrInvalidSource)
	}

	spacing := maxPad / (float64(p.Iterations) / 2)
	size := bounds.Size()
	cols := int(math.Ceil(size.X/spacing)) + 1
	rows := int(math.Ceil(size.Y/spacing)) + 1
	for cols*rows > maxCells {
		spacing *= math.Sqrt(float64(cols*rows) / float64(maxCells))
		cols = int(math.Ceil(size.X/spacing)) + 1
		rows = int(math.Ceil(size.Y/spacing)) + 1
	}
	progress(5, fmt.Sprintf("grid %dx%d at %.3f", cols, rows, spacing))

	g := &Grid{
		Origin:  geom.P(bounds.Min.X, bounds.Min.Y, 0),
		Spacing: spacing,
		Cols:    cols,
		Rows:    rows,
		Z:       make([]float64, cols*rows),
	}
	minAlt := -p.ExtendBelowCollar
	for r := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		y := g.Origin.Y + float64(r)*spacing
		for c := range cols {
			x := g.Origin.X + float64(c)*spacing
			best := math.NaN()
			for _, s := range sources {
				d := math.Hypot(x-s.Position.X, y-s.Position.Y)
				alt := Altitude(s.MaxVelocity, p.Gravity, d)
				if alt < minAlt {
					continue
				}
				if z := s.Position.Z + alt; math.IsNaN(best) || z > best {
					best = z
				}
			}
			g.Z[r*cols+c] = best
		}
		progress(5+95*float64(r+1)/float64(rows), "sampling")
	}
	return g, nil
}

// Triangles splits every grid quad into two triangles along the
// p00-p11 diagonal, wound counter-clockwise in XY. Each half is kept on
// its own when its three corners are inside the envelope; a quad that
// loses p00 or p11 is split along the other diagonal instead, so a single
// missing corner still leaves one triangle. Triangles whose normal leans
// more than endAngleDeg from vertical are dropped unless endAngleDeg is
// zero.
func (g *Grid) Triangles(endAngleDeg float64) []geom.Triangle {
	minNZ := -1.0
	if endAngleDeg > 0 {
		minNZ = math.Cos(endAngleDeg * math.Pi / 180)
	}

	var out []geom.Triangle
	keep := func(a, b, c geom.Point3D) {
		if math.IsNaN(a.Z) || math.IsNaN(b.Z) || math.IsNaN(c.Z) {
			return
		}
		t := geom.T(a, b, c)
		if t.UnitNormal().Z < minNZ {
			return
		}
		out = append(out, t)
	}
	for r := 0; r+1 < g.Rows; r++ {
		for c := 0; c+1 < g.Cols; c++ {
			p00, p10 := g.Point(c, r), g.Point(c+1, r)
			p01, p11 := g.Point(c, r+1), g.Point(c+1, r+1)
			if math.IsNaN(p00.Z) || math.IsNaN(p11.Z) {
				keep(p00, p10, p01)
				keep(p10, p11, p01)
				continue
			}
			keep(p00, p10, p11)
			keep(p00, p11, p01)
		}
	}
	return out
}
