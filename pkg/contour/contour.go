// Package contour slices a triangulated surface with horizontal planes at
// regular elevation intervals.
package contour

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/Faultbox/terracore/pkg/entity"
	"github.com/Faultbox/terracore/pkg/geom"
	"github.com/Faultbox/terracore/pkg/polyline"
)

// MaxLevels is the default cap on the number of slicing planes.
const MaxLevels = 5000

var (
	ErrInvalidInterval = errors.New("contour interval must be positive")
	ErrTooManyLevels   = errors.New("too many contour levels")
	ErrEmptySurface    = errors.New("surface has no triangles")
)

// ProgressFunc receives a completion percentage and a short message.
type ProgressFunc func(percent float64, msg string)

// Options configures Slice.
type Options struct {
	Interval float64
	// Min and Max override the surface's elevation range when set.
	Min, Max *float64
	// Spacing thins the resulting polylines; zero keeps every vertex.
	Spacing float64
	// Closed asks ToEntities for polygons where loops close.
	Closed bool
	// MaxLevels caps the level count; zero means the package default.
	MaxLevels  int
	Tolerances geom.Tolerances
}

// Level holds the contour lines at one elevation.
type Level struct {
	Elevation float64
	Lines     []geom.Polyline
}

// Levels returns the slicing elevations: multiples of interval from the
// smallest one at or above lo up to hi.
func Levels(lo, hi, interval float64, maxLevels int) ([]float64, error) {
	if interval <= 0 || math.IsNaN(interval) || math.IsInf(interval, 0) {
		return nil, ErrInvalidInterval
	}
	if maxLevels <= 0 {
		maxLevels = MaxLevels
	}
	const slack = 1e-9

	first := math.Ceil(lo/interval-slack) * interval
	if first > hi+slack*interval {
		return nil, nil
	}
	steps := math.Floor((hi-first)/interval + slack)
	if steps+1 > float64(maxLevels) {
		return nil, fmt.Errorf("%w: %.0f levels exceed the limit of %d; widen the interval or narrow the elevation range",
			ErrTooManyLevels, steps+1, maxLevels)
	}

	n := int(steps) + 1
	if n == 1 {
		return []float64{first}, nil
	}
	return floats.Span(make([]float64, n), first, first+steps*interval), nil
}

// Slice cuts surface at every level and chains the cut segments into
// polylines. The level count is checked before any triangle is scanned.
// Levels without lines are omitted.
func Slice(ctx context.Context, surface *geom.Surface, opts Options, progress ProgressFunc) ([]Level, error) {
	if surface == nil || surface.IsEmpty() {
		return nil, ErrEmptySurface
	}
	if progress == nil {
		progress = func(float64, string) {}
	}

	lo, hi := surface.BBox.Min.Z, surface.BBox.Max.Z
	if opts.Min != nil {
		lo = *opts.Min
	}
	if opts.Max != nil {
		hi = *opts.Max
	}
	elevations, err := Levels(lo, hi, opts.Interval, opts.MaxLevels)
	if err != nil {
		return nil, err
	}

	tris := make([]geom.Triangle, len(surface.Triangles))
	copy(tris, surface.Triangles)
	sort.SliceStable(tris, func(i, j int) bool { return tris[i].MinZ() < tris[j].MinZ() })

	var out []Level
	for i, z := range elevations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		segs := sliceLevel(tris, z, opts.Tolerances)
		if len(segs) > 0 {
			lines := polyline.Chain(segs, opts.Tolerances.Chain)
			lines = polyline.SimplifyAll(lines, opts.Spacing)
			out = append(out, Level{Elevation: z, Lines: lines})
		}
		progress(100*float64(i+1)/float64(len(elevations)), fmt.Sprintf("level %.2f", z))
	}
	return out, nil
}

// sliceLevel intersects the triangles, sorted by minimum Z, with the plane
// at z. An edge lying in the plane is reported by every triangle below
// it, so a ridge shows up twice; repeats are dropped within
// tol.PointMerge.
func sliceLevel(tris []geom.Triangle, z float64, tol geom.Tolerances) []geom.Segment {
	var segs, inPlane []geom.Segment
	for _, t := range tris {
		if t.MinZ() > z+tol.Plane {
			break
		}
		if t.MaxZ() < z-tol.Plane {
			continue
		}
		seg, ok := SliceTriangle(t, z, tol)
		if !ok {
			continue
		}
		if onPlane(t, z, tol.Plane) == 2 {
			if containsSegment(inPlane, seg, tol.PointMerge) {
				continue
			}
			inPlane = append(inPlane, seg)
		}
		segs = append(segs, seg)
	}
	return segs
}

func onPlane(t geom.Triangle, z, tol float64) int {
	n := 0
	for _, p := range t.Vertices() {
		if math.Abs(p.Z-z) <= tol {
			n++
		}
	}
	return n
}

func containsSegment(segs []geom.Segment, s geom.Segment, tol float64) bool {
	for _, q := range segs {
		if (q.P0.Near(s.P0, tol) && q.P1.Near(s.P1, tol)) ||
			(q.P0.Near(s.P1, tol) && q.P1.Near(s.P0, tol)) {
			return true
		}
	}
	return false
}

// SliceTriangle intersects t with the horizontal plane at z. Vertices
// within tol.Plane of the plane count as on it. It reports false unless
// the cut yields exactly two distinct points.
//
// An edge lying in the plane is reported only by a triangle below it; a
// triangle that merely rests on the plane contributes nothing. A ridge
// edge with both neighbours below is therefore returned by each of them.
func SliceTriangle(t geom.Triangle, z float64, tol geom.Tolerances) (geom.Segment, bool) {
	v := t.Vertices()
	var side [3]int
	above, below, on := 0, 0, 0
	for i, p := range v {
		d := p.Z - z
		switch {
		case math.Abs(d) <= tol.Plane:
			on++
		case d > 0:
			side[i] = 1
			above++
		default:
			side[i] = -1
			below++
		}
	}
	if on == 3 || above == 3 || below == 3 {
		return geom.Segment{}, false
	}
	if on == 2 && below == 0 {
		return geom.Segment{}, false
	}

	pts := make([]geom.Point3D, 0, 3)
	add := func(p geom.Point3D) {
		p.Z = z
		for _, q := range pts {
			if q.Near(p, tol.PointMerge) {
				return
			}
		}
		pts = append(pts, p)
	}
	for i := range 3 {
		j := (i + 1) % 3
		if side[i] == 0 {
			add(v[i])
		}
		if side[i]*side[j] < 0 {
			f := (z - v[i].Z) / (v[j].Z - v[i].Z)
			add(v[i].Lerp(v[j], f))
		}
	}
	if len(pts) != 2 {
		return geom.Segment{}, false
	}
	return geom.Segment{P0: pts[0], P1: pts[1]}, true
}

// ToEntities converts levels to drawing entities on layerID, named by
// elevation and sequence, e.g. "contour 105.00 #2". Closed loops become
// polygons when closed is set.
func ToEntities(levels []Level, layerID string, closed bool) []entity.Entity {
	var out []entity.Entity
	for _, lvl := range levels {
		es := entity.FromPolylines(lvl.Lines, layerID, "", closed)
		for _, e := range es {
			h := e.Head()
			h.Name = fmt.Sprintf("contour %.2f #%d", lvl.Elevation, h.Seq)
		}
		out = append(out, es...)
	}
	return out
}
