// Package cull removes unwanted triangles from a triangulation, typically
// the long slivers Delaunay produces along the convex hull of scattered
// points.
package cull

import (
	"math"

	"github.com/Faultbox/terracore/pkg/geom"
)

// Filter decides whether a triangle survives. A filter with a zero
// threshold keeps everything.
type Filter interface {
	Name() string
	Keep(t geom.Triangle) bool
}

// Stats reports what Apply did.
type Stats struct {
	Input   int
	Kept    int
	Removed map[string]int
}

// MaxEdge drops triangles with any edge longer than Length, measured in
// XY unless Use3D is set.
type MaxEdge struct {
	Length float64
	Use3D  bool
}

// Name implements Filter.
func (MaxEdge) Name() string { return "max_edge" }

// Keep implements Filter.
func (f MaxEdge) Keep(t geom.Triangle) bool {
	if f.Length <= 0 {
		return true
	}
	for _, e := range t.Edges() {
		var l float64
		if f.Use3D {
			l = e.P0.Distance(e.P1)
		} else {
			l = e.P0.Distance2D(e.P1)
		}
		if l > f.Length {
			return false
		}
	}
	return true
}

// MinAngle drops triangles whose smallest interior angle is below Degrees.
type MinAngle struct {
	Degrees float64
}

// Name implements Filter.
func (MinAngle) Name() string { return "min_angle" }

// Keep implements Filter.
func (f MinAngle) Keep(t geom.Triangle) bool {
	if f.Degrees <= 0 {
		return true
	}
	return MinAngleDeg(t) >= f.Degrees
}

// MinAngleDeg returns the smallest interior angle of t in degrees using
// the law of cosines. Degenerate triangles report 0.
func MinAngleDeg(t geom.Triangle) float64 {
	a := t.V1.Distance(t.V2)
	b := t.V0.Distance(t.V2)
	c := t.V0.Distance(t.V1)
	if a == 0 || b == 0 || c == 0 {
		return 0
	}
	angle := func(opp, s1, s2 float64) float64 {
		cos := (s1*s1 + s2*s2 - opp*opp) / (2 * s1 * s2)
		return math.Acos(math.Max(-1, math.Min(1, cos)))
	}
	smallest := math.Min(angle(a, b, c), math.Min(angle(b, a, c), angle(c, a, b)))
	return smallest * 180 / math.Pi
}

// Apply returns the triangles every filter keeps. A triangle rejected by
// several filters is counted under the first one.
func Apply(tris []geom.Triangle, filters ...Filter) ([]geom.Triangle, Stats) {
	stats := Stats{Input: len(tris), Removed: make(map[string]int)}
	kept := make([]geom.Triangle, 0, len(tris))
next:
	for _, t := range tris {
		for _, f := range filters {
			if !f.Keep(t) {
				stats.Removed[f.Name()]++
				continue next
			}
		}
		kept = append(kept, t)
	}
	stats.Kept = len(kept)
	return kept, stats
}
