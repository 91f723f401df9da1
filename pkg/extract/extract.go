// Package extract converts the surface representations accepted at the
// core's boundary into the canonical triangle list and bounding box.
package extract

import (
	"errors"
	"fmt"

	"github.com/Faultbox/terracore/pkg/geom"
)

// ErrNoTriangles is returned when a source yields no usable triangle.
var ErrNoTriangles = errors.New("surface has no triangles")

// Source is any supported surface representation.
type Source interface {
	triangles() []geom.Triangle
}

// Triangles is an explicit triangle list.
type Triangles []geom.Triangle

func (t Triangles) triangles() []geom.Triangle {
	return t
}

// Arrays is an explicit triangle list given as raw coordinate arrays, one
// [3]vertex entry per triangle. Vertices may carry two or three components.
type Arrays [][3][]float64

func (a Arrays) triangles() []geom.Triangle {
	tris := make([]geom.Triangle, 0, len(a))
	for _, t := range a {
		p0, ok0 := toPoint(t[0])
		p1, ok1 := toPoint(t[1])
		p2, ok2 := toPoint(t[2])
		if !ok0 || !ok1 || !ok2 {
			continue
		}
		tris = append(tris, geom.T(p0, p1, p2))
	}
	return tris
}

// Indexed is a point list plus a flat index list, three indices per
// triangle. Positions may carry two or three components.
type Indexed struct {
	Positions [][]float64 `json:"positions"`
	Indices   []int       `json:"indices"`
}

func (ix Indexed) triangles() []geom.Triangle {
	pts := make([]geom.Point3D, len(ix.Positions))
	valid := make([]bool, len(ix.Positions))
	for i, p := range ix.Positions {
		pts[i], valid[i] = toPoint(p)
	}

	tris := make([]geom.Triangle, 0, len(ix.Indices)/3)
	for i := 0; i+2 < len(ix.Indices); i += 3 {
		a, b, c := ix.Indices[i], ix.Indices[i+1], ix.Indices[i+2]
		if !inRange(a, len(pts)) || !inRange(b, len(pts)) || !inRange(c, len(pts)) {
			continue
		}
		if !valid[a] || !valid[b] || !valid[c] {
			continue
		}
		tris = append(tris, geom.T(pts[a], pts[b], pts[c]))
	}
	return tris
}

// Flat is an implicit position buffer where every three consecutive
// vertices form a triangle. Stride is 2 (XY) or 3 (XYZ); zero means 3.
type Flat struct {
	Positions []float64 `json:"positions"`
	Stride    int       `json:"stride"`
}

func (f Flat) triangles() []geom.Triangle {
	stride := f.Stride
	if stride == 0 {
		stride = 3
	}
	if stride < 2 {
		return nil
	}
	n := len(f.Positions) / stride
	vertex := func(i int) geom.Point3D {
		base := i * stride
		p := geom.P(f.Positions[base], f.Positions[base+1], 0)
		if stride > 2 {
			p.Z = f.Positions[base+2]
		}
		return p
	}

	tris := make([]geom.Triangle, 0, n/3)
	for i := 0; i+2 < n; i += 3 {
		tris = append(tris, geom.T(vertex(i), vertex(i+1), vertex(i+2)))
	}
	return tris
}

// Normalize returns the canonical triangle list of src and its bounding
// box. Degenerate triangles, and triangles with unreadable vertices, are
// dropped silently. ErrNoTriangles is returned when nothing survives.
func Normalize(src Source, tol geom.Tolerances) ([]geom.Triangle, geom.BBox, error) {
	if src == nil {
		return nil, geom.EmptyBBox(), ErrNoTriangles
	}

	raw := src.triangles()
	out := make([]geom.Triangle, 0, len(raw))
	for _, t := range raw {
		if t.IsDegenerate(tol.Degenerate) {
			continue
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil, geom.EmptyBBox(), ErrNoTriangles
	}

	out = OrientUp(out)
	return out, geom.TrianglesBBox(out), nil
}

// OrientUp re-winds every triangle whose normal points down (-Z) so that
// all consumers see the same up convention. Vertical triangles keep their
// order. The input slice is modified in place and returned.
func OrientUp(tris []geom.Triangle) []geom.Triangle {
	for i, t := range tris {
		if t.Normal().Z < 0 {
			tris[i] = t.Flipped()
		}
	}
	return tris
}

// Extract builds a surface from src.
func Extract(name string, src Source, tol geom.Tolerances) (*geom.Surface, error) {
	tris, _, err := Normalize(src, tol)
	if err != nil {
		return nil, fmt.Errorf("extracting %q: %w", name, err)
	}
	return geom.NewSurface(name, tris), nil
}

func toPoint(c []float64) (geom.Point3D, bool) {
	switch {
	case len(c) >= 3:
		return geom.P(c[0], c[1], c[2]), true
	case len(c) == 2:
		return geom.P(c[0], c[1], 0), true
	default:
		return geom.Point3D{}, false
	}
}

func inRange(i, n int) bool {
	return i >= 0 && i < n
}
