// Package intersect computes the intersection lines between triangulated
// surfaces.
package intersect

import (
	"math"

	"github.com/Faultbox/terracore/pkg/geom"
)

// Kind classifies the outcome of a triangle pair test.
type Kind int

const (
	// None means the triangles do not intersect along a segment.
	None Kind = iota
	// Coplanar pairs are skipped; their overlap is an area, not a line.
	Coplanar
	// Segment means the pair intersects along a segment of positive length.
	Segment
)

func (k Kind) String() string {
	switch k {
	case Coplanar:
		return "coplanar"
	case Segment:
		return "segment"
	default:
		return "none"
	}
}

// plane is n·p + d = 0 with a unit normal.
type plane struct {
	n geom.Point3D
	d float64
}

func planeOf(t geom.Triangle) (plane, bool) {
	n := t.Normal()
	l := n.Length()
	if l == 0 || math.IsNaN(l) {
		return plane{}, false
	}
	n = n.Scale(1 / l)
	return plane{n: n, d: -n.Dot(t.V0)}, true
}

// distances returns the signed distances of t's vertices to p, snapped to
// zero within tol.
func (p plane) distances(t geom.Triangle, tol float64) [3]float64 {
	var out [3]float64
	for i, v := range t.Vertices() {
		d := p.n.Dot(v) + p.d
		if math.Abs(d) <= tol {
			d = 0
		}
		out[i] = d
	}
	return out
}

func separated(d [3]float64) bool {
	return (d[0] > 0 && d[1] > 0 && d[2] > 0) || (d[0] < 0 && d[1] < 0 && d[2] < 0)
}

// crossing returns the points where t meets the plane its distances d
// refer to: on-plane vertices and interpolated sign changes along edges.
func crossing(t geom.Triangle, d [3]float64, tol float64) []geom.Point3D {
	v := t.Vertices()
	pts := make([]geom.Point3D, 0, 3)
	add := func(p geom.Point3D) {
		for _, q := range pts {
			if q.Near(p, tol) {
				return
			}
		}
		pts = append(pts, p)
	}
	for i := range 3 {
		j := (i + 1) % 3
		if d[i] == 0 {
			add(v[i])
		}
		if d[i]*d[j] < 0 {
			add(v[i].Lerp(v[j], d[i]/(d[i]-d[j])))
		}
	}
	return pts
}

// TriTri intersects two triangles with the interval overlap method: each
// triangle is cut by the other's plane, and the two cuts, which lie on
// the planes' common line, are overlapped along that line. Vertices
// within tol of a plane count as on it. Point contacts report None.
func TriTri(a, b geom.Triangle, tol float64) (geom.Segment, Kind) {
	pa, okA := planeOf(a)
	pb, okB := planeOf(b)
	if !okA || !okB {
		return geom.Segment{}, None
	}

	da := pb.distances(a, tol)
	if separated(da) {
		return geom.Segment{}, None
	}
	db := pa.distances(b, tol)
	if separated(db) {
		return geom.Segment{}, None
	}
	if da == [3]float64{} || db == [3]float64{} {
		return geom.Segment{}, Coplanar
	}

	ca := crossing(a, da, tol)
	cb := crossing(b, db, tol)
	if len(ca) < 2 || len(cb) < 2 {
		return geom.Segment{}, None
	}

	dir := pa.n.Cross(pb.n)
	if dir.Length() <= tol {
		return geom.Segment{}, Coplanar
	}
	dir = dir.Normalize()
	a0, a1, ta0, ta1 := ordered(ca[0], ca[1], dir)
	b0, b1, tb0, tb1 := ordered(cb[0], cb[1], dir)

	lo, tlo := a0, ta0
	if tb0 > ta0 {
		lo, tlo = b0, tb0
	}
	hi, thi := a1, ta1
	if tb1 < ta1 {
		hi, thi = b1, tb1
	}
	if thi-tlo <= tol {
		return geom.Segment{}, None
	}
	return geom.Segment{P0: lo, P1: hi}, Segment
}

// ordered sorts p, q by their projection on dir.
func ordered(p, q, dir geom.Point3D) (geom.Point3D, geom.Point3D, float64, float64) {
	tp, tq := dir.Dot(p), dir.Dot(q)
	if tq < tp {
		return q, p, tq, tp
	}
	return p, q, tp, tq
}
