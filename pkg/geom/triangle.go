package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle is an ordered three-vertex face. The vertex order defines the
// face normal by the right-hand rule.
type Triangle struct {
	V0, V1, V2 Point3D
}

// T is shorthand for Triangle{a, b, c}.
func T(a, b, c Point3D) Triangle {
	return Triangle{V0: a, V1: b, V2: c}
}

// Vertices returns the vertices in order.
func (t Triangle) Vertices() [3]Point3D {
	return [3]Point3D{t.V0, t.V1, t.V2}
}

// Edges returns the three directed edges V0V1, V1V2, V2V0.
func (t Triangle) Edges() [3]Segment {
	return [3]Segment{{t.V0, t.V1}, {t.V1, t.V2}, {t.V2, t.V0}}
}

func (t Triangle) r3() r3.Triangle {
	return r3.Triangle{t.V0.Vec(), t.V1.Vec(), t.V2.Vec()}
}

// Normal returns the unnormalized face normal; its length is twice the area.
func (t Triangle) Normal() Point3D {
	return FromVec(t.r3().Normal())
}

// UnitNormal returns the normalized face normal.
func (t Triangle) UnitNormal() Point3D {
	return t.Normal().Normalize()
}

// Area returns the 3D area.
func (t Triangle) Area() float64 {
	return t.Normal().Length() / 2
}

// SignedArea2D returns the signed area of the XY projection, positive for
// counter-clockwise vertex order.
func (t Triangle) SignedArea2D() float64 {
	return Orient2D(t.V0, t.V1, t.V2) / 2
}

// Centroid returns the average of the vertices.
func (t Triangle) Centroid() Point3D {
	return FromVec(t.r3().Centroid())
}

// BBox returns the bounding box of the triangle.
func (t Triangle) BBox() BBox {
	return BBoxOf(t.V0, t.V1, t.V2)
}

// MinZ returns the lowest vertex elevation.
func (t Triangle) MinZ() float64 {
	return math.Min(t.V0.Z, math.Min(t.V1.Z, t.V2.Z))
}

// MaxZ returns the highest vertex elevation.
func (t Triangle) MaxZ() float64 {
	return math.Max(t.V0.Z, math.Max(t.V1.Z, t.V2.Z))
}

// Flipped returns the triangle with V1 and V2 swapped.
func (t Triangle) Flipped() Triangle {
	return Triangle{V0: t.V0, V1: t.V2, V2: t.V1}
}

// IsDegenerate reports whether the area is at most tol, or any vertex is
// not a finite number.
func (t Triangle) IsDegenerate(tol float64) bool {
	if !t.V0.IsFinite() || !t.V1.IsFinite() || !t.V2.IsFinite() {
		return true
	}
	return t.Area() <= tol
}

// Translate returns the triangle moved by d.
func (t Triangle) Translate(d Point3D) Triangle {
	return Triangle{t.V0.Add(d), t.V1.Add(d), t.V2.Add(d)}
}
