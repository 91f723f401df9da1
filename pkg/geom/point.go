// Package geom provides the shared geometry types exchanged between the
// terracore components: points, triangles, bounding boxes, segments,
// polylines and surfaces, plus the orientation predicates they rely on.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Point3D is a point in the working frame.
type Point3D struct {
	X, Y, Z float64
}

// P is shorthand for Point3D{x, y, z}.
func P(x, y, z float64) Point3D {
	return Point3D{X: x, Y: y, Z: z}
}

// FromVec converts a gonum vector to a point.
func FromVec(v r3.Vec) Point3D {
	return Point3D{X: v.X, Y: v.Y, Z: v.Z}
}

// Vec returns p as a gonum vector.
func (p Point3D) Vec() r3.Vec {
	return r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}

// Add returns p + q.
func (p Point3D) Add(q Point3D) Point3D {
	return Point3D{p.X + q.X, p.Y + q.Y, p.Z + q.Z}
}

// Sub returns p - q.
func (p Point3D) Sub(q Point3D) Point3D {
	return Point3D{p.X - q.X, p.Y - q.Y, p.Z - q.Z}
}

// Scale returns p * s.
func (p Point3D) Scale(s float64) Point3D {
	return Point3D{p.X * s, p.Y * s, p.Z * s}
}

// Dot returns the dot product.
func (p Point3D) Dot(q Point3D) float64 {
	return r3.Dot(p.Vec(), q.Vec())
}

// Cross returns the cross product.
func (p Point3D) Cross(q Point3D) Point3D {
	return FromVec(r3.Cross(p.Vec(), q.Vec()))
}

// Length returns the magnitude.
func (p Point3D) Length() float64 {
	return r3.Norm(p.Vec())
}

// Normalize returns a unit vector, or the zero vector for zero input.
func (p Point3D) Normalize() Point3D {
	if p.Length() == 0 {
		return Point3D{}
	}
	return FromVec(r3.Unit(p.Vec()))
}

// Distance returns the 3D distance to q.
func (p Point3D) Distance(q Point3D) float64 {
	return r3.Norm(r3.Sub(p.Vec(), q.Vec()))
}

// Distance2D returns the distance to q in the XY plane.
func (p Point3D) Distance2D(q Point3D) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Lerp interpolates between p (t=0) and q (t=1).
func (p Point3D) Lerp(q Point3D, t float64) Point3D {
	return Point3D{
		p.X + (q.X-p.X)*t,
		p.Y + (q.Y-p.Y)*t,
		p.Z + (q.Z-p.Z)*t,
	}
}

// Near reports whether p and q are within tol of each other.
func (p Point3D) Near(q Point3D, tol float64) bool {
	dx, dy, dz := p.X-q.X, p.Y-q.Y, p.Z-q.Z
	return dx*dx+dy*dy+dz*dz <= tol*tol
}

// Near2D is Near ignoring Z.
func (p Point3D) Near2D(q Point3D, tol float64) bool {
	dx, dy := p.X-q.X, p.Y-q.Y
	return dx*dx+dy*dy <= tol*tol
}

// IsFinite reports whether all components are finite numbers.
func (p Point3D) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0) &&
		!math.IsNaN(p.Z) && !math.IsInf(p.Z, 0)
}
