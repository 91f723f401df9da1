package geom

import "math"

// BBox is an axis-aligned bounding box.
type BBox struct {
	Min Point3D
	Max Point3D
}

// EmptyBBox returns a box that contains nothing; extending it with a
// point yields a box around that point.
func EmptyBBox() BBox {
	inf := math.Inf(1)
	return BBox{
		Min: Point3D{inf, inf, inf},
		Max: Point3D{-inf, -inf, -inf},
	}
}

// NewBBox creates a box from two corners, swapping components so that
// Min <= Max on every axis.
func NewBBox(a, b Point3D) BBox {
	return BBox{
		Min: Point3D{math.Min(a.X, b.X), math.Min(a.Y, b.Y), math.Min(a.Z, b.Z)},
		Max: Point3D{math.Max(a.X, b.X), math.Max(a.Y, b.Y), math.Max(a.Z, b.Z)},
	}
}

// BBoxOf returns the bounding box of pts.
func BBoxOf(pts ...Point3D) BBox {
	b := EmptyBBox()
	for _, p := range pts {
		b = b.Extend(p)
	}
	return b
}

// Empty reports whether the box contains no point.
func (b BBox) Empty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Extend returns the box grown to contain p.
func (b BBox) Extend(p Point3D) BBox {
	return BBox{
		Min: Point3D{math.Min(b.Min.X, p.X), math.Min(b.Min.Y, p.Y), math.Min(b.Min.Z, p.Z)},
		Max: Point3D{math.Max(b.Max.X, p.X), math.Max(b.Max.Y, p.Y), math.Max(b.Max.Z, p.Z)},
	}
}

// Union returns the smallest box containing both boxes.
func (b BBox) Union(o BBox) BBox {
	if o.Empty() {
		return b
	}
	if b.Empty() {
		return o
	}
	return b.Extend(o.Min).Extend(o.Max)
}

// Inflate grows the box by pad on every side.
func (b BBox) Inflate(pad float64) BBox {
	if b.Empty() {
		return b
	}
	d := Point3D{pad, pad, pad}
	return BBox{Min: b.Min.Sub(d), Max: b.Max.Add(d)}
}

// Overlaps reports whether the two boxes intersect, touching included,
// after padding both by tol.
func (b BBox) Overlaps(o BBox, tol float64) bool {
	if b.Empty() || o.Empty() {
		return false
	}
	return b.Min.X-tol <= o.Max.X+tol && o.Min.X-tol <= b.Max.X+tol &&
		b.Min.Y-tol <= o.Max.Y+tol && o.Min.Y-tol <= b.Max.Y+tol &&
		b.Min.Z-tol <= o.Max.Z+tol && o.Min.Z-tol <= b.Max.Z+tol
}

// Contains reports whether p is inside the box, boundary included.
func (b BBox) Contains(p Point3D) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Size returns the extent along each axis.
func (b BBox) Size() Point3D {
	if b.Empty() {
		return Point3D{}
	}
	return b.Max.Sub(b.Min)
}

// Center returns the box center.
func (b BBox) Center() Point3D {
	return b.Min.Lerp(b.Max, 0.5)
}
