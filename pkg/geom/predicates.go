package geom

// Orient2D returns twice the signed area of triangle abc in the XY plane:
// positive when a, b, c turn counter-clockwise.
func Orient2D(a, b, c Point3D) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (c.X-a.X)*(b.Y-a.Y)
}

// SignedArea2D returns the shoelace area of the ring pts in the XY plane,
// positive for counter-clockwise order. The ring is implicitly closed.
func SignedArea2D(pts []Point3D) float64 {
	n := len(pts)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := range n {
		j := (i + 1) % n
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return sum / 2
}

// EnsureCCW returns pts in counter-clockwise order, reversing a copy when
// the signed area is negative. The second result reports the reversal.
func EnsureCCW(pts []Point3D) ([]Point3D, bool) {
	if SignedArea2D(pts) >= 0 {
		return pts, false
	}
	return Reverse(pts), true
}

// Reverse returns a reversed copy of pts.
func Reverse(pts []Point3D) []Point3D {
	out := make([]Point3D, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

// PointInPolygon reports whether p lies inside ring using ray casting with
// the even-odd rule. Only X and Y are used.
func PointInPolygon(p Point3D, ring []Point3D) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := ring[i], ring[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}

// SignedVolume returns the signed volume enclosed by a triangle soup: the
// sum of the scalar triple products of each triangle over six. Outward
// wound closed meshes have a positive volume.
func SignedVolume(tris []Triangle) float64 {
	var sum float64
	for _, t := range tris {
		sum += t.V0.Dot(t.V1.Cross(t.V2))
	}
	return sum / 6
}

// FlipAll returns a copy of tris with every triangle's winding reversed.
func FlipAll(tris []Triangle) []Triangle {
	out := make([]Triangle, len(tris))
	for i, t := range tris {
		out[i] = t.Flipped()
	}
	return out
}
