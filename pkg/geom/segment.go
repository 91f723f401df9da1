package geom

// Segment is a straight edge between two points. For chaining purposes the
// endpoints are unordered.
type Segment struct {
	P0, P1 Point3D
}

// Length returns the 3D length.
func (s Segment) Length() float64 {
	return s.P0.Distance(s.P1)
}

// Reversed returns the segment with swapped endpoints.
func (s Segment) Reversed() Segment {
	return Segment{P0: s.P1, P1: s.P0}
}

// Polyline is an ordered run of points. Closed is set by the producer when
// the first and last point coincide within its tolerance.
type Polyline struct {
	Points []Point3D
	Closed bool
}

// NewPolyline builds a polyline and derives Closed from an endpoint test
// with tol. A polyline needs at least three points to be closed.
func NewPolyline(pts []Point3D, tol float64) Polyline {
	closed := len(pts) > 2 && pts[0].Near(pts[len(pts)-1], tol)
	return Polyline{Points: pts, Closed: closed}
}

// Len returns the number of points.
func (p Polyline) Len() int {
	return len(p.Points)
}

// Length returns the path length.
func (p Polyline) Length() float64 {
	var sum float64
	for i := 1; i < len(p.Points); i++ {
		sum += p.Points[i-1].Distance(p.Points[i])
	}
	return sum
}

// Clone returns a deep copy.
func (p Polyline) Clone() Polyline {
	pts := make([]Point3D, len(p.Points))
	copy(pts, p.Points)
	return Polyline{Points: pts, Closed: p.Closed}
}

// BBox returns the bounding box of the points.
func (p Polyline) BBox() BBox {
	return BBoxOf(p.Points...)
}
