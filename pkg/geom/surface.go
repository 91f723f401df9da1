package geom

import "github.com/google/uuid"

// Surface is the canonical triangulated unit exchanged between components.
// The bounding box is derived from the triangles; use SetTriangles to keep
// it in sync.
type Surface struct {
	ID        string
	Name      string
	Triangles []Triangle
	BBox      BBox
	Visible   bool
	// Meta carries generator-specific annotations for display and labeling.
	Meta map[string]any
}

// NewSurface creates a visible surface with a fresh ID.
func NewSurface(name string, tris []Triangle) *Surface {
	s := &Surface{
		ID:      uuid.NewString(),
		Name:    name,
		Visible: true,
		Meta:    make(map[string]any),
	}
	s.SetTriangles(tris)
	return s
}

// SetTriangles replaces the triangle list and recomputes the bounding box.
func (s *Surface) SetTriangles(tris []Triangle) {
	s.Triangles = tris
	s.BBox = TrianglesBBox(tris)
}

// TriangleCount returns the number of triangles.
func (s *Surface) TriangleCount() int {
	return len(s.Triangles)
}

// IsEmpty reports whether the surface has no triangles.
func (s *Surface) IsEmpty() bool {
	return len(s.Triangles) == 0
}

// Points returns the distinct vertices in first-seen order.
func (s *Surface) Points() []Point3D {
	seen := make(map[Point3D]struct{}, len(s.Triangles))
	var pts []Point3D
	for _, t := range s.Triangles {
		for _, v := range t.Vertices() {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			pts = append(pts, v)
		}
	}
	return pts
}

// Clone returns a deep copy. Meta values are copied shallowly.
func (s *Surface) Clone() *Surface {
	if s == nil {
		return nil
	}
	c := *s
	c.Triangles = make([]Triangle, len(s.Triangles))
	copy(c.Triangles, s.Triangles)
	if s.Meta != nil {
		c.Meta = make(map[string]any, len(s.Meta))
		for k, v := range s.Meta {
			c.Meta[k] = v
		}
	}
	return &c
}

// TrianglesBBox returns the bounding box of all triangle vertices.
func TrianglesBBox(tris []Triangle) BBox {
	b := EmptyBBox()
	for _, t := range tris {
		b = b.Extend(t.V0).Extend(t.V1).Extend(t.V2)
	}
	return b
}
