package jobs

import (
	"slices"

	"github.com/Faultbox/terracore/pkg/cull"
	"github.com/Faultbox/terracore/pkg/geom"
	"github.com/Faultbox/terracore/pkg/shroud"
)

// Task types registered by Service.
const (
	TypeTriangulate    = "triangulate"
	TypeMeshFromPoints = "mesh-from-points"
	TypeIntersect      = "intersect"
	TypeContour        = "contour"
	TypeExtrude        = "extrude"
	TypeShroud         = "shroud"
)

// TriangulateRequest triangulates a boundary polygon. Without constraints
// the points are taken as a closed ring in order.
type TriangulateRequest struct {
	Name        string         `json:"name"`
	Points      []geom.Point3D `json:"points"`
	Constraints [][2]int       `json:"constraints,omitempty"`
}

func (r TriangulateRequest) Clone() any {
	r.Points = slices.Clone(r.Points)
	r.Constraints = slices.Clone(r.Constraints)
	return r
}

// TriangulateResult describes the stored surface.
type TriangulateResult struct {
	SurfaceID string `json:"surfaceId"`
	Triangles int    `json:"triangles"`
	Provider  string `json:"provider"`
	Skipped   int    `json:"skipped"`
}

// MeshRequest builds a culled Delaunay surface over scattered points.
// Zero thresholds fall back to the configured ones.
type MeshRequest struct {
	Name     string         `json:"name"`
	Points   []geom.Point3D `json:"points"`
	MaxEdge  float64        `json:"maxEdge,omitempty"`
	MinAngle float64        `json:"minAngle,omitempty"`
}

func (r MeshRequest) Clone() any {
	r.Points = slices.Clone(r.Points)
	return r
}

// MeshResult describes the stored surface and what culling removed.
type MeshResult struct {
	SurfaceID string     `json:"surfaceId"`
	Triangles int        `json:"triangles"`
	Culled    cull.Stats `json:"culled"`
}

// IntersectRequest intersects two stored surfaces and draws the result
// on Layer.
type IntersectRequest struct {
	A       string  `json:"a"`
	B       string  `json:"b"`
	Spacing float64 `json:"spacing,omitempty"`
	Layer   string  `json:"layer,omitempty"`
}

// IntersectResult summarises an intersection.
type IntersectResult struct {
	LayerID  string `json:"layerId"`
	Lines    int    `json:"lines"`
	Segments int    `json:"segments"`
	Pairs    int    `json:"pairs"`
	Coplanar int    `json:"coplanar"`
}

// ContourRequest slices a stored surface. A zero Interval or Spacing falls
// back to the configured value; Closed nil means the configured default.
type ContourRequest struct {
	SurfaceID string   `json:"surfaceId"`
	Interval  float64  `json:"interval,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	Spacing   float64  `json:"spacing,omitempty"`
	Closed    *bool    `json:"closed,omitempty"`
	Layer     string   `json:"layer,omitempty"`
}

func (r ContourRequest) Clone() any {
	r.Min = clonePtr(r.Min)
	r.Max = clonePtr(r.Max)
	r.Closed = clonePtr(r.Closed)
	return r
}

// ContourResult summarises a contour run.
type ContourResult struct {
	LayerID  string `json:"layerId"`
	Levels   int    `json:"levels"`
	Entities int    `json:"entities"`
}

// ExtrudeRequest extrudes a footprint polygon by Depth along Z.
type ExtrudeRequest struct {
	Name      string         `json:"name"`
	Footprint []geom.Point3D `json:"footprint"`
	Depth     float64        `json:"depth"`
	Steps     int            `json:"steps,omitempty"`
}

func (r ExtrudeRequest) Clone() any {
	r.Footprint = slices.Clone(r.Footprint)
	return r
}

// ExtrudeResult describes the stored solid.
type ExtrudeResult struct {
	SurfaceID string  `json:"surfaceId"`
	Triangles int     `json:"triangles"`
	Volume    float64 `json:"volume"`
}

// ShroudRequest generates a shroud surface. Nil Params uses the
// configured ones.
type ShroudRequest struct {
	Name    string          `json:"name"`
	Sources []shroud.Source `json:"sources"`
	Params  *shroud.Params  `json:"params,omitempty"`
}

func (r ShroudRequest) Clone() any {
	r.Sources = slices.Clone(r.Sources)
	r.Params = clonePtr(r.Params)
	return r
}

// ShroudResult describes the stored shroud surface.
type ShroudResult struct {
	SurfaceID string  `json:"surfaceId"`
	Triangles int     `json:"triangles"`
	Spacing   float64 `json:"spacing"`
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
