// Package extrude turns closed 2D footprints into closed triangle solids.
package extrude

import (
	"errors"
	"fmt"
	"math"

	"github.com/Faultbox/terracore/pkg/entity"
	"github.com/Faultbox/terracore/pkg/geom"
	"github.com/Faultbox/terracore/pkg/triangulate"
)

var (
	ErrTooFewVertices = errors.New("footprint needs at least 3 distinct vertices")
	ErrNotClosed      = errors.New("footprint is not a closed polygon")
)

// Solid is an extruded triangle soup with outward winding.
type Solid struct {
	Triangles []geom.Triangle
	// Normals holds smoothed per-vertex normals, parallel to Triangles.
	Normals [][3]geom.Point3D
	// Volume is the enclosed volume; zero for a flat face.
	Volume float64
}

// Surface wraps the solid as a surface carrying its volume in Meta.
func (s *Solid) Surface(name string) *geom.Surface {
	surface := geom.NewSurface(name, s.Triangles)
	surface.Meta["volume"] = s.Volume
	surface.Meta["kind"] = "solid"
	return surface
}

// Extrude builds a solid from the footprint poly: the footprint itself as
// one cap, a copy moved by depth along Z as the other, and walls along
// every boundary edge split into steps rows. A zero depth returns the
// flat footprint. Every vertex keeps its own Z, so sloped footprints give
// sloped caps.
//
// The result is wound so that its signed volume is non-negative,
// regardless of the footprint's winding or the sign of depth.
func Extrude(poly []geom.Point3D, depth float64, steps int, opts triangulate.Options) (*Solid, error) {
	ring := closeRing(poly, opts.Tolerances.Closure)
	if distinct(ring, opts.Tolerances.PointMerge) < 3 {
		return nil, ErrTooFewVertices
	}
	ring, _ = geom.EnsureCCW(ring)
	if steps < 1 {
		steps = 1
	}

	res, err := triangulate.Triangulate(ring, triangulate.RingConstraints(len(ring)), opts)
	if err != nil {
		return nil, fmt.Errorf("triangulating footprint: %w", err)
	}

	top := res.Triangles
	if depth == 0 || math.IsNaN(depth) {
		return &Solid{Triangles: top, Normals: VertexNormals(top)}, nil
	}

	offset := geom.P(0, 0, depth)
	tris := make([]geom.Triangle, 0, 2*len(top)+2*steps*len(ring))
	tris = append(tris, top...)
	for _, t := range top {
		tris = append(tris, t.Translate(offset).Flipped())
	}
	tris = append(tris, walls(ring, depth, steps)...)

	vol := geom.SignedVolume(tris)
	if vol < 0 {
		tris = geom.FlipAll(tris)
		vol = -vol
	}
	return &Solid{Triangles: tris, Normals: VertexNormals(tris), Volume: vol}, nil
}

// walls builds two triangles per row and boundary edge. With a CCW ring
// the caps are outward for a negative depth, and the walls are wound to
// match them.
func walls(ring []geom.Point3D, depth float64, steps int) []geom.Triangle {
	n := len(ring)
	out := make([]geom.Triangle, 0, 2*steps*n)
	for i := range n {
		p, q := ring[i], ring[(i+1)%n]
		for k := range steps {
			z0 := depth * float64(k) / float64(steps)
			z1 := depth * float64(k+1) / float64(steps)
			a0, b0 := p.Add(geom.P(0, 0, z0)), q.Add(geom.P(0, 0, z0))
			a1, b1 := p.Add(geom.P(0, 0, z1)), q.Add(geom.P(0, 0, z1))
			out = append(out, geom.T(a0, b1, b0), geom.T(a0, a1, b1))
		}
	}
	return out
}

// closeRing returns poly without a duplicate closing vertex.
func closeRing(poly []geom.Point3D, tol float64) []geom.Point3D {
	ring := append([]geom.Point3D(nil), poly...)
	for len(ring) > 1 && ring[0].Near(ring[len(ring)-1], tol) {
		ring = ring[:len(ring)-1]
	}
	return ring
}

func distinct(pts []geom.Point3D, tol float64) int {
	var uniq []geom.Point3D
next:
	for _, p := range pts {
		for _, q := range uniq {
			if p.Near2D(q, tol) {
				continue next
			}
		}
		uniq = append(uniq, p)
	}
	return len(uniq)
}

// Footprint returns the ring of a polygon entity, or of a line whose ends
// meet within tol.
func Footprint(e entity.Entity, tol float64) ([]geom.Point3D, error) {
	switch v := e.(type) {
	case *entity.Poly:
		return v.Points, nil
	case *entity.Line:
		if len(v.Points) > 2 && v.Points[0].Near(v.Points[len(v.Points)-1], tol) {
			return v.Points, nil
		}
	}
	return nil, fmt.Errorf("%w: %s %q", ErrNotClosed, e.Kind(), e.Head().Name)
}
