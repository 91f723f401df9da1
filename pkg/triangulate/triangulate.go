package triangulate

import (
	"fmt"

	"github.com/Faultbox/terracore/pkg/cull"
	"github.com/Faultbox/terracore/pkg/geom"
)

// Options configures Triangulate and MeshFromPoints.
type Options struct {
	Tolerances geom.Tolerances
	// Providers overrides the default Delaunay > EarClip chain.
	Providers Chain
	// Filters are applied by MeshFromPoints after triangulation.
	Filters []cull.Filter
}

// DefaultOptions returns options with default tolerances and no culling.
func DefaultOptions() Options {
	return Options{Tolerances: geom.DefaultTolerances()}
}

// DefaultChain returns the Delaunay provider backed by ear clipping.
func DefaultChain(tol geom.Tolerances) Chain {
	return Chain{
		Delaunay{MergeTol: tol.PointMerge},
		EarClip{MergeTol: tol.PointMerge},
	}
}

// Result is a triangulation with every triangle counter-clockwise in XY.
type Result struct {
	Triangles []geom.Triangle
	// Provider names the provider that produced the triangles.
	Provider string
	// Skipped counts constraint edges that could not be forced.
	Skipped int
}

// Triangulate triangulates pts, honouring constraint edges as far as the
// provider allows. When the constraints form a closed ring, triangles
// whose centroid falls outside it are discarded, so concave boundaries
// are respected.
func Triangulate(pts []geom.Point3D, constraints [][2]int, opts Options) (Result, error) {
	if len(pts) < 3 {
		return Result{}, ErrTooFewPoints
	}

	ring, closed := boundaryRing(len(pts), constraints)
	var boundary []geom.Point3D
	if closed {
		if ringArea(pts, ring) < 0 {
			for i, j := 0, len(ring)-1; i < j; i, j = i+1, j-1 {
				ring[i], ring[j] = ring[j], ring[i]
			}
			constraints = ringEdges(ring)
		}
		boundary = make([]geom.Point3D, len(ring))
		for i, idx := range ring {
			boundary[i] = pts[idx]
		}
	}

	chain := opts.Providers
	if len(chain) == 0 {
		chain = DefaultChain(opts.Tolerances)
	}

	accept := func(m Mesh) Mesh {
		kept := m.Triangles[:0:0]
		for _, t := range m.Triangles {
			tri := geom.T(pts[t[0]], pts[t[1]], pts[t[2]])
			if tri.IsDegenerate(opts.Tolerances.Degenerate) {
				continue
			}
			if boundary != nil && !geom.PointInPolygon(tri.Centroid(), boundary) {
				continue
			}
			kept = append(kept, t)
		}
		m.Triangles = kept
		return m
	}

	mesh, name, err := chain.Run(pts, constraints, accept)
	if err != nil {
		return Result{}, err
	}

	out := make([]geom.Triangle, len(mesh.Triangles))
	for i, t := range mesh.Triangles {
		tri := geom.T(pts[t[0]], pts[t[1]], pts[t[2]])
		if tri.SignedArea2D() < 0 {
			tri = tri.Flipped()
		}
		out[i] = tri
	}
	return Result{Triangles: out, Provider: name, Skipped: mesh.Skipped}, nil
}

// RingConstraints returns the constraint edges closing the ring 0..n-1.
func RingConstraints(n int) [][2]int {
	ring := make([]int, n)
	for i := range ring {
		ring[i] = i
	}
	return ringEdges(ring)
}

func ringEdges(ring []int) [][2]int {
	edges := make([][2]int, len(ring))
	for i := range ring {
		edges[i] = [2]int{ring[i], ring[(i+1)%len(ring)]}
	}
	return edges
}

// MeshFromPoints builds an unconstrained Delaunay surface over scattered
// points and applies the option filters to it.
func MeshFromPoints(name string, pts []geom.Point3D, opts Options) (*geom.Surface, cull.Stats, error) {
	if opts.Providers == nil {
		opts.Providers = Chain{Delaunay{MergeTol: opts.Tolerances.PointMerge}}
	}
	res, err := Triangulate(pts, nil, opts)
	if err != nil {
		return nil, cull.Stats{}, fmt.Errorf("mesh from points: %w", err)
	}

	tris, stats := cull.Apply(res.Triangles, opts.Filters...)
	if len(tris) == 0 {
		return nil, stats, fmt.Errorf("mesh from points: %w", ErrNoTriangles)
	}
	surface := geom.NewSurface(name, tris)
	surface.Meta["provider"] = res.Provider
	surface.Meta["culled"] = stats.Input - stats.Kept
	return surface, stats, nil
}
