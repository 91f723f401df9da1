// Package triangulate builds 2D triangulations of point sets projected on
// the XY plane, optionally constrained by boundary edges.
//
// Two providers are available: Delaunay (sweep with Lawson flips and edge forcing
// for constraints) and EarClip (ear clipping of the boundary ring). A
// Chain tries providers in order and falls through when one fails or
// yields nothing usable, so a valid input always produces triangles.
package triangulate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Faultbox/terracore/pkg/geom"
)

var (
	// ErrTooFewPoints is returned for inputs with fewer than 3 usable points.
	ErrTooFewPoints = errors.New("at least 3 points are required")
	// ErrDegenerateInput is returned when a provider cannot build a
	// triangulation from the input, e.g. collinear or non-finite points.
	ErrDegenerateInput = errors.New("degenerate triangulation input")
	// ErrNoTriangles is returned when every provider yields no triangle.
	ErrNoTriangles = errors.New("triangulation produced no triangles")
)

// Mesh is a provider's output: counter-clockwise index triples into the
// input points.
type Mesh struct {
	Triangles [][3]int
	// Skipped counts constraint edges that could not be forced.
	Skipped int
}

// Provider triangulates the XY projection of pts. Constraints are index
// pairs into pts that should appear as edges of the result.
type Provider interface {
	Name() string
	Triangulate(pts []geom.Point3D, constraints [][2]int) (Mesh, error)
}

// Chain is a fallback chain of providers.
type Chain []Provider

// Name joins the provider names.
func (c Chain) Name() string {
	names := make([]string, len(c))
	for i, p := range c {
		names[i] = p.Name()
	}
	return strings.Join(names, ">")
}

// Triangulate returns the first non-empty result.
func (c Chain) Triangulate(pts []geom.Point3D, constraints [][2]int) (Mesh, error) {
	mesh, _, err := c.Run(pts, constraints, nil)
	return mesh, err
}

// Run tries each provider in order. accept, when non-nil, post-filters a
// provider's mesh; a provider whose filtered mesh is empty falls through
// to the next one. Run returns the accepted mesh and the name of the
// provider that produced it.
func (c Chain) Run(pts []geom.Point3D, constraints [][2]int, accept func(Mesh) Mesh) (Mesh, string, error) {
	var errs []error
	for _, p := range c {
		mesh, err := p.Triangulate(pts, constraints)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		if accept != nil {
			mesh = accept(mesh)
		}
		if len(mesh.Triangles) == 0 {
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), ErrNoTriangles))
			continue
		}
		return mesh, p.Name(), nil
	}
	if len(errs) == 0 {
		return Mesh{}, "", ErrNoTriangles
	}
	return Mesh{}, "", fmt.Errorf("%w: %w", ErrNoTriangles, errors.Join(errs...))
}
