// Package shroud generates ballistic envelope surfaces: for point sources
// launching at a maximum velocity, the highest altitude reachable above
// every ground position, sampled on a regular grid.
package shroud

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/Faultbox/terracore/pkg/geom"
)

// DefaultMaxCells caps the grid at 500x500 samples.
const DefaultMaxCells = 500 * 500

var (
	ErrInvalidSource = errors.New("invalid shroud source")
	ErrInvalidParams = errors.New("invalid shroud parameters")
)

// ProgressFunc receives a completion percentage and a short message.
type ProgressFunc func(percent float64, msg string)

// Source is a launch point.
type Source struct {
	Position geom.Point3D `json:"position" yaml:"position"`
	// MaxDistance bounds the grid around the source; zero uses the
	// ballistic range on level ground.
	MaxDistance float64 `json:"max_distance" yaml:"max_distance"`
	MaxVelocity float64 `json:"max_velocity" yaml:"max_velocity"`
}

// Params controls the sampling.
type Params struct {
	// Iterations is the number of grid steps across the largest source
	// diameter.
	Iterations int `json:"iterations" yaml:"iterations"`
	// EndAngleDeg drops triangles steeper than this from horizontal;
	// zero keeps all.
	EndAngleDeg float64 `json:"end_angle_deg" yaml:"end_angle_deg"`
	// ExtendBelowCollar extends the envelope this far below each
	// source's elevation.
	ExtendBelowCollar float64 `json:"extend_below_collar" yaml:"extend_below_collar"`
	Gravity           float64 `json:"gravity" yaml:"gravity"`
	MaxCells          int     `json:"max_cells" yaml:"max_cells"`
}

// DefaultParams returns earth gravity and a 40-step grid.
func DefaultParams() Params {
	return Params{Iterations: 40, EndAngleDeg: 0, Gravity: 9.81, MaxCells: DefaultMaxCells}
}

// Altitude returns the highest point above the launch elevation a
// projectile at velocity v reaches at horizontal distance d:
// (v⁴ - g²d²) / (2gv²).
func Altitude(v, g, d float64) float64 {
	v2 := v * v
	return (v2*v2 - g*g*d*d) / (2 * g * v2)
}

// Range returns the horizontal distance at which the envelope falls to
// altitude h relative to the launch point.
func Range(v, g, h float64) float64 {
	v2 := v * v
	r := v2*v2 - 2*g*h*v2
	if r <= 0 {
		return 0
	}
	return math.Sqrt(r) / g
}

func validate(sources []Source, p Params) error {
	if len(sources) == 0 {
		return fmt.Errorf("%w: no sources", ErrInvalidSource)
	}
	for i, s := range sources {
		if !s.Position.IsFinite() {
			return fmt.Errorf("%w: source %d position is not finite", ErrInvalidSource, i)
		}
		if !(s.MaxVelocity > 0) || math.IsInf(s.MaxVelocity, 0) {
			return fmt.Errorf("%w: source %d velocity must be positive", ErrInvalidSource, i)
		}
		if s.MaxDistance < 0 {
			return fmt.Errorf("%w: source %d distance is negative", ErrInvalidSource, i)
		}
	}
	if !(p.Gravity > 0) {
		return fmt.Errorf("%w: gravity must be positive", ErrInvalidParams)
	}
	if p.Iterations < 2 {
		return fmt.Errorf("%w: at least 2 iterations are required", ErrInvalidParams)
	}
	if p.ExtendBelowCollar < 0 {
		return fmt.Errorf("%w: collar extension is negative", ErrInvalidParams)
	}
	return nil
}

// padding returns the grid radius around s.
func padding(s Source, p Params) float64 {
	pad := s.MaxDistance
	if pad == 0 {
		pad = Range(s.MaxVelocity, p.Gravity, 0)
	}
	if p.ExtendBelowCollar > 0 {
		pad = math.Max(pad, Range(s.MaxVelocity, p.Gravity, -p.ExtendBelowCollar))
	}
	return pad
}

// Generate samples the envelope of sources and triangulates it. The
// surface's Meta carries the parameters, the sources and the grid
// spacing.
func Generate(ctx context.Context, sources []Source, p Params, progress ProgressFunc) (*geom.Surface, error) {
	if progress == nil {
		progress = func(float64, string) {}
	}
	grid, err := BuildGrid(ctx, sources, p, func(pct float64, msg string) {
		progress(pct*0.9, msg)
	})
	if err != nil {
		return nil, err
	}

	tris := grid.Triangles(p.EndAngleDeg)
	progress(100, fmt.Sprintf("%d triangles", len(tris)))

	surface := geom.NewSurface("shroud", tris)
	surface.Meta["kind"] = "shroud"
	surface.Meta["params"] = p
	surface.Meta["sources"] = append([]Source(nil), sources...)
	surface.Meta["spacing"] = grid.Spacing
	return surface, nil
}
