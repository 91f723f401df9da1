package geom

// Tolerances groups the epsilons used by the geometric routines. Every
// routine takes the value it needs explicitly so that callers and tests
// control boundary behavior.
type Tolerances struct {
	// Plane is the distance under which a vertex counts as lying on a
	// slicing plane.
	Plane float64 `yaml:"plane"`
	// PointMerge is the distance under which two computed points are the
	// same point.
	PointMerge float64 `yaml:"point_merge"`
	// Chain is the endpoint coincidence distance used when chaining
	// segments into polylines.
	Chain float64 `yaml:"chain"`
	// Closure is the distance under which a polygon's last vertex repeats
	// its first.
	Closure float64 `yaml:"closure"`
	// Degenerate is the area under which a triangle is treated as having
	// no area.
	Degenerate float64 `yaml:"degenerate"`
	// BBoxPad is the slack added to bounding boxes before overlap tests.
	BBoxPad float64 `yaml:"bbox_pad"`
}

// DefaultTolerances returns the tolerances used when nothing is configured.
func DefaultTolerances() Tolerances {
	return Tolerances{
		Plane:      1e-9,
		PointMerge: 1e-9,
		Chain:      1e-6,
		Closure:    1e-9,
		Degenerate: 1e-12,
		BBoxPad:    1e-9,
	}
}
