package cull

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/terracore/pkg/geom"
)

func equilateral(side float64) geom.Triangle {
	return geom.T(geom.P(0, 0, 0), geom.P(side, 0, 0), geom.P(side/2, side*0.8660254037844386, 0))
}

func sliver() geom.Triangle {
	return geom.T(geom.P(0, 0, 0), geom.P(10, 0, 0), geom.P(5, 0.1, 0))
}

func TestMinAngleDeg(t *testing.T) {
	assert.InDelta(t, 60, MinAngleDeg(equilateral(2)), 1e-6)
	assert.Less(t, MinAngleDeg(sliver()), 2.0)
	assert.Equal(t, 0.0, MinAngleDeg(geom.T(geom.P(0, 0, 0), geom.P(0, 0, 0), geom.P(1, 0, 0))))
}

func TestMaxEdge3D(t *testing.T) {
	steep := geom.T(geom.P(0, 0, 0), geom.P(1, 0, 0), geom.P(0, 1, 10))
	assert.True(t, MaxEdge{Length: 2}.Keep(steep))
	assert.False(t, MaxEdge{Length: 2, Use3D: true}.Keep(steep))
}

func TestZeroThresholdKeepsAll(t *testing.T) {
	tris := []geom.Triangle{equilateral(1), sliver()}
	kept, stats := Apply(tris, MaxEdge{}, MinAngle{})
	assert.Len(t, kept, 2)
	assert.Equal(t, 2, stats.Kept)
	assert.Empty(t, stats.Removed)
}

func TestApplyCountsPerReason(t *testing.T) {
	tris := []geom.Triangle{equilateral(1), sliver(), equilateral(50)}
	kept, stats := Apply(tris, MaxEdge{Length: 20}, MinAngle{Degrees: 10})

	assert.Len(t, kept, 1)
	assert.Equal(t, 3, stats.Input)
	assert.Equal(t, 1, stats.Kept)
	assert.Equal(t, 1, stats.Removed["max_edge"])
	assert.Equal(t, 1, stats.Removed["min_angle"])
}

func TestApplyIsMonotoneAndIdempotent(t *testing.T) {
	tris := []geom.Triangle{equilateral(1), sliver(), equilateral(5), equilateral(50)}

	loose, _ := Apply(tris, MaxEdge{Length: 10})
	strict, _ := Apply(tris, MaxEdge{Length: 3})
	if len(strict) > len(loose) {
		t.Errorf("expected stricter threshold to keep fewer triangles, got %d > %d", len(strict), len(loose))
	}

	once, _ := Apply(tris, MaxEdge{Length: 10}, MinAngle{Degrees: 10})
	twice, _ := Apply(once, MaxEdge{Length: 10}, MinAngle{Degrees: 10})
	assert.Equal(t, once, twice)

	swapped, _ := Apply(tris, MinAngle{Degrees: 10}, MaxEdge{Length: 10})
	assert.Equal(t, once, swapped)
}
