package shroud

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/terracore/pkg/geom"
)

func params() Params {
	p := DefaultParams()
	p.Iterations = 20
	p.Gravity = 10
	return p
}

func TestAltitudeAndRange(t *testing.T) {
	assert.InDelta(t, 5.0, Altitude(10, 10, 0), 1e-12)
	assert.InDelta(t, 0.0, Altitude(10, 10, 10), 1e-12)
	assert.InDelta(t, 10.0, Range(10, 10, 0), 1e-12)
	assert.InDelta(t, 0.0, Range(10, 10, 5), 1e-12)

	far := Range(10, 10, -3)
	assert.InDelta(t, -3.0, Altitude(10, 10, far), 1e-9)
}

func TestSingleSourcePeak(t *testing.T) {
	src := []Source{{Position: geom.P(0, 0, 0), MaxVelocity: 10}}
	g, err := BuildGrid(context.Background(), src, params(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, g.Spacing)
	assert.Equal(t, 21, g.Cols)
	assert.Equal(t, 21, g.Rows)

	z, ok := g.ElevationAt(0, 0)
	require.True(t, ok)
	want := 10.0 * 10.0 / (2 * 10.0)
	assert.InDelta(t, want, z, g.Spacing)

	_, ok = g.ElevationAt(-9.9, -9.9)
	assert.False(t, ok, "corner lies outside the envelope")
	_, ok = g.ElevationAt(100, 0)
	assert.False(t, ok)
}

func TestSourceElevationOffsets(t *testing.T) {
	src := []Source{{Position: geom.P(3, 4, 100), MaxVelocity: 10}}
	g, err := BuildGrid(context.Background(), src, params(), nil)
	require.NoError(t, err)

	z, ok := g.ElevationAt(3, 4)
	require.True(t, ok)
	assert.InDelta(t, 105.0, z, 1e-9)
}

func TestGenerate(t *testing.T) {
	src := []Source{
		{Position: geom.P(0, 0, 0), MaxVelocity: 10},
		{Position: geom.P(8, 0, 2), MaxVelocity: 8},
	}
	var last float64
	s, err := Generate(context.Background(), src, params(), func(p float64, _ string) {
		assert.GreaterOrEqual(t, p, last)
		last = p
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, last)
	require.NotEmpty(t, s.Triangles)
	assert.Equal(t, "shroud", s.Meta["kind"])
	assert.Equal(t, 1.0, s.Meta["spacing"])

	for _, tri := range s.Triangles {
		assert.Greater(t, tri.SignedArea2D(), 0.0)
		assert.LessOrEqual(t, tri.MaxZ(), 5.2+1e-9)
	}
}

func TestEndAngleCulls(t *testing.T) {
	src := []Source{{Position: geom.P(0, 0, 0), MaxVelocity: 10}}
	p := params()
	all, err := Generate(context.Background(), src, p, nil)
	require.NoError(t, err)

	p.EndAngleDeg = 30
	steep, err := Generate(context.Background(), src, p, nil)
	require.NoError(t, err)
	assert.Less(t, steep.TriangleCount(), all.TriangleCount())
	for _, tri := range steep.Triangles {
		angle := math.Acos(tri.UnitNormal().Z) * 180 / math.Pi
		assert.LessOrEqual(t, angle, 30.0+1e-9)
	}
}

func TestCollarExtendsGrid(t *testing.T) {
	src := []Source{{Position: geom.P(0, 0, 0), MaxVelocity: 10}}
	p := params()
	p.ExtendBelowCollar = 5
	g, err := BuildGrid(context.Background(), src, p, nil)
	require.NoError(t, err)

	r := Range(10, 10, -5)
	assert.Greater(t, r, 10.0)
	assert.InDelta(t, -r, g.Origin.X, 1e-9)

	z, ok := g.ElevationAt(10.5, 0)
	require.True(t, ok)
	assert.Less(t, z, 0.0)
}

func TestMaxCellsScalesSpacing(t *testing.T) {
	src := []Source{{Position: geom.P(0, 0, 0), MaxVelocity: 10}}
	p := params()
	p.Iterations = 2000
	p.MaxCells = 100
	g, err := BuildGrid(context.Background(), src, p, nil)
	require.NoError(t, err)
	assert.LessOrEqual(t, g.Cols*g.Rows, 100)
	assert.Greater(t, g.Spacing, 10.0/1000)
}

func TestInvalidInput(t *testing.T) {
	_, err := Generate(context.Background(), nil, params(), nil)
	assert.ErrorIs(t, err, ErrInvalidSource)

	_, err = Generate(context.Background(), []Source{{MaxVelocity: 0}}, params(), nil)
	assert.ErrorIs(t, err, ErrInvalidSource)

	p := params()
	p.Gravity = 0
	_, err = Generate(context.Background(), []Source{{MaxVelocity: 1}}, p, nil)
	assert.ErrorIs(t, err, ErrInvalidParams)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Generate(ctx, []Source{{MaxVelocity: 10}}, params(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTrianglesKeepHalfQuads(t *testing.T) {
	nan := math.NaN()
	g := &Grid{Spacing: 1, Cols: 2, Rows: 2}

	g.Z = []float64{1, 1, 1, nan}
	tris := g.Triangles(0)
	require.Len(t, tris, 1, "missing p11 splits along the other diagonal")
	assert.Equal(t, geom.T(geom.P(0, 0, 1), geom.P(1, 0, 1), geom.P(0, 1, 1)), tris[0])

	g.Z = []float64{1, nan, 1, 1}
	tris = g.Triangles(0)
	require.Len(t, tris, 1)
	assert.Equal(t, geom.T(geom.P(0, 0, 1), geom.P(1, 1, 1), geom.P(0, 1, 1)), tris[0])

	g.Z = []float64{1, nan, nan, 1}
	assert.Empty(t, g.Triangles(0))

	g.Z = []float64{1, 1, 1, 1}
	tris = g.Triangles(0)
	require.Len(t, tris, 2)
	for _, tri := range tris {
		assert.Greater(t, tri.SignedArea2D(), 0.0)
	}
}

func TestOddIterationsSpacing(t *testing.T) {
	src := []Source{{Position: geom.P(0, 0, 0), MaxVelocity: 10}}
	p := params()
	p.Iterations = 41
	g, err := BuildGrid(context.Background(), src, p, nil)
	require.NoError(t, err)
	assert.InDelta(t, 10/20.5, g.Spacing, 1e-12)
}
