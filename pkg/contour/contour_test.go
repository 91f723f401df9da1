package contour

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/terracore/pkg/entity"
	"github.com/Faultbox/terracore/pkg/geom"
	"github.com/Faultbox/terracore/pkg/polyline"
)

func opts(interval float64) Options {
	return Options{Interval: interval, Tolerances: geom.DefaultTolerances()}
}

func pyramid() *geom.Surface {
	apex := geom.P(5, 5, 10)
	a, b, c, d := geom.P(0, 0, 0), geom.P(10, 0, 0), geom.P(10, 10, 0), geom.P(0, 10, 0)
	return geom.NewSurface("pyramid", []geom.Triangle{
		geom.T(a, b, apex), geom.T(b, c, apex), geom.T(c, d, apex), geom.T(d, a, apex),
	})
}

func TestSliceTriangle(t *testing.T) {
	tri := geom.T(geom.P(0, 0, 0), geom.P(10, 0, 0), geom.P(0, 10, 10))
	tol := geom.DefaultTolerances()

	seg, ok := SliceTriangle(tri, 5, tol)
	require.True(t, ok)
	ends := []geom.Point3D{seg.P0, seg.P1}
	assert.Condition(t, func() bool {
		return (ends[0].Near(geom.P(0, 5, 5), 1e-9) && ends[1].Near(geom.P(5, 5, 5), 1e-9)) ||
			(ends[1].Near(geom.P(0, 5, 5), 1e-9) && ends[0].Near(geom.P(5, 5, 5), 1e-9))
	}, "unexpected segment %+v", seg)

	_, ok = SliceTriangle(tri, 0, tol)
	assert.False(t, ok)
	_, ok = SliceTriangle(tri, 10.1, tol)
	assert.False(t, ok)
}

func TestSliceSingleTriangleSurface(t *testing.T) {
	s := geom.NewSurface("t", []geom.Triangle{geom.T(geom.P(0, 0, 0), geom.P(10, 0, 0), geom.P(0, 10, 10))})

	levels, err := Slice(context.Background(), s, opts(5), nil)
	require.NoError(t, err)
	require.Len(t, levels, 1)
	assert.Equal(t, 5.0, levels[0].Elevation)
	require.Len(t, levels[0].Lines, 1)
	assert.InDelta(t, 5.0, levels[0].Lines[0].Length(), 1e-9)
}

func TestSlicePyramid(t *testing.T) {
	var calls []float64
	levels, err := Slice(context.Background(), pyramid(), opts(5), func(p float64, _ string) {
		calls = append(calls, p)
	})
	require.NoError(t, err)
	require.Len(t, levels, 1)

	lvl := levels[0]
	assert.Equal(t, 5.0, lvl.Elevation)
	require.Len(t, lvl.Lines, 1)
	assert.True(t, lvl.Lines[0].Closed)
	assert.InDelta(t, 20.0, lvl.Lines[0].Length(), 1e-9)
	for _, p := range lvl.Lines[0].Points {
		assert.Equal(t, 5.0, p.Z)
	}
	assert.Equal(t, []float64{100.0 / 3, 200.0 / 3, 100}, calls)
}

func TestSliceVertexRowOnLevel(t *testing.T) {
	var tris []geom.Triangle
	for y := range 2 {
		for x := range 2 {
			p00 := geom.P(float64(x), float64(y), float64(y))
			p10 := geom.P(float64(x+1), float64(y), float64(y))
			p11 := geom.P(float64(x+1), float64(y+1), float64(y+1))
			p01 := geom.P(float64(x), float64(y+1), float64(y+1))
			tris = append(tris, geom.T(p00, p10, p11), geom.T(p00, p11, p01))
		}
	}
	s := geom.NewSurface("slope", tris)

	o := opts(1)
	lo, hi := 1.0, 1.0
	o.Min, o.Max = &lo, &hi
	levels, err := Slice(context.Background(), s, o, nil)
	require.NoError(t, err)
	require.Len(t, levels, 1)
	require.Len(t, levels[0].Lines, 1)
	assert.InDelta(t, 2.0, polyline.Length(levels[0].Lines), 1e-9)
	assert.False(t, levels[0].Lines[0].Closed)
}

func TestSliceRidgeOnLevel(t *testing.T) {
	r0, r1 := geom.P(0, 1, 1), geom.P(2, 1, 1)
	s := geom.NewSurface("roof", []geom.Triangle{
		geom.T(geom.P(0, 0, 0), geom.P(2, 0, 0), r1), geom.T(geom.P(0, 0, 0), r1, r0),
		geom.T(r0, r1, geom.P(2, 2, 0)), geom.T(r0, geom.P(2, 2, 0), geom.P(0, 2, 0)),
	})

	o := opts(1)
	lo, hi := 1.0, 1.0
	o.Min, o.Max = &lo, &hi
	levels, err := Slice(context.Background(), s, o, nil)
	require.NoError(t, err)
	require.Len(t, levels, 1)
	require.Len(t, levels[0].Lines, 1)
	line := levels[0].Lines[0]
	assert.Len(t, line.Points, 2)
	assert.False(t, line.Closed)
	assert.InDelta(t, 2.0, line.Length(), 1e-9)
}

func TestLevels(t *testing.T) {
	lv, err := Levels(101, 120, 5, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{105, 110, 115, 120}, lv)

	lv, err = Levels(0.3, 0.3, 0.1, 0)
	require.NoError(t, err)
	require.Len(t, lv, 1)
	assert.InDelta(t, 0.3, lv[0], 1e-12)

	lv, err = Levels(1, 2, 5, 0)
	require.NoError(t, err)
	assert.Empty(t, lv)
}

func TestTooManyLevelsFailsBeforeScan(t *testing.T) {
	called := false
	_, err := Slice(context.Background(), pyramid(), opts(0.001), func(float64, string) { called = true })
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooManyLevels))
	assert.Contains(t, err.Error(), "widen the interval")
	assert.False(t, called)

	o := opts(1)
	o.MaxLevels = 5
	_, err = Slice(context.Background(), pyramid(), o, nil)
	assert.ErrorIs(t, err, ErrTooManyLevels)
}

func TestSliceInvalidInput(t *testing.T) {
	_, err := Slice(context.Background(), pyramid(), opts(0), nil)
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = Slice(context.Background(), geom.NewSurface("empty", nil), opts(1), nil)
	assert.ErrorIs(t, err, ErrEmptySurface)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Slice(ctx, pyramid(), opts(1), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestToEntities(t *testing.T) {
	levels, err := Slice(context.Background(), pyramid(), opts(2.5), nil)
	require.NoError(t, err)
	require.Len(t, levels, 3)

	es := ToEntities(levels, "contours", true)
	require.Len(t, es, 3)
	for _, e := range es {
		assert.Equal(t, entity.KindPoly, e.Kind())
		assert.Equal(t, "contours", e.Head().LayerID)
	}
	assert.Equal(t, "contour 2.50 #1", es[0].Head().Name)
	assert.Equal(t, "contour 7.50 #1", es[2].Head().Name)

	open := ToEntities(levels, "contours", false)
	assert.Equal(t, entity.KindLine, open[0].Kind())
}
