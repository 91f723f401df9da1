package extrude

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/terracore/pkg/entity"
	"github.com/Faultbox/terracore/pkg/geom"
	"github.com/Faultbox/terracore/pkg/triangulate"
)

func square() []geom.Point3D {
	return []geom.Point3D{geom.P(0, 0, 0), geom.P(1, 0, 0), geom.P(1, 1, 0), geom.P(0, 1, 0)}
}

func TestExtrudeSquareCount(t *testing.T) {
	s, err := Extrude(square(), 2, 1, triangulate.DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, s.Triangles, 12)
	assert.Len(t, s.Normals, 12)
	assert.InDelta(t, 2.0, s.Volume, 1e-9)
}

func TestExtrudeOrientation(t *testing.T) {
	cases := []struct {
		name  string
		ring  []geom.Point3D
		depth float64
	}{
		{"ccw down", square(), -2},
		{"ccw up", square(), 2},
		{"cw down", geom.Reverse(square()), -2},
		{"cw up", geom.Reverse(square()), 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := Extrude(tc.ring, tc.depth, 2, triangulate.DefaultOptions())
			require.NoError(t, err)
			vol := geom.SignedVolume(s.Triangles)
			assert.GreaterOrEqual(t, vol, 0.0)
			assert.InDelta(t, 2.0, vol, 1e-9)
		})
	}
}

func TestExtrudeSteps(t *testing.T) {
	s, err := Extrude(square(), -3, 3, triangulate.DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, s.Triangles, 4+4*3*2)

	zero, err := Extrude(square(), 1, 0, triangulate.DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, zero.Triangles, 12)
}

func TestExtrudeDropsClosingVertex(t *testing.T) {
	ring := append(square(), geom.P(0, 0, 0))
	s, err := Extrude(ring, 1, 1, triangulate.DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, s.Triangles, 12)
}

func TestExtrudeFlat(t *testing.T) {
	s, err := Extrude(square(), 0, 4, triangulate.DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, s.Triangles, 2)
	assert.Zero(t, s.Volume)
}

func TestExtrudeConcaveSloped(t *testing.T) {
	ring := []geom.Point3D{
		geom.P(0, 0, 0), geom.P(2, 0, 1), geom.P(2, 1, 1), geom.P(1, 1, 0.5), geom.P(1, 2, 0.5), geom.P(0, 2, 0),
	}
	s, err := Extrude(ring, -1, 1, triangulate.DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, s.Triangles, 4*2+6*2)
	assert.InDelta(t, 3.0, s.Volume, 1e-9)
}

func TestExtrudeRejectsDegenerate(t *testing.T) {
	_, err := Extrude([]geom.Point3D{geom.P(0, 0, 0), geom.P(1, 0, 0), geom.P(0, 0, 0)}, 1, 1, triangulate.DefaultOptions())
	assert.ErrorIs(t, err, ErrTooFewVertices)

	_, err = Extrude([]geom.Point3D{geom.P(0, 0, 0), geom.P(1, 0, 0), geom.P(2, 0, 0)}, 1, 1, triangulate.DefaultOptions())
	assert.ErrorIs(t, err, triangulate.ErrNoTriangles)
}

func TestVertexNormals(t *testing.T) {
	s, err := Extrude(square(), -1, 1, triangulate.DefaultOptions())
	require.NoError(t, err)
	for _, ns := range s.Normals {
		for _, n := range ns {
			assert.InDelta(t, 1.0, n.Length(), 1e-9)
		}
	}

	flat := VertexNormals([]geom.Triangle{geom.T(geom.P(0, 0, 0), geom.P(1, 0, 0), geom.P(0, 1, 0))})
	assert.Equal(t, geom.P(0, 0, 1), flat[0][0])
}

func TestFootprint(t *testing.T) {
	poly, err := entity.NewPoly("l", "lot", square())
	require.NoError(t, err)
	ring, err := Footprint(poly, 1e-9)
	require.NoError(t, err)
	assert.Len(t, ring, 4)

	line, err := entity.NewLine("l", "fence", square())
	require.NoError(t, err)
	_, err = Footprint(line, 1e-9)
	assert.ErrorIs(t, err, ErrNotClosed)

	s, err := Extrude(ring, -1, 1, triangulate.DefaultOptions())
	require.NoError(t, err)
	surf := s.Surface("lot")
	assert.Equal(t, 12, surf.TriangleCount())
	assert.InDelta(t, 1.0, surf.Meta["volume"].(float64), 1e-9)
}
