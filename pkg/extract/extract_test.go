package extract

import (
	"errors"
	"testing"

	"github.com/Faultbox/terracore/pkg/geom"
)

var tol = geom.DefaultTolerances()

func TestNormalizeIndexedMissingZ(t *testing.T) {
	src := Indexed{
		Positions: [][]float64{{0, 0}, {1, 0}, {0, 1, 5}, {1, 1, 2}},
		Indices:   []int{0, 1, 2, 1, 3, 2},
	}
	tris, box, err := Normalize(src, tol)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(tris) != 2 {
		t.Fatalf("expected 2 triangles, got %d", len(tris))
	}
	if tris[0].V0.Z != 0 {
		t.Errorf("expected missing Z to default to 0, got %v", tris[0].V0.Z)
	}
	if box.Max.Z != 5 || box.Min.Z != 0 {
		t.Errorf("unexpected bbox %+v", box)
	}
}

func TestNormalizeDropsBadTriangles(t *testing.T) {
	src := Indexed{
		Positions: [][]float64{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {0, 1, 0}, {7}},
		Indices:   []int{0, 1, 2, 0, 1, 3, 0, 1, 9, 0, 1, 4},
	}
	tris, _, err := Normalize(src, tol)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(tris) != 1 {
		t.Errorf("expected only the valid triangle to survive, got %d", len(tris))
	}
}

func TestNormalizeEmpty(t *testing.T) {
	_, _, err := Normalize(Triangles{geom.T(geom.P(0, 0, 0), geom.P(1, 1, 1), geom.P(2, 2, 2))}, tol)
	if !errors.Is(err, ErrNoTriangles) {
		t.Errorf("expected ErrNoTriangles, got %v", err)
	}
	_, _, err = Normalize(nil, tol)
	if !errors.Is(err, ErrNoTriangles) {
		t.Errorf("expected ErrNoTriangles for nil source, got %v", err)
	}
}

func TestNormalizeFlatBuffer(t *testing.T) {
	src := Flat{Positions: []float64{0, 0, 1, 0, 0, 1, 5, 5}, Stride: 2}
	tris, _, err := Normalize(src, tol)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(tris) != 1 {
		t.Errorf("expected 1 triangle from a partial buffer, got %d", len(tris))
	}
}

func TestOrientUp(t *testing.T) {
	down := geom.T(geom.P(0, 0, 0), geom.P(0, 1, 0), geom.P(1, 0, 0))
	tris, _, err := Normalize(Triangles{down}, tol)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if tris[0].Normal().Z <= 0 {
		t.Errorf("expected triangle to face up, normal %v", tris[0].Normal())
	}
}

func TestExtractArrays(t *testing.T) {
	s, err := Extract("ground", Arrays{{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}}, tol)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if s.Name != "ground" || s.TriangleCount() != 1 || !s.Visible {
		t.Errorf("unexpected surface %+v", s)
	}
}
