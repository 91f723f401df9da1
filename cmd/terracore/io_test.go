package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/paulmach/orb/geojson"

	"github.com/Faultbox/terracore/internal/config"
	"github.com/Faultbox/terracore/internal/workspace"
	"github.com/Faultbox/terracore/pkg/entity"
	"github.com/Faultbox/terracore/pkg/extract"
	"github.com/Faultbox/terracore/pkg/geom"
)

func TestToPoints(t *testing.T) {
	pts, err := toPoints([][]float64{{1, 2}, {3, 4, 5}})
	if err != nil {
		t.Fatalf("toPoints: %v", err)
	}
	if pts[0] != geom.P(1, 2, 0) || pts[1] != geom.P(3, 4, 5) {
		t.Errorf("unexpected points %v", pts)
	}
	if _, err := toPoints([][]float64{{1}}); err == nil {
		t.Error("expected error for a one-component point")
	}
}

func TestSurfaceDocSource(t *testing.T) {
	src, err := surfaceDoc{Positions: [][]float64{{0, 0}, {1, 0}, {0, 1}}, Indices: []int{0, 1, 2}}.source()
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	if _, ok := src.(extract.Indexed); !ok {
		t.Errorf("expected Indexed, got %T", src)
	}

	src, err = surfaceDoc{Flat: []float64{0, 0, 1, 0, 0, 1}, Stride: 2}.source()
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	if _, ok := src.(extract.Flat); !ok {
		t.Errorf("expected Flat, got %T", src)
	}

	if _, err := (surfaceDoc{}).source(); !errors.Is(err, errNoGeometry) {
		t.Errorf("expected errNoGeometry, got %v", err)
	}
}

func TestNewSurfaceDocSharesVertices(t *testing.T) {
	a, b, c, d := geom.P(0, 0, 0), geom.P(1, 0, 0), geom.P(1, 1, 1), geom.P(0, 1, 1)
	s := geom.NewSurface("quad", []geom.Triangle{geom.T(a, b, c), geom.T(a, c, d)})

	doc := newSurfaceDoc(s)
	if len(doc.Positions) != 4 {
		t.Errorf("expected 4 shared positions, got %d", len(doc.Positions))
	}
	if len(doc.Indices) != 6 {
		t.Errorf("expected 6 indices, got %d", len(doc.Indices))
	}
	if doc.BBox == nil || doc.BBox[1][2] != 1 {
		t.Errorf("unexpected bbox %v", doc.BBox)
	}

	// The output form reads back as the same surface.
	src, err := doc.source()
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	tris, _, err := extract.Normalize(src, geom.DefaultTolerances())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(tris) != 2 {
		t.Errorf("expected 2 triangles, got %d", len(tris))
	}
}

func TestReadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.json")
	data := `{"name": "pad", "points": [[0, 0, 1], [2, 0, 1], [2, 2, 1]], "constraints": [[0, 1]]}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var doc pointsDoc
	if err := readJSON(path, &doc); err != nil {
		t.Fatalf("readJSON: %v", err)
	}
	if doc.Name != "pad" || len(doc.Points) != 3 || doc.Constraints[0] != [2]int{0, 1} {
		t.Errorf("unexpected doc %+v", doc)
	}

	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := readJSON(path, &doc); err == nil {
		t.Error("expected a parse error")
	}
}

func TestLayerDoc(t *testing.T) {
	ws := workspace.New()
	layer := ws.EnsureLayer("contours")
	line, err := entity.NewLine("", "contour 1.00 #1", []geom.Point3D{geom.P(0, 1, 1), geom.P(2, 1, 1)})
	if err != nil {
		t.Fatalf("NewLine: %v", err)
	}
	if err := ws.AddEntities(layer.ID, line); err != nil {
		t.Fatalf("AddEntities: %v", err)
	}

	doc, err := layerDoc(ws, layer.ID, formatGeoJSON)
	if err != nil {
		t.Fatalf("layerDoc: %v", err)
	}
	if fc, ok := doc.(*geojson.FeatureCollection); !ok || len(fc.Features) != 1 {
		t.Errorf("expected a feature collection with 1 feature, got %T", doc)
	}

	doc, err = layerDoc(ws, layer.ID, formatRecords)
	if err != nil {
		t.Fatalf("layerDoc: %v", err)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var recs []entity.Record
	if err := json.Unmarshal(data, &recs); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(recs) != 1 || recs[0].EntityType != entity.KindLine || len(recs[0].Data) != 2 {
		t.Errorf("unexpected records %+v", recs)
	}

	if _, err := layerDoc(ws, layer.ID, "svg"); err == nil {
		t.Error("expected error for an unknown format")
	}
}

func TestInvalidConfigStopsCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("contour:\n  interval: -1\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	rootCmd.SetArgs([]string{"--config", path, "contour", "missing.json"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	if !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("expected config.ErrInvalid, got %v", err)
	}
	if service != nil {
		t.Error("expected no service to start with an invalid config")
	}
}
