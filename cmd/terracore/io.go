package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/Faultbox/terracore/internal/workspace"
	"github.com/Faultbox/terracore/pkg/extract"
	"github.com/Faultbox/terracore/pkg/geom"
	"github.com/Faultbox/terracore/pkg/shroud"
)

var errNoGeometry = errors.New("input has neither indices nor a flat position buffer")

// pointsDoc is the input of triangulate and extrude.
type pointsDoc struct {
	Name        string      `json:"name"`
	Points      [][]float64 `json:"points"`
	Constraints [][2]int    `json:"constraints,omitempty"`
}

// surfaceDoc is both the surface input and output format. On input either
// Indices or Flat must be set.
type surfaceDoc struct {
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name"`
	Positions [][]float64    `json:"positions,omitempty"`
	Indices   []int          `json:"indices,omitempty"`
	Flat      []float64      `json:"flat,omitempty"`
	Stride    int            `json:"stride,omitempty"`
	BBox      *[2][3]float64 `json:"bbox,omitempty"`
	Visible   bool           `json:"visible"`
	Meta      map[string]any `json:"meta,omitempty"`
}

// sourcesDoc is the shroud input.
type sourcesDoc struct {
	Name    string         `json:"name"`
	Sources []sourceDoc    `json:"sources"`
	Params  *shroud.Params `json:"params,omitempty"`
}

type sourceDoc struct {
	Position    []float64 `json:"position"`
	MaxDistance float64   `json:"max_distance"`
	MaxVelocity float64   `json:"max_velocity"`
}

// Output formats for drawing layers.
const (
	formatGeoJSON = "geojson"
	formatRecords = "records"
)

// layerDoc renders a drawing layer as a GeoJSON feature collection or as
// entity records.
func layerDoc(ws *workspace.Workspace, layerID, format string) (any, error) {
	switch format {
	case "", formatGeoJSON:
		return ws.Export(layerID), nil
	case formatRecords:
		return ws.Records(layerID), nil
	default:
		return nil, fmt.Errorf("unknown format %q, want %s or %s", format, formatGeoJSON, formatRecords)
	}
}

func writeLayer(cmd *cobra.Command, layerID string) error {
	format, _ := cmd.Flags().GetString("format")
	doc, err := layerDoc(service.Workspace(), layerID, format)
	if err != nil {
		return err
	}
	return writeJSON(doc)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func writeJSON(v any) error {
	f, closeFn, err := outputFile()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func toPoints(raw [][]float64) ([]geom.Point3D, error) {
	pts := make([]geom.Point3D, len(raw))
	for i, c := range raw {
		switch len(c) {
		case 2:
			pts[i] = geom.P(c[0], c[1], 0)
		case 3:
			pts[i] = geom.P(c[0], c[1], c[2])
		default:
			return nil, fmt.Errorf("point %d: expected 2 or 3 coordinates, got %d", i, len(c))
		}
	}
	return pts, nil
}

func (d surfaceDoc) source() (extract.Source, error) {
	switch {
	case len(d.Indices) > 0:
		return extract.Indexed{Positions: d.Positions, Indices: d.Indices}, nil
	case len(d.Flat) > 0:
		return extract.Flat{Positions: d.Flat, Stride: d.Stride}, nil
	default:
		return nil, errNoGeometry
	}
}

// loadSurface reads a surface file and imports it into the workspace.
func loadSurface(path string) (*geom.Surface, error) {
	var doc surfaceDoc
	if err := readJSON(path, &doc); err != nil {
		return nil, err
	}
	src, err := doc.source()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	name := doc.Name
	if name == "" {
		name = path
	}
	return service.Import(name, src)
}

// newSurfaceDoc converts a surface to the indexed output form, sharing
// vertices between triangles.
func newSurfaceDoc(s *geom.Surface) surfaceDoc {
	doc := surfaceDoc{ID: s.ID, Name: s.Name, Visible: s.Visible, Meta: s.Meta}
	index := make(map[geom.Point3D]int)
	for _, t := range s.Triangles {
		for _, v := range t.Vertices() {
			i, ok := index[v]
			if !ok {
				i = len(doc.Positions)
				index[v] = i
				doc.Positions = append(doc.Positions, []float64{v.X, v.Y, v.Z})
			}
			doc.Indices = append(doc.Indices, i)
		}
	}
	if !s.IsEmpty() {
		doc.BBox = &[2][3]float64{
			{s.BBox.Min.X, s.BBox.Min.Y, s.BBox.Min.Z},
			{s.BBox.Max.X, s.BBox.Max.Y, s.BBox.Max.Z},
		}
	}
	return doc
}

// writeSurface writes the stored surface with the given ID.
func writeSurface(id string) error {
	s, err := service.Workspace().Surface(id)
	if err != nil {
		return err
	}
	return writeJSON(newSurfaceDoc(s))
}
