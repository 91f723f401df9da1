// Package entity defines the drawing entities produced by the geometry
// operations: points, lines, polygons and text labels.
//
// Entity is a closed sum type. Constructors demote under-sized shapes the
// way a drawing editor would: a polygon with fewer than three distinct
// vertices becomes a line, a line with fewer than two becomes a point.
package entity

import (
	"errors"

	"github.com/google/uuid"

	"github.com/Faultbox/terracore/pkg/geom"
)

// ErrEmpty is returned when an entity has no vertices at all.
var ErrEmpty = errors.New("entity has no vertices")

// Kind names an entity variant on the wire.
type Kind string

const (
	KindPoint Kind = "point"
	KindLine  Kind = "line"
	KindPoly  Kind = "poly"
	KindText  Kind = "text"
)

// Style is the display style shared by all variants.
type Style struct {
	Color string  `json:"color,omitempty" yaml:"color,omitempty"`
	Width float64 `json:"width,omitempty" yaml:"width,omitempty"`
}

// Header carries the fields common to every entity.
type Header struct {
	ID      string
	LayerID string
	Name    string
	Style   Style
	// Seq orders entities produced by one operation, e.g. the lines of a
	// contour level.
	Seq int
}

func newHeader(layerID, name string) Header {
	return Header{ID: uuid.NewString(), LayerID: layerID, Name: name}
}

// Entity is implemented by Point, Line, Poly and Text only.
type Entity interface {
	Kind() Kind
	Head() *Header
	// Vertices returns the entity's geometry; Poly rings are not closed.
	Vertices() []geom.Point3D
	isEntity()
}

// Point is a single marker.
type Point struct {
	Header
	Position geom.Point3D
}

// Line is an open polyline.
type Line struct {
	Header
	Points []geom.Point3D
}

// Poly is a closed ring stored without its duplicate closing vertex.
type Poly struct {
	Header
	Points []geom.Point3D
}

// Text is a label anchored at a position.
type Text struct {
	Header
	Position geom.Point3D
	Text     string
}

func (*Point) Kind() Kind { return KindPoint }
func (*Line) Kind() Kind  { return KindLine }
func (*Poly) Kind() Kind  { return KindPoly }
func (*Text) Kind() Kind  { return KindText }

func (e *Point) Head() *Header { return &e.Header }
func (e *Line) Head() *Header  { return &e.Header }
func (e *Poly) Head() *Header  { return &e.Header }
func (e *Text) Head() *Header  { return &e.Header }

func (e *Point) Vertices() []geom.Point3D { return []geom.Point3D{e.Position} }
func (e *Line) Vertices() []geom.Point3D  { return e.Points }
func (e *Poly) Vertices() []geom.Point3D  { return e.Points }
func (e *Text) Vertices() []geom.Point3D  { return []geom.Point3D{e.Position} }

func (*Point) isEntity() {}
func (*Line) isEntity()  {}
func (*Poly) isEntity()  {}
func (*Text) isEntity()  {}

// NewPoint creates a point entity.
func NewPoint(layerID, name string, p geom.Point3D) *Point {
	return &Point{Header: newHeader(layerID, name), Position: p}
}

// NewText creates a text label.
func NewText(layerID, text string, p geom.Point3D) *Text {
	return &Text{Header: newHeader(layerID, text), Position: p, Text: text}
}

// NewLine creates a line, or a point when pts has a single vertex.
func NewLine(layerID, name string, pts []geom.Point3D) (Entity, error) {
	if len(pts) == 0 {
		return nil, ErrEmpty
	}
	return Demote(&Line{Header: newHeader(layerID, name), Points: pts}), nil
}

// NewPoly creates a polygon from a ring, dropping a duplicate closing
// vertex. Rings with fewer than three vertices are demoted.
func NewPoly(layerID, name string, ring []geom.Point3D) (Entity, error) {
	if len(ring) == 0 {
		return nil, ErrEmpty
	}
	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		ring = ring[:len(ring)-1]
	}
	return Demote(&Poly{Header: newHeader(layerID, name), Points: ring}), nil
}

// Demote converts e to the richest variant its vertex count supports.
func Demote(e Entity) Entity {
	switch v := e.(type) {
	case *Poly:
		switch {
		case len(v.Points) >= 3:
			return v
		case len(v.Points) == 2:
			return &Line{Header: v.Header, Points: v.Points}
		case len(v.Points) == 1:
			return &Point{Header: v.Header, Position: v.Points[0]}
		}
	case *Line:
		if len(v.Points) == 1 {
			return &Point{Header: v.Header, Position: v.Points[0]}
		}
	}
	return e
}

// ToPoint converts e to a point at its first vertex.
func ToPoint(e Entity) *Point {
	if p, ok := e.(*Point); ok {
		return p
	}
	var pos geom.Point3D
	if vs := e.Vertices(); len(vs) > 0 {
		pos = vs[0]
	}
	return &Point{Header: *e.Head(), Position: pos}
}

// ToLine converts e to an open line. Polygons are opened by repeating
// their first vertex at the end.
func ToLine(e Entity) *Line {
	switch v := e.(type) {
	case *Line:
		return v
	case *Poly:
		if len(v.Points) == 0 {
			return &Line{Header: v.Header}
		}
		pts := append(append([]geom.Point3D(nil), v.Points...), v.Points[0])
		return &Line{Header: v.Header, Points: pts}
	default:
		vs := e.Vertices()
		return &Line{Header: *e.Head(), Points: append([]geom.Point3D(nil), vs...)}
	}
}

// FromPolylines converts polylines to entities on layerID. Closed
// polylines become polygons when asPoly is set; everything else becomes a
// line. Entities are numbered in order via Seq.
func FromPolylines(lines []geom.Polyline, layerID, name string, asPoly bool) []Entity {
	out := make([]Entity, 0, len(lines))
	for _, l := range lines {
		var (
			e   Entity
			err error
		)
		if asPoly && l.Closed {
			// Closed means the last point repeats the first within the
			// producer's tolerance, not necessarily exactly.
			e, err = NewPoly(layerID, name, l.Points[:len(l.Points)-1])
		} else {
			e, err = NewLine(layerID, name, l.Points)
		}
		if err != nil {
			continue
		}
		e.Head().Seq = len(out) + 1
		out = append(out, e)
	}
	return out
}
