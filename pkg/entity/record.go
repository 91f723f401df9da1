package entity

import (
	"fmt"

	"github.com/Faultbox/terracore/pkg/geom"
)

// Vertex is one element of a record's data list.
type Vertex struct {
	Position [3]float64 `json:"position"`
	Style    Style      `json:"style"`
	Seq      int        `json:"seq"`
	Closed   bool       `json:"closed,omitempty"`
}

// Record is the wire form of an entity.
type Record struct {
	ID         string   `json:"id"`
	EntityType Kind     `json:"entityType"`
	LayerID    string   `json:"layerId"`
	Name       string   `json:"name,omitempty"`
	Text       string   `json:"text,omitempty"`
	Data       []Vertex `json:"data"`
}

// ToRecord converts e to its wire form. Polygon vertices carry
// Closed=true.
func ToRecord(e Entity) Record {
	h := e.Head()
	r := Record{ID: h.ID, EntityType: e.Kind(), LayerID: h.LayerID, Name: h.Name}
	if t, ok := e.(*Text); ok {
		r.Text = t.Text
	}
	_, closed := e.(*Poly)
	for _, p := range e.Vertices() {
		r.Data = append(r.Data, Vertex{
			Position: [3]float64{p.X, p.Y, p.Z},
			Style:    h.Style,
			Seq:      h.Seq,
			Closed:   closed,
		})
	}
	return r
}

// FromRecord rebuilds an entity from its wire form.
func FromRecord(r Record) (Entity, error) {
	pts := make([]geom.Point3D, len(r.Data))
	for i, v := range r.Data {
		pts[i] = geom.P(v.Position[0], v.Position[1], v.Position[2])
	}
	h := Header{ID: r.ID, LayerID: r.LayerID, Name: r.Name}
	if len(r.Data) > 0 {
		h.Style = r.Data[0].Style
		h.Seq = r.Data[0].Seq
	}

	var e Entity
	switch r.EntityType {
	case KindPoint, KindText:
		if len(pts) == 0 {
			return nil, ErrEmpty
		}
		if r.EntityType == KindText {
			e = &Text{Header: h, Position: pts[0], Text: r.Text}
		} else {
			e = &Point{Header: h, Position: pts[0]}
		}
	case KindLine:
		e = &Line{Header: h, Points: pts}
	case KindPoly:
		e = &Poly{Header: h, Points: pts}
	default:
		return nil, fmt.Errorf("unknown entity type %q", r.EntityType)
	}
	if len(pts) == 0 {
		return nil, ErrEmpty
	}
	return Demote(e), nil
}
