package entity

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/Faultbox/terracore/pkg/geom"
)

// Feature converts e to a GeoJSON feature on the XY plane. Elevations go
// to the "z" property: a single value for points and text, a list
// otherwise.
func Feature(e Entity) *geojson.Feature {
	h := e.Head()
	vs := e.Vertices()

	var g orb.Geometry
	switch v := e.(type) {
	case *Point:
		g = toOrb(v.Position)
	case *Text:
		g = toOrb(v.Position)
	case *Line:
		g = lineString(vs)
	case *Poly:
		ring := orb.Ring(lineString(vs))
		if len(ring) > 0 {
			ring = append(ring, ring[0])
		}
		g = orb.Polygon{ring}
	}

	f := geojson.NewFeature(g)
	f.ID = h.ID
	f.Properties["kind"] = string(e.Kind())
	f.Properties["layerId"] = h.LayerID
	f.Properties["seq"] = h.Seq
	if h.Name != "" {
		f.Properties["name"] = h.Name
	}
	if h.Style.Color != "" {
		f.Properties["color"] = h.Style.Color
	}
	if t, ok := e.(*Text); ok {
		f.Properties["text"] = t.Text
	}
	if len(vs) == 1 {
		f.Properties["z"] = vs[0].Z
	} else {
		zs := make([]float64, len(vs))
		for i, p := range vs {
			zs[i] = p.Z
		}
		f.Properties["z"] = zs
	}
	return f
}

// FeatureCollection converts entities to a GeoJSON feature collection.
func FeatureCollection(entities []Entity) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, e := range entities {
		fc.Append(Feature(e))
	}
	return fc
}

func toOrb(p geom.Point3D) orb.Point {
	return orb.Point{p.X, p.Y}
}

func lineString(pts []geom.Point3D) orb.LineString {
	ls := make(orb.LineString, len(pts))
	for i, p := range pts {
		ls[i] = toOrb(p)
	}
	return ls
}
