package polyline

import "github.com/Faultbox/terracore/pkg/geom"

// Simplify thins p with a forward scan that keeps a vertex only when it
// lies at least spacing away from the last kept vertex. The first and
// last vertices are always kept, so closed polylines stay closed. A
// non-positive spacing returns p unchanged. Simplify is idempotent.
func Simplify(p geom.Polyline, spacing float64) geom.Polyline {
	n := len(p.Points)
	if spacing <= 0 || n <= 2 {
		return p
	}

	out := make([]geom.Point3D, 0, n)
	out = append(out, p.Points[0])
	last := p.Points[0]
	for _, pt := range p.Points[1 : n-1] {
		if pt.Distance(last) >= spacing {
			out = append(out, pt)
			last = pt
		}
	}
	out = append(out, p.Points[n-1])
	return geom.Polyline{Points: out, Closed: p.Closed}
}

// SimplifyAll applies Simplify to every polyline.
func SimplifyAll(lines []geom.Polyline, spacing float64) []geom.Polyline {
	out := make([]geom.Polyline, len(lines))
	for i, l := range lines {
		out[i] = Simplify(l, spacing)
	}
	return out
}
