// Package polyline reassembles unordered segment soups into ordered
// polylines and thins them by vertex spacing.
package polyline

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/Faultbox/terracore/pkg/geom"
)

type cell [3]int64

// endpointIndex buckets segment endpoints on a grid of tol-sized cells so
// that neighbour lookups stay local.
type endpointIndex struct {
	size    float64
	buckets map[cell][]int
}

func newEndpointIndex(segs []geom.Segment, tol float64) *endpointIndex {
	size := tol
	if size <= 0 {
		size = 1e-9
	}
	idx := &endpointIndex{size: size, buckets: make(map[cell][]int, 2*len(segs))}
	for i, s := range segs {
		idx.add(s.P0, i)
		if k := idx.key(s.P1); k != idx.key(s.P0) {
			idx.buckets[k] = append(idx.buckets[k], i)
		}
	}
	return idx
}

func (x *endpointIndex) key(p geom.Point3D) cell {
	return cell{
		int64(math.Floor(p.X / x.size)),
		int64(math.Floor(p.Y / x.size)),
		int64(math.Floor(p.Z / x.size)),
	}
}

func (x *endpointIndex) add(p geom.Point3D, i int) {
	k := x.key(p)
	x.buckets[k] = append(x.buckets[k], i)
}

// match returns the lowest-indexed unused segment with an endpoint within
// tol of p, and that segment's far endpoint.
func (x *endpointIndex) match(segs []geom.Segment, used []bool, p geom.Point3D, tol float64) (int, geom.Point3D, bool) {
	k := x.key(p)
	best := -1
	var far geom.Point3D
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				for _, i := range x.buckets[cell{k[0] + dx, k[1] + dy, k[2] + dz}] {
					if used[i] || (best >= 0 && i >= best) {
						continue
					}
					s := segs[i]
					switch {
					case s.P0.Near(p, tol):
						best, far = i, s.P1
					case s.P1.Near(p, tol):
						best, far = i, s.P0
					}
				}
			}
		}
	}
	return best, far, best >= 0
}

// Chain links segments sharing endpoints within tol into polylines. Each
// chain starts at the first unconsumed segment in input order and grows
// its tail, then its head, taking the lowest-indexed matching segment at
// every step; at branch points the outcome therefore depends on input
// order. A chain whose end reaches its start again is closed and keeps
// the duplicate closing point. Isolated segments become 2-point
// polylines.
func Chain(segs []geom.Segment, tol float64) []geom.Polyline {
	if len(segs) == 0 {
		return nil
	}
	idx := newEndpointIndex(segs, tol)
	used := make([]bool, len(segs))

	var out []geom.Polyline
	for i, s := range segs {
		if used[i] {
			continue
		}
		used[i] = true
		pts := []geom.Point3D{s.P0, s.P1}
		closed := false

		for !closed {
			j, far, ok := idx.match(segs, used, pts[len(pts)-1], tol)
			if !ok {
				break
			}
			used[j] = true
			pts = append(pts, far)
			closed = len(pts) > 3 && far.Near(pts[0], tol)
		}

		for !closed {
			j, far, ok := idx.match(segs, used, pts[0], tol)
			if !ok {
				break
			}
			used[j] = true
			pts = append([]geom.Point3D{far}, pts...)
			closed = len(pts) > 3 && far.Near(pts[len(pts)-1], tol)
		}

		out = append(out, geom.Polyline{Points: pts, Closed: closed})
	}
	return out
}

// Length returns the summed path length of lines.
func Length(lines []geom.Polyline) float64 {
	lengths := make([]float64, len(lines))
	for i, l := range lines {
		lengths[i] = l.Length()
	}
	return floats.Sum(lengths)
}
