package triangulate

import (
	"fmt"

	"github.com/rclancey/earcut"

	"github.com/Faultbox/terracore/pkg/geom"
)

// EarClip triangulates a simple polygon with the earcut algorithm. The
// polygon is the ring formed by the constraint edges, or the points in
// input order when the constraints do not form a single ring.
type EarClip struct {
	// MergeTol drops consecutive ring vertices closer than this.
	MergeTol float64
}

// Name implements Provider.
func (EarClip) Name() string { return "earclip" }

// Triangulate implements Provider.
func (e EarClip) Triangulate(pts []geom.Point3D, constraints [][2]int) (Mesh, error) {
	ring, ok := boundaryRing(len(pts), constraints)
	if !ok {
		ring = make([]int, len(pts))
		for i := range ring {
			ring[i] = i
		}
	}

	ring = dedupeRing(pts, ring, e.MergeTol)
	if len(ring) < 3 {
		return Mesh{}, ErrTooFewPoints
	}

	coords := make([]float64, 0, 2*len(ring))
	for _, i := range ring {
		if !pts[i].IsFinite() {
			return Mesh{}, fmt.Errorf("%w: point %d is not finite", ErrDegenerateInput, i)
		}
		coords = append(coords, pts[i].X, pts[i].Y)
	}

	indices, err := earcut.Earcut(coords, nil, 2)
	if err != nil {
		return Mesh{}, fmt.Errorf("%w: %w", ErrDegenerateInput, err)
	}

	out := make([][3]int, 0, len(indices)/3)
	for k := 0; k+2 < len(indices); k += 3 {
		t := [3]int{ring[indices[k]], ring[indices[k+1]], ring[indices[k+2]]}
		switch o := geom.Orient2D(pts[t[0]], pts[t[1]], pts[t[2]]); {
		case o < 0:
			t[1], t[2] = t[2], t[1]
		case o == 0:
			continue
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		return Mesh{}, fmt.Errorf("%w: ring has no area", ErrDegenerateInput)
	}
	return Mesh{Triangles: out}, nil
}

func dedupeRing(pts []geom.Point3D, ring []int, tol float64) []int {
	out := make([]int, 0, len(ring))
	for _, i := range ring {
		if len(out) > 0 && pts[out[len(out)-1]].Near2D(pts[i], tol) {
			continue
		}
		out = append(out, i)
	}
	for len(out) > 1 && pts[out[0]].Near2D(pts[out[len(out)-1]], tol) {
		out = out[:len(out)-1]
	}
	return out
}

func ringArea(pts []geom.Point3D, ring []int) float64 {
	var sum float64
	for i := range ring {
		p, q := pts[ring[i]], pts[ring[(i+1)%len(ring)]]
		sum += p.X*q.Y - q.X*p.Y
	}
	return sum / 2
}

// boundaryRing orders the constraint edges into a single closed ring of
// point indices. It reports false when the edges do not form exactly one
// cycle through every referenced vertex.
func boundaryRing(n int, constraints [][2]int) ([]int, bool) {
	if len(constraints) < 3 {
		return nil, false
	}
	nbrs := make(map[int][]int, len(constraints))
	for _, c := range constraints {
		a, b := c[0], c[1]
		if a == b || a < 0 || b < 0 || a >= n || b >= n {
			return nil, false
		}
		nbrs[a] = append(nbrs[a], b)
		nbrs[b] = append(nbrs[b], a)
	}
	for _, adj := range nbrs {
		if len(adj) != 2 {
			return nil, false
		}
	}

	start := constraints[0][0]
	ring := []int{start}
	prev, cur := start, constraints[0][1]
	for cur != start {
		ring = append(ring, cur)
		if len(ring) > len(nbrs) {
			return nil, false
		}
		next := nbrs[cur][0]
		if next == prev {
			next = nbrs[cur][1]
		}
		prev, cur = cur, next
	}
	if len(ring) != len(nbrs) {
		return nil, false
	}
	return ring, true
}
