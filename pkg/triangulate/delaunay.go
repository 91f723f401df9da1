package triangulate

import (
	"fmt"
	"math"
	"sort"

	"github.com/Faultbox/terracore/pkg/geom"
)

// Delaunay triangulates the XY projection by sweeping the points in
// (x, y) order and restoring the Delaunay property with Lawson flips.
// The result always covers the convex hull. Constraint edges are forced
// in afterwards by flipping the diagonals that cross them; an edge that
// cannot be forced is skipped.
type Delaunay struct {
	// MergeTol merges input points closer than this in XY; the first
	// occurrence wins.
	MergeTol float64
	// MaxFlips bounds the flips spent on one constraint edge. Zero picks a
	// bound from the mesh size.
	MaxFlips int
}

// Name implements Provider.
func (Delaunay) Name() string { return "delaunay" }

type vec2 struct{ x, y float64 }

// tri holds counter-clockwise vertex indices.
type tri [3]int

// dirEdge is a directed edge; each interior edge appears once per
// adjacent triangle, in opposite directions.
type dirEdge [2]int

type edgeRef struct {
	tri int
	opp int // vertex opposite the edge
}

type mesh struct {
	xy   []vec2
	tris []tri
	adj  map[dirEdge]edgeRef
}

// Triangulate implements Provider.
func (d Delaunay) Triangulate(pts []geom.Point3D, constraints [][2]int) (Mesh, error) {
	n := len(pts)
	if n < 3 {
		return Mesh{}, ErrTooFewPoints
	}

	xy := make([]vec2, n)
	for i, p := range pts {
		if !p.IsFinite() {
			return Mesh{}, fmt.Errorf("%w: point %d is not finite", ErrDegenerateInput, i)
		}
		xy[i] = vec2{p.X, p.Y}
	}
	canon := mergeCoincident(xy, d.MergeTol)

	order := make([]int, 0, n)
	for i := range n {
		if canon[i] == i {
			order = append(order, i)
		}
	}
	sort.Slice(order, func(i, j int) bool {
		p, q := xy[order[i]], xy[order[j]]
		if p.x != q.x {
			return p.x < q.x
		}
		return p.y < q.y
	})

	m := &mesh{xy: xy}
	if err := m.sweep(order); err != nil {
		return Mesh{}, err
	}

	maxFlips := d.MaxFlips
	if maxFlips <= 0 {
		maxFlips = 4*len(m.tris) + 64
	}
	fixed := make(map[[2]int]bool)
	skipped := 0
	for _, c := range constraints {
		a, b := c[0], c[1]
		if a < 0 || b < 0 || a >= n || b >= n {
			skipped++
			continue
		}
		a, b = canon[a], canon[b]
		if a == b || !m.forceEdge(a, b, maxFlips) {
			skipped++
			continue
		}
		fixed[undirected(a, b)] = true
	}
	if len(fixed) > 0 {
		m.legalize(fixed)
	}

	out := make([][3]int, 0, len(m.tris))
	for _, t := range m.tris {
		if orient(xy[t[0]], xy[t[1]], xy[t[2]]) <= 0 {
			continue
		}
		out = append(out, [3]int(t))
	}
	if len(out) == 0 {
		return Mesh{}, fmt.Errorf("%w: points are collinear or coincident", ErrDegenerateInput)
	}
	return Mesh{Triangles: out, Skipped: skipped}, nil
}

// mergeCoincident maps every point index to the first index at the same
// XY position within tol.
func mergeCoincident(xy []vec2, tol float64) []int {
	canon := make([]int, len(xy))
	if tol <= 0 {
		seen := make(map[vec2]int, len(xy))
		for i, p := range xy {
			if j, ok := seen[p]; ok {
				canon[i] = j
				continue
			}
			seen[p] = i
			canon[i] = i
		}
		return canon
	}

	type cell [2]int64
	grid := make(map[cell][]int, len(xy))
	key := func(p vec2) cell {
		return cell{int64(math.Floor(p.x / tol)), int64(math.Floor(p.y / tol))}
	}
	for i, p := range xy {
		canon[i] = i
		k := key(p)
	search:
		for dx := int64(-1); dx <= 1; dx++ {
			for dy := int64(-1); dy <= 1; dy++ {
				for _, j := range grid[cell{k[0] + dx, k[1] + dy}] {
					if math.Hypot(p.x-xy[j].x, p.y-xy[j].y) <= tol {
						canon[i] = j
						break search
					}
				}
			}
		}
		if canon[i] == i {
			grid[k] = append(grid[k], i)
		}
	}
	return canon
}

// orient returns twice the signed area of abc, positive for CCW.
func orient(a, b, c vec2) float64 {
	return (b.x-a.x)*(c.y-a.y) - (c.x-a.x)*(b.y-a.y)
}

// inCircle reports whether d lies strictly inside the circumcircle of
// the triangle abc, for either orientation of abc.
func inCircle(a, b, c, d vec2) bool {
	ax, ay := a.x-d.x, a.y-d.y
	bx, by := b.x-d.x, b.y-d.y
	cx, cy := c.x-d.x, c.y-d.y
	det := (ax*ax+ay*ay)*(bx*cy-cx*by) -
		(bx*bx+by*by)*(ax*cy-cx*ay) +
		(cx*cx+cy*cy)*(ax*by-bx*ay)
	if orient(a, b, c) < 0 {
		return det < 0
	}
	return det > 0
}

// properCross reports whether segments pq and rs cross at a single point
// interior to both.
func properCross(p, q, r, s vec2) bool {
	d1 := orient(p, q, r)
	d2 := orient(p, q, s)
	d3 := orient(r, s, p)
	d4 := orient(r, s, q)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func undirected(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

func (m *mesh) link(i int) {
	t := m.tris[i]
	for k := range 3 {
		m.adj[dirEdge{t[k], t[(k+1)%3]}] = edgeRef{tri: i, opp: t[(k+2)%3]}
	}
}

func (m *mesh) unlink(i int) {
	t := m.tris[i]
	for k := range 3 {
		delete(m.adj, dirEdge{t[k], t[(k+1)%3]})
	}
}

func (m *mesh) hasEdge(a, b int) bool {
	if _, ok := m.adj[dirEdge{a, b}]; ok {
		return true
	}
	_, ok := m.adj[dirEdge{b, a}]
	return ok
}

// flippable returns the triangles and opposite vertices around the edge
// i->j when the quad they form is strictly convex.
func (m *mesh) flippable(i, j int) (left, right edgeRef, ok bool) {
	left, ok1 := m.adj[dirEdge{i, j}]
	right, ok2 := m.adj[dirEdge{j, i}]
	if !ok1 || !ok2 {
		return edgeRef{}, edgeRef{}, false
	}
	if !properCross(m.xy[left.opp], m.xy[right.opp], m.xy[i], m.xy[j]) {
		return edgeRef{}, edgeRef{}, false
	}
	return left, right, true
}

// flip replaces the diagonal i-j of the quad i, r, j, l (CCW) by l-r.
func (m *mesh) flip(i, j int, left, right edgeRef) {
	m.unlink(left.tri)
	m.unlink(right.tri)
	k, l := left.opp, right.opp
	m.tris[left.tri] = tri{i, l, k}
	m.tris[right.tri] = tri{l, j, k}
	m.link(left.tri)
	m.link(right.tri)
}

// forceEdge flips diagonals crossing a-b until a-b is an edge. It reports
// false when no crossing diagonal can be flipped or the flip budget runs
// out, e.g. when another vertex lies on the segment.
func (m *mesh) forceEdge(a, b, maxFlips int) bool {
	pa, pb := m.xy[a], m.xy[b]
	for range maxFlips {
		if m.hasEdge(a, b) {
			return true
		}
		flipped := false
	scan:
		for _, t := range m.tris {
			for k := range 3 {
				i, j := t[k], t[(k+1)%3]
				if i > j || i == a || i == b || j == a || j == b {
					continue
				}
				if !properCross(pa, pb, m.xy[i], m.xy[j]) {
					continue
				}
				l, r, ok := m.flippable(i, j)
				if !ok {
					continue
				}
				m.flip(i, j, l, r)
				flipped = true
				break scan
			}
		}
		if !flipped {
			break
		}
	}
	return m.hasEdge(a, b)
}

// legalize restores the Delaunay property for every edge not in fixed
// using Lawson flips. The number of passes is bounded so cocircular
// inputs cannot flip forever.
func (m *mesh) legalize(fixed map[[2]int]bool) {
	const maxPasses = 64
	for range maxPasses {
		flips := 0
		for i := range m.tris {
			for k := range 3 {
				t := m.tris[i]
				a, b := t[k], t[(k+1)%3]
				if a > b || fixed[undirected(a, b)] {
					continue
				}
				l, r, ok := m.flippable(a, b)
				if !ok {
					continue
				}
				if !inCircle(m.xy[a], m.xy[b], m.xy[l.opp], m.xy[r.opp]) {
					continue
				}
				m.flip(a, b, l, r)
				flips++
			}
		}
		if flips == 0 {
			return
		}
	}
}

// sweep triangulates the points in order, which must be sorted by (x, y).
// Each point then lies outside the hull of the points before it, so it is
// joined to every hull edge it sees and the new edges are legalized.
func (m *mesh) sweep(order []int) error {
	m.adj = make(map[dirEdge]edgeRef, 6*len(order))
	if len(order) < 3 {
		return fmt.Errorf("%w: fewer than 3 distinct points", ErrDegenerateInput)
	}

	// Seed with the collinear prefix and the first point off its line.
	a, b := m.xy[order[0]], m.xy[order[1]]
	k := 2
	for k < len(order) && orient(a, b, m.xy[order[k]]) == 0 {
		k++
	}
	if k == len(order) {
		return fmt.Errorf("%w: points are collinear", ErrDegenerateInput)
	}
	chain, p := order[:k], order[k]
	var hull []int
	if orient(a, b, m.xy[p]) > 0 {
		for i := 0; i+1 < len(chain); i++ {
			m.add(tri{chain[i], chain[i+1], p})
		}
		hull = append(append(hull, chain...), p)
	} else {
		for i := 0; i+1 < len(chain); i++ {
			m.add(tri{chain[i+1], chain[i], p})
		}
		for i := len(chain) - 1; i >= 0; i-- {
			hull = append(hull, chain[i])
		}
		hull = append(hull, p)
	}

	for _, p := range order[k+1:] {
		var err error
		if hull, err = m.attach(hull, p); err != nil {
			return err
		}
	}
	return nil
}

// attach joins p, which lies outside the CCW hull, to every hull edge
// facing it and returns the updated hull.
func (m *mesh) attach(hull []int, p int) ([]int, error) {
	h := len(hull)
	visible := func(i int) bool {
		return orient(m.xy[hull[i%h]], m.xy[hull[(i+1)%h]], m.xy[p]) < 0
	}

	start := -1
	for i := range h {
		if visible(i) && !visible(i+h-1) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, fmt.Errorf("%w: point %d falls inside the sweep hull", ErrDegenerateInput, p)
	}

	var stack [][2]int
	end := start
	for visible(end) && end < start+h {
		u, v := hull[end%h], hull[(end+1)%h]
		m.add(tri{u, p, v})
		stack = append(stack, [2]int{u, v})
		end++
	}
	m.legalizeEdges(stack)

	// Keep hull[start], insert p, resume at hull[end].
	next := make([]int, 0, h+1)
	next = append(next, hull[start], p)
	for i := end; i%h != start; i++ {
		next = append(next, hull[i%h])
	}
	return next, nil
}

func (m *mesh) add(t tri) {
	m.tris = append(m.tris, t)
	m.link(len(m.tris) - 1)
}

// legalizeEdges flips every queued edge that fails the in-circle test and
// queues the outer edges of each flipped quad.
func (m *mesh) legalizeEdges(stack [][2]int) {
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		a, b := e[0], e[1]
		l, r, ok := m.flippable(a, b)
		if !ok {
			continue
		}
		if !inCircle(m.xy[a], m.xy[b], m.xy[l.opp], m.xy[r.opp]) {
			continue
		}
		m.flip(a, b, l, r)
		k, q := l.opp, r.opp
		stack = append(stack, [2]int{a, q}, [2]int{q, b}, [2]int{b, k}, [2]int{k, a})
	}
}
