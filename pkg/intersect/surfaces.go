package intersect

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/Faultbox/terracore/pkg/geom"
	"github.com/Faultbox/terracore/pkg/polyline"
)

// ErrNilSurface is returned when either input surface is missing.
var ErrNilSurface = errors.New("intersect: nil surface")

// ProgressFunc receives a completion percentage and a short message.
type ProgressFunc func(percent float64, msg string)

// Result pools the intersection segments of two surfaces.
type Result struct {
	Segments []geom.Segment
	// Pairs counts triangle pairs that passed the bounding box test.
	Pairs int
	// Coplanar counts pairs skipped because they share a plane.
	Coplanar int
}

// indexedTriangle is a triangle stored in the R-tree.
type indexedTriangle struct {
	idx  int
	rect rtreego.Rect
}

func (t *indexedTriangle) Bounds() rtreego.Rect { return t.rect }

// rect converts a bounding box to an R-tree rectangle. The box is padded
// so flat triangles still have volume; rtreego treats touching rectangles
// as disjoint.
func rect(b geom.BBox, pad float64) (rtreego.Rect, error) {
	if pad <= 0 {
		pad = 1e-9
	}
	b = b.Inflate(pad)
	return rtreego.NewRectFromPoints(
		rtreego.Point{b.Min.X, b.Min.Y, b.Min.Z},
		rtreego.Point{b.Max.X, b.Max.Y, b.Max.Z},
	)
}

// Surfaces intersects every triangle of a with every triangle of b whose
// bounding box overlaps it, using an R-tree over b. All segments are
// pooled in one list. Cancellation is checked between triangles of a.
func Surfaces(ctx context.Context, a, b *geom.Surface, tol geom.Tolerances, progress ProgressFunc) (Result, error) {
	if a == nil || b == nil {
		return Result{}, ErrNilSurface
	}
	if progress == nil {
		progress = func(float64, string) {}
	}

	var res Result
	if a.IsEmpty() || b.IsEmpty() || !a.BBox.Overlaps(b.BBox, tol.BBoxPad) {
		progress(100, "surfaces do not overlap")
		return res, nil
	}

	items := make([]rtreego.Spatial, 0, len(b.Triangles))
	for i, t := range b.Triangles {
		r, err := rect(t.BBox(), tol.BBoxPad)
		if err != nil {
			return Result{}, fmt.Errorf("indexing triangle %d: %w", i, err)
		}
		items = append(items, &indexedTriangle{idx: i, rect: r})
	}
	tree := rtreego.NewTree(3, 25, 50, items...)
	progress(5, fmt.Sprintf("indexed %d triangles", len(items)))

	total := len(a.Triangles)
	step := max(total/100, 1)
	for i, ta := range a.Triangles {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		q, err := rect(ta.BBox(), tol.BBoxPad)
		if err != nil {
			return Result{}, fmt.Errorf("querying triangle %d: %w", i, err)
		}
		hits := tree.SearchIntersect(q)
		sort.Slice(hits, func(x, y int) bool {
			return hits[x].(*indexedTriangle).idx < hits[y].(*indexedTriangle).idx
		})

		for _, h := range hits {
			tb := b.Triangles[h.(*indexedTriangle).idx]
			res.Pairs++
			seg, kind := TriTri(ta, tb, tol.Plane)
			switch kind {
			case Segment:
				res.Segments = append(res.Segments, seg)
			case Coplanar:
				res.Coplanar++
			}
		}

		if i%step == 0 {
			progress(5+90*float64(i+1)/float64(total), "intersecting")
		}
	}

	progress(100, fmt.Sprintf("%d segments", len(res.Segments)))
	return res, nil
}

// Lines chains the pooled segments into polylines and thins them by
// spacing.
func Lines(res Result, tol geom.Tolerances, spacing float64) []geom.Polyline {
	return polyline.SimplifyAll(polyline.Chain(res.Segments, tol.Chain), spacing)
}
