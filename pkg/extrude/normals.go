package extrude

import (
	"math"

	"github.com/Faultbox/terracore/pkg/geom"
)

const normalQuantum = 1e-6

// VertexNormals returns area-weighted normals per triangle corner,
// averaged over every corner sharing a position. Triangles meeting at a
// sharp edge are smoothed across it, which suits shaded previews.
func VertexNormals(tris []geom.Triangle) [][3]geom.Point3D {
	key := func(p geom.Point3D) [3]int64 {
		return [3]int64{
			int64(math.Round(p.X / normalQuantum)),
			int64(math.Round(p.Y / normalQuantum)),
			int64(math.Round(p.Z / normalQuantum)),
		}
	}

	sums := make(map[[3]int64]geom.Point3D, len(tris))
	for _, t := range tris {
		// The raw normal's length is twice the area.
		n := t.Normal()
		for _, v := range t.Vertices() {
			k := key(v)
			sums[k] = sums[k].Add(n)
		}
	}

	out := make([][3]geom.Point3D, len(tris))
	for i, t := range tris {
		for j, v := range t.Vertices() {
			out[i][j] = sums[key(v)].Normalize()
		}
	}
	return out
}
