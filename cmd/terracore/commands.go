package main

import (
	"github.com/spf13/cobra"

	"github.com/Faultbox/terracore/internal/jobs"
	"github.com/Faultbox/terracore/pkg/shroud"
)

var triangulateCmd = &cobra.Command{
	Use:   "triangulate <points.json>",
	Short: "Triangulate a boundary polygon, or scattered points with --mesh",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var doc pointsDoc
		if err := readJSON(args[0], &doc); err != nil {
			return err
		}
		pts, err := toPoints(doc.Points)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		mesh, _ := flags.GetBool("mesh")
		if !mesh {
			res, err := submit[jobs.TriangulateResult](cmd, jobs.TypeTriangulate, jobs.TriangulateRequest{
				Name: doc.Name, Points: pts, Constraints: doc.Constraints,
			})
			if err != nil {
				return err
			}
			return writeSurface(res.SurfaceID)
		}

		maxEdge, _ := flags.GetFloat64("max-edge")
		minAngle, _ := flags.GetFloat64("min-angle")
		res, err := submit[jobs.MeshResult](cmd, jobs.TypeMeshFromPoints, jobs.MeshRequest{
			Name: doc.Name, Points: pts, MaxEdge: maxEdge, MinAngle: minAngle,
		})
		if err != nil {
			return err
		}
		return writeSurface(res.SurfaceID)
	},
}

var contourCmd = &cobra.Command{
	Use:   "contour <surface.json>",
	Short: "Slice elevation contours and write them as GeoJSON or entity records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		surface, err := loadSurface(args[0])
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		req := jobs.ContourRequest{SurfaceID: surface.ID}
		req.Interval, _ = flags.GetFloat64("interval")
		req.Spacing, _ = flags.GetFloat64("spacing")
		if flags.Changed("min") {
			v, _ := flags.GetFloat64("min")
			req.Min = &v
		}
		if flags.Changed("max") {
			v, _ := flags.GetFloat64("max")
			req.Max = &v
		}
		if flags.Changed("closed") {
			v, _ := flags.GetBool("closed")
			req.Closed = &v
		}

		res, err := submit[jobs.ContourResult](cmd, jobs.TypeContour, req)
		if err != nil {
			return err
		}
		return writeLayer(cmd, res.LayerID)
	},
}

var intersectCmd = &cobra.Command{
	Use:   "intersect <a.json> <b.json>",
	Short: "Intersect two surfaces and write the lines as GeoJSON or entity records",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadSurface(args[0])
		if err != nil {
			return err
		}
		b, err := loadSurface(args[1])
		if err != nil {
			return err
		}

		spacing, _ := cmd.Flags().GetFloat64("spacing")
		res, err := submit[jobs.IntersectResult](cmd, jobs.TypeIntersect, jobs.IntersectRequest{
			A: a.ID, B: b.ID, Spacing: spacing,
		})
		if err != nil {
			return err
		}
		return writeLayer(cmd, res.LayerID)
	},
}

var extrudeCmd = &cobra.Command{
	Use:   "extrude <footprint.json>",
	Short: "Extrude a closed footprint into a solid",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var doc pointsDoc
		if err := readJSON(args[0], &doc); err != nil {
			return err
		}
		pts, err := toPoints(doc.Points)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		depth, _ := flags.GetFloat64("depth")
		steps, _ := flags.GetInt("steps")
		res, err := submit[jobs.ExtrudeResult](cmd, jobs.TypeExtrude, jobs.ExtrudeRequest{
			Name: doc.Name, Footprint: pts, Depth: depth, Steps: steps,
		})
		if err != nil {
			return err
		}
		return writeSurface(res.SurfaceID)
	},
}

var shroudCmd = &cobra.Command{
	Use:   "shroud <sources.json>",
	Short: "Generate a ballistic shroud surface around point sources",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var doc sourcesDoc
		if err := readJSON(args[0], &doc); err != nil {
			return err
		}

		req := jobs.ShroudRequest{Name: doc.Name, Params: doc.Params}
		for _, s := range doc.Sources {
			pos, err := toPoints([][]float64{s.Position})
			if err != nil {
				return err
			}
			req.Sources = append(req.Sources, shroud.Source{
				Position:    pos[0],
				MaxDistance: s.MaxDistance,
				MaxVelocity: s.MaxVelocity,
			})
		}

		res, err := submit[jobs.ShroudResult](cmd, jobs.TypeShroud, req)
		if err != nil {
			return err
		}
		return writeSurface(res.SurfaceID)
	},
}

func init() {
	triangulateCmd.Flags().Bool("mesh", false, "Treat the points as scattered samples instead of a boundary")
	triangulateCmd.Flags().Float64("max-edge", 0, "Drop mesh triangles with a longer edge (0 uses the config)")
	triangulateCmd.Flags().Float64("min-angle", 0, "Drop mesh triangles with a smaller angle in degrees (0 uses the config)")

	contourCmd.Flags().Float64("interval", 0, "Contour interval (0 uses the config)")
	contourCmd.Flags().Float64("spacing", 0, "Minimum vertex spacing along contour lines")
	contourCmd.Flags().Float64("min", 0, "Lowest elevation to slice")
	contourCmd.Flags().Float64("max", 0, "Highest elevation to slice")
	contourCmd.Flags().Bool("closed", true, "Write closed contours as polygons")

	intersectCmd.Flags().Float64("spacing", 0, "Minimum vertex spacing along intersection lines")

	for _, c := range []*cobra.Command{contourCmd, intersectCmd} {
		c.Flags().String("format", formatGeoJSON, "Output format: geojson or records")
	}

	extrudeCmd.Flags().Float64("depth", 1, "Extrusion depth along Z")
	extrudeCmd.Flags().Int("steps", 0, "Wall subdivisions (0 uses the config)")

	rootCmd.AddCommand(triangulateCmd, contourCmd, intersectCmd, extrudeCmd, shroudCmd)
}
