package jobs

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/terracore/pkg/contour"
	"github.com/Faultbox/terracore/pkg/cull"
	"github.com/Faultbox/terracore/pkg/entity"
	"github.com/Faultbox/terracore/pkg/extrude"
	"github.com/Faultbox/terracore/pkg/geom"
	"github.com/Faultbox/terracore/pkg/intersect"
	"github.com/Faultbox/terracore/pkg/shroud"
	"github.com/Faultbox/terracore/pkg/triangulate"
)

type reportFunc = func(percent float64, msg string)

func (s *Service) triangulate(ctx context.Context, v any, report reportFunc) (any, error) {
	req, err := payload[TriangulateRequest](v)
	if err != nil {
		return nil, err
	}

	constraints := req.Constraints
	if len(constraints) == 0 {
		constraints = triangulate.RingConstraints(len(req.Points))
	}
	report(10, "triangulating")
	res, err := triangulate.Triangulate(req.Points, constraints, s.cfg.TriangulateOptions())
	if err != nil {
		return nil, fmt.Errorf("triangulating %q: %w", req.Name, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	surface := geom.NewSurface(req.Name, res.Triangles)
	surface.Meta["provider"] = res.Provider
	s.ws.AddSurface(surface)
	report(100, "done")

	s.log.Info("polygon triangulated",
		zap.String("surface", surface.ID),
		zap.String("provider", res.Provider),
		zap.Int("triangles", len(res.Triangles)),
		zap.Int("skipped_constraints", res.Skipped))
	return TriangulateResult{
		SurfaceID: surface.ID,
		Triangles: len(res.Triangles),
		Provider:  res.Provider,
		Skipped:   res.Skipped,
	}, nil
}

func (s *Service) meshFromPoints(ctx context.Context, v any, report reportFunc) (any, error) {
	req, err := payload[MeshRequest](v)
	if err != nil {
		return nil, err
	}

	opts := s.cfg.TriangulateOptions()
	if req.MaxEdge > 0 || req.MinAngle > 0 {
		opts.Filters = nil
		if req.MaxEdge > 0 {
			opts.Filters = append(opts.Filters, cull.MaxEdge{Length: req.MaxEdge, Use3D: s.cfg.Triangulate.Use3D})
		}
		if req.MinAngle > 0 {
			opts.Filters = append(opts.Filters, cull.MinAngle{Degrees: req.MinAngle})
		}
	}

	report(10, fmt.Sprintf("triangulating %d points", len(req.Points)))
	surface, stats, err := triangulate.MeshFromPoints(req.Name, req.Points, opts)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.ws.AddSurface(surface)
	report(100, "done")

	s.log.Info("point mesh built",
		zap.String("surface", surface.ID),
		zap.Int("triangles", stats.Kept),
		zap.Int("culled", stats.Input-stats.Kept))
	return MeshResult{SurfaceID: surface.ID, Triangles: stats.Kept, Culled: stats}, nil
}

func (s *Service) intersect(ctx context.Context, v any, report reportFunc) (any, error) {
	req, err := payload[IntersectRequest](v)
	if err != nil {
		return nil, err
	}
	a, err := s.ws.Surface(req.A)
	if err != nil {
		return nil, err
	}
	b, err := s.ws.Surface(req.B)
	if err != nil {
		return nil, err
	}

	scaled := func(percent float64, msg string) { report(percent*0.9, msg) }
	res, err := intersect.Surfaces(ctx, a, b, s.cfg.Tolerances, scaled)
	if err != nil {
		return nil, err
	}

	lines := intersect.Lines(res, s.cfg.Tolerances, req.Spacing)
	layer := s.ws.EnsureLayer(layerName(req.Layer, LayerIntersections))
	entities := entity.FromPolylines(lines, layer.ID, fmt.Sprintf("%s x %s", a.Name, b.Name), false)
	if err := s.ws.AddEntities(layer.ID, entities...); err != nil {
		return nil, err
	}
	report(100, fmt.Sprintf("%d lines", len(lines)))

	s.log.Info("surfaces intersected",
		zap.String("a", a.ID),
		zap.String("b", b.ID),
		zap.Int("pairs", res.Pairs),
		zap.Int("coplanar", res.Coplanar),
		zap.Int("lines", len(lines)))
	return IntersectResult{
		LayerID:  layer.ID,
		Lines:    len(lines),
		Segments: len(res.Segments),
		Pairs:    res.Pairs,
		Coplanar: res.Coplanar,
	}, nil
}

func (s *Service) contour(ctx context.Context, v any, report reportFunc) (any, error) {
	req, err := payload[ContourRequest](v)
	if err != nil {
		return nil, err
	}
	surface, err := s.ws.Surface(req.SurfaceID)
	if err != nil {
		return nil, err
	}

	opts := s.cfg.ContourOptions()
	if req.Interval != 0 {
		opts.Interval = req.Interval
	}
	if req.Spacing != 0 {
		opts.Spacing = req.Spacing
	}
	if req.Closed != nil {
		opts.Closed = *req.Closed
	}
	opts.Min, opts.Max = req.Min, req.Max

	levels, err := contour.Slice(ctx, surface, opts, func(percent float64, msg string) {
		report(percent*0.95, msg)
	})
	if err != nil {
		return nil, err
	}

	layer := s.ws.EnsureLayer(layerName(req.Layer, LayerContours))
	entities := contour.ToEntities(levels, layer.ID, opts.Closed)
	if err := s.ws.AddEntities(layer.ID, entities...); err != nil {
		return nil, err
	}
	report(100, fmt.Sprintf("%d levels", len(levels)))

	s.log.Info("surface contoured",
		zap.String("surface", surface.ID),
		zap.Float64("interval", opts.Interval),
		zap.Int("levels", len(levels)),
		zap.Int("entities", len(entities)))
	return ContourResult{LayerID: layer.ID, Levels: len(levels), Entities: len(entities)}, nil
}

func (s *Service) extrude(ctx context.Context, v any, report reportFunc) (any, error) {
	req, err := payload[ExtrudeRequest](v)
	if err != nil {
		return nil, err
	}
	steps := req.Steps
	if steps == 0 {
		steps = s.cfg.Extrude.Steps
	}

	report(10, "extruding")
	solid, err := extrude.Extrude(req.Footprint, req.Depth, steps, s.cfg.TriangulateOptions())
	if err != nil {
		return nil, fmt.Errorf("extruding %q: %w", req.Name, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	surface := solid.Surface(req.Name)
	s.ws.AddSurface(surface)
	report(100, "done")

	s.log.Info("footprint extruded",
		zap.String("surface", surface.ID),
		zap.Int("triangles", len(solid.Triangles)),
		zap.Float64("volume", solid.Volume))
	return ExtrudeResult{SurfaceID: surface.ID, Triangles: len(solid.Triangles), Volume: solid.Volume}, nil
}

func (s *Service) shroud(ctx context.Context, v any, report reportFunc) (any, error) {
	req, err := payload[ShroudRequest](v)
	if err != nil {
		return nil, err
	}
	params := s.cfg.ShroudParams()
	if req.Params != nil {
		params = *req.Params
	}

	surface, err := shroud.Generate(ctx, req.Sources, params, report)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		surface.Name = req.Name
	}
	s.ws.AddSurface(surface)

	spacing, _ := surface.Meta["spacing"].(float64)
	s.log.Info("shroud generated",
		zap.String("surface", surface.ID),
		zap.Int("sources", len(req.Sources)),
		zap.Int("triangles", surface.TriangleCount()),
		zap.Float64("spacing", spacing))
	return ShroudResult{SurfaceID: surface.ID, Triangles: surface.TriangleCount(), Spacing: spacing}, nil
}

func layerName(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
