// Package jobs registers the geometry task families on a task runner and
// files their outputs into a workspace.
package jobs

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/terracore/internal/config"
	"github.com/Faultbox/terracore/internal/task"
	"github.com/Faultbox/terracore/internal/workspace"
	"github.com/Faultbox/terracore/pkg/extract"
	"github.com/Faultbox/terracore/pkg/geom"
)

// ErrBadPayload is returned when a request carries the wrong payload type.
var ErrBadPayload = errors.New("unexpected payload type")

// Default layer names for drawing output.
const (
	LayerIntersections = "intersections"
	LayerContours      = "contours"
)

// Service runs geometry jobs in the background.
type Service struct {
	cfg    *config.Config
	ws     *workspace.Workspace
	runner *task.Runner
	log    *zap.Logger
}

// NewService creates a runner sized from cfg and registers every task
// family on it. A nil logger discards logs.
func NewService(cfg *config.Config, ws *workspace.Workspace, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		cfg:    cfg,
		ws:     ws,
		runner: task.NewRunner(cfg.Tasks.QueueSize, log.Named("task")),
		log:    log.Named("jobs"),
	}

	s.runner.Register(TypeTriangulate, s.triangulate)
	s.runner.Register(TypeMeshFromPoints, s.meshFromPoints)
	s.runner.Register(TypeIntersect, s.intersect)
	s.runner.Register(TypeContour, s.contour)
	s.runner.Register(TypeExtrude, s.extrude)
	s.runner.Register(TypeShroud, s.shroud)
	return s
}

// Workspace returns the workspace the service writes to.
func (s *Service) Workspace() *workspace.Workspace {
	return s.ws
}

// Runner exposes the underlying runner, e.g. for Cancel.
func (s *Service) Runner() *task.Runner {
	return s.runner
}

// Submit queues a request of the given type.
func (s *Service) Submit(ctx context.Context, typ string, payload any) (*task.Handle, error) {
	return s.runner.Submit(ctx, task.Request{Type: typ, Payload: payload})
}

// Cancel aborts every request of a task type.
func (s *Service) Cancel(typ string) bool {
	return s.runner.Cancel(typ)
}

// Close cancels all running work.
func (s *Service) Close() {
	s.runner.Close()
}

// Import normalizes src and stores it as a surface.
func (s *Service) Import(name string, src extract.Source) (*geom.Surface, error) {
	surface, err := extract.Extract(name, src, s.cfg.Tolerances)
	if err != nil {
		return nil, err
	}
	s.ws.AddSurface(surface)
	s.log.Info("surface imported",
		zap.String("surface", surface.ID),
		zap.String("name", name),
		zap.Int("triangles", surface.TriangleCount()))
	return surface, nil
}

// Triangulate runs a triangulate request and waits for it.
func (s *Service) Triangulate(ctx context.Context, req TriangulateRequest) (TriangulateResult, error) {
	return run[TriangulateResult](ctx, s, TypeTriangulate, req)
}

// MeshFromPoints runs a mesh-from-points request and waits for it.
func (s *Service) MeshFromPoints(ctx context.Context, req MeshRequest) (MeshResult, error) {
	return run[MeshResult](ctx, s, TypeMeshFromPoints, req)
}

// Intersect runs an intersect request and waits for it.
func (s *Service) Intersect(ctx context.Context, req IntersectRequest) (IntersectResult, error) {
	return run[IntersectResult](ctx, s, TypeIntersect, req)
}

// Contour runs a contour request and waits for it.
func (s *Service) Contour(ctx context.Context, req ContourRequest) (ContourResult, error) {
	return run[ContourResult](ctx, s, TypeContour, req)
}

// Extrude runs an extrude request and waits for it.
func (s *Service) Extrude(ctx context.Context, req ExtrudeRequest) (ExtrudeResult, error) {
	return run[ExtrudeResult](ctx, s, TypeExtrude, req)
}

// Shroud runs a shroud request and waits for it.
func (s *Service) Shroud(ctx context.Context, req ShroudRequest) (ShroudResult, error) {
	return run[ShroudResult](ctx, s, TypeShroud, req)
}

func run[T any](ctx context.Context, s *Service, typ string, payload any) (T, error) {
	var zero T
	res, err := s.runner.Run(ctx, task.Request{Type: typ, Payload: payload})
	if err != nil {
		return zero, err
	}
	out, ok := res.(T)
	if !ok {
		return zero, fmt.Errorf("%s: %w: result %T", typ, ErrBadPayload, res)
	}
	return out, nil
}

func payload[T any](v any) (T, error) {
	p, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %T", ErrBadPayload, v)
	}
	return p, nil
}
