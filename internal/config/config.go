// Package config handles terracore configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/terracore/pkg/contour"
	"github.com/Faultbox/terracore/pkg/cull"
	"github.com/Faultbox/terracore/pkg/geom"
	"github.com/Faultbox/terracore/pkg/shroud"
	"github.com/Faultbox/terracore/pkg/triangulate"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all settings.
type Config struct {
	Logging     LoggingConfig     `yaml:"logging"`
	Tolerances  geom.Tolerances   `yaml:"tolerances"`
	Contour     ContourConfig     `yaml:"contour"`
	Triangulate TriangulateConfig `yaml:"triangulate"`
	Shroud      ShroudConfig      `yaml:"shroud"`
	Extrude     ExtrudeConfig     `yaml:"extrude"`
	Tasks       TasksConfig       `yaml:"tasks"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	JSON    bool   `yaml:"json"`
}

// ContourConfig holds contour slicing defaults.
type ContourConfig struct {
	Interval  float64 `yaml:"interval"`
	Spacing   float64 `yaml:"spacing"`
	MaxLevels int     `yaml:"max_levels"`
	Closed    bool    `yaml:"closed"`
}

// TriangulateConfig holds the culling thresholds for point meshes.
type TriangulateConfig struct {
	MaxEdge  float64 `yaml:"max_edge"`
	MinAngle float64 `yaml:"min_angle"`
	Use3D    bool    `yaml:"use_3d"`
}

// ShroudConfig holds shroud sampling defaults.
type ShroudConfig struct {
	Iterations        int     `yaml:"iterations"`
	EndAngleDeg       float64 `yaml:"end_angle_deg"`
	ExtendBelowCollar float64 `yaml:"extend_below_collar"`
	Gravity           float64 `yaml:"gravity"`
	MaxCells          int     `yaml:"max_cells"`
}

// ExtrudeConfig holds extrusion defaults.
type ExtrudeConfig struct {
	Steps int `yaml:"steps"`
}

// TasksConfig holds background runner settings.
type TasksConfig struct {
	// QueueSize bounds the requests waiting per task type.
	QueueSize int `yaml:"queue_size"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Tolerances: geom.DefaultTolerances(),
		Contour: ContourConfig{
			Interval:  1,
			Spacing:   0,
			MaxLevels: contour.MaxLevels,
			Closed:    true,
		},
		Triangulate: TriangulateConfig{
			MaxEdge:  0,
			MinAngle: 0,
		},
		Shroud: ShroudConfig{
			Iterations: 40,
			Gravity:    9.81,
			MaxCells:   shroud.DefaultMaxCells,
		},
		Extrude: ExtrudeConfig{
			Steps: 1,
		},
		Tasks: TasksConfig{
			QueueSize: 16,
		},
	}
}

// Validate checks values that would make every operation fail.
func (c *Config) Validate() error {
	var errs []error
	if c.Contour.Interval <= 0 {
		errs = append(errs, fmt.Errorf("contour.interval must be positive, got %g", c.Contour.Interval))
	}
	if c.Contour.MaxLevels <= 0 {
		errs = append(errs, fmt.Errorf("contour.max_levels must be positive, got %d", c.Contour.MaxLevels))
	}
	if c.Shroud.Gravity <= 0 {
		errs = append(errs, fmt.Errorf("shroud.gravity must be positive, got %g", c.Shroud.Gravity))
	}
	if c.Shroud.Iterations < 2 {
		errs = append(errs, fmt.Errorf("shroud.iterations must be at least 2, got %d", c.Shroud.Iterations))
	}
	if c.Extrude.Steps < 1 {
		errs = append(errs, fmt.Errorf("extrude.steps must be at least 1, got %d", c.Extrude.Steps))
	}
	if c.Tasks.QueueSize < 1 {
		errs = append(errs, fmt.Errorf("tasks.queue_size must be at least 1, got %d", c.Tasks.QueueSize))
	}
	t := c.Tolerances
	if t.Plane < 0 || t.PointMerge < 0 || t.Chain < 0 || t.Closure < 0 || t.Degenerate < 0 || t.BBoxPad < 0 {
		errs = append(errs, errors.New("tolerances must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// TriangulateOptions returns triangulation options with the configured
// culling filters.
func (c *Config) TriangulateOptions() triangulate.Options {
	opts := triangulate.Options{Tolerances: c.Tolerances}
	if c.Triangulate.MaxEdge > 0 {
		opts.Filters = append(opts.Filters, cull.MaxEdge{Length: c.Triangulate.MaxEdge, Use3D: c.Triangulate.Use3D})
	}
	if c.Triangulate.MinAngle > 0 {
		opts.Filters = append(opts.Filters, cull.MinAngle{Degrees: c.Triangulate.MinAngle})
	}
	return opts
}

// ContourOptions returns slicing options for the configured defaults.
func (c *Config) ContourOptions() contour.Options {
	return contour.Options{
		Interval:   c.Contour.Interval,
		Spacing:    c.Contour.Spacing,
		Closed:     c.Contour.Closed,
		MaxLevels:  c.Contour.MaxLevels,
		Tolerances: c.Tolerances,
	}
}

// ShroudParams returns the configured shroud parameters.
func (c *Config) ShroudParams() shroud.Params {
	return shroud.Params{
		Iterations:        c.Shroud.Iterations,
		EndAngleDeg:       c.Shroud.EndAngleDeg,
		ExtendBelowCollar: c.Shroud.ExtendBelowCollar,
		Gravity:           c.Shroud.Gravity,
		MaxCells:          c.Shroud.MaxCells,
	}
}
