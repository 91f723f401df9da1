package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/terracore/internal/config"
	"github.com/Faultbox/terracore/internal/jobs"
	"github.com/Faultbox/terracore/internal/logger"
	"github.com/Faultbox/terracore/internal/workspace"
)

var (
	overrides  config.Overrides
	outputPath string

	cfg     *config.Config
	service *jobs.Service
)

var rootCmd = &cobra.Command{
	Use:   "terracore",
	Short: "Terrain and mesh geometry tools",
	Long: `terracore turns point data and boundary polygons into triangulated surfaces,
intersects surfaces, slices contours, extrudes footprints into solids and
generates ballistic shroud surfaces. Inputs and outputs are JSON files.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(overrides); err != nil {
			return fmt.Errorf("config: %w", err)
		}

		opts := logger.Options{Level: cfg.Logging.Level, JSON: cfg.Logging.JSON, Console: true}
		if cfg.Logging.LogFile != "" {
			opts.File = logger.DefaultFileConfig(cfg.Logging.LogFile)
		}
		if err := logger.InitWithOptions(opts); err != nil {
			return fmt.Errorf("logger: %w", err)
		}

		service = jobs.NewService(cfg, workspace.New(), logger.Log)
		logger.Debug("terracore starting", zap.String("command", cmd.Name()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if service != nil {
			service.Close()
		}
		logger.Sync()
	},
}

func init() {
	overrides.BindFlags(rootCmd.PersistentFlags())
	rootCmd.PersistentFlags().StringVarP(&outputPath, "output", "o", "-", "Output file, - for stdout")
}

// submit runs a job, logging its progress, and returns its result.
func submit[T any](cmd *cobra.Command, typ string, payload any) (T, error) {
	var zero T
	h, err := service.Submit(cmd.Context(), typ, payload)
	if err != nil {
		return zero, err
	}
	log := logger.Named(typ)
	for p := range h.Progress() {
		log.Debug("progress", zap.Float64("percent", p.Percent), zap.String("msg", p.Message))
	}

	res, err := h.Wait(cmd.Context())
	if err != nil {
		if cmd.Context().Err() != nil {
			service.Cancel(typ)
		}
		return zero, err
	}
	out, ok := res.(T)
	if !ok {
		return zero, fmt.Errorf("%s: %w", typ, jobs.ErrBadPayload)
	}
	return out, nil
}

func outputFile() (*os.File, func() error, error) {
	if outputPath == "" || outputPath == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
