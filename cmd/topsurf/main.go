package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/philipparndt/topsurf/internal/config"
	"github.com/philipparndt/topsurf/internal/logger"
	"github.com/philipparndt/topsurf/pkg/geometry"
	"github.com/philipparndt/topsurf/pkg/meshio"
	"github.com/philipparndt/topsurf/pkg/model"
	"github.com/philipparndt/topsurf/version"
)

var (
	configPath string
	logLevel   string
	logFile    string
	debug      bool
	rotateX    float32
	rotateY    float32
	rotateZ    float32

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "topsurf",
	Short: "Find the top surface of STL and OBJ models",
	Long: `topsurf segments triangulated STL and OBJ meshes into near-planar surfaces,
either by region growing over shared edges or by clustering face normals,
and picks the surface that faces up and lies highest.`,
	Version:           version.GetFullVersion(),
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Path to config file (default ./topsurf.yaml or the user config dir)")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&logFile, "log-file", "", "Also write logs to this rotating file")
	flags.BoolVar(&debug, "debug", false, "Enable debug logging")
	flags.Float32Var(&rotateX, "rotate-x", 0, "Rotate the model around X (degrees) after loading")
	flags.Float32Var(&rotateY, "rotate-y", 0, "Rotate the model around Y (degrees) after loading")
	flags.Float32Var(&rotateZ, "rotate-z", 0, "Rotate the model around Z (degrees) after loading")
}

// setup loads the configuration, applies flag overrides and starts logging
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = loaded

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if debug {
		cfg.Logging.Level = "debug"
	}
	if flags.Changed("log-file") {
		cfg.Logging.LogFile = logFile
	}
	if flags.Changed("rotate-x") {
		cfg.Transform.RotateX = rotateX
	}
	if flags.Changed("rotate-y") {
		cfg.Transform.RotateY = rotateY
	}
	if flags.Changed("rotate-z") {
		cfg.Transform.RotateZ = rotateZ
	}

	return logger.Init(cfg.Logging.Level, cfg.Logging.LogFile)
}

// loadModel reads path and applies the configured rotation
func loadModel(path string) (*model.Model, error) {
	m, err := meshio.Load(path, meshio.WithLogger(logger.Log))
	if err != nil {
		return nil, err
	}
	if cfg.HasRotation() {
		t := cfg.Transform
		m.Transform(geometry.Rotation(t.RotateX, t.RotateY, t.RotateZ))
		logger.Debug("rotated model",
			zap.Float32("x", t.RotateX), zap.Float32("y", t.RotateY), zap.Float32("z", t.RotateZ))
	}
	return m, nil
}

// exportOptions returns the meshio options of the export section
func exportOptions() []meshio.Option {
	return []meshio.Option{
		meshio.WithLogger(logger.Log),
		meshio.WithBinary(cfg.Export.Binary),
		meshio.WithMerge(cfg.Export.Merge),
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
