package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/philipparndt/topsurf/internal/logger"
	"github.com/philipparndt/topsurf/pkg/analysis"
	"github.com/philipparndt/topsurf/pkg/meshio"
	"github.com/philipparndt/topsurf/pkg/model"
	"github.com/philipparndt/topsurf/pkg/segment"
	"github.com/philipparndt/topsurf/pkg/watcher"
)

var (
	segMethod   string
	segAngle    float64
	segSeed     int64
	segOutput   string
	segBinary   bool
	segMerge    bool
	segColorize bool
	segWatch    bool
)

var segmentCmd = &cobra.Command{
	Use:   "segment [file]",
	Short: "Split a model into near-planar surfaces",
	Long: `Segment the triangles of a model into surfaces, either by region growing
over shared edges (region), by DBSCAN over face normals (cluster) or one
surface per triangle (faces). The surfaces can be exported as STL or OBJ.`,
	Args: cobra.ExactArgs(1),
	RunE: runSegment,
}

func init() {
	rootCmd.AddCommand(segmentCmd)

	flags := segmentCmd.Flags()
	flags.StringVarP(&segMethod, "method", "m", "", "Segmentation method: region, cluster or faces")
	flags.Float64VarP(&segAngle, "angle", "a", 0, "Angle threshold in degrees")
	flags.Int64Var(&segSeed, "seed", 0, "Seed of the surface colors")
	flags.StringVarP(&segOutput, "output", "o", "", "Export surfaces to this .stl or .obj file")
	flags.BoolVar(&segBinary, "binary", false, "Write binary STL")
	flags.BoolVar(&segMerge, "merge", true, "Write all surfaces into one STL file")
	flags.BoolVar(&segColorize, "colorize", false, "Export the source mesh with per-surface vertex colors instead of separate surfaces")
	flags.BoolVarP(&segWatch, "watch", "w", false, "Re-run whenever the file changes")
}

// applySegmentFlags overrides the config with explicitly set flags
func applySegmentFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	if flags.Changed("method") {
		cfg.Segmentation.Method = segMethod
	}
	if flags.Changed("angle") {
		cfg.Segmentation.AngleThreshold = segAngle
	}
	if flags.Changed("seed") {
		cfg.Segmentation.ColorSeed = segSeed
	}
	if flags.Changed("binary") {
		cfg.Export.Binary = segBinary
	}
	if flags.Changed("merge") {
		cfg.Export.Merge = segMerge
	}
	return cfg.Validate()
}

func segmentOptions() segment.Options {
	opts := cfg.SegmentOptions()
	opts.Logger = logger.Log
	return opts
}

func runSegment(cmd *cobra.Command, args []string) error {
	if err := applySegmentFlags(cmd); err != nil {
		return err
	}

	filename := args[0]
	if err := segmentFile(cmd.OutOrStdout(), filename); err != nil {
		if !segWatch {
			return err
		}
		logger.Error("segmentation failed", zap.String("path", filename), zap.Error(err))
	}
	if !segWatch {
		return nil
	}

	fw, err := watcher.NewFileWatcher(cfg.Watch.Debounce, logger.Log)
	if err != nil {
		return err
	}
	err = fw.Watch([]string{filename}, func(path string) {
		if err := segmentFile(cmd.OutOrStdout(), path); err != nil {
			logger.Error("segmentation failed", zap.String("path", path), zap.Error(err))
		}
	})
	if err != nil {
		_ = fw.Close()
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info("watching for changes, press Ctrl+C to stop", zap.String("path", filename))
	if err := fw.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// segmentFile loads, segments and optionally exports one model
func segmentFile(out io.Writer, filename string) error {
	m, err := loadModel(filename)
	if err != nil {
		return err
	}

	source := model.Merge(m.Meshes...)
	opts := segmentOptions()
	method := cfg.Method()
	result := segment.Run(source, method, opts)
	if len(result.Surfaces) == 0 {
		return errors.Wrapf(meshio.ErrEmptyResult, "%s: no surfaces found with method %s at %g degrees",
			filename, method, opts.AngleThreshold)
	}

	printSurfaces(out, result.Surfaces)

	if segOutput == "" {
		return nil
	}
	return exportSurfaces(out, source, result, opts.ColorSeed)
}

func exportSurfaces(out io.Writer, source *model.Mesh, result segment.Result, seed int64) error {
	meshes := result.Surfaces
	if segColorize {
		meshes = []*model.Mesh{segment.Colorize(source, result.Groups, seed)}
	}

	target := segOutput
	if filepath.Ext(target) == "" {
		target += "." + strings.ToLower(cfg.Export.Format)
	}

	written, err := meshio.Export(target, meshes, exportOptions()...)
	if err != nil {
		return err
	}
	for _, path := range written {
		fmt.Fprintf(out, "Wrote %s\n", path)
	}
	return nil
}

func printSurfaces(out io.Writer, surfaces []*model.Mesh) {
	axis := cfg.SelectOptions().UpAxis
	fmt.Fprintf(out, "Found %d surfaces\n", len(surfaces))
	fmt.Fprintf(out, "%-22s %10s %10s %14s %8s %10s\n", "Surface", "Triangles", "Vertices", "Area", "Score", "Height")
	fmt.Fprintln(out, strings.Repeat("-", 79))
	for i, surface := range surfaces {
		s := analysis.Score(i, surface, axis)
		fmt.Fprintf(out, "%-22s %10d %10d %14.6f %8.4f %10.4f\n",
			surface.Name, surface.TriangleCount(), surface.VertexCount(), s.Area, s.Score, s.Height)
	}
}
