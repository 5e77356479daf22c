package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/philipparndt/topsurf/internal/logger"
	"github.com/philipparndt/topsurf/pkg/analysis"
	"github.com/philipparndt/topsurf/pkg/geometry"
	"github.com/philipparndt/topsurf/pkg/meshio"
	"github.com/philipparndt/topsurf/pkg/model"
)

var (
	topAxis     string
	topAngle    float64
	topMinScore float64
	topOutput   string
)

var topCmd = &cobra.Command{
	Use:   "top [file]",
	Short: "Find the top surface of a model",
	Long: `Segment the model by region growing and report the surface whose
area-weighted normal faces the up axis and which reaches highest along it.`,
	Args: cobra.ExactArgs(1),
	RunE: runTop,
}

func init() {
	rootCmd.AddCommand(topCmd)

	flags := topCmd.Flags()
	flags.StringVarP(&topAxis, "axis", "u", "", "Up axis: x, y or z")
	flags.Float64VarP(&topAngle, "angle", "a", 0, "Angle threshold in degrees")
	flags.Float64Var(&topMinScore, "min-score", 0, "Minimum alignment with the up axis")
	flags.StringVarP(&topOutput, "output", "o", "", "Export the top surface to this .stl or .obj file")

	_ = topCmd.RegisterFlagCompletionFunc("axis", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{geometry.AxisX.String(), geometry.AxisY.String(), geometry.AxisZ.String()}, cobra.ShellCompDirectiveNoFileComp
	})
}

func runTop(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	if flags.Changed("axis") {
		cfg.Selection.UpAxis = topAxis
	}
	if flags.Changed("angle") {
		cfg.Segmentation.AngleThreshold = topAngle
	}
	if flags.Changed("min-score") {
		cfg.Selection.MinScore = topMinScore
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	filename := args[0]
	m, err := loadModel(filename)
	if err != nil {
		return err
	}

	selOpts := cfg.SelectOptions()
	selOpts.Logger = logger.Log
	top, surfaces, err := analysis.FindTopSurface(model.Merge(m.Meshes...), segmentOptions(), selOpts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Top Surface")
	fmt.Fprintln(out, "===========")
	fmt.Fprintf(out, "File: %s\n", filename)
	fmt.Fprintf(out, "Surfaces: %d\n", len(surfaces))
	fmt.Fprintf(out, "Selected: %s (#%d)\n", top.Surface.Name, top.Index)
	if top.Fallback {
		fmt.Fprintf(out, "  No surface faces +%s, using the largest surface\n", selOpts.UpAxis)
	}
	fmt.Fprintf(out, "  Triangles: %d\n", top.Surface.TriangleCount())
	fmt.Fprintf(out, "  Area: %.6f square units\n", top.Area)
	fmt.Fprintf(out, "  Normal: %s\n", analysis.FormatVector(top.Normal))
	fmt.Fprintf(out, "  Score: %.6f\n", top.Score)
	fmt.Fprintf(out, "  Height (%s): %.6f\n", selOpts.UpAxis, top.Height)
	fmt.Fprintf(out, "  Centroid: %s\n", analysis.FormatVector(top.Surface.Centroid))
	bounds := top.Surface.BoundingBox()
	fmt.Fprintf(out, "  Bounds: %s - %s\n", analysis.FormatVector(bounds.Min), analysis.FormatVector(bounds.Max))

	if topOutput == "" {
		return nil
	}
	written, err := meshio.Export(topOutput, []*model.Mesh{top.Surface}, exportOptions()...)
	if err != nil {
		return err
	}
	for _, path := range written {
		fmt.Fprintf(out, "Wrote %s\n", path)
	}
	return nil
}
