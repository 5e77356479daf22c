package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/philipparndt/topsurf/pkg/analysis"
	"github.com/philipparndt/topsurf/pkg/model"
)

var (
	triCount    int
	triLargest  bool
	triSmallest bool
)

var trianglesCmd = &cobra.Command{
	Use:   "triangles [file]",
	Short: "Analyze triangles in a model",
	Long:  "Display information about triangles including area, perimeter, and vertex positions.",
	Args:  cobra.ExactArgs(1),
	RunE:  runTriangles,
}

func init() {
	rootCmd.AddCommand(trianglesCmd)

	trianglesCmd.Flags().IntVarP(&triCount, "count", "n", 10, "Number of triangles to display")
	trianglesCmd.Flags().BoolVarP(&triLargest, "largest", "l", false, "Show largest triangles by area")
	trianglesCmd.Flags().BoolVarP(&triSmallest, "smallest", "s", false, "Show smallest triangles by area")
	trianglesCmd.MarkFlagsMutuallyExclusive("largest", "smallest")
}

func runTriangles(cmd *cobra.Command, args []string) error {
	m, err := loadModel(args[0])
	if err != nil {
		return err
	}

	order := 0
	title := "First %d Triangles"
	if triLargest {
		order = 1
		title = "Top %d Largest Triangles"
	} else if triSmallest {
		order = -1
		title = "Top %d Smallest Triangles"
	}
	triangles := analysis.Triangles(model.Merge(m.Meshes...), order)

	totalArea := 0.0
	minArea := math.MaxFloat64
	maxArea := 0.0
	for _, tri := range triangles {
		totalArea += tri.Area
		minArea = math.Min(minArea, tri.Area)
		maxArea = math.Max(maxArea, tri.Area)
	}
	if len(triangles) == 0 {
		minArea = 0
	}

	count := min(triCount, len(triangles))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, title+"\n", count)
	fmt.Fprintln(out, "====================")
	fmt.Fprintf(out, "Total triangles: %d\n", len(triangles))
	fmt.Fprintf(out, "Total surface area: %.6f square units\n", totalArea)
	fmt.Fprintf(out, "Min triangle area: %.6f square units\n", minArea)
	fmt.Fprintf(out, "Max triangle area: %.6f square units\n", maxArea)
	if len(triangles) > 0 {
		fmt.Fprintf(out, "Avg triangle area: %.6f square units\n", totalArea/float64(len(triangles)))
	}
	fmt.Fprintln(out)

	for _, tri := range triangles[:count] {
		fmt.Fprintf(out, "Triangle #%d:\n", tri.Index)
		fmt.Fprintf(out, "  Area: %.6f square units\n", tri.Area)
		fmt.Fprintf(out, "  Perimeter: %.6f units\n", tri.Perimeter)
		fmt.Fprintf(out, "  Vertices: %s, %s, %s\n\n",
			analysis.FormatVector(tri.Triangle.V1),
			analysis.FormatVector(tri.Triangle.V2),
			analysis.FormatVector(tri.Triangle.V3))
	}
	return nil
}
