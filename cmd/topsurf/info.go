package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/philipparndt/topsurf/pkg/analysis"
)

var infoCmd = &cobra.Command{
	Use:   "info [file]",
	Short: "Display general information about a model file",
	Long:  "Show the file type, meshes, materials, dimensions, surface area and edge statistics.",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	filename := args[0]

	m, err := loadModel(filename)
	if err != nil {
		return err
	}

	result := analysis.AnalyzeModel(m)
	stats := m.Stats()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Model Information")
	fmt.Fprintln(out, "=================")
	fmt.Fprintf(out, "Name: %s\n", m.Name)
	fmt.Fprintf(out, "File: %s\n", filename)
	fmt.Fprintf(out, "Type: %s\n\n", m.Type)

	fmt.Fprintln(out, "Meshes:")
	for i, mesh := range m.Meshes {
		material := mesh.Material.Name
		if material == "" {
			material = "-"
		}
		fmt.Fprintf(out, "  [%d] %s: %d vertices, %d triangles, material %s\n",
			i, mesh.Name, mesh.VertexCount(), mesh.TriangleCount(), material)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Model Statistics:")
	fmt.Fprintf(out, "  Meshes: %d\n", stats.Meshes)
	fmt.Fprintf(out, "  Materials: %d\n", stats.Materials)
	fmt.Fprintf(out, "  Vertices: %d\n", stats.Vertices)
	fmt.Fprintf(out, "  Triangles: %d\n", stats.Triangles)
	fmt.Fprintf(out, "  Degenerate triangles: %d\n", result.DegenerateTris)
	fmt.Fprintf(out, "  Surface Area: %.6f square units\n\n", result.SurfaceArea)

	fmt.Fprintln(out, "Bounding Box:")
	fmt.Fprintf(out, "  Min: %s\n", analysis.FormatVector(m.Bounds.Min))
	fmt.Fprintf(out, "  Max: %s\n", analysis.FormatVector(m.Bounds.Max))
	fmt.Fprintf(out, "  Center: %s\n\n", analysis.FormatVector(m.Bounds.Center()))

	fmt.Fprintln(out, "Dimensions:")
	fmt.Fprintf(out, "  Width (X): %.6f units\n", result.Dimensions.X)
	fmt.Fprintf(out, "  Depth (Y): %.6f units\n", result.Dimensions.Y)
	fmt.Fprintf(out, "  Height (Z): %.6f units\n", result.Dimensions.Z)
	fmt.Fprintf(out, "  Diagonal: %.6f units\n\n", result.BoundingBox.Diagonal())

	fmt.Fprintln(out, "Edge Lengths:")
	fmt.Fprintf(out, "  Minimum: %.6f units\n", result.MinEdgeLength)
	fmt.Fprintf(out, "  Maximum: %.6f units\n", result.MaxEdgeLength)
	fmt.Fprintf(out, "  Average: %.6f units\n", result.AvgEdgeLength)
	return nil
}
