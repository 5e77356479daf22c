package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/philipparndt/topsurf/pkg/geometry"
	"github.com/philipparndt/topsurf/pkg/model"
)

// EdgeInfo contains information about an edge in the model
type EdgeInfo struct {
	Start      geometry.Vector3
	End        geometry.Vector3
	Length     float64
	TriangleID int
}

// MeasurementResult contains various measurements of a mesh
type MeasurementResult struct {
	BoundingBox    geometry.BoundingBox
	Dimensions     geometry.Vector3
	Volume         float64
	SurfaceArea    float64
	TriangleCount  int
	VertexCount    int
	EdgeCount      int
	DegenerateTris int
	MinEdgeLength  float64
	MaxEdgeLength  float64
	AvgEdgeLength  float64
	AllEdges       []EdgeInfo
}

// AnalyzeMesh performs comprehensive analysis on a mesh
func AnalyzeMesh(mesh *model.Mesh) *MeasurementResult {
	result := &MeasurementResult{
		BoundingBox:   mesh.BoundingBox(),
		SurfaceArea:   mesh.Area(),
		TriangleCount: mesh.TriangleCount(),
		VertexCount:   mesh.VertexCount(),
		AllEdges:      make([]EdgeInfo, 0, 3*mesh.TriangleCount()),
	}

	result.Dimensions = result.BoundingBox.Size()
	result.Volume = float64(result.BoundingBox.Volume())

	minLength := math.MaxFloat64
	maxLength := 0.0
	totalLength := 0.0

	for i := range mesh.Triangles {
		triangle := mesh.TriangleAt(i)
		if triangle.Area() < geometry.Epsilon {
			result.DegenerateTris++
		}

		edges := []struct {
			start, end geometry.Vector3
		}{
			{triangle.V1, triangle.V2},
			{triangle.V2, triangle.V3},
			{triangle.V3, triangle.V1},
		}

		for _, edge := range edges {
			length := float64(edge.start.Distance(edge.end))

			result.AllEdges = append(result.AllEdges, EdgeInfo{
				Start:      edge.start,
				End:        edge.end,
				Length:     length,
				TriangleID: i,
			})

			totalLength += length
			if length < minLength {
				minLength = length
			}
			if length > maxLength {
				maxLength = length
			}
		}
	}

	result.EdgeCount = len(result.AllEdges)
	if result.EdgeCount > 0 {
		result.MinEdgeLength = minLength
		result.MaxEdgeLength = maxLength
		result.AvgEdgeLength = totalLength / float64(result.EdgeCount)
	}

	return result
}

// AnalyzeModel analyzes all meshes of a model as one
func AnalyzeModel(m *model.Model) *MeasurementResult {
	return AnalyzeMesh(model.Merge(m.Meshes...))
}

// FindLongestEdges returns the N longest edges
func FindLongestEdges(result *MeasurementResult, count int) []EdgeInfo {
	return sortedEdges(result, count, func(a, b EdgeInfo) bool { return a.Length > b.Length })
}

// FindShortestEdges returns the N shortest edges
func FindShortestEdges(result *MeasurementResult, count int) []EdgeInfo {
	return sortedEdges(result, count, func(a, b EdgeInfo) bool { return a.Length < b.Length })
}

// FindEdgesByLength returns the edges with min <= length <= max in mesh order
func FindEdgesByLength(result *MeasurementResult, min, max float64) []EdgeInfo {
	var edges []EdgeInfo
	for _, edge := range result.AllEdges {
		if edge.Length >= min && edge.Length <= max {
			edges = append(edges, edge)
		}
	}
	return edges
}

// TriangleInfo describes a single triangle of a mesh
type TriangleInfo struct {
	Index     int
	Area      float64
	Perimeter float64
	Triangle  geometry.Triangle
}

// Triangles lists the triangles of a mesh, optionally ordered by area.
// order < 0 sorts smallest first, order > 0 largest first.
func Triangles(mesh *model.Mesh, order int) []TriangleInfo {
	triangles := make([]TriangleInfo, 0, mesh.TriangleCount())
	for i := range mesh.Triangles {
		tri := mesh.TriangleAt(i)
		triangles = append(triangles, TriangleInfo{
			Index:     i,
			Area:      float64(tri.Area()),
			Perimeter: float64(tri.Perimeter()),
			Triangle:  tri,
		})
	}

	switch {
	case order > 0:
		sort.SliceStable(triangles, func(i, j int) bool { return triangles[i].Area > triangles[j].Area })
	case order < 0:
		sort.SliceStable(triangles, func(i, j int) bool { return triangles[i].Area < triangles[j].Area })
	}
	return triangles
}

func sortedEdges(result *MeasurementResult, count int, less func(a, b EdgeInfo) bool) []EdgeInfo {
	edges := make([]EdgeInfo, len(result.AllEdges))
	copy(edges, result.AllEdges)

	sort.SliceStable(edges, func(i, j int) bool {
		return less(edges[i], edges[j])
	})

	if count > len(edges) {
		count = len(edges)
	}
	return edges[:count]
}

// FormatVector formats a 3D vector
func FormatVector(v geometry.Vector3) string {
	return fmt.Sprintf("(%.6f, %.6f, %.6f)", v.X, v.Y, v.Z)
}
