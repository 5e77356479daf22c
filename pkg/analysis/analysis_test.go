package analysis

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/topsurf/internal/meshtest"
	"github.com/philipparndt/topsurf/pkg/geometry"
	"github.com/philipparndt/topsurf/pkg/meshio"
	"github.com/philipparndt/topsurf/pkg/model"
	"github.com/philipparndt/topsurf/pkg/segment"
)

func TestFindTopSurfaceCube(t *testing.T) {
	cube := meshtest.Cube()

	top, surfaces, err := FindTopSurface(cube, segment.DefaultOptions().WithAngle(5), DefaultSelectOptions())
	require.NoError(t, err)
	require.Len(t, surfaces, 6)

	assert.Equal(t, 1, top.Index)
	assert.Equal(t, 1.0, top.Score)
	assert.Equal(t, 1.0, top.Height)
	assert.InDelta(t, 1.0, top.Area, 1e-6)
	assert.False(t, top.Fallback)
	assert.Equal(t, 2, top.Surface.TriangleCount())
	for _, v := range top.Surface.Vertices {
		assert.Equal(t, float32(1), v.Position.Z)
	}
}

func TestSelectAlongOtherAxes(t *testing.T) {
	surfaces := segment.RegionGrowing(meshtest.Cube(), segment.DefaultOptions().WithAngle(5))

	opts := DefaultSelectOptions()
	opts.UpAxis = geometry.AxisX
	top, err := SelectTopSurface(surfaces, opts)
	require.NoError(t, err)
	// Faces are -Z, +Z, -Y, +Y, -X, +X
	assert.Equal(t, 5, top.Index)
	assert.Equal(t, geometry.NewVector3(1, 0, 0), top.Normal)

	opts.UpAxis = geometry.AxisY
	top, err = SelectTopSurface(surfaces, opts)
	require.NoError(t, err)
	assert.Equal(t, 3, top.Index)
}

func TestSelectPrefersHighestCandidate(t *testing.T) {
	low := meshtest.Grid(4, 0)
	high := meshtest.Grid(1, 2)

	top, err := SelectTopSurface([]*model.Mesh{low, high}, DefaultSelectOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, top.Index)
	assert.Equal(t, 2.0, top.Height)
}

func TestSelectBreaksHeightTiesByScore(t *testing.T) {
	flat := meshtest.Grid(1, 1)
	tilted := meshtest.Grid(1, 0)
	tilted.Transform(geometry.Rotation(20, 0, 0))
	// Lift the tilted grid so that its top lies 5mm above the flat one
	height := MaxHeight(tilted, geometry.AxisZ)
	for i := range tilted.Vertices {
		tilted.Vertices[i].Position.Z += float32(1.005 - height)
	}

	top, err := SelectTopSurface([]*model.Mesh{tilted, flat}, DefaultSelectOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, top.Index)
	assert.Equal(t, 1.0, top.Score)

	// Outside of the tolerance the higher surface wins
	opts := DefaultSelectOptions()
	opts.HeightTolerance = 0.001
	top, err = SelectTopSurface([]*model.Mesh{tilted, flat}, opts)
	require.NoError(t, err)
	assert.Equal(t, 0, top.Index)
	assert.Less(t, top.Score, 1.0)
}

func TestSelectFallsBackToLargest(t *testing.T) {
	small := meshtest.Grid(1, 0)
	small.Transform(geometry.Rotation(180, 0, 0))
	large := meshtest.Grid(3, 0)
	large.Transform(geometry.Rotation(90, 0, 0))

	top, err := SelectTopSurface([]*model.Mesh{small, large}, DefaultSelectOptions())
	require.NoError(t, err)
	assert.True(t, top.Fallback)
	assert.Equal(t, 1, top.Index)
	assert.InDelta(t, 0, top.Score, 1e-5)
}

func TestSelectNoSurfaces(t *testing.T) {
	_, err := SelectTopSurface(nil, DefaultSelectOptions())
	assert.True(t, errors.Is(err, ErrNoSurfaces))
	assert.True(t, errors.Is(err, meshio.ErrEmptyResult))

	_, _, err = FindTopSurface(model.NewMesh("empty"), segment.DefaultOptions(), DefaultSelectOptions())
	assert.True(t, errors.Is(err, ErrNoSurfaces))
}

func TestScoreSkipsDegenerateTriangles(t *testing.T) {
	mesh := meshtest.Grid(1, 0)
	p := geometry.NewVector3(3, 3, 3)
	a := mesh.AddVertex(model.NewVertex(p, geometry.Vector3{}))
	b := mesh.AddVertex(model.NewVertex(p, geometry.Vector3{}))
	require.NoError(t, mesh.AddTriangle(a, b, b, geometry.NewVector3(1, 0, 0)))

	// The sideways normal carries no area and does not change the average
	n, area := AverageNormal(mesh)
	assert.Equal(t, geometry.Up, n)
	assert.InDelta(t, 1.0, area, 1e-6)
}

func TestScoreZeroAreaSurface(t *testing.T) {
	mesh := model.NewMesh("dust")
	p := geometry.NewVector3(1, 1, 1)
	for i := 0; i < 3; i++ {
		mesh.AddVertex(model.NewVertex(p, geometry.Vector3{}))
	}
	require.NoError(t, mesh.AddTriangle(0, 1, 2, geometry.Vector3{}))

	n, area := AverageNormal(mesh)
	assert.Equal(t, geometry.Up, n)
	assert.Zero(t, area)
	assert.Equal(t, 1.0, NormalScore(mesh, geometry.AxisZ))
	assert.Equal(t, 0.0, NormalScore(model.NewMesh("empty"), geometry.AxisZ))
}

func TestAnalyzeMesh(t *testing.T) {
	result := AnalyzeMesh(meshtest.Cube())

	assert.Equal(t, 12, result.TriangleCount)
	assert.Equal(t, 8, result.VertexCount)
	assert.Equal(t, 36, result.EdgeCount)
	assert.InDelta(t, 6.0, result.SurfaceArea, 1e-6)
	assert.InDelta(t, 1.0, result.Volume, 1e-6)
	assert.InDelta(t, 1.0, result.MinEdgeLength, 1e-6)
	assert.InDelta(t, 1.41421356, result.MaxEdgeLength, 1e-5)
	assert.Zero(t, result.DegenerateTris)

	longest := FindLongestEdges(result, 3)
	require.Len(t, longest, 3)
	assert.InDelta(t, 1.41421356, longest[0].Length, 1e-5)

	shortest := FindShortestEdges(result, 100)
	assert.Len(t, shortest, 36)
	assert.InDelta(t, 1.0, shortest[0].Length, 1e-6)
}

func TestAnalyzeModel(t *testing.T) {
	m := model.NewModel("two")
	m.AddMesh(meshtest.Cube())
	m.AddMesh(meshtest.Grid(2, 5))

	result := AnalyzeModel(m)
	assert.Equal(t, 20, result.TriangleCount)
	assert.Equal(t, geometry.NewVector3(2, 2, 5), result.Dimensions)

	empty := AnalyzeMesh(model.NewMesh("empty"))
	assert.Zero(t, empty.EdgeCount)
	assert.Zero(t, empty.MinEdgeLength)
}

func TestFormatVector(t *testing.T) {
	assert.Equal(t, "(1.000000, -2.500000, 0.000000)", FormatVector(geometry.NewVector3(1, -2.5, 0)))
}

func TestFindEdgesByLength(t *testing.T) {
	result := AnalyzeMesh(meshtest.Cube())

	assert.Len(t, FindEdgesByLength(result, 0.5, 1.1), 24)
	assert.Len(t, FindEdgesByLength(result, 1.2, 2), 12)
	assert.Empty(t, FindEdgesByLength(result, 2, 3))
}

func TestTrianglesOrderedByArea(t *testing.T) {
	mesh := model.NewMesh("mixed")
	a := mesh.AddVertex(model.Vertex{Position: geometry.NewVector3(0, 0, 0)})
	b := mesh.AddVertex(model.Vertex{Position: geometry.NewVector3(1, 0, 0)})
	c := mesh.AddVertex(model.Vertex{Position: geometry.NewVector3(0, 1, 0)})
	d := mesh.AddVertex(model.Vertex{Position: geometry.NewVector3(4, 0, 0)})
	e := mesh.AddVertex(model.Vertex{Position: geometry.NewVector3(0, 4, 0)})
	require.NoError(t, mesh.AddTriangle(a, b, c, geometry.Up))
	require.NoError(t, mesh.AddTriangle(a, d, e, geometry.Up))

	natural := Triangles(mesh, 0)
	require.Len(t, natural, 2)
	assert.Equal(t, 0, natural[0].Index)

	largest := Triangles(mesh, 1)
	assert.Equal(t, 1, largest[0].Index)
	assert.InDelta(t, 8.0, largest[0].Area, 1e-6)
	assert.InDelta(t, 8+4*math.Sqrt2, largest[0].Perimeter, 1e-5)

	smallest := Triangles(mesh, -1)
	assert.Equal(t, 0, smallest[0].Index)
	assert.InDelta(t, 0.5, smallest[0].Area, 1e-6)
}
