package segment

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/topsurf/internal/meshtest"
	"github.com/philipparndt/topsurf/pkg/geometry"
	"github.com/philipparndt/topsurf/pkg/model"
)

// stepMesh returns a flat 3x3 grid facing +Z next to a 2x2 grid facing +X
func stepMesh(t *testing.T) *model.Mesh {
	t.Helper()
	wall := meshtest.Grid(2, 0)
	wall.Transform(geometry.Rotation(0, 90, 0))
	mesh := model.Merge(meshtest.Grid(3, 1), wall)
	require.NoError(t, mesh.Validate())
	return mesh
}

// vertexFan returns four +Z triangles that only touch at the origin
func vertexFan(t *testing.T) *model.Mesh {
	t.Helper()
	mesh := model.NewMesh("fan")
	origin := mesh.AddVertex(model.NewVertex(geometry.Vector3{}, geometry.Up))
	for k := 0; k < 4; k++ {
		a := float64(k) * math.Pi / 2
		b := a + math.Pi/4
		p := mesh.AddVertex(model.NewVertex(geometry.NewVector3(float32(math.Cos(a)), float32(math.Sin(a)), 0), geometry.Up))
		q := mesh.AddVertex(model.NewVertex(geometry.NewVector3(float32(math.Cos(b)), float32(math.Sin(b)), 0), geometry.Up))
		require.NoError(t, mesh.AddTriangle(origin, p, q, geometry.Up))
	}
	return mesh
}

func sizes(groups [][]int) []int {
	out := make([]int, len(groups))
	for i, g := range groups {
		out[i] = len(g)
	}
	return out
}

func assertSymmetric(t *testing.T, adj Adjacency) {
	t.Helper()
	for a, neighbors := range adj.Neighbors {
		for _, b := range neighbors {
			assert.NotEqual(t, a, b, "triangle %d is its own neighbor", a)
			assert.Contains(t, adj.Neighbors[b], a, "%d -> %d has no reverse edge", a, b)
		}
	}
}

func TestRegionGrowingCube(t *testing.T) {
	cubes := map[string]struct {
		mesh     *model.Mesh
		vertices int
	}{
		"shared": {meshtest.Cube(), 4},
		"soup":   {meshtest.SoupCube(), 6},
	}
	for name, tc := range cubes {
		cube := tc.mesh
		t.Run(name, func(t *testing.T) {
			opts := DefaultOptions().WithAngle(5)
			regions := GrowRegions(cube, opts)

			assert.Equal(t, []int{2, 2, 2, 2, 2, 2}, sizes(regions.Groups))
			assert.Empty(t, regions.Noise)
			assert.Equal(t, 2, regions.Passes)
			assert.InDelta(t, 7.5, regions.Angle, 1e-9)
			assert.False(t, regions.VertexFallback)

			surfaces := RegionGrowing(cube, opts)
			require.Len(t, surfaces, 6)
			for k, s := range surfaces {
				assert.Equal(t, 2, s.TriangleCount())
				assert.Equal(t, tc.vertices, s.VertexCount())
				assert.Equal(t, fmt.Sprintf("%s%d", RegionPrefix, k), s.Name)
				require.NoError(t, s.Validate())
			}
			// Faces are discovered in triangle order: -Z then +Z
			assert.Equal(t, []int{2, 3}, regions.Groups[1])
		})
	}
}

func TestRegionGrowingFlatGridSinglePass(t *testing.T) {
	regions := GrowRegions(meshtest.Grid(2, 0), DefaultOptions())

	assert.Equal(t, 1, regions.Passes)
	assert.Equal(t, []int{8}, sizes(regions.Groups))
	assert.Empty(t, regions.Noise)
}

func TestSinglePassReleasesSmallRegionsToNoise(t *testing.T) {
	wall := meshtest.Grid(1, 0)
	wall.Transform(geometry.Rotation(0, 90, 0))
	mesh := model.Merge(meshtest.Grid(3, 0), wall)

	regions := GrowRegions(mesh, DefaultOptions())
	assert.Equal(t, 1, regions.Passes)
	assert.Equal(t, []int{18}, sizes(regions.Groups))
	assert.Equal(t, []int{18, 19}, regions.Noise)

	surfaces := RegionGrowing(mesh, DefaultOptions())
	require.Len(t, surfaces, 2)
	assert.Equal(t, NoiseName, surfaces[1].Name)
	assert.Equal(t, 2, surfaces[1].TriangleCount())
}

func TestRegionGrowingNoiseRegion(t *testing.T) {
	opts := DefaultOptions().WithAngle(5)
	opts.FinalMinRegionSize = 3

	regions := GrowRegions(meshtest.Cube(), opts)
	assert.Empty(t, regions.Groups)
	assert.Len(t, regions.Noise, 12)

	surfaces := RegionGrowing(meshtest.Cube(), opts)
	require.Len(t, surfaces, 1)
	assert.Equal(t, NoiseName, surfaces[0].Name)
	assert.Equal(t, 12, surfaces[0].TriangleCount())
	assert.Equal(t, "Material_0", surfaces[0].Material.Name)
}

func TestRegionGrowingRetryTrigger(t *testing.T) {
	mesh := stepMesh(t)

	// 18 + 8 triangles form two regions in the first pass
	opts := DefaultOptions().WithAngle(10)
	regions := GrowRegions(mesh, opts)
	assert.Equal(t, 1, regions.Passes)
	assert.Equal(t, []int{18, 8}, sizes(regions.Groups))

	// A large enough floor leaves the wall unassigned, which exceeds the
	// retry ratio
	opts.MinRegionSize = 10
	opts.RetryUnassignedRatio = 0.2
	regions = GrowRegions(mesh, opts)
	assert.Equal(t, 2, regions.Passes)
	assert.InDelta(t, 15, regions.Angle, 1e-9)
	assert.Equal(t, []int{18, 8}, sizes(regions.Groups))

	// With a higher ratio the wall stays in the noise region
	opts.RetryUnassignedRatio = 0.5
	regions = GrowRegions(mesh, opts)
	assert.Equal(t, 1, regions.Passes)
	assert.Equal(t, []int{18}, sizes(regions.Groups))
	assert.Len(t, regions.Noise, 8)
	assert.Len(t, regions.All(), 2)
}

func TestRetryAngleIsCapped(t *testing.T) {
	opts := DefaultOptions().WithAngle(40)
	opts.FinalMinRegionSize = 3

	regions := GrowRegions(meshtest.Cube(), opts)
	assert.Equal(t, 2, regions.Passes)
	assert.InDelta(t, 45, regions.Angle, 1e-9)
}

func TestRegionGrowingEmpty(t *testing.T) {
	assert.Nil(t, RegionGrowing(nil, DefaultOptions()))
	assert.Nil(t, RegionGrowing(model.NewMesh("empty"), DefaultOptions()))
	assert.Nil(t, NormalClustering(model.NewMesh("empty"), DefaultOptions()))
	assert.Nil(t, Groups(nil, MethodRegion, DefaultOptions()))
}

func TestRunPairsGroupsWithSurfaces(t *testing.T) {
	wall := meshtest.Grid(1, 0)
	wall.Transform(geometry.Rotation(0, 90, 0))
	mesh := model.Merge(meshtest.Grid(3, 0), wall)

	for _, method := range []Method{MethodRegion, MethodCluster, MethodFaces} {
		result := Run(mesh, method, DefaultOptions())
		require.Len(t, result.Surfaces, len(result.Groups), method)
		for k, group := range result.Groups {
			assert.Equal(t, len(group), result.Surfaces[k].TriangleCount(), method)
		}
		assert.Equal(t, Groups(mesh, method, DefaultOptions()), result.Groups, method)
	}

	region := Run(mesh, MethodRegion, DefaultOptions())
	assert.Equal(t, NoiseName, region.Surfaces[len(region.Surfaces)-1].Name)
	assert.Equal(t, []int{18, 19}, region.Groups[len(region.Groups)-1])
}

func TestNilMeshEntryPoints(t *testing.T) {
	opts := DefaultOptions()
	assert.NotPanics(t, func() {
		assert.Nil(t, ClusterLabels(nil, opts))
		assert.Nil(t, ClusterNormals(nil, opts))
		assert.Nil(t, NormalClustering(nil, opts))
		assert.Empty(t, BuildAdjacency(nil, nil, opts).Neighbors)
		assert.Nil(t, SeparateFaces(nil, opts))
		assert.Nil(t, FaceNormals(nil, nil))
		assert.Empty(t, GrowRegions(nil, opts).Groups)
		for _, method := range []Method{MethodRegion, MethodCluster, MethodFaces} {
			assert.Nil(t, Segment(nil, method, opts))
			assert.Nil(t, Groups(nil, method, opts))
		}
	})
	assert.Nil(t, SeparateFaces(model.NewMesh("empty"), opts))
	assert.Nil(t, ClusterNormals(model.NewMesh("empty"), opts))
}

func TestEdgeAdjacencySymmetric(t *testing.T) {
	cube := meshtest.SoupCube()
	adj := BuildAdjacency(cube, FaceNormals(cube, nil), DefaultOptions())

	assert.False(t, adj.VertexFallback)
	assert.Equal(t, 12, adj.WithNeighbors())
	assertSymmetric(t, adj)
	// Each triangle of a closed cube has three edge neighbors
	for i, n := range adj.Neighbors {
		assert.Len(t, n, 3, "triangle %d", i)
	}
}

func TestVertexAdjacencyFallback(t *testing.T) {
	fan := vertexFan(t)
	adj := BuildAdjacency(fan, FaceNormals(fan, nil), DefaultOptions())

	assert.True(t, adj.VertexFallback)
	assertSymmetric(t, adj)
	for _, n := range adj.Neighbors {
		assert.Len(t, n, 3)
	}

	regions := GrowRegions(fan, DefaultOptions())
	assert.True(t, regions.VertexFallback)
	assert.Equal(t, [][]int{{0, 1, 2, 3}}, regions.Groups)
}

func TestVertexAdjacencyRespectsNormalAngle(t *testing.T) {
	fan := vertexFan(t)
	// Tilt the last triangle steeply away from the others
	last := fan.Triangles[3].Indices
	fan.Vertices[last[2]].Position.Z = 5
	fan.CalculateNormals()

	adj := BuildAdjacency(fan, FaceNormals(fan, nil), DefaultOptions())
	require.True(t, adj.VertexFallback)
	assertSymmetric(t, adj)
	assert.Empty(t, adj.Neighbors[3])
	assert.Equal(t, []int{1, 2}, adj.Neighbors[0])
}

func TestDBSCANNoise(t *testing.T) {
	up := geometry.Up
	side := geometry.NewVector3(1, 0, 0)
	points := []geometry.Vector3{up, up, side, up, up}

	labels := DBSCAN(points, 1-cosDegrees(5), 3)
	assert.Equal(t, []int{0, 0, Noise, 0, 0}, labels)

	assert.Equal(t, []int{Noise, Noise}, DBSCAN([]geometry.Vector3{up, up}, 0.1, 3))
	assert.Empty(t, DBSCAN(nil, 0.1, 3))
}

func TestDBSCANBorderPoints(t *testing.T) {
	// Four points within 4 degrees of +Z plus one at 8 degrees: the outer
	// point is reachable from a core point but is not a core point itself
	tilt := func(deg float64) geometry.Vector3 {
		r := deg * math.Pi / 180
		return geometry.NewVector3(float32(math.Sin(r)), 0, float32(math.Cos(r)))
	}
	points := []geometry.Vector3{tilt(0), tilt(1), tilt(2), tilt(4), tilt(8), tilt(60)}

	labels := DBSCAN(points, 1-cosDegrees(5), 3)
	assert.Equal(t, []int{0, 0, 0, 0, 0, Noise}, labels)
}

func TestClusterNormalsPartition(t *testing.T) {
	mesh := stepMesh(t)
	opts := DefaultOptions().WithAngle(10)

	labels := ClusterLabels(mesh, opts)
	require.Len(t, labels, mesh.TriangleCount())

	clusters := ClusterNormals(mesh, opts)
	assert.Equal(t, []int{18, 8}, sizes(clusters))

	seen := make(map[int]int)
	for k, cluster := range clusters {
		for _, tri := range cluster {
			seen[tri]++
			assert.Equal(t, k, labels[tri])
		}
	}
	for tri, label := range labels {
		if label == Noise {
			assert.Zero(t, seen[tri])
		} else {
			assert.Equal(t, 1, seen[tri], "triangle %d", tri)
		}
	}

	surfaces := NormalClustering(mesh, opts)
	require.Len(t, surfaces, 2)
	assert.Equal(t, "Surface_0", surfaces[0].Name)
	assert.Equal(t, "Surface_1", surfaces[1].Name)
	assert.Equal(t, 16, surfaces[0].VertexCount())
}

func TestClusterNormalsDropsSmallClusters(t *testing.T) {
	// The cube has six normals with two triangles each: all noise
	assert.Empty(t, ClusterNormals(meshtest.Cube(), DefaultOptions()))
	assert.Empty(t, NormalClustering(meshtest.Cube(), DefaultOptions()))

	opts := DefaultOptions()
	opts.MinPts = 1
	opts.MinClusterSize = 3
	assert.Empty(t, ClusterNormals(meshtest.Cube(), opts))

	opts.MinClusterSize = 2
	assert.Len(t, ClusterNormals(meshtest.Cube(), opts), 6)
}

func TestSegmentationIsDeterministic(t *testing.T) {
	mesh := stepMesh(t)
	opts := DefaultOptions().WithAngle(10)

	for _, method := range []Method{MethodRegion, MethodCluster} {
		first := Segment(mesh, method, opts)
		second := Segment(mesh, method, opts)
		require.Equal(t, len(first), len(second))
		for i := range first {
			assert.Equal(t, first[i].Name, second[i].Name)
			assert.Equal(t, first[i].Triangles, second[i].Triangles)
			assert.Equal(t, first[i].Material, second[i].Material)
		}
		assert.Equal(t, Groups(mesh, method, opts), Groups(mesh, method, opts))
	}
}

func TestSurfaceColor(t *testing.T) {
	assert.Equal(t, SurfaceColor(0, 3), SurfaceColor(0, 3))
	assert.NotEqual(t, SurfaceColor(0, 3), SurfaceColor(0, 4))
	assert.NotEqual(t, SurfaceColor(0, 3), SurfaceColor(7, 3))

	for k := 0; k < 50; k++ {
		c := SurfaceColor(42, k)
		for _, f := range []float32{c.X, c.Y, c.Z} {
			assert.GreaterOrEqual(t, f, float32(0.1))
			assert.LessOrEqual(t, f, float32(0.9))
		}
	}

	m := SurfaceMaterial(0, 2)
	assert.Equal(t, "Material_2", m.Name)
	assert.Equal(t, SurfaceColor(0, 2), m.Diffuse)
}

func TestBuildSurfaceDoesNotAlias(t *testing.T) {
	cube := meshtest.Cube()
	surface := BuildSurface(cube, []int{2, 3}, "top", SurfaceMaterial(0, 0))

	require.NoError(t, surface.Validate())
	assert.Equal(t, 4, surface.VertexCount())
	assert.Equal(t, geometry.NewVector3(0.5, 0.5, 1), surface.Centroid)
	assert.Equal(t, geometry.Up, surface.Triangles[0].Normal)

	surface.Vertices[0].Position.Z = 100
	for _, v := range cube.Vertices {
		assert.LessOrEqual(t, v.Position.Z, float32(1))
	}
}

func TestSeparateFaces(t *testing.T) {
	faces := Segment(meshtest.Cube(), MethodFaces, DefaultOptions())
	require.Len(t, faces, 12)
	assert.Equal(t, "Face_0", faces[0].Name)
	for _, f := range faces {
		assert.Equal(t, 1, f.TriangleCount())
		assert.Equal(t, 3, f.VertexCount())
	}
}

func TestColorize(t *testing.T) {
	cube := meshtest.Cube()
	colored := Colorize(cube, [][]int{{2, 3}}, 0)

	top := SurfaceColor(0, 0)
	for _, idx := range colored.Triangles[2].Indices {
		assert.Equal(t, top, colored.Vertices[idx].Color)
	}
	assert.Equal(t, geometry.Splat(1), colored.Vertices[0].Color)
	assert.Equal(t, model.DefaultVertexColor, cube.Vertices[0].Color)
}

func TestFaceNormalsDegenerate(t *testing.T) {
	mesh := model.NewMesh("flat")
	p := geometry.NewVector3(1, 2, 3)
	a := mesh.AddVertex(model.NewVertex(p, geometry.Vector3{}))
	b := mesh.AddVertex(model.NewVertex(p, geometry.Vector3{}))
	c := mesh.AddVertex(model.NewVertex(p, geometry.Vector3{}))
	require.NoError(t, mesh.AddTriangle(a, b, c, geometry.Vector3{}))

	assert.Equal(t, []geometry.Vector3{geometry.Up}, FaceNormals(mesh, nil))

	// A lone degenerate triangle is noise for both algorithms
	assert.Empty(t, NormalClustering(mesh, DefaultOptions()))
	surfaces := RegionGrowing(mesh, DefaultOptions())
	require.Len(t, surfaces, 1)
	assert.Equal(t, NoiseName, surfaces[0].Name)
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		input    string
		expected Method
		ok       bool
	}{
		{"", MethodRegion, true},
		{"Region", MethodRegion, true},
		{"cluster", MethodCluster, true},
		{" faces ", MethodFaces, true},
		{"kmeans", "", false},
	}
	for _, tt := range tests {
		m, err := ParseMethod(tt.input)
		if tt.ok {
			require.NoError(t, err)
			assert.Equal(t, tt.expected, m)
		} else {
			assert.ErrorIs(t, err, ErrUnknownMethod)
		}
	}
}
