package segment

import (
	"fmt"
	"math/rand"

	"github.com/philipparndt/topsurf/pkg/geometry"
	"github.com/philipparndt/topsurf/pkg/model"
)

// Surface name prefixes
const (
	ClusterPrefix = "Surface_"
	RegionPrefix  = "ConnectedSurface_"
	FacePrefix    = "Face_"
	NoiseName     = "NoiseSurface"
)

// SurfaceColor returns the deterministic diffuse color of surface k.
// Components lie in [0.1, 0.9].
func SurfaceColor(seed int64, k int) geometry.Vector3 {
	rng := rand.New(rand.NewSource(seed + int64(k)*1000 + 1))
	component := func() float32 {
		return 0.1 + 0.8*rng.Float32()
	}
	r := component()
	g := component()
	b := component()
	return geometry.NewVector3(r, g, b)
}

// SurfaceMaterial returns the synthetic material of surface k
func SurfaceMaterial(seed int64, k int) model.Material {
	m := model.NewMaterial(fmt.Sprintf("Material_%d", k))
	m.Diffuse = SurfaceColor(seed, k)
	return m
}

// BuildSurface copies the given triangles of source into a new mesh with
// its own compacted vertex array. The source is not modified.
func BuildSurface(source *model.Mesh, triangles []int, name string, material model.Material) *model.Mesh {
	surface := model.NewMesh(name)
	surface.Material = material
	remap := make(map[uint32]uint32, len(triangles))

	for _, t := range triangles {
		var idx [3]uint32
		for k, orig := range source.Triangles[t].Indices {
			mapped, ok := remap[orig]
			if !ok {
				mapped = surface.AddVertex(source.Vertices[orig])
				remap[orig] = mapped
			}
			idx[k] = mapped
		}
		// Indices come from the remap, so this cannot fail
		_ = surface.AddTriangle(idx[0], idx[1], idx[2], source.FaceNormal(t))
	}
	surface.RecomputeCentroid()
	return surface
}

// BuildSurfaces converts triangle groups into meshes named prefix<k>, with
// material k colored from seed
func BuildSurfaces(source *model.Mesh, groups [][]int, prefix string, seed int64) []*model.Mesh {
	surfaces := make([]*model.Mesh, 0, len(groups))
	for k, group := range groups {
		surfaces = append(surfaces, BuildSurface(source, group, fmt.Sprintf("%s%d", prefix, k), SurfaceMaterial(seed, k)))
	}
	return surfaces
}

// Colorize returns a copy of source whose vertex colors mark the surface
// each vertex belongs to. Vertices outside every group are white; a vertex
// on a boundary takes the color of the last group containing it.
func Colorize(source *model.Mesh, groups [][]int, seed int64) *model.Mesh {
	colored := source.Clone()
	for i := range colored.Vertices {
		colored.Vertices[i].Color = geometry.Splat(1)
	}
	for k, group := range groups {
		color := SurfaceColor(seed, k)
		for _, t := range group {
			for _, idx := range colored.Triangles[t].Indices {
				colored.Vertices[idx].Color = color
			}
		}
	}
	return colored
}

// SeparateFaces returns one single-triangle mesh per triangle, named
// Face_<i>
func SeparateFaces(mesh *model.Mesh, opts Options) []*model.Mesh {
	if mesh == nil || mesh.IsEmpty() {
		return nil
	}
	return BuildSurfaces(mesh, faceGroups(mesh), FacePrefix, opts.ColorSeed)
}

func faceGroups(mesh *model.Mesh) [][]int {
	groups := make([][]int, mesh.TriangleCount())
	for i := range groups {
		groups[i] = []int{i}
	}
	return groups
}
