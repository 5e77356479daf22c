// Package meshtest builds small meshes shared by package tests.
package meshtest

import (
	"github.com/philipparndt/topsurf/pkg/geometry"
	"github.com/philipparndt/topsurf/pkg/model"
)

// Corner i of the unit cube has coordinates (i&1, i>>1&1, i>>2&1)
var cubeCorners = [8]geometry.Vector3{
	{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}, {X: 1, Y: 1, Z: 0},
	{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 0, Y: 1, Z: 1}, {X: 1, Y: 1, Z: 1},
}

// CubeFaces lists the counter-clockwise triangles of the unit cube, two per
// face in the order -Z, +Z, -Y, +Y, -X, +X
var CubeFaces = [12][3]uint32{
	{0, 2, 1}, {1, 2, 3},
	{4, 5, 7}, {4, 7, 6},
	{0, 1, 5}, {0, 5, 4},
	{2, 6, 7}, {2, 7, 3},
	{0, 4, 6}, {0, 6, 2},
	{1, 3, 7}, {1, 7, 5},
}

// Cube returns the unit cube [0,1]^3 with 8 shared vertices and outward normals
func Cube() *model.Mesh {
	mesh := model.NewMesh("cube")
	for _, c := range cubeCorners {
		mesh.AddVertex(model.NewVertex(c, geometry.Vector3{}))
	}
	for _, f := range CubeFaces {
		v0, v1, v2 := cubeCorners[f[0]], cubeCorners[f[1]], cubeCorners[f[2]]
		if err := mesh.AddTriangle(f[0], f[1], f[2], geometry.TriangleNormal(v0, v1, v2)); err != nil {
			panic(err)
		}
	}
	mesh.CalculateNormals()
	mesh.RecomputeCentroid()
	return mesh
}

// SoupCube returns the unit cube with three private vertices per triangle,
// the layout an ASCII STL reader produces
func SoupCube() *model.Mesh {
	mesh := model.NewMesh("cube")
	for _, f := range CubeFaces {
		v0, v1, v2 := cubeCorners[f[0]], cubeCorners[f[1]], cubeCorners[f[2]]
		n := geometry.TriangleNormal(v0, v1, v2)
		a := mesh.AddVertex(model.NewVertex(v0, n))
		b := mesh.AddVertex(model.NewVertex(v1, n))
		c := mesh.AddVertex(model.NewVertex(v2, n))
		if err := mesh.AddTriangle(a, b, c, n); err != nil {
			panic(err)
		}
	}
	mesh.RecomputeCentroid()
	return mesh
}

// Grid returns an n x n grid of unit squares in the plane z = height,
// two triangles per square, facing +Z
func Grid(n int, height float32) *model.Mesh {
	mesh := model.NewMesh("grid")
	for y := 0; y <= n; y++ {
		for x := 0; x <= n; x++ {
			mesh.AddVertex(model.NewVertex(geometry.NewVector3(float32(x), float32(y), height), geometry.Up))
		}
	}
	row := uint32(n + 1)
	for y := uint32(0); y < uint32(n); y++ {
		for x := uint32(0); x < uint32(n); x++ {
			a := y*row + x
			b, c, d := a+1, a+row, a+row+1
			if err := mesh.AddTriangle(a, b, d, geometry.Up); err != nil {
				panic(err)
			}
			if err := mesh.AddTriangle(a, d, c, geometry.Up); err != nil {
				panic(err)
			}
		}
	}
	mesh.RecomputeCentroid()
	return mesh
}

// Positions returns the corner positions of every triangle, for comparing
// meshes independently of vertex indexing
func Positions(mesh *model.Mesh) [][3]geometry.Vector3 {
	out := make([][3]geometry.Vector3, mesh.TriangleCount())
	for i := range mesh.Triangles {
		v0, v1, v2 := mesh.Corners(i)
		out[i] = [3]geometry.Vector3{v0, v1, v2}
	}
	return out
}
