package model

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/philipparndt/topsurf/pkg/geometry"
)

// Transform applies an affine transform in place. Positions use the full
// matrix, vertex and face normals the inverse-transpose of its 3x3 block.
func (m *Mesh) Transform(t mgl32.Mat4) {
	normalMatrix := geometry.NormalMatrix(t)
	for i := range m.Vertices {
		v := &m.Vertices[i]
		v.Position = geometry.TransformPoint(t, v.Position)
		if !v.Normal.IsZero() {
			v.Normal = geometry.TransformDirection(normalMatrix, v.Normal)
		}
	}
	for i := range m.Triangles {
		if !m.Triangles[i].Normal.IsZero() {
			m.Triangles[i].Normal = geometry.TransformDirection(normalMatrix, m.Triangles[i].Normal)
		}
	}
	m.RecomputeCentroid()
}

// Transform applies t to every mesh and rebuilds the bounding box
func (m *Model) Transform(t mgl32.Mat4) {
	m.Bounds.Reset()
	for _, mesh := range m.Meshes {
		mesh.Transform(t)
		m.Bounds.Union(mesh.BoundingBox())
	}
}
