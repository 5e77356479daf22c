package model

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/philipparndt/topsurf/pkg/geometry"
)

// ErrIndexOutOfRange is returned when a triangle references a missing vertex
var ErrIndexOutOfRange = errors.New("triangle index out of range")

// Mesh exclusively owns its vertices, triangles and material.
// Indices mirrors Triangles (three entries per triangle).
type Mesh struct {
	Name      string
	Vertices  []Vertex
	Triangles []Triangle
	Indices   []uint32
	Material  Material
	Centroid  geometry.Vector3
}

// NewMesh creates an empty named mesh
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:      name,
		Vertices:  make([]Vertex, 0),
		Triangles: make([]Triangle, 0),
		Indices:   make([]uint32, 0),
	}
}

// VertexCount returns the number of vertices in the mesh
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles in the mesh
func (m *Mesh) TriangleCount() int {
	return len(m.Triangles)
}

// IsEmpty reports whether the mesh has no triangles
func (m *Mesh) IsEmpty() bool {
	return len(m.Triangles) == 0
}

// AddVertex appends a vertex and returns its index
func (m *Mesh) AddVertex(v Vertex) uint32 {
	m.Vertices = append(m.Vertices, v)
	return uint32(len(m.Vertices) - 1)
}

// AddTriangle appends a triangle after checking that all indices are valid
func (m *Mesh) AddTriangle(a, b, c uint32, normal geometry.Vector3) error {
	n := uint32(len(m.Vertices))
	if a >= n || b >= n || c >= n {
		return errors.Wrapf(ErrIndexOutOfRange, "triangle (%d, %d, %d) with %d vertices", a, b, c, n)
	}
	m.Triangles = append(m.Triangles, Triangle{Indices: [3]uint32{a, b, c}, Normal: normal})
	m.Indices = append(m.Indices, a, b, c)
	return nil
}

// Validate checks that every triangle index is in range and that Indices
// mirrors Triangles
func (m *Mesh) Validate() error {
	if len(m.Indices) != 3*len(m.Triangles) {
		return fmt.Errorf("mesh %q: %d flattened indices for %d triangles", m.Name, len(m.Indices), len(m.Triangles))
	}
	n := uint32(len(m.Vertices))
	for i, tri := range m.Triangles {
		for k, idx := range tri.Indices {
			if idx >= n {
				return errors.Wrapf(ErrIndexOutOfRange, "mesh %q triangle %d index %d = %d with %d vertices", m.Name, i, k, idx, n)
			}
			if m.Indices[3*i+k] != idx {
				return fmt.Errorf("mesh %q: flattened index %d out of sync", m.Name, 3*i+k)
			}
		}
	}
	return nil
}

// SyncIndices rebuilds the flattened index list from the triangles
func (m *Mesh) SyncIndices() {
	m.Indices = m.Indices[:0]
	for _, tri := range m.Triangles {
		m.Indices = append(m.Indices, tri.Indices[0], tri.Indices[1], tri.Indices[2])
	}
}

// RecomputeCentroid sets the centroid to the mean vertex position
func (m *Mesh) RecomputeCentroid() {
	var center geometry.Vector3
	for _, v := range m.Vertices {
		center = center.Add(v.Position)
	}
	if len(m.Vertices) > 0 {
		center = center.Div(float32(len(m.Vertices)))
	}
	m.Centroid = center
}

// Corners returns the three positions of triangle i
func (m *Mesh) Corners(i int) (geometry.Vector3, geometry.Vector3, geometry.Vector3) {
	idx := m.Triangles[i].Indices
	return m.Vertices[idx[0]].Position, m.Vertices[idx[1]].Position, m.Vertices[idx[2]].Position
}

// TriangleAt returns triangle i as a positional triangle
func (m *Mesh) TriangleAt(i int) geometry.Triangle {
	v0, v1, v2 := m.Corners(i)
	return geometry.NewTriangle(m.Triangles[i].Normal, v0, v1, v2)
}

// FaceNormal returns the unit normal of triangle i. The cached normal is
// used when it is usable, otherwise it is computed from the positions.
func (m *Mesh) FaceNormal(i int) geometry.Vector3 {
	n := m.Triangles[i].Normal
	if n.LengthSquared() >= minNormalLengthSquared {
		return n.Normalize()
	}
	v0, v1, v2 := m.Corners(i)
	return geometry.TriangleNormal(v0, v1, v2)
}

// Area returns the total surface area of the mesh
func (m *Mesh) Area() float64 {
	total := 0.0
	for i := range m.Triangles {
		v0, v1, v2 := m.Corners(i)
		total += float64(geometry.TriangleArea(v0, v1, v2))
	}
	return total
}

// BoundingBox calculates the bounding box of the mesh vertices
func (m *Mesh) BoundingBox() geometry.BoundingBox {
	bbox := geometry.NewBoundingBox()
	for _, v := range m.Vertices {
		bbox.Extend(v.Position)
	}
	return bbox
}

// Clone returns a deep copy of the mesh
func (m *Mesh) Clone() *Mesh {
	c := *m
	c.Vertices = append([]Vertex(nil), m.Vertices...)
	c.Triangles = append([]Triangle(nil), m.Triangles...)
	c.Indices = append([]uint32(nil), m.Indices...)
	return &c
}

// Merge concatenates meshes into a new mesh named merged_mesh, offsetting
// triangle indices. A single mesh is returned as a clone.
func Merge(meshes ...*Mesh) *Mesh {
	if len(meshes) == 0 {
		return NewMesh("merged_mesh")
	}
	if len(meshes) == 1 {
		return meshes[0].Clone()
	}

	result := NewMesh("merged_mesh")
	result.Material = meshes[0].Material
	for _, mesh := range meshes {
		offset := uint32(len(result.Vertices))
		result.Vertices = append(result.Vertices, mesh.Vertices...)
		for _, tri := range mesh.Triangles {
			moved := Triangle{Normal: tri.Normal}
			for k, idx := range tri.Indices {
				moved.Indices[k] = idx + offset
			}
			result.Triangles = append(result.Triangles, moved)
		}
	}
	result.SyncIndices()
	result.RecomputeCentroid()
	return result
}
