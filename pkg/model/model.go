// Package model holds the canonical mesh data model shared by ingestion,
// export and segmentation.
package model

import (
	"github.com/philipparndt/topsurf/pkg/geometry"
)

// DefaultVertexColor is the light gray assigned to vertices read from files
var DefaultVertexColor = geometry.NewVector3(0.8, 0.8, 0.8)

// ModelType identifies the file format a model was read from
type ModelType int

const (
	Unknown ModelType = iota
	STLASCII
	STLBinary
	OBJ
)

func (t ModelType) String() string {
	switch t {
	case STLASCII:
		return "STL (ASCII)"
	case STLBinary:
		return "STL (binary)"
	case OBJ:
		return "OBJ"
	default:
		return "unknown"
	}
}

// Vertex is a mesh corner with its shading attributes
type Vertex struct {
	Position geometry.Vector3
	Normal   geometry.Vector3
	TexCoord geometry.Vector2
	Color    geometry.Vector3
}

// NewVertex creates a vertex with the default color
func NewVertex(position, normal geometry.Vector3) Vertex {
	return Vertex{
		Position: position,
		Normal:   normal,
		Color:    DefaultVertexColor,
	}
}

// Triangle references three vertices of its owning mesh
type Triangle struct {
	Indices [3]uint32
	// Normal is the cached face normal; zero if not computed yet
	Normal geometry.Vector3
}

// Material describes the surface appearance of a mesh
type Material struct {
	Name       string
	Ambient    geometry.Vector3
	Diffuse    geometry.Vector3
	Specular   geometry.Vector3
	Shininess  float32
	DiffuseMap string
	NormalMap  string
}

// NewMaterial creates a named material with unit shininess
func NewMaterial(name string) Material {
	return Material{Name: name, Shininess: 1}
}

// Model is the result of loading one or more files
type Model struct {
	Name   string
	Type   ModelType
	Meshes []*Mesh
	// Materials is populated while parsing OBJ/MTL files
	Materials map[string]Material
	Bounds    geometry.BoundingBox
	Directory string
}

// NewModel creates an empty model
func NewModel(name string) *Model {
	return &Model{
		Name:      name,
		Meshes:    make([]*Mesh, 0),
		Materials: make(map[string]Material),
		Bounds:    geometry.NewBoundingBox(),
	}
}

// Clear drops all meshes and materials and resets the bounding box
func (m *Model) Clear() {
	m.Type = Unknown
	m.Meshes = make([]*Mesh, 0)
	m.Materials = make(map[string]Material)
	m.Bounds.Reset()
	m.Directory = ""
}

// AddMesh appends a mesh and extends the bounding box with its vertices
func (m *Model) AddMesh(mesh *Mesh) {
	m.Meshes = append(m.Meshes, mesh)
	for _, v := range mesh.Vertices {
		m.Bounds.Extend(v.Position)
	}
}

// Stats holds vertex and triangle totals over all meshes
type Stats struct {
	Meshes    int
	Materials int
	Vertices  int
	Triangles int
}

// Stats returns totals over all meshes
func (m *Model) Stats() Stats {
	s := Stats{Meshes: len(m.Meshes), Materials: len(m.Materials)}
	for _, mesh := range m.Meshes {
		s.Vertices += mesh.VertexCount()
		s.Triangles += mesh.TriangleCount()
	}
	return s
}
