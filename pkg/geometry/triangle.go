package geometry

// Triangle represents a triangular facet in 3D space by its corner positions
type Triangle struct {
	Normal     Vector3
	V1, V2, V3 Vector3
}

// NewTriangle creates a new triangle
func NewTriangle(normal, v1, v2, v3 Vector3) Triangle {
	return Triangle{
		Normal: normal,
		V1:     v1,
		V2:     v2,
		V3:     v3,
	}
}

// TriangleNormal returns the unit normal of the triangle (v0, v1, v2) using
// counter-clockwise winding. Degenerate triangles get the +Z fallback.
func TriangleNormal(v0, v1, v2 Vector3) Vector3 {
	n := v1.Sub(v0).Cross(v2.Sub(v0))
	length := n.Length()
	if length < Epsilon {
		return Up
	}
	return n.Mul(1.0 / length)
}

// TriangleArea returns half the length of the edge cross product
func TriangleArea(v0, v1, v2 Vector3) float32 {
	return v1.Sub(v0).Cross(v2.Sub(v0)).Length() / 2.0
}

// CalculateNormal computes the normal vector for the triangle
func (t Triangle) CalculateNormal() Vector3 {
	return TriangleNormal(t.V1, t.V2, t.V3)
}

// Area returns the surface area of the triangle
func (t Triangle) Area() float32 {
	return TriangleArea(t.V1, t.V2, t.V3)
}

// EdgeLengths returns the lengths of all three edges
func (t Triangle) EdgeLengths() [3]float32 {
	return [3]float32{
		t.V1.Distance(t.V2),
		t.V2.Distance(t.V3),
		t.V3.Distance(t.V1),
	}
}

// MinEdgeLength returns the shortest of the three edges
func (t Triangle) MinEdgeLength() float32 {
	l := t.EdgeLengths()
	return min(l[0], l[1], l[2])
}

// Perimeter returns the total length of all edges
func (t Triangle) Perimeter() float32 {
	lengths := t.EdgeLengths()
	return lengths[0] + lengths[1] + lengths[2]
}

// Center returns the centroid of the triangle
func (t Triangle) Center() Vector3 {
	return Vector3{
		X: (t.V1.X + t.V2.X + t.V3.X) / 3.0,
		Y: (t.V1.Y + t.V2.Y + t.V3.Y) / 3.0,
		Z: (t.V1.Z + t.V2.Z + t.V3.Z) / 3.0,
	}
}
