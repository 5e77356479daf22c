package model

import (
	"math"

	"github.com/philipparndt/topsurf/pkg/geometry"
)

// WeldEpsilon is the positional tolerance used when merging duplicate vertices
const WeldEpsilon = 1e-5

// Cached normals shorter than this are recomputed from the positions
const minNormalLengthSquared = 1e-6

type bucketKey struct {
	x, y, z int64
}

func quantize(p geometry.Vector3, eps float64) bucketKey {
	return bucketKey{
		x: int64(math.Round(float64(p.X) / eps)),
		y: int64(math.Round(float64(p.Y) / eps)),
		z: int64(math.Round(float64(p.Z) / eps)),
	}
}

// nearest returns the first welded vertex within eps of p. Duplicates may
// round into a neighboring bucket, so all 27 cells around key are probed.
func nearest(buckets map[bucketKey][]uint32, key bucketKey, unique []Vertex, p geometry.Vector3, eps float64) (uint32, bool) {
	best, found := uint32(0), false
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				for _, candidate := range buckets[bucketKey{key.x + dx, key.y + dy, key.z + dz}] {
					if float64(unique[candidate].Position.Distance(p)) < eps && (!found || candidate < best) {
						best, found = candidate, true
					}
				}
			}
		}
	}
	return best, found
}

// OptimizeResult reports the effect of a dedup pass
type OptimizeResult struct {
	Before int
	After  int
}

// Removed returns the number of merged vertices
func (r OptimizeResult) Removed() int {
	return r.Before - r.After
}

// Optimize merges vertices whose positions lie within WeldEpsilon of each
// other using quantized buckets, remaps triangle indices and recomputes
// normals and the centroid. Degenerate triangles are kept.
func (m *Mesh) Optimize() OptimizeResult {
	return m.OptimizeWithTolerance(WeldEpsilon)
}

// OptimizeWithTolerance is Optimize with a custom positional tolerance
func (m *Mesh) OptimizeWithTolerance(eps float64) OptimizeResult {
	result := OptimizeResult{Before: len(m.Vertices), After: len(m.Vertices)}
	if len(m.Vertices) == 0 || len(m.Triangles) == 0 || eps <= 0 {
		return result
	}

	buckets := make(map[bucketKey][]uint32, len(m.Vertices))
	remap := make([]uint32, len(m.Vertices))
	unique := make([]Vertex, 0, len(m.Vertices))

	for i, v := range m.Vertices {
		key := quantize(v.Position, eps)
		candidate, found := nearest(buckets, key, unique, v.Position, eps)
		if found {
			remap[i] = candidate
		} else {
			idx := uint32(len(unique))
			unique = append(unique, v)
			buckets[key] = append(buckets[key], idx)
			remap[i] = idx
		}
	}

	for t := range m.Triangles {
		for k, idx := range m.Triangles[t].Indices {
			m.Triangles[t].Indices[k] = remap[idx]
		}
	}
	m.Vertices = unique
	m.SyncIndices()
	m.CalculateNormals()
	m.RecomputeCentroid()

	result.After = len(unique)
	return result
}

// CalculateNormals recomputes every face normal and accumulates the
// area-weighted face normals at each vertex. Vertices without any
// accumulated normal get +Z.
func (m *Mesh) CalculateNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = geometry.Vector3{}
	}

	for t := range m.Triangles {
		v0, v1, v2 := m.Corners(t)
		// The raw cross product has a length of twice the area
		weighted := v1.Sub(v0).Cross(v2.Sub(v0))
		m.Triangles[t].Normal = geometry.TriangleNormal(v0, v1, v2)
		for _, idx := range m.Triangles[t].Indices {
			m.Vertices[idx].Normal = m.Vertices[idx].Normal.Add(weighted)
		}
	}

	for i := range m.Vertices {
		n := m.Vertices[i].Normal
		if n.Length() > geometry.Epsilon {
			m.Vertices[i].Normal = n.Normalize()
		} else {
			m.Vertices[i].Normal = geometry.Up
		}
	}
}
