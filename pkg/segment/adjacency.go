package segment

import (
	"slices"

	"go.uber.org/zap"

	"github.com/philipparndt/topsurf/pkg/geometry"
	"github.com/philipparndt/topsurf/pkg/model"
)

// Adjacency is the triangle neighbor graph used by region growing.
// Neighbor lists are sorted, deduplicated and symmetric.
type Adjacency struct {
	Neighbors [][]int
	// VertexFallback is set when the graph was built from shared vertices
	// because too few triangles had a shared-edge neighbor
	VertexFallback bool
}

// WithNeighbors returns the number of triangles that have at least one neighbor
func (a Adjacency) WithNeighbors() int {
	count := 0
	for _, n := range a.Neighbors {
		if len(n) > 0 {
			count++
		}
	}
	return count
}

// positionKey identifies a vertex by its exact position, so coincident
// vertices with different indices still match
type positionKey = vectorKey

type edgeKey struct {
	a, b positionKey
}

func lessKey(a, b positionKey) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func newEdgeKey(p, q geometry.Vector3) edgeKey {
	a, b := keyOf(p), keyOf(q)
	if lessKey(b, a) {
		a, b = b, a
	}
	return edgeKey{a: a, b: b}
}

// BuildAdjacency links triangles that share an edge (by position) with
// exactly one other triangle. If fewer than FallbackNeighborRatio of the
// triangles get a neighbor, triangles sharing any vertex position are
// linked instead, provided their normals are within FallbackNormalAngle.
func BuildAdjacency(mesh *model.Mesh, normals []geometry.Vector3, opts Options) Adjacency {
	if mesh == nil || mesh.IsEmpty() {
		return Adjacency{}
	}
	log := opts.logger()
	n := mesh.TriangleCount()
	adj := Adjacency{Neighbors: edgeAdjacency(mesh)}

	withNeighbors := adj.WithNeighbors()
	log.Debug("built shared-edge adjacency",
		zap.Int("triangles", n), zap.Int("with_neighbors", withNeighbors))

	if n > 0 && float64(withNeighbors) < opts.FallbackNeighborRatio*float64(n) {
		log.Warn("too few triangles share edges, using vertex adjacency",
			zap.Int("with_neighbors", withNeighbors), zap.Int("triangles", n))
		adj.Neighbors = vertexAdjacency(mesh, normals, cosDegrees(opts.FallbackNormalAngle))
		adj.VertexFallback = true
	}
	return adj
}

func edgeAdjacency(mesh *model.Mesh) [][]int {
	n := mesh.TriangleCount()
	edges := make(map[edgeKey][]int, 3*n/2)
	for t := range mesh.Triangles {
		v0, v1, v2 := mesh.Corners(t)
		for _, e := range [3]edgeKey{newEdgeKey(v0, v1), newEdgeKey(v1, v2), newEdgeKey(v2, v0)} {
			faces := edges[e]
			// A degenerate triangle may contribute the same edge twice
			if len(faces) > 0 && faces[len(faces)-1] == t {
				continue
			}
			edges[e] = append(faces, t)
		}
	}

	neighbors := make([][]int, n)
	for _, faces := range edges {
		if len(faces) != 2 {
			continue
		}
		a, b := faces[0], faces[1]
		neighbors[a] = append(neighbors[a], b)
		neighbors[b] = append(neighbors[b], a)
	}
	for i := range neighbors {
		slices.Sort(neighbors[i])
		neighbors[i] = slices.Compact(neighbors[i])
	}
	return neighbors
}

func vertexAdjacency(mesh *model.Mesh, normals []geometry.Vector3, minDot float64) [][]int {
	n := mesh.TriangleCount()
	shared := make(map[positionKey][]int, n)
	for t := range mesh.Triangles {
		v0, v1, v2 := mesh.Corners(t)
		for _, p := range [3]geometry.Vector3{v0, v1, v2} {
			key := keyOf(p)
			faces := shared[key]
			if len(faces) > 0 && faces[len(faces)-1] == t {
				continue
			}
			shared[key] = append(faces, t)
		}
	}

	neighbors := make([][]int, n)
	for t := range mesh.Triangles {
		v0, v1, v2 := mesh.Corners(t)
		var candidates []int
		for _, p := range [3]geometry.Vector3{v0, v1, v2} {
			candidates = append(candidates, shared[keyOf(p)]...)
		}
		slices.Sort(candidates)
		candidates = slices.Compact(candidates)
		for _, other := range candidates {
			if other != t && float64(normals[t].Dot(normals[other])) > minDot {
				neighbors[t] = append(neighbors[t], other)
			}
		}
	}
	return neighbors
}
