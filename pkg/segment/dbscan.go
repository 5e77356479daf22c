package segment

import (
	"math"
	"slices"

	"github.com/philipparndt/topsurf/pkg/geometry"
)

// Noise is the DBSCAN label of points that belong to no cluster
const Noise = -1

const unclassified = -2

// CosineDistance returns 1 - dot(a, b) for unit vectors, in [0, 2]
func CosineDistance(a, b geometry.Vector3) float64 {
	dot := float64(a.Dot(b))
	return 1 - math.Max(-1, math.Min(1, dot))
}

// DBSCAN clusters unit vectors with the cosine distance. A point with at
// least minPts neighbors within eps (excluding itself) is a core point;
// clusters grow through density-reachable points. Labels are cluster ids
// in discovery order or Noise.
//
// Identical vectors are collapsed before the neighbor search and candidates
// come from a uniform grid over the unit sphere.
func DBSCAN(points []geometry.Vector3, eps float64, minPts int) []int {
	labels := make([]int, len(points))
	if len(points) == 0 {
		return labels
	}

	set := newPointSet(points)
	index := newSphereGrid(set.unique, eps)

	unique := make([]int, len(set.unique))
	for i := range unique {
		unique[i] = unclassified
	}

	// neighbors returns unique neighbor ids and the neighbor count over
	// the input points, excluding the point itself
	neighbors := func(u int) ([]int, int) {
		ids := index.within(set.unique[u], eps)
		count := set.weight[u] - 1
		out := ids[:0]
		for _, v := range ids {
			if v == u {
				continue
			}
			out = append(out, v)
			count += set.weight[v]
		}
		return out, count
	}

	queued := make([]bool, len(set.unique))
	cluster := 0
	for u := range set.unique {
		if unique[u] != unclassified {
			continue
		}
		seeds, count := neighbors(u)
		if count < minPts {
			unique[u] = Noise
			continue
		}

		unique[u] = cluster
		queued[u] = true
		for _, v := range seeds {
			queued[v] = true
		}
		for j := 0; j < len(seeds); j++ {
			v := seeds[j]
			if unique[v] == Noise {
				unique[v] = cluster
				continue
			}
			if unique[v] != unclassified {
				continue
			}
			unique[v] = cluster

			next, nextCount := neighbors(v)
			if nextCount < minPts {
				continue
			}
			for _, w := range next {
				if !queued[w] && (unique[w] == unclassified || unique[w] == Noise) {
					queued[w] = true
					seeds = append(seeds, w)
				}
			}
		}
		cluster++
	}

	for i := range points {
		labels[i] = unique[set.of[i]]
	}
	return labels
}

type vectorKey [3]uint32

func keyOf(v geometry.Vector3) vectorKey {
	return vectorKey{canonicalBits(v.X), canonicalBits(v.Y), canonicalBits(v.Z)}
}

// canonicalBits returns the IEEE bits of f with -0 mapped to +0
func canonicalBits(f float32) uint32 {
	if f == 0 {
		return 0
	}
	return math.Float32bits(f)
}

// pointSet collapses identical points. unique is ordered by first
// occurrence, which keeps cluster discovery order equal to a scan over
// the input points.
type pointSet struct {
	unique []geometry.Vector3
	weight []int
	of     []int
}

func newPointSet(points []geometry.Vector3) pointSet {
	ids := make(map[vectorKey]int, len(points))
	set := pointSet{of: make([]int, len(points))}
	for i, p := range points {
		key := keyOf(p)
		id, ok := ids[key]
		if !ok {
			id = len(set.unique)
			ids[key] = id
			set.unique = append(set.unique, p)
			set.weight = append(set.weight, 0)
		}
		set.weight[id]++
		set.of[i] = id
	}
	return set
}

type cellKey [3]int32

// sphereGrid buckets unit vectors into cubes whose edge is the chord
// length for eps: |a-b|^2 = 2(1-dot) for unit vectors, so every neighbor
// lies in one of the 27 cells around a point.
type sphereGrid struct {
	size   float64
	points []geometry.Vector3
	cells  map[cellKey][]int
}

func newSphereGrid(points []geometry.Vector3, eps float64) *sphereGrid {
	// Slightly enlarged to absorb rounding of not quite unit vectors
	size := math.Sqrt(2*math.Max(eps, 0))*(1+1e-4) + 1e-6
	if size < 1e-3 {
		size = 1e-3
	}
	g := &sphereGrid{size: size, points: points, cells: make(map[cellKey][]int)}
	for i, p := range points {
		key := g.cell(p)
		g.cells[key] = append(g.cells[key], i)
	}
	return g
}

func (g *sphereGrid) cell(p geometry.Vector3) cellKey {
	return cellKey{
		int32(math.Floor(float64(p.X) / g.size)),
		int32(math.Floor(float64(p.Y) / g.size)),
		int32(math.Floor(float64(p.Z) / g.size)),
	}
}

// within returns the sorted ids of all points within eps of p, including
// p itself when it is part of the grid
func (g *sphereGrid) within(p geometry.Vector3, eps float64) []int {
	center := g.cell(p)
	var out []int
	for dx := int32(-1); dx <= 1; dx++ {
		for dy := int32(-1); dy <= 1; dy++ {
			for dz := int32(-1); dz <= 1; dz++ {
				for _, id := range g.cells[cellKey{center[0] + dx, center[1] + dy, center[2] + dz}] {
					if CosineDistance(p, g.points[id]) <= eps {
						out = append(out, id)
					}
				}
			}
		}
	}
	slices.Sort(out)
	return out
}
