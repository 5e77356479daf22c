package segment

import (
	"math"

	"go.uber.org/zap"

	"github.com/philipparndt/topsurf/pkg/geometry"
	"github.com/philipparndt/topsurf/pkg/model"
)

// Regions is the partition produced by region growing
type Regions struct {
	// Groups are the grown regions in discovery order
	Groups [][]int
	// Noise holds the triangles no region absorbed
	Noise []int
	// Passes is 1 or 2
	Passes int
	// Angle is the threshold of the last pass in degrees
	Angle float64
	// VertexFallback reports that vertex adjacency was used
	VertexFallback bool
}

// All returns the groups followed by the noise region, if any
func (r Regions) All() [][]int {
	all := append([][]int(nil), r.Groups...)
	if len(r.Noise) > 0 {
		all = append(all, r.Noise)
	}
	return all
}

type grower struct {
	adj      [][]int
	normals  []geometry.Vector3
	assigned []bool
	queue    []int
}

// pass grows regions from every unassigned seed in index order. A
// neighbor joins when the dot product of its normal with the normal of the
// triangle it is reached from is at least minDot. Regions smaller than
// minSize are released again.
func (g *grower) pass(minDot float64, minSize int) [][]int {
	var regions [][]int
	for seed := range g.assigned {
		if g.assigned[seed] {
			continue
		}
		g.assigned[seed] = true
		g.queue = append(g.queue[:0], seed)

		var region []int
		for len(g.queue) > 0 {
			current := g.queue[0]
			g.queue = g.queue[1:]
			region = append(region, current)

			for _, next := range g.adj[current] {
				if g.assigned[next] {
					continue
				}
				if float64(g.normals[current].Dot(g.normals[next])) >= minDot {
					g.assigned[next] = true
					g.queue = append(g.queue, next)
				}
			}
		}

		if len(region) >= minSize {
			regions = append(regions, region)
			continue
		}
		for _, t := range region {
			g.assigned[t] = false
		}
	}
	return regions
}

func (g *grower) unassigned() []int {
	var out []int
	for t, done := range g.assigned {
		if !done {
			out = append(out, t)
		}
	}
	return out
}

// GrowRegions partitions the triangles of mesh by breadth-first growth
// over the shared-edge adjacency graph. The first pass uses AngleThreshold
// and keeps regions of at least MinRegionSize. If it finds nothing or
// leaves more than RetryUnassignedRatio of the triangles unassigned, a
// second pass at min(AngleThreshold*RetryAngleMultiplier, RetryMaxAngle)
// keeps regions of at least FinalMinRegionSize. Whatever is left forms
// the noise region.
func GrowRegions(mesh *model.Mesh, opts Options) Regions {
	log := opts.logger()
	result := Regions{Angle: opts.AngleThreshold}
	if mesh == nil || mesh.IsEmpty() {
		return result
	}

	n := mesh.TriangleCount()
	normals := FaceNormals(mesh, log)
	adj := BuildAdjacency(mesh, normals, opts)
	result.VertexFallback = adj.VertexFallback

	g := &grower{adj: adj.Neighbors, normals: normals, assigned: make([]bool, n)}

	result.Groups = g.pass(cosDegrees(opts.AngleThreshold), opts.MinRegionSize)
	result.Passes = 1
	remaining := len(g.unassigned())
	log.Debug("region growing pass",
		zap.Int("pass", 1),
		zap.Float64("angle", opts.AngleThreshold),
		zap.Int("regions", len(result.Groups)),
		zap.Int("unassigned", remaining),
	)

	if len(result.Groups) == 0 || float64(remaining) > opts.RetryUnassignedRatio*float64(n) {
		angle := math.Min(opts.AngleThreshold*opts.RetryAngleMultiplier, opts.RetryMaxAngle)
		second := g.pass(cosDegrees(angle), opts.FinalMinRegionSize)
		result.Groups = append(result.Groups, second...)
		result.Passes = 2
		result.Angle = angle
		log.Debug("region growing pass",
			zap.Int("pass", 2),
			zap.Float64("angle", angle),
			zap.Int("regions", len(second)),
			zap.Int("unassigned", len(g.unassigned())),
		)
	}

	result.Noise = g.unassigned()
	if len(result.Noise) > 0 {
		log.Debug("collected unassigned triangles into noise region", zap.Int("triangles", len(result.Noise)))
	}
	return result
}

// RegionGrowing extracts one surface mesh per region, named
// ConnectedSurface_<k>, followed by NoiseSurface when triangles were left
// unassigned. The noise surface uses the next material index.
func RegionGrowing(mesh *model.Mesh, opts Options) []*model.Mesh {
	if mesh == nil || mesh.IsEmpty() {
		return nil
	}
	return regionSurfaces(mesh, GrowRegions(mesh, opts), opts)
}

func regionSurfaces(mesh *model.Mesh, regions Regions, opts Options) []*model.Mesh {
	surfaces := BuildSurfaces(mesh, regions.Groups, RegionPrefix, opts.ColorSeed)
	if len(regions.Noise) > 0 {
		k := len(regions.Groups)
		surfaces = append(surfaces, BuildSurface(mesh, regions.Noise, NoiseName, SurfaceMaterial(opts.ColorSeed, k)))
	}
	opts.logger().Info("segmented mesh by region growing",
		zap.String("mesh", mesh.Name),
		zap.Int("surfaces", len(surfaces)),
		zap.Int("passes", regions.Passes),
		zap.Bool("vertex_fallback", regions.VertexFallback),
	)
	return surfaces
}
