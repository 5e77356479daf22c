// Package analysis scores segmented surfaces and reports mesh statistics.
package analysis

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/philipparndt/topsurf/pkg/geometry"
	"github.com/philipparndt/topsurf/pkg/meshio"
	"github.com/philipparndt/topsurf/pkg/model"
	"github.com/philipparndt/topsurf/pkg/segment"
)

// ErrNoSurfaces is returned when there is nothing to select from. It
// matches meshio.ErrEmptyResult with errors.Is.
var ErrNoSurfaces = errors.WithMessage(meshio.ErrEmptyResult, "no surfaces")

// SelectOptions controls top surface selection
type SelectOptions struct {
	UpAxis geometry.Axis
	// MinScore is the alignment a surface must exceed to be a candidate
	MinScore float64
	// HeightTolerance is the distance along the up axis within which two
	// candidates count as equally high
	HeightTolerance float64

	Logger *zap.Logger
}

// DefaultSelectOptions selects along +Z with a 0.7 score threshold (about 45 degrees)
func DefaultSelectOptions() SelectOptions {
	return SelectOptions{
		UpAxis:          geometry.AxisZ,
		MinScore:        0.7,
		HeightTolerance: 0.01,
	}
}

func (o SelectOptions) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// SurfaceScore describes how well a surface faces up
type SurfaceScore struct {
	Index   int
	Surface *model.Mesh
	// Normal is the normalized area-weighted average face normal
	Normal geometry.Vector3
	// Score is dot(Normal, up), 1 for perfect alignment
	Score float64
	// Height is the highest vertex coordinate along the up axis
	Height float64
	Area   float64
	// Fallback is set when no surface cleared MinScore and the largest
	// surface was chosen instead
	Fallback bool
}

// AverageNormal returns the area-weighted average face normal of mesh and
// its total area. Zero-area surfaces average their face normals
// unweighted; degenerate faces contribute +Z.
func AverageNormal(mesh *model.Mesh) (geometry.Vector3, float64) {
	var weighted, plain geometry.Vector3
	total := 0.0
	for i := range mesh.Triangles {
		v0, v1, v2 := mesh.Corners(i)
		area := geometry.TriangleArea(v0, v1, v2)
		n := mesh.FaceNormal(i)
		weighted = weighted.Add(n.Mul(area))
		plain = plain.Add(n)
		total += float64(area)
	}

	if weighted.Length() > geometry.Epsilon {
		return weighted.Normalize(), total
	}
	if plain.Length() > geometry.Epsilon {
		return plain.Normalize(), total
	}
	return geometry.Up, total
}

// NormalScore returns dot(average normal, up) for mesh, 0 for an empty mesh
func NormalScore(mesh *model.Mesh, up geometry.Axis) float64 {
	if mesh.IsEmpty() {
		return 0
	}
	n, _ := AverageNormal(mesh)
	return float64(n.Dot(up.Unit()))
}

// MaxHeight returns the largest vertex coordinate along axis, -Inf for a
// mesh without vertices
func MaxHeight(mesh *model.Mesh, axis geometry.Axis) float64 {
	height := math.Inf(-1)
	for _, v := range mesh.Vertices {
		height = math.Max(height, float64(v.Position.Component(axis)))
	}
	return height
}

// Score computes the score of one surface
func Score(index int, surface *model.Mesh, up geometry.Axis) SurfaceScore {
	normal, area := AverageNormal(surface)
	score := 0.0
	if !surface.IsEmpty() {
		score = float64(normal.Dot(up.Unit()))
	}
	return SurfaceScore{
		Index:   index,
		Surface: surface,
		Normal:  normal,
		Score:   score,
		Height:  MaxHeight(surface, up),
		Area:    area,
	}
}

// SelectTopSurface picks the surface that faces up and lies highest.
// Candidates must score above MinScore; among them the highest wins and
// heights within HeightTolerance are decided by the better score, then by
// order. Without candidates the surface with the most triangles is chosen.
func SelectTopSurface(surfaces []*model.Mesh, opts SelectOptions) (SurfaceScore, error) {
	log := opts.logger()
	if len(surfaces) == 0 {
		return SurfaceScore{}, errors.WithStack(ErrNoSurfaces)
	}

	best := -1
	var bestScore SurfaceScore
	for i, surface := range surfaces {
		s := Score(i, surface, opts.UpAxis)
		log.Debug("scored surface",
			zap.String("surface", surface.Name),
			zap.Float64("score", s.Score),
			zap.Float64("height", s.Height),
		)
		if s.Score <= opts.MinScore {
			continue
		}
		if best < 0 || betterCandidate(s, bestScore, opts.HeightTolerance) {
			best = i
			bestScore = s
		}
	}

	if best >= 0 {
		log.Info("found top surface",
			zap.String("surface", bestScore.Surface.Name),
			zap.Int("triangles", bestScore.Surface.TriangleCount()),
			zap.Float64("score", bestScore.Score),
			zap.Float64("height", bestScore.Height),
		)
		return bestScore, nil
	}

	largest := 0
	for i, surface := range surfaces {
		if surface.TriangleCount() > surfaces[largest].TriangleCount() {
			largest = i
		}
	}
	result := Score(largest, surfaces[largest], opts.UpAxis)
	result.Fallback = true
	log.Warn("no surface faces up, using the largest surface",
		zap.String("surface", result.Surface.Name),
		zap.Int("triangles", result.Surface.TriangleCount()),
	)
	return result, nil
}

func betterCandidate(s, best SurfaceScore, tolerance float64) bool {
	if math.Abs(s.Height-best.Height) <= tolerance {
		return s.Score > best.Score
	}
	return s.Height > best.Height
}

// FindTopSurface segments mesh by region growing and selects the top
// surface. The surfaces are returned alongside the selection.
func FindTopSurface(mesh *model.Mesh, segOpts segment.Options, opts SelectOptions) (SurfaceScore, []*model.Mesh, error) {
	if mesh == nil || mesh.IsEmpty() {
		return SurfaceScore{}, nil, errors.Wrap(ErrNoSurfaces, "mesh has no triangles")
	}
	surfaces := segment.RegionGrowing(mesh, segOpts)
	top, err := SelectTopSurface(surfaces, opts)
	if err != nil {
		return SurfaceScore{}, surfaces, err
	}
	return top, surfaces, nil
}
