// Package segment partitions the triangles of a mesh into near-planar
// surfaces, either by DBSCAN over face normals or by region growing over
// the shared-edge adjacency graph.
package segment

import (
	"math"

	"go.uber.org/zap"
)

// Options holds the tuning constants of both algorithms. The adaptive
// region growing constants are exposed so callers can exercise the retry
// and fallback paths explicitly.
type Options struct {
	// AngleThreshold is the maximum angle in degrees between the normals
	// of triangles in one surface
	AngleThreshold float64

	// MinPts is the DBSCAN density threshold (neighbors excluding self)
	MinPts int
	// MinClusterSize drops smaller DBSCAN clusters
	MinClusterSize int

	// MinRegionSize is the smallest region kept by the first pass; smaller
	// regions are released for the second pass
	MinRegionSize int
	// FinalMinRegionSize is the smallest region kept by the second pass;
	// smaller regions end up in the noise region
	FinalMinRegionSize int
	// RetryUnassignedRatio triggers the second pass when more than this
	// share of triangles is unassigned after the first
	RetryUnassignedRatio float64
	// RetryAngleMultiplier widens the threshold for the second pass
	RetryAngleMultiplier float64
	// RetryMaxAngle caps the widened threshold in degrees
	RetryMaxAngle float64

	// FallbackNeighborRatio switches to vertex-sharing adjacency when fewer
	// than this share of triangles has a shared-edge neighbor
	FallbackNeighborRatio float64
	// FallbackNormalAngle is the maximum normal angle in degrees between
	// vertex-sharing neighbors
	FallbackNormalAngle float64

	// ColorSeed keys the deterministic surface colors
	ColorSeed int64

	Logger *zap.Logger
}

// DefaultOptions returns the reference tuning at a 15 degree threshold
func DefaultOptions() Options {
	return Options{
		AngleThreshold:        15,
		MinPts:                3,
		MinClusterSize:        3,
		MinRegionSize:         3,
		FinalMinRegionSize:    2,
		RetryUnassignedRatio:  0.3,
		RetryAngleMultiplier:  1.5,
		RetryMaxAngle:         45,
		FallbackNeighborRatio: 0.5,
		FallbackNormalAngle:   45,
	}
}

// WithAngle returns a copy of o using the given threshold in degrees
func (o Options) WithAngle(degrees float64) Options {
	o.AngleThreshold = degrees
	return o
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func cosDegrees(degrees float64) float64 {
	return math.Cos(degrees * math.Pi / 180)
}
