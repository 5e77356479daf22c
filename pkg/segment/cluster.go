package segment

import (
	"go.uber.org/zap"

	"github.com/philipparndt/topsurf/pkg/model"
)

// ClusterLabels runs DBSCAN over the face normals of mesh with
// eps = 1 - cos(AngleThreshold). The result has one label per triangle.
func ClusterLabels(mesh *model.Mesh, opts Options) []int {
	if mesh == nil || mesh.IsEmpty() {
		return nil
	}
	normals := FaceNormals(mesh, opts.logger())
	eps := 1 - cosDegrees(opts.AngleThreshold)
	return DBSCAN(normals, eps, opts.MinPts)
}

// ClusterNormals groups triangles by normal direction. Clusters are
// returned in discovery order; noise and clusters smaller than
// MinClusterSize are left out.
func ClusterNormals(mesh *model.Mesh, opts Options) [][]int {
	if mesh == nil || mesh.IsEmpty() {
		return nil
	}
	labels := ClusterLabels(mesh, opts)

	var clusters [][]int
	for t, label := range labels {
		if label == Noise {
			continue
		}
		for len(clusters) <= label {
			clusters = append(clusters, nil)
		}
		clusters[label] = append(clusters[label], t)
	}

	kept := clusters[:0]
	dropped := 0
	for _, c := range clusters {
		if len(c) < opts.MinClusterSize {
			dropped++
			continue
		}
		kept = append(kept, c)
	}

	opts.logger().Debug("clustered face normals",
		zap.String("mesh", mesh.Name),
		zap.Int("triangles", len(labels)),
		zap.Int("clusters", len(kept)),
		zap.Int("dropped", dropped),
	)
	return kept
}

// NormalClustering extracts one surface mesh per normal cluster, named
// Surface_<k>
func NormalClustering(mesh *model.Mesh, opts Options) []*model.Mesh {
	if mesh == nil || mesh.IsEmpty() {
		return nil
	}
	return BuildSurfaces(mesh, ClusterNormals(mesh, opts), ClusterPrefix, opts.ColorSeed)
}
