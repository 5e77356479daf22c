package segment

import (
	"go.uber.org/zap"

	"github.com/philipparndt/topsurf/pkg/geometry"
	"github.com/philipparndt/topsurf/pkg/model"
)

// FaceNormals returns the unit normal of every triangle. Missing cached
// normals are recomputed from the positions; degenerate triangles get +Z.
func FaceNormals(mesh *model.Mesh, log *zap.Logger) []geometry.Vector3 {
	if mesh == nil {
		return nil
	}
	normals := make([]geometry.Vector3, mesh.TriangleCount())
	recomputed := 0
	for i, tri := range mesh.Triangles {
		if tri.Normal.LengthSquared() < 1e-6 {
			recomputed++
		}
		normals[i] = mesh.FaceNormal(i)
	}
	if recomputed > 0 && log != nil {
		log.Debug("recomputed invalid face normals", zap.String("mesh", mesh.Name), zap.Int("count", recomputed))
	}
	return normals
}
