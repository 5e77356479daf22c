package segment

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/philipparndt/topsurf/pkg/model"
)

// Method selects a segmentation algorithm
type Method string

const (
	MethodRegion  Method = "region"
	MethodCluster Method = "cluster"
	MethodFaces   Method = "faces"
)

// ErrUnknownMethod is returned by ParseMethod
var ErrUnknownMethod = errors.New("unknown segmentation method")

// ParseMethod parses a method name; the empty string selects region growing
func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case "", MethodRegion:
		return MethodRegion, nil
	case MethodCluster:
		return MethodCluster, nil
	case MethodFaces:
		return MethodFaces, nil
	default:
		return "", errors.Wrapf(ErrUnknownMethod, "%q", s)
	}
}

// Result holds the triangle groups of one segmentation run and the surface
// meshes built from them. Surfaces[k] is built from Groups[k].
type Result struct {
	Groups   [][]int
	Surfaces []*model.Mesh
}

// Run segments mesh once and returns both the groups and the surfaces.
// Region growing includes the noise region last.
func Run(mesh *model.Mesh, method Method, opts Options) Result {
	if mesh == nil || mesh.IsEmpty() {
		return Result{}
	}
	switch method {
	case MethodCluster:
		groups := ClusterNormals(mesh, opts)
		return Result{Groups: groups, Surfaces: BuildSurfaces(mesh, groups, ClusterPrefix, opts.ColorSeed)}
	case MethodFaces:
		groups := faceGroups(mesh)
		return Result{Groups: groups, Surfaces: BuildSurfaces(mesh, groups, FacePrefix, opts.ColorSeed)}
	default:
		regions := GrowRegions(mesh, opts)
		return Result{Groups: regions.All(), Surfaces: regionSurfaces(mesh, regions, opts)}
	}
}

// Segment runs the selected algorithm and returns the surface meshes
func Segment(mesh *model.Mesh, method Method, opts Options) []*model.Mesh {
	return Run(mesh, method, opts).Surfaces
}

// Groups runs the selected algorithm and returns the triangle groups
// without building meshes. Region growing includes the noise region last.
func Groups(mesh *model.Mesh, method Method, opts Options) [][]int {
	if mesh == nil || mesh.IsEmpty() {
		return nil
	}
	switch method {
	case MethodCluster:
		return ClusterNormals(mesh, opts)
	case MethodFaces:
		return faceGroups(mesh)
	default:
		return GrowRegions(mesh, opts).All()
	}
}
