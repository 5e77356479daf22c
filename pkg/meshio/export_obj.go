package meshio

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/philipparndt/topsurf/pkg/model"
)

// usedMaterials returns the named materials referenced by meshes, in first-use order
func usedMaterials(meshes []*model.Mesh) []model.Material {
	seen := make(map[string]bool)
	var materials []model.Material
	for _, mesh := range meshes {
		name := mesh.Material.Name
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		materials = append(materials, mesh.Material)
	}
	return materials
}

func hasTexCoords(mesh *model.Mesh) bool {
	for _, v := range mesh.Vertices {
		if !v.TexCoord.IsZero() {
			return true
		}
	}
	return false
}

// EncodeOBJ writes meshes as OBJ objects. Vertex, texture and normal
// indices use running offsets across objects. mtllib is referenced when
// it is non-empty.
func EncodeOBJ(w io.Writer, mtllib string, meshes ...*model.Mesh) error {
	bw := bufio.NewWriter(w)

	vertices, triangles := 0, 0
	for _, mesh := range meshes {
		vertices += mesh.VertexCount()
		triangles += mesh.TriangleCount()
	}
	bw.WriteString("# OBJ file exported by topsurf\n")
	fmt.Fprintf(bw, "# Meshes: %d\n", len(meshes))
	fmt.Fprintf(bw, "# Total vertices: %d\n", vertices)
	fmt.Fprintf(bw, "# Total triangles: %d\n\n", triangles)

	if mtllib != "" {
		fmt.Fprintf(bw, "mtllib %s\n\n", mtllib)
	}

	vertexOffset, texOffset, normalOffset := 1, 1, 1
	for _, mesh := range meshes {
		fmt.Fprintf(bw, "o %s\n", mesh.Name)
		if mesh.Material.Name != "" {
			fmt.Fprintf(bw, "usemtl %s\n", mesh.Material.Name)
		}

		for _, v := range mesh.Vertices {
			fmt.Fprintf(bw, "v %s\n", formatVector(v.Position))
		}
		withTex := hasTexCoords(mesh)
		if withTex {
			for _, v := range mesh.Vertices {
				fmt.Fprintf(bw, "vt %s %s\n", formatFloat(v.TexCoord.X), formatFloat(v.TexCoord.Y))
			}
		}
		for _, v := range mesh.Vertices {
			fmt.Fprintf(bw, "vn %s\n", formatVector(v.Normal))
		}
		bw.WriteString("\n")

		for _, tri := range mesh.Triangles {
			bw.WriteString("f")
			for _, idx := range tri.Indices {
				vi := vertexOffset + int(idx)
				ni := normalOffset + int(idx)
				if withTex {
					fmt.Fprintf(bw, " %d/%d/%d", vi, texOffset+int(idx), ni)
				} else {
					fmt.Fprintf(bw, " %d//%d", vi, ni)
				}
			}
			bw.WriteString("\n")
		}

		vertexOffset += mesh.VertexCount()
		normalOffset += mesh.VertexCount()
		if withTex {
			texOffset += mesh.VertexCount()
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}

// EncodeMTL writes a material library. Texture maps are written by file name.
func EncodeMTL(w io.Writer, materials ...model.Material) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("# MTL file exported by topsurf\n\n")
	for _, m := range materials {
		fmt.Fprintf(bw, "newmtl %s\n", m.Name)
		fmt.Fprintf(bw, "Ka %s\n", formatVector(m.Ambient))
		fmt.Fprintf(bw, "Kd %s\n", formatVector(m.Diffuse))
		fmt.Fprintf(bw, "Ks %s\n", formatVector(m.Specular))
		fmt.Fprintf(bw, "Ns %s\n", formatFloat(m.Shininess))
		if m.DiffuseMap != "" {
			fmt.Fprintf(bw, "map_Kd %s\n", filepath.Base(m.DiffuseMap))
		}
		if m.NormalMap != "" {
			fmt.Fprintf(bw, "map_Bump %s\n", filepath.Base(m.NormalMap))
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}

// WriteOBJ exports meshes to one OBJ file. A companion <basename>.mtl is
// written next to it when any mesh has a named material. Returns the
// written files.
func WriteOBJ(path string, meshes []*model.Mesh, opts ...Option) ([]string, error) {
	cfg := newConfig(opts)
	if len(meshes) == 0 {
		return nil, errors.Wrap(ErrEmptyResult, "no meshes to export")
	}

	var paths []string
	mtllib := ""
	if materials := usedMaterials(meshes); len(materials) > 0 {
		mtllib = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".mtl"
		mtlPath := filepath.Join(filepath.Dir(path), mtllib)
		if err := writeFile(mtlPath, func(w io.Writer) error { return EncodeMTL(w, materials...) }); err != nil {
			return nil, err
		}
		paths = append(paths, mtlPath)
	}

	if err := writeFile(path, func(w io.Writer) error { return EncodeOBJ(w, mtllib, meshes...) }); err != nil {
		return paths, err
	}
	paths = append([]string{path}, paths...)

	cfg.log.Info("exported OBJ", zap.String("path", path), zap.Int("meshes", len(meshes)), zap.Bool("mtl", mtllib != ""))
	return paths, nil
}

// Export writes meshes in the format selected by the extension of path
func Export(path string, meshes []*model.Mesh, opts ...Option) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".stl":
		return WriteSTL(path, meshes, opts...)
	case ".obj":
		return WriteOBJ(path, meshes, opts...)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "export to %s", path)
	}
}
