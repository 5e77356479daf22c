package meshio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/philipparndt/topsurf/pkg/geometry"
	"github.com/philipparndt/topsurf/pkg/model"
)

const (
	mergedSolidName  = "MergedModel"
	mergedHeaderName = "Merged Meshes"
	headerPrefix     = "STL exported by topsurf - "
)

func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

func formatVector(v geometry.Vector3) string {
	return formatFloat(v.X) + " " + formatFloat(v.Y) + " " + formatFloat(v.Z)
}

// EncodeSTLASCII writes the triangles of all meshes as one ASCII solid
func EncodeSTLASCII(w io.Writer, name string, meshes ...*model.Mesh) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "solid %s\n", name)
	for _, mesh := range meshes {
		for i := range mesh.Triangles {
			v0, v1, v2 := mesh.Corners(i)
			fmt.Fprintf(bw, "  facet normal %s\n", formatVector(mesh.FaceNormal(i)))
			bw.WriteString("    outer loop\n")
			for _, v := range [3]geometry.Vector3{v0, v1, v2} {
				fmt.Fprintf(bw, "      vertex %s\n", formatVector(v))
			}
			bw.WriteString("    endloop\n")
			bw.WriteString("  endfacet\n")
		}
	}
	fmt.Fprintf(bw, "endsolid %s\n", name)
	return bw.Flush()
}

// EncodeSTLBinary writes the triangles of all meshes as one binary STL
func EncodeSTLBinary(w io.Writer, name string, meshes ...*model.Mesh) error {
	bw := bufio.NewWriter(w)

	header := make([]byte, binaryHeaderSize)
	copy(header[:binaryHeaderSize-1], headerPrefix+name)
	if _, err := bw.Write(header); err != nil {
		return err
	}

	total := 0
	for _, mesh := range meshes {
		total += mesh.TriangleCount()
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(total)); err != nil {
		return err
	}

	for _, mesh := range meshes {
		for i := range mesh.Triangles {
			v0, v1, v2 := mesh.Corners(i)
			n := mesh.FaceNormal(i)
			rec := binaryRecord{Normal: [3]float32{n.X, n.Y, n.Z}}
			for k, v := range [3]geometry.Vector3{v0, v1, v2} {
				rec.Vertices[k] = [3]float32{v.X, v.Y, v.Z}
			}
			if err := binary.Write(bw, binary.LittleEndian, &rec); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// WriteSTL exports meshes to path and returns the written files. With
// merging, all meshes go into one solid; otherwise mesh i is written to
// <dir>/<basename>_<i><ext>. A single mesh is always written to path.
func WriteSTL(path string, meshes []*model.Mesh, opts ...Option) ([]string, error) {
	cfg := newConfig(opts)
	if len(meshes) == 0 {
		return nil, errors.Wrap(ErrEmptyResult, "no meshes to export")
	}

	encode := func(w io.Writer, name string, ms ...*model.Mesh) error {
		if cfg.binary {
			return EncodeSTLBinary(w, name, ms...)
		}
		return EncodeSTLASCII(w, name, ms...)
	}

	if len(meshes) == 1 {
		if err := writeFile(path, func(w io.Writer) error { return encode(w, meshes[0].Name, meshes[0]) }); err != nil {
			return nil, err
		}
		cfg.log.Info("exported STL", zap.String("path", path), zap.Bool("binary", cfg.binary))
		return []string{path}, nil
	}

	if cfg.merge {
		name := mergedSolidName
		if cfg.binary {
			name = mergedHeaderName
		}
		if err := writeFile(path, func(w io.Writer) error { return encode(w, name, meshes...) }); err != nil {
			return nil, err
		}
		cfg.log.Info("exported merged STL", zap.String("path", path), zap.Int("meshes", len(meshes)), zap.Bool("binary", cfg.binary))
		return []string{path}, nil
	}

	paths := make([]string, 0, len(meshes))
	for i, mesh := range meshes {
		target := IndexedPath(path, i)
		if err := writeFile(target, func(w io.Writer) error { return encode(w, mesh.Name, mesh) }); err != nil {
			return paths, err
		}
		cfg.log.Info("exported mesh", zap.Int("index", i), zap.String("mesh", mesh.Name), zap.String("path", target))
		paths = append(paths, target)
	}
	return paths, nil
}

// IndexedPath returns <dir>/<basename>_<i><ext> for path
func IndexedPath(path string, i int) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(filepath.Base(path), ext)
	return filepath.Join(filepath.Dir(path), fmt.Sprintf("%s_%d%s", base, i, ext))
}

// writeFile creates path and runs encode on it, closing the file on every path
func writeFile(path string, encode func(io.Writer) error) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(ErrIO, "create %s: %v", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(ErrIO, "close %s: %v", path, cerr)
		}
	}()

	if err := encode(file); err != nil {
		return errors.Wrapf(ErrIO, "write %s: %v", path, err)
	}
	return nil
}
