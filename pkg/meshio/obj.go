package meshio

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/philipparndt/topsurf/pkg/geometry"
	"github.com/philipparndt/topsurf/pkg/model"
)

// objReader holds the flat attribute arrays shared by all objects of a file
type objReader struct {
	*importContext
	positions []geometry.Vector3
	colors    []geometry.Vector3
	normals   []geometry.Vector3
	texCoords []geometry.Vector2

	current      *model.Mesh
	materialName string
	meshes       []*model.Mesh
	lineNo       int
}

// readOBJ parses an OBJ stream. Faces are fan-triangulated and every o/g
// line closes the current mesh when it already has triangles.
func (c *importContext) readOBJ(r io.Reader) error {
	p := &objReader{
		importContext: c,
		current:       model.NewMesh(c.stem),
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		p.lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		rest := strings.TrimSpace(line[len(fields[0]):])

		var err error
		switch fields[0] {
		case "v":
			err = p.vertex(fields[1:])
		case "vn":
			var n geometry.Vector3
			n, err = p.vector3(fields[1:])
			p.normals = append(p.normals, n.Normalize())
		case "vt":
			err = p.texCoord(fields[1:])
		case "f":
			err = p.face(fields[1:])
		case "o", "g":
			p.startMesh(rest)
		case "mtllib":
			p.materialLibrary(rest)
		case "usemtl":
			p.useMaterial(rest)
		}
		if err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrapf(ErrIO, "read %s: %v", c.path, err)
	}

	p.closeMesh()
	if len(p.meshes) == 0 {
		return errors.Wrapf(ErrEmptyResult, "%s: no faces", c.path)
	}
	for _, mesh := range p.meshes {
		c.model.AddMesh(mesh)
	}
	return nil
}

func (p *objReader) objError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrMalformedOBJ, "%s:%d: %s", p.path, p.lineNo, fmt.Sprintf(format, args...))
}

func (p *objReader) floats(fields []string, min int) ([]float32, error) {
	if len(fields) < min {
		return nil, p.objError("expected %d values, got %d", min, len(fields))
	}
	values := make([]float32, len(fields))
	for i, field := range fields {
		f, err := strconv.ParseFloat(field, 32)
		if err != nil {
			return nil, p.objError("invalid number %q", field)
		}
		values[i] = float32(f)
	}
	return values, nil
}

func (p *objReader) vector3(fields []string) (geometry.Vector3, error) {
	values, err := p.floats(fields, 3)
	if err != nil {
		return geometry.Vector3{}, err
	}
	return geometry.NewVector3(values[0], values[1], values[2]), nil
}

// vertex reads "v x y z [w]" or the "v x y z r g b" color extension
func (p *objReader) vertex(fields []string) error {
	values, err := p.floats(fields, 3)
	if err != nil {
		return err
	}
	p.positions = append(p.positions, geometry.NewVector3(values[0], values[1], values[2]))
	color := model.DefaultVertexColor
	if len(values) >= 6 {
		color = geometry.NewVector3(values[3], values[4], values[5])
	}
	p.colors = append(p.colors, color)
	return nil
}

func (p *objReader) texCoord(fields []string) error {
	values, err := p.floats(fields, 1)
	if err != nil {
		return err
	}
	tc := geometry.Vector2{X: values[0]}
	if len(values) > 1 {
		tc.Y = values[1]
	}
	p.texCoords = append(p.texCoords, tc)
	return nil
}

// resolveIndex converts a 1-based or negative relative OBJ index
func (p *objReader) resolveIndex(token string, count int) (int, error) {
	i, err := strconv.Atoi(token)
	if err != nil {
		return 0, p.objError("invalid index %q", token)
	}
	switch {
	case i > 0:
		i--
	case i < 0:
		i += count
	default:
		return 0, p.objError("index 0 is not valid")
	}
	if i < 0 || i >= count {
		return 0, p.objError("index %s out of range (%d available)", token, count)
	}
	return i, nil
}

// face reads "f v[/vt][/vn] ..." and fan-triangulates from the first corner
func (p *objReader) face(fields []string) error {
	if len(fields) < 3 {
		p.log.Debug("skipping face with fewer than 3 vertices", zap.Int("line", p.lineNo))
		return nil
	}

	mesh := p.current
	first := uint32(len(mesh.Vertices))
	for _, field := range fields {
		parts := strings.Split(field, "/")
		pos, err := p.resolveIndex(parts[0], len(p.positions))
		if err != nil {
			return err
		}
		v := model.NewVertex(p.positions[pos], geometry.Vector3{})
		v.Color = p.colors[pos]

		if len(parts) > 1 && parts[1] != "" {
			tc, err := p.resolveIndex(parts[1], len(p.texCoords))
			if err != nil {
				return err
			}
			v.TexCoord = p.texCoords[tc]
		}
		if len(parts) > 2 && parts[2] != "" {
			n, err := p.resolveIndex(parts[2], len(p.normals))
			if err != nil {
				return err
			}
			v.Normal = p.normals[n]
		}
		mesh.AddVertex(v)
	}

	for i := 2; i < len(fields); i++ {
		a, b, c := first, first+uint32(i-1), first+uint32(i)
		normal := geometry.TriangleNormal(mesh.Vertices[a].Position, mesh.Vertices[b].Position, mesh.Vertices[c].Position)
		if err := mesh.AddTriangle(a, b, c, normal); err != nil {
			return p.objError("%v", err)
		}
	}
	return nil
}

// closeMesh finalizes the current mesh if it has any triangles
func (p *objReader) closeMesh() bool {
	if p.current.IsEmpty() {
		return false
	}
	p.finishMesh(p.current)
	p.meshes = append(p.meshes, p.current)
	return true
}

// startMesh handles an o/g boundary, keeping the active material
func (p *objReader) startMesh(name string) {
	if !p.closeMesh() {
		p.current.Name = name
		return
	}
	material := p.current.Material
	p.current = model.NewMesh(name)
	p.current.Material = material
}

func (p *objReader) materialLibrary(name string) {
	if name == "" {
		return
	}
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.dir, name)
	}
	materials, err := p.readMTL(path)
	if err != nil {
		p.log.Warn("failed to read material library", zap.String("path", path), zap.Error(err))
		return
	}
	for key, material := range materials {
		p.model.Materials[key] = material
	}
}

func (p *objReader) useMaterial(name string) {
	if name == "" || name == p.materialName {
		return
	}
	p.materialName = name
	material, ok := p.model.Materials[name]
	if !ok {
		p.log.Debug("unknown material", zap.String("name", name), zap.Int("line", p.lineNo))
		return
	}
	p.current.Material = material
}
