package meshio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/philipparndt/topsurf/pkg/geometry"
	"github.com/philipparndt/topsurf/pkg/model"
)

const defaultSolidName = "unnamed_stl"

type asciiState int

const (
	stateIdle asciiState = iota
	stateFacet
	stateLoop
)

// readSTLASCII parses an ASCII STL stream. Every solid becomes one mesh.
// Vertices are not shared between facets; each inherits its facet normal.
func (c *importContext) readSTLASCII(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var meshes []*model.Mesh
	var mesh *model.Mesh
	var normal geometry.Vector3
	var corners [3]uint32
	state := stateIdle
	count := 0
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		keyword := strings.ToLower(fields[0])

		if mesh == nil {
			if keyword != "solid" {
				return c.stlError(lineNo, "expected 'solid', got %q", fields[0])
			}
			mesh = model.NewMesh(defaultSolidName)
			if len(fields) > 1 {
				mesh.Name = strings.Join(fields[1:], " ")
			}
			continue
		}

		switch keyword {
		case "facet":
			if state != stateIdle {
				return c.stlError(lineNo, "nested 'facet'")
			}
			if len(fields) < 5 || strings.ToLower(fields[1]) != "normal" {
				return c.stlError(lineNo, "expected 'facet normal x y z'")
			}
			n, err := parseVector3(fields[2:5])
			if err != nil {
				return c.stlError(lineNo, "facet normal: %v", err)
			}
			normal = n
			count = 0
			state = stateFacet

		case "outer":
			if state != stateFacet {
				return c.stlError(lineNo, "'outer' outside of a facet")
			}
			if len(fields) < 2 || strings.ToLower(fields[1]) != "loop" {
				return c.stlError(lineNo, "expected 'outer loop'")
			}
			state = stateLoop

		case "vertex":
			if state != stateLoop {
				return c.stlError(lineNo, "'vertex' outside of a loop")
			}
			if count == 3 {
				return c.stlError(lineNo, "more than 3 vertices in facet")
			}
			if len(fields) < 4 {
				return c.stlError(lineNo, "expected 'vertex x y z'")
			}
			p, err := parseVector3(fields[1:4])
			if err != nil {
				return c.stlError(lineNo, "vertex: %v", err)
			}
			corners[count] = mesh.AddVertex(model.NewVertex(p, normal))
			count++

		case "endloop":
			if state != stateLoop {
				return c.stlError(lineNo, "'endloop' without 'outer loop'")
			}
			state = stateFacet

		case "endfacet":
			if state != stateFacet {
				return c.stlError(lineNo, "'endfacet' without open facet")
			}
			if count != 3 {
				return c.stlError(lineNo, "facet has %d vertices, expected 3", count)
			}
			if err := mesh.AddTriangle(corners[0], corners[1], corners[2], normal); err != nil {
				return c.stlError(lineNo, "%v", err)
			}
			state = stateIdle

		case "endsolid":
			if state != stateIdle {
				return c.stlError(lineNo, "'endsolid' inside a facet")
			}
			mesh.RecomputeCentroid()
			if mesh.IsEmpty() {
				c.log.Debug("skipping empty solid", zap.String("name", mesh.Name))
			} else {
				meshes = append(meshes, mesh)
			}
			mesh = nil

		default:
			c.log.Debug("ignoring unknown STL keyword",
				zap.String("keyword", fields[0]), zap.Int("line", lineNo))
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(ErrIO, "read %s: %v", c.path, err)
	}
	if mesh != nil {
		return errors.Wrapf(ErrMalformedSTL, "%s: missing 'endsolid'", c.path)
	}
	if len(meshes) == 0 {
		return errors.Wrapf(ErrEmptyResult, "%s: no facets", c.path)
	}

	for _, m := range meshes {
		c.model.AddMesh(m)
	}
	return nil
}

func (c *importContext) stlError(line int, format string, args ...interface{}) error {
	return errors.Wrapf(ErrMalformedSTL, "%s:%d: %s", c.path, line, fmt.Sprintf(format, args...))
}

// binaryRecord is the 50-byte little-endian facet record of a binary STL
type binaryRecord struct {
	Normal    [3]float32
	Vertices  [3][3]float32
	Attribute uint16
}

// readSTLBinary parses a binary STL stream into one mesh. When size is
// known (>= 0) it must equal 84 + 50*N.
func (c *importContext) readSTLBinary(r io.Reader, size int64) error {
	reader := bufio.NewReader(r)

	header := make([]byte, binaryHeaderSize)
	if _, err := io.ReadFull(reader, header); err != nil {
		return errors.Wrapf(ErrMalformedSTL, "%s: short header: %v", c.path, err)
	}

	var triangleCount uint32
	if err := binary.Read(reader, binary.LittleEndian, &triangleCount); err != nil {
		return errors.Wrapf(ErrMalformedSTL, "%s: missing triangle count: %v", c.path, err)
	}
	if triangleCount == 0 {
		return errors.Wrapf(ErrMalformedSTL, "%s: no triangles", c.path)
	}
	if size >= 0 && size != binarySize(triangleCount) {
		return errors.Wrapf(ErrMalformedSTL, "%s: size %d does not match %d triangles (expected %d)",
			c.path, size, triangleCount, binarySize(triangleCount))
	}

	mesh := model.NewMesh(c.stem)
	if name := headerName(header); name != "" {
		mesh.Name = name
	}
	mesh.Vertices = make([]model.Vertex, 0, 3*triangleCount)
	mesh.Triangles = make([]model.Triangle, 0, triangleCount)
	mesh.Indices = make([]uint32, 0, 3*triangleCount)

	invalidNormals := 0
	for i := uint32(0); i < triangleCount; i++ {
		var rec binaryRecord
		if err := binary.Read(reader, binary.LittleEndian, &rec); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return errors.Wrapf(ErrMalformedSTL, "%s: truncated at triangle %d of %d", c.path, i, triangleCount)
			}
			return errors.Wrapf(ErrIO, "read %s: %v", c.path, err)
		}

		normal := geometry.NewVector3(rec.Normal[0], rec.Normal[1], rec.Normal[2])
		if !finite(normal) || normal.LengthSquared() < 1e-6 {
			invalidNormals++
		}

		var idx [3]uint32
		for k, v := range rec.Vertices {
			idx[k] = mesh.AddVertex(model.NewVertex(geometry.NewVector3(v[0], v[1], v[2]), normal))
		}
		if err := mesh.AddTriangle(idx[0], idx[1], idx[2], normal); err != nil {
			return errors.Wrapf(ErrMalformedSTL, "%s: triangle %d: %v", c.path, i, err)
		}
	}

	if invalidNormals > 0 {
		c.log.Debug("binary STL has invalid stored normals",
			zap.String("path", c.path), zap.Int("count", invalidNormals))
	}

	c.finishMesh(mesh)
	c.model.AddMesh(mesh)
	return nil
}

// headerName extracts a printable, non-empty C string from an STL header
func headerName(header []byte) string {
	if i := bytes.IndexByte(header, 0); i >= 0 {
		header = header[:i]
	}
	name := strings.TrimSpace(string(header))
	for _, r := range name {
		if r < 0x20 || r > 0x7e {
			return ""
		}
	}
	return name
}

func parseVector3(fields []string) (geometry.Vector3, error) {
	var v [3]float32
	for i := range v {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return geometry.Vector3{}, errors.Errorf("invalid number %q", fields[i])
		}
		v[i] = float32(f)
	}
	return geometry.NewVector3(v[0], v[1], v[2]), nil
}

func finite(v geometry.Vector3) bool {
	for _, f := range [3]float32{v.X, v.Y, v.Z} {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return false
		}
	}
	return true
}
