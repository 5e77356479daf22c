package meshio

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/philipparndt/topsurf/pkg/geometry"
	"github.com/philipparndt/topsurf/pkg/model"
)

// readMTL parses a material library. Texture maps are looked up by file
// name in the model directory and fall back to the path as written.
func (c *importContext) readMTL(path string) (map[string]model.Material, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(ErrIO, "open %s: %v", path, err)
	}
	defer file.Close()

	materials := make(map[string]model.Material)
	var current *model.Material
	flush := func() {
		if current != nil {
			materials[current.Name] = *current
		}
	}

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		rest := strings.TrimSpace(line[len(fields[0]):])

		if fields[0] == "newmtl" {
			flush()
			current = nil
			if rest != "" {
				m := model.NewMaterial(rest)
				current = &m
			}
			continue
		}
		if current == nil {
			continue
		}

		switch fields[0] {
		case "Ka":
			current.Ambient = c.mtlColor(path, lineNo, fields[1:], current.Ambient)
		case "Kd":
			current.Diffuse = c.mtlColor(path, lineNo, fields[1:], current.Diffuse)
		case "Ks":
			current.Specular = c.mtlColor(path, lineNo, fields[1:], current.Specular)
		case "Ns":
			if len(fields) > 1 {
				if f, err := strconv.ParseFloat(fields[1], 32); err == nil {
					current.Shininess = float32(f)
				} else {
					c.log.Warn("invalid Ns value", zap.String("path", path), zap.Int("line", lineNo))
				}
			}
		case "map_Kd":
			if rest != "" {
				current.DiffuseMap = c.resolveMap(rest)
			}
		case "map_Bump", "map_bump", "bump":
			if rest != "" {
				current.NormalMap = c.resolveMap(rest)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(ErrIO, "read %s: %v", path, err)
	}
	flush()
	return materials, nil
}

// mtlColor parses "r g b"; a malformed value keeps the previous color
func (c *importContext) mtlColor(path string, line int, fields []string, fallback geometry.Vector3) geometry.Vector3 {
	v, err := c.parseColor(fields)
	if err != nil {
		c.log.Warn("invalid material color", zap.String("path", path), zap.Int("line", line), zap.Error(err))
		return fallback
	}
	return v
}

func (c *importContext) parseColor(fields []string) (geometry.Vector3, error) {
	if len(fields) < 3 {
		return geometry.Vector3{}, errors.Errorf("expected 3 components, got %d", len(fields))
	}
	return parseVector3(fields[:3])
}

func (c *importContext) resolveMap(raw string) string {
	candidate := filepath.Join(c.dir, filepath.Base(raw))
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return raw
}
