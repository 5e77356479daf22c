package meshio

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/philipparndt/topsurf/pkg/model"
)

// importContext is created for a single load call and discarded afterwards.
// Meshes are staged in its own model and only handed to the caller on success.
type importContext struct {
	path  string
	dir   string
	stem  string
	kind  model.ModelType
	log   *zap.Logger
	cfg   config
	model *model.Model
}

func newImportContext(path string, kind model.ModelType, cfg config) *importContext {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	staged := model.NewModel(stem)
	staged.Type = kind
	staged.Directory = filepath.Dir(path)
	return &importContext{
		path:  path,
		dir:   staged.Directory,
		stem:  stem,
		kind:  kind,
		log:   cfg.log,
		cfg:   cfg,
		model: staged,
	}
}

// Load reads an STL or OBJ file into a new model
func Load(path string, opts ...Option) (*model.Model, error) {
	m := model.NewModel("")
	if err := LoadInto(m, path, opts...); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadInto replaces the contents of dst with the model read from path.
// If loading fails dst is left unchanged.
func LoadInto(dst *model.Model, path string, opts ...Option) error {
	cfg := newConfig(opts)

	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(ErrIO, "stat %s: %v", path, err)
	}
	if info.IsDir() {
		return errors.Wrapf(ErrIO, "%s is a directory", path)
	}

	kind := DetectFileType(path)
	if kind == model.Unknown {
		return errors.Wrapf(ErrUnsupportedFormat, "%s", path)
	}

	ctx := newImportContext(path, kind, cfg)
	if err := ctx.run(info.Size()); err != nil {
		return err
	}
	ctx.commit(dst)

	stats := dst.Stats()
	cfg.log.Info("loaded model",
		zap.String("path", path),
		zap.Stringer("type", kind),
		zap.Int("meshes", stats.Meshes),
		zap.Int("materials", stats.Materials),
		zap.Int("vertices", stats.Vertices),
		zap.Int("triangles", stats.Triangles),
	)
	return nil
}

func (c *importContext) run(size int64) error {
	file, err := os.Open(c.path)
	if err != nil {
		return errors.Wrapf(ErrIO, "open %s: %v", c.path, err)
	}
	defer file.Close()

	switch c.kind {
	case model.STLASCII:
		return c.readSTLASCII(bufio.NewReader(file))
	case model.STLBinary:
		return c.readSTLBinary(file, size)
	case model.OBJ:
		return c.readOBJ(file)
	default:
		return errors.Wrapf(ErrUnsupportedFormat, "%s", c.path)
	}
}

// commit moves the staged model into dst
func (c *importContext) commit(dst *model.Model) {
	dst.Clear()
	dst.Name = c.model.Name
	dst.Type = c.model.Type
	dst.Directory = c.model.Directory
	dst.Meshes = append(dst.Meshes, c.model.Meshes...)
	dst.Materials = c.model.Materials
	dst.Bounds = c.model.Bounds
}

// finishMesh deduplicates vertices or, with optimization disabled, only
// refreshes the centroid
func (c *importContext) finishMesh(mesh *model.Mesh) {
	if !c.cfg.optimize {
		mesh.RecomputeCentroid()
		return
	}
	result := mesh.Optimize()
	c.log.Debug("optimized mesh",
		zap.String("mesh", mesh.Name),
		zap.Int("before", result.Before),
		zap.Int("after", result.After),
	)
}
