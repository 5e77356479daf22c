package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/topsurf/internal/meshtest"
	"github.com/philipparndt/topsurf/pkg/meshio"
	"github.com/philipparndt/topsurf/pkg/model"
)

func writeCube(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "cube.stl")
	_, err := meshio.WriteSTL(path, []*model.Mesh{meshtest.Cube()}, meshio.WithBinary(true))
	require.NoError(t, err)

	configPath := filepath.Join(dir, "topsurf.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("logging:\n  level: error\n"), 0644))
	return path, configPath
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestTopCommand(t *testing.T) {
	path, configPath := writeCube(t)

	out := execute(t, "top", path, "--config", configPath, "--angle", "5")
	assert.Contains(t, out, "Surfaces: 6")
	assert.Contains(t, out, "Selected: ConnectedSurface_1 (#1)")
	assert.Contains(t, out, "Score: 1.000000")
	assert.Contains(t, out, "Height (z): 1.000000")
}

func TestSegmentCommandExportsOBJ(t *testing.T) {
	path, configPath := writeCube(t)
	target := filepath.Join(filepath.Dir(path), "surfaces.obj")

	out := execute(t, "segment", path, "--config", configPath, "--angle", "5", "-o", target)
	assert.Contains(t, out, "Found 6 surfaces")
	assert.Contains(t, out, "Wrote "+target)

	loaded, err := meshio.Load(target)
	require.NoError(t, err)
	assert.Len(t, loaded.Meshes, 6)
	assert.Len(t, loaded.Materials, 6)
}

func TestInfoCommand(t *testing.T) {
	path, configPath := writeCube(t)

	out := execute(t, "info", path, "--config", configPath)
	assert.Contains(t, out, "Type: STL (binary)")
	assert.Contains(t, out, "Triangles: 12")
	assert.Contains(t, out, "Vertices: 8")
}

func TestEdgesCommand(t *testing.T) {
	path, configPath := writeCube(t)

	out := execute(t, "edges", path, "--config", configPath, "--longest", "-n", "2")
	assert.Contains(t, out, "Top 2 Longest Edges")
	assert.Contains(t, out, "Total edges in model: 36")
	assert.Contains(t, out, "1.414214")
}

func TestTrianglesCommand(t *testing.T) {
	path, configPath := writeCube(t)

	out := execute(t, "triangles", path, "--config", configPath, "-n", "1")
	assert.Contains(t, out, "First 1 Triangles")
	assert.Contains(t, out, "Total triangles: 12")
	assert.Contains(t, out, "Total surface area: 6.000000 square units")
	assert.Contains(t, out, "Triangle #0:")
}

func TestConvertCommand(t *testing.T) {
	path, configPath := writeCube(t)
	target := filepath.Join(filepath.Dir(path), "cube.obj")

	out := execute(t, "convert", path, target, "--config", configPath)
	assert.Contains(t, out, "Wrote "+target)

	loaded, err := meshio.Load(target)
	require.NoError(t, err)
	require.Len(t, loaded.Meshes, 1)
	assert.Equal(t, 12, loaded.Meshes[0].TriangleCount())
	assert.Equal(t, 8, loaded.Meshes[0].VertexCount())
}

func TestSegmentCommandColorize(t *testing.T) {
	path, configPath := writeCube(t)
	target := filepath.Join(filepath.Dir(path), "colored.obj")
	t.Cleanup(func() { segColorize = false })

	out := execute(t, "segment", path, "--config", configPath, "--angle", "5", "--colorize", "-o", target)
	assert.Contains(t, out, "Found 6 surfaces")

	loaded, err := meshio.Load(target)
	require.NoError(t, err)
	require.Len(t, loaded.Meshes, 1)
	assert.Equal(t, 12, loaded.Meshes[0].TriangleCount())
}
