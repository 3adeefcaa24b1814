package main

import (
	"bytes"
	goimage "image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"region-explorer/internal/project"
	"region-explorer/internal/region"
	"region-explorer/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRegion(t *testing.T, dir, name string) string {
	t.Helper()
	doc := region.New("Kellua saari", "kellua_saari.png")
	doc.UpdateRegionDescription("An island.")
	doc.AddPoint(geometry.NewPoint2D(10, 20))
	doc.AddPoint(geometry.NewPoint2D(30, 40))
	require.NoError(t, doc.UpdatePointDescription(0, "Harbour"))

	path := filepath.Join(dir, name)
	require.NoError(t, project.Save(doc, path))
	return path
}

func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", filepath.Join(dir, "missing.toml")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestShow(t *testing.T) {
	dir := t.TempDir()
	path := writeRegion(t, dir, "region.ron")

	out, err := run(t, dir, "show", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Region: Kellua saari")
	assert.Contains(t, out, "Points (2)")
	assert.Contains(t, out, "Harbour")
}

func TestAddPointWritesBackup(t *testing.T) {
	dir := t.TempDir()
	path := writeRegion(t, dir, "region.json")

	out, err := run(t, dir, "add-point", path, "--x", "5.5", "--y", "7", "--description", "Lighthouse")
	require.NoError(t, err)
	assert.Contains(t, out, "Added point 2")

	doc, err := project.Load(path)
	require.NoError(t, err)
	require.Equal(t, 3, doc.Len())
	assert.Equal(t, region.MapPoint{X: 5.5, Y: 7, Description: "Lighthouse"}, doc.Points[2])

	backup, err := project.Load(project.BackupPath(path))
	require.NoError(t, err)
	assert.Equal(t, 2, backup.Len())
}

func TestDescribe(t *testing.T) {
	dir := t.TempDir()
	path := writeRegion(t, dir, "region.yaml")

	_, err := run(t, dir, "describe", path, "--index", "1", "--text", "Windmill")
	require.NoError(t, err)
	_, err = run(t, dir, "describe", path, "--index=-1", "--text", "A small island.")
	require.NoError(t, err)

	doc, err := project.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Windmill", doc.Points[1].Description)
	assert.Equal(t, "Harbour", doc.Points[0].Description)
	assert.Equal(t, "A small island.", doc.Description)
}

func TestDescribeOutOfRange(t *testing.T) {
	dir := t.TempDir()
	path := writeRegion(t, dir, "region.ron")

	_, err := run(t, dir, "describe", path, "--index", "7", "--text", "x")
	var idxErr *region.IndexError
	require.ErrorAs(t, err, &idxErr)

	_, statErr := os.Stat(project.BackupPath(path))
	assert.True(t, os.IsNotExist(statErr), "failed edit must not write")
}

func TestRemovePoint(t *testing.T) {
	dir := t.TempDir()
	path := writeRegion(t, dir, "region.toml")

	out, err := run(t, dir, "remove-point", path, "--index", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "1 remain")

	doc, err := project.Load(path)
	require.NoError(t, err)
	require.Equal(t, 1, doc.Len())
	assert.Equal(t, 30.0, doc.Points[0].X)
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	src := writeRegion(t, dir, "region.ron")
	dst := filepath.Join(dir, "region.yml")

	_, err := run(t, dir, "convert", src, dst)
	require.NoError(t, err)

	a, err := project.Load(src)
	require.NoError(t, err)
	b, err := project.Load(dst)
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	path := writeRegion(t, dir, "region.ron")

	f, err := os.Create(filepath.Join(dir, "kellua_saari.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, goimage.NewRGBA(goimage.Rect(0, 0, 64, 48))))
	require.NoError(t, f.Close())

	cfgPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[document]\nresource_dir = \""+filepath.ToSlash(dir)+"\"\n"), 0644))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", cfgPath, "check", path})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "png 64x48")
}

func TestCheckMissingImage(t *testing.T) {
	dir := t.TempDir()
	path := writeRegion(t, dir, "region.ron")

	_, err := run(t, dir, "check", path)
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "regiontool ")
}
