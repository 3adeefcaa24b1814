package config

import (
	"os"
	"path/filepath"
	"testing"

	"region-explorer/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.Equal(t, 5000, cfg.Editor.DescriptionCapacity)
	assert.Equal(t, "./resources/kellua_saari.ron", cfg.Document.Path)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[document]
path = "maps/island.json"

[viewport]
zoom = 0.25
max_zoom = 2.0
marker_offset_x = 8
marker_offset_y = 8
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "maps/island.json", cfg.Document.Path)
	assert.Equal(t, "./resources", cfg.Document.ResourceDir)

	vp := cfg.ViewportConfig()
	assert.Equal(t, 0.25, vp.Zoom)
	assert.Equal(t, 0.1, vp.MinZoom)
	assert.Equal(t, 2.0, vp.MaxZoom)
	assert.Equal(t, geometry.NewPoint2D(8, 8), vp.MarkerOffset)
	assert.Equal(t, geometry.NewRect(10, 40, 490, 540), vp.Frame)
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[document\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestImagePath(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, filepath.Join("resources", "kellua_saari.png"), cfg.ImagePath("kellua_saari.png"))
}
