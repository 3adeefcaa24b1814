// Package config loads the region explorer's TOML configuration.
package config

import (
	"os"
	"path/filepath"

	"region-explorer/internal/viewport"
	"region-explorer/pkg/geometry"

	"github.com/BurntSushi/toml"
)

// Config holds all user-facing configuration.
type Config struct {
	Document DocumentConfig `toml:"document"`
	Viewport ViewportConfig `toml:"viewport"`
	Editor   EditorConfig   `toml:"editor"`
	Window   WindowConfig   `toml:"window"`
}

type DocumentConfig struct {
	Path        string `toml:"path"`
	ResourceDir string `toml:"resource_dir"`
}

type ViewportConfig struct {
	FrameX       float64 `toml:"frame_x"`
	FrameY       float64 `toml:"frame_y"`
	FrameWidth   float64 `toml:"frame_width"`
	FrameHeight  float64 `toml:"frame_height"`
	OriginX      float64 `toml:"origin_x"`
	OriginY      float64 `toml:"origin_y"`
	Zoom         float64 `toml:"zoom"`
	MinZoom      float64 `toml:"min_zoom"`
	MaxZoom      float64 `toml:"max_zoom"`
	ZoomStep     float64 `toml:"zoom_step"`
	MarkerOffX   float64 `toml:"marker_offset_x"`
	MarkerOffY   float64 `toml:"marker_offset_y"`
	MarkerWidth  float64 `toml:"marker_width"`
	MarkerHeight float64 `toml:"marker_height"`
}

type EditorConfig struct {
	// DescriptionCapacity caps the edit buffer in characters; 0 disables the cap.
	DescriptionCapacity int `toml:"description_capacity"`
}

type WindowConfig struct {
	Width  float32 `toml:"width"`
	Height float32 `toml:"height"`
}

// Defaults returns a Config populated with built-in default values.
func Defaults() *Config {
	vp := viewport.DefaultConfig()
	return &Config{
		Document: DocumentConfig{
			Path:        "./resources/kellua_saari.ron",
			ResourceDir: "./resources",
		},
		Viewport: ViewportConfig{
			FrameX:       vp.Frame.X,
			FrameY:       vp.Frame.Y,
			FrameWidth:   vp.Frame.Width,
			FrameHeight:  vp.Frame.Height,
			OriginX:      vp.Origin.X,
			OriginY:      vp.Origin.Y,
			Zoom:         vp.Zoom,
			MinZoom:      vp.MinZoom,
			MaxZoom:      vp.MaxZoom,
			ZoomStep:     0.1,
			MarkerOffX:   vp.MarkerOffset.X,
			MarkerOffY:   vp.MarkerOffset.Y,
			MarkerWidth:  vp.MarkerSize.Width,
			MarkerHeight: vp.MarkerSize.Height,
		},
		Editor: EditorConfig{DescriptionCapacity: 5000},
		Window: WindowConfig{Width: 800, Height: 600},
	}
}

// Load reads a TOML config file. If the file does not exist, built-in
// defaults are returned without error.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ViewportConfig converts the viewport section for the coordinate mapper.
func (c *Config) ViewportConfig() viewport.Config {
	v := c.Viewport
	return viewport.Config{
		Frame:        geometry.NewRect(v.FrameX, v.FrameY, v.FrameWidth, v.FrameHeight),
		Origin:       geometry.NewPoint2D(v.OriginX, v.OriginY),
		Zoom:         v.Zoom,
		MinZoom:      v.MinZoom,
		MaxZoom:      v.MaxZoom,
		MarkerOffset: geometry.NewPoint2D(v.MarkerOffX, v.MarkerOffY),
		MarkerSize:   geometry.NewSize(v.MarkerWidth, v.MarkerHeight),
	}
}

// ImagePath resolves a region's bare image filename against the resource directory.
func (c *Config) ImagePath(image string) string {
	return filepath.Join(c.Document.ResourceDir, image)
}
