// Package image provides map image loading and view rendering.
package image

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"region-explorer/pkg/geometry"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decoder loads a raster image from a file path.
type Decoder interface {
	Decode(path string) (*Layer, error)
}

// FileDecoder decodes PNG, JPEG, GIF, BMP, TIFF and WebP files.
type FileDecoder struct{}

// Decode implements Decoder.
func (FileDecoder) Decode(path string) (*Layer, error) {
	return Load(path)
}

// Layer is a decoded map image.
type Layer struct {
	Path   string      // Original file path
	Image  image.Image // Loaded image data
	Format string      // Decoder name, e.g. "png"
}

// NewLayer wraps an already decoded image.
func NewLayer(img image.Image) *Layer {
	return &Layer{Image: img}
}

// Load loads an image from the specified path and returns a Layer.
func Load(path string) (*Layer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return &Layer{Path: path, Image: img, Format: format}, nil
}

// Width returns the image width in pixels.
func (l *Layer) Width() int {
	if l.Image == nil {
		return 0
	}
	return l.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (l *Layer) Height() int {
	if l.Image == nil {
		return 0
	}
	return l.Image.Bounds().Dy()
}

// Size returns the image dimensions.
func (l *Layer) Size() geometry.Size {
	return geometry.Size{
		Width:  float64(l.Width()),
		Height: float64(l.Height()),
	}
}
