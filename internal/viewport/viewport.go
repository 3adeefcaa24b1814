// Package viewport converts between window, draw and image-content
// coordinates under pan and zoom.
//
// Content space is fixed to the unscaled image with its origin at the
// top-left corner. Draw space is the map frame's coordinate system after pan
// and zoom have been applied. Raw positions come straight from the input
// device in window coordinates.
package viewport

import (
	"errors"
	"math"

	"region-explorer/pkg/geometry"

	"gonum.org/v1/gonum/floats/scalar"
)

// ErrZeroZoom is returned by conversions given a zoom of zero.
var ErrZeroZoom = errors.New("zoom must be non-zero")

// viewTolerance is the smallest zoom or pan change that counts as a change.
const viewTolerance = 1e-9

// ToDrawRaw maps a content position to draw space: p*zoom + pan.
func ToDrawRaw(p, pan geometry.Point2D, zoom float64) geometry.Point2D {
	return drawTransform(pan, zoom).Apply(p)
}

// ToDraw is ToDrawRaw shifted by the cosmetic marker centering offset.
func ToDraw(p, pan geometry.Point2D, zoom float64, markerOffset geometry.Point2D) geometry.Point2D {
	return ToDrawRaw(p, pan, zoom).Sub(markerOffset)
}

// ToContent maps a raw window position to content space:
// (raw - origin - pan) / zoom. It is the inverse of ToDrawRaw once the
// frame origin is accounted for.
func ToContent(raw, origin, pan geometry.Point2D, zoom float64) (geometry.Point2D, error) {
	if zoom == 0 {
		return geometry.Point2D{}, ErrZeroZoom
	}
	d := raw.Sub(origin).Sub(pan)
	return geometry.Point2D{X: d.X / zoom, Y: d.Y / zoom}, nil
}

func drawTransform(pan geometry.Point2D, zoom float64) geometry.AffineTransform {
	return geometry.Translation(pan.X, pan.Y).Compose(geometry.Scale(zoom, zoom))
}

// Config describes the fixed layout of the map frame.
type Config struct {
	// Frame is the map viewport in window coordinates. Positions strictly
	// inside it are "in the map region".
	Frame geometry.Rect

	// Origin is the window position of draw-space (0,0).
	Origin geometry.Point2D

	Zoom    float64
	MinZoom float64
	MaxZoom float64

	// MarkerOffset is subtracted from a marker's draw position so the glyph
	// is centered on the point. MarkerSize is the glyph's footprint.
	MarkerOffset geometry.Point2D
	MarkerSize   geometry.Size
}

// DefaultConfig returns the layout used by the map window.
func DefaultConfig() Config {
	return Config{
		Frame:        geometry.NewRect(10, 40, 490, 540),
		Origin:       geometry.NewPoint2D(17, 54),
		Zoom:         0.6,
		MinZoom:      0.1,
		MaxZoom:      1.0,
		MarkerOffset: geometry.NewPoint2D(4, 10),
		MarkerSize:   geometry.NewSize(8, 20),
	}
}

// Mapper holds the view state for one map frame. Pan and zoom are view-only
// and never persisted.
type Mapper struct {
	cfg  Config
	pan  geometry.Point2D
	zoom float64
}

// New creates a Mapper with the configured initial zoom and no pan.
func New(cfg Config) *Mapper {
	if cfg.MinZoom <= 0 {
		cfg.MinZoom = 0.1
	}
	if cfg.MaxZoom < cfg.MinZoom {
		cfg.MaxZoom = cfg.MinZoom
	}
	m := &Mapper{cfg: cfg}
	m.SetZoom(cfg.Zoom)
	return m
}

// Config returns the layout configuration.
func (m *Mapper) Config() Config {
	return m.cfg
}

// Pan returns the current pan offset.
func (m *Mapper) Pan() geometry.Point2D {
	return m.pan
}

// SetPan replaces the pan offset.
func (m *Mapper) SetPan(p geometry.Point2D) {
	m.pan = p
}

// PanBy adds a drag delta to the pan offset. It reports whether the pan moved.
func (m *Mapper) PanBy(delta geometry.Point2D) bool {
	if delta.ApproxEqual(geometry.Point2D{}, viewTolerance) {
		return false
	}
	m.pan = m.pan.Add(delta)
	return true
}

// Zoom returns the current zoom factor.
func (m *Mapper) Zoom() float64 {
	return m.zoom
}

// SetZoom sets the zoom factor, clamped to the configured range. It reports
// whether the zoom changed; a request clamped back to the current value does
// not count.
func (m *Mapper) SetZoom(zoom float64) bool {
	if math.IsNaN(zoom) {
		zoom = m.cfg.MinZoom
	}
	zoom = math.Max(m.cfg.MinZoom, math.Min(m.cfg.MaxZoom, zoom))
	if scalar.EqualWithinAbs(zoom, m.zoom, viewTolerance) {
		return false
	}
	m.zoom = zoom
	return true
}

// ZoomBy adds step to the zoom factor.
func (m *Mapper) ZoomBy(step float64) bool {
	return m.SetZoom(m.zoom + step)
}

// ZoomAt changes zoom by step while keeping the content point under raw
// fixed on screen. Pan is left alone when the zoom is already at its limit.
func (m *Mapper) ZoomAt(raw geometry.Point2D, step float64) bool {
	anchor, err := m.ToContent(raw)
	if !m.ZoomBy(step) {
		return false
	}
	if err == nil {
		// raw - origin = anchor*zoom + pan
		m.pan = raw.Sub(m.cfg.Origin).Sub(anchor.Scale(m.zoom))
	}
	return true
}

// Center pans so an image of the given content size is centered in the frame.
func (m *Mapper) Center(imageSize geometry.Size) {
	m.pan = geometry.Point2D{
		X: (m.cfg.Frame.Width - imageSize.Width*m.zoom) / 2,
		Y: (m.cfg.Frame.Height - imageSize.Height*m.zoom) / 2,
	}
}

// InRegion reports whether a raw position is inside the map frame.
func (m *Mapper) InRegion(raw geometry.Point2D) bool {
	return m.cfg.Frame.ContainsStrict(raw)
}

// ToContent converts a raw window position to content space.
func (m *Mapper) ToContent(raw geometry.Point2D) (geometry.Point2D, error) {
	return ToContent(raw, m.cfg.Origin, m.pan, m.zoom)
}

// ToDrawRaw converts a content position to draw space without marker centering.
func (m *Mapper) ToDrawRaw(p geometry.Point2D) geometry.Point2D {
	return ToDrawRaw(p, m.pan, m.zoom)
}

// ToDraw converts a content position to the draw position of its marker glyph.
func (m *Mapper) ToDraw(p geometry.Point2D) geometry.Point2D {
	return ToDraw(p, m.pan, m.zoom, m.cfg.MarkerOffset)
}

// MarkerToContent inverts ToDraw: given a marker's draw position it returns
// the content point the marker stands for.
func (m *Mapper) MarkerToContent(draw geometry.Point2D) (geometry.Point2D, error) {
	return ToContent(draw.Add(m.cfg.MarkerOffset), geometry.Point2D{}, m.pan, m.zoom)
}

// MarkerRect returns the window-space rectangle covered by the marker of p.
func (m *Mapper) MarkerRect(p geometry.Point2D) geometry.Rect {
	d := m.ToDraw(p).Add(m.cfg.Origin)
	return geometry.NewRect(d.X, d.Y, m.cfg.MarkerSize.Width, m.cfg.MarkerSize.Height)
}

// MarkerAt returns the index of the top-most marker under raw, or -1.
// Later points are drawn on top of earlier ones.
func (m *Mapper) MarkerAt(raw geometry.Point2D, points []geometry.Point2D) int {
	if !m.InRegion(raw) {
		return -1
	}
	for i := len(points) - 1; i >= 0; i-- {
		if m.MarkerRect(points[i]).Contains(raw) {
			return i
		}
	}
	return -1
}
