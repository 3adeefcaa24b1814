// Package canvas provides the map widget: the region image with its
// markers, forwarding pointer input to the editing session.
package canvas

import (
	"errors"
	goimage "image"
	"log"

	"region-explorer/internal/app"
	"region-explorer/internal/image"
	"region-explorer/internal/region"
	"region-explorer/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

const defaultZoomStep = 0.1

// MapCanvas draws the session's map and turns pointer events into session
// commands. Its top-left corner sits at the viewport origin, so widget
// positions plus the origin give raw window positions.
type MapCanvas struct {
	widget.BaseWidget

	session  *app.Session
	raster   *fynecanvas.Raster
	zoomStep float64

	onError func(err error)
}

// NewMapCanvas creates a map widget bound to a session.
func NewMapCanvas(session *app.Session, zoomStep float64) *MapCanvas {
	if zoomStep <= 0 {
		zoomStep = defaultZoomStep
	}
	mc := &MapCanvas{
		session:  session,
		zoomStep: zoomStep,
	}
	mc.raster = fynecanvas.NewRaster(mc.draw)
	mc.raster.ScaleMode = fynecanvas.ImageScalePixels
	mc.ExtendBaseWidget(mc)

	refresh := func(interface{}) { mc.Refresh() }
	for _, ev := range []app.EventType{
		app.EventDocumentLoaded,
		app.EventPointAdded,
		app.EventPointRemoved,
		app.EventSelectionChanged,
		app.EventViewChanged,
	} {
		session.On(ev, refresh)
	}
	return mc
}

// OnError sets a callback for command failures worth showing to the user.
func (mc *MapCanvas) OnError(callback func(err error)) {
	mc.onError = callback
}

// CreateRenderer implements fyne.Widget.
func (mc *MapCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(mc.raster)
}

// MinSize keeps the map frame at its configured size.
func (mc *MapCanvas) MinSize() fyne.Size {
	vp := mc.session.Viewport()
	frameEnd := vp.Frame.BottomRight()
	return fyne.NewSize(float32(frameEnd.X-vp.Origin.X), float32(frameEnd.Y-vp.Origin.Y))
}

// Refresh redraws the map.
func (mc *MapCanvas) Refresh() {
	mc.raster.Refresh()
}

// rawPosition converts a widget-local position to a raw window position.
func (mc *MapCanvas) rawPosition(pos fyne.Position) geometry.Point2D {
	origin := mc.session.Viewport().Origin
	return geometry.NewPoint2D(float64(pos.X)+origin.X, float64(pos.Y)+origin.Y)
}

// Tapped selects the marker under the pointer.
func (mc *MapCanvas) Tapped(ev *fyne.PointEvent) {
	m, ok := mc.session.MarkerAt(mc.rawPosition(ev.Position))
	if !ok {
		return
	}
	mc.apply(app.SelectMarker{ID: m.ID})
}

// TappedSecondary places a new point.
func (mc *MapCanvas) TappedSecondary(ev *fyne.PointEvent) {
	mc.apply(app.AddPoint{Raw: mc.rawPosition(ev.Position), Button: app.ButtonSecondary})
}

// Dragged pans the map.
func (mc *MapCanvas) Dragged(ev *fyne.DragEvent) {
	mc.apply(app.Pan{Delta: geometry.NewPoint2D(float64(ev.Dragged.DX), float64(ev.Dragged.DY))})
}

// DragEnd implements fyne.Draggable.
func (mc *MapCanvas) DragEnd() {}

// Scrolled zooms around the pointer.
func (mc *MapCanvas) Scrolled(ev *fyne.ScrollEvent) {
	step := mc.zoomStep
	if ev.Scrolled.DY < 0 {
		step = -step
	} else if ev.Scrolled.DY == 0 {
		return
	}
	mc.apply(app.Zoom{At: mc.rawPosition(ev.Position), Step: step})
}

func (mc *MapCanvas) apply(cmd app.Command) {
	err := mc.session.Apply(cmd)
	switch {
	case err == nil:
	case errors.Is(err, region.ErrReadOnly), errors.Is(err, region.ErrOutsideRegion):
		log.Printf("Map: %T ignored: %v", cmd, err)
	default:
		log.Printf("Map: %T failed: %v", cmd, err)
		if mc.onError != nil {
			mc.onError(err)
		}
	}
}

// draw is the raster drawing function. w and h are in device pixels.
func (mc *MapCanvas) draw(w, h int) goimage.Image {
	scale := 1.0
	if size := mc.Size(); size.Width > 0 {
		scale = float64(w) / float64(size.Width)
	}

	origin := mc.session.Viewport().Origin
	pan, zoom := mc.session.View()

	markers := mc.session.Markers()
	glyphs := make([]image.Marker, len(markers))
	for i, m := range markers {
		r := m.Rect
		glyphs[i] = image.Marker{
			Rect: geometry.NewRect(
				(r.X-origin.X)*scale,
				(r.Y-origin.Y)*scale,
				r.Width*scale,
				r.Height*scale,
			),
			Selected: m.Selected,
		}
	}

	return image.Render(w, h, image.View{
		Layer:   mc.session.Image(),
		Pan:     pan.Scale(scale),
		Zoom:    zoom * scale,
		Markers: glyphs,
	})
}

var (
	_ fyne.Tappable          = (*MapCanvas)(nil)
	_ fyne.SecondaryTappable = (*MapCanvas)(nil)
	_ fyne.Draggable         = (*MapCanvas)(nil)
	_ fyne.Scrollable        = (*MapCanvas)(nil)
)
