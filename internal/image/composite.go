package image

import (
	"image"
	"image/color"
	"image/draw"

	"region-explorer/pkg/colorutil"
	"region-explorer/pkg/geometry"

	xdraw "golang.org/x/image/draw"
)

// Marker is a marker glyph to draw, already positioned in draw space.
type Marker struct {
	Rect     geometry.Rect
	Selected bool
}

// View describes what to render into a frame.
type View struct {
	Layer   *Layer
	Pan     geometry.Point2D
	Zoom    float64
	Markers []Marker

	BackColor color.Color
}

// Render draws the map image scaled by Zoom and offset by Pan into a w x h
// frame, then the markers on top.
func Render(w, h int, v View) *image.RGBA {
	output := image.NewRGBA(image.Rect(0, 0, w, h))

	back := v.BackColor
	if back == nil {
		back = color.RGBA{40, 40, 40, 255} // Dark gray background
	}
	draw.Draw(output, output.Bounds(), image.NewUniform(back), image.Point{}, draw.Src)

	if v.Layer != nil && v.Layer.Image != nil && v.Zoom > 0 {
		src := v.Layer.Image
		sb := src.Bounds()
		dst := image.Rect(
			int(v.Pan.X),
			int(v.Pan.Y),
			int(v.Pan.X+float64(sb.Dx())*v.Zoom),
			int(v.Pan.Y+float64(sb.Dy())*v.Zoom),
		)
		if !dst.Intersect(output.Bounds()).Empty() {
			xdraw.ApproxBiLinear.Scale(output, dst, src, sb, xdraw.Over, nil)
		}
	}

	for _, m := range v.Markers {
		drawMarker(output, m)
	}
	return output
}

// drawMarker draws a pin: a filled head in the upper half of the footprint
// and a one pixel stem down to the point.
func drawMarker(output *image.RGBA, m Marker) {
	fill := colorutil.Yellow
	if m.Selected {
		fill = colorutil.Magenta
	}

	x1 := int(m.Rect.X)
	y1 := int(m.Rect.Y)
	x2 := int(m.Rect.X + m.Rect.Width)
	y2 := int(m.Rect.Y + m.Rect.Height)
	headBottom := y1 + (y2-y1)/2

	head := image.Rect(x1, y1, x2, headBottom).Intersect(output.Bounds())
	draw.Draw(output, head, image.NewUniform(fill), image.Point{}, draw.Src)
	drawRectOutline(output, image.Rect(x1, y1, x2, headBottom), colorutil.Black)

	cx := x1 + (x2-x1)/2
	for y := headBottom; y < y2; y++ {
		setPixel(output, cx, y, colorutil.Black)
	}
}

func drawRectOutline(output *image.RGBA, r image.Rectangle, col color.RGBA) {
	for x := r.Min.X; x < r.Max.X; x++ {
		setPixel(output, x, r.Min.Y, col)
		setPixel(output, x, r.Max.Y-1, col)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		setPixel(output, r.Min.X, y, col)
		setPixel(output, r.Max.X-1, y, col)
	}
}

func setPixel(output *image.RGBA, x, y int, col color.RGBA) {
	if (image.Point{X: x, Y: y}).In(output.Bounds()) {
		output.SetRGBA(x, y, col)
	}
}
