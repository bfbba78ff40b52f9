// Package ink rasterizes pen and eraser strokes.
//
// A Layer is a transparent RGBA surface covering a region of the canvas at
// a fixed scale. Pen strokes are painted over it; eraser strokes clear the
// pixels they cover, so ink never touches the elements underneath.
package ink

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"

	"canvasnotes/internal/domain"
	"canvasnotes/internal/geometry"
)

// DefaultColor is used when a stroke color does not parse.
var DefaultColor color.Color = color.Black

type Layer struct {
	dc     *gg.Context
	region geometry.Rect
	scale  float64
}

// NewLayer returns a layer covering region of the canvas, rendered at
// scale pixels per canvas unit.
func NewLayer(region geometry.Rect, scale float64) *Layer {
	if scale <= 0 {
		scale = 1
	}
	w := max(1, int(region.W*scale+0.5))
	h := max(1, int(region.H*scale+0.5))
	return &Layer{dc: gg.NewContext(w, h), region: region, scale: scale}
}

// Region is the canvas area the layer covers.
func (l *Layer) Region() geometry.Rect { return l.region }

// Image is the layer's backing image. It is updated in place by later draws.
func (l *Layer) Image() image.Image { return l.dc.Image() }

// Clear makes every pixel transparent.
func (l *Layer) Clear() {
	l.dc.SetColor(color.Transparent)
	l.dc.Clear()
}

// Replay clears the layer and draws strokes in order.
func (l *Layer) Replay(strokes []domain.Stroke) {
	l.Clear()
	for _, s := range strokes {
		l.Draw(s)
	}
}

// Segment draws one live segment of a stroke still in progress.
func (l *Layer) Segment(mode domain.StrokeMode, c string, width float64, from, to geometry.Point) {
	l.Draw(domain.Stroke{Mode: mode, Color: c, Width: width, Points: []geometry.Point{from, to}})
}

// Draw paints or erases one stroke.
func (l *Layer) Draw(s domain.Stroke) {
	if len(s.Points) == 0 {
		return
	}
	if s.Mode == domain.StrokeErase {
		l.erase(s)
		return
	}
	l.dc.SetColor(ParseColor(s.Color, DefaultColor))
	l.paint(l.dc, s)
}

// erase builds a coverage mask of the stroke and clears the layer through it.
func (l *Layer) erase(s domain.Stroke) {
	mask := gg.NewContext(l.dc.Width(), l.dc.Height())
	mask.SetColor(color.White)
	l.paint(mask, s)

	dst, ok := l.dc.Image().(draw.Image)
	if !ok {
		return
	}
	draw.DrawMask(dst, dst.Bounds(), image.Transparent, image.Point{}, mask.AsMask(), image.Point{}, draw.Src)
}

// paint strokes the path on dc in layer pixel space with dc's current color.
func (l *Layer) paint(dc *gg.Context, s domain.Stroke) {
	w := s.Width
	if w <= 0 {
		w = 1
	}
	dc.SetLineWidth(w * l.scale)
	dc.SetLineCapRound()
	dc.SetLineJoinRound()
	dc.NewSubPath()

	first := l.toPixels(s.Points[0])
	if len(s.Points) == 1 {
		// a tap leaves a dot
		dc.DrawCircle(first.X, first.Y, w*l.scale/2)
		dc.Fill()
		return
	}
	dc.MoveTo(first.X, first.Y)
	for _, p := range s.Points[1:] {
		p = l.toPixels(p)
		dc.LineTo(p.X, p.Y)
	}
	dc.Stroke()
}

func (l *Layer) toPixels(p geometry.Point) geometry.Point {
	return geometry.Point{X: (p.X - l.region.X) * l.scale, Y: (p.Y - l.region.Y) * l.scale}
}

// Bounds is the canvas area touched by strokes, padded by stroke width.
func Bounds(strokes []domain.Stroke) (geometry.Rect, bool) {
	var (
		minP, maxP geometry.Point
		found      bool
	)
	for _, s := range strokes {
		if s.Mode == domain.StrokeErase {
			continue
		}
		pad := max(s.Width, 1) / 2
		for _, p := range s.Points {
			lo := geometry.Point{X: p.X - pad, Y: p.Y - pad}
			hi := geometry.Point{X: p.X + pad, Y: p.Y + pad}
			if !found {
				minP, maxP, found = lo, hi, true
				continue
			}
			minP = geometry.Point{X: min(minP.X, lo.X), Y: min(minP.Y, lo.Y)}
			maxP = geometry.Point{X: max(maxP.X, hi.X), Y: max(maxP.Y, hi.Y)}
		}
	}
	if !found {
		return geometry.Rect{}, false
	}
	return geometry.RectFromPoints(minP, maxP), true
}

// ParseColor reads a CSS hex color ("#rgb" or "#rrggbb"). "transparent" and
// "none" give a fully transparent color; anything else unparsable yields
// fallback.
func ParseColor(s string, fallback color.Color) color.Color {
	switch s {
	case "":
		return fallback
	case "transparent", "none":
		return color.Transparent
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return fallback
	}
	return c
}
