// Package render rasterizes pages with fogleman/gg: whole-page PNG export
// and a screen view with the live interaction overlay.
package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/fogleman/gg"

	"canvasnotes/internal/canvas"
	"canvasnotes/internal/domain"
	"canvasnotes/internal/geometry"
	"canvasnotes/internal/ink"
)

var ErrEmptyPage = errors.New("nothing to export")

// MaxPixels bounds each side of an exported image.
const MaxPixels = 8192

var selectionColor = color.RGBA{R: 0x4a, G: 0x90, B: 0xe2, A: 0xff}

type Options struct {
	// Scale is output pixels per canvas unit.
	Scale float64
	// Padding is the canvas margin kept around the content. Zero means 20,
	// negative means none.
	Padding    float64
	Background color.Color
}

func (o Options) withDefaults() Options {
	if o.Scale <= 0 {
		o.Scale = 1
	}
	if o.Padding < 0 {
		o.Padding = 0
	} else if o.Padding == 0 {
		o.Padding = 20
	}
	if o.Background == nil {
		o.Background = color.White
	}
	return o
}

// ContentBounds is the canvas area covered by the page's elements and ink.
func ContentBounds(p domain.Page) (geometry.Rect, bool) {
	r, found := ink.Bounds(p.Ink)
	for _, e := range p.Elements {
		b := e.Bounds().RotatedBounds(e.Rotation)
		if !found {
			r, found = b, true
			continue
		}
		r = r.Union(b)
	}
	return r, found
}

// Page renders every element and the ink layer, cropped to the content.
func Page(p domain.Page, opts Options) (image.Image, error) {
	opts = opts.withDefaults()
	region, ok := ContentBounds(p)
	if !ok {
		return nil, ErrEmptyPage
	}
	region = region.Inset(opts.Padding)

	// keep the output within MaxPixels on both sides
	scale := opts.Scale
	if longest := max(region.W, region.H) * scale; longest > MaxPixels {
		scale *= MaxPixels / longest
	}

	w := int(math.Ceil(region.W * scale))
	h := int(math.Ceil(region.H * scale))
	dc := gg.NewContext(w, h)
	dc.SetColor(opts.Background)
	dc.Clear()

	dc.Scale(scale, scale)
	dc.Translate(-region.X, -region.Y)
	for _, e := range p.Elements {
		drawElement(dc, e)
	}

	overlayInk(dc, p.Ink, region, scale)
	return dc.Image(), nil
}

// overlayInk composites the ink strokes over dc, which covers region at scale.
func overlayInk(dc *gg.Context, strokes []domain.Stroke, region geometry.Rect, scale float64) {
	if len(strokes) == 0 {
		return
	}
	layer := ink.NewLayer(region, scale)
	layer.Replay(strokes)
	dc.Push()
	dc.Identity()
	dc.DrawImage(layer.Image(), 0, 0)
	dc.Pop()
}

// View renders what the user currently sees: the visible part of the page
// at the viewport's zoom, with the uncommitted gesture preview, the dashed
// ghost of a shape being drawn and the selection handles.
func View(p domain.Page, s canvas.State) image.Image {
	v := s.Viewport
	w := max(1, int(v.ViewWidth))
	h := max(1, int(v.ViewHeight))
	dc := gg.NewContext(w, h)
	dc.SetColor(color.White)
	dc.Clear()

	elems := p.Elements
	if pv, ok := s.Preview(); ok && pv.Index >= 0 && pv.Index < len(elems) {
		elems = append([]domain.Element(nil), elems...)
		elems[pv.Index] = previewed(elems[pv.Index], pv)
	}

	dc.Push()
	dc.Translate(v.TranslateX, v.TranslateY)
	dc.Scale(v.Scale, v.Scale)
	visible := v.VisibleBounds()
	for _, e := range elems {
		if e.Bounds().RotatedBounds(e.Rotation).Intersects(visible) {
			drawElement(dc, e)
		}
	}
	if g, ok := s.Ghost(); ok {
		drawGhost(dc, g.Form, g.Box, 1/v.Scale)
	}
	dc.Pop()

	overlayInk(dc, p.Ink, visible, v.Scale)

	if s.Selected >= 0 && s.Selected < len(elems) && !s.Busy() {
		drawSelection(dc, v, elems[s.Selected])
	}
	return dc.Image()
}

func previewed(e domain.Element, pv canvas.Preview) domain.Element {
	e.X, e.Y, e.Width, e.Height = pv.Box.X, pv.Box.Y, pv.Box.W, pv.Box.H
	e.Rotation = pv.Rotation
	return e
}

// drawSelection strokes the rotated selection box and its handles in screen
// space.
func drawSelection(dc *gg.Context, v geometry.Viewport, e domain.Element) {
	box := v.RectToScreen(e.Bounds())
	c := box.Center()

	dc.Push()
	defer dc.Pop()
	dc.RotateAbout(gg.Radians(e.Rotation), c.X, c.Y)
	dc.SetColor(selectionColor)
	dc.SetLineWidth(1)
	dc.DrawRectangle(box.X, box.Y, box.W, box.H)
	dc.Stroke()

	for _, hp := range canvas.HandlePoints(box) {
		if hp.Handle == canvas.HandleRotate {
			dc.DrawLine(c.X, box.Y, hp.At.X, hp.At.Y)
			dc.Stroke()
		}
		dc.DrawCircle(hp.At.X, hp.At.Y, canvas.HandleRadius-2)
		dc.SetColor(color.White)
		dc.FillPreserve()
		dc.SetColor(selectionColor)
		dc.Stroke()
	}
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// PNG renders the page and returns the encoded bytes.
func PNG(p domain.Page, opts Options) ([]byte, error) {
	img, err := Page(p, opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
