package geometry

import "math"

const (
	MinScale = 0.1
	MaxScale = 5.0

	zoomInFactor  = 1.1
	zoomOutFactor = 0.9

	// CanvasFactor is how many window-sizes the canvas spans on each axis.
	CanvasFactor = 10
)

// Point is a position in either screen or canvas space; the caller knows which.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Scale(f float64) Point { return Point{p.X * f, p.Y * f} }

// Dist returns the euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Mid returns the point halfway between p and q.
func (p Point) Mid(q Point) Point {
	return Point{(p.X + q.X) / 2, (p.Y + q.Y) / 2}
}

// Viewport maps between screen space (window pixels) and canvas space
// (page coordinates). Screen = canvas*Scale + Translate.
type Viewport struct {
	Scale      float64 `json:"scale"`
	TranslateX float64 `json:"translateX"`
	TranslateY float64 `json:"translateY"`

	// Canvas extents in canvas units and the visible window in screen pixels.
	CanvasWidth  float64 `json:"canvasWidth"`
	CanvasHeight float64 `json:"canvasHeight"`
	ViewWidth    float64 `json:"viewWidth"`
	ViewHeight   float64 `json:"viewHeight"`
}

// NewViewport returns a viewport for a window of the given size with the
// canvas sized CanvasFactor times the window and centered on screen.
func NewViewport(viewW, viewH float64) Viewport {
	v := Viewport{
		Scale:        1,
		CanvasWidth:  viewW * CanvasFactor,
		CanvasHeight: viewH * CanvasFactor,
		ViewWidth:    viewW,
		ViewHeight:   viewH,
	}
	v.TranslateX = -(v.CanvasWidth - viewW) / 2
	v.TranslateY = -(v.CanvasHeight - viewH) / 2
	return v
}

// Resize adapts the viewport to a new window size. Canvas extents follow
// the window, and the translation is re-clamped.
func (v Viewport) Resize(viewW, viewH float64) Viewport {
	v.ViewWidth = viewW
	v.ViewHeight = viewH
	v.CanvasWidth = viewW * CanvasFactor
	v.CanvasHeight = viewH * CanvasFactor
	return v.clamp()
}

// Translate returns the translation as a point.
func (v Viewport) Translate() Point {
	return Point{v.TranslateX, v.TranslateY}
}

// ScreenToCanvas maps a window position to page coordinates.
func (v Viewport) ScreenToCanvas(p Point) Point {
	return Point{
		X: (p.X - v.TranslateX) / v.Scale,
		Y: (p.Y - v.TranslateY) / v.Scale,
	}
}

// CanvasToScreen maps page coordinates to a window position.
func (v Viewport) CanvasToScreen(p Point) Point {
	return Point{
		X: p.X*v.Scale + v.TranslateX,
		Y: p.Y*v.Scale + v.TranslateY,
	}
}

// RectToScreen maps a canvas-space rectangle to screen space.
func (v Viewport) RectToScreen(r Rect) Rect {
	tl := v.CanvasToScreen(Point{r.X, r.Y})
	return Rect{X: tl.X, Y: tl.Y, W: r.W * v.Scale, H: r.H * v.Scale}
}

// ZoomAt steps the scale in (direction > 0) or out around the screen point p,
// keeping the canvas point under p fixed.
func (v Viewport) ZoomAt(p Point, direction int) Viewport {
	factor := zoomOutFactor
	if direction > 0 {
		factor = zoomInFactor
	}
	return v.ZoomTo(p, v.Scale*factor)
}

// ZoomTo sets an absolute scale (clamped) around the screen point p.
// The translation is not clamped to the canvas: zoom has no bounds check.
func (v Viewport) ZoomTo(p Point, scale float64) Viewport {
	next := ClampScale(scale)
	ratio := next / v.Scale
	v.TranslateX = p.X - (p.X-v.TranslateX)*ratio
	v.TranslateY = p.Y - (p.Y-v.TranslateY)*ratio
	v.Scale = next
	return v
}

// PanBy shifts the translation by a screen-space delta and bounds it so the
// window never leaves the canvas.
func (v Viewport) PanBy(delta Point) Viewport {
	v.TranslateX += delta.X
	v.TranslateY += delta.Y
	return v.clamp()
}

func (v Viewport) clamp() Viewport {
	v.TranslateX = clampRange(v.TranslateX, -(v.CanvasWidth - v.ViewWidth), 0)
	v.TranslateY = clampRange(v.TranslateY, -(v.CanvasHeight - v.ViewHeight), 0)
	return v
}

// VisibleBounds returns the canvas-space rectangle currently on screen.
func (v Viewport) VisibleBounds() Rect {
	tl := v.ScreenToCanvas(Point{})
	return Rect{X: tl.X, Y: tl.Y, W: v.ViewWidth / v.Scale, H: v.ViewHeight / v.Scale}
}

// ClampScale bounds s to [MinScale, MaxScale].
func ClampScale(s float64) float64 {
	return clampRange(s, MinScale, MaxScale)
}

func clampRange(x, lo, hi float64) float64 {
	if lo > hi {
		return hi
	}
	return math.Max(lo, math.Min(hi, x))
}
