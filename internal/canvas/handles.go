package canvas

import (
	"math"
	"strings"

	"canvasnotes/internal/domain"
	"canvasnotes/internal/geometry"
)

// Handle identifies a control on the selection box.
type Handle string

const (
	HandleNone        Handle = ""
	HandleTopLeft     Handle = "top-left"
	HandleTop         Handle = "top"
	HandleTopRight    Handle = "top-right"
	HandleRight       Handle = "right"
	HandleBottomRight Handle = "bottom-right"
	HandleBottom      Handle = "bottom"
	HandleBottomLeft  Handle = "bottom-left"
	HandleLeft        Handle = "left"
	HandleRotate      Handle = "rotate"
)

const (
	// HandleRadius is the hit tolerance around a handle, in screen pixels.
	HandleRadius = 6.0
	// RotateOffset is how far above the top edge the rotate handle sits.
	RotateOffset = 25.0
)

var resizeHandles = []Handle{
	HandleTopLeft, HandleTop, HandleTopRight, HandleRight,
	HandleBottomRight, HandleBottom, HandleBottomLeft, HandleLeft,
}

func (h Handle) left() bool { return strings.HasSuffix(string(h), "left") }
func (h Handle) right() bool { return strings.HasSuffix(string(h), "right") }
func (h Handle) top() bool { return strings.HasPrefix(string(h), "top") }
func (h Handle) bottom() bool { return strings.HasPrefix(string(h), "bottom") }

// horizontal reports whether the handle drives width.
func (h Handle) horizontal() bool { return h.left() || h.right() }

// HandlePoints returns the position of every handle for an unrotated
// screen-space selection box, in a fixed order with the rotate handle last.
func HandlePoints(box geometry.Rect) []HandlePoint {
	cx, cy := box.X+box.W/2, box.Y+box.H/2
	pos := map[Handle]geometry.Point{
		HandleTopLeft:     {X: box.X, Y: box.Y},
		HandleTop:         {X: cx, Y: box.Y},
		HandleTopRight:    {X: box.Right(), Y: box.Y},
		HandleRight:       {X: box.Right(), Y: cy},
		HandleBottomRight: {X: box.Right(), Y: box.Bottom()},
		HandleBottom:      {X: cx, Y: box.Bottom()},
		HandleBottomLeft:  {X: box.X, Y: box.Bottom()},
		HandleLeft:        {X: box.X, Y: cy},
	}
	out := make([]HandlePoint, 0, len(resizeHandles)+1)
	for _, h := range resizeHandles {
		out = append(out, HandlePoint{Handle: h, At: pos[h]})
	}
	out = append(out, HandlePoint{Handle: HandleRotate, At: geometry.Point{X: cx, Y: box.Y - RotateOffset}})
	return out
}

type HandlePoint struct {
	Handle Handle         `json:"handle"`
	At     geometry.Point `json:"at"`
}

// HandleAt returns the handle of e's selection box under the screen point p.
// The box follows the element's rotation.
func HandleAt(v geometry.Viewport, e domain.Element, p geometry.Point) Handle {
	box := v.RectToScreen(e.Bounds())
	local := geometry.Rotate(p, box.Center(), -e.Rotation)

	// Rotate handle wins over the top edge handle it sits above.
	pts := HandlePoints(box)
	for i := len(pts) - 1; i >= 0; i-- {
		if local.Dist(pts[i].At) <= HandleRadius {
			return pts[i].Handle
		}
	}
	return HandleNone
}

// HitTest returns the index of the topmost element containing the canvas
// point p, or -1.
func HitTest(elems []domain.Element, p geometry.Point) int {
	for i := len(elems) - 1; i >= 0; i-- {
		if elems[i].Contains(p) {
			return i
		}
	}
	return -1
}

// Resize computes the box produced by dragging handle h of origin to the
// canvas point p. The edge opposite h stays put. When keepAspect is set the
// box keeps the aspect ratio (width/height); the width drives the height for
// handles that touch a vertical edge. Both sides are floored at
// domain.MinElementSize.
func Resize(origin geometry.Rect, h Handle, p geometry.Point, aspect float64, keepAspect bool) geometry.Rect {
	w, ht := origin.W, origin.H
	if h.right() {
		w = p.X - origin.X
	}
	if h.left() {
		w = origin.Right() - p.X
	}
	if h.bottom() {
		ht = p.Y - origin.Y
	}
	if h.top() {
		ht = origin.Bottom() - p.Y
	}

	locked := keepAspect && aspect > 0 && !math.IsInf(aspect, 0)
	if locked {
		if h.horizontal() {
			ht = w / aspect
		} else {
			w = ht * aspect
		}
	}

	if w < domain.MinElementSize {
		w = domain.MinElementSize
		if locked {
			ht = w / aspect
		}
	}
	if ht < domain.MinElementSize {
		ht = domain.MinElementSize
		if locked {
			w = ht * aspect
		}
	}

	out := geometry.Rect{X: origin.X, Y: origin.Y, W: w, H: ht}
	if h.left() {
		out.X = origin.Right() - w
	}
	if h.top() {
		out.Y = origin.Bottom() - ht
	}
	return out
}

// ResizeRotated is Resize for an element turned by rotation degrees around
// its center. p is taken into the element's frame first, and the result is
// shifted so the anchor opposite h stays where it was on the canvas.
func ResizeRotated(origin geometry.Rect, h Handle, p geometry.Point, rotation, aspect float64, keepAspect bool) geometry.Rect {
	if rotation == 0 {
		return Resize(origin, h, p, aspect, keepAspect)
	}
	local := geometry.Rotate(p, origin.Center(), -rotation)
	out := Resize(origin, h, local, aspect, keepAspect)

	before := geometry.Rotate(h.anchor(origin), origin.Center(), rotation)
	after := geometry.Rotate(h.anchor(out), out.Center(), rotation)
	d := before.Sub(after)
	out.X += d.X
	out.Y += d.Y
	return out
}

// anchor is the point of r that dragging h leaves in place.
func (h Handle) anchor(r geometry.Rect) geometry.Point {
	c := r.Center()
	switch {
	case h.left():
		c.X = r.Right()
	case h.right():
		c.X = r.X
	}
	switch {
	case h.top():
		c.Y = r.Bottom()
	case h.bottom():
		c.Y = r.Y
	}
	return c
}

// RotationAt returns the element rotation for a rotate gesture that started
// at startAngle (radians around center) and is now at p.
func RotationAt(center, p geometry.Point, startAngle, startRotation float64) float64 {
	return startRotation + geometry.Degrees(geometry.Angle(center, p)-startAngle)
}
