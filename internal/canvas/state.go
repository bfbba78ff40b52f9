package canvas

import (
	"canvasnotes/internal/domain"
	"canvasnotes/internal/geometry"
)

type Tool string

const (
	ToolSelect Tool = "select"
	ToolPan    Tool = "pan"
	ToolPen    Tool = "pen"
	ToolEraser Tool = "eraser"
	ToolShape  Tool = "shape"
	ToolText   Tool = "text"
	ToolImage  Tool = "image"
	ToolMath   Tool = "math"
)

func (t Tool) Valid() bool {
	switch t {
	case ToolSelect, ToolPan, ToolPen, ToolEraser, ToolShape, ToolText, ToolImage, ToolMath:
		return true
	}
	return false
}

// Mode is the gesture in progress. Only one is active between a
// pointer-down and the matching pointer-up.
type Mode int

const (
	ModeIdle Mode = iota
	ModePanning
	ModeDragging
	ModeResizing
	ModeRotating
	ModeDrawing
)

func (m Mode) String() string {
	switch m {
	case ModePanning:
		return "panning"
	case ModeDragging:
		return "dragging"
	case ModeResizing:
		return "resizing"
	case ModeRotating:
		return "rotating"
	case ModeDrawing:
		return "drawing"
	default:
		return "idle"
	}
}

// Gesture carries everything an active gesture needs between events.
// Positions named Start/Current are canvas space, Last is screen space.
type Gesture struct {
	Mode   Mode
	Tool   Tool   // pen, eraser or shape while drawing
	Handle Handle // resizing/rotating
	Index  int    // element being manipulated

	Last    geometry.Point
	Start   geometry.Point
	Current geometry.Point

	Origin        geometry.Rect
	Box           geometry.Rect
	StartRotation float64
	Rotation      float64
	StartAngle    float64
	Aspect        float64
	KeepAspect    bool // images: width/height ratio is locked unless shift is held

	Points []geometry.Point
}

// Pinch tracks an active two-finger zoom.
type Pinch struct {
	StartDist  float64
	StartScale float64
}

// State is the complete interaction state. It is a value: Update returns a
// new one and never mutates its input.
type State struct {
	Tool        Tool
	Shape       domain.ShapeKind
	Viewport    geometry.Viewport
	Selected    int // -1 when nothing is selected
	SpaceHeld   bool
	StrokeColor string
	StrokeWidth float64
	Gesture     Gesture
	Pinch       *Pinch
	LastPointer geometry.Point
}

// NewState returns an idle select-tool state over v.
func NewState(v geometry.Viewport) State {
	return State{
		Tool:        ToolSelect,
		Shape:       domain.ShapeRectangle,
		Viewport:    v,
		Selected:    -1,
		StrokeColor: domain.DefaultColor,
		StrokeWidth: 3,
	}
}

// Busy reports whether a gesture is in progress.
func (s State) Busy() bool {
	return s.Gesture.Mode != ModeIdle
}

// Ghost is the dashed preview shown while a shape is being drawn.
type Ghost struct {
	Form  domain.ShapeKind `json:"form"`
	Start geometry.Point   `json:"start"`
	End   geometry.Point   `json:"end"`
	Box   geometry.Rect    `json:"box"`
}

// Ghost returns the shape preview while drawing a shape.
func (s State) Ghost() (Ghost, bool) {
	g := s.Gesture
	if g.Mode != ModeDrawing || g.Tool != ToolShape {
		return Ghost{}, false
	}
	return Ghost{
		Form:  s.Shape,
		Start: g.Start,
		End:   g.Current,
		Box:   geometry.RectFromPoints(g.Start, g.Current),
	}, true
}

// Preview is the live box of an element being dragged, resized or rotated.
type Preview struct {
	Index    int           `json:"index"`
	Box      geometry.Rect `json:"box"`
	Rotation float64       `json:"rotation"`
}

// Preview returns the uncommitted transform of the manipulated element.
func (s State) Preview() (Preview, bool) {
	g := s.Gesture
	switch g.Mode {
	case ModeDragging, ModeResizing, ModeRotating:
		return Preview{Index: g.Index, Box: g.Box, Rotation: g.Rotation}, true
	}
	return Preview{}, false
}
