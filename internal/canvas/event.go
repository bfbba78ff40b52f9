package canvas

import (
	"canvasnotes/internal/domain"
	"canvasnotes/internal/geometry"
)

type EventKind string

const (
	PointerDown  EventKind = "pointerdown"
	PointerMove  EventKind = "pointermove"
	PointerUp    EventKind = "pointerup"
	PointerLeave EventKind = "pointerleave"
	Wheel        EventKind = "wheel"
	KeyDown      EventKind = "keydown"
	KeyUp        EventKind = "keyup"
	TouchStart   EventKind = "touchstart"
	TouchMove    EventKind = "touchmove"
	TouchEnd     EventKind = "touchend"
)

// Event is one input event in screen coordinates relative to the canvas
// container. Ctrl is set for either Control or Meta.
type Event struct {
	Kind    EventKind        `json:"kind"`
	X       float64          `json:"x"`
	Y       float64          `json:"y"`
	DeltaY  float64          `json:"deltaY,omitempty"`
	Key     string           `json:"key,omitempty"`
	Shift   bool             `json:"shift,omitempty"`
	Ctrl    bool             `json:"ctrl,omitempty"`
	Repeat  bool             `json:"repeat,omitempty"`
	Touches []geometry.Point `json:"touches,omitempty"`
}

func (e Event) Point() geometry.Point {
	return geometry.Point{X: e.X, Y: e.Y}
}

// Effect is a mutation the controller wants applied. The controller never
// touches the document itself.
type Effect interface {
	isEffect()
}

// AddElement inserts a new element on top of the page.
type AddElement struct{ Element domain.Element }

// UpdateElement commits a finished drag, resize or rotation.
type UpdateElement struct {
	Index int
	Patch domain.Patch
}

// DeleteElement removes an element.
type DeleteElement struct{ Index int }

// Select changes the selection; Index -1 clears it.
type Select struct{ Index int }

// PaintInk is one live pen or eraser segment for the raster layer.
type PaintInk struct {
	Mode  domain.StrokeMode
	Color string
	Width float64
	From  geometry.Point
	To    geometry.Point
}

// CommitStroke hands a finished pen or eraser stroke to the page.
type CommitStroke struct{ Stroke domain.Stroke }

// RequestImage asks the host to pick an image and insert it at At.
type RequestImage struct{ At geometry.Point }

// Command is a keyboard shortcut the host carries out.
type Command string

const (
	CommandUndo      Command = "undo"
	CommandRedo      Command = "redo"
	CommandSave      Command = "save"
	CommandCopy      Command = "copy"
	CommandCut       Command = "cut"
	CommandPaste     Command = "paste"
	CommandDuplicate Command = "duplicate"
)

// Invalidate asks for a redraw without any document change (viewport,
// previews, ghost shapes).
type Invalidate struct{}

func (AddElement) isEffect() {}
func (UpdateElement) isEffect() {}
func (DeleteElement) isEffect() {}
func (Select) isEffect() {}
func (PaintInk) isEffect() {}
func (CommitStroke) isEffect() {}
func (RequestImage) isEffect() {}
func (Command) isEffect() {}
func (Invalidate) isEffect() {}
