package domain

import (
	"github.com/google/uuid"

	"canvasnotes/internal/geometry"
)

type ElementKind string

const (
	ElementText  ElementKind = "text"
	ElementImage ElementKind = "image"
	ElementShape ElementKind = "shape"
	ElementMath  ElementKind = "math"
)

type ShapeKind string

const (
	ShapeRectangle ShapeKind = "rectangle"
	ShapeCircle    ShapeKind = "circle"
	ShapeLine      ShapeKind = "line"
	ShapeTriangle  ShapeKind = "triangle"
)

// Valid reports whether s is one of the known shape kinds.
func (s ShapeKind) Valid() bool {
	switch s {
	case ShapeRectangle, ShapeCircle, ShapeLine, ShapeTriangle:
		return true
	}
	return false
}

// Element is a positioned item on a page. Position and size are in canvas
// units, Rotation in degrees. The visual part lives in Payload, which is
// always one of Text, Image, Shape or Math.
type Element struct {
	ID       string
	X        float64
	Y        float64
	Width    float64
	Height   float64
	Rotation float64
	Payload  Payload
}

// Payload is the closed set of element kinds.
type Payload interface {
	Kind() ElementKind
	isPayload()
}

type Text struct {
	Content    string `json:"content"` // rich-text HTML, opaque to the canvas
	FontFamily string `json:"fontFamily"`
	FontSize   string `json:"fontSize"`
	Color      string `json:"color"`
}

type Image struct {
	Src         string  `json:"src"`
	Opacity     float64 `json:"opacity"`
	BorderWidth float64 `json:"borderWidth"`
	BorderColor string  `json:"borderColor"`
}

type Shape struct {
	Form        ShapeKind `json:"shape"`
	FillColor   string    `json:"fillColor"`
	StrokeColor string    `json:"strokeColor"`
	StrokeWidth float64   `json:"strokeWidth"`
}

type Math struct {
	Latex string `json:"latex"`
	HTML  string `json:"html"` // cached typeset markup
}

func (Text) Kind() ElementKind { return ElementText }
func (Image) Kind() ElementKind { return ElementImage }
func (Shape) Kind() ElementKind { return ElementShape }
func (Math) Kind() ElementKind { return ElementMath }

func (Text) isPayload() {}
func (Image) isPayload() {}
func (Shape) isPayload() {}
func (Math) isPayload() {}

const (
	DefaultX = 100.0
	DefaultY = 100.0

	DefaultTextContent = "<p>Type here...</p>"
	DefaultFontFamily  = "Arial"
	DefaultFontSize    = "16px"
	DefaultColor       = "#000000"
	DefaultFillColor   = "#ffffff"
	DefaultStrokeWidth = 2.0

	// DefaultMathLatex is what the math tool inserts.
	DefaultMathLatex = `x = \frac{-b \pm \sqrt{b^2-4ac}}{2a}`

	// MinElementSize is the smallest width or height a resize can produce.
	MinElementSize = 20.0
)

// Kind returns the payload kind.
func (e Element) Kind() ElementKind {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.Kind()
}

// Bounds returns the unrotated box in canvas space.
func (e Element) Bounds() geometry.Rect {
	return geometry.Rect{X: e.X, Y: e.Y, W: e.Width, H: e.Height}
}

// Contains reports whether the canvas point p hits e, honoring rotation.
func (e Element) Contains(p geometry.Point) bool {
	return e.Bounds().ContainsRotated(p, e.Rotation)
}

// Clone returns an independent copy of e. Payloads hold only values, so a
// struct copy shares nothing with the original.
func (e Element) Clone() Element {
	return e
}

// CloneElements returns a copy of elems backed by a fresh array.
func CloneElements(elems []Element) []Element {
	out := make([]Element, len(elems))
	for i, e := range elems {
		out[i] = e.Clone()
	}
	return out
}

// DefaultElement returns an element of kind k at the default position with
// its kind's default size and payload. The second result is false when k is
// unknown.
func DefaultElement(k ElementKind) (Element, bool) {
	e := Element{ID: NewID(), X: DefaultX, Y: DefaultY}
	switch k {
	case ElementText:
		e.Width, e.Height = 100, 100
		e.Payload = Text{
			Content:    DefaultTextContent,
			FontFamily: DefaultFontFamily,
			FontSize:   DefaultFontSize,
			Color:      DefaultColor,
		}
	case ElementImage:
		e.Width, e.Height = 300, 200
		e.Payload = Image{Opacity: 1, BorderColor: DefaultColor}
	case ElementShape:
		e.Width, e.Height = 200, 150
		e.Payload = Shape{
			Form:        ShapeRectangle,
			FillColor:   DefaultFillColor,
			StrokeColor: DefaultColor,
			StrokeWidth: DefaultStrokeWidth,
		}
	case ElementMath:
		e.Width, e.Height = 200, 100
		e.Payload = Math{}
	default:
		return Element{}, false
	}
	return e, true
}

// NewText returns the element the text tool inserts at (x, y).
func NewText(x, y float64) Element {
	e, _ := DefaultElement(ElementText)
	e.X, e.Y = x, y
	e.Width, e.Height = 300, 150
	return e
}

// NewImage returns an image element at (x, y) with the given source and size.
func NewImage(x, y, w, h float64, src string) Element {
	e, _ := DefaultElement(ElementImage)
	e.X, e.Y, e.Width, e.Height = x, y, w, h
	img := e.Payload.(Image)
	img.Src = src
	e.Payload = img
	return e
}

// NewShape returns a shape of the given form covering r.
func NewShape(form ShapeKind, r geometry.Rect) Element {
	e, _ := DefaultElement(ElementShape)
	e.X, e.Y, e.Width, e.Height = r.X, r.Y, r.W, r.H
	s := e.Payload.(Shape)
	s.Form = form
	e.Payload = s
	return e
}

// NewMath returns the element the math tool inserts at (x, y).
func NewMath(x, y float64, latex string) Element {
	e, _ := DefaultElement(ElementMath)
	e.X, e.Y = x, y
	e.Payload = Math{Latex: latex}
	return e
}

// ImageInsertSize fits natural image dimensions into the 500x500 box the
// image tool uses, keeping each side at most its natural size.
func ImageInsertSize(naturalW, naturalH float64) (float64, float64) {
	return min(500, naturalW), min(500, naturalH)
}

// NewID returns a fresh element/notebook identifier.
func NewID() string {
	return uuid.New().String()
}
