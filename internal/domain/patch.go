package domain

import (
	"errors"
	"fmt"
)

// ErrPatchKind is returned when a patch sets fields that do not exist on the
// element's kind.
var ErrPatchKind = errors.New("patch does not match element kind")

// Patch is a partial update of an element. Nil fields are left alone.
// Kind-specific fields may only be set on elements of that kind.
type Patch struct {
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	Width    *float64 `json:"width,omitempty"`
	Height   *float64 `json:"height,omitempty"`
	Rotation *float64 `json:"rotation,omitempty"`

	// text
	Content    *string `json:"content,omitempty"`
	FontFamily *string `json:"fontFamily,omitempty"`
	FontSize   *string `json:"fontSize,omitempty"`
	Color      *string `json:"color,omitempty"`

	// image
	Src         *string  `json:"src,omitempty"`
	Opacity     *float64 `json:"opacity,omitempty"`
	BorderWidth *float64 `json:"borderWidth,omitempty"`
	BorderColor *string  `json:"borderColor,omitempty"`

	// shape
	Form        *ShapeKind `json:"shape,omitempty"`
	FillColor   *string    `json:"fillColor,omitempty"`
	StrokeColor *string    `json:"strokeColor,omitempty"`
	StrokeWidth *float64   `json:"strokeWidth,omitempty"`

	// math
	Latex *string `json:"latex,omitempty"`
	HTML  *string `json:"html,omitempty"`
}

// Ptr returns a pointer to v, for building patches inline.
func Ptr[T any](v T) *T { return &v }

// MovePatch sets the position only.
func MovePatch(x, y float64) Patch {
	return Patch{X: &x, Y: &y}
}

// BoxPatch sets position and size.
func BoxPatch(x, y, w, h float64) Patch {
	return Patch{X: &x, Y: &y, Width: &w, Height: &h}
}

// RotatePatch sets the rotation only.
func RotatePatch(deg float64) Patch {
	return Patch{Rotation: &deg}
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p == Patch{}
}

func (p Patch) touchesText() bool {
	return p.Content != nil || p.FontFamily != nil || p.FontSize != nil || p.Color != nil
}

func (p Patch) touchesImage() bool {
	return p.Src != nil || p.Opacity != nil || p.BorderWidth != nil || p.BorderColor != nil
}

func (p Patch) touchesShape() bool {
	return p.Form != nil || p.FillColor != nil || p.StrokeColor != nil || p.StrokeWidth != nil
}

func (p Patch) touchesMath() bool {
	return p.Latex != nil || p.HTML != nil
}

// Apply returns e with the patch merged in. On error e is returned unchanged.
func (p Patch) Apply(e Element) (Element, error) {
	kind := e.Kind()
	if (p.touchesText() && kind != ElementText) ||
		(p.touchesImage() && kind != ElementImage) ||
		(p.touchesShape() && kind != ElementShape) ||
		(p.touchesMath() && kind != ElementMath) {
		return e, fmt.Errorf("%w: %s", ErrPatchKind, kind)
	}
	if p.Form != nil && !p.Form.Valid() {
		return e, fmt.Errorf("%w: unknown shape %q", ErrPatchKind, *p.Form)
	}

	out := e
	setF(&out.X, p.X)
	setF(&out.Y, p.Y)
	setF(&out.Width, p.Width)
	setF(&out.Height, p.Height)
	setF(&out.Rotation, p.Rotation)

	switch pl := out.Payload.(type) {
	case Text:
		setS(&pl.Content, p.Content)
		setS(&pl.FontFamily, p.FontFamily)
		setS(&pl.FontSize, p.FontSize)
		setS(&pl.Color, p.Color)
		out.Payload = pl
	case Image:
		setS(&pl.Src, p.Src)
		setF(&pl.Opacity, p.Opacity)
		setF(&pl.BorderWidth, p.BorderWidth)
		setS(&pl.BorderColor, p.BorderColor)
		out.Payload = pl
	case Shape:
		if p.Form != nil {
			pl.Form = *p.Form
		}
		setS(&pl.FillColor, p.FillColor)
		setS(&pl.StrokeColor, p.StrokeColor)
		setF(&pl.StrokeWidth, p.StrokeWidth)
		out.Payload = pl
	case Math:
		setS(&pl.Latex, p.Latex)
		setS(&pl.HTML, p.HTML)
		out.Payload = pl
	}
	return out, nil
}

func setF(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setS(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
