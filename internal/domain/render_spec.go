package domain

import "fmt"

// RenderSpec is everything a surface needs to draw one element: its box
// plus the visual attributes of its kind, already flattened.
type RenderSpec struct {
	Index    int         `json:"index"`
	ID       string      `json:"id"`
	Kind     ElementKind `json:"kind"`
	X        float64     `json:"x"`
	Y        float64     `json:"y"`
	Width    float64     `json:"width"`
	Height   float64     `json:"height"`
	Rotation float64     `json:"rotation"`

	Font        string    `json:"font,omitempty"`   // CSS shorthand, e.g. "16px Arial"
	Color       string    `json:"color,omitempty"`  // text color
	Markup      string    `json:"markup,omitempty"` // text HTML or typeset math
	Source      string    `json:"source,omitempty"` // image src or latex
	Form        ShapeKind `json:"form,omitempty"`
	Fill        string    `json:"fill,omitempty"`
	Stroke      string    `json:"stroke,omitempty"`
	StrokeWidth float64   `json:"strokeWidth,omitempty"`
	Opacity     float64   `json:"opacity"`
}

// Describe builds the render description of e.
func Describe(e Element) RenderSpec {
	spec := RenderSpec{
		ID:       e.ID,
		Kind:     e.Kind(),
		X:        e.X,
		Y:        e.Y,
		Width:    e.Width,
		Height:   e.Height,
		Rotation: e.Rotation,
		Opacity:  1,
	}
	switch p := e.Payload.(type) {
	case Text:
		spec.Font = fmt.Sprintf("%s %s", p.FontSize, p.FontFamily)
		spec.Color = p.Color
		spec.Markup = p.Content
	case Image:
		spec.Source = p.Src
		spec.Opacity = p.Opacity
		spec.Stroke = p.BorderColor
		spec.StrokeWidth = p.BorderWidth
	case Shape:
		spec.Form = p.Form
		spec.Fill = p.FillColor
		spec.Stroke = p.StrokeColor
		spec.StrokeWidth = p.StrokeWidth
	case Math:
		spec.Source = p.Latex
		spec.Markup = p.HTML
	}
	return spec
}

// DescribePage returns render descriptions for elems in z-order, with each
// spec's Index set to its position.
func DescribePage(elems []Element) []RenderSpec {
	out := make([]RenderSpec, len(elems))
	for i, e := range elems {
		out[i] = Describe(e)
		out[i].Index = i
	}
	return out
}
