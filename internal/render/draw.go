package render

import (
	"html"
	"image/color"
	"regexp"
	"strings"

	"github.com/fogleman/gg"

	"canvasnotes/internal/domain"
	"canvasnotes/internal/geometry"
	"canvasnotes/internal/ink"
	"canvasnotes/internal/mathrender"
)

const textPadding = 4.0

var (
	placeholderFill = color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
	placeholderLine = color.RGBA{R: 0xaa, G: 0xaa, B: 0xaa, A: 0xff}

	breakTags = regexp.MustCompile(`(?i)<br\s*/?>|</div>|</p>`)
	anyTag    = regexp.MustCompile(`<[^>]*>`)
)

// drawElement paints e in canvas coordinates on dc.
func drawElement(dc *gg.Context, e domain.Element) {
	box := e.Bounds()
	c := box.Center()

	dc.Push()
	defer dc.Pop()
	if e.Rotation != 0 {
		dc.RotateAbout(gg.Radians(e.Rotation), c.X, c.Y)
	}
	dc.Translate(box.X, box.Y)

	switch p := e.Payload.(type) {
	case domain.Text:
		drawText(dc, p, box.W, box.H)
	case domain.Image:
		drawImage(dc, p, box.W, box.H)
	case domain.Shape:
		drawShape(dc, p, box.W, box.H)
	case domain.Math:
		drawMath(dc, p, box.W, box.H)
	}
}

// PlainText turns the editor's rich text back into lines.
func PlainText(content string) string {
	s := breakTags.ReplaceAllString(content, "\n")
	s = anyTag.ReplaceAllString(s, "")
	return strings.TrimRight(html.UnescapeString(s), "\n")
}

func drawText(dc *gg.Context, t domain.Text, w, h float64) {
	f, err := face(t.FontFamily, fontSize(t.FontSize))
	if err != nil {
		return
	}
	dc.SetFontFace(f)
	dc.SetColor(ink.ParseColor(t.Color, color.Black))
	dc.DrawStringWrapped(PlainText(t.Content), textPadding, textPadding, 0, 0, w-2*textPadding, 1.3, gg.AlignLeft)
}

func drawImage(dc *gg.Context, p domain.Image, w, h float64) {
	img, err := DecodeSource(p.Src)
	if err != nil {
		dc.SetColor(placeholderFill)
		dc.DrawRectangle(0, 0, w, h)
		dc.Fill()
		dc.SetColor(placeholderLine)
		dc.SetLineWidth(1)
		dc.DrawLine(0, 0, w, h)
		dc.DrawLine(w, 0, 0, h)
		dc.Stroke()
	} else {
		b := img.Bounds()
		dc.Push()
		dc.Scale(w/float64(b.Dx()), h/float64(b.Dy()))
		dc.DrawImage(fade(img, p.Opacity), -b.Min.X, -b.Min.Y)
		dc.Pop()
	}
	if p.BorderWidth > 0 {
		bw := p.BorderWidth
		dc.SetColor(ink.ParseColor(p.BorderColor, color.Black))
		dc.SetLineWidth(bw)
		dc.DrawRectangle(bw/2, bw/2, w-bw, h-bw)
		dc.Stroke()
	}
}

// shapePath traces form inside a w x h box at the origin.
func shapePath(dc *gg.Context, form domain.ShapeKind, w, h float64) {
	switch form {
	case domain.ShapeCircle:
		dc.DrawEllipse(w/2, h/2, w/2, h/2)
	case domain.ShapeLine:
		dc.MoveTo(0, 0)
		dc.LineTo(w, h)
	case domain.ShapeTriangle:
		dc.MoveTo(w/2, 0)
		dc.LineTo(w, h)
		dc.LineTo(0, h)
		dc.ClosePath()
	default:
		dc.DrawRectangle(0, 0, w, h)
	}
}

func drawShape(dc *gg.Context, s domain.Shape, w, h float64) {
	shapePath(dc, s.Form, w, h)
	if s.Form != domain.ShapeLine {
		dc.SetColor(ink.ParseColor(s.FillColor, color.White))
		dc.FillPreserve()
	}
	if s.StrokeWidth > 0 {
		dc.SetColor(ink.ParseColor(s.StrokeColor, color.Black))
		dc.SetLineWidth(s.StrokeWidth)
		dc.Stroke()
	}
	dc.ClearPath()
}

func drawMath(dc *gg.Context, m domain.Math, w, h float64) {
	text := mathrender.Plain(m.Latex)
	size := mathFontSize
	f, err := face("", size)
	if err != nil {
		return
	}
	dc.SetFontFace(f)
	if tw, _ := dc.MeasureString(text); tw > w-2*textPadding && tw > 0 {
		size = max(8, size*(w-2*textPadding)/tw)
		if f, err = face("", size); err != nil {
			return
		}
		dc.SetFontFace(f)
	}
	dc.SetColor(color.Black)
	dc.DrawStringAnchored(text, w/2, h/2, 0.5, 0.35)
}

// drawGhost outlines the shape being drawn with a dashed stroke of lineWidth
// canvas units.
func drawGhost(dc *gg.Context, form domain.ShapeKind, box geometry.Rect, lineWidth float64) {
	dc.Push()
	defer dc.Pop()
	dc.Translate(box.X, box.Y)
	shapePath(dc, form, box.W, box.H)
	dc.SetRGBA(0, 0, 0, 0.5)
	dc.SetLineWidth(lineWidth)
	dc.SetDash(5*lineWidth, 5*lineWidth)
	dc.Stroke()
	dc.SetDash()
}
