package render_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"canvasnotes/internal/canvas"
	"canvasnotes/internal/domain"
	"canvasnotes/internal/geometry"
	"canvasnotes/internal/render"
)

func redSquare(x, y, size float64) domain.Element {
	e := domain.NewShape(domain.ShapeRectangle, geometry.Rect{X: x, Y: y, W: size, H: size})
	s := e.Payload.(domain.Shape)
	s.FillColor = "#ff0000"
	s.StrokeWidth = 0
	e.Payload = s
	return e
}

func rgb(img image.Image, x, y int) (uint32, uint32, uint32) {
	r, g, b, _ := img.At(x, y).RGBA()
	return r >> 8, g >> 8, b >> 8
}

func pngURI(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return render.DataURI("image/png", buf.Bytes())
}

func TestPage_Empty(t *testing.T) {
	if _, err := render.Page(domain.NewPage("p"), render.Options{}); !errors.Is(err, render.ErrEmptyPage) {
		t.Fatalf("err = %v, want ErrEmptyPage", err)
	}
}

func TestPage_CropsToContent(t *testing.T) {
	p := domain.NewPage("p")
	p.Elements = []domain.Element{redSquare(100, 100, 50), redSquare(300, 200, 50)}

	img, err := render.Page(p, render.Options{Padding: 10})
	if err != nil {
		t.Fatal(err)
	}
	b := img.Bounds()
	if b.Dx() != 270 || b.Dy() != 170 {
		t.Fatalf("size = %dx%d, want 270x170", b.Dx(), b.Dy())
	}
	if r, g, _ := rgb(img, 35, 35); r != 0xff || g != 0 {
		t.Errorf("first square not painted at (35,35): %d,%d", r, g)
	}
	if r, g, bl := rgb(img, 5, 5); r != 0xff || g != 0xff || bl != 0xff {
		t.Errorf("padding should be background")
	}
}

func TestPage_ScaleAndInk(t *testing.T) {
	p := domain.NewPage("p")
	p.Ink = []domain.Stroke{{
		Mode: domain.StrokeDraw, Color: "#0000ff", Width: 4,
		Points: []geometry.Point{{X: 0, Y: 0}, {X: 100, Y: 0}},
	}}
	img, err := render.Page(p, render.Options{Scale: 2, Padding: -1})
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 208 || b.Dy() != 8 {
		t.Fatalf("size = %v, want 208x8", b)
	}
	if _, _, bl := rgb(img, 100, 4); bl != 0xff {
		t.Error("ink stroke missing")
	}
}

func TestPage_ImageElement(t *testing.T) {
	p := domain.NewPage("p")
	p.Elements = []domain.Element{domain.NewImage(0, 0, 40, 20, pngURI(t, 4, 2))}
	if _, err := render.Page(p, render.Options{}); err != nil {
		t.Fatal(err)
	}

	p.Elements = []domain.Element{domain.NewImage(0, 0, 40, 20, "data:image/png;base64,!!!")}
	if _, err := render.Page(p, render.Options{}); err != nil {
		t.Fatal("undecodable image should render a placeholder, not fail")
	}
}

func TestImageSize(t *testing.T) {
	w, h, err := render.ImageSize(pngURI(t, 640, 480))
	if err != nil {
		t.Fatal(err)
	}
	if w != 640 || h != 480 {
		t.Errorf("size = %dx%d", w, h)
	}
	if _, _, err := render.ImageSize("https://example.com/a.png"); !errors.Is(err, render.ErrUnsupportedSource) {
		t.Errorf("remote src: err = %v", err)
	}
}

func TestView_ShowsGhostAndPreview(t *testing.T) {
	v := geometry.Viewport{Scale: 1, ViewWidth: 200, ViewHeight: 200, CanvasWidth: 2000, CanvasHeight: 2000}
	p := domain.NewPage("p")
	p.Elements = []domain.Element{redSquare(10, 10, 20)}

	s := canvas.NewState(v)
	s, _ = canvas.Update(s, p.Elements, canvas.Event{Kind: canvas.PointerDown, X: 20, Y: 20})
	s, _ = canvas.Update(s, p.Elements, canvas.Event{Kind: canvas.PointerMove, X: 120, Y: 120})

	img := render.View(p, s)
	if r, g, _ := rgb(img, 120, 120); r != 0xff || g != 0 {
		t.Error("dragged element should be drawn at its preview position")
	}
	if _, g, _ := rgb(img, 20, 20); g != 0xff {
		t.Error("original position should be empty during the drag")
	}

	s = canvas.SetShape(canvas.Cancel(s), domain.ShapeRectangle)
	s, _ = canvas.Update(s, p.Elements, canvas.Event{Kind: canvas.PointerDown, X: 50, Y: 50})
	s, _ = canvas.Update(s, p.Elements, canvas.Event{Kind: canvas.PointerMove, X: 150, Y: 150})
	img = render.View(p, s)
	found := false
	for x := 50; x <= 150; x++ {
		if c := color.GrayModel.Convert(img.At(x, 50)).(color.Gray); c.Y < 0xf0 {
			found = true
			break
		}
	}
	if !found {
		t.Error("ghost outline not drawn along the top edge")
	}
}
