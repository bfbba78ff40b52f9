package document_test

import (
	"errors"
	"testing"

	"canvasnotes/internal/canvas"
	"canvasnotes/internal/document"
	"canvasnotes/internal/domain"
	"canvasnotes/internal/geometry"
)

func newDoc(opts ...document.Option) *document.Document {
	return document.New(domain.NewNotebook(domain.DefaultNotebookName), opts...)
}

func identity() canvas.State {
	return canvas.NewState(geometry.Viewport{Scale: 1, ViewWidth: 800, ViewHeight: 600, CanvasWidth: 8000, CanvasHeight: 6000})
}

func TestNew_RepairsEmptyNotebook(t *testing.T) {
	d := document.New(domain.Notebook{Name: "broken"})
	nb := d.Notebook()
	if len(nb.Sections) != 1 || len(nb.Sections[0].Pages) != 1 {
		t.Fatalf("expected one section with one page, got %+v", nb)
	}
	if d.Selected() != -1 {
		t.Errorf("selected = %d, want -1", d.Selected())
	}
	if d.CanUndo() || d.CanRedo() {
		t.Error("fresh document should have nothing to undo or redo")
	}
}

func TestShapeScenario_UndoRedo(t *testing.T) {
	d := newDoc()
	s := canvas.SetShape(identity(), domain.ShapeRectangle)

	var err error
	for _, ev := range []canvas.Event{
		{Kind: canvas.PointerDown, X: 150, Y: 120},
		{Kind: canvas.PointerMove, X: 100, Y: 80},
		{Kind: canvas.PointerUp, X: 50, Y: 50},
	} {
		if s, _, err = d.Run(s, ev); err != nil {
			t.Fatal(err)
		}
	}

	elems := d.Elements()
	if len(elems) != 1 {
		t.Fatalf("expected 1 element, got %d", len(elems))
	}
	want := geometry.Rect{X: 50, Y: 50, W: 100, H: 70}
	if got := elems[0].Bounds(); got != want {
		t.Errorf("bounds = %+v, want %+v", got, want)
	}
	if elems[0].Kind() != domain.ElementShape {
		t.Errorf("kind = %q, want shape", elems[0].Kind())
	}

	if !d.Undo() {
		t.Fatal("undo should succeed")
	}
	if len(d.Elements()) != 0 {
		t.Fatalf("after undo expected empty page, got %d", len(d.Elements()))
	}
	if !d.Redo() {
		t.Fatal("redo should succeed")
	}
	if got := d.Elements()[0].Bounds(); got != want {
		t.Errorf("after redo bounds = %+v, want %+v", got, want)
	}
}

func TestRun_DragCommitsOneSnapshot(t *testing.T) {
	d := newDoc()
	d.AddElement(domain.NewShape(domain.ShapeRectangle, geometry.Rect{X: 10, Y: 10, W: 100, H: 100}))
	s := identity()

	for _, ev := range []canvas.Event{
		{Kind: canvas.PointerDown, X: 50, Y: 50},
		{Kind: canvas.PointerMove, X: 60, Y: 55},
		{Kind: canvas.PointerMove, X: 80, Y: 70},
		{Kind: canvas.PointerUp, X: 80, Y: 70},
	} {
		s, _, _ = d.Run(s, ev)
	}
	e, _ := d.Element(0)
	if e.X != 40 || e.Y != 30 {
		t.Errorf("moved to (%v,%v), want (40,30)", e.X, e.Y)
	}
	if d.Selected() != 0 {
		t.Errorf("selected = %d, want 0", d.Selected())
	}

	d.Undo()
	e, _ = d.Element(0)
	if e.X != 10 || e.Y != 10 {
		t.Errorf("undo should restore the pre-drag position, got (%v,%v)", e.X, e.Y)
	}
}

func TestRun_ReturnsHostEffects(t *testing.T) {
	d := newDoc()
	s := canvas.SetTool(identity(), canvas.ToolImage)
	_, rest, err := d.Run(s, canvas.Event{Kind: canvas.PointerDown, X: 5, Y: 6})
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 1 {
		t.Fatalf("expected the image request to be passed through, got %#v", rest)
	}
	if _, ok := rest[0].(canvas.RequestImage); !ok {
		t.Errorf("got %T, want RequestImage", rest[0])
	}
}

func TestRun_PenStrokeLandsOnInkLayer(t *testing.T) {
	d := newDoc()
	s := canvas.SetTool(identity(), canvas.ToolPen)
	s, _, _ = d.Run(s, canvas.Event{Kind: canvas.PointerDown, X: 0, Y: 0})
	s, _, _ = d.Run(s, canvas.Event{Kind: canvas.PointerMove, X: 10, Y: 10})
	_, _, _ = d.Run(s, canvas.Event{Kind: canvas.PointerUp, X: 10, Y: 10})

	ink := d.Page().Ink
	if len(ink) != 1 {
		t.Fatalf("expected 1 stroke, got %d", len(ink))
	}
	if ink[0].Mode != domain.StrokeDraw || len(ink[0].Points) < 2 {
		t.Errorf("unexpected stroke %+v", ink[0])
	}
	if len(d.Elements()) != 0 {
		t.Error("ink must not create elements")
	}
}

func TestUpdateElement(t *testing.T) {
	d := newDoc()
	d.AddElement(domain.NewText(0, 0))
	rev := d.Revision()

	if err := d.UpdateElement(0, domain.Patch{Content: domain.Ptr("hello")}); err != nil {
		t.Fatal(err)
	}
	e, _ := d.Element(0)
	if e.Payload.(domain.Text).Content != "hello" {
		t.Errorf("content = %q", e.Payload.(domain.Text).Content)
	}
	if d.Revision() == rev {
		t.Error("revision should advance")
	}

	// kind mismatch leaves the element untouched
	err := d.UpdateElement(0, domain.Patch{X: domain.Ptr(99.0), Latex: domain.Ptr("x")})
	if !errors.Is(err, domain.ErrPatchKind) {
		t.Fatalf("err = %v, want ErrPatchKind", err)
	}
	e, _ = d.Element(0)
	if e.X != 0 {
		t.Errorf("x = %v, failed patch must not apply partially", e.X)
	}

	// out of range is silently ignored by default
	if err := d.UpdateElement(5, domain.MovePatch(1, 1)); err != nil {
		t.Errorf("lenient mode returned %v", err)
	}
}

func TestStrictIndices(t *testing.T) {
	d := newDoc(document.WithStrictIndices(true))
	checks := map[string]error{
		"update":    d.UpdateElement(3, domain.MovePatch(1, 1)),
		"delete":    d.DeleteElement(0),
		"select":    d.Select(2),
		"front":     d.BringToFront(1),
		"addPage":   d.AddPage(4),
		"selectPg":  d.SelectPage(0, 7),
		"rename":    d.RenameItem(document.ItemSection, 9, "x"),
		"deleteSec": d.DeleteItem(document.ItemSection, -1),
	}
	for name, err := range checks {
		if !errors.Is(err, document.ErrIndexOutOfRange) {
			t.Errorf("%s: err = %v, want ErrIndexOutOfRange", name, err)
		}
	}
}

func TestDeleteElement_AdjustsSelection(t *testing.T) {
	d := newDoc()
	for i := 0; i < 3; i++ {
		d.AddElement(domain.NewText(float64(i), 0))
	}
	d.Select(2)
	d.DeleteElement(0)
	if d.Selected() != 1 {
		t.Errorf("selected = %d, want 1", d.Selected())
	}
	d.DeleteSelected()
	if d.Selected() != -1 || len(d.Elements()) != 1 {
		t.Errorf("selected = %d, elements = %d", d.Selected(), len(d.Elements()))
	}
}

func TestZOrderAndDuplicate(t *testing.T) {
	d := newDoc()
	a := d.AddElement(domain.NewText(0, 0))
	d.AddElement(domain.NewMath(0, 0, "x"))
	first, _ := d.Element(a)

	if err := d.BringToFront(a); err != nil {
		t.Fatal(err)
	}
	if top, _ := d.Element(1); top.ID != first.ID || d.Selected() != 1 {
		t.Errorf("bring to front: top = %s, selected = %d", top.ID, d.Selected())
	}
	if err := d.SendToBack(1); err != nil {
		t.Fatal(err)
	}
	if bottom, _ := d.Element(0); bottom.ID != first.ID || d.Selected() != 0 {
		t.Errorf("send to back: bottom = %s, selected = %d", bottom.ID, d.Selected())
	}

	i, err := d.Duplicate(0)
	if err != nil {
		t.Fatal(err)
	}
	dup, _ := d.Element(i)
	if dup.ID == first.ID {
		t.Error("duplicate must get a new id")
	}
	if dup.X != first.X+20 || dup.Y != first.Y+20 {
		t.Errorf("duplicate at (%v,%v)", dup.X, dup.Y)
	}
	if d.Selected() != i {
		t.Errorf("duplicate should be selected")
	}
}

func TestResetImage(t *testing.T) {
	d := newDoc()
	img := domain.NewImage(0, 0, 50, 50, "data:image/png;base64,")
	img.Rotation = 45
	d.AddElement(img)
	d.UpdateElement(0, domain.Patch{Opacity: domain.Ptr(0.3), BorderWidth: domain.Ptr(4.0)})

	if err := d.ResetImage(0, 1200, 600); err != nil {
		t.Fatal(err)
	}
	e, _ := d.Element(0)
	p := e.Payload.(domain.Image)
	if e.Width != 500 || e.Height != 500 || e.Rotation != 0 || p.Opacity != 1 || p.BorderWidth != 0 {
		t.Errorf("reset image = %+v / %+v", e, p)
	}

	d.AddElement(domain.NewText(0, 0))
	if err := d.ResetImage(1, 10, 10); !errors.Is(err, domain.ErrPatchKind) {
		t.Errorf("reset on text: err = %v", err)
	}
}
