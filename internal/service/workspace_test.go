package service_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"canvasnotes/internal/canvas"
	"canvasnotes/internal/document"
	"canvasnotes/internal/domain"
	"canvasnotes/internal/geometry"
	"canvasnotes/internal/mathrender"
	"canvasnotes/internal/notebookfile"
	"canvasnotes/internal/render"
	"canvasnotes/internal/service"
	"canvasnotes/internal/storage"
)

type fixture struct {
	svc     *service.WorkspaceService
	store   *storage.SQLStore
	emitter *service.MockEmitter
	clip    *service.MemoryClipboard
}

func openStore(t *testing.T) *storage.SQLStore {
	t.Helper()
	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "notes.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newWorkspace(t *testing.T, store *storage.SQLStore) fixture {
	t.Helper()
	f := fixture{store: store, emitter: &service.MockEmitter{}, clip: &service.MemoryClipboard{}}
	opts := service.WorkspaceOptions{
		Emitter:    f.emitter,
		Clipboard:  f.clip,
		ViewWidth:  800,
		ViewHeight: 600,
	}
	if store != nil {
		opts.Store = store
	}
	f.svc = service.NewWorkspaceService(opts)
	if err := f.svc.Open(context.Background()); err != nil {
		t.Fatal(err)
	}
	return f
}

// screen converts a canvas point to the screen point that hits it.
func screen(svc *service.WorkspaceService, x, y float64) (float64, float64) {
	p := svc.State().Viewport.CanvasToScreen(geometry.Point{X: x, Y: y})
	return p.X, p.Y
}

func pointer(t *testing.T, svc *service.WorkspaceService, kind canvas.EventKind, x, y float64) {
	t.Helper()
	sx, sy := screen(svc, x, y)
	if err := svc.HandleEvent(canvas.Event{Kind: kind, X: sx, Y: sy}); err != nil {
		t.Fatalf("%s: %v", kind, err)
	}
}

func key(t *testing.T, svc *service.WorkspaceService, k string) {
	t.Helper()
	if err := svc.HandleEvent(canvas.Event{Kind: canvas.KeyDown, Key: k, Ctrl: true}); err != nil {
		t.Fatalf("ctrl+%s: %v", k, err)
	}
}

func TestHandleEvent_DrawShape(t *testing.T) {
	f := newWorkspace(t, nil)
	svc := f.svc

	if err := svc.SetShape(domain.ShapeRectangle); err != nil {
		t.Fatal(err)
	}
	svc.NextFrame()

	pointer(t, svc, canvas.PointerDown, 150, 120)
	pointer(t, svc, canvas.PointerMove, 50, 50)
	if fr, ok := svc.NextFrame(); !ok || fr.Ghost == nil {
		t.Fatal("expected a frame with the ghost shape")
	}
	pointer(t, svc, canvas.PointerUp, 50, 50)

	elems := svc.Elements()
	if len(elems) != 1 {
		t.Fatalf("elements = %d, want 1", len(elems))
	}
	if b := elems[0].Bounds(); !near(b.X, 50) || !near(b.Y, 50) || !near(b.W, 100) || !near(b.H, 70) {
		t.Errorf("bounds = %+v, want {50 50 100 70}", b)
	}
	if svc.State().Tool != canvas.ToolSelect {
		t.Errorf("tool = %s, want select", svc.State().Tool)
	}

	if _, ok := svc.NextFrame(); !ok {
		t.Fatal("expected a frame after the shape was added")
	}
	if _, ok := svc.NextFrame(); ok {
		t.Fatal("second frame without changes")
	}
}

func near(a, b float64) bool {
	d := a - b
	return d < 1e-6 && d > -1e-6
}

func TestHandleEvent_ClipboardAndHistoryShortcuts(t *testing.T) {
	f := newWorkspace(t, nil)
	svc := f.svc

	svc.AddElement(domain.NewShape(domain.ShapeCircle, geometry.Rect{X: 10, Y: 10, W: 40, H: 40}))
	if err := svc.Select(0); err != nil {
		t.Fatal(err)
	}

	key(t, svc, "c")
	if !strings.Contains(f.clip.Text, `"type":"shape"`) {
		t.Fatalf("clipboard = %q", f.clip.Text)
	}
	key(t, svc, "v")

	elems := svc.Elements()
	if len(elems) != 2 {
		t.Fatalf("elements after paste = %d", len(elems))
	}
	if elems[1].X != 30 || elems[1].Y != 30 || elems[1].ID == elems[0].ID {
		t.Errorf("pasted = %+v", elems[1])
	}
	if svc.State().Selected != 1 {
		t.Errorf("selected = %d, want the pasted copy", svc.State().Selected)
	}

	key(t, svc, "z")
	if n := len(svc.Elements()); n != 1 {
		t.Errorf("after undo = %d", n)
	}
	key(t, svc, "y")
	if n := len(svc.Elements()); n != 2 {
		t.Errorf("after redo = %d", n)
	}

	svc.Select(1)
	key(t, svc, "x")
	if n := len(svc.Elements()); n != 1 {
		t.Errorf("after cut = %d", n)
	}

	// nothing selected: copy is a no-op, not an error
	key(t, svc, "c")

	f.clip.Text = "not an element"
	key(t, svc, "v")
	if n := len(svc.Elements()); n != 1 {
		t.Errorf("foreign clipboard text pasted: %d elements", n)
	}
}

func TestHandleEvent_HostEffects(t *testing.T) {
	f := newWorkspace(t, nil)
	svc := f.svc

	svc.SetTool(canvas.ToolImage)
	pointer(t, svc, canvas.PointerDown, 300, 200)
	if got := f.emitter.Named(service.EventImageRequest); len(got) != 1 {
		t.Fatalf("image requests = %d", len(got))
	}

	svc.SetTool(canvas.ToolPen)
	pointer(t, svc, canvas.PointerDown, 10, 10)
	pointer(t, svc, canvas.PointerMove, 40, 40)
	pointer(t, svc, canvas.PointerUp, 40, 40)
	if got := f.emitter.Named(service.EventInkSegment); len(got) == 0 {
		t.Fatal("no live ink segments emitted")
	}
	if ink := svc.Frame().Ink; len(ink) != 1 {
		t.Fatalf("ink strokes = %d", len(ink))
	}

	if err := svc.SetTool("laser"); err == nil {
		t.Error("unknown tool accepted")
	}
}

func TestSaveAndOpen(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	a := newWorkspace(t, store)
	a.svc.AddElement(domain.NewText(10, 20))
	if !a.svc.Dirty() {
		t.Fatal("expected unsaved edits")
	}
	if err := a.svc.Save(ctx); err != nil {
		t.Fatal(err)
	}
	if a.svc.Dirty() {
		t.Fatal("still dirty after save")
	}
	if err := a.svc.Save(ctx); err != nil {
		t.Fatal(err)
	}
	info, _ := store.StatNotebook(ctx, a.svc.NotebookID())
	if info.Revision != 1 {
		t.Errorf("revision = %d, unchanged notebook should not be rewritten", info.Revision)
	}
	if len(a.emitter.Named(service.EventNotebookSaved)) != 1 {
		t.Error("expected one saved event")
	}

	b := newWorkspace(t, store)
	if b.svc.NotebookID() != a.svc.NotebookID() {
		t.Fatal("Open did not load the saved notebook")
	}
	if n := len(b.svc.Elements()); n != 1 {
		t.Errorf("elements = %d", n)
	}
}

func TestExternalChange(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	a := newWorkspace(t, store)
	a.svc.AddElement(domain.NewText(0, 0))
	a.svc.Save(ctx)

	b := newWorkspace(t, store)
	a.svc.AddElement(domain.NewText(50, 50))
	a.svc.Save(ctx)

	if err := b.svc.Sync(ctx); err != nil {
		t.Fatal(err)
	}
	if n := len(b.svc.Elements()); n != 2 {
		t.Fatalf("b elements = %d, want 2 after reload", n)
	}
	if len(b.emitter.Named(service.EventNotebookReloaded)) != 1 {
		t.Error("expected a reloaded event")
	}
	if b.svc.Dirty() {
		t.Error("a reload is not a local edit")
	}

	// a's own save is not reported back to a
	if changed, _ := a.svc.ExternalChange(ctx, domain.NotebookInfo{ID: a.svc.NotebookID(), Revision: a.svc.StoreRevision()}); changed {
		t.Error("own revision treated as external")
	}

	// local edits pending: the external save does not clobber them
	b.svc.DeleteElement(0)
	a.svc.AddElement(domain.NewText(90, 90))
	a.svc.Save(ctx)
	b.svc.Sync(ctx)
	if n := len(b.svc.Elements()); n != 1 {
		t.Errorf("b elements = %d, local edit lost", n)
	}
}

// interleavedStore runs another writer's save right after each of ours,
// before the caller sees the result.
type interleavedStore struct {
	*storage.SQLStore
	other func(id string)
}

func (s *interleavedStore) SaveNotebook(ctx context.Context, nb *domain.Notebook) (domain.NotebookInfo, error) {
	info, err := s.SQLStore.SaveNotebook(ctx, nb)
	if err == nil && s.other != nil {
		other := s.other
		s.other = nil
		other(nb.ID)
	}
	return info, err
}

func TestSave_WriteRightAfterOursIsReloaded(t *testing.T) {
	ctx := context.Background()
	raw := openStore(t)
	store := &interleavedStore{SQLStore: raw}

	svc := service.NewWorkspaceService(service.WorkspaceOptions{Store: store, Emitter: &service.MockEmitter{}})
	if err := svc.Open(ctx); err != nil {
		t.Fatal(err)
	}
	svc.AddElement(domain.NewText(0, 0))

	store.other = func(id string) {
		nb, err := raw.GetNotebook(ctx, id)
		if err != nil {
			t.Error(err)
			return
		}
		nb.Name = "Renamed elsewhere"
		if _, err := raw.SaveNotebook(ctx, nb); err != nil {
			t.Error(err)
		}
	}
	if err := svc.Save(ctx); err != nil {
		t.Fatal(err)
	}
	if rev := svc.StoreRevision(); rev != 1 {
		t.Fatalf("store revision = %d, want 1 (our own write)", rev)
	}

	if err := svc.Sync(ctx); err != nil {
		t.Fatal(err)
	}
	if name := svc.Outline().Name; name != "Renamed elsewhere" {
		t.Errorf("name = %q, the other writer's save was not reloaded", name)
	}
	if svc.StoreRevision() != 2 {
		t.Errorf("store revision = %d, want 2", svc.StoreRevision())
	}
}

func TestAutosave(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	f := newWorkspace(t, store)

	if err := f.svc.StartAutosave("every now and then"); err == nil {
		t.Fatal("invalid schedule accepted")
	}
	if err := f.svc.StartAutosave("@every 1s"); err != nil {
		t.Fatal(err)
	}
	f.svc.AddElement(domain.NewText(0, 0))

	deadline := time.Now().Add(5 * time.Second)
	for f.svc.Dirty() && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if f.svc.Dirty() {
		t.Fatal("autosave did not run")
	}

	f.svc.AddElement(domain.NewText(10, 10))
	if err := f.svc.Close(ctx); err != nil {
		t.Fatal(err)
	}
	nb, err := store.GetNotebook(ctx, f.svc.NotebookID())
	if err != nil {
		t.Fatal(err)
	}
	if n := len(nb.Sections[0].Pages[0].Elements); n != 2 {
		t.Errorf("stored elements = %d, Close should flush", n)
	}
}

func TestStructureEmitsOutline(t *testing.T) {
	f := newWorkspace(t, nil)
	svc := f.svc

	svc.AddSection()
	svc.AddPage(1)
	if err := svc.RenameItem(document.ItemPage, 1, "Notes"); err != nil {
		t.Fatal(err)
	}

	o := svc.Outline()
	if len(o.Sections) != 2 || o.Sections[1].Name != "Section 2" {
		t.Fatalf("outline = %+v", o)
	}
	if got := o.Sections[1].Pages; len(got) != 2 || got[1] != "Notes" {
		t.Errorf("pages = %v", got)
	}
	if o.Section != 1 || o.Page != 1 {
		t.Errorf("current = %d/%d", o.Section, o.Page)
	}
	if n := len(f.emitter.Named(service.EventOutlineChanged)); n != 3 {
		t.Errorf("outline events = %d, want 3", n)
	}
	if err := svc.RenameItem(document.ItemPage, 0, ""); !errors.Is(err, document.ErrEmptyName) {
		t.Errorf("empty name: err = %v", err)
	}
}

func TestImportExportJSON(t *testing.T) {
	f := newWorkspace(t, nil)
	svc := f.svc

	name, data, err := svc.ExportJSON()
	if err != nil {
		t.Fatal(err)
	}
	if name != "My_Notebook.json" {
		t.Errorf("file name = %q", name)
	}
	if !bytes.Contains(data, []byte("\n  \"name\"")) {
		t.Errorf("export is not 2-space indented:\n%s", data)
	}

	svc.AddElement(domain.NewText(0, 0))
	if err := svc.ImportJSON([]byte(`{"name": "x", "sections": []}`)); !errors.Is(err, notebookfile.ErrInvalidFormat) {
		t.Fatalf("invalid import: err = %v", err)
	}
	if n := len(svc.Elements()); n != 1 {
		t.Fatal("failed import changed the workspace")
	}

	doc := `{"name": "Physics", "sections": [{"name": "Waves", "pages": [{"name": "Intro", "elements": [
		{"type": "math", "x": 10, "y": 10, "width": 200, "height": 60, "latex": "E=mc^2"}
	]}]}]}`
	if err := svc.ImportJSON([]byte(doc)); err != nil {
		t.Fatal(err)
	}
	if o := svc.Outline(); o.Name != "Physics" || o.Sections[0].Pages[0] != "Intro" {
		t.Errorf("outline = %+v", o)
	}
	if svc.State().Selected != -1 || svc.Undo() {
		t.Error("import should reset selection and history")
	}
	fr := svc.Frame()
	if len(fr.Elements) != 1 || !strings.Contains(fr.Elements[0].Markup, "math") {
		t.Errorf("math markup not filled in: %+v", fr.Elements)
	}
}

func TestExportPNG(t *testing.T) {
	f := newWorkspace(t, nil)
	svc := f.svc

	if _, err := svc.ExportPNG(render.Options{}); !errors.Is(err, render.ErrEmptyPage) {
		t.Fatalf("empty page: err = %v", err)
	}
	svc.AddElement(domain.NewShape(domain.ShapeRectangle, geometry.Rect{X: 0, Y: 0, W: 100, H: 50}))
	data, err := svc.ExportPNG(render.Options{})
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 140 || b.Dy() != 90 {
		t.Errorf("png size = %v", b)
	}
}

func TestInsertAndResetImage(t *testing.T) {
	f := newWorkspace(t, nil)
	svc := f.svc

	var buf bytes.Buffer
	png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 640, 480)))
	src := render.DataURI("image/png", buf.Bytes())

	i, err := svc.InsertImage(geometry.Point{X: 400, Y: 300}, src)
	if err != nil {
		t.Fatal(err)
	}
	e := svc.Elements()[i]
	if e.Width != 500 || e.Height != 480 || e.X != 150 || e.Y != 60 {
		t.Errorf("inserted = %+v", e.Bounds())
	}

	svc.UpdateElement(i, domain.Patch{Width: domain.Ptr(90.0), Rotation: domain.Ptr(45.0)})
	if err := svc.ResetImage(i); err != nil {
		t.Fatal(err)
	}
	e = svc.Elements()[i]
	if e.Width != 500 || e.Rotation != 0 {
		t.Errorf("after reset = %+v", e)
	}

	if _, err := svc.InsertImage(geometry.Point{}, "https://example.com/cat.png"); err == nil {
		t.Error("remote image accepted")
	}
}

func TestMathAndRecentSymbols(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	f := newWorkspace(t, store)
	svc := f.svc

	svc.AddElement(domain.NewMath(0, 0, domain.DefaultMathLatex))
	if err := svc.SetMath(0, `\frac{1}{2}`); err != nil {
		t.Fatal(err)
	}
	m := svc.Elements()[0].Payload.(domain.Math)
	if m.Latex != `\frac{1}{2}` || !strings.Contains(m.HTML, "mfrac") {
		t.Errorf("math = %+v", m)
	}
	svc.SetMath(0, `\frac{1`)
	if m := svc.Elements()[0].Payload.(domain.Math); m.HTML != mathrender.ErrorMarkup {
		t.Errorf("broken formula markup = %q", m.HTML)
	}

	for _, sym := range []string{"α", "β", "α"} {
		if err := svc.UseSymbol(ctx, sym); err != nil {
			t.Fatal(err)
		}
	}
	if got := svc.RecentSymbols(); len(got) != 2 || got[0] != "α" || got[1] != "β" {
		t.Errorf("recent = %v", got)
	}

	reopened := newWorkspace(t, store)
	if got := reopened.svc.RecentSymbols(); len(got) != 2 || got[0] != "α" {
		t.Errorf("recent after reopen = %v", got)
	}
}
