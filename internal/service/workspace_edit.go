package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"canvasnotes/internal/canvas"
	"canvasnotes/internal/document"
	"canvasnotes/internal/domain"
	"canvasnotes/internal/geometry"
	"canvasnotes/internal/render"
)

// ErrNothingSelected is returned by commands that act on the selection.
var ErrNothingSelected = errors.New("no element selected")

// ── Canvas input ───────────────────────────────────────────

// HandleEvent feeds one input event through the interaction controller and
// carries out what it asks for.
func (s *WorkspaceService) HandleEvent(ev canvas.Event) error {
	s.mu.Lock()
	st, rest, err := s.doc.Run(s.state, ev)
	s.state = st

	save := false
	var errs []error
	if err != nil {
		errs = append(errs, err)
	}
	for _, eff := range rest {
		switch e := eff.(type) {
		case canvas.PaintInk:
			s.emit(EventInkSegment, e)
		case canvas.RequestImage:
			s.emit(EventImageRequest, e.At)
		case canvas.Command:
			if e == canvas.CommandSave {
				save = true
				continue
			}
			if err := s.commandLocked(e); err != nil && !errors.Is(err, ErrNothingSelected) {
				errs = append(errs, err)
			}
		}
	}
	s.mu.Unlock()

	if save {
		errs = append(errs, s.Save(s.ctx))
	}
	return errors.Join(errs...)
}

func (s *WorkspaceService) commandLocked(c canvas.Command) error {
	switch c {
	case canvas.CommandUndo:
		s.doc.Undo()
	case canvas.CommandRedo:
		s.doc.Redo()
	case canvas.CommandCopy:
		return s.copyLocked()
	case canvas.CommandCut:
		if err := s.copyLocked(); err != nil {
			return err
		}
		return s.doc.DeleteSelected()
	case canvas.CommandPaste:
		return s.pasteLocked()
	case canvas.CommandDuplicate:
		if i := s.doc.Selected(); i >= 0 {
			_, err := s.doc.Duplicate(i)
			return err
		}
		return ErrNothingSelected
	default:
		return fmt.Errorf("unknown command %q", c)
	}
	return nil
}

// State returns the current interaction state.
func (s *WorkspaceService) State() canvas.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Selected = s.doc.Selected()
	return st
}

// SetTool switches the active tool, cancelling any gesture in progress.
func (s *WorkspaceService) SetTool(t canvas.Tool) error {
	if !t.Valid() {
		return fmt.Errorf("unknown tool %q", t)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = canvas.SetTool(s.state, t)
	s.doc.Invalidate()
	return nil
}

// SetShape picks the form drawn by the shape tool and activates it.
func (s *WorkspaceService) SetShape(k domain.ShapeKind) error {
	if !k.Valid() {
		return fmt.Errorf("unknown shape %q", k)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = canvas.SetShape(s.state, k)
	s.doc.Invalidate()
	return nil
}

// SetStroke sets the pen colour and width. Empty colour or width <= 0
// leaves that setting alone.
func (s *WorkspaceService) SetStroke(color string, width float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if color != "" {
		s.state.StrokeColor = color
	}
	if width > 0 {
		s.state.StrokeWidth = width
	}
}

// ResizeView follows the canvas container size.
func (s *WorkspaceService) ResizeView(width, height float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Viewport = s.state.Viewport.Resize(width, height)
	s.doc.Invalidate()
}

// ZoomBy zooms one step in (direction > 0) or out around the view centre.
func (s *WorkspaceService) ZoomBy(direction int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.state.Viewport
	s.state.Viewport = v.ZoomAt(geometry.Point{X: v.ViewWidth / 2, Y: v.ViewHeight / 2}, direction)
	s.doc.Invalidate()
}

// ── Elements ───────────────────────────────────────────────

// Elements returns a copy of the current page's elements.
func (s *WorkspaceService) Elements() []domain.Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CloneElements(s.doc.Elements())
}

// AddElement puts e on top of the current page and returns its index.
func (s *WorkspaceService) AddElement(e domain.Element) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.AddElement(e)
}

func (s *WorkspaceService) UpdateElement(index int, p domain.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.UpdateElement(index, p)
}

func (s *WorkspaceService) DeleteElement(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.DeleteElement(index)
}

func (s *WorkspaceService) DeleteSelected() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.DeleteSelected()
}

func (s *WorkspaceService) Select(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Select(index)
}

func (s *WorkspaceService) Duplicate(index int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Duplicate(index)
}

func (s *WorkspaceService) BringToFront(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.BringToFront(index)
}

func (s *WorkspaceService) SendToBack(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.SendToBack(index)
}

func (s *WorkspaceService) ClearInk() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.ClearInk()
}

func (s *WorkspaceService) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Undo()
}

func (s *WorkspaceService) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Redo()
}

// InsertImage places an image centred on the canvas point at, sized from
// the picture's natural dimensions.
func (s *WorkspaceService) InsertImage(at geometry.Point, src string) (int, error) {
	w, h, err := render.ImageSize(src)
	if err != nil {
		return -1, fmt.Errorf("insert image: %w", err)
	}
	iw, ih := domain.ImageInsertSize(float64(w), float64(h))
	e := domain.NewImage(at.X-iw/2, at.Y-ih/2, iw, ih, src)

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.doc.AddElement(e)
	s.doc.Select(i)
	return i, nil
}

// ResetImage restores an image element to its natural proportions.
func (s *WorkspaceService) ResetImage(index int) error {
	s.mu.Lock()
	e, ok := s.doc.Element(index)
	s.mu.Unlock()
	if !ok {
		return nil
	}
	img, isImage := e.Payload.(domain.Image)
	if !isImage {
		return fmt.Errorf("reset image %d: %w", index, domain.ErrPatchKind)
	}
	w, h, err := render.ImageSize(img.Src)
	if err != nil {
		return fmt.Errorf("reset image %d: %w", index, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.ResetImage(index, float64(w), float64(h))
}

// ── Clipboard ──────────────────────────────────────────────

func (s *WorkspaceService) Copy() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

func (s *WorkspaceService) Cut() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commandLocked(canvas.CommandCut)
}

func (s *WorkspaceService) Paste() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pasteLocked()
}

func (s *WorkspaceService) copyLocked() error {
	e, ok := s.doc.Element(s.doc.Selected())
	if !ok {
		return ErrNothingSelected
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("copy element: %w", err)
	}
	if err := s.clipboard.WriteAll(string(data)); err != nil {
		return fmt.Errorf("copy element: %w", err)
	}
	return nil
}

// pasteLocked inserts the clipboard element offset from the original.
// Clipboard text that is not an element is ignored.
func (s *WorkspaceService) pasteLocked() error {
	text, err := s.clipboard.ReadAll()
	if err != nil {
		return fmt.Errorf("paste element: %w", err)
	}
	var e domain.Element
	if err := json.Unmarshal([]byte(text), &e); err != nil {
		return nil
	}
	s.doc.Paste(e)
	return nil
}

// ── Structure ──────────────────────────────────────────────

// Outline is the notebook tree as shown in the sidebar.
type Outline struct {
	Name     string           `json:"name"`
	Sections []OutlineSection `json:"sections"`
	Section  int              `json:"section"`
	Page     int              `json:"page"`
}

type OutlineSection struct {
	Name  string   `json:"name"`
	Pages []string `json:"pages"`
}

func (s *WorkspaceService) Outline() Outline {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outlineLocked()
}

func (s *WorkspaceService) outlineLocked() Outline {
	nb := s.doc.Notebook()
	out := Outline{Name: nb.Name, Sections: make([]OutlineSection, len(nb.Sections))}
	out.Section, out.Page = s.doc.Current()
	for i, sec := range nb.Sections {
		pages := make([]string, len(sec.Pages))
		for j, p := range sec.Pages {
			pages[j] = p.Name
		}
		out.Sections[i] = OutlineSection{Name: sec.Name, Pages: pages}
	}
	return out
}

// structural runs a tree change, cancels any gesture on the old page and
// announces the new outline.
func (s *WorkspaceService) structural(fn func(d *document.Document) error) error {
	s.mu.Lock()
	if err := fn(s.doc); err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = canvas.Cancel(s.state)
	outline := s.outlineLocked()
	s.mu.Unlock()

	s.emit(EventOutlineChanged, outline)
	return nil
}

func (s *WorkspaceService) AddSection() error {
	return s.structural(func(d *document.Document) error {
		d.AddSection()
		return nil
	})
}

func (s *WorkspaceService) AddPage(section int) error {
	return s.structural(func(d *document.Document) error { return d.AddPage(section) })
}

func (s *WorkspaceService) SelectPage(section, page int) error {
	return s.structural(func(d *document.Document) error { return d.SelectPage(section, page) })
}

func (s *WorkspaceService) RenameItem(kind document.ItemKind, index int, name string) error {
	return s.structural(func(d *document.Document) error { return d.RenameItem(kind, index, name) })
}

func (s *WorkspaceService) DeleteItem(kind document.ItemKind, index int) error {
	return s.structural(func(d *document.Document) error { return d.DeleteItem(kind, index) })
}

func (s *WorkspaceService) NewNotebook() error {
	return s.structural(func(d *document.Document) error {
		d.NewNotebook()
		return nil
	})
}
