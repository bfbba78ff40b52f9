package document

import (
	"errors"
	"fmt"
	"slices"

	"canvasnotes/internal/domain"
	"canvasnotes/internal/history"
)

var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrEmptyName       = errors.New("name must not be empty")
	ErrInvalidNotebook = errors.New("notebook needs at least one section with one page")
)

// ItemKind names a level of the notebook tree for rename/delete.
type ItemKind string

const (
	ItemNotebook ItemKind = "notebook"
	ItemSection  ItemKind = "section"
	ItemPage     ItemKind = "page"
)

// DuplicateOffset is how far a duplicated or pasted element is shifted.
const DuplicateOffset = 20.0

// Document owns the notebook tree, the current page, the selection and the
// page's undo history. All mutations go through its methods; each one either
// applies fully and records one history snapshot, or changes nothing.
//
// Out-of-range indices are ignored unless strict mode is on, in which case
// ErrIndexOutOfRange is returned.
type Document struct {
	notebook domain.Notebook
	section  int
	page     int
	selected int

	history  *history.Manager
	strict   bool
	dirty    bool
	revision uint64
}

type Option func(*Document)

// WithHistoryLimit sets how many undo snapshots are kept.
func WithHistoryLimit(n int) Option {
	return func(d *Document) { d.history = history.New(n) }
}

// WithStrictIndices makes out-of-range indices an error instead of a no-op.
func WithStrictIndices(strict bool) Option {
	return func(d *Document) { d.strict = strict }
}

// New opens nb with the first page current. An unusable notebook is
// replaced by a fresh default one.
func New(nb domain.Notebook, opts ...Option) *Document {
	d := &Document{
		history:  history.New(history.DefaultLimit),
		strict:   strictByDefault,
		selected: -1,
	}
	for _, opt := range opts {
		opt(d)
	}
	if !usable(nb) {
		nb = domain.NewNotebook(domain.DefaultNotebookName)
	}
	if nb.ID == "" {
		nb.ID = domain.NewID()
	}
	d.notebook = nb
	d.reset(0, 0)
	return d
}

func usable(nb domain.Notebook) bool {
	if len(nb.Sections) == 0 {
		return false
	}
	for _, s := range nb.Sections {
		if len(s.Pages) == 0 {
			return false
		}
	}
	return true
}

func (d *Document) outOfRange(what string, i int) error {
	if !d.strict {
		return nil
	}
	return fmt.Errorf("%w: %s %d", ErrIndexOutOfRange, what, i)
}

// reset makes (section, page) current, clears the selection and reseeds
// history with the page as baseline.
func (d *Document) reset(section, page int) {
	d.section, d.page = section, page
	d.selected = -1
	d.history.Clear(d.current())
	d.touch()
}

func (d *Document) current() *domain.Page {
	return &d.notebook.Sections[d.section].Pages[d.page]
}

func (d *Document) touch() {
	d.dirty = true
	d.revision++
}

// commit snapshots the current page after a content change.
func (d *Document) commit() {
	d.history.Save(d.current())
	d.touch()
}

// ============================================================
// Read access
// ============================================================

// Notebook returns a deep copy of the whole notebook.
func (d *Document) Notebook() domain.Notebook {
	return d.notebook.Clone()
}

// Name is the notebook name.
func (d *Document) Name() string { return d.notebook.Name }
func (d *Document) ID() string { return d.notebook.ID }

// Current returns the indices of the current section and page.
func (d *Document) Current() (section, page int) { return d.section, d.page }

// Page returns the current page. The slices are shared with the document and
// must be treated as read only.
func (d *Document) Page() domain.Page { return *d.current() }

// Elements returns the current page's elements in z-order, read only.
func (d *Document) Elements() []domain.Element { return d.current().Elements }

// Element returns the element at i on the current page.
func (d *Document) Element(i int) (domain.Element, bool) {
	elems := d.current().Elements
	if i < 0 || i >= len(elems) {
		return domain.Element{}, false
	}
	return elems[i], true
}

// Selected is the selected element index, or -1.
func (d *Document) Selected() int { return d.selected }

func (d *Document) CanUndo() bool { return d.history.CanUndo() }
func (d *Document) CanRedo() bool { return d.history.CanRedo() }

// Revision increases with every change; callers use it to skip redundant saves.
func (d *Document) Revision() uint64 { return d.revision }

// TakeDirty reports whether anything changed since the last call and clears
// the flag. A frame loop calls it once per frame so several mutations in
// one frame cause a single redraw.
func (d *Document) TakeDirty() bool {
	dirty := d.dirty
	d.dirty = false
	return dirty
}

// Invalidate requests a redraw without changing the document.
func (d *Document) Invalidate() { d.dirty = true }

// ============================================================
// Element mutations
// ============================================================

// AddElement puts e on top of the current page and returns its index.
func (d *Document) AddElement(e domain.Element) int {
	if e.ID == "" {
		e.ID = domain.NewID()
	}
	p := d.current()
	p.Elements = append(p.Elements, e)
	d.commit()
	return len(p.Elements) - 1
}

// UpdateElement merges patch into the element at index.
func (d *Document) UpdateElement(index int, patch domain.Patch) error {
	p := d.current()
	if index < 0 || index >= len(p.Elements) {
		return d.outOfRange("element", index)
	}
	next, err := patch.Apply(p.Elements[index])
	if err != nil {
		return fmt.Errorf("update element %d: %w", index, err)
	}
	if next == p.Elements[index] {
		return nil
	}
	p.Elements[index] = next
	d.commit()
	return nil
}

// DeleteElement removes the element at index, keeping the selection on the
// same element when it survives.
func (d *Document) DeleteElement(index int) error {
	p := d.current()
	if index < 0 || index >= len(p.Elements) {
		return d.outOfRange("element", index)
	}
	p.Elements = slices.Delete(p.Elements, index, index+1)
	switch {
	case d.selected == index:
		d.selected = -1
	case d.selected > index:
		d.selected--
	}
	d.commit()
	return nil
}

// DeleteSelected removes the selected element, if any.
func (d *Document) DeleteSelected() error {
	if d.selected < 0 {
		return nil
	}
	return d.DeleteElement(d.selected)
}

// Select changes the selection; -1 clears it.
func (d *Document) Select(index int) error {
	if index < -1 || index >= len(d.current().Elements) {
		return d.outOfRange("element", index)
	}
	if d.selected != index {
		d.selected = index
		d.dirty = true
	}
	return nil
}

// Duplicate copies the element at index, offsets the copy and selects it.
func (d *Document) Duplicate(index int) (int, error) {
	e, ok := d.Element(index)
	if !ok {
		return -1, d.outOfRange("element", index)
	}
	return d.Paste(e), nil
}

// Paste inserts a copy of e shifted by DuplicateOffset with a fresh id and
// selects it.
func (d *Document) Paste(e domain.Element) int {
	e = e.Clone()
	e.ID = domain.NewID()
	e.X += DuplicateOffset
	e.Y += DuplicateOffset
	i := d.AddElement(e)
	d.selected = i
	return i
}

// BringToFront moves the element at index to the top of the z-order.
func (d *Document) BringToFront(index int) error {
	p := d.current()
	if index < 0 || index >= len(p.Elements) {
		return d.outOfRange("element", index)
	}
	e := p.Elements[index]
	p.Elements = append(slices.Delete(p.Elements, index, index+1), e)
	d.selected = len(p.Elements) - 1
	d.commit()
	return nil
}

// SendToBack moves the element at index to the bottom of the z-order.
func (d *Document) SendToBack(index int) error {
	p := d.current()
	if index < 0 || index >= len(p.Elements) {
		return d.outOfRange("element", index)
	}
	e := p.Elements[index]
	p.Elements = slices.Insert(slices.Delete(p.Elements, index, index+1), 0, e)
	d.selected = 0
	d.commit()
	return nil
}

// ResetImage restores an image element to its natural size (bounded like a
// fresh insert), no rotation, full opacity and no border.
func (d *Document) ResetImage(index int, naturalW, naturalH float64) error {
	e, ok := d.Element(index)
	if !ok {
		return d.outOfRange("element", index)
	}
	if e.Kind() != domain.ElementImage {
		return fmt.Errorf("reset image %d: %w", index, domain.ErrPatchKind)
	}
	w, h := domain.ImageInsertSize(naturalW, naturalH)
	return d.UpdateElement(index, domain.Patch{
		Width:       &w,
		Height:      &h,
		Rotation:    domain.Ptr(0.0),
		Opacity:     domain.Ptr(1.0),
		BorderWidth: domain.Ptr(0.0),
	})
}

// AppendInk adds a finished stroke to the page's ink layer and records a
// history checkpoint for the completed gesture.
func (d *Document) AppendInk(s domain.Stroke) {
	if len(s.Points) == 0 {
		return
	}
	p := d.current()
	p.Ink = append(p.Ink, s)
	d.Checkpoint()
}

// Checkpoint snapshots the current page as one undo step, for gestures
// whose changes are not made through the element entry points.
func (d *Document) Checkpoint() {
	d.commit()
}

// ClearInk wipes the page's ink layer.
func (d *Document) ClearInk() {
	p := d.current()
	if len(p.Ink) == 0 {
		return
	}
	p.Ink = nil
	d.touch()
}

// Undo restores the previous snapshot of the current page.
func (d *Document) Undo() bool {
	if !d.history.Undo(d.current()) {
		return false
	}
	d.afterRestore()
	return true
}

// Redo re-applies the next snapshot of the current page.
func (d *Document) Redo() bool {
	if !d.history.Redo(d.current()) {
		return false
	}
	d.afterRestore()
	return true
}

func (d *Document) afterRestore() {
	if d.selected >= len(d.current().Elements) {
		d.selected = -1
	}
	d.touch()
}
