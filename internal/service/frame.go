package service

import (
	"bytes"

	"canvasnotes/internal/canvas"
	"canvasnotes/internal/domain"
	"canvasnotes/internal/geometry"
	"canvasnotes/internal/mathrender"
	"canvasnotes/internal/render"
)

// Frame is everything a surface needs to draw the canvas once.
type Frame struct {
	Tool     canvas.Tool         `json:"tool"`
	Mode     string              `json:"mode"`
	Viewport geometry.Viewport   `json:"viewport"`
	Selected int                 `json:"selected"`
	Elements []domain.RenderSpec `json:"elements"`
	Ink      []domain.Stroke     `json:"ink,omitempty"`
	Ghost    *canvas.Ghost       `json:"ghost,omitempty"`
	Preview  *canvas.Preview     `json:"preview,omitempty"`
	// Handles are the selection handles in screen space, unrotated; the
	// surface rotates them by the selected element's rotation.
	Handles []canvas.HandlePoint `json:"handles,omitempty"`
	CanUndo bool                 `json:"canUndo"`
	CanRedo bool                 `json:"canRedo"`
}

// NextFrame returns a frame if anything changed since the last call. A
// surface calls it once per display tick, so bursts of edits draw once.
func (s *WorkspaceService) NextFrame() (Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.doc.TakeDirty() {
		return Frame{}, false
	}
	return s.frameLocked(), true
}

// Frame builds a frame unconditionally.
func (s *WorkspaceService) Frame() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameLocked()
}

func (s *WorkspaceService) frameLocked() Frame {
	page := s.doc.Page()
	f := Frame{
		Tool:     s.state.Tool,
		Mode:     s.state.Gesture.Mode.String(),
		Viewport: s.state.Viewport,
		Selected: s.doc.Selected(),
		Elements: domain.DescribePage(page.Elements),
		Ink:      append([]domain.Stroke(nil), page.Ink...),
		CanUndo:  s.doc.CanUndo(),
		CanRedo:  s.doc.CanRedo(),
	}
	for i, spec := range f.Elements {
		// math inserted by the tool has no cached markup yet
		if spec.Kind == domain.ElementMath && spec.Markup == "" {
			f.Elements[i].Markup = mathrender.Markup(s.math, spec.Source)
		}
	}
	if g, ok := s.state.Ghost(); ok {
		f.Ghost = &g
	}
	if p, ok := s.state.Preview(); ok {
		f.Preview = &p
		if p.Index >= 0 && p.Index < len(f.Elements) {
			e := &f.Elements[p.Index]
			e.X, e.Y, e.Width, e.Height, e.Rotation = p.Box.X, p.Box.Y, p.Box.W, p.Box.H, p.Rotation
		}
	}
	if e, ok := s.doc.Element(f.Selected); ok {
		box := e.Bounds()
		if f.Preview != nil && f.Preview.Index == f.Selected {
			box = f.Preview.Box
		}
		f.Handles = canvas.HandlePoints(s.state.Viewport.RectToScreen(box))
	}
	return f
}

// Snapshot renders the visible canvas as PNG, as the desktop view shows it.
func (s *WorkspaceService) Snapshot() ([]byte, error) {
	s.mu.Lock()
	page := s.doc.Page().Clone()
	st := s.state
	st.Selected = s.doc.Selected()
	s.mu.Unlock()

	var buf bytes.Buffer
	if err := render.EncodePNG(&buf, render.View(page, st)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
