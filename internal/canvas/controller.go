package canvas

import (
	"strings"

	"canvasnotes/internal/domain"
	"canvasnotes/internal/geometry"
)

// Update interprets one input event against the page's elements. It returns
// the next state and the mutations the caller must apply through the
// document, in order. elems is read only.
func Update(s State, elems []domain.Element, ev Event) (State, []Effect) {
	if s.Selected >= len(elems) {
		s.Selected = -1
	}
	switch ev.Kind {
	case PointerDown:
		s.LastPointer = ev.Point()
		return pointerDown(s, elems, ev)
	case PointerMove:
		s.LastPointer = ev.Point()
		return pointerMove(s, ev)
	case PointerUp, PointerLeave:
		return pointerUp(s, elems, ev)
	case Wheel:
		return wheel(s, ev)
	case KeyDown:
		return keyDown(s, ev)
	case KeyUp:
		if ev.Key == " " {
			s.SpaceHeld = false
		}
		return s, nil
	case TouchStart:
		return touchStart(s, elems, ev)
	case TouchMove:
		return touchMove(s, elems, ev)
	case TouchEnd:
		return touchEnd(s, elems, ev)
	}
	return s, nil
}

// SetTool switches the active tool, abandoning any gesture in progress.
func SetTool(s State, t Tool) State {
	if !t.Valid() {
		return s
	}
	s.Tool = t
	s.Gesture = Gesture{}
	return s
}

// SetShape selects the shape the shape tool draws and activates it.
func SetShape(s State, k domain.ShapeKind) State {
	if !k.Valid() {
		return s
	}
	s.Shape = k
	return SetTool(s, ToolShape)
}

// Cancel drops the active gesture without committing anything.
func Cancel(s State) State {
	s.Gesture = Gesture{}
	s.Pinch = nil
	return s
}

func pointerDown(s State, elems []domain.Element, ev Event) (State, []Effect) {
	if s.Busy() {
		return s, nil
	}
	screen := ev.Point()
	at := s.Viewport.ScreenToCanvas(screen)

	if s.Tool == ToolPan || s.SpaceHeld {
		s.Gesture = Gesture{Mode: ModePanning, Last: screen}
		return s, nil
	}

	switch s.Tool {
	case ToolPen, ToolEraser:
		s.Gesture = Gesture{Mode: ModeDrawing, Tool: s.Tool, Start: at, Current: at, Last: screen, Points: []geometry.Point{at}}
		return s, nil

	case ToolShape:
		s.Gesture = Gesture{Mode: ModeDrawing, Tool: ToolShape, Start: at, Current: at, Last: screen}
		return s, nil

	case ToolText:
		s.Tool = ToolSelect
		return s, []Effect{AddElement{Element: domain.NewText(at.X, at.Y)}}

	case ToolMath:
		s.Tool = ToolSelect
		return s, []Effect{AddElement{Element: domain.NewMath(at.X, at.Y, domain.DefaultMathLatex)}}

	case ToolImage:
		s.Tool = ToolSelect
		return s, []Effect{RequestImage{At: at}}

	case ToolSelect:
		return selectDown(s, elems, screen, at)
	}
	return s, nil
}

func selectDown(s State, elems []domain.Element, screen, at geometry.Point) (State, []Effect) {
	if s.Selected >= 0 {
		e := elems[s.Selected]
		switch h := HandleAt(s.Viewport, e, screen); h {
		case HandleNone:
		case HandleRotate:
			center := e.Bounds().Center()
			s.Gesture = Gesture{
				Mode:          ModeRotating,
				Handle:        h,
				Index:         s.Selected,
				Last:          screen,
				Start:         at,
				Origin:        e.Bounds(),
				Box:           e.Bounds(),
				StartRotation: e.Rotation,
				Rotation:      e.Rotation,
				StartAngle:    geometry.Angle(center, at),
			}
			return s, nil
		default:
			_, isImage := e.Payload.(domain.Image)
			s.Gesture = Gesture{
				Mode:       ModeResizing,
				Handle:     h,
				Index:      s.Selected,
				Last:       screen,
				Start:      at,
				Origin:     e.Bounds(),
				Box:        e.Bounds(),
				Rotation:   e.Rotation,
				Aspect:     e.Width / e.Height,
				KeepAspect: isImage,
			}
			return s, nil
		}
	}

	idx := HitTest(elems, at)
	var effects []Effect
	if idx != s.Selected {
		effects = append(effects, Select{Index: idx})
	}
	s.Selected = idx
	if idx < 0 {
		return s, effects
	}
	e := elems[idx]
	s.Gesture = Gesture{
		Mode:     ModeDragging,
		Index:    idx,
		Last:     screen,
		Start:    at,
		Origin:   e.Bounds(),
		Box:      e.Bounds(),
		Rotation: e.Rotation,
	}
	return s, effects
}

func pointerMove(s State, ev Event) (State, []Effect) {
	screen := ev.Point()
	at := s.Viewport.ScreenToCanvas(screen)
	g := s.Gesture

	switch g.Mode {
	case ModePanning:
		s.Viewport = s.Viewport.PanBy(screen.Sub(g.Last))
		s.Gesture.Last = screen
		return s, []Effect{Invalidate{}}

	case ModeDragging:
		d := at.Sub(g.Start)
		s.Gesture.Box.X = g.Origin.X + d.X
		s.Gesture.Box.Y = g.Origin.Y + d.Y
		return s, []Effect{Invalidate{}}

	case ModeResizing:
		s.Gesture.Box = ResizeRotated(g.Origin, g.Handle, at, g.Rotation, g.Aspect, g.KeepAspect && !ev.Shift)
		return s, []Effect{Invalidate{}}

	case ModeRotating:
		s.Gesture.Rotation = RotationAt(g.Origin.Center(), at, g.StartAngle, g.StartRotation)
		return s, []Effect{Invalidate{}}

	case ModeDrawing:
		prev := g.Current
		s.Gesture.Current = at
		s.Gesture.Last = screen
		if g.Tool == ToolShape {
			return s, []Effect{Invalidate{}}
		}
		s.Gesture.Points = append(append([]geometry.Point(nil), g.Points...), at)
		return s, []Effect{s.paint(prev, at)}
	}
	return s, nil
}

func (s State) paint(from, to geometry.Point) PaintInk {
	p := PaintInk{Mode: domain.StrokeDraw, Color: s.StrokeColor, Width: s.StrokeWidth, From: from, To: to}
	if s.Gesture.Tool == ToolEraser {
		p.Mode = domain.StrokeErase
		p.Color = ""
	}
	return p
}

func pointerUp(s State, elems []domain.Element, ev Event) (State, []Effect) {
	g := s.Gesture
	s.Gesture = Gesture{}

	switch g.Mode {
	case ModePanning:
		return s, nil

	case ModeDragging:
		if g.Index >= len(elems) || (g.Box.X == g.Origin.X && g.Box.Y == g.Origin.Y) {
			return s, nil
		}
		return s, []Effect{UpdateElement{Index: g.Index, Patch: domain.MovePatch(g.Box.X, g.Box.Y)}}

	case ModeResizing:
		if g.Index >= len(elems) || g.Box == g.Origin {
			return s, []Effect{Invalidate{}}
		}
		return s, []Effect{UpdateElement{Index: g.Index, Patch: domain.BoxPatch(g.Box.X, g.Box.Y, g.Box.W, g.Box.H)}}

	case ModeRotating:
		if g.Index >= len(elems) || g.Rotation == g.StartRotation {
			return s, []Effect{Invalidate{}}
		}
		return s, []Effect{UpdateElement{Index: g.Index, Patch: domain.RotatePatch(g.Rotation)}}

	case ModeDrawing:
		if g.Tool == ToolShape {
			end := g.Current
			if ev.Kind == PointerUp {
				end = s.Viewport.ScreenToCanvas(ev.Point())
			}
			s.Tool = ToolSelect
			box := geometry.RectFromPoints(g.Start, end)
			if box.W == 0 && box.H == 0 {
				return s, []Effect{Invalidate{}}
			}
			return s, []Effect{AddElement{Element: domain.NewShape(s.Shape, box)}}
		}
		stroke := domain.Stroke{Mode: domain.StrokeDraw, Color: s.StrokeColor, Width: s.StrokeWidth, Points: g.Points}
		if g.Tool == ToolEraser {
			stroke.Mode = domain.StrokeErase
			stroke.Color = ""
		}
		return s, []Effect{CommitStroke{Stroke: stroke}}
	}
	return s, nil
}

func wheel(s State, ev Event) (State, []Effect) {
	if ev.DeltaY == 0 {
		return s, nil
	}
	dir := 1
	if ev.DeltaY > 0 {
		dir = -1
	}
	s.Viewport = s.Viewport.ZoomAt(ev.Point(), dir)
	return s, []Effect{Invalidate{}}
}

func keyDown(s State, ev Event) (State, []Effect) {
	key := ev.Key
	if ev.Ctrl {
		switch strings.ToLower(key) {
		case "z":
			if ev.Shift {
				return s, []Effect{CommandRedo}
			}
			return s, []Effect{CommandUndo}
		case "y":
			return s, []Effect{CommandRedo}
		case "s":
			return s, []Effect{CommandSave}
		case "c":
			return s, []Effect{CommandCopy}
		case "x":
			return s, []Effect{CommandCut}
		case "v":
			return s, []Effect{CommandPaste}
		case "d":
			return s, []Effect{CommandDuplicate}
		}
		return s, nil
	}

	switch key {
	case " ":
		if !ev.Repeat {
			s.SpaceHeld = true
		}
	case "Escape":
		if s.Busy() {
			return Cancel(s), []Effect{Invalidate{}}
		}
		if s.Selected >= 0 {
			s.Selected = -1
			return s, []Effect{Select{Index: -1}}
		}
	case "Delete", "Backspace":
		if s.Selected >= 0 && !s.Busy() {
			idx := s.Selected
			s.Selected = -1
			return s, []Effect{DeleteElement{Index: idx}}
		}
	}
	return s, nil
}

func touchStart(s State, elems []domain.Element, ev Event) (State, []Effect) {
	switch len(ev.Touches) {
	case 1:
		t := ev.Touches[0]
		return Update(s, elems, Event{Kind: PointerDown, X: t.X, Y: t.Y})
	case 2:
		s = Cancel(s)
		s.Pinch = &Pinch{
			StartDist:  ev.Touches[0].Dist(ev.Touches[1]),
			StartScale: s.Viewport.Scale,
		}
		return s, []Effect{Invalidate{}}
	}
	return s, nil
}

func touchMove(s State, elems []domain.Element, ev Event) (State, []Effect) {
	switch {
	case len(ev.Touches) == 1 && s.Pinch == nil:
		t := ev.Touches[0]
		return Update(s, elems, Event{Kind: PointerMove, X: t.X, Y: t.Y})
	case len(ev.Touches) == 2 && s.Pinch != nil:
		if s.Pinch.StartDist == 0 {
			return s, nil
		}
		a, b := ev.Touches[0], ev.Touches[1]
		scale := s.Pinch.StartScale * (a.Dist(b) / s.Pinch.StartDist)
		s.Viewport = s.Viewport.ZoomTo(a.Mid(b), scale)
		return s, []Effect{Invalidate{}}
	}
	return s, nil
}

func touchEnd(s State, elems []domain.Element, ev Event) (State, []Effect) {
	switch len(ev.Touches) {
	case 0:
		if s.Pinch != nil {
			s.Pinch = nil
			return s, nil
		}
		p := s.LastPointer
		return Update(s, elems, Event{Kind: PointerUp, X: p.X, Y: p.Y})
	case 1:
		s.Pinch = nil
	}
	return s, nil
}
