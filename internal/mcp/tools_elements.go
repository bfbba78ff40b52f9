package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"canvasnotes/internal/domain"
	"canvasnotes/internal/geometry"
	"canvasnotes/internal/mathrender"
	"canvasnotes/internal/render"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerElementTools() {
	s.mcp.AddTool(mcp.NewTool("list_elements",
		mcp.WithDescription("List the elements on the open page with their IDs, types, positions and content, bottom to top"),
	), s.handleListElements)

	s.mcp.AddTool(mcp.NewTool("add_element",
		mcp.WithDescription("Add a text, shape, math or image element to the open page. Without x/y it is placed in the next free spot."),
		mcp.WithString("type", mcp.Description("Element type: text, shape, math, image"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("X position in canvas units (optional)")),
		mcp.WithNumber("y", mcp.Description("Y position in canvas units (optional)")),
		mcp.WithNumber("width", mcp.Description("Width (optional)")),
		mcp.WithNumber("height", mcp.Description("Height (optional)")),
		mcp.WithString("content", mcp.Description("Text: HTML content, e.g. <p>Hello</p>")),
		mcp.WithString("color", mcp.Description("Text: color hex")),
		mcp.WithString("shape", mcp.Description("Shape: rectangle, circle, line, triangle")),
		mcp.WithString("fillColor", mcp.Description("Shape: fill color hex")),
		mcp.WithString("strokeColor", mcp.Description("Shape: stroke color hex")),
		mcp.WithString("latex", mcp.Description(`Math: LaTeX source, e.g. \frac{a}{b}`)),
		mcp.WithString("src", mcp.Description("Image: data URI or local file path")),
	), s.handleAddElement)

	s.mcp.AddTool(mcp.NewTool("update_element",
		mcp.WithDescription("Update properties of an element on the open page"),
		mcp.WithString("elementId", mcp.Description("Element ID to update"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("New X position")),
		mcp.WithNumber("y", mcp.Description("New Y position")),
		mcp.WithNumber("width", mcp.Description("New width")),
		mcp.WithNumber("height", mcp.Description("New height")),
		mcp.WithNumber("rotation", mcp.Description("Rotation in degrees")),
		mcp.WithString("content", mcp.Description("Text: HTML content")),
		mcp.WithString("color", mcp.Description("Text: color hex")),
		mcp.WithString("shape", mcp.Description("Shape: rectangle, circle, line, triangle")),
		mcp.WithString("fillColor", mcp.Description("Shape: fill color hex")),
		mcp.WithString("strokeColor", mcp.Description("Shape: stroke color hex")),
		mcp.WithString("latex", mcp.Description("Math: LaTeX source")),
		mcp.WithString("patchJSON", mcp.Description("JSON object with any other properties to update (fontFamily, fontSize, opacity, borderWidth, borderColor, strokeWidth)")),
	), s.handleUpdateElement)

	s.mcp.AddTool(mcp.NewTool("delete_element",
		mcp.WithDescription("🛑 DESTRUCTIVE: Remove an element by ID. Requires user approval."),
		mcp.WithString("elementId", mcp.Description("Element ID to delete"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteElement)

	s.mcp.AddTool(mcp.NewTool("arrange_element",
		mcp.WithDescription("Move an element to the top or bottom of the stacking order"),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
		mcp.WithString("to", mcp.Description("front or back"), mcp.Required()),
	), s.handleArrangeElement)

	s.mcp.AddTool(mcp.NewTool("clear_ink",
		mcp.WithDescription("🛑 DESTRUCTIVE: Erase all freehand ink on the open page. Requires user approval."),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleClearInk)

	s.mcp.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Undo the last change on the open page"),
	), s.handleUndo)

	s.mcp.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Redo the last undone change on the open page"),
	), s.handleRedo)
}

// elementSummary is a compact view of an element for agents.
type elementSummary struct {
	Index       int                `json:"index"`
	ID          string             `json:"id"`
	Type        domain.ElementKind `json:"type"`
	X           float64            `json:"x"`
	Y           float64            `json:"y"`
	Width       float64            `json:"width"`
	Height      float64            `json:"height"`
	Rotation    float64            `json:"rotation,omitempty"`
	Content     string             `json:"content,omitempty"`
	Shape       domain.ShapeKind   `json:"shape,omitempty"`
	Latex       string             `json:"latex,omitempty"`
	RenderError bool               `json:"renderError,omitempty"` // LaTeX failed to typeset
	Src         string             `json:"src,omitempty"`
}

const maxSrcPreview = 64

func summarizeElement(i int, e domain.Element) elementSummary {
	out := elementSummary{
		Index: i, ID: e.ID, Type: e.Kind(),
		X: e.X, Y: e.Y, Width: e.Width, Height: e.Height, Rotation: e.Rotation,
	}
	switch p := e.Payload.(type) {
	case domain.Text:
		out.Content = p.Content
	case domain.Shape:
		out.Shape = p.Form
	case domain.Math:
		out.Latex = p.Latex
		out.RenderError = p.HTML == mathrender.ErrorMarkup
	case domain.Image:
		out.Src = p.Src
		if r := []rune(out.Src); len(r) > maxSrcPreview {
			out.Src = string(r[:maxSrcPreview]) + "…"
		}
	}
	return out
}

// patchFromArgs collects the optional property arguments shared by
// add_element and update_element.
func patchFromArgs(args map[string]any, p domain.Patch) domain.Patch {
	num := func(dst **float64, key string) {
		if v, ok := args[key].(float64); ok {
			*dst = &v
		}
	}
	str := func(dst **string, key string) {
		if v, ok := args[key].(string); ok && v != "" {
			*dst = &v
		}
	}

	num(&p.X, "x")
	num(&p.Y, "y")
	num(&p.Width, "width")
	num(&p.Height, "height")
	num(&p.Rotation, "rotation")
	str(&p.Content, "content")
	str(&p.Color, "color")
	str(&p.FillColor, "fillColor")
	str(&p.StrokeColor, "strokeColor")
	str(&p.Latex, "latex")
	str(&p.Src, "src")
	if form, ok := args["shape"].(string); ok && form != "" {
		k := domain.ShapeKind(form)
		p.Form = &k
	}
	return p
}

// typeset fills in the markup for a patch that sets latex, so the formula
// and its rendering land in the same history step.
func (s *Server) typeset(p *domain.Patch) {
	if p.Latex != nil {
		p.HTML = domain.Ptr(s.ws.MathPreview(*p.Latex))
	}
}

func (s *Server) handleListElements(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.pull(ctx); err != nil {
		return nil, err
	}
	elems := s.ws.Elements()
	out := make([]elementSummary, len(elems))
	for i, e := range elems {
		out[i] = summarizeElement(i, e)
	}
	return jsonResult(out)
}

func (s *Server) handleAddElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.pull(ctx); err != nil {
		return nil, err
	}
	args := req.GetArguments()
	kind := domain.ElementKind(req.GetString("type", ""))
	if kind == domain.ElementImage {
		return s.addImage(ctx, args)
	}

	e, ok := domain.DefaultElement(kind)
	if !ok {
		return nil, fmt.Errorf("add_element: unknown type %q (use text, shape, math or image)", kind)
	}
	p := patchFromArgs(args, domain.Patch{})
	if kind == domain.ElementMath && p.Latex == nil {
		p.Latex = domain.Ptr(domain.DefaultMathLatex)
	}
	s.typeset(&p)
	e, err := p.Apply(e)
	if err != nil {
		return nil, fmt.Errorf("add_element: %w", err)
	}
	if p.X == nil || p.Y == nil {
		x, y := s.layout.NextPosition(s.ws.Elements(), e.Width, e.Height)
		if p.X == nil {
			e.X = x
		}
		if p.Y == nil {
			e.Y = y
		}
	}

	index := s.ws.AddElement(e)
	if err := s.commit(ctx, "add_element"); err != nil {
		return nil, err
	}
	return jsonResult(summarizeElement(index, s.ws.Elements()[index]))
}

func (s *Server) addImage(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	src, _ := args["src"].(string)
	if src == "" {
		return nil, fmt.Errorf("add_element: image needs src")
	}
	w, h, err := render.ImageSize(src)
	if err != nil {
		return nil, fmt.Errorf("add_element: %w", err)
	}
	iw, ih := domain.ImageInsertSize(float64(w), float64(h))
	x, y := s.layout.NextPosition(s.ws.Elements(), iw, ih)
	if v, ok := args["x"].(float64); ok {
		x = v
	}
	if v, ok := args["y"].(float64); ok {
		y = v
	}

	index, err := s.ws.InsertImage(geometry.Point{X: x + iw/2, Y: y + ih/2}, src)
	if err != nil {
		return nil, fmt.Errorf("add_element: %w", err)
	}
	if err := s.commit(ctx, "add_element"); err != nil {
		return nil, err
	}
	return jsonResult(summarizeElement(index, s.ws.Elements()[index]))
}

func (s *Server) handleUpdateElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.pull(ctx); err != nil {
		return nil, err
	}
	args := req.GetArguments()
	index, _, err := s.elementIndex(args)
	if err != nil {
		return nil, err
	}

	var base domain.Patch
	if raw := req.GetString("patchJSON", ""); raw != "" {
		if err := json.Unmarshal([]byte(raw), &base); err != nil {
			return nil, fmt.Errorf("invalid patchJSON: %w", err)
		}
	}
	p := patchFromArgs(args, base)
	p.HTML = nil
	s.typeset(&p)

	if !p.Empty() {
		if err := s.ws.UpdateElement(index, p); err != nil {
			return nil, fmt.Errorf("update_element: %w", err)
		}
	}
	if err := s.commit(ctx, "update_element"); err != nil {
		return nil, err
	}
	return jsonResult(summarizeElement(index, s.ws.Elements()[index]))
}

func (s *Server) handleDeleteElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.pull(ctx); err != nil {
		return nil, err
	}
	index, e, err := s.elementIndex(req.GetArguments())
	if err != nil {
		return nil, err
	}

	desc := fmt.Sprintf("Delete %s (%s)", e.Kind(), e.ID)
	if sum := summarizeElement(index, e); sum.Content != "" || sum.Latex != "" {
		desc = fmt.Sprintf("Delete %s %q", e.Kind(), strings.TrimSpace(sum.Content+sum.Latex))
	}
	meta := fmt.Sprintf(`{"elementIds":[%q]}`, e.ID)
	approved, err := s.approval.Request("delete_element", desc, meta)
	if err != nil || !approved {
		return textResult("Action rejected by user"), nil
	}

	// the page may have changed while the user decided
	index, _, err = s.elementIndex(req.GetArguments())
	if err != nil {
		return nil, err
	}
	if err := s.ws.DeleteElement(index); err != nil {
		return nil, fmt.Errorf("delete_element: %w", err)
	}
	if err := s.commit(ctx, "delete_element"); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Deleted element %s", e.ID)), nil
}

func (s *Server) handleArrangeElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.pull(ctx); err != nil {
		return nil, err
	}
	index, e, err := s.elementIndex(req.GetArguments())
	if err != nil {
		return nil, err
	}
	switch to := req.GetString("to", ""); to {
	case "front":
		err = s.ws.BringToFront(index)
	case "back":
		err = s.ws.SendToBack(index)
	default:
		return nil, fmt.Errorf("arrange_element: to must be front or back, got %q", to)
	}
	if err != nil {
		return nil, fmt.Errorf("arrange_element: %w", err)
	}
	if err := s.commit(ctx, "arrange_element"); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Moved element %s to the %s", e.ID, req.GetString("to", ""))), nil
}

func (s *Server) handleClearInk(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.pull(ctx); err != nil {
		return nil, err
	}
	if len(s.ws.Frame().Ink) == 0 {
		return textResult("The page has no ink"), nil
	}
	approved, err := s.approval.Request("clear_ink", "Erase all ink on the open page")
	if err != nil || !approved {
		return textResult("Action rejected by user"), nil
	}
	s.ws.ClearInk()
	if err := s.commit(ctx, "clear_ink"); err != nil {
		return nil, err
	}
	return textResult("Ink cleared"), nil
}

func (s *Server) handleUndo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.pull(ctx); err != nil {
		return nil, err
	}
	if !s.ws.Undo() {
		return textResult("Nothing to undo"), nil
	}
	if err := s.commit(ctx, "undo"); err != nil {
		return nil, err
	}
	return textResult("Undone"), nil
}

func (s *Server) handleRedo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.pull(ctx); err != nil {
		return nil, err
	}
	if !s.ws.Redo() {
		return textResult("Nothing to redo"), nil
	}
	if err := s.commit(ctx, "redo"); err != nil {
		return nil, err
	}
	return textResult("Redone"), nil
}
