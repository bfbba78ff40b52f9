package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"canvasnotes/internal/canvas"
	"canvasnotes/internal/domain"
	"canvasnotes/internal/geometry"
	"canvasnotes/internal/render"
	"canvasnotes/internal/service"
)

// ============================================================
// Canvas input
// ============================================================

// HandleEvent receives every pointer, wheel, touch and key event from the
// canvas container, in screen coordinates.
func (a *App) HandleEvent(ev canvas.Event) error {
	return a.ws.HandleEvent(ev)
}

// GetFrame returns the full current frame, for the first paint.
func (a *App) GetFrame() service.Frame {
	return a.ws.Frame()
}

func (a *App) ResizeView(width, height float64) {
	a.ws.ResizeView(width, height)
}

func (a *App) ZoomIn() { a.ws.ZoomBy(1) }
func (a *App) ZoomOut() { a.ws.ZoomBy(-1) }

// ============================================================
// Tools
// ============================================================

func (a *App) SetTool(tool string) error {
	return a.ws.SetTool(canvas.Tool(tool))
}

func (a *App) SetShape(shape string) error {
	return a.ws.SetShape(domain.ShapeKind(shape))
}

func (a *App) SetStroke(color string, width float64) {
	a.ws.SetStroke(color, width)
}

// ============================================================
// Elements
// ============================================================

func (a *App) UpdateElement(index int, patch domain.Patch) error {
	return a.ws.UpdateElement(index, patch)
}

func (a *App) DeleteSelected() error {
	return a.ws.DeleteSelected()
}

func (a *App) SelectElement(index int) error {
	return a.ws.Select(index)
}

func (a *App) DuplicateElement(index int) (int, error) {
	return a.ws.Duplicate(index)
}

func (a *App) BringToFront(index int) error {
	return a.ws.BringToFront(index)
}

func (a *App) SendToBack(index int) error {
	return a.ws.SendToBack(index)
}

func (a *App) ClearInk() {
	a.ws.ClearInk()
}

// ============================================================
// Images
// ============================================================

var imageFilter = wailsRuntime.FileFilter{
	DisplayName: "Images (*.png, *.jpg, *.gif, *.webp)",
	Pattern:     "*.png;*.jpg;*.jpeg;*.gif;*.webp",
}

// PickImage asks for an image file and inserts it centred on the canvas
// point (x, y). It answers the image tool's "image:request" event.
// Returns -1 when the dialog is cancelled.
func (a *App) PickImage(x, y float64) (int, error) {
	path, err := wailsRuntime.OpenFileDialog(a.ctx, wailsRuntime.OpenDialogOptions{
		Title:   "Insert Image",
		Filters: []wailsRuntime.FileFilter{imageFilter},
	})
	if err != nil || path == "" {
		return -1, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return -1, fmt.Errorf("read image: %w", err)
	}
	return a.InsertImageData(x, y, render.DataURI(imageMIME(path), data))
}

// InsertImageData inserts an image the frontend already holds as a data
// URI, e.g. from a drop or paste.
func (a *App) InsertImageData(x, y float64, dataURI string) (int, error) {
	return a.ws.InsertImage(geometry.Point{X: x, Y: y}, dataURI)
}

func (a *App) ResetImage(index int) error {
	return a.ws.ResetImage(index)
}

func imageMIME(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}
