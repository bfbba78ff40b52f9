package app

import (
	"fmt"
	"os"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"canvasnotes/internal/document"
	"canvasnotes/internal/render"
	"canvasnotes/internal/service"
)

// ============================================================
// Notebook structure
// ============================================================

func (a *App) GetOutline() service.Outline {
	return a.ws.Outline()
}

func (a *App) AddSection() error {
	return a.ws.AddSection()
}

func (a *App) AddPage(section int) error {
	return a.ws.AddPage(section)
}

func (a *App) SelectPage(section, page int) error {
	return a.ws.SelectPage(section, page)
}

func (a *App) RenameItem(kind string, index int, name string) error {
	return a.ws.RenameItem(document.ItemKind(kind), index, name)
}

func (a *App) DeleteItem(kind string, index int) error {
	return a.ws.DeleteItem(document.ItemKind(kind), index)
}

func (a *App) NewNotebook() error {
	return a.ws.NewNotebook()
}

// SaveNotebook writes the notebook to the store now.
func (a *App) SaveNotebook() error {
	return a.ws.Save(a.ctx)
}

// ============================================================
// Import / Export
// ============================================================

var notebookFilter = wailsRuntime.FileFilter{DisplayName: "Notebook (*.json)", Pattern: "*.json"}

// ExportNotebook saves the notebook as a JSON file and keeps watching it,
// so edits made to the file elsewhere come back into the app.
func (a *App) ExportNotebook() (*FileResult, error) {
	name, _, err := a.ws.ExportJSON()
	if err != nil {
		return nil, err
	}
	path, err := wailsRuntime.SaveFileDialog(a.ctx, wailsRuntime.SaveDialogOptions{
		Title:           "Export Notebook",
		DefaultFilename: name,
		Filters:         []wailsRuntime.FileFilter{notebookFilter},
	})
	if err != nil || path == "" {
		return nil, err
	}

	data, err := a.ws.ExportFile(path)
	if err != nil {
		return nil, err
	}
	a.watchFile(path, data)
	return &FileResult{Path: path, Bytes: len(data)}, nil
}

// ImportNotebook replaces the open notebook with one read from a file.
// A file that fails validation leaves the open notebook untouched.
func (a *App) ImportNotebook() (*FileResult, error) {
	path, err := wailsRuntime.OpenFileDialog(a.ctx, wailsRuntime.OpenDialogOptions{
		Title:   "Import Notebook",
		Filters: []wailsRuntime.FileFilter{notebookFilter},
	})
	if err != nil || path == "" {
		return nil, err
	}
	if err := a.ws.ImportFile(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	a.watchFile(path, data)
	return &FileResult{Path: path, Bytes: len(data)}, nil
}

// ExportPNG renders the current page to a PNG file.
func (a *App) ExportPNG(scale float64) (*FileResult, error) {
	data, err := a.ws.ExportPNG(render.Options{Scale: scale})
	if err != nil {
		return nil, err
	}
	o := a.ws.Outline()
	path, err := wailsRuntime.SaveFileDialog(a.ctx, wailsRuntime.SaveDialogOptions{
		Title:           "Export Page as PNG",
		DefaultFilename: o.Sections[o.Section].Pages[o.Page] + ".png",
		Filters:         []wailsRuntime.FileFilter{{DisplayName: "PNG (*.png)", Pattern: "*.png"}},
	})
	if err != nil || path == "" {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write png: %w", err)
	}
	return &FileResult{Path: path, Bytes: len(data)}, nil
}

func (a *App) watchFile(path string, data []byte) {
	if a.files == nil {
		return
	}
	if err := a.files.Watch(path); err != nil {
		wailsRuntime.LogErrorf(a.ctx, "Watch %s: %v", path, err)
		return
	}
	a.files.Remember(path, data)
}
