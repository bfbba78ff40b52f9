package service

import (
	"errors"
	"fmt"
	"os"

	"canvasnotes/internal/document"
	"canvasnotes/internal/domain"
	"canvasnotes/internal/logger"
	"canvasnotes/internal/notebookfile"
	"canvasnotes/internal/render"
)

// ErrBusy is returned when the same export is already running.
var ErrBusy = errors.New("operation already running")

// ── Notebook file ──────────────────────────────────────────

// ExportJSON encodes the whole notebook and suggests a file name for it.
func (s *WorkspaceService) ExportJSON() (filename string, data []byte, err error) {
	s.mu.Lock()
	nb := s.doc.Notebook()
	s.mu.Unlock()

	data, err = notebookfile.Marshal(nb)
	if err != nil {
		return "", nil, fmt.Errorf("export notebook: %w", err)
	}
	return notebookfile.ExportFileName(nb.Name), data, nil
}

// ExportFile writes the notebook to path and returns the bytes written.
func (s *WorkspaceService) ExportFile(path string) ([]byte, error) {
	_, data, err := s.ExportJSON()
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("export notebook: %w", err)
	}
	logger.Info("notebook exported", map[string]any{"path": path})
	return data, nil
}

// ImportJSON validates data and replaces the open notebook with it. An
// invalid document leaves the workspace untouched.
func (s *WorkspaceService) ImportJSON(data []byte) error {
	nb, err := notebookfile.Unmarshal(data)
	if err != nil {
		return fmt.Errorf("import notebook: %w", err)
	}
	return s.Replace(nb)
}

// ImportFile reads and imports a notebook file.
func (s *WorkspaceService) ImportFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("import notebook: %w", err)
	}
	if err := s.ImportJSON(data); err != nil {
		return err
	}
	logger.Info("notebook imported", map[string]any{"path": path})
	return nil
}

// Replace swaps in nb wholesale, resetting selection and history.
func (s *WorkspaceService) Replace(nb domain.Notebook) error {
	return s.structural(func(d *document.Document) error { return d.Replace(nb) })
}

// FileChanged takes a re-read notebook file from the watcher.
func (s *WorkspaceService) FileChanged(path string, nb domain.Notebook, err error) {
	if err != nil {
		logger.Error("watched notebook file is invalid", err, map[string]any{"path": path})
		s.emit(EventError, err.Error())
		return
	}
	if err := s.Replace(nb); err != nil {
		logger.Error("reload notebook file", err, map[string]any{"path": path})
		s.emit(EventError, err.Error())
		return
	}
	logger.Info("notebook file reloaded", map[string]any{"path": path})
}

// ── PNG ────────────────────────────────────────────────────

// ExportPNG renders the current page cropped to its content.
func (s *WorkspaceService) ExportPNG(opts render.Options) ([]byte, error) {
	s.mu.Lock()
	page := s.doc.Page().Clone()
	s.mu.Unlock()

	var data []byte
	var err error
	if !s.jobs.run(jobExportPNG, func() { data, err = render.PNG(page, opts) }) {
		return nil, ErrBusy
	}
	if err != nil {
		return nil, fmt.Errorf("export png: %w", err)
	}
	return data, nil
}
