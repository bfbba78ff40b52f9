package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"canvasnotes/internal/canvas"
	"canvasnotes/internal/document"
	"canvasnotes/internal/domain"
	"canvasnotes/internal/geometry"
	"canvasnotes/internal/logger"
	"canvasnotes/internal/mathrender"
)

// ─────────────────────────────────────────────────────────────
// WorkspaceService: the open notebook and its canvas
// ─────────────────────────────────────────────────────────────

// WorkspaceStore is the persistence the workspace needs.
type WorkspaceStore interface {
	domain.NotebookStore
	domain.SettingsStore
}

// WorkspaceOptions configures a WorkspaceService. Zero values get defaults.
type WorkspaceOptions struct {
	Store        WorkspaceStore // nil keeps the notebook in memory only
	Emitter      EventEmitter
	Clipboard    Clipboard
	Math         mathrender.Renderer
	HistoryLimit int
	StrokeWidth  float64
	StrokeColor  string
	ViewWidth    float64
	ViewHeight   float64
}

// WorkspaceService owns the open notebook and the interaction state. Every
// caller (desktop bindings, autosave, file watcher, MCP tools) goes through
// it, and it serialises them so the document core stays single-threaded.
type WorkspaceService struct {
	store     WorkspaceStore
	emitter   EventEmitter
	clipboard Clipboard
	math      mathrender.Renderer
	docOpts   []document.Option

	// saveMu orders saves against reloads from the store. Take it before mu.
	saveMu sync.Mutex

	mu       sync.Mutex
	ctx      context.Context
	doc      *document.Document
	state    canvas.State
	savedRev uint64 // doc revision last written to the store
	storeRev int64  // store revision last written or loaded
	recent   []string

	jobs     jobs
	autosave *cron.Cron
}

// NewWorkspaceService starts with a fresh default notebook. Call Open to
// load the last saved one.
func NewWorkspaceService(opts WorkspaceOptions) *WorkspaceService {
	if opts.Emitter == nil {
		opts.Emitter = NopEmitter{}
	}
	if opts.Clipboard == nil {
		opts.Clipboard = &MemoryClipboard{}
	}
	if opts.Math == nil {
		opts.Math = mathrender.Builtin{}
	}
	if opts.ViewWidth <= 0 || opts.ViewHeight <= 0 {
		opts.ViewWidth, opts.ViewHeight = defaultWindowWidth, defaultWindowHeight
	}

	s := &WorkspaceService{
		store:     opts.Store,
		emitter:   opts.Emitter,
		clipboard: opts.Clipboard,
		math:      opts.Math,
		docOpts:   []document.Option{document.WithHistoryLimit(opts.HistoryLimit)},
		ctx:       context.Background(),
	}
	s.doc = document.New(domain.NewNotebook(domain.DefaultNotebookName), s.docOpts...)
	s.savedRev = s.doc.Revision()

	s.state = canvas.NewState(geometry.NewViewport(opts.ViewWidth, opts.ViewHeight))
	if opts.StrokeWidth > 0 {
		s.state.StrokeWidth = opts.StrokeWidth
	}
	if opts.StrokeColor != "" {
		s.state.StrokeColor = opts.StrokeColor
	}
	return s
}

// Open loads the most recently saved notebook, or keeps the default one
// when the store is empty. ctx is also used for later event emission, so
// Open must run before the service is shared.
func (s *WorkspaceService) Open(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.ctx = ctx
	if s.store == nil {
		return nil
	}
	if err := s.loadRecent(ctx); err != nil {
		logger.Warn("load recent symbols", map[string]any{"error": err.Error()})
	}

	nb, err := s.store.LatestNotebook(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open workspace: %w", err)
	}
	info, err := s.store.StatNotebook(ctx, nb.ID)
	if err != nil {
		return fmt.Errorf("open workspace: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(*nb, info.Revision)
	logger.Info("notebook opened", map[string]any{"notebook": nb.Name, "revision": info.Revision})
	return nil
}

// load swaps in a notebook read from the store. Caller holds mu.
func (s *WorkspaceService) load(nb domain.Notebook, rev int64) {
	s.doc = document.New(nb, s.docOpts...)
	s.state = canvas.Cancel(s.state)
	s.state.Selected = -1
	s.savedRev = s.doc.Revision()
	s.storeRev = rev
}

func (s *WorkspaceService) emit(event string, data any) {
	s.emitter.Emit(s.ctx, event, data)
}

// ── Persistence ────────────────────────────────────────────

// Dirty reports whether there are edits not yet saved to the store.
func (s *WorkspaceService) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Revision() != s.savedRev
}

// Save writes the notebook to the store if it changed since the last save.
func (s *WorkspaceService) Save(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	rev := s.doc.Revision()
	if rev == s.savedRev {
		s.mu.Unlock()
		return nil
	}
	nb := s.doc.Notebook()
	s.mu.Unlock()

	info, err := s.store.SaveNotebook(ctx, &nb)
	if err != nil {
		return fmt.Errorf("save notebook: %w", err)
	}

	s.mu.Lock()
	s.savedRev = rev
	s.storeRev = info.Revision
	s.mu.Unlock()

	logger.Debug("notebook saved", map[string]any{"notebook": nb.ID, "revision": info.Revision})
	s.emit(EventNotebookSaved, info)
	return nil
}

// NotebookID is the id the notebook is stored under.
func (s *WorkspaceService) NotebookID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.ID()
}

// StoreRevision is the store revision this workspace last wrote or loaded.
func (s *WorkspaceService) StoreRevision() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storeRev
}

// ExternalChange reloads the notebook after another process saved it.
// It returns false when the revision is one this workspace already has,
// or when local edits are unsaved; those win at the next save.
func (s *WorkspaceService) ExternalChange(ctx context.Context, info domain.NotebookInfo) (bool, error) {
	if s.store == nil {
		return false, nil
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	id := s.doc.ID()
	stale := info.ID != id || info.Revision <= s.storeRev
	unsaved := s.doc.Revision() != s.savedRev
	s.mu.Unlock()
	if stale {
		return false, nil
	}
	if unsaved {
		logger.Warn("external change ignored, local edits pending", map[string]any{"notebook": id, "revision": info.Revision})
		return false, nil
	}

	nb, err := s.store.GetNotebook(ctx, id)
	if err != nil {
		return false, fmt.Errorf("reload notebook: %w", err)
	}

	s.mu.Lock()
	section, page := s.doc.Current()
	s.load(*nb, info.Revision)
	// stay on the same page when it still exists
	s.doc.SelectPage(section, page)
	s.savedRev = s.doc.Revision()
	s.mu.Unlock()

	logger.Info("notebook reloaded", map[string]any{"notebook": id, "revision": info.Revision})
	s.emit(EventNotebookReloaded, info)
	return true, nil
}

// Sync pulls the stored notebook if another process saved a newer one.
func (s *WorkspaceService) Sync(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	id := s.NotebookID()
	info, err := s.store.StatNotebook(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("sync notebook: %w", err)
	}
	_, err = s.ExternalChange(ctx, info)
	return err
}

// ── Autosave ───────────────────────────────────────────────

// StartAutosave saves on the robfig/cron schedule spec (e.g. "@every 30s").
// An empty spec leaves autosave off.
func (s *WorkspaceService) StartAutosave(spec string) error {
	if spec == "" || s.store == nil {
		return nil
	}
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		s.jobs.run(jobAutosave, func() {
			if err := s.Save(s.ctx); err != nil {
				logger.Error("autosave failed", err)
				s.emit(EventError, err.Error())
			}
		})
	})
	if err != nil {
		return fmt.Errorf("autosave schedule %q: %w", spec, err)
	}
	c.Start()

	s.mu.Lock()
	s.autosave = c
	s.mu.Unlock()
	logger.Info("autosave scheduled", map[string]any{"spec": spec})
	return nil
}

// Close stops autosave, waits for running jobs and saves once more.
func (s *WorkspaceService) Close(ctx context.Context) error {
	s.mu.Lock()
	c := s.autosave
	s.autosave = nil
	s.mu.Unlock()
	if c != nil {
		stopped := c.Stop()
		select {
		case <-stopped.Done():
		case <-ctx.Done():
		}
	}
	s.jobs.wait(ctx)
	return s.Save(ctx)
}
