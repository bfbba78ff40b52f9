package app

import (
	"context"
	"errors"
	"net/http"
	"os/exec"
	goruntime "runtime"
	"time"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"canvasnotes/internal/domain"
	mcpserver "canvasnotes/internal/mcp"
	"canvasnotes/internal/service"
	"canvasnotes/internal/watcher"
)

// EventPageRender carries a service.Frame to the canvas surface.
const EventPageRender = "page:render"

// frameInterval paces redraws at about 60 Hz.
const frameInterval = time.Second / 60

// App is the main Wails application struct.
// All exported methods are available as Wails bindings.
type App struct {
	ctx context.Context

	rt      *backend
	ws      *service.WorkspaceService
	windows *service.WindowSettingsService
	files   *watcher.FileWatcher
	poller  *watcher.StorePoller
	mcp     *mcpserver.Server

	stopFrames chan struct{}
	framesDone chan struct{}
}

// New creates a new App.
func New() *App {
	return &App{}
}

// appEmitter forwards service events to the frontend and keeps the store
// poller on the notebook the workspace last saved.
type appEmitter struct{ a *App }

func (e appEmitter) Emit(ctx context.Context, event string, data any) {
	if info, ok := data.(domain.NotebookInfo); ok && e.a.poller != nil {
		e.a.poller.Track(info.ID, info.Revision)
	}
	wailsRuntime.EventsEmit(ctx, event, data)
}

// Startup is called when the app starts.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx

	// macOS: disable "Press and Hold" accent popup so key repeat works in the WebView.
	if goruntime.GOOS == "darwin" {
		exec.Command("defaults", "write", "-g", "ApplePressAndHoldEnabled", "-bool", "false").Run()
	}

	rt, err := boot(ctx, appEmitter{a}, service.SystemClipboard{})
	if err != nil {
		wailsRuntime.LogFatalf(ctx, "Failed to open workspace: %v", err)
		return
	}
	a.rt = rt
	a.ws = rt.ws
	a.windows = service.NewWindowSettingsService(rt.store)

	size := a.windows.LoadWindowSize(ctx)
	wailsRuntime.WindowSetSize(ctx, size.Width, size.Height)

	// Changes and approvals written by a standalone MCP process
	a.poller = watcher.NewStorePoller(rt.store, watcher.DefaultPollInterval, watcher.Handlers{
		NotebookChanged: func(info domain.NotebookInfo) {
			if _, err := a.ws.ExternalChange(ctx, info); err != nil {
				wailsRuntime.LogErrorf(ctx, "Reload notebook: %v", err)
			}
		},
		ApprovalRequired: func(ap domain.Approval) {
			wailsRuntime.EventsEmit(ctx, mcpserver.EventApprovalRequired, ap)
		},
		ApprovalDismissed: func(id string) {
			wailsRuntime.EventsEmit(ctx, mcpserver.EventApprovalDismissed, map[string]string{"id": id})
		},
	})
	a.poller.Track(a.ws.NotebookID(), a.ws.StoreRevision())
	a.poller.Start(ctx)

	if err := a.ws.StartAutosave(rt.cfg.Autosave); err != nil {
		wailsRuntime.LogErrorf(ctx, "Autosave disabled: %v", err)
	}

	files, err := watcher.NewFileWatcher(watcher.DefaultSettle, a.ws.FileChanged)
	if err != nil {
		wailsRuntime.LogErrorf(ctx, "File watching disabled: %v", err)
	}
	a.files = files

	if rt.cfg.MCPAddr != "" {
		a.serveMCP(ctx, rt.cfg.MCPAddr)
	}

	a.startFrames()
}

// serveMCP lets agents edit the open window directly; approvals then go
// through the window's events instead of the store.
func (a *App) serveMCP(ctx context.Context, addr string) {
	a.mcp = mcpserver.New(ctx, mcpserver.Deps{Emitter: appEmitter{a}, Workspace: a.ws})
	go func() {
		if err := a.mcp.ListenAndServe(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			wailsRuntime.LogErrorf(ctx, "MCP server stopped: %v", err)
		}
	}()
}

// Shutdown is called when the app is closing.
func (a *App) Shutdown(ctx context.Context) {
	a.stopFramesLoop()
	if a.mcp != nil {
		if err := a.mcp.Shutdown(ctx); err != nil {
			wailsRuntime.LogErrorf(ctx, "Stop MCP server: %v", err)
		}
	}
	if a.poller != nil {
		a.poller.Stop()
	}
	if a.files != nil {
		a.files.Close()
	}
	if a.windows != nil {
		w, h := wailsRuntime.WindowGetSize(ctx)
		if err := a.windows.SaveWindowSize(ctx, w, h); err != nil {
			wailsRuntime.LogErrorf(ctx, "Save window size: %v", err)
		}
	}
	if a.rt != nil {
		a.rt.close(ctx)
	}
}

// startFrames pushes a frame to the surface whenever the document changed
// since the last tick, so bursts of input draw once.
func (a *App) startFrames() {
	a.stopFrames = make(chan struct{})
	a.framesDone = make(chan struct{})
	go func() {
		defer close(a.framesDone)
		ticker := time.NewTicker(frameInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if f, ok := a.ws.NextFrame(); ok {
					wailsRuntime.EventsEmit(a.ctx, EventPageRender, f)
				}
			case <-a.stopFrames:
				return
			case <-a.ctx.Done():
				return
			}
		}
	}()
}

func (a *App) stopFramesLoop() {
	if a.stopFrames == nil {
		return
	}
	close(a.stopFrames)
	<-a.framesDone
	a.stopFrames = nil
}

// ============================================================
// MCP approvals (in-process server first, then a standalone one via the store)
// ============================================================

func (a *App) ApproveMCPAction(id string) error {
	if a.mcp != nil && a.mcp.Approve(id) {
		return nil
	}
	return a.rt.store.ResolveApproval(a.ctx, id, true)
}

func (a *App) RejectMCPAction(id string) error {
	if a.mcp != nil && a.mcp.Reject(id) {
		return nil
	}
	return a.rt.store.ResolveApproval(a.ctx, id, false)
}

// PendingMCPActions lists approvals queued before the window opened.
func (a *App) PendingMCPActions() ([]domain.Approval, error) {
	return a.rt.store.PendingApprovals(a.ctx)
}
