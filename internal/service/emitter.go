package service

import (
	"context"
	"sync"
)

// ─────────────────────────────────────────────────────────────
// EventEmitter: decouples services from wailsRuntime
// ─────────────────────────────────────────────────────────────

// EventEmitter is an interface for emitting events to the frontend.
// The App struct implements this by delegating to wailsRuntime.EventsEmit;
// the standalone MCP server passes a no-op.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// Events emitted by WorkspaceService.
const (
	EventOutlineChanged   = "notebook:outline"
	EventNotebookSaved    = "notebook:saved"
	EventNotebookReloaded = "notebook:reloaded"
	EventInkSegment       = "ink:segment"
	EventImageRequest     = "image:request"
	EventError            = "notebook:error"
)

// MockEmitter is a test-friendly EventEmitter that records all calls.
// Safe for use from the autosave goroutine.
type MockEmitter struct {
	mu     sync.Mutex
	Events []EmittedEvent
}

// EmittedEvent holds a single recorded emission for test assertions.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}

// Named returns the recorded emissions of one event.
func (m *MockEmitter) Named(event string) []EmittedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []EmittedEvent
	for _, e := range m.Events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

// NopEmitter drops every event.
type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, string, any) {}
