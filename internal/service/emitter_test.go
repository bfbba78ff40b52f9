package service_test

import (
	"context"
	"testing"

	"canvasnotes/internal/service"
)

func TestMockEmitter_Named(t *testing.T) {
	m := &service.MockEmitter{}
	ctx := context.Background()

	m.Emit(ctx, service.EventNotebookSaved, map[string]string{"id": "nb"})
	m.Emit(ctx, service.EventOutlineChanged, nil)
	m.Emit(ctx, service.EventNotebookSaved, nil)

	if len(m.Events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(m.Events))
	}
	if got := m.Named(service.EventNotebookSaved); len(got) != 2 {
		t.Errorf("Named(saved) = %d events, want 2", len(got))
	}
	if got := m.Named("nope"); len(got) != 0 {
		t.Errorf("Named(nope) = %d events, want 0", len(got))
	}
}
