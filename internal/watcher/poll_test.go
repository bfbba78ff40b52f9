package watcher_test

import (
	"context"
	"path/filepath"
	"testing"

	"canvasnotes/internal/domain"
	"canvasnotes/internal/storage"
	"canvasnotes/internal/watcher"
)

func TestStorePoller_NotebookRevision(t *testing.T) {
	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "notes.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()

	nb := domain.NewNotebook("n")
	if _, err := store.SaveNotebook(ctx, &nb); err != nil {
		t.Fatal(err)
	}

	var seen []int64
	p := watcher.NewStorePoller(store, 0, watcher.Handlers{
		NotebookChanged: func(info domain.NotebookInfo) { seen = append(seen, info.Revision) },
	})
	p.Track(nb.ID, 1)

	p.Check(ctx)
	if len(seen) != 0 {
		t.Fatalf("no change yet, got %v", seen)
	}

	if _, err := store.SaveNotebook(ctx, &nb); err != nil {
		t.Fatal(err)
	}
	p.Check(ctx)
	p.Check(ctx)
	if len(seen) != 1 || seen[0] != 2 {
		t.Fatalf("seen = %v, want [2]", seen)
	}
}

func TestStorePoller_Approvals(t *testing.T) {
	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "notes.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()

	var required, dismissed []string
	p := watcher.NewStorePoller(store, 0, watcher.Handlers{
		ApprovalRequired:  func(a domain.Approval) { required = append(required, a.ID) },
		ApprovalDismissed: func(id string) { dismissed = append(dismissed, id) },
	})

	store.CreateApproval(ctx, domain.Approval{ID: "a1", Tool: "delete_element"})
	p.Check(ctx)
	p.Check(ctx)
	if len(required) != 1 || required[0] != "a1" {
		t.Fatalf("required = %v, want [a1] exactly once", required)
	}

	store.ResolveApproval(ctx, "a1", false)
	p.Check(ctx)
	if len(dismissed) != 1 || dismissed[0] != "a1" {
		t.Fatalf("dismissed = %v", dismissed)
	}
}
