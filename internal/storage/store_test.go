package storage_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"canvasnotes/internal/domain"
	"canvasnotes/internal/storage"
)

func newStore(t *testing.T) *storage.SQLStore {
	t.Helper()
	s, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "notes.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_DefaultsToSQLiteInDataDir(t *testing.T) {
	dir := t.TempDir()
	s, err := storage.Open(context.Background(), storage.Config{DataDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, ok := s.(*storage.SQLStore); !ok {
		t.Fatalf("store = %T, want *SQLStore", s)
	}

	if _, err := storage.Open(context.Background(), storage.Config{Driver: "oracle"}); err == nil {
		t.Fatal("unknown driver should fail")
	}
}

func TestNotebook_SaveAndLoad(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	nb := domain.NewNotebook("Physics")
	nb.ID = ""
	page := &nb.Sections[0].Pages[0]
	page.Elements = append(page.Elements, domain.NewText(10, 20))

	if _, err := s.SaveNotebook(ctx, &nb); err != nil {
		t.Fatal(err)
	}
	if nb.ID == "" {
		t.Fatal("SaveNotebook should assign an id")
	}

	got, err := s.GetNotebook(ctx, nb.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != nb.ID || got.Name != "Physics" {
		t.Errorf("got %s/%q", got.ID, got.Name)
	}
	if n := len(got.Sections[0].Pages[0].Elements); n != 1 {
		t.Errorf("elements = %d, want 1", n)
	}

	latest, err := s.LatestNotebook(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if latest.ID != nb.ID {
		t.Errorf("latest = %s", latest.ID)
	}
}

func TestNotebook_RevisionGrowsPerSave(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	nb := domain.NewNotebook("n")
	for want := int64(1); want <= 3; want++ {
		saved, err := s.SaveNotebook(ctx, &nb)
		if err != nil {
			t.Fatal(err)
		}
		if saved.Revision != want || saved.ID != nb.ID || saved.Name != "n" {
			t.Errorf("save %d returned %+v", want, saved)
		}
	}
	info, err := s.StatNotebook(ctx, nb.ID)
	if err != nil {
		t.Fatal(err)
	}
	if info.Revision != 3 {
		t.Errorf("revision = %d, want 3", info.Revision)
	}
	if info.UpdatedAt.IsZero() {
		t.Error("updated_at not set")
	}
}

func TestNotebook_SaveReturnsStoredRow(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	nb := domain.NewNotebook("n")
	saved, err := s.SaveNotebook(ctx, &nb)
	if err != nil {
		t.Fatal(err)
	}
	info, err := s.StatNotebook(ctx, nb.ID)
	if err != nil {
		t.Fatal(err)
	}
	if saved.Revision != info.Revision || !saved.UpdatedAt.Equal(info.UpdatedAt) {
		t.Errorf("save returned %+v, stat has %+v", saved, info)
	}
}

func TestNotebook_ListAndDelete(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	a := domain.NewNotebook("a")
	b := domain.NewNotebook("b")
	if _, err := s.SaveNotebook(ctx, &a); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := s.SaveNotebook(ctx, &b); err != nil {
		t.Fatal(err)
	}

	list, err := s.ListNotebooks(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Name != "b" {
		t.Fatalf("list = %+v, want b first", list)
	}

	if err := s.DeleteNotebook(ctx, b.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetNotebook(ctx, b.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("deleted notebook: err = %v", err)
	}
	if _, err := s.StatNotebook(ctx, b.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("stat deleted: err = %v", err)
	}
}

func TestLatestNotebook_Empty(t *testing.T) {
	s := newStore(t)
	if _, err := s.LatestNotebook(context.Background()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSettings(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if _, err := s.GetSetting(ctx, "window_width"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing key: err = %v", err)
	}
	if err := s.SetSetting(ctx, "window_width", "1024"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetSetting(ctx, "window_width", "1440"); err != nil {
		t.Fatal(err)
	}
	v, err := s.GetSetting(ctx, "window_width")
	if err != nil || v != "1440" {
		t.Fatalf("value = %q, %v", v, err)
	}
}

func TestApprovals(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	a := domain.Approval{ID: "ap1", Tool: "delete_element", Description: "Delete element 2", Metadata: `{"index":2}`}
	if err := s.CreateApproval(ctx, a); err != nil {
		t.Fatal(err)
	}
	pending, err := s.PendingApprovals(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].Tool != "delete_element" || pending[0].Metadata != `{"index":2}` {
		t.Fatalf("pending = %+v", pending)
	}

	if err := s.ResolveApproval(ctx, "ap1", true); err != nil {
		t.Fatal(err)
	}
	status, err := s.ApprovalStatus(ctx, "ap1")
	if err != nil || status != domain.ApprovalApproved {
		t.Fatalf("status = %q, %v", status, err)
	}

	// already resolved: a late reject is ignored
	if err := s.ResolveApproval(ctx, "ap1", false); err != nil {
		t.Fatal(err)
	}
	if status, _ := s.ApprovalStatus(ctx, "ap1"); status != domain.ApprovalApproved {
		t.Errorf("status changed after resolution: %q", status)
	}

	if pending, _ := s.PendingApprovals(ctx); len(pending) != 0 {
		t.Errorf("pending after resolve = %d", len(pending))
	}
	if err := s.DeleteApproval(ctx, "ap1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ApprovalStatus(ctx, "ap1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("deleted approval: err = %v", err)
	}
}
