package history_test

import (
	"testing"

	"canvasnotes/internal/domain"
	"canvasnotes/internal/history"
)

func pageWith(n int) *domain.Page {
	p := domain.NewPage("Page 1")
	for i := 0; i < n; i++ {
		e := domain.NewText(float64(i), 0)
		e.ID = string(rune('a' + i%26))
		p.Elements = append(p.Elements, e)
	}
	return &p
}

func TestClearSeedsBaseline(t *testing.T) {
	m := history.New(history.DefaultLimit)
	page := pageWith(2)
	m.Clear(page)

	if m.Len() != 1 || m.Cursor() != 0 {
		t.Fatalf("len=%d cursor=%d, want 1/0", m.Len(), m.Cursor())
	}
	if m.CanUndo() || m.CanRedo() {
		t.Error("fresh baseline should have nothing to undo or redo")
	}
	if m.Undo(page) {
		t.Error("undo at baseline should be a no-op")
	}
}

func TestCapEvictsOldest(t *testing.T) {
	m := history.New(50)
	page := pageWith(0)
	m.Clear(page)

	for i := 0; i < 60; i++ {
		page.Elements = append(page.Elements, domain.NewText(float64(i), 0))
		m.Save(page)
	}
	if m.Len() != 50 {
		t.Errorf("len = %d, want 50", m.Len())
	}
	if m.Cursor() != 49 {
		t.Errorf("cursor = %d, want 49", m.Cursor())
	}

	// Walking all the way back lands on the oldest kept snapshot (11 elements).
	for m.Undo(page) {
	}
	if len(page.Elements) != 11 {
		t.Errorf("oldest snapshot has %d elements, want 11", len(page.Elements))
	}
}

func TestLimits(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-3, history.DefaultLimit},
		{0, history.DefaultLimit},
		{1, 1},
		{2, 2},
		{120, 120},
	}
	for _, tt := range tests {
		if got := history.New(tt.in).Limit(); got != tt.want {
			t.Errorf("New(%d).Limit() = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestLimitOneKeepsOnlyCurrent(t *testing.T) {
	m := history.New(1)
	page := pageWith(0)
	m.Clear(page)

	page.Elements = append(page.Elements, domain.NewText(0, 0))
	m.Save(page)
	if m.Len() != 1 || m.Cursor() != 0 {
		t.Fatalf("len=%d cursor=%d, want 1/0", m.Len(), m.Cursor())
	}
	if m.Undo(page) {
		t.Error("undo with a limit of 1 should be a no-op")
	}
	if len(page.Elements) != 1 {
		t.Errorf("page changed: %d elements", len(page.Elements))
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	m := history.New(0)
	page := pageWith(1)
	m.Clear(page)

	page.Elements[0].X = 42
	m.Save(page)
	want := domain.CloneElements(page.Elements)

	if !m.Undo(page) {
		t.Fatal("expected undo")
	}
	if page.Elements[0].X != 0 {
		t.Errorf("after undo X = %v, want 0", page.Elements[0].X)
	}
	if !m.Redo(page) {
		t.Fatal("expected redo")
	}
	if len(page.Elements) != len(want) || page.Elements[0] != want[0] {
		t.Errorf("after redo = %+v, want %+v", page.Elements, want)
	}
	if m.Redo(page) {
		t.Error("redo at tip should be a no-op")
	}
}

func TestSaveAfterUndoDiscardsRedo(t *testing.T) {
	m := history.New(0)
	page := pageWith(0)
	m.Clear(page)

	page.Elements = append(page.Elements, domain.NewText(1, 1))
	m.Save(page)
	page.Elements = append(page.Elements, domain.NewText(2, 2))
	m.Save(page)

	m.Undo(page)
	if !m.CanRedo() {
		t.Fatal("expected redo to be available")
	}

	page.Elements[0].Y = 77
	m.Save(page)
	if m.CanRedo() {
		t.Error("save after undo must drop the redo branch")
	}
	if m.Len() != 3 {
		t.Errorf("len = %d, want 3", m.Len())
	}
}

func TestSnapshotsDoNotAlias(t *testing.T) {
	m := history.New(0)
	page := pageWith(1)
	m.Clear(page)

	page.Elements[0].X = 500 // mutate live page without saving
	m.Save(page)
	m.Undo(page)
	if page.Elements[0].X != 0 {
		t.Fatalf("baseline was mutated through the live page: X = %v", page.Elements[0].X)
	}

	page.Elements[0].X = -1 // mutate restored page
	m.Redo(page)
	m.Undo(page)
	if page.Elements[0].X != 0 {
		t.Errorf("restored page aliases stored snapshot: X = %v", page.Elements[0].X)
	}
}
