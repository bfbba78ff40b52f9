package service_test

import (
	"context"
	"path/filepath"
	"testing"

	"canvasnotes/internal/service"
	"canvasnotes/internal/storage"
)

func TestWindowSettings(t *testing.T) {
	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "notes.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()
	svc := service.NewWindowSettingsService(store)

	if got := svc.LoadWindowSize(ctx); got != (service.WindowSize{Width: 1280, Height: 800}) {
		t.Errorf("defaults = %+v", got)
	}

	if err := svc.SaveWindowSize(ctx, 1600, 1000); err != nil {
		t.Fatal(err)
	}
	if got := svc.LoadWindowSize(ctx); got != (service.WindowSize{Width: 1600, Height: 1000}) {
		t.Errorf("saved = %+v", got)
	}

	// too small to be usable
	svc.SaveWindowSize(ctx, 300, 200)
	if got := svc.LoadWindowSize(ctx); got != (service.WindowSize{Width: 1280, Height: 800}) {
		t.Errorf("undersized = %+v", got)
	}
}

func TestWindowSettings_NoStore(t *testing.T) {
	svc := service.NewWindowSettingsService(nil)
	if got := svc.LoadWindowSize(context.Background()); got.Width != 1280 {
		t.Errorf("size = %+v", got)
	}
	if err := svc.SaveWindowSize(context.Background(), 1000, 700); err == nil {
		t.Error("expected error without a store")
	}
}
