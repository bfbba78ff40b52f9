package app

import (
	"context"
	"fmt"

	"canvasnotes/internal/config"
	"canvasnotes/internal/logger"
	"canvasnotes/internal/secret"
	"canvasnotes/internal/service"
	"canvasnotes/internal/storage"
)

// backend is what both the desktop app and the standalone MCP server run on.
type backend struct {
	cfg   config.Config
	store storage.Store
	ws    *service.WorkspaceService
}

// boot loads configuration, opens the store and the last saved notebook.
func boot(ctx context.Context, emitter service.EventEmitter, clip service.Clipboard) (*backend, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.LogLevel); err != nil {
		return nil, err
	}
	if err := cfg.ResolvePassword(secret.New()); err != nil {
		logger.Warn("database password not resolved", map[string]any{"error": err.Error()})
	}

	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	ws := service.NewWorkspaceService(service.WorkspaceOptions{
		Store:        store,
		Emitter:      emitter,
		Clipboard:    clip,
		HistoryLimit: cfg.HistoryLimit,
		StrokeWidth:  cfg.StrokeWidth,
		StrokeColor:  cfg.StrokeColor,
	})
	if err := ws.Open(ctx); err != nil {
		store.Close()
		return nil, err
	}
	logger.Info("workspace ready", map[string]any{"driver": string(cfg.Storage.Driver), "dataDir": cfg.DataDir})
	return &backend{cfg: cfg, store: store, ws: ws}, nil
}

// close flushes the notebook and releases the store.
func (r *backend) close(ctx context.Context) {
	if err := r.ws.Close(ctx); err != nil {
		logger.Error("final save failed", err)
	}
	if err := r.store.Close(); err != nil {
		logger.Error("close store", err)
	}
}
