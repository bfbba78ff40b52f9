package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"canvasnotes/internal/logger"
	mcpserver "canvasnotes/internal/mcp"
	"canvasnotes/internal/service"
)

// ServeMCP runs the app as a standalone MCP server on stdin/stdout with no GUI.
// It opens the same store as the desktop app and runs until interrupted; a
// running desktop app picks up its saves and answers its approvals.
func ServeMCP() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// stdout carries the protocol
	logger.SetOutput(os.Stderr)

	rt, err := boot(ctx, service.NopEmitter{}, &service.MemoryClipboard{})
	if err != nil {
		logger.Error("failed to open workspace", err)
		os.Exit(1)
	}
	defer rt.close(context.Background())

	mcpSrv := mcpserver.New(ctx, mcpserver.Deps{
		Emitter:   service.NopEmitter{},
		Workspace: rt.ws,
		Approvals: rt.store, // approvals go through the store to the desktop app
	})

	if err := mcpSrv.ServeStdio(); err != nil {
		logger.Error("MCP server error", err)
	}
}
