package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"canvasnotes/internal/domain"
	"canvasnotes/internal/logger"
	"canvasnotes/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// EventElementsChanged tells the desktop app an agent edited the canvas.
const EventElementsChanged = "mcp:elements-changed"

// Server is the MCP server for the notes canvas.
// It exposes tools, resources, and prompts so AI agents can read and edit the open notebook.
type Server struct {
	mcp      *server.MCPServer
	http     *server.StreamableHTTPServer
	emitter  service.EventEmitter
	approval *ApprovalQueue
	layout   *LayoutEngine
	ws       *service.WorkspaceService
}

// Deps holds all dependencies passed from the App layer to the MCP server.
type Deps struct {
	Emitter   service.EventEmitter
	Workspace *service.WorkspaceService
	// Approvals, when set, routes approvals through the store so a desktop
	// app in another process can answer them (standalone mode).
	Approvals domain.ApprovalStore
}

// New creates and configures a new MCP server with all tools and resources.
func New(ctx context.Context, deps Deps) *Server {
	if deps.Emitter == nil {
		deps.Emitter = service.NopEmitter{}
	}
	approval := NewApprovalQueue(ctx, deps.Emitter)
	if deps.Approvals != nil {
		approval.SetStore(deps.Approvals)
	}
	s := &Server{
		emitter:  deps.Emitter,
		approval: approval,
		layout:   NewLayoutEngine(),
		ws:       deps.Workspace,
	}

	s.mcp = server.NewMCPServer(
		"canvasnotes-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerNavigationTools()
	s.registerElementTools()
	s.registerExportTools()
	s.registerResources()
	s.registerPrompts()

	s.http = server.NewStreamableHTTPServer(s.mcp)
	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	logger.Info("starting MCP stdio server")
	return server.ServeStdio(s.mcp)
}

// ListenAndServe serves MCP over streamable HTTP at addr (path /mcp) until
// Shutdown. The desktop app runs it this way so agents edit the open window.
func (s *Server) ListenAndServe(addr string) error {
	logger.Info("starting MCP http server", map[string]any{"addr": addr})
	return s.http.Start(addr)
}

// Shutdown stops a server started with ListenAndServe.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Approve answers an in-process approval request. It reports false when no
// request with that id is waiting here.
func (s *Server) Approve(actionID string) bool {
	return s.approval.Approve(actionID)
}

// Reject is Approve's counterpart.
func (s *Server) Reject(actionID string) bool {
	return s.approval.Reject(actionID)
}

// ── Helpers ────────────────────────────────────────────────

// pull loads edits another process saved since the last tool call.
func (s *Server) pull(ctx context.Context) error {
	if err := s.ws.Sync(ctx); err != nil {
		return fmt.Errorf("sync workspace: %w", err)
	}
	return nil
}

// commit saves after a mutating tool and notifies the frontend.
func (s *Server) commit(ctx context.Context, tool string) error {
	if err := s.ws.Save(ctx); err != nil {
		return fmt.Errorf("%s: %w", tool, err)
	}
	s.emitter.Emit(ctx, EventElementsChanged, map[string]string{"tool": tool})
	return nil
}

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

// elementIndex resolves an element id on the current page.
func (s *Server) elementIndex(args map[string]any) (int, domain.Element, error) {
	id, _ := args["elementId"].(string)
	if id == "" {
		return -1, domain.Element{}, fmt.Errorf("elementId is required")
	}
	for i, e := range s.ws.Elements() {
		if e.ID == id {
			return i, e, nil
		}
	}
	return -1, domain.Element{}, fmt.Errorf("element %s not found on the current page", id)
}

func boolPtr(v bool) *bool { return &v }
