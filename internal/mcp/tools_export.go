package mcpserver

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"canvasnotes/internal/render"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerExportTools() {
	s.mcp.AddTool(mcp.NewTool("export_notebook",
		mcp.WithDescription("Export the whole notebook as notebook-file JSON"),
	), s.handleExportNotebook)

	s.mcp.AddTool(mcp.NewTool("render_page",
		mcp.WithDescription("Render the open page (elements and ink) as a PNG image so you can see the canvas"),
		mcp.WithNumber("scale", mcp.Description("Output pixels per canvas unit (optional, default 1)")),
	), s.handleRenderPage)
}

func (s *Server) handleExportNotebook(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.pull(ctx); err != nil {
		return nil, err
	}
	_, data, err := s.ws.ExportJSON()
	if err != nil {
		return nil, fmt.Errorf("export notebook: %w", err)
	}
	return textResult(string(data)), nil
}

func (s *Server) handleRenderPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.pull(ctx); err != nil {
		return nil, err
	}
	data, err := s.ws.ExportPNG(render.Options{Scale: req.GetFloat("scale", 1)})
	if errors.Is(err, render.ErrEmptyPage) {
		return textResult("The page is empty"), nil
	}
	if err != nil {
		return nil, err
	}
	o := s.ws.Outline()
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: fmt.Sprintf("%s / %s", o.Sections[o.Section].Name, o.Sections[o.Section].Pages[o.Page])},
			mcp.ImageContent{Type: "image", Data: base64.StdEncoding.EncodeToString(data), MIMEType: "image/png"},
		},
	}, nil
}
