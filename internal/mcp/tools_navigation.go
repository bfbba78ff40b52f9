package mcpserver

import (
	"context"
	"fmt"

	"canvasnotes/internal/document"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerNavigationTools() {
	// ── list_sections ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_sections",
		mcp.WithDescription("List the notebook's sections with their pages, and which page is open"),
	), s.handleListSections)

	// ── list_pages ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List the pages of a section"),
		mcp.WithNumber("section",
			mcp.Description("Section index (optional, defaults to the open section)"),
		),
	), s.handleListPages)

	// ── select_page ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("select_page",
		mcp.WithDescription("Open a page. Element tools act on the open page."),
		mcp.WithNumber("section", mcp.Description("Section index"), mcp.Required()),
		mcp.WithNumber("page", mcp.Description("Page index within the section"), mcp.Required()),
	), s.handleSelectPage)

	// ── add_section / add_page ─────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_section",
		mcp.WithDescription("Append a new section holding one empty page, and open it"),
		mcp.WithString("name", mcp.Description("Section name (optional)")),
	), s.handleAddSection)

	s.mcp.AddTool(mcp.NewTool("add_page",
		mcp.WithDescription("Append a new page to a section, and open it"),
		mcp.WithNumber("section", mcp.Description("Section index (optional, defaults to the open section)")),
		mcp.WithString("name", mcp.Description("Page name (optional)")),
	), s.handleAddPage)

	// ── rename_item ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("rename_item",
		mcp.WithDescription("Rename the notebook, a section, or a page of the open section"),
		mcp.WithString("kind", mcp.Description("notebook, section or page"), mcp.Required()),
		mcp.WithNumber("index", mcp.Description("Index of the section or page (0 for the notebook)")),
		mcp.WithString("name", mcp.Description("New name"), mcp.Required()),
	), s.handleRenameItem)

	// ── delete_item ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_item",
		mcp.WithDescription("🛑 DESTRUCTIVE: Delete a section or a page of the open section. Requires user approval."),
		mcp.WithString("kind", mcp.Description("section or page"), mcp.Required()),
		mcp.WithNumber("index", mcp.Description("Index of the section or page"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteItem)
}

func (s *Server) handleListSections(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.pull(ctx); err != nil {
		return nil, err
	}
	return jsonResult(s.ws.Outline())
}

func (s *Server) handleListPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.pull(ctx); err != nil {
		return nil, err
	}
	outline := s.ws.Outline()
	section := req.GetInt("section", outline.Section)
	if section < 0 || section >= len(outline.Sections) {
		return nil, fmt.Errorf("section %d out of range (notebook has %d)", section, len(outline.Sections))
	}
	return jsonResult(outline.Sections[section])
}

func (s *Server) handleSelectPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.pull(ctx); err != nil {
		return nil, err
	}
	section := req.GetInt("section", -1)
	page := req.GetInt("page", -1)
	if err := s.ws.SelectPage(section, page); err != nil {
		return nil, fmt.Errorf("select page: %w", err)
	}
	o := s.ws.Outline()
	return textResult(fmt.Sprintf("Opened %q / %q", o.Sections[o.Section].Name, o.Sections[o.Section].Pages[o.Page])), nil
}

func (s *Server) handleAddSection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.pull(ctx); err != nil {
		return nil, err
	}
	if err := s.ws.AddSection(); err != nil {
		return nil, fmt.Errorf("add section: %w", err)
	}
	o := s.ws.Outline()
	if name := req.GetString("name", ""); name != "" {
		if err := s.ws.RenameItem(document.ItemSection, o.Section, name); err != nil {
			return nil, fmt.Errorf("add section: %w", err)
		}
	}
	if err := s.commit(ctx, "add_section"); err != nil {
		return nil, err
	}
	return jsonResult(s.ws.Outline())
}

func (s *Server) handleAddPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.pull(ctx); err != nil {
		return nil, err
	}
	section := req.GetInt("section", s.ws.Outline().Section)
	if err := s.ws.AddPage(section); err != nil {
		return nil, fmt.Errorf("add page: %w", err)
	}
	if name := req.GetString("name", ""); name != "" {
		if err := s.ws.RenameItem(document.ItemPage, s.ws.Outline().Page, name); err != nil {
			return nil, fmt.Errorf("add page: %w", err)
		}
	}
	if err := s.commit(ctx, "add_page"); err != nil {
		return nil, err
	}
	return jsonResult(s.ws.Outline())
}

func (s *Server) handleRenameItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.pull(ctx); err != nil {
		return nil, err
	}
	kind := document.ItemKind(req.GetString("kind", ""))
	if err := s.ws.RenameItem(kind, req.GetInt("index", 0), req.GetString("name", "")); err != nil {
		return nil, fmt.Errorf("rename %s: %w", kind, err)
	}
	if err := s.commit(ctx, "rename_item"); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Renamed %s", kind)), nil
}

func (s *Server) handleDeleteItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.pull(ctx); err != nil {
		return nil, err
	}
	kind := document.ItemKind(req.GetString("kind", ""))
	index := req.GetInt("index", -1)

	o := s.ws.Outline()
	var name string
	switch kind {
	case document.ItemSection:
		if index >= 0 && index < len(o.Sections) {
			name = o.Sections[index].Name
		}
	case document.ItemPage:
		if pages := o.Sections[o.Section].Pages; index >= 0 && index < len(pages) {
			name = pages[index]
		}
	default:
		return nil, fmt.Errorf("delete_item: kind must be section or page, got %q", kind)
	}
	if name == "" {
		return nil, fmt.Errorf("delete_item: %s %d not found", kind, index)
	}

	meta := fmt.Sprintf(`{"kind":%q,"index":%d}`, kind, index)
	approved, err := s.approval.Request("delete_item", fmt.Sprintf("Delete %s %q", kind, name), meta)
	if err != nil || !approved {
		return textResult("Action rejected by user"), nil
	}

	if err := s.ws.DeleteItem(kind, index); err != nil {
		return nil, fmt.Errorf("delete %s: %w", kind, err)
	}
	if err := s.commit(ctx, "delete_item"); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Deleted %s %q", kind, name)), nil
}
