package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerResources() {
	// ── notes://notebook ───────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		"notes://notebook",
		"Open Notebook",
		mcp.WithResourceDescription("The whole notebook in notebook-file JSON"),
		mcp.WithMIMEType("application/json"),
	), s.handleNotebookResource)

	// ── notes://outline ────────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		"notes://outline",
		"Notebook Outline",
		mcp.WithMIMEType("application/json"),
	), s.handleOutlineResource)

	// ── notes://section/{section}/page/{page} ──────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"notes://section/{section}/page/{page}",
			"Elements on a Page",
		),
		s.handlePageResource,
	)
}

func (s *Server) handleNotebookResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	if err := s.pull(ctx); err != nil {
		return nil, err
	}
	_, data, err := s.ws.ExportJSON()
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "notes://notebook",
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleOutlineResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	if err := s.pull(ctx); err != nil {
		return nil, err
	}
	data, _ := json.MarshalIndent(s.ws.Outline(), "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "notes://outline",
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handlePageResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	section, page, ok := parsePageURI(uri)
	if !ok {
		return nil, fmt.Errorf("could not parse section and page from URI: %s", uri)
	}
	if err := s.pull(ctx); err != nil {
		return nil, err
	}

	_, data, err := s.ws.ExportJSON()
	if err != nil {
		return nil, err
	}
	var nb struct {
		Sections []struct {
			Pages []struct {
				Elements json.RawMessage `json:"elements"`
			} `json:"pages"`
		} `json:"sections"`
	}
	if err := json.Unmarshal(data, &nb); err != nil {
		return nil, err
	}
	if section >= len(nb.Sections) || page >= len(nb.Sections[section].Pages) {
		return nil, fmt.Errorf("no page %d in section %d", page, section)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(nb.Sections[section].Pages[page].Elements),
		},
	}, nil
}

// parsePageURI extracts indices from "notes://section/{section}/page/{page}".
func parsePageURI(uri string) (section, page int, ok bool) {
	rest, found := strings.CutPrefix(uri, "notes://section/")
	if !found {
		return 0, 0, false
	}
	sec, pg, found := strings.Cut(rest, "/page/")
	if !found {
		return 0, 0, false
	}
	section, err1 := strconv.Atoi(sec)
	page, err2 := strconv.Atoi(pg)
	if err1 != nil || err2 != nil || section < 0 || page < 0 {
		return 0, 0, false
	}
	return section, page, true
}
