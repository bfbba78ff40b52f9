package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("sketch_diagram",
		mcp.WithPromptDescription("Lay out a labelled box diagram on a fresh page"),
		mcp.WithArgument("subject",
			mcp.ArgumentDescription("What the diagram shows"),
			mcp.RequiredArgument(),
		),
	), s.handleSketchDiagramPrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("formula_sheet",
		mcp.WithPromptDescription("Write a page of formulas for a topic as math elements with short notes"),
		mcp.WithArgument("topic",
			mcp.ArgumentDescription("Topic of the formula sheet"),
			mcp.RequiredArgument(),
		),
	), s.handleFormulaSheetPrompt)
}

func (s *Server) handleSketchDiagramPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	subject := req.Params.Arguments["subject"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Diagram of: %s", subject),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Draw a diagram of "%s" in the notebook. Follow these steps:

1. Use add_page to create a page named after the subject (it opens automatically)
2. For each part, add a rectangle with add_element (type "shape") and a text element inside it with the part's name
3. Connect related parts with "line" shapes
4. Call render_page to check the result and fix overlaps with update_element

Omit x/y to let auto-layout place elements; give explicit positions when the arrangement matters.`, subject),
				},
			},
		},
	}, nil
}

func (s *Server) handleFormulaSheetPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	topic := req.Params.Arguments["topic"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Formula sheet: %s", topic),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Create a formula sheet about "%s". Follow these steps:

1. Use add_page to create a page for the topic
2. Add a text element with a heading: "<h1>%s</h1>"
3. For each formula, add a math element (type "math", latex set) and a text element beside it explaining the symbols
4. Use list_elements to confirm every formula rendered; rewrite any whose LaTeX fails`, topic, topic),
				},
			},
		},
	}, nil
}
