package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/gemini-advisor/internal/registry"
)

// HelpPrompt lists every advisory command with its usage.
type HelpPrompt struct {
	defs []registry.ToolDefinition
}

// NewHelpPrompt creates a HelpPrompt over defs.
func NewHelpPrompt(defs []registry.ToolDefinition) *HelpPrompt {
	return &HelpPrompt{defs: defs}
}

// Definition returns the MCP prompt definition for registration.
func (p *HelpPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("advisor-help",
		mcp.WithPromptDescription(
			"List the Gemini advisory commands, what each one is for, "+
				"and which model tier answers it.",
		),
	)
}

// Handle processes the advisor-help prompt request.
func (p *HelpPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	var b strings.Builder
	b.WriteString("These Gemini advisory commands are available:\n\n")
	for _, d := range p.defs {
		fmt.Fprintf(&b, "- `%s` (tool `%s`, %s model): %s\n  Example: %s\n",
			d.Command.Usage, d.Name, d.Tier, d.Description, d.Command.Example)
	}
	b.WriteString("\nAsk me which one fits what I am working on, then run it.")

	return &mcp.GetPromptResult{
		Description: "Gemini advisory commands",
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.NewTextContent(b.String()),
			},
		},
	}, nil
}
