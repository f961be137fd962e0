// Package prompts implements MCP prompts for the advisory tools.
//
// MCP prompts are user-triggered workflows (like slash commands). Each
// advisory tool gets one prompt named after its command (plan, consult,
// review, ...) whose message asks the host to call the tool with the
// values the user supplied. Unlike tools (which the AI calls), prompts
// are initiated by the user.
package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/gemini-advisor/internal/registry"
)

// CommandPrompt is the slash-command form of one advisory tool.
type CommandPrompt struct {
	def registry.ToolDefinition
}

// NewCommandPrompt creates a CommandPrompt for def.
func NewCommandPrompt(def registry.ToolDefinition) *CommandPrompt {
	return &CommandPrompt{def: def}
}

// Definition returns the MCP prompt definition for registration.
func (p *CommandPrompt) Definition() mcp.Prompt {
	cmd := p.def.Command
	opts := []mcp.PromptOption{
		mcp.WithPromptDescription(fmt.Sprintf("%s\n\nUsage: %s\nExample: %s", cmd.Description, cmd.Usage, cmd.Example)),
	}
	for _, param := range p.def.Parameters {
		argOpts := []mcp.ArgumentOption{mcp.ArgumentDescription(param.Description)}
		if param.Required {
			argOpts = append(argOpts, mcp.RequiredArgument())
		}
		opts = append(opts, mcp.WithArgument(param.Name, argOpts...))
	}
	return mcp.NewPrompt(cmd.Name, opts...)
}

// Handle processes the prompt request. Missing required arguments are an
// error; missing optional ones are left out of the message.
func (p *CommandPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Please call the `%s` tool with:\n", p.def.Name)

	for _, param := range p.def.Parameters {
		value := strings.TrimSpace(req.Params.Arguments[param.Name])
		if value == "" {
			if param.Required {
				return nil, fmt.Errorf("prompt %s: argument %q is required", p.def.Command.Name, param.Name)
			}
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", param.Name, value)
	}
	b.WriteString("\nPresent the advice it returns as-is, then tell me how you plan to apply it.")

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("/%s via %s", p.def.Command.Name, p.def.Name),
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.NewTextContent(b.String()),
			},
		},
	}, nil
}
