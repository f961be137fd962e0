// Package resources implements read-only MCP resources for the advisor.
//
// Resources provide data that the host can consume for context. They use
// URI-based addressing (advisor://...) following MCP conventions.
package resources

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/gemini-advisor/internal/journal"
	"github.com/HendryAvila/gemini-advisor/internal/registry"
)

// Resource URIs.
const (
	ToolsURI   = "advisor://tools"
	JournalURI = "advisor://journal/recent"
)

// recentLimit is how many journal entries the journal resource returns.
const recentLimit = 20

// JournalReader is the read side of the consultation journal.
// *journal.Store satisfies it.
type JournalReader interface {
	Recent(ctx context.Context, limit int) ([]journal.Entry, error)
	Stats(ctx context.Context) (*journal.Stats, error)
}

// Handler serves the advisor resources.
type Handler struct {
	defs    []registry.ToolDefinition
	journal JournalReader
}

// NewHandler creates a resource Handler. j may be nil when the journal is
// disabled.
func NewHandler(defs []registry.ToolDefinition, j JournalReader) *Handler {
	return &Handler{defs: defs, journal: j}
}

// ToolsResource returns the MCP resource definition for the tool table.
func (h *Handler) ToolsResource() mcp.Resource {
	return mcp.NewResource(
		ToolsURI,
		"Advisory Tools",
		mcp.WithResourceDescription("Every advisory tool with its parameters, model tier and slash command"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleTools returns the tool table as JSON.
func (h *Handler) HandleTools(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(req.Params.URI, h.defs)
}

// JournalResource returns the MCP resource definition for recent calls.
func (h *Handler) JournalResource() mcp.Resource {
	return mcp.NewResource(
		JournalURI,
		"Recent Consultations",
		mcp.WithResourceDescription(fmt.Sprintf("The latest %d advisory calls and per-tool statistics", recentLimit)),
		mcp.WithMIMEType("application/json"),
	)
}

// journalView is the payload of the journal resource.
type journalView struct {
	Recent []journal.Entry `json:"recent"`
	Stats  *journal.Stats  `json:"stats"`
}

// HandleJournal returns recent journal entries and aggregate stats.
func (h *Handler) HandleJournal(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	if h.journal == nil {
		return errorResource(req.Params.URI, "the consultation journal is disabled"), nil
	}

	recent, err := h.journal.Recent(ctx, recentLimit)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	stats, err := h.journal.Stats(ctx)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	if recent == nil {
		recent = []journal.Entry{}
	}
	return jsonResource(req.Params.URI, journalView{Recent: recent, Stats: stats})
}
