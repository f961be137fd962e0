// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates concrete implementations and
// injects them into the tools, prompts and resources that depend on
// abstractions. No business logic lives here, only wiring and the
// startup consistency checks.
package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/HendryAvila/gemini-advisor/internal/advisor"
	"github.com/HendryAvila/gemini-advisor/internal/config"
	"github.com/HendryAvila/gemini-advisor/internal/invoker"
	"github.com/HendryAvila/gemini-advisor/internal/journal"
	"github.com/HendryAvila/gemini-advisor/internal/prompts"
	"github.com/HendryAvila/gemini-advisor/internal/registry"
	"github.com/HendryAvila/gemini-advisor/internal/resources"
	"github.com/HendryAvila/gemini-advisor/internal/templates"
	"github.com/HendryAvila/gemini-advisor/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Name is the MCP server name announced to hosts.
const Name = "gemini"

// clientFactory builds the advisory client for one timeout policy.
type clientFactory func(opts invoker.Options, catalog *templates.Catalog) *advisor.Client

// New creates and configures the MCP server with all tools, prompts,
// and resources registered. Tool calls use the long-lived client with
// cfg.Timeout per invocation.
//
// The returned cleanup function closes the journal's database connection
// and must be called on shutdown (typically via defer). It is always
// non-nil and safe to call even if journal init failed.
func New(cfg config.Config, logger *zap.Logger) (*server.MCPServer, func(), error) {
	d, store, cleanup, err := build(cfg, logger, cfg.Timeout, advisor.NewDefault)
	if err != nil {
		return nil, noop, err
	}

	s := server.NewMCPServer(
		Name,
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register tools ---

	d.Register(s)

	// --- Register prompts ---

	defs := registry.All()
	for _, def := range defs {
		p := prompts.NewCommandPrompt(def)
		s.AddPrompt(p.Definition(), p.Handle)
	}
	help := prompts.NewHelpPrompt(defs)
	s.AddPrompt(help.Definition(), help.Handle)

	// --- Register resources ---
	//
	// The journal resource only exists when the journal is open; a nil
	// *journal.Store must not reach the handler as a non-nil interface.

	var reader resources.JournalReader
	if store != nil {
		reader = store
	}
	rh := resources.NewHandler(defs, reader)
	s.AddResource(rh.ToolsResource(), rh.HandleTools)
	if reader != nil {
		s.AddResource(rh.JournalResource(), rh.HandleJournal)
	}

	return s, cleanup, nil
}

// NewAdHocDispatcher builds a dispatcher for one-off calls outside an MCP
// session, with cfg.AdHocTimeout per invocation. It runs the same startup
// checks and journal wiring as New.
func NewAdHocDispatcher(cfg config.Config, logger *zap.Logger) (*tools.Dispatcher, func(), error) {
	d, _, cleanup, err := build(cfg, logger, cfg.AdHocTimeout, advisor.NewAdHoc)
	if err != nil {
		return nil, noop, err
	}
	return d, cleanup, nil
}

// build creates the catalog, checks the tool table against it and the
// client's tiers, and binds a dispatcher. Any inconsistency wraps
// registry.ErrConfiguration.
func build(cfg config.Config, logger *zap.Logger, timeout time.Duration, newClient clientFactory) (*tools.Dispatcher, *journal.Store, func(), error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	catalog, err := templates.NewCatalog()
	if err != nil {
		return nil, nil, noop, fmt.Errorf("%w: loading prompt catalog: %v", registry.ErrConfiguration, err)
	}

	defs := registry.All()
	if err := registry.Validate(catalog); err != nil {
		return nil, nil, noop, err
	}
	if err := checkTiers(defs); err != nil {
		return nil, nil, noop, err
	}

	client := newClient(cfg.InvokerOptions(timeout, logger), catalog)
	d, err := tools.NewDispatcher(client, defs, logger.Named("tools"))
	if err != nil {
		return nil, nil, noop, err
	}

	// --- Journal ---
	//
	// The journal is an independent, opt-in subsystem: if it fails to
	// open, tools keep working and a warning is logged.

	if !cfg.Journal.Enabled {
		return d, nil, noop, nil
	}
	store, err := journal.New(cfg.JournalConfig())
	if err != nil {
		logger.Warn("journal disabled", zap.Error(err))
		return d, nil, noop, nil
	}
	d.SetJournal(store, cfg.Models())
	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("journal close failed", zap.Error(err))
		}
	}
	return d, store, cleanup, nil
}

// checkTiers verifies that every tool's declared tier is the tier the
// advisory client uses for its prompt key.
func checkTiers(defs []registry.ToolDefinition) error {
	var problems []string
	for _, d := range defs {
		tier, ok := advisor.Tier(d.PromptKey)
		switch {
		case !ok:
			problems = append(problems, fmt.Sprintf("%s: client has no operation for %s", d.Name, d.PromptKey))
		case tier != d.Tier:
			problems = append(problems, fmt.Sprintf("%s: declared tier %s, client uses %s", d.Name, d.Tier, tier))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", registry.ErrConfiguration, strings.Join(problems, "; "))
	}
	return nil
}

// noop is a no-op cleanup function used as the default when the journal
// is disabled or hasn't been initialized.
func noop() {}

// serverInstructions returns the system instructions that tell the AI
// how to use the advisor effectively.
func serverInstructions() string {
	var b strings.Builder
	b.WriteString(`You have access to a Gemini advisory server. It sends your question to Gemini
and returns structured, high-level guidance in markdown. It never writes code.

## WHEN TO USE IT

- Before a non-trivial change: generate-plan, strategic-plan or analyze-codebase
- When you have a plan and want a second opinion: review-approach
- When you are stuck: gemini-consult or debug-assist
- When choosing between options: compare-technologies
- When explaining or documenting: explain-concept, generate-docs, generate-tests

## HOW TO CALL

- Pass everything Gemini needs in the arguments: it cannot see the conversation or the files.
- Put code, file listings and error output in the optional context parameter.
- Deep tools can take several minutes; fast tools usually answer in seconds.
- A response starting with "Error with <tool>:" means the model call failed. Report it; retrying the same call rarely helps.

## TOOLS
`)
	for _, d := range registry.All() {
		fmt.Fprintf(&b, "\n- %s (%s): %s", d.Name, d.Tier, d.Description)
	}
	b.WriteString("\n")
	return b.String()
}
