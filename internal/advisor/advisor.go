// Package advisor exposes one method per advisory operation. Each method
// renders its prompt from the catalog, picks the operation's fixed model
// tier and hands the prompt to a Runner. Nothing is cached or retried;
// calls are independent and may run concurrently.
package advisor

import (
	"context"
	"fmt"

	"github.com/HendryAvila/gemini-advisor/internal/invoker"
	"github.com/HendryAvila/gemini-advisor/internal/templates"
)

// Runner executes one prompt against the model mapped to tier.
// *invoker.Invoker satisfies it.
type Runner interface {
	Run(ctx context.Context, tier invoker.Tier, prompt string) (string, error)
}

// tiers is the fixed model tier of every operation.
var tiers = map[templates.Key]invoker.Tier{
	templates.GeneratePlan:        invoker.TierDeep,
	templates.Consult:             invoker.TierFast,
	templates.AnalyzeCodebase:     invoker.TierDeep,
	templates.StrategicPlan:       invoker.TierDeep,
	templates.ReviewApproach:      invoker.TierFast,
	templates.GenerateTests:       invoker.TierDeep,
	templates.GenerateDocs:        invoker.TierDeep,
	templates.DebugAssist:         invoker.TierFast,
	templates.ExplainConcept:      invoker.TierDeep,
	templates.CompareTechnologies: invoker.TierDeep,
}

// Tier returns the model tier the client uses for key.
func Tier(key templates.Key) (invoker.Tier, bool) {
	t, ok := tiers[key]
	return t, ok
}

// Client implements the advisory operations.
type Client struct {
	runner  Runner
	catalog *templates.Catalog
}

// New creates a Client over runner and catalog.
func New(runner Runner, catalog *templates.Catalog) *Client {
	return &Client{runner: runner, catalog: catalog}
}

// NewDefault creates the long-lived client used by the server. Its
// invocations get invoker.SharedTimeout unless opts sets one.
func NewDefault(opts invoker.Options, catalog *templates.Catalog) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = invoker.SharedTimeout
	}
	return New(invoker.New(opts), catalog)
}

// NewAdHoc creates a client for one-off calls with invoker.DefaultTimeout
// unless opts sets one.
func NewAdHoc(opts invoker.Options, catalog *templates.Catalog) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = invoker.DefaultTimeout
	}
	return New(invoker.New(opts), catalog)
}

// ask renders key with args and runs it on the key's tier. Runner errors
// are returned unchanged.
func (c *Client) ask(ctx context.Context, key templates.Key, args templates.Args) (string, error) {
	tier, ok := tiers[key]
	if !ok {
		return "", fmt.Errorf("no model tier for %s", key)
	}
	prompt, err := c.catalog.Render(key, args)
	if err != nil {
		return "", err
	}
	return c.runner.Run(ctx, tier, prompt)
}

// GeneratePlan produces an implementation plan for task.
func (c *Client) GeneratePlan(ctx context.Context, task, contextInfo string) (string, error) {
	return c.ask(ctx, templates.GeneratePlan, templates.Args{"task": task, "context": contextInfo})
}

// Consult answers a development question.
func (c *Client) Consult(ctx context.Context, question, currentContext string) (string, error) {
	return c.ask(ctx, templates.Consult, templates.Args{"question": question, "currentContext": currentContext})
}

// AnalyzeCodebase describes the architecture and conventions in codebaseInfo.
func (c *Client) AnalyzeCodebase(ctx context.Context, codebaseInfo, task string) (string, error) {
	return c.ask(ctx, templates.AnalyzeCodebase, templates.Args{"codebaseInfo": codebaseInfo, "task": task})
}

// StrategicPlan produces a phased roadmap for feature.
func (c *Client) StrategicPlan(ctx context.Context, feature, requirements, codebaseContext string) (string, error) {
	return c.ask(ctx, templates.StrategicPlan, templates.Args{
		"feature":         feature,
		"requirements":    requirements,
		"codebaseContext": codebaseContext,
	})
}

// ReviewApproach critiques a proposed implementation approach.
func (c *Client) ReviewApproach(ctx context.Context, proposedApproach, contextInfo string) (string, error) {
	return c.ask(ctx, templates.ReviewApproach, templates.Args{"proposedApproach": proposedApproach, "context": contextInfo})
}

// GenerateTests outlines a test strategy.
func (c *Client) GenerateTests(ctx context.Context, description, contextInfo string) (string, error) {
	return c.ask(ctx, templates.GenerateTests, templates.Args{"description": description, "context": contextInfo})
}

// GenerateDocs outlines a documentation structure.
func (c *Client) GenerateDocs(ctx context.Context, subject, contextInfo string) (string, error) {
	return c.ask(ctx, templates.GenerateDocs, templates.Args{"subject": subject, "context": contextInfo})
}

// DebugAssist triages an error description.
func (c *Client) DebugAssist(ctx context.Context, errorDescription, contextInfo string) (string, error) {
	return c.ask(ctx, templates.DebugAssist, templates.Args{"errorDescription": errorDescription, "context": contextInfo})
}

// ExplainConcept explains a technical concept.
func (c *Client) ExplainConcept(ctx context.Context, concept, contextInfo string) (string, error) {
	return c.ask(ctx, templates.ExplainConcept, templates.Args{"concept": concept, "context": contextInfo})
}

// CompareTechnologies compares technologies for an optional use case.
func (c *Client) CompareTechnologies(ctx context.Context, comparison, useCase string) (string, error) {
	return c.ask(ctx, templates.CompareTechnologies, templates.Args{"comparison": comparison, "useCase": useCase})
}
