package tools

import (
	"context"

	"github.com/HendryAvila/gemini-advisor/internal/registry"
)

// Advisor is the set of advisory operations the dispatcher can bind to.
// *advisor.Client satisfies it.
type Advisor interface {
	GeneratePlan(ctx context.Context, task, contextInfo string) (string, error)
	Consult(ctx context.Context, question, currentContext string) (string, error)
	AnalyzeCodebase(ctx context.Context, codebaseInfo, task string) (string, error)
	StrategicPlan(ctx context.Context, feature, requirements, codebaseContext string) (string, error)
	ReviewApproach(ctx context.Context, proposedApproach, contextInfo string) (string, error)
	GenerateTests(ctx context.Context, description, contextInfo string) (string, error)
	GenerateDocs(ctx context.Context, subject, contextInfo string) (string, error)
	DebugAssist(ctx context.Context, errorDescription, contextInfo string) (string, error)
	ExplainConcept(ctx context.Context, concept, contextInfo string) (string, error)
	CompareTechnologies(ctx context.Context, comparison, useCase string) (string, error)
}

// binding invokes one Advisor method with positional arguments in the
// tool's declared parameter order.
type binding struct {
	arity int
	call  func(ctx context.Context, a Advisor, args []string) (string, error)
}

func bind2(m func(Advisor, context.Context, string, string) (string, error)) binding {
	return binding{arity: 2, call: func(ctx context.Context, a Advisor, args []string) (string, error) {
		return m(a, ctx, args[0], args[1])
	}}
}

func bind3(m func(Advisor, context.Context, string, string, string) (string, error)) binding {
	return binding{arity: 3, call: func(ctx context.Context, a Advisor, args []string) (string, error) {
		return m(a, ctx, args[0], args[1], args[2])
	}}
}

// bindings maps each tool name to the Advisor method serving it.
var bindings = map[string]binding{
	registry.ToolGeneratePlan:        bind2(Advisor.GeneratePlan),
	registry.ToolConsult:             bind2(Advisor.Consult),
	registry.ToolAnalyzeCodebase:     bind2(Advisor.AnalyzeCodebase),
	registry.ToolStrategicPlan:       bind3(Advisor.StrategicPlan),
	registry.ToolReviewApproach:      bind2(Advisor.ReviewApproach),
	registry.ToolGenerateTests:       bind2(Advisor.GenerateTests),
	registry.ToolGenerateDocs:        bind2(Advisor.GenerateDocs),
	registry.ToolDebugAssist:         bind2(Advisor.DebugAssist),
	registry.ToolExplainConcept:      bind2(Advisor.ExplainConcept),
	registry.ToolCompareTechnologies: bind2(Advisor.CompareTechnologies),
}
