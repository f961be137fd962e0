package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/sync/errgroup"

	"github.com/HendryAvila/gemini-advisor/internal/invoker"
	"github.com/HendryAvila/gemini-advisor/internal/journal"
	"github.com/HendryAvila/gemini-advisor/internal/registry"
)

// --- Test helpers ---

// isErrorResult checks if the result is a tool error.
func isErrorResult(result *mcp.CallToolResult) bool {
	return result != nil && result.IsError
}

// getResultText extracts the text content from a CallToolResult.
func getResultText(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

type advisorCall struct {
	method string
	args   []string
}

// fakeAdvisor records every call. reply decides the outcome; by default
// it echoes the arguments joined with "|".
type fakeAdvisor struct {
	mu    sync.Mutex
	calls []advisorCall
	reply func(method string, args []string) (string, error)
}

func (f *fakeAdvisor) do(method string, args ...string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, advisorCall{method: method, args: args})
	reply := f.reply
	f.mu.Unlock()
	if reply != nil {
		return reply(method, args)
	}
	return strings.Join(args, "|"), nil
}

func (f *fakeAdvisor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeAdvisor) GeneratePlan(_ context.Context, a, b string) (string, error) {
	return f.do("GeneratePlan", a, b)
}
func (f *fakeAdvisor) Consult(_ context.Context, a, b string) (string, error) {
	return f.do("Consult", a, b)
}
func (f *fakeAdvisor) AnalyzeCodebase(_ context.Context, a, b string) (string, error) {
	return f.do("AnalyzeCodebase", a, b)
}
func (f *fakeAdvisor) StrategicPlan(_ context.Context, a, b, c string) (string, error) {
	return f.do("StrategicPlan", a, b, c)
}
func (f *fakeAdvisor) ReviewApproach(_ context.Context, a, b string) (string, error) {
	return f.do("ReviewApproach", a, b)
}
func (f *fakeAdvisor) GenerateTests(_ context.Context, a, b string) (string, error) {
	return f.do("GenerateTests", a, b)
}
func (f *fakeAdvisor) GenerateDocs(_ context.Context, a, b string) (string, error) {
	return f.do("GenerateDocs", a, b)
}
func (f *fakeAdvisor) DebugAssist(_ context.Context, a, b string) (string, error) {
	return f.do("DebugAssist", a, b)
}
func (f *fakeAdvisor) ExplainConcept(_ context.Context, a, b string) (string, error) {
	return f.do("ExplainConcept", a, b)
}
func (f *fakeAdvisor) CompareTechnologies(_ context.Context, a, b string) (string, error) {
	return f.do("CompareTechnologies", a, b)
}

// fakeRecorder collects journal entries.
type fakeRecorder struct {
	mu      sync.Mutex
	entries []journal.Entry
	err     error
}

func (r *fakeRecorder) Record(_ context.Context, e journal.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return r.err
}

func newTestDispatcher(t *testing.T, adv Advisor) *Dispatcher {
	t.Helper()
	d, err := NewDispatcher(adv, registry.All(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	return d
}

func call(t *testing.T, d *Dispatcher, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	result, err := d.Call(context.Background(), name, args)
	if err != nil {
		t.Fatalf("Call(%s) failed: %v", name, err)
	}
	return result
}

// --- NewDispatcher ---

func TestBindings_CoverRegistry(t *testing.T) {
	for _, def := range registry.All() {
		b, ok := bindings[def.Name]
		if !ok {
			t.Errorf("%s has no binding", def.Name)
			continue
		}
		if b.arity != len(def.Parameters) {
			t.Errorf("%s: arity %d, parameters %d", def.Name, b.arity, len(def.Parameters))
		}
	}
	if len(bindings) != len(registry.All()) {
		t.Errorf("%d bindings for %d tools", len(bindings), len(registry.All()))
	}
}

func TestNewDispatcher_MissingBinding(t *testing.T) {
	defs := append(registry.All(), registry.ToolDefinition{
		Name:       "summarize-diff",
		Parameters: []registry.Param{{Name: "diff", Required: true}},
	})
	_, err := NewDispatcher(&fakeAdvisor{}, defs, nil)
	if !errors.Is(err, registry.ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
	if !strings.Contains(err.Error(), "summarize-diff") {
		t.Errorf("error should name the tool: %v", err)
	}
}

func TestNewDispatcher_ArityMismatch(t *testing.T) {
	def, _ := registry.Get(registry.ToolStrategicPlan)
	def.Parameters = def.Parameters[:2]

	_, err := NewDispatcher(&fakeAdvisor{}, []registry.ToolDefinition{def}, nil)
	if !errors.Is(err, registry.ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
}

// --- Definition ---

func TestDefinition_SchemaFromParameters(t *testing.T) {
	d := newTestDispatcher(t, &fakeAdvisor{})

	for _, tool := range d.Tools() {
		def, _ := registry.Get(tool.Name())
		mt := tool.Definition()

		if mt.Name != def.Name || mt.Description != def.Description {
			t.Errorf("%s: name/description = %q/%q", def.Name, mt.Name, mt.Description)
		}

		var wantRequired []string
		for _, p := range def.Parameters {
			if p.Required {
				wantRequired = append(wantRequired, p.Name)
			}
			prop, ok := mt.InputSchema.Properties[p.Name].(map[string]any)
			if !ok {
				t.Errorf("%s: property %s missing", def.Name, p.Name)
				continue
			}
			if prop["type"] != "string" {
				t.Errorf("%s.%s type = %v, want string", def.Name, p.Name, prop["type"])
			}
		}
		if diff := cmp.Diff(wantRequired, mt.InputSchema.Required); diff != "" {
			t.Errorf("%s required (-want +got):\n%s", def.Name, diff)
		}
		if len(mt.InputSchema.Properties) != len(def.Parameters) {
			t.Errorf("%s: %d properties for %d parameters", def.Name, len(mt.InputSchema.Properties), len(def.Parameters))
		}
	}
}

// --- Handle: validation ---

func TestHandle_MissingRequired(t *testing.T) {
	adv := &fakeAdvisor{}
	d := newTestDispatcher(t, adv)

	result := call(t, d, registry.ToolGeneratePlan, map[string]any{"context": "express"})
	if !isErrorResult(result) {
		t.Fatal("should return error when task is missing")
	}
	if text := getResultText(result); !strings.Contains(text, "'task' is required") {
		t.Errorf("error text = %q", text)
	}
	if adv.callCount() != 0 {
		t.Error("advisor must not be called on validation failure")
	}
}

func TestHandle_ValidationCases(t *testing.T) {
	tests := []struct {
		name string
		tool string
		args map[string]any
		want string
	}{
		{"nil args", registry.ToolConsult, nil, "'question' is required"},
		{"empty required", registry.ToolDebugAssist, map[string]any{"errorDescription": ""}, "'errorDescription' is required"},
		{"blank required", registry.ToolExplainConcept, map[string]any{"concept": "  \n"}, "'concept' is required"},
		{"non-string required", registry.ToolGenerateDocs, map[string]any{"subject": 42}, "'subject' must be a string"},
		{"non-string optional", registry.ToolCompareTechnologies,
			map[string]any{"comparison": "Go vs Rust", "useCase": []any{"cli"}}, "'useCase' must be a string"},
		{"second required missing", registry.ToolStrategicPlan, map[string]any{"feature": "chat"}, "'requirements' is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adv := &fakeAdvisor{}
			d := newTestDispatcher(t, adv)

			result := call(t, d, tt.tool, tt.args)
			if !isErrorResult(result) {
				t.Fatalf("expected error result, got %q", getResultText(result))
			}
			text := getResultText(result)
			if !strings.Contains(text, tt.want) {
				t.Errorf("error text %q missing %q", text, tt.want)
			}
			if !strings.HasPrefix(text, ErrValidation.Error()) {
				t.Errorf("error text %q should start with %q", text, ErrValidation.Error())
			}
			if adv.callCount() != 0 {
				t.Error("advisor must not be called on validation failure")
			}
		})
	}
}

func TestArguments_WrapsErrValidation(t *testing.T) {
	d := newTestDispatcher(t, &fakeAdvisor{})
	_, err := d.byName[registry.ToolReviewApproach].arguments(map[string]any{})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

// --- Handle: dispatch ---

func TestHandle_ArgumentsInDeclaredOrder(t *testing.T) {
	adv := &fakeAdvisor{}
	d := newTestDispatcher(t, adv)

	result := call(t, d, registry.ToolStrategicPlan, map[string]any{
		"codebaseContext": "monolith",
		"requirements":    "10k users",
		"feature":         "chat",
		"unrelated":       "ignored",
	})
	if isErrorResult(result) {
		t.Fatalf("unexpected error: %s", getResultText(result))
	}
	if got := getResultText(result); got != "chat|10k users|monolith" {
		t.Errorf("result = %q", got)
	}
}

func TestHandle_OptionalAbsentIsEmpty(t *testing.T) {
	adv := &fakeAdvisor{}
	d := newTestDispatcher(t, adv)

	call(t, d, registry.ToolAnalyzeCodebase, map[string]any{"codebaseInfo": "cmd/ internal/", "task": nil})

	want := []advisorCall{{method: "AnalyzeCodebase", args: []string{"cmd/ internal/", ""}}}
	if diff := cmp.Diff(want, adv.calls, cmp.AllowUnexported(advisorCall{})); diff != "" {
		t.Errorf("calls (-want +got):\n%s", diff)
	}
}

func TestHandle_EveryToolReachesItsMethod(t *testing.T) {
	want := map[string]string{
		registry.ToolGeneratePlan:        "GeneratePlan",
		registry.ToolConsult:             "Consult",
		registry.ToolAnalyzeCodebase:     "AnalyzeCodebase",
		registry.ToolStrategicPlan:       "StrategicPlan",
		registry.ToolReviewApproach:      "ReviewApproach",
		registry.ToolGenerateTests:       "GenerateTests",
		registry.ToolGenerateDocs:        "GenerateDocs",
		registry.ToolDebugAssist:         "DebugAssist",
		registry.ToolExplainConcept:      "ExplainConcept",
		registry.ToolCompareTechnologies: "CompareTechnologies",
	}

	for _, def := range registry.All() {
		t.Run(def.Name, func(t *testing.T) {
			adv := &fakeAdvisor{}
			d := newTestDispatcher(t, adv)

			args := map[string]any{}
			for _, p := range def.Parameters {
				args[p.Name] = "v-" + p.Name
			}
			result := call(t, d, def.Name, args)
			if isErrorResult(result) {
				t.Fatalf("unexpected error: %s", getResultText(result))
			}
			if len(adv.calls) != 1 || adv.calls[0].method != want[def.Name] {
				t.Fatalf("calls = %+v, want one %s", adv.calls, want[def.Name])
			}
			if diff := cmp.Diff(def.ParamNames(), trimPrefix(adv.calls[0].args, "v-")); diff != "" {
				t.Errorf("argument order (-want +got):\n%s", diff)
			}
		})
	}
}

func trimPrefix(ss []string, prefix string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.TrimPrefix(s, prefix)
	}
	return out
}

func TestHandle_FailureIsTextResponse(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"timeout", fmt.Errorf("%w after 10m0s", invoker.ErrTimeout),
			"Error with generate-plan: model invocation timed out after 10m0s"},
		{"execution", fmt.Errorf("%w: exit status 1: quota exhausted", invoker.ErrExecutionFailed),
			"Error with generate-plan: model invocation failed: exit status 1: quota exhausted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adv := &fakeAdvisor{reply: func(string, []string) (string, error) { return "", tt.err }}
			d := newTestDispatcher(t, adv)

			result := call(t, d, registry.ToolGeneratePlan, map[string]any{"task": "auth"})
			if isErrorResult(result) {
				t.Error("model failures are normal responses, not tool errors")
			}
			if got := getResultText(result); got != tt.want {
				t.Errorf("text = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCall_UnknownTool(t *testing.T) {
	d := newTestDispatcher(t, &fakeAdvisor{})
	_, err := d.Call(context.Background(), "rewrite-everything", nil)
	if !errors.Is(err, registry.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

// --- Concurrency ---

func TestHandle_ConcurrentCallsAreIndependent(t *testing.T) {
	adv := &fakeAdvisor{}
	d := newTestDispatcher(t, adv)

	const n = 20
	results := make([]string, n)
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < n; i++ {
		g.Go(func() error {
			question := fmt.Sprintf("question-%d", i)
			result, err := d.Call(ctx, registry.ToolConsult, map[string]any{"question": question})
			if err != nil {
				return err
			}
			results[i] = getResultText(result)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent calls: %v", err)
	}

	for i, got := range results {
		if want := fmt.Sprintf("question-%d|", i); got != want {
			t.Errorf("call %d got %q, want %q", i, got, want)
		}
	}
	if adv.callCount() != n {
		t.Errorf("advisor saw %d calls, want %d", adv.callCount(), n)
	}
}

// --- Journal ---

func TestHandle_RecordsJournalEntry(t *testing.T) {
	adv := &fakeAdvisor{reply: func(method string, args []string) (string, error) {
		if method == "DebugAssist" {
			return "", fmt.Errorf("%w after 1s", invoker.ErrTimeout)
		}
		return "advice", nil
	}}
	d := newTestDispatcher(t, adv)
	rec := &fakeRecorder{}
	d.SetJournal(rec, map[invoker.Tier]string{invoker.TierFast: "flash", invoker.TierDeep: "pro"})

	call(t, d, registry.ToolReviewApproach, map[string]any{"proposedApproach": "Use a singleton cache"})
	call(t, d, registry.ToolDebugAssist, map[string]any{"errorDescription": "panic"})
	call(t, d, registry.ToolDebugAssist, map[string]any{}) // rejected, not recorded

	if len(rec.entries) != 2 {
		t.Fatalf("got %d journal entries, want 2", len(rec.entries))
	}

	ok := rec.entries[0]
	if ok.Tool != registry.ToolReviewApproach || ok.Tier != "fast" || ok.Model != "flash" {
		t.Errorf("entry = %+v", ok)
	}
	if ok.Outcome != journal.OutcomeOK || ok.ResponseBytes != len("advice") {
		t.Errorf("outcome/bytes = %s/%d", ok.Outcome, ok.ResponseBytes)
	}
	if ok.InputBytes != len("Use a singleton cache") {
		t.Errorf("InputBytes = %d", ok.InputBytes)
	}
	if ok.ID == "" || ok.StartedAt.IsZero() {
		t.Error("entry needs an id and start time")
	}

	timeout := rec.entries[1]
	if timeout.Outcome != journal.OutcomeTimeout || !strings.Contains(timeout.Error, "timed out") {
		t.Errorf("timeout entry = %+v", timeout)
	}
}

func TestHandle_JournalFailureDoesNotChangeResponse(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	d, err := NewDispatcher(&fakeAdvisor{reply: func(string, []string) (string, error) { return "advice", nil }},
		registry.All(), zap.New(core))
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	d.SetJournal(&fakeRecorder{err: errors.New("database is locked")}, nil)

	result := call(t, d, registry.ToolExplainConcept, map[string]any{"concept": "event loop"})
	if isErrorResult(result) || getResultText(result) != "advice" {
		t.Errorf("result = %q (error=%v)", getResultText(result), isErrorResult(result))
	}
	if n := logs.FilterMessage("journal write failed").Len(); n != 1 {
		t.Errorf("got %d journal warnings, want 1", n)
	}
}

func TestHandle_LogsCompletedCall(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	d, err := NewDispatcher(&fakeAdvisor{}, registry.All(), zap.New(core))
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}

	call(t, d, registry.ToolGenerateTests, map[string]any{"description": "UserService"})

	entries := logs.FilterMessage("tool call completed").All()
	if len(entries) != 1 {
		t.Fatalf("got %d completion logs, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["tool"] != registry.ToolGenerateTests || fields["outcome"] != "ok" {
		t.Errorf("fields = %v", fields)
	}
	if id, _ := fields["call_id"].(string); id == "" {
		t.Error("completion log missing call_id")
	}
}
