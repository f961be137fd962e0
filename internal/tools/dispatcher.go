// Package tools exposes the advisory operations as MCP tools.
//
// A Dispatcher turns every registry definition into one Tool with a schema
// derived from its parameters. Each Tool follows the same call path:
// validate the arguments, collect them in declared order, call the bound
// Advisor method and wrap the outcome in a text response. A failed model
// call is a normal response ("Error with <tool>: ..."), never a protocol
// error.
package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/HendryAvila/gemini-advisor/internal/invoker"
	"github.com/HendryAvila/gemini-advisor/internal/journal"
	"github.com/HendryAvila/gemini-advisor/internal/logging"
	"github.com/HendryAvila/gemini-advisor/internal/registry"
)

// ErrValidation marks tool arguments that failed schema checks. No model
// process is started for such a call.
var ErrValidation = errors.New("validation error")

// Dispatcher routes tool calls to an Advisor.
type Dispatcher struct {
	client Advisor
	tools  []*Tool
	byName map[string]*Tool
	logger *zap.Logger

	recorder Recorder
	models   map[invoker.Tier]string
}

// NewDispatcher binds every definition to its Advisor method. A definition
// without a binding, or whose parameter count differs from the method's
// arity, is a configuration error.
func NewDispatcher(client Advisor, defs []registry.ToolDefinition, logger *zap.Logger) (*Dispatcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		client: client,
		byName: make(map[string]*Tool, len(defs)),
		logger: logger,
	}

	var problems []string
	for _, def := range defs {
		b, ok := bindings[def.Name]
		if !ok {
			problems = append(problems, fmt.Sprintf("%s: no advisory operation bound", def.Name))
			continue
		}
		if b.arity != len(def.Parameters) {
			problems = append(problems, fmt.Sprintf("%s: %d parameters but operation takes %d",
				def.Name, len(def.Parameters), b.arity))
			continue
		}
		t := &Tool{def: def, bind: b, d: d}
		d.tools = append(d.tools, t)
		d.byName[def.Name] = t
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", registry.ErrConfiguration, strings.Join(problems, "; "))
	}
	return d, nil
}

// SetJournal enables call recording. models names the model behind each
// tier for the journal entries. A nil recorder disables recording.
// Must be called before the dispatcher serves calls.
func (d *Dispatcher) SetJournal(rec Recorder, models map[invoker.Tier]string) {
	d.recorder = rec
	d.models = models
}

// Tools returns the dispatcher's tools in registration order.
func (d *Dispatcher) Tools() []*Tool {
	return append([]*Tool(nil), d.tools...)
}

// Register adds every tool to s.
func (d *Dispatcher) Register(s *server.MCPServer) {
	for _, t := range d.tools {
		s.AddTool(t.Definition(), t.Handle)
	}
}

// Call runs the named tool with args outside of an MCP session. Unknown
// names wrap registry.ErrNotFound.
func (d *Dispatcher) Call(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	t, ok := d.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", registry.ErrNotFound, name)
	}
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return t.Handle(ctx, req)
}

// Tool is one advisory tool bound to its operation.
type Tool struct {
	def  registry.ToolDefinition
	bind binding
	d    *Dispatcher
}

// Name returns the tool name.
func (t *Tool) Name() string { return t.def.Name }

// Definition returns the MCP tool definition for registration. Every
// parameter is a string; required ones are marked as such.
func (t *Tool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(t.def.Description)}
	for _, p := range t.def.Parameters {
		popts := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			popts = append(popts, mcp.Required())
		}
		opts = append(opts, mcp.WithString(p.Name, popts...))
	}
	return mcp.NewTool(t.def.Name, opts...)
}

// Handle processes one call of the tool.
func (t *Tool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	callID := uuid.NewString()
	log := t.d.logger.With(zap.String("tool", t.def.Name), zap.String("call_id", callID))

	args, err := t.arguments(req.GetArguments())
	if err != nil {
		log.Info("rejected tool call", zap.Error(err))
		return mcp.NewToolResultError(err.Error()), nil
	}

	ctx = logging.WithLogger(ctx, log)
	start := time.Now()
	out, err := t.bind.call(ctx, t.d.client, args)
	elapsed := time.Since(start)

	outcome := outcomeOf(err)
	log.Info("tool call completed",
		zap.String("outcome", string(outcome)),
		zap.Duration("duration", elapsed),
	)
	t.d.record(ctx, log, journal.Entry{
		ID:            callID,
		Tool:          t.def.Name,
		Tier:          string(t.def.Tier),
		Model:         t.d.models[t.def.Tier],
		Outcome:       outcome,
		Error:         errorText(err),
		InputBytes:    totalLen(args),
		ResponseBytes: len(out),
		StartedAt:     start,
		DurationMS:    elapsed.Milliseconds(),
	})

	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Error with %s: %s", t.def.Name, err.Error())), nil
	}
	return mcp.NewToolResultText(out), nil
}

// arguments validates raw and returns the values in parameter order.
// Absent optional parameters become "". Unknown keys are ignored.
func (t *Tool) arguments(raw map[string]any) ([]string, error) {
	args := make([]string, len(t.def.Parameters))
	for i, p := range t.def.Parameters {
		v, present := raw[p.Name]
		if !present || v == nil {
			if p.Required {
				return nil, fmt.Errorf("%w: '%s' is required", ErrValidation, p.Name)
			}
			continue
		}
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: '%s' must be a string, got %T", ErrValidation, p.Name, v)
		}
		if p.Required && strings.TrimSpace(s) == "" {
			return nil, fmt.Errorf("%w: '%s' is required", ErrValidation, p.Name)
		}
		args[i] = s
	}
	return args, nil
}

func outcomeOf(err error) journal.Outcome {
	switch {
	case err == nil:
		return journal.OutcomeOK
	case errors.Is(err, invoker.ErrTimeout):
		return journal.OutcomeTimeout
	default:
		return journal.OutcomeFailed
	}
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func totalLen(args []string) int {
	n := 0
	for _, a := range args {
		n += len(a)
	}
	return n
}
