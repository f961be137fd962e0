// Package registry is the declarative table of advisory tools.
//
// Each ToolDefinition couples an MCP tool name to its parameter schema,
// prompt template key and model tier. The table is built once and never
// mutated; Validate checks it against the prompt catalog at startup so a
// broken mapping stops the server before it serves anything.
package registry

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/HendryAvila/gemini-advisor/internal/invoker"
	"github.com/HendryAvila/gemini-advisor/internal/templates"
)

var (
	// ErrNotFound is returned by Get for unknown tool names.
	ErrNotFound = errors.New("tool not found")

	// ErrConfiguration marks an inconsistent tool table. It is fatal at
	// startup and never produced while serving calls.
	ErrConfiguration = errors.New("configuration error")
)

// Param is one string parameter of a tool.
type Param struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required" yaml:"required"`
}

// CommandInfo describes the slash-command form of a tool. It is only
// consumed by prompt listings and CLI help, never by dispatch.
type CommandInfo struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Usage       string `json:"usage" yaml:"usage"`
	Example     string `json:"example" yaml:"example"`
	// ParameterMapping maps a tool parameter to the command template
	// variable that fills it ({{arg1}}, {{arg2}} or {{@.}} for the
	// current editor selection).
	ParameterMapping map[string]string `json:"parameter_mapping" yaml:"parameter_mapping"`
}

// ToolDefinition is one advisory tool.
type ToolDefinition struct {
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description" yaml:"description"`
	PromptKey   templates.Key `json:"prompt_key" yaml:"prompt_key"`
	Tier        invoker.Tier  `json:"tier" yaml:"tier"`
	Parameters  []Param       `json:"parameters" yaml:"parameters"`
	Command     CommandInfo   `json:"command" yaml:"command"`
}

// ParamNames returns the parameter names in declaration order.
func (d ToolDefinition) ParamNames() []string {
	names := make([]string, len(d.Parameters))
	for i, p := range d.Parameters {
		names[i] = p.Name
	}
	return names
}

// All returns every tool definition in registration order. The returned
// slice is a copy.
func All() []ToolDefinition {
	out := make([]ToolDefinition, len(definitions))
	copy(out, definitions)
	return out
}

// Get returns the definition named name.
func Get(name string) (ToolDefinition, error) {
	for _, d := range definitions {
		if d.Name == name {
			return d, nil
		}
	}
	return ToolDefinition{}, fmt.Errorf("%w: %q", ErrNotFound, name)
}

var kebabCase = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)

// Validate checks the table against catalog: names are unique kebab-case
// identifiers, every prompt key exists, and each tool's parameters match
// its template's fields in order and in required-ness. All problems are
// reported together.
func Validate(catalog *templates.Catalog) error {
	return validate(definitions, catalog)
}

func validate(defs []ToolDefinition, catalog *templates.Catalog) error {
	var problems []string
	seen := make(map[string]bool, len(defs))

	for _, d := range defs {
		if !kebabCase.MatchString(d.Name) {
			problems = append(problems, fmt.Sprintf("%q is not a kebab-case tool name", d.Name))
		}
		if seen[d.Name] {
			problems = append(problems, fmt.Sprintf("duplicate tool name %q", d.Name))
		}
		seen[d.Name] = true

		if d.Tier != invoker.TierFast && d.Tier != invoker.TierDeep {
			problems = append(problems, fmt.Sprintf("%s: unknown model tier %q", d.Name, d.Tier))
		}

		tmpl, ok := catalog.Lookup(d.PromptKey)
		if !ok {
			problems = append(problems, fmt.Sprintf("%s: prompt key %s not in catalog", d.Name, d.PromptKey))
			continue
		}

		got := strings.Join(d.ParamNames(), ",")
		want := strings.Join(tmpl.Fields(), ",")
		if got != want {
			problems = append(problems, fmt.Sprintf("%s: parameters [%s] do not match template fields [%s]", d.Name, got, want))
			continue
		}
		for i, p := range d.Parameters {
			if wantRequired := i < len(tmpl.Required); p.Required != wantRequired {
				problems = append(problems, fmt.Sprintf("%s: parameter %s required=%v, template expects %v",
					d.Name, p.Name, p.Required, wantRequired))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrConfiguration, strings.Join(problems, "; "))
	}
	return nil
}
