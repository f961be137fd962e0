// Package templates holds the prompt catalog: one embedded text/template
// per advisory operation, keyed by Key.
//
// Templates are data. Each declares the ordered fields it consumes
// (required first, then optional); an optional field's block is rendered
// only when its value is non-empty. Every rendered prompt starts with the
// Guardrail so the model is always told not to write code.
package templates

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

// Key identifies a prompt template.
type Key string

// The ten advisory prompt keys.
const (
	GeneratePlan        Key = "GENERATE_PLAN"
	Consult             Key = "CONSULT"
	AnalyzeCodebase     Key = "ANALYZE_CODEBASE"
	StrategicPlan       Key = "STRATEGIC_PLAN"
	ReviewApproach      Key = "REVIEW_APPROACH"
	GenerateTests       Key = "GENERATE_TESTS"
	GenerateDocs        Key = "GENERATE_DOCS"
	DebugAssist         Key = "DEBUG_ASSIST"
	ExplainConcept      Key = "EXPLAIN_CONCEPT"
	CompareTechnologies Key = "COMPARE_TECHNOLOGIES"
)

// Guardrail is the role and constraint preamble sent with every prompt.
const Guardrail = `You are a senior software architect providing strategic guidance and analysis.

CRITICAL RULES:
- DO NOT write, edit, or suggest specific code implementations
- DO NOT provide code snippets or examples
- ONLY provide high-level guidance, analysis, and architectural advice
- Focus on patterns, approaches, and best practices
- All output must be in structured markdown format`

// Args maps template field names to values. A missing or empty optional
// field omits its block.
type Args map[string]string

// source describes one template before parsing.
type source struct {
	key      Key
	file     string
	required []string
	optional []string
}

var sources = []source{
	{GeneratePlan, "generate_plan.tmpl", []string{"task"}, []string{"context"}},
	{Consult, "consult.tmpl", []string{"question"}, []string{"currentContext"}},
	{AnalyzeCodebase, "analyze_codebase.tmpl", []string{"codebaseInfo"}, []string{"task"}},
	{StrategicPlan, "strategic_plan.tmpl", []string{"feature", "requirements"}, []string{"codebaseContext"}},
	{ReviewApproach, "review_approach.tmpl", []string{"proposedApproach"}, []string{"context"}},
	{GenerateTests, "generate_tests.tmpl", []string{"description"}, []string{"context"}},
	{GenerateDocs, "generate_docs.tmpl", []string{"subject"}, []string{"context"}},
	{DebugAssist, "debug_assist.tmpl", []string{"errorDescription"}, []string{"context"}},
	{ExplainConcept, "explain_concept.tmpl", []string{"concept"}, []string{"context"}},
	{CompareTechnologies, "compare_technologies.tmpl", []string{"comparison"}, []string{"useCase"}},
}

// Template is a parsed prompt template.
type Template struct {
	Key      Key
	Required []string
	Optional []string
	body     *template.Template
}

// Fields returns the template's fields in declaration order: required
// fields first, then optional ones.
func (t *Template) Fields() []string {
	out := make([]string, 0, len(t.Required)+len(t.Optional))
	out = append(out, t.Required...)
	return append(out, t.Optional...)
}

// Catalog is the immutable set of prompt templates.
type Catalog struct {
	order     []Key
	templates map[Key]*Template
}

// NewCatalog parses all embedded templates.
func NewCatalog() (*Catalog, error) {
	c := &Catalog{templates: make(map[Key]*Template, len(sources))}
	for _, s := range sources {
		raw, err := promptFS.ReadFile("prompts/" + s.file)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", s.file, err)
		}
		body, err := template.New(string(s.key)).
			Option("missingkey=zero").
			Parse(string(raw))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", s.file, err)
		}
		c.order = append(c.order, s.key)
		c.templates[s.key] = &Template{
			Key:      s.key,
			Required: s.required,
			Optional: s.optional,
			body:     body,
		}
	}
	return c, nil
}

// Keys returns every key in catalog order.
func (c *Catalog) Keys() []Key {
	return append([]Key(nil), c.order...)
}

// Lookup returns the template for key.
func (c *Catalog) Lookup(key Key) (*Template, bool) {
	t, ok := c.templates[key]
	return t, ok
}

// Render produces the full prompt for key: the Guardrail followed by the
// template body rendered with args. Args naming a field the template does
// not declare are rejected.
func (c *Catalog) Render(key Key, args Args) (string, error) {
	t, ok := c.templates[key]
	if !ok {
		return "", fmt.Errorf("unknown prompt template %q", key)
	}

	data := make(map[string]string, len(t.Required)+len(t.Optional))
	for _, f := range t.Fields() {
		data[f] = ""
	}
	for name, value := range args {
		if _, declared := data[name]; !declared {
			return "", fmt.Errorf("template %s has no field %q", key, name)
		}
		data[name] = value
	}

	var b strings.Builder
	b.WriteString(Guardrail)
	b.WriteString("\n\n")
	if err := t.body.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering template %s: %w", key, err)
	}
	return b.String(), nil
}
