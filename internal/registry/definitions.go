package registry

import (
	"github.com/HendryAvila/gemini-advisor/internal/invoker"
	"github.com/HendryAvila/gemini-advisor/internal/templates"
)

// Tool names are part of the external contract and must stay stable.
const (
	ToolGeneratePlan        = "generate-plan"
	ToolConsult             = "gemini-consult"
	ToolAnalyzeCodebase     = "analyze-codebase"
	ToolStrategicPlan       = "strategic-plan"
	ToolReviewApproach      = "review-approach"
	ToolGenerateTests       = "generate-tests"
	ToolGenerateDocs        = "generate-docs"
	ToolDebugAssist         = "debug-assist"
	ToolExplainConcept      = "explain-concept"
	ToolCompareTechnologies = "compare-technologies"
)

// Command template variables.
const (
	arg1      = "{{arg1}}"
	arg2      = "{{arg2}}"
	selection = "{{@.}}"
)

var definitions = []ToolDefinition{
	{
		Name:        ToolGeneratePlan,
		Description: "Use Gemini to generate a detailed plan for Claude Code to implement a task",
		PromptKey:   templates.GeneratePlan,
		Tier:        invoker.TierDeep,
		Parameters: []Param{
			{Name: "task", Description: "The task or feature that needs to be implemented", Required: true},
			{Name: "context", Description: "Additional context about the project, codebase, or requirements"},
		},
		Command: CommandInfo{
			Name: "plan",
			Description: "Generate a detailed implementation plan using Gemini's strategic planning capabilities. " +
				"Breaks complex tasks into actionable steps with clear architecture and testing strategies.",
			Usage:            "/plan <task description>",
			Example:          "/plan Add user authentication with JWT tokens to the Express API",
			ParameterMapping: map[string]string{"task": arg1, "context": selection},
		},
	},
	{
		Name:        ToolConsult,
		Description: "Consult with Gemini when Claude needs help, additional context, or is stuck on a problem",
		PromptKey:   templates.Consult,
		Tier:        invoker.TierFast,
		Parameters: []Param{
			{Name: "question", Description: "The question, problem, or situation where Claude needs help or additional context", Required: true},
			{Name: "currentContext", Description: "Current context about what Claude is working on, error messages, or relevant code"},
		},
		Command: CommandInfo{
			Name: "consult",
			Description: "Get quick development guidance and advice from Gemini. Use it for architectural advice, " +
				"best practices, or when stuck on a problem. Gemini answers with high-level guidance, no code snippets.",
			Usage:            "/consult <question or problem>",
			Example:          "/consult What's the best way to handle form validation in React with TypeScript?",
			ParameterMapping: map[string]string{"question": arg1, "currentContext": selection},
		},
	},
	{
		Name:        ToolAnalyzeCodebase,
		Description: "Analyze codebase structure and patterns to understand how it works before implementing changes",
		PromptKey:   templates.AnalyzeCodebase,
		Tier:        invoker.TierDeep,
		Parameters: []Param{
			{Name: "codebaseInfo", Description: "Information about the codebase structure, files, and patterns", Required: true},
			{Name: "task", Description: "Optional: specific task this analysis is for"},
		},
		Command: CommandInfo{
			Name: "analyze",
			Description: "Analyze project architecture and patterns. Provide codebase information in the current " +
				"context (selected files/folders) and optionally a focus area.",
			Usage:            "/analyze [optional: specific focus area]",
			Example:          "/analyze state management patterns in the React components",
			ParameterMapping: map[string]string{"codebaseInfo": selection, "task": arg1},
		},
	},
	{
		Name:        ToolStrategicPlan,
		Description: "Create a high-level strategic roadmap for implementing complex features",
		PromptKey:   templates.StrategicPlan,
		Tier:        invoker.TierDeep,
		Parameters: []Param{
			{Name: "feature", Description: "The feature or system to be implemented", Required: true},
			{Name: "requirements", Description: "Detailed requirements and specifications", Required: true},
			{Name: "codebaseContext", Description: "Optional: relevant codebase context and constraints"},
		},
		Command: CommandInfo{
			Name: "strategy",
			Description: "Create a high-level strategic roadmap for complex features. Separate the feature name " +
				"from the requirements with a pipe (|).",
			Usage:   "/strategy <feature name> | <detailed requirements>",
			Example: "/strategy Real-time chat system | WebSocket connections, message persistence, user presence, 10k concurrent users",
			ParameterMapping: map[string]string{
				"feature":         arg1,
				"requirements":    arg2,
				"codebaseContext": selection,
			},
		},
	},
	{
		Name:        ToolReviewApproach,
		Description: "Review and validate a proposed implementation approach before coding begins",
		PromptKey:   templates.ReviewApproach,
		Tier:        invoker.TierFast,
		Parameters: []Param{
			{Name: "proposedApproach", Description: "The implementation approach or plan to review", Required: true},
			{Name: "context", Description: "Optional: additional context about the project or requirements"},
		},
		Command: CommandInfo{
			Name: "review",
			Description: "Get a senior architect's perspective on your implementation approach: strengths, " +
				"weaknesses, alternatives and a recommendation.",
			Usage:            "/review <detailed implementation approach>",
			Example:          "/review I plan to use Redux Toolkit with RTK Query, organizing features in slices with normalized data",
			ParameterMapping: map[string]string{"proposedApproach": arg1, "context": selection},
		},
	},
	{
		Name:        ToolGenerateTests,
		Description: "Generate comprehensive test strategies and plans for components, functions, or features",
		PromptKey:   templates.GenerateTests,
		Tier:        invoker.TierDeep,
		Parameters: []Param{
			{Name: "description", Description: "Description of the component, function, or feature to generate tests for", Required: true},
			{Name: "context", Description: "Optional: additional context about the testing environment or requirements"},
		},
		Command: CommandInfo{
			Name:             "tests",
			Description:      "Generate test strategies: methodology, test cases, edge cases and quality considerations, without test code.",
			Usage:            "/tests <component/function description>",
			Example:          "/tests UserAuthenticationService with login, logout, and password reset methods",
			ParameterMapping: map[string]string{"description": arg1, "context": selection},
		},
	},
	{
		Name:        ToolGenerateDocs,
		Description: "Create documentation structure and content strategy for APIs, components, or systems",
		PromptKey:   templates.GenerateDocs,
		Tier:        invoker.TierDeep,
		Parameters: []Param{
			{Name: "subject", Description: "What needs to be documented (API, component, system, etc.)", Required: true},
			{Name: "context", Description: "Optional: additional context about the audience or documentation requirements"},
		},
		Command: CommandInfo{
			Name:             "docs",
			Description:      "Create documentation strategies and structures: organization, content areas and quality standards.",
			Usage:            "/docs <what to document>",
			Example:          "/docs REST API endpoints for user management system",
			ParameterMapping: map[string]string{"subject": arg1, "context": selection},
		},
	},
	{
		Name:        ToolDebugAssist,
		Description: "Analyze errors and provide systematic debugging strategies and root cause analysis",
		PromptKey:   templates.DebugAssist,
		Tier:        invoker.TierFast,
		Parameters: []Param{
			{Name: "errorDescription", Description: "Description of the error, issue, or bug to debug", Required: true},
			{Name: "context", Description: "Optional: additional context about the system, environment, or error conditions"},
		},
		Command: CommandInfo{
			Name:             "debug",
			Description:      "Get systematic debugging assistance: root cause analysis, investigation strategy and resolution approach.",
			Usage:            "/debug <error or issue description>",
			Example:          "/debug TypeError: Cannot read property 'map' of undefined in React component during API data rendering",
			ParameterMapping: map[string]string{"errorDescription": arg1, "context": selection},
		},
	},
	{
		Name:        ToolExplainConcept,
		Description: "Provide deep explanations of technical concepts, patterns, and technologies",
		PromptKey:   templates.ExplainConcept,
		Tier:        invoker.TierDeep,
		Parameters: []Param{
			{Name: "concept", Description: "The technical concept, pattern, or technology to explain", Required: true},
			{Name: "context", Description: "Optional: specific context or use case for the explanation"},
		},
		Command: CommandInfo{
			Name:             "explain",
			Description:      "Get explanations of technical concepts: definitions, use cases, trade-offs and learning paths.",
			Usage:            "/explain <technical concept>",
			Example:          "/explain event loop in Node.js and how it handles asynchronous operations",
			ParameterMapping: map[string]string{"concept": arg1, "context": selection},
		},
	},
	{
		Name:        ToolCompareTechnologies,
		Description: "Compare different technologies, frameworks, or approaches for specific use cases",
		PromptKey:   templates.CompareTechnologies,
		Tier:        invoker.TierDeep,
		Parameters: []Param{
			{Name: "comparison", Description: `Technologies to compare (e.g., "React vs Vue", "PostgreSQL vs MongoDB")`, Required: true},
			{Name: "useCase", Description: "Optional: specific use case or context for the comparison"},
		},
		Command: CommandInfo{
			Name:             "compare",
			Description:      "Compare technologies, frameworks, or approaches: pros and cons, use cases and a decision framework.",
			Usage:            "/compare <tech1> vs <tech2> [for specific use case]",
			Example:          "/compare PostgreSQL vs MongoDB for e-commerce platform with complex relationships",
			ParameterMapping: map[string]string{"comparison": arg1, "useCase": selection},
		},
	},
}
