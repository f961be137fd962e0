package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"

	"github.com/HendryAvila/gemini-advisor/internal/registry"
	advisorserver "github.com/HendryAvila/gemini-advisor/internal/server"
)

func newAskCmd(flags *globalFlags) *cobra.Command {
	var pairs []string

	cmd := &cobra.Command{
		Use:   "ask <tool> --arg name=value ...",
		Short: "Run one advisory tool and print its answer",
		Long: "Run one advisory tool outside an MCP session. Arguments use the tool's\n" +
			"parameter names; see `gemini-advisor tools` for the list.",
		Example: `  gemini-advisor ask review-approach --arg proposedApproach="Use a singleton cache"
  gemini-advisor ask strategic-plan --arg feature=chat --arg requirements="10k users"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			toolArgs, err := parseArgs(pairs)
			if err != nil {
				return err
			}
			if _, err := registry.Get(args[0]); err != nil {
				return err
			}

			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			d, cleanup, err := advisorserver.NewAdHocDispatcher(cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := d.Call(cmd.Context(), args[0], toolArgs)
			if err != nil {
				return err
			}
			text := resultText(result)
			if result.IsError {
				return errors.New(text)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(text, "\n"))
			return err
		},
	}
	cmd.Flags().StringArrayVar(&pairs, "arg", nil, "tool argument as name=value (repeatable)")
	return cmd
}

// parseArgs turns name=value pairs into tool arguments. Values may
// contain '='; a repeated name is an error.
func parseArgs(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --arg %q: want name=value", p)
		}
		if _, dup := out[name]; dup {
			return nil, fmt.Errorf("argument %q given twice", name)
		}
		out[name] = value
	}
	return out, nil
}

func resultText(result *mcp.CallToolResult) string {
	var b strings.Builder
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}
