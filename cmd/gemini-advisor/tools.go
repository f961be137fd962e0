package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/HendryAvila/gemini-advisor/internal/registry"
)

func newToolsCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the advisory tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeTools(cmd.OutOrStdout(), output, registry.All())
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text, json or yaml")
	return cmd
}

func writeTools(w io.Writer, format string, defs []registry.ToolDefinition) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(defs)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(defs); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TOOL\tTIER\tPARAMETERS\tCOMMAND")
		for _, d := range defs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.Name, d.Tier, paramList(d.Parameters), d.Command.Usage)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}
}

// paramList renders parameters with optional ones in brackets.
func paramList(params []registry.Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		if p.Required {
			parts[i] = p.Name
		} else {
			parts[i] = "[" + p.Name + "]"
		}
	}
	return strings.Join(parts, " ")
}
