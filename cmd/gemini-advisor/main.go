// gemini-advisor: Gemini advisory MCP server
//
// Exposes ten advisory tools (planning, review, debugging, comparisons...)
// to any MCP host over stdio. Each call renders a prompt and runs the
// gemini CLI once; the model's answer is returned verbatim.
//
// Usage:
//
//	gemini-advisor serve                          # Start MCP server (stdio transport)
//	gemini-advisor ask review-approach --arg proposedApproach="..."
//	gemini-advisor tools --output yaml            # List the advisory tools
//	gemini-advisor version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HendryAvila/gemini-advisor/internal/config"
	"github.com/HendryAvila/gemini-advisor/internal/logging"
	advisorserver "github.com/HendryAvila/gemini-advisor/internal/server"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:          "gemini-advisor",
		Short:        "Gemini advisory MCP server",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "",
		"config file (default $"+config.EnvConfig+" or ~/.gemini-advisor/config.toml)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "",
		"log level: debug, info, warn, error or off (overrides config)")

	root.AddCommand(
		newServeCmd(flags),
		newAskCmd(flags),
		newToolsCmd(),
		newVersionCmd(),
	)
	return root
}

// load resolves the configuration and builds the stderr logger.
func (f *globalFlags) load() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	logger, err := logging.New(cfg.Logging())
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gemini-advisor v%s\n", advisorserver.Version)
		},
	}
}
