package main

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	advisorserver "github.com/HendryAvila/gemini-advisor/internal/server"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			s, cleanup, err := advisorserver.New(cfg, logger)
			if err != nil {
				return fmt.Errorf("creating server: %w", err)
			}
			defer cleanup()

			logger.Info("serving on stdio",
				zap.String("version", advisorserver.Version),
				zap.String("config", cfg.Source),
				zap.Duration("timeout", cfg.Timeout),
				zap.Bool("journal", cfg.Journal.Enabled),
			)

			// ServeStdio handles SIGINT/SIGTERM itself.
			return server.ServeStdio(s, server.WithErrorLogger(zap.NewStdLog(logger)))
		},
	}
}
