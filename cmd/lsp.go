// Copyright © 2024 The rsresolve authors

package cmd

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/luthersystems/rsresolve/lsp"
)

// LSPCommand creates the "lsp" cobra command with optional embedder
// configuration. Embedders can pass WithExternalCrates or WithAnalyzers to
// adjust the diagnostics the server publishes.
func LSPCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts)

	var (
		stdio bool
		port  int
	)

	cmd := &cobra.Command{
		Use:   "lsp [flags]",
		Short: "Start the rsresolve Language Server Protocol server",
		Long: `Start an LSP server for Rust source files.

The language server provides diagnostics, hover, go-to-definition, find
references, document highlights, document and workspace symbols, rename,
folding ranges, signature help, semantic tokens and call hierarchy, all
computed from name resolution alone.

Transport modes:
  --stdio      Use stdin/stdout for LSP communication (default)
  --port N     Listen for an LSP client on TCP port N

Logs go to stderr; raise --log-level to debug to follow requests. The delay
before diagnostics are republished after an edit is the lsp.debounce
setting (default 300ms).

Examples:
  rsresolve lsp                      Start with stdio transport
  rsresolve lsp --stdio              Same as above (explicit)
  rsresolve lsp --port 7998          Start with TCP on port 7998

Editor configuration (VS Code):
  Install a generic LSP client extension and configure it to run
  "rsresolve lsp --stdio" for .rs files.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			srv := lsp.New(
				lsp.WithAnalysisConfig(cfg.analysisConfig()),
				lsp.WithAnalyzers(cfg.allAnalyzers()),
				lsp.WithLogger(log.StandardLogger()),
				lsp.WithDebounce(viper.GetDuration("lsp.debounce")),
			)

			if !stdio && port > 0 {
				addr := fmt.Sprintf("localhost:%d", port)
				log.WithField("addr", addr).Info("rsresolve LSP server listening")
				if err := srv.RunTCP(addr); err != nil {
					return fmt.Errorf("lsp server error: %w", err)
				}
				return nil
			}
			if err := srv.RunStdio(); err != nil {
				return fmt.Errorf("lsp server error: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&stdio, "stdio", false,
		"Use stdin/stdout for LSP communication (default behavior)")
	cmd.Flags().IntVar(&port, "port", 0,
		"TCP port for LSP server (use instead of --stdio)")

	return cmd
}
