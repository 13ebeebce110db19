package cli

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/matzehuels/erdsync/internal/lsp"
	"github.com/matzehuels/erdsync/pkg/buildinfo"
	"github.com/matzehuels/erdsync/pkg/dsl"
	"github.com/matzehuels/erdsync/pkg/editor"
)

func (c *CLI) lspCommand() *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Run the language server on stdin/stdout",
		Long: `Lsp speaks the Language Server Protocol over stdio. Editors get diagnostics
for ignored lines and dangling links, a symbol per node, hover details, and
the erdsync.moveNode command for writing a dragged position back into the
document.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLSP(cmd.Context(), logFile)
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "write protocol logs to this file")

	return cmd
}

func (c *CLI) runLSP(ctx context.Context, logFile string) error {
	logger := loggerFromContext(ctx)
	cfg, err := c.config()
	if err != nil {
		return err
	}

	// stdout carries the protocol, so glsp logs only to a file.
	if logFile != "" {
		verbosity := 1
		if logger.GetLevel() <= log.DebugLevel {
			verbosity = 2
		}
		commonlog.Configure(verbosity, &logFile)
	} else {
		commonlog.Configure(0, nil)
	}

	ls := lsp.New(buildinfo.Version, editor.Options{
		Debounce: cfg.Debounce(),
		Parse:    dsl.Options{Layout: cfg.LayoutConfig()},
		Logger:   logger,
	})
	return ls.RunStdio()
}
