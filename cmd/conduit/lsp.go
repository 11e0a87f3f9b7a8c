package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/conduit/internal/lsp"
	"github.com/conduit-lang/conduit/internal/lsp/providers"
	"github.com/conduit-lang/conduit/internal/lsp/providers/latex"
)

var lspVerbose bool

func init() {
	lspCmd.Flags().BoolVar(&lspVerbose, "verbose", false, "Log at debug level instead of info")
}

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Start the LaTeX/BibTeX language server",
	Long: `Start the language server over stdin/stdout using the Language
Server Protocol. It is normally launched by an editor, not run by hand.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if lspVerbose {
			cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		}
		logger, err := cfg.Build()
		if err != nil {
			return err
		}
		defer logger.Sync()

		server := lsp.NewServer(logger, providers.Set{
			Completer: latex.Chain{
				latex.TikzCompleter{},
				latex.CitationCompleter{},
				latex.BeginCommandCompleter{},
			},
		})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigCh
			cancel()
		}()

		return server.Run(ctx)
	},
}
