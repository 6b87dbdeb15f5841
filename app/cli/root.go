// Package cli implements the apparel command line: the HTTP service and
// offline rendering of single designs.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"apparel-designer/config"
	"apparel-designer/logging"
)

var version = "dev"

// SetVersion sets the version shown by --version
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

type loggerKey struct{}

func withLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

func loggerFromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// Execute runs the apparel CLI
func Execute() error {
	var verbose bool

	root := &cobra.Command{
		Use:           "apparel",
		Short:         "Apparel designer service",
		Long:          `apparel serves the sports apparel designer API and renders single designs from the command line.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			level := cfg.Server.LogLevel
			if verbose {
				level = "debug"
			}
			logger, err := logging.New(level, cfg.Server.Production())
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			cmd.SetContext(withLogger(cmd.Context(), logger))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = loggerFromContext(cmd.Context()).Sync()
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newServeCmd())
	root.AddCommand(newRenderCmd())
	root.AddCommand(newCatalogCmd())

	return root.ExecuteContext(context.Background())
}
