package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/flipcat/catalog-bundler/internal/logger"
	"github.com/flipcat/catalog-bundler/internal/service/catalog"
	"github.com/flipcat/catalog-bundler/internal/version"
)

var (
	// logLevel selects the logging verbosity.
	logLevel string

	// rootCmd represents the base command for validating a catalog checkout.
	rootCmd = &cobra.Command{
		Use:   "catalog-checker [catalog-root]",
		Short: "Validate every application manifest in a catalog checkout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}

			root := "."
			if len(args) > 0 {
				root = args[0]
			}

			return catalog.Run(ctx, &catalog.Options{Root: root})
		},
	}
)

// Execute runs the catalog-checker CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", logger.Level().String(), "logging level")
}
