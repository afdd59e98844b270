package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/flipcat/catalog-bundler/internal/logger"
	"github.com/flipcat/catalog-bundler/internal/service/bundler"
	"github.com/flipcat/catalog-bundler/internal/version"
)

var (
	// skipLint disables the source lint stage.
	skipLint bool
	// skipBuild disables the source build stage.
	skipBuild bool
	// skipSourceCode excludes the fetched source tree from the bundle.
	skipSourceCode bool
	// skipRefresh disables the build tool self-update.
	skipRefresh bool
	// allowVersionMismatch downgrades a version conflict to a warning.
	allowVersionMismatch bool
	// jsonManifestPath optionally exports the reconciled manifest as JSON.
	jsonManifestPath string
	// artifactsPath optionally archives the compiled build output.
	artifactsPath string
	// logLevel selects the logging verbosity.
	logLevel string

	// rootCmd represents the base command for bundling one application.
	rootCmd = &cobra.Command{
		Use:   "catalog-bundler [manifest-path] [bundle-path]",
		Short: "Bundle a catalog application from its manifest",
		Long: `Bundles one catalog application: fetches the git revision pinned in the
manifest, lints and builds it with the external build tool, reconciles the
manifest against the build declaration, validates texts and images, and
writes the resulting bundle zip to the given path.`,
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}

			options := &bundler.Options{
				ManifestPath:         args[0],
				BundlePath:           args[1],
				SkipLint:             skipLint,
				SkipBuild:            skipBuild,
				SkipSourceCode:       skipSourceCode,
				SkipRefresh:          skipRefresh,
				AllowVersionMismatch: allowVersionMismatch,
				JSONManifestPath:     jsonManifestPath,
				ArtifactsPath:        artifactsPath,
			}

			return bundler.Run(ctx, options)
		},
	}
)

// Execute runs the catalog-bundler CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().BoolVar(&skipLint, "nolint", false, "skip linting the fetched source")
	rootCmd.Flags().BoolVar(&skipBuild, "nobuild", false, "skip building the fetched source")
	rootCmd.Flags().BoolVar(&skipSourceCode, "nosourcecode", false, "exclude source code from the bundle")
	rootCmd.Flags().BoolVar(&skipRefresh, "skip-refresh", false, "skip the build tool self-update")
	rootCmd.Flags().BoolVar(&allowVersionMismatch, "allow-version-mismatch", false,
		"warn instead of fail when manifest and declaration versions differ")
	rootCmd.Flags().StringVar(&jsonManifestPath, "json-manifest", "", "also export the manifest as JSON to this path")
	rootCmd.Flags().StringVar(&artifactsPath, "artifacts", "", "also archive compiled artifacts to this path")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", logger.Level().String(), "logging level")
}
