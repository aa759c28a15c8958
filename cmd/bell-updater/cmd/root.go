package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vcns/bell-timer/internal/config"
	"github.com/vcns/bell-timer/internal/service/updater"
	"github.com/vcns/bell-timer/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// updateFolder is the URL where release artifacts will be hosted.
	updateFolder string

	// rootCmd represents the base command for downloading and applying updates.
	rootCmd = &cobra.Command{
		Use:   "bell-updater",
		Short: "Download and apply bell-timer updates",
		Long: `Fetches the release manifest from the configured update folder,
compares versions and checksums with the installed files, and when they
differ stops the bell-timer processes, applies the new binaries and
restarts the server.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &updater.Options{
				ConfigPath: configPath,
			}

			return updater.Run(ctx, options)
		},
	}

	// packageCmd builds the release manifest on the publishing side.
	packageCmd = &cobra.Command{
		Use:   "package",
		Short: "Build the release manifest for the artifacts in the current directory",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &updater.PackageOptions{
				UpdateFolder: updateFolder,
			}

			return updater.Package(ctx, options)
		},
	}
)

// Execute runs the bell-updater CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	packageCmd.Flags().
		StringVarP(&updateFolder, "update-folder", "u", "", "URL where the artifacts will be hosted")

	rootCmd.AddCommand(packageCmd)
}
