package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vcns/bell-timer/internal/config"
	"github.com/vcns/bell-timer/internal/service/server"
	"github.com/vcns/bell-timer/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// alarmsFile path where the alarm list is persisted.
	alarmsFile string
	// audioDir holding the .wav sound library.
	audioDir string

	// rootCmd represents the base command for running the bell server.
	rootCmd = &cobra.Command{
		Use:   "bell-server [listen-address]",
		Short: "Run the bell-timer server",
		Long: `Starts the bell-timer server: the alarm scheduler, the sound player
and the HTTP API for managing alarms and the sound library.

The server listens on the address from the settings file unless a listen
address argument overrides it (e.g. :5001, 0.0.0.0:8080). Alarms are
persisted to a JSON file and survive restarts.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &server.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				AlarmsFile:    alarmsFile,
				AudioDir:      audioDir,
			}

			return server.Run(ctx, options)
		},
	}
)

// Execute runs the bell-server CLI and exits with non-zero status on error.
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
	rootCmd.Flags().
		StringVarP(&alarmsFile, "alarms-file", "a", "", "path to persist the alarm list (overrides configuration)")
	rootCmd.Flags().
		StringVarP(&audioDir, "audio-dir", "d", "", "directory holding .wav sounds (overrides configuration)")
}
