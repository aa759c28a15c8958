package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vcns/bell-timer/internal/client"
	"github.com/vcns/bell-timer/internal/config"
	"github.com/vcns/bell-timer/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// serverURL overrides the server base URL from configuration.
	serverURL string
	// timeout overrides the request timeout from configuration.
	timeout time.Duration

	// rootCmd represents the base command for operating a bell-timer server.
	rootCmd = &cobra.Command{
		Use:   "bellctl",
		Short: "Manage alarms and sounds on a bell-timer server",
		Long: `bellctl talks to a running bell-server over its HTTP API.

The server URL and timeout are read from the settings file when present;
the --server and --timeout flags override them.`,
	}
)

// Execute runs the bellctl CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().
		StringVarP(&serverURL, "server", "s", "", "server base URL (overrides configuration)")
	rootCmd.PersistentFlags().
		DurationVarP(&timeout, "timeout", "t", 0, "request timeout (overrides configuration)")
}

// newClient builds an API client from configuration plus flag overrides.
// A missing settings file falls back to defaults so bellctl works against
// a local server out of the box.
func newClient() *client.Client {
	cfg, err := config.Load(configPath)
	if err != nil {
		cfg = &config.Config{} //nolint:exhaustruct // Validate fills the defaults.
		_ = config.Validate(cfg)
	}

	base := cfg.ServerURL
	if serverURL != "" {
		base = serverURL
	}

	requestTimeout := cfg.Timeout
	if timeout > 0 {
		requestTimeout = timeout
	}

	return client.New(base, requestTimeout)
}

// commandContext returns a context canceled on SIGTERM/SIGINT.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}
