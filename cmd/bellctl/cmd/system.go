package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// statusCmd prints the server status report.
	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show server status",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := commandContext()
			defer stop()

			status, err := newClient().Status(ctx)
			if err != nil {
				return err
			}

			renderStatus(status)

			return nil
		},
	}

	// timeCmd prints the server host's timezone and NTP state.
	timeCmd = &cobra.Command{
		Use:   "time",
		Short: "Show the server host's time settings",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := commandContext()
			defer stop()

			status, err := newClient().TimeStatus(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("timezone: %s\nntp enabled: %t\nsynchronized: %t\n",
				status.Timezone, status.NTPEnabled, status.Synchronized)

			return nil
		},
	}

	// timesyncCmd enables NTP synchronization on the server host.
	timesyncCmd = &cobra.Command{
		Use:   "timesync",
		Short: "Enable NTP time synchronization on the server host",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := commandContext()
			defer stop()

			result, err := newClient().TimeSync(ctx)
			if err != nil {
				return err
			}

			fmt.Println(result.Message)

			return nil
		},
	}

	// netplanApplyCmd applies the netplan configuration on the server host.
	netplanApplyCmd = &cobra.Command{
		Use:   "netplan-apply",
		Short: "Apply the netplan configuration on the server host",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := commandContext()
			defer stop()

			result, err := newClient().NetplanApply(ctx)
			if err != nil {
				return err
			}

			fmt.Println(result.Message)

			return nil
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(statusCmd, timeCmd, timesyncCmd, netplanApplyCmd)
}
