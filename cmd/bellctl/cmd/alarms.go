package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	domain "github.com/vcns/bell-timer/internal/domain/alarm"
)

var (
	// Alarm field flags shared by add and edit.
	alarmDay   string
	alarmTime  string
	alarmLabel string
	alarmSound string

	// listCmd prints the stored alarms.
	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List all alarms",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := commandContext()
			defer stop()

			alarms, err := newClient().ListAlarms(ctx)
			if err != nil {
				return err
			}

			renderAlarms(alarms)

			return nil
		},
	}

	// addCmd creates a new alarm.
	addCmd = &cobra.Command{
		Use:   "add",
		Short: "Add a new alarm",
		Example: `  bellctl add --day Monday --time 07:30 --sound chime.wav
  bellctl add --day Friday --time 16:00 --label "End of week" --sound bell.wav`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := commandContext()
			defer stop()

			added, err := newClient().AddAlarm(ctx, domain.Alarm{
				Day:   alarmDay,
				Time:  alarmTime,
				Label: alarmLabel,
				Sound: alarmSound,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Added alarm %s: %s %s (%s)\n", added.ID, added.Day, added.Time, added.Sound)

			return nil
		},
	}

	// editCmd updates fields of an existing alarm.
	editCmd = &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit an existing alarm",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := commandContext()
			defer stop()

			c := newClient()

			alarms, err := c.ListAlarms(ctx)
			if err != nil {
				return err
			}

			var current *domain.Alarm

			for i := range alarms {
				if alarms[i].ID == args[0] {
					current = &alarms[i]
					break
				}
			}

			if current == nil {
				return fmt.Errorf("alarm %s not found", args[0])
			}

			// Only flags the operator set override the stored fields.
			if cmd.Flags().Changed("day") {
				current.Day = alarmDay
			}

			if cmd.Flags().Changed("time") {
				current.Time = alarmTime
			}

			if cmd.Flags().Changed("label") {
				current.Label = alarmLabel
			}

			if cmd.Flags().Changed("sound") {
				current.Sound = alarmSound
			}

			updated, err := c.UpdateAlarm(ctx, args[0], *current)
			if err != nil {
				return err
			}

			fmt.Printf("Updated alarm %s: %s %s (%s)\n", updated.ID, updated.Day, updated.Time, updated.Sound)

			return nil
		},
	}

	// deleteCmd removes an alarm.
	deleteCmd = &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an alarm",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := commandContext()
			defer stop()

			if err := newClient().DeleteAlarm(ctx, args[0]); err != nil {
				return err
			}

			fmt.Printf("Deleted alarm %s\n", args[0])

			return nil
		},
	}

	// nextCmd shows the soonest upcoming alarm.
	nextCmd = &cobra.Command{
		Use:   "next",
		Short: "Show the next alarm to ring",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := commandContext()
			defer stop()

			next, err := newClient().Next(ctx)
			if err != nil {
				return err
			}

			if next == nil {
				fmt.Println("No alarms scheduled")
				return nil
			}

			fmt.Printf("%s %s (%s) rings at %s\n",
				next.Alarm.Day, next.Alarm.Time, next.Alarm.Label,
				next.At.Format(time.RFC1123))

			return nil
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	for _, c := range []*cobra.Command{addCmd, editCmd} {
		c.Flags().StringVar(&alarmDay, "day", "", "day of week (Monday..Sunday)")
		c.Flags().StringVar(&alarmTime, "time", "", "time of day (HH:MM, 24-hour)")
		c.Flags().StringVar(&alarmLabel, "label", "", "human-readable label")
		c.Flags().StringVar(&alarmSound, "sound", "", "sound file name (.wav)")
	}

	_ = addCmd.MarkFlagRequired("day")
	_ = addCmd.MarkFlagRequired("time")
	_ = addCmd.MarkFlagRequired("sound")

	rootCmd.AddCommand(listCmd, addCmd, editCmd, deleteCmd, nextCmd)
}
