package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	// soundsCmd groups the sound library operations.
	soundsCmd = &cobra.Command{
		Use:   "sounds",
		Short: "Manage the server's sound library",
	}

	// soundsListCmd prints the available sounds.
	soundsListCmd = &cobra.Command{
		Use:   "list",
		Short: "List available sounds",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := commandContext()
			defer stop()

			list, err := newClient().ListSounds(ctx)
			if err != nil {
				return err
			}

			renderSounds(list)

			return nil
		},
	}

	// soundsUploadCmd uploads a local .wav file to the server.
	soundsUploadCmd = &cobra.Command{
		Use:   "upload <file.wav>",
		Short: "Upload a .wav file to the sound library",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := commandContext()
			defer stop()

			f, err := os.Open(filepath.Clean(args[0]))
			if err != nil {
				return fmt.Errorf("open sound file: %w", err)
			}

			defer func() {
				_ = f.Close()
			}()

			uploaded, err := newClient().UploadSound(ctx, filepath.Base(args[0]), f)
			if err != nil {
				return err
			}

			fmt.Printf("Uploaded %s (%d bytes)\n", uploaded.Name, uploaded.Size)

			return nil
		},
	}

	// soundsDeleteCmd removes a sound from the server.
	soundsDeleteCmd = &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a sound from the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := commandContext()
			defer stop()

			if err := newClient().DeleteSound(ctx, args[0]); err != nil {
				return err
			}

			fmt.Printf("Deleted %s\n", args[0])

			return nil
		},
	}

	// soundsTestCmd plays a sound once on the appliance.
	soundsTestCmd = &cobra.Command{
		Use:   "test <name>",
		Short: "Play a sound once on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := commandContext()
			defer stop()

			if err := newClient().TestSound(ctx, args[0]); err != nil {
				return err
			}

			fmt.Printf("Playing %s on the server\n", args[0])

			return nil
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	soundsCmd.AddCommand(soundsListCmd, soundsUploadCmd, soundsDeleteCmd, soundsTestCmd)
	rootCmd.AddCommand(soundsCmd)
}
