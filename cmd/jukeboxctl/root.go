package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var dataPath string
	var logLevel string

	ctx := newCommandContext(&dataPath, &logLevel)

	rootCmd := &cobra.Command{
		Use:           "jukeboxctl",
		Short:         "Administer a jukebox data directory",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&dataPath, "data-path", "d", "", "Data directory (default: $DATA_PATH or ~/Jukebox)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newSeedCommand(ctx))
	rootCmd.AddCommand(newSongsCommand(ctx))
	rootCmd.AddCommand(newReviewsCommand(ctx))
	rootCmd.AddCommand(newMoveCommand(ctx))
	rootCmd.AddCommand(newCreateWriterCommand(ctx))

	return rootCmd
}
