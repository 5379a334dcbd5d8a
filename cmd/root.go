package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/jsphweid/chordview/constants"
	"github.com/spf13/cobra"
)

var (
	serviceURL string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "chordview",
	Short: "Guitar chord detector client",
	Long:  `Upload an audio file to a chord detection service and look at the chords it finds.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serviceURL, "service", constants.GetServiceURL(), "base URL of the chord detection service (CHORD_SERVICE_URL)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func Execute() {
	cobra.CheckErr(rootCmd.ExecuteContext(context.Background()))
}
