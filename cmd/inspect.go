package cmd

import (
	"fmt"

	"github.com/jsphweid/chordview/chord"
	"github.com/jsphweid/chordview/midi"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Inspects an exported MIDI file",
	Long:  `Prints when each chord of an exported MIDI file starts and its notes.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := midi.ReadMidiFile(args[0])
		if err != nil {
			return err
		}
		onsets, err := midi.Onsets(s)
		if err != nil {
			return err
		}
		for _, o := range onsets {
			fmt.Fprintf(cmd.OutOrStdout(), "%.2fs %v\n", o.Time, chord.CreateChordKey(o.Notes))
		}
		return nil
	},
}
