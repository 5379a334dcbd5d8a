package cmd

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/jsphweid/chordview/detect"
	"github.com/jsphweid/chordview/midi"
	"github.com/jsphweid/chordview/model"
	"github.com/jsphweid/chordview/preview"
	"github.com/jsphweid/chordview/session"
	"github.com/jsphweid/chordview/view"
	"github.com/spf13/cobra"
)

var midiOut string

func init() {
	detectCmd.Flags().StringVar(&midiOut, "midi", "", "also write the chords to this MIDI file")
	rootCmd.AddCommand(detectCmd)
}

var detectCmd = &cobra.Command{
	Use:   "detect FILE",
	Short: "Detects the chords of one audio file",
	Long:  `Sends one audio file to the detection service and prints the chords.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return Detect(cmd.Context(), detect.NewClient(serviceURL), args[0], midiOut, cmd.OutOrStdout())
	},
}

func readSelection(path string) (model.SelectedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.SelectedFile{}, err
	}
	return model.SelectedFile{
		Name:        filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Data:        data,
	}, nil
}

// Detect drives a headless session through select and submit and prints
// the resulting view. A failed detection is returned as an error after the
// view is printed.
func Detect(ctx context.Context, d detect.Detector, path string, midiPath string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	f, err := readSelection(path)
	if err != nil {
		return err
	}

	sess := session.New("cli", d, preview.NewRegistry(), nil)
	defer sess.Teardown()

	sess.SelectFile(f)
	sess.Submit(ctx)

	snap := sess.Snapshot()
	page := view.Build(snap)
	// nothing to play in a terminal
	page.PreviewURL = ""
	if err := view.RenderText(out, page); err != nil {
		return err
	}
	if snap.State != model.Succeeded {
		return fmt.Errorf("detection failed: %s", snap.Error)
	}

	if midiPath != "" {
		voiced, err := midi.WriteChordFile(midiPath, *snap.Result)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %d chords to %s\n", voiced, midiPath)
	}
	return nil
}
