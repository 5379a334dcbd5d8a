package cmd

import (
	"fmt"

	"github.com/jsphweid/chordview/detect"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(pingCmd)
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Checks the detection service is up",
	Long:  `Checks the detection service is up`,
	RunE: func(cmd *cobra.Command, args []string) error {
		hr, err := detect.NewClient(serviceURL).Health(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", serviceURL, hr.Status)
		return nil
	},
}
