package main

import "github.com/spf13/cobra"

var hideCmd = &cobra.Command{
	Use:   "hide",
	Short: "Hide a widget's surface without destroying it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		widget, err := requireWidget()
		if err != nil {
			return err
		}
		_, err = sendRequest(widget, "hide")
		return err
	},
}
