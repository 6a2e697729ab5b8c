package main

import "github.com/spf13/cobra"

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Make a hidden widget visible again",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		widget, err := requireWidget()
		if err != nil {
			return err
		}
		_, err = sendRequest(widget, "show")
		return err
	},
}
