package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var lookCmd = &cobra.Command{
	Use:   "look <key>",
	Short: "Print a foreign-state key's current literal value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		widget, err := requireWidget()
		if err != nil {
			return err
		}
		resp, err := sendRequest(widget, fmt.Sprintf("look %s", args[0]))
		if err != nil {
			return err
		}
		fmt.Println(resp)
		return nil
	},
}
