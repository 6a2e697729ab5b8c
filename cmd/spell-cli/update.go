package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update <key> <value>",
	Short: "Set a foreign-state key on a running widget",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		widget, err := requireWidget()
		if err != nil {
			return err
		}
		_, err = sendRequest(widget, fmt.Sprintf("update %s %s", args[0], args[1]))
		return err
	},
}
