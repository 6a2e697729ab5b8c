// Command spell-cli controls running spell widgets: it parses a
// subcommand, opens the target widget's per-widget AF_UNIX IPC socket,
// issues one request, and maps transport/remote errors onto fixed
// stderr prefixes and exit codes (0 ok, 1 usage/parse, 2 transport).
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		// Execute has already written a prefixed stderr line; just pick
		// the exit code.
		if ce, ok := err.(*cliError); ok {
			os.Exit(ce.code)
		}
		fmt.Fprintln(os.Stderr, "[Undocumented Error]", err)
		os.Exit(2)
	}
}
