package main

import (
	"bytes"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/VimYoung/spell-widgets/internal/logging"
)

var logCmd = &cobra.Command{
	Use:   "log [kind]",
	Short: "Stream structured log lines from running widgets",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := ""
		if len(args) == 1 {
			kind = args[0]
		}
		return streamLog(widgetFlag, kind, os.Stdout)
	},
}

// levelMarkers maps a user-supplied kind onto the fixed four-letter
// level token the logger renders near the start of every line.
var levelMarkers = map[string]string{
	"trace": "DEBU",
	"debug": "DEBU",
	"info":  "INFO",
	"warn":  "WARN",
}

// streamLog binds the datagram socket every widget's logging.Subscriber
// dials as a client and prints each record, optionally filtered to one
// widget's prefix (-l) and one level kind.
func streamLog(widget, kind string, out *os.File) error {
	marker := ""
	if kind != "" {
		m, ok := levelMarkers[strings.ToLower(kind)]
		if !ok {
			return &cliError{prefix: "[Unknown Value]", code: 1, err: fmt.Errorf("unknown log kind %q", kind)}
		}
		marker = m
	}

	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		return &cliError{prefix: "[Undefined Arg]", code: 1, err: fmt.Errorf("XDG_RUNTIME_DIR is not set")}
	}
	path := logging.LogSocketPath(runtimeDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return &cliError{prefix: "[Method Error]", code: 2, err: err}
	}
	_ = os.Remove(path)

	ln, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Name: path, Net: "unixgram"})
	if err != nil {
		return &cliError{prefix: "[Method Error]", code: 2, err: err}
	}
	defer ln.Close()
	defer os.Remove(path)

	buf := make([]byte, 16384)
	for {
		n, err := ln.Read(buf)
		if err != nil {
			return &cliError{prefix: "[Method Error]", code: 2, err: err}
		}
		line := buf[:n]
		if widget != "" && !bytes.Contains(line, []byte(widget)) {
			continue
		}
		if marker != "" && !bytes.Contains(line, []byte(marker)) {
			continue
		}
		fmt.Fprint(out, string(line))
	}
}
