package main

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/VimYoung/spell-widgets/internal/remote"
)

// Version is set during build, the same pattern waymon's cmd/root.go
// uses for cobra's --version output.
var Version = "0.1.0-dev"

var widgetFlag string

var rootCmd = &cobra.Command{
	Use:           "cli",
	Short:         "Control running spell widgets",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&widgetFlag, "l", "l", "", "target widget name")
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)

	rootCmd.AddCommand(updateCmd, lookCmd, showCmd, hideCmd, logCmd, listCmd)
}

// Execute runs the root command, translating any error into a
// prefixed stderr line and a cliError carrying the exit code.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		if ce, ok := err.(*cliError); ok {
			fmt.Fprintln(os.Stderr, ce.prefix, ce.Error())
			return ce
		}
		ce := &cliError{prefix: "[Bad Sub-command]", code: 1, err: err}
		fmt.Fprintln(os.Stderr, ce.prefix, ce.Error())
		return ce
	}
	return nil
}

// cliError pairs a remote-error class with its stderr prefix and
// exit code.
type cliError struct {
	prefix string
	code   int
	err    error
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

func usageErr(format string, args ...interface{}) error {
	return &cliError{prefix: "[Undefined Arg]", code: 1, err: fmt.Errorf(format, args...)}
}

func requireWidget() (string, error) {
	if widgetFlag == "" {
		return "", usageErr("missing required -l <widget> flag")
	}
	return widgetFlag, nil
}

// sendRequest dials widget's IPC socket, writes line, and returns the
// trimmed response.
func sendRequest(widget, line string) (string, error) {
	conn, err := net.DialTimeout("unix", remote.SocketPath(widget), 2*time.Second)
	if err != nil {
		return "", &cliError{prefix: "[Method Error]", code: 2, err: fmt.Errorf("connect to %s: %w", widget, err)}
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(line + "\n")); err != nil {
		return "", &cliError{prefix: "[Method Error]", code: 2, err: err}
	}
	_ = conn.(*net.UnixConn).CloseWrite()

	buf := make([]byte, 4096)
	n, err := conn.Read(buf)
	if err != nil && n == 0 {
		// A closed connection with no bytes is itself a valid "no
		// response" success for hide/show/update.
		return "", nil
	}
	resp := strings.TrimRight(string(buf[:n]), "\r\n")
	return classifyResponse(resp)
}

// classifyResponse maps the plain-text error strings internal/remote's
// Dispatch can produce back onto the CLI's fixed stderr prefixes: a
// value the widget can't accept is a parse error, an internal/sentinel
// failure has no documented mapping, and transport trouble is a method
// error. [Unknown Value] is reserved for the CLI's own argument
// validation, not for wire errors.
func classifyResponse(resp string) (string, error) {
	switch {
	case strings.Contains(resp, remote.ErrNotSupported.Error()):
		return "", &cliError{prefix: "[Parse Error]", code: 1, err: fmt.Errorf("%s", resp)}
	case strings.Contains(resp, remote.ErrFailed.Error()):
		return "", &cliError{prefix: "[Undocumented Error]", code: 1, err: fmt.Errorf("%s", resp)}
	case strings.Contains(resp, remote.ErrMethodError.Error()):
		return "", &cliError{prefix: "[Method Error]", code: 2, err: fmt.Errorf("%s", resp)}
	default:
		return resp, nil
	}
}
