// Package logging implements the structured logging fan-out:
// one subscriber per process writing to stdout, an hourly-rotating file
// under $XDG_RUNTIME_DIR/spell/, and a non-blocking datagram socket the
// CLI streams from.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// LogSocketPath returns the datagram socket path the CLI's `log`
// subcommand reads from.
func LogSocketPath(xdgRuntimeDir string) string {
	return filepath.Join(xdgRuntimeDir, "spell", "spell.sock")
}

// Subscriber owns the three sinks and the *log.Logger writing to all of
// them. Only one should be installed per process, at the first widget's
// construction.
type Subscriber struct {
	logger   *log.Logger
	file     *rollingFile
	datagram *datagramWriter
}

// New installs the fan-out for widget under $XDG_RUNTIME_DIR/spell/.
func New(xdgRuntimeDir, widget string) (*Subscriber, error) {
	dir := filepath.Join(xdgRuntimeDir, "spell")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("logging: mkdir %s: %w", dir, err)
	}

	file, err := newRollingFile(dir, widget)
	if err != nil {
		return nil, fmt.Errorf("logging: rolling file: %w", err)
	}

	dgram, err := newDatagramWriter(LogSocketPath(xdgRuntimeDir))
	if err != nil {
		return nil, fmt.Errorf("logging: datagram writer: %w", err)
	}

	// Sink 1 (stdout) and sink 3 (datagram) filter to info/warn; sink 2
	// (the rolling file) keeps everything, including debug.
	mw := io.MultiWriter(
		&levelFilterWriter{dst: os.Stdout},
		file,
		&levelFilterWriter{dst: dgram},
	)
	logger := log.NewWithOptions(mw, log.Options{
		Prefix:          widget,
		ReportTimestamp: true,
		Level:           log.DebugLevel,
	})

	return &Subscriber{logger: logger, file: file, datagram: dgram}, nil
}

// Logger returns the shared *log.Logger every component should log
// through.
func (s *Subscriber) Logger() *log.Logger { return s.logger }

// Close closes the current log file and the datagram socket.
func (s *Subscriber) Close() error {
	if err := s.file.Close(); err != nil {
		return err
	}
	return s.datagram.Close()
}

var (
	debugMarker = []byte("DEBU")
	fatalMarker = []byte("FATA")
)

// levelFilterWriter drops debug-level lines, forwarding everything else.
// charmbracelet/log always renders the level as a fixed 4-letter token
// near the start of the line (DEBU/INFO/WARN/ERRO/FATA); scanning for
// that token is the only per-writer filter available without a second
// logger instance per sink, and the fan-out needs one logger shared
// across all three so every sink sees an identical message.
type levelFilterWriter struct {
	dst io.Writer
}

func (w *levelFilterWriter) Write(p []byte) (int, error) {
	if bytes.Contains(p, debugMarker) && !bytes.Contains(p, fatalMarker) {
		return len(p), nil
	}
	_, err := w.dst.Write(p)
	return len(p), err
}
