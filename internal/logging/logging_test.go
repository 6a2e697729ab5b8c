package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRollingFileRotatesOnHourBoundary(t *testing.T) {
	dir := t.TempDir()
	rf, err := newRollingFile(dir, "bar")
	require.NoError(t, err)
	defer rf.Close()

	base := time.Date(2026, 1, 1, 10, 30, 0, 0, time.UTC)
	rf.now = func() time.Time { return base }
	require.NoError(t, rf.rotateLocked())

	_, err = rf.Write([]byte("first hour\n"))
	require.NoError(t, err)

	rf.now = func() time.Time { return base.Add(90 * time.Minute) }
	_, err = rf.Write([]byte("second hour\n"))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		require.True(t, filepath.Ext(e.Name()) == ".log")
	}
}

func TestDatagramWriterDropsWithoutListener(t *testing.T) {
	dir := t.TempDir()
	w, err := newDatagramWriter(filepath.Join(dir, "nonexistent.sock"))
	require.NoError(t, err)
	defer w.Close()

	n, err := w.Write([]byte("info: nothing is listening\n"))
	require.NoError(t, err)
	require.Equal(t, len("info: nothing is listening\n"), n)
}

func TestLevelFilterWriterDropsDebug(t *testing.T) {
	var buf countingWriter
	w := &levelFilterWriter{dst: &buf}

	_, _ = w.Write([]byte("2026-01-01T00:00:00 DEBU debug message\n"))
	require.Equal(t, 0, buf.writes)

	_, _ = w.Write([]byte("2026-01-01T00:00:00 INFO info message\n"))
	require.Equal(t, 1, buf.writes)
}

type countingWriter struct{ writes int }

func (c *countingWriter) Write(p []byte) (int, error) {
	c.writes++
	return len(p), nil
}
