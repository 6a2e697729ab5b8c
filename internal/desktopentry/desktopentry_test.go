package desktopentry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeEntry(t *testing.T, dir, name, contents string) {
	t.Helper()
	appsDir := filepath.Join(dir, "applications")
	require.NoError(t, os.MkdirAll(appsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(appsDir, name), []byte(contents), 0o644))
}

func TestScanAppsParsesNameAndExec(t *testing.T) {
	dir := t.TempDir()
	writeEntry(t, dir, "bar.desktop", "[Desktop Entry]\nName=Bar Widget\nExec=spell-bar\n")

	apps, err := ScanApps([]string{dir})
	require.NoError(t, err)
	require.Len(t, apps, 1)
	require.Equal(t, "bar", apps[0].ID)
	require.Equal(t, "Bar Widget", apps[0].Name)
	require.Equal(t, "spell-bar", apps[0].Exec)
	require.False(t, apps[0].NoShown)
}

func TestScanAppsHonoursFirstDirPrecedence(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeEntry(t, first, "bar.desktop", "[Desktop Entry]\nName=First\n")
	writeEntry(t, second, "bar.desktop", "[Desktop Entry]\nName=Second\n")

	apps, err := ScanApps([]string{first, second})
	require.NoError(t, err)
	require.Len(t, apps, 1)
	require.Equal(t, "First", apps[0].Name)
}

func TestScanAppsFlagsHidden(t *testing.T) {
	dir := t.TempDir()
	writeEntry(t, dir, "hidden.desktop", "[Desktop Entry]\nName=Hidden\nNoDisplay=true\n")

	apps, err := ScanApps([]string{dir})
	require.NoError(t, err)
	require.Len(t, apps, 1)
	require.True(t, apps[0].NoShown)
}

func TestDataDirsOrdering(t *testing.T) {
	dirs := DataDirs("/usr/share", "/home/alice")
	require.Equal(t, []string{"/home/alice/.local/share", "/usr/share"}, dirs)
}
