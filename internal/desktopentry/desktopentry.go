// Package desktopentry is a small ".desktop" application-entry scanner.
// It is never imported by the runtime core — only by cmd/spell-cli's
// `list` subcommand, to annotate a running widget's bus name with a
// human-readable application name when one resolves.
package desktopentry

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// App is one parsed .desktop entry's fields relevant to widget-name
// annotation.
type App struct {
	ID      string // file basename without ".desktop"
	Name    string
	Exec    string
	NoShown bool // NoDisplay=true or Hidden=true
}

// ScanApps walks each "applications" subdirectory of dataDirs and
// returns every .desktop file found, later entries in dataDirs losing to
// earlier ones on ID collision (XDG precedence order: the first
// directory in the list wins, matching $XDG_DATA_DIRS ordering).
func ScanApps(dataDirs []string) ([]App, error) {
	seen := make(map[string]App)
	var order []string

	for _, dir := range dataDirs {
		appsDir := filepath.Join(dir, "applications")
		entries, err := os.ReadDir(appsDir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".desktop") {
				continue
			}
			id := strings.TrimSuffix(entry.Name(), ".desktop")
			if _, dup := seen[id]; dup {
				continue
			}
			app, err := parseFile(filepath.Join(appsDir, entry.Name()), id)
			if err != nil {
				continue
			}
			seen[id] = app
			order = append(order, id)
		}
	}

	apps := make([]App, 0, len(order))
	for _, id := range order {
		apps = append(apps, seen[id])
	}
	return apps, nil
}

// parseFile reads the [Desktop Entry] section's Name/Exec/NoDisplay/
// Hidden keys out of a .desktop file.
func parseFile(path, id string) (App, error) {
	f, err := os.Open(path)
	if err != nil {
		return App{}, err
	}
	defer f.Close()

	app := App{ID: id}
	inEntrySection := false
	scan := bufio.NewScanner(f)
	for scan.Scan() {
		line := strings.TrimSpace(scan.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			inEntrySection = line == "[Desktop Entry]"
			continue
		}
		if !inEntrySection {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "Name":
			if app.Name == "" {
				app.Name = strings.TrimSpace(val)
			}
		case "Exec":
			app.Exec = strings.TrimSpace(val)
		case "NoDisplay", "Hidden":
			if strings.TrimSpace(val) == "true" {
				app.NoShown = true
			}
		}
	}
	if err := scan.Err(); err != nil {
		return App{}, err
	}
	return app, nil
}

// DataDirs resolves $XDG_DATA_DIRS (falling back to the standard
// /usr/local/share:/usr/share default) plus $HOME/.local/share, user
// directory first.
func DataDirs(xdgDataDirs, home string) []string {
	var dirs []string
	if home != "" {
		dirs = append(dirs, filepath.Join(home, ".local", "share"))
	}
	if xdgDataDirs == "" {
		xdgDataDirs = "/usr/local/share:/usr/share"
	}
	dirs = append(dirs, strings.Split(xdgDataDirs, ":")...)
	return dirs
}
