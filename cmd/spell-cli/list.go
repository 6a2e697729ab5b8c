package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"github.com/VimYoung/spell-widgets/internal/desktopentry"
)

const busNamePrefix = "org.VimYoung."

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List widgets currently registered on the session bus",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := listWidgetNames()
		if err != nil {
			return &cliError{prefix: "[Method Error]", code: 2, err: err}
		}
		apps, _ := desktopentry.ScanApps(desktopentry.DataDirs(os.Getenv("XDG_DATA_DIRS"), os.Getenv("HOME")))
		byID := make(map[string]desktopentry.App, len(apps))
		for _, a := range apps {
			byID[a.ID] = a
		}

		for _, name := range names {
			widget := strings.TrimPrefix(name, busNamePrefix)
			if app, ok := byID[widget]; ok {
				fmt.Printf("%s\t%s\n", widget, app.Name)
				continue
			}
			fmt.Println(widget)
		}
		return nil
	},
}

// listWidgetNames queries the session bus for every secondary widget name
// under the org.VimYoung. prefix. Widgets hosted by the
// primary process share the single org.VimYoung.Spell name and have no
// individual bus identity, so they cannot be enumerated this way; list
// only shows what's independently addressable.
func listWidgetNames() ([]string, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	defer conn.Close()

	var all []string
	if err := conn.BusObject().Call("org.freedesktop.DBus.ListNames", 0).Store(&all); err != nil {
		return nil, fmt.Errorf("list names: %w", err)
	}

	names := make([]string, 0, len(all))
	for _, n := range all {
		if strings.HasPrefix(n, busNamePrefix) && n != "org.VimYoung.Spell" {
			names = append(names, n)
		}
	}
	return names, nil
}
