package remote

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/godbus/dbus/v5"
)

const (
	primaryBusName = "org.VimYoung.Spell"
	primaryIface   = "org.VimYoung.Spell1"
	secondaryIface = "org.VimYoung.Widget"
	objectPath     = dbus.ObjectPath("/org/VimYoung/VarHandler")
	changedSignal  = "layer_var_value_changed"

	// D-Bus error names carried on method replies; the CLI maps each
	// back onto its fixed stderr prefix.
	errNameNotSupported = "org.VimYoung.Spell.Error.NotSupported"
	errNameFailed       = "org.VimYoung.Spell.Error.Failed"
	errNameMethod       = "org.VimYoung.Spell.Error.MethodError"
)

// LayerResolver maps a layer (widget) name to the Target hosted by this
// process, used by the primary to dispatch set_value/find_value/
// show_window_back/hide_window to the right widget.
type LayerResolver func(layer string) (Target, bool)

// Service is one process's session-bus registration: either the primary
// (claimed org.VimYoung.Spell, serves every widget in this process via
// LayerResolver) or a secondary (claimed org.VimYoung.<widget>, serves
// exactly one Target).
type Service struct {
	conn      *dbus.Conn
	isPrimary bool
	widget    string
	resolver  LayerResolver
	target    Target
	logger    *log.Logger
}

// Claim attempts to claim the primary bus name; on DBus.ErrNameExists
// it falls back to a secondary per-widget name.
// widget is this process's own widget name (used for secondary naming
// and for primary's self-filter on re-emitted signals); resolver answers
// "is layer one of mine" for the primary; target is this single widget's
// Target (used directly for the secondary path, and registered with
// resolver for the primary path by the caller).
func Claim(conn *dbus.Conn, widget string, resolver LayerResolver, target Target, logger *log.Logger) (*Service, error) {
	if logger == nil {
		logger = log.Default()
	}
	reply, err := conn.RequestName(primaryBusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return nil, fmt.Errorf("remote: request primary name: %w", err)
	}

	s := &Service{conn: conn, widget: widget, resolver: resolver, target: target, logger: logger}

	if reply == dbus.RequestNameReplyPrimaryOwner {
		s.isPrimary = true
		s.exportMethodTable(primaryIface, true)
		logger.Info("claimed primary bus name", "name", primaryBusName)
		return s, nil
	}

	secondaryName := "org.VimYoung." + widget
	reply, err = conn.RequestName(secondaryName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return nil, fmt.Errorf("remote: request secondary name %s: %w", secondaryName, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return nil, fmt.Errorf("%w: secondary name %s already taken", ErrMethodError, secondaryName)
	}
	s.isPrimary = false
	s.exportMethodTable(secondaryIface, false)
	logger.Info("claimed secondary bus name", "name", secondaryName)

	if err := s.subscribeRebroadcasts(); err != nil {
		return nil, err
	}
	return s, nil
}

// IsPrimary reports whether this process holds org.VimYoung.Spell.
func (s *Service) IsPrimary() bool { return s.isPrimary }

// subscribeRebroadcasts arms a secondary's match rule so it can pick up
// layer_var_value_changed signals the primary re-emits for layers it
// doesn't itself host.
func (s *Service) subscribeRebroadcasts() error {
	err := s.conn.AddMatchSignal(
		dbus.WithMatchObjectPath(objectPath),
		dbus.WithMatchInterface(primaryIface),
		dbus.WithMatchMember(changedSignal),
	)
	if err != nil {
		return fmt.Errorf("remote: add match signal: %w", err)
	}
	ch := make(chan *dbus.Signal, 10)
	s.conn.Signal(ch)
	go func() {
		for sig := range ch {
			s.handleRebroadcast(sig)
		}
	}()
	return nil
}

func (s *Service) handleRebroadcast(sig *dbus.Signal) {
	if sig.Name != primaryIface+"."+changedSignal || len(sig.Body) != 3 {
		return
	}
	layer, _ := sig.Body[0].(string)
	key, _ := sig.Body[1].(string)
	val, _ := sig.Body[2].(string)
	if layer != s.widget {
		return
	}
	if err := s.target.Apply(key, val); err != nil {
		s.logger.Warn("rebroadcast apply failed", "key", key, "err", err)
	}
}

// resolve looks up the Target for layer: for a primary, via resolver; for
// a secondary, layer is ignored and its single target is used.
func (s *Service) resolve(layer string) (Target, bool) {
	if !s.isPrimary {
		return s.target, true
	}
	return s.resolver(layer)
}

// exportMethodTable registers the wire method names set_value,
// find_value, show_window_back and hide_window — snake_case, not
// Go-exported-method-case, hence ExportMethodTable rather than Export.
// primary selects the layer-prefixed method set; a secondary's methods
// omit the layer argument.
func (s *Service) exportMethodTable(iface string, primary bool) {
	var methods map[string]interface{}
	if primary {
		methods = map[string]interface{}{
			"set_value":        s.SetValue,
			"find_value":       s.FindValue,
			"show_window_back": s.ShowWindowBack,
			"hide_window":      s.HideWindow,
		}
	} else {
		methods = map[string]interface{}{
			"set_value":        s.SetValueSolo,
			"find_value":       s.FindValueSolo,
			"show_window_back": s.ShowWindowBackSolo,
			"hide_window":      s.HideWindowSolo,
		}
	}
	s.conn.ExportMethodTable(methods, objectPath, iface)
}

// SetValueSolo, FindValueSolo, ShowWindowBackSolo and HideWindowSolo are
// the secondary bus contract's layer-less method variants.
func (s *Service) SetValueSolo(key, val string) *dbus.Error {
	if err := s.target.Apply(key, val); err != nil {
		return toDBusError(err)
	}
	return nil
}

func (s *Service) FindValueSolo(key string) (string, *dbus.Error) {
	v, err := s.target.Find(key)
	if err != nil {
		return "", toDBusError(err)
	}
	return v, nil
}

func (s *Service) ShowWindowBackSolo() *dbus.Error {
	if err := s.target.Show(); err != nil {
		return toDBusError(err)
	}
	return nil
}

func (s *Service) HideWindowSolo() *dbus.Error {
	if err := s.target.Hide(); err != nil {
		return toDBusError(err)
	}
	return nil
}

// --- org.VimYoung.Spell1 (primary) method implementations ---
// Registered under their wire names by exportMethodTable through
// (*dbus.Conn).ExportMethodTable; each method's final return must be
// *dbus.Error per the godbus convention.

// SetValue implements set_value(layer, key, val). On a primary whose
// resolver can't find layer locally, it re-emits the signal instead of
// erroring, so a secondary hosting that layer can apply it.
func (s *Service) SetValue(layer, key, val string) *dbus.Error {
	target, ok := s.resolve(layer)
	if !ok {
		if err := s.conn.Emit(objectPath, primaryIface+"."+changedSignal, layer, key, val); err != nil {
			return dbus.NewError(errNameMethod, []interface{}{err.Error()})
		}
		return nil
	}
	if err := target.Apply(key, val); err != nil {
		return toDBusError(err)
	}
	_ = s.conn.Emit(objectPath, primaryIface+"."+changedSignal, layer, key, val)
	return nil
}

// FindValue implements find_value(layer, key) -> string.
func (s *Service) FindValue(layer, key string) (string, *dbus.Error) {
	target, ok := s.resolve(layer)
	if !ok {
		return "", dbus.NewError(errNameFailed, []interface{}{"unknown layer " + layer})
	}
	v, err := target.Find(key)
	if err != nil {
		return "", toDBusError(err)
	}
	return v, nil
}

// ShowWindowBack implements show_window_back(layer).
func (s *Service) ShowWindowBack(layer string) *dbus.Error {
	target, ok := s.resolve(layer)
	if !ok {
		return dbus.NewError(errNameFailed, []interface{}{"unknown layer " + layer})
	}
	if err := target.Show(); err != nil {
		return toDBusError(err)
	}
	return nil
}

// HideWindow implements hide_window(layer).
func (s *Service) HideWindow(layer string) *dbus.Error {
	target, ok := s.resolve(layer)
	if !ok {
		return dbus.NewError(errNameFailed, []interface{}{"unknown layer " + layer})
	}
	if err := target.Hide(); err != nil {
		return toDBusError(err)
	}
	return nil
}

// toDBusError classifies err into the remote error taxonomy before
// putting it on the wire, so a bad literal surfaces as NotSupported and
// a sentinel key as Failed rather than everything collapsing into
// MethodError.
func toDBusError(err error) *dbus.Error {
	classified := classifyStateErr(err)
	name := errNameMethod
	switch {
	case errors.Is(classified, ErrNotSupported):
		name = errNameNotSupported
	case errors.Is(classified, ErrFailed):
		name = errNameFailed
	}
	return dbus.NewError(name, []interface{}{classified.Error()})
}

// Close releases the bus connection.
func (s *Service) Close() error {
	return s.conn.Close()
}
