package state

// Controller is the small capability interface the remote-control
// transports program against instead of depending on *ForeignState
// directly. *ForeignState satisfies it.
type Controller interface {
	Kind(key string) (Kind, error)
	Apply(key, literal string) error
	Find(key string) (string, error)
}

var _ Controller = (*ForeignState)(nil)
