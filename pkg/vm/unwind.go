package vm

import "github.com/kristofer/nemo/pkg/object"

// nonLocalReturn is the sentinel propagated up the Go call stack when
// a block body executes "^ expr" (spec §4.6). It unwinds exactly like
// a signalled exception (both ride the same Go-error return path);
// invokeMethod is the only place that consumes one, when its Home
// matches the activation currently returning.
type nonLocalReturn struct {
	Value object.Value
	Home  *Activation
}

func (n *nonLocalReturn) Error() string { return "non-local return" }
