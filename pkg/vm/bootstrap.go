package vm

import "github.com/kristofer/nemo/pkg/object"

// NewRuntime builds a Registry with every built-in class populated
// with its primitive methods (spec §4.7), the Exception hierarchy
// (spec §4.8), and the Processor singleton the scheduler primitives
// dispatch through. cmd/nemo calls this once per run before loading
// the bootstrap .nemo library files.
func NewRuntime() *object.Registry {
	reg := object.NewRegistry()

	installNumberPrimitives(reg)
	installBooleanPrimitives(reg)
	installStringPrimitives(reg)
	installCollectionPrimitives(reg)
	installObjectPrimitives(reg)
	installClassPrimitives(reg)
	installExceptionHierarchy(reg)

	processor := object.NewClass("Processor", nil)
	reg.DefineClass("Processor", processor)

	// Some install* calls above merged their class before Object's
	// primitives existed; refold every class so each sees them.
	for _, c := range reg.Classes {
		c.Merge()
	}

	return reg
}

// installExceptionHierarchy derives the standard exception classes
// every runtime error kind (spec §4.8/§7) is surfaced as, each
// carrying a "messageText" slot so user code's "anException
// messageText" reads the signalled description.
func installExceptionHierarchy(reg *object.Registry) {
	exception := reg.Classes["Exception"]
	exception.SlotNames = []string{"messageText"}
	exception.Merge()

	for _, name := range []string{
		"Error",
		"MessageNotUnderstood",
		"ArityError",
		"SubscriptOutOfBounds",
		"DivisionByZero",
		"AmbiguousMethod",
		"SlotConflict",
		"StackOverflow",
		"BlockContextExpired",
		"ParseError",
	} {
		reg.DefineClass(name, object.Derive(exception, []string{"messageText"}))
	}
}

// RaiseAsInstance converts a *RuntimeError produced deep inside
// dispatch/eval into the *object.Instance a handler block receives,
// so internally-detected failures (ArityError, SubscriptOutOfBounds,
// ...) are signalled through the very same on:do: machinery user code
// uses for its own exceptions.
func (p *Process) RaiseAsInstance(rerr *RuntimeError, caller *Activation) (object.Value, error) {
	class, ok := p.Registry.Classes[rerr.Kind]
	if !ok {
		class = p.Registry.Classes["Error"]
	}
	inst := object.NewInstance(class)
	if idx := class.SlotIndex("messageText"); idx >= 0 {
		inst.Slots[idx] = object.String(rerr.Message)
	}
	return p.signal(inst, caller)
}
