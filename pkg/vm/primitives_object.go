package vm

import (
	"fmt"

	"github.com/kristofer/nemo/pkg/object"
)

// installObjectPrimitives wires Object's universal protocol (spec
// §4.7): class, printString, identity/equality, nil tests, and
// respondsTo:. Installed on the Object class so every class's merged
// table inherits them unless overridden. The perform: family is not
// here; dispatchPerform handles it.
func installObjectPrimitives(reg *object.Registry) {
	obj := reg.Classes["Object"]
	prim := func(selector string, fn object.PrimitiveFunc) {
		obj.Methods[selector] = &object.Method{Selector: selector, Primitive: fn}
	}

	prim("class", func(r object.Value, args []object.Value) (object.Value, error) {
		return reg.ClassOf(r), nil
	})
	prim("printString", func(r object.Value, args []object.Value) (object.Value, error) {
		if s, ok := r.(fmt.Stringer); ok {
			return object.String(s.String()), nil
		}
		return object.String(fmt.Sprintf("%v", r)), nil
	})
	prim("==", func(r object.Value, args []object.Value) (object.Value, error) {
		return r == args[0], nil
	})
	prim("=", func(r object.Value, args []object.Value) (object.Value, error) {
		return r == args[0], nil
	})
	prim("isNil", func(r object.Value, args []object.Value) (object.Value, error) {
		_, ok := r.(*object.NilValue)
		return ok, nil
	})
	prim("notNil", func(r object.Value, args []object.Value) (object.Value, error) {
		_, ok := r.(*object.NilValue)
		return !ok, nil
	})
	prim("respondsTo:", func(r object.Value, args []object.Value) (object.Value, error) {
		sym, _ := args[0].(*object.Symbol)
		if sym == nil {
			return false, nil
		}
		_, ok := reg.ClassOf(r).Lookup(sym.Name)
		return ok, nil
	})
	obj.Merge()
}

// dispatchInstanceSlots implements named-slot access on user-defined
// Instances (spec §4.3: "from outside, at: and at:put: access named
// slots by selector"). Handled here rather than as an ordinary
// primitive on Object, since the slot set differs per class and a
// plain primitive has no way to see the receiver's own class layout
// until dispatch time.
func (p *Process) dispatchInstanceSlots(receiver object.Value, selector string, args []object.Value, caller *Activation) (bool, object.Value, error) {
	inst, ok := receiver.(*object.Instance)
	if !ok {
		return false, nil, nil
	}
	switch selector {
	case "at:":
		sym, ok := args[0].(*object.Symbol)
		if !ok {
			return false, nil, nil
		}
		idx := inst.Class.SlotIndex(sym.Name)
		if idx < 0 {
			return true, nil, newError("InvalidSlot", "%s has no slot %q", inst.Class.Name, sym.Name)
		}
		return true, inst.Slots[idx], nil
	case "at:put:":
		sym, ok := args[0].(*object.Symbol)
		if !ok {
			return false, nil, nil
		}
		idx := inst.Class.SlotIndex(sym.Name)
		if idx < 0 {
			return true, nil, newError("InvalidSlot", "%s has no slot %q", inst.Class.Name, sym.Name)
		}
		inst.Slots[idx] = args[1]
		return true, args[1], nil
	}
	return false, nil, nil
}

// dispatchPerform implements perform:/perform:with: by evaluating the
// selector argument (a Symbol) and re-entering Send, matching spec
// §4.5's "perform: ... evaluate the selector argument, then dispatch
// as a normal send."
func (p *Process) dispatchPerform(receiver object.Value, selector string, args []object.Value, caller *Activation) (bool, object.Value, error) {
	switch selector {
	case "perform:":
		sym, ok := args[0].(*object.Symbol)
		if !ok {
			return true, nil, newError("TypeError", "perform: expects a Symbol selector")
		}
		v, err := p.Send(receiver, sym.Name, nil, nil, caller)
		return true, v, err
	case "perform:with:":
		sym, ok := args[0].(*object.Symbol)
		if !ok {
			return true, nil, newError("TypeError", "perform:with: expects a Symbol selector")
		}
		v, err := p.Send(receiver, sym.Name, []object.Value{args[1]}, nil, caller)
		return true, v, err
	}
	return false, nil, nil
}
