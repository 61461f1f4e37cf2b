package vm

import (
	"fmt"
	"strconv"

	"github.com/kristofer/nemo/pkg/object"
)

// installStringPrimitives wires String's protocol (spec §4.7):
// size, 1-based at:, concatenation, equality, and the symbol/integer
// conversions.
func installStringPrimitives(reg *object.Registry) {
	str := reg.Classes["String"]
	prim := func(selector string, fn object.PrimitiveFunc) {
		str.Methods[selector] = &object.Method{Selector: selector, Primitive: fn}
	}

	prim("size", func(r object.Value, args []object.Value) (object.Value, error) {
		s := r.(object.String)
		return int64(len(s)), nil
	})
	prim("at:", func(r object.Value, args []object.Value) (object.Value, error) {
		s := r.(object.String)
		idx, _ := args[0].(int64)
		if idx < 1 || int(idx) > len(s) {
			return nil, newSubscriptOutOfBounds(int(idx), len(s))
		}
		return object.String(s[idx-1 : idx]), nil
	})
	prim(",", func(r object.Value, args []object.Value) (object.Value, error) {
		s := r.(object.String)
		other, ok := args[0].(object.String)
		if !ok {
			return object.String(fmt.Sprintf("%s%v", s, args[0])), nil
		}
		return s + other, nil
	})
	prim("=", func(r object.Value, args []object.Value) (object.Value, error) {
		other, ok := args[0].(object.String)
		return ok && r.(object.String) == other, nil
	})
	prim("asSymbol", func(r object.Value, args []object.Value) (object.Value, error) {
		return object.Intern(string(r.(object.String))), nil
	})
	prim("asInteger", func(r object.Value, args []object.Value) (object.Value, error) {
		n, err := strconv.ParseInt(string(r.(object.String)), 10, 64)
		if err != nil {
			return nil, newError("ConversionError", "cannot convert %q to Integer", r)
		}
		return n, nil
	})
	prim("printString", func(r object.Value, args []object.Value) (object.Value, error) {
		return r.(object.String), nil
	})

	str.Merge()
}

// dispatchStringControl implements "println" and "repeat:", which
// reach outside the value itself (println writes to stdout via the
// process's configured writer; repeat: invokes a block argument).
func (p *Process) dispatchStringControl(receiver object.Value, selector string, args []object.Value, caller *Activation) (bool, object.Value, error) {
	s, ok := receiver.(object.String)
	if !ok {
		return false, nil, nil
	}
	switch selector {
	case "println":
		fmt.Fprintln(p.Stdout(), string(s))
		return true, s, nil
	case "repeat:":
		n, _ := strconv.Atoi(string(s))
		for i := 0; i < n; i++ {
			if _, err := p.invokeBlockValue(args[0], nil, caller); err != nil {
				return true, nil, err
			}
		}
		return true, object.NilObj, nil
	}
	return false, nil, nil
}
