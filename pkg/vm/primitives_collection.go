package vm

import "github.com/kristofer/nemo/pkg/object"

// installCollectionPrimitives wires Array's and Table's non-block
// protocol (spec §4.7); do:/collect:/select:/detect:/inject:into: need
// to invoke a block argument and live in dispatchCollectionControl
// instead.
func installCollectionPrimitives(reg *object.Registry) {
	arr := reg.Classes["Array"]
	prim := func(class *object.Class, selector string, fn object.PrimitiveFunc) {
		class.Methods[selector] = &object.Method{Selector: selector, Primitive: fn}
	}

	prim(arr, "size", func(r object.Value, args []object.Value) (object.Value, error) {
		return int64(len(r.(*object.Array).Elements)), nil
	})
	prim(arr, "at:", func(r object.Value, args []object.Value) (object.Value, error) {
		a := r.(*object.Array)
		idx, _ := args[0].(int64)
		if idx < 1 || int(idx) > len(a.Elements) {
			return nil, newSubscriptOutOfBounds(int(idx), len(a.Elements))
		}
		return a.Elements[idx-1], nil
	})
	prim(arr, "at:put:", func(r object.Value, args []object.Value) (object.Value, error) {
		a := r.(*object.Array)
		idx, _ := args[0].(int64)
		if idx < 1 || int(idx) > len(a.Elements) {
			return nil, newSubscriptOutOfBounds(int(idx), len(a.Elements))
		}
		a.Elements[idx-1] = args[1]
		return args[1], nil
	})
	prim(arr, "add:", func(r object.Value, args []object.Value) (object.Value, error) {
		a := r.(*object.Array)
		a.Elements = append(a.Elements, args[0])
		return args[0], nil
	})
	arr.Merge()

	tbl := reg.Classes["Table"]
	symKey := func(v object.Value) string {
		if sym, ok := v.(*object.Symbol); ok {
			return sym.Name
		}
		if s, ok := v.(object.String); ok {
			return string(s)
		}
		return ""
	}
	prim(tbl, "at:", func(r object.Value, args []object.Value) (object.Value, error) {
		t := r.(*object.Table)
		v, ok := t.Get(symKey(args[0]))
		if !ok {
			return object.NilObj, nil
		}
		return v, nil
	})
	prim(tbl, "at:put:", func(r object.Value, args []object.Value) (object.Value, error) {
		t := r.(*object.Table)
		t.Set(symKey(args[0]), args[1])
		return args[1], nil
	})
	prim(tbl, "keys", func(r object.Value, args []object.Value) (object.Value, error) {
		t := r.(*object.Table)
		elems := make([]object.Value, 0, t.Len())
		for _, k := range t.Keys() {
			elems = append(elems, object.Intern(k))
		}
		return &object.Array{Elements: elems}, nil
	})
	prim(tbl, "includesKey:", func(r object.Value, args []object.Value) (object.Value, error) {
		t := r.(*object.Table)
		_, ok := t.Get(symKey(args[0]))
		return ok, nil
	})
	tbl.Merge()
}

// dispatchCollectionControl implements do:/collect:/select:/detect:/
// inject:into:/join: for Array, and do:/keysAndValuesDo: for Table.
func (p *Process) dispatchCollectionControl(receiver object.Value, selector string, args []object.Value, caller *Activation) (bool, object.Value, error) {
	if a, ok := receiver.(*object.Array); ok {
		return p.dispatchArrayControl(a, selector, args, caller)
	}
	if t, ok := receiver.(*object.Table); ok {
		return p.dispatchTableControl(t, selector, args, caller)
	}
	return false, nil, nil
}

func (p *Process) dispatchArrayControl(a *object.Array, selector string, args []object.Value, caller *Activation) (bool, object.Value, error) {
	switch selector {
	case "do:":
		for _, e := range a.Elements {
			if _, err := p.invokeBlockValue(args[0], []object.Value{e}, caller); err != nil {
				return true, nil, err
			}
		}
		return true, object.NilObj, nil
	case "collect:":
		out := make([]object.Value, len(a.Elements))
		for i, e := range a.Elements {
			v, err := p.invokeBlockValue(args[0], []object.Value{e}, caller)
			if err != nil {
				return true, nil, err
			}
			out[i] = v
		}
		return true, &object.Array{Elements: out}, nil
	case "select:":
		var out []object.Value
		for _, e := range a.Elements {
			v, err := p.invokeBlockValue(args[0], []object.Value{e}, caller)
			if err != nil {
				return true, nil, err
			}
			if b, ok := v.(bool); ok && b {
				out = append(out, e)
			}
		}
		return true, &object.Array{Elements: out}, nil
	case "detect:":
		for _, e := range a.Elements {
			v, err := p.invokeBlockValue(args[0], []object.Value{e}, caller)
			if err != nil {
				return true, nil, err
			}
			if b, ok := v.(bool); ok && b {
				return true, e, nil
			}
		}
		return true, object.NilObj, nil
	case "inject:into:":
		acc := args[0]
		for _, e := range a.Elements {
			v, err := p.invokeBlockValue(args[1], []object.Value{acc, e}, caller)
			if err != nil {
				return true, nil, err
			}
			acc = v
		}
		return true, acc, nil
	case "join:":
		sep, _ := args[0].(object.String)
		out := ""
		for i, e := range a.Elements {
			if i > 0 {
				out += string(sep)
			}
			if s, ok := e.(object.String); ok {
				out += string(s)
			}
		}
		return true, object.String(out), nil
	}
	return false, nil, nil
}

func (p *Process) dispatchTableControl(t *object.Table, selector string, args []object.Value, caller *Activation) (bool, object.Value, error) {
	switch selector {
	case "do:":
		for _, k := range t.Keys() {
			v, _ := t.Get(k)
			if _, err := p.invokeBlockValue(args[0], []object.Value{v}, caller); err != nil {
				return true, nil, err
			}
		}
		return true, object.NilObj, nil
	case "keysAndValuesDo:":
		for _, k := range t.Keys() {
			v, _ := t.Get(k)
			if _, err := p.invokeBlockValue(args[0], []object.Value{object.Intern(k), v}, caller); err != nil {
				return true, nil, err
			}
		}
		return true, object.NilObj, nil
	}
	return false, nil, nil
}
