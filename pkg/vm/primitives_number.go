package vm

import (
	"fmt"

	"github.com/kristofer/nemo/pkg/object"
)

// installNumberPrimitives wires Integer and Float's arithmetic,
// comparison, and conversion protocol (spec §4.7). Integer overflow
// wraps per Go's native int64 two's-complement rules rather than
// promoting to an arbitrary-precision type (SPEC_FULL.md's Open
// Question #1 resolution).
func installNumberPrimitives(reg *object.Registry) {
	integer := reg.Classes["Integer"]
	float := reg.Classes["Float"]

	num := func(v object.Value) float64 {
		switch n := v.(type) {
		case int64:
			return float64(n)
		case float64:
			return n
		default:
			return 0
		}
	}
	bothInt := func(a, b object.Value) (int64, int64, bool) {
		ai, aok := a.(int64)
		bi, bok := b.(int64)
		return ai, bi, aok && bok
	}

	prim := func(class *object.Class, selector string, fn object.PrimitiveFunc) {
		m := &object.Method{Selector: selector, Primitive: fn}
		class.Methods[selector] = m
		class.Merge()
	}

	arith := func(class *object.Class, selector string, intOp func(a, b int64) (object.Value, error), floatOp func(a, b float64) object.Value) {
		prim(class, selector, func(r object.Value, args []object.Value) (object.Value, error) {
			if ai, bi, ok := bothInt(r, args[0]); ok {
				return intOp(ai, bi)
			}
			return floatOp(num(r), num(args[0])), nil
		})
	}

	arith(integer, "+", func(a, b int64) (object.Value, error) { return a + b, nil }, func(a, b float64) object.Value { return a + b })
	arith(integer, "-", func(a, b int64) (object.Value, error) { return a - b, nil }, func(a, b float64) object.Value { return a - b })
	arith(integer, "*", func(a, b int64) (object.Value, error) { return a * b, nil }, func(a, b float64) object.Value { return a * b })
	arith(integer, "/", func(a, b int64) (object.Value, error) {
		if b == 0 {
			return nil, newDivisionByZero()
		}
		if a%b == 0 {
			return a / b, nil
		}
		return float64(a) / float64(b), nil
	}, func(a, b float64) object.Value { return a / b })
	arith(integer, "//", func(a, b int64) (object.Value, error) {
		if b == 0 {
			return nil, newDivisionByZero()
		}
		q := a / b
		if (a%b != 0) && ((a < 0) != (b < 0)) {
			q--
		}
		return q, nil
	}, func(a, b float64) object.Value { return float64(int64(a / b)) })
	arith(integer, "%", func(a, b int64) (object.Value, error) {
		if b == 0 {
			return nil, newDivisionByZero()
		}
		m := a % b
		if m != 0 && ((a < 0) != (b < 0)) {
			m += b
		}
		return m, nil
	}, func(a, b float64) object.Value {
		return a - b*float64(int64(a/b))
	})

	cmp := func(class *object.Class, selector string, op func(a, b float64) bool) {
		prim(class, selector, func(r object.Value, args []object.Value) (object.Value, error) {
			return op(num(r), num(args[0])), nil
		})
	}
	for _, class := range []*object.Class{integer, float} {
		cmp(class, "<", func(a, b float64) bool { return a < b })
		cmp(class, ">", func(a, b float64) bool { return a > b })
		cmp(class, "<=", func(a, b float64) bool { return a <= b })
		cmp(class, ">=", func(a, b float64) bool { return a >= b })
		cmp(class, "=", func(a, b float64) bool { return a == b })
		cmp(class, "~=", func(a, b float64) bool { return a != b })

		prim(class, "asFloat", func(r object.Value, args []object.Value) (object.Value, error) {
			return num(r), nil
		})
		prim(class, "asString", func(r object.Value, args []object.Value) (object.Value, error) {
			return object.String(fmt.Sprintf("%v", r)), nil
		})
	}
	prim(float, "+", func(r object.Value, args []object.Value) (object.Value, error) { return num(r) + num(args[0]), nil })
	prim(float, "-", func(r object.Value, args []object.Value) (object.Value, error) { return num(r) - num(args[0]), nil })
	prim(float, "*", func(r object.Value, args []object.Value) (object.Value, error) { return num(r) * num(args[0]), nil })
	prim(float, "/", func(r object.Value, args []object.Value) (object.Value, error) {
		if num(args[0]) == 0 {
			return nil, newDivisionByZero()
		}
		return num(r) / num(args[0]), nil
	})
}

// dispatchNumberControl handles "to:do:" and "timesRepeat:", which
// need to invoke a block argument rather than operate on plain values,
// so they live in dispatchControl alongside the other lazily-evaluated
// control messages instead of in the primitive table above.
func (p *Process) dispatchNumberControl(receiver object.Value, selector string, args []object.Value, caller *Activation) (bool, object.Value, error) {
	start, isInt := receiver.(int64)
	if !isInt {
		return false, nil, nil
	}
	switch selector {
	case "to:do:":
		end, ok := args[0].(int64)
		if !ok {
			return true, nil, newError("TypeError", "to:do: expects an Integer endpoint")
		}
		for i := start; i <= end; i++ {
			if _, err := p.invokeBlockValue(args[1], []object.Value{i}, caller); err != nil {
				return true, nil, err
			}
		}
		return true, object.NilObj, nil
	case "timesRepeat:":
		for i := int64(0); i < start; i++ {
			if _, err := p.invokeBlockValue(args[0], nil, caller); err != nil {
				return true, nil, err
			}
		}
		return true, object.NilObj, nil
	}
	return false, nil, nil
}
