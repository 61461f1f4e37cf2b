package vm

import "github.com/kristofer/nemo/pkg/object"

// installClassPrimitives wires the handful of messages a Class itself
// understands as an ordinary receiver (spec §4.3): addParent: (extends
// a class with an additional superclass after creation, recomputing its
// merged method table immediately) and name/slotNames introspection.
// "derive"/"derive:" are not here — the parser rewrites them into a
// dedicated ClassDerive node (see pkg/ast and evalClassDerive); the
// resulting class is named by evalAssign when first bound to a global.
func installClassPrimitives(reg *object.Registry) {
	classClass := reg.Classes["Class"]
	prim := func(selector string, fn object.PrimitiveFunc) {
		classClass.Methods[selector] = &object.Method{Selector: selector, Primitive: fn}
	}

	prim("addParent:", func(r object.Value, args []object.Value) (object.Value, error) {
		c, ok := r.(*object.Class)
		if !ok {
			return nil, newError("TypeError", "addParent: sent to a non-class value")
		}
		parent, ok := args[0].(*object.Class)
		if !ok {
			return nil, newError("TypeError", "addParent: expects a Class argument")
		}
		if err := c.AddParent(parent); err != nil {
			return nil, newSlotConflict(err)
		}
		return c, nil
	})
	prim("name", func(r object.Value, args []object.Value) (object.Value, error) {
		c, _ := r.(*object.Class)
		return object.String(c.Name), nil
	})
	prim("slotNames", func(r object.Value, args []object.Value) (object.Value, error) {
		c, _ := r.(*object.Class)
		elems := make([]object.Value, len(c.SlotNames))
		for i, s := range c.SlotNames {
			elems[i] = object.Intern(s)
		}
		return &object.Array{Elements: elems}, nil
	})
	classClass.Merge()
}
