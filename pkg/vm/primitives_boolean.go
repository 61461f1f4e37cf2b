package vm

import "github.com/kristofer/nemo/pkg/object"

// installBooleanPrimitives wires the Boolean messages that do not need
// to invoke a block argument: not and =. ifTrue:/ifFalse:/and:/or: live
// only in dispatchBoolean, since they evaluate their argument lazily,
// so Boolean's merged table and respondsTo: do not list them.
func installBooleanPrimitives(reg *object.Registry) {
	boolean := reg.Classes["Boolean"]
	boolean.Methods["not"] = &object.Method{Selector: "not", Primitive: func(r object.Value, args []object.Value) (object.Value, error) {
		b, _ := r.(bool)
		return !b, nil
	}}
	boolean.Methods["="] = &object.Method{Selector: "=", Primitive: func(r object.Value, args []object.Value) (object.Value, error) {
		return r == args[0], nil
	}}
	boolean.Merge()
}
