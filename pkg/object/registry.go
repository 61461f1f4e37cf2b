package object

// Registry is the arena-style owner of every Class and interned Symbol
// that exists during a run: since classes refer to each other cyclically
// (a superclass list, a method's Owner pointing back at its class), they
// are allocated once here and referenced by pointer everywhere else
// rather than being copied or garbage-collected piecemeal.
type Registry struct {
	Classes map[string]*Class
	Globals *Env
}

// NewRegistry builds a Registry pre-populated with the built-in classes
// every nemo value's ClassOf resolves to: Object at the root, then
// Integer, Float, Boolean, String, Symbol, Array, Table, Block, Nil,
// and Class itself, wired as direct children of Object so every value
// understands Object's protocol (printString, class, respondsTo:, ==).
func NewRegistry() *Registry {
	r := &Registry{
		Classes: make(map[string]*Class),
		Globals: NewEnv(nil),
	}
	object := NewClass("Object", nil)
	r.Classes["Object"] = object
	for _, name := range []string{"Integer", "Float", "Boolean", "String", "Symbol", "Array", "Table", "Block", "Nil", "Class", "Exception"} {
		c := Derive(object, nil)
		c.Name = name
		r.Classes[name] = c
	}
	for name, c := range r.Classes {
		r.Globals.Declare(name, c)
	}
	return r
}

// ClassOf returns the built-in Class a raw Go value dispatches through.
// User Instances and Classes carry their own Class/metaclass pointer
// directly and bypass this switch.
func (r *Registry) ClassOf(v Value) *Class {
	switch val := v.(type) {
	case *Instance:
		return val.Class
	case *Class:
		return r.Classes["Class"]
	case int64:
		return r.Classes["Integer"]
	case float64:
		return r.Classes["Float"]
	case bool:
		return r.Classes["Boolean"]
	case String:
		return r.Classes["String"]
	case *Symbol:
		return r.Classes["Symbol"]
	case *Array:
		return r.Classes["Array"]
	case *Table:
		return r.Classes["Table"]
	case *Block:
		return r.Classes["Block"]
	case *NilValue:
		return r.Classes["Nil"]
	default:
		return r.Classes["Object"]
	}
}

// DefineClass names c, registers it under name and binds the global.
// The evaluator calls it when an unnamed class (a fresh derive result)
// is assigned to a capitalized global.
func (r *Registry) DefineClass(name string, c *Class) {
	c.Name = name
	r.Classes[name] = c
	r.Globals.Declare(name, c)
}
