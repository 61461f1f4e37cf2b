package object

import "fmt"

// mergeMarker is the sentinel stored in MergedMethods when two
// superclasses contribute the same selector and neither is overridden:
// a lookup that resolves to it fails with AmbiguousMethod unless the
// call site names a scoped super.
var mergeMarker = &Method{Selector: "<ambiguous>"}

// IsAmbiguous reports whether m is the conflict marker.
func IsAmbiguous(m *Method) bool { return m == mergeMarker }

// Class is a nemo class object: an ordered slot list, zero or more
// superclasses, its own instance- and class-side method tables, and a
// precomputed MergedMethods table folding the whole inheritance graph
// (spec §4.3).
type Class struct {
	Name          string
	SlotNames     []string
	Superclasses  []*Class
	Methods       map[string]*Method
	ClassMethods  map[string]*Method
	MergedMethods map[string]*Method
	Tags          []string
}

// NewClass creates a root class (no superclasses) with the given
// slots.
func NewClass(name string, slots []string) *Class {
	c := &Class{
		Name:         name,
		SlotNames:    append([]string(nil), slots...),
		Methods:      make(map[string]*Method),
		ClassMethods: make(map[string]*Method),
	}
	c.Merge()
	return c
}

// Derive creates a subclass of parent with the given slots (spec
// §4.3's "derive:"). The child's own slot list may override rather
// than extend the parent's, matching SlotConflict's escape hatch: a
// child that redeclares slots is not checked against the parent.
func Derive(parent *Class, slots []string) *Class {
	c := &Class{
		Name:         "",
		SlotNames:    append([]string(nil), slots...),
		Superclasses: []*Class{parent},
		Methods:      make(map[string]*Method),
		ClassMethods: make(map[string]*Method),
	}
	c.Merge()
	return c
}

// SlotConflictError reports duplicate slot names contributed by
// different parents on AddParent.
type SlotConflictError struct {
	ClassName string
	SlotName  string
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("SlotConflict: %s already declares slot %q via another parent", e.ClassName, e.SlotName)
}

// AddParent extends c with an additional superclass after creation
// (spec §4.3's "addParent:"), merges its slot list into c's own (a
// slot name shared by two parents without an overriding declaration on
// c is a SlotConflict), and recomputes MergedMethods so any selector
// newly visible through the added parent becomes available to future
// sends and to super immediately.
func (c *Class) AddParent(parent *Class) error {
	own := make(map[string]bool, len(c.SlotNames))
	for _, s := range c.SlotNames {
		own[s] = true
	}
	inherited := make(map[string]bool)
	for _, sup := range c.Superclasses {
		for _, s := range sup.AllSlotNames() {
			inherited[s] = true
		}
	}
	for _, s := range parent.AllSlotNames() {
		if inherited[s] && !own[s] {
			return &SlotConflictError{ClassName: c.Name, SlotName: s}
		}
	}
	for _, s := range parent.AllSlotNames() {
		if !own[s] {
			c.SlotNames = append(c.SlotNames, s)
			own[s] = true
		}
	}
	c.Superclasses = append(c.Superclasses, parent)
	c.Merge()
	return nil
}

// AllSlotNames returns the class's own declared slot list (AddParent
// already folds parent slots into SlotNames, so this is simply an
// accessor kept for symmetry with MergedMethods).
func (c *Class) AllSlotNames() []string { return c.SlotNames }

// Merge recomputes MergedMethods from scratch: fold each superclass's
// merged table in declared order (a selector provided by two or more
// parents without being overridden becomes the ambiguity marker), then
// overlay c's own methods, which always win and resolve any conflict
// (spec §4.3, steps 1-3).
func (c *Class) Merge() {
	table := make(map[string]*Method)
	for _, parent := range c.Superclasses {
		for sel, m := range parent.MergedMethods {
			if existing, ok := table[sel]; ok && existing != m {
				table[sel] = mergeMarker
				continue
			}
			table[sel] = m
		}
	}
	for sel, m := range c.Methods {
		table[sel] = m
	}
	c.MergedMethods = table
}

// InstallMethod adds or replaces a method on c and recomputes c's own
// MergedMethods. Subclasses that already folded c's table are not
// recomputed here; pkg/vm's evalMethodDefinition refolds every
// registered class after each install.
func (c *Class) InstallMethod(selector string, m *Method) {
	m.Owner = c
	if m.IsClassSide() {
		c.ClassMethods[selector] = m
	} else {
		c.Methods[selector] = m
	}
	c.Merge()
}

// IsClassSide reports whether m was installed via a class-method
// definition. Tracked on Method rather than inferred, since the only
// signal at install time is which table the parser's
// MethodDefinition.IsClassMethod flag pointed at.
func (m *Method) IsClassSide() bool { return m.classSide }

// MarkClassSide flags m as belonging to a class's class-method table.
func (m *Method) MarkClassSide() { m.classSide = true }

// Lookup finds selector in c's merged method table (spec §4.5 step 1).
// It returns the ambiguity marker as-is; callers must check
// IsAmbiguous before using the result.
func (c *Class) Lookup(selector string) (*Method, bool) {
	m, ok := c.MergedMethods[selector]
	return m, ok
}

// LookupClassSide finds a class-side selector directly on c (spec
// §4.5 step 2); class methods are not merged across superclasses,
// matching "class-side methods live in a separate table on the class
// object" (spec §4.3).
func (c *Class) LookupClassSide(selector string) (*Method, bool) {
	m, ok := c.ClassMethods[selector]
	return m, ok
}

// FirstSuperclass returns c's first declared superclass, the restart
// point for an unscoped super send, or nil if c has none.
func (c *Class) FirstSuperclass() *Class {
	if len(c.Superclasses) == 0 {
		return nil
	}
	return c.Superclasses[0]
}

// SlotIndex returns the index of slot in c.SlotNames, or -1.
func (c *Class) SlotIndex(slot string) int {
	for i, s := range c.SlotNames {
		if s == slot {
			return i
		}
	}
	return -1
}

func (c *Class) String() string { return c.Name }
