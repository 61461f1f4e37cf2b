package object

import "testing"

func TestMergeOwnMethodWins(t *testing.T) {
	base := NewClass("Base", []string{"x"})
	base.InstallMethod("greet", &Method{Selector: "greet"})

	child := Derive(base, nil)
	child.Name = "Child"
	own := &Method{Selector: "greet"}
	child.InstallMethod("greet", own)

	got, ok := child.Lookup("greet")
	if !ok || got != own {
		t.Fatalf("expected child's own method to win, got %v", got)
	}
}

func TestMergeAmbiguousConflict(t *testing.T) {
	a := NewClass("A", nil)
	a.InstallMethod("speak", &Method{Selector: "speak"})
	b := NewClass("B", nil)
	b.InstallMethod("speak", &Method{Selector: "speak"})

	child := Derive(a, nil)
	child.Name = "Child"
	if err := child.AddParent(b); err != nil {
		t.Fatalf("unexpected AddParent error: %v", err)
	}

	got, ok := child.Lookup("speak")
	if !ok {
		t.Fatal("expected conflict marker to be present in merged table")
	}
	if !IsAmbiguous(got) {
		t.Fatalf("expected ambiguous marker, got %v", got)
	}
}

func TestAddParentSlotConflict(t *testing.T) {
	a := NewClass("A", []string{"count"})
	b := NewClass("B", []string{"count"})

	child := Derive(a, nil)
	child.Name = "Child"
	err := child.AddParent(b)
	if err == nil {
		t.Fatal("expected SlotConflict error")
	}
	if _, ok := err.(*SlotConflictError); !ok {
		t.Fatalf("expected *SlotConflictError, got %T", err)
	}
}

func TestAddParentRecomputesMergedTableImmediately(t *testing.T) {
	a := NewClass("A", nil)
	child := Derive(a, nil)
	child.Name = "Child"

	b := NewClass("B", nil)
	b.InstallMethod("laterAdded", &Method{Selector: "laterAdded"})

	if err := child.AddParent(b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := child.Lookup("laterAdded"); !ok {
		t.Fatal("expected selector introduced by a later-added parent to be visible immediately")
	}
}

func TestInstanceAllocationSlotsAreNil(t *testing.T) {
	c := NewClass("Point", []string{"x", "y"})
	inst := NewInstance(c)
	if len(inst.Slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(inst.Slots))
	}
	for i, s := range inst.Slots {
		if s != Value(NilObj) {
			t.Fatalf("slot %d: expected NilObj, got %v", i, s)
		}
	}
}

func TestInternIsPointerStable(t *testing.T) {
	a := Intern("foo")
	b := Intern("foo")
	if a != b {
		t.Fatal("expected interned symbols with the same name to share a pointer")
	}
}
