package scheduler

import (
	"testing"

	"github.com/kristofer/nemo/pkg/object"
	"github.com/kristofer/nemo/pkg/parser"
	"github.com/kristofer/nemo/pkg/vm"
)

// blockFrom parses a block literal and evaluates it against a process
// sharing reg's globals, returning the resulting *object.Block.
func blockFrom(t *testing.T, reg *object.Registry, src string) *object.Block {
	t.Helper()
	p := parser.New(src)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse error: %v", errs[0])
	}
	vp := vm.NewProcess(reg)
	v, err := vp.EvalTopLevel(program)
	if err != nil {
		t.Fatalf("unexpected error evaluating block literal: %v", err)
	}
	blk, ok := v.(*object.Block)
	if !ok {
		t.Fatalf("expected a block literal, got %T", v)
	}
	return blk
}

func TestSpawnQueuesProcessReady(t *testing.T) {
	reg := vm.NewRuntime()
	sched := New(reg)
	blk := blockFrom(t, reg, "[ 1 + 1 ]")

	proc := sched.Spawn(blk, 0)
	if proc.State != Ready {
		t.Fatalf("expected freshly spawned process to be Ready, got %s", proc.State)
	}
	if sched.ready.Len() != 1 {
		t.Fatalf("expected 1 ready process, got %d", sched.ready.Len())
	}
}

func TestRunAdvancesEveryReadyProcessToTermination(t *testing.T) {
	reg := vm.NewRuntime()
	sched := New(reg)
	a := sched.Spawn(blockFrom(t, reg, "[ 1 + 1 ]"), 0)
	b := sched.Spawn(blockFrom(t, reg, "[ 2 + 2 ]"), 0)

	if err := sched.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.State != Terminated || b.State != Terminated {
		t.Fatalf("expected both processes Terminated, got %s and %s", a.State, b.State)
	}
}

// TestSharedGlobalMutationAcrossProcesses is the scheduler-level half
// of the green-thread fairness scenario: two forked processes
// mutating the same global both run to completion against one shared
// Registry, and the final value reflects every increment from both.
func TestSharedGlobalMutationAcrossProcesses(t *testing.T) {
	reg := vm.NewRuntime()
	reg.Globals.Declare("Counter", int64(0))
	sched := New(reg)

	incr := "[ 50 timesRepeat: [ Counter := Counter + 1. Processor yield ] ]"
	sched.Spawn(blockFrom(t, reg, incr), 0)
	sched.Spawn(blockFrom(t, reg, incr), 0)

	if err := sched.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := reg.Globals.Lookup("Counter")
	if !ok {
		t.Fatal("expected Counter to be declared")
	}
	if got != int64(100) {
		t.Fatalf("expected Counter = 100, got %v", got)
	}
}

func TestSuspendedProcessIsNotScheduled(t *testing.T) {
	reg := vm.NewRuntime()
	sched := New(reg)
	proc := sched.Spawn(blockFrom(t, reg, "[ 1 ]"), 0)

	if err := sched.Suspend(proc.Proxy); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proc.State != Suspended {
		t.Fatalf("expected Suspended, got %s", proc.State)
	}
	// Suspend leaves the entry in the ready queue; Run pops it and skips
	// it without running it, so the process is still Suspended after.
	if err := sched.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proc.State != Suspended {
		t.Fatalf("expected Run to leave the process Suspended, got %s", proc.State)
	}
	if err := sched.Resume(proc.Proxy); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proc.State != Ready {
		t.Fatalf("expected Resume to put the process back Ready, got %s", proc.State)
	}
}

func TestTerminateStopsFutureScheduling(t *testing.T) {
	reg := vm.NewRuntime()
	sched := New(reg)
	proc := sched.Spawn(blockFrom(t, reg, "[ 1 ]"), 0)

	if err := sched.Terminate(proc.Proxy); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := sched.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proc.State != Terminated {
		t.Fatalf("expected Terminated, got %s", proc.State)
	}
}

func TestReadyQueueOrdersByPriorityThenArrival(t *testing.T) {
	reg := vm.NewRuntime()
	sched := New(reg)
	low := sched.Spawn(blockFrom(t, reg, "[ 1 ]"), 0)
	high := sched.Spawn(blockFrom(t, reg, "[ 1 ]"), 10)

	first := sched.ready.items[0]
	if first != high {
		t.Fatalf("expected the higher-priority process scheduled first, got process %d (priority %d)", first.ID, first.Priority)
	}
	_ = low
}
