// Package scheduler implements nemo's cooperative, single-OS-thread
// green-thread scheduler (spec §4.9/§5): a ready queue of Processes
// advanced one quantum at a time by Scheduler.Run, which is the only
// goroutine ever allowed to make progress at once. Each Process owns a
// goroutine of its own (the only way to park and resume an arbitrary
// nemo call stack mid-evaluation without rewriting the tree-walking
// evaluator as an explicit resumable state machine), but a turn/yielded
// channel handshake keeps exactly one of them unblocked at any instant
// -- the cooperative, single-thread-of-control discipline spec §5
// requires is enforced by that handshake, not by goroutine count.
// Grounded on MongooseMoo-barn's task-scheduler shape (ready/waiting
// split, container/heap-ordered priority queue, explicit per-task state
// machine) and zephyrtronium-iolang's Scheduler bookkeeping, both of
// which also run one goroutine per task.
package scheduler

import (
	"github.com/kristofer/nemo/pkg/object"
	"github.com/kristofer/nemo/pkg/vm"
)

// State is a Process's position in the cooperative state machine (spec
// §4.9): Ready processes sit in the scheduler's queue; Running is the
// one process currently being advanced; Blocked processes wait on a
// timer or a semaphore/channel; Suspended processes are parked until
// explicitly resumed; Terminated processes are done and never
// rescheduled.
type State int

const (
	Ready State = iota
	Running
	Blocked
	Suspended
	Terminated
)

func (s State) String() string {
	switch s {
	case Ready:
		return "Ready"
	case Running:
		return "Running"
	case Blocked:
		return "Blocked"
	case Suspended:
		return "Suspended"
	case Terminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// Process is one green thread: a nemo *vm.Process advancing a single
// top-level block, plus the scheduling metadata the Scheduler's ready
// queue orders on.
type Process struct {
	ID          int64
	Priority    int
	VM          *vm.Process
	Block       *object.Block
	State       State
	WakeAtMilli int64 // valid only while State == Blocked on a timer
	Proxy       *object.Instance

	// turn is sent by Scheduler.Run to hand this process's goroutine the
	// CPU for its next quantum; yielded is sent back by that same
	// goroutine (from runProcess or from a parked Tick/Yield/Sleep call
	// deep in its call stack) the moment it gives the CPU back, whether
	// by explicit yield, quantum expiry, blocking, or running to
	// completion.
	turn      chan struct{}
	yielded   chan struct{}
	sendsLeft int   // message sends remaining in the current quantum
	runErr    error // set by runProcess once the top-level block finishes

	index int // unused: readyQueue's heap methods never set it
}

func (p *Process) String() string {
	return p.Proxy.Class.Name
}
