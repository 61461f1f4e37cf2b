package vm

import (
	"io"
	"os"

	"github.com/kristofer/nemo/pkg/object"
)

// Activation is one frame of the current process's call chain (spec
// §4.4): a method or block invocation with its own local environment,
// a receiver bound to self, the class the executing method was found
// on (the restart point for an unscoped super), and a sender link so
// the chain can be walked for diagnostics and for non-local return.
type Activation struct {
	Sender      *Activation
	Receiver    object.Value
	MethodClass *object.Class // owner of the method being run; nil for the top-level
	Selector    string
	Env         *object.Env
	HomeAct     *Activation // the method activation a "^" inside this frame unwinds to
	HasReturned bool
	ReturnValue object.Value
}

// Scheduler is the narrow interface Process.Send needs back into
// pkg/scheduler's cooperative process primitives (fork:/yield/
// suspend/resume/terminate) and its quantum-expiry check (Tick);
// declared here to avoid an import cycle, since pkg/scheduler imports
// pkg/vm to embed a *Process per task.
type Scheduler interface {
	Fork(block *object.Block) (*object.Instance, error)
	Yield() error
	Sleep(ms int64) error
	Suspend(proc *object.Instance) error
	Resume(proc *object.Instance) error
	Terminate(proc *object.Instance) error
	Current() *object.Instance
	// Tick is called once per completed Send (spec §4.9: "a quantum is
	// one message send"), letting the scheduler preempt the current
	// process at a send boundary once its quantum is spent, even if it
	// never sends an explicit "yield".
	Tick() error
}

// Process is one independent green thread: its own activation chain
// and exception-handler stack over the Registry's shared globals and
// class table (spec §5: "per-process independent activation chain
// over shared globals").
type Process struct {
	Registry *object.Registry
	Current  *Activation
	Depth    int
	MaxDepth int
	Handlers    []*handlerFrame
	activeFrame *handlerFrame
	Sched       Scheduler
	Out         io.Writer
	Debugger    *Debugger
}

// NewProcess creates a process sharing reg's globals/classes, with the
// default stack-depth ceiling (spec §4.4: "configurable ceiling
// (default 10,000)").
func NewProcess(reg *object.Registry) *Process {
	return &Process{Registry: reg, MaxDepth: 10000, Out: os.Stdout}
}

// Stdout returns the writer println and friends write to.
func (p *Process) Stdout() io.Writer {
	if p.Out == nil {
		return os.Stdout
	}
	return p.Out
}
