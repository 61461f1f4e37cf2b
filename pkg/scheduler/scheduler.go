package scheduler

import (
	"container/heap"
	"fmt"

	"github.com/kristofer/nemo/pkg/object"
	"github.com/kristofer/nemo/pkg/vm"
)

// quantum is the number of message sends a Running process gets before
// the scheduler preempts it at the next send boundary (spec §4.9: "A
// quantum is one message send (configurable)"). Consulted by Tick,
// called from pkg/vm after every Send.
const quantum = 1

// readyQueue is a container/heap priority queue ordering Ready
// processes by Priority, FIFO within a priority tier via a monotonic
// sequence number (mirrors MongooseMoo-barn's TaskQueue shape, adapted
// from start-time ordering to priority-then-arrival ordering since
// nemo processes are otherwise all immediately runnable).
type readyQueue struct {
	items []*Process
	seq   []int64
	next  int64
}

func (q *readyQueue) Len() int { return len(q.items) }
func (q *readyQueue) Less(i, j int) bool {
	if q.items[i].Priority != q.items[j].Priority {
		return q.items[i].Priority > q.items[j].Priority
	}
	return q.seq[i] < q.seq[j]
}
func (q *readyQueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.seq[i], q.seq[j] = q.seq[j], q.seq[i]
}
func (q *readyQueue) Push(x interface{}) {
	p := x.(*Process)
	q.items = append(q.items, p)
	q.seq = append(q.seq, q.next)
	q.next++
}
func (q *readyQueue) Pop() interface{} {
	n := len(q.items)
	p := q.items[n-1]
	q.items = q.items[:n-1]
	q.seq = q.seq[:n-1]
	return p
}

// Scheduler runs every registered Process cooperatively (spec §5's
// "single OS thread" discipline): Run is an ordinary Go loop that pops
// one Ready process, hands its goroutine the next quantum over the
// turn/yielded channel pair, and reinserts it per the resulting state
// once that goroutine parks or terminates. Exactly one process
// goroutine is ever unblocked at a time.
type Scheduler struct {
	Registry *object.Registry
	ready    readyQueue
	blocked  []*Process
	all      map[int64]*Process
	nextID   int64
	clock    int64 // milliseconds, advanced once per Run loop tick
	current  *Process

	processClass *object.Class
}

// New creates a Scheduler sharing reg's class/global table.
func New(reg *object.Registry) *Scheduler {
	processClass := object.NewClass("Process", nil)
	reg.DefineClass("Process", processClass)
	s := &Scheduler{
		Registry:     reg,
		all:          make(map[int64]*Process),
		processClass: processClass,
	}
	heap.Init(&s.ready)
	return s
}

// Spawn registers block as a new top-level Process at the given
// priority, starts its goroutine (parked immediately on its own turn
// channel), and returns it Ready.
func (s *Scheduler) Spawn(block *object.Block, priority int) *Process {
	s.nextID++
	vp := vm.NewProcess(s.Registry)
	vp.Sched = s
	proc := &Process{
		ID:        s.nextID,
		Priority:  priority,
		VM:        vp,
		Block:     block,
		State:     Ready,
		turn:      make(chan struct{}),
		yielded:   make(chan struct{}),
		sendsLeft: quantum,
	}
	proc.Proxy = &object.Instance{Class: s.processClass, Native: proc}
	s.all[proc.ID] = proc
	heap.Push(&s.ready, proc)
	go s.runProcess(proc)
	return proc
}

// runProcess is a Process's goroutine body: it waits for its first
// turn, then runs the top-level block to completion, reporting back
// over yielded exactly once -- either here, when the block returns, or
// from inside parkCurrent, called from deep in the block's call stack
// whenever that process yields or its quantum expires.
func (s *Scheduler) runProcess(proc *Process) {
	<-proc.turn
	_, err := proc.VM.RunTopLevelBlock(proc.Block)
	proc.runErr = err
	proc.State = Terminated
	proc.yielded <- struct{}{}
}

// Run advances every registered process until none remain Ready or
// Blocked (spec §5's run-to-completion model for the top-level
// program: the scheduler loop exits once the whole process graph is
// quiescent).
func (s *Scheduler) Run() error {
	for s.ready.Len() > 0 || len(s.blocked) > 0 {
		s.wakeDueTimers()
		if s.ready.Len() == 0 {
			s.clock++
			continue
		}
		proc := heap.Pop(&s.ready).(*Process)
		if proc.State == Terminated || proc.State == Suspended {
			continue
		}
		proc.State = Running
		proc.sendsLeft = quantum
		s.current = proc
		proc.turn <- struct{}{}
		<-proc.yielded
		s.current = nil
		if proc.runErr != nil {
			return fmt.Errorf("process %d: %w", proc.ID, proc.runErr)
		}
		if proc.State == Running {
			proc.State = Ready
			heap.Push(&s.ready, proc)
		}
	}
	return nil
}

// parkCurrent suspends the calling goroutine (always a Process's own,
// invoked from Tick/Yield/Sleep deep in its call stack) until Run
// grants it another turn, handing control back to Run's loop in the
// meantime. This is the one place a process actually gives up the CPU
// mid-evaluation, preserving its whole Go call stack across the pause.
func (s *Scheduler) parkCurrent() {
	proc := s.current
	if proc == nil {
		return
	}
	proc.yielded <- struct{}{}
	<-proc.turn
}

// wakeDueTimers moves Blocked-on-sleep processes back to Ready once
// s.clock has reached their wake time; Run calls it on every loop
// iteration and scans the whole blocked slice each time.
func (s *Scheduler) wakeDueTimers() {
	var stillBlocked []*Process
	for _, p := range s.blocked {
		if p.State == Blocked && p.WakeAtMilli <= s.clock {
			p.State = Ready
			heap.Push(&s.ready, p)
			continue
		}
		stillBlocked = append(stillBlocked, p)
	}
	s.blocked = stillBlocked
}

// --- vm.Scheduler implementation, reached from pkg/vm/primitives_process.go ---

func (s *Scheduler) Fork(block *object.Block) (*object.Instance, error) {
	proc := s.Spawn(block, 0)
	return proc.Proxy, nil
}

// Yield moves the current process from Running to Ready at the tail
// of the queue (spec §4.9), parking its goroutine until Run gives it
// another turn.
func (s *Scheduler) Yield() error {
	s.parkCurrent()
	return nil
}

// Tick is called from pkg/vm after every message send (spec §4.9: "A
// quantum is one message send"). Once the current process has spent
// its quantum, it is parked exactly as if it had sent an explicit
// yield, so Run's loop gets a chance to rotate the ready queue even
// when a process never sends "yield" itself.
func (s *Scheduler) Tick() error {
	proc := s.current
	if proc == nil {
		return nil
	}
	proc.sendsLeft--
	if proc.sendsLeft > 0 {
		return nil
	}
	proc.sendsLeft = quantum
	s.parkCurrent()
	return nil
}

func (s *Scheduler) Sleep(ms int64) error {
	proc := s.current
	if proc == nil {
		return nil
	}
	proc.State = Blocked
	proc.WakeAtMilli = s.clock + ms
	s.blocked = append(s.blocked, proc)
	s.parkCurrent()
	return nil
}

func (s *Scheduler) Suspend(procInst *object.Instance) error {
	proc, ok := procInst.Native.(*Process)
	if !ok {
		return fmt.Errorf("suspend: not a Process")
	}
	proc.State = Suspended
	if proc == s.current {
		s.parkCurrent()
	}
	return nil
}

func (s *Scheduler) Resume(procInst *object.Instance) error {
	proc, ok := procInst.Native.(*Process)
	if !ok {
		return fmt.Errorf("resume: not a Process")
	}
	if proc.State != Suspended {
		return nil
	}
	proc.State = Ready
	heap.Push(&s.ready, proc)
	return nil
}

func (s *Scheduler) Terminate(procInst *object.Instance) error {
	proc, ok := procInst.Native.(*Process)
	if !ok {
		return fmt.Errorf("terminate: not a Process")
	}
	proc.State = Terminated
	return nil
}

func (s *Scheduler) Current() *object.Instance {
	if s.current == nil {
		return nil
	}
	return s.current.Proxy
}
