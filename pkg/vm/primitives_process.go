package vm

import "github.com/kristofer/nemo/pkg/object"

// dispatchProcessControl implements the scheduler-facing messages
// (spec §4.9): "fork:" spawns a new process running a block, "yield"/
// "suspend"/"resume"/"terminate" act on the current or a named
// process. They are control messages (not simple primitives) because
// they call back into the owning *scheduler.Scheduler through the
// narrow Scheduler interface rather than operating on receiver/args
// alone.
func (p *Process) dispatchProcessControl(receiver object.Value, selector string, args []object.Value, caller *Activation) (bool, object.Value, error) {
	if p.Sched == nil {
		return false, nil, nil
	}
	switch selector {
	case "fork:":
		if !isProcessor(receiver) {
			return false, nil, nil
		}
		blk, ok := args[0].(*object.Block)
		if !ok {
			return true, nil, newError("TypeError", "fork: expects a Block argument")
		}
		proc, err := p.Sched.Fork(blk)
		return true, proc, err
	case "yield":
		if !isProcessor(receiver) {
			return false, nil, nil
		}
		return true, object.NilObj, p.Sched.Yield()
	case "sleep:":
		if !isProcessor(receiver) {
			return false, nil, nil
		}
		ms, _ := args[0].(int64)
		return true, object.NilObj, p.Sched.Sleep(ms)
	case "suspend":
		inst, ok := receiver.(*object.Instance)
		if !ok || inst.Class.Name != "Process" {
			return false, nil, nil
		}
		return true, object.NilObj, p.Sched.Suspend(inst)
	case "resume":
		inst, ok := receiver.(*object.Instance)
		if !ok || inst.Class.Name != "Process" {
			return false, nil, nil
		}
		return true, object.NilObj, p.Sched.Resume(inst)
	case "terminate":
		inst, ok := receiver.(*object.Instance)
		if !ok || inst.Class.Name != "Process" {
			return false, nil, nil
		}
		return true, object.NilObj, p.Sched.Terminate(inst)
	}
	return false, nil, nil
}

// isProcessor reports whether receiver is the "Processor" singleton
// global through which yield/sleep: act on the currently-running
// process rather than a named one.
func isProcessor(receiver object.Value) bool {
	c, ok := receiver.(*object.Class)
	return ok && c.Name == "Processor"
}
