// Package vm - debugger support
package vm

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/kristofer/nemo/pkg/object"
)

// Debugger provides interactive debugging over a Process's activation
// chain. There is no bytecode instruction pointer to break on in a
// tree-walking interpreter, so breakpoints are keyed by selector name
// instead of instruction index: a send whose selector matches a
// breakpoint pauses just before its activation runs.
type Debugger struct {
	process     *Process
	breakpoints map[string]bool
	stepMode    bool
	enabled     bool
}

// NewDebugger creates a debugger attached to p.
func NewDebugger(p *Process) *Debugger {
	return &Debugger{process: p, breakpoints: make(map[string]bool)}
}

// Enable activates the debugger.
func (d *Debugger) Enable() { d.enabled = true }

// Disable deactivates the debugger.
func (d *Debugger) Disable() { d.enabled = false }

// SetStepMode enables or disables pausing before every send.
func (d *Debugger) SetStepMode(enabled bool) { d.stepMode = enabled }

// AddBreakpoint pauses execution just before any send to selector.
func (d *Debugger) AddBreakpoint(selector string) { d.breakpoints[selector] = true }

// RemoveBreakpoint removes a previously-set breakpoint.
func (d *Debugger) RemoveBreakpoint(selector string) { delete(d.breakpoints, selector) }

// ClearBreakpoints removes every breakpoint.
func (d *Debugger) ClearBreakpoints() { d.breakpoints = make(map[string]bool) }

// ShouldPause reports whether a send of selector should pause.
func (d *Debugger) ShouldPause(selector string) bool {
	if !d.enabled {
		return false
	}
	if d.stepMode {
		return true
	}
	return d.breakpoints[selector]
}

// ShowCurrentActivation prints the activation about to run.
func (d *Debugger) ShowCurrentActivation(act *Activation) {
	fmt.Printf("=> %s>>%s  (receiver: %v)\n", ownerName(act), act.Selector, act.Receiver)
}

func ownerName(act *Activation) string {
	if act.MethodClass != nil {
		return act.MethodClass.Name
	}
	return "<top-level>"
}

// InteractivePrompt drives the debugger's REPL-within-a-REPL: help,
// continue, step, next, stack, locals, globals, callstack, quit.
func (d *Debugger) InteractivePrompt(act *Activation) {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("(nemo-debug) ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		cmd := strings.TrimSpace(line)
		switch {
		case cmd == "" || cmd == "help":
			fmt.Println("commands: continue, step, next, stack, locals, globals, callstack, quit")
		case cmd == "continue" || cmd == "c":
			d.SetStepMode(false)
			return
		case cmd == "step" || cmd == "s":
			d.SetStepMode(true)
			return
		case cmd == "next" || cmd == "n":
			return
		case cmd == "stack":
			d.showCallStack(act)
		case cmd == "callstack":
			d.showCallStack(act)
		case cmd == "locals":
			d.showLocals(act)
		case cmd == "globals":
			d.showGlobals()
		case cmd == "quit" || cmd == "q":
			d.Disable()
			return
		default:
			fmt.Printf("unrecognized command %q\n", cmd)
		}
	}
}

func (d *Debugger) showCallStack(act *Activation) {
	depth := 0
	for a := act; a != nil; a = a.Sender {
		fmt.Printf("  #%d %s>>%s\n", depth, ownerName(a), a.Selector)
		depth++
	}
}

func (d *Debugger) showLocals(act *Activation) {
	fmt.Println("  (locals are scoped per-block; inspect via the env chain)")
	_ = act
}

func (d *Debugger) showGlobals() {
	for name, v := range d.process.Registry.Globals.All() {
		if _, isClass := v.(*object.Class); isClass {
			fmt.Printf("  %s\n", name)
		}
	}
}
