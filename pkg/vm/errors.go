// Package vm implements the tree-walking interpreter for nemo: method
// dispatch, activation records, block invocation, and the exception
// engine. Source is parsed once (pkg/parser) into an AST (pkg/ast);
// the VM walks that AST directly rather than compiling to bytecode,
// with each message send realized as a direct Go function call into
// Process.Send so the call stack IS the activation chain.
package vm

import (
	"fmt"
	"strings"

	"github.com/kristofer/nemo/pkg/object"
)

// StackFrame is one entry of a diagnostic call stack as
// RuntimeError.Error prints it. Nothing in this package fills
// RuntimeError.StackTrace: signal's no-handler fallback sets only Kind,
// Message and Instance, so an uncaught error prints no frames.
type StackFrame struct {
	Name       string
	Selector   string
	SourceLine int
	SourceCol  int
}

// RuntimeError is a signalled nemo Exception surfaced as a Go error at
// the Go call boundary. Kind names the Exception subclass
// (spec §4.8/§7); Instance is the actual *object.Instance user code
// sees via on:do:.
type RuntimeError struct {
	Kind       string
	Message    string
	StackTrace []StackFrame
	Instance   *object.Instance
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Kind, e.Message)
	for i := len(e.StackTrace) - 1; i >= 0; i-- {
		f := e.StackTrace[i]
		fmt.Fprintf(&b, "\n  at %s", f.Name)
		if f.Selector != "" {
			fmt.Fprintf(&b, " (selector: %s)", f.Selector)
		}
		if f.SourceLine > 0 {
			fmt.Fprintf(&b, " [line %d:%d]", f.SourceLine, f.SourceCol)
		}
	}
	return b.String()
}

func newError(kind, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func newMessageNotUnderstood(receiver object.Value, selector string) *RuntimeError {
	return newError("MessageNotUnderstood", "%v does not understand %q", receiver, selector)
}

func newArityError(selector string, want, got int) *RuntimeError {
	return newError("ArityError", "%q expects %d argument(s), got %d", selector, want, got)
}

func newStackOverflow(depth int) *RuntimeError {
	return newError("StackOverflow", "stack depth exceeded %d activations", depth)
}

func newAmbiguousMethod(class *object.Class, selector string) *RuntimeError {
	return newError("AmbiguousMethod", "%s has conflicting inherited definitions of %q; use super<Parent>", class.Name, selector)
}

func newSlotConflict(err error) *RuntimeError {
	return newError("SlotConflict", "%s", err.Error())
}

func newSubscriptOutOfBounds(index, size int) *RuntimeError {
	return newError("SubscriptOutOfBounds", "index %d out of bounds (size %d)", index, size)
}

func newDivisionByZero() *RuntimeError {
	return newError("DivisionByZero", "division by zero")
}
