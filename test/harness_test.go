// Package nemo_test is the black-box scenario suite: it drives source
// text through the same parse-then-evaluate path cmd/nemo uses,
// rather than poking pkg/vm's internals directly (see pkg/vm and
// pkg/scheduler's own package tests for that).
package nemo_test

import (
	"os"
	"testing"

	"github.com/kristofer/nemo/pkg/object"
	"github.com/kristofer/nemo/pkg/parser"
	"github.com/kristofer/nemo/pkg/scheduler"
	"github.com/kristofer/nemo/pkg/vm"
)

var bootstrapFiles = []string{"object.nemo", "boolean.nemo", "collections.nemo", "exception.nemo"}

// newRuntime builds a fresh Registry with the bootstrap library loaded,
// mirroring cmd/nemo's loadBootstrap so scenario tests see the same
// Object>>printNl/Boolean>>xor:/Array>>sum/Exception>>description
// methods a real run would have.
func newRuntime(t *testing.T) (*object.Registry, *vm.Process) {
	t.Helper()
	reg := vm.NewRuntime()
	vp := vm.NewProcess(reg)
	for _, f := range bootstrapFiles {
		data, err := os.ReadFile("../lib/" + f)
		if err != nil {
			t.Fatalf("reading lib/%s: %v", f, err)
		}
		p := parser.New(string(data))
		program := p.ParseProgram()
		if errs := p.Errors(); len(errs) > 0 {
			t.Fatalf("parsing lib/%s: %v", f, errs[0])
		}
		if _, err := vp.EvalTopLevel(program); err != nil {
			t.Fatalf("loading lib/%s: %v", f, err)
		}
	}
	return reg, vp
}

// run parses and evaluates src against vp's globals, failing the test
// on a parse error or an uncaught runtime error.
func run(t *testing.T, vp *vm.Process, src string) object.Value {
	t.Helper()
	p := parser.New(src)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse error: %v", errs[0])
	}
	result, err := vp.EvalTopLevel(program)
	if err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	return result
}

// runErr is like run but expects evaluation to fail, returning the error.
func runErr(t *testing.T, vp *vm.Process, src string) error {
	t.Helper()
	p := parser.New(src)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse error: %v", errs[0])
	}
	_, err := vp.EvalTopLevel(program)
	if err == nil {
		t.Fatal("expected a runtime error, got none")
	}
	return err
}

// newScheduledRuntime is like newRuntime but also builds a Scheduler
// over the same Registry, for scenarios exercising fork:/yield.
func newScheduledRuntime(t *testing.T) (*vm.Process, *scheduler.Scheduler) {
	t.Helper()
	reg, vp := newRuntime(t)
	sched := scheduler.New(reg)
	vp.Sched = sched
	return vp, sched
}
