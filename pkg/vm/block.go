package vm

import (
	"github.com/kristofer/nemo/pkg/ast"
	"github.com/kristofer/nemo/pkg/object"
)

// dispatchControl special-cases the handful of messages whose meaning
// depends on evaluating unevaluated block arguments lazily or on
// reaching back into the process (booleans' ifTrue:/and:/or:,
// blocks' value/whileTrue: family, exceptions' on:do:/signal, and the scheduler
// primitives) rather than on an ordinary primitive that only sees
// already-evaluated arguments. This mirrors the teacher's send(),
// which "handles primitive operations directly" before falling back
// to class-based lookup.
func (p *Process) dispatchControl(receiver object.Value, selector string, args []object.Value, caller *Activation) (bool, object.Value, error) {
	if b, ok := receiver.(bool); ok {
		if handled, v, err := p.dispatchBoolean(b, selector, args, caller); handled {
			return true, v, err
		}
	}
	if blk, ok := receiver.(*object.Block); ok {
		if handled, v, err := p.dispatchBlock(blk, selector, args, caller); handled {
			return true, v, err
		}
	}
	if handled, v, err := p.dispatchNumberControl(receiver, selector, args, caller); handled {
		return true, v, err
	}
	if handled, v, err := p.dispatchCollectionControl(receiver, selector, args, caller); handled {
		return true, v, err
	}
	if handled, v, err := p.dispatchProcessControl(receiver, selector, args, caller); handled {
		return true, v, err
	}
	if handled, v, err := p.dispatchStringControl(receiver, selector, args, caller); handled {
		return true, v, err
	}
	if handled, v, err := p.dispatchPerform(receiver, selector, args, caller); handled {
		return true, v, err
	}
	if handled, v, err := p.dispatchInstanceSlots(receiver, selector, args, caller); handled {
		return true, v, err
	}
	return p.dispatchException(receiver, selector, args, caller)
}

func (p *Process) dispatchBoolean(b bool, selector string, args []object.Value, caller *Activation) (bool, object.Value, error) {
	switch selector {
	case "ifTrue:":
		if b {
			v, err := p.invokeBlockValue(args[0], nil, caller)
			return true, v, err
		}
		return true, object.NilObj, nil
	case "ifFalse:":
		if !b {
			v, err := p.invokeBlockValue(args[0], nil, caller)
			return true, v, err
		}
		return true, object.NilObj, nil
	case "ifTrue:ifFalse:":
		if b {
			v, err := p.invokeBlockValue(args[0], nil, caller)
			return true, v, err
		}
		v, err := p.invokeBlockValue(args[1], nil, caller)
		return true, v, err
	case "ifFalse:ifTrue:":
		if !b {
			v, err := p.invokeBlockValue(args[0], nil, caller)
			return true, v, err
		}
		v, err := p.invokeBlockValue(args[1], nil, caller)
		return true, v, err
	case "and:":
		if !b {
			return true, false, nil
		}
		v, err := p.invokeBlockValue(args[0], nil, caller)
		return true, v, err
	case "or:":
		if b {
			return true, true, nil
		}
		v, err := p.invokeBlockValue(args[0], nil, caller)
		return true, v, err
	case "not":
		return true, !b, nil
	}
	return false, nil, nil
}

func (p *Process) dispatchBlock(blk *object.Block, selector string, args []object.Value, caller *Activation) (bool, object.Value, error) {
	switch selector {
	case "value", "value:", "value:value:", "value:value:value:":
		v, err := p.invokeBlock(blk, args, caller)
		return true, v, err
	case "whileTrue:":
		for {
			cond, err := p.invokeBlock(blk, nil, caller)
			if err != nil {
				return true, nil, err
			}
			condBool, ok := cond.(bool)
			if !ok || !condBool {
				return true, object.NilObj, nil
			}
			if _, err := p.invokeBlockValue(args[0], nil, caller); err != nil {
				return true, nil, err
			}
		}
	case "whileFalse:":
		for {
			cond, err := p.invokeBlock(blk, nil, caller)
			if err != nil {
				return true, nil, err
			}
			condBool, ok := cond.(bool)
			if !ok || condBool {
				return true, object.NilObj, nil
			}
			if _, err := p.invokeBlockValue(args[0], nil, caller); err != nil {
				return true, nil, err
			}
		}
	}
	return false, nil, nil
}

// invokeBlockValue invokes v, which is expected to be a block, with no
// arguments; used for the implicitly-a-block arguments of ifTrue: and
// friends.
func (p *Process) invokeBlockValue(v object.Value, args []object.Value, caller *Activation) (object.Value, error) {
	blk, ok := v.(*object.Block)
	if !ok {
		// A non-block argument to ifTrue:/and:/... is simply its own value
		// (lets literals and already-evaluated expressions stand in for a
		// trivial block), matching permissive Smalltalk usage.
		return v, nil
	}
	return p.invokeBlock(blk, args, caller)
}

// RunTopLevelBlock invokes block with no arguments and no enclosing
// activation, the entry point pkg/scheduler uses to advance a forked
// process's top-level block.
func (p *Process) RunTopLevelBlock(block *object.Block) (object.Value, error) {
	top := &Activation{Env: object.NewEnv(nil), Receiver: object.NilObj}
	top.HomeAct = top
	return p.invokeBlock(block, nil, top)
}

// invokeBlock creates a block activation (spec §4.6): sender is the
// current activation, variable lookup walks the block's captured
// environment chain, and Home is inherited from the block so a nested
// block's "^" still unwinds to the original method activation.
func (p *Process) invokeBlock(blk *object.Block, args []object.Value, caller *Activation) (object.Value, error) {
	if len(args) != len(blk.Parameters) {
		return nil, newArityError("value", len(blk.Parameters), len(args))
	}

	p.Depth++
	defer func() { p.Depth-- }()
	if p.Depth > p.MaxDepth {
		return nil, newStackOverflow(p.MaxDepth)
	}

	env := object.NewEnv(blk.Env)
	for i, param := range blk.Parameters {
		env.Declare(param, args[i])
	}
	for _, t := range blk.Temporaries {
		env.Declare(t, object.NilObj)
	}

	homeAct, _ := blk.Home.(*Activation)
	receiver := caller.Receiver
	if homeAct != nil {
		receiver = homeAct.Receiver
	}

	act := &Activation{
		Sender:   caller,
		Receiver: receiver,
		Env:      env,
	}
	if homeAct != nil {
		act.HomeAct = homeAct.HomeAct
		act.MethodClass = homeAct.MethodClass
	}
	if act.HomeAct == nil {
		act.HomeAct = act
	}

	var result object.Value = object.NilObj
	for _, stmt := range blk.Body {
		v, err := p.eval(stmt.(ast.Node), act)
		if err != nil {
			return nil, err
		}
		result = v
	}
	return result, nil
}
