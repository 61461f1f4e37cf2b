package vm

import (
	"strings"

	"github.com/kristofer/nemo/pkg/ast"
	"github.com/kristofer/nemo/pkg/object"
)

// evalMessageSend evaluates a receiver, its arguments, and any cascade
// messages, then dispatches each through Send (spec §4.4). A super
// receiver is resolved statically here rather than through the normal
// ClassOf path, since super's restart point depends on the lexical
// method the send occurs in, not on the runtime receiver's class.
func (p *Process) evalMessageSend(n *ast.MessageSend, act *Activation) (object.Value, error) {
	receiver, startClass, err := p.resolveReceiver(n.Receiver, act)
	if err != nil {
		return nil, err
	}
	args, err := p.evalArgs(n.Args, act)
	if err != nil {
		return nil, err
	}
	result, err := p.Send(receiver, n.Selector, args, startClass, act)
	if err != nil {
		return nil, err
	}
	for _, c := range n.Cascaded {
		cargs, err := p.evalArgs(c.Args, act)
		if err != nil {
			return nil, err
		}
		result, err = p.Send(receiver, c.Selector, cargs, nil, act)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// resolveReceiver evaluates the receiver expression, returning a
// non-nil startClass only when the receiver expression was (scoped)
// super: a signal to Send to begin lookup above the normal class.
func (p *Process) resolveReceiver(recv ast.Expression, act *Activation) (object.Value, *object.Class, error) {
	switch r := recv.(type) {
	case *ast.SuperExpr:
		if act.MethodClass == nil {
			return nil, nil, newError("InternalError", "super used outside a method")
		}
		parent := act.MethodClass.FirstSuperclass()
		if parent == nil {
			return nil, nil, newError("InternalError", "%s has no superclass for super", act.MethodClass.Name)
		}
		return act.Receiver, parent, nil
	case *ast.ScopedSuperExpr:
		v, ok := p.Registry.Globals.Lookup(r.Parent)
		if !ok {
			return nil, nil, newError("InternalError", "unknown class %q in super<%s>", r.Parent, r.Parent)
		}
		class, ok := v.(*object.Class)
		if !ok {
			return nil, nil, newError("InternalError", "%q is not a class", r.Parent)
		}
		return act.Receiver, class, nil
	default:
		v, err := p.eval(recv, act)
		return v, nil, err
	}
}

func (p *Process) evalArgs(exprs []ast.Expression, act *Activation) ([]object.Value, error) {
	args := make([]object.Value, len(exprs))
	for i, e := range exprs {
		v, err := p.eval(e, act)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

// Send dispatches selector to receiver with args (spec §4.4-4.5).
// startClass, when non-nil, is the statically-resolved super restart
// point; when nil, lookup begins at receiver's own class. caller is
// the activation the send occurs in, used for stack-trace reporting
// and as the block-literal-capture frame should a primitive need it.
//
// Every completed send counts against the owning process's quantum
// (spec §4.9: "a quantum is one message send") by calling Sched.Tick,
// which parks the process's goroutine and hands control back to the
// scheduler once the quantum is spent -- this is what makes two
// processes actually interleave rather than one running to completion
// before the other starts.
func (p *Process) Send(receiver object.Value, selector string, args []object.Value, startClass *object.Class, caller *Activation) (object.Value, error) {
	result, err := p.sendInner(receiver, selector, args, startClass, caller)
	if rerr, ok := err.(*RuntimeError); ok {
		result, err = p.RaiseAsInstance(rerr, caller)
	}
	if p.Sched != nil {
		if tickErr := p.Sched.Tick(); tickErr != nil {
			return result, tickErr
		}
	}
	return result, err
}

// sendInner performs the actual lookup-and-invoke algorithm (spec
// §4.4-4.5); Send wraps it so every internally-detected failure
// (ArityError, MessageNotUnderstood, SubscriptOutOfBounds, ...) is
// raised as a signalled Exception instance at the point it is
// detected, exactly like a user's own "anException signal", rather
// than propagating as a bare unrecoverable Go error.
func (p *Process) sendInner(receiver object.Value, selector string, args []object.Value, startClass *object.Class, caller *Activation) (object.Value, error) {
	if handled, result, err := p.dispatchControl(receiver, selector, args, caller); handled {
		return result, err
	}

	class := startClass
	if class == nil {
		class = p.Registry.ClassOf(receiver)
	}

	var method *object.Method
	var ok bool
	if recvClass, isClass := receiver.(*object.Class); isClass && startClass == nil {
		if method, ok = recvClass.LookupClassSide(selector); !ok {
			method, ok = class.Lookup(selector)
		}
	} else {
		method, ok = class.Lookup(selector)
	}

	if !ok {
		if recvClass, isClass := receiver.(*object.Class); isClass && selector == "new" && startClass == nil {
			return object.NewInstance(recvClass), nil
		}
		return p.sendDoesNotUnderstand(receiver, selector, args, caller)
	}
	if object.IsAmbiguous(method) {
		return nil, newAmbiguousMethod(class, selector)
	}

	if method.Primitive != nil {
		// Primitives declare no parameter names; their arity is the
		// selector's: one per keyword part, one for a binary selector.
		want := strings.Count(selector, ":")
		if want == 0 && strings.IndexByte("+-*/%<>=~,|&@", selector[0]) >= 0 {
			want = 1
		}
		if want != len(args) {
			return nil, newArityError(selector, want, len(args))
		}
		return method.Primitive(receiver, args)
	}

	if len(method.Parameters) != len(args) {
		return nil, newArityError(selector, len(method.Parameters), len(args))
	}

	return p.invokeMethod(method, receiver, args, caller)
}

func (p *Process) invokeMethod(method *object.Method, receiver object.Value, args []object.Value, caller *Activation) (object.Value, error) {
	p.Depth++
	defer func() { p.Depth-- }()
	if p.Depth > p.MaxDepth {
		return nil, newStackOverflow(p.MaxDepth)
	}

	env := object.NewEnv(nil)
	for i, param := range method.Parameters {
		env.Declare(param, args[i])
	}
	act := &Activation{
		Sender:      caller,
		Receiver:    receiver,
		MethodClass: method.Owner,
		Selector:    method.Selector,
		Env:         env,
	}
	act.HomeAct = act

	prevCurrent := p.Current
	p.Current = act
	defer func() { p.Current = prevCurrent }()

	if p.Debugger != nil && p.Debugger.ShouldPause(method.Selector) {
		p.Debugger.ShowCurrentActivation(act)
		p.Debugger.InteractivePrompt(act)
	}

	var result object.Value = object.NilObj
	for _, stmt := range method.Body.Body {
		v, err := p.eval(stmt.(ast.Node), act)
		if err != nil {
			if nlr, isNLR := err.(*nonLocalReturn); isNLR {
				if nlr.Home == act {
					return nlr.Value, nil
				}
			}
			return nil, err
		}
		result = v
	}
	return result, nil
}

func (p *Process) sendDoesNotUnderstand(receiver object.Value, selector string, args []object.Value, caller *Activation) (object.Value, error) {
	class := p.Registry.ClassOf(receiver)
	if _, ok := class.Lookup("doesNotUnderstand:"); ok {
		return p.Send(receiver, "doesNotUnderstand:", []object.Value{object.Intern(selector)}, nil, caller)
	}
	return nil, newMessageNotUnderstood(receiver, selector)
}

func (p *Process) evalMethodDefinition(n *ast.MethodDefinition, act *Activation) (object.Value, error) {
	targetVal, err := p.eval(n.TargetClassExpr, act)
	if err != nil {
		return nil, err
	}
	class, ok := targetVal.(*object.Class)
	if !ok {
		return nil, newError("InternalError", "method defined on a non-class value")
	}
	block := p.evalBlockLiteral(n.Body, act)
	block.Parameters = n.Parameters
	m := &object.Method{Selector: n.Selector, Parameters: n.Parameters, Body: block}
	if n.IsClassMethod {
		m.MarkClassSide()
	}
	class.InstallMethod(n.Selector, m)
	// Refold every registered class, superclasses first, so subclasses
	// derived before this definition also see the new method.
	refolded := make(map[*object.Class]bool)
	var refold func(c *object.Class)
	refold = func(c *object.Class) {
		if refolded[c] {
			return
		}
		refolded[c] = true
		for _, s := range c.Superclasses {
			refold(s)
		}
		c.Merge()
	}
	for _, c := range p.Registry.Classes {
		refold(c)
	}
	return class, nil
}

func (p *Process) evalClassDerive(n *ast.ClassDerive, act *Activation) (object.Value, error) {
	superVal, err := p.eval(n.SuperClassExpr, act)
	if err != nil {
		return nil, err
	}
	superClass, ok := superVal.(*object.Class)
	if !ok {
		return nil, newError("InternalError", "derive: sent to a non-class value")
	}
	return object.Derive(superClass, n.SlotNames), nil
}
