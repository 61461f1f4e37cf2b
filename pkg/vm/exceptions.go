package vm

import "github.com/kristofer/nemo/pkg/object"

// handlerFrame is one "on:do:" activation: the exception class it
// guards against and the handler block to run. resume:/retry/pass/
// return: identify their target frame by pointer (exceptionControl.Frame).
type handlerFrame struct {
	ExceptionClass *object.Class
	HandlerBlock   *object.Block
}

type exceptionControlKind int

const (
	ctrlResume exceptionControlKind = iota
	ctrlRetryPropagate
	ctrlReturnPropagate
	ctrlPass
)

// exceptionControl is the sentinel used for every resumable-exception
// control message (resume:/retry/pass/return:), riding the same
// Go-call-stack unwinding path as nonLocalReturn (spec §4.8: "letting
// the two mechanisms share the unwinding machinery").
type exceptionControl struct {
	Kind  exceptionControlKind
	Value object.Value
	Frame *handlerFrame
}

func (e *exceptionControl) Error() string { return "exception control transfer" }

// dispatchException special-cases "on:do:", "signal"/"signal:" on
// exception instances, and the resume:/retry/pass/return: messages
// sent to the exception argument from inside a handler block.
func (p *Process) dispatchException(receiver object.Value, selector string, args []object.Value, caller *Activation) (bool, object.Value, error) {
	if blk, ok := receiver.(*object.Block); ok && selector == "on:do:" {
		v, err := p.evalOnDo(blk, args, caller)
		return true, v, err
	}
	if inst, ok := receiver.(*object.Instance); ok && isExceptionInstance(inst) {
		switch selector {
		case "signal":
			v, err := p.signal(inst, caller)
			return true, v, err
		case "signal:":
			if idx := inst.Class.SlotIndex("messageText"); idx >= 0 {
				inst.Slots[idx] = args[0]
			}
			v, err := p.signal(inst, caller)
			return true, v, err
		case "resume:":
			return true, nil, &exceptionControl{Kind: ctrlResume, Value: args[0], Frame: p.activeFrame}
		case "retry":
			return true, nil, &exceptionControl{Kind: ctrlRetryPropagate, Frame: p.activeFrame}
		case "pass":
			return true, nil, &exceptionControl{Kind: ctrlPass, Frame: p.activeFrame}
		case "return:":
			return true, nil, &exceptionControl{Kind: ctrlReturnPropagate, Value: args[0], Frame: p.activeFrame}
		}
	}
	return false, nil, nil
}

func isExceptionInstance(inst *object.Instance) bool {
	for c := inst.Class; c != nil; {
		if c.Name == "Exception" {
			return true
		}
		c = c.FirstSuperclass()
	}
	return false
}

func classIsKindOf(c, target *object.Class) bool {
	for cur := c; cur != nil; cur = cur.FirstSuperclass() {
		if cur == target {
			return true
		}
	}
	return false
}

func (p *Process) evalOnDo(protected *object.Block, args []object.Value, caller *Activation) (object.Value, error) {
	excClass, _ := args[0].(*object.Class)
	handler, _ := args[1].(*object.Block)
	frame := &handlerFrame{ExceptionClass: excClass, HandlerBlock: handler}

	for {
		p.Handlers = append(p.Handlers, frame)
		result, err := p.invokeBlock(protected, nil, caller)
		p.Handlers = p.Handlers[:len(p.Handlers)-1]

		if err == nil {
			return result, nil
		}
		ctrl, ok := err.(*exceptionControl)
		if !ok || ctrl.Frame != frame {
			return nil, err
		}
		switch ctrl.Kind {
		case ctrlReturnPropagate:
			return ctrl.Value, nil
		case ctrlRetryPropagate:
			continue
		default:
			return nil, err
		}
	}
}

// signal walks the handler stack outward from the innermost frame
// (spec §4.8), invoking the first handler whose ExceptionClass is an
// ancestor of exc's class. The handler block runs synchronously at the
// signal point (not after unwinding), which is what lets "resume:"
// hand a value straight back to the signal call without re-entering
// the protected block.
func (p *Process) signal(exc *object.Instance, caller *Activation) (object.Value, error) {
	for i := len(p.Handlers) - 1; i >= 0; i-- {
		frame := p.Handlers[i]
		if !classIsKindOf(exc.Class, frame.ExceptionClass) {
			continue
		}

		visible := p.Handlers[:i]
		prevHandlers, prevFrame := p.Handlers, p.activeFrame
		p.Handlers, p.activeFrame = visible, frame

		result, err := p.invokeBlock(frame.HandlerBlock, []object.Value{exc}, caller)

		p.Handlers, p.activeFrame = prevHandlers, prevFrame

		if err == nil {
			return nil, &exceptionControl{Kind: ctrlReturnPropagate, Value: result, Frame: frame}
		}
		ctrl, ok := err.(*exceptionControl)
		if !ok {
			return nil, err
		}
		switch ctrl.Kind {
		case ctrlResume:
			return ctrl.Value, nil
		case ctrlPass:
			continue
		default:
			return nil, ctrl
		}
	}
	text := exc.Class.Name
	if idx := exc.Class.SlotIndex("messageText"); idx >= 0 {
		if s, ok := exc.Slots[idx].(object.String); ok && s != "" {
			text = string(s)
		}
	}
	return nil, &RuntimeError{Kind: exc.Class.Name, Message: text, Instance: exc}
}
