package vm

import (
	"github.com/kristofer/nemo/pkg/ast"
	"github.com/kristofer/nemo/pkg/object"
)

// EvalTopLevel evaluates a parsed file's statements in order against
// p's globals (spec §6: a file is a sequence of top-level statements
// evaluated in order), returning the value of the last statement.
func (p *Process) EvalTopLevel(seq *ast.TopLevelSequence) (object.Value, error) {
	act := &Activation{Env: object.NewEnv(nil), Receiver: object.NilObj}
	act.HomeAct = act
	var result object.Value = object.NilObj
	for _, stmt := range seq.Statements {
		v, err := p.eval(stmt, act)
		if err != nil {
			return nil, err
		}
		result = v
	}
	return result, nil
}

// eval walks one AST node, evaluating it against act's environment and
// receiver.
func (p *Process) eval(node ast.Node, act *Activation) (object.Value, error) {
	switch n := node.(type) {
	case *ast.Literal:
		return p.evalLiteral(n), nil

	case *ast.Identifier:
		return p.evalIdentifier(n, act)

	case *ast.SelfExpr:
		return act.Receiver, nil

	case *ast.SuperExpr:
		// Resolved specially by evalMessageSend; a bare super outside a
		// send (e.g. "^ super") just yields the receiver.
		return act.Receiver, nil

	case *ast.ScopedSuperExpr:
		return act.Receiver, nil

	case *ast.Assign:
		return p.evalAssign(n, act)

	case *ast.MessageSend:
		return p.evalMessageSend(n, act)

	case *ast.Return:
		val, err := p.eval(n.Value, act)
		if err != nil {
			return nil, err
		}
		return nil, &nonLocalReturn{Value: val, Home: act.HomeAct}

	case *ast.Block:
		return p.evalBlockLiteral(n, act), nil

	case *ast.ArrayLiteral:
		return p.evalArrayLiteral(n, act)

	case *ast.TableLiteral:
		return p.evalTableLiteral(n, act)

	case *ast.MethodDefinition:
		return p.evalMethodDefinition(n, act)

	case *ast.ClassDerive:
		return p.evalClassDerive(n, act)

	default:
		return nil, newError("InternalError", "no evaluator for %T", node)
	}
}

func (p *Process) evalLiteral(n *ast.Literal) object.Value {
	switch n.Kind {
	case ast.IntLiteral:
		return n.Int
	case ast.FloatLiteral:
		return n.Float
	case ast.StringLiteral:
		return object.String(n.Str)
	case ast.SymbolLiteral:
		return object.Intern(n.Symbol)
	default:
		return object.NilObj
	}
}

func (p *Process) evalIdentifier(n *ast.Identifier, act *Activation) (object.Value, error) {
	switch n.Name {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "nil":
		return object.NilObj, nil
	}
	// Variable lookup order (spec §4.6): local env chain, then the
	// receiver's slots for a lowercase name, then globals.
	if v, ok := act.Env.Lookup(n.Name); ok {
		return v, nil
	}
	if inst, ok := act.Receiver.(*object.Instance); ok && isLower(n.Name) {
		if idx := inst.Class.SlotIndex(n.Name); idx >= 0 {
			return inst.Slots[idx], nil
		}
	}
	if v, ok := p.Registry.Globals.Lookup(n.Name); ok {
		return v, nil
	}
	return object.NilObj, nil
}

func isLower(s string) bool {
	return len(s) > 0 && s[0] >= 'a' && s[0] <= 'z'
}

func (p *Process) evalAssign(n *ast.Assign, act *Activation) (object.Value, error) {
	val, err := p.eval(n.Value, act)
	if err != nil {
		return nil, err
	}
	name := n.Target.Name
	if act.Env.Set(name, val) {
		return val, nil
	}
	if inst, ok := act.Receiver.(*object.Instance); ok && isLower(name) {
		if idx := inst.Class.SlotIndex(name); idx >= 0 {
			inst.Slots[idx] = val
			return val, nil
		}
	}
	if !isLower(name) {
		if c, ok := val.(*object.Class); ok && c.Name == "" {
			p.Registry.DefineClass(name, c)
			return val, nil
		}
		p.Registry.Globals.Declare(name, val)
		return val, nil
	}
	act.Env.Declare(name, val)
	return val, nil
}

func (p *Process) evalBlockLiteral(n *ast.Block, act *Activation) *object.Block {
	body := make([]object.BodyStatement, len(n.Body))
	for i, s := range n.Body {
		body[i] = s
	}
	return &object.Block{
		Parameters:  n.Parameters,
		Temporaries: n.Temporaries,
		Body:        body,
		Env:         act.Env,
		Home:        act,
	}
}

func (p *Process) evalArrayLiteral(n *ast.ArrayLiteral, act *Activation) (object.Value, error) {
	elems := make([]object.Value, len(n.Elements))
	for i, e := range n.Elements {
		v, err := p.eval(e, act)
		if err != nil {
			return nil, err
		}
		elems[i] = v
	}
	return &object.Array{Elements: elems}, nil
}

func (p *Process) evalTableLiteral(n *ast.TableLiteral, act *Activation) (object.Value, error) {
	tbl := object.NewTable()
	for _, entry := range n.Entries {
		v, err := p.eval(entry.Value, act)
		if err != nil {
			return nil, err
		}
		tbl.Set(entry.Key, v)
	}
	return tbl, nil
}
