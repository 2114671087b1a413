package stdlib

import (
	"errors"

	"github.com/agenthands/ndeque/pkg/compiler/ast"
	"github.com/agenthands/ndeque/pkg/core/value"
	"github.com/agenthands/ndeque/pkg/vm"
)

func blocks(what string, vals ...value.Value) error {
	for _, v := range vals {
		if v.Type != value.TypeBlock {
			return invalid(what, vals...)
		}
	}
	return nil
}

// holds runs cond on the current stack and consumes its result from side.
func holds(m *vm.Machine, side ast.Side, cond value.Value) (bool, error) {
	if err := m.ExecBlock(cond); err != nil {
		return false, err
	}
	v, err := m.Pop(side)
	if errors.Is(err, vm.ErrStackUnderflow) {
		return false, ErrNoResult
	}
	return v.Truthy(), err
}

// Exec runs a block against the current stack.
func Exec(m *vm.Machine, _ ast.Side, args []value.Value) (value.Value, error) {
	if err := blocks("exec", args[0]); err != nil {
		return value.Void, err
	}
	return value.Void, m.ExecBlock(args[0])
}

// Loop runs a block forever. It ends only through an error, the machine's
// gas budget or cancellation of its context.
func Loop(m *vm.Machine, _ ast.Side, args []value.Value) (value.Value, error) {
	if err := blocks("loop", args[0]); err != nil {
		return value.Void, err
	}
	for {
		if err := m.ExecBlock(args[0]); err != nil {
			return value.Void, err
		}
	}
}

// Range: ( lo hi step block -- )
// Pushes each i in [lo, hi) at side before running block. A negative step
// counts down towards hi.
func Range(m *vm.Machine, side ast.Side, args []value.Value) (value.Value, error) {
	lo, hi, inc, body := args[0], args[1], args[2], args[3]
	if lo.Type != value.TypeInt || hi.Type != value.TypeInt || inc.Type != value.TypeInt || body.Type != value.TypeBlock {
		return value.Void, invalid("range", lo, hi, inc, body)
	}
	by := inc.Int()
	if by == 0 {
		return value.Void, invalid("range with zero step", inc)
	}

	for i := lo.Int(); (by > 0 && i < hi.Int()) || (by < 0 && i > hi.Int()); {
		m.Push(side, value.Int(i))
		if err := m.ExecBlock(body); err != nil {
			return value.Void, err
		}
		// A step past the int64 limits is past hi as well.
		next := i + by
		if (by > 0 && next < i) || (by < 0 && next > i) {
			break
		}
		i = next
	}
	return value.Void, nil
}

// While: ( cond body -- )
func While(m *vm.Machine, side ast.Side, args []value.Value) (value.Value, error) {
	cond, body := args[0], args[1]
	if err := blocks("while", cond, body); err != nil {
		return value.Void, err
	}
	for {
		ok, err := holds(m, side, cond)
		if err != nil || !ok {
			return value.Void, err
		}
		if err := m.ExecBlock(body); err != nil {
			return value.Void, err
		}
	}
}

// IfThenElse: ( cond then else -- )
func IfThenElse(m *vm.Machine, side ast.Side, args []value.Value) (value.Value, error) {
	cond, then, els := args[0], args[1], args[2]
	if err := blocks("ite", cond, then, els); err != nil {
		return value.Void, err
	}
	ok, err := holds(m, side, cond)
	if err != nil {
		return value.Void, err
	}
	if ok {
		return value.Void, m.ExecBlock(then)
	}
	return value.Void, m.ExecBlock(els)
}
