package stdlib

import (
	"fmt"

	"github.com/agenthands/ndeque/pkg/compiler/ast"
	"github.com/agenthands/ndeque/pkg/core/value"
	"github.com/agenthands/ndeque/pkg/vm"
)

// concat copies so the source lists stay immutable.
func concat(parts ...[]value.Value) value.Value {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]value.Value, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return value.List(out...)
}

// ListConcat joins two lists, appends or prepends a scalar to a list, or
// pairs two scalars.
func ListConcat(_ *vm.Machine, _ ast.Side, args []value.Value) (value.Value, error) {
	a, b := args[0], args[1]
	switch {
	case a.Type == value.TypeList && b.Type == value.TypeList:
		return concat(a.Elems(), b.Elems()), nil
	case a.Type == value.TypeList:
		return concat(a.Elems(), []value.Value{b}), nil
	case b.Type == value.TypeList:
		return concat([]value.Value{a}, b.Elems()), nil
	}
	return value.List(a, b), nil
}

// ListJoin flattens one level of nesting.
func ListJoin(_ *vm.Machine, _ ast.Side, args []value.Value) (value.Value, error) {
	l := args[0]
	if l.Type != value.TypeList {
		return value.Void, invalid("list join", l)
	}
	var out []value.Value
	for _, el := range l.Elems() {
		if el.Type == value.TypeList {
			out = append(out, el.Elems()...)
			continue
		}
		out = append(out, el)
	}
	return value.List(out...), nil
}

// ListSlice: ( list start end -- list[start:end] )
func ListSlice(_ *vm.Machine, _ ast.Side, args []value.Value) (value.Value, error) {
	l, start, end := args[0], args[1], args[2]
	if l.Type != value.TypeList || start.Type != value.TypeInt || end.Type != value.TypeInt {
		return value.Void, invalid("list slice", l, start, end)
	}
	elems := l.Elems()
	lo, hi := start.Int(), end.Int()
	if lo < 0 || hi < lo || hi > int64(len(elems)) {
		return value.Void, fmt.Errorf("%w: slice [%d:%d] of list with %d elements", ErrIndexOutOfBounds, lo, hi, len(elems))
	}
	return concat(elems[lo:hi]), nil
}

// ListIndex: ( list i -- list[i] )
func ListIndex(_ *vm.Machine, _ ast.Side, args []value.Value) (value.Value, error) {
	l, idx := args[0], args[1]
	if l.Type != value.TypeList || idx.Type != value.TypeInt {
		return value.Void, invalid("list index", l, idx)
	}
	elems := l.Elems()
	i := idx.Int()
	if i < 0 || i >= int64(len(elems)) {
		return value.Void, fmt.Errorf("%w: index %d of list with %d elements", ErrIndexOutOfBounds, i, len(elems))
	}
	return elems[i], nil
}

// ListLen: ( list -- n )
func ListLen(_ *vm.Machine, _ ast.Side, args []value.Value) (value.Value, error) {
	if args[0].Type != value.TypeList {
		return value.Void, invalid("list length", args[0])
	}
	return value.Int(int64(len(args[0].Elems()))), nil
}

// ListBundle pops a count n, then n values, and pushes them as a list in
// pop order. The stack is untouched when the count is unusable.
func ListBundle(m *vm.Machine, side ast.Side, _ []value.Value) (value.Value, error) {
	count, ok := m.Stack.Peek(side, 0)
	if !ok {
		return value.Void, vm.ErrStackUnderflow
	}
	if count.Type != value.TypeInt || count.Int() < 0 {
		return value.Void, invalid("list bundle", count)
	}
	n := count.Int()
	if n > int64(m.Stack.Len()-1) {
		return value.Void, fmt.Errorf("%w: cannot bundle %d values from %d", vm.ErrStackUnderflow, n, m.Stack.Len()-1)
	}

	if _, err := m.Pop(side); err != nil {
		return value.Void, err
	}
	elems := make([]value.Value, n)
	for i := range elems {
		v, err := m.Pop(side)
		if err != nil {
			return value.Void, err
		}
		elems[i] = v
	}
	m.Push(side, value.List(elems...))
	return value.Void, nil
}

// ListDump pushes every element first to last, so the last element ends
// up nearest side.
func ListDump(m *vm.Machine, side ast.Side, args []value.Value) (value.Value, error) {
	if args[0].Type != value.TypeList {
		return value.Void, invalid("list dump", args[0])
	}
	for _, el := range args[0].Elems() {
		m.Push(side, el)
	}
	return value.Void, nil
}
