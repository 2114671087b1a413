package stdlib

import (
	"github.com/agenthands/ndeque/pkg/compiler/ast"
	"github.com/agenthands/ndeque/pkg/core/value"
	"github.com/agenthands/ndeque/pkg/vm"
)

// Clear: ( ... -- )
func Clear(m *vm.Machine, _ ast.Side, _ []value.Value) (value.Value, error) {
	m.Stack.Clear()
	return value.Void, nil
}

// Pop: ( a -- )
func Pop(_ *vm.Machine, _ ast.Side, _ []value.Value) (value.Value, error) {
	return value.Void, nil
}

// Dup: ( a -- a a )
func Dup(m *vm.Machine, side ast.Side, _ []value.Value) (value.Value, error) {
	v, ok := m.Stack.Peek(side, 0)
	if !ok {
		return value.Void, vm.ErrStackUnderflow
	}
	return v, nil
}

// Rot moves the value nearest side to the opposite end.
func Rot(m *vm.Machine, side ast.Side, _ []value.Value) (value.Value, error) {
	v, err := m.Pop(side)
	if err != nil {
		return value.Void, err
	}
	m.Push(side.Opposite(), v)
	return value.Void, nil
}

// Over copies the second value from side onto the opposite end.
func Over(m *vm.Machine, side ast.Side, _ []value.Value) (value.Value, error) {
	v, ok := m.Stack.Peek(side, 1)
	if !ok {
		return value.Void, vm.ErrStackUnderflow
	}
	m.Push(side.Opposite(), v)
	return value.Void, nil
}

// Swap: ( a b -- b a )
func Swap(m *vm.Machine, side ast.Side, args []value.Value) (value.Value, error) {
	m.Push(side, args[0])
	return args[1], nil
}

// Len: ( -- n )
func Len(m *vm.Machine, _ ast.Side, _ []value.Value) (value.Value, error) {
	return value.Int(int64(m.Stack.Len())), nil
}
