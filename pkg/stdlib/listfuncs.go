package stdlib

import (
	"errors"
	"fmt"

	"github.com/agenthands/ndeque/pkg/compiler/ast"
	"github.com/agenthands/ndeque/pkg/core/value"
	"github.com/agenthands/ndeque/pkg/vm"
)

// apply runs block on an isolated stack seeded front to back with seed and
// reads the result from side. Nothing the block does reaches m's stack.
func apply(m *vm.Machine, side ast.Side, block value.Value, seed ...value.Value) (value.Value, error) {
	child := m.Isolated(seed...)
	if err := child.ExecBlock(block); err != nil {
		return value.Void, err
	}
	res, err := child.Pop(side)
	if errors.Is(err, vm.ErrStackUnderflow) {
		return value.Void, ErrNoResult
	}
	return res, err
}

// Map: ( list block -- list' )
func Map(m *vm.Machine, side ast.Side, args []value.Value) (value.Value, error) {
	l, block := args[0], args[1]
	if l.Type != value.TypeList || block.Type != value.TypeBlock {
		return value.Void, invalid("map", l, block)
	}
	elems := l.Elems()
	out := make([]value.Value, len(elems))
	for i, el := range elems {
		res, err := apply(m, side, block, el)
		if err != nil {
			return value.Void, fmt.Errorf("map element %d: %w", i, err)
		}
		out[i] = res
	}
	return value.List(out...), nil
}

// Filter: ( list block -- list' )
func Filter(m *vm.Machine, side ast.Side, args []value.Value) (value.Value, error) {
	l, block := args[0], args[1]
	if l.Type != value.TypeList || block.Type != value.TypeBlock {
		return value.Void, invalid("filter", l, block)
	}
	var out []value.Value
	for i, el := range l.Elems() {
		keep, err := apply(m, side, block, el)
		if err != nil {
			return value.Void, fmt.Errorf("filter element %d: %w", i, err)
		}
		if keep.Truthy() {
			out = append(out, el)
		}
	}
	return value.List(out...), nil
}

// Reduce: ( list acc block -- acc' )
// Each step runs on a stack seeded with [element, acc].
func Reduce(m *vm.Machine, side ast.Side, args []value.Value) (value.Value, error) {
	l, acc, block := args[0], args[1], args[2]
	if l.Type != value.TypeList || block.Type != value.TypeBlock {
		return value.Void, invalid("reduce", l, acc, block)
	}
	for i, el := range l.Elems() {
		res, err := apply(m, side, block, el, acc)
		if err != nil {
			return value.Void, fmt.Errorf("reduce element %d: %w", i, err)
		}
		acc = res
	}
	return acc, nil
}
