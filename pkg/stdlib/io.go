package stdlib

import (
	"errors"
	"io"

	"github.com/agenthands/ndeque/pkg/compiler/ast"
	"github.com/agenthands/ndeque/pkg/core/value"
	"github.com/agenthands/ndeque/pkg/vm"
)

// ReadLine: ( -- text )
// Yields an empty text at end of input.
func ReadLine(m *vm.Machine, _ ast.Side, _ []value.Value) (value.Value, error) {
	line, err := m.ReadLine()
	if err != nil && !errors.Is(err, io.EOF) {
		return value.Void, err
	}
	return value.String(line), nil
}

// ReadAll: ( -- text )
func ReadAll(m *vm.Machine, _ ast.Side, _ []value.Value) (value.Value, error) {
	s, err := m.ReadAll()
	if err != nil {
		return value.Void, err
	}
	return value.String(s), nil
}

// WriteLine: ( a -- )
func WriteLine(m *vm.Machine, _ ast.Side, args []value.Value) (value.Value, error) {
	return value.Void, m.Write(args[0].Display() + "\n")
}

// Write: ( a -- )
func Write(m *vm.Machine, _ ast.Side, args []value.Value) (value.Value, error) {
	return value.Void, m.Write(args[0].Display())
}
