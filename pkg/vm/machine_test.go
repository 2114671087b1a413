package vm_test

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/agenthands/ndeque/pkg/compiler/ast"
	"github.com/agenthands/ndeque/pkg/compiler/parser"
	"github.com/agenthands/ndeque/pkg/core/value"
	"github.com/agenthands/ndeque/pkg/vm"
	"github.com/google/go-cmp/cmp"
)

var errBoom = errors.New("boom")

func testInstructions() map[string]vm.Instruction {
	return map[string]vm.Instruction{
		"sub": {Arity: 2, Fn: func(m *vm.Machine, side ast.Side, args []value.Value) (value.Value, error) {
			return value.Int(args[0].Int() - args[1].Int()), nil
		}},
		"fail": {Arity: 2, Fn: func(m *vm.Machine, side ast.Side, args []value.Value) (value.Value, error) {
			return value.Void, errBoom
		}},
		"print": {Arity: 1, Fn: func(m *vm.Machine, side ast.Side, args []value.Value) (value.Value, error) {
			return value.Void, m.Write(args[0].Display())
		}},
		"exec": {Arity: 1, Fn: func(m *vm.Machine, side ast.Side, args []value.Value) (value.Value, error) {
			return value.Void, m.ExecBlock(args[0])
		}},
		"loop": {Arity: 1, Fn: func(m *vm.Machine, side ast.Side, args []value.Value) (value.Value, error) {
			for {
				if err := m.ExecBlock(args[0]); err != nil {
					return value.Void, err
				}
			}
		}},
		"dup": {Arity: vm.Variadic, Fn: func(m *vm.Machine, side ast.Side, _ []value.Value) (value.Value, error) {
			v, ok := m.Stack.Peek(side, 0)
			if !ok {
				return value.Void, vm.ErrStackUnderflow
			}
			m.Push(side, v)
			return value.Void, nil
		}},
		"boom": {Arity: 0, Fn: func(m *vm.Machine, side ast.Side, _ []value.Value) (value.Value, error) {
			var s []int64
			idx := 3
			return value.Int(s[idx]), nil
		}},
	}
}

func newMachine() (*vm.Machine, *bytes.Buffer) {
	var out bytes.Buffer
	m := vm.NewMachine(testInstructions())
	m.Out = &out
	m.In = bufio.NewReader(strings.NewReader(""))
	return m, &out
}

func runSource(t *testing.T, m *vm.Machine, src string) error {
	t.Helper()
	code, err := parser.ParseSource(src)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	return m.Run(code)
}

func ints(vals ...int64) []value.Value {
	out := make([]value.Value, len(vals))
	for i, v := range vals {
		out[i] = value.Int(v)
	}
	return out
}

func TestStackSidedness(t *testing.T) {
	s := vm.NewStack()
	s.Push(ast.Left, value.Int(1))
	s.Push(ast.Left, value.Int(2))
	s.Push(ast.Right, value.Int(3))

	if diff := cmp.Diff(ints(2, 1, 3), s.Values()); diff != "" {
		t.Errorf("stack mismatch (-want +got):\n%s", diff)
	}
	if got := s.String(); got != "[2, 1, 3]" {
		t.Errorf("expected [2, 1, 3], got %s", got)
	}

	v, err := s.Pop(ast.Right)
	if err != nil || v.Int() != 3 {
		t.Errorf("expected 3 from the right, got %v (%v)", v, err)
	}
	v, err = s.Pop(ast.Left)
	if err != nil || v.Int() != 2 {
		t.Errorf("expected 2 from the left, got %v (%v)", v, err)
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 element left, got %d", s.Len())
	}
}

func TestStackPopEmpty(t *testing.T) {
	s := vm.NewStack()
	if _, err := s.Pop(ast.Left); !errors.Is(err, vm.ErrStackUnderflow) {
		t.Errorf("expected ErrStackUnderflow, got %v", err)
	}
}

func TestStackPeekAndClone(t *testing.T) {
	s := vm.NewStack(ints(1, 2, 3)...)

	if v, ok := s.Peek(ast.Left, 1); !ok || v.Int() != 2 {
		t.Errorf("expected 2 one in from the left, got %v", v)
	}
	if v, ok := s.Peek(ast.Right, 0); !ok || v.Int() != 3 {
		t.Errorf("expected 3 at the right, got %v", v)
	}
	if _, ok := s.Peek(ast.Right, 3); ok {
		t.Errorf("expected peek past the end to fail")
	}

	c := s.Clone()
	c.Clear()
	if s.Len() != 3 || c.Len() != 0 {
		t.Errorf("clone is not independent: original %d, clone %d", s.Len(), c.Len())
	}
}

func TestMachineLiteralPushes(t *testing.T) {
	m, _ := newMachine()
	if err := runSource(t, m, "1! 2! 3~"); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(ints(2, 1, 3), m.Stack.Values()); diff != "" {
		t.Errorf("stack mismatch (-want +got):\n%s", diff)
	}
}

func TestMachineBinaryOperandOrder(t *testing.T) {
	tests := []struct {
		src  string
		want []value.Value
	}{
		{"1~ 2~ sub~", ints(1)},
		{"1! 2! sub!", ints(1)},
		{"1~ 2~ sub!", ints(-1)},
		{"5~ 1~ 2~ sub!", ints(4, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			m, _ := newMachine()
			if err := runSource(t, m, tt.src); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, m.Stack.Values()); diff != "" {
				t.Errorf("stack mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMachineRestoresOperandsOnFailure(t *testing.T) {
	m, _ := newMachine()
	err := runSource(t, m, "1~ 2~ fail!")
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected errBoom, got %v", err)
	}

	var verr *vm.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *vm.Error, got %T", err)
	}
	if verr.Op != "fail" || verr.Side != ast.Left || verr.Token.Line != 1 {
		t.Errorf("unexpected attribution: %+v", verr)
	}
	if got := err.Error(); got != "line 1: fail!: boom" {
		t.Errorf("unexpected message %q", got)
	}
	if diff := cmp.Diff(ints(1, 2), m.Stack.Values()); diff != "" {
		t.Errorf("stack was not restored (-want +got):\n%s", diff)
	}
}

func TestMachineUnderflowRestores(t *testing.T) {
	m, _ := newMachine()
	err := runSource(t, m, "7~ sub~")
	if !errors.Is(err, vm.ErrStackUnderflow) {
		t.Fatalf("expected ErrStackUnderflow, got %v", err)
	}
	if !strings.Contains(err.Error(), "tried to pop empty deque") {
		t.Errorf("unexpected message %q", err)
	}
	if diff := cmp.Diff(ints(7), m.Stack.Values()); diff != "" {
		t.Errorf("stack was not restored (-want +got):\n%s", diff)
	}
}

func TestMachineStopsAtFirstError(t *testing.T) {
	m, out := newMachine()
	err := runSource(t, m, "1~ sub~ 2~ print~")
	if err == nil {
		t.Fatal("expected error")
	}
	if out.Len() != 0 {
		t.Errorf("expected nothing printed after the failure, got %q", out.String())
	}
}

func TestMachineUnknownInstruction(t *testing.T) {
	m, _ := newMachine()
	err := runSource(t, m, "dupp~")
	if !errors.Is(err, vm.ErrUnknownInstruction) {
		t.Fatalf("expected ErrUnknownInstruction, got %v", err)
	}
	if !strings.Contains(err.Error(), `unknown instruction "dupp" (did you mean "dup"?)`) {
		t.Errorf("unexpected message %q", err)
	}

	if got := m.Suggest("zzzzzzzz"); got != "" {
		t.Errorf("expected no suggestion, got %q", got)
	}
	if got := m.Suggest("prin"); got != "print" {
		t.Errorf("expected print, got %q", got)
	}
}

func TestMachineSuggestFollowsInstructionTable(t *testing.T) {
	m := vm.NewMachine(testInstructions())
	if got := m.Suggest("prin"); got != "print" {
		t.Fatalf("expected print, got %q", got)
	}

	// Same size, one entry renamed.
	table := testInstructions()
	table["write"] = table["print"]
	delete(table, "print")
	m.Instructions = table

	if got := m.Suggest("prin"); got == "print" {
		t.Errorf("suggestion came from the replaced table")
	}
	if got := m.Suggest("writ"); got != "write" {
		t.Errorf("expected write, got %q", got)
	}

	child := m.Isolated()
	child.Instructions = testInstructions()
	if got := child.Suggest("prin"); got != "print" {
		t.Errorf("child: expected print, got %q", got)
	}
	if got := m.Suggest("writ"); got != "write" {
		t.Errorf("parent changed by child lookup: got %q", got)
	}
}

func TestMachineNestedErrorKeepsInnermostExec(t *testing.T) {
	m, _ := newMachine()
	err := runSource(t, m, "{1~\n fail~}~ exec~")
	var verr *vm.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *vm.Error, got %v", err)
	}
	if verr.Op != "fail" || verr.Token.Line != 2 {
		t.Errorf("expected fail on line 2, got %s on line %d", verr.Op, verr.Token.Line)
	}
}

func TestMachineGasBoundsLoop(t *testing.T) {
	m, _ := newMachine()
	m.Gas = 1000
	err := runSource(t, m, "{}~ loop~")
	if !errors.Is(err, vm.ErrGasExhausted) {
		t.Fatalf("expected ErrGasExhausted, got %v", err)
	}
}

func TestMachineContextBoundsLoop(t *testing.T) {
	m, _ := newMachine()
	code, err := parser.ParseSource("{1~ 1~ sub~ print~}~ loop~")
	if err != nil {
		t.Fatal(err)
	}
	m.Out = io.Discard

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = m.RunContext(ctx, code)
	if !errors.Is(err, vm.ErrInterrupted) {
		t.Fatalf("expected ErrInterrupted, got %v", err)
	}
}

func TestMachineDepthExceeded(t *testing.T) {
	m, _ := newMachine()
	m.MaxDepth = 50
	err := runSource(t, m, "{dup~ exec~}~ dup~ exec~")
	if !errors.Is(err, vm.ErrDepthExceeded) {
		t.Fatalf("expected ErrDepthExceeded, got %v", err)
	}
}

func TestMachineIsolated(t *testing.T) {
	m, _ := newMachine()
	m.Stack.Push(ast.Right, value.Int(9))

	child := m.Isolated(value.Int(1), value.Int(2))
	code, err := parser.ParseSource("sub~")
	if err != nil {
		t.Fatal(err)
	}
	if err := child.Exec(code); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(ints(1), child.Stack.Values()); diff != "" {
		t.Errorf("child stack mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(ints(9), m.Stack.Values()); diff != "" {
		t.Errorf("parent stack changed (-want +got):\n%s", diff)
	}
}

func TestMachineRecoversRuntimePanics(t *testing.T) {
	m, _ := newMachine()
	err := runSource(t, m, "boom~")
	if err == nil || !strings.Contains(err.Error(), "internal error") {
		t.Errorf("expected internal error, got %v", err)
	}
}

func TestMachineReadLine(t *testing.T) {
	m, _ := newMachine()
	m.In = bufio.NewReader(strings.NewReader("first\r\nsecond"))

	for _, want := range []string{"first", "second"} {
		got, err := m.ReadLine()
		if err != nil || got != want {
			t.Errorf("ReadLine() = %q, %v; want %q", got, err, want)
		}
	}
	if _, err := m.ReadLine(); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestMachineReset(t *testing.T) {
	m, _ := newMachine()
	if err := runSource(t, m, "1~ 2~"); err != nil {
		t.Fatal(err)
	}
	m.Reset()
	if m.Stack.Len() != 0 {
		t.Errorf("Reset failed to clear the stack: %v", m.Stack)
	}
}
