package vm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/agenthands/ndeque/pkg/compiler/ast"
	"github.com/agenthands/ndeque/pkg/core/value"
)

// DefaultMaxDepth bounds nested block execution.
const DefaultMaxDepth = 4096

// Variadic marks instructions that work the stack themselves instead of
// receiving popped operands.
const Variadic = -1

// Fn implements an instruction. For fixed arities args holds the operands
// in pop order (args[0] was nearest to side). A result of type Void is not
// pushed. Variadic handlers receive nil args.
type Fn func(m *Machine, side ast.Side, args []value.Value) (value.Value, error)

// Instruction is an entry in the instruction table.
type Instruction struct {
	Arity int
	Fn    Fn
}

// meter is the Exec budget shared by a machine and its isolated children.
type meter struct {
	limit int
	used  int
}

// Machine evaluates Code against a single Stack.
type Machine struct {
	Stack        *Stack
	Instructions map[string]Instruction

	In     *bufio.Reader
	Out    io.Writer
	Logger *slog.Logger

	Gas      int // Exec budget per Run, 0 = unlimited
	MaxDepth int // 0 = DefaultMaxDepth

	ctx       context.Context
	meter     *meter
	depth     int
	mutations int
}

func NewMachine(instructions map[string]Instruction) *Machine {
	return &Machine{
		Stack:        NewStack(),
		Instructions: instructions,
		In:           bufio.NewReader(os.Stdin),
		Out:          os.Stdout,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		MaxDepth:     DefaultMaxDepth,
	}
}

// Reset clears the stack and the per-run counters so the machine can be reused.
func (m *Machine) Reset() {
	m.stack().Clear()
	m.meter = nil
	m.depth = 0
	m.mutations = 0
}

// Isolated returns a child machine on a fresh stack seeded with vals front
// to back. It shares instructions, I/O, budget, depth and context with m.
func (m *Machine) Isolated(vals ...value.Value) *Machine {
	return &Machine{
		Stack:        NewStack(vals...),
		Instructions: m.Instructions,
		In:           m.In,
		Out:          m.Out,
		Logger:       m.Logger,
		MaxDepth:     m.MaxDepth,
		ctx:          m.ctx,
		meter:        m.budget(),
		depth:        m.depth,
	}
}

func (m *Machine) stack() *Stack {
	if m.Stack == nil {
		m.Stack = NewStack()
	}
	return m.Stack
}

func (m *Machine) budget() *meter {
	if m.meter == nil {
		m.meter = &meter{limit: m.Gas}
	}
	return m.meter
}

func (m *Machine) logger() *slog.Logger {
	if m.Logger == nil {
		m.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return m.Logger
}

// Push adds v at side.
func (m *Machine) Push(side ast.Side, v value.Value) {
	m.mutations++
	m.stack().Push(side, v)
}

// Pop removes the value nearest side.
func (m *Machine) Pop(side ast.Side) (value.Value, error) {
	v, err := m.stack().Pop(side)
	if err == nil {
		m.mutations++
	}
	return v, err
}

// Run executes code to completion.
func (m *Machine) Run(code ast.Code) error {
	return m.RunContext(context.Background(), code)
}

// RunContext executes code until it finishes, fails, runs out of gas or ctx
// is done. The stack is left in whatever state it reached.
func (m *Machine) RunContext(ctx context.Context, code ast.Code) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if re, ok := r.(runtime.Error); ok {
				err = fmt.Errorf("vm: internal error: %w", re)
				return
			}
			panic(r)
		}
	}()

	m.ctx = ctx
	m.meter = &meter{limit: m.Gas}
	m.depth = 0
	return m.Exec(code)
}

// Exec runs code on the current stack. Control-flow instructions use it to
// re-enter the machine with a block body. Entering code costs one step of
// gas, so even empty loop bodies stay bounded.
func (m *Machine) Exec(code ast.Code) error {
	if err := m.tick(); err != nil {
		return err
	}

	limit := m.MaxDepth
	if limit <= 0 {
		limit = DefaultMaxDepth
	}
	if m.depth >= limit {
		return fmt.Errorf("%w (%d)", ErrDepthExceeded, limit)
	}

	m.depth++
	defer func() { m.depth-- }()

	for _, ex := range code {
		if err := m.step(ex); err != nil {
			return err
		}
	}
	return nil
}

func (m *Machine) step(ex ast.Exec) error {
	if err := m.tick(); err != nil {
		return newError(ex, err)
	}

	switch op := ex.Op.(type) {
	case *ast.Literal:
		m.Push(ex.Side, op.Value)
		return nil
	case *ast.Instruction:
		if err := m.dispatch(ex.Side, op.Name); err != nil {
			return newError(ex, err)
		}
		return nil
	}
	return newError(ex, fmt.Errorf("vm: unsupported op %T", ex.Op))
}

func (m *Machine) tick() error {
	if m.ctx != nil {
		if err := m.ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrInterrupted, err)
		}
	}
	b := m.budget()
	b.used++
	if b.limit > 0 && b.used > b.limit {
		return fmt.Errorf("%w after %d steps", ErrGasExhausted, b.limit)
	}
	return nil
}

func (m *Machine) dispatch(side ast.Side, name string) error {
	instr, ok := m.Instructions[name]
	if !ok {
		return m.unknown(name)
	}

	log := m.logger()
	log.Debug("dispatch", "op", name, "side", side, "depth", m.depth, "stack", m.stack().Len())

	if instr.Arity == Variadic {
		_, err := instr.Fn(m, side, nil)
		return err
	}

	args := make([]value.Value, 0, instr.Arity)
	for i := 0; i < instr.Arity; i++ {
		v, err := m.Pop(side)
		if err != nil {
			m.restore(side, args)
			return err
		}
		args = append(args, v)
	}

	mark := m.mutations
	res, err := instr.Fn(m, side, args)
	if err != nil {
		var verr *Error
		if m.mutations == mark && !errors.As(err, &verr) {
			m.restore(side, args)
		}
		return err
	}
	if res.Type != value.TypeVoid {
		m.Push(side, res)
	}
	return nil
}

// restore pushes popped operands back so the stack looks untouched.
func (m *Machine) restore(side ast.Side, args []value.Value) {
	for i := len(args) - 1; i >= 0; i-- {
		m.Push(side, args[i])
	}
}

// ExecBlock runs the body of a block value on the current stack.
func (m *Machine) ExecBlock(block value.Value) error {
	code, ok := ast.BlockCode(block)
	if !ok {
		return fmt.Errorf("expected Block, got %v", block.Type)
	}
	log := m.logger()
	log.Debug("enter block", "depth", m.depth+1)
	err := m.Exec(code)
	log.Debug("leave block", "depth", m.depth+1, "err", err)
	return err
}

// ReadLine reads one line from In without its terminator. At end of input
// it returns what was read and io.EOF only if nothing was.
func (m *Machine) ReadLine() (string, error) {
	if m.In == nil {
		return "", io.EOF
	}
	line, err := m.In.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	if n := len(line); n > 0 && line[n-1] == '\n' {
		line = line[:n-1]
		if n := len(line); n > 0 && line[n-1] == '\r' {
			line = line[:n-1]
		}
	}
	return line, err
}

// ReadAll reads In to end of input.
func (m *Machine) ReadAll() (string, error) {
	if m.In == nil {
		return "", nil
	}
	b, err := io.ReadAll(m.In)
	return string(b), err
}

// Write renders s to Out.
func (m *Machine) Write(s string) error {
	if m.Out == nil {
		return nil
	}
	_, err := io.WriteString(m.Out, s)
	return err
}
