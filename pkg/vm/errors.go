package vm

import (
	"errors"
	"fmt"

	"github.com/agenthands/ndeque/pkg/compiler/ast"
	"github.com/agenthands/ndeque/pkg/compiler/lexer"
)

var (
	ErrStackUnderflow     = errors.New("tried to pop empty deque")
	ErrUnknownInstruction = errors.New("unknown instruction")
	ErrGasExhausted       = errors.New("vm: gas exhausted")
	ErrDepthExceeded      = errors.New("vm: maximum block depth exceeded")
	ErrInterrupted        = errors.New("vm: interrupted")
)

// Error is a runtime failure attributed to the Exec that raised it.
// Failures inside nested blocks keep the innermost Exec.
type Error struct {
	Op    string
	Side  ast.Side
	Token lexer.Token
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s%s: %v", e.Token.Line, e.Op, e.Side.Sigil(), e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(ex ast.Exec, err error) error {
	var verr *Error
	if errors.As(err, &verr) {
		return err
	}
	name := "literal"
	switch op := ex.Op.(type) {
	case *ast.Instruction:
		name = op.Name
	case *ast.Literal:
		name = op.Value.Format()
	}
	return &Error{Op: name, Side: ex.Side, Token: ex.Pos(), Err: err}
}
