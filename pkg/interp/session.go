package interp

import (
	"context"

	"github.com/agenthands/ndeque/pkg/compiler/ast"
	"github.com/agenthands/ndeque/pkg/vm"
)

// Session carries one stack across several inputs, as a REPL does.
// An input that fails leaves the stack as it was before that input.
type Session struct {
	stack *vm.Stack
	opts  []Option
}

func NewSession(opts ...Option) *Session {
	return &Session{stack: vm.NewStack(), opts: opts}
}

// Stack returns the live stack.
func (s *Session) Stack() *vm.Stack { return s.stack }

// Reset empties the stack.
func (s *Session) Reset() { s.stack.Clear() }

// Eval tokenizes, parses and runs src on the session stack.
func (s *Session) Eval(ctx context.Context, src string) error {
	code, err := Parse(Tokenize(src))
	if err != nil {
		return err
	}
	return s.Exec(ctx, code)
}

// Exec runs already parsed code on the session stack.
func (s *Session) Exec(ctx context.Context, code ast.Code) error {
	snapshot := s.stack.Clone()
	opts := append(s.opts[:len(s.opts):len(s.opts)], WithContext(ctx))
	stack, err := Run(s.stack, code, opts...)
	if err != nil {
		s.stack = snapshot
		return err
	}
	s.stack = stack
	return nil
}
