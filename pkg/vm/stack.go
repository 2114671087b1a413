package vm

import (
	"github.com/emirpasic/gods/lists/doublylinkedlist"

	"github.com/agenthands/ndeque/pkg/compiler/ast"
	"github.com/agenthands/ndeque/pkg/core/value"
)

// Stack is the double-ended value sequence a program runs against.
// Left is index 0 (the front), Right is the last index (the back).
type Stack struct {
	list *doublylinkedlist.List
}

// NewStack returns a stack holding vals front to back.
func NewStack(vals ...value.Value) *Stack {
	s := &Stack{list: doublylinkedlist.New()}
	for _, v := range vals {
		s.list.Append(v)
	}
	return s
}

func (s *Stack) Push(side ast.Side, v value.Value) {
	if side == ast.Left {
		s.list.Prepend(v)
		return
	}
	s.list.Append(v)
}

func (s *Stack) Pop(side ast.Side) (value.Value, error) {
	n := s.list.Size()
	if n == 0 {
		return value.Void, ErrStackUnderflow
	}
	i := s.index(side, 0)
	v, _ := s.list.Get(i)
	s.list.Remove(i)
	return v.(value.Value), nil
}

// Peek returns the value depth positions in from side without removing it.
func (s *Stack) Peek(side ast.Side, depth int) (value.Value, bool) {
	if depth < 0 || depth >= s.list.Size() {
		return value.Void, false
	}
	v, _ := s.list.Get(s.index(side, depth))
	return v.(value.Value), true
}

func (s *Stack) index(side ast.Side, depth int) int {
	if side == ast.Left {
		return depth
	}
	return s.list.Size() - 1 - depth
}

func (s *Stack) Len() int { return s.list.Size() }

// Values returns a front-to-back copy of the contents.
func (s *Stack) Values() []value.Value {
	raw := s.list.Values()
	out := make([]value.Value, len(raw))
	for i, v := range raw {
		out[i] = v.(value.Value)
	}
	return out
}

func (s *Stack) Clear() { s.list.Clear() }

// Clone copies the sequence. Values are immutable, so sharing them is safe.
func (s *Stack) Clone() *Stack {
	return NewStack(s.Values()...)
}

// String renders the stack front to back in list notation.
func (s *Stack) String() string {
	return value.List(s.Values()...).Format()
}
