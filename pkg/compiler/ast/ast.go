package ast

import (
	"strings"

	"github.com/agenthands/ndeque/pkg/compiler/lexer"
	"github.com/agenthands/ndeque/pkg/core/value"
)

// Side is the end of the stack an Exec is directed to.
type Side uint8

const (
	Left  Side = iota // front, written '!'
	Right             // back, written '~'
)

// Sigil returns the source marker for the side.
func (s Side) Sigil() string {
	if s == Left {
		return "!"
	}
	return "~"
}

func (s Side) Opposite() Side {
	if s == Left {
		return Right
	}
	return Left
}

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// Node represents any node in the Abstract Syntax Tree.
type Node interface {
	Pos() lexer.Token
}

// Op is either a *Literal or an *Instruction.
type Op interface {
	Node
	opNode()
}

// Literal pushes its value. Block literals hold a Code body.
type Literal struct {
	Token lexer.Token
	Value value.Value
}

func (l *Literal) Pos() lexer.Token { return l.Token }
func (l *Literal) opNode()          {}

// Instruction names a built-in operation resolved at evaluation time.
type Instruction struct {
	Token lexer.Token
	Name  string
}

func (i *Instruction) Pos() lexer.Token { return i.Token }
func (i *Instruction) opNode()          {}

// Exec is an Op directed to one end of the stack by its trailing sigil.
type Exec struct {
	Sigil lexer.Token
	Side  Side
	Op    Op
}

func (e Exec) Pos() lexer.Token { return e.Op.Pos() }

func (e Exec) String() string {
	var sb strings.Builder
	writeExec(&sb, e)
	return sb.String()
}

// Code is an ordered sequence of Execs: a program or a block body.
type Code []Exec

// String renders the code as compact, re-parseable source.
func (c Code) String() string {
	var sb strings.Builder
	for i, e := range c {
		if i > 0 {
			sb.WriteByte(' ')
		}
		writeExec(&sb, e)
	}
	return sb.String()
}

func writeExec(sb *strings.Builder, e Exec) {
	switch op := e.Op.(type) {
	case *Literal:
		sb.WriteString(op.Value.Format())
	case *Instruction:
		sb.WriteString(op.Name)
	}
	sb.WriteString(e.Side.Sigil())
}

// BlockCode extracts the body of a block value produced by the parser.
func BlockCode(v value.Value) (Code, bool) {
	if v.Type != value.TypeBlock {
		return nil, false
	}
	code, ok := v.Opaque.(Code)
	return code, ok
}
