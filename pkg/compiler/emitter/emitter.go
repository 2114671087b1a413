package emitter

import (
	"strings"

	"github.com/agenthands/ndeque/pkg/compiler/ast"
	"github.com/agenthands/ndeque/pkg/core/value"
)

// Emitter renders parsed Code back to canonical source. Top-level Execs go
// one per line; blocks whose compact form fits in Width stay inline, the
// rest are broken out with one Exec per line.
type Emitter struct {
	Indent string
	Width  int

	sb    strings.Builder
	depth int
}

func NewEmitter() *Emitter {
	return &Emitter{Indent: "  ", Width: 48}
}

// Emit is shorthand for NewEmitter().Emit(code).
func Emit(code ast.Code) string {
	return NewEmitter().Emit(code)
}

func (e *Emitter) Emit(code ast.Code) string {
	e.sb.Reset()
	e.depth = 0
	for _, ex := range code {
		e.emitExec(ex)
		e.sb.WriteByte('\n')
	}
	return e.sb.String()
}

func (e *Emitter) emitExec(ex ast.Exec) {
	switch op := ex.Op.(type) {
	case *ast.Instruction:
		e.sb.WriteString(op.Name)
	case *ast.Literal:
		e.emitValue(op.Value)
	}
	e.sb.WriteString(ex.Side.Sigil())
}

func (e *Emitter) emitValue(v value.Value) {
	body, ok := ast.BlockCode(v)
	if !ok {
		e.sb.WriteString(v.Format())
		return
	}

	compact := body.String()
	if len(compact) <= e.Width && !strings.Contains(compact, "\n") {
		e.sb.WriteByte('{')
		e.sb.WriteString(compact)
		e.sb.WriteByte('}')
		return
	}

	e.sb.WriteString("{\n")
	e.depth++
	for _, ex := range body {
		e.writeIndent()
		e.emitExec(ex)
		e.sb.WriteByte('\n')
	}
	e.depth--
	e.writeIndent()
	e.sb.WriteByte('}')
}

func (e *Emitter) writeIndent() {
	for i := 0; i < e.depth; i++ {
		e.sb.WriteString(e.Indent)
	}
}
