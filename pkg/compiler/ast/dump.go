package ast

import (
	"fmt"
	"strings"
)

// Dump renders code as an indented tree, one Exec per line, with block
// bodies nested under the literal that holds them.
func Dump(code Code) string {
	var sb strings.Builder
	dump(&sb, code, 0)
	return sb.String()
}

func dump(sb *strings.Builder, code Code, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, e := range code {
		switch op := e.Op.(type) {
		case *Instruction:
			fmt.Fprintf(sb, "%s%s Instruction %s\n", indent, e.Side, op.Name)
		case *Literal:
			body, ok := BlockCode(op.Value)
			if !ok {
				fmt.Fprintf(sb, "%s%s Literal %s %s\n", indent, e.Side, op.Value.Type, op.Value.Format())
				continue
			}
			fmt.Fprintf(sb, "%s%s Literal Block\n", indent, e.Side)
			dump(sb, body, depth+1)
		}
	}
}
