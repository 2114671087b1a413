package lexer

import "fmt"

// Kind represents the type of token identified by the scanner.
type Kind uint8

const (
	KindEOF Kind = iota
	KindError
	KindLBrace   // {
	KindRBrace   // }
	KindLBracket // [
	KindRBracket // ]
	KindComma    // ,
	KindBang     // ! (left sigil)
	KindTilde    // ~ (right sigil)
	KindInstruction
	KindInt
	KindFloat
	KindChar
	KindString
)

var kindNames = [...]string{
	KindEOF:         "EOF",
	KindError:       "ERROR",
	KindLBrace:      "LBRACE",
	KindRBrace:      "RBRACE",
	KindLBracket:    "LBRACKET",
	KindRBracket:    "RBRACKET",
	KindComma:       "COMMA",
	KindBang:        "BANG",
	KindTilde:       "TILDE",
	KindInstruction: "INSTRUCTION",
	KindInt:         "INT",
	KindFloat:       "FLOAT",
	KindChar:        "CHAR",
	KindString:      "STRING",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// IsSigil reports whether the kind terminates an Exec.
func (k Kind) IsSigil() bool {
	return k == KindBang || k == KindTilde
}

// Token represents a lexical unit pointing back to the source.
// Start and End are byte offsets (End exclusive), Line is 1-based.
type Token struct {
	Kind   Kind
	Lexeme string
	Err    string // diagnostic for KindError
	Start  uint32
	End    uint32
	Line   uint32
}

func (t Token) String() string {
	if t.Kind == KindError {
		return fmt.Sprintf("%s %q @%d:%d-%d (%s)", t.Kind, t.Lexeme, t.Line, t.Start, t.End, t.Err)
	}
	return fmt.Sprintf("%s %q @%d:%d-%d", t.Kind, t.Lexeme, t.Line, t.Start, t.End)
}
