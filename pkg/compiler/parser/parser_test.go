package parser_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/agenthands/ndeque/pkg/compiler/ast"
	"github.com/agenthands/ndeque/pkg/compiler/lexer"
	"github.com/agenthands/ndeque/pkg/compiler/parser"
	"github.com/agenthands/ndeque/pkg/core/value"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var ignorePositions = []cmp.Option{
	cmpopts.IgnoreTypes(lexer.Token{}),
	cmpopts.EquateEmpty(),
}

func lit(v value.Value, side ast.Side) ast.Exec {
	return ast.Exec{Side: side, Op: &ast.Literal{Value: v}}
}

func ins(name string, side ast.Side) ast.Exec {
	return ast.Exec{Side: side, Op: &ast.Instruction{Name: name}}
}

func TestParseLiteral(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want value.Value
	}{
		{"Int", "123", value.Int(123)},
		{"NegativeInt", "-123", value.Int(-123)},
		{"Float", "-123.25", value.Float(-123.25)},
		{"Char", "'a'", value.Char('a')},
		{"Newline", `'\n'`, value.Char('\n')},
		{"Return", `'\r'`, value.Char('\r')},
		{"Tab", `'\t'`, value.Char('\t')},
		{"Backslash", `'\\'`, value.Char('\\')},
		{"SingleQuote", `'\''`, value.Char('\'')},
		{"DoubleQuote", `'\"'`, value.Char('"')},
		{"Nul", `'\0'`, value.Char(0)},
		{"String", `"ab"`, value.String("ab")},
		{"EscapedString", `"\'\'"`, value.String("''")},
		{"EmptyString", `""`, value.List()},
		{"True", "true", value.Bool(true)},
		{"False", "false", value.Bool(false)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := lexer.NewScanner(tt.src).Next()
			got, err := parser.ParseLiteral(tok)
			if err != nil {
				t.Fatalf("ParseLiteral(%q) failed: %v", tt.src, err)
			}
			if diff := cmp.Diff(tt.want, got, ignorePositions...); diff != "" {
				t.Errorf("value mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseLiteralErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"BadEscape", `'\q'`, "Unrecognized character escape sequence"},
		{"BadStringEscape", `"ab\c"`, "Unrecognized character escape sequence"},
		{"Instruction", "ow", "Unexpected token type"},
		{"Overflow", "99999999999999999999", "Invalid integer literal"},
		{"Lexical", "1.2.3", "lexical error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := lexer.NewScanner(tt.src).Next()
			_, err := parser.ParseLiteral(tok)
			if err == nil {
				t.Fatalf("expected error for %q", tt.src)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("expected error containing %q, got %q", tt.msg, err)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want ast.Code
	}{
		{
			name: "Empty",
			src:  "  # nothing here\n",
			want: ast.Code{},
		},
		{
			name: "HelloWorld",
			src:  `"Hello World!"~ ow~`,
			want: ast.Code{
				lit(value.String("Hello World!"), ast.Right),
				ins("ow", ast.Right),
			},
		},
		{
			name: "BooleansAreLiterals",
			src:  "true! false~ not!",
			want: ast.Code{
				lit(value.Bool(true), ast.Left),
				lit(value.Bool(false), ast.Right),
				ins("not", ast.Left),
			},
		},
		{
			name: "Block",
			src:  "{1~ 2! 3~}!",
			want: ast.Code{
				lit(value.Block(ast.Code{
					lit(value.Int(1), ast.Right),
					lit(value.Int(2), ast.Left),
					lit(value.Int(3), ast.Right),
				}), ast.Left),
			},
		},
		{
			name: "NestedBlock",
			src:  "{1~ {dup~ 2! rot~ <!}~ 3~}!",
			want: ast.Code{
				lit(value.Block(ast.Code{
					lit(value.Int(1), ast.Right),
					lit(value.Block(ast.Code{
						ins("dup", ast.Right),
						lit(value.Int(2), ast.Left),
						ins("rot", ast.Right),
						ins("<", ast.Left),
					}), ast.Right),
					lit(value.Int(3), ast.Right),
				}), ast.Left),
			},
		},
		{
			name: "EmptyBlock",
			src:  "{}~",
			want: ast.Code{lit(value.Block(ast.Code{}), ast.Right)},
		},
		{
			name: "NestedList",
			src:  "[1.2, 'a', [true, 3], -4]~",
			want: ast.Code{
				lit(value.List(
					value.Float(1.2),
					value.Char('a'),
					value.List(value.Bool(true), value.Int(3)),
					value.Int(-4),
				), ast.Right),
			},
		},
		{
			name: "CommasAreOptional",
			src:  "[1 2, 3]!",
			want: ast.Code{
				lit(value.List(value.Int(1), value.Int(2), value.Int(3)), ast.Left),
			},
		},
		{
			name: "StringsWithBrackets",
			src:  `[["[", "]"], "{"]~`,
			want: ast.Code{
				lit(value.List(
					value.List(value.String("["), value.String("]")),
					value.String("{"),
				), ast.Right),
			},
		},
		{
			name: "BlockInList",
			src:  "[{1~}]~",
			want: ast.Code{
				lit(value.List(value.Block(ast.Code{lit(value.Int(1), ast.Right)})), ast.Right),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parser.ParseSource(tt.src)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.src, err)
			}
			if diff := cmp.Diff(tt.want, got, ignorePositions...); diff != "" {
				t.Errorf("code mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"UnclosedList", "[1, [2, 3", "Unclosed list (2 level(s) still open)"},
		{"UnclosedBlock", "{1~ 2!", "Unclosed block"},
		{"MissingSigil", "[1, 2, 3]not", "expected '!' or '~'"},
		{"MissingSigilAtEnd", "dup", "expected '!' or '~' after instruction \"dup\""},
		{"StraySigil", "~", "Unexpected token type"},
		{"StrayBrace", "1~ }", "Unexpected token type"},
		{"StrayBracket", "]~", "Unexpected token type"},
		{"InstructionInList", "[1, dup]~", "Unexpected token type"},
		{"LexicalInBlock", "{'ab'~}~", "lexical error"},
		{"BadEscape", `"\x"~`, "Unrecognized character escape sequence"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.ParseSource(tt.src)
			if err == nil {
				t.Fatalf("expected error for %q", tt.src)
			}
			var perr *parser.Error
			if !errors.As(err, &perr) {
				t.Fatalf("expected *parser.Error, got %T", err)
			}
			if !strings.Contains(perr.Msg, tt.msg) {
				t.Errorf("expected message containing %q, got %q", tt.msg, perr.Msg)
			}
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := parser.ParseSource("1~\n  2~ 3")
	var perr *parser.Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *parser.Error, got %v", err)
	}
	if perr.Token.Line != 2 {
		t.Errorf("expected error on line 2, got %d", perr.Token.Line)
	}
	if !strings.HasPrefix(err.Error(), "parse error at line 2:") {
		t.Errorf("unexpected rendering %q", err.Error())
	}
}

func TestParseWithoutEOFToken(t *testing.T) {
	tokens := lexer.Tokenize("1~ 2!")
	code, err := parser.Parse(tokens[:len(tokens)-1])
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(code) != 2 {
		t.Errorf("expected 2 execs, got %d", len(code))
	}
}

func TestCodeStringRoundTrip(t *testing.T) {
	src := `{1~ {dup~ 2! rot~ <!}~ 3~}! [1.5, 'a', "x\n"]~ true!`
	code, err := parser.ParseSource(src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	again, err := parser.ParseSource(code.String())
	if err != nil {
		t.Fatalf("re-parse of %q failed: %v", code.String(), err)
	}
	if diff := cmp.Diff(code, again, ignorePositions...); diff != "" {
		t.Errorf("round trip mismatch (-first +second):\n%s", diff)
	}
}
