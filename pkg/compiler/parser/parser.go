package parser

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/agenthands/ndeque/pkg/compiler/ast"
	"github.com/agenthands/ndeque/pkg/compiler/lexer"
	"github.com/agenthands/ndeque/pkg/core/value"
)

// Error is a parse failure anchored at the offending token.
type Error struct {
	Token lexer.Token
	Msg   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("parse error at line %d:%d: %s", e.Token.Line, e.Token.Start, e.Msg)
}

func errorf(tok lexer.Token, format string, args ...any) *Error {
	return &Error{Token: tok, Msg: fmt.Sprintf(format, args...)}
}

func lexicalError(tok lexer.Token) *Error {
	return errorf(tok, "lexical error: %s", tok.Err)
}

// Parser builds a Code tree from a token sequence by recursive descent.
// It never backtracks: every decision is made on the current token.
type Parser struct {
	tokens []lexer.Token
	pos    int

	listDepth  int // open '[' at the cursor
	blockDepth int // open '{' at the cursor
}

func New(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse is shorthand for New(tokens).Parse().
func Parse(tokens []lexer.Token) (ast.Code, error) {
	return New(tokens).Parse()
}

// ParseSource tokenizes and parses src.
func ParseSource(src string) (ast.Code, error) {
	return Parse(lexer.Tokenize(src))
}

func (p *Parser) Parse() (ast.Code, error) {
	code := ast.Code{}
	for p.peek().Kind != lexer.KindEOF {
		e, err := p.parseExec()
		if err != nil {
			return nil, err
		}
		code = append(code, e)
	}
	return code, nil
}

func (p *Parser) peek() lexer.Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	// Token streams without a trailing EOF end here.
	eof := lexer.Token{Kind: lexer.KindEOF, Line: 1}
	if n := len(p.tokens); n > 0 {
		last := p.tokens[n-1]
		eof.Start, eof.End, eof.Line = last.End, last.End, last.Line
	}
	return eof
}

func (p *Parser) advance() lexer.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// Exec := Op Sigil
func (p *Parser) parseExec() (ast.Exec, error) {
	op, err := p.parseOp()
	if err != nil {
		return ast.Exec{}, err
	}

	sigil := p.peek()
	var side ast.Side
	switch sigil.Kind {
	case lexer.KindBang:
		side = ast.Left
	case lexer.KindTilde:
		side = ast.Right
	case lexer.KindError:
		return ast.Exec{}, lexicalError(sigil)
	default:
		return ast.Exec{}, errorf(sigil, "expected '!' or '~' after %s, found %v", describeOp(op), sigil.Kind)
	}
	p.advance()

	return ast.Exec{Sigil: sigil, Side: side, Op: op}, nil
}

// Op := Literal | InstructionToken
func (p *Parser) parseOp() (ast.Op, error) {
	tok := p.peek()
	if tok.Kind == lexer.KindInstruction && !isBoolean(tok.Lexeme) {
		p.advance()
		return &ast.Instruction{Token: tok, Name: tok.Lexeme}, nil
	}

	v, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	return &ast.Literal{Token: tok, Value: v}, nil
}

func (p *Parser) parseLiteral() (value.Value, error) {
	tok := p.peek()
	switch tok.Kind {
	case lexer.KindLBracket:
		return p.parseList()
	case lexer.KindLBrace:
		code, err := p.parseBlock()
		if err != nil {
			return value.Void, err
		}
		return value.Block(code), nil
	case lexer.KindRBrace, lexer.KindRBracket:
		return value.Void, errorf(tok, "Unexpected token type %v (unmatched %q)", tok.Kind, tok.Lexeme)
	case lexer.KindEOF:
		return value.Void, errorf(tok, "unexpected end of input, expected a literal or instruction")
	}

	v, err := ParseLiteral(tok)
	if err != nil {
		return value.Void, err
	}
	p.advance()
	return v, nil
}

// List := '[' (Literal (',' Literal)*)? ']'
// Separators are optional; nesting recurses one level per '['.
func (p *Parser) parseList() (value.Value, error) {
	open := p.advance()
	p.listDepth++

	elems := []value.Value{}
	for {
		tok := p.peek()
		switch tok.Kind {
		case lexer.KindRBracket:
			p.advance()
			p.listDepth--
			return value.List(elems...), nil
		case lexer.KindComma:
			p.advance()
		case lexer.KindEOF:
			return value.Void, errorf(open, "Unclosed list (%d level(s) still open)", p.listDepth)
		default:
			el, err := p.parseLiteral()
			if err != nil {
				return value.Void, err
			}
			elems = append(elems, el)
		}
	}
}

// Block := '{' Exec* '}'
func (p *Parser) parseBlock() (ast.Code, error) {
	open := p.advance()
	p.blockDepth++

	code := ast.Code{}
	for {
		switch p.peek().Kind {
		case lexer.KindRBrace:
			p.advance()
			p.blockDepth--
			return code, nil
		case lexer.KindEOF:
			return nil, errorf(open, "Unclosed block (%d level(s) still open)", p.blockDepth)
		}

		e, err := p.parseExec()
		if err != nil {
			return nil, err
		}
		code = append(code, e)
	}
}

// ParseLiteral converts a single scalar token (number, character, string or
// boolean name) into a value, resolving escape sequences.
func ParseLiteral(tok lexer.Token) (value.Value, error) {
	switch tok.Kind {
	case lexer.KindInt:
		i, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			return value.Void, errorf(tok, "Invalid integer literal %q", tok.Lexeme)
		}
		return value.Int(i), nil
	case lexer.KindFloat:
		f, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return value.Void, errorf(tok, "Invalid float literal %q", tok.Lexeme)
		}
		return value.Float(f), nil
	case lexer.KindChar:
		runes, err := unescape(tok, tok.Lexeme[1:len(tok.Lexeme)-1])
		if err != nil {
			return value.Void, err
		}
		if len(runes) != 1 {
			return value.Void, errorf(tok, "Invalid character literal %s", tok.Lexeme)
		}
		return value.Char(runes[0]), nil
	case lexer.KindString:
		runes, err := unescape(tok, tok.Lexeme[1:len(tok.Lexeme)-1])
		if err != nil {
			return value.Void, err
		}
		elems := make([]value.Value, len(runes))
		for i, r := range runes {
			elems[i] = value.Char(r)
		}
		return value.List(elems...), nil
	case lexer.KindInstruction:
		if isBoolean(tok.Lexeme) {
			return value.Bool(tok.Lexeme == "true"), nil
		}
	case lexer.KindError:
		return value.Void, lexicalError(tok)
	}
	return value.Void, errorf(tok, "Unexpected token type %v", tok.Kind)
}

func unescape(tok lexer.Token, raw string) ([]rune, error) {
	runes := make([]rune, 0, len(raw))
	for i := 0; i < len(raw); {
		r, w := utf8.DecodeRuneInString(raw[i:])
		i += w
		if r != '\\' {
			runes = append(runes, r)
			continue
		}
		if i >= len(raw) {
			return nil, errorf(tok, "Unrecognized character escape sequence '\\'")
		}
		e, w := utf8.DecodeRuneInString(raw[i:])
		i += w
		switch e {
		case 'n':
			runes = append(runes, '\n')
		case 'r':
			runes = append(runes, '\r')
		case 't':
			runes = append(runes, '\t')
		case '0':
			runes = append(runes, 0)
		case '\\', '\'', '"':
			runes = append(runes, e)
		default:
			return nil, errorf(tok, "Unrecognized character escape sequence '\\%c'", e)
		}
	}
	return runes, nil
}

func isBoolean(name string) bool {
	return name == "true" || name == "false"
}

func describeOp(op ast.Op) string {
	switch o := op.(type) {
	case *ast.Instruction:
		return fmt.Sprintf("instruction %q", o.Name)
	case *ast.Literal:
		return fmt.Sprintf("%v literal", o.Value.Type)
	}
	return "operation"
}
