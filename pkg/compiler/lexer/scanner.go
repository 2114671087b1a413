package lexer

import (
	"fmt"
	"unicode/utf8"
)

// Lexical error messages carried in Token.Err.
const (
	ErrMultipleDecimalPoints = "Invalid float literal: Floats cannot contain multiple decimal points"
	ErrMissingDecimalPortion = "Invalid float literal: missing decimal portion"
	ErrUnterminatedChar      = "Invalid char literal: Unterminated character constant"
	ErrCharTooLong           = "Invalid char literal: Character constant too long"
	ErrEmptyChar             = "Invalid char literal: Empty character constant"
	ErrUnterminatedString    = "Invalid string literal: Unterminated string constant"
)

type state uint8

const (
	stateStart state = iota
	stateInteger
	stateFloat
	stateCharacter
	stateString
	stateInstructionOrNumber
	stateInstructionName
	stateComment
)

var singleKinds = [256]Kind{
	'{': KindLBrace,
	'}': KindRBrace,
	'[': KindLBracket,
	']': KindRBracket,
	',': KindComma,
	'!': KindBang,
	'~': KindTilde,
}

// Scanner performs lexical analysis on ndeque source.
type Scanner struct {
	source string
	cursor int
	line   int
}

// NewScanner creates a new scanner for the given source.
func NewScanner(source string) *Scanner {
	return &Scanner{
		source: source,
		line:   1,
	}
}

// Reset re-initializes the scanner with new source for reuse.
func (s *Scanner) Reset(source string) {
	s.source = source
	s.cursor = 0
	s.line = 1
}

// Tokenize scans the whole source. The returned slice always ends with a
// KindEOF token; malformed literals are embedded as KindError tokens.
func Tokenize(source string) []Token {
	s := NewScanner(source)
	var tokens []Token
	for {
		tok := s.Next()
		tokens = append(tokens, tok)
		if tok.Kind == KindEOF {
			return tokens
		}
	}
}

// Next returns the next token from the source.
func (s *Scanner) Next() Token {
	st := stateStart
	start, line := s.cursor, s.line

	for {
		switch st {
		case stateStart:
			if s.cursor >= len(s.source) {
				return s.token(KindEOF, s.cursor, s.line)
			}
			start, line = s.cursor, s.line
			ch := s.source[s.cursor]
			s.cursor++

			switch {
			case ch == '\n':
				s.line++
			case isSpace(ch):
			case ch == '#':
				st = stateComment
			case singleKinds[ch] != KindEOF:
				return s.token(singleKinds[ch], start, line)
			case isDigit(ch):
				st = stateInteger
			case ch == '-':
				st = stateInstructionOrNumber
			case ch == '\'':
				st = stateCharacter
			case ch == '"':
				st = stateString
			default:
				st = stateInstructionName
			}

		case stateComment:
			for s.cursor < len(s.source) && s.source[s.cursor] != '\n' {
				s.cursor++
			}
			st = stateStart

		case stateInstructionOrNumber:
			if s.cursor < len(s.source) && isDigit(s.source[s.cursor]) {
				st = stateInteger
			} else {
				st = stateInstructionName
			}

		case stateInteger:
			s.skipDigits()
			if s.peekIs('.') {
				s.cursor++
				st = stateFloat
				continue
			}
			return s.finishNumber(KindInt, start, line)

		case stateFloat:
			digits := s.cursor
			s.skipDigits()
			if s.peekIs('.') {
				tok := s.errorToken(ErrMultipleDecimalPoints, start, line)
				s.skipNumberRun()
				return tok
			}
			if s.cursor == digits {
				tok := s.errorToken(ErrMissingDecimalPortion, start, line)
				s.skipNumberRun()
				return tok
			}
			return s.finishNumber(KindFloat, start, line)

		case stateCharacter:
			if !s.scanQuoted('\'') {
				return s.errorToken(ErrUnterminatedChar, start, line)
			}
			body := s.source[start+1 : s.cursor-1]
			switch n := utf8.RuneCountInString(body); {
			case n == 0:
				return s.errorToken(ErrEmptyChar, start, line)
			case body[0] == '\\' && n == 2, body[0] != '\\' && n == 1:
				return s.token(KindChar, start, line)
			default:
				return s.errorToken(ErrCharTooLong, start, line)
			}

		case stateString:
			if !s.scanQuoted('"') {
				return s.errorToken(ErrUnterminatedString, start, line)
			}
			return s.token(KindString, start, line)

		case stateInstructionName:
			for s.cursor < len(s.source) && !isDelimiter(s.source[s.cursor]) {
				s.cursor++
			}
			return s.token(KindInstruction, start, line)
		}
	}
}

func (s *Scanner) token(kind Kind, start, line int) Token {
	return Token{
		Kind:   kind,
		Lexeme: s.source[start:s.cursor],
		Start:  uint32(start),
		End:    uint32(s.cursor),
		Line:   uint32(line),
	}
}

func (s *Scanner) errorToken(msg string, start, line int) Token {
	tok := s.token(KindError, start, line)
	tok.Err = msg
	return tok
}

// finishNumber rejects numbers glued to a following name, e.g. "12ab".
func (s *Scanner) finishNumber(kind Kind, start, line int) Token {
	if s.cursor >= len(s.source) || isDelimiter(s.source[s.cursor]) {
		return s.token(kind, start, line)
	}
	r, _ := utf8.DecodeRuneInString(s.source[s.cursor:])
	for s.cursor < len(s.source) && !isDelimiter(s.source[s.cursor]) {
		s.cursor++
	}
	return s.errorToken(fmt.Sprintf("Invalid number literal: unexpected character %q", r), start, line)
}

// scanQuoted advances past the closing quote, stepping over raw escape
// pairs. It reports false when the input ends first.
func (s *Scanner) scanQuoted(quote byte) bool {
	for s.cursor < len(s.source) {
		ch := s.source[s.cursor]
		switch ch {
		case '\\':
			s.cursor++
			if s.cursor < len(s.source) {
				if s.source[s.cursor] == '\n' {
					s.line++
				}
				_, w := utf8.DecodeRuneInString(s.source[s.cursor:])
				s.cursor += w
			}
			continue
		case quote:
			s.cursor++
			return true
		case '\n':
			s.line++
		}
		s.cursor++
	}
	return false
}

func (s *Scanner) skipDigits() {
	for s.cursor < len(s.source) && isDigit(s.source[s.cursor]) {
		s.cursor++
	}
}

func (s *Scanner) skipNumberRun() {
	for s.cursor < len(s.source) && (isDigit(s.source[s.cursor]) || s.source[s.cursor] == '.') {
		s.cursor++
	}
}

func (s *Scanner) peekIs(ch byte) bool {
	return s.cursor < len(s.source) && s.source[s.cursor] == ch
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\v' || ch == '\f'
}

func isDelimiter(ch byte) bool {
	return isSpace(ch) || singleKinds[ch] != KindEOF
}
