// Package interp wires the tokenizer, parser and machine into the three
// entry points used by the command line tool and by embedders.
package interp

import (
	"bufio"
	"context"
	"io"
	"log/slog"

	"github.com/agenthands/ndeque/pkg/compiler/ast"
	"github.com/agenthands/ndeque/pkg/compiler/lexer"
	"github.com/agenthands/ndeque/pkg/compiler/parser"
	"github.com/agenthands/ndeque/pkg/stdlib"
	"github.com/agenthands/ndeque/pkg/vm"
)

// Tokenize splits src into tokens. Malformed literals come back as
// KindError tokens; scanning never stops early. The last token is EOF.
func Tokenize(src string) []lexer.Token {
	return lexer.Tokenize(src)
}

// Parse builds the Code tree for tokens. The first KindError token is
// fatal and a trailing EOF token is ignored.
func Parse(tokens []lexer.Token) (ast.Code, error) {
	if n := len(tokens); n > 0 && tokens[n-1].Kind == lexer.KindEOF {
		tokens = tokens[:n-1]
	}
	for _, tok := range tokens {
		if tok.Kind == lexer.KindError {
			return nil, &parser.Error{Token: tok, Msg: "lexical error: " + tok.Err}
		}
	}
	return parser.Parse(tokens)
}

// Option configures a single Run.
type Option func(*settings)

type settings struct {
	ctx      context.Context
	in       *bufio.Reader
	out      io.Writer
	logger   *slog.Logger
	gas      int
	maxDepth int
}

// WithInput sets the reader used by il and ia. Readers that are not already
// buffered are wrapped once, so an Option can be reused across runs.
func WithInput(r io.Reader) Option {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return func(s *settings) { s.in = br }
}

func WithOutput(w io.Writer) Option {
	return func(s *settings) { s.out = w }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithGas bounds the number of steps a run may take. Zero means unlimited.
func WithGas(n int) Option {
	return func(s *settings) { s.gas = n }
}

func WithMaxDepth(n int) Option {
	return func(s *settings) { s.maxDepth = n }
}

// WithContext lets ctx interrupt the run, e.g. an endless loop on SIGINT.
func WithContext(ctx context.Context) Option {
	return func(s *settings) { s.ctx = ctx }
}

// Run evaluates code against stack and returns the stack it ended with.
// A nil stack starts empty. On error the returned stack holds whatever
// state evaluation reached.
func Run(stack *vm.Stack, code ast.Code, opts ...Option) (*vm.Stack, error) {
	cfg := settings{ctx: context.Background(), maxDepth: vm.DefaultMaxDepth}
	for _, opt := range opts {
		opt(&cfg)
	}
	if stack == nil {
		stack = vm.NewStack()
	}

	m := stdlib.NewMachine()
	m.Stack = stack
	m.Gas = cfg.gas
	m.MaxDepth = cfg.maxDepth
	if cfg.in != nil {
		m.In = cfg.in
	}
	if cfg.out != nil {
		m.Out = cfg.out
	}
	if cfg.logger != nil {
		m.Logger = cfg.logger
	}

	err := m.RunContext(cfg.ctx, code)
	return m.Stack, err
}

// RunSource tokenizes, parses and runs src on a fresh stack.
func RunSource(src string, opts ...Option) (*vm.Stack, error) {
	code, err := Parse(Tokenize(src))
	if err != nil {
		return nil, err
	}
	return Run(nil, code, opts...)
}
