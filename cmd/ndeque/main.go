package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/agenthands/ndeque/pkg/compiler/ast"
	"github.com/agenthands/ndeque/pkg/compiler/emitter"
	"github.com/agenthands/ndeque/pkg/compiler/lexer"
	"github.com/agenthands/ndeque/pkg/interp"
	"github.com/agenthands/ndeque/pkg/vm"
	"golang.org/x/term"
)

const usage = `Usage: ndeque [command] [flags] [file]

Commands:
  run <file>    run a program
  repl          read, evaluate and print interactively (default)
  lex <file>    print the tokens of a program
  parse <file>  print the syntax tree of a program
  fmt <file>    print a program in canonical form

-e '<source>' takes the program from the command line instead of a file.

Flags:
`

var commands = map[string]bool{"run": true, "repl": true, "lex": true, "parse": true, "fmt": true}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := ""
	if len(args) > 0 && commands[args[0]] {
		cmd, args = args[0], args[1:]
	}

	fs := flag.NewFlagSet("ndeque", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	configPath := fs.String("config", "", "config file (default $HOME/"+interp.DefaultConfigName+")")
	gas := fs.Int("gas", 0, "step budget, 0 = unlimited")
	depth := fs.Int("depth", vm.DefaultMaxDepth, "maximum nested block depth")
	trace := fs.Bool("trace", false, "log every dispatched instruction to stderr")
	showTokens := fs.Bool("tokens", false, "print tokens before parsing")
	showAST := fs.Bool("ast", false, "print the parsed program before running")
	showStack := fs.Bool("stack", true, "print the stack after running")
	inline := fs.String("e", "", "program source")

	// Flags may come before or after the file, as in "run prog.nd -gas 100".
	if err := fs.Parse(args); err != nil {
		return flagStatus(err)
	}
	file := ""
	if rest := fs.Args(); len(rest) > 0 {
		file = rest[0]
		if err := fs.Parse(rest[1:]); err != nil {
			return flagStatus(err)
		}
		if fs.NArg() > 0 {
			fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
			return 2
		}
	}

	cfg, err := interp.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	hasInline := false
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "gas":
			cfg.Gas = *gas
		case "depth":
			cfg.MaxDepth = *depth
		case "trace":
			cfg.Trace = *trace
		case "tokens":
			cfg.ShowTokens = *showTokens
		case "ast":
			cfg.ShowAST = *showAST
		case "stack":
			cfg.ShowStack = *showStack
		case "e":
			hasInline = true
		}
	})

	if cmd == "" {
		cmd = "repl"
		if hasInline || file != "" {
			cmd = "run"
		}
	}
	if cmd == "repl" {
		return repl(cfg, stdin, stdout, stderr)
	}

	var src string
	switch {
	case hasInline:
		src = *inline
	case file == "":
		fmt.Fprintf(stderr, "ndeque %s: missing program file\n", cmd)
		return 2
	default:
		b, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintf(stderr, "error reading file: %v\n", err)
			return 1
		}
		src = string(b)
	}

	switch cmd {
	case "run":
		return runProgram(cfg, src, stdin, stdout, stderr)
	case "lex":
		return lex(src, stdout)
	case "parse":
		return parse(src, stdout, stderr, ast.Dump)
	default:
		return parse(src, stdout, stderr, emitter.Emit)
	}
}

func flagStatus(err error) int {
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	return 2
}

func runProgram(cfg interp.Config, src string, stdin io.Reader, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	tokens := interp.Tokenize(src)
	if cfg.ShowTokens {
		printTokens(stderr, tokens)
	}
	code, err := interp.Parse(tokens)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if cfg.ShowAST {
		fmt.Fprint(stderr, emitter.Emit(code))
	}

	opts := append(cfg.Options(),
		interp.WithContext(ctx),
		interp.WithInput(stdin),
		interp.WithOutput(stdout),
		interp.WithLogger(cfg.Logger(stderr)),
	)
	stack, err := interp.Run(nil, code, opts...)
	if cfg.ShowStack && stack != nil {
		fmt.Fprintf(stderr, "stack: %v\n", stack)
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func repl(cfg interp.Config, stdin io.Reader, stdout, stderr io.Writer) int {
	in := bufio.NewReader(stdin)
	session := interp.NewSession(append(cfg.Options(),
		interp.WithInput(in),
		interp.WithOutput(stdout),
		interp.WithLogger(cfg.Logger(stderr)),
	)...)
	prompt := isTerminal(stdin)

	for {
		if prompt {
			fmt.Fprint(stdout, cfg.Prompt)
		}
		line, err := in.ReadString('\n')
		if line == "" && err != nil {
			if errors.Is(err, io.EOF) {
				if prompt {
					fmt.Fprintln(stdout)
				}
				return 0
			}
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}

		switch line = strings.TrimSpace(line); line {
		case "":
			continue
		case ":q", ":quit":
			return 0
		case ":reset":
			session.Reset()
			continue
		case ":stack":
			fmt.Fprintln(stdout, session.Stack())
			continue
		}

		tokens := interp.Tokenize(line)
		if cfg.ShowTokens {
			printTokens(stdout, tokens)
		}
		code, err := interp.Parse(tokens)
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			continue
		}
		if cfg.ShowAST {
			fmt.Fprint(stdout, emitter.Emit(code))
		}

		// Ctrl-C interrupts the running input, not the session.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		err = session.Exec(ctx, code)
		stop()
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
		if cfg.ShowStack {
			fmt.Fprintln(stdout, session.Stack())
		}
	}
}

func lex(src string, stdout io.Writer) int {
	status := 0
	for _, tok := range interp.Tokenize(src) {
		fmt.Fprintln(stdout, tok)
		if tok.Kind == lexer.KindError {
			status = 1
		}
	}
	return status
}

func parse(src string, stdout, stderr io.Writer, render func(ast.Code) string) int {
	code, err := interp.Parse(interp.Tokenize(src))
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprint(stdout, render(code))
	return 0
}

func printTokens(w io.Writer, tokens []lexer.Token) {
	for _, tok := range tokens {
		fmt.Fprintln(w, tok)
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
