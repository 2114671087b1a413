package interp

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/agenthands/ndeque/pkg/vm"
	"gopkg.in/yaml.v3"
)

// DefaultConfigName is looked up in the user's home directory.
const DefaultConfigName = ".ndeque.yaml"

// Config holds the settings of the command line tool.
type Config struct {
	Prompt     string `yaml:"prompt"`
	Trace      bool   `yaml:"trace"`
	ShowTokens bool   `yaml:"show_tokens"`
	ShowAST    bool   `yaml:"show_ast"`
	ShowStack  bool   `yaml:"show_stack"`
	Gas        int    `yaml:"gas"`
	MaxDepth   int    `yaml:"max_depth"`
}

func DefaultConfig() Config {
	return Config{
		Prompt:    "> ",
		ShowStack: true,
		MaxDepth:  vm.DefaultMaxDepth,
	}
}

// DefaultConfigPath returns $HOME/.ndeque.yaml, or "" without a home directory.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, DefaultConfigName)
}

// LoadConfig reads path over the defaults. An empty path means the default
// location, which may be absent. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	optional := path == ""
	if optional {
		path = DefaultConfigPath()
		if path == "" {
			return cfg, nil
		}
	}

	file, err := os.Open(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Gas < 0 {
		return fmt.Errorf("gas must not be negative, got %d", c.Gas)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth)
	}
	return nil
}

// Logger returns a text logger on w: Debug when tracing, Warn otherwise.
func (c Config) Logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if c.Trace {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Options turns the evaluation settings into Run options.
func (c Config) Options() []Option {
	return []Option{WithGas(c.Gas), WithMaxDepth(c.MaxDepth)}
}
