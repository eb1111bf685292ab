package syntax

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultMaxDepth bounds how deeply expressions may nest inside slots when a
// configuration does not say otherwise.
const DefaultMaxDepth = 8

var (
	ErrUnknownFormat     = errors.New("unknown definition file format")
	ErrInvalidDefinition = errors.New("invalid definition")
)

// Kind tells statements from values.
type Kind string

const (
	KindEffect     Kind = "effect"
	KindExpression Kind = "expression"
)

// Format is the encoding of a definition file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Config is the contents of a definition file.
type Config struct {
	Name          string `yaml:"name" toml:"name"`
	CaseSensitive bool   `yaml:"case_sensitive,omitempty" toml:"case_sensitive,omitempty"`
	// RegexTimeout is a duration such as "50ms". Empty means no bound.
	RegexTimeout string           `yaml:"regex_timeout,omitempty" toml:"regex_timeout,omitempty"`
	MaxDepth     int              `yaml:"max_depth,omitempty" toml:"max_depth,omitempty"`
	Types        []TypeDefinition `yaml:"types,omitempty" toml:"types,omitempty"`
	Syntaxes     []Definition     `yaml:"syntaxes" toml:"syntaxes"`
	Cases        []Case           `yaml:"cases,omitempty" toml:"cases,omitempty"`
}

// Definition declares a syntax: a name and the patterns that spell it.
type Definition struct {
	Name string `yaml:"name" toml:"name"`
	Kind Kind   `yaml:"kind" toml:"kind"`
	// Returns names the type an expression evaluates to.
	Returns  string   `yaml:"returns,omitempty" toml:"returns,omitempty"`
	Patterns []string `yaml:"patterns" toml:"patterns"`
}

// TypeDefinition declares a value type that slots may refer to.
type TypeDefinition struct {
	Name string `yaml:"name" toml:"name"`
	// Pattern matches the spellings of the type name. It defaults to the
	// name with an optional plural "s".
	Pattern string `yaml:"pattern,omitempty" toml:"pattern,omitempty"`
	// Literal selects how constants of the type are written: number,
	// integer, string, boolean or word. Empty means the type has no
	// literals and is only produced by expressions.
	Literal string `yaml:"literal,omitempty" toml:"literal,omitempty"`
	// Values lists the accepted words of a word literal.
	Values []string `yaml:"values,omitempty" toml:"values,omitempty"`
}

// Case is an input with the parse it is expected to produce.
type Case struct {
	Input string `yaml:"input" toml:"input"`
	// Expect names the syntax the input must parse as. Empty means the
	// input must not parse.
	Expect string `yaml:"expect,omitempty" toml:"expect,omitempty"`
	Mark   *int   `yaml:"mark,omitempty" toml:"mark,omitempty"`
	// Values are compared against Describe of each parsed value.
	Values []string `yaml:"values,omitempty" toml:"values,omitempty"`
}

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// Load reads a definition file, YAML or TOML by extension.
func Load(path string) (*Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Decode(r io.Reader, format Format) (*Config, error) {
	var cfg Config
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	case FormatTOML:
		if err := toml.NewDecoder(r).Decode(&cfg); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return &cfg, nil
}

func Encode(cfg *Config, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(cfg)
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// DefaultConfig is the starter configuration written by "skpat init".
func DefaultConfig() *Config {
	quickly := 1
	return &Config{
		Name:     "skpat",
		MaxDepth: DefaultMaxDepth,
		Types: []TypeDefinition{
			{
				Name:    "direction",
				Pattern: "direction(?<plural>s)?",
				Literal: "word",
				Values:  []string{"north", "south", "east", "west"},
			},
		},
		Syntaxes: []Definition{
			{
				Name:     "broadcast",
				Kind:     KindEffect,
				Patterns: []string{"broadcast %texts%", "(say|shout) %text%"},
			},
			{
				Name:     "move",
				Kind:     KindEffect,
				Patterns: []string{"move [1¦quickly] %direction% [by %-number%]"},
			},
			{
				Name:     "sum",
				Kind:     KindExpression,
				Returns:  "number",
				Patterns: []string{"(sum|total) of %numbers%", "%number% plus %number%"},
			},
		},
		Cases: []Case{
			{Input: `broadcast "hello" and "bye"`, Expect: "broadcast", Values: []string{"[hello bye]"}},
			{Input: "move quickly north", Expect: "move", Mark: &quickly, Values: []string{"north"}},
			{Input: "move west by 1 plus 2", Expect: "move", Values: []string{"west", "sum(1, 2)"}},
			{Input: "jump north"},
		},
	}
}
