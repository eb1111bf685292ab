// Package syntax holds named syntaxes, each spelled by one or more patterns,
// and parses input against them. Expression syntaxes also fill the slots of
// other syntaxes, so inputs may nest.
package syntax

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dlclark/regexp2"
	"go.uber.org/zap"

	"github.com/gnolang/skpat/match"
	"github.com/gnolang/skpat/pattern"
	"github.com/gnolang/skpat/resolve"
	"github.com/gnolang/skpat/types"
)

// Syntax is a compiled definition.
type Syntax struct {
	Name    string
	Kind    Kind
	Returns *types.Type
	// Sources and Patterns are parallel: Patterns[i] compiles Sources[i].
	Sources  []string
	Patterns []pattern.Node
}

// Result is a successful parse of an input against a syntax.
type Result struct {
	Syntax *Syntax
	// Pattern is the index of the pattern that matched.
	Pattern int
	*match.ParseResult
}

// Engine parses input against the syntaxes of a configuration. It is safe for
// concurrent use; Reload swaps the whole configuration at once.
type Engine struct {
	mu     sync.RWMutex
	state  *state
	logger *zap.Logger
}

var _ match.Resolver = (*Engine)(nil)

// state is everything built from one configuration. It is read-only once
// built.
type state struct {
	name     string
	registry *types.Registry
	compiler *pattern.Compiler
	matcher  *match.Matcher
	literals *resolve.Literals
	syntaxes []*Syntax
	cases    []Case
	maxDepth int
	logger   *zap.Logger
}

// New builds an engine from cfg. Every type and pattern must be valid; the
// returned error lists all problems found.
func New(cfg *Config, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{logger: logger}
	if err := e.Reload(cfg); err != nil {
		return nil, err
	}
	return e, nil
}

// Reload replaces the engine's configuration. On error the previous
// configuration stays in place.
func (e *Engine) Reload(cfg *Config) error {
	st, err := build(cfg, e.logger)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.state = st
	e.mu.Unlock()
	e.logger.Info("syntaxes loaded",
		zap.String("name", st.name),
		zap.Int("syntaxes", len(st.syntaxes)),
		zap.Int("types", len(st.registry.Types())))
	return nil
}

func (e *Engine) current() *state {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

func (e *Engine) Name() string                { return e.current().name }
func (e *Engine) Registry() *types.Registry   { return e.current().registry }
func (e *Engine) Compiler() *pattern.Compiler { return e.current().compiler }
func (e *Engine) Cases() []Case               { return e.current().cases }

// Syntaxes returns the syntaxes in declaration order.
func (e *Engine) Syntaxes() []*Syntax {
	st := e.current()
	out := make([]*Syntax, len(st.syntaxes))
	copy(out, st.syntaxes)
	return out
}

// Parse matches the whole input against every pattern of every syntax in
// declaration order and returns the first match.
func (e *Engine) Parse(input string) (*Result, bool) {
	return e.current().parse(input, 0, nil)
}

// Match matches node at offset without requiring the rest of the input to be
// consumed. Slots are filled the same way Parse fills them.
func (e *Engine) Match(node pattern.Node, input string, offset int) (*match.ParseResult, bool) {
	st := e.current()
	ctx := match.NewContext()
	end, ok := st.matcher.Match(node, input, offset, ctx)
	if !ok {
		return nil, false
	}
	return ctx.Result(node, end), true
}

// Resolve fills a slot with a literal or, failing that, with an expression
// whose return type the slot accepts.
func (e *Engine) Resolve(text string, req match.Request) (match.Resolution, bool) {
	return e.current().Resolve(text, req)
}

func (st *state) Resolve(text string, req match.Request) (match.Resolution, bool) {
	if res, ok := st.literals.Resolve(text, req); ok {
		return res, true
	}
	if req.Acceptance == pattern.AcceptLiterals {
		return match.Resolution{}, false
	}
	if req.Depth >= st.maxDepth {
		st.logger.Debug("expression too deep", zap.String("text", text), zap.Int("depth", req.Depth))
		return match.Resolution{}, false
	}

	res, ok := st.parse(text, req.Depth+1, func(s *Syntax) bool {
		if s.Kind != KindExpression || s.Returns == nil {
			return false
		}
		accepted, _ := req.Accepts(s.Returns)
		return accepted
	})
	if !ok {
		return match.Resolution{}, false
	}
	return match.Resolution{Length: len(text), Value: res}, true
}

func (st *state) parse(input string, depth int, accept func(*Syntax) bool) (*Result, bool) {
	ctx := match.NewContext()
	ctx.Depth = depth
	for _, s := range st.syntaxes {
		if accept != nil && !accept(s) {
			continue
		}
		for i, node := range s.Patterns {
			ctx.Reset()
			res, ok := st.matcher.MatchAll(node, input, ctx)
			if !ok {
				continue
			}
			st.logger.Debug("parsed",
				zap.String("input", input),
				zap.String("syntax", s.Name),
				zap.Int("pattern", i),
				zap.Int("depth", depth))
			return &Result{Syntax: s, Pattern: i, ParseResult: res}, true
		}
	}
	return nil, false
}

func build(cfg *Config, logger *zap.Logger) (*state, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: no configuration", ErrInvalidDefinition)
	}

	var timeout time.Duration
	if cfg.RegexTimeout != "" {
		d, err := time.ParseDuration(cfg.RegexTimeout)
		if err != nil {
			return nil, fmt.Errorf("%w: regex_timeout: %v", ErrInvalidDefinition, err)
		}
		timeout = d
	}

	st := &state{
		name:     cfg.Name,
		registry: types.NewRegistry(),
		literals: resolve.NewLiterals(logger),
		cases:    cfg.Cases,
		maxDepth: cfg.MaxDepth,
		logger:   logger,
	}
	if st.maxDepth <= 0 {
		st.maxDepth = DefaultMaxDepth
	}
	if err := types.RegisterDefaults(st.registry); err != nil {
		return nil, err
	}

	var errs []error
	for _, td := range cfg.Types {
		if err := registerType(st.registry, td); err != nil {
			errs = append(errs, fmt.Errorf("type %q: %w", td.Name, err))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	st.compiler = pattern.NewCompiler(st.registry,
		pattern.WithLogger(logger),
		pattern.WithRegexTimeout(timeout))
	st.matcher = match.New(st,
		match.WithCaseSensitive(cfg.CaseSensitive),
		match.WithLogger(logger))

	seen := make(map[string]bool)
	for _, def := range cfg.Syntaxes {
		s, err := st.compile(def)
		if err != nil {
			errs = append(errs, fmt.Errorf("syntax %q: %w", def.Name, err))
			continue
		}
		if seen[s.Name] {
			errs = append(errs, fmt.Errorf("syntax %q: %w: declared twice", def.Name, ErrInvalidDefinition))
			continue
		}
		seen[s.Name] = true
		st.syntaxes = append(st.syntaxes, s)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return st, nil
}

func (st *state) compile(def Definition) (*Syntax, error) {
	if def.Name == "" {
		return nil, fmt.Errorf("%w: missing name", ErrInvalidDefinition)
	}
	if len(def.Patterns) == 0 {
		return nil, fmt.Errorf("%w: no patterns", ErrInvalidDefinition)
	}

	s := &Syntax{Name: def.Name, Kind: def.Kind, Sources: def.Patterns}
	switch def.Kind {
	case KindEffect:
		if def.Returns != "" {
			return nil, fmt.Errorf("%w: an effect returns nothing", ErrInvalidDefinition)
		}
	case KindExpression:
		pt, ok := st.registry.PatternType(def.Returns)
		if !ok {
			return nil, fmt.Errorf("%w: return type %q", pattern.ErrUnknownType, def.Returns)
		}
		s.Returns = pt.Type
	default:
		return nil, fmt.Errorf("%w: kind %q", ErrInvalidDefinition, def.Kind)
	}

	var errs []error
	for _, src := range def.Patterns {
		node, err := st.compiler.Compile(src)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		s.Patterns = append(s.Patterns, node)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return s, nil
}

func registerType(r *types.Registry, td TypeDefinition) error {
	namePattern := td.Pattern
	if namePattern == "" {
		namePattern = regexp2.Escape(td.Name) + "(?<" + types.PluralGroup + ">s)?"
	}

	var err error
	switch td.Literal {
	case "":
		_, err = types.Register[any](r, td.Name, namePattern, nil)
	case types.Number:
		_, err = types.Register(r, td.Name, namePattern, types.ParseNumber)
	case types.Integer:
		_, err = types.Register(r, td.Name, namePattern, types.ParseInteger)
	case types.String:
		_, err = types.Register(r, td.Name, namePattern, types.ParseString)
	case types.Boolean:
		_, err = types.Register(r, td.Name, namePattern, types.ParseBoolean)
	case "word":
		if len(td.Values) == 0 {
			return fmt.Errorf("%w: word literal without values", ErrInvalidDefinition)
		}
		_, err = types.Register(r, td.Name, namePattern, wordParser(td.Values))
	default:
		return fmt.Errorf("%w: literal %q", ErrInvalidDefinition, td.Literal)
	}
	return err
}

// wordParser accepts any of words, ignoring case, and yields its canonical
// spelling.
func wordParser(words []string) func(string) (string, bool) {
	return func(text string) (string, bool) {
		for _, w := range words {
			if strings.EqualFold(w, text) {
				return w, true
			}
		}
		return "", false
	}
}
