package pattern

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/dlclark/regexp2"
	"go.uber.org/zap"

	"github.com/gnolang/skpat/types"
)

// markSeparator ends the parse mark prefix of a choice branch: "1¦branch".
const markSeparator = "¦"

var (
	ErrUnclosedGroup  = errors.New("unclosed group")
	ErrInvalidRegex   = errors.New("invalid regular expression")
	ErrInvalidSlot    = errors.New("invalid slot declaration")
	ErrUnknownType    = errors.New("unknown type")
	ErrTrailingEscape = errors.New("backslash at the end of the pattern")
)

// CompileError reports why a pattern could not be compiled.
type CompileError struct {
	Pattern string
	Pos     int // byte offset in Pattern
	Err     error
	Detail  string
}

func (e *CompileError) Error() string {
	msg := fmt.Sprintf("pattern %q: %v at index %d", e.Pattern, e.Err, e.Pos)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *CompileError) Unwrap() error { return e.Err }

// Compiler turns pattern strings into node trees, resolving slot types
// through a type registry.
type Compiler struct {
	registry     *types.Registry
	logger       *zap.Logger
	regexTimeout time.Duration
}

type Option func(*Compiler)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Compiler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRegexTimeout bounds the time any embedded regular expression may spend
// on a single match. Zero means no bound.
func WithRegexTimeout(d time.Duration) Option {
	return func(c *Compiler) { c.regexTimeout = d }
}

func NewCompiler(registry *types.Registry, opts ...Option) *Compiler {
	c := &Compiler{
		registry: registry,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile parses pattern into a node tree. Compilation is all-or-nothing:
// on error no tree is returned.
func (c *Compiler) Compile(pattern string) (Node, error) {
	s := &scan{c: c, root: pattern}
	node, err := s.compile(pattern, 0)
	if err != nil {
		c.logger.Debug("pattern rejected", zap.String("pattern", pattern), zap.Error(err))
		return nil, err
	}
	c.logger.Debug("pattern compiled", zap.String("pattern", pattern), zap.Stringer("tree", node))
	return node, nil
}

// MustCompile is like Compile but panics on error.
func (c *Compiler) MustCompile(pattern string) Node {
	node, err := c.Compile(pattern)
	if err != nil {
		panic(err)
	}
	return node
}

type scan struct {
	c    *Compiler
	root string
}

func (s *scan) fail(pos int, err error, detail string) error {
	return &CompileError{Pattern: s.root, Pos: pos, Err: err, Detail: detail}
}

// compile parses src, which starts at byte offset base of the root pattern.
func (s *scan) compile(src string, base int) (Node, error) {
	var (
		nodes []Node
		text  strings.Builder
	)
	flush := func() {
		if text.Len() > 0 {
			nodes = append(nodes, &Text{Content: text.String()})
			text.Reset()
		}
	}

	for i := 0; i < len(src); i++ {
		c := src[i]
		switch c {
		case '[':
			inner, ok := enclosed(src, '[', ']', i)
			if !ok {
				return nil, s.fail(base+i, ErrUnclosedGroup, "optional group")
			}
			flush()
			node, err := s.compileOptional(inner, base+i+1)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node)
			i += len(inner) + 1

		case '(':
			inner, ok := enclosed(src, '(', ')', i)
			if !ok {
				return nil, s.fail(base+i, ErrUnclosedGroup, "choice group")
			}
			flush()
			node, err := s.compileChoice(inner, base+i+1)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node)
			i += len(inner) + 1

		case '<':
			inner, ok := enclosed(src, '<', '>', i)
			if !ok {
				return nil, s.fail(base+i, ErrUnclosedGroup, "regex group")
			}
			flush()
			node, err := s.compileRegex(inner, base+i+1)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node)
			i += len(inner) + 1

		case '%':
			end := strings.IndexByte(src[i+1:], '%')
			if end < 0 {
				return nil, s.fail(base+i, ErrUnclosedGroup, "slot declaration")
			}
			flush()
			inner := src[i+1 : i+1+end]
			node, err := s.compileSlot(inner, base+i+1)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node)
			i += end + 1

		case '\\':
			if i == len(src)-1 {
				return nil, s.fail(base+i, ErrTrailingEscape, "")
			}
			i++
			text.WriteByte(src[i])

		default:
			text.WriteByte(c)
		}
	}
	flush()

	switch len(nodes) {
	case 0:
		return &Text{}, nil
	case 1:
		return nodes[0], nil
	default:
		return &Sequence{Children: nodes}, nil
	}
}

// compileOptional wraps the group content. A content with a parse mark
// prefix becomes a single-branch choice, so the mark is only applied when
// the group is taken.
func (s *scan) compileOptional(inner string, base int) (Node, error) {
	if mark, rest, ok := splitMark(inner); ok {
		node, err := s.compile(rest, base+len(inner)-len(rest))
		if err != nil {
			return nil, err
		}
		return &Optional{Child: &Choice{Alternatives: []Alternative{{Node: node, Mark: mark}}}}, nil
	}
	node, err := s.compile(inner, base)
	if err != nil {
		return nil, err
	}
	return &Optional{Child: node}, nil
}

func (s *scan) compileChoice(inner string, base int) (Node, error) {
	choice := &Choice{}
	offset := base
	for _, branch := range splitBranches(inner) {
		mark := 0
		src, pos := branch, offset
		if m, rest, ok := splitMark(branch); ok {
			mark = m
			src, pos = rest, offset+len(branch)-len(rest)
		}
		node, err := s.compile(src, pos)
		if err != nil {
			return nil, err
		}
		choice.Alternatives = append(choice.Alternatives, Alternative{Node: node, Mark: mark})
		offset += len(branch) + 1
	}
	return choice, nil
}

func (s *scan) compileRegex(inner string, base int) (Node, error) {
	re, err := regexp2.Compile(`\A(?:`+inner+`)`, regexp2.None)
	if err != nil {
		return nil, s.fail(base, ErrInvalidRegex, err.Error())
	}
	if s.c.regexTimeout > 0 {
		re.MatchTimeout = s.c.regexTimeout
	}
	return &Regex{Source: inner, re: re}, nil
}

// compileSlot parses the slot grammar
//
//	[-][~|*|@]type[/type...][@1|@-1|@@1]
//
// "-" makes the slot nullable, "~" accepts expressions only, "*" or "@"
// literals only. A one-character time suffix selects the future state, a
// two-character suffix the past state.
func (s *scan) compileSlot(inner string, base int) (Node, error) {
	slot := &Slot{}
	rest := inner
	if strings.HasPrefix(rest, "-") {
		slot.Nullable = true
		rest = rest[1:]
	}
	if rest != "" {
		switch rest[0] {
		case '~':
			slot.Acceptance = AcceptExpressions
			rest = rest[1:]
		case '*', '@':
			slot.Acceptance = AcceptLiterals
			rest = rest[1:]
		}
	}
	if at := strings.IndexByte(rest, '@'); at >= 0 {
		switch suffix := rest[at+1:]; suffix {
		case "1":
			slot.Time = TimeFuture
		case "-1", "@1":
			slot.Time = TimePast
		default:
			return nil, s.fail(base+len(inner)-len(suffix), ErrInvalidSlot, fmt.Sprintf("bad time suffix %q", suffix))
		}
		rest = rest[:at]
	}
	if rest == "" {
		return nil, s.fail(base, ErrInvalidSlot, fmt.Sprintf("no type in %q", inner))
	}

	for _, name := range strings.Split(rest, "/") {
		if !isTypeName(name) {
			return nil, s.fail(base, ErrInvalidSlot, fmt.Sprintf("bad type name %q", name))
		}
		pt, ok := s.c.registry.PatternType(name)
		if !ok {
			return nil, s.fail(base, ErrUnknownType, name)
		}
		if containsType(slot.Types, pt) {
			continue
		}
		slot.Types = append(slot.Types, pt)
		slot.spellings = append(slot.spellings, name)
	}
	return slot, nil
}

// enclosed returns the text between the opening character at start and its
// balancing closing character. Backslash escapes are skipped.
func enclosed(src string, opening, closing byte, start int) (string, bool) {
	depth := 0
	for i := start; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case closing:
			depth--
			if depth == 0 {
				return src[start+1 : i], true
			}
		case opening:
			depth++
		}
	}
	return "", false
}

// splitBranches splits a choice body on "|" that is neither escaped nor
// nested inside another group.
func splitBranches(src string) []string {
	var (
		branches []string
		depth    int
		last     int
	)
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case '(', '[', '<':
			depth++
		case ')', ']', '>':
			if depth > 0 {
				depth--
			}
		case '|':
			if depth == 0 {
				branches = append(branches, src[last:i])
				last = i + 1
			}
		}
	}
	return append(branches, src[last:])
}

// splitMark recognizes a "<digits>¦rest" prefix.
func splitMark(s string) (int, string, bool) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == 0 {
		return 0, s, false
	}
	if !strings.HasPrefix(s[i:], markSeparator) {
		return 0, s, false
	}
	rest := s[i+len(markSeparator):]
	mark, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, s, false
	}
	return mark, rest, true
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isTypeName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}

func containsType(list []types.PatternType, pt types.PatternType) bool {
	for _, o := range list {
		if o.Equal(pt) {
			return true
		}
	}
	return false
}
