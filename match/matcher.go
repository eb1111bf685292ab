package match

import (
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/gnolang/skpat/pattern"
)

// Matcher matches compiled pattern trees against input text. A Matcher holds
// no per-attempt state and may be used concurrently, one Context per attempt.
type Matcher struct {
	resolver      Resolver
	caseSensitive bool
	logger        *zap.Logger
}

type Option func(*Matcher)

// WithCaseSensitive makes literal text match with exact case.
func WithCaseSensitive(caseSensitive bool) Option {
	return func(m *Matcher) { m.caseSensitive = caseSensitive }
}

func WithLogger(logger *zap.Logger) Option {
	return func(m *Matcher) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New returns a Matcher that fills slots through resolver. With a nil
// resolver only nullable slots can match.
func New(resolver Resolver, opts ...Option) *Matcher {
	m := &Matcher{
		resolver: resolver,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Parse matches node against the whole input with a fresh context.
func (m *Matcher) Parse(node pattern.Node, input string) (*ParseResult, bool) {
	return m.MatchAll(node, input, NewContext())
}

// MatchAll matches node from the start of input and succeeds only when
// nothing but whitespace is left over.
func (m *Matcher) MatchAll(node pattern.Node, input string, ctx *Context) (*ParseResult, bool) {
	end, ok := m.Match(node, input, 0, ctx)
	if !ok || skipSpace(input, end) != len(input) {
		return nil, false
	}
	return ctx.Result(node, end), true
}

// Match matches node against input at offset and returns the offset where
// the match ends. On failure ctx is left as it was before the call.
func (m *Matcher) Match(node pattern.Node, input string, offset int, ctx *Context) (int, bool) {
	if offset < 0 || offset > len(input) {
		return 0, false
	}

	switch n := node.(type) {
	case *pattern.Text:
		return m.matchText(n.Content, input, offset)

	case *pattern.Sequence:
		snap := ctx.save()
		pos := offset
		for i, child := range n.Children {
			ctx.push(n.Children[i+1:])
			next, ok := m.Match(child, input, pos, ctx)
			ctx.pop()
			if !ok {
				ctx.restore(snap)
				return 0, false
			}
			pos = next
		}
		return pos, true

	case *pattern.Optional:
		snap := ctx.save()
		if next, ok := m.Match(n.Child, input, offset, ctx); ok {
			return next, true
		}
		ctx.restore(snap)
		return offset, true

	case *pattern.Choice:
		for _, alt := range n.Alternatives {
			snap := ctx.save()
			if next, ok := m.Match(alt.Node, input, offset, ctx); ok {
				ctx.AddMark(alt.Mark)
				return next, true
			}
			ctx.restore(snap)
		}
		return 0, false

	case *pattern.Regex:
		capture, ok := m.matchRegex(n, input, offset)
		if !ok {
			return 0, false
		}
		ctx.Captures = append(ctx.Captures, capture)
		return offset + len(capture.Text()), true

	case *pattern.Slot:
		return m.matchSlot(n, input, offset, ctx)

	default:
		panic(fmt.Sprintf("match: unknown node type %T", node))
	}
}

// matchText matches a literal. A whitespace run in the literal matches one
// or more whitespace characters, or none at either end of the input or right
// after whitespace that was already consumed.
func (m *Matcher) matchText(lit, input string, offset int) (int, bool) {
	i, j := offset, 0
	for j < len(lit) {
		lr, lsize := utf8.DecodeRuneInString(lit[j:])
		if unicode.IsSpace(lr) {
			j = skipSpace(lit, j)
			k := skipSpace(input, i)
			if k == i && i < len(input) && !afterSpace(input, i) {
				return 0, false
			}
			i = k
			continue
		}
		if i >= len(input) {
			return 0, false
		}
		ir, isize := utf8.DecodeRuneInString(input[i:])
		if !m.sameRune(lr, ir) {
			return 0, false
		}
		i += isize
		j += lsize
	}
	return i, true
}

func (m *Matcher) sameRune(a, b rune) bool {
	if a == b {
		return true
	}
	if m.caseSensitive {
		return false
	}
	return unicode.ToLower(a) == unicode.ToLower(b) || unicode.ToUpper(a) == unicode.ToUpper(b)
}

func (m *Matcher) matchRegex(n *pattern.Regex, input string, offset int) (Capture, bool) {
	re := n.Regexp()
	if re == nil {
		return Capture{}, false
	}
	found, err := re.FindStringMatch(input[offset:])
	if err != nil {
		m.logger.Debug("regex match aborted", zap.String("regex", n.Source), zap.Error(err))
		return Capture{}, false
	}
	if found == nil {
		return Capture{}, false
	}

	groups := found.Groups()
	capture := Capture{Offset: offset, Groups: make([]string, len(groups))}
	for i, g := range groups {
		capture.Groups[i] = g.String()
		if g.Name != strconv.Itoa(i) {
			if capture.names == nil {
				capture.names = make(map[string]int)
			}
			capture.names[g.Name] = i
		}
	}
	return capture, true
}

// matchSlot offers the resolver the candidate texts that end where the rest
// of the pattern could begin, nearest first, and keeps the first accepted one.
func (m *Matcher) matchSlot(n *pattern.Slot, input string, offset int, ctx *Context) (int, bool) {
	if m.resolver != nil && offset < len(input) && !startsWithSpace(input, offset) {
		conts := continuations(ctx.follow)
		req := Request{
			Types:      n.Types,
			Nullable:   n.Nullable,
			Acceptance: n.Acceptance,
			Time:       n.Time,
			Depth:      ctx.Depth,
		}
		for end := offset; end < len(input); {
			_, size := utf8.DecodeRuneInString(input[end:])
			end += size
			if endsWithSpace(input[offset:end]) || !m.continues(conts, input, end) {
				continue
			}
			candidate := input[offset:end]
			res, ok := m.resolver.Resolve(candidate, req)
			if !ok {
				continue
			}
			length := res.Length
			if length <= 0 || length > len(candidate) {
				length = len(candidate)
			}
			m.logger.Debug("slot filled",
				zap.Stringer("slot", n),
				zap.String("text", candidate[:length]),
				zap.Int("offset", offset))
			ctx.Values = append(ctx.Values, res.Value)
			return offset + length, true
		}
	}
	if n.Nullable {
		ctx.Values = append(ctx.Values, nil)
		return offset, true
	}
	return 0, false
}

func skipSpace(s string, i int) int {
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += size
	}
	return i
}

// afterSpace reports whether offset i follows whitespace or starts s.
func afterSpace(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return unicode.IsSpace(r)
}

func startsWithSpace(s string, i int) bool {
	r, _ := utf8.DecodeRuneInString(s[i:])
	return unicode.IsSpace(r)
}

func endsWithSpace(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return unicode.IsSpace(r)
}
