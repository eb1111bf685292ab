package match

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/skpat/pattern"
	"github.com/gnolang/skpat/types"
)

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) Resolve(text string, req Request) (Resolution, bool) {
	args := m.Called(text, req)
	return args.Get(0).(Resolution), args.Bool(1)
}

// numbers resolves plain decimal numbers.
var numbers = ResolverFunc(func(text string, _ Request) (Resolution, bool) {
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Resolution{}, false
	}
	return Resolution{Value: f}, true
})

func newCompiler(t *testing.T) *pattern.Compiler {
	t.Helper()
	r := types.NewRegistry()
	require.NoError(t, types.RegisterDefaults(r))
	return pattern.NewCompiler(r)
}

func TestMatch_Literals(t *testing.T) {
	t.Parallel()
	c := newCompiler(t)
	m := New(numbers)

	tests := []struct {
		name      string
		pattern   string
		input     string
		wantMatch bool
		wantEnd   int
	}{
		{name: "plain text", pattern: "pattern", input: "pattern", wantMatch: true, wantEnd: 7},
		{name: "leading substring", pattern: "pattern", input: "pattern and more", wantMatch: true, wantEnd: 7},
		{name: "case insensitive", pattern: "pattern", input: "PatTern", wantMatch: true, wantEnd: 7},
		{name: "too short", pattern: "pattern", input: "patter", wantMatch: false},
		{name: "optional skipped", pattern: "pattern [with optional]", input: "pattern", wantMatch: true, wantEnd: 7},
		{name: "optional taken", pattern: "pattern [with optional]", input: "pattern with optional", wantMatch: true, wantEnd: 21},
		{name: "inner optional skipped", pattern: "pattern [with [another] optional]", input: "pattern with optional", wantMatch: true, wantEnd: 21},
		{name: "inner optional taken", pattern: "pattern [with [another] optional]", input: "pattern with another optional", wantMatch: true, wantEnd: 29},
		{name: "first choice", pattern: "you must (choose|this|or this)", input: "you must choose", wantMatch: true, wantEnd: 15},
		{name: "second choice", pattern: "you must (choose|this|or this)", input: "you must this", wantMatch: true, wantEnd: 13},
		{name: "third choice", pattern: "you must (choose|this|or this)", input: "you must or this", wantMatch: true, wantEnd: 16},
		{name: "no choice fits", pattern: "you must (choose|this|or this)", input: "you must not", wantMatch: false},
		{name: "whitespace runs collapse", pattern: "a b", input: "a \t  b", wantMatch: true, wantEnd: 6},
		{name: "whitespace is required between words", pattern: "a b", input: "ab", wantMatch: false},
		{name: "leading optional skipped", pattern: "[the] player", input: "player", wantMatch: true, wantEnd: 6},
		{name: "empty pattern", pattern: "", input: "anything", wantMatch: true, wantEnd: 0},
		{name: "non ascii", pattern: "café [crème]", input: "CAFÉ crème", wantMatch: true, wantEnd: len("CAFÉ crème")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := c.MustCompile(tt.pattern)
			end, ok := m.Match(node, tt.input, 0, NewContext())
			assert.Equal(t, tt.wantMatch, ok)
			if tt.wantMatch {
				assert.Equal(t, tt.wantEnd, end)
			}
		})
	}
}

func TestMatch_CaseSensitive(t *testing.T) {
	t.Parallel()
	c := newCompiler(t)
	m := New(numbers, WithCaseSensitive(true))

	_, ok := m.Match(c.MustCompile("pattern"), "Pattern", 0, NewContext())
	assert.False(t, ok)
	end, ok := m.Match(c.MustCompile("pattern"), "pattern", 0, NewContext())
	assert.True(t, ok)
	assert.Equal(t, 7, end)
}

func TestMatch_Offset(t *testing.T) {
	t.Parallel()
	c := newCompiler(t)
	m := New(numbers)
	node := c.MustCompile("world")

	end, ok := m.Match(node, "hello world", 6, NewContext())
	assert.True(t, ok)
	assert.Equal(t, 11, end)

	_, ok = m.Match(node, "hello world", 12, NewContext())
	assert.False(t, ok)
	_, ok = m.Match(node, "hello world", -1, NewContext())
	assert.False(t, ok)
}

func TestMatch_ParseMark(t *testing.T) {
	t.Parallel()
	c := newCompiler(t)
	m := New(numbers)

	tests := []struct {
		name      string
		pattern   string
		input     string
		wantMatch bool
		wantMark  int
	}{
		{name: "first marked choice", pattern: "I choose (1¦this|2¦that)", input: "I choose this", wantMatch: true, wantMark: 1},
		{name: "second marked choice", pattern: "I choose (1¦this|2¦that)", input: "I choose that", wantMatch: true, wantMark: 2},
		{name: "marks combine by xor", pattern: "(1¦a|3¦b) (2¦c|d)", input: "b c", wantMatch: true, wantMark: 3 ^ 2},
		{name: "same mark twice cancels", pattern: "(1¦a) (1¦b)", input: "a b", wantMatch: true, wantMark: 0},
		{name: "marked optional taken", pattern: "[1¦unix] timestamp", input: "unix timestamp", wantMatch: true, wantMark: 1},
		{name: "marked optional skipped", pattern: "[1¦unix] timestamp", input: "timestamp", wantMatch: true, wantMark: 0},
		{name: "no branch fits", pattern: "(4¦a x|b)", input: "a", wantMatch: false},
		{name: "colon stays literal in choice", pattern: "alarm at (7:30|noon)", input: "alarm at 7:30", wantMatch: true, wantMark: 0},
		{name: "colon stays literal in optional", pattern: "open [24:7]", input: "open 24:7", wantMatch: true, wantMark: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, ok := m.Parse(c.MustCompile(tt.pattern), tt.input)
			require.Equal(t, tt.wantMatch, ok)
			if !tt.wantMatch {
				return
			}
			assert.Equal(t, tt.wantMark, res.Mark)
			assert.Equal(t, len(tt.input), res.End)
		})
	}
}

func TestMatch_Regex(t *testing.T) {
	t.Parallel()
	c := newCompiler(t)
	m := New(numbers)

	res, ok := m.Parse(c.MustCompile("<\\d+> apples"), "12 apples")
	require.True(t, ok)
	require.Len(t, res.Captures, 1)
	assert.Equal(t, "12", res.Captures[0].Text())
	assert.Equal(t, 0, res.Captures[0].Offset)

	res, ok = m.Parse(c.MustCompile("id <(?<prefix>[a-z]+)-(\\d+)>"), "id abc-42")
	require.True(t, ok)
	require.Len(t, res.Captures, 1)
	capture := res.Captures[0]
	assert.Equal(t, 3, capture.Offset)
	assert.Equal(t, []string{"abc-42", "42", "abc"}, capture.Groups)
	prefix, ok := capture.Named("prefix")
	assert.True(t, ok)
	assert.Equal(t, "abc", prefix)
	_, ok = capture.Named("missing")
	assert.False(t, ok)

	_, ok = m.Match(c.MustCompile("<\\d+>"), "x12", 0, NewContext())
	assert.False(t, ok, "regex must be anchored at the offset")
}

func TestMatch_SlowRegex(t *testing.T) {
	t.Parallel()
	r := types.NewRegistry()
	require.NoError(t, types.RegisterDefaults(r))
	const expr = "<(x+x+)+y|.*>"

	// Backtracks for a few hundred milliseconds before falling back to ".*".
	res, ok := New(numbers).Parse(pattern.NewCompiler(r).MustCompile(expr), strings.Repeat("x", 22))
	require.True(t, ok, "an unbounded regex runs to completion")
	assert.Equal(t, 22, res.End)

	bounded := pattern.NewCompiler(r, pattern.WithRegexTimeout(time.Millisecond)).MustCompile(expr)
	_, ok = New(numbers).Parse(bounded, strings.Repeat("x", 30))
	assert.False(t, ok, "a regex past its bound does not match")
}

func TestMatch_Slots(t *testing.T) {
	t.Parallel()
	c := newCompiler(t)
	m := New(numbers)

	tests := []struct {
		name       string
		pattern    string
		input      string
		wantMatch  bool
		wantValues []any
	}{
		{name: "slot at end", pattern: "say %number% [!]", input: "say 2", wantMatch: true, wantValues: []any{2.0}},
		{name: "slot before optional", pattern: "say %number% [!]", input: "say 2 !", wantMatch: true, wantValues: []any{2.0}},
		{name: "slot before text", pattern: "%number% apples", input: "12 apples", wantMatch: true, wantValues: []any{12.0}},
		{name: "slot bounded by choice", pattern: "%number% (plus|minus) %number%", input: "1.5 minus 3", wantMatch: true, wantValues: []any{1.5, 3.0}},
		{name: "adjacent slots", pattern: "%number% %number%", input: "1 2", wantMatch: true, wantValues: []any{1.0, 2.0}},
		{name: "touching slots take shortest first", pattern: "%number%%number%", input: "123", wantMatch: true, wantValues: []any{1.0, 23.0}},
		{name: "slot bounded by regex", pattern: "%number%<[a-z]+>", input: "42abc", wantMatch: true, wantValues: []any{42.0}},
		{name: "unresolvable text", pattern: "say %number%", input: "say hello", wantMatch: false},
		{name: "nullable slot left empty", pattern: "%-number% apples", input: "apples", wantMatch: true, wantValues: []any{nil}},
		{name: "nullable slot filled", pattern: "%-number% apples", input: "3 apples", wantMatch: true, wantValues: []any{3.0}},
		{name: "slot text may not start with space", pattern: "say%number%", input: "say 2", wantMatch: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, ok := m.Parse(c.MustCompile(tt.pattern), tt.input)
			require.Equal(t, tt.wantMatch, ok)
			if tt.wantMatch {
				assert.Equal(t, tt.wantValues, res.Values)
			}
		})
	}
}

func TestMatch_SlotRequest(t *testing.T) {
	t.Parallel()
	c := newCompiler(t)

	resolver := new(mockResolver)
	resolver.On("Resolve", "7", mock.MatchedBy(func(req Request) bool {
		return req.Nullable && req.Acceptance == pattern.AcceptLiterals &&
			req.Time == pattern.TimeFuture && req.Depth == 2 &&
			len(req.Types) == 2 && req.Types[1].Type.Name() == types.String && !req.Types[1].Single
	})).Return(Resolution{Value: "seven"}, true)

	m := New(resolver)
	ctx := NewContext()
	ctx.Depth = 2
	res, ok := m.MatchAll(c.MustCompile("take %-*number/strings@1%"), "take 7", ctx)
	require.True(t, ok)
	assert.Equal(t, []any{"seven"}, res.Values)
	resolver.AssertExpectations(t)
}

func TestMatch_SlotCandidatesNearestFirst(t *testing.T) {
	t.Parallel()
	c := newCompiler(t)

	resolver := new(mockResolver)
	resolver.On("Resolve", `"a`, mock.Anything).Return(Resolution{}, false).Once()
	resolver.On("Resolve", `"a to b"`, mock.Anything).Return(Resolution{Value: "a to b"}, true).Once()
	resolver.On("Resolve", "5", mock.Anything).Return(Resolution{Value: 5.0}, true).Once()

	m := New(resolver)
	res, ok := m.Parse(c.MustCompile("send %string% to %number%"), `send "a to b" to 5`)
	require.True(t, ok)
	assert.Equal(t, []any{"a to b", 5.0}, res.Values)
	resolver.AssertNumberOfCalls(t, "Resolve", 3)
	resolver.AssertExpectations(t)
}

func TestMatch_PartialResolution(t *testing.T) {
	t.Parallel()
	c := newCompiler(t)

	resolver := ResolverFunc(func(text string, _ Request) (Resolution, bool) {
		return Resolution{Length: 1, Value: text[:1]}, true
	})
	m := New(resolver)
	end, ok := m.Match(c.MustCompile("%string%"), "abc", 0, NewContext())
	assert.True(t, ok)
	assert.Equal(t, 1, end)
}

func TestMatch_NilResolver(t *testing.T) {
	t.Parallel()
	c := newCompiler(t)
	m := New(nil)

	_, ok := m.Parse(c.MustCompile("say %number%"), "say 2")
	assert.False(t, ok)

	res, ok := m.Parse(c.MustCompile("say [%-number%]"), "say")
	require.True(t, ok)
	assert.Equal(t, []any{nil}, res.Values)
}

func TestMatch_Rollback(t *testing.T) {
	t.Parallel()
	c := newCompiler(t)
	m := New(numbers)

	node := c.MustCompile("(1¦%number% <[a-z]+> foo|2¦%number% <[a-z]+> bar)")
	res, ok := m.Parse(node, "1 abc bar")
	require.True(t, ok)
	assert.Equal(t, []any{1.0}, res.Values)
	require.Len(t, res.Captures, 1)
	assert.Equal(t, "abc", res.Captures[0].Text())
	assert.Equal(t, 2, res.Mark)

	ctx := NewContext()
	ctx.Values = append(ctx.Values, "kept")
	ctx.Mark = 8
	_, ok = m.Match(c.MustCompile("%number% <[a-z]+> foo"), "1 abc bar", 0, ctx)
	assert.False(t, ok)
	assert.Equal(t, []any{"kept"}, ctx.Values)
	assert.Empty(t, ctx.Captures)
	assert.Equal(t, 8, ctx.Mark)
}

func TestMatch_MatchAllRequiresWholeInput(t *testing.T) {
	t.Parallel()
	c := newCompiler(t)
	m := New(numbers)
	node := c.MustCompile("pattern")

	_, ok := m.Parse(node, "pattern extra")
	assert.False(t, ok)

	res, ok := m.Parse(node, "pattern  ")
	require.True(t, ok)
	assert.Equal(t, 7, res.End)
	assert.Same(t, node, res.Node)
}

func TestMatch_Deterministic(t *testing.T) {
	t.Parallel()
	c := newCompiler(t)
	m := New(numbers)
	node := c.MustCompile("[the] (1¦sum|2¦difference) of %number% and %number% [<!+>]")
	input := "the difference of 4 and 2 !!"

	ctx := NewContext()
	first, ok := m.MatchAll(node, input, ctx)
	require.True(t, ok)

	ctx.Reset()
	second, ok := m.MatchAll(node, input, ctx)
	require.True(t, ok)

	assert.Equal(t, first.End, second.End)
	assert.Equal(t, first.Mark, second.Mark)
	assert.Equal(t, first.Values, second.Values)
	assert.Equal(t, first.Captures, second.Captures)
	assert.Equal(t, 2, first.Mark)
	assert.Equal(t, []any{4.0, 2.0}, first.Values)
}

type bogusNode struct{}

func (bogusNode) Type() pattern.NodeType { return pattern.NodeType(99) }
func (bogusNode) String() string         { return "?" }

func TestMatch_UnknownNodePanics(t *testing.T) {
	t.Parallel()
	m := New(numbers)
	assert.Panics(t, func() {
		m.Match(bogusNode{}, "x", 0, NewContext())
	})
}
