package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/skpat/match"
	"github.com/gnolang/skpat/pattern"
	"github.com/gnolang/skpat/types"
)

func newRegistry(t *testing.T) *types.Registry {
	t.Helper()
	r := types.NewRegistry()
	require.NoError(t, types.RegisterDefaults(r))
	return r
}

func TestSplitList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    []string
		wantAnd bool
		wantOK  bool
	}{
		{"single item", "1", []string{"1"}, true, true},
		{"commas", "1, 2,3", []string{"1", "2", "3"}, true, true},
		{"and list", "1, 2 and 3", []string{"1", "2", "3"}, true, true},
		{"or list", "1 or 2", []string{"1", "2"}, false, true},
		{"conjunction is case insensitive", "1 AND 2", []string{"1", "2"}, true, true},
		{"quoted separators are kept", `"a, b" and "c"`, []string{`"a, b"`, `"c"`}, true, true},
		{"word inside item is not a separator", "band, orange", []string{"band", "orange"}, true, true},
		{"mixed conjunctions", "1 and 2 or 3", nil, false, false},
		{"empty item", "1,,2", nil, false, false},
		{"trailing comma", "1, 2,", nil, false, false},
		{"unterminated quote", `"a, b`, nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			items, and, ok := SplitList(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, tt.want, items)
			assert.Equal(t, tt.wantAnd, and)
		})
	}
}

func TestLiterals_Parse(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)

	pt := func(spelling string) types.PatternType {
		p, ok := reg.PatternType(spelling)
		require.True(t, ok, spelling)
		return p
	}

	tests := []struct {
		name     string
		input    string
		accepted []types.PatternType
		wantType string
		want     []any
		wantAnd  bool
		wantOK   bool
	}{
		{
			name:     "single number",
			input:    "2.5",
			accepted: []types.PatternType{pt("number")},
			wantType: types.Number,
			want:     []any{2.5},
			wantAnd:  true,
			wantOK:   true,
		},
		{
			name:     "first accepting type wins",
			input:    "7",
			accepted: []types.PatternType{pt("integer"), pt("number")},
			wantType: types.Integer,
			want:     []any{int64(7)},
			wantAnd:  true,
			wantOK:   true,
		},
		{
			name:     "falls through to a later type",
			input:    "yes",
			accepted: []types.PatternType{pt("number"), pt("boolean")},
			wantType: types.Boolean,
			want:     []any{true},
			wantAnd:  true,
			wantOK:   true,
		},
		{
			name:     "plural takes a list",
			input:    "1, 2 and 3",
			accepted: []types.PatternType{pt("numbers")},
			wantType: types.Number,
			want:     []any{1.0, 2.0, 3.0},
			wantAnd:  true,
			wantOK:   true,
		},
		{
			name:     "or list",
			input:    `"a" or "b"`,
			accepted: []types.PatternType{pt("texts")},
			wantType: types.String,
			want:     []any{"a", "b"},
			wantAnd:  false,
			wantOK:   true,
		},
		{
			name:     "singular rejects a list",
			input:    "1, 2",
			accepted: []types.PatternType{pt("number")},
		},
		{
			name:     "list with a bad item",
			input:    "1, x",
			accepted: []types.PatternType{pt("numbers")},
		},
		{
			name:  "no types",
			input: "1",
		},
	}

	l := NewLiterals(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			lit, ok := l.Parse(tt.input, tt.accepted)
			require.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Nil(t, lit)
				return
			}
			assert.Equal(t, tt.wantType, lit.Type.Name())
			assert.Equal(t, tt.want, lit.Values)
			assert.Equal(t, tt.wantAnd, lit.And)
			assert.Equal(t, tt.input, lit.Text)
			assert.Equal(t, len(tt.want) == 1, lit.Single())
		})
	}
}

func TestLiterals_Resolve(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	number, _ := reg.PatternType("number")

	l := NewLiterals(nil)

	res, ok := l.Resolve("42", match.Request{Types: []types.PatternType{number}})
	require.True(t, ok)
	assert.Equal(t, 2, res.Length)
	lit, ok := res.Value.(*Literal)
	require.True(t, ok)
	assert.Equal(t, []any{42.0}, lit.Values)

	_, ok = l.Resolve("42", match.Request{
		Types:      []types.PatternType{number},
		Acceptance: pattern.AcceptExpressions,
	})
	assert.False(t, ok, "expression-only slots take no literals")
}

func TestLiterals_WithMatcher(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	c := pattern.NewCompiler(reg)
	m := match.New(NewLiterals(nil))

	node := c.MustCompile("add %numbers% to %text%")
	res, ok := m.Parse(node, `add 1, 2 and 3 to "list"`)
	require.True(t, ok)
	require.Len(t, res.Values, 2)

	nums := res.Values[0].(*Literal)
	assert.Equal(t, []any{1.0, 2.0, 3.0}, nums.Values)
	str := res.Values[1].(*Literal)
	assert.Equal(t, []any{"list"}, str.Values)
}
