// Package resolve fills pattern slots with literal values of registered
// types.
package resolve

import (
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/gnolang/skpat/match"
	"github.com/gnolang/skpat/pattern"
	"github.com/gnolang/skpat/types"
)

// Literal is a constant value written directly in the input.
type Literal struct {
	Type   *types.Type
	Values []any
	// And is false for lists joined with "or".
	And  bool
	Text string
}

func (l *Literal) Single() bool { return len(l.Values) == 1 }

// Literals resolves slot text as literals of the slot's types.
type Literals struct {
	logger *zap.Logger
}

var _ match.Resolver = (*Literals)(nil)

func NewLiterals(logger *zap.Logger) *Literals {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Literals{logger: logger}
}

func (l *Literals) Resolve(text string, req match.Request) (match.Resolution, bool) {
	if req.Acceptance == pattern.AcceptExpressions {
		return match.Resolution{}, false
	}
	lit, ok := l.Parse(text, req.Types)
	if !ok {
		return match.Resolution{}, false
	}
	return match.Resolution{Length: len(text), Value: lit}, true
}

// Parse reads text as a literal of the first accepted type that takes it.
// Plural types also take lists such as "1, 2 and 3".
func (l *Literals) Parse(text string, accepted []types.PatternType) (*Literal, bool) {
	for _, pt := range accepted {
		if pt.Type == nil {
			continue
		}
		parse := pt.Type.Literal()
		if parse == nil {
			continue
		}
		if v, ok := parse(text); ok {
			return &Literal{Type: pt.Type, Values: []any{v}, And: true, Text: text}, true
		}
		if pt.Single {
			continue
		}
		items, and, ok := SplitList(text)
		if !ok || len(items) < 2 {
			continue
		}
		values, ok := parseAll(parse, items)
		if !ok {
			continue
		}
		l.logger.Debug("literal list",
			zap.String("type", pt.Type.Name()),
			zap.Int("items", len(values)))
		return &Literal{Type: pt.Type, Values: values, And: and, Text: text}, true
	}
	return nil, false
}

func parseAll(parse types.LiteralParser, items []string) ([]any, bool) {
	values := make([]any, 0, len(items))
	for _, item := range items {
		v, ok := parse(item)
		if !ok {
			return nil, false
		}
		values = append(values, v)
	}
	return values, true
}

// SplitList splits a literal list on commas and the words "and" / "or",
// ignoring separators inside double quotes. It reports whether the list is
// an "and" list, and fails on empty items or on mixed conjunctions.
func SplitList(text string) (items []string, and bool, ok bool) {
	var (
		start    int
		inQuote  bool
		sawAnd   bool
		sawOr    bool
		cutItems []string
	)
	cut := func(end int) {
		cutItems = append(cutItems, strings.TrimSpace(text[start:end]))
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '"':
			inQuote = !inQuote
		case inQuote:
		case c == ',':
			cut(i)
			start = i + 1
		case unicode.IsSpace(rune(c)):
			if w := conjunctionAt(text, i); w != "" {
				cut(i)
				if w == "and" {
					sawAnd = true
				} else {
					sawOr = true
				}
				i += len(w) + 1
				start = i + 1
			}
		}
	}
	if inQuote || (sawAnd && sawOr) {
		return nil, false, false
	}
	cut(len(text))

	for _, item := range cutItems {
		if item == "" {
			return nil, false, false
		}
	}
	return cutItems, !sawOr, true
}

// conjunctionAt returns "and" or "or" when text has " and " or " or " at i.
func conjunctionAt(text string, i int) string {
	rest := text[i+1:]
	for _, w := range []string{"and", "or"} {
		if len(rest) > len(w) && strings.EqualFold(rest[:len(w)], w) && unicode.IsSpace(rune(rest[len(w)])) {
			return w
		}
	}
	return ""
}
