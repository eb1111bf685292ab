// Package types holds the registry of value types that typed pattern slots
// refer to by name.
package types

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/dlclark/regexp2"
)

// PluralGroup is the name of the capture group that, when it participates in
// a name-pattern match, marks the spelling as plural.
const PluralGroup = "plural"

var (
	ErrKindConflict   = errors.New("type already registered with a different kind")
	ErrInvalidPattern = errors.New("invalid type name pattern")
	ErrEmptyName      = errors.New("type name is empty")
)

// LiteralParser turns the literal spelling of a value into the value itself.
// It reports false when the text is not a literal of the type.
type LiteralParser func(text string) (any, bool)

// Type is a registered value kind. It is immutable once registered.
type Type struct {
	name    string
	kind    reflect.Type
	source  string
	re      *regexp2.Regexp
	literal LiteralParser
}

func (t *Type) Name() string           { return t.name }
func (t *Type) Kind() reflect.Type     { return t.kind }
func (t *Type) NamePattern() string    { return t.source }
func (t *Type) Literal() LiteralParser { return t.literal }

func (t *Type) String() string { return t.name }

// matchSpelling reports whether text is a spelling of the type, and if so
// whether the spelling was plural.
func (t *Type) matchSpelling(text string) (matched, plural bool) {
	m, err := t.re.FindStringMatch(text)
	if err != nil || m == nil {
		return false, false
	}
	g := m.GroupByName(PluralGroup)
	return true, g != nil && len(g.Captures) > 0
}

// PatternType is a type reference as written inside a pattern slot.
type PatternType struct {
	Type   *Type
	Single bool
}

// Equal compares by type name and plurality.
func (p PatternType) Equal(o PatternType) bool {
	if p.Single != o.Single {
		return false
	}
	if p.Type == nil || o.Type == nil {
		return p.Type == o.Type
	}
	return p.Type.name == o.Type.name
}

func (p PatternType) String() string {
	if p.Type == nil {
		return "<nil>"
	}
	if p.Single {
		return p.Type.name
	}
	return p.Type.name + "(plural)"
}

// Registry maps type names to types. Registration is expected to happen
// during setup; lookups are safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Type
	order  []*Type
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Type)}
}

// Register inserts a type under name. Registering a name again with the same
// kind replaces the previous entry; a different kind is an error.
func (r *Registry) Register(name string, kind reflect.Type, namePattern string, literal LiteralParser) (*Type, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	re, err := regexp2.Compile(`\A(?:`+namePattern+`)\z`, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, namePattern, err)
	}
	t := &Type{name: name, kind: kind, source: namePattern, re: re, literal: literal}

	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.byName[name]; ok {
		if prev.kind != kind {
			return nil, fmt.Errorf("%w: %s is %v, not %v", ErrKindConflict, name, prev.kind, kind)
		}
		for i, o := range r.order {
			if o == prev {
				r.order[i] = t
			}
		}
	} else {
		r.order = append(r.order, t)
	}
	r.byName[name] = t
	return t, nil
}

// Register is the typed form of Registry.Register: the kind is T and the
// parser, if any, yields T values.
func Register[T any](r *Registry, name, namePattern string, parse func(string) (T, bool)) (*Type, error) {
	var literal LiteralParser
	if parse != nil {
		literal = func(text string) (any, bool) {
			v, ok := parse(text)
			if !ok {
				return nil, false
			}
			return v, true
		}
	}
	return r.Register(name, reflect.TypeFor[T](), namePattern, literal)
}

// Exact returns the type registered under name.
func (r *Registry) Exact(name string) (*Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[name]
	return t, ok
}

// BySpelling returns a type whose name pattern matches text.
// When several patterns match, which one is returned is unspecified.
func (r *Registry) BySpelling(text string) (*Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.order {
		if ok, _ := t.matchSpelling(text); ok {
			return t, true
		}
	}
	return nil, false
}

// PatternType resolves a slot's type reference. An exact type name is
// singular; otherwise plurality comes from the name pattern's plural group.
// Tie order between types is unspecified, as for BySpelling.
func (r *Registry) PatternType(text string) (PatternType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.byName[text]; ok {
		return PatternType{Type: t, Single: true}, true
	}
	for _, t := range r.order {
		if ok, plural := t.matchSpelling(text); ok {
			return PatternType{Type: t, Single: !plural}, true
		}
	}
	return PatternType{}, false
}

// Types returns the registered types in registration order.
func (r *Registry) Types() []*Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Type, len(r.order))
	copy(out, r.order)
	return out
}
