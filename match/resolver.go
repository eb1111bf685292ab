package match

import (
	"github.com/gnolang/skpat/pattern"
	"github.com/gnolang/skpat/types"
)

// Request describes the slot a piece of text is offered to.
type Request struct {
	Types      []types.PatternType
	Nullable   bool
	Acceptance pattern.Acceptance
	Time       pattern.TimeContext
	Depth      int
}

// Accepts reports whether t is one of the requested types, and whether the
// slot takes a single value of it.
func (r Request) Accepts(t *types.Type) (accepted, single bool) {
	for _, pt := range r.Types {
		if pt.Type != nil && pt.Type.Name() == t.Name() {
			return true, pt.Single
		}
	}
	return false, false
}

// Resolution is what a resolver made of a slot's text.
type Resolution struct {
	// Length is the number of bytes of the offered text that were used.
	// Zero means all of it.
	Length int
	Value  any
}

// Resolver turns the text offered to a slot into a value. The matcher treats
// the value as opaque.
type Resolver interface {
	Resolve(text string, req Request) (Resolution, bool)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(text string, req Request) (Resolution, bool)

func (f ResolverFunc) Resolve(text string, req Request) (Resolution, bool) {
	return f(text, req)
}
