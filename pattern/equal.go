package pattern

import "fmt"

// Equal reports whether two trees have the same structure. Regular
// expressions compare by source and slots by their resolved types, not by
// the spelling used in the pattern.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Type() != b.Type() {
		return false
	}

	switch x := a.(type) {
	case *Text:
		return x.Content == b.(*Text).Content

	case *Sequence:
		y := b.(*Sequence)
		if len(x.Children) != len(y.Children) {
			return false
		}
		for i := range x.Children {
			if !Equal(x.Children[i], y.Children[i]) {
				return false
			}
		}
		return true

	case *Optional:
		return Equal(x.Child, b.(*Optional).Child)

	case *Choice:
		y := b.(*Choice)
		if len(x.Alternatives) != len(y.Alternatives) {
			return false
		}
		for i, alt := range x.Alternatives {
			if alt.Mark != y.Alternatives[i].Mark || !Equal(alt.Node, y.Alternatives[i].Node) {
				return false
			}
		}
		return true

	case *Regex:
		return x.Source == b.(*Regex).Source

	case *Slot:
		y := b.(*Slot)
		if x.Nullable != y.Nullable || x.Time != y.Time || x.Acceptance != y.Acceptance {
			return false
		}
		if len(x.Types) != len(y.Types) {
			return false
		}
		for i := range x.Types {
			if !x.Types[i].Equal(y.Types[i]) {
				return false
			}
		}
		return true

	default:
		panic(fmt.Sprintf("pattern: unknown node type %T", a))
	}
}
