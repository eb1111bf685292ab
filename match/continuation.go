package match

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/gnolang/skpat/pattern"
)

type continuationKind int

const (
	contLeaf continuationKind = iota // a text or regex node
	contAny                          // a following slot: any non-blank text
	contEnd                          // the end of the pattern: only whitespace may remain
)

// continuation is one way the rest of a pattern can begin after a slot.
type continuation struct {
	kind continuationKind
	node pattern.Node
}

// continuations flattens the follow stack into the set of things that may
// come right after the node being matched.
func continuations(follow [][]pattern.Node) []continuation {
	var out []continuation
	for i := len(follow) - 1; i >= 0; i-- {
		leaves, open := firstLeaves(follow[i])
		out = append(out, leaves...)
		if !open {
			return out
		}
	}
	return append(out, continuation{kind: contEnd})
}

// firstLeaves returns the leaves that can begin nodes. open reports whether
// nodes can be passed over without consuming anything that bounds a slot.
func firstLeaves(nodes []pattern.Node) (leaves []continuation, open bool) {
	for _, node := range nodes {
		l, o := leavesOf(node)
		leaves = append(leaves, l...)
		if !o {
			return leaves, false
		}
	}
	return leaves, true
}

func leavesOf(node pattern.Node) ([]continuation, bool) {
	switch n := node.(type) {
	case *pattern.Text:
		if strings.TrimSpace(n.Content) == "" {
			return nil, true
		}
		return []continuation{{kind: contLeaf, node: n}}, false

	case *pattern.Regex:
		return []continuation{{kind: contLeaf, node: n}}, false

	case *pattern.Slot:
		return []continuation{{kind: contAny}}, n.Nullable

	case *pattern.Sequence:
		return firstLeaves(n.Children)

	case *pattern.Optional:
		leaves, _ := leavesOf(n.Child)
		return leaves, true

	case *pattern.Choice:
		var (
			leaves []continuation
			open   bool
		)
		for _, alt := range n.Alternatives {
			l, o := leavesOf(alt.Node)
			leaves = append(leaves, l...)
			open = open || o
		}
		return leaves, open

	default:
		panic(fmt.Sprintf("match: unknown node type %T", node))
	}
}

// continues reports whether any continuation can begin at offset, after
// optional whitespace.
func (m *Matcher) continues(conts []continuation, input string, offset int) bool {
	k := skipSpace(input, offset)
	for _, c := range conts {
		switch c.kind {
		case contEnd:
			if k == len(input) {
				return true
			}
		case contAny:
			if k < len(input) {
				return true
			}
		case contLeaf:
			switch n := c.node.(type) {
			case *pattern.Text:
				if _, ok := m.matchText(strings.TrimLeftFunc(n.Content, unicode.IsSpace), input, k); ok {
					return true
				}
			case *pattern.Regex:
				if _, ok := m.matchRegex(n, input, k); ok {
					return true
				}
			}
		}
	}
	return false
}
