package pattern

import (
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/gnolang/skpat/types"
)

// NodeType defines the different kinds of pattern nodes.
type NodeType int

const (
	NodeText NodeType = iota
	NodeSequence
	NodeOptional
	NodeChoice
	NodeRegex
	NodeSlot
)

func (t NodeType) String() string {
	switch t {
	case NodeText:
		return "text"
	case NodeSequence:
		return "sequence"
	case NodeOptional:
		return "optional"
	case NodeChoice:
		return "choice"
	case NodeRegex:
		return "regex"
	case NodeSlot:
		return "slot"
	default:
		return "unknown"
	}
}

// Node is an element of a compiled pattern tree. Nodes are never modified
// after compilation, so one tree may serve any number of match attempts.
type Node interface {
	Type() NodeType
	// String renders the node back into pattern syntax.
	String() string
}

var (
	_ Node = (*Text)(nil)
	_ Node = (*Sequence)(nil)
	_ Node = (*Optional)(nil)
	_ Node = (*Choice)(nil)
	_ Node = (*Regex)(nil)
	_ Node = (*Slot)(nil)
)

// Text matches its content verbatim. Empty text matches without consuming.
type Text struct {
	Content string
}

func (t *Text) Type() NodeType { return NodeText }
func (t *Text) String() string { return escapeText(t.Content) }

// Sequence matches its children one after the other.
type Sequence struct {
	Children []Node
}

func (s *Sequence) Type() NodeType { return NodeSequence }
func (s *Sequence) String() string {
	var sb strings.Builder
	for _, child := range s.Children {
		sb.WriteString(child.String())
	}
	return sb.String()
}

// Optional matches its child or nothing.
type Optional struct {
	Child Node
}

func (o *Optional) Type() NodeType { return NodeOptional }
func (o *Optional) String() string { return "[" + guardMark(o.Child.String()) + "]" }

// Alternative is one branch of a Choice together with the parse mark it
// contributes when taken.
type Alternative struct {
	Node Node
	Mark int
}

// Choice matches the first of its alternatives that matches.
type Choice struct {
	Alternatives []Alternative
}

func (c *Choice) Type() NodeType { return NodeChoice }
func (c *Choice) String() string {
	parts := make([]string, len(c.Alternatives))
	for i, alt := range c.Alternatives {
		s := alt.Node.String()
		if alt.Mark != 0 {
			parts[i] = strconv.Itoa(alt.Mark) + markSeparator + s
		} else {
			parts[i] = guardMark(s)
		}
	}
	return "(" + strings.Join(parts, "|") + ")"
}

// Regex matches a regular expression anchored at the current input offset.
type Regex struct {
	Source string
	re     *regexp2.Regexp
}

func (r *Regex) Type() NodeType { return NodeRegex }
func (r *Regex) String() string { return "<" + r.Source + ">" }

// Regexp returns the compiled, start-anchored expression.
func (r *Regex) Regexp() *regexp2.Regexp { return r.re }

// Acceptance restricts what may fill a slot.
type Acceptance int

const (
	AcceptBoth Acceptance = iota
	AcceptLiterals
	AcceptExpressions
)

func (a Acceptance) String() string {
	switch a {
	case AcceptBoth:
		return "both"
	case AcceptLiterals:
		return "literals"
	case AcceptExpressions:
		return "expressions"
	default:
		return "unknown"
	}
}

// TimeContext is the time state a slot's value is read in.
type TimeContext int

const (
	TimeNone TimeContext = iota
	TimePast
	TimeFuture
)

func (t TimeContext) String() string {
	switch t {
	case TimeNone:
		return "none"
	case TimePast:
		return "past"
	case TimeFuture:
		return "future"
	default:
		return "unknown"
	}
}

// Slot is a typed placeholder filled by a literal or an expression.
type Slot struct {
	Types      []types.PatternType
	Nullable   bool
	Time       TimeContext
	Acceptance Acceptance

	// spellings are the type references as written, kept for String.
	spellings []string
}

func (s *Slot) Type() NodeType { return NodeSlot }

func (s *Slot) String() string {
	var sb strings.Builder
	sb.WriteByte('%')
	if s.Nullable {
		sb.WriteByte('-')
	}
	switch s.Acceptance {
	case AcceptExpressions:
		sb.WriteByte('~')
	case AcceptLiterals:
		sb.WriteByte('*')
	}
	for i, pt := range s.Types {
		if i > 0 {
			sb.WriteByte('/')
		}
		if i < len(s.spellings) {
			sb.WriteString(s.spellings[i])
		} else if pt.Type != nil {
			sb.WriteString(pt.Type.Name())
		}
	}
	switch s.Time {
	case TimeFuture:
		sb.WriteString("@1")
	case TimePast:
		sb.WriteString("@-1")
	}
	sb.WriteByte('%')
	return sb.String()
}

const specialChars = `\[]()<>%|`

func escapeText(s string) string {
	if !strings.ContainsAny(s, specialChars) {
		return s
	}
	var sb strings.Builder
	for _, r := range s {
		if strings.ContainsRune(specialChars, r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// guardMark escapes the separator of a serialized branch that would otherwise
// read back as a parse mark prefix.
func guardMark(s string) string {
	if _, _, ok := splitMark(s); !ok {
		return s
	}
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i] + `\` + s[i:]
}
