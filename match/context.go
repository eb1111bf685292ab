package match

import (
	"github.com/gnolang/skpat/pattern"
)

// Capture is the result of an embedded regular expression match.
type Capture struct {
	Offset int      // byte offset of the match in the input
	Groups []string // group 0 is the whole match; groups that did not participate are empty
	names  map[string]int
}

// Text returns the whole matched text.
func (c Capture) Text() string {
	if len(c.Groups) == 0 {
		return ""
	}
	return c.Groups[0]
}

// Named returns the text of a named group.
func (c Capture) Named(name string) (string, bool) {
	i, ok := c.names[name]
	if !ok {
		return "", false
	}
	return c.Groups[i], true
}

// Context is the mutable state of one match attempt. It must not be shared
// between concurrent attempts.
type Context struct {
	Values   []any
	Captures []Capture
	Mark     int
	// Depth is the nesting level of expression resolution this attempt runs in.
	Depth int

	// follow holds, innermost last, the siblings still to be matched after
	// the node being matched in each enclosing sequence.
	follow [][]pattern.Node
}

func NewContext() *Context {
	return &Context{}
}

// Reset clears the context for a new attempt, keeping Depth.
func (c *Context) Reset() {
	c.Values = c.Values[:0]
	c.Captures = c.Captures[:0]
	c.Mark = 0
	c.follow = c.follow[:0]
}

// AddMark combines mark into the parse mark.
func (c *Context) AddMark(mark int) {
	c.Mark ^= mark
}

type snapshot struct {
	values   int
	captures int
	mark     int
}

func (c *Context) save() snapshot {
	return snapshot{values: len(c.Values), captures: len(c.Captures), mark: c.Mark}
}

func (c *Context) restore(s snapshot) {
	clear(c.Values[s.values:])
	c.Values = c.Values[:s.values]
	c.Captures = c.Captures[:s.captures]
	c.Mark = s.mark
}

func (c *Context) push(siblings []pattern.Node) {
	c.follow = append(c.follow, siblings)
}

func (c *Context) pop() {
	c.follow = c.follow[:len(c.follow)-1]
}

// Result freezes the context into a ParseResult for node.
func (c *Context) Result(node pattern.Node, end int) *ParseResult {
	res := &ParseResult{
		Node: node,
		Mark: c.Mark,
		End:  end,
	}
	if len(c.Values) > 0 {
		res.Values = append([]any(nil), c.Values...)
	}
	if len(c.Captures) > 0 {
		res.Captures = append([]Capture(nil), c.Captures...)
	}
	return res
}

// ParseResult is the outcome of a successful match.
type ParseResult struct {
	Node     pattern.Node
	Captures []Capture
	Mark     int
	// Values holds one entry per slot filled, in pattern order.
	Values []any
	// End is the input offset the match stopped at.
	End int
}
