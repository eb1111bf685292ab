package formatter

import (
	"fmt"
	"strings"

	"github.com/gnolang/skpat/pattern"
)

// Tree renders a compiled pattern one node per line, children indented
// under their parent.
func Tree(node pattern.Node) string {
	var sb strings.Builder
	writeNode(&sb, node, 0)
	return sb.String()
}

func writeNode(sb *strings.Builder, node pattern.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	sb.WriteString(indent)
	sb.WriteString(nameStyle.Sprint(node.Type().String()))

	switch n := node.(type) {
	case *pattern.Text:
		sb.WriteString(" " + patternStyle.Sprintf("%q", n.Content) + "\n")
	case *pattern.Regex:
		sb.WriteString(" " + patternStyle.Sprint(n.Source) + "\n")
	case *pattern.Slot:
		sb.WriteString(" " + patternStyle.Sprint(slotTypes(n)))
		for _, flag := range slotFlags(n) {
			sb.WriteString(" " + valueStyle.Sprint(flag))
		}
		sb.WriteString("\n")
	case *pattern.Sequence:
		sb.WriteString("\n")
		for _, child := range n.Children {
			writeNode(sb, child, depth+1)
		}
	case *pattern.Optional:
		sb.WriteString("\n")
		writeNode(sb, n.Child, depth+1)
	case *pattern.Choice:
		sb.WriteString("\n")
		for _, alt := range n.Alternatives {
			if alt.Mark != 0 {
				sb.WriteString(indent + "  " + valueStyle.Sprintf("mark %d", alt.Mark) + "\n")
				writeNode(sb, alt.Node, depth+2)
				continue
			}
			writeNode(sb, alt.Node, depth+1)
		}
	default:
		sb.WriteString(fmt.Sprintf(" %s\n", node))
	}
}

func slotTypes(n *pattern.Slot) string {
	names := make([]string, len(n.Types))
	for i, pt := range n.Types {
		names[i] = pt.String()
	}
	return strings.Join(names, "/")
}

func slotFlags(n *pattern.Slot) []string {
	var flags []string
	if n.Nullable {
		flags = append(flags, "nullable")
	}
	if n.Acceptance != pattern.AcceptBoth {
		flags = append(flags, n.Acceptance.String()+" only")
	}
	if n.Time != pattern.TimeNone {
		flags = append(flags, n.Time.String())
	}
	return flags
}
