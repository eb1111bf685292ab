package formatter

import (
	"fmt"
	"strings"

	"github.com/gnolang/skpat/syntax"
)

// Cases renders case outcomes followed by a summary line.
func Cases(results []syntax.CaseResult) string {
	var (
		sb     strings.Builder
		failed int
	)
	for _, r := range results {
		if r.Passed {
			sb.WriteString(successStyle.Sprint("PASS "))
			sb.WriteString(r.Case.Input + "\n")
			continue
		}
		failed++
		sb.WriteString(errorStyle.Sprint("FAIL "))
		sb.WriteString(r.Case.Input + "\n")
		sb.WriteString(lineStyle.Sprint("  = "))
		sb.WriteString(messageStyle.Sprintf("%s\n", r.Reason))
	}

	summary := fmt.Sprintf("%d passed, %d failed\n", len(results)-failed, failed)
	if failed > 0 {
		sb.WriteString(errorStyle.Sprint(summary))
	} else {
		sb.WriteString(successStyle.Sprint(summary))
	}
	return sb.String()
}
