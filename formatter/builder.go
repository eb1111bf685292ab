package formatter

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/fatih/color"

	"github.com/gnolang/skpat/match"
	"github.com/gnolang/skpat/syntax"
)

const tabWidth = 8

var (
	errorStyle   = color.New(color.FgRed, color.Bold)
	successStyle = color.New(color.FgGreen, color.Bold)
	nameStyle    = color.New(color.FgYellow, color.Bold)
	patternStyle = color.New(color.FgCyan, color.Bold)
	lineStyle    = color.New(color.FgHiBlue, color.Bold)
	messageStyle = color.New(color.FgRed, color.Bold)
	valueStyle   = color.New(color.FgGreen)
)

// reportTemplate lays out one match attempt. Every helper returns whole
// lines.
const reportTemplate = `{{header .}}{{snippet .}}{{underline .}}{{if .Matched}}{{mark .}}{{values .}}{{end}}`

var report = template.Must(template.New("report").Funcs(template.FuncMap{
	"header":    header,
	"snippet":   snippet,
	"underline": underline,
	"mark":      mark,
	"values":    values,
}).Parse(reportTemplate))

type reportData struct {
	Title   string
	Pattern string
	Input   string
	Start   int
	End     int
	Matched bool
	Mark    int
	Values  []string
}

// Result renders a parse made by the syntax engine.
func Result(input string, res *syntax.Result) string {
	if res == nil {
		return build(reportData{Title: "no syntax matched", Input: input})
	}
	return build(reportData{
		Title:   res.Syntax.Name,
		Pattern: res.Syntax.Sources[res.Pattern],
		Input:   input,
		End:     res.End,
		Matched: true,
		Mark:    res.Mark,
		Values:  describe(res.Values),
	})
}

// Match renders a single pattern matched at offset. res is nil when the
// pattern did not match.
func Match(patternSrc, input string, offset int, res *match.ParseResult) string {
	data := reportData{
		Title:   "match",
		Pattern: patternSrc,
		Input:   input,
		Start:   offset,
		End:     offset,
	}
	if res != nil {
		data.Matched = true
		data.End = res.End
		data.Mark = res.Mark
		data.Values = describe(res.Values)
		for _, c := range res.Captures {
			data.Values = append(data.Values, fmt.Sprintf("<%s>", c.Text()))
		}
	}
	return build(data)
}

func build(data reportData) string {
	var buf bytes.Buffer
	if err := report.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Error formatting result: %v", err)
	}
	return buf.String()
}

func describe(vals []any) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = syntax.Describe(v)
	}
	return out
}

// helpers used in the template

func header(d reportData) string {
	var s string
	if d.Matched {
		s = successStyle.Sprint("match: ")
	} else {
		s = errorStyle.Sprint("error: ")
	}
	s += nameStyle.Sprintf("%s\n", d.Title)
	if d.Pattern != "" {
		s += lineStyle.Sprint(" --> ")
		s += patternStyle.Sprintf("%s\n", d.Pattern)
	}
	return s
}

func snippet(d reportData) string {
	s := lineStyle.Sprint("  |\n")
	s += lineStyle.Sprint("  | ")
	s += d.Input + "\n"
	return s
}

func underline(d reportData) string {
	s := lineStyle.Sprint("  | ")
	start := visualColumn(d.Input, d.Start)
	width := visualColumn(d.Input, d.End) - start
	s += strings.Repeat(" ", start)
	if !d.Matched || width <= 0 {
		s += messageStyle.Sprint("^\n")
		if !d.Matched {
			s += lineStyle.Sprint("  = ")
			s += messageStyle.Sprint("no match\n")
		}
		return s
	}
	s += valueStyle.Sprintf("%s\n", strings.Repeat("~", width))
	return s
}

func mark(d reportData) string {
	return lineStyle.Sprint("  = ") + fmt.Sprintf("mark: %d\n", d.Mark)
}

func values(d reportData) string {
	if len(d.Values) == 0 {
		return ""
	}
	s := lineStyle.Sprint("  = ") + "values: "
	for i, v := range d.Values {
		if i > 0 {
			s += ", "
		}
		s += valueStyle.Sprint(v)
	}
	return s + "\n"
}

// visualColumn is the display column of byte offset in line, with tabs
// expanded.
func visualColumn(line string, offset int) int {
	col := 0
	for i, ch := range line {
		if i >= offset {
			break
		}
		if ch == '\t' {
			col += tabWidth - (col % tabWidth)
		} else {
			col++
		}
	}
	return col
}
