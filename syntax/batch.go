package syntax

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/gnolang/skpat/resolve"
)

// ParseAll parses every input concurrently. The results are in input order,
// with nil for inputs that do not parse.
func (e *Engine) ParseAll(ctx context.Context, inputs []string) ([]*Result, error) {
	st := e.current()
	results := make([]*Result, len(inputs))
	err := fanOut(ctx, len(inputs), func(i int) {
		if res, ok := st.parse(inputs[i], 0, nil); ok {
			results[i] = res
		}
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// CaseResult is the outcome of one case.
type CaseResult struct {
	Case   Case
	Result *Result
	Passed bool
	Reason string
}

// RunCases checks cases concurrently and returns the outcomes in case order.
// done, if set, is called once per finished case from the worker goroutines.
func (e *Engine) RunCases(ctx context.Context, cases []Case, done func(CaseResult)) ([]CaseResult, error) {
	return e.current().runCases(ctx, cases, done)
}

// Check runs the cases of the loaded definitions against the syntaxes loaded
// with them, so a concurrent Reload cannot pair one with the other.
func (e *Engine) Check(ctx context.Context, done func(CaseResult)) ([]CaseResult, error) {
	st := e.current()
	return st.runCases(ctx, st.cases, done)
}

func (st *state) runCases(ctx context.Context, cases []Case, done func(CaseResult)) ([]CaseResult, error) {
	out := make([]CaseResult, len(cases))
	err := fanOut(ctx, len(cases), func(i int) {
		c := cases[i]
		res, _ := st.parse(c.Input, 0, nil)
		reason := check(c, res)
		out[i] = CaseResult{Case: c, Result: res, Passed: reason == "", Reason: reason}
		if reason != "" {
			st.logger.Debug("case failed", zap.String("input", c.Input), zap.String("reason", reason))
		}
		if done != nil {
			done(out[i])
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// fanOut runs fn for 0..n-1 on at most runtime.NumCPU goroutines.
func fanOut(ctx context.Context, n int, fn func(i int)) error {
	sem := make(chan struct{}, runtime.NumCPU())
	var wg sync.WaitGroup
	for i := range n {
		select {
		case <-ctx.Done():
			wg.Wait()
			return ctx.Err()
		case sem <- struct{}{}:
		}
		if err := ctx.Err(); err != nil {
			<-sem
			wg.Wait()
			return err
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			fn(i)
		}(i)
	}
	wg.Wait()
	return nil
}

func check(c Case, res *Result) string {
	if c.Expect == "" {
		if res != nil {
			return fmt.Sprintf("parsed as %s, expected no match", res.Syntax.Name)
		}
		return ""
	}
	if res == nil {
		return fmt.Sprintf("no match, expected %s", c.Expect)
	}
	if res.Syntax.Name != c.Expect {
		return fmt.Sprintf("parsed as %s, expected %s", res.Syntax.Name, c.Expect)
	}
	if c.Mark != nil && res.Mark != *c.Mark {
		return fmt.Sprintf("mark %d, expected %d", res.Mark, *c.Mark)
	}
	if c.Values != nil {
		got := make([]string, len(res.Values))
		for i, v := range res.Values {
			got[i] = Describe(v)
		}
		if !slices.Equal(got, c.Values) {
			return fmt.Sprintf("values %q, expected %q", got, c.Values)
		}
	}
	return ""
}

// Describe renders a slot value: literals as their values, expressions as
// name(arguments), and an empty nullable slot as "none".
func Describe(v any) string {
	switch v := v.(type) {
	case nil:
		return "none"
	case *resolve.Literal:
		if v.Single() {
			return fmt.Sprint(v.Values[0])
		}
		return fmt.Sprint(v.Values)
	case *Result:
		args := make([]string, len(v.Values))
		for i, a := range v.Values {
			args[i] = Describe(a)
		}
		return v.Syntax.Name + "(" + strings.Join(args, ", ") + ")"
	default:
		return fmt.Sprint(v)
	}
}
