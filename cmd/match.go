package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/skpat/formatter"
	"github.com/gnolang/skpat/match"
	"github.com/gnolang/skpat/syntax"
)

var (
	matchOffset     int
	matchJsonOutput bool
)

var matchCmd = &cobra.Command{
	Use:   "match <pattern> <input>",
	Short: "Match one pattern against an input",
	Long: `Matches the pattern at --offset without requiring the rest of the input to be
consumed. Slots are filled by literals and by the expressions of the definition file.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, input := args[0], args[1]
		if matchOffset < 0 || matchOffset > len(input) {
			return fmt.Errorf("offset %d is outside the input", matchOffset)
		}

		e, err := loadEngineOrDefaults()
		if err != nil {
			return err
		}
		node, err := e.Compiler().Compile(src)
		if err != nil {
			return err
		}

		res, ok := e.Match(node, input, matchOffset)
		logger.Debug("match", zap.String("pattern", src), zap.Bool("matched", ok))

		out := cmd.OutOrStdout()
		if matchJsonOutput {
			d, err := json.Marshal(newMatchOutput(src, res))
			if err != nil {
				return fmt.Errorf("error marshalling result to JSON: %w", err)
			}
			fmt.Fprintln(out, string(d))
		} else {
			fmt.Fprint(out, formatter.Match(src, input, matchOffset, res))
		}

		if !ok {
			return errNoMatch
		}
		return nil
	},
}

func init() {
	matchCmd.Flags().IntVar(&matchOffset, "offset", 0, "Byte offset in the input to match at")
	matchCmd.Flags().BoolVar(&matchJsonOutput, "json", false, "Output the result in JSON format")
}

type matchOutput struct {
	Pattern  string   `json:"pattern"`
	Matched  bool     `json:"matched"`
	End      int      `json:"end"`
	Mark     int      `json:"mark"`
	Values   []string `json:"values,omitempty"`
	Captures []string `json:"captures,omitempty"`
}

func newMatchOutput(src string, res *match.ParseResult) matchOutput {
	o := matchOutput{Pattern: src}
	if res == nil {
		return o
	}
	o.Matched = true
	o.End = res.End
	o.Mark = res.Mark
	for _, v := range res.Values {
		o.Values = append(o.Values, syntax.Describe(v))
	}
	for _, c := range res.Captures {
		o.Captures = append(o.Captures, c.Text())
	}
	return o
}
