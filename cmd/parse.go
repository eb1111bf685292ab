package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/skpat/formatter"
)

var parseCmd = &cobra.Command{
	Use:   "parse <input>...",
	Short: "Parse inputs against the syntaxes of the definition file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEngine()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		results, err := e.ParseAll(ctx, args)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		unmatched := 0
		for i, res := range results {
			if res == nil {
				unmatched++
				logger.Debug("input did not parse", zap.String("input", args[i]))
			}
			fmt.Fprint(out, formatter.Result(args[i], res))
		}
		if unmatched > 0 {
			return fmt.Errorf("%w: %d of %d inputs", errNoMatch, unmatched, len(args))
		}
		return nil
	},
}
