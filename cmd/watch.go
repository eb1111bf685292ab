package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/skpat/formatter"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reload the definition file on change and rerun its cases",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEngine()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		out := cmd.OutOrStdout()
		report := func() {
			results, err := e.Check(ctx, nil)
			if err != nil {
				logger.Error("Error running cases", zap.Error(err))
				return
			}
			fmt.Fprint(out, formatter.Cases(results))
		}

		err = e.Watch(ctx, cfgFile, func(err error) {
			if err != nil {
				fmt.Fprintf(out, "reload failed: %v\n", err)
				return
			}
			fmt.Fprintf(out, "reloaded %s: %d syntaxes\n", cfgFile, len(e.Syntaxes()))
			report()
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "watching %s\n", cfgFile)
		report()
		<-ctx.Done()
		return nil
	},
}
