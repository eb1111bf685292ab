package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/skpat/formatter"
)

var compileCmd = &cobra.Command{
	Use:   "compile <pattern>...",
	Short: "Compile patterns and print their trees",
	Long: `Compiles each pattern with the types of the definition file, or the
built-in types when there is none, and prints the node tree.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEngineOrDefaults()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		var errs []error
		for _, src := range args {
			node, err := e.Compiler().Compile(src)
			if err != nil {
				logger.Debug("compile failed", zap.String("pattern", src), zap.Error(err))
				errs = append(errs, err)
				continue
			}
			fmt.Fprintf(out, "%s\n%s", node, formatter.Tree(node))
		}
		return errors.Join(errs...)
	},
}
