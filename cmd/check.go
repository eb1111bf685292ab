package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/skpat/formatter"
	"github.com/gnolang/skpat/scanner"
	"github.com/gnolang/skpat/syntax"
)

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Run the cases of definition files",
	Long: `Runs the cases of each definition file found under the given paths, or of
the --config file when no path is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{cfgFile}
		}

		var files []scanner.FileInfo
		for _, path := range args {
			found, err := scanner.New(path).Scan()
			if err != nil {
				return fmt.Errorf("error accessing %s: %w", path, err)
			}
			files = append(files, found...)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		var (
			failed, total int
			broken        int
		)
		for _, file := range files {
			results, err := checkFile(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), file.Path)
			if err != nil {
				logger.Error("Error checking definition file", zap.String("file", file.Path), zap.Error(err))
				fmt.Fprintf(cmd.OutOrStdout(), "error: %s: %v\n", file.Path, err)
				broken++
				continue
			}
			total += len(results)
			for _, r := range results {
				if !r.Passed {
					failed++
				}
			}
		}

		switch {
		case broken > 0:
			return fmt.Errorf("%d of %d definition files could not be checked", broken, len(files))
		case failed > 0:
			return fmt.Errorf("%d of %d cases failed", failed, total)
		}
		return nil
	},
}

func checkFile(ctx context.Context, out, progress io.Writer, path string) ([]syntax.CaseResult, error) {
	cfg, err := syntax.Load(path)
	if err != nil {
		return nil, err
	}
	e, err := syntax.New(cfg, logger)
	if err != nil {
		return nil, err
	}

	cases := e.Cases()
	bar := progressbar.NewOptions(len(cases),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription(path),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	results, err := e.RunCases(ctx, cases, func(syntax.CaseResult) { _ = bar.Add(1) })
	if err != nil {
		return nil, err
	}
	_ = bar.Finish()
	fmt.Fprintln(progress)

	fmt.Fprintf(out, "%s\n%s", path, formatter.Cases(results))
	return results, nil
}
