package cmd

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/skpat/syntax"
)

const (
	defaultTimeout    = 5 * time.Minute
	defaultConfigFile = ".skpat.yaml"
)

var errNoMatch = errors.New("no match")

var (
	cfgFile string
	timeout time.Duration
	verbose bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "skpat",
	Short: "skpat - compile syntax patterns and parse input against them",
	Long: `skpat compiles patterns such as "move [1¦quickly] %direction% [by %-number%]"
and matches input against them, alone or through the syntaxes of a definition file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogger()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", defaultConfigFile, "Definition file (.yaml, .yml or .toml)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", defaultTimeout, "Timeout for parsing and checking")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log matching decisions")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(watchCmd)
}

func setupLogger() error {
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
		return err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	logger, err = cfg.Build()
	return err
}

// loadEngine builds the engine from the definition file.
func loadEngine() (*syntax.Engine, error) {
	cfg, err := syntax.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	return syntax.New(cfg, logger)
}

// loadEngineOrDefaults is loadEngine, falling back to the built-in types
// alone when the definition file does not exist.
func loadEngineOrDefaults() (*syntax.Engine, error) {
	e, err := loadEngine()
	if errors.Is(err, os.ErrNotExist) {
		logger.Debug("no definition file, using built-in types", zap.String("config", cfgFile))
		return syntax.New(&syntax.Config{Name: "builtin"}, logger)
	}
	return e, err
}
