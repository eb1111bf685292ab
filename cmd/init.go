package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gnolang/skpat/syntax"
)

// initCmd: skpat init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter definition file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfigurationFile(cfgFile); err != nil {
			return fmt.Errorf("error initializing definition file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Definition file created/updated: %s\n", cfgFile)
		return nil
	},
}

func initConfigurationFile(configurationPath string) error {
	if configurationPath == "" {
		configurationPath = defaultConfigFile
	}

	format, err := syntax.FormatOf(configurationPath)
	if err != nil {
		return err
	}
	d, err := syntax.Encode(syntax.DefaultConfig(), format)
	if err != nil {
		return err
	}

	f, err := os.Create(configurationPath)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(d)
	return err
}
