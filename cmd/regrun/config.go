package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newConfigCmd())
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `The config command prints the configuration after defaults, the config
file, REGRUN_* environment variables and flags have been applied, in config
file syntax.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfig()
		},
	}
}

func runConfig() error {
	data, err := settings.TOML()
	if err != nil {
		return err
	}
	if settingsFile != "" {
		fmt.Fprintf(os.Stdout, "# %s\n", settingsFile)
	}
	_, err = os.Stdout.Write(data)
	return err
}
