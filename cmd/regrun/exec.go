package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/regrun/internal/launcher"
)

func init() {
	rootCmd.AddCommand(newExecCmd())
}

func newExecCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec <command> [args...]",
		Short: "Run a command with the registry PATH",
		Long: `The exec command runs a command exactly as a shim named after it would.
Flags after the command name are passed to the command.

Example:
  regrun exec git status
  regrun --dedupe exec node --version`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd, args)
		},
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func runExec(cmd *cobra.Command, args []string) error {
	inv := launcher.Invocation{Command: args[0], Args: args[1:]}
	return newLauncher().Run(cmd.Context(), inv)
}
