package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/regrun/regenv"
)

var pathSplit bool

func init() {
	cmd := newPathCmd()
	cmd.Flags().BoolVar(&pathSplit, "split", false, "Print one entry per line")
	rootCmd.AddCommand(cmd)
}

func newPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the PATH composed from the registry",
		Long: `The path command prints the user Path followed by the machine Path, with
environment references expanded.

Example:
  regrun path
  regrun path --split --dedupe`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPath()
		},
	}
}

func runPath() error {
	path, err := newComposer().Compose()
	if err != nil {
		return err
	}
	if !pathSplit {
		fmt.Fprintln(os.Stdout, path)
		return nil
	}
	for _, entry := range regenv.Split(path) {
		fmt.Fprintln(os.Stdout, entry)
	}
	return nil
}
