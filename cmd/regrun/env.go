package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var envDotenv bool

func init() {
	cmd := newEnvCmd()
	cmd.Flags().BoolVar(&envDotenv, "dotenv", false, "Output as a sorted, quoted .env file")
	rootCmd.AddCommand(cmd)
}

func newEnvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Print the environment a relayed command would receive",
		Long: `The env command prints NAME=VALUE lines: the current environment overlaid
with the machine, user and volatile registry environment, PATH recomposed.

Example:
  regrun env
  regrun env --dotenv > registry.env`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnv(os.Environ())
		},
	}
}

func runEnv(base []string) error {
	env, err := newComposer().Environment(base)
	if err != nil {
		return err
	}
	if envDotenv {
		return outputDotenv(env)
	}
	for _, kv := range env {
		fmt.Fprintln(os.Stdout, kv)
	}
	return nil
}

// outputDotenv writes env in .env syntax. Per-drive entries such as
// "=C:=C:\work" have no .env form and are skipped.
func outputDotenv(env []string) error {
	vars := make(map[string]string, len(env))
	for _, kv := range env {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		vars[name] = value
	}
	out, err := godotenv.Marshal(vars)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, out)
	return err
}
