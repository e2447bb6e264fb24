// Command regrun relays to a command found on the PATH stored in the
// Windows registry.
//
// Installed under any other name it acts as a shim for that name:
//
//	copy regrun.exe %USERPROFILE%\shims\git.exe
//	git status        # runs the git found on the registry PATH
//
// Under its own name it offers subcommands to run a command explicitly and
// to inspect what the registry holds.
package main

import (
	"context"
	"os"
	"strings"

	"github.com/joshuapare/regrun/internal/launcher"
)

func main() {
	if isShim(os.Args) {
		os.Exit(runShim(context.Background(), os.Args))
	}
	execute()
}

// isShim reports whether the binary runs under a name other than regrun.
func isShim(argv []string) bool {
	if len(argv) == 0 {
		return false
	}
	return !strings.EqualFold(launcher.Stem(argv[0]), rootCmd.Name())
}

// runShim relays argv using the configuration from the config file and
// environment only; shim arguments belong to the target. A guarded
// process exits successfully before any configuration is read.
func runShim(ctx context.Context, argv []string) int {
	if launcher.Guarded(os.LookupEnv) {
		return 0
	}
	if err := loadSettings(); err != nil {
		return exitCode(err)
	}
	return exitCode(newLauncher().Run(ctx, launcher.FromArgs(argv)))
}
