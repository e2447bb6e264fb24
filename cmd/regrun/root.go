package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joshuapare/regrun/internal/config"
	"github.com/joshuapare/regrun/internal/launcher"
	"github.com/joshuapare/regrun/internal/logger"
	"github.com/joshuapare/regrun/internal/winapi"
	"github.com/joshuapare/regrun/pkg/types"
	"github.com/joshuapare/regrun/regenv"
)

var (
	// Global flags
	verbose    bool
	bestEffort bool
	dedupe     bool
	configPath string

	// settings is resolved once per process by loadSettings.
	settings = config.DefaultConfig()
	// settingsFile is the config file settings came from, if any.
	settingsFile string
)

// Platform seams, replaced in tests.
var (
	newRegistry = func() types.Registry { return winapi.Registry{} }
	expander    = regenv.ExpandFunc(winapi.ExpandEnv)
)

var rootCmd = &cobra.Command{
	Use:   "regrun",
	Short: "Run commands with the PATH stored in the Windows registry",
	Long: `regrun rebuilds PATH from the per-user and per-machine environment in the
Windows registry and runs a command with it. Copy or link regrun.exe under
another name (git.exe, node.exe, ...) and it relays to the real command of
that name, even from shells whose inherited environment is stale.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadSettings()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().
		BoolVar(&bestEffort, "best-effort", false, "Treat an unreadable registry hive as empty")
	rootCmd.PersistentFlags().BoolVar(&dedupe, "dedupe", false, "Drop repeated PATH entries")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default is "+defaultConfigHint()+")")
}

func defaultConfigHint() string {
	dir, err := config.ConfigDir()
	if err != nil {
		return config.ConfigFileName + "." + config.ConfigFileExt
	}
	return filepath.Join(dir, config.ConfigFileName+"."+config.ConfigFileExt)
}

func execute() {
	os.Exit(exitCode(rootCmd.ExecuteContext(context.Background())))
}

// loadSettings reads configuration, applies flag overrides and starts the
// logger.
func loadSettings() error {
	cfg, path, err := config.Load(config.LoadOptions{ConfigFilePath: configPath})
	if err != nil {
		return err
	}
	if bestEffort {
		cfg.BestEffort = true
	}
	if dedupe {
		cfg.Dedupe = true
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if err := logger.Init(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile}); err != nil {
		return err
	}
	if path != "" {
		logger.L.Debug("loaded config", "file", path)
	}
	settings, settingsFile = cfg, path
	return nil
}

func newComposer() *regenv.Composer {
	return regenv.New(newRegistry(),
		regenv.WithBestEffort(settings.BestEffort),
		regenv.WithDedupe(settings.Dedupe),
		regenv.WithExpander(expander),
		regenv.WithLogger(logger.L),
	)
}

func newLauncher() *launcher.Launcher {
	return launcher.New(newComposer(), launcher.Options{
		PropagateExitCode:  settings.PropagateExitCode,
		InheritRegistryEnv: settings.InheritRegistryEnv,
	}, logger.L)
}

// exitCode reports err on stderr and maps it to a process status. A
// propagated child status is returned silently. A launch failure prints
// exactly one diagnostic line; the structured record stays at debug level.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *launcher.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	var launchErr *launcher.LaunchError
	if errors.As(err, &launchErr) {
		logger.L.Debug("launch failed", "command", launchErr.Invocation.Command, "error", launchErr.Err)
		fmt.Fprintln(os.Stderr, launchErr)
		return 1
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	return 1
}
