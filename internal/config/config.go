// Package config loads launcher settings from defaults, an optional
// config.toml and REGRUN_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "regrun"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "toml"
	// EnvPrefix prefixes every environment override, e.g. REGRUN_BEST_EFFORT.
	EnvPrefix = "REGRUN"
)

// Keys understood in the config file and as REGRUN_<KEY> variables.
const (
	KeyBestEffort         = "best_effort"
	KeyDedupe             = "dedupe"
	KeyLogLevel           = "log_level"
	KeyLogFile            = "log_file"
	KeyPropagateExitCode  = "propagate_exit_code"
	KeyInheritRegistryEnv = "inherit_registry_env"
)

// Config is the resolved launcher configuration.
type Config struct {
	// BestEffort treats a hive whose PATH cannot be read as empty.
	BestEffort bool `mapstructure:"best_effort" toml:"best_effort"`
	// Dedupe drops repeated PATH entries, keeping the first occurrence.
	Dedupe bool `mapstructure:"dedupe" toml:"dedupe"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level" toml:"log_level"`
	// LogFile receives JSON log records when set.
	LogFile string `mapstructure:"log_file" toml:"log_file"`
	// PropagateExitCode makes the launcher exit with the child's status.
	PropagateExitCode bool `mapstructure:"propagate_exit_code" toml:"propagate_exit_code"`
	// InheritRegistryEnv overlays every registry environment variable,
	// not just PATH.
	InheritRegistryEnv bool `mapstructure:"inherit_registry_env" toml:"inherit_registry_env"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "warn",
	}
}

// LoadOptions controls where Load looks for a config file.
type LoadOptions struct {
	// ConfigFilePath is an explicit file; it must exist.
	ConfigFilePath string
	// ConfigDirPath replaces the platform config directory.
	ConfigDirPath string
}

// ConfigDir returns the regrun configuration directory, %APPDATA%\regrun on
// Windows.
//
//nolint:revive // ConfigDir reads better than Dir at call sites
func ConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(dir, AppName), nil
}

// Load resolves the configuration. It returns the config and the path of the
// file it was read from, or "" when only defaults and environment applied.
func Load(opts LoadOptions) (*Config, string, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault(KeyBestEffort, defaults.BestEffort)
	v.SetDefault(KeyDedupe, defaults.Dedupe)
	v.SetDefault(KeyLogLevel, defaults.LogLevel)
	v.SetDefault(KeyLogFile, defaults.LogFile)
	v.SetDefault(KeyPropagateExitCode, defaults.PropagateExitCode)
	v.SetDefault(KeyInheritRegistryEnv, defaults.InheritRegistryEnv)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	resolvedPath := ""
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return nil, "", fmt.Errorf("config file not found: %s", opts.ConfigFilePath)
		}
		v.SetConfigFile(opts.ConfigFilePath)
		if err := v.ReadInConfig(); err != nil {
			return nil, "", fmt.Errorf("failed to read config %s: %w", opts.ConfigFilePath, err)
		}
		resolvedPath = opts.ConfigFilePath
	} else {
		cfgDir := opts.ConfigDirPath
		if cfgDir == "" {
			dir, err := ConfigDir()
			if err != nil {
				return nil, "", err
			}
			cfgDir = dir
		}
		v.SetConfigName(ConfigFileName)
		v.SetConfigType(ConfigFileExt)
		v.AddConfigPath(cfgDir)

		err := v.ReadInConfig()
		var notFound viper.ConfigFileNotFoundError
		switch {
		case err == nil:
			resolvedPath = v.ConfigFileUsed()
		case errors.As(err, &notFound):
			// If no config file found, use defaults (no error)
		default:
			return nil, "", fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	return &cfg, resolvedPath, nil
}

// TOML renders c in config file syntax.
func (c *Config) TOML() ([]byte, error) {
	return toml.Marshal(c)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
