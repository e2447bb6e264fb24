package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regrun/internal/launcher"
	"github.com/joshuapare/regrun/internal/logger"
	"github.com/joshuapare/regrun/pkg/types"
	"github.com/joshuapare/regrun/regenv"
)

func seedEnvironment(t *testing.T) map[string]string {
	t.Helper()
	env := map[string]string{"USERPROFILE": `C:\Users\a`, "SystemRoot": `C:\Windows`}
	reg := useFakeRegistry(t, env)
	reg.SetExpandString(types.LocalMachine, regenv.SystemKeyPath, regenv.PathValue, `%SystemRoot%;%SystemRoot%\System32;C:\Tools`)
	reg.SetString(types.LocalMachine, regenv.SystemKeyPath, "OS", "Windows_NT")
	reg.SetExpandString(types.CurrentUser, regenv.UserKeyPath, regenv.PathValue, `%USERPROFILE%\bin;c:\tools\`)
	reg.SetString(types.CurrentUser, regenv.UserKeyPath, "EDITOR", "vim")
	reg.SetValue(types.CurrentUser, regenv.UserKeyPath, "Count", types.Value{Type: types.REG_DWORD, Data: []byte{7, 0, 0, 0}})
	return env
}

func TestPathCommand(t *testing.T) {
	tests := []struct {
		name   string
		split  bool
		dedupe bool
		want   string
	}{
		{
			name: "joined",
			want: `C:\Users\a\bin;c:\tools\;C:\Windows;C:\Windows\System32;C:\Tools` + "\n",
		},
		{
			name:  "split",
			split: true,
			want:  "C:\\Users\\a\\bin\nc:\\tools\\\nC:\\Windows\nC:\\Windows\\System32\nC:\\Tools\n",
		},
		{
			name:   "deduplicated",
			dedupe: true,
			want:   `C:\Users\a\bin;c:\tools\;C:\Windows;C:\Windows\System32` + "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seedEnvironment(t)
			pathSplit = tt.split
			settings.Dedupe = tt.dedupe

			output, err := captureOutput(t, runPath)
			require.NoError(t, err)
			assert.Equal(t, tt.want, output)
		})
	}
}

func TestPathCommand_Errors(t *testing.T) {
	reg := useFakeRegistry(t, nil)
	reg.SetString(types.LocalMachine, regenv.SystemKeyPath, regenv.PathValue, `C:\Windows`)
	reg.SetValue(types.CurrentUser, regenv.UserKeyPath, regenv.PathValue, types.Value{Type: types.REG_BINARY, Data: []byte{1}})

	_, err := captureOutput(t, runPath)
	assert.ErrorIs(t, err, types.ErrTypeNotString)

	settings.BestEffort = true
	output, err := captureOutput(t, runPath)
	require.NoError(t, err)
	assert.Equal(t, "C:\\Windows\n", output)
}

func TestEnvCommand(t *testing.T) {
	seedEnvironment(t)

	output, err := captureOutput(t, func() error {
		return runEnv([]string{"HOME=x", "PATH=stale"})
	})
	require.NoError(t, err)

	assertContains(t, output, []string{
		"HOME=x\n",
		`PATH=C:\Users\a\bin;c:\tools\;C:\Windows;C:\Windows\System32;C:\Tools`,
		"OS=Windows_NT\n",
		"EDITOR=vim\n",
	})
	assertNotContains(t, output, []string{"stale", "Count="})
}

func TestValuesCommand(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		reg            bool
		wantErr        error
		wantContain    []string
		wantNotContain []string
	}{
		{
			name:        "table",
			args:        []string{"HKCU", "Environment"},
			wantContain: []string{"NAME", "TYPE", "Path", "REG_EXPAND_SZ", `%USERPROFILE%\bin`, "EDITOR", "vim", "REG_DWORD_LITTLE_ENDIAN", "0x00000007 (7)"},
		},
		{
			name: "reg",
			args: []string{"hkcu", "Environment"},
			reg:  true,
			wantContain: []string{
				"Windows Registry Editor Version 5.00",
				`[HKEY_CURRENT_USER\Environment]`,
				`"EDITOR"="vim"`,
				`"Count"=dword:00000007`,
			},
			wantNotContain: []string{"NAME"},
		},
		{
			name:    "missing key",
			args:    []string{"HKCU", "Nope"},
			wantErr: types.ErrNotFound,
		},
		{
			name:    "bad root",
			args:    []string{"HKCR", "x"},
			wantErr: errors.New("any"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seedEnvironment(t)
			valuesReg = tt.reg

			output, err := captureOutput(t, func() error { return runValues(tt.args) })
			if tt.wantErr != nil {
				require.Error(t, err)
				if kind, ok := types.KindOf(tt.wantErr); ok {
					got, _ := types.KindOf(err)
					assert.Equal(t, kind, got)
				}
				return
			}
			require.NoError(t, err)
			assertContains(t, output, tt.wantContain)
			assertNotContains(t, output, tt.wantNotContain)
		})
	}
}

func TestDisplayData(t *testing.T) {
	assert.Equal(t, "x", displayData(types.Value{Type: types.REG_SZ, Data: []byte("x\x00")}))
	assert.Equal(t, "0x0000000000000100 (256)", displayData(types.Value{Type: types.REG_QWORD, Data: []byte{0, 1, 0, 0, 0, 0, 0, 0}}))
	assert.Equal(t, "<3 bytes>", displayData(types.Value{Type: types.REG_BINARY, Data: []byte{1, 2, 3}}))
	assert.Equal(t, "<2 bytes>", displayData(types.Value{Type: types.REG_DWORD, Data: []byte{1, 2}}))
}

func TestIsShim(t *testing.T) {
	assert.False(t, isShim([]string{`C:\bin\regrun.exe`, "path"}))
	assert.False(t, isShim([]string{"REGRUN.EXE"}))
	assert.False(t, isShim([]string{"/usr/local/bin/regrun"}))
	assert.False(t, isShim(nil))
	assert.True(t, isShim([]string{`C:\shims\git.exe`, "status"}))
	assert.True(t, isShim([]string{"node"}))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 5, exitCode(&launcher.ExitError{Code: 5}))
	assert.Equal(t, 1, exitCode(&launcher.LaunchError{Invocation: launcher.Invocation{Command: "git"}, Err: errors.New("boom")}))
	assert.Equal(t, 1, exitCode(errors.New("bad flag")))
}

func TestExitCode_LaunchErrorSingleLine(t *testing.T) {
	t.Cleanup(logger.Reset)

	var code int
	stderr := captureStderr(t, func() {
		require.NoError(t, logger.Init(logger.Options{Level: "warn"}))
		code = exitCode(&launcher.LaunchError{
			Invocation: launcher.Invocation{Command: "git", Args: []string{"status"}},
			Err:        errors.New("boom"),
		})
	})

	assert.Equal(t, 1, code)
	assert.Equal(t, "could not execute 'git status'. The reason is: boom\n", stderr)
	assert.Equal(t, 1, strings.Count(stderr, "\n"))
}

// emptyConfig keeps command tests away from the user's config file.
func emptyConfig(t *testing.T) string {
	t.Helper()
	for _, key := range []string{"BEST_EFFORT", "DEDUPE", "LOG_LEVEL", "LOG_FILE", "PROPAGATE_EXIT_CODE", "INHERIT_REGISTRY_ENV"} {
		t.Setenv("REGRUN_"+key, "")
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	return path
}

func TestRootCommand_Flags(t *testing.T) {
	seedEnvironment(t)
	cfg := emptyConfig(t)

	rootCmd.SetArgs([]string{"--config", cfg, "--dedupe", "path", "--split"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	output, err := captureOutput(t, func() error {
		return rootCmd.ExecuteContext(context.Background())
	})
	require.NoError(t, err)
	assert.True(t, settings.Dedupe)
	assert.Equal(t, 4, strings.Count(output, "\n"), output)
}

func TestExecCommand_Guarded(t *testing.T) {
	seedEnvironment(t)
	cfg := emptyConfig(t)
	t.Setenv(launcher.GuardVar, "1")

	rootCmd.SetArgs([]string{"--config", cfg, "exec", "git", "--version"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	output, err := captureOutput(t, func() error {
		return rootCmd.ExecuteContext(context.Background())
	})
	require.NoError(t, err)
	assert.Empty(t, output)
}

func TestRunShim_Guarded(t *testing.T) {
	seedEnvironment(t)
	configPath = emptyConfig(t)
	t.Setenv(launcher.GuardVar, "1")

	assert.Equal(t, 0, runShim(context.Background(), []string{`C:\shims\git.exe`, "status"}))
}

func TestRunShim_GuardedBeforeSettings(t *testing.T) {
	seedEnvironment(t)
	configPath = emptyConfig(t)
	t.Setenv(launcher.GuardVar, "1")
	t.Setenv("REGRUN_LOG_LEVEL", "bogus")

	var code int
	stderr := captureStderr(t, func() {
		code = runShim(context.Background(), []string{`C:\shims\git.exe`, "status"})
	})
	assert.Equal(t, 0, code)
	assert.Empty(t, stderr)

	os.Unsetenv(launcher.GuardVar)
	stderr = captureStderr(t, func() {
		code = runShim(context.Background(), []string{`C:\shims\git.exe`, "status"})
	})
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, `invalid log level "bogus"`)
}

func TestEnvCommand_Dotenv(t *testing.T) {
	seedEnvironment(t)
	envDotenv = true

	output, err := captureOutput(t, func() error {
		return runEnv([]string{"=C:=C:\\work", "HOME=x", "N=42"})
	})
	require.NoError(t, err)

	assertContains(t, output, []string{
		`EDITOR="vim"`,
		`HOME="x"`,
		"N=42",
		`PATH="C:\\Users\\a\\bin;`,
	})
	assertNotContains(t, output, []string{"=C:"})
	assert.Less(t, strings.Index(output, "EDITOR="), strings.Index(output, "HOME="), "keys are sorted")
}

func TestConfigCommand(t *testing.T) {
	seedEnvironment(t)
	settings.Dedupe = true
	settingsFile = `C:\Users\a\AppData\Roaming\regrun\config.toml`

	output, err := captureOutput(t, runConfig)
	require.NoError(t, err)
	assertContains(t, output, []string{
		"# " + settingsFile,
		"dedupe = true",
		"best_effort = false",
		"log_level = ",
		"warn",
	})
}
