// Package launcher relays a command to the program of the same name found
// on the PATH rebuilt from the registry.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joshuapare/regrun/internal/winapi"
	"github.com/joshuapare/regrun/regenv"
)

// GuardVar is set in the child's environment. A launcher that inherits it
// does not relaunch.
const GuardVar = "REGRUN_ALREADY_EXECUTED"

// Invocation is the command to relay and its arguments.
type Invocation struct {
	Command string
	Args    []string
}

// FromArgs builds an Invocation from a process argument vector: the file
// stem of argv[0] names the command, the rest are its arguments.
func FromArgs(argv []string) Invocation {
	if len(argv) == 0 {
		return Invocation{}
	}
	return Invocation{Command: Stem(argv[0]), Args: argv[1:]}
}

// Stem returns the base name of path without its extension. Both Windows
// and slash separators are honored. A name that is all extension, such as
// ".exe", is returned unchanged.
func Stem(path string) string {
	if i := strings.LastIndexAny(path, `\/`); i >= 0 {
		path = path[i+1:]
	}
	if i := strings.LastIndexByte(path, '.'); i > 0 {
		return path[:i]
	}
	return path
}

// String renders the invocation as "CMD ARGS".
func (inv Invocation) String() string {
	if len(inv.Args) == 0 {
		return inv.Command
	}
	return inv.Command + " " + strings.Join(inv.Args, " ")
}

// Guarded reports whether the recursion guard is present in the environment
// seen through lookup.
func Guarded(lookup func(string) (string, bool)) bool {
	_, ok := lookup(GuardVar)
	return ok
}

// LaunchError reports that the target could not be started.
type LaunchError struct {
	Invocation Invocation
	Err        error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("could not execute '%s'. The reason is: %s", e.Invocation, reason(e.Err))
}

func (e *LaunchError) Unwrap() error { return e.Err }

// ExitError carries a child's non-zero exit status when exit codes are
// propagated.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

// reason prefers the platform's message text for OS error codes.
func reason(err error) string {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return winapi.FormatError(uint32(errno))
	}
	return err.Error()
}

// Composer is the slice of regenv.Composer the launcher needs.
type Composer interface {
	Compose() (string, error)
	Environment(base []string) ([]string, error)
}

var _ Composer = (*regenv.Composer)(nil)

// Options tune a Launcher.
type Options struct {
	// PropagateExitCode returns the child's non-zero status as *ExitError.
	PropagateExitCode bool
	// InheritRegistryEnv gives the child every registry environment
	// variable, not only PATH.
	InheritRegistryEnv bool
}

// Launcher spawns relayed commands.
type Launcher struct {
	composer Composer
	opts     Options
	log      *slog.Logger

	lookupEnv  func(string) (string, bool)
	setenv     func(string, string) error
	environ    func() []string
	lookPath   func(string) (string, error)
	executable func() (string, error)

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// New returns a Launcher that uses the live process environment and
// standard streams.
func New(c Composer, opts Options, log *slog.Logger) *Launcher {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Launcher{
		composer:   c,
		opts:       opts,
		log:        log,
		lookupEnv:  os.LookupEnv,
		setenv:     os.Setenv,
		environ:    os.Environ,
		lookPath:   exec.LookPath,
		executable: os.Executable,
		stdin:      os.Stdin,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
	}
}

// Run relays inv. When the recursion guard is already set it logs a warning
// and returns nil without spawning. A child that exits non-zero is not an
// error unless PropagateExitCode is set.
func (l *Launcher) Run(ctx context.Context, inv Invocation) error {
	if Guarded(l.lookupEnv) {
		l.log.Warn("recursion guard set, not relaunching", "command", inv.Command, "var", GuardVar)
		return nil
	}
	if inv.Command == "" {
		return &LaunchError{Invocation: inv, Err: errors.New("no command name")}
	}

	env, path, err := l.childEnv()
	if err != nil {
		return &LaunchError{Invocation: inv, Err: err}
	}
	if err := l.setenv("PATH", path); err != nil {
		return &LaunchError{Invocation: inv, Err: err}
	}
	if err := l.setenv(GuardVar, "1"); err != nil {
		return &LaunchError{Invocation: inv, Err: err}
	}
	l.log.Debug("composed path", "path", path)

	target, err := l.lookPath(inv.Command)
	if err != nil {
		return &LaunchError{Invocation: inv, Err: err}
	}
	if l.isSelf(target) {
		return &LaunchError{Invocation: inv, Err: fmt.Errorf("%s resolves to this launcher", target)}
	}
	l.log.Debug("launching", "command", inv.Command, "target", target, "args", len(inv.Args))

	cmd := exec.CommandContext(ctx, target, inv.Args...)
	cmd.Env = env
	cmd.Stdin = l.stdin
	cmd.Stdout = l.stdout
	cmd.Stderr = l.stderr

	if err := cmd.Start(); err != nil {
		return &LaunchError{Invocation: inv, Err: err}
	}
	err = cmd.Wait()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &exitErr):
		code := exitErr.ExitCode()
		l.log.Debug("child exited", "command", inv.Command, "code", code)
		if l.opts.PropagateExitCode && code != 0 {
			return &ExitError{Code: code}
		}
		return nil
	default:
		return fmt.Errorf("wait for %s: %w", inv.Command, err)
	}
}

// childEnv returns the child's environment and its PATH.
func (l *Launcher) childEnv() ([]string, string, error) {
	base := l.environ()

	var (
		env  []string
		path string
	)
	if l.opts.InheritRegistryEnv {
		var err error
		env, err = l.composer.Environment(base)
		if err != nil {
			return nil, "", err
		}
		path = lookup(env, "PATH")
	} else {
		var err error
		path, err = l.composer.Compose()
		if err != nil {
			return nil, "", err
		}
		env = regenv.Setenv(base, "PATH", path)
	}
	return regenv.Setenv(env, GuardVar, "1"), path, nil
}

// isSelf reports whether target is the running executable. Unresolvable
// paths are not treated as self.
func (l *Launcher) isSelf(target string) bool {
	self, err := l.executable()
	if err != nil {
		return false
	}
	a, err := os.Stat(self)
	if err != nil {
		return false
	}
	b, err := os.Stat(filepath.Clean(target))
	if err != nil {
		return false
	}
	return os.SameFile(a, b)
}

func lookup(env []string, name string) string {
	for _, kv := range env {
		if k, v, ok := strings.Cut(kv, "="); ok && strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
