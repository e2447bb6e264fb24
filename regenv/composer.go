package regenv

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/joshuapare/regrun/internal/winapi"
	"github.com/joshuapare/regrun/pkg/types"
)

// Registry locations of the persistent environment.
const (
	SystemKeyPath   = `SYSTEM\CurrentControlSet\Control\Session Manager\Environment`
	UserKeyPath     = `Environment`
	VolatileKeyPath = `Volatile Environment`
	PathValue       = "Path"
)

// ExpandFunc expands %NAME% references, reporting false when the string is
// not expandable.
type ExpandFunc func(s string) (string, bool)

// Options tune composition.
type Options struct {
	// BestEffort downgrades hive read failures to an empty contribution.
	BestEffort bool
	// Dedupe drops repeated PATH entries, keeping the first occurrence.
	Dedupe bool
}

// Option configures a Composer.
type Option func(*Composer)

// WithBestEffort sets Options.BestEffort.
func WithBestEffort(on bool) Option { return func(c *Composer) { c.opts.BestEffort = on } }

// WithDedupe sets Options.Dedupe.
func WithDedupe(on bool) Option { return func(c *Composer) { c.opts.Dedupe = on } }

// WithExpander replaces the %NAME% expander.
func WithExpander(fn ExpandFunc) Option { return func(c *Composer) { c.expand = fn } }

// WithLogger sets the logger used for best-effort warnings and debug traces.
func WithLogger(l *slog.Logger) Option { return func(c *Composer) { c.log = l } }

// Composer reads the registry environment. It holds configuration only.
type Composer struct {
	reg    types.Registry
	expand ExpandFunc
	opts   Options
	log    *slog.Logger
}

// New returns a Composer over reg. The default expander is the platform's.
func New(reg types.Registry, opts ...Option) *Composer {
	c := &Composer{
		reg:    reg,
		expand: winapi.ExpandEnv,
		log:    slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Default returns a Composer over the live registry.
func Default(opts ...Option) *Composer {
	return New(winapi.Registry{}, opts...)
}

// Options returns the effective options.
func (c *Composer) Options() Options { return c.opts }

// ReadSystemPath returns the expanded machine Path, or "" when absent.
func (c *Composer) ReadSystemPath() (string, error) {
	return c.readPath(types.LocalMachine, SystemKeyPath)
}

// ReadUserPath returns the expanded user Path, or "" when absent.
func (c *Composer) ReadUserPath() (string, error) {
	return c.readPath(types.CurrentUser, UserKeyPath)
}

func (c *Composer) readPath(root types.Root, subkey string) (string, error) {
	k, err := c.reg.OpenKey(root, subkey)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			c.log.Debug("environment key not present", "key", types.KeyPath(root, subkey))
			return "", nil
		}
		return "", err
	}
	defer k.Close()

	v, err := k.QueryValue(PathValue)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			c.log.Debug("path value not present", "key", types.KeyPath(root, subkey))
			return "", nil
		}
		return "", err
	}

	text, ok := v.Text()
	if !ok {
		return "", &types.Error{
			Kind: types.ErrKindTypeNotString,
			Op:   "read",
			Path: types.KeyPath(root, subkey) + `\` + PathValue,
			Msg:  "value has type " + v.Type.String(),
		}
	}
	return c.expandOrLiteral(text), nil
}

// expandOrLiteral applies expansion to the whole string and falls back to
// the registry text when the platform reports it as not expandable.
func (c *Composer) expandOrLiteral(s string) string {
	if c.expand == nil {
		return s
	}
	out, ok := c.expand(s)
	if !ok {
		c.log.Debug("expansion not possible, using literal", "value", s)
		return s
	}
	return out
}

// Compose returns the user Path followed by the system Path. The user hive
// is read first.
func (c *Composer) Compose() (string, error) {
	user, err := c.ReadUserPath()
	if err != nil {
		if !c.opts.BestEffort {
			return "", fmt.Errorf("read user path: %w", err)
		}
		c.log.Warn("ignoring user path", "error", err)
		user = ""
	}

	system, err := c.ReadSystemPath()
	if err != nil {
		if !c.opts.BestEffort {
			return "", fmt.Errorf("read system path: %w", err)
		}
		c.log.Warn("ignoring system path", "error", err)
		system = ""
	}

	path := Merge(user, system)
	if c.opts.Dedupe {
		path = Join(Dedupe(Split(path)))
	}
	return path, nil
}

// Values enumerates every value of root\subkey.
func (c *Composer) Values(root types.Root, subkey string) ([]types.NamedValue, error) {
	k, err := c.reg.OpenKey(root, subkey)
	if err != nil {
		return nil, err
	}
	defer k.Close()
	return k.EnumValues()
}
