package regenv

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joshuapare/regrun/internal/expand"
	"github.com/joshuapare/regrun/pkg/types"
)

// source is one registry key contributing environment variables.
type source struct {
	root   types.Root
	subkey string
}

// Later sources override earlier ones, matching how Windows builds a logon
// environment: machine, then user, then per-logon volatile values.
var environmentSources = []source{
	{types.LocalMachine, SystemKeyPath},
	{types.CurrentUser, UserKeyPath},
	{types.CurrentUser, VolatileKeyPath},
}

// Environment returns base overlaid with every string value of the registry
// environment keys, each expanded with the fallback rule, and PATH replaced
// by Compose. Names compare case-insensitively. The Path values themselves
// are only consumed through Compose.
func (c *Composer) Environment(base []string) ([]string, error) {
	env := newEnvBlock(base)

	for _, src := range environmentSources {
		keyPath := types.KeyPath(src.root, src.subkey)
		values, err := c.Values(src.root, src.subkey)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				continue
			}
			if !c.opts.BestEffort {
				return nil, fmt.Errorf("read %s: %w", keyPath, err)
			}
			c.log.Warn("ignoring environment key", "key", keyPath, "error", err)
			continue
		}

		for _, nv := range values {
			if nv.Name == "" || strings.EqualFold(nv.Name, PathValue) {
				continue
			}
			text, ok := nv.Text()
			if !ok {
				c.log.Debug("skipping non-string value", "key", keyPath, "name", nv.Name, "type", nv.Type.String())
				continue
			}
			env.set(nv.Name, c.expandOrLiteral(text))
		}
	}

	path, err := c.Compose()
	if err != nil {
		return nil, err
	}
	env.set("PATH", path)
	return env.list(), nil
}

// envBlock is an ordered NAME=VALUE list with case-insensitive names.
type envBlock struct {
	names  []string
	values []string
	index  map[string]int
}

func newEnvBlock(base []string) *envBlock {
	b := &envBlock{index: make(map[string]int, len(base))}
	for _, kv := range base {
		if k, v, ok := expand.SplitPair(kv); ok {
			b.set(k, v)
		}
	}
	return b
}

func (b *envBlock) set(name, value string) {
	key := strings.ToUpper(name)
	if i, ok := b.index[key]; ok {
		b.names[i] = name
		b.values[i] = value
		return
	}
	b.index[key] = len(b.names)
	b.names = append(b.names, name)
	b.values = append(b.values, value)
}

func (b *envBlock) list() []string {
	out := make([]string, len(b.names))
	for i := range b.names {
		out[i] = b.names[i] + "=" + b.values[i]
	}
	return out
}

// Setenv returns env with name set to value. An existing entry is replaced
// in place, matching names case-insensitively; otherwise one is appended.
func Setenv(env []string, name, value string) []string {
	b := newEnvBlock(env)
	b.set(name, value)
	return b.list()
}
