// Package expand implements %NAME% expansion with the same observable rules
// as ExpandEnvironmentStrings: names are looked up case-insensitively, unknown
// references stay literal, and a result that does not fit the fixed output
// buffer is reported as not expandable.
package expand

import (
	"strings"

	"github.com/joshuapare/regrun/pkg/types"
)

// LookupFunc resolves an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(name string) (string, bool)

// Expand replaces every %NAME% whose NAME resolves through lookup. It returns
// false when the result, plus its terminating NUL, exceeds types.MaxExpandSize;
// callers then keep the unexpanded input.
func Expand(s string, lookup LookupFunc) (string, bool) {
	var b strings.Builder
	b.Grow(len(s))

	rest := s
	for {
		open := strings.IndexByte(rest, '%')
		if open < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:open])
		rest = rest[open+1:]

		end := strings.IndexByte(rest, '%')
		if end < 0 {
			// unterminated reference
			b.WriteByte('%')
			b.WriteString(rest)
			break
		}
		name := rest[:end]
		if val, ok := lookupName(lookup, name); ok {
			b.WriteString(val)
			rest = rest[end+1:]
			continue
		}
		// Unknown: emit "%NAME" and rescan from the closing '%', which may
		// open the next reference.
		b.WriteByte('%')
		b.WriteString(name)
		rest = rest[end:]
	}

	out := b.String()
	if len(out)+1 > types.MaxExpandSize {
		return "", false
	}
	return out, true
}

func lookupName(lookup LookupFunc, name string) (string, bool) {
	if name == "" || lookup == nil {
		return "", false
	}
	return lookup(name)
}

// MapLookup returns a case-insensitive LookupFunc over a fixed map.
func MapLookup(env map[string]string) LookupFunc {
	folded := make(map[string]string, len(env))
	for k, v := range env {
		folded[strings.ToUpper(k)] = v
	}
	return func(name string) (string, bool) {
		v, ok := folded[strings.ToUpper(name)]
		return v, ok
	}
}

// EnvironLookup returns a case-insensitive LookupFunc over NAME=VALUE pairs.
// The first definition of a name wins, as on Windows.
func EnvironLookup(environ []string) LookupFunc {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := SplitPair(kv)
		if !ok {
			continue
		}
		if _, dup := env[strings.ToUpper(k)]; dup {
			continue
		}
		env[strings.ToUpper(k)] = v
	}
	return MapLookup(env)
}

// SplitPair splits NAME=VALUE. Windows keeps per-drive entries such as
// "=C:=C:\dir" whose name starts with '=', so the search begins at index 1.
func SplitPair(kv string) (string, string, bool) {
	if len(kv) < 2 {
		return "", "", false
	}
	i := strings.IndexByte(kv[1:], '=')
	if i < 0 {
		return "", "", false
	}
	return kv[:i+1], kv[i+2:], true
}
