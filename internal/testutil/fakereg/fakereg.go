// Package fakereg is an in-memory types.Registry for tests. It mirrors the
// live bindings' contract (length-exact payloads, NUL-terminated strings,
// the fixed value-size ceiling, not-found and access-denied kinds) and
// counts handle opens and closes so tests can assert nothing leaks.
package fakereg

import (
	"strings"
	"sync"

	"github.com/joshuapare/regrun/internal/codepage"
	"github.com/joshuapare/regrun/pkg/types"
)

type keyData struct {
	values []types.NamedValue
	denied bool
	broken bool // enumeration and queries fail
}

// Registry is safe for use from parallel subtests.
type Registry struct {
	mu     sync.Mutex
	keys   map[string]*keyData
	opens  int
	closes int
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{keys: make(map[string]*keyData)}
}

func keyID(root types.Root, subkey string) string {
	return strings.ToUpper(types.KeyPath(root, subkey))
}

func (r *Registry) key(root types.Root, subkey string) *keyData {
	id := keyID(root, subkey)
	k, ok := r.keys[id]
	if !ok {
		k = &keyData{}
		r.keys[id] = k
	}
	return k
}

// CreateKey makes an empty key.
func (r *Registry) CreateKey(root types.Root, subkey string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.key(root, subkey)
}

// SetValue stores a raw value, replacing any value of the same name.
func (r *Registry) SetValue(root types.Root, subkey, name string, v types.Value) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := r.key(root, subkey)
	data := append([]byte(nil), v.Data...)
	for i := range k.values {
		if strings.EqualFold(k.values[i].Name, name) {
			k.values[i].Value = types.Value{Type: v.Type, Data: data}
			return
		}
	}
	k.values = append(k.values, types.NamedValue{Name: name, Value: types.Value{Type: v.Type, Data: data}})
}

// SetString stores s as REG_SZ in Windows-1252 with its terminating NUL.
func (r *Registry) SetString(root types.Root, subkey, name, s string) {
	r.SetValue(root, subkey, name, StringValue(types.REG_SZ, s))
}

// SetExpandString stores s as REG_EXPAND_SZ.
func (r *Registry) SetExpandString(root types.Root, subkey, name, s string) {
	r.SetValue(root, subkey, name, StringValue(types.REG_EXPAND_SZ, s))
}

// Deny makes opening the key fail with access denied.
func (r *Registry) Deny(root types.Root, subkey string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.key(root, subkey).denied = true
}

// Break makes every query and enumeration on the key fail.
func (r *Registry) Break(root types.Root, subkey string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.key(root, subkey).broken = true
}

// StringValue encodes s the way RegQueryValueExA returns it.
func StringValue(t types.RegType, s string) types.Value {
	data := append(codepage.Encode(codepage.Windows1252, s), 0)
	return types.Value{Type: t, Data: data}
}

// Opens returns the number of successful opens.
func (r *Registry) Opens() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opens
}

// Closes returns the number of handles released.
func (r *Registry) Closes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closes
}

// Outstanding returns handles opened but not yet closed.
func (r *Registry) Outstanding() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opens - r.closes
}

// OpenKey implements types.Registry.
func (r *Registry) OpenKey(root types.Root, subkey string) (types.Key, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	path := types.KeyPath(root, subkey)
	k, ok := r.keys[keyID(root, subkey)]
	if !ok {
		return nil, &types.Error{Kind: types.ErrKindNotFound, Op: "open", Path: path,
			Msg: "The system cannot find the file specified."}
	}
	if k.denied {
		return nil, &types.Error{Kind: types.ErrKindKeyOpen, Op: "open", Path: path, Msg: "Access is denied."}
	}
	r.opens++
	return &Key{reg: r, data: k, path: path}, nil
}

// Key is a handle into the fake registry.
type Key struct {
	reg    *Registry
	data   *keyData
	path   string
	closed bool
}

// Close implements types.Key.
func (k *Key) Close() error {
	k.reg.mu.Lock()
	defer k.reg.mu.Unlock()
	if k.closed {
		return nil
	}
	k.closed = true
	k.reg.closes++
	return nil
}

func (k *Key) check(op, path string) error {
	if k.closed {
		return &types.Error{Kind: types.ErrKindValueQuery, Op: op, Path: path, Msg: "key is closed"}
	}
	if k.data.broken {
		return &types.Error{Kind: types.ErrKindValueQuery, Op: op, Path: path, Msg: "The configuration registry key is invalid."}
	}
	return nil
}

// QueryValue implements types.Key.
func (k *Key) QueryValue(name string) (types.Value, error) {
	k.reg.mu.Lock()
	defer k.reg.mu.Unlock()

	path := k.path + `\` + name
	if err := k.check("query", path); err != nil {
		return types.Value{}, err
	}
	for _, nv := range k.data.values {
		if !strings.EqualFold(nv.Name, name) {
			continue
		}
		if len(nv.Data) > types.MaxValueSize {
			return types.Value{}, &types.Error{Kind: types.ErrKindValueTooLarge, Op: "query", Path: path, Msg: "More data is available."}
		}
		return types.Value{Type: nv.Type, Data: append([]byte(nil), nv.Data...)}, nil
	}
	return types.Value{}, &types.Error{Kind: types.ErrKindNotFound, Op: "query", Path: path,
		Msg: "The system cannot find the file specified."}
}

// EnumValues implements types.Key.
func (k *Key) EnumValues() ([]types.NamedValue, error) {
	k.reg.mu.Lock()
	defer k.reg.mu.Unlock()

	if err := k.check("enumerate", k.path); err != nil {
		return nil, err
	}
	out := make([]types.NamedValue, 0, len(k.data.values))
	for _, nv := range k.data.values {
		if len(nv.Data) > types.MaxValueSize {
			return nil, &types.Error{Kind: types.ErrKindValueTooLarge, Op: "enumerate", Path: k.path, Msg: "More data is available."}
		}
		out = append(out, types.NamedValue{Name: nv.Name, Value: types.Value{Type: nv.Type, Data: append([]byte(nil), nv.Data...)}})
	}
	return out, nil
}
