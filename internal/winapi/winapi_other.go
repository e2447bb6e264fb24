//go:build !windows

package winapi

import (
	"os"
	"syscall"

	"github.com/joshuapare/regrun/internal/expand"
	"github.com/joshuapare/regrun/pkg/types"
)

// Key is never opened off Windows.
type Key struct {
	path string
}

func unsupported(op, path string) error {
	return &types.Error{Kind: types.ErrKindUnsupported, Op: op, Path: path, Msg: types.ErrUnsupported.Msg}
}

// OpenKey always fails with ErrKindUnsupported.
func OpenKey(root types.Root, subkey string) (*Key, error) {
	if err := validSubkey(root, subkey); err != nil {
		return nil, err
	}
	return nil, unsupported("open", types.KeyPath(root, subkey))
}

func (k *Key) Path() string { return k.path }

func (k *Key) Close() error { return nil }

func (k *Key) QueryValue(name string) (types.Value, error) {
	return types.Value{}, unsupported("query", valuePath(k.path, name))
}

func (k *Key) EnumValues() ([]types.NamedValue, error) {
	return nil, unsupported("enumerate", k.path)
}

// ExpandEnv uses the portable expander over the process environment.
func ExpandEnv(s string) (string, bool) {
	return expand.Expand(s, os.LookupEnv)
}

// FormatError returns the errno text for a status code.
func FormatError(status uint32) string {
	return syscall.Errno(status).Error()
}

// LastErrorText reports that there is no thread error state to read.
func LastErrorText() string {
	return types.ErrUnsupported.Msg
}

// Registry adapts the (absent) registry to types.Registry.
type Registry struct{}

// OpenKey implements types.Registry.
func (Registry) OpenKey(root types.Root, subkey string) (types.Key, error) {
	k, err := OpenKey(root, subkey)
	if err != nil {
		return nil, err
	}
	return k, nil
}
