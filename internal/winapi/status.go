// Package winapi binds the ANSI registry, environment-expansion and
// message-formatting entry points of advapi32 and kernel32.
//
// Every key handle returned by OpenKey is owned by the caller and must be
// released with Close, normally through defer right after a successful open.
// Failures carry the platform's own message text.
package winapi

import (
	"bytes"
	"fmt"
	"strings"
	"syscall"

	"github.com/joshuapare/regrun/pkg/types"
)

// Win32 status codes the bindings branch on.
const (
	statusSuccess      = 0
	statusFileNotFound = 2
	statusMoreData     = 234
	statusNoMoreItems  = 259
)

// statusError builds a typed error from a non-success status. Not-found and
// more-data statuses replace kind with their own, so a missing key matches
// ErrNotFound but not ErrKeyOpen. The status stays wrapped as a
// syscall.Errno.
func statusError(kind types.ErrKind, op, path string, status uint32, text string) error {
	switch status {
	case statusFileNotFound:
		kind = types.ErrKindNotFound
	case statusMoreData:
		if kind == types.ErrKindValueQuery {
			kind = types.ErrKindValueTooLarge
		}
	}
	return &types.Error{
		Kind: kind,
		Op:   op,
		Path: path,
		Msg:  trimMessage(text),
		Err:  syscall.Errno(status),
	}
}

// enumStep reads the value at index, returning it with the call's status.
type enumStep func(index uint32) (types.NamedValue, uint32)

// enumerate calls step from index 0 until it reports no more items. Any other
// failure status aborts the walk, and reaching limit without the end marker
// is ErrKindEnumTruncated.
func enumerate(path string, limit uint32, step enumStep) ([]types.NamedValue, error) {
	var out []types.NamedValue
	for i := uint32(0); i < limit; i++ {
		nv, st := step(i)
		switch st {
		case statusSuccess:
			out = append(out, nv)
		case statusNoMoreItems:
			return out, nil
		default:
			return nil, statusError(types.ErrKindValueQuery, "enumerate", path, st, FormatError(st))
		}
	}
	return nil, &types.Error{
		Kind: types.ErrKindEnumTruncated,
		Op:   "enumerate",
		Path: path,
		Msg:  fmt.Sprintf("more than %d values", limit),
	}
}

// trimMessage removes the CR/LF FormatMessage appends.
func trimMessage(s string) string {
	return strings.TrimRight(s, "\r\n\t ")
}

// trimReported copies the first n bytes of buf, n being the size the
// platform wrote. The copy keeps the result length-exact and detached from
// the fixed-size scratch buffer.
func trimReported(buf []byte, n uint32) []byte {
	if int(n) > len(buf) {
		n = uint32(len(buf))
	}
	out := make([]byte, n)
	copy(out, buf[:n])
	return out
}

// expandResult interprets ExpandEnvironmentStringsA's return value: the
// number of characters written including the NUL, or the size that would
// have been required. Zero and oversize results are not expandable.
func expandResult(buf []byte, n uint32) ([]byte, bool) {
	if n == 0 || n > types.MaxExpandSize || int(n) > len(buf) {
		return nil, false
	}
	return cstring(buf[:n]), true
}

// cstring returns b up to (not including) the first NUL.
func cstring(b []byte) []byte {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return b[:i]
	}
	return b
}

// validSubkey enforces the printable-ASCII contract for key paths handed
// to the ANSI entry points.
func validSubkey(root types.Root, subkey string) error {
	for i := 0; i < len(subkey); i++ {
		if c := subkey[i]; c < 0x20 || c > 0x7e {
			return &types.Error{
				Kind: types.ErrKindKeyOpen,
				Op:   "open",
				Path: types.KeyPath(root, subkey),
				Msg:  "subkey must be printable ASCII",
			}
		}
	}
	return nil
}

func valuePath(keyPath, name string) string {
	if name == "" {
		return keyPath + `\(Default)`
	}
	return keyPath + `\` + name
}
