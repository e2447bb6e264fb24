//go:build windows

package winapi

import (
	"bytes"
	"errors"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/joshuapare/regrun/internal/codepage"
	"github.com/joshuapare/regrun/pkg/types"
)

var (
	modadvapi32 = windows.NewLazySystemDLL("advapi32.dll")
	modkernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procRegOpenKeyExA             = modadvapi32.NewProc("RegOpenKeyExA")
	procRegQueryValueExA          = modadvapi32.NewProc("RegQueryValueExA")
	procRegEnumValueA             = modadvapi32.NewProc("RegEnumValueA")
	procRegCloseKey               = modadvapi32.NewProc("RegCloseKey")
	procExpandEnvironmentStringsA = modkernel32.NewProc("ExpandEnvironmentStringsA")
	procFormatMessageA            = modkernel32.NewProc("FormatMessageA")
)

func regOpenKeyEx(root uintptr, subkey *byte, access uint32, result *windows.Handle) uint32 {
	r0, _, _ := syscall.SyscallN(procRegOpenKeyExA.Addr(),
		root, uintptr(unsafe.Pointer(subkey)), 0, uintptr(access), uintptr(unsafe.Pointer(result)))
	return uint32(r0)
}

func regQueryValueEx(key windows.Handle, name *byte, valtype *uint32, buf *byte, buflen *uint32) uint32 {
	r0, _, _ := syscall.SyscallN(procRegQueryValueExA.Addr(),
		uintptr(key), uintptr(unsafe.Pointer(name)), 0,
		uintptr(unsafe.Pointer(valtype)), uintptr(unsafe.Pointer(buf)), uintptr(unsafe.Pointer(buflen)))
	return uint32(r0)
}

func regEnumValue(key windows.Handle, index uint32, name *byte, namelen *uint32, valtype *uint32, buf *byte, buflen *uint32) uint32 {
	r0, _, _ := syscall.SyscallN(procRegEnumValueA.Addr(),
		uintptr(key), uintptr(index), uintptr(unsafe.Pointer(name)), uintptr(unsafe.Pointer(namelen)), 0,
		uintptr(unsafe.Pointer(valtype)), uintptr(unsafe.Pointer(buf)), uintptr(unsafe.Pointer(buflen)))
	return uint32(r0)
}

func regCloseKey(key windows.Handle) uint32 {
	r0, _, _ := syscall.SyscallN(procRegCloseKey.Addr(), uintptr(key))
	return uint32(r0)
}

func expandEnvironmentStrings(src *byte, dst *byte, size uint32) uint32 {
	r0, _, _ := syscall.SyscallN(procExpandEnvironmentStringsA.Addr(),
		uintptr(unsafe.Pointer(src)), uintptr(unsafe.Pointer(dst)), uintptr(size))
	return uint32(r0)
}

func formatMessage(flags uint32, msgid uint32, buf *byte, size uint32) uint32 {
	r0, _, _ := syscall.SyscallN(procFormatMessageA.Addr(),
		uintptr(flags), 0, uintptr(msgid), 0, uintptr(unsafe.Pointer(buf)), uintptr(size), 0)
	return uint32(r0)
}

func hkey(root types.Root) uintptr {
	if root == types.CurrentUser {
		return uintptr(windows.HKEY_CURRENT_USER)
	}
	return uintptr(windows.HKEY_LOCAL_MACHINE)
}

// Key is an open registry key with KEY_QUERY_VALUE access.
type Key struct {
	h    windows.Handle
	path string
	cp   uint32
}

// OpenKey opens root\subkey for querying values.
func OpenKey(root types.Root, subkey string) (*Key, error) {
	if err := validSubkey(root, subkey); err != nil {
		return nil, err
	}
	path := types.KeyPath(root, subkey)
	csubkey := append([]byte(subkey), 0)

	var h windows.Handle
	if st := regOpenKeyEx(hkey(root), &csubkey[0], windows.KEY_QUERY_VALUE, &h); st != statusSuccess {
		return nil, statusError(types.ErrKindKeyOpen, "open", path, st, FormatError(st))
	}
	return &Key{h: h, path: path, cp: codepage.Active()}, nil
}

// Path returns the key path in HKLM\... form.
func (k *Key) Path() string { return k.path }

// Close releases the handle. Subsequent calls do nothing.
func (k *Key) Close() error {
	if k == nil || k.h == 0 {
		return nil
	}
	st := regCloseKey(k.h)
	k.h = 0
	if st != statusSuccess {
		return statusError(types.ErrKindKeyOpen, "close", k.path, st, FormatError(st))
	}
	return nil
}

func (k *Key) closedError(op string) error {
	return &types.Error{Kind: types.ErrKindValueQuery, Op: op, Path: k.path, Msg: "key is closed"}
}

// QueryValue reads a value into a fixed types.MaxValueSize buffer. Values that
// do not fit fail with ErrKindValueTooLarge; the read is not retried.
func (k *Key) QueryValue(name string) (types.Value, error) {
	if k.h == 0 {
		return types.Value{}, k.closedError("query")
	}
	path := valuePath(k.path, name)
	cname := codepage.Encode(k.cp, name)
	if bytes.IndexByte(cname, 0) >= 0 {
		return types.Value{}, &types.Error{Kind: types.ErrKindValueQuery, Op: "query", Path: path, Msg: "value name contains NUL"}
	}
	cname = append(cname, 0)

	buf := make([]byte, types.MaxValueSize)
	n := uint32(len(buf))
	var typ uint32
	if st := regQueryValueEx(k.h, &cname[0], &typ, &buf[0], &n); st != statusSuccess {
		return types.Value{}, statusError(types.ErrKindValueQuery, "query", path, st, FormatError(st))
	}
	return types.Value{Type: types.RegType(typ), Data: trimReported(buf, n)}, nil
}

// EnumValues walks the key's values from index 0 until the platform reports
// no more items. Reaching types.MaxEnumValues is an error.
func (k *Key) EnumValues() ([]types.NamedValue, error) {
	if k.h == 0 {
		return nil, k.closedError("enumerate")
	}
	name := make([]byte, types.MaxValueNameSize)
	data := make([]byte, types.MaxValueSize)
	return enumerate(k.path, types.MaxEnumValues, func(i uint32) (types.NamedValue, uint32) {
		nameLen := uint32(len(name))
		dataLen := uint32(len(data))
		var typ uint32
		st := regEnumValue(k.h, i, &name[0], &nameLen, &typ, &data[0], &dataLen)
		if st != statusSuccess {
			return types.NamedValue{}, st
		}
		return types.NamedValue{
			Name:  codepage.Decode(k.cp, cstring(name[:nameLen])),
			Value: types.Value{Type: types.RegType(typ), Data: trimReported(data, dataLen)},
		}, st
	})
}

// ExpandEnv expands %NAME% references against the live process environment
// through ExpandEnvironmentStringsA. It reports false when the platform
// returns zero or needs more than types.MaxExpandSize bytes.
func ExpandEnv(s string) (string, bool) {
	cp := codepage.Active()
	src := codepage.Encode(cp, s)
	if bytes.IndexByte(src, 0) >= 0 {
		return "", false
	}
	src = append(src, 0)

	dst := make([]byte, types.MaxExpandSize)
	out, ok := expandResult(dst, expandEnvironmentStrings(&src[0], &dst[0], uint32(len(dst))))
	if !ok {
		return "", false
	}
	return codepage.Decode(cp, out), true
}

// FormatError returns the system message for a Win32 status code.
func FormatError(status uint32) string {
	buf := make([]byte, 1024)
	flags := uint32(windows.FORMAT_MESSAGE_FROM_SYSTEM | windows.FORMAT_MESSAGE_IGNORE_INSERTS)
	n := formatMessage(flags, status, &buf[0], uint32(len(buf)))
	if n == 0 || int(n) > len(buf) {
		return windows.Errno(status).Error()
	}
	return trimMessage(codepage.Decode(codepage.Active(), buf[:n]))
}

// LastErrorText formats the calling thread's last error. Callers that hold
// a returned status should use FormatError instead, since any intervening
// call may overwrite the thread's value.
func LastErrorText() string {
	var status uint32
	var errno windows.Errno
	if err := windows.GetLastError(); errors.As(err, &errno) {
		status = uint32(errno)
	}
	return FormatError(status)
}

// Registry adapts the live registry to types.Registry.
type Registry struct{}

// OpenKey implements types.Registry.
func (Registry) OpenKey(root types.Root, subkey string) (types.Key, error) {
	k, err := OpenKey(root, subkey)
	if err != nil {
		return nil, err
	}
	return k, nil
}
