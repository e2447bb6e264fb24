package types

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/joshuapare/regrun/internal/codepage"
)

// -----------------------------------------------------------------------------
// Root scopes
// -----------------------------------------------------------------------------

// Root selects one of the two hives that persist the environment.
type Root int

const (
	LocalMachine Root = iota // HKEY_LOCAL_MACHINE
	CurrentUser              // HKEY_CURRENT_USER
)

// String returns the full predefined key name.
func (r Root) String() string {
	switch r {
	case LocalMachine:
		return "HKEY_LOCAL_MACHINE"
	case CurrentUser:
		return "HKEY_CURRENT_USER"
	default:
		return "HKEY_UNKNOWN"
	}
}

// Short returns the abbreviated hive name used in diagnostics (HKLM/HKCU).
func (r Root) Short() string {
	switch r {
	case LocalMachine:
		return "HKLM"
	case CurrentUser:
		return "HKCU"
	default:
		return "HK?"
	}
}

// ParseRoot accepts either the short or the full hive name, case-insensitively.
func ParseRoot(s string) (Root, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HKLM", "HKEY_LOCAL_MACHINE":
		return LocalMachine, nil
	case "HKCU", "HKEY_CURRENT_USER":
		return CurrentUser, nil
	}
	return 0, fmt.Errorf("unknown hive %q (want HKLM or HKCU)", s)
}

// KeyPath renders root and subkey the way regedit shows them.
func KeyPath(root Root, subkey string) string {
	if subkey == "" {
		return root.Short()
	}
	return root.Short() + `\` + subkey
}

// -----------------------------------------------------------------------------
// Value types
// -----------------------------------------------------------------------------

// RegType enumerates Windows registry value types.
// (The numbers align with Windows definitions.)
type RegType uint32

const (
	REG_NONE                       RegType = 0
	REG_SZ                         RegType = 1
	REG_EXPAND_SZ                  RegType = 2
	REG_BINARY                     RegType = 3
	REG_DWORD_LITTLE_ENDIAN        RegType = 4
	REG_DWORD                      RegType = 4 // alias for clarity
	REG_DWORD_BIG_ENDIAN           RegType = 5
	REG_LINK                       RegType = 6
	REG_MULTI_SZ                   RegType = 7
	REG_RESOURCE_LIST              RegType = 8
	REG_FULL_RESOURCE_DESCRIPTOR   RegType = 9
	REG_RESOURCE_REQUIREMENTS_LIST RegType = 10
	REG_QWORD                      RegType = 11
)

// String implements the Stringer interface for RegType. Tags outside the
// Windows enumeration report "Unknown".
func (t RegType) String() string {
	switch t {
	case REG_NONE:
		return "REG_NONE"
	case REG_SZ:
		return "REG_SZ"
	case REG_EXPAND_SZ:
		return "REG_EXPAND_SZ"
	case REG_BINARY:
		return "REG_BINARY"
	case REG_DWORD_LITTLE_ENDIAN:
		return "REG_DWORD_LITTLE_ENDIAN"
	case REG_DWORD_BIG_ENDIAN:
		return "REG_DWORD_BIG_ENDIAN"
	case REG_LINK:
		return "REG_LINK"
	case REG_MULTI_SZ:
		return "REG_MULTI_SZ"
	case REG_RESOURCE_LIST:
		return "REG_RESOURCE_LIST"
	case REG_FULL_RESOURCE_DESCRIPTOR:
		return "REG_FULL_RESOURCE_DESCRIPTOR"
	case REG_RESOURCE_REQUIREMENTS_LIST:
		return "REG_RESOURCE_REQUIREMENTS_LIST"
	case REG_QWORD:
		return "REG_QWORD"
	default:
		return "Unknown"
	}
}

// IsString reports whether the type has a textual projection.
func (t RegType) IsString() bool {
	return t == REG_SZ || t == REG_EXPAND_SZ
}

// Value is a registry value as returned by the platform: its declared type and
// the raw payload, trimmed to the size the platform reported. String payloads
// keep their terminating NUL.
type Value struct {
	Type RegType
	Data []byte
}

// Text projects REG_SZ and REG_EXPAND_SZ values to a Go string, decoding the
// bytes before the first NUL with the active ANSI code page. Any other type
// has no textual form and reports false.
func (v Value) Text() (string, bool) {
	return v.TextWith(codepage.Active())
}

// TextWith is Text with an explicit code page.
func (v Value) TextWith(cp uint32) (string, bool) {
	if !v.Type.IsString() {
		return "", false
	}
	data := v.Data
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	return codepage.Decode(cp, data), true
}

// Expandable reports whether the value is declared REG_EXPAND_SZ. The composer
// expands both string types regardless; this is informational.
func (v Value) Expandable() bool {
	return v.Type == REG_EXPAND_SZ
}

// Len returns the payload size in bytes.
func (v Value) Len() int { return len(v.Data) }

// NamedValue is one entry produced by value enumeration.
type NamedValue struct {
	Name string
	Value
}

// -----------------------------------------------------------------------------
// Read-only registry API
// -----------------------------------------------------------------------------

// Key is an open registry key with query-only access. Close releases the
// underlying handle; it is safe to call more than once.
type Key interface {
	// QueryValue reads one value by name ("" is the default value).
	QueryValue(name string) (Value, error)

	// EnumValues returns every value of the key in platform order.
	EnumValues() ([]NamedValue, error)

	Close() error
}

// Registry opens keys. Implementations: the live Windows registry and the
// in-memory registry used by tests.
type Registry interface {
	OpenKey(root Root, subkey string) (Key, error)
}
