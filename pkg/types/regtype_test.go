package types

import (
	"errors"
	"testing"
)

func TestRegType_String(t *testing.T) {
	tests := []struct {
		name     string
		regType  RegType
		expected string
	}{
		// Known types
		{"REG_NONE", REG_NONE, "REG_NONE"},
		{"REG_SZ", REG_SZ, "REG_SZ"},
		{"REG_EXPAND_SZ", REG_EXPAND_SZ, "REG_EXPAND_SZ"},
		{"REG_BINARY", REG_BINARY, "REG_BINARY"},
		{"REG_DWORD", REG_DWORD, "REG_DWORD_LITTLE_ENDIAN"},
		{"REG_DWORD_BIG_ENDIAN", REG_DWORD_BIG_ENDIAN, "REG_DWORD_BIG_ENDIAN"},
		{"REG_LINK", REG_LINK, "REG_LINK"},
		{"REG_MULTI_SZ", REG_MULTI_SZ, "REG_MULTI_SZ"},
		{"REG_RESOURCE_LIST", REG_RESOURCE_LIST, "REG_RESOURCE_LIST"},
		{"REG_FULL_RESOURCE_DESCRIPTOR", REG_FULL_RESOURCE_DESCRIPTOR, "REG_FULL_RESOURCE_DESCRIPTOR"},
		{"REG_RESOURCE_REQUIREMENTS_LIST", REG_RESOURCE_REQUIREMENTS_LIST, "REG_RESOURCE_REQUIREMENTS_LIST"},
		{"REG_QWORD", REG_QWORD, "REG_QWORD"},
		// Anything else is Unknown
		{"Type 12", RegType(12), "Unknown"},
		{"Type 100", RegType(100), "Unknown"},
		{"Invalid type 0xFFFFFFFF", RegType(0xFFFFFFFF), "Unknown"},
		{"Invalid type 0xFFFF0019 - from real data", RegType(0xFFFF0019), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.regType.String()
			if result != tt.expected {
				t.Errorf("RegType(%d).String() = %q, expected %q",
					uint32(tt.regType), result, tt.expected)
			}
		})
	}
}

func TestRegType_IsString(t *testing.T) {
	for typ := RegType(0); typ <= 12; typ++ {
		want := typ == REG_SZ || typ == REG_EXPAND_SZ
		if got := typ.IsString(); got != want {
			t.Errorf("%s.IsString() = %v, want %v", typ, got, want)
		}
	}
}

func TestRoot(t *testing.T) {
	tests := []struct {
		in    string
		want  Root
		short string
		full  string
	}{
		{"HKLM", LocalMachine, "HKLM", "HKEY_LOCAL_MACHINE"},
		{"hkey_local_machine", LocalMachine, "HKLM", "HKEY_LOCAL_MACHINE"},
		{" hkcu ", CurrentUser, "HKCU", "HKEY_CURRENT_USER"},
		{"HKEY_CURRENT_USER", CurrentUser, "HKCU", "HKEY_CURRENT_USER"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRoot(tt.in)
			if err != nil {
				t.Fatalf("ParseRoot(%q) failed: %v", tt.in, err)
			}
			if got != tt.want || got.Short() != tt.short || got.String() != tt.full {
				t.Errorf("ParseRoot(%q) = %v (%s)", tt.in, got, got.Short())
			}
		})
	}

	if _, err := ParseRoot("HKCR"); err == nil {
		t.Error("ParseRoot(HKCR) should fail")
	} else {
		if _, typed := KindOf(err); typed || errors.Is(err, ErrKeyOpen) {
			t.Errorf("ParseRoot(HKCR) error = %v, want a plain usage error", err)
		}
		if want := `unknown hive "HKCR" (want HKLM or HKCU)`; err.Error() != want {
			t.Errorf("ParseRoot(HKCR) error = %q, want %q", err.Error(), want)
		}
	}
	if got := KeyPath(CurrentUser, "Environment"); got != `HKCU\Environment` {
		t.Errorf("KeyPath = %q", got)
	}
	if got := KeyPath(LocalMachine, ""); got != "HKLM" {
		t.Errorf("KeyPath = %q", got)
	}
}
