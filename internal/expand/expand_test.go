package expand

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regrun/pkg/types"
)

func TestExpand(t *testing.T) {
	lookup := MapLookup(map[string]string{
		"USERPROFILE": `C:\Users\a`,
		"SystemRoot":  `C:\Windows`,
		"EMPTY":       "",
	})

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no references", `C:\bin`, `C:\bin`},
		{"single reference", `%USERPROFILE%\bin`, `C:\Users\a\bin`},
		{"case-insensitive name", `%userprofile%\bin`, `C:\Users\a\bin`},
		{"whole path list", `%SystemRoot%;%SystemRoot%\system32`, `C:\Windows;C:\Windows\system32`},
		{"undefined stays literal", `%NOPE%\x`, `%NOPE%\x`},
		{"undefined then defined", `%NOPE%SystemRoot%`, `%NOPEC:\Windows`},
		{"empty value", `a%EMPTY%b`, `ab`},
		{"double percent", `100%%`, `100%%`},
		{"unterminated", `50% off`, `50% off`},
		{"empty input", ``, ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Expand(tt.in, lookup)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpand_BufferLimit(t *testing.T) {
	// Result plus NUL exactly fills the buffer.
	fits := strings.Repeat("a", types.MaxExpandSize-1)
	got, ok := Expand(fits, nil)
	require.True(t, ok)
	assert.Equal(t, fits, got)

	// One more character is not expandable.
	_, ok = Expand(fits+"a", nil)
	assert.False(t, ok)

	// Growth through substitution counts too.
	lookup := MapLookup(map[string]string{"BIG": strings.Repeat("x", types.MaxExpandSize)})
	_, ok = Expand("%BIG%", lookup)
	assert.False(t, ok)
}

func TestEnvironLookup(t *testing.T) {
	lookup := EnvironLookup([]string{
		"=C:=C:\\work",
		"Path=C:\\first",
		"PATH=C:\\second",
		"malformed",
		"TEMP=C:\\tmp=x",
	})

	v, ok := lookup("path")
	require.True(t, ok)
	assert.Equal(t, `C:\first`, v)

	v, ok = lookup("=C:")
	require.True(t, ok)
	assert.Equal(t, `C:\work`, v)

	v, ok = lookup("TEMP")
	require.True(t, ok)
	assert.Equal(t, `C:\tmp=x`, v)

	_, ok = lookup("malformed")
	assert.False(t, ok)
}
