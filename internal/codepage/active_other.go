//go:build !windows

package codepage

// Active returns Windows-1252 off Windows, where no ANSI code page exists.
func Active() uint32 { return Windows1252 }
