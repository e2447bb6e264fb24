//go:build windows

package codepage

import "golang.org/x/sys/windows"

var procGetACP = windows.NewLazySystemDLL("kernel32.dll").NewProc("GetACP")

// Active returns the process's ANSI code page.
func Active() uint32 {
	if procGetACP.Find() != nil {
		return Windows1252
	}
	r0, _, _ := procGetACP.Call()
	return uint32(r0)
}
