// Package regenv rebuilds PATH, and optionally the whole environment, from
// the persistent per-machine and per-user environment in the registry.
//
// # Sources
//
// Two well-known keys hold the persistent environment:
//
//	HKLM\SYSTEM\CurrentControlSet\Control\Session Manager\Environment
//	HKCU\Environment
//
// HKCU\Volatile Environment additionally holds per-logon values such as
// USERPROFILE and HOMEPATH. Environment reads all three.
//
// # Composition
//
// The "Path" value of each hive is projected to text (REG_SZ and REG_EXPAND_SZ
// alike), expanded as a whole with the live process environment, and the
// two results are joined user-first:
//
//	user ";" system
//
// A hive whose Path is absent, empty or blank contributes nothing, and no
// leading or trailing separator is introduced. When expansion is not
// possible (unknown reference with a zero-length platform result, or a result
// longer than the 1,024-byte buffer) the literal registry text is used.
//
// # Errors
//
// A missing key or value is not an error. Anything else (access denied,
// value too large, a Path stored with a non-string type) is returned, unless
// the Composer was built WithBestEffort, in which case the failing hive is
// logged and treated as empty.
//
// # Example
//
//	c := regenv.Default(regenv.WithBestEffort(true))
//	path, err := c.Compose()
//	if err != nil {
//	    return err
//	}
//	os.Setenv("PATH", path)
//
// The Composer keeps no state between calls; re-running Compose on an
// unchanged registry yields identical output.
package regenv
