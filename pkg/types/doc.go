// Package types defines the registry value model shared by the platform
// bindings, the path composer and the in-memory test registry.
//
// It exposes the root scopes (HKLM/HKCU), the closed RegType enumeration, the
// Value pair of type tag and raw bytes with its partial textual projection,
// the read-only Key/Registry interfaces, and typed errors with stable
// categories (key-open/value-query/too-large/not-string/...).
//
// Design goals:
//   - Length-exact payloads: Data is trimmed to what the platform reported.
//   - Only REG_SZ and REG_EXPAND_SZ have a textual form.
//   - Typed errors matched with errors.Is against the sentinels.
package types
