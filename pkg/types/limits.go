package types

// ============================================================================
// Buffer limits
// ============================================================================
// The platform bindings never perform the "query size, then query data"
// handshake; they pass fixed buffers and surface overflow as an error.

const (
	// MaxValueSize is the data buffer handed to the query and enumeration
	// entry points, terminating NUL included. Larger values fail with
	// ErrKindValueTooLarge.
	MaxValueSize = 8 << 10 // 8,192 bytes

	// MaxValueNameSize is the name buffer used during enumeration.
	MaxValueNameSize = 8 << 10

	// MaxExpandSize is the output buffer for %VAR% expansion, terminating
	// NUL included. Longer expansions are reported as not expandable.
	MaxExpandSize = 1024

	// MaxEnumValues caps value enumeration. Reaching it is fatal.
	MaxEnumValues = 1_000_000
)
