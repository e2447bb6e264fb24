package types

import "errors"

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindKeyOpen       ErrKind = iota // opening a key failed
	ErrKindValueQuery                   // reading or enumerating a value failed
	ErrKindValueTooLarge                // value does not fit the fixed buffer
	ErrKindTypeNotString                // value has no textual projection
	ErrKindExpansion                    // %VAR% expansion not possible
	ErrKindEnumTruncated                // enumeration hit the iteration cap
	ErrKindNotFound                     // key or value is not present; replaces KeyOpen/ValueQuery for ERROR_FILE_NOT_FOUND
	ErrKindUnsupported                  // platform has no registry
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindKeyOpen:
		return "key-open"
	case ErrKindValueQuery:
		return "value-query"
	case ErrKindValueTooLarge:
		return "value-too-large"
	case ErrKindTypeNotString:
		return "type-not-string"
	case ErrKindExpansion:
		return "expansion"
	case ErrKindEnumTruncated:
		return "enumeration-truncated"
	case ErrKindNotFound:
		return "not-found"
	case ErrKindUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Op   string // operation, e.g. "open", "query", "enumerate"
	Path string // key or value path the operation was applied to
	Msg  string // platform-formatted text or a short description
	Err  error  // optional underlying cause (usually a syscall.Errno)
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	s := e.Msg
	if e.Path != "" {
		s = e.Path + ": " + s
	}
	if e.Op != "" {
		s = e.Op + " " + s
	}
	if e.Err != nil && e.Msg == "" {
		s += e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// works for every not-found error regardless of path.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is.
var (
	ErrKeyOpen       = &Error{Kind: ErrKindKeyOpen, Msg: "cannot open key"}
	ErrValueQuery    = &Error{Kind: ErrKindValueQuery, Msg: "cannot query value"}
	ErrValueTooLarge = &Error{Kind: ErrKindValueTooLarge, Msg: "value too large"}
	ErrTypeNotString = &Error{Kind: ErrKindTypeNotString, Msg: "registry value is not a string"}
	ErrExpansion     = &Error{Kind: ErrKindExpansion, Msg: "not expandable"}
	ErrEnumTruncated = &Error{Kind: ErrKindEnumTruncated, Msg: "too many values"}
	ErrNotFound      = &Error{Kind: ErrKindNotFound, Msg: "not found"}
	ErrUnsupported   = &Error{Kind: ErrKindUnsupported, Msg: "registry access requires windows"}
)

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
