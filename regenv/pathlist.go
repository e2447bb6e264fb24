package regenv

import "strings"

// Separator splits PATH lists. Quoting is not interpreted.
const Separator = ";"

// Merge joins two path strings with a single separator, first before second.
// A blank side is dropped entirely; both blank yields "".
func Merge(first, second string) string {
	first = blankToEmpty(first)
	second = blankToEmpty(second)
	switch {
	case first == "":
		return second
	case second == "":
		return first
	default:
		return first + Separator + second
	}
}

func blankToEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}

// Split splits on the literal ';' and drops empty segments.
func Split(s string) []string {
	parts := SplitRaw(s)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SplitRaw splits on the literal ';' keeping empty segments. "" yields nil.
func SplitRaw(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, Separator)
}

// Join joins entries with ';'.
func Join(entries []string) string {
	return strings.Join(entries, Separator)
}

// Dedupe removes repeated entries, keeping the first occurrence. Entries are
// compared case-insensitively and without a trailing backslash, since
// C:\Tools and c:\tools\ name the same directory on Windows.
func Dedupe(entries []string) []string {
	seen := make(map[string]struct{}, len(entries))
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		key := strings.ToLower(strings.TrimRight(strings.TrimSpace(e), `\`))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, e)
	}
	return out
}
