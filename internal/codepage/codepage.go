// Package codepage converts between Go strings and the bytes the ANSI ("A")
// Windows entry points exchange, using the process's active code page.
package codepage

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

// Code page identifiers as returned by GetACP.
const (
	Windows1252 uint32 = 1252
	UTF8        uint32 = 65001
)

var encodings = map[uint32]encoding.Encoding{
	437:   charmap.CodePage437,
	850:   charmap.CodePage850,
	852:   charmap.CodePage852,
	855:   charmap.CodePage855,
	858:   charmap.CodePage858,
	860:   charmap.CodePage860,
	862:   charmap.CodePage862,
	863:   charmap.CodePage863,
	865:   charmap.CodePage865,
	866:   charmap.CodePage866,
	874:   charmap.Windows874,
	932:   japanese.ShiftJIS,
	936:   simplifiedchinese.GBK,
	949:   korean.EUCKR,
	950:   traditionalchinese.Big5,
	1250:  charmap.Windows1250,
	1251:  charmap.Windows1251,
	1252:  charmap.Windows1252,
	1253:  charmap.Windows1253,
	1254:  charmap.Windows1254,
	1255:  charmap.Windows1255,
	1256:  charmap.Windows1256,
	1257:  charmap.Windows1257,
	1258:  charmap.Windows1258,
	10000: charmap.Macintosh,
	20866: charmap.KOI8R,
	21866: charmap.KOI8U,
	28591: charmap.ISO8859_1,
	28592: charmap.ISO8859_2,
	28595: charmap.ISO8859_5,
	28605: charmap.ISO8859_15,
	54936: simplifiedchinese.GB18030,
	65001: unicode.UTF8,
}

// Encoding returns the x/text encoding for a Windows code page. Unknown code
// pages fall back to Windows-1252, the code page of every Western locale.
func Encoding(cp uint32) encoding.Encoding {
	if enc, ok := encodings[cp]; ok {
		return enc
	}
	return charmap.Windows1252
}

// Known reports whether cp has a dedicated decoder.
func Known(cp uint32) bool {
	_, ok := encodings[cp]
	return ok
}

// Decode converts ANSI bytes to UTF-8. Decoding is lossy: bytes the code
// page does not define become U+FFFD.
func Decode(cp uint32, b []byte) string {
	if len(b) == 0 {
		return ""
	}
	out, err := Encoding(cp).NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "�")
	}
	return string(out)
}

// Encode converts a Go string to ANSI bytes. Characters the code page cannot
// represent are replaced with the code page's substitution byte.
func Encode(cp uint32, s string) []byte {
	if s == "" {
		return nil
	}
	out, err := encoding.ReplaceUnsupported(Encoding(cp).NewEncoder()).Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}
	return out
}
