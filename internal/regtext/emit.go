// Package regtext renders registry values as regedit-compatible .reg text.
package regtext

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/text/encoding/unicode"

	"github.com/joshuapare/regrun/internal/codepage"
	"github.com/joshuapare/regrun/pkg/types"
)

var errUnsupportedEncoding = errors.New("regtext: unsupported encoding")

// ExportOptions controls .reg output.
type ExportOptions struct {
	// CodePage is the ANSI code page string payloads are encoded in.
	// Zero means the active code page.
	CodePage uint32
	// OutputEncoding is "UTF-8" (default) or "UTF-16LE", which is what
	// regedit itself writes.
	OutputEncoding string
	// WithBOM prefixes UTF-16LE output with a byte order mark.
	WithBOM bool
}

// ExportValues writes one key section holding values to w. Values are sorted
// by name, the default value first. Names are already UTF-8, as enumeration
// returns them; only string payloads are decoded from the ANSI code page.
func ExportValues(w io.Writer, root types.Root, subkey string, values []types.NamedValue, opts ExportOptions) error {
	cp := opts.CodePage
	if cp == 0 {
		cp = codepage.Active()
	}

	var buf bytes.Buffer
	buf.WriteString(RegFileHeader + CRLF + CRLF)

	buf.WriteString(KeyOpenBracket)
	buf.WriteString(root.String())
	if subkey != "" {
		buf.WriteString(Backslash)
		buf.WriteString(subkey)
	}
	buf.WriteString(KeyCloseBracket + CRLF)

	sorted := make([]types.NamedValue, len(values))
	copy(sorted, values)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})
	for _, nv := range sorted {
		emitValue(&buf, nv, cp)
	}
	buf.WriteString(CRLF)

	var out []byte
	switch strings.ToUpper(opts.OutputEncoding) {
	case "", EncodingUTF8:
		out = buf.Bytes()
	case EncodingUTF16LE:
		bom := unicode.IgnoreBOM
		if opts.WithBOM {
			bom = unicode.UseBOM
		}
		enc, err := unicode.UTF16(unicode.LittleEndian, bom).NewEncoder().Bytes(buf.Bytes())
		if err != nil {
			return err
		}
		out = enc
	default:
		return errUnsupportedEncoding
	}
	_, err := w.Write(out)
	return err
}

func emitValue(buf *bytes.Buffer, nv types.NamedValue, cp uint32) {
	start := buf.Len()
	if nv.Name == "" {
		buf.WriteString(DefaultValuePrefix)
	} else {
		buf.WriteString(Quote)
		buf.WriteString(escapeString(nv.Name))
		buf.WriteString(Quote + ValueAssignment)
	}

	var (
		prefix string
		data   []byte
	)
	switch nv.Type {
	case types.REG_SZ:
		text, _ := nv.TextWith(cp)
		buf.WriteString(Quote)
		buf.WriteString(escapeString(text))
		buf.WriteString(Quote + CRLF)
		return
	case types.REG_DWORD:
		if len(nv.Data) == 4 {
			buf.WriteString(DWORDPrefix)
			fmt.Fprintf(buf, DWORDHexFormat, binary.LittleEndian.Uint32(nv.Data))
			buf.WriteString(CRLF)
			return
		}
		prefix, data = fmt.Sprintf(HexTypeFormat, uint32(nv.Type)), nv.Data
	case types.REG_EXPAND_SZ:
		text, _ := nv.TextWith(cp)
		prefix, data = HexExpandSZPrefix, encodeUTF16LEZeroTerminated(text)
	case types.REG_MULTI_SZ:
		prefix, data = HexMultiSZPrefix, encodeMultiString(splitMultiString(nv.Data, cp))
	case types.REG_BINARY:
		prefix, data = HexPrefix, nv.Data
	default:
		prefix, data = fmt.Sprintf(HexTypeFormat, uint32(nv.Type)), nv.Data
	}

	buf.WriteString(prefix)
	writeHex(buf, buf.Len()-start, data)
	buf.WriteString(CRLF)
}

func escapeString(s string) string {
	s = strings.ReplaceAll(s, Backslash, EscapedBackslash)
	s = strings.ReplaceAll(s, Quote, EscapedQuote)
	return s
}

// writeHex writes comma-separated hex bytes, continuing onto indented lines
// ending in a backslash once a line would exceed HexLineWidth. col is the
// width already used on the current line.
func writeHex(buf *bytes.Buffer, col int, data []byte) {
	for i, b := range data {
		piece := fmt.Sprintf(HexByteFormat, b)
		if i < len(data)-1 {
			piece += HexByteSeparator
		}
		if i > 0 && col+len(piece) > HexLineWidth-1 {
			buf.WriteString(Backslash + CRLF + "  ")
			col = 2
		}
		buf.WriteString(piece)
		col += len(piece)
	}
}

// splitMultiString decodes an ANSI REG_MULTI_SZ payload. The list ends at
// the first empty string.
func splitMultiString(data []byte, cp uint32) []string {
	var out []string
	for len(data) > 0 {
		i := bytes.IndexByte(data, 0)
		if i < 0 {
			i = len(data)
		}
		if i == 0 {
			break
		}
		out = append(out, codepage.Decode(cp, data[:i]))
		if i == len(data) {
			break
		}
		data = data[i+1:]
	}
	return out
}

func encodeUTF16LEZeroTerminated(s string) []byte {
	enc, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().String(s + "\x00")
	if err != nil {
		return []byte{0, 0}
	}
	return []byte(enc)
}

func encodeMultiString(values []string) []byte {
	var buf bytes.Buffer
	for _, v := range values {
		buf.Write(encodeUTF16LEZeroTerminated(v))
	}
	buf.Write([]byte{0, 0})
	return buf.Bytes()
}
