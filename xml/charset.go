package xml

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
)

// lookupCharset resolves a declared or BOM-implied encoding name to a
// golang.org/x/text Encoding, the way the retrieved pack's charset
// readers resolve a handful of names by hand but generalized to the
// full IANA registry (spec §4.1 "charset negotiation"). UTF-8 and
// BOM-detected UTF-16 are handled by the decoder itself; any other
// name, including UTF-16 declared without a BOM, is resolved here.
func lookupCharset(name string) (encoding.Encoding, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	switch normalized {
	case "", "utf-8", "utf8":
		return encoding.Nop, nil
	}
	// ianaindex covers the common aliases (iso-8859-1, windows-1252,
	// shift_jis, euc-jp, ...); charmap is consulted directly for a
	// couple of legacy names ianaindex sometimes misses depending on
	// its build tags.
	if enc, err := ianaindex.IANA.Encoding(normalized); err == nil && enc != nil {
		return enc, nil
	}
	switch normalized {
	case "latin1", "cp1252":
		return charmap.Windows1252, nil
	case "iso-8859-15", "latin9":
		return charmap.ISO8859_15, nil
	}
	return nil, fmt.Errorf("unsupported charset %q", name)
}

// decodeToUTF8 transcodes raw into UTF-8 using the named charset. It is
// only invoked for the minority of documents whose declared or
// BOM-implied encoding isn't already UTF-8/UTF-16, spec §4.1's
// "non-Unicode legacy encodings" case.
func decodeToUTF8(raw []byte, charsetName string) ([]byte, error) {
	enc, err := lookupCharset(charsetName)
	if err != nil {
		return nil, err
	}
	if enc == encoding.Nop {
		return raw, nil
	}
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("transcoding charset %q: %w", charsetName, err)
	}
	return decoded, nil
}

// sniffDeclaredEncoding extracts the encoding pseudo-attribute from an
// XML or text declaration's raw bytes, without a full parse — the
// declaration is ASCII-only by construction (spec §2.8) so a narrow
// byte scan is sufficient and lets the decoder pick a transcoder
// before any rune-level tokenizing begins.
func sniffDeclaredEncoding(declBytes []byte) string {
	idx := bytes.Index(declBytes, []byte("encoding"))
	if idx < 0 {
		return ""
	}
	rest := declBytes[idx+len("encoding"):]
	eq := bytes.IndexByte(rest, '=')
	if eq < 0 {
		return ""
	}
	rest = bytes.TrimLeft(rest[eq+1:], " \t\r\n")
	if len(rest) == 0 {
		return ""
	}
	quote := rest[0]
	if quote != '\'' && quote != '"' {
		return ""
	}
	rest = rest[1:]
	end := bytes.IndexByte(rest, quote)
	if end < 0 {
		return ""
	}
	return string(rest[:end])
}
