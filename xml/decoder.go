package xml

import (
	"bytes"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// decoderPhase tracks how far the byte-to-character stage has gotten
// in establishing the document's encoding before it starts handing
// runes to the tokenizer (spec §4.1).
type decoderPhase int

const (
	phaseSniffingBOM decoderPhase = iota
	phaseSniffingDeclaration
	phaseStreaming
)

// maxDeclarationSniff bounds how many undecoded bytes the decoder will
// accumulate while looking for the end of an XML/text declaration
// before giving up and treating the document as having none; this
// keeps the sniffing phase's memory bounded rather than buffering an
// unbounded prologue (spec §5 "bounded memory").
const maxDeclarationSniff = 512

// Decoder is the byte-to-character stage of the pipeline (spec §4.1):
// it strips a byte-order mark, locates and parses the XML or text
// declaration directly on bytes, picks a transcoder for a non-UTF-8
// declared charset, and normalizes line endings before anything
// reaches the tokenizer's rune-level state machine.
type Decoder struct {
	systemID string
	phase    decoderPhase
	pending  []byte // undecoded bytes buffered only during sniffing

	Version          XMLVersion
	EncodingName     string
	Standalone       string // "yes", "no", or "" if absent
	HasDeclaration   bool

	utf16        bool
	utf16BigEndian bool
	transcoder   func([]byte) ([]byte, error)

	rawLatch  []byte // undecoded tail bytes held back across a streaming Feed call, see trailingIncompleteBytes
	pendingCR bool    // true if the previous chunk ended mid CRLF
	pos       Position
}

// NewDecoder creates a Decoder for an entity identified by systemID
// (used only for diagnostics; pass "" for the document entity when
// unknown).
func NewDecoder(systemID string) *Decoder {
	return &Decoder{systemID: systemID, pos: Position{SystemID: systemID, Line: 1, Column: 1}}
}

// Feed accepts the next chunk of raw bytes and returns the runes
// decoded and normalized from it, ready for Tokenizer.Feed. It may
// return no runes (and no error) while still accumulating bytes
// during the sniffing phase. Call Feed with a nil/empty chunk and
// final=true to flush at end of input.
func (d *Decoder) Feed(chunk []byte, final bool) ([]rune, error) {
	switch d.phase {
	case phaseSniffingBOM:
		d.pending = append(d.pending, chunk...)
		if !d.sniffBOM() {
			if !final && len(d.pending) < 4 {
				return nil, nil // wait for enough bytes to recognize a BOM
			}
		}
		d.phase = phaseSniffingDeclaration
		return d.Feed(nil, final)

	case phaseSniffingDeclaration:
		d.pending = append(d.pending, chunk...)
		raw, ok, err := d.decodeBytesForSniffing(d.pending)
		if err != nil {
			return nil, err
		}
		if !ok {
			if final || len(d.pending) >= maxDeclarationSniff {
				d.HasDeclaration = false
				d.Version = XML10
				d.phase = phaseStreaming
				return d.finishPhaseTransition(final)
			}
			return nil, nil
		}
		if err := d.parseDeclaration(raw); err != nil {
			return nil, err
		}
		d.phase = phaseStreaming
		return d.finishPhaseTransition(final)

	default: // phaseStreaming
		return d.decodeChunk(chunk, final)
	}
}

// finishPhaseTransition decodes whatever bytes were buffered during
// sniffing, now that the encoding is settled. The declaration itself
// has already been read by parseDeclaration and is cut off here, so
// the tokenizer never sees it.
func (d *Decoder) finishPhaseTransition(final bool) ([]rune, error) {
	leftover := d.pending
	d.pending = nil
	if d.HasDeclaration {
		end := []byte("?>")
		if d.utf16 && d.utf16BigEndian {
			end = []byte{0, '?', 0, '>'}
		} else if d.utf16 {
			end = []byte{'?', 0, '>', 0}
		}
		if i := bytes.Index(leftover, end); i >= 0 {
			leftover = leftover[i+len(end):]
		}
	}
	return d.decodeChunk(leftover, final)
}

// sniffBOM inspects pending for a byte-order mark, consuming it and
// selecting UTF-16 transcoding if found. Returns true once a
// conclusive BOM/no-BOM determination has been made.
func (d *Decoder) sniffBOM() bool {
	p := d.pending
	switch {
	case bytes.HasPrefix(p, []byte{0xEF, 0xBB, 0xBF}):
		d.pending = p[3:]
		d.EncodingName = "UTF-8"
		return true
	case bytes.HasPrefix(p, []byte{0xFF, 0xFE}):
		d.pending = p[2:]
		d.utf16, d.utf16BigEndian = true, false
		d.EncodingName = "UTF-16"
		return true
	case bytes.HasPrefix(p, []byte{0xFE, 0xFF}):
		d.pending = p[2:]
		d.utf16, d.utf16BigEndian = true, true
		d.EncodingName = "UTF-16"
		return true
	case len(p) >= 3:
		return true // long enough to rule out every recognized BOM
	}
	return false
}

// decodeBytesForSniffing provisionally transcodes pending to UTF-8
// (honoring a UTF-16 BOM if one was found) and reports whether a
// complete declaration (or a definitive absence of one) can be seen
// yet. It does not commit any decoder state.
func (d *Decoder) decodeBytesForSniffing(pending []byte) ([]byte, bool, error) {
	raw := pending
	if d.utf16 {
		dec := utf16Encoding(d.utf16BigEndian).NewDecoder()
		decoded, err := dec.Bytes(pending)
		if err != nil {
			return nil, false, nil // not enough bytes yet for a clean rune boundary
		}
		raw = decoded
	}
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	open := []byte("<?xml")
	if len(trimmed) <= len(open) && bytes.HasPrefix(open, trimmed) {
		return nil, false, nil // too few bytes yet to tell a declaration from other markup
	}
	if !bytes.HasPrefix(trimmed, open) || !isXMLWhitespace(rune(trimmed[len(open)])) {
		return nil, true, nil // no declaration at all, conclusively ("<?xml-stylesheet" is a PI)
	}
	end := bytes.Index(trimmed, []byte("?>"))
	if end < 0 {
		return nil, false, nil
	}
	return trimmed[:end+2], true, nil
}

func utf16Encoding(bigEndian bool) encoding.Encoding {
	if bigEndian {
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	}
	return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
}

// parseDeclaration extracts version/encoding/standalone from the
// sniffed declaration bytes (spec §4.1) and selects the transcoder the
// rest of the stream will use. declBytes is either a complete "<?xml
// ...?>" declaration or nil when none was found.
func (d *Decoder) parseDeclaration(declBytes []byte) error {
	if !bytes.HasPrefix(bytes.TrimLeft(declBytes, " \t\r\n"), []byte("<?xml")) {
		d.Version = XML10
		return d.selectTranscoder()
	}
	d.HasDeclaration = true
	decl := bytes.TrimLeft(declBytes, " \t\r\n")

	switch {
	case bytes.Contains(decl, []byte(`version="1.1"`)), bytes.Contains(decl, []byte(`version='1.1'`)):
		d.Version = XML11
	case bytes.Contains(decl, []byte(`version="1.0"`)), bytes.Contains(decl, []byte(`version='1.0'`)):
		d.Version = XML10
	default:
		d.Version = XML10
	}

	if name := sniffDeclaredEncoding(decl); name != "" {
		if d.EncodingName != "" && d.EncodingName != "UTF-8" && !equalFoldASCII(name, "UTF-16") && !equalFoldASCII(name, d.EncodingName) {
			return fatalf(d.pos, "declared encoding %q is incompatible with the detected byte-order mark (%s)", name, d.EncodingName)
		}
		if !d.utf16 {
			d.EncodingName = name
		}
	}

	switch {
	case bytes.Contains(decl, []byte(`standalone="yes"`)), bytes.Contains(decl, []byte(`standalone='yes'`)):
		d.Standalone = "yes"
	case bytes.Contains(decl, []byte(`standalone="no"`)), bytes.Contains(decl, []byte(`standalone='no'`)):
		d.Standalone = "no"
	}

	return d.selectTranscoder()
}

func (d *Decoder) selectTranscoder() error {
	if d.utf16 {
		enc := utf16Encoding(d.utf16BigEndian)
		dec := enc.NewDecoder()
		d.transcoder = dec.Bytes
		return nil
	}
	name := d.EncodingName
	if name == "" || equalFoldASCII(name, "UTF-8") || equalFoldASCII(name, "UTF8") {
		d.transcoder = func(b []byte) ([]byte, error) { return b, nil }
		return nil
	}
	d.transcoder = func(b []byte) ([]byte, error) { return decodeToUTF8(b, name) }
	return nil
}

// decodeChunk transcodes chunk to UTF-8 (if needed), normalizes line
// endings per spec §2.11/§4.1 (CR, CRLF and, for XML 1.1, NEL/LSEP all
// collapse to a single LF before the tokenizer ever sees them), and
// returns the resulting runes. A chunk boundary that falls inside a
// multi-byte sequence is latched and prepended to the next call
// instead of being transcoded prematurely (spec §4.1 "chunked
// underflow handling"; spec §8's boundary property that a byte stream
// split inside a multi-byte sequence still produces the same events).
func (d *Decoder) decodeChunk(chunk []byte, final bool) ([]rune, error) {
	raw := chunk
	if len(d.rawLatch) > 0 {
		raw = append(d.rawLatch, raw...)
		d.rawLatch = nil
	}
	if len(raw) == 0 {
		return nil, nil
	}

	toProcess := raw
	if hold := d.trailingIncompleteBytes(raw); hold > 0 {
		if final {
			return nil, fatalf(d.pos, "truncated multi-byte sequence at end of input")
		}
		toProcess = raw[:len(raw)-hold]
		d.rawLatch = append([]byte(nil), raw[len(raw)-hold:]...)
		if len(toProcess) == 0 {
			return nil, nil
		}
	}

	utf8Bytes, err := d.transcoder(toProcess)
	if err != nil {
		return nil, fatalf(d.pos, "%s", err)
	}
	runes := make([]rune, 0, len(utf8Bytes))
	for _, r := range string(utf8Bytes) {
		if d.pendingCR {
			d.pendingCR = false
			if r == '\n' {
				continue // the CR already produced the LF
			}
		}
		switch r {
		case '\r':
			d.pendingCR = true
			runes = append(runes, '\n')
			continue
		case '', ' ':
			if d.Version == XML11 {
				runes = append(runes, '\n')
				continue
			}
		}
		runes = append(runes, r)
	}
	if final && d.pendingCR {
		d.pendingCR = false
	}
	return runes, nil
}

// trailingIncompleteBytes reports how many bytes at the end of raw
// belong to a multi-byte sequence that hasn't been completed yet,
// given the transcoding currently selected. It returns 0 for
// single-byte encodings, where no chunk boundary can split a unit.
func (d *Decoder) trailingIncompleteBytes(raw []byte) int {
	if d.utf16 {
		return trailingIncompleteUTF16(raw, d.utf16BigEndian)
	}
	name := d.EncodingName
	if name == "" || equalFoldASCII(name, "UTF-8") || equalFoldASCII(name, "UTF8") {
		return trailingIncompleteUTF8(raw)
	}
	return 0
}

// trailingIncompleteUTF8 returns the number of bytes at the end of b
// that start a UTF-8 sequence too short to be complete, 0 if b ends on
// a rune boundary (or ends with bytes invalid enough that the
// transcoder should report them directly).
func trailingIncompleteUTF8(b []byte) int {
	n := len(b)
	for back := 1; back <= 3 && back <= n; back++ {
		c := b[n-back]
		if c&0xC0 == 0x80 {
			continue // continuation byte, keep walking back to the lead byte
		}
		var want int
		switch {
		case c&0x80 == 0x00:
			want = 1
		case c&0xE0 == 0xC0:
			want = 2
		case c&0xF0 == 0xE0:
			want = 3
		case c&0xF8 == 0xF0:
			want = 4
		default:
			return 0 // not a valid lead byte; let the transcoder report the error
		}
		if want > back {
			return back
		}
		return 0
	}
	return 0
}

// trailingIncompleteUTF16 returns the number of bytes at the end of b
// that belong to an incomplete UTF-16 code unit, or an unpaired high
// surrogate awaiting its low surrogate.
func trailingIncompleteUTF16(b []byte, bigEndian bool) int {
	n := len(b)
	if n%2 != 0 {
		return 1
	}
	if n < 2 {
		return n
	}
	var unit uint16
	if bigEndian {
		unit = uint16(b[n-2])<<8 | uint16(b[n-1])
	} else {
		unit = uint16(b[n-1])<<8 | uint16(b[n-2])
	}
	if unit >= 0xD800 && unit <= 0xDBFF {
		return 2
	}
	return 0
}

func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
