package xml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeAll(t *testing.T, d *Decoder, raw []byte) string {
	t.Helper()
	runes, err := d.Feed(raw, true)
	require.NoError(t, err)
	return string(runes)
}

func TestDecoderUTF8BOMStripped(t *testing.T) {
	d := NewDecoder("t.xml")
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("<root/>")...)
	got := decodeAll(t, d, raw)
	assert.Equal(t, "<root/>", got)
	assert.Equal(t, "UTF-8", d.EncodingName)
}

func TestDecoderNoDeclarationDefaultsXML10(t *testing.T) {
	d := NewDecoder("t.xml")
	got := decodeAll(t, d, []byte("<root/>"))
	assert.Equal(t, "<root/>", got)
	assert.Equal(t, XML10, d.Version)
	assert.False(t, d.HasDeclaration)
}

func TestDecoderParsesVersionAndStandalone(t *testing.T) {
	d := NewDecoder("t.xml")
	got := decodeAll(t, d, []byte(`<?xml version="1.1" standalone="yes"?><root/>`))
	assert.Equal(t, XML11, d.Version)
	assert.Equal(t, "yes", d.Standalone)
	assert.True(t, d.HasDeclaration)
	assert.Equal(t, "<root/>", got)
}

func TestDecoderCRLFNormalizedToLF(t *testing.T) {
	d := NewDecoder("t.xml")
	got := decodeAll(t, d, []byte("<a>\r\nline2\rline3\n</a>"))
	assert.Equal(t, "<a>\nline2\nline3\n</a>", got)
}

// TestDecoderXML11NELAndLSEPNormalized writes NEL (U+0085) and LSEP
// (U+2028) into its input as literal characters (invisible in most
// editors): one NEL between x and y, one LSEP between y and z.
func TestDecoderXML11NELAndLSEPNormalized(t *testing.T) {
	d := NewDecoder("t.xml")
	raw := []byte("<?xml version=\"1.1\"?><a>xy z</a>")
	got := decodeAll(t, d, raw)
	assert.Equal(t, "<a>x\ny\nz</a>", got)
}

func TestDecoderXML10DoesNotNormalizeNEL(t *testing.T) {
	d := NewDecoder("t.xml")
	raw := []byte("<a>xy</a>")
	got := decodeAll(t, d, raw)
	assert.Contains(t, got, "")
}

func TestDecoderUTF16LEBOMSelectsTranscoder(t *testing.T) {
	d := NewDecoder("t.xml")
	// "<a/>" encoded as UTF-16LE with a BOM.
	raw := []byte{0xFF, 0xFE}
	for _, r := range "<a/>" {
		raw = append(raw, byte(r), 0x00)
	}
	got := decodeAll(t, d, raw)
	assert.Equal(t, "<a/>", got)
	assert.Equal(t, "UTF-16", d.EncodingName)
}

func TestDecoderMultiByteUTF8SplitAcrossChunks(t *testing.T) {
	d := NewDecoder("t.xml")
	full := []byte("<a>x\xe2\x82\xacy</a>") // x€y, € split mid-sequence below
	idx := 5                               // right after the 3-byte sequence's lead byte 0xe2

	var out []rune
	r1, err := d.Feed(full[:idx], false)
	require.NoError(t, err)
	out = append(out, r1...)

	r2, err := d.Feed(full[idx:], false)
	require.NoError(t, err)
	out = append(out, r2...)

	r3, err := d.Feed(nil, true)
	require.NoError(t, err)
	out = append(out, r3...)

	assert.Equal(t, "<a>x€y</a>", string(out))
}

func TestDecoderTruncatedMultiByteAtEOFIsFatal(t *testing.T) {
	d := NewDecoder("t.xml")
	_, err := d.Feed([]byte("<a>x\xe2\x82"), false)
	require.NoError(t, err)

	_, err = d.Feed(nil, true)
	require.Error(t, err)
}

func TestDecoderFeedCanBeCalledIncrementally(t *testing.T) {
	d := NewDecoder("t.xml")
	var out []rune
	for _, chunk := range []string{"<ro", "ot>hel", "lo</root>"} {
		runes, err := d.Feed([]byte(chunk), false)
		require.NoError(t, err)
		out = append(out, runes...)
	}
	runes, err := d.Feed(nil, true)
	require.NoError(t, err)
	out = append(out, runes...)
	assert.Equal(t, "<root>hello</root>", string(out))
}
