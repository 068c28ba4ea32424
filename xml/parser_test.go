package xml

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseString(t *testing.T, doc string, opts ...Option) *recordingSink {
	t.Helper()
	sink := &recordingSink{}
	p := NewParser(sink, opts...)
	err := p.ParseReader(strings.NewReader(doc), "test.xml")
	require.NoError(t, err)
	return sink
}

func TestParserBasicElement(t *testing.T) {
	sink := parseString(t, `<root>hello</root>`)
	assert.Equal(t, []string{
		"start-document",
		"start:root",
		"text:hello",
		"end:root",
		"end-document",
	}, sink.events)
}

func TestParserNestedElementsAndAttributes(t *testing.T) {
	sink := &recordingSink{}
	p := NewParser(sink)
	err := p.ParseReader(strings.NewReader(`<a x="1"><b>text</b></a>`), "t.xml")
	require.NoError(t, err)
	assert.Contains(t, sink.events, "start:a")
	assert.Contains(t, sink.events, "start:b")
	assert.Contains(t, sink.events, "text:text")
	assert.Contains(t, sink.events, "end:b")
	assert.Contains(t, sink.events, "end:a")
}

func TestParserSelfClosingElement(t *testing.T) {
	sink := parseString(t, `<root><empty/></root>`)
	assert.Equal(t, []string{
		"start-document",
		"start:root",
		"start:empty",
		"end:empty",
		"end:root",
		"end-document",
	}, sink.events)
}

func TestParserComment(t *testing.T) {
	sink := parseString(t, `<root><!-- a comment --></root>`)
	assert.Contains(t, sink.events, "comment: a comment ")
}

func TestParserProcessingInstruction(t *testing.T) {
	sink := parseString(t, `<?xml-stylesheet type="text/xsl" href="x.xsl"?><root/>`)
	found := false
	for _, e := range sink.events {
		if e == `pi:xml-stylesheet:type="text/xsl" href="x.xsl"` {
			found = true
		}
	}
	assert.True(t, found, "expected PI event, got %v", sink.events)
}

func TestParserCDATASection(t *testing.T) {
	sink := parseString(t, `<root><![CDATA[<not-a-tag>]]></root>`)
	assert.Contains(t, sink.events, "start-cdata")
	assert.Contains(t, sink.events, "text:<not-a-tag>")
	assert.Contains(t, sink.events, "end-cdata")
}

func TestParserPredefinedEntities(t *testing.T) {
	sink := parseString(t, `<root>&lt;&amp;&gt;&apos;&quot;</root>`)
	assert.Contains(t, sink.chars, `<&>'"`)
}

func TestParserCharacterReference(t *testing.T) {
	sink := parseString(t, `<root>&#65;&#x42;</root>`)
	assert.Contains(t, sink.chars, "AB")
}

func TestParserNamespaces(t *testing.T) {
	sink := &recordingSink{}
	p := NewParser(sink, WithNamespaces(true))
	err := p.ParseReader(strings.NewReader(`<a:root xmlns:a="urn:test"><a:child/></a:root>`), "t.xml")
	require.NoError(t, err)
	assert.Contains(t, sink.events, "start-prefix:a=urn:test")
	assert.Contains(t, sink.events, "start:a:root")
	assert.Contains(t, sink.events, "start:a:child")
}

func TestParserMismatchedEndTagIsFatal(t *testing.T) {
	sink := &recordingSink{}
	p := NewParser(sink)
	err := p.ParseReader(strings.NewReader(`<a><b></a></b>`), "t.xml")
	require.Error(t, err)
	var se *SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, SeverityFatal, se.Severity)
}

func TestParserUnclosedElementAtEOFIsFatal(t *testing.T) {
	sink := &recordingSink{}
	p := NewParser(sink)
	err := p.ParseReader(strings.NewReader(`<a><b>text</b>`), "t.xml")
	require.Error(t, err)
}

func TestParserInternalGeneralEntityExpansion(t *testing.T) {
	doc := `<!DOCTYPE root [
<!ENTITY greeting "hello, world">
]>
<root>&greeting;</root>`
	sink := parseString(t, doc)
	assert.Contains(t, sink.events, "start-entity:greeting")
	assert.Contains(t, sink.events, "end-entity:greeting")
	assert.Contains(t, sink.chars, "hello, world")
}

func TestParserEntityExpansionWithMarkup(t *testing.T) {
	doc := `<!DOCTYPE root [
<!ENTITY child "<inner>nested</inner>">
]>
<root>&child;</root>`
	sink := parseString(t, doc)
	assert.Contains(t, sink.events, "start:inner")
	assert.Contains(t, sink.events, "text:nested")
	assert.Contains(t, sink.events, "end:inner")
}

func TestParserUndeclaredGeneralEntityIsFatal(t *testing.T) {
	sink := &recordingSink{}
	p := NewParser(sink)
	err := p.ParseReader(strings.NewReader(`<root>&nope;</root>`), "t.xml")
	require.Error(t, err)
}

func TestParserElementContentValidation(t *testing.T) {
	doc := `<!DOCTYPE root [
<!ELEMENT root (child)>
<!ELEMENT child (#PCDATA)>
]>
<root><child>ok</child></root>`
	sink := parseString(t, doc, WithValidation(true))
	assert.Empty(t, sink.errors)
}

func TestParserElementContentViolationReportsError(t *testing.T) {
	doc := `<!DOCTYPE root [
<!ELEMENT root (child)>
<!ELEMENT child (#PCDATA)>
]>
<root><wrong/></root>`
	sink := &recordingSink{}
	p := NewParser(sink, WithValidation(true))
	err := p.ParseReader(strings.NewReader(doc), "t.xml")
	require.NoError(t, err)
	assert.NotEmpty(t, sink.errors)
}

func TestParserAttlistDefaultApplied(t *testing.T) {
	doc := `<!DOCTYPE root [
<!ATTLIST root lang CDATA "en">
]>
<root/>`
	sink := &recordingSink{}
	p := NewParser(sink)
	err := p.ParseReader(strings.NewReader(doc), "t.xml")
	require.NoError(t, err)
	assert.Contains(t, sink.events, "start:root")
}

func TestParserRequiredAttributeMissingReportsError(t *testing.T) {
	doc := `<!DOCTYPE root [
<!ATTLIST root id ID #REQUIRED>
]>
<root/>`
	sink := &recordingSink{}
	p := NewParser(sink, WithValidation(true))
	err := p.ParseReader(strings.NewReader(doc), "t.xml")
	require.NoError(t, err)
	assert.NotEmpty(t, sink.errors)
}

func TestParserDuplicateIDReportsError(t *testing.T) {
	doc := `<!DOCTYPE root [
<!ATTLIST item id ID #REQUIRED>
]>
<root><item id="x"/><item id="x"/></root>`
	sink := &recordingSink{}
	p := NewParser(sink, WithValidation(true))
	err := p.ParseReader(strings.NewReader(doc), "t.xml")
	require.NoError(t, err)
	assert.NotEmpty(t, sink.errors)
}

func TestParserUnboundElementPrefixIsFatal(t *testing.T) {
	sink := &recordingSink{}
	p := NewParser(sink, WithNamespaces(true))
	err := p.ParseReader(strings.NewReader(`<p:a/>`), "t.xml")
	require.Error(t, err)
	var se *SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, SeverityFatal, se.Severity)
}

func TestParserUnboundAttributePrefixIsFatal(t *testing.T) {
	sink := &recordingSink{}
	p := NewParser(sink, WithNamespaces(true))
	err := p.ParseReader(strings.NewReader(`<a p:x="1"/>`), "t.xml")
	require.Error(t, err)
	var se *SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, SeverityFatal, se.Severity)
}

func TestParserMultiColonQNameIsFatal(t *testing.T) {
	sink := &recordingSink{}
	p := NewParser(sink, WithNamespaces(true))
	err := p.ParseReader(strings.NewReader(`<a:b:c xmlns:a="urn:a"/>`), "t.xml")
	require.Error(t, err)
	var se *SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, SeverityFatal, se.Severity)
}

func TestParserLeadingColonQNameIsFatal(t *testing.T) {
	sink := &recordingSink{}
	p := NewParser(sink, WithNamespaces(true))
	err := p.ParseReader(strings.NewReader(`<:foo/>`), "t.xml")
	require.Error(t, err)
}

func TestParserTrailingColonQNameIsFatal(t *testing.T) {
	sink := &recordingSink{}
	p := NewParser(sink, WithNamespaces(true))
	err := p.ParseReader(strings.NewReader(`<foo:/>`), "t.xml")
	require.Error(t, err)
}

func TestParserUnresolvedIDREFReportsErrorAtClose(t *testing.T) {
	doc := `<!DOCTYPE root [
<!ATTLIST item ref IDREF #REQUIRED>
]>
<root><item ref="missing"/></root>`
	sink := &recordingSink{}
	p := NewParser(sink, WithValidation(true))
	err := p.ParseReader(strings.NewReader(doc), "t.xml")
	require.NoError(t, err)
	assert.NotEmpty(t, sink.errors)
}
