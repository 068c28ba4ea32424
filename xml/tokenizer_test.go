package xml

import "testing"

func tokenize(t *testing.T, input string) []Token {
	t.Helper()
	tk := NewTokenizer(XML10, "t.xml")
	var toks []Token
	err := tk.Feed([]rune(input), func(tok Token) error {
		toks = append(toks, tok)
		return nil
	})
	if err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if err := tk.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	return toks
}

func tagsOf(toks []Token) []Tag {
	tags := make([]Tag, len(toks))
	for i, tok := range toks {
		tags[i] = tok.Tag
	}
	return tags
}

func assertTags(t *testing.T, got []Token, want ...Tag) {
	t.Helper()
	gotTags := tagsOf(got)
	if len(gotTags) != len(want) {
		t.Fatalf("got %d tokens %v, want %d tokens %v", len(gotTags), gotTags, len(want), want)
	}
	for i := range want {
		if gotTags[i] != want[i] {
			t.Fatalf("token %d = %v, want %v (full: got=%v want=%v)", i, gotTags[i], want[i], gotTags, want)
		}
	}
}

func TestTokenizerSimpleElement(t *testing.T) {
	toks := tokenize(t, "<a></a>")
	assertTags(t, toks,
		TagLT, TagName, TagGT,
		TagEndTagOpen, TagName, TagGT,
	)
}

func TestTokenizerSelfClosingElement(t *testing.T) {
	toks := tokenize(t, "<a/>")
	assertTags(t, toks, TagLT, TagName, TagSelfCloseSlashGT)
}

func TestTokenizerCharacterData(t *testing.T) {
	toks := tokenize(t, "<a>hello</a>")
	assertTags(t, toks,
		TagLT, TagName, TagGT,
		TagCData,
		TagEndTagOpen, TagName, TagGT,
	)
	tk := NewTokenizer(XML10, "t.xml")
	var text string
	_ = tk.Feed([]rune("<a>hello</a>"), func(tok Token) error {
		if tok.Tag == TagCData {
			text = tk.Text(tok)
		}
		return nil
	})
	if text != "hello" {
		t.Fatalf("TagCData text = %q, want %q", text, "hello")
	}
}

func TestTokenizerPredefinedEntity(t *testing.T) {
	tk := NewTokenizer(XML10, "t.xml")
	var texts []string
	err := tk.Feed([]rune("&amp;&lt;"), func(tok Token) error {
		if tok.Tag == TagPredefEntityRef {
			texts = append(texts, tk.Text(tok))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if len(texts) != 2 || texts[0] != "&" || texts[1] != "<" {
		t.Fatalf("predefined entity texts = %v, want [& <]", texts)
	}
}

func TestTokenizerGeneralEntityReference(t *testing.T) {
	tk := NewTokenizer(XML10, "t.xml")
	var name string
	_ = tk.Feed([]rune("&custom;"), func(tok Token) error {
		if tok.Tag == TagGeneralEntityRef {
			name = tk.Text(tok)
		}
		return nil
	})
	if name != "custom" {
		t.Fatalf("general entity ref text = %q, want %q", name, "custom")
	}
}

func TestTokenizerCharacterReferenceDecimalAndHex(t *testing.T) {
	tk := NewTokenizer(XML10, "t.xml")
	var texts []string
	_ = tk.Feed([]rune("&#65;&#x41;"), func(tok Token) error {
		if tok.Tag == TagCharEntityRef {
			texts = append(texts, tk.Text(tok))
		}
		return nil
	})
	if len(texts) != 2 || texts[0] != "A" || texts[1] != "A" {
		t.Fatalf("char ref texts = %v, want [A A]", texts)
	}
}

func TestTokenizerComment(t *testing.T) {
	toks := tokenize(t, "<!--hi-->")
	assertTags(t, toks, TagStartComment, TagCData, TagEndComment)
}

func TestTokenizerCDATASection(t *testing.T) {
	toks := tokenize(t, "<![CDATA[<not a tag>]]>")
	assertTags(t, toks, TagStartCDATA, TagCData, TagEndCDATA)
}

func TestTokenizerProcessingInstruction(t *testing.T) {
	toks := tokenize(t, "<?target data?>")
	assertTags(t, toks, TagStartPI, TagName, TagCData, TagEndPI)
}

func TestTokenizerAttributes(t *testing.T) {
	toks := tokenize(t, `<a x="1" y='2'></a>`)
	assertTags(t, toks,
		TagLT, TagName,
		TagName, TagCData,
		TagName, TagCData,
		TagGT,
		TagEndTagOpen, TagName, TagGT,
	)
}

func TestTokenizerInternalSubsetReachable(t *testing.T) {
	doc := "<!DOCTYPE root [\n<!ELEMENT root (#PCDATA)>\n]>"
	toks := tokenize(t, doc)
	var sawElementDecl bool
	for _, tok := range toks {
		if tok.Tag == TagStartElementDecl {
			sawElementDecl = true
		}
	}
	if !sawElementDecl {
		t.Fatalf("internal DTD subset never reached START_ELEMENTDECL; tags=%v", tagsOf(toks))
	}
}

func TestTokenizerIncompleteTokenAtCloseIsFatal(t *testing.T) {
	tk := NewTokenizer(XML10, "t.xml")
	_ = tk.Feed([]rune("<a"), func(Token) error { return nil })
	if err := tk.Close(); err == nil {
		t.Fatal("expected an incomplete-token-at-close error")
	}
}

func TestTokenizerIncrementalFeedAcrossChunkBoundaries(t *testing.T) {
	tk := NewTokenizer(XML10, "t.xml")
	var tags []Tag
	sink := func(tok Token) error {
		tags = append(tags, tok.Tag)
		return nil
	}
	for _, chunk := range []string{"<a>", "hel", "lo</", "a>"} {
		if err := tk.Feed([]rune(chunk), sink); err != nil {
			t.Fatalf("Feed(%q) failed: %v", chunk, err)
		}
	}
	if err := tk.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	want := []Tag{TagLT, TagName, TagGT, TagCData, TagEndTagOpen, TagName, TagGT}
	if len(tags) != len(want) {
		t.Fatalf("tags = %v, want %v", tags, want)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Fatalf("tags = %v, want %v", tags, want)
		}
	}
}
