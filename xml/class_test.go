package xml

import "testing"

func TestClassifyASCIIPunctuation(t *testing.T) {
	cases := map[rune]charClass{
		'<': classLT, '>': classGT, '&': classAmp, '\'': classApos, '"': classQuot,
		'!': classBang, '?': classQuery, '/': classSlash, '=': classEq,
		';': classSemicolon, '%': classPercent, '#': classHash, ':': classColon,
		'[': classOpenBracket, ']': classCloseBracket, '(': classOpenParen, ')': classCloseParen,
		'-': classDash, '|': classPipe, ',': classComma, '*': classStar, '+': classPlus,
	}
	for r, want := range cases {
		if got := classify(r, XML10); got != want {
			t.Errorf("classify(%q) = %v, want %v", r, got, want)
		}
	}
}

func TestClassifyWhitespace(t *testing.T) {
	for _, r := range []rune{' ', '\t', '\r', '\n'} {
		if got := classify(r, XML10); got != classWhitespace {
			t.Errorf("classify(%q) = %v, want classWhitespace", r, got)
		}
	}
}

func TestClassifyLetterTriePrefixes(t *testing.T) {
	for _, r := range []rune{'a', 'l', 'g', 'm', 'p', 'o', 's', 't', 'q', 'u', 'x', 'n', 'd', 'e', 'i', 'f', 'y', 'c', 'r', 'k'} {
		got := classify(r, XML10)
		if got == classNameStartChar || got == classIllegal {
			t.Errorf("classify(%q) = %v, expected a dedicated letter class", r, got)
		}
	}
}

func TestClassifyOrdinaryNameChars(t *testing.T) {
	if got := classify('z', XML10); got != classNameStartChar {
		t.Errorf("classify('z') = %v, want classNameStartChar", got)
	}
	if got := classify('5', XML10); got != classDigit {
		t.Errorf("classify('5') = %v, want classDigit", got)
	}
	if got := classify('.', XML10); got != classNameChar {
		t.Errorf("classify('.') = %v, want classNameChar", got)
	}
}

func TestIsXMLCharXML10RejectsC0Controls(t *testing.T) {
	if isXMLChar(0x1, XML10) {
		t.Error("0x1 should be illegal in XML 1.0")
	}
	if !isXMLChar(0x9, XML10) {
		t.Error("TAB should be legal in XML 1.0")
	}
}

func TestIsXMLCharXML11AllowsMostC0Controls(t *testing.T) {
	if !isXMLChar(0x1, XML11) {
		t.Error("0x1 should be legal (via char ref) in XML 1.1")
	}
	if isXMLChar(0x0, XML11) {
		t.Error("NUL should never be legal, even in XML 1.1")
	}
}

func TestIsNameStartCharRejectsDigits(t *testing.T) {
	if isNameStartChar('5') {
		t.Error("digits are not NameStartChar")
	}
	if !isNameChar('5') {
		t.Error("digits are NameChar")
	}
}

func TestIsHexDigit(t *testing.T) {
	for _, r := range []rune{'0', '9', 'a', 'f', 'A', 'F'} {
		if !isHexDigit(r) {
			t.Errorf("isHexDigit(%q) = false, want true", r)
		}
	}
	if isHexDigit('g') {
		t.Error("isHexDigit('g') = true, want false")
	}
}
