package xml

import "strings"

// isXMLWhitespace reports whether r is XML S (spec production): space,
// tab, CR or LF. The decoder normalizes line endings before the
// tokenizer ever sees a rune, but CR is tolerated here too since the
// tokenizer must stand on its own against any []rune a caller feeds it
// directly (tests do this without going through Decoder).
func isXMLWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return false
}

// hexVal returns the numeric value of a hex digit rune; callers only
// ever pass runes already confirmed by isHexDigit.
func hexVal(r rune) int64 {
	switch {
	case r >= '0' && r <= '9':
		return int64(r - '0')
	case r >= 'a' && r <= 'f':
		return int64(r-'a') + 10
	case r >= 'A' && r <= 'F':
		return int64(r-'A') + 10
	}
	return 0
}

// utf16Surrogates splits a supplementary-plane code point into the
// UTF-16 surrogate pair a resolved character reference is represented
// as (spec §3: CHARENTITYREF's synthesized text mirrors how the value
// would appear in a UTF-16 code unit stream).
func utf16Surrogates(r rune) (hi, lo rune) {
	v := r - 0x10000
	hi = 0xD800 + (v >> 10)
	lo = 0xDC00 + (v & 0x3FF)
	return hi, lo
}

// inDTDContext reports whether the tokenizer's current coarse state is
// one where a NAME-shaped token is subject to DTD-keyword promotion
// (spec §4.3 "post-classified against the keyword table ... only in
// DOCTYPE-adjacent states").
func (tk *Tokenizer) inDTDContext() bool {
	switch tk.state {
	case StateDoctype, StateDoctypeInternal, StateConditionalKeyword, StateConditionalInclude:
		return true
	}
	return false
}

// classifyName turns an accumulated Name into either a plain NAME token
// or, in a DTD-adjacent state, a promoted keyword token. A name with
// at least one upper-case letter that matches a keyword
// case-insensitively but not case-sensitively ("Required", "iD") is a
// fatal miscasing (spec §4.3). An all-lower-case name ("id", "empty")
// stays a plain NAME, so it can name an element or attribute.
func (tk *Tokenizer) classifyName(name string) (Token, error) {
	// name's rune count, not its UTF-8 byte length, is what Len must
	// hold: Start/Len index the rune buffer, not the string.
	n := tk.pos - tk.tokenStart
	if tk.inDTDContext() {
		if tag, ok := dtdKeywords[name]; ok {
			return Token{Tag: tag, Start: tk.tokenStart, Len: n, Pos: tk.tokenPos}, nil
		}
		upper := strings.ToUpper(name)
		if upper != name && strings.ToLower(name) != name {
			if _, ok := dtdKeywords[upper]; ok {
				return Token{}, tk.fail("%q is a miscased DTD keyword (expected %q)", name, upper)
			}
		}
	}
	return Token{Tag: TagName, Start: tk.tokenStart, Len: n, Pos: tk.tokenPos}, nil
}
