package xml

// MiniState is the fine-grained position within the token currently
// being recognized (spec §3 "MiniState"). Coarse State says what
// context we're in; MiniState says how far into the current token's
// trie we've gotten.
type MiniState int

const (
	MiniReady MiniState = iota
	MiniSeenLT
	MiniSeenLTSlash
	MiniSeenLTQuery
	MiniSeenLTQueryX
	MiniSeenLTQueryXM
	MiniSeenLTQueryXML
	MiniSeenLTBang
	MiniSeenLTBangDash
	MiniSeenLTBangDashDash
	MiniSeenLTBangOpenBracket
	MiniSeenLTBangD // DOCTYPE trie
	MiniSeenLTBangE // ENTITY/ELEMENT ambiguity resolved by next letter
	MiniSeenLTBangA // ATTLIST
	MiniSeenLTBangN // NOTATION
	MiniSeenLTBangLetter

	// Ampersand / entity-reference tries.
	MiniSeenAmp
	MiniSeenAmpHash
	MiniSeenAmpHashX
	MiniSeenAmpL
	MiniSeenAmpG
	MiniSeenAmpA
	MiniSeenAmpAM
	MiniSeenAmpAP
	MiniSeenAmpAPO
	MiniSeenAmpQ
	MiniSeenAmpQU
	MiniSeenAmpQUO
	MiniSeenPredefLT
	MiniSeenPredefGT
	MiniSeenPredefAmp
	MiniSeenPredefApos
	MiniSeenPredefQuot

	MiniSeenPercent

	// DOCTYPE head keyword trie: SYSTEM / PUBLIC.
	MiniSeenKeywordS
	MiniSeenKeywordSY
	MiniSeenKeywordSYS
	MiniSeenKeywordSYST
	MiniSeenKeywordSYSTE
	MiniSeenKeywordP
	MiniSeenKeywordPU
	MiniSeenKeywordPUB
	MiniSeenKeywordPUBL
	MiniSeenKeywordPUBLI
	MiniSeenKeywordPUBLIC

	// Greedy accumulators: consume until a delimiter, flush on underflow.
	MiniAccumulatingCData
	MiniAccumulatingWhitespace

	// Delimited accumulators: consume name-class characters, terminal
	// character ends the token (spec §4.3 "NAME accumulates...").
	MiniAccumulatingName
	MiniAccumulatingMarkupName
	MiniAccumulatingEntityName
	MiniAccumulatingParamEntityName
	MiniAccumulatingCharRefDec
	MiniAccumulatingCharRefHex

	// Delimiter-suffix states: we've seen part of a multi-char closing
	// delimiter and are waiting on the rest.
	MiniSeenDash
	MiniSeenDashDash
	MiniSeenQuery
	MiniSeenApos
	MiniSeenQuot
	MiniSeenCloseBracket
	MiniSeenCloseBracketCloseBracket
	MiniSeenSlash

	// Start/end-tag interior bookkeeping. Not named individually in
	// spec §3's MiniState catalogue, which documents the trie families
	// and leaves the tag-interior bookkeeping implicit ("NAME
	// accumulates ... on terminal character it is emitted and then
	// post-classified"); these give that bookkeeping an explicit home
	// alongside the documented states rather than overloading them.
	miniInStartTagName
	miniInStartTagBody
	miniInAttrName
	miniAfterAttrName
	miniAfterEquals
	miniInEndTagName
	miniAfterEndTagName
	miniSelfCloseSlash

	// miniLiteralMatch drives a fixed-literal match with no natural
	// terminal character (spec §9's NAME-trie convention assumes a
	// trailing delimiter; "CDATA[" just ends when fully matched).
	miniLiteralMatch

	miniStateCount
)
