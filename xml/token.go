package xml

// Tag is the tokenizer's fixed output vocabulary (spec §3 "Token").
type Tag int

const (
	TagNone Tag = iota
	TagLT
	TagGT
	TagName
	TagCData
	TagCharEntityRef
	TagPredefEntityRef
	TagGeneralEntityRef
	TagParameterEntityRef
	TagStartComment
	TagEndComment
	TagStartCDATA
	TagEndCDATA
	TagStartPI
	TagEndPI
	TagStartDoctype
	TagStartElementDecl
	TagStartAttlistDecl
	TagStartEntityDecl
	TagStartNotationDecl
	TagStartConditional
	TagOpenBracket
	TagCloseBracket
	TagOpenParen
	TagCloseParen
	TagStar
	TagPlus
	TagComma
	TagPipe

	// DTD / content-model keyword tokens, recognized by post-classifying
	// an accumulated TagName in DOCTYPE-adjacent states (spec §4.3).
	TagSYSTEM
	TagPUBLIC
	TagNDATA
	TagEMPTY
	TagANY
	TagPCDATA
	TagID
	TagIDREF
	TagIDREFS
	TagENTITY
	TagENTITIES
	TagNMTOKEN
	TagNMTOKENS
	TagNOTATION
	TagCDATAType
	TagREQUIRED
	TagIMPLIED
	TagFIXED
	TagINCLUDE
	TagIGNORE

	// Tag-boundary markers. Spec §3's token-tag list ends in an
	// ellipsis ("…"); these fill the gap it leaves for distinguishing
	// "</" from "<" and "/>" from ">", since LT/GT alone are ambiguous
	// between start tags, end tags and self-closing tags.
	TagEndTagOpen       // "</"
	TagSelfCloseSlashGT // "/>"

	// Further ellipsis fill-ins: a bare '%' marking a parameter-entity
	// declaration (distinct from PARAMETERENTITYREF, which always ends
	// in ';'), the '?' occurrence indicator content models use for
	// OPTIONAL (STAR/PLUS already have tokens, '?' didn't), and the
	// conditional section's closing delimiter, symmetric with
	// START_CONDITIONAL.
	TagPercent
	TagQuestion
	TagEndConditional
)

var tagNames = map[Tag]string{
	TagNone:               "NONE",
	TagLT:                 "LT",
	TagGT:                 "GT",
	TagName:               "NAME",
	TagCData:              "CDATA",
	TagCharEntityRef:      "CHARENTITYREF",
	TagPredefEntityRef:    "PREDEFENTITYREF",
	TagGeneralEntityRef:   "GENERALENTITYREF",
	TagParameterEntityRef: "PARAMETERENTITYREF",
	TagStartComment:       "START_COMMENT",
	TagEndComment:         "END_COMMENT",
	TagStartCDATA:         "START_CDATA",
	TagEndCDATA:           "END_CDATA",
	TagStartPI:            "START_PI",
	TagEndPI:              "END_PI",
	TagStartDoctype:       "START_DOCTYPE",
	TagStartElementDecl:   "START_ELEMENTDECL",
	TagStartAttlistDecl:   "START_ATTLISTDECL",
	TagStartEntityDecl:    "START_ENTITYDECL",
	TagStartNotationDecl:  "START_NOTATIONDECL",
	TagStartConditional:   "START_CONDITIONAL",
	TagOpenBracket:        "OPEN_BRACKET",
	TagCloseBracket:       "CLOSE_BRACKET",
	TagOpenParen:          "OPEN_PAREN",
	TagCloseParen:         "CLOSE_PAREN",
	TagStar:               "STAR",
	TagPlus:               "PLUS",
	TagComma:              "COMMA",
	TagPipe:               "PIPE",
	TagSYSTEM:             "SYSTEM",
	TagPUBLIC:             "PUBLIC",
	TagNDATA:              "NDATA",
	TagEMPTY:              "EMPTY",
	TagANY:                "ANY",
	TagPCDATA:             "PCDATA",
	TagID:                 "ID",
	TagIDREF:              "IDREF",
	TagIDREFS:             "IDREFS",
	TagENTITY:             "ENTITY",
	TagENTITIES:           "ENTITIES",
	TagNMTOKEN:            "NMTOKEN",
	TagNMTOKENS:           "NMTOKENS",
	TagNOTATION:           "NOTATION",
	TagCDATAType:          "CDATA_TYPE",
	TagREQUIRED:           "REQUIRED",
	TagIMPLIED:            "IMPLIED",
	TagFIXED:              "FIXED",
	TagINCLUDE:            "INCLUDE",
	TagIGNORE:             "IGNORE",
	TagEndTagOpen:         "END_TAG_OPEN",
	TagSelfCloseSlashGT:   "SELF_CLOSE_GT",
	TagPercent:            "PERCENT",
	TagQuestion:           "QUESTION",
	TagEndConditional:     "END_CONDITIONAL",
}

func (t Tag) String() string {
	if s, ok := tagNames[t]; ok {
		return s
	}
	return "UNKNOWN"
}

// dtdKeywords maps the case-sensitive spelling of a DTD/content-model
// keyword to its token; a NAME that contains an upper-case letter and
// matches one of these by case-insensitive comparison but not
// case-sensitively is a fatal keyword-specific miscasing error (spec
// §4.3). An all-lower-case NAME is left as a plain NAME (see
// classifyName).
var dtdKeywords = map[string]Tag{
	"SYSTEM":   TagSYSTEM,
	"PUBLIC":   TagPUBLIC,
	"NDATA":    TagNDATA,
	"EMPTY":    TagEMPTY,
	"ANY":      TagANY,
	"PCDATA":   TagPCDATA,
	"ID":       TagID,
	"IDREF":    TagIDREF,
	"IDREFS":   TagIDREFS,
	"ENTITY":   TagENTITY,
	"ENTITIES": TagENTITIES,
	"NMTOKEN":  TagNMTOKEN,
	"NMTOKENS": TagNMTOKENS,
	"NOTATION": TagNOTATION,
	"CDATA":    TagCDATAType,
	"REQUIRED": TagREQUIRED,
	"IMPLIED":  TagIMPLIED,
	"FIXED":    TagFIXED,
	"INCLUDE":  TagINCLUDE,
	"IGNORE":   TagIGNORE,
}

// Token is a tagged value referencing a window into the tokenizer's
// active character buffer rather than copying text (spec §3, §9
// "Token text as windows, not copies"). Consumers that need the text
// beyond the current callback must materialize it with Text().
type Token struct {
	Tag   Tag
	Start int // index into the owning buffer
	Len   int
	Pos   Position // position of the first character of the token

	// bufBits selects which backing buffer Start/Len index into
	// (BufferKind); zero value is BufInput, the common case, so most
	// Token literals never need to set it.
	bufBits int8
}

// HasText reports whether the token carries a text window.
func (t Token) HasText() bool {
	switch t.Tag {
	case TagName, TagCData, TagCharEntityRef, TagPredefEntityRef,
		TagGeneralEntityRef, TagParameterEntityRef:
		return true
	}
	return false
}

// predefBuffer is the read-only 5-character constant buffer that
// PREDEFENTITYREF tokens index into (spec §3 "5-char read-only
// buffer").
const predefBuffer = "&<>'\""

const (
	predefIdxAmp = iota
	predefIdxLT
	predefIdxGT
	predefIdxApos
	predefIdxQuot
)

var predefByName = map[string]int{
	"amp":  predefIdxAmp,
	"lt":   predefIdxLT,
	"gt":   predefIdxGT,
	"apos": predefIdxApos,
	"quot": predefIdxQuot,
}
