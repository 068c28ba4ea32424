package xml

import (
	"io"
)

// parserMode is the content-assembly layer's own coarse state, built
// on top of the token stream (spec §4.4 "the syntax core reassembles
// start tags, attributes and namespace scopes from the tokenizer's
// flat token stream, since no single token marks 'end of attribute
// value'").
type parserMode int

const (
	modeContent parserMode = iota
	modeStartTag
	modeComment
	modeCDATA
	modePI
	modeDoctype
)

// Parser is the top-level entry point: it owns one Decoder, one
// Tokenizer, the DTD sub-parser, namespace and entity-expansion state,
// and drives an EventSink (spec §6 "Parser control surface"). It is
// not safe for concurrent use (spec Non-goals: "intra-parse
// concurrency").
type Parser struct {
	cfg  config
	sink EventSink

	dec *Decoder
	tok *Tokenizer

	// activeTok is whichever Tokenizer most recently produced the
	// token currently being handled: p.tok for the primary input, or
	// a nested entity tokenizer while expandGeneralEntity is on the
	// call stack. Token.Text windows are only valid against the
	// Tokenizer instance that produced them.
	activeTok *Tokenizer

	dtd  *DTD
	dtdp *dtdParser

	ns       *namespaceContext
	entities *entityStack
	ids      *idTable

	elemPool elementCtxPool
	attrPool attrSlicePool

	elemStack []*elementValidationContext

	mode parserMode

	// start-tag assembly
	curElemName   string
	curAttrName   string
	curAttrBuf    attrBuilder
	haveAttrName  bool
	pendingAttrs  []Attribute
	pendingNSDecl map[string]string

	// comment / PI assembly
	piTarget string
	markupBuf string

	// running character data, flushed at every markup boundary
	textBuf []rune

	// DOCTYPE head (not the internal subset, which dtdp owns)
	doctypeName string

	version  XMLVersion
	systemID string

	startedDoc bool
	closed     bool
	fatal      error
}

// NewParser creates a Parser that reports to sink, configured by opts
// (spec §6). The document's XML version is determined from the
// declaration once decoding begins; XML10 is assumed until then.
func NewParser(sink EventSink, opts ...Option) *Parser {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	dtd := newDTD()
	p := &Parser{
		cfg:      cfg,
		sink:     sink,
		dtd:      dtd,
		ns:       newNamespaceContext(),
		entities: &entityStack{},
		version:  XML10,
	}
	if cfg.validate {
		p.ids = newIDTable()
	}
	p.dtdp = newDTDParser(dtd, sink, p.version)
	return p
}

// ParseReader is a convenience entry point that drives Write/Close
// over chunks read from r (spec §6, the filesystem/network entry
// point itself is an external collaborator; this just demonstrates
// the push-driven Write contract against a pull source).
func (p *Parser) ParseReader(r io.Reader, systemID string) error {
	p.dec = NewDecoder(systemID)
	p.systemID = systemID
	p.tok = NewTokenizer(p.version, systemID)
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if werr := p.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			return p.Close()
		}
		if err != nil {
			return err
		}
	}
}

// Write feeds raw bytes into the pipeline: decoder, then tokenizer,
// then content assembly (spec §6 "push-driven ingestion"). It may be
// called repeatedly with arbitrarily-sized chunks.
func (p *Parser) Write(chunk []byte) error {
	if p.closed {
		return fatalf(p.curPos(), "write called on closed parser")
	}
	if p.dec == nil {
		p.dec = NewDecoder(p.systemID)
	}
	if p.tok == nil {
		p.tok = NewTokenizer(p.version, p.systemID)
	}
	p.activeTok = p.tok
	runes, err := p.dec.Feed(chunk, false)
	if err != nil {
		return p.abort(err)
	}
	if p.dec.HasDeclaration || len(runes) > 0 {
		p.adoptDecoderVersion()
	}
	if len(runes) == 0 {
		return nil
	}
	if err := p.tok.Feed(runes, p.handleToken); err != nil {
		return p.abort(err)
	}
	return nil
}

// adoptDecoderVersion propagates the version the decoder settled on
// (once its sniffing phase completes) to the tokenizer and DTD
// parser, which both need it for version-sensitive character and
// entity-inheritance rules (spec §4.1, §4.5).
func (p *Parser) adoptDecoderVersion() {
	if p.version == p.dec.Version {
		return
	}
	p.version = p.dec.Version
	p.tok.Version = p.version
	p.dtdp.version = p.version
}

// Close flushes any trailing input and signals end of document (spec
// §6 "Lifecycles").
func (p *Parser) Close() error {
	if p.closed {
		return nil
	}
	p.activeTok = p.tok
	runes, err := p.dec.Feed(nil, true)
	if err != nil {
		return p.abort(err)
	}
	if len(runes) > 0 {
		if err := p.tok.Feed(runes, p.handleToken); err != nil {
			return p.abort(err)
		}
	}
	if err := p.tok.Close(); err != nil {
		return p.abort(err)
	}
	p.closed = true
	if len(p.elemStack) > 0 {
		return p.abort(fatalf(p.curPos(), "document ended with %d element(s) still open", len(p.elemStack)))
	}
	if p.ids != nil {
		for _, ref := range p.ids.Unresolved() {
			if err := p.sink.Error(validityErrorf(ref.pos, "IDREF %q does not match any ID in the document", ref.value)); err != nil {
				return err
			}
		}
	}
	if p.startedDoc {
		return p.sink.EndDocument()
	}
	return nil
}

func (p *Parser) curPos() Position {
	if p.tok != nil {
		return p.tok.Pos()
	}
	return Position{SystemID: p.systemID}
}

func (p *Parser) abort(err error) error {
	p.closed = true
	p.fatal = err
	if p.sink != nil {
		_ = p.sink.FatalError(err)
	}
	return err
}

func (p *Parser) ensureStarted() error {
	if p.startedDoc {
		return nil
	}
	p.startedDoc = true
	return p.sink.StartDocument()
}

// handleToken is the TokenSink the tokenizer drives; it dispatches on
// the parser's own mode plus the token's tag (spec §4.4).
func (p *Parser) handleToken(t Token) error {
	if err := p.ensureStarted(); err != nil {
		return err
	}

	switch p.mode {
	case modeDoctype:
		return p.handleDoctypeToken(t)
	case modeStartTag:
		return p.handleStartTagToken(t)
	case modeComment:
		return p.handleCommentToken(t)
	case modeCDATA:
		return p.handleCDATAToken(t)
	case modePI:
		return p.handlePIToken(t)
	}
	return p.handleContentToken(t)
}

func (p *Parser) handleContentToken(t Token) error {
	switch t.Tag {
	case TagCData:
		p.textBuf = append(p.textBuf, []rune(p.activeTok.Text(t))...)
		return nil
	case TagCharEntityRef, TagPredefEntityRef:
		p.textBuf = append(p.textBuf, []rune(p.activeTok.Text(t))...)
		return nil
	case TagGeneralEntityRef:
		return p.expandGeneralEntity(p.activeTok.Text(t), t.Pos)
	case TagLT:
		if err := p.flushText(); err != nil {
			return err
		}
		p.mode = modeStartTag
		p.curElemName = ""
		p.haveAttrName = false
		p.pendingAttrs = p.attrPool.checkout()
		p.pendingNSDecl = nil
		return nil
	case TagEndTagOpen:
		return p.flushText()
	case TagName:
		// The only NAME token content mode ever sees is an end-tag
		// name: element/attribute names in a start tag arrive while
		// mode is modeStartTag instead.
		return p.handleEndTagName(p.activeTok.Text(t), t.Pos)
	case TagGT:
		return nil // end-tag GT, nothing more to do
	case TagStartComment:
		if err := p.flushText(); err != nil {
			return err
		}
		p.mode = modeComment
		p.markupBuf = ""
		return nil
	case TagStartCDATA:
		if err := p.flushText(); err != nil {
			return err
		}
		p.mode = modeCDATA
		return p.sink.StartCDATASection()
	case TagStartPI:
		if err := p.flushText(); err != nil {
			return err
		}
		p.mode = modePI
		p.piTarget = ""
		p.markupBuf = ""
		return nil
	case TagStartDoctype:
		p.mode = modeDoctype
		p.doctypeName = ""
		return nil
	}
	return nil
}

// handleEndTagName is reached via the two-step content dispatch:
// content sees TagEndTagOpen (flushes text, stays in modeContent) and
// then the following TagName names the element to close.
func (p *Parser) handleEndTagName(name string, pos Position) error {
	if len(p.elemStack) == 0 {
		return fatalf(pos, "end tag </%s> with no matching start tag", name)
	}
	ctx := p.elemStack[len(p.elemStack)-1]
	p.elemStack = p.elemStack[:len(p.elemStack)-1]
	if ctx.name.String() != name && ctx.name.Local != name {
		return fatalf(pos, "end tag </%s> does not match start tag <%s>", name, ctx.name.String())
	}
	if p.cfg.validate && ctx.model != nil {
		if msg := ctx.model.finish(ctx.sawText); msg != "" {
			if err := p.sink.Error(validityErrorf(pos, "%s", msg)); err != nil {
				return err
			}
		}
	}
	qn := ctx.name
	p.elemPool.checkin(ctx)
	p.ns.PopElement()
	return p.sink.EndElement(qn)
}

func (p *Parser) flushText() error {
	if len(p.textBuf) == 0 {
		return nil
	}
	text := string(p.textBuf)
	p.textBuf = p.textBuf[:0]
	if len(p.elemStack) > 0 {
		top := p.elemStack[len(p.elemStack)-1]
		top.sawText = true
	}
	return p.sink.Characters(text)
}

func (p *Parser) handleCommentToken(t Token) error {
	switch t.Tag {
	case TagCData:
		p.markupBuf += p.activeTok.Text(t)
		return nil
	case TagEndComment:
		p.mode = modeContent
		text := p.markupBuf
		p.markupBuf = ""
		return p.sink.Comment(text)
	}
	return nil
}

func (p *Parser) handleCDATAToken(t Token) error {
	switch t.Tag {
	case TagCData:
		p.textBuf = append(p.textBuf, []rune(p.activeTok.Text(t))...)
		return nil
	case TagEndCDATA:
		if err := p.flushText(); err != nil {
			return err
		}
		p.mode = modeContent
		return p.sink.EndCDATASection()
	}
	return nil
}

func (p *Parser) handlePIToken(t Token) error {
	switch t.Tag {
	case TagName:
		p.piTarget = p.activeTok.Text(t)
		return nil
	case TagCData:
		p.markupBuf += p.activeTok.Text(t)
		return nil
	case TagEndPI:
		p.mode = modeContent
		target, data := p.piTarget, p.markupBuf
		p.piTarget, p.markupBuf = "", ""
		return p.sink.ProcessingInstruction(target, data)
	}
	return nil
}

// handleDoctypeToken captures the DOCTYPE head (root name, external
// ID) itself, and forwards every token seen once the internal subset
// opens to the DTD sub-parser (spec §4.5). It relies on the
// dtdParser's own idle/non-idle mode to tell a declaration's closing
// '>' apart from the DOCTYPE's own closing '>': while mode is idle,
// TagGT can only mean the latter.
func (p *Parser) handleDoctypeToken(t Token) error {
	wasIdle := p.dtdp.mode == dtdModeIdle
	if t.Tag == TagName && p.doctypeName == "" && wasIdle {
		p.doctypeName = p.activeTok.Text(t)
		return nil
	}
	if err := p.dtdp.Accept(t.Tag, p.activeTok.Text(t), t.Pos); err != nil {
		return err
	}
	if t.Tag == TagGT && wasIdle {
		p.mode = modeContent
	}
	return nil
}

func (p *Parser) handleStartTagToken(t Token) error {
	switch t.Tag {
	case TagName:
		if p.curElemName == "" {
			p.curElemName = p.activeTok.Text(t)
			return nil
		}
		if p.haveAttrName {
			if err := p.finishPendingAttr(); err != nil {
				return err
			}
		}
		p.curAttrName = p.activeTok.Text(t)
		p.haveAttrName = true
		p.curAttrBuf.reset()
		return nil
	case TagCData:
		p.curAttrBuf.writeLiteral(p.activeTok.Text(t))
		return nil
	case TagCharEntityRef, TagPredefEntityRef:
		for _, r := range p.activeTok.Text(t) {
			p.curAttrBuf.writeChar(r)
		}
		return nil
	case TagGeneralEntityRef:
		// Simplification (see DESIGN.md): attribute-value general
		// entity references are substituted from the entity's
		// already-resolved declared Value rather than being
		// recursively re-tokenized; nested general-entity references
		// inside that value are not expanded further.
		name := p.activeTok.Text(t)
		if decl, ok := p.dtd.Entities.Lookup(EntityGeneral, name); ok {
			p.curAttrBuf.writeLiteral(decl.Value)
		} else {
			return fatalf(t.Pos, "reference to undeclared general entity %q", name)
		}
		return nil
	case TagGT, TagSelfCloseSlashGT:
		if p.haveAttrName {
			if err := p.finishPendingAttr(); err != nil {
				return err
			}
		}
		if err := p.finishStartTag(t.Pos); err != nil {
			return err
		}
		p.mode = modeContent
		if t.Tag == TagSelfCloseSlashGT {
			return p.handleEndTagName(p.curElemName, t.Pos)
		}
		return nil
	}
	return nil
}

func (p *Parser) finishPendingAttr() error {
	name := p.curAttrName
	value := p.curAttrBuf.string()
	p.haveAttrName = false
	p.curAttrName = ""
	if p.cfg.namespaces && isNSDecl(name) {
		prefix := nsDeclPrefix(name)
		if p.pendingNSDecl == nil {
			p.pendingNSDecl = map[string]string{}
		}
		p.pendingNSDecl[prefix] = value
		if !p.cfg.namespacePrefixes {
			return nil
		}
	}
	p.pendingAttrs = append(p.pendingAttrs, Attribute{Name: QName{Local: name}, Value: value, Specified: true})
	return nil
}

func isNSDecl(name string) bool {
	return name == "xmlns" || (len(name) > 6 && name[:6] == "xmlns:")
}

func nsDeclPrefix(name string) string {
	if name == "xmlns" {
		return ""
	}
	return name[6:]
}

// finishStartTag resolves namespaces, applies ATTLIST defaults and
// attribute-type validation, pushes the element's validation and
// namespace scope, and calls sink.StartElement (spec §4.4, §4.6,
// §4.7).
func (p *Parser) finishStartTag(pos Position) error {
	if p.cfg.namespaces {
		p.ns.PushElement(p.pendingNSDecl)
		for prefix, uri := range p.pendingNSDecl {
			if err := p.sink.StartPrefixMapping(prefix, uri); err != nil {
				return err
			}
		}
	}

	qn, err := p.resolveElementName(p.curElemName, pos)
	if err != nil {
		return err
	}

	if al, ok := p.dtd.Attlists[p.curElemName]; ok {
		p.applyAttDefaults(al)
		for i := range p.pendingAttrs {
			for _, decl := range al.Attrs {
				if decl.Name == p.pendingAttrs[i].Name.Local {
					if decl.Type != AttrTypeCDATA {
						p.pendingAttrs[i].Value = collapseNMTokenWhitespace(p.pendingAttrs[i].Value)
					}
					break
				}
			}
		}
	}

	if p.cfg.namespaces {
		for i := range p.pendingAttrs {
			a := &p.pendingAttrs[i]
			if a.Name.Prefix != "" {
				continue
			}
			raw := a.Name.Local
			if !isWellFormedQName(raw) {
				return fatalf(pos, "%q is not a well-formed qualified name", raw)
			}
			prefix, local := splitQName(raw)
			if prefix == "" {
				continue
			}
			a.Name.Prefix = prefix
			a.Name.Local = local
			if uri, ok := p.ns.Lookup(prefix); ok {
				a.Name.URI = uri
			} else {
				return fatalf(pos, "unbound namespace prefix %q on attribute", prefix)
			}
		}
	}

	if p.cfg.validate {
		if err := p.validateAttributes(p.curElemName, pos); err != nil {
			return err
		}
	}

	attrs := p.pendingAttrs
	p.pendingAttrs = nil

	ctx := p.elemPool.checkout()
	ctx.name = qn
	if p.cfg.validate {
		if decl, ok := p.dtd.Elements[p.curElemName]; ok {
			ctx.model = newContentModelState(decl.Content)
		}
	}
	if len(p.elemStack) > 0 {
		p.elemStack[len(p.elemStack)-1].sawChild = true
	}
	p.elemStack = append(p.elemStack, ctx)

	if err := p.sink.StartElement(qn, attrs); err != nil {
		return err
	}
	if len(p.elemStack) > 1 {
		parent := p.elemStack[len(p.elemStack)-2]
		if parent.model != nil {
			parent.model.observeChild(p.curElemName)
		}
	}
	p.attrPool.checkin(attrs)
	return nil
}

func (p *Parser) resolveElementName(raw string, pos Position) (QName, error) {
	if !p.cfg.namespaces {
		return QName{Local: raw}, nil
	}
	if !isWellFormedQName(raw) {
		return QName{}, fatalf(pos, "%q is not a well-formed qualified name", raw)
	}
	prefix, local := splitQName(raw)
	qn := QName{Prefix: prefix, Local: local}
	if uri, ok := p.ns.Lookup(prefix); ok {
		qn.URI = uri
	} else if prefix != "" {
		return QName{}, fatalf(pos, "unbound namespace prefix %q on element %q", prefix, raw)
	}
	return qn, nil
}

// applyAttDefaults fills in any ATTLIST-declared attribute not
// supplied by the start tag, per its #FIXED/default literal (spec
// §4.7 "defaulted attributes").
func (p *Parser) applyAttDefaults(al *AttlistDecl) {
	for _, decl := range al.Attrs {
		found := false
		for _, a := range p.pendingAttrs {
			if a.Name.Local == decl.Name {
				found = true
				break
			}
		}
		if found {
			continue
		}
		switch decl.Default {
		case DefaultFixed, DefaultValue:
			p.pendingAttrs = append(p.pendingAttrs, Attribute{
				Name: QName{Local: decl.Name}, Value: decl.DefaultValue, Specified: false,
			})
		}
	}
}

// validateAttributes checks every supplied attribute's value against
// its ATTLIST-declared type and reports #REQUIRED attributes that
// were never supplied (spec §4.7). A non-nil error from sink.Error is
// returned and aborts the parse.
func (p *Parser) validateAttributes(elemName string, pos Position) error {
	al, ok := p.dtd.Attlists[elemName]
	if !ok {
		return nil
	}
	for _, decl := range al.Attrs {
		var value string
		found := false
		for _, a := range p.pendingAttrs {
			if a.Name.Local == decl.Name {
				value, found = a.Value, true
				break
			}
		}
		if !found {
			if decl.Default == DefaultRequired {
				if err := p.sink.Error(validityErrorf(pos, "required attribute %q of element %q not specified", decl.Name, elemName)); err != nil {
					return err
				}
			}
			continue
		}
		if decl.Type != AttrTypeCDATA {
			value = collapseNMTokenWhitespace(value)
		}
		if msg := validateAttrValue(decl, value, pos, p.ids); msg != "" {
			if err := p.sink.Error(validityErrorf(pos, "%s", msg)); err != nil {
				return err
			}
		}
		if decl.Type == AttrTypeENTITY || decl.Type == AttrTypeENTITIES {
			for _, n := range splitNMTokens(value) {
				if ed, ok := p.dtd.Entities.Lookup(EntityGeneral, n); !ok || !ed.IsUnparsed() {
					if err := p.sink.Error(validityErrorf(pos, "attribute %q: %q is not a declared unparsed entity", decl.Name, n)); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// expandGeneralEntity re-tokenizes an internal or (if enabled)
// external general entity's replacement text in place, bracketed by
// StartEntity/EndEntity, recursing through the same token dispatch
// used for the primary input (spec §4.5). Predefined entities never
// reach this path; those resolve to a single CHARENTITYREF-equivalent
// token directly in the tokenizer.
func (p *Parser) expandGeneralEntity(name string, pos Position) error {
	decl, ok := p.dtd.Entities.Lookup(EntityGeneral, name)
	if !ok {
		return fatalf(pos, "reference to undeclared general entity %q", name)
	}
	if decl.IsUnparsed() {
		return fatalf(pos, "entity %q is unparsed (NDATA) and cannot be referenced as content", name)
	}

	var source []rune
	version := p.entities.CurrentVersion(p.version)

	if decl.IsExternal() {
		if !p.cfg.externalGeneralEntities {
			return p.sink.Warning(warningf(pos, "external general entity %q skipped (external entities disabled)", name))
		}
		src, err := p.cfg.resolver.Resolve(name, decl.PublicID, decl.SystemID, p.systemID)
		if err == ErrEntityNotAllowed {
			return p.sink.Warning(warningf(pos, "external general entity %q skipped (%v)", name, err))
		}
		if err != nil {
			return wrapResolverError(pos, name, err)
		}
		if src == nil || src.Reader == nil {
			return fatalf(pos, "resolver returned no input source for external entity %q", name)
		}
		raw, err := io.ReadAll(src.Reader)
		if err != nil {
			return wrapResolverError(pos, name, err)
		}
		nestedDec := NewDecoder(src.SystemID)
		decoded, err := nestedDec.Feed(raw, true)
		if err != nil {
			return err
		}
		source = decoded
		version = nestedDec.Version
		if err := p.entities.Push(entityFrame{Kind: EntityGeneral, Name: name, SystemID: src.SystemID, Version: version}); err != nil {
			return fatalf(pos, "%s", err)
		}
	} else {
		source = []rune(decl.Value)
		if err := p.entities.Push(entityFrame{Kind: EntityGeneral, Name: name, Version: version}); err != nil {
			return fatalf(pos, "%s", err)
		}
	}

	if err := p.flushText(); err != nil {
		return err
	}
	if err := p.sink.StartEntity(name); err != nil {
		return err
	}

	nested := NewTokenizer(version, p.systemID)
	savedMode := p.mode
	savedTok := p.activeTok
	savedDepth := len(p.elemStack)
	p.activeTok = nested
	feedErr := nested.Feed(source, p.handleToken)
	p.activeTok = savedTok
	if feedErr != nil {
		return feedErr
	}
	if err := nested.Close(); err != nil {
		return err
	}
	if len(p.elemStack) != savedDepth {
		return fatalf(pos, "entity %q does not contain balanced start/end tags", name)
	}
	p.mode = savedMode

	if err := p.flushText(); err != nil {
		return err
	}
	if err := p.sink.EndEntity(name); err != nil {
		return err
	}
	return p.entities.Pop(EntityGeneral, name)
}
