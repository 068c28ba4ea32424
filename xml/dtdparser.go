package xml

// dtdMode is the DTD sub-parser's own coarse state, layered on top of
// the tokenizer's single DOCTYPE_INTERNAL coarse state (spec §4.5
// "the DTD parser dispatches successive markup tokens to dedicated
// sub-parsers, switching among them on START_ELEMENTDECL /
// START_ATTLISTDECL / START_ENTITYDECL / START_NOTATIONDECL").
type dtdMode int

const (
	dtdModeIdle dtdMode = iota
	dtdModeElement
	dtdModeAttlist
	dtdModeEntity
	dtdModeNotation
)

// groupFrame is one open parenthesis level of an ELEMENT content
// model, built bottom-up as CLOSE_PAREN tokens arrive.
type groupFrame struct {
	particle *ContentParticle // SEQUENCE or CHOICE, kind decided by the first separator seen
	sawComma bool
	sawPipe  bool
}

// dtdParser assembles ELEMENT / ATTLIST / ENTITY / NOTATION
// declarations from the token stream the tokenizer produces while in
// DOCTYPE_INTERNAL (or a CONDITIONAL_SECTION_INCLUDE nested inside
// it), per spec §4.5. It is fed one token at a time by the content
// parser's main loop; it never buffers more than the current
// declaration's in-progress particle stack (spec §5 bounded memory).
type dtdParser struct {
	dtd     *DTD
	sink    EventSink
	version XMLVersion

	mode dtdMode

	// ELEMENT
	elemName    string
	groupStack  []*groupFrame
	elemContent ContentSpec
	expectElementName bool
	sawPCDATA bool
	pendingOccurrenceTarget *ContentParticle

	// ATTLIST
	attlistElement string
	attName        string
	attType        AttrType
	attEnum        []string
	attDefault     DefaultKind
	attDefaultVal  string
	attStage       int // 0=want name, 1=want type, 2=want default

	// ENTITY
	entityIsParam  bool
	entityName     string
	entityValueBuf []rune
	entitySystemID string
	entityPublicID string
	entityNDATA    string
	expectEntityName bool
	entityStage    int // 0=value literal, 2=system literal (after SYSTEM, or after PUBLIC's first literal), 3=after PUBLIC, want public literal, 4=after NDATA, want notation name

	// NOTATION
	notName     string
	notPublicID string
	notSystemID string
	notStage    int
}

func newDTDParser(dtd *DTD, sink EventSink, version XMLVersion) *dtdParser {
	return &dtdParser{dtd: dtd, sink: sink, version: version}
}

// Accept processes one token, given its materialized text (empty for
// punctuation tokens). It returns a non-nil error only for
// well-formedness violations; validity problems are reported through
// sink.Error/sink.Warning and do not stop the parse.
func (p *dtdParser) Accept(tag Tag, text string, pos Position) error {
	switch tag {
	case TagStartElementDecl:
		p.mode = dtdModeElement
		p.elemName = ""
		p.groupStack = p.groupStack[:0]
		p.elemContent = ContentSpec{}
		p.expectElementName = true
		p.sawPCDATA = false
		return nil
	case TagStartAttlistDecl:
		p.mode = dtdModeAttlist
		p.attlistElement = ""
		p.attStage = 0
		return nil
	case TagStartEntityDecl:
		p.mode = dtdModeEntity
		p.entityIsParam = false
		p.entityName = ""
		p.entityValueBuf = p.entityValueBuf[:0]
		p.entitySystemID = ""
		p.entityPublicID = ""
		p.entityNDATA = ""
		p.expectEntityName = true
		p.entityStage = 0
		return nil
	case TagStartNotationDecl:
		p.mode = dtdModeNotation
		p.notName = ""
		p.notPublicID = ""
		p.notSystemID = ""
		p.notStage = 0
		return nil
	case TagGT:
		return p.finishDecl(pos)
	}

	switch p.mode {
	case dtdModeElement:
		return p.acceptElement(tag, text, pos)
	case dtdModeAttlist:
		return p.acceptAttlist(tag, text, pos)
	case dtdModeEntity:
		return p.acceptEntity(tag, text, pos)
	case dtdModeNotation:
		return p.acceptNotation(tag, text, pos)
	}
	return nil // comments, whitespace-adjacent tokens etc. outside any declaration
}

func (p *dtdParser) finishDecl(pos Position) error {
	switch p.mode {
	case dtdModeElement:
		if p.elemName == "" {
			return fatalf(pos, "ELEMENT declaration has no name")
		}
		if len(p.groupStack) > 0 && p.elemContent.Root == nil {
			p.elemContent.Root = p.groupStack[len(p.groupStack)-1].particle
		}
		p.dtd.Elements[p.elemName] = ElementDecl{Name: p.elemName, Content: p.elemContent}
	case dtdModeAttlist:
		if p.attlistElement == "" {
			return fatalf(pos, "ATTLIST declaration has no element name")
		}
	case dtdModeEntity:
		if p.entityName == "" {
			return fatalf(pos, "ENTITY declaration has no name")
		}
		kind := EntityGeneral
		if p.entityIsParam {
			kind = EntityParameter
		}
		decl := EntityDecl{
			Name: p.entityName, Kind: kind,
			Value: string(p.entityValueBuf),
			PublicID: p.entityPublicID, SystemID: p.entitySystemID,
			NDATA: p.entityNDATA,
		}
		if !p.dtd.Entities.Declare(decl) {
			if err := p.sink.Warning(warningf(pos, "entity %q already declared, ignoring redeclaration", p.entityName)); err != nil {
				return err
			}
		}
		if decl.IsUnparsed() {
			if err := p.sink.UnparsedEntityDeclaration(decl.Name, decl.PublicID, decl.SystemID, decl.NDATA); err != nil {
				return err
			}
		}
	case dtdModeNotation:
		if p.notName == "" {
			return fatalf(pos, "NOTATION declaration has no name")
		}
		p.dtd.Notations[p.notName] = NotationDecl{Name: p.notName, PublicID: p.notPublicID, SystemID: p.notSystemID}
		if err := p.sink.NotationDeclaration(p.notName, p.notPublicID, p.notSystemID); err != nil {
			return err
		}
	}
	p.mode = dtdModeIdle
	return nil
}

func (p *dtdParser) acceptElement(tag Tag, text string, pos Position) error {
	if p.expectElementName {
		if tag != TagName {
			return fatalf(pos, "expected element name in ELEMENT declaration")
		}
		p.elemName = text
		p.expectElementName = false
		return nil
	}
	switch tag {
	case TagEMPTY:
		p.elemContent.Empty = true
	case TagANY:
		p.elemContent.Any = true
	case TagPCDATA:
		p.sawPCDATA = true
		p.elemContent.Mixed = true
	case TagOpenParen:
		p.groupStack = append(p.groupStack, &groupFrame{particle: &ContentParticle{Kind: ParticleSequence}})
	case TagCloseParen:
		if len(p.groupStack) == 0 {
			return fatalf(pos, "unbalanced ')' in content model")
		}
		top := p.groupStack[len(p.groupStack)-1]
		p.groupStack = p.groupStack[:len(p.groupStack)-1]
		if len(p.groupStack) == 0 {
			p.elemContent.Root = top.particle
		} else {
			parent := p.groupStack[len(p.groupStack)-1]
			parent.particle.Children = append(parent.particle.Children, top.particle)
		}
	case TagComma, TagPipe:
		if len(p.groupStack) == 0 {
			return fatalf(pos, "',' or '|' outside a content-model group")
		}
		top := p.groupStack[len(p.groupStack)-1]
		if tag == TagComma {
			top.sawComma = true
			top.particle.Kind = ParticleSequence
		} else {
			top.sawPipe = true
			top.particle.Kind = ParticleChoice
		}
		if top.sawComma && top.sawPipe {
			return fatalf(pos, "content-model group mixes ',' and '|'")
		}
	case TagName:
		if p.sawPCDATA {
			p.elemContent.MixedNames = append(p.elemContent.MixedNames, text)
			return nil
		}
		elemPart := &ContentParticle{Kind: ParticleElement, Name: text}
		if len(p.groupStack) == 0 {
			// a bare, unparenthesized element-content model, e.g. <!ELEMENT a (b)> already
			// handled via groups; a lone Name with no group wrapping it at all
			// is still one valid content spec: element-content with a single child.
			p.elemContent.Root = elemPart
		} else {
			top := p.groupStack[len(p.groupStack)-1]
			top.particle.Children = append(top.particle.Children, elemPart)
		}
		p.pendingOccurrenceTarget = elemPart
	case TagStar, TagPlus, TagQuestion:
		occ := OccurrenceOptional
		switch tag {
		case TagStar:
			occ = OccurrenceZeroOrMore
		case TagPlus:
			occ = OccurrenceOneOrMore
		}
		if p.pendingOccurrenceTarget != nil {
			p.pendingOccurrenceTarget.Occurrence = occ
			p.pendingOccurrenceTarget = nil
			return nil
		}
		if len(p.groupStack) > 0 {
			top := p.groupStack[len(p.groupStack)-1]
			top.particle.Occurrence = occ
			return nil
		}
		if p.elemContent.Root != nil {
			p.elemContent.Root.Occurrence = occ
		}
	}
	return nil
}

func (p *dtdParser) acceptAttlist(tag Tag, text string, pos Position) error {
	if p.attlistElement == "" {
		if tag != TagName {
			return fatalf(pos, "expected element name in ATTLIST declaration")
		}
		p.attlistElement = text
		al, ok := p.dtd.Attlists[text]
		if !ok {
			al = &AttlistDecl{ElementName: text}
			p.dtd.Attlists[text] = al
		}
		return nil
	}
	switch p.attStage {
	case 0: // want attribute name, or we've finished (GT handled elsewhere)
		if tag == TagCData && p.attDefaultVal != "" {
			// a further fragment of the default literal just recorded
			al := p.dtd.Attlists[p.attlistElement]
			al.Attrs[len(al.Attrs)-1].DefaultValue += text
			p.attDefaultVal += text
			return nil
		}
		if tag != TagName {
			return fatalf(pos, "expected attribute name in ATTLIST declaration")
		}
		p.attName = text
		p.attType = AttrTypeCDATA
		p.attEnum = nil
		p.attDefault = DefaultNone
		p.attDefaultVal = ""
		p.attStage = 1
	case 1: // want type
		switch tag {
		case TagCDATAType:
			p.attType = AttrTypeCDATA
		case TagID:
			p.attType = AttrTypeID
		case TagIDREF:
			p.attType = AttrTypeIDREF
		case TagIDREFS:
			p.attType = AttrTypeIDREFS
		case TagENTITY:
			p.attType = AttrTypeENTITY
		case TagENTITIES:
			p.attType = AttrTypeENTITIES
		case TagNMTOKEN:
			p.attType = AttrTypeNMTOKEN
		case TagNMTOKENS:
			p.attType = AttrTypeNMTOKENS
		case TagNOTATION:
			p.attType = AttrTypeNOTATION
		case TagOpenParen:
			p.attType = AttrTypeEnumeration
			p.attEnum = nil
		case TagName:
			// enumeration/notation alternative
			p.attEnum = append(p.attEnum, text)
			return nil
		case TagPipe:
			return nil
		case TagCloseParen:
			p.attStage = 2 // enumeration list complete
			return nil
		default:
			return fatalf(pos, "expected an attribute type in ATTLIST declaration")
		}
		if tag == TagNOTATION || tag == TagOpenParen {
			return nil // stay in stage 1 accumulating the enumeration list
		}
		p.attStage = 2
	case 2: // want default declaration
		switch tag {
		case TagREQUIRED:
			p.attDefault = DefaultRequired
		case TagIMPLIED:
			p.attDefault = DefaultImplied
		case TagFIXED:
			p.attDefault = DefaultFixed
			return nil // default literal follows as CDATA/entity tokens
		case TagCData:
			if p.attDefault == DefaultFixed {
				p.attDefaultVal += text
			} else {
				p.attDefault = DefaultValue
				p.attDefaultVal += text
			}
		default:
			return fatalf(pos, "expected a default declaration in ATTLIST declaration")
		}
		al := p.dtd.Attlists[p.attlistElement]
		al.Attrs = append(al.Attrs, AttDecl{
			Name: p.attName, Type: p.attType, Enumeration: p.attEnum,
			Default: p.attDefault, DefaultValue: p.attDefaultVal,
		})
		p.attStage = 0
	}
	return nil
}

func (p *dtdParser) acceptEntity(tag Tag, text string, pos Position) error {
	if p.expectEntityName {
		switch tag {
		case TagPercent:
			p.entityIsParam = true
			return nil
		case TagName:
			p.entityName = text
			p.expectEntityName = false
			return nil
		}
		return fatalf(pos, "expected '%%' or a name in ENTITY declaration")
	}
	switch tag {
	case TagCData, TagCharEntityRef, TagPredefEntityRef:
		switch {
		case p.entityStage == 2 && tag == TagCData:
			p.entitySystemID += text
		case p.entityStage == 3 && tag == TagCData:
			p.entityPublicID = text
			p.entityStage = 2
		default:
			p.entityValueBuf = append(p.entityValueBuf, []rune(text)...)
		}
	case TagGeneralEntityRef:
		// retained literally inside an EntityValue (spec §4.5).
		p.entityValueBuf = append(p.entityValueBuf, '&')
		p.entityValueBuf = append(p.entityValueBuf, []rune(text)...)
		p.entityValueBuf = append(p.entityValueBuf, ';')
	case TagParameterEntityRef:
		if decl, ok := p.dtd.Entities.Lookup(EntityParameter, text); ok {
			p.entityValueBuf = append(p.entityValueBuf, []rune(decl.Value)...)
		}
	case TagSYSTEM:
		p.entityStage = 2
	case TagPUBLIC:
		p.entityStage = 3
	case TagName:
		if p.entityStage == 3 && p.entityPublicID == "" {
			p.entityPublicID = text
			p.entityStage = 2
		} else if p.entityStage == 4 {
			p.entityNDATA = text
		}
	case TagNDATA:
		p.entityStage = 4
	}
	return nil
}

func (p *dtdParser) acceptNotation(tag Tag, text string, pos Position) error {
	switch p.notStage {
	case 0:
		if tag != TagName {
			return fatalf(pos, "expected notation name in NOTATION declaration")
		}
		p.notName = text
		p.notStage = 1
	case 1:
		switch tag {
		case TagSYSTEM:
			p.notStage = 2
		case TagPUBLIC:
			p.notStage = 3
		default:
			return fatalf(pos, "expected SYSTEM or PUBLIC in NOTATION declaration")
		}
	case 2:
		if tag == TagCData {
			p.notSystemID = text
		}
	case 3:
		if tag == TagName {
			p.notPublicID = text
		} else if tag == TagCData {
			if p.notPublicID == "" {
				p.notPublicID = text
			} else {
				p.notSystemID = text
			}
		}
	}
	return nil
}
