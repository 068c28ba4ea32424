package xml

// Occurrence is a content-particle's occurrence indicator (spec §4.6).
type Occurrence int

const (
	OccurrenceOnce Occurrence = iota
	OccurrenceOptional                // ?
	OccurrenceZeroOrMore               // *
	OccurrenceOneOrMore                // +
)

// ParticleKind distinguishes the node shapes a content model tree is
// built from (spec §4.6).
type ParticleKind int

const (
	ParticleElement ParticleKind = iota
	ParticleSequence
	ParticleChoice
	ParticlePCDATA
)

// ContentParticle is one node of an ELEMENT declaration's content
// model tree (spec §4.6). For ParticleElement, Name is the child
// element's name and Children is empty; for ParticleSequence /
// ParticleChoice, Children holds the sub-particles in declaration
// order and Name is unused.
type ContentParticle struct {
	Kind       ParticleKind
	Name       string
	Children   []*ContentParticle
	Occurrence Occurrence
}

// ContentSpec is the full right-hand side of an ELEMENT declaration:
// either EMPTY, ANY, a mixed-content model (#PCDATA | a | b)*, or an
// element-content model tree (spec §4.6).
type ContentSpec struct {
	Empty   bool
	Any     bool
	Mixed   bool     // (#PCDATA | ...)*; MixedNames holds the alternatives
	MixedNames []string
	Root    *ContentParticle // nil for Empty/Any; for Mixed, the parenthesized group as parsed
}

// ElementDecl is a parsed <!ELEMENT ...> declaration (spec §4.6).
type ElementDecl struct {
	Name    string
	Content ContentSpec
}

// AttDecl is one attribute definition inside an ATTLIST declaration
// (spec §4.7).
type AttDecl struct {
	Name         string
	Type         AttrType
	Enumeration  []string // populated for AttrTypeEnumeration/AttrTypeNOTATION
	Default      DefaultKind
	DefaultValue string // populated for DefaultFixed/DefaultValue
}

// AttlistDecl collects every <!ATTLIST Name ...> definition seen for a
// given element name; XML allows multiple ATTLIST declarations for the
// same element, their attribute definitions accumulate (spec §4.7,
// "first declaration of a given attribute on a given element wins").
type AttlistDecl struct {
	ElementName string
	Attrs       []AttDecl
}

// NotationDecl is a parsed <!NOTATION ...> declaration (spec §4.6).
type NotationDecl struct {
	Name     string
	PublicID string
	SystemID string
}

// DTD is the assembled result of parsing a document's internal
// (and, if enabled, external) subset: every declaration the DTD
// parser accepted, keyed for the lookups the content-model and
// attribute-type validators need (spec §4.5, §4.6, §4.7).
type DTD struct {
	Elements   map[string]ElementDecl
	Attlists   map[string]*AttlistDecl
	Notations  map[string]NotationDecl
	Entities   *entityTable
}

func newDTD() *DTD {
	return &DTD{
		Elements:  map[string]ElementDecl{},
		Attlists:  map[string]*AttlistDecl{},
		Notations: map[string]NotationDecl{},
		Entities:  newEntityTable(),
	}
}

// AttDeclFor looks up a single attribute's definition on a given
// element, if any ATTLIST declared it.
func (d *DTD) AttDeclFor(element, attr string) (AttDecl, bool) {
	al, ok := d.Attlists[element]
	if !ok {
		return AttDecl{}, false
	}
	for _, a := range al.Attrs {
		if a.Name == attr {
			return a, true
		}
	}
	return AttDecl{}, false
}
