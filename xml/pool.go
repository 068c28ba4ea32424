package xml

// elementCtxPool recycles elementValidationContext values across
// element scopes (spec §5/§9 "bounded memory via explicit pooling":
// the parser checks one out when a start tag opens, checks it back in
// when the matching end tag closes, rather than allocating one per
// element in a deep or repetitive document).
type elementCtxPool struct {
	free []*elementValidationContext
}

func (p *elementCtxPool) checkout() *elementValidationContext {
	if n := len(p.free); n > 0 {
		c := p.free[n-1]
		p.free = p.free[:n-1]
		c.reset()
		return c
	}
	return &elementValidationContext{}
}

func (p *elementCtxPool) checkin(c *elementValidationContext) {
	p.free = append(p.free, c)
}

// elementValidationContext is the pooled per-element state the
// content-model validator threads through an element's children (spec
// §4.6). It is reset, not reallocated, on check-out.
type elementValidationContext struct {
	name     QName
	model    *contentModelState // nil when validation is off or the element has no ELEMENT declaration
	sawText  bool
	sawChild bool
}

func (c *elementValidationContext) reset() {
	c.name = QName{}
	c.model = nil
	c.sawText = false
	c.sawChild = false
}

// attrSlicePool recycles []Attribute backing arrays across
// StartElement calls. Kept separate from elementCtxPool because
// attribute lists and element contexts have
// different, independent lifetimes (an element's attributes are done
// once StartElement returns; its validation context lives until its
// EndElement).
type attrSlicePool struct {
	free [][]Attribute
}

func (p *attrSlicePool) checkout() []Attribute {
	if n := len(p.free); n > 0 {
		a := p.free[n-1]
		p.free = p.free[:n-1]
		return a[:0]
	}
	return make([]Attribute, 0, 8)
}

func (p *attrSlicePool) checkin(a []Attribute) {
	p.free = append(p.free, a)
}
