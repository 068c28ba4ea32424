package xml

// EventSink is the push-parser's callback surface (spec §6). Text
// arguments are Go strings already copied out of the tokenizer's
// window, so a sink may keep them. The attrs slice passed to
// StartElement is recycled once the call returns: a sink that needs
// the attributes afterward must copy the slice.
//
// This mirrors the shape of the retrieved sax package's ContentHandler
// / LexicalHandler / DTDHandler / DeclHandler split, collapsed into one
// interface since this core has no pluggable Context value: the sink
// itself is the context.
type EventSink interface {
	StartDocument() error
	EndDocument() error

	StartElement(name QName, attrs []Attribute) error
	EndElement(name QName) error

	Characters(text string) error
	IgnorableWhitespace(text string) error

	ProcessingInstruction(target, data string) error
	Comment(text string) error

	StartCDATASection() error
	EndCDATASection() error

	StartPrefixMapping(prefix, uri string) error
	EndPrefixMapping(prefix string) error

	StartEntity(name string) error
	EndEntity(name string) error

	NotationDeclaration(name, publicID, systemID string) error
	UnparsedEntityDeclaration(name, publicID, systemID, notationName string) error

	// Warning, Error and FatalError report the three severities of
	// spec §7. FatalError is always followed by the parser stopping;
	// returning a non-nil error from Warning or Error also aborts the
	// parse, mirroring org.xml.sax.ErrorHandler's contract.
	Warning(err error) error
	Error(err error) error
	FatalError(err error) error
}

// NopSink implements EventSink with no-op methods; embedding it lets a
// caller override only the handful of callbacks it cares about.
type NopSink struct{}

func (NopSink) StartDocument() error                      { return nil }
func (NopSink) EndDocument() error                        { return nil }
func (NopSink) StartElement(QName, []Attribute) error     { return nil }
func (NopSink) EndElement(QName) error                    { return nil }
func (NopSink) Characters(string) error                   { return nil }
func (NopSink) IgnorableWhitespace(string) error           { return nil }
func (NopSink) ProcessingInstruction(string, string) error { return nil }
func (NopSink) Comment(string) error                       { return nil }
func (NopSink) StartCDATASection() error                   { return nil }
func (NopSink) EndCDATASection() error                     { return nil }
func (NopSink) StartPrefixMapping(string, string) error    { return nil }
func (NopSink) EndPrefixMapping(string) error               { return nil }
func (NopSink) StartEntity(string) error                   { return nil }
func (NopSink) EndEntity(string) error                     { return nil }
func (NopSink) NotationDeclaration(string, string, string) error             { return nil }
func (NopSink) UnparsedEntityDeclaration(string, string, string, string) error { return nil }
func (NopSink) Warning(error) error                        { return nil }
func (NopSink) Error(error) error                          { return nil }
func (NopSink) FatalError(err error) error                 { return err }
