package xml

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	goxml "encoding/xml"
)

// Writer is the inverse of the parsing pipeline: an EventSink that
// serializes the events it receives back out as well-formed XML (spec
// §8 "the serializer is an external collaborator that consumes the
// same event shape the core produces, for the round-trip property").
// It does not attempt to reproduce the original document's entity
// references, CDATA boundaries or whitespace exactly; it re-escapes
// and re-indents like any writer consuming a SAX-shaped event stream
// would.
type Writer struct {
	w        *bufio.Writer
	cfg      writerConfig
	depth    int
	elemOpen bool // true between StartElement and the next event, so ">" can be deferred
	nsStack  []map[string]string
}

type writerConfig struct {
	pretty bool
	indent string
}

// WriterOption configures a Writer.
type WriterOption func(*writerConfig)

// WithPrettyPrint indents nested elements, one newline and indent
// string per depth level.
func WithPrettyPrint() WriterOption {
	return func(c *writerConfig) { c.pretty = true; if c.indent == "" { c.indent = "  " } }
}

// WithIndent sets the per-depth indent string and implies pretty
// printing.
func WithIndent(indent string) WriterOption {
	return func(c *writerConfig) { c.pretty = true; c.indent = indent }
}

// NewWriter creates a Writer that serializes to w.
func NewWriter(w io.Writer, opts ...WriterOption) *Writer {
	cfg := writerConfig{}
	for _, o := range opts {
		o(&cfg)
	}
	return &Writer{w: bufio.NewWriter(w), cfg: cfg}
}

// Flush drains any buffered output.
func (wr *Writer) Flush() error {
	return wr.w.Flush()
}

func (wr *Writer) closeOpenTag() {
	if wr.elemOpen {
		fmt.Fprint(wr.w, ">")
		wr.elemOpen = false
	}
}

func (wr *Writer) newline(depth int) {
	if !wr.cfg.pretty {
		return
	}
	fmt.Fprint(wr.w, "\n")
	for i := 0; i < depth; i++ {
		fmt.Fprint(wr.w, wr.cfg.indent)
	}
}

func (wr *Writer) StartDocument() error {
	fmt.Fprint(wr.w, `<?xml version="1.0" encoding="UTF-8"?>`)
	return nil
}

func (wr *Writer) EndDocument() error {
	if wr.cfg.pretty {
		fmt.Fprint(wr.w, "\n")
	}
	return wr.w.Flush()
}

func (wr *Writer) StartElement(name QName, attrs []Attribute) error {
	wr.closeOpenTag()
	wr.newline(wr.depth)
	fmt.Fprintf(wr.w, "<%s", name.String())
	if len(wr.nsStack) > 0 {
		decls := wr.nsStack[len(wr.nsStack)-1]
		prefixes := make([]string, 0, len(decls))
		for prefix := range decls {
			prefixes = append(prefixes, prefix)
		}
		sort.Strings(prefixes)
		for _, prefix := range prefixes {
			if prefix == "" {
				fmt.Fprintf(wr.w, ` xmlns="%s"`, escapeAttr(decls[prefix]))
			} else {
				fmt.Fprintf(wr.w, ` xmlns:%s="%s"`, prefix, escapeAttr(decls[prefix]))
			}
		}
		wr.nsStack = wr.nsStack[:len(wr.nsStack)-1]
	}
	for _, a := range attrs {
		fmt.Fprintf(wr.w, ` %s="%s"`, a.Name.String(), escapeAttr(a.Value))
	}
	wr.elemOpen = true
	wr.depth++
	return nil
}

func (wr *Writer) EndElement(name QName) error {
	wr.depth--
	if wr.elemOpen {
		fmt.Fprint(wr.w, "/>")
		wr.elemOpen = false
		return nil
	}
	wr.newline(wr.depth)
	fmt.Fprintf(wr.w, "</%s>", name.String())
	return nil
}

func (wr *Writer) Characters(text string) error {
	wr.closeOpenTag()
	return goxml.EscapeText(wr.w, []byte(text))
}

func (wr *Writer) IgnorableWhitespace(text string) error {
	wr.closeOpenTag()
	fmt.Fprint(wr.w, text)
	return nil
}

func (wr *Writer) ProcessingInstruction(target, data string) error {
	wr.closeOpenTag()
	wr.newline(wr.depth)
	if data == "" {
		fmt.Fprintf(wr.w, "<?%s?>", target)
	} else {
		fmt.Fprintf(wr.w, "<?%s %s?>", target, data)
	}
	return nil
}

func (wr *Writer) Comment(text string) error {
	wr.closeOpenTag()
	wr.newline(wr.depth)
	fmt.Fprintf(wr.w, "<!--%s-->", text)
	return nil
}

func (wr *Writer) StartCDATASection() error {
	wr.closeOpenTag()
	fmt.Fprint(wr.w, "<![CDATA[")
	return nil
}

func (wr *Writer) EndCDATASection() error {
	fmt.Fprint(wr.w, "]]>")
	return nil
}

// StartPrefixMapping buffers a namespace declaration to be written as
// an xmlns attribute on the element StartElement is about to open;
// PushElement/namespaceContext ordering guarantees StartPrefixMapping
// calls for an element always precede its StartElement call.
func (wr *Writer) StartPrefixMapping(prefix, uri string) error {
	if len(wr.nsStack) == 0 || wr.elemOpen {
		wr.nsStack = append(wr.nsStack, map[string]string{})
	}
	wr.nsStack[len(wr.nsStack)-1][prefix] = uri
	return nil
}

func (wr *Writer) EndPrefixMapping(prefix string) error { return nil }

func (wr *Writer) StartEntity(name string) error { return nil }
func (wr *Writer) EndEntity(name string) error    { return nil }

func (wr *Writer) NotationDeclaration(name, publicID, systemID string) error { return nil }
func (wr *Writer) UnparsedEntityDeclaration(name, publicID, systemID, notationName string) error {
	return nil
}

func (wr *Writer) Warning(err error) error   { return nil }
func (wr *Writer) Error(err error) error     { return nil }
func (wr *Writer) FatalError(err error) error { return err }

func escapeAttr(s string) string {
	var buf []byte
	w := &byteSliceWriter{buf: &buf}
	_ = goxml.EscapeText(w, []byte(s))
	return string(buf)
}

type byteSliceWriter struct {
	buf *[]byte
}

func (w *byteSliceWriter) Write(p []byte) (int, error) {
	*w.buf = append(*w.buf, p...)
	return len(p), nil
}
