package xml

// recordingSink is a minimal EventSink used across integration tests
// to assert the event sequence a parse produces, mirroring how
// moznion-helium's SAX tests assert against a recording handler.
type recordingSink struct {
	NopSink
	events    []string
	chars     []string
	warnings  []error
	errors    []error
	fatal     error
}

func (s *recordingSink) StartDocument() error {
	s.events = append(s.events, "start-document")
	return nil
}

func (s *recordingSink) EndDocument() error {
	s.events = append(s.events, "end-document")
	return nil
}

func (s *recordingSink) StartElement(name QName, attrs []Attribute) error {
	s.events = append(s.events, "start:"+name.String())
	return nil
}

func (s *recordingSink) EndElement(name QName) error {
	s.events = append(s.events, "end:"+name.String())
	return nil
}

func (s *recordingSink) Characters(text string) error {
	s.events = append(s.events, "text:"+text)
	s.chars = append(s.chars, text)
	return nil
}

func (s *recordingSink) Comment(text string) error {
	s.events = append(s.events, "comment:"+text)
	return nil
}

func (s *recordingSink) ProcessingInstruction(target, data string) error {
	s.events = append(s.events, "pi:"+target+":"+data)
	return nil
}

func (s *recordingSink) StartCDATASection() error {
	s.events = append(s.events, "start-cdata")
	return nil
}

func (s *recordingSink) EndCDATASection() error {
	s.events = append(s.events, "end-cdata")
	return nil
}

func (s *recordingSink) StartPrefixMapping(prefix, uri string) error {
	s.events = append(s.events, "start-prefix:"+prefix+"="+uri)
	return nil
}

func (s *recordingSink) StartEntity(name string) error {
	s.events = append(s.events, "start-entity:"+name)
	return nil
}

func (s *recordingSink) EndEntity(name string) error {
	s.events = append(s.events, "end-entity:"+name)
	return nil
}

func (s *recordingSink) Warning(err error) error {
	s.warnings = append(s.warnings, err)
	return nil
}

func (s *recordingSink) Error(err error) error {
	s.errors = append(s.errors, err)
	return nil
}

func (s *recordingSink) FatalError(err error) error {
	s.fatal = err
	return err
}
