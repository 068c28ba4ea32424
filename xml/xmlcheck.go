package xml

import "fmt"

// CheckResult summarizes one parse for command-line reporting: the
// well-formedness/validity errors and warnings a DiagnosticSink
// collected, without materializing the document itself (spec §6, §8
// "a CLI entry point is an external collaborator wiring the core to a
// filesystem/stdin source").
type CheckResult struct {
	Elements int
	Warnings []error
	Errors   []error
	Fatal    error
}

// OK reports whether the document was well-formed (and, if validation
// was requested, valid) with no reported errors.
func (r CheckResult) OK() bool {
	return r.Fatal == nil && len(r.Errors) == 0
}

// DiagnosticSink is a minimal EventSink that counts elements and
// collects diagnostics instead of materializing a tree, grounding the
// CLI's "check" command (spec §6's sink contract, with every
// content/markup callback a no-op).
type DiagnosticSink struct {
	NopSink
	Elements int
	Warnings []error
	Errors   []error
	Fatal    error
}

func (s *DiagnosticSink) StartElement(QName, []Attribute) error {
	s.Elements++
	return nil
}

func (s *DiagnosticSink) Warning(err error) error {
	s.Warnings = append(s.Warnings, err)
	return nil
}

func (s *DiagnosticSink) Error(err error) error {
	s.Errors = append(s.Errors, err)
	return nil
}

func (s *DiagnosticSink) FatalError(err error) error {
	s.Fatal = err
	return err
}

// Result converts the sink's accumulated state into a CheckResult.
func (s *DiagnosticSink) Result() CheckResult {
	return CheckResult{Elements: s.Elements, Warnings: s.Warnings, Errors: s.Errors, Fatal: s.Fatal}
}

// String renders a CheckResult the way the "check" CLI command prints
// it to stdout.
func (r CheckResult) String() string {
	if r.OK() {
		return fmt.Sprintf("well-formed, %d element(s), %d warning(s)", r.Elements, len(r.Warnings))
	}
	if r.Fatal != nil {
		return fmt.Sprintf("not well-formed: %s", r.Fatal)
	}
	return fmt.Sprintf("invalid: %d error(s), %d warning(s)", len(r.Errors), len(r.Warnings))
}
