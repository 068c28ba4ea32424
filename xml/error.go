package xml

import (
	"fmt"

	"github.com/pkg/errors"
)

// Severity classifies an error per spec §7: well-formedness errors are
// fatal and non-recoverable, validity errors are reported but parsing
// continues, warnings are advisory only.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// SyntaxError is the single error type the core produces. Msg names
// the production or constraint that was violated (spec §7: "a short
// message that names the production or validity constraint"); Pos
// carries line, column, character offset and system ID.
type SyntaxError struct {
	Severity Severity
	Msg      string
	Pos      Position
	Err      error // underlying cause, if any (e.g. a decode or resolver failure)
}

func (e *SyntaxError) Error() string {
	if e.Pos.Line > 0 || e.Pos.SystemID != "" {
		return fmt.Sprintf("xml %s at %s: %s", e.Severity, e.Pos, e.Msg)
	}
	return fmt.Sprintf("xml %s: %s", e.Severity, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

func fatalf(pos Position, format string, args ...any) *SyntaxError {
	return &SyntaxError{Severity: SeverityFatal, Msg: fmt.Sprintf(format, args...), Pos: pos}
}

func validityErrorf(pos Position, format string, args ...any) *SyntaxError {
	return &SyntaxError{Severity: SeverityError, Msg: fmt.Sprintf(format, args...), Pos: pos}
}

func warningf(pos Position, format string, args ...any) *SyntaxError {
	return &SyntaxError{Severity: SeverityWarning, Msg: fmt.Sprintf(format, args...), Pos: pos}
}

// wrapResolverError gives a resolver or nested-decoder failure a cause
// chain that survives crossing back into the core, using pkg/errors
// the way the dom layer in the retrieved pack wraps flexml failures;
// the core's own SyntaxError.Unwrap is enough within a single entity
// but a resolver can fail for reasons (network, filesystem, malformed
// URI) that are worth preserving with a stack-annotated cause.
func wrapResolverError(pos Position, entity string, err error) error {
	if err == nil {
		return nil
	}
	return &SyntaxError{
		Severity: SeverityFatal,
		Msg:      fmt.Sprintf("could not resolve entity %q", entity),
		Pos:      pos,
		Err:      errors.Wrapf(err, "resolving entity %q", entity),
	}
}

// IsFatal reports whether err (or anything it wraps) is a fatal
// well-formedness error as opposed to a reported validity error or
// warning. Any other non-nil error (one that is not a *SyntaxError) is
// reported as fatal; nil is not.
func IsFatal(err error) bool {
	var se *SyntaxError
	if errors.As(err, &se) {
		return se.Severity == SeverityFatal
	}
	return err != nil
}
