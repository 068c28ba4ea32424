package xml

// QName is a namespace-resolved element or attribute name (spec §4.4
// "Namespace processing"). Prefix and Local are always populated from
// the raw lexical name; URI is only populated once namespace
// processing is enabled and the prefix (or, for elements, the default
// namespace) resolves against the active scope.
type QName struct {
	Prefix string
	Local  string
	URI    string // empty when unbound or namespace processing is off
}

// String reconstructs the lexical qualified name (prefix:local, or
// just local with no prefix).
func (q QName) String() string {
	if q.Prefix == "" {
		return q.Local
	}
	return q.Prefix + ":" + q.Local
}

// splitQName splits a raw lexical name into prefix and local parts on
// the first colon. Callers must run isWellFormedQName first; this just
// does the mechanical split.
func splitQName(raw string) (prefix, local string) {
	for i := 0; i < len(raw); i++ {
		if raw[i] == ':' {
			return raw[:i], raw[i+1:]
		}
	}
	return "", raw
}

// isWellFormedQName reports whether raw has at most one colon, and
// never one in the first or last position (spec §4.4 "a name with
// more than one colon, or a colon as its first or last character, is
// a namespace well-formedness error").
func isWellFormedQName(raw string) bool {
	idx := -1
	for i := 0; i < len(raw); i++ {
		if raw[i] == ':' {
			if idx != -1 {
				return false
			}
			idx = i
		}
	}
	return idx != 0 && idx != len(raw)-1
}
