package xml

// config holds the parser's feature flags (spec §6 "Parser control
// surface"). defaultConfig supplies the conservative default:
// namespace processing on, validation off, external entities
// refused.
type config struct {
	namespaces              bool
	namespacePrefixes       bool // keep xmlns* attributes visible to the sink even with namespaces on
	validate                bool
	externalGeneralEntities bool
	externalParamEntities   bool
	resolveDTDURIs          bool
	internStrings           bool
	resolver                EntityResolver
}

func defaultConfig() config {
	return config{
		namespaces: true,
		resolver:   NoOpResolver{},
	}
}

// Option configures a Parser at construction, following the
// functional-options idiom the retrieved pack uses for its client and
// soap-envelope constructors.
type Option func(*config)

// WithNamespaces toggles namespace processing (on by default).
func WithNamespaces(enabled bool) Option {
	return func(c *config) { c.namespaces = enabled }
}

// WithNamespacePrefixes keeps xmlns-declaring attributes visible to
// the sink's attribute list even when namespace processing is on
// (SAX2's http://xml.org/sax/features/namespace-prefixes).
func WithNamespacePrefixes(enabled bool) Option {
	return func(c *config) { c.namespacePrefixes = enabled }
}

// WithValidation turns on DTD validity checking: content-model and
// attribute-type constraints are checked and reported via
// sink.Error/sink.Warning rather than only well-formedness (spec §4.6,
// §4.7).
func WithValidation(enabled bool) Option {
	return func(c *config) { c.validate = enabled }
}

// WithExternalGeneralEntities allows external general entity
// references to be resolved and expanded (off by default: the classic
// XXE surface).
func WithExternalGeneralEntities(enabled bool) Option {
	return func(c *config) { c.externalGeneralEntities = enabled }
}

// WithExternalParameterEntities records the external-parameter-entities
// flag. No parser code reads it: the external DTD subset and external
// parameter entities are never loaded, whatever its value.
func WithExternalParameterEntities(enabled bool) Option {
	return func(c *config) { c.externalParamEntities = enabled }
}

// WithResolveDTDURIs records the resolve-dtd-uris flag. No parser code
// reads it: SYSTEM/PUBLIC identifiers reach NotationDeclaration and
// UnparsedEntityDeclaration as written, never resolved against a base
// URI.
func WithResolveDTDURIs(enabled bool) Option {
	return func(c *config) { c.resolveDTDURIs = enabled }
}

// WithStringInterning records the string-interning flag. No parser
// code reads it: names and namespace URIs are not interned.
func WithStringInterning(enabled bool) Option {
	return func(c *config) { c.internStrings = enabled }
}

// WithEntityResolver installs the resolver used for external entities
// and external DTD subsets (spec §6 EntityResolver). The default,
// NoOpResolver, refuses everything.
func WithEntityResolver(r EntityResolver) Option {
	return func(c *config) {
		if r != nil {
			c.resolver = r
		}
	}
}
