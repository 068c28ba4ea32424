package xml

// nsFrame is one element's worth of prefix bindings pushed onto the
// namespace stack when its start tag opens, popped when its end tag
// closes (spec §4.4 "Namespace scope tracking: a stack of
// prefix->URI frames"). bindings is nil for an element that declares
// no xmlns/xmlns:* attributes of its own, the overwhelmingly common
// case, so opening an element with no namespace declarations costs no
// allocation.
type nsFrame struct {
	bindings map[string]string // prefix (""=default) -> URI, this frame only
}

// namespaceContext tracks the active namespace scope as a stack of
// frames plus a flattened view for fast lookup (spec §4.4). The flat
// map is rebuilt incrementally: pushing a frame only needs to
// remember what it shadowed so popping can restore it, rather than
// recomputing the flattened view from the whole stack on every pop.
type namespaceContext struct {
	stack   []nsFrame
	active  map[string]string   // prefix -> URI, current flattened view
	shadow  [][]shadowEntry     // per-frame: what 'active' held before this frame overwrote it
}

type shadowEntry struct {
	prefix string
	hadURI bool
	uri    string
}

func newNamespaceContext() *namespaceContext {
	nc := &namespaceContext{active: map[string]string{}}
	// The xml prefix is permanently bound (spec: predeclared, never
	// redeclarable to a different URI).
	nc.active["xml"] = "http://www.w3.org/XML/1998/namespace"
	return nc
}

// PushElement starts a new frame, applying decls (from that element's
// xmlns/xmlns:* attributes, keyed by prefix) on top of the current
// scope.
func (nc *namespaceContext) PushElement(decls map[string]string) {
	frame := nsFrame{}
	var shadow []shadowEntry
	if len(decls) > 0 {
		frame.bindings = decls
		for prefix, uri := range decls {
			old, had := nc.active[prefix]
			shadow = append(shadow, shadowEntry{prefix: prefix, hadURI: had, uri: old})
			nc.active[prefix] = uri
		}
	}
	nc.stack = append(nc.stack, frame)
	nc.shadow = append(nc.shadow, shadow)
}

// PopElement undoes the bindings PushElement applied for the
// most-recently-opened still-open element (spec §4.4 "popped when its
// end tag is reached").
func (nc *namespaceContext) PopElement() {
	n := len(nc.stack)
	if n == 0 {
		return
	}
	shadow := nc.shadow[n-1]
	for _, e := range shadow {
		if e.hadURI {
			nc.active[e.prefix] = e.uri
		} else {
			delete(nc.active, e.prefix)
		}
	}
	nc.stack = nc.stack[:n-1]
	nc.shadow = nc.shadow[:n-1]
}

// Lookup resolves a prefix ("" for the default namespace) against the
// active scope.
func (nc *namespaceContext) Lookup(prefix string) (uri string, ok bool) {
	uri, ok = nc.active[prefix]
	return
}

// Depth reports how many element frames are currently open, for
// pool-sizing and invariant checks.
func (nc *namespaceContext) Depth() int {
	return len(nc.stack)
}
