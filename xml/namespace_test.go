package xml

import "testing"

func TestNamespaceContextPredeclaresXMLPrefix(t *testing.T) {
	nc := newNamespaceContext()
	uri, ok := nc.Lookup("xml")
	if !ok || uri != "http://www.w3.org/XML/1998/namespace" {
		t.Fatalf("xml prefix = (%q, %v), want the predeclared XML namespace", uri, ok)
	}
}

func TestNamespaceContextPushAndLookup(t *testing.T) {
	nc := newNamespaceContext()
	nc.PushElement(map[string]string{"a": "urn:a", "": "urn:default"})

	if uri, ok := nc.Lookup("a"); !ok || uri != "urn:a" {
		t.Fatalf("Lookup(a) = (%q, %v)", uri, ok)
	}
	if uri, ok := nc.Lookup(""); !ok || uri != "urn:default" {
		t.Fatalf("Lookup(default) = (%q, %v)", uri, ok)
	}
}

func TestNamespaceContextPopRestoresShadowedBinding(t *testing.T) {
	nc := newNamespaceContext()
	nc.PushElement(map[string]string{"a": "urn:outer"})
	nc.PushElement(map[string]string{"a": "urn:inner"})

	uri, _ := nc.Lookup("a")
	if uri != "urn:inner" {
		t.Fatalf("inner scope Lookup(a) = %q, want urn:inner", uri)
	}

	nc.PopElement()
	uri, _ = nc.Lookup("a")
	if uri != "urn:outer" {
		t.Fatalf("after pop, Lookup(a) = %q, want urn:outer", uri)
	}

	nc.PopElement()
	if _, ok := nc.Lookup("a"); ok {
		t.Fatal("prefix 'a' should be unbound once its only declaring frame is popped")
	}
}

func TestNamespaceContextPushElementWithNoDeclsIsCheap(t *testing.T) {
	nc := newNamespaceContext()
	nc.PushElement(nil)
	if nc.Depth() != 1 {
		t.Fatalf("Depth() = %d, want 1", nc.Depth())
	}
	nc.PopElement()
	if nc.Depth() != 0 {
		t.Fatalf("Depth() = %d, want 0", nc.Depth())
	}
}

func TestNamespaceContextPopOnEmptyStackIsNoOp(t *testing.T) {
	nc := newNamespaceContext()
	nc.PopElement()
	if nc.Depth() != 0 {
		t.Fatalf("Depth() = %d, want 0", nc.Depth())
	}
}
