package xml

import "testing"

func TestEntityTableDeclareFirstWins(t *testing.T) {
	tbl := newEntityTable()
	if !tbl.Declare(EntityDecl{Name: "greeting", Kind: EntityGeneral, Value: "hi"}) {
		t.Fatal("first declaration should be accepted")
	}
	if tbl.Declare(EntityDecl{Name: "greeting", Kind: EntityGeneral, Value: "bye"}) {
		t.Fatal("second declaration of the same name should be rejected")
	}
	d, ok := tbl.Lookup(EntityGeneral, "greeting")
	if !ok || d.Value != "hi" {
		t.Fatalf("Lookup = (%+v, %v), want the first declaration's value", d, ok)
	}
}

func TestEntityTableGeneralAndParameterNamespacesDoNotCollide(t *testing.T) {
	tbl := newEntityTable()
	tbl.Declare(EntityDecl{Name: "x", Kind: EntityGeneral, Value: "general"})
	tbl.Declare(EntityDecl{Name: "x", Kind: EntityParameter, Value: "parameter"})

	g, _ := tbl.Lookup(EntityGeneral, "x")
	p, _ := tbl.Lookup(EntityParameter, "x")
	if g.Value != "general" || p.Value != "parameter" {
		t.Fatalf("general/parameter entities collided: %+v / %+v", g, p)
	}
}

func TestEntityDeclIsExternalAndIsUnparsed(t *testing.T) {
	internal := EntityDecl{Name: "a", Value: "text"}
	external := EntityDecl{Name: "b", SystemID: "file:///b.ent"}
	unparsed := EntityDecl{Name: "c", SystemID: "file:///c.png", NDATA: "png"}

	if internal.IsExternal() {
		t.Error("internal entity reported as external")
	}
	if !external.IsExternal() {
		t.Error("external entity not reported as external")
	}
	if external.IsUnparsed() {
		t.Error("plain external entity reported as unparsed")
	}
	if !unparsed.IsUnparsed() {
		t.Error("NDATA entity not reported as unparsed")
	}
}

func TestEntityStackDetectsDirectRecursion(t *testing.T) {
	s := &entityStack{}
	if err := s.Push(entityFrame{Kind: EntityGeneral, Name: "a"}); err != nil {
		t.Fatalf("first push failed: %v", err)
	}
	if err := s.Push(entityFrame{Kind: EntityGeneral, Name: "a"}); err == nil {
		t.Fatal("expected recursion error on pushing the same entity twice")
	}
}

func TestEntityStackDetectsRecursionBySystemID(t *testing.T) {
	s := &entityStack{}
	if err := s.Push(entityFrame{Kind: EntityGeneral, Name: "a", SystemID: "urn:shared"}); err != nil {
		t.Fatalf("first push failed: %v", err)
	}
	if err := s.Push(entityFrame{Kind: EntityGeneral, Name: "b", SystemID: "urn:shared"}); err == nil {
		t.Fatal("expected recursion error when two entities share a resolved system ID")
	}
}

func TestEntityStackPopMismatchIsAnError(t *testing.T) {
	s := &entityStack{}
	_ = s.Push(entityFrame{Kind: EntityGeneral, Name: "a"})
	if err := s.Pop(EntityGeneral, "b"); err == nil {
		t.Fatal("expected an error popping the wrong name")
	}
}

func TestEntityStackCurrentVersionInheritsFromFrame(t *testing.T) {
	s := &entityStack{}
	if got := s.CurrentVersion(XML10); got != XML10 {
		t.Fatalf("empty stack CurrentVersion = %v, want XML10", got)
	}
	_ = s.Push(entityFrame{Kind: EntityGeneral, Name: "a", Version: XML11})
	if got := s.CurrentVersion(XML10); got != XML11 {
		t.Fatalf("CurrentVersion = %v, want XML11 from the open frame", got)
	}
}
