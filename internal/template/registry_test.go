package template

import "testing"

func makeTemplate(id, domain string) *Template {
	return &Template{
		ID:          id,
		Version:     "1.0",
		Domain:      domain,
		Description: "a test template for " + id,
		Applicability: Applicability{
			Keywords: []string{"test"},
		},
	}
}

func TestRegistryRegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	tpl := makeTemplate("budget_analysis", "finance")
	if err := reg.Register(tpl); err != nil {
		t.Fatalf("register: %v", err)
	}
	if got := reg.Get("budget_analysis"); got != tpl {
		t.Fatal("expected registered template back")
	}
	if got := reg.Get("missing"); got != nil {
		t.Fatal("expected nil for unknown id")
	}
}

func TestRegistryRejectsDuplicateID(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(makeTemplate("dup", "a")); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := reg.Register(makeTemplate("dup", "b")); err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestRegistryPreservesRegistrationOrder(t *testing.T) {
	reg := NewRegistry()
	ids := []string{"charlie", "alpha", "bravo"}
	for _, id := range ids {
		if err := reg.Register(makeTemplate(id, "x")); err != nil {
			t.Fatalf("register %s: %v", id, err)
		}
	}
	all := reg.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 templates, got %d", len(all))
	}
	for i, id := range ids {
		if all[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, all[i].ID)
		}
	}
}

func TestRegistryFindByTool(t *testing.T) {
	reg := NewRegistry()
	a := makeTemplate("a", "x")
	a.Applicability.Tools = []string{"analyze"}
	b := makeTemplate("b", "x")
	b.Applicability.Tools = []string{"analyze", "report"}
	if err := reg.Register(a); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(b); err != nil {
		t.Fatal(err)
	}

	matches := reg.FindByTool("analyze")
	if len(matches) != 2 || matches[0].ID != "a" {
		t.Fatalf("expected [a b], got %v", matches)
	}
	if got := reg.FindByTool("unknown"); len(got) != 0 {
		t.Fatalf("expected no matches, got %d", len(got))
	}
}

func TestRegistryFindByTag(t *testing.T) {
	reg := NewRegistry()
	a := makeTemplate("a", "x")
	a.Tags = []string{"planning"}
	if err := reg.Register(a); err != nil {
		t.Fatal(err)
	}
	if got := reg.FindByTag("planning"); len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("expected [a], got %v", got)
	}
}
