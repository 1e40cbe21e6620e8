package graph

import (
	"errors"
	"testing"
)

func speedRef(t *testing.T, m *Model) *Node {
	t.Helper()
	return mustGet(t, m, "/Pkg/Speed").SubElement("SW-DATA-DEF-PROPS").SubElement("BASE-TYPE-REF")
}

func TestReferenceRoundTrip(t *testing.T) {
	m := baseModel(t)
	elements := mustGet(t, m, "/Other").SubElement("ELEMENTS")
	target, err := elements.CreateNamedSubElement("SW-BASE-TYPE", "Uint16")
	if err != nil {
		t.Fatal(err)
	}
	ref := speedRef(t, m)
	if err := ref.SetReferenceTarget(target); err != nil {
		t.Fatal(err)
	}
	got, err := ref.ReferenceTarget()
	if err != nil {
		t.Fatal(err)
	}
	if got != target {
		t.Errorf("target %v", got)
	}
	if v, _ := ref.CharacterData(); v.Text() != "/Other/Uint16" {
		t.Errorf("stored %q", v.Text())
	}
	if dest, _ := ref.Attribute("DEST"); dest.Text() != "SW-BASE-TYPE" {
		t.Errorf("DEST %q", dest.Text())
	}
	if refs := m.ReferencesTo("/Other/Uint16"); len(refs) != 1 || refs[0] != ref {
		t.Errorf("cache %v", refs)
	}
	if refs := m.ReferencesTo("/Pkg/Uint8"); len(refs) != 0 {
		t.Errorf("stale cache %v", refs)
	}
}

func TestReferenceErrors(t *testing.T) {
	m := baseModel(t)
	ref := speedRef(t, m)
	pkg := mustGet(t, m, "/Pkg")
	if err := ref.SetReferenceTarget(pkg); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("expected invalid reference, got %v", err)
	}
	if err := pkg.SetReferenceTarget(mustGet(t, m, "/Pkg/Uint8")); !errors.Is(err, ErrNotReference) {
		t.Errorf("expected not reference, got %v", err)
	}
	if _, err := pkg.ReferenceTarget(); !errors.Is(err, ErrNotReference) {
		t.Errorf("expected not reference, got %v", err)
	}

	other := baseModel(t)
	if err := ref.SetReferenceTarget(mustGet(t, other, "/Pkg/Uint8")); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("expected invalid reference across models, got %v", err)
	}

	// a path resolving to an element of the wrong kind
	if err := ref.SetCharacterDataString("/Pkg/Speed"); err != nil {
		t.Fatal(err)
	}
	if _, err := ref.ReferenceTarget(); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("expected invalid reference, got %v", err)
	}
	if bad := m.CheckReferences(); len(bad) != 1 || bad[0] != ref {
		t.Errorf("check %v", bad)
	}
	if refs := m.ReferencesTo("/Pkg/Speed"); len(refs) != 1 {
		t.Errorf("cache not updated by character data %v", refs)
	}
}

func TestRenameCascade(t *testing.T) {
	m := baseModel(t)
	pkg := mustGet(t, m, "/Pkg")
	target := mustGet(t, m, "/Pkg/Uint8")
	ref := speedRef(t, m)
	if err := pkg.SetItemName("Pkg2"); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{"/Pkg", "/Pkg/Uint8", "/Pkg/Speed"} {
		if m.GetElementByPath(p) != nil {
			t.Errorf("%s still resolves", p)
		}
	}
	if mustGet(t, m, "/Pkg2/Uint8") != target {
		t.Error("renamed path")
	}
	got, err := ref.ReferenceTarget()
	if err != nil {
		t.Fatal(err)
	}
	if got != target {
		t.Errorf("target %v", got)
	}
	if v, _ := ref.CharacterData(); v.Text() != "/Pkg2/Uint8" {
		t.Errorf("stored %q", v.Text())
	}
	if refs := m.ReferencesTo("/Pkg2/Uint8"); len(refs) != 1 {
		t.Errorf("cache %v", refs)
	}
	if err := pkg.SetItemName("Other"); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("expected duplicate, got %v", err)
	}
	if name, _ := pkg.ItemName(); name != "Pkg2" {
		t.Errorf("failed rename changed name to %q", name)
	}
	if err := pkg.SubElement("ELEMENTS").SetItemName("x"); !errors.Is(err, ErrNotIdentifiable) {
		t.Errorf("expected not identifiable, got %v", err)
	}
}

func TestDanglingReferenceResolvesLater(t *testing.T) {
	m := baseModel(t)
	ref := speedRef(t, m)
	if err := ref.SetCharacterDataString("/Other/Later"); err != nil {
		t.Fatal(err)
	}
	if _, err := ref.ReferenceTarget(); !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("expected dangling, got %v", err)
	}
	later, err := mustGet(t, m, "/Other").SubElement("ELEMENTS").CreateNamedSubElement("SW-BASE-TYPE", "Later")
	if err != nil {
		t.Fatal(err)
	}
	if got, err := ref.ReferenceTarget(); err != nil || got != later {
		t.Errorf("target %v %v", got, err)
	}
	// renaming the package carries the dangling-then-resolved reference
	if err := mustGet(t, m, "/Other").SetItemName("Moved"); err != nil {
		t.Fatal(err)
	}
	if v, _ := ref.CharacterData(); v.Text() != "/Moved/Later" {
		t.Errorf("stored %q", v.Text())
	}
}
