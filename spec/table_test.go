package spec

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustType(t *testing.T, tbl *Table, name string) ElementType {
	t.Helper()
	et, ok := tbl.TypeByName(name)
	if !ok {
		t.Fatalf("type %s not found", name)
	}
	return et
}

func mustVersion(t *testing.T, tbl *Table, name string) Version {
	t.Helper()
	v, ok := tbl.VersionByName(name)
	if !ok {
		t.Fatalf("version %s not found", name)
	}
	return v
}

func TestBuiltinLoads(t *testing.T) {
	tbl := Builtin()
	name, rt := tbl.Root()
	if name != "AUTOSAR" {
		t.Errorf("root = %s", name)
	}
	if tbl.TypeName(rt) != "AUTOSAR" {
		t.Errorf("root type = %s", tbl.TypeName(rt))
	}
	if got := len(tbl.Versions()); got != 4 {
		t.Errorf("got %d versions", got)
	}
	v, ok := tbl.VersionBySchema("AUTOSAR_00046.xsd")
	if !ok || v != mustVersion(t, tbl, "4.4.0") {
		t.Errorf("VersionBySchema = %v %v", v, ok)
	}
}

func TestSubElement(t *testing.T) {
	tbl := Builtin()
	elements := mustType(t, tbl, "ELEMENTS")
	v403 := mustVersion(t, tbl, "4.0.3")
	v422 := mustVersion(t, tbl, "4.2.2")

	if _, ok := tbl.SubElement(elements, "SYSTEM-SIGNAL", v403); ok {
		t.Error("SYSTEM-SIGNAL must not exist in 4.0.3")
	}
	info, ok := tbl.SubElement(elements, "SYSTEM-SIGNAL", v422)
	if !ok {
		t.Fatal("SYSTEM-SIGNAL must exist in 4.2.2")
	}
	if info.Multiplicity != Any || info.Mode != Sequence {
		t.Errorf("unexpected info %+v", info)
	}
	if _, ok := tbl.SubElement(elements, "NOPE", v422); ok {
		t.Error("unknown element accepted")
	}

	pkg := mustType(t, tbl, "AR-PACKAGE")
	sn, ok := tbl.SubElement(pkg, "SHORT-NAME", v403)
	if !ok {
		t.Fatal("SHORT-NAME missing")
	}
	if sn.Multiplicity != One || sn.Mode != Characters {
		t.Errorf("unexpected SHORT-NAME info %+v", sn)
	}
	if diff := cmp.Diff([]int{0}, sn.Indices); diff != "" {
		t.Errorf("indices (-want +got):\n%s", diff)
	}
}

func TestCommonGroupMode(t *testing.T) {
	tbl := Builtin()
	props := mustType(t, tbl, "SW-DATA-DEF-PROPS")
	get := func(name ElementName) []int {
		info, ok := tbl.SubElement(props, name, AllVersions)
		if !ok {
			t.Fatalf("%s missing", name)
		}
		return info.Indices
	}
	tests := []struct {
		a, b ElementName
		want ContentMode
	}{
		{"NUMERICAL-VALUE", "TEXT-VALUE", Choice},
		{"NUMERICAL-VALUE", "NUMERICAL-VALUE", Choice},
		{"BASE-TYPE-REF", "TEXT-VALUE", Sequence},
		{"DISPLAY-FORMAT", "BASE-TYPE-REF", Sequence},
	}
	for _, tt := range tests {
		t.Run(string(tt.a)+"/"+string(tt.b), func(t *testing.T) {
			if got := tbl.CommonGroupMode(props, get(tt.a), get(tt.b)); got != tt.want {
				t.Errorf("got %s want %s", got, tt.want)
			}
		})
	}
}

func TestSplittableByVersion(t *testing.T) {
	tbl := Builtin()
	set := mustType(t, tbl, "ECUC-CONTAINER-VALUE-SET")
	v403 := mustVersion(t, tbl, "4.0.3")
	v422 := mustVersion(t, tbl, "4.2.2")
	if tbl.Splittable(set, v403) {
		t.Error("container set must not be splittable in 4.0.3")
	}
	if !tbl.Splittable(set, v422) {
		t.Error("container set must be splittable in 4.2.2")
	}
	// the lowest revision of a mask governs
	if tbl.Splittable(set, v403|v422) {
		t.Error("mixed mask must be evaluated at its lowest revision")
	}
}

func TestReferenceDest(t *testing.T) {
	tbl := Builtin()
	ref := mustType(t, tbl, "ECUC-PARAMETER-DEF-REF")
	intDef := mustType(t, tbl, "ECUC-INTEGER-PARAM-DEF")
	pkg := mustType(t, tbl, "AR-PACKAGE")
	if !tbl.IsReference(ref) {
		t.Fatal("expected reference type")
	}
	if d, ok := tbl.ReferenceDest(ref, intDef); !ok || d != "ECUC-INTEGER-PARAM-DEF" {
		t.Errorf("dest = %q %v", d, ok)
	}
	if _, ok := tbl.ReferenceDest(ref, pkg); ok {
		t.Error("package is not a valid target")
	}
	dest, ok := tbl.Attribute(ref, tbl.DestAttribute())
	if !ok || !dest.Required || dest.Value.Kind != EnumKind {
		t.Errorf("unexpected DEST spec %+v", dest)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"no versions", "root: A\ntypes:\n  - name: A\n"},
		{"unknown root", "root: B\nversions: [{name: v1}]\ntypes:\n  - name: A\n"},
		{"unknown type", "root: A\nversions: [{name: v1}]\ntypes:\n  - name: A\n    content:\n      - element: X\n"},
		{"bad mode", "root: A\nversions: [{name: v1}]\ntypes:\n  - name: A\n    mode: tree\n"},
		{"bad version expr", "root: A\nversions: [{name: v1}]\ntypes:\n  - name: A\n    splittable: \">=v9\"\n"},
		{"unknown field", "root: A\nversions: [{name: v1}]\nbogus: 1\ntypes:\n  - name: A\n"},
		{"enum without items", "root: A\nversions: [{name: v1}]\ntypes:\n  - name: A\n    value: {kind: enum}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.in))
			if !errors.Is(err, ErrSchema) {
				t.Errorf("expected schema error, got %v", err)
			}
		})
	}
}

func TestVersionExpressions(t *testing.T) {
	in := `
root: A
versions: [{name: a}, {name: b}, {name: c}]
types:
  - name: A
    splittable: ">=b"
    identity: "<b"
    content:
      - element: X
        type: A
        versions: "a,c"
`
	tbl, err := Load(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	a := mustType(t, tbl, "A")
	va, vb, vc := Version(1), Version(2), Version(4)
	if tbl.Splittable(a, va) || !tbl.Splittable(a, vb) || !tbl.Splittable(a, vc) {
		t.Error("splittable >=b")
	}
	if !tbl.RequiresIdentity(a, va) || tbl.RequiresIdentity(a, vb) {
		t.Error("identity <b")
	}
	if _, ok := tbl.SubElement(a, "X", vb); ok {
		t.Error("X must not exist in b")
	}
	if _, ok := tbl.SubElement(a, "X", vc); !ok {
		t.Error("X must exist in c")
	}
}
