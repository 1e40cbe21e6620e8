package encode

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/docgraph/graph"
	"github.com/signadot/docgraph/spec"
)

func doc(body string) []byte {
	return fmt.Appendf(nil, `<?xml version="1.0" encoding="utf-8"?>
<AUTOSAR xmlns="http://autosar.org/schema/r4.0" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:schemaLocation="http://autosar.org/schema/r4.0 AUTOSAR_00046.xsd">
  <AR-PACKAGES>
%s
  </AR-PACKAGES>
</AUTOSAR>
`, body)
}

const pkgA = `    <AR-PACKAGE>
      <SHORT-NAME>Pkg</SHORT-NAME>
      <DESC>
        <L-2 L="EN">speed in <E>km/h</E> &amp; more<BR/></L-2>
      </DESC>
      <ELEMENTS>
        <SW-BASE-TYPE>
          <SHORT-NAME>A</SHORT-NAME>
          <BASE-TYPE-SIZE>8</BASE-TYPE-SIZE>
        </SW-BASE-TYPE>
        <APPLICATION-PRIMITIVE-DATA-TYPE>
          <SHORT-NAME>Speed</SHORT-NAME>
          <SW-DATA-DEF-PROPS>
            <BASE-TYPE-REF DEST="SW-BASE-TYPE">/Pkg/A</BASE-TYPE-REF>
          </SW-DATA-DEF-PROPS>
        </APPLICATION-PRIMITIVE-DATA-TYPE>
      </ELEMENTS>
    </AR-PACKAGE>`

const pkgB = `    <AR-PACKAGE>
      <SHORT-NAME>Pkg</SHORT-NAME>
      <DESC>
        <L-2 L="EN">speed in <E>km/h</E> &amp; more<BR/></L-2>
      </DESC>
      <ELEMENTS>
        <SW-BASE-TYPE>
          <SHORT-NAME>B</SHORT-NAME>
        </SW-BASE-TYPE>
      </ELEMENTS>
    </AR-PACKAGE>`

func load(t *testing.T, m *graph.Model, name string, d []byte) *graph.File {
	t.Helper()
	f, warnings, err := m.LoadBuffer(d, name, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 0 {
		t.Fatalf("warnings %v", warnings)
	}
	return f
}

func TestEncodeFileRoundTrip(t *testing.T) {
	in := doc(pkgA)
	m := graph.New(spec.Builtin())
	f := load(t, m, "a.arxml", in)
	buf := &bytes.Buffer{}
	if err := EncodeFile(f, buf); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(string(in), buf.String()); diff != "" {
		t.Errorf("encoding (-want +got):\n%s", diff)
	}
	again := graph.New(spec.Builtin())
	load(t, again, "a.arxml", buf.Bytes())
	if !graph.Equal(m.Root(), again.Root()) {
		t.Error("reloaded model differs")
	}
}

func TestEncodeFileSubset(t *testing.T) {
	m := graph.New(spec.Builtin())
	fa := load(t, m, "a.arxml", doc(pkgA))
	fb := load(t, m, "b.arxml", doc(pkgB))
	for _, tt := range []struct {
		f    *graph.File
		want string
	}{
		{fa, pkgA},
		{fb, pkgB},
	} {
		buf := &bytes.Buffer{}
		if err := EncodeFile(tt.f, buf); err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(string(doc(tt.want)), buf.String()); diff != "" {
			t.Errorf("%s (-want +got):\n%s", tt.f.Name(), diff)
		}
	}
}

func TestEncodeOptions(t *testing.T) {
	m := graph.New(spec.Builtin())
	f := load(t, m, "a.arxml", doc(pkgA))
	n := m.GetElementByPath("/Pkg/A")
	want := `<SW-BASE-TYPE>
    <SHORT-NAME>A</SHORT-NAME>
    <BASE-TYPE-SIZE>8</BASE-TYPE-SIZE>
</SW-BASE-TYPE>`
	if got := String(n, Indent(4)); got != want {
		t.Errorf("got\n%s", got)
	}
	want = `<SW-BASE-TYPE>
      <SHORT-NAME>A</SHORT-NAME>
      <BASE-TYPE-SIZE>8</BASE-TYPE-SIZE>
    </SW-BASE-TYPE>`
	if got := String(n, Depth(2)); got != want {
		t.Errorf("got\n%s", got)
	}
	buf := &bytes.Buffer{}
	if err := EncodeFile(f, buf, EncodeDeclaration(false)); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "<AUTOSAR ") {
		t.Errorf("got %q", buf.String()[:20])
	}
}

func TestEncodeEscaping(t *testing.T) {
	m := graph.New(spec.Builtin())
	load(t, m, "a.arxml", doc(pkgA))
	n := m.GetElementByPath("/Pkg/A")
	enc, err := n.CreateSubElement("BASE-TYPE-ENCODING")
	if err != nil {
		t.Fatal(err)
	}
	if err := enc.SetCharacterDataString(`<2's & "1's">`); err != nil {
		t.Fatal(err)
	}
	want := `<BASE-TYPE-ENCODING>&lt;2's &amp; "1's"&gt;</BASE-TYPE-ENCODING>`
	if got := String(enc); got != want {
		t.Errorf("got %s", got)
	}
	empty, err := n.CreateSubElement("NATIVE-DECLARATION")
	if err != nil {
		t.Fatal(err)
	}
	if got := String(empty); got != "<NATIVE-DECLARATION/>" {
		t.Errorf("got %s", got)
	}
}

func TestEncodeColors(t *testing.T) {
	m := graph.New(spec.Builtin())
	load(t, m, "a.arxml", doc(pkgA))
	n := m.GetElementByPath("/Pkg/A").SubElement("BASE-TYPE-SIZE")
	c := &Colors{
		Default: colorDefault,
		Map: map[ColorAttr]func(string, ...any) string{
			ElementColor: func(s string, _ ...any) string { return "[" + s + "]" },
		},
	}
	want := "<[BASE-TYPE-SIZE]>8</[BASE-TYPE-SIZE]>"
	if got := String(n, EncodeColors(c)); got != want {
		t.Errorf("got %s", got)
	}
}

func TestEncodeRemovedFile(t *testing.T) {
	m := graph.New(spec.Builtin())
	f := load(t, m, "a.arxml", doc(pkgA))
	if err := m.RemoveFile(f); err != nil {
		t.Fatal(err)
	}
	if err := EncodeFile(f, &bytes.Buffer{}); err == nil {
		t.Error("expected error")
	}
}

func TestEncodeModel(t *testing.T) {
	m := graph.New(spec.Builtin())
	fa := load(t, m, "a.arxml", doc(pkgA))
	load(t, m, "b.arxml", doc(pkgB))
	buf := &bytes.Buffer{}
	if err := EncodeModel(m, fa.Version(), buf); err != nil {
		t.Fatal(err)
	}
	joined := graph.New(spec.Builtin())
	load(t, joined, "joined.arxml", buf.Bytes())
	if !graph.Equal(m.Root(), joined.Root()) {
		t.Errorf("reloaded merge differs:\n%s", buf.String())
	}
	if joined.GetElementByPath("/Pkg/B") == nil || joined.GetElementByPath("/Pkg/A") == nil {
		t.Errorf("missing elements:\n%s", buf.String())
	}
	if err := EncodeModel(m, spec.AllVersions, buf); err == nil {
		t.Error("expected error for a set of revisions")
	}
}
