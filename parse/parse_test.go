package parse

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseOK(t *testing.T) {
	in := `<?xml version="1.0" encoding="utf-8" standalone="no"?>
<!-- comment -->
<AUTOSAR xmlns="http://autosar.org/schema/r4.0" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:schemaLocation="http://autosar.org/schema/r4.0 AUTOSAR_00046.xsd">
  <AR-PACKAGES>
    <AR-PACKAGE UUID="1">
      <SHORT-NAME>Pkg</SHORT-NAME>
      <DESC><L-2 L="EN">a <E>b</E> &amp; c<BR/>d</L-2></DESC>
    </AR-PACKAGE>
  </AR-PACKAGES>
</AUTOSAR>
`
	doc, err := Parse([]byte(in), ParseFilename("a.arxml"))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Filename != "a.arxml" {
		t.Errorf("filename %q", doc.Filename)
	}
	if doc.Standalone == nil || *doc.Standalone {
		t.Errorf("standalone = %v", doc.Standalone)
	}
	root := doc.Root
	if root.Name != "AUTOSAR" {
		t.Fatalf("root %s", root.Name)
	}
	loc, ok := root.Attr("xsi:schemaLocation")
	if !ok || loc != "http://autosar.org/schema/r4.0 AUTOSAR_00046.xsd" {
		t.Errorf("schemaLocation %q", loc)
	}
	pkg := root.Elements()[0].Elements()[0]
	if uuid, _ := pkg.Attr("UUID"); uuid != "1" {
		t.Errorf("uuid %q", uuid)
	}
	sn := pkg.Elements()[0]
	if sn.Text() != "Pkg" || sn.HasElements() {
		t.Errorf("short name %q", sn.Text())
	}
	l2 := pkg.Elements()[1].Elements()[0]
	want := []Content{
		Text("a "),
		&Element{Name: "E", Content: []Content{Text("b")}},
		Text(" & c"),
		&Element{Name: "BR"},
		Text("d"),
	}
	if diff := cmp.Diff(want, l2.Content, cmp.FilterPath(func(p cmp.Path) bool {
		return p.Last().String() == ".Line"
	}, cmp.Ignore())); diff != "" {
		t.Errorf("mixed content (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"mismatch", "<A><B></A></B>"},
		{"unclosed", "<A><B></B>"},
		{"two roots", "<A/><B/>"},
		{"text outside", "<A/>junk"},
		{"dup attr", `<A x="1" x="2"/>`},
		{"syntax", "<A <B>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.in))
			if !errors.Is(err, ErrParse) {
				t.Fatalf("expected parse error, got %v", err)
			}
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("expected *SyntaxError, got %T", err)
			}
		})
	}
}

func TestParseMaxDepth(t *testing.T) {
	in := "<A><B><C><D/></C></B></A>"
	if _, err := Parse([]byte(in), ParseMaxDepth(3)); !errors.Is(err, ErrParse) {
		t.Errorf("expected depth error, got %v", err)
	}
	if _, err := Parse([]byte(in), ParseMaxDepth(4)); err != nil {
		t.Errorf("unexpected error %v", err)
	}
}
