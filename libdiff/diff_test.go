package libdiff

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/docgraph/graph"
	"github.com/signadot/docgraph/spec"
)

func model(t *testing.T, body string) *graph.Model {
	t.Helper()
	m := graph.New(spec.Builtin())
	d := fmt.Appendf(nil, `<?xml version="1.0" encoding="utf-8"?>
<AUTOSAR xmlns="http://autosar.org/schema/r4.0" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:schemaLocation="http://autosar.org/schema/r4.0 AUTOSAR_00046.xsd">
  <AR-PACKAGES>%s</AR-PACKAGES>
</AUTOSAR>`, body)
	if _, _, err := m.LoadBuffer(d, "x.arxml", true); err != nil {
		t.Fatal(err)
	}
	return m
}

const before = `
<AR-PACKAGE>
  <SHORT-NAME>Pkg</SHORT-NAME>
  <ELEMENTS>
    <SW-BASE-TYPE>
      <SHORT-NAME>A</SHORT-NAME>
      <BASE-TYPE-SIZE>8</BASE-TYPE-SIZE>
    </SW-BASE-TYPE>
    <SW-BASE-TYPE>
      <SHORT-NAME>Gone</SHORT-NAME>
    </SW-BASE-TYPE>
    <APPLICATION-PRIMITIVE-DATA-TYPE>
      <SHORT-NAME>Speed</SHORT-NAME>
      <SW-DATA-DEF-PROPS>
        <BASE-TYPE-REF DEST="SW-BASE-TYPE">/Pkg/A</BASE-TYPE-REF>
      </SW-DATA-DEF-PROPS>
    </APPLICATION-PRIMITIVE-DATA-TYPE>
  </ELEMENTS>
</AR-PACKAGE>`

const after = `
<AR-PACKAGE>
  <SHORT-NAME>Pkg</SHORT-NAME>
  <ELEMENTS>
    <SW-BASE-TYPE>
      <SHORT-NAME>A</SHORT-NAME>
      <BASE-TYPE-SIZE>16</BASE-TYPE-SIZE>
    </SW-BASE-TYPE>
    <APPLICATION-PRIMITIVE-DATA-TYPE>
      <SHORT-NAME>Speed</SHORT-NAME>
      <SW-DATA-DEF-PROPS>
        <BASE-TYPE-REF DEST="SW-BASE-TYPE">/Pkg/A</BASE-TYPE-REF>
      </SW-DATA-DEF-PROPS>
    </APPLICATION-PRIMITIVE-DATA-TYPE>
    <SW-BASE-TYPE>
      <SHORT-NAME>New</SHORT-NAME>
    </SW-BASE-TYPE>
  </ELEMENTS>
</AR-PACKAGE>`

func TestDiff(t *testing.T) {
	from := model(t, before).Root()
	to := model(t, after).Root()
	pkg := "/AUTOSAR/AR-PACKAGES/AR-PACKAGE[Pkg]/ELEMENTS"
	want := []Change{
		{Op: Replace, Path: pkg + "/SW-BASE-TYPE[A]/BASE-TYPE-SIZE", From: "8", To: "16"},
		{Op: Delete, Path: pkg + "/SW-BASE-TYPE[Gone]", From: "<SW-BASE-TYPE><SHORT-NAME>Gone</SHORT-NAME></SW-BASE-TYPE>"},
		{Op: Insert, Path: pkg + "/SW-BASE-TYPE[New]", To: "<SW-BASE-TYPE><SHORT-NAME>New</SHORT-NAME></SW-BASE-TYPE>"},
	}
	got := Diff(from, to)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("changes (-want +got):\n%s", diff)
	}
	back := Diff(to, from)
	if len(back) != len(got) {
		t.Fatalf("reverse diff %v", back)
	}
	rev := Reverse(got)
	if diff := cmp.Diff(rev[0], back[0]); diff != "" {
		t.Errorf("reversed replacement (-reversed +recomputed):\n%s", diff)
	}
	if len(Diff(from, model(t, before).Root())) != 0 {
		t.Error("equal models differ")
	}
}

func TestDiffReplace(t *testing.T) {
	from := model(t, `<AR-PACKAGE><SHORT-NAME>Old</SHORT-NAME></AR-PACKAGE>`).Root()
	to := model(t, `<AR-PACKAGE><SHORT-NAME>New</SHORT-NAME></AR-PACKAGE>`).Root()
	want := []Change{{
		Op:   Replace,
		Path: "/AUTOSAR/AR-PACKAGES/AR-PACKAGE[Old]",
		From: "<AR-PACKAGE><SHORT-NAME>Old</SHORT-NAME></AR-PACKAGE>",
		To:   "<AR-PACKAGE><SHORT-NAME>New</SHORT-NAME></AR-PACKAGE>",
	}}
	if diff := cmp.Diff(want, Diff(from, to)); diff != "" {
		t.Errorf("changes (-want +got):\n%s", diff)
	}
}

func TestDiffAttributes(t *testing.T) {
	from := model(t, `<AR-PACKAGE UUID="1"><SHORT-NAME>P</SHORT-NAME></AR-PACKAGE>`).Root()
	to := model(t, `<AR-PACKAGE UUID="2"><SHORT-NAME>P</SHORT-NAME></AR-PACKAGE>`).Root()
	want := []Change{{Op: Replace, Path: "/AUTOSAR/AR-PACKAGES/AR-PACKAGE[P]@UUID", From: "1", To: "2"}}
	if diff := cmp.Diff(want, Diff(from, to)); diff != "" {
		t.Errorf("changes (-want +got):\n%s", diff)
	}
}

func TestLines(t *testing.T) {
	lines := Lines("a\nb\nc\n", "a\nc\nd\n")
	want := []Line{
		{Equal, "a"},
		{Delete, "b"},
		{Equal, "c"},
		{Insert, "d"},
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("lines (-want +got):\n%s", diff)
	}
	if !Changed(lines) {
		t.Error("not changed")
	}
	if Changed(Lines("x\n", "x\n")) {
		t.Error("changed")
	}
}

var (
	inserted = regexp.MustCompile(`\{\+(.*?)\+\}`)
	deleted  = regexp.MustCompile(`\[-(.*?)-\]`)
)

func TestInlineText(t *testing.T) {
	from, to := "speed in m/s please", "speed in km/h please"
	got, ok := InlineText(from, to)
	if !ok {
		t.Fatal("not inline")
	}
	if !strings.HasPrefix(got, "speed in ") || !strings.HasSuffix(got, " please") {
		t.Errorf("got %q", got)
	}
	if back := deleted.ReplaceAllString(inserted.ReplaceAllString(got, ""), "$1"); back != from {
		t.Errorf("from side %q", back)
	}
	if fwd := inserted.ReplaceAllString(deleted.ReplaceAllString(got, ""), "$1"); fwd != to {
		t.Errorf("to side %q", fwd)
	}
	if _, ok := InlineText("abc", "xyz"); ok {
		t.Error("unrelated texts marked inline")
	}
}
