package graph

import (
	"fmt"
	"testing"

	"github.com/signadot/docgraph/spec"
)

const (
	schema403 = "AUTOSAR_4-0-3.xsd"
	schema440 = "AUTOSAR_00046.xsd"
)

func arxml(schema, body string) []byte {
	return fmt.Appendf(nil, `<?xml version="1.0" encoding="utf-8"?>
<AUTOSAR xmlns="http://autosar.org/schema/r4.0" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:schemaLocation="http://autosar.org/schema/r4.0 %s">
  <AR-PACKAGES>
%s
  </AR-PACKAGES>
</AUTOSAR>
`, schema, body)
}

const basePkg = `
    <AR-PACKAGE>
      <SHORT-NAME>Pkg</SHORT-NAME>
      <ELEMENTS>
        <SW-BASE-TYPE>
          <SHORT-NAME>Uint8</SHORT-NAME>
          <BASE-TYPE-SIZE>8</BASE-TYPE-SIZE>
        </SW-BASE-TYPE>
        <APPLICATION-PRIMITIVE-DATA-TYPE>
          <SHORT-NAME>Speed</SHORT-NAME>
          <SW-DATA-DEF-PROPS>
            <BASE-TYPE-REF DEST="SW-BASE-TYPE">/Pkg/Uint8</BASE-TYPE-REF>
          </SW-DATA-DEF-PROPS>
        </APPLICATION-PRIMITIVE-DATA-TYPE>
      </ELEMENTS>
    </AR-PACKAGE>
    <AR-PACKAGE>
      <SHORT-NAME>Other</SHORT-NAME>
      <ELEMENTS/>
    </AR-PACKAGE>`

func newModel() *Model {
	return New(spec.Builtin())
}

func mustLoad(t *testing.T, m *Model, name string, d []byte) *File {
	t.Helper()
	f, warnings, err := m.LoadBuffer(d, name, true)
	if err != nil {
		t.Fatalf("load %s: %v", name, err)
	}
	if len(warnings) != 0 {
		t.Fatalf("load %s: warnings %v", name, warnings)
	}
	return f
}

func mustGet(t *testing.T, m *Model, path string) *Node {
	t.Helper()
	n := m.GetElementByPath(path)
	if n == nil {
		t.Fatalf("no element at %s", path)
	}
	return n
}

func mustVersion(t *testing.T, name string) spec.Version {
	t.Helper()
	v, ok := spec.Builtin().VersionByName(name)
	if !ok {
		t.Fatalf("no version %s", name)
	}
	return v
}

func baseModel(t *testing.T) *Model {
	t.Helper()
	m := newModel()
	mustLoad(t, m, "base.arxml", arxml(schema440, basePkg))
	return m
}

func fileNames(files []*File) []string {
	var res []string
	for _, f := range files {
		res = append(res, f.Name())
	}
	return res
}
