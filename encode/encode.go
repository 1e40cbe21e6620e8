package encode

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/signadot/docgraph/graph"
	"github.com/signadot/docgraph/spec"
)

const xsiNamespace = "http://www.w3.org/2001/XMLSchema-instance"

var ErrEncoding = errors.New("encoding error")

type EncState struct {
	depth, indent int
	decl          bool

	// file restricts output to the elements belonging to it.
	file *graph.File

	Color func(ColorAttr, string) string

	w   io.Writer
	err error
}

func newState(w io.Writer, opts []EncodeOption) *EncState {
	es := &EncState{indent: 2, decl: true, w: w}
	for _, opt := range opts {
		opt(es)
	}
	return es
}

// Encode writes the subtree of n to w.
func Encode(n *graph.Node, w io.Writer, opts ...EncodeOption) error {
	es := newState(w, opts)
	es.element(n, nil)
	es.writeString("\n")
	return es.err
}

// EncodeFile writes the elements of f's model that belong to f, as the
// content of a standalone document of f's revision.
func EncodeFile(f *graph.File, w io.Writer, opts ...EncodeOption) error {
	m := f.Model()
	if m == nil {
		return fmt.Errorf("%w: %w: %s", ErrEncoding, graph.ErrNoFile, f.Name())
	}
	es := newState(w, opts)
	es.file = f
	return es.document(m, f.Version(), f.Standalone())
}

// EncodeModel writes every element of m as a single document of revision
// v.
func EncodeModel(m *graph.Model, v spec.Version, w io.Writer, opts ...EncodeOption) error {
	return newState(w, opts).document(m, v, nil)
}

func (es *EncState) document(m *graph.Model, v spec.Version, standalone *bool) error {
	e := m.Engine()
	vi := slices.IndexFunc(e.Versions(), func(vi spec.VersionInfo) bool { return vi.Version == v })
	if vi < 0 {
		return fmt.Errorf("%w: %s is not a single revision", ErrEncoding, v)
	}
	schema := e.Versions()[vi].Schema
	if es.decl {
		decl := `<?xml version="1.0" encoding="utf-8"`
		if standalone != nil {
			if *standalone {
				decl += ` standalone="yes"`
			} else {
				decl += ` standalone="no"`
			}
		}
		es.write(DeclColor, decl+"?>")
		es.newline()
	}
	ns := []graph.Attribute{
		{Name: "xmlns", Value: spec.StringValue(e.Namespace())},
		{Name: "xmlns:xsi", Value: spec.StringValue(xsiNamespace)},
		{Name: "xsi:schemaLocation", Value: spec.StringValue(e.Namespace() + " " + schema)},
	}
	es.element(m.Root(), ns)
	es.writeString("\n")
	return es.err
}

// String returns the encoding of n, or the encoding error.
func String(n *graph.Node, opts ...EncodeOption) string {
	sb := &strings.Builder{}
	if err := Encode(n, sb, opts...); err != nil {
		return err.Error()
	}
	return strings.TrimSpace(sb.String())
}

func (es *EncState) included(n *graph.Node) bool {
	if es.file == nil {
		return true
	}
	local := n.LocalFiles()
	return len(local) == 0 || slices.Contains(local, es.file)
}

func (es *EncState) element(n *graph.Node, extra []graph.Attribute) {
	content := n.Content()
	content = slices.DeleteFunc(content, func(c graph.Content) bool {
		sub, ok := c.(*graph.Node)
		return ok && !es.included(sub)
	})
	es.openTag(n, append(extra, n.Attributes()...), len(content) == 0)
	if len(content) == 0 {
		return
	}
	switch n.ContentMode() {
	case spec.Characters, spec.Mixed:
		es.inline(content)
	default:
		es.depth++
		for _, c := range content {
			sub, ok := c.(*graph.Node)
			if !ok {
				continue
			}
			es.newline()
			es.element(sub, nil)
		}
		es.depth--
		es.newline()
	}
	es.closeTag(n)
}

// inline writes content without line breaks.
func (es *EncState) inline(content []graph.Content) {
	for _, c := range content {
		switch c := c.(type) {
		case graph.CharacterData:
			es.write(TextColor, escapeText(c.Text()))
		case *graph.Node:
			sub := c.Content()
			es.openTag(c, c.Attributes(), len(sub) == 0)
			if len(sub) > 0 {
				es.inline(sub)
				es.closeTag(c)
			}
		}
	}
}

func (es *EncState) openTag(n *graph.Node, attrs []graph.Attribute, empty bool) {
	es.write(SepColor, "<")
	es.write(ElementColor, string(n.Name()))
	for _, a := range attrs {
		es.writeString(" ")
		es.write(AttrNameColor, string(a.Name))
		es.write(SepColor, "=")
		es.write(AttrValueColor, `"`+escapeAttr(a.Value.Text())+`"`)
	}
	if empty {
		es.write(SepColor, "/>")
		return
	}
	es.write(SepColor, ">")
}

func (es *EncState) closeTag(n *graph.Node) {
	es.write(SepColor, "</")
	es.write(ElementColor, string(n.Name()))
	es.write(SepColor, ">")
}

func (es *EncState) newline() {
	es.writeString("\n" + strings.Repeat(" ", es.indent*es.depth))
}

func (es *EncState) write(a ColorAttr, s string) {
	if es.Color != nil {
		s = es.Color(a, s)
	}
	es.writeString(s)
}

func (es *EncState) writeString(s string) {
	if es.err != nil {
		return
	}
	_, es.err = io.WriteString(es.w, s)
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "\n", "&#xA;", "\t", "&#x9;")
)

func escapeText(s string) string { return textEscaper.Replace(s) }
func escapeAttr(s string) string { return attrEscaper.Replace(s) }
