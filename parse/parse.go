package parse

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const defaultMaxDepth = 256

// Parse parses a complete document.
func Parse(d []byte, opts ...ParseOption) (*Document, error) {
	pOpts := &parseOpts{maxDepth: defaultMaxDepth}
	for _, f := range opts {
		f(pOpts)
	}
	if pOpts.maxDepth <= 0 {
		pOpts.maxDepth = defaultMaxDepth
	}
	p := &parser{
		opts: pOpts,
		dec:  xml.NewDecoder(bytes.NewReader(d)),
		doc:  &Document{Filename: pOpts.filename},
	}
	if err := p.run(); err != nil {
		return nil, err
	}
	return p.doc, nil
}

type parser struct {
	opts  *parseOpts
	dec   *xml.Decoder
	doc   *Document
	stack []*Element
}

func (p *parser) errorf(format string, args ...any) error {
	line, _ := p.dec.InputPos()
	return &SyntaxError{Filename: p.opts.filename, Line: line, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) warnf(format string, args ...any) {
	line, _ := p.dec.InputPos()
	p.doc.Warnings = append(p.doc.Warnings, &SyntaxError{Filename: p.opts.filename, Line: line, Msg: fmt.Sprintf(format, args...)})
}

func (p *parser) run() error {
	for {
		// RawToken leaves prefixes unresolved so that names round trip.
		tok, err := p.dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var se *xml.SyntaxError
			if errors.As(err, &se) {
				return &SyntaxError{Filename: p.opts.filename, Line: se.Line, Msg: se.Msg}
			}
			return p.errorf("%v", err)
		}
		switch t := tok.(type) {
		case xml.ProcInst:
			if t.Target == "xml" {
				p.procInst(string(t.Inst))
			}
		case xml.StartElement:
			if err := p.start(t); err != nil {
				return err
			}
		case xml.EndElement:
			if err := p.end(t); err != nil {
				return err
			}
		case xml.CharData:
			if err := p.charData(t); err != nil {
				return err
			}
		case xml.Comment, xml.Directive:
		}
	}
	if len(p.stack) != 0 {
		return p.errorf("unexpected end of input inside <%s>", p.stack[len(p.stack)-1].Name)
	}
	if p.doc.Root == nil {
		return p.errorf("no root element")
	}
	return nil
}

func qname(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

func (p *parser) start(t xml.StartElement) error {
	if len(p.stack) == 0 && p.doc.Root != nil {
		return p.errorf("multiple root elements: <%s>", qname(t.Name))
	}
	if len(p.stack) >= p.opts.maxDepth {
		return p.errorf("maximum nesting depth %d exceeded", p.opts.maxDepth)
	}
	line, _ := p.dec.InputPos()
	el := &Element{Name: qname(t.Name), Line: line}
	for _, a := range t.Attr {
		name := qname(a.Name)
		if _, dup := el.Attr(name); dup {
			return p.errorf("duplicate attribute %s on <%s>", name, el.Name)
		}
		el.Attrs = append(el.Attrs, Attr{Name: name, Value: a.Value})
	}
	if len(p.stack) == 0 {
		p.doc.Root = el
	} else {
		parent := p.stack[len(p.stack)-1]
		parent.Content = append(parent.Content, el)
	}
	p.stack = append(p.stack, el)
	return nil
}

func (p *parser) end(t xml.EndElement) error {
	name := qname(t.Name)
	if len(p.stack) == 0 {
		return p.errorf("unexpected end tag </%s>", name)
	}
	top := p.stack[len(p.stack)-1]
	if top.Name != name {
		return p.errorf("end tag </%s> does not match <%s>", name, top.Name)
	}
	p.stack = p.stack[:len(p.stack)-1]
	return nil
}

func (p *parser) charData(t xml.CharData) error {
	if len(p.stack) == 0 {
		if len(bytes.TrimSpace(t)) != 0 {
			return p.errorf("text outside of the root element")
		}
		return nil
	}
	top := p.stack[len(p.stack)-1]
	text := string(t)
	if n := len(top.Content); n > 0 {
		if prev, ok := top.Content[n-1].(Text); ok {
			top.Content[n-1] = prev + Text(text)
			return nil
		}
	}
	top.Content = append(top.Content, Text(text))
	return nil
}

func (p *parser) procInst(inst string) {
	for _, field := range strings.Fields(inst) {
		k, v, ok := strings.Cut(field, "=")
		if !ok || k != "standalone" {
			continue
		}
		v = strings.Trim(v, `"'`)
		switch v {
		case "yes":
			b := true
			p.doc.Standalone = &b
		case "no":
			b := false
			p.doc.Standalone = &b
		default:
			p.warnf("invalid standalone value %q", v)
		}
	}
}
