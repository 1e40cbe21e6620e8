package parse

import "strings"

// Document is the result of parsing one file.
type Document struct {
	Filename   string
	Standalone *bool
	Root       *Element
	// Warnings are recoverable problems found while parsing.
	Warnings []error
}

// Content is an item of an element's content: *Element or Text.
type Content interface {
	content()
}

type Text string

func (Text) content() {}

type Attr struct {
	Name  string
	Value string
}

type Element struct {
	Name    string
	Attrs   []Attr
	Content []Content
	Line    int
}

func (*Element) content() {}

// Attr returns the value of attribute name.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Elements returns the element children of e.
func (e *Element) Elements() []*Element {
	var res []*Element
	for _, c := range e.Content {
		if el, ok := c.(*Element); ok {
			res = append(res, el)
		}
	}
	return res
}

// Text returns the concatenation of all text content of e.
func (e *Element) Text() string {
	var sb strings.Builder
	for _, c := range e.Content {
		if t, ok := c.(Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String()
}

// HasElements reports whether e has element children.
func (e *Element) HasElements() bool {
	for _, c := range e.Content {
		if _, ok := c.(*Element); ok {
			return true
		}
	}
	return false
}
