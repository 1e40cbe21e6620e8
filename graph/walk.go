package graph

import (
	"slices"
	"strconv"
	"strings"
)

// Walk visits n and its descendants depth first. fn returns false to skip
// the children of a node.
func (n *Node) Walk(fn func(n *Node, depth int) bool) {
	n.walkFiltered(0, nil, fn)
}

func (n *Node) walkFiltered(depth int, keep func(*Node) bool, fn func(*Node, int) bool) {
	if !fn(n, depth) {
		return
	}
	for _, sub := range n.SubElements() {
		if keep == nil || keep(sub) {
			sub.walkFiltered(depth+1, keep, fn)
		}
	}
}

// Equal reports whether the subtrees of a and b have the same names,
// attributes and content. Attribute order and file membership are not
// compared.
func Equal(a, b *Node) bool {
	return fingerprint(a) == fingerprint(b)
}

// fingerprint renders the structure of a subtree canonically.
func fingerprint(n *Node) string {
	sb := &strings.Builder{}
	writeFingerprint(sb, n)
	return sb.String()
}

func writeFingerprint(sb *strings.Builder, n *Node) {
	content, attrs := n.snapshot()
	slices.SortFunc(attrs, func(a, b Attribute) int {
		return strings.Compare(string(a.Name), string(b.Name))
	})
	sb.WriteByte('<')
	sb.WriteString(string(n.name))
	for _, a := range attrs {
		sb.WriteByte(' ')
		sb.WriteString(string(a.Name))
		sb.WriteString("=")
		sb.WriteString(strconv.Quote(a.Value.Text()))
	}
	sb.WriteByte('>')
	for _, c := range content {
		switch c := c.(type) {
		case *Node:
			writeFingerprint(sb, c)
		case CharacterData:
			sb.WriteString(strconv.Quote(c.Text()))
		}
	}
	sb.WriteString("</>")
}
