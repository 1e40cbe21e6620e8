package graph

import (
	"fmt"
	"weak"

	"github.com/signadot/docgraph/spec"
)

// Content is an item of a node's content: a *Node or CharacterData.
type Content interface {
	isContent()
}

// CharacterData is literal content.
type CharacterData struct {
	spec.Value
}

func (CharacterData) isContent() {}
func (*Node) isContent() {}

// Attribute is a named value attached to a node.
type Attribute struct {
	Name  spec.AttributeName
	Value spec.Value
}

type parentKind int

const (
	parentNone parentKind = iota
	parentNode
	parentModel
	parentDeleted
)

type parentLink struct {
	kind  parentKind
	node  weak.Pointer[Node]
	model weak.Pointer[Model]
}

// Node is an element of a document graph. Nodes are owned by their parent;
// a node's parent and model are referenced weakly.
type Node struct {
	mu     timedMutex
	engine spec.Engine
	name   spec.ElementName
	typ    spec.ElementType

	parent  parentLink
	content []Content
	attrs   []Attribute
	// files is the local file membership; empty means the membership is
	// inherited from the parent.
	files []weak.Pointer[File]
	// refSeq is the refClock tick of the cache change the stored target of
	// a reference last followed.
	refSeq uint64
}

func newNode(e spec.Engine, name spec.ElementName, t spec.ElementType) *Node {
	return &Node{
		mu:     newTimedMutex(),
		engine: e,
		name:   name,
		typ:    t,
	}
}

func (n *Node) Name() spec.ElementName { return n.name }
func (n *Node) Type() spec.ElementType { return n.typ }

func (n *Node) ContentMode() spec.ContentMode {
	return n.engine.ContentMode(n.typ)
}

// IsReference reports whether n's type holds a reference.
func (n *Node) IsReference() bool {
	return n.engine.IsReference(n.typ)
}

func (n *Node) String() string {
	return fmt.Sprintf("<%s>", n.name)
}

// IsDeleted reports whether n was removed from its graph.
func (n *Node) IsDeleted() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.parent.kind == parentDeleted
}

// Parent returns the parent of n, nil for a root.
func (n *Node) Parent() (*Node, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.parentLocked()
}

func (n *Node) parentLocked() (*Node, error) {
	switch n.parent.kind {
	case parentNode:
		p := n.parent.node.Value()
		if p == nil {
			return nil, ErrItemDeleted
		}
		return p, nil
	case parentDeleted:
		return nil, ErrItemDeleted
	}
	return nil, nil
}

func (n *Node) setParentLocked(p *Node) {
	n.parent = parentLink{kind: parentNode, node: weak.Make(p)}
}

// Content returns a copy of n's content list.
func (n *Node) Content() []Content {
	n.mu.Lock()
	defer n.mu.Unlock()
	res := make([]Content, len(n.content))
	copy(res, n.content)
	return res
}

// SubElements returns the element children of n.
func (n *Node) SubElements() []*Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.subElementsLocked()
}

func (n *Node) subElementsLocked() []*Node {
	var res []*Node
	for _, c := range n.content {
		if sub, ok := c.(*Node); ok {
			res = append(res, sub)
		}
	}
	return res
}

// SubElement returns the first child named name.
func (n *Node) SubElement(name spec.ElementName) *Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.subElementLocked(name)
}

func (n *Node) subElementLocked(name spec.ElementName) *Node {
	for _, c := range n.content {
		if sub, ok := c.(*Node); ok && sub.name == name {
			return sub
		}
	}
	return nil
}

// NamedSubElement returns the child whose item name is itemName.
func (n *Node) NamedSubElement(itemName string) *Node {
	for _, sub := range n.SubElements() {
		if name, ok := sub.ItemName(); ok && name == itemName {
			return sub
		}
	}
	return nil
}

// Attributes returns a copy of n's attributes.
func (n *Node) Attributes() []Attribute {
	n.mu.Lock()
	defer n.mu.Unlock()
	res := make([]Attribute, len(n.attrs))
	copy(res, n.attrs)
	return res
}

func (n *Node) Attribute(name spec.AttributeName) (spec.Value, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.attributeLocked(name)
}

func (n *Node) attributeLocked(name spec.AttributeName) (spec.Value, bool) {
	for _, a := range n.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return spec.Value{}, false
}

// CharacterData returns the character content of a character-only node.
func (n *Node) CharacterData() (spec.Value, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.charDataLocked()
}

func (n *Node) charDataLocked() (spec.Value, bool) {
	for _, c := range n.content {
		if cd, ok := c.(CharacterData); ok {
			return cd.Value, true
		}
	}
	return spec.Value{}, false
}

func (n *Node) identityChildLocked() *Node {
	return n.subElementLocked(n.engine.IdentityElement())
}

// itemText returns the text of n, an identity child, waiting at most
// lockTimeout.
func (n *Node) itemText() (string, error) {
	if !n.mu.TryLockFor(lockTimeout) {
		return "", fmt.Errorf("%w: %s", ErrParentLocked, n.name)
	}
	defer n.mu.Unlock()
	v, _ := n.charDataLocked()
	return v.Text(), nil
}

// ItemName returns the item name of n if n has an identity child with
// content.
func (n *Node) ItemName() (string, bool) {
	n.mu.Lock()
	sn := n.identityChildLocked()
	n.mu.Unlock()
	if sn == nil {
		return "", false
	}
	v, ok := sn.CharacterData()
	if !ok || v.Text() == "" {
		return "", false
	}
	return v.Text(), true
}

// snapshot returns copies of n's content and attributes.
func (n *Node) snapshot() ([]Content, []Attribute) {
	n.mu.Lock()
	defer n.mu.Unlock()
	content := make([]Content, len(n.content))
	copy(content, n.content)
	attrs := make([]Attribute, len(n.attrs))
	copy(attrs, n.attrs)
	return content, attrs
}

func indexOf(content []Content, sub *Node) int {
	for i, c := range content {
		if c == Content(sub) {
			return i
		}
	}
	return -1
}

func contentNames(content []Content) []spec.ElementName {
	res := make([]spec.ElementName, len(content))
	for i, c := range content {
		if sub, ok := c.(*Node); ok {
			res[i] = sub.name
		}
	}
	return res
}
