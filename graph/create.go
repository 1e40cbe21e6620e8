package graph

import (
	"fmt"

	"github.com/signadot/docgraph/spec"
)

// CreateSubElement appends a new child named name at the last permitted
// position.
func (n *Node) CreateSubElement(name spec.ElementName) (*Node, error) {
	return n.createSubElement(name, "", false, -1)
}

// CreateSubElementAt inserts a new child named name at pos.
func (n *Node) CreateSubElementAt(name spec.ElementName, pos int) (*Node, error) {
	return n.createSubElement(name, "", false, pos)
}

// CreateNamedSubElement creates an identifiable child with item name
// itemName.
func (n *Node) CreateNamedSubElement(name spec.ElementName, itemName string) (*Node, error) {
	return n.createSubElement(name, itemName, true, -1)
}

func (n *Node) CreateNamedSubElementAt(name spec.ElementName, itemName string, pos int) (*Node, error) {
	return n.createSubElement(name, itemName, true, pos)
}

func (n *Node) createSubElement(name spec.ElementName, itemName string, named bool, pos int) (*Node, error) {
	return retryStale(func() (*Node, error) {
		return n.tryCreateSubElement(name, itemName, named, pos)
	})
}

func (n *Node) tryCreateSubElement(name spec.ElementName, itemName string, named bool, pos int) (*Node, error) {
	c, err := n.chain()
	if err != nil {
		return nil, err
	}
	v := c.version(0)
	e := n.engine
	if !e.ContentMode(n.typ).HasElements() {
		return nil, fmt.Errorf("%w: %s has character content", ErrContentType, n.name)
	}
	info, ok := e.SubElement(n.typ, name, v)
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", ErrInvalidSubElement, name, n.name)
	}
	needsName := e.RequiresIdentity(info.Type, v)
	switch {
	case needsName && !named:
		return nil, fmt.Errorf("%w: %s", ErrItemNameRequired, name)
	case !needsName && named:
		return nil, fmt.Errorf("%w: %s", ErrItemNameNotAllowed, name)
	}
	child := newNode(e, name, info.Type)
	var path string
	if named {
		sn, err := newIdentityNode(e, info.Type, itemName, v)
		if err != nil {
			return nil, err
		}
		sn.setParentLocked(child)
		child.content = []Content{sn}
		path = c.path(0) + "/" + itemName
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.parent.kind == parentDeleted {
		return nil, ErrItemDeleted
	}
	at, err := n.insertPositionLocked(name, v, pos, nil)
	if err != nil {
		return nil, err
	}
	if named && c.model != nil {
		es := &entries{paths: []pathEntry{{path: path, node: child}}, base: c.anchor(0)}
		if err := c.model.register(es); err != nil {
			return nil, err
		}
	}
	child.setParentLocked(n)
	n.content = insertContent(n.content, at, child)
	return child, nil
}

// newIdentityNode builds the identity child of an element of type t.
func newIdentityNode(e spec.Engine, t spec.ElementType, itemName string, v spec.Version) (*Node, error) {
	info, ok := e.SubElement(t, e.IdentityElement(), v)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no %s", ErrNotIdentifiable, e.TypeName(t), e.IdentityElement())
	}
	val, err := checkCharacterData(e, info.Type, spec.StringValue(itemName))
	if err != nil {
		return nil, err
	}
	if val.Text() == "" {
		return nil, fmt.Errorf("%w: empty item name", ErrItemNameRequired)
	}
	sn := newNode(e, e.IdentityElement(), info.Type)
	sn.content = []Content{CharacterData{val}}
	return sn, nil
}

func checkCharacterData(e spec.Engine, t spec.ElementType, v spec.Value) (spec.Value, error) {
	cs := e.CharacterSpec(t)
	if cs == nil {
		return spec.Value{}, fmt.Errorf("%w: %s has no character content", ErrContentType, e.TypeName(t))
	}
	return cs.Normalize(v)
}
