package graph

import (
	"fmt"

	"github.com/signadot/docgraph/spec"
)

// CreateCopiedSubElement appends a deep copy of src, which may belong to
// any model. Content that is not valid in n's revision is dropped. A
// colliding item name gets a numeric suffix.
func (n *Node) CreateCopiedSubElement(src *Node) (*Node, error) {
	return n.createCopiedSubElement(src, -1)
}

func (n *Node) CreateCopiedSubElementAt(src *Node, pos int) (*Node, error) {
	return n.createCopiedSubElement(src, pos)
}

func (n *Node) createCopiedSubElement(src *Node, pos int) (*Node, error) {
	return retryStale(func() (*Node, error) {
		return n.tryCreateCopiedSubElement(src, pos)
	})
}

func (n *Node) tryCreateCopiedSubElement(src *Node, pos int) (*Node, error) {
	c, err := n.chain()
	if err != nil {
		return nil, err
	}
	v := c.version(0)
	e := n.engine
	if !e.ContentMode(n.typ).HasElements() {
		return nil, fmt.Errorf("%w: %s has character content", ErrContentType, n.name)
	}
	info, ok := e.SubElement(n.typ, src.name, v)
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", ErrInvalidSubElement, src.name, n.name)
	}
	if src.IsDeleted() {
		return nil, ErrItemDeleted
	}
	cp := copyTree(src, e, info.Type, v)
	if e.RequiresIdentity(info.Type, v) && itemNameOf(e, cp.content) == "" {
		return nil, fmt.Errorf("%w: copy of %s", ErrItemNameRequired, src.name)
	}
	base := c.path(0)
	es := &entries{base: c.anchor(0)}
	collectEntries(cp, base, v, es)

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.parent.kind == parentDeleted {
		return nil, ErrItemDeleted
	}
	at, err := n.insertPositionLocked(cp.name, v, pos, nil)
	if err != nil {
		return nil, err
	}
	if m := c.model; m != nil {
		pl, err := m.registerPlaced(es, base, base)
		if err != nil {
			return nil, err
		}
		// cp is not linked yet, nobody else can see its identity children
		for t, name := range pl.renamed {
			if sn := t.identityChildLocked(); sn != nil {
				sn.content = []Content{CharacterData{spec.StringValue(name)}}
			}
		}
	}
	cp.setParentLocked(n)
	n.content = insertContent(n.content, at, cp)
	return cp, nil
}

// copyTree deep copies src as an element of type t, dropping what is not
// valid in revision v. File membership is not copied.
func copyTree(src *Node, e spec.Engine, t spec.ElementType, v spec.Version) *Node {
	content, attrs := src.snapshot()
	cp := newNode(e, src.name, t)
	for _, a := range attrs {
		as, ok := e.Attribute(t, a.Name)
		if !ok || !as.Versions.Has(v) || as.Value == nil {
			continue
		}
		val, err := as.Value.Normalize(a.Value)
		if err != nil {
			continue
		}
		cp.attrs = append(cp.attrs, Attribute{Name: a.Name, Value: val})
	}
	mode := e.ContentMode(t)
	for _, c := range content {
		switch c := c.(type) {
		case *Node:
			if !mode.HasElements() {
				continue
			}
			info, ok := e.SubElement(t, c.name, v)
			if !ok {
				continue
			}
			sub := copyTree(c, e, info.Type, v)
			sub.setParentLocked(cp)
			cp.content = append(cp.content, sub)
		case CharacterData:
			switch mode {
			case spec.Mixed:
				cp.content = append(cp.content, c)
			case spec.Characters:
				if val, err := checkCharacterData(e, t, c.Value); err == nil {
					cp.content = append(cp.content, CharacterData{val})
				}
			}
		}
	}
	return cp
}
