package graph

import (
	"fmt"

	"github.com/signadot/docgraph/spec"
)

// SetCharacterData replaces the content of a character-only node. Setting
// the identity child of an identifiable node renames the parent; setting a
// reference re-keys it in the reference cache.
func (n *Node) SetCharacterData(v spec.Value) error {
	e := n.engine
	if e.ContentMode(n.typ) != spec.Characters {
		return fmt.Errorf("%w: %s does not hold character data", ErrContentType, n.name)
	}
	val, err := checkCharacterData(e, n.typ, v)
	if err != nil {
		return err
	}
	c, err := n.chain()
	if err != nil {
		return err
	}
	if n.name == e.IdentityElement() && len(c.links) > 1 {
		p := c.links[1].node
		if e.RequiresIdentity(p.typ, c.version(1)) {
			return p.SetItemName(val.Text())
		}
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.parent.kind == parentDeleted {
		return ErrItemDeleted
	}
	old, _ := n.charDataLocked()
	n.content = []Content{CharacterData{val}}
	if e.IsReference(n.typ) && c.model != nil {
		c.model.moveRef(old.Text(), val.Text(), n)
	}
	return nil
}

// SetCharacterDataString parses text according to n's type and sets it.
func (n *Node) SetCharacterDataString(text string) error {
	return n.SetCharacterData(spec.StringValue(text))
}

// RemoveCharacterData empties a character-only node.
func (n *Node) RemoveCharacterData() error {
	e := n.engine
	if e.ContentMode(n.typ) != spec.Characters {
		return fmt.Errorf("%w: %s does not hold character data", ErrContentType, n.name)
	}
	c, err := n.chain()
	if err != nil {
		return err
	}
	if n.name == e.IdentityElement() && len(c.links) > 1 {
		p := c.links[1].node
		if e.RequiresIdentity(p.typ, c.version(1)) {
			return fmt.Errorf("%w: item name of %s", ErrIdentityChild, p.name)
		}
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.parent.kind == parentDeleted {
		return ErrItemDeleted
	}
	old, _ := n.charDataLocked()
	n.content = nil
	if e.IsReference(n.typ) && c.model != nil {
		c.model.moveRef(old.Text(), "", n)
	}
	return nil
}

// InsertCharacterContentItem inserts text at pos into mixed content.
func (n *Node) InsertCharacterContentItem(text string, pos int) error {
	if n.engine.ContentMode(n.typ) != spec.Mixed {
		return fmt.Errorf("%w: %s is not mixed", ErrContentType, n.name)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.parent.kind == parentDeleted {
		return ErrItemDeleted
	}
	if pos < 0 || pos > len(n.content) {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrInvalidPosition, pos, len(n.content))
	}
	n.content = insertContent(n.content, pos, CharacterData{spec.StringValue(text)})
	return nil
}

// RemoveCharacterContentItem removes the text item at pos from mixed
// content.
func (n *Node) RemoveCharacterContentItem(pos int) error {
	if n.engine.ContentMode(n.typ) != spec.Mixed {
		return fmt.Errorf("%w: %s is not mixed", ErrContentType, n.name)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.parent.kind == parentDeleted {
		return ErrItemDeleted
	}
	if pos < 0 || pos >= len(n.content) {
		return fmt.Errorf("%w: %d", ErrInvalidPosition, pos)
	}
	if _, ok := n.content[pos].(CharacterData); !ok {
		return fmt.Errorf("%w: item %d is an element", ErrInvalidPosition, pos)
	}
	n.content = removeContent(n.content, pos)
	return nil
}

// SetAttribute sets or replaces attribute name.
func (n *Node) SetAttribute(name spec.AttributeName, v spec.Value) error {
	as, ok := n.engine.Attribute(n.typ, name)
	if !ok {
		return fmt.Errorf("%w: %s on %s", ErrInvalidAttribute, name, n.name)
	}
	ver, err := n.MinVersion()
	if err != nil {
		return err
	}
	if !as.Versions.Has(ver) {
		return fmt.Errorf("%w: %s on %s in %s", ErrInvalidAttribute, name, n.name, ver)
	}
	val := v
	if as.Value != nil {
		if val, err = as.Value.Normalize(v); err != nil {
			return err
		}
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.parent.kind == parentDeleted {
		return ErrItemDeleted
	}
	n.setAttributeLocked(name, val)
	return nil
}

func (n *Node) SetAttributeString(name spec.AttributeName, text string) error {
	return n.SetAttribute(name, spec.StringValue(text))
}

func (n *Node) setAttributeLocked(name spec.AttributeName, v spec.Value) {
	for i := range n.attrs {
		if n.attrs[i].Name == name {
			n.attrs[i].Value = v
			return
		}
	}
	n.attrs = append(n.attrs, Attribute{Name: name, Value: v})
}

// RemoveAttribute removes attribute name. Required attributes cannot be
// removed.
func (n *Node) RemoveAttribute(name spec.AttributeName) error {
	as, ok := n.engine.Attribute(n.typ, name)
	if !ok {
		return fmt.Errorf("%w: %s on %s", ErrInvalidAttribute, name, n.name)
	}
	if as.Required {
		return fmt.Errorf("%w: %s on %s", ErrRequiredAttribute, name, n.name)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.parent.kind == parentDeleted {
		return ErrItemDeleted
	}
	for i, a := range n.attrs {
		if a.Name == name {
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			return nil
		}
	}
	return nil
}
