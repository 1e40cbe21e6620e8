package graph

import (
	"fmt"

	"github.com/signadot/docgraph/spec"
)

// SetReferenceTarget makes the reference n point at target, which must be
// an identifiable element of the same model.
func (n *Node) SetReferenceTarget(target *Node) error {
	e := n.engine
	if !e.IsReference(n.typ) {
		return fmt.Errorf("%w: %s", ErrNotReference, n.name)
	}
	dest, ok := e.ReferenceDest(n.typ, target.typ)
	if !ok {
		return fmt.Errorf("%w: %s cannot refer to %s", ErrInvalidReference, n.name, target.name)
	}
	tc, err := target.chain()
	if err != nil {
		return err
	}
	if !tc.identifiable(0) {
		return fmt.Errorf("%w: %s", ErrNotIdentifiable, target.name)
	}
	c, err := n.chain()
	if err != nil {
		return err
	}
	if c.model != tc.model {
		return fmt.Errorf("%w: target in another model", ErrInvalidReference)
	}
	path := tc.path(0)

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.parent.kind == parentDeleted {
		return ErrItemDeleted
	}
	old, _ := n.charDataLocked()
	n.content = []Content{CharacterData{spec.StringValue(path)}}
	n.setAttributeLocked(e.DestAttribute(), spec.EnumValue(dest))
	if c.model != nil {
		c.model.moveRef(old.Text(), path, n)
	}
	return nil
}

// ReferenceTarget resolves the reference n. It fails with
// ErrInvalidReference if the path does not resolve or resolves to an
// element its discriminator does not allow.
func (n *Node) ReferenceTarget() (*Node, error) {
	e := n.engine
	if !e.IsReference(n.typ) {
		return nil, fmt.Errorf("%w: %s", ErrNotReference, n.name)
	}
	n.mu.Lock()
	pv, _ := n.charDataLocked()
	dv, hasDest := n.attributeLocked(e.DestAttribute())
	n.mu.Unlock()
	path := pv.Text()
	if path == "" {
		return nil, fmt.Errorf("%w: empty reference", ErrInvalidReference)
	}
	m, err := n.Model()
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: %s is not part of a model", ErrInvalidReference, n.name)
	}
	target := m.GetElementByPath(path)
	if target == nil {
		return nil, fmt.Errorf("%w: %s not found", ErrInvalidReference, path)
	}
	want, ok := e.ReferenceDest(n.typ, target.typ)
	if !ok {
		return nil, fmt.Errorf("%w: %s cannot refer to %s", ErrInvalidReference, n.name, target.name)
	}
	if hasDest && dv.Text() != want {
		return nil, fmt.Errorf("%w: %s %s, target is %s", ErrInvalidReference, e.DestAttribute(), dv.Text(), want)
	}
	return target, nil
}
