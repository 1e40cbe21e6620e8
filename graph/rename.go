package graph

import (
	"fmt"

	"github.com/signadot/docgraph/spec"
)

// SetItemName renames an identifiable node. The paths of n and of all its
// descendants change, and so does the stored target of every reference
// pointing at them.
func (n *Node) SetItemName(name string) error {
	rs, err := retryStale(func() ([]referrer, error) {
		return n.setItemName(name)
	})
	if err != nil {
		return err
	}
	rewriteReferrers(rs)
	return nil
}

// setItemName renames n in the caches and returns the references whose
// stored target is to be rewritten once no lock is held.
func (n *Node) setItemName(name string) ([]referrer, error) {
	c, err := n.chain()
	if err != nil {
		return nil, err
	}
	v := c.version(0)
	e := n.engine
	if !e.RequiresIdentity(n.typ, v) {
		return nil, fmt.Errorf("%w: %s", ErrNotIdentifiable, n.name)
	}
	info, ok := e.SubElement(n.typ, e.IdentityElement(), v)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotIdentifiable, n.name)
	}
	val, err := checkCharacterData(e, info.Type, spec.StringValue(name))
	if err != nil {
		return nil, err
	}
	if val.Text() == "" {
		return nil, fmt.Errorf("%w: empty item name", ErrItemNameRequired)
	}
	oldPath := c.path(0)
	newPath := c.parentPath() + "/" + val.Text()

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.parent.kind == parentDeleted {
		return nil, ErrItemDeleted
	}
	sn := n.identityChildLocked()
	at := -1
	if sn == nil {
		sn = newNode(e, e.IdentityElement(), info.Type)
		if at, err = n.insertPositionLocked(sn.name, v, -1, nil); err != nil {
			return nil, err
		}
	} else if !sn.mu.TryLockFor(lockTimeout) {
		return nil, fmt.Errorf("%w: %s", ErrParentLocked, sn.name)
	} else {
		defer sn.mu.Unlock()
	}
	var rs []referrer
	if m := c.model; m != nil {
		if !c.identifiable(0) {
			// first name of the node
			err = m.register(&entries{paths: []pathEntry{{path: newPath, node: n}}, base: c.anchor(1)})
		} else {
			rs, err = m.renamePrefix(oldPath, newPath, n)
		}
		if err != nil {
			return nil, err
		}
	}
	sn.content = []Content{CharacterData{val}}
	if at >= 0 {
		sn.setParentLocked(n)
		n.content = insertContent(n.content, at, sn)
	}
	return rs, nil
}
