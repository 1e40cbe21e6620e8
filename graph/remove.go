package graph

import (
	"fmt"

	"github.com/signadot/docgraph/spec"
)

// RemoveSubElement detaches child from n and destroys its subtree. The
// references it holds leave the reference cache; references from outside
// that pointed into it become dangling.
func (n *Node) RemoveSubElement(child *Node) error {
	c, err := n.chain()
	if err != nil {
		return err
	}
	v := c.version(0)
	if child.name == n.engine.IdentityElement() && n.engine.RequiresIdentity(n.typ, v) {
		return fmt.Errorf("%w: %s of %s", ErrIdentityChild, child.name, n.name)
	}
	if err := n.detach(child); err != nil {
		return err
	}
	var es entries
	visited := collectEntriesCount(child, c.path(0), v, &es)
	nodes := map[*Node]bool{}
	child.destroyInto(nodes)
	if c.model != nil {
		c.model.evictSubtree(&es, visited, nodes)
	}
	return nil
}

// detach unlinks child from n and marks it deleted, so that nothing can be
// created below it any more.
func (n *Node) detach(child *Node) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.parent.kind == parentDeleted {
		return ErrItemDeleted
	}
	i := indexOf(n.content, child)
	if i < 0 {
		return fmt.Errorf("%w: %s is not a child of %s", ErrInvalidSubElement, child.name, n.name)
	}
	if !child.mu.TryLockFor(lockTimeout) {
		return fmt.Errorf("%w: %s", ErrParentLocked, child.name)
	}
	child.parent = parentLink{kind: parentDeleted}
	child.mu.Unlock()
	n.content = removeContent(n.content, i)
	return nil
}

// RemoveSubElementByName removes the first child named name.
func (n *Node) RemoveSubElementByName(name spec.ElementName) error {
	child := n.SubElement(name)
	if child == nil {
		return fmt.Errorf("%w: no %s in %s", ErrInvalidSubElement, name, n.name)
	}
	return n.RemoveSubElement(child)
}

// destroy marks the subtree of a detached node deleted.
func (n *Node) destroy() {
	n.destroyInto(nil)
}

// destroyInto is destroy, adding every destroyed node to nodes if it is
// not nil. No lock is held while a child is visited.
func (n *Node) destroyInto(nodes map[*Node]bool) {
	n.mu.Lock()
	content := n.content
	n.parent = parentLink{kind: parentDeleted}
	n.content = nil
	n.files = nil
	n.mu.Unlock()
	if nodes != nil {
		nodes[n] = true
	}
	for _, c := range content {
		if sub, ok := c.(*Node); ok {
			sub.destroyInto(nodes)
		}
	}
}
