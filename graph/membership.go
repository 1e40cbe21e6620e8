package graph

import (
	"fmt"
	"slices"
	"weak"

	"github.com/signadot/docgraph/spec"
)

// AddToFile makes n part of f. Ancestors are added as needed; their other
// children keep their previous membership where the ancestor's type is
// splittable.
func (n *Node) AddToFile(f *File) error {
	c, err := n.chain()
	if err != nil {
		return err
	}
	if c.model == nil || f.Model() != c.model {
		return ErrNoFile
	}
	return c.include(0, f, nil)
}

func (c *chain) include(i int, f *File, via *Node) error {
	eff := c.files(i)
	if slices.Contains(eff, f) {
		return nil
	}
	l := c.links[i]
	node := l.node
	if via != nil && node.engine.Splittable(node.typ, c.version(i)) {
		pinned := weakFiles(eff)
		for _, sub := range node.SubElements() {
			if sub == via || sub.name == node.engine.IdentityElement() {
				continue
			}
			if !sub.mu.TryLockFor(lockTimeout) {
				return fmt.Errorf("%w: %s", ErrParentLocked, sub.name)
			}
			if len(sub.files) == 0 {
				sub.files = slices.Clone(pinned)
			}
			sub.mu.Unlock()
		}
	}
	if len(l.local) > 0 {
		if i+1 < len(c.links) {
			p := c.links[i+1].node
			if !p.engine.Splittable(p.typ, c.version(i+1)) {
				return fmt.Errorf("%w: %s is not splittable", ErrInvalidFileMembership, p.name)
			}
		}
		if !node.mu.TryLockFor(lockTimeout) {
			return fmt.Errorf("%w: %s", ErrParentLocked, node.name)
		}
		if !hasFile(node.files, f) {
			node.files = append(node.files, weak.Make(f))
		}
		node.mu.Unlock()
	}
	if i+1 < len(c.links) {
		return c.include(i+1, f, node)
	}
	return nil
}

// RemoveFromFile restricts n to the files it belongs to other than f.
// Descendants that belonged to f only are removed.
func (n *Node) RemoveFromFile(f *File) error {
	c, err := n.chain()
	if err != nil {
		return err
	}
	if c.model == nil || f.Model() != c.model {
		return ErrNoFile
	}
	if len(c.links) < 2 {
		return fmt.Errorf("%w: the root belongs to every file", ErrInvalidFileMembership)
	}
	eff := c.files(0)
	if !slices.Contains(eff, f) {
		return nil
	}
	p := c.links[1].node
	if !p.engine.Splittable(p.typ, c.version(1)) {
		return fmt.Errorf("%w: %s is not splittable", ErrInvalidFileMembership, p.name)
	}
	rest := slices.DeleteFunc(slices.Clone(eff), func(o *File) bool { return o == f })
	if len(rest) == 0 {
		return fmt.Errorf("%w: %s would belong to no file", ErrInvalidFileMembership, n.name)
	}
	n.mu.Lock()
	n.files = weakFiles(rest)
	n.mu.Unlock()

	path := c.parentPath()
	if c.identifiable(0) {
		path = c.path(0)
	}
	var es entries
	retractFile(n, f, path, c.version(0), &es)
	return c.model.evict(&es)
}

// retractFile removes f from the local membership of the descendants of n,
// which is named path. Descendants left without files are destroyed and
// their cache entries added to es.
func retractFile(n *Node, f *File, path string, v spec.Version, es *entries) {
	n.mu.Lock()
	var keep []Content
	var walk []*Node
	for _, c := range n.content {
		sub, ok := c.(*Node)
		if !ok {
			keep = append(keep, c)
			continue
		}
		sub.mu.Lock()
		in := hasFile(sub.files, f)
		var rest []weak.Pointer[File]
		if in {
			if rest = withoutFile(sub.files, f); len(rest) > 0 {
				sub.files = rest
			}
		}
		sub.mu.Unlock()
		if in && len(rest) == 0 {
			collectEntries(sub, path, v, es)
			sub.destroy()
			continue
		}
		keep = append(keep, sub)
		walk = append(walk, sub)
	}
	n.content = keep
	n.mu.Unlock()
	for _, sub := range walk {
		subPath := path
		content, _ := sub.snapshot()
		if sub.engine.RequiresIdentity(sub.typ, v) {
			if name := itemNameOf(sub.engine, content); name != "" {
				subPath = path + "/" + name
			}
		}
		retractFile(sub, f, subPath, v, es)
	}
}
