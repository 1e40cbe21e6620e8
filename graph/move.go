package graph

import (
	"fmt"
	"slices"
	"weak"

	"github.com/signadot/docgraph/debug"
	"github.com/signadot/docgraph/spec"
)

// MoveElementHere moves src, from this or another model, to the end of
// the permitted range of n.
func (n *Node) MoveElementHere(src *Node) (*Node, error) {
	return n.moveElementHere(src, -1)
}

func (n *Node) MoveElementHereAt(src *Node, pos int) (*Node, error) {
	return n.moveElementHere(src, pos)
}

func (n *Node) moveElementHere(src *Node, pos int) (*Node, error) {
	rs, err := retryStale(func() ([]referrer, error) {
		return n.tryMoveElementHere(src, pos)
	})
	if err != nil {
		return nil, err
	}
	rewriteReferrers(rs)
	return src, nil
}

// move holds what a move changes besides the content lists. Every node in
// it is locked by the mover.
type move struct {
	// idents are the identity children of the top identifiable nodes of
	// the moved subtree.
	idents map[*Node]*Node
	// pinned are descendants of the moved node with a local membership.
	pinned []*Node
	locked []*Node
}

func (mv *move) lock(n *Node) error {
	if slices.Contains(mv.locked, n) {
		return nil
	}
	if !n.mu.TryLockFor(lockTimeout) {
		return fmt.Errorf("%w: %s", ErrParentLocked, n.name)
	}
	mv.locked = append(mv.locked, n)
	return nil
}

func (mv *move) unlock() {
	for _, n := range slices.Backward(mv.locked) {
		n.mu.Unlock()
	}
	mv.locked = nil
}

func (n *Node) tryMoveElementHere(src *Node, pos int) ([]referrer, error) {
	if src == n {
		return nil, fmt.Errorf("%w: %s into itself", ErrForbiddenMove, n.name)
	}
	dc, err := n.chain()
	if err != nil {
		return nil, err
	}
	if dc.contains(src) {
		return nil, fmt.Errorf("%w: %s into its own descendant", ErrForbiddenMove, src.name)
	}
	sc, err := src.chain()
	if err != nil {
		return nil, err
	}
	if len(sc.links) < 2 {
		return nil, fmt.Errorf("%w: %s is a root", ErrForbiddenMove, src.name)
	}
	srcParent := sc.links[1].node
	dv, sv := dc.version(0), sc.version(0)
	if dv != sv {
		return nil, fmt.Errorf("%w: %s to %s", ErrVersionMismatch, sv, dv)
	}
	e := n.engine
	if !e.ContentMode(n.typ).HasElements() {
		return nil, fmt.Errorf("%w: %s has character content", ErrContentType, n.name)
	}
	info, ok := e.SubElement(n.typ, src.name, dv)
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", ErrInvalidSubElement, src.name, n.name)
	}
	if info.Type != src.typ {
		return nil, fmt.Errorf("%w: %s has a different type in %s", ErrInvalidSubElement, src.name, n.name)
	}

	srcBase, dstBase := sc.parentPath(), dc.path(0)
	old := entries{base: sc.anchor(1)}
	collectEntries(src, srcBase, sv, &old)
	pinned := pinnedBelow(src)

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.parent.kind == parentDeleted {
		return nil, ErrItemDeleted
	}
	mv := &move{idents: map[*Node]*Node{}}
	defer mv.unlock()
	if srcParent != n {
		if err := mv.lock(srcParent); err != nil {
			return nil, err
		}
	}
	from := indexOf(srcParent.content, src)
	if from < 0 {
		return nil, fmt.Errorf("%w: %s was moved", errStale, src.name)
	}
	at, err := n.insertPositionLocked(src.name, dv, pos, src)
	if err != nil {
		return nil, err
	}
	if err := mv.lock(src); err != nil {
		return nil, err
	}
	if err := mv.prepare(src, &old, pinned); err != nil {
		return nil, err
	}
	sm, dm := sc.model, dc.model
	pl, rs, err := relocateEntries(sm, dm, &old, srcBase, dstBase, dc.anchor(0))
	if err != nil {
		return nil, err
	}

	// nothing below fails
	srcParent.content = removeContent(srcParent.content, from)
	if srcParent == n && from < at {
		at--
	}
	n.content = insertContent(n.content, at, src)
	src.setParentLocked(n)
	var allowed []*File
	if sm == dm && e.Splittable(n.typ, dv) {
		allowed = dc.files(0)
	}
	src.files = restrictFiles(src.files, allowed)
	for _, p := range mv.pinned {
		if sm != dm {
			p.files = nil
			continue
		}
		p.files = restrictFiles(p.files, dc.files(0))
	}
	if pl != nil {
		for t, name := range pl.renamed {
			mv.idents[t].content = []Content{CharacterData{spec.StringValue(name)}}
		}
	}
	if debug.Cache() {
		debug.Logf("moved %s from %q to %q\n", src, srcBase, dstBase)
	}
	return rs, nil
}

// prepare locks the identity children of the top identifiable nodes of the
// moved subtree and its pinned descendants, with bounded waits.
func (mv *move) prepare(src *Node, old *entries, pinned []*Node) error {
	for _, t := range topIdentifiables(old) {
		if t.node != src {
			if !t.node.mu.TryLockFor(lockTimeout) {
				return fmt.Errorf("%w: %s", ErrParentLocked, t.node.name)
			}
		}
		sn := t.node.identityChildLocked()
		if t.node != src {
			t.node.mu.Unlock()
		}
		if sn == nil {
			return fmt.Errorf("%w: %s lost its item name", errStale, t.path)
		}
		if err := mv.lock(sn); err != nil {
			return err
		}
		mv.idents[t.node] = sn
	}
	for _, p := range pinned {
		if err := mv.lock(p); err != nil {
			return err
		}
	}
	mv.pinned = pinned
	return nil
}

// relocateEntries moves the cache entries old of a subtree named under
// srcBase in sm beneath dstBase in dm. It changes nothing on failure.
func relocateEntries(sm, dm *Model, old *entries, srcBase, dstBase string, dstAnchor *pathEntry) (*placement, []referrer, error) {
	if sm == dm {
		if sm == nil || srcBase == dstBase {
			return nil, nil, nil
		}
		return sm.relocate(old, srcBase, dstBase, dstAnchor)
	}
	var pl *placement
	if dm != nil {
		nw := &entries{paths: old.paths, refs: old.refs, base: dstAnchor}
		var err error
		if pl, err = dm.registerPlaced(nw, srcBase, dstBase); err != nil {
			return nil, nil, err
		}
	}
	if sm != nil {
		if err := sm.evictExact(old); err != nil {
			if pl != nil {
				dm.evict(pl.entries)
			}
			return nil, nil, err
		}
	}
	return pl, nil, nil
}

// topIdentifiables returns the entries of es not below another entry.
func topIdentifiables(es *entries) []pathEntry {
	var res []pathEntry
	for _, pe := range es.paths {
		nested := false
		for _, o := range res {
			if underPrefix(pe.path, o.path) {
				nested = true
				break
			}
		}
		if !nested {
			res = append(res, pe)
		}
	}
	return res
}

// pinnedBelow returns the descendants of n with a local file membership.
func pinnedBelow(n *Node) []*Node {
	var res []*Node
	content, _ := n.snapshot()
	for _, c := range content {
		sub, ok := c.(*Node)
		if !ok {
			continue
		}
		if len(sub.LocalFiles()) > 0 {
			res = append(res, sub)
		}
		res = append(res, pinnedBelow(sub)...)
	}
	return res
}

// restrictFiles keeps the files of ws which are in allowed.
func restrictFiles(ws []weak.Pointer[File], allowed []*File) []weak.Pointer[File] {
	var res []weak.Pointer[File]
	for _, w := range ws {
		if f := w.Value(); f != nil && slices.Contains(allowed, f) {
			res = append(res, w)
		}
	}
	return res
}
