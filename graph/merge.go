package graph

import (
	"fmt"
	"slices"
	"weak"

	"github.com/signadot/docgraph/debug"
	"github.com/signadot/docgraph/spec"
)

// merging a file B into a model A is planned first, without touching A.
// Every conflict is found while planning; applying a plan only fails on
// concurrent modification, in which case it is undone.

type plannedInsert struct {
	parent *Node
	node   *Node
	pos    int
	base   string
}

type plannedPin struct {
	node  *Node
	files []*File
}

type mergePlan struct {
	m     *Model
	e     spec.Engine
	file  *File
	bv    spec.Version
	paths map[string]bool

	inserts []plannedInsert
	pins    []plannedPin
	widen   []*Node
	entries entries
}

func (m *Model) merge(cand *candidate) error {
	files := m.Files()
	p := &mergePlan{
		m:     m,
		e:     m.engine,
		file:  cand.file,
		bv:    cand.file.version,
		paths: map[string]bool{},
	}
	if err := p.plan(m.root, cand.root, "", files); err != nil {
		m.log.Info("merge conflict", "file", cand.file.name, "error", err)
		return err
	}
	if debug.Merge() {
		debug.Logf("merge plan for %s: %d inserts, %d pins, %d widened\n",
			cand.file.name, len(p.inserts), len(p.pins), len(p.widen))
	}
	if err := p.apply(); err != nil {
		return err
	}
	m.log.Info("merged file", "file", cand.file.name, "inserted", len(p.inserts))
	return nil
}

func (p *mergePlan) conflict(path string, name spec.ElementName, format string, args ...any) error {
	return &MergeError{
		File:    p.file.name,
		Path:    path,
		Element: name,
		Reason:  fmt.Sprintf(format, args...),
	}
}

// key identifies a child of a parent of type parent for matching. Items
// are matched by item name, by definition reference, by name alone if
// they occur at most once, and by structure otherwise.
func (p *mergePlan) key(parent spec.ElementType, n *Node, v spec.Version) string {
	content, _ := n.snapshot()
	prefix := string(n.name) + "\x00"
	if p.e.RequiresIdentity(n.typ, v) {
		if name := itemNameOf(p.e, content); name != "" {
			return prefix + "n" + name
		}
	}
	for _, c := range content {
		if sub, ok := c.(*Node); ok && sub.name == p.e.DefinitionRefElement() {
			dr, _ := sub.CharacterData()
			return prefix + "d" + dr.Text()
		}
	}
	info, ok := p.e.SubElement(parent, n.name, v)
	if !ok {
		info, ok = p.e.SubElement(parent, n.name, 0)
	}
	if ok && info.Multiplicity != spec.Any {
		return prefix + "s"
	}
	return prefix + "f" + fingerprint(n)
}

type simItem struct {
	name spec.ElementName
	node *Node
}

func (p *mergePlan) plan(a, b *Node, path string, filesA []*File) error {
	aContent, aAttrs := a.snapshot()
	bContent, bAttrs := b.content, b.attrs
	var vs spec.Version
	for _, f := range filesA {
		vs |= f.Version()
	}
	v := (vs | p.bv).Min()

	if a != p.m.root {
		for _, ba := range bAttrs {
			for _, aa := range aAttrs {
				if aa.Name == ba.Name && !aa.Value.Equal(ba.Value) {
					return p.conflict(path, a.name, "attribute %s differs", ba.Name)
				}
			}
		}
	}
	switch p.e.ContentMode(a.typ) {
	case spec.Characters:
		av, _ := charData(aContent)
		bv, _ := charData(bContent)
		if !av.Equal(bv) {
			return p.conflict(path, a.name, "character data %q differs from %q", bv.Text(), av.Text())
		}
		return nil
	case spec.Mixed:
		if fingerprint(a) != fingerprint(b) {
			return p.conflict(path, a.name, "mixed content differs")
		}
		return nil
	}

	aKids, bKids := elements(aContent), elements(bContent)
	aKeys := make([]string, len(aKids))
	for i, k := range aKids {
		aKeys[i] = p.key(a.typ, k, v)
	}
	used := make([]bool, len(aKids))
	matched := make([]int, len(bKids))
	cursor := 0
	for j, bk := range bKids {
		key := p.key(a.typ, bk, v)
		matched[j] = -1
		for k := range aKids {
			i := (cursor + k) % len(aKids)
			if !used[i] && aKeys[i] == key {
				matched[j] = i
				used[i] = true
				cursor = i + 1
				break
			}
		}
	}
	var diverging *Node
	for i, k := range aKids {
		if !used[i] {
			diverging = k
			break
		}
	}
	if diverging == nil {
		for j, k := range bKids {
			if matched[j] < 0 {
				diverging = k
				break
			}
		}
	}
	if diverging != nil && !p.e.Splittable(a.typ, v) {
		return p.conflict(path, diverging.name, "content of %s differs and is not splittable", a.name)
	}

	for i, k := range aKids {
		if !used[i] && len(k.LocalFiles()) == 0 {
			p.pins = append(p.pins, plannedPin{node: k, files: filesA})
		}
	}

	sim := make([]simItem, len(aContent))
	for i, c := range aContent {
		if sub, ok := c.(*Node); ok {
			sim[i] = simItem{name: sub.name, node: sub}
		}
	}
	last := -1
	for j, bk := range bKids {
		if i := matched[j]; i >= 0 {
			last = slices.IndexFunc(sim, func(s simItem) bool { return s.node == aKids[i] })
			continue
		}
		names := make([]spec.ElementName, len(sim))
		for i, s := range sim {
			names[i] = s.name
		}
		start, end, err := insertRange(p.e, a.typ, names, bk.name, p.bv)
		if err != nil {
			return p.conflict(path, bk.name, "%v", err)
		}
		pos := end
		if last >= 0 {
			pos = min(max(last+1, start), end)
		}
		sim = slices.Insert(sim, pos, simItem{name: bk.name, node: bk})
		last = pos
		if err := p.claim(bk, path); err != nil {
			return err
		}
		p.inserts = append(p.inserts, plannedInsert{parent: a, node: bk, pos: pos, base: path})
	}

	for j, bk := range bKids {
		i := matched[j]
		if i < 0 {
			continue
		}
		ak := aKids[i]
		sub := filesA
		if local := ak.LocalFiles(); len(local) > 0 {
			sub = local
			p.widen = append(p.widen, ak)
		}
		childPath := path
		if p.e.RequiresIdentity(ak.typ, v) {
			if name, ok := ak.ItemName(); ok {
				childPath = path + "/" + name
			}
		}
		if err := p.plan(ak, bk, childPath, sub); err != nil {
			return err
		}
	}
	return nil
}

// claim reserves the paths of an inserted subtree.
func (p *mergePlan) claim(n *Node, base string) error {
	var es entries
	collectEntries(n, base, p.bv, &es)
	p.m.mu.Lock()
	err := p.m.checkPathsLocked(es.paths)
	p.m.mu.Unlock()
	if err == nil {
		for _, pe := range es.paths {
			if p.paths[pe.path] {
				err = fmt.Errorf("%w: %s", ErrDuplicateName, pe.path)
				break
			}
			p.paths[pe.path] = true
		}
	}
	if err != nil {
		return p.conflict(base, n.name, "%v", err)
	}
	p.entries.paths = append(p.entries.paths, es.paths...)
	p.entries.refs = append(p.entries.refs, es.refs...)
	return nil
}

func (p *mergePlan) apply() error {
	var undo []func()
	rollback := func() {
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
	}
	wf := weak.Make(p.file)
	for _, in := range p.inserts {
		parent, node := in.parent, in.node
		parent.mu.Lock()
		pos := min(in.pos, len(parent.content))
		parent.content = insertContent(parent.content, pos, node)
		node.setParentLocked(parent)
		node.files = []weak.Pointer[File]{wf}
		parent.mu.Unlock()
		undo = append(undo, func() {
			parent.mu.Lock()
			if i := indexOf(parent.content, node); i >= 0 {
				parent.content = removeContent(parent.content, i)
			}
			parent.mu.Unlock()
		})
	}
	for _, pin := range p.pins {
		n := pin.node
		n.mu.Lock()
		if len(n.files) == 0 {
			n.files = weakFiles(pin.files)
			undo = append(undo, func() {
				n.mu.Lock()
				n.files = nil
				n.mu.Unlock()
			})
		}
		n.mu.Unlock()
	}
	for _, n := range append(p.widen, p.m.root) {
		n.mu.Lock()
		if !hasFile(n.files, p.file) {
			n.files = append(n.files, wf)
			undo = append(undo, func() {
				n.mu.Lock()
				n.files = withoutFile(n.files, p.file)
				n.mu.Unlock()
			})
		}
		n.mu.Unlock()
	}
	if err := p.m.addFile(p.file); err != nil {
		rollback()
		return err
	}
	if err := p.m.register(&p.entries); err != nil {
		p.m.mu.Lock()
		p.m.files = slices.DeleteFunc(p.m.files, func(f *File) bool { return f == p.file })
		p.m.mu.Unlock()
		rollback()
		return err
	}
	return nil
}

func elements(content []Content) []*Node {
	var res []*Node
	for _, c := range content {
		if sub, ok := c.(*Node); ok {
			res = append(res, sub)
		}
	}
	return res
}

func charData(content []Content) (spec.Value, bool) {
	for _, c := range content {
		if cd, ok := c.(CharacterData); ok {
			return cd.Value, true
		}
	}
	return spec.Value{}, false
}
