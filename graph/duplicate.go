package graph

import (
	"weak"
)

// Duplicate returns an independent deep copy of m with the same files and
// the same file membership of every element.
func (m *Model) Duplicate() (*Model, error) {
	m.fileMu.Lock()
	defer m.fileMu.Unlock()
	nm := New(m.engine, WithLogger(m.log))
	fmap := map[*File]*File{}
	for _, f := range m.Files() {
		f.mu.Lock()
		nf := &File{
			model:      weak.Make(nm),
			name:       f.name,
			version:    f.version,
			standalone: f.standalone,
		}
		f.mu.Unlock()
		fmap[f] = nf
		nm.files = append(nm.files, nf)
	}
	dupInto(m.root, nm.root, fmap)
	if err := nm.rebuildCaches(); err != nil {
		return nil, err
	}
	return nm, nil
}

// dupInto copies the content of src into the fresh node dst.
func dupInto(src, dst *Node, fmap map[*File]*File) {
	content, attrs := src.snapshot()
	dst.attrs = attrs
	for _, f := range src.LocalFiles() {
		if nf, ok := fmap[f]; ok {
			dst.files = append(dst.files, weak.Make(nf))
		}
	}
	for _, c := range content {
		switch c := c.(type) {
		case *Node:
			sub := newNode(dst.engine, c.name, c.typ)
			sub.setParentLocked(dst)
			dupInto(c, sub, fmap)
			dst.content = append(dst.content, sub)
		case CharacterData:
			dst.content = append(dst.content, c)
		}
	}
}
