package graph

import (
	"fmt"
	"slices"
	"sync"
	"weak"

	"github.com/signadot/docgraph/spec"
)

// File is a document of a model: a named, versioned view on a subset of
// the model's graph.
type File struct {
	mu         sync.Mutex
	model      weak.Pointer[Model]
	name       string
	version    spec.Version
	standalone *bool
	removed    bool
}

func (f *File) Name() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.name
}

func (f *File) Version() spec.Version {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.version
}

// Standalone returns the standalone flag of the file's XML declaration,
// nil if the declaration did not carry one.
func (f *File) Standalone() *bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.standalone
}

func (f *File) SetStandalone(b *bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.standalone = b
}

// Model returns the model f belongs to, nil once f was removed.
func (f *File) Model() *Model {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removed {
		return nil
	}
	return f.model.Value()
}

func (f *File) live() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.removed
}

func (f *File) String() string {
	return f.Name()
}

// SetName renames f. Names are unique within a model.
func (f *File) SetName(name string) error {
	m := f.Model()
	if m == nil {
		return ErrNoFile
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.files {
		if o != f && o.Name() == name {
			return fmt.Errorf("%w: %s", ErrDuplicateFile, name)
		}
	}
	f.mu.Lock()
	f.name = name
	f.mu.Unlock()
	return nil
}

// SetVersion changes the revision of f. Every element and attribute of the
// file's subset must exist in v.
func (f *File) SetVersion(v spec.Version) error {
	m := f.Model()
	if m == nil {
		return ErrNoFile
	}
	if v.Count() != 1 {
		return fmt.Errorf("%w: %s is not a single revision", ErrVersionMismatch, v)
	}
	var bad error
	f.Walk(func(n *Node, depth int) bool {
		if bad != nil {
			return false
		}
		for _, a := range n.Attributes() {
			as, ok := n.engine.Attribute(n.typ, a.Name)
			if !ok || !as.Versions.Has(v) {
				bad = fmt.Errorf("%w: attribute %s of %s", ErrVersionMismatch, a.Name, n.name)
				return false
			}
		}
		for _, sub := range n.SubElements() {
			if _, ok := n.engine.SubElement(n.typ, sub.name, v); !ok {
				bad = fmt.Errorf("%w: %s in %s", ErrVersionMismatch, sub.name, n.name)
				return false
			}
		}
		return true
	})
	if bad != nil {
		return bad
	}
	f.mu.Lock()
	f.version = v
	f.mu.Unlock()
	return nil
}

// Walk visits, depth first, every node of the model that belongs to f.
// fn returns false to skip the children of a node.
func (f *File) Walk(fn func(n *Node, depth int) bool) {
	m := f.Model()
	if m == nil {
		return
	}
	m.root.walkFiltered(0, func(n *Node) bool { return n.inFile(f) }, fn)
}

// inFile reports whether n is in f given that its parent is.
func (n *Node) inFile(f *File) bool {
	local := n.LocalFiles()
	return len(local) == 0 || slices.Contains(local, f)
}

func liveFiles(ws []weak.Pointer[File]) []*File {
	var res []*File
	for _, w := range ws {
		if f := w.Value(); f != nil && f.live() {
			res = append(res, f)
		}
	}
	return res
}

func weakFiles(files []*File) []weak.Pointer[File] {
	if len(files) == 0 {
		return nil
	}
	res := make([]weak.Pointer[File], len(files))
	for i, f := range files {
		res[i] = weak.Make(f)
	}
	return res
}

func hasFile(ws []weak.Pointer[File], f *File) bool {
	return slices.Contains(ws, weak.Make(f))
}

func withoutFile(ws []weak.Pointer[File], f *File) []weak.Pointer[File] {
	wf := weak.Make(f)
	var res []weak.Pointer[File]
	for _, w := range ws {
		if w != wf && w.Value() != nil {
			res = append(res, w)
		}
	}
	return res
}
