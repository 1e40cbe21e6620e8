package graph

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"weak"

	"github.com/signadot/docgraph/spec"
)

// Model is a document graph shared by a set of files.
type Model struct {
	engine spec.Engine
	root   *Node
	log    *slog.Logger

	// fileMu serializes operations changing the set of files.
	fileMu sync.Mutex

	// mu guards files and the caches. No node lock is acquired while mu
	// is held.
	mu    sync.Mutex
	files []*File
	paths map[string]weak.Pointer[Node]
	refs  map[string][]weak.Pointer[Node]
}

type Option func(*Model)

// WithLogger sets the logger for file level operations.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) { m.log = l }
}

// New creates an empty model whose root element is the schema's root.
func New(e spec.Engine, opts ...Option) *Model {
	m := &Model{
		engine: e,
		log:    slog.New(slog.DiscardHandler),
		paths:  map[string]weak.Pointer[Node]{},
		refs:   map[string][]weak.Pointer[Node]{},
	}
	for _, o := range opts {
		o(m)
	}
	name, t := e.Root()
	m.root = newNode(e, name, t)
	m.root.parent = parentLink{kind: parentModel, model: weak.Make(m)}
	return m
}

func (m *Model) Engine() spec.Engine { return m.engine }
func (m *Model) Root() *Node         { return m.root }

// Files returns the files of m in load order.
func (m *Model) Files() []*File {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.files)
}

func (m *Model) FileByName(name string) *File {
	for _, f := range m.Files() {
		if f.Name() == name {
			return f
		}
	}
	return nil
}

// CreateFile adds an empty file of revision v. The root element belongs to
// every file.
func (m *Model) CreateFile(name string, v spec.Version) (*File, error) {
	m.fileMu.Lock()
	defer m.fileMu.Unlock()
	if v.Count() != 1 {
		return nil, fmt.Errorf("%w: %s is not a single revision", ErrVersionMismatch, v)
	}
	f := &File{name: name, version: v, model: weak.Make(m)}
	if err := m.addFile(f); err != nil {
		return nil, err
	}
	m.root.mu.Lock()
	m.root.files = append(m.root.files, weak.Make(f))
	m.root.mu.Unlock()
	m.log.Debug("created file", "file", name)
	return f, nil
}

func (m *Model) addFile(f *File) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.files {
		if o.Name() == f.Name() {
			return fmt.Errorf("%w: %s", ErrDuplicateFile, f.Name())
		}
	}
	m.files = append(m.files, f)
	return nil
}

// GetElementByPath returns the identifiable node at path, nil if there is
// none.
func (m *Model) GetElementByPath(path string) *Node {
	m.mu.Lock()
	w, ok := m.paths[path]
	m.mu.Unlock()
	if !ok {
		return nil
	}
	n := w.Value()
	if n == nil || n.IsDeleted() {
		return nil
	}
	return n
}

// ReferencesTo returns the reference nodes whose target path is path.
func (m *Model) ReferencesTo(path string) []*Node {
	m.mu.Lock()
	ws := slices.Clone(m.refs[path])
	m.mu.Unlock()
	var res []*Node
	for _, w := range ws {
		if n := w.Value(); n != nil && !n.IsDeleted() {
			res = append(res, n)
		}
	}
	return res
}

// IdentifiablePaths returns the paths of all identifiable nodes, sorted.
func (m *Model) IdentifiablePaths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make([]string, 0, len(m.paths))
	for p, w := range m.paths {
		if w.Value() != nil {
			res = append(res, p)
		}
	}
	slices.Sort(res)
	return res
}

// CheckReferences returns every reference node whose target does not
// resolve to an element of the required kind.
func (m *Model) CheckReferences() []*Node {
	m.mu.Lock()
	var all []*Node
	for _, ws := range m.refs {
		for _, w := range ws {
			if n := w.Value(); n != nil {
				all = append(all, n)
			}
		}
	}
	m.mu.Unlock()
	var bad []*Node
	for _, n := range all {
		if n.IsDeleted() {
			continue
		}
		if _, err := n.ReferenceTarget(); err != nil {
			bad = append(bad, n)
		}
	}
	return bad
}
