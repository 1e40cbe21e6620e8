package graph

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"weak"

	"github.com/signadot/docgraph/debug"
	"github.com/signadot/docgraph/parse"
	"github.com/signadot/docgraph/spec"
	"golang.org/x/sync/errgroup"
)

// candidate is the tree of a parsed file before it joins a model.
type candidate struct {
	file     *File
	root     *Node
	entries  entries
	warnings []error
}

// LoadBuffer parses buf as a file named name and merges it into m. In
// strict mode every recoverable problem is an error; otherwise problems
// are returned as warnings.
func (m *Model) LoadBuffer(buf []byte, name string, strict bool) (*File, []error, error) {
	cand, err := m.buildCandidate(buf, name, strict)
	if err != nil {
		return nil, nil, err
	}
	if err := m.integrate(cand); err != nil {
		return nil, cand.warnings, err
	}
	return cand.file, cand.warnings, nil
}

// LoadFile loads the file at path, using path as the file name.
func (m *Model) LoadFile(path string, strict bool) (*File, []error, error) {
	d, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return m.LoadBuffer(d, path, strict)
}

// LoadFiles parses the files at paths in parallel and merges them into m
// in argument order. Loading stops at the first failure; files merged
// before it stay in the model.
func (m *Model) LoadFiles(ctx context.Context, paths []string, strict bool) ([]*File, []error, error) {
	cands := make([]*candidate, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			d, err := os.ReadFile(p)
			if err != nil {
				return err
			}
			cand, err := m.buildCandidate(d, p, strict)
			if err != nil {
				return err
			}
			cands[i] = cand
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	var (
		files    []*File
		warnings []error
	)
	for _, cand := range cands {
		warnings = append(warnings, cand.warnings...)
		if err := m.integrate(cand); err != nil {
			return files, warnings, err
		}
		files = append(files, cand.file)
	}
	return files, warnings, nil
}

func (m *Model) buildCandidate(buf []byte, name string, strict bool) (*candidate, error) {
	doc, err := parse.Parse(buf, parse.ParseFilename(name))
	if err != nil {
		return nil, err
	}
	e := m.engine
	b := &builder{e: e, strict: strict, filename: name}
	b.warnings = append(b.warnings, doc.Warnings...)
	rootName, rootType := e.Root()
	if doc.Root.Name != string(rootName) {
		return nil, fmt.Errorf("%s:%d: %w: root element %s, expected %s", name, doc.Root.Line, ErrInvalidSubElement, doc.Root.Name, rootName)
	}
	v, err := b.version(doc.Root)
	if err != nil {
		return nil, err
	}
	b.v = v
	f := &File{name: name, version: v, standalone: doc.Standalone}
	root := newNode(e, rootName, rootType)
	root.files = []weak.Pointer[File]{weak.Make(f)}
	if err := b.fill(root, doc.Root); err != nil {
		return nil, err
	}
	cand := &candidate{file: f, root: root, warnings: b.warnings}
	collectEntries(root, "", v, &cand.entries)
	seen := map[string]bool{}
	for _, pe := range cand.entries.paths {
		if seen[pe.path] {
			return nil, fmt.Errorf("%s: %w: %s", name, ErrDuplicateName, pe.path)
		}
		seen[pe.path] = true
	}
	if debug.Load() {
		debug.Logf("built %s: %d identifiables, %d references, %d warnings\n",
			name, len(cand.entries.paths), len(cand.entries.refs), len(cand.warnings))
	}
	return cand, nil
}

type builder struct {
	e        spec.Engine
	v        spec.Version
	strict   bool
	filename string
	warnings []error
}

// problem reports a recoverable problem: an error in strict mode, a
// warning otherwise.
func (b *builder) problem(line int, err error, format string, args ...any) error {
	err = fmt.Errorf("%s:%d: %w: %s", b.filename, line, err, fmt.Sprintf(format, args...))
	if b.strict {
		return err
	}
	b.warnings = append(b.warnings, err)
	return nil
}

// version determines the revision of a document from the schema location
// of its root.
func (b *builder) version(root *parse.Element) (spec.Version, error) {
	loc, _ := root.Attr("xsi:schemaLocation")
	fields := strings.Fields(loc)
	if len(fields) > 0 {
		if v, ok := b.e.VersionBySchema(filepath.Base(fields[len(fields)-1])); ok {
			return v, nil
		}
	}
	vs := b.e.Versions()
	if len(vs) == 0 {
		return 0, errors.New("schema has no versions")
	}
	latest := vs[len(vs)-1]
	if err := b.problem(root.Line, ErrVersionMismatch, "unknown schema location %q, using %s", loc, latest.Name); err != nil {
		return 0, err
	}
	return latest.Version, nil
}

func isNamespaceAttr(name string) bool {
	return name == "xmlns" || strings.HasPrefix(name, "xmlns:") || strings.HasPrefix(name, "xsi:")
}

func (b *builder) fill(n *Node, el *parse.Element) error {
	for _, a := range el.Attrs {
		if isNamespaceAttr(a.Name) {
			continue
		}
		name := spec.AttributeName(a.Name)
		as, ok := b.e.Attribute(n.typ, name)
		if !ok || !as.Versions.Has(b.v) {
			if err := b.problem(el.Line, ErrInvalidAttribute, "%s on %s", a.Name, el.Name); err != nil {
				return err
			}
			continue
		}
		val := spec.StringValue(a.Value)
		if as.Value != nil {
			pv, err := as.Value.Parse(a.Value)
			if err != nil {
				if err := b.problem(el.Line, ErrInvalidValue, "attribute %s of %s: %v", a.Name, el.Name, err); err != nil {
					return err
				}
				continue
			}
			val = pv
		}
		n.attrs = append(n.attrs, Attribute{Name: name, Value: val})
	}
	switch mode := b.e.ContentMode(n.typ); mode {
	case spec.Characters:
		if el.HasElements() {
			if err := b.problem(el.Line, ErrContentType, "%s holds elements", el.Name); err != nil {
				return err
			}
		}
		if len(el.Content) == 0 {
			return nil
		}
		text := el.Text()
		val := spec.StringValue(text)
		if cs := b.e.CharacterSpec(n.typ); cs != nil {
			pv, err := cs.Parse(text)
			if err != nil {
				if err := b.problem(el.Line, ErrInvalidValue, "%s: %v", el.Name, err); err != nil {
					return err
				}
			} else {
				val = pv
			}
		}
		n.content = []Content{CharacterData{val}}
	default:
		for _, c := range el.Content {
			switch c := c.(type) {
			case parse.Text:
				if mode == spec.Mixed {
					n.content = append(n.content, CharacterData{spec.StringValue(string(c))})
					continue
				}
				if strings.TrimSpace(string(c)) != "" {
					if err := b.problem(el.Line, ErrContentType, "text in %s", el.Name); err != nil {
						return err
					}
				}
			case *parse.Element:
				if err := b.child(n, c); err != nil {
					return err
				}
			}
		}
		if b.e.RequiresIdentity(n.typ, b.v) && n.identityChildLocked() == nil {
			if err := b.problem(el.Line, ErrItemNameRequired, "%s", el.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *builder) child(n *Node, el *parse.Element) error {
	name := spec.ElementName(el.Name)
	info, ok := b.e.SubElement(n.typ, name, b.v)
	if !ok {
		return b.problem(el.Line, ErrInvalidSubElement, "%s in %s", el.Name, n.name)
	}
	sub := newNode(b.e, name, info.Type)
	sub.setParentLocked(n)
	if err := b.fill(sub, el); err != nil {
		return err
	}
	n.content = append(n.content, sub)
	return nil
}

// integrate adds a candidate to m, adopting it into an empty model and
// merging it otherwise.
func (m *Model) integrate(cand *candidate) error {
	m.fileMu.Lock()
	defer m.fileMu.Unlock()
	f := cand.file
	if m.FileByName(f.name) != nil {
		return fmt.Errorf("%w: %s", ErrDuplicateFile, f.name)
	}
	f.model = weak.Make(m)
	if len(m.Files()) == 0 && len(m.root.Content()) == 0 {
		return m.adopt(cand)
	}
	return m.merge(cand)
}

func (m *Model) adopt(cand *candidate) error {
	root := m.root
	root.mu.Lock()
	root.content = cand.root.content
	root.attrs = cand.root.attrs
	root.files = []weak.Pointer[File]{weak.Make(cand.file)}
	for _, c := range root.content {
		if sub, ok := c.(*Node); ok {
			sub.setParentLocked(root)
		}
	}
	root.mu.Unlock()
	// entries were collected on the candidate root
	es := cand.entries
	for i := range es.paths {
		if es.paths[i].node == cand.root {
			es.paths[i].node = root
		}
	}
	if err := m.addFile(cand.file); err != nil {
		return err
	}
	if err := m.register(&es); err != nil {
		return err
	}
	m.log.Info("loaded file", "file", cand.file.name, "identifiables", len(es.paths))
	return nil
}
