package graph

import (
	"slices"
	"weak"
)

// RemoveFile removes f from m. Elements that belonged to f only are
// removed with it. Removing the last file empties the model.
func (m *Model) RemoveFile(f *File) error {
	m.fileMu.Lock()
	defer m.fileMu.Unlock()
	files := m.Files()
	if !slices.Contains(files, f) {
		return ErrNoFile
	}
	root := m.root
	var err error
	if len(files) == 1 {
		root.mu.Lock()
		content := root.content
		root.content = nil
		root.attrs = nil
		root.files = nil
		root.mu.Unlock()
		for _, c := range content {
			if sub, ok := c.(*Node); ok {
				sub.destroy()
			}
		}
		m.mu.Lock()
		m.files = nil
		m.paths = map[string]weak.Pointer[Node]{}
		m.refs = map[string][]weak.Pointer[Node]{}
		m.mu.Unlock()
	} else {
		var es entries
		retractFile(root, f, "", minVersion(files), &es)
		root.mu.Lock()
		root.files = withoutFile(root.files, f)
		root.mu.Unlock()
		m.mu.Lock()
		m.files = slices.DeleteFunc(m.files, func(o *File) bool { return o == f })
		m.mu.Unlock()
		err = m.evict(&es)
	}
	f.mu.Lock()
	f.removed = true
	f.mu.Unlock()
	m.log.Info("removed file", "file", f.Name())
	return err
}
