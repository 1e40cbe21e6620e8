package graph

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync/atomic"
	"weak"

	"github.com/signadot/docgraph/debug"
	"github.com/signadot/docgraph/spec"
)

type pathEntry struct {
	path string
	node *Node
}

type refEntry struct {
	target string
	node   *Node
}

// entries is the cache contribution of a subtree.
type entries struct {
	paths []pathEntry
	refs  []refEntry
	// base is the identifiable element the paths are named under. When
	// set, the entries only apply while it still holds its path.
	base *pathEntry
}

// errStale reports that a path computed before taking the model lock was
// changed by a concurrent rename or move.
var errStale = fmt.Errorf("%w: path changed concurrently", ErrParentLocked)

// staleRetries bounds how often an operation is recomputed after errStale.
const staleRetries = 5

func retryStale[T any](op func() (T, error)) (T, error) {
	var (
		res T
		err error
	)
	for range staleRetries {
		res, err = op()
		if !errors.Is(err, errStale) {
			break
		}
	}
	return res, err
}

// collectEntries gathers the cache entries of the subtree rooted at n,
// which is named under base. v is the revision governing n unless n has a
// local file membership of its own.
func collectEntries(n *Node, base string, v spec.Version, es *entries) {
	collectEntriesCount(n, base, v, es)
}

// collectEntriesCount is collectEntries returning the number of nodes
// visited.
func collectEntriesCount(n *Node, base string, v spec.Version, es *entries) int {
	if local := n.LocalFiles(); len(local) > 0 {
		v = minVersion(local)
	}
	content, _ := n.snapshot()
	path := base
	if n.engine.RequiresIdentity(n.typ, v) {
		if name := itemNameOf(n.engine, content); name != "" {
			path = base + "/" + name
			es.paths = append(es.paths, pathEntry{path: path, node: n})
		}
	}
	if n.engine.IsReference(n.typ) {
		for _, c := range content {
			if cd, ok := c.(CharacterData); ok && cd.Text() != "" {
				es.refs = append(es.refs, refEntry{target: cd.Text(), node: n})
			}
		}
	}
	count := 1
	for _, c := range content {
		if sub, ok := c.(*Node); ok {
			count += collectEntriesCount(sub, path, v, es)
		}
	}
	return count
}

func itemNameOf(e spec.Engine, content []Content) string {
	for _, c := range content {
		if sub, ok := c.(*Node); ok && sub.name == e.IdentityElement() {
			v, _ := sub.CharacterData()
			return v.Text()
		}
	}
	return ""
}

// checkBaseLocked verifies that the base of es still holds its path.
func (m *Model) checkBaseLocked(es *entries) error {
	if es.base == nil {
		return nil
	}
	if m.paths[es.base.path].Value() != es.base.node {
		return fmt.Errorf("%w: %s", errStale, es.base.path)
	}
	return nil
}

// checkPathsLocked verifies that none of paths is taken by a live node
// other than the one registering it.
func (m *Model) checkPathsLocked(paths []pathEntry) error {
	seen := map[string]bool{}
	for _, pe := range paths {
		if seen[pe.path] {
			return fmt.Errorf("%w: %s", ErrDuplicateName, pe.path)
		}
		seen[pe.path] = true
		if n := m.paths[pe.path].Value(); n != nil && n != pe.node {
			return fmt.Errorf("%w: %s", ErrDuplicateName, pe.path)
		}
	}
	return nil
}

// register adds the entries to the caches, failing without change if a
// path is taken.
func (m *Model) register(es *entries) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkBaseLocked(es); err != nil {
		return err
	}
	if err := m.checkPathsLocked(es.paths); err != nil {
		return err
	}
	m.addLocked(es)
	return nil
}

func (m *Model) addLocked(es *entries) {
	for _, pe := range es.paths {
		m.paths[pe.path] = weak.Make(pe.node)
	}
	for _, re := range es.refs {
		m.addRefLocked(re.target, re.node)
	}
	if debug.Cache() {
		debug.Logf("registered %d paths %d refs\n", len(es.paths), len(es.refs))
	}
}

// evict removes the entries from the caches. An entry held by another
// live node is left alone and reported.
func (m *Model) evict(es *entries) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var err error
	for _, pe := range es.paths {
		w, ok := m.paths[pe.path]
		if !ok {
			continue
		}
		if n := w.Value(); n != nil && n != pe.node {
			err = fmt.Errorf("%w: %s held by another element", ErrCacheInconsistent, pe.path)
			continue
		}
		delete(m.paths, pe.path)
	}
	for _, re := range es.refs {
		m.removeRefLocked(re.target, re.node)
	}
	if debug.Cache() {
		debug.Logf("evicted %d paths %d refs\n", len(es.paths), len(es.refs))
	}
	return err
}

// evictExact removes the entries from the caches, failing without change
// with errStale unless each path is still held by its node.
func (m *Model) evictExact(es *entries) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, pe := range es.paths {
		if m.paths[pe.path].Value() != pe.node {
			return fmt.Errorf("%w: %s", errStale, pe.path)
		}
	}
	for _, pe := range es.paths {
		delete(m.paths, pe.path)
	}
	for _, re := range es.refs {
		m.removeRefLocked(re.target, re.node)
	}
	return nil
}

// pickNamesLocked chooses the item names of tops under dst. A top keeps its
// name where that is free, the others get the first free of name_1,
// name_2, ... Each choice is reserved so no two tops share a name. Paths
// held by nodes in moving count as free.
func (m *Model) pickNamesLocked(dst string, items []string, moving map[*Node]bool) []string {
	reserved := map[string]bool{}
	free := func(name string) bool {
		p := dst + "/" + name
		if reserved[p] {
			return false
		}
		o := m.paths[p].Value()
		return o == nil || moving[o]
	}
	names := make([]string, len(items))
	for i, item := range items {
		if free(item) {
			names[i] = item
			reserved[dst+"/"+item] = true
		}
	}
	for i, item := range items {
		if names[i] != "" {
			continue
		}
		for k := 1; ; k++ {
			cand := fmt.Sprintf("%s_%d", item, k)
			if free(cand) {
				names[i] = cand
				reserved[dst+"/"+cand] = true
				break
			}
		}
	}
	return names
}

// placement is the result of naming a subtree's entries under a new base.
type placement struct {
	entries *entries
	// renamed maps the top identifiable nodes whose item name had to
	// change to their new item name.
	renamed map[*Node]string
	pairs   []prefixPair
}

type prefixPair struct {
	old, new string
}

// placeLocked rebases es, named under srcBase, to dstBase, choosing free names
// for its top identifiable nodes.
func (m *Model) placeLocked(es *entries, srcBase, dstBase string, moving map[*Node]bool) *placement {
	tops := topIdentifiables(es)
	items := make([]string, len(tops))
	for i, t := range tops {
		items[i] = t.path[len(srcBase)+1:]
	}
	names := m.pickNamesLocked(dstBase, items, moving)
	pl := &placement{
		entries: &entries{refs: es.refs, base: es.base},
		renamed: map[*Node]string{},
	}
	for i, t := range tops {
		pl.pairs = append(pl.pairs, prefixPair{old: t.path, new: dstBase + "/" + names[i]})
		if names[i] != items[i] {
			pl.renamed[t.node] = names[i]
		}
	}
	for _, pe := range es.paths {
		np := pe.path
		for _, pp := range pl.pairs {
			if underPrefix(pe.path, pp.old) {
				np = pp.new + pe.path[len(pp.old):]
				break
			}
		}
		pl.entries.paths = append(pl.entries.paths, pathEntry{path: np, node: pe.node})
	}
	return pl
}

// registerPlaced registers es, named under srcBase, beneath dstBase in one
// step, renaming colliding top identifiable nodes. The caller applies the
// returned renames to the identity children.
func (m *Model) registerPlaced(es *entries, srcBase, dstBase string) (*placement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkBaseLocked(es); err != nil {
		return nil, err
	}
	pl := m.placeLocked(es, srcBase, dstBase, nil)
	if err := m.checkPathsLocked(pl.entries.paths); err != nil {
		return nil, err
	}
	m.addLocked(pl.entries)
	return pl, nil
}

// relocate re-roots the entries old, of a subtree of m named under
// srcBase, beneath dstBase of the same model, whose identifiable anchor is
// dst. Either every entry moves or none does.
func (m *Model) relocate(old *entries, srcBase, dstBase string, dst *pathEntry) (*placement, []referrer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkBaseLocked(old); err != nil {
		return nil, nil, err
	}
	if err := m.checkBaseLocked(&entries{base: dst}); err != nil {
		return nil, nil, err
	}
	moving := make(map[*Node]bool, len(old.paths))
	for _, pe := range old.paths {
		if m.paths[pe.path].Value() != pe.node {
			return nil, nil, fmt.Errorf("%w: %s", errStale, pe.path)
		}
		moving[pe.node] = true
	}
	pl := m.placeLocked(old, srcBase, dstBase, moving)
	rs, err := m.rekeyLocked(pl.pairs)
	if err != nil {
		return nil, nil, err
	}
	return pl, rs, nil
}

func (m *Model) addRefLocked(target string, n *Node) {
	w := weak.Make(n)
	if slices.Contains(m.refs[target], w) {
		return
	}
	m.refs[target] = append(m.refs[target], w)
}

func (m *Model) removeRefLocked(target string, n *Node) {
	w := weak.Make(n)
	ws := slices.DeleteFunc(m.refs[target], func(o weak.Pointer[Node]) bool {
		return o == w || o.Value() == nil
	})
	if len(ws) == 0 {
		delete(m.refs, target)
		return
	}
	m.refs[target] = ws
}

// refClock orders changes of reference cache keys across all models.
var refClock atomic.Uint64

// moveRef re-keys the reference entry of n from old to target. The caller
// holds n's lock and stores target.
func (m *Model) moveRef(old, target string, n *Node) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old != "" {
		m.removeRefLocked(old, n)
	}
	if target != "" {
		m.addRefLocked(target, n)
	}
	n.refSeq = refClock.Add(1)
}

func underPrefix(p, prefix string) bool {
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}

type referrer struct {
	node     *Node
	old, new string
	seq      uint64
}

// renamePrefix re-keys every path and reference target under old, the
// path of n, to new and returns the references whose stored target must
// be rewritten.
func (m *Model) renamePrefix(old, new string, n *Node) ([]referrer, error) {
	if old == new {
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.paths[old].Value() != n {
		return nil, fmt.Errorf("%w: %s", errStale, old)
	}
	return m.rekeyLocked([]prefixPair{{old: old, new: new}})
}

// rekeyLocked moves every path and reference target under each old prefix
// to its new prefix. It fails without change if a new path is held by a
// node which does not move.
func (m *Model) rekeyLocked(pairs []prefixPair) ([]referrer, error) {
	rekey := func(p string) (string, bool) {
		for _, pp := range pairs {
			if underPrefix(p, pp.old) {
				return pp.new + p[len(pp.old):], true
			}
		}
		return "", false
	}
	moved := map[string]weak.Pointer[Node]{}
	for p, w := range m.paths {
		np, ok := rekey(p)
		if !ok {
			continue
		}
		if _, dup := moved[np]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, np)
		}
		moved[np] = w
	}
	for p := range moved {
		if _, vacated := rekey(p); vacated {
			continue
		}
		if o, ok := m.paths[p]; ok && o.Value() != nil {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, p)
		}
	}
	for p := range m.paths {
		if _, ok := rekey(p); ok {
			delete(m.paths, p)
		}
	}
	maps.Copy(m.paths, moved)
	var res []referrer
	seq := refClock.Add(1)
	refs := map[string][]weak.Pointer[Node]{}
	for target, ws := range m.refs {
		nt, ok := rekey(target)
		if !ok {
			continue
		}
		delete(m.refs, target)
		for _, w := range ws {
			n := w.Value()
			if n == nil {
				continue
			}
			refs[nt] = append(refs[nt], w)
			res = append(res, referrer{node: n, old: target, new: nt, seq: seq})
		}
	}
	for nt, ws := range refs {
		m.refs[nt] = append(m.refs[nt], ws...)
	}
	if debug.Cache() {
		debug.Logf("re-keyed %d prefixes, %d paths %d referrers\n", len(pairs), len(moved), len(res))
	}
	return res, nil
}

// evictSubtree removes the entries of a destroyed subtree. es was
// collected from visited nodes before destruction and nodes holds every
// node destruction reached. If es no longer matches the caches, because
// the subtree was renamed or grew meanwhile, the caches are swept for
// nodes instead.
func (m *Model) evictSubtree(es *entries, visited int, nodes map[*Node]bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exact := visited == len(nodes)
	for _, pe := range es.paths {
		if m.paths[pe.path].Value() != pe.node {
			exact = false
			continue
		}
		delete(m.paths, pe.path)
	}
	for _, re := range es.refs {
		m.removeRefLocked(re.target, re.node)
	}
	if exact {
		return
	}
	for p, w := range m.paths {
		if nodes[w.Value()] {
			delete(m.paths, p)
		}
	}
	for target, ws := range m.refs {
		ws = slices.DeleteFunc(ws, func(w weak.Pointer[Node]) bool { return nodes[w.Value()] })
		if len(ws) == 0 {
			delete(m.refs, target)
			continue
		}
		m.refs[target] = ws
	}
}

// rewriteReferrers updates the stored target of references after a
// rename. It runs with no lock held, so rewrites of one reference may
// arrive out of order; one older than the last cache change the reference
// followed is dropped.
func rewriteReferrers(rs []referrer) {
	for _, r := range rs {
		n := r.node
		n.mu.Lock()
		if n.parent.kind != parentDeleted && r.seq > n.refSeq {
			n.content = []Content{CharacterData{spec.StringValue(r.new)}}
			n.refSeq = r.seq
		}
		n.mu.Unlock()
	}
}

// rebuildCaches recomputes both caches from the graph. Subtrees with a
// local file membership are named in their own files' revision.
func (m *Model) rebuildCaches() error {
	es := &entries{}
	c, err := m.root.chain()
	if err != nil {
		return err
	}
	collectEntries(m.root, "", c.version(0), es)
	m.mu.Lock()
	m.paths = map[string]weak.Pointer[Node]{}
	m.refs = map[string][]weak.Pointer[Node]{}
	m.mu.Unlock()
	return m.register(es)
}
