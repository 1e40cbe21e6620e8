package graph

import (
	"fmt"
	"strings"

	"github.com/signadot/docgraph/debug"
	"github.com/signadot/docgraph/spec"
)

// link is one node on the way from a node up to its root, captured while
// the node was locked.
type link struct {
	node     *Node
	local    []*File
	itemName string
}

// chain is the ancestor-or-self list of a node, innermost first.
type chain struct {
	links []link
	model *Model
}

// chain walks from n to its root. Every node on the way is locked in turn
// with a bounded wait and at most one lock is held at any time.
func (n *Node) chain() (*chain, error) {
	c := &chain{}
	cur := n
	for {
		if !cur.mu.TryLockFor(lockTimeout) {
			if debug.Lock() {
				debug.Logf("lock timeout on %s walking up from %s\n", cur, n)
			}
			return nil, fmt.Errorf("%w: %s", ErrParentLocked, cur.name)
		}
		if cur.parent.kind == parentDeleted {
			cur.mu.Unlock()
			return nil, ErrItemDeleted
		}
		l := link{node: cur, local: liveFiles(cur.files)}
		sn := cur.identityChildLocked()
		parent := cur.parent
		cur.mu.Unlock()
		if sn != nil {
			name, err := sn.itemText()
			if err != nil {
				return nil, err
			}
			l.itemName = name
		}
		c.links = append(c.links, l)
		switch parent.kind {
		case parentNode:
			p := parent.node.Value()
			if p == nil {
				return nil, ErrItemDeleted
			}
			cur = p
		case parentModel:
			c.model = parent.model.Value()
			if c.model == nil {
				return nil, ErrItemDeleted
			}
			return c, nil
		default:
			return c, nil
		}
	}
}

// files returns the effective file membership of links[i].
func (c *chain) files(i int) []*File {
	for j := i; j < len(c.links); j++ {
		if len(c.links[j].local) > 0 {
			return c.links[j].local
		}
	}
	return nil
}

// version returns the lowest revision of the files of links[i].
func (c *chain) version(i int) spec.Version {
	return minVersion(c.files(i))
}

func minVersion(files []*File) spec.Version {
	var vs spec.Version
	for _, f := range files {
		vs |= f.Version()
	}
	if vs == 0 {
		return spec.Version(1)
	}
	return vs.Min()
}

// identifiable reports whether links[i] carries an item name which its
// type requires.
func (c *chain) identifiable(i int) bool {
	l := c.links[i]
	return l.itemName != "" && l.node.engine.RequiresIdentity(l.node.typ, c.version(i))
}

// path returns the path of the nearest identifiable node among links[i:],
// "" if there is none.
func (c *chain) path(i int) string {
	var segs []string
	for j := len(c.links) - 1; j >= i; j-- {
		if c.identifiable(j) {
			segs = append(segs, c.links[j].itemName)
		}
	}
	if len(segs) == 0 {
		return ""
	}
	return "/" + strings.Join(segs, "/")
}

// parentPath is the path under which links[0] is named.
func (c *chain) parentPath() string {
	if len(c.links) < 2 {
		return ""
	}
	return c.path(1)
}

// anchor returns the nearest identifiable node among links[i:] with its
// path, nil if there is none. Cache entries named below it are valid only
// while it holds that path.
func (c *chain) anchor(i int) *pathEntry {
	for j := i; j < len(c.links); j++ {
		if c.identifiable(j) {
			return &pathEntry{path: c.path(j), node: c.links[j].node}
		}
	}
	return nil
}

func (c *chain) contains(n *Node) bool {
	for _, l := range c.links {
		if l.node == n {
			return true
		}
	}
	return false
}

func (c *chain) root() *Node {
	return c.links[len(c.links)-1].node
}

// Model returns the model n belongs to, nil for a detached tree.
func (n *Node) Model() (*Model, error) {
	c, err := n.chain()
	if err != nil {
		return nil, err
	}
	return c.model, nil
}

// Path returns the path of an identifiable node.
func (n *Node) Path() (string, error) {
	c, err := n.chain()
	if err != nil {
		return "", err
	}
	if !c.identifiable(0) {
		return "", fmt.Errorf("%w: %s", ErrNotIdentifiable, n.name)
	}
	return c.path(0), nil
}

// IsIdentifiable reports whether n has an item name its type requires.
func (n *Node) IsIdentifiable() bool {
	c, err := n.chain()
	if err != nil {
		return false
	}
	return c.identifiable(0)
}

// Files returns the effective file membership of n.
func (n *Node) Files() ([]*File, error) {
	c, err := n.chain()
	if err != nil {
		return nil, err
	}
	return c.files(0), nil
}

// MinVersion returns the lowest revision among the files n belongs to.
func (n *Node) MinVersion() (spec.Version, error) {
	c, err := n.chain()
	if err != nil {
		return 0, err
	}
	return c.version(0), nil
}

// LocalFiles returns the local file membership of n. An empty result means
// the membership is inherited.
func (n *Node) LocalFiles() []*File {
	n.mu.Lock()
	defer n.mu.Unlock()
	return liveFiles(n.files)
}
