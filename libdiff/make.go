package libdiff

import (
	"fmt"
	"strings"

	"github.com/signadot/docgraph/encode"
	"github.com/signadot/docgraph/graph"
)

// Change is a difference at Path. From and To hold the text of the
// removed and added side, empty where a side does not exist.
type Change struct {
	Op   Op
	Path string
	From string
	To   string
}

func (c Change) String() string {
	switch c.Op {
	case Delete:
		return fmt.Sprintf("%s %s: %s", c.Op, c.Path, c.From)
	case Insert:
		return fmt.Sprintf("%s %s: %s", c.Op, c.Path, c.To)
	default:
		return fmt.Sprintf("%s %s: %s -> %s", c.Op, c.Path, c.From, c.To)
	}
}

// MakeDiff records the replacement of from by to at path; either may be
// nil.
func MakeDiff(path string, from, to *graph.Node) Change {
	switch {
	case from == nil:
		return Change{Op: Insert, Path: path, To: text(to)}
	case to == nil:
		return Change{Op: Delete, Path: path, From: text(from)}
	default:
		return Change{Op: Replace, Path: path, From: text(from), To: text(to)}
	}
}

// text renders n on a single line.
func text(n *graph.Node) string {
	return strings.ReplaceAll(encode.String(n, encode.Indent(0)), "\n", "")
}
