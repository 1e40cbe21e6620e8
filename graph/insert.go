package graph

import (
	"fmt"

	"github.com/signadot/docgraph/spec"
)

// insertRange computes the range of positions [start, end] at which an
// element named name may be inserted into content of type parent, given as
// the names of its items ("" for character data).
func insertRange(e spec.Engine, parent spec.ElementType, content []spec.ElementName, name spec.ElementName, v spec.Version) (int, int, error) {
	mode := e.ContentMode(parent)
	if !mode.HasElements() {
		return 0, 0, fmt.Errorf("%w: %s has character content", ErrContentType, e.TypeName(parent))
	}
	info, ok := e.SubElement(parent, name, v)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %s in %s", ErrInvalidSubElement, name, e.TypeName(parent))
	}
	start, end := 0, 0
	for idx, exName := range content {
		if exName == "" {
			continue
		}
		ex, ok := e.SubElement(parent, exName, v)
		if !ok {
			ex, ok = e.SubElement(parent, exName, 0)
		}
		if !ok {
			continue
		}
		same := exName == name
		switch e.CommonGroupMode(parent, info.Indices, ex.Indices) {
		case spec.Sequence:
			switch spec.CompareIndices(info.Indices, ex.Indices) {
			case 0:
				if info.Multiplicity != spec.Any {
					return 0, 0, fmt.Errorf("%w: %s already present", ErrInsertionConflict, name)
				}
				end = idx + 1
			case 1:
				start = idx + 1
				end = idx + 1
			}
		case spec.Choice:
			if !same {
				return 0, 0, fmt.Errorf("%w: %s excludes %s", ErrInsertionConflict, exName, name)
			}
			if info.Multiplicity != spec.Any {
				return 0, 0, fmt.Errorf("%w: %s already present", ErrInsertionConflict, name)
			}
			end = idx + 1
		default:
			if same && info.Multiplicity != spec.Any {
				return 0, 0, fmt.Errorf("%w: %s already present", ErrInsertionConflict, name)
			}
			end = idx + 1
		}
	}
	if mode == spec.Mixed {
		end = len(content)
	}
	return start, end, nil
}

// InsertRange returns the range of positions at which a child named name
// could be inserted into n.
func (n *Node) InsertRange(name spec.ElementName) (int, int, error) {
	c, err := n.chain()
	if err != nil {
		return 0, 0, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return insertRange(n.engine, n.typ, contentNames(n.content), name, c.version(0))
}

// insertPosition resolves a requested position against n's content. pos
// < 0 selects the end of the permitted range.
func (n *Node) insertPositionLocked(name spec.ElementName, v spec.Version, pos int, skip *Node) (int, error) {
	content := n.content
	if skip != nil {
		if i := indexOf(content, skip); i >= 0 {
			content = append(content[:i:i], content[i+1:]...)
		}
	}
	start, end, err := insertRange(n.engine, n.typ, contentNames(content), name, v)
	if err != nil {
		return 0, err
	}
	if pos < 0 {
		return end, nil
	}
	if pos < start || pos > end {
		return 0, fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidPosition, pos, start, end)
	}
	return pos, nil
}

func insertContent(content []Content, pos int, c Content) []Content {
	content = append(content, nil)
	copy(content[pos+1:], content[pos:])
	content[pos] = c
	return content
}

func removeContent(content []Content, pos int) []Content {
	copy(content[pos:], content[pos+1:])
	content[len(content)-1] = nil
	return content[:len(content)-1]
}
