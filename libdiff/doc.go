// Package libdiff compares document graphs and their serializations.
//
// # Usage
//
//	// structural changes between two subtrees
//	changes := libdiff.Diff(oldRoot, newRoot)
//	for _, c := range changes {
//	    fmt.Println(c)
//	}
//
//	// undo direction
//	back := libdiff.Reverse(changes)
//
//	// line diff of two texts
//	for _, l := range libdiff.Lines(oldText, newText) {
//	    fmt.Println(l)
//	}
//
// Children are aligned by element name and item name, so reordering and
// renaming show up as deletions and insertions at the element level and
// changed character data as replacements.
package libdiff
