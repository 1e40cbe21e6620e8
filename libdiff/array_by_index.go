package libdiff

import (
	"slices"
	"strconv"

	"github.com/signadot/docgraph/graph"
	"github.com/signadot/docgraph/spec"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// Diff returns the changes turning the subtree of from into that of to.
// Paths are written relative to from, one segment per element.
func Diff(from, to *graph.Node) []Change {
	var res []Change
	diffNode(from, to, "/"+segment(from, nil), &res)
	return res
}

func diffNode(from, to *graph.Node, path string, res *[]Change) {
	if from.Name() != to.Name() {
		*res = append(*res, MakeDiff(path, from, to))
		return
	}
	diffAttrs(from.Attributes(), to.Attributes(), path, res)
	switch from.ContentMode() {
	case spec.Characters:
		fv, fok := from.CharacterData()
		tv, tok := to.CharacterData()
		switch {
		case fok && !tok:
			*res = append(*res, Change{Op: Delete, Path: path, From: fv.Text()})
		case !fok && tok:
			*res = append(*res, Change{Op: Insert, Path: path, To: tv.Text()})
		case fok && !fv.Equal(tv):
			*res = append(*res, Change{Op: Replace, Path: path, From: fv.Text(), To: tv.Text()})
		}
		return
	case spec.Mixed:
		if !graph.Equal(from, to) {
			*res = append(*res, MakeDiff(path, from, to))
		}
		return
	}
	diffChildren(from.SubElements(), to.SubElements(), path, res)
}

func diffAttrs(from, to []graph.Attribute, path string, res *[]Change) {
	for _, fa := range from {
		at := path + "@" + string(fa.Name)
		i := slices.IndexFunc(to, func(a graph.Attribute) bool { return a.Name == fa.Name })
		switch {
		case i < 0:
			*res = append(*res, Change{Op: Delete, Path: at, From: fa.Value.Text()})
		case !fa.Value.Equal(to[i].Value):
			*res = append(*res, Change{Op: Replace, Path: at, From: fa.Value.Text(), To: to[i].Value.Text()})
		}
	}
	for _, ta := range to {
		if !slices.ContainsFunc(from, func(a graph.Attribute) bool { return a.Name == ta.Name }) {
			*res = append(*res, Change{Op: Insert, Path: path + "@" + string(ta.Name), To: ta.Value.Text()})
		}
	}
}

// diffChildren aligns the children of two nodes by their summaries:
//
//  1. every child is summarized by its element name and item name
//  2. the sequences of summaries are diffed, one rune per summary
//  3. aligned children are compared recursively
//  4. a deletion directly followed by an insertion at the same place
//     becomes a replacement
func diffChildren(from, to []*graph.Node, path string, res *[]Change) {
	m := map[string]rune{}
	fromRunes := mapValues(m, from)
	toRunes := mapValues(m, to)
	diffCfg := diffpatch.New()
	diffs := diffCfg.DiffMainRunes(fromRunes, toRunes, false)

	fi, ti := 0, 0
	delIndex := -1
	for i := range diffs {
		diff := &diffs[i]
		n := len([]rune(diff.Text))
		switch diff.Type {
		case diffpatch.DiffDelete:
			for range n {
				*res = append(*res, MakeDiff(path+"/"+segment(from[fi], from), from[fi], nil))
				delIndex = len(*res) - 1
				fi++
			}
		case diffpatch.DiffEqual:
			delIndex = -1
			for range n {
				diffNode(from[fi], to[ti], path+"/"+segment(from[fi], from), res)
				fi++
				ti++
			}
		case diffpatch.DiffInsert:
			for range n {
				if delIndex >= 0 && delIndex == len(*res)-1 && (*res)[delIndex].Op == Delete {
					prev := from[fi-1]
					(*res)[delIndex] = MakeDiff((*res)[delIndex].Path, prev, to[ti])
				} else {
					*res = append(*res, MakeDiff(path+"/"+segment(to[ti], to), nil, to[ti]))
				}
				ti++
				delIndex = -1
			}
		}
	}
}

func mapValues(m map[string]rune, nodes []*graph.Node) []rune {
	rs := make([]rune, len(nodes))
	for i, n := range nodes {
		sum := summaryStr(n)
		r, ok := m[sum]
		if !ok {
			r = rune(len(m))
			m[sum] = r
		}
		rs[i] = r
	}
	return rs
}

func summaryStr(n *graph.Node) string {
	if name, ok := n.ItemName(); ok {
		return string(n.Name()) + "\x00" + name
	}
	return string(n.Name())
}

// segment names n among its siblings: by item name if it has one, by
// position among same-named siblings if that is ambiguous.
func segment(n *graph.Node, siblings []*graph.Node) string {
	if name, ok := n.ItemName(); ok {
		return string(n.Name()) + "[" + name + "]"
	}
	idx, count := 0, 0
	for _, s := range siblings {
		if s.Name() != n.Name() {
			continue
		}
		if s == n {
			idx = count
		}
		count++
	}
	if count > 1 {
		return string(n.Name()) + "[" + strconv.Itoa(idx) + "]"
	}
	return string(n.Name())
}
