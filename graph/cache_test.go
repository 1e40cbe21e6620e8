package graph

import (
	"fmt"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sync/errgroup"
)

// checkCaches verifies that the path cache and the graph agree.
func checkCaches(t *testing.T, m *Model) {
	t.Helper()
	paths := m.IdentifiablePaths()
	for _, p := range paths {
		n := mustGet(t, m, p)
		if got, err := n.Path(); err != nil || got != p {
			t.Errorf("%s cached for an element at %q (%v)", p, got, err)
		}
	}
	var live []string
	m.Root().Walk(func(n *Node, _ int) bool {
		if !n.IsIdentifiable() {
			return true
		}
		p, err := n.Path()
		if err != nil {
			t.Errorf("%s: %v", n, err)
			return true
		}
		live = append(live, p)
		return true
	})
	slices.Sort(live)
	if diff := cmp.Diff(live, paths); diff != "" {
		t.Errorf("cache (-graph +cache):\n%s", diff)
	}
}

func TestPathCacheConcurrentEdits(t *testing.T) {
	const rounds = 500
	m := newModel()
	mustLoad(t, m, "c.arxml", arxml(schema440, `<AR-PACKAGE><SHORT-NAME>P0</SHORT-NAME><ELEMENTS/></AR-PACKAGE>`))
	pkg := mustGet(t, m, "/P0")
	elements := pkg.SubElement("ELEMENTS")

	created := make(chan *Node, rounds)
	var g errgroup.Group
	g.Go(func() error {
		for i := range rounds {
			err := pkg.SetItemName(fmt.Sprintf("P%d", (i+1)%2))
			if err != nil && !IsRetryable(err) {
				return fmt.Errorf("rename %d: %w", i, err)
			}
		}
		return nil
	})
	g.Go(func() error {
		defer close(created)
		for i := range rounds {
			n, err := elements.CreateNamedSubElement("SW-BASE-TYPE", fmt.Sprintf("E%d", i))
			switch {
			case err == nil:
				created <- n
			case !IsRetryable(err):
				return fmt.Errorf("create %d: %w", i, err)
			}
		}
		return nil
	})
	g.Go(func() error {
		i := 0
		for n := range created {
			if i++; i%3 != 0 {
				continue
			}
			if err := elements.RemoveSubElement(n); err != nil && !IsRetryable(err) {
				return fmt.Errorf("remove: %w", err)
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	checkCaches(t, m)
	if len(m.IdentifiablePaths()) < 2 {
		t.Errorf("paths %v", m.IdentifiablePaths())
	}
}

func TestPathCacheConcurrentMoves(t *testing.T) {
	const rounds = 200
	m := baseModel(t)
	n := mustGet(t, m, "/Pkg/Uint8")
	from := mustGet(t, m, "/Pkg").SubElement("ELEMENTS")
	to := mustGet(t, m, "/Other").SubElement("ELEMENTS")
	other := mustGet(t, m, "/Other")

	var g errgroup.Group
	g.Go(func() error {
		for i := range rounds {
			dst := to
			if i%2 == 1 {
				dst = from
			}
			if _, err := dst.MoveElementHere(n); err != nil && !IsRetryable(err) {
				return fmt.Errorf("move %d: %w", i, err)
			}
		}
		return nil
	})
	g.Go(func() error {
		for i := range rounds {
			err := other.SetItemName(fmt.Sprintf("Other%d", i%3))
			if err != nil && !IsRetryable(err) {
				return fmt.Errorf("rename %d: %w", i, err)
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	checkCaches(t, m)
	p, err := n.Path()
	if err != nil {
		t.Fatal(err)
	}
	if got, err := speedRef(t, m).ReferenceTarget(); err != nil || got != n {
		t.Errorf("reference from %s resolves to %v (%v)", p, got, err)
	}
}
