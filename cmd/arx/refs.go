package main

import (
	"fmt"
	"io"

	"github.com/signadot/docgraph/graph"

	"github.com/scott-cotton/cli"
)

func refs(cfg *RefsConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Refs.Parse(cc, args)
	if err != nil {
		cfg.Refs.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if cfg.Check {
		m, _, err := cfg.load(args)
		if err != nil {
			return err
		}
		bad := m.CheckReferences()
		for _, n := range bad {
			if err := writeRef(cc.Out, n); err != nil {
				return err
			}
		}
		if len(bad) > 0 {
			return cli.ExitCodeErr(1)
		}
		return nil
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: refs requires a path argument or -check", cli.ErrUsage)
	}
	m, _, err := cfg.load(args[1:])
	if err != nil {
		return err
	}
	for _, n := range m.ReferencesTo(args[0]) {
		if err := writeRef(cc.Out, n); err != nil {
			return err
		}
	}
	return nil
}

// writeRef writes the path of the identifiable element holding reference
// n, its name and its target text.
func writeRef(w io.Writer, n *graph.Node) error {
	holder := "/"
	for p, _ := n.Parent(); p != nil; p, _ = p.Parent() {
		if path, err := p.Path(); err == nil {
			holder = path
			break
		}
	}
	target, _ := n.CharacterData()
	_, err := fmt.Fprintf(w, "%s\t%s\t%s\n", holder, n.Name(), target.Text())
	return err
}
