package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/signadot/docgraph/spec"

	"github.com/scott-cotton/cli"
)

func schema(cfg *SchemaConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Schema.Parse(cc, args)
	if err != nil {
		cfg.Schema.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	t, err := cfg.table()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cc.Out, 0, 4, 2, ' ', 0)
	defer tw.Flush()
	if len(args) == 0 {
		for _, vi := range t.Versions() {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", vi.Name, vi.Schema, vi.Version)
		}
		return nil
	}
	et, ok := t.TypeByName(args[0])
	if !ok {
		return fmt.Errorf("%w: unknown type %q", cli.ErrUsage, args[0])
	}
	fmt.Fprintf(tw, "%s\t%s\n", t.TypeName(et), t.ContentMode(et))
	for _, a := range t.Attributes(et) {
		req := ""
		if a.Required {
			req = "required"
		}
		fmt.Fprintf(tw, "  @%s\t%s\t%s\n", a.Name, req, versionNames(t, a.Versions))
	}
	for _, sub := range t.SubElements(et) {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", sub.Name, t.TypeName(sub.Type), sub.Multiplicity, versionNames(t, sub.Versions))
	}
	return nil
}

func versionNames(t *spec.Table, v spec.Version) string {
	if v&t.AllVersions() == t.AllVersions() {
		return "all"
	}
	var names []string
	for _, vi := range t.Versions() {
		if v.Has(vi.Version) {
			names = append(names, vi.Name)
		}
	}
	return strings.Join(names, ",")
}
