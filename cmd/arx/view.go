package main

import (
	"fmt"
	"io"

	"github.com/signadot/docgraph/encode"
	"github.com/signadot/docgraph/graph"
	"github.com/signadot/docgraph/spec"

	"github.com/scott-cotton/cli"
)

func view(cfg *ViewConfig, cc *cli.Context, args []string) error {
	args, err := cfg.View.Parse(cc, args)
	if err != nil {
		cfg.View.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	m, files, err := cfg.load(args)
	if err != nil {
		return err
	}
	if cfg.Merged {
		return encode.EncodeModel(m, lowestVersion(files), cc.Out, cfg.encOpts(cc.Out)...)
	}
	for i, f := range files {
		if err := viewFile(cfg.MainConfig, cc.Out, f, i > 0); err != nil {
			return fmt.Errorf("error encoding %s: %w", f.Name(), err)
		}
	}
	return nil
}

func viewFile(cfg *MainConfig, w io.Writer, f *graph.File, sep bool) error {
	if sep {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "<!-- %s -->\n", f.Name()); err != nil {
		return err
	}
	return encode.EncodeFile(f, w, cfg.encOpts(w)...)
}

// lowestVersion returns the lowest revision among files.
func lowestVersion(files []*graph.File) spec.Version {
	var v spec.Version
	for _, f := range files {
		v |= f.Version()
	}
	return v.Min()
}
