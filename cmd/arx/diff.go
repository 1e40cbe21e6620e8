package main

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/signadot/docgraph/encode"
	"github.com/signadot/docgraph/graph"
	"github.com/signadot/docgraph/libdiff"
	"github.com/signadot/docgraph/spec"

	"github.com/fatih/color"
	"github.com/scott-cotton/cli"
)

func diff(cfg *DiffConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Diff.Parse(cc, args)
	if err != nil {
		cfg.Diff.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: diff requires 2 args, got %v", cli.ErrUsage, args)
	}
	a, aFiles, err := cfg.load(strings.Split(args[0], ","))
	if err != nil {
		return fmt.Errorf("error loading %s: %w", args[0], err)
	}
	b, bFiles, err := cfg.load(strings.Split(args[1], ","))
	if err != nil {
		return fmt.Errorf("error loading %s: %w", args[1], err)
	}
	if cfg.Reverse {
		a, b = b, a
		aFiles, bFiles = bFiles, aFiles
	}
	var differs bool
	if cfg.Lines {
		differs, err = diffLines(cfg, cc.Out, a, b, lowestVersion(append(aFiles, bFiles...)))
	} else {
		differs, err = diffTrees(cfg, cc.Out, a.Root(), b.Root())
	}
	if err != nil {
		return err
	}
	if differs {
		return cli.ExitCodeErr(1)
	}
	return nil
}

type diffColors struct {
	del, ins, rep func(string, ...any) string
}

func (cfg *DiffConfig) colors(w io.Writer) *diffColors {
	if !cfg.colored(w) {
		return nil
	}
	return &diffColors{
		del: color.New(color.FgRed).SprintfFunc(),
		ins: color.New(color.FgGreen).SprintfFunc(),
		rep: color.New(color.FgYellow).SprintfFunc(),
	}
}

func (dc *diffColors) paint(op libdiff.Op, s string) string {
	if dc == nil {
		return s
	}
	switch op {
	case libdiff.Delete:
		return dc.del("%s", s)
	case libdiff.Insert:
		return dc.ins("%s", s)
	case libdiff.Replace:
		return dc.rep("%s", s)
	}
	return s
}

func diffTrees(cfg *DiffConfig, w io.Writer, from, to *graph.Node) (bool, error) {
	changes := libdiff.Diff(from, to)
	dc := cfg.colors(w)
	for _, c := range changes {
		line := c.String()
		if c.Op == libdiff.Replace {
			if marked, ok := libdiff.InlineText(c.From, c.To); ok {
				line = fmt.Sprintf("%s %s: %s", c.Op, c.Path, marked)
			}
		}
		if _, err := fmt.Fprintln(w, dc.paint(c.Op, line)); err != nil {
			return false, err
		}
	}
	return len(changes) > 0, nil
}

// diffLines compares the merged serializations of a and b in revision v.
func diffLines(cfg *DiffConfig, w io.Writer, a, b *graph.Model, v spec.Version) (bool, error) {
	var ab, bb bytes.Buffer
	opts := []encode.EncodeOption{encode.Indent(cfg.Indent)}
	if err := encode.EncodeModel(a, v, &ab, opts...); err != nil {
		return false, err
	}
	if err := encode.EncodeModel(b, v, &bb, opts...); err != nil {
		return false, err
	}
	lines := libdiff.Lines(ab.String(), bb.String())
	if !libdiff.Changed(lines) {
		return false, nil
	}
	dc := cfg.colors(w)
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, dc.paint(l.Op, l.String())); err != nil {
			return false, err
		}
	}
	return true, nil
}
