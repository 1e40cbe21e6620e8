package main

import (
	"fmt"

	"github.com/signadot/docgraph/encode"

	"github.com/scott-cotton/cli"
)

func merge(cfg *MergeConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Merge.Parse(cc, args)
	if err != nil {
		cfg.Merge.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	m, files, err := cfg.load(args)
	if err != nil {
		return err
	}
	v := lowestVersion(files)
	if cfg.Version != "" {
		t, err := cfg.table()
		if err != nil {
			return err
		}
		named, ok := t.VersionByName(cfg.Version)
		if !ok {
			return fmt.Errorf("%w: unknown revision %q", cli.ErrUsage, cfg.Version)
		}
		v = named
	}
	return encode.EncodeModel(m, v, cc.Out, cfg.encOpts(cc.Out)...)
}
