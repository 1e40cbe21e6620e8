package main

import (
	"fmt"

	"github.com/signadot/docgraph/encode"

	"github.com/scott-cotton/cli"
)

func get(cfg *GetConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Get.Parse(cc, args)
	if err != nil {
		cfg.Get.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: get requires a path argument", cli.ErrUsage)
	}
	path := args[0]
	if path == "" || path[0] != '/' {
		return fmt.Errorf("%w: invalid path %q", cli.ErrUsage, path)
	}
	m, _, err := cfg.load(args[1:])
	if err != nil {
		return err
	}
	n := m.GetElementByPath(path)
	if n == nil {
		return fmt.Errorf("%s: not found", path)
	}
	if !cfg.Files {
		return encode.Encode(n, cc.Out, cfg.encOpts(cc.Out)...)
	}
	files, err := n.Files()
	if err != nil {
		return err
	}
	for _, f := range files {
		if _, err := fmt.Fprintln(cc.Out, f.Name()); err != nil {
			return err
		}
	}
	return nil
}
