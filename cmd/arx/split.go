package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/signadot/docgraph/encode"

	"github.com/scott-cotton/cli"
)

func split(cfg *SplitConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Split.Parse(cc, args)
	if err != nil {
		cfg.Split.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	m, _, err := cfg.load(args)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return err
	}
	for _, f := range m.Files() {
		buf := &bytes.Buffer{}
		if err := encode.EncodeFile(f, buf, encode.Indent(cfg.Indent)); err != nil {
			return fmt.Errorf("error encoding %s: %w", f.Name(), err)
		}
		out := filepath.Join(cfg.Dir, filepath.Base(f.Name()))
		if err := os.WriteFile(out, buf.Bytes(), 0644); err != nil {
			return err
		}
		theLog.Info("wrote", "file", out)
	}
	return nil
}
