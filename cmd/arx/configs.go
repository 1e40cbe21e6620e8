package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/signadot/docgraph/encode"
	"github.com/signadot/docgraph/graph"
	"github.com/signadot/docgraph/spec"

	"github.com/scott-cotton/cli"

	"github.com/mattn/go-isatty"
)

type MainConfig struct {
	Color      bool   `cli:"name=color desc='encode with color'"`
	SchemaFile string `cli:"name=schema desc='schema description (yaml), default the builtin sample schema'"`
	Strict     bool   `cli:"name=strict desc='fail on recoverable problems instead of warning'"`
	Indent     int    `cli:"name=indent desc='spaces per nesting level' default=2"`
	Verbose    bool   `cli:"name=v aliases=verbose desc='log file operations'"`
	Gops       bool   `cli:"name=gops desc='start the gops diagnostics agent'"`

	Out      string
	CloseOut func() error

	// ctx is cancelled on interrupt.
	ctx context.Context

	Main *cli.Command
}

func (cfg *MainConfig) table() (*spec.Table, error) {
	if cfg.SchemaFile == "" {
		return spec.Builtin(), nil
	}
	return spec.LoadFile(cfg.SchemaFile)
}

func (cfg *MainConfig) newModel() (*graph.Model, error) {
	t, err := cfg.table()
	if err != nil {
		return nil, err
	}
	var opts []graph.Option
	if cfg.Verbose {
		opts = append(opts, graph.WithLogger(theLog))
	}
	return graph.New(t, opts...), nil
}

// load reads files into a single model. Recoverable problems are logged as
// warnings unless -strict is given.
func (cfg *MainConfig) load(files []string) (*graph.Model, []*graph.File, error) {
	m, err := cfg.newModel()
	if err != nil {
		return nil, nil, err
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("%w: no input files", cli.ErrUsage)
	}
	loaded, warnings, err := m.LoadFiles(cfg.ctx, files, cfg.Strict)
	for _, w := range warnings {
		theLog.Warn(w.Error())
	}
	if err != nil {
		return nil, nil, err
	}
	return m, loaded, nil
}

func (cfg *MainConfig) encOpts(w io.Writer) []encode.EncodeOption {
	res := []encode.EncodeOption{
		encode.Indent(cfg.Indent),
	}
	if cfg.colored(w) {
		res = append(res, encode.EncodeColors(encode.NewColors()))
	}
	return res
}

// colored reports whether output to w is colored: always with -color,
// otherwise when w is a terminal.
func (cfg *MainConfig) colored(w io.Writer) bool {
	if cfg.Color {
		return true
	}
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

type ViewConfig struct {
	*MainConfig

	Merged bool `cli:"name=m aliases=merged desc='view the merged model as one document'"`
	View   *cli.Command
}

type GetConfig struct {
	*MainConfig

	Files bool `cli:"name=f aliases=files desc='list the files the element belongs to'"`
	Get   *cli.Command
}

type RefsConfig struct {
	*MainConfig

	Check bool `cli:"name=check desc='list references that do not resolve'"`
	Refs  *cli.Command
}

type MergeConfig struct {
	*MainConfig

	Version string `cli:"name=version desc='revision of the output, default the lowest input revision'"`
	Merge   *cli.Command
}

type SplitConfig struct {
	*MainConfig

	Dir   string `cli:"name=d aliases=dir desc='output directory' default=."`
	Split *cli.Command
}

type DiffConfig struct {
	*MainConfig
	Reverse bool `cli:"name=r desc='reverse the diff'"`
	Lines   bool `cli:"name=lines desc='diff the serializations line by line'"`

	Diff *cli.Command
}

type SchemaConfig struct {
	*MainConfig
	Schema *cli.Command
}
