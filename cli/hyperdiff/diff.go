package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"

	"github.com/hyperast/go-hyperast"
	"github.com/hyperast/go-hyperast/plumbing"
	"github.com/hyperast/go-hyperast/plumbing/difftree"
	"github.com/hyperast/go-hyperast/plumbing/generator"
	"github.com/hyperast/go-hyperast/revlist"
)

type CmdDiff struct {
	cmd

	JSON bool `long:"json" description:"Print the operations as JSON lines."`

	Args struct {
		Src string `positional-arg-name:"src" required:"true"`
		Dst string `positional-arg-name:"dst" required:"true"`
	} `positional-args:"yes"`
}

func (CmdDiff) Usage() string {
	return fmt.Sprintf("usage: %s diff [--json] <src> <dst>", bin)
}

func (c *CmdDiff) Execute(args []string) error {
	cfg, err := c.setup()
	if err != nil {
		return err
	}

	f, reg, err := forest(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	src, err := build(ctx, f, reg, c.Args.Src)
	if err != nil {
		return err
	}

	dst, err := build(ctx, f, reg, c.Args.Dst)
	if err != nil {
		return err
	}

	d, err := f.Diff(ctx, src, dst)
	if err != nil {
		return err
	}

	return printScript(os.Stdout, d.Script, c.JSON)
}

// build interns the file or directory at path.
func build(ctx context.Context, f *hyperast.Forest, reg *generator.Registry, path string) (plumbing.Handle, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return plumbing.ZeroHandle, err
	}

	if fi.IsDir() {
		return revlist.BuildFilesystem(ctx, f, reg, osfs.New(path), "/")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return plumbing.ZeroHandle, err
	}

	return reg.Generate(ctx, f, filepath.Base(path), content)
}

func printScript(w io.Writer, s difftree.Script, asJSON bool) error {
	if asJSON {
		return difftree.NewEncoder(w).Encode(s)
	}

	if _, err := fmt.Fprint(w, s); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "%s\n", s.Stats())
	return err
}
