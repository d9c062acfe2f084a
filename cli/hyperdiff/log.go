package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-git/go-git/v5"
	gitplumbing "github.com/go-git/go-git/v5/plumbing"

	"github.com/hyperast/go-hyperast"
	"github.com/hyperast/go-hyperast/plumbing"
	"github.com/hyperast/go-hyperast/revlist"
)

type CmdLog struct {
	cmd

	From    string `long:"from" description:"Skip the commits reachable from this revision."`
	To      string `long:"to" description:"Newest revision shown." default:"HEAD"`
	Limit   int    `short:"n" long:"limit" description:"Show only the newest n commits."`
	Workers int    `long:"workers" description:"Number of commits built concurrently."`

	Args struct {
		Repository string `positional-arg-name:"repository"`
	} `positional-args:"yes"`
}

func (CmdLog) Usage() string {
	return fmt.Sprintf("usage: %s log [--from <rev>] [--to <rev>] [--limit <n>] [repository]", bin)
}

func (c *CmdLog) Execute(args []string) error {
	cfg, err := c.setup()
	if err != nil {
		return err
	}

	f, reg, err := forest(cfg)
	if err != nil {
		return err
	}

	path := c.Args.Repository
	if path == "" {
		path = "."
	}

	r, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return err
	}

	o := &revlist.WalkOptions{Limit: c.Limit, Workers: c.Workers}
	if o.Workers == 0 {
		o.Workers = cfg.History.Workers
	}

	if o.To, err = resolve(r, c.To); err != nil {
		return err
	}

	if o.From, err = resolve(r, c.From); err != nil {
		return err
	}

	w, err := revlist.NewWalker(r, f, reg, &revlist.WalkerOptions{CacheSize: cfg.History.CacheSize})
	if err != nil {
		return err
	}

	ctx := context.Background()
	commits, err := w.Walk(ctx, o)
	if err != nil {
		return err
	}

	return printLog(ctx, os.Stdout, r, w, f, commits)
}

func resolve(r *git.Repository, rev string) (gitplumbing.Hash, error) {
	if rev == "" {
		return gitplumbing.ZeroHash, nil
	}

	h, err := r.ResolveRevision(gitplumbing.Revision(rev))
	if err != nil {
		return gitplumbing.ZeroHash, fmt.Errorf("%s: %w", rev, err)
	}

	return *h, nil
}

// printLog prints, for every commit, the statistics of the edit script
// from its first parent.
func printLog(ctx context.Context, out io.Writer, r *git.Repository, w *revlist.Walker, f *hyperast.Forest, commits []*revlist.Commit) error {
	roots := make(map[gitplumbing.Hash]plumbing.Handle, len(commits))
	for _, c := range commits {
		roots[c.Hash] = c.Root
	}

	for _, c := range commits {
		var parent plumbing.Handle
		if len(c.Parents) != 0 {
			var err error
			if parent, err = parentRoot(ctx, r, w, roots, c.Parents[0]); err != nil {
				return err
			}
		}

		d, err := f.Diff(ctx, parent, c.Root)
		if err != nil {
			return fmt.Errorf("commit %s: %w", c.Hash, err)
		}

		if _, err := fmt.Fprintf(out, "%s %s\n", c.Hash, d.Stats()); err != nil {
			return err
		}
	}

	return nil
}

// parentRoot returns the root of the commit h, building it when it was
// left out of the walk.
func parentRoot(ctx context.Context, r *git.Repository, w *revlist.Walker, roots map[gitplumbing.Hash]plumbing.Handle, h gitplumbing.Hash) (plumbing.Handle, error) {
	if root, ok := roots[h]; ok {
		return root, nil
	}

	pc, err := r.CommitObject(h)
	if err != nil {
		return plumbing.ZeroHandle, err
	}

	c, err := w.Build(ctx, pc)
	if err != nil {
		return plumbing.ZeroHandle, err
	}

	roots[h] = c.Root
	return c.Root, nil
}
