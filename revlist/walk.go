package revlist

import (
	"context"
	"errors"
	"io"
	"sort"

	gitplumbing "github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"golang.org/x/sync/errgroup"

	"github.com/hyperast/go-hyperast/utils/trace"
)

var ErrNegativeLimit = errors.New("limit cannot be negative")

// WalkOptions selects the commits built by Walk.
type WalkOptions struct {
	// From excludes the commits reachable from it. The zero hash excludes
	// nothing.
	From gitplumbing.Hash
	// To is the newest commit walked, by default HEAD.
	To gitplumbing.Hash
	// Limit keeps only the Limit newest commits, 0 keeps them all.
	Limit int
	// Workers is the number of commits built concurrently, by default
	// GOMAXPROCS.
	Workers int
}

// Validate validates the fields and sets the default values.
func (o *WalkOptions) Validate() error {
	if o.Limit < 0 {
		return ErrNegativeLimit
	}

	o.Workers = workers(o.Workers)
	return nil
}

// Walk builds the commits reachable from o.To and not from o.From. The
// commits are returned oldest first.
func (w *Walker) Walk(ctx context.Context, o *WalkOptions) ([]*Commit, error) {
	if o == nil {
		o = &WalkOptions{}
	}

	if err := o.Validate(); err != nil {
		return nil, err
	}

	commits, err := w.commits(o)
	if err != nil {
		return nil, err
	}

	trace.History.Printf("walking %d commits with %d workers", len(commits), o.Workers)

	out := make([]*Commit, len(commits))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.Workers)
	for i, c := range commits {
		g.Go(func() error {
			b, err := w.Build(ctx, c)
			if err != nil {
				return err
			}

			out[i] = b
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// commits lists the selected commits, oldest first.
func (w *Walker) commits(o *WalkOptions) ([]*object.Commit, error) {
	to := o.To
	if to.IsZero() {
		head, err := w.r.Head()
		if err != nil {
			return nil, err
		}

		to = head.Hash()
	}

	excluded, err := w.reachable(o.From)
	if err != nil {
		return nil, err
	}

	tip, err := w.r.CommitObject(to)
	if err != nil {
		return nil, err
	}

	var commits []*object.Commit
	iter := object.NewCommitPreorderIter(tip, excluded, nil)
	defer iter.Close()

	for o.Limit == 0 || len(commits) < o.Limit {
		c, err := iter.Next()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, err
		}

		commits = append(commits, c)
	}

	// pre-order lists children first
	for i, j := 0, len(commits)-1; i < j; i, j = i+1, j-1 {
		commits[i], commits[j] = commits[j], commits[i]
	}

	sort.SliceStable(commits, func(i, j int) bool {
		return commits[i].Committer.When.Before(commits[j].Committer.When)
	})

	return commits, nil
}

func (w *Walker) reachable(from gitplumbing.Hash) (map[gitplumbing.Hash]bool, error) {
	seen := make(map[gitplumbing.Hash]bool)
	if from.IsZero() {
		return seen, nil
	}

	c, err := w.r.CommitObject(from)
	if err != nil {
		return nil, err
	}

	err = object.NewCommitPreorderIter(c, nil, nil).ForEach(func(c *object.Commit) error {
		seen[c.Hash] = true
		return nil
	})

	return seen, err
}
