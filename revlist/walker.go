// Package revlist builds the syntax trees of the commits of a git
// repository into a Forest.
//
// A commit becomes a Directory node per git tree and a File node per
// supported blob, labeled with the entry name and holding the syntax tree
// of the blob. Trees and blobs shared by several commits are built once:
// the handles built from every git object are memoized by object hash.
// Directories holding no supported file are left out.
package revlist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/go-git/go-git/v5"
	gitplumbing "github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"golang.org/x/sync/singleflight"

	"github.com/hyperast/go-hyperast"
	"github.com/hyperast/go-hyperast/plumbing"
	"github.com/hyperast/go-hyperast/plumbing/cache"
	"github.com/hyperast/go-hyperast/plumbing/generator"
	"github.com/hyperast/go-hyperast/utils/trace"
)

var (
	ErrNilRepository = errors.New("repository cannot be nil")
	ErrNilForest     = errors.New("forest cannot be nil")
	ErrNilRegistry   = errors.New("registry cannot be nil")
)

// WalkerOptions describes how a Walker builds commits.
type WalkerOptions struct {
	// CacheSize is the number of git objects whose handles are memoized,
	// by default cache.DefaultMaxEntries.
	CacheSize int
}

// Validate validates the fields and sets the default values.
func (o *WalkerOptions) Validate() error {
	if o.CacheSize < 1 {
		o.CacheSize = cache.DefaultMaxEntries
	}

	return nil
}

// Commit is a commit whose tree has been built.
type Commit struct {
	Hash    gitplumbing.Hash
	Parents []gitplumbing.Hash
	// Root is the Directory node built from the tree of the commit.
	Root plumbing.Handle
}

// Walker builds the commits of a repository. It is safe for concurrent
// use.
type Walker struct {
	r   *git.Repository
	f   *hyperast.Forest
	reg *generator.Registry

	size  int
	trees cache.Handles
	group singleflight.Group

	// the same blob gives different trees depending on the language it
	// is parsed as
	mu    sync.Mutex
	blobs map[string]cache.Handles
}

// NewWalker returns a Walker building the commits of r into f, parsing
// the files supported by reg. o may be nil to use the default options.
func NewWalker(r *git.Repository, f *hyperast.Forest, reg *generator.Registry, o *WalkerOptions) (*Walker, error) {
	switch {
	case r == nil:
		return nil, ErrNilRepository
	case f == nil:
		return nil, ErrNilForest
	case reg == nil:
		return nil, ErrNilRegistry
	}

	if o == nil {
		o = &WalkerOptions{}
	}

	if err := o.Validate(); err != nil {
		return nil, err
	}

	return &Walker{
		r:     r,
		f:     f,
		reg:   reg,
		size:  o.CacheSize,
		trees: cache.NewHandleLRU(o.CacheSize),
		blobs: make(map[string]cache.Handles),
	}, nil
}

// Build builds the tree of c.
func (w *Walker) Build(ctx context.Context, c *object.Commit) (*Commit, error) {
	children, err := w.tree(ctx, c.TreeHash)
	if err != nil {
		return nil, fmt.Errorf("commit %s: %w", c.Hash, err)
	}

	root, err := w.f.Intern(plumbing.Directory, "", children)
	if err != nil {
		return nil, fmt.Errorf("commit %s: %w", c.Hash, err)
	}

	trace.History.Printf("commit %s built as %s", c.Hash, root)
	return &Commit{
		Hash:    c.Hash,
		Parents: append([]gitplumbing.Hash(nil), c.ParentHashes...),
		Root:    root,
	}, nil
}

// tree returns the children of the Directory node built from the git tree
// h.
func (w *Walker) tree(ctx context.Context, h gitplumbing.Hash) ([]plumbing.Handle, error) {
	if v, ok := w.trees.Get(h); ok {
		return v, nil
	}

	v, err := w.do(ctx, "tree:"+h.String(), func() (interface{}, error) {
		children, err := w.buildTree(ctx, h)
		if err != nil {
			return nil, err
		}

		w.trees.Put(h, children)
		return children, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]plumbing.Handle), nil
}

func (w *Walker) buildTree(ctx context.Context, h gitplumbing.Hash) ([]plumbing.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t, err := w.r.TreeObject(h)
	if err != nil {
		return nil, err
	}

	children := make([]plumbing.Handle, 0, len(t.Entries))
	for _, e := range t.Entries {
		child, ok, err := w.entry(ctx, e)
		if err != nil {
			return nil, err
		}

		if ok {
			children = append(children, child)
		}
	}

	return children, nil
}

func (w *Walker) entry(ctx context.Context, e object.TreeEntry) (plumbing.Handle, bool, error) {
	switch {
	case e.Mode == filemode.Dir:
		children, err := w.tree(ctx, e.Hash)
		if err != nil || len(children) == 0 {
			return plumbing.ZeroHandle, false, err
		}

		h, err := w.f.Intern(plumbing.Directory, e.Name, children)
		return h, err == nil, err
	case !e.Mode.IsFile() || e.Mode == filemode.Symlink:
		// submodules and links
		return plumbing.ZeroHandle, false, nil
	}

	g, ok := w.reg.ForFile(e.Name)
	if !ok {
		return plumbing.ZeroHandle, false, nil
	}

	ast, err := w.blob(ctx, g, e.Hash)
	if err != nil {
		if ctx.Err() != nil {
			return plumbing.ZeroHandle, false, ctx.Err()
		}

		trace.History.Printf("skipping %s (%s): %s", e.Name, e.Hash, err)
		return plumbing.ZeroHandle, false, nil
	}

	h, err := fileNode(w.f, e.Name, ast)
	return h, err == nil, err
}

// blob returns the root of the syntax tree of the blob h parsed by g.
func (w *Walker) blob(ctx context.Context, g generator.Generator, h gitplumbing.Hash) (plumbing.Handle, error) {
	memo := w.blobCache(g.Language())
	if v, ok := memo.Get(h); ok {
		return v[0], nil
	}

	v, err := w.do(ctx, "blob:"+g.Language()+":"+h.String(), func() (interface{}, error) {
		b, err := w.r.BlobObject(h)
		if err != nil {
			return nil, err
		}

		content, err := readBlob(b)
		if err != nil {
			return nil, err
		}

		root, err := g.Generate(ctx, w.f, content)
		if err != nil {
			return nil, err
		}

		memo.Put(h, []plumbing.Handle{root})
		return root, nil
	})
	if err != nil {
		return plumbing.ZeroHandle, err
	}

	return v.(plumbing.Handle), nil
}

// do runs fn once for all the concurrent callers asking for key. A caller
// whose context is still live runs the call again when the result it
// shared was the cancellation of another caller.
func (w *Walker) do(ctx context.Context, key string, fn func() (interface{}, error)) (interface{}, error) {
	for {
		v, err, shared := w.group.Do(key, fn)
		if err == nil || !shared || ctx.Err() != nil || !isContextErr(err) {
			return v, err
		}

		trace.History.Printf("retrying %s: %s", key, err)
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (w *Walker) blobCache(lang string) cache.Handles {
	w.mu.Lock()
	defer w.mu.Unlock()

	c, ok := w.blobs[lang]
	if !ok {
		c = cache.NewHandleLRU(w.size)
		w.blobs[lang] = c
	}

	return c
}

func readBlob(b *object.Blob) ([]byte, error) {
	r, err := b.Reader()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}

// fileNode interns the File node named name wrapping the syntax tree
// rooted at ast. A zero ast is an empty file.
func fileNode(f *hyperast.Forest, name string, ast plumbing.Handle) (plumbing.Handle, error) {
	var children []plumbing.Handle
	if !ast.IsZero() {
		children = []plumbing.Handle{ast}
	}

	return f.Intern(plumbing.File, name, children)
}

func workers(n int) int {
	if n < 1 {
		return runtime.GOMAXPROCS(0)
	}

	return n
}
