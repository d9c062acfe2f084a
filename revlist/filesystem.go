package revlist

import (
	"context"
	"os"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/hyperast/go-hyperast"
	"github.com/hyperast/go-hyperast/plumbing"
	"github.com/hyperast/go-hyperast/plumbing/generator"
	"github.com/hyperast/go-hyperast/utils/trace"
)

// BuildFilesystem builds the directory dir of fs the way Build builds the
// tree of a commit, so a working copy and the commit it was checked out
// from have the same root. The .git directory and the files excluded by
// .gitignore files are left out.
func BuildFilesystem(ctx context.Context, f *hyperast.Forest, reg *generator.Registry, fs billy.Filesystem, dir string) (plumbing.Handle, error) {
	root, err := fs.Chroot(dir)
	if err != nil {
		return plumbing.ZeroHandle, err
	}

	ps, err := gitignore.ReadPatterns(root, nil)
	if err != nil {
		return plumbing.ZeroHandle, err
	}

	b := &fsBuilder{f: f, reg: reg, fs: root, ignore: gitignore.NewMatcher(ps)}
	children, err := b.dir(ctx, nil)
	if err != nil {
		return plumbing.ZeroHandle, err
	}

	return f.Intern(plumbing.Directory, "", children)
}

type fsBuilder struct {
	f      *hyperast.Forest
	reg    *generator.Registry
	fs     billy.Filesystem
	ignore gitignore.Matcher
}

// dir returns the children of the Directory node built from the directory
// at path, given as a list of names.
func (b *fsBuilder) dir(ctx context.Context, path []string) ([]plumbing.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	infos, err := b.fs.ReadDir(b.fs.Join(append([]string{"/"}, path...)...))
	if err != nil {
		return nil, err
	}

	sortEntries(infos)

	var children []plumbing.Handle
	for _, fi := range infos {
		p := append(append([]string(nil), path...), fi.Name())
		if fi.Name() == ".git" || b.ignore.Match(p, fi.IsDir()) {
			continue
		}

		var (
			h   plumbing.Handle
			ok  bool
			err error
		)

		switch {
		case fi.IsDir():
			h, ok, err = b.subdir(ctx, p)
		case fi.Mode().IsRegular():
			h, ok, err = b.file(ctx, p)
		}

		if err != nil {
			return nil, err
		}

		if ok {
			children = append(children, h)
		}
	}

	return children, nil
}

func (b *fsBuilder) subdir(ctx context.Context, path []string) (plumbing.Handle, bool, error) {
	children, err := b.dir(ctx, path)
	// directories without supported files are left out
	if err != nil || len(children) == 0 {
		return plumbing.ZeroHandle, false, err
	}

	h, err := b.f.Intern(plumbing.Directory, path[len(path)-1], children)
	return h, err == nil, err
}

func (b *fsBuilder) file(ctx context.Context, path []string) (plumbing.Handle, bool, error) {
	name := path[len(path)-1]
	g, ok := b.reg.ForFile(name)
	if !ok {
		return plumbing.ZeroHandle, false, nil
	}

	full := b.fs.Join(path...)
	content, err := util.ReadFile(b.fs, full)
	if err != nil {
		return plumbing.ZeroHandle, false, err
	}

	ast, err := g.Generate(ctx, b.f, content)
	if err != nil {
		if ctx.Err() != nil {
			return plumbing.ZeroHandle, false, ctx.Err()
		}

		trace.History.Printf("skipping %s: %s", full, err)
		return plumbing.ZeroHandle, false, nil
	}

	h, err := fileNode(b.f, name, ast)
	return h, err == nil, err
}

// sortEntries sorts infos in git tree order, where a directory sorts as
// its name followed by a slash.
func sortEntries(infos []os.FileInfo) {
	key := func(fi os.FileInfo) string {
		if fi.IsDir() {
			return fi.Name() + "/"
		}

		return fi.Name()
	}

	sort.Slice(infos, func(i, j int) bool {
		return key(infos[i]) < key(infos[j])
	})
}
