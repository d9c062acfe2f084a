package revlist

import (
	"context"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	fixtures "github.com/go-git/go-git-fixtures/v4"
	"github.com/go-git/go-git/v5"
	gitplumbing "github.com/go-git/go-git/v5/plumbing"
	gitcache "github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"
	gitmemory "github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/suite"

	"github.com/hyperast/go-hyperast"
	"github.com/hyperast/go-hyperast/plumbing"
	"github.com/hyperast/go-hyperast/plumbing/format/sexp"
	"github.com/hyperast/go-hyperast/plumbing/generator"
	"github.com/hyperast/go-hyperast/plumbing/generator/treesitter"
)

type WalkerSuite struct {
	suite.Suite
	fs   billy.Filesystem
	repo *git.Repository
	when time.Time
	f    *hyperast.Forest
	reg  *generator.Registry
}

func TestWalkerSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(WalkerSuite))
}

func (s *WalkerSuite) SetupTest() {
	s.fs = memfs.New()

	var err error
	s.repo, err = git.Init(gitmemory.NewStorage(), s.fs)
	s.Require().NoError(err)

	s.f, err = hyperast.New(nil)
	s.Require().NoError(err)

	s.reg = generator.NewRegistry(sexp.Generator{})
	s.when = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
}

func (s *WalkerSuite) write(files map[string]string) {
	for name, content := range files {
		s.Require().NoError(util.WriteFile(s.fs, name, []byte(content), 0o644))
	}
}

func (s *WalkerSuite) commit(msg string) *object.Commit {
	wt, err := s.repo.Worktree()
	s.Require().NoError(err)
	s.Require().NoError(wt.AddWithOptions(&git.AddOptions{All: true}))

	s.when = s.when.Add(time.Hour)
	h, err := wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: s.when},
	})
	s.Require().NoError(err)

	c, err := s.repo.CommitObject(h)
	s.Require().NoError(err)
	return c
}

func (s *WalkerSuite) walker() *Walker {
	w, err := NewWalker(s.repo, s.f, s.reg, nil)
	s.Require().NoError(err)
	return w
}

// history commits three versions of a small project.
func (s *WalkerSuite) history() []*object.Commit {
	s.write(map[string]string{
		"a.sexp":        `(block (stmt "a"))`,
		"lib/b.sexp":    `(x "1")`,
		"README.md":     "# project",
		"docs/notes.md": "nothing to parse",
	})
	c1 := s.commit("initial")

	s.write(map[string]string{"a.sexp": `(block (stmt "b"))`})
	c2 := s.commit("update a")

	s.write(map[string]string{"lib/c.sexp": `(y)`})
	c3 := s.commit("add c")

	return []*object.Commit{c1, c2, c3}
}

func (s *WalkerSuite) TestNewWalker() {
	_, err := NewWalker(nil, s.f, s.reg, nil)
	s.ErrorIs(err, ErrNilRepository)

	_, err = NewWalker(s.repo, nil, s.reg, nil)
	s.ErrorIs(err, ErrNilForest)

	_, err = NewWalker(s.repo, s.f, nil, nil)
	s.ErrorIs(err, ErrNilRegistry)
}

func (s *WalkerSuite) TestBuild() {
	commits := s.history()
	w := s.walker()

	first, err := w.Build(context.Background(), commits[0])
	s.Require().NoError(err)
	s.Equal(commits[0].Hash, first.Hash)
	s.Empty(first.Parents)

	n, err := s.f.Resolve(first.Root)
	s.NoError(err)
	s.Equal(plumbing.Directory, n.Kind)
	s.Len(n.Children, 2)

	_, err = s.f.ChildByLabel(first.Root, "README.md")
	s.ErrorIs(err, hyperast.ErrChildNotFound)
	_, err = s.f.ChildByLabel(first.Root, "docs")
	s.ErrorIs(err, hyperast.ErrChildNotFound)

	file, err := s.f.ChildByLabel(first.Root, "a.sexp")
	s.NoError(err)
	n, err = s.f.Resolve(file)
	s.NoError(err)
	s.Equal(plumbing.File, n.Kind)
	s.Equal(sexp.MustParse(s.f, `(block (stmt "a"))`), n.Children[0])
}

func (s *WalkerSuite) TestSharedDirectories() {
	commits := s.history()
	w := s.walker()

	first, err := w.Build(context.Background(), commits[0])
	s.Require().NoError(err)
	second, err := w.Build(context.Background(), commits[1])
	s.Require().NoError(err)
	s.NotEqual(first.Root, second.Root)
	s.Equal([]gitplumbing.Hash{commits[0].Hash}, second.Parents)

	libA, err := s.f.ChildByLabel(first.Root, "lib")
	s.NoError(err)
	libB, err := s.f.ChildByLabel(second.Root, "lib")
	s.NoError(err)
	s.Equal(libA, libB)

	again, err := s.walker().Build(context.Background(), commits[1])
	s.NoError(err)
	s.Equal(second.Root, again.Root)
}

func (s *WalkerSuite) TestDiffBetweenCommits() {
	commits := s.history()
	w := s.walker()

	first, err := w.Build(context.Background(), commits[0])
	s.Require().NoError(err)
	second, err := w.Build(context.Background(), commits[1])
	s.Require().NoError(err)

	d, err := s.f.Diff(context.Background(), first.Root, second.Root)
	s.Require().NoError(err)
	s.Require().Len(d.Script, 1)
	s.Equal("a", d.Script[0].OldLabel)
	s.Equal("b", d.Script[0].Label)
}

func (s *WalkerSuite) TestWalk() {
	commits := s.history()
	w := s.walker()

	all, err := w.Walk(context.Background(), nil)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	for i, c := range all {
		s.Equal(commits[i].Hash, c.Hash)
		s.False(c.Root.IsZero())
	}

	last, err := w.Walk(context.Background(), &WalkOptions{Limit: 2, Workers: 1})
	s.NoError(err)
	s.Equal([]*Commit{all[1], all[2]}, last)

	since, err := w.Walk(context.Background(), &WalkOptions{From: commits[0].Hash, To: commits[1].Hash})
	s.NoError(err)
	s.Equal([]*Commit{all[1]}, since)

	_, err = w.Walk(context.Background(), &WalkOptions{Limit: -1})
	s.ErrorIs(err, ErrNegativeLimit)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.walker().Walk(ctx, nil)
	s.ErrorIs(err, context.Canceled)
}

func (s *WalkerSuite) TestSharedCallCanceledByAnotherCaller() {
	w := s.walker()
	ctx, cancel := context.WithCancel(context.Background())
	started, release := make(chan struct{}), make(chan struct{})

	first := make(chan error, 1)
	go func() {
		_, err := w.do(ctx, "blob:sexp:x", func() (interface{}, error) {
			close(started)
			<-release
			return nil, ctx.Err()
		})
		first <- err
	}()
	<-started

	type result struct {
		v   interface{}
		err error
	}

	second := make(chan result, 1)
	go func() {
		v, err := w.do(context.Background(), "blob:sexp:x", func() (interface{}, error) {
			return "built", nil
		})
		second <- result{v, err}
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()
	close(release)

	s.ErrorIs(<-first, context.Canceled)
	r := <-second
	s.NoError(r.err)
	s.Equal("built", r.v)
}

func (s *WalkerSuite) TestBuildFilesystem() {
	commits := s.history()

	c, err := s.walker().Build(context.Background(), commits[2])
	s.Require().NoError(err)

	root, err := BuildFilesystem(context.Background(), s.f, s.reg, s.fs, "/")
	s.NoError(err)
	s.Equal(c.Root, root)

	s.write(map[string]string{"lib/b.sexp": `(x "2")`})
	root, err = BuildFilesystem(context.Background(), s.f, s.reg, s.fs, "/")
	s.NoError(err)
	s.NotEqual(c.Root, root)
}

func (s *WalkerSuite) TestBuildFilesystemIgnored() {
	s.write(map[string]string{
		".gitignore":     "build/\n*.gen.sexp\n",
		"a.sexp":         `(a)`,
		"b.gen.sexp":     `(b)`,
		"build/out.sexp": `(c)`,
		"src/d.sexp":     `(d)`,
	})

	root, err := BuildFilesystem(context.Background(), s.f, s.reg, s.fs, "/")
	s.Require().NoError(err)

	n, err := s.f.Resolve(root)
	s.NoError(err)
	s.Len(n.Children, 2)

	_, err = s.f.ChildByLabel(root, "src")
	s.NoError(err)
	_, err = s.f.ChildByLabel(root, "build")
	s.ErrorIs(err, hyperast.ErrChildNotFound)
	_, err = s.f.ChildByLabel(root, "b.gen.sexp")
	s.ErrorIs(err, hyperast.ErrChildNotFound)

	_, err = BuildFilesystem(context.Background(), s.f, s.reg, s.fs, "/missing")
	s.Error(err)
}

func (s *WalkerSuite) TestUnparsableFilesAreSkipped() {
	s.write(map[string]string{
		"ok.sexp":     `(a)`,
		"broken.sexp": `(a`,
	})
	c := s.commit("broken")

	b, err := s.walker().Build(context.Background(), c)
	s.NoError(err)

	n, err := s.f.Resolve(b.Root)
	s.NoError(err)
	s.Len(n.Children, 1)

	_, err = s.f.ChildByLabel(b.Root, "ok.sexp")
	s.NoError(err)
}

type FixturesSuite struct {
	suite.Suite
}

func TestFixturesSuite(t *testing.T) {
	suite.Run(t, new(FixturesSuite))
}

func (s *FixturesSuite) TearDownSuite() {
	s.NoError(fixtures.Clean())
}

func (s *FixturesSuite) TestBasic() {
	st := filesystem.NewStorage(fixtures.Basic().One().DotGit(), gitcache.NewObjectLRUDefault())
	repo, err := git.Open(st, nil)
	s.Require().NoError(err)

	head, err := repo.Head()
	s.Require().NoError(err)
	tip, err := repo.CommitObject(head.Hash())
	s.Require().NoError(err)

	trees := make(map[gitplumbing.Hash]gitplumbing.Hash)
	s.NoError(object.NewCommitPreorderIter(tip, nil, nil).ForEach(func(c *object.Commit) error {
		trees[c.Hash] = c.TreeHash
		return nil
	}))

	f, err := hyperast.New(nil)
	s.Require().NoError(err)
	reg := generator.NewRegistry(treesitter.Generators([]treesitter.Language{treesitter.Go})...)

	w, err := NewWalker(repo, f, reg, nil)
	s.Require().NoError(err)

	commits, err := w.Walk(context.Background(), nil)
	s.Require().NoError(err)
	s.Len(commits, len(trees))

	roots := make(map[gitplumbing.Hash]plumbing.Handle)
	for _, c := range commits {
		s.False(c.Root.IsZero())
		if r, ok := roots[trees[c.Hash]]; ok {
			s.Equal(r, c.Root)
		}
		roots[trees[c.Hash]] = c.Root
	}

	sequential, err := NewWalker(repo, f, reg, nil)
	s.Require().NoError(err)
	again, err := sequential.Walk(context.Background(), &WalkOptions{Workers: 1})
	s.NoError(err)
	s.Equal(commits, again)
}
