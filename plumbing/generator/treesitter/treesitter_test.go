package treesitter

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/hyperast/go-hyperast/plumbing"
	"github.com/hyperast/go-hyperast/plumbing/difftree"
	"github.com/hyperast/go-hyperast/plumbing/generator"
	"github.com/hyperast/go-hyperast/storage/memory"
	"github.com/hyperast/go-hyperast/utils/merkletrie"
)

const goSource = `package main

func main() {
	x := 1
	println(x, "hello world")
}
`

type TreeSitterSuite struct {
	suite.Suite
	s *memory.Storage
}

func TestTreeSitterSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(TreeSitterSuite))
}

func (s *TreeSitterSuite) SetupTest() {
	s.s = memory.NewStorage()
}

func (s *TreeSitterSuite) generate(l Language, src string, opts ...Option) plumbing.Handle {
	h, err := New(l, opts...).Generate(context.Background(), s.s, []byte(src))
	s.Require().NoError(err)
	return h
}

// labels returns the labels of the leaves of the tree, in document order.
func (s *TreeSitterSuite) labels(h plumbing.Handle) []string {
	n, err := s.s.Resolve(h)
	s.Require().NoError(err)

	if n.IsLeaf() {
		if n.HasLabel() {
			return []string{n.Label}
		}
		return nil
	}

	var out []string
	for _, c := range n.Children {
		out = append(out, s.labels(c)...)
	}

	return out
}

func (s *TreeSitterSuite) TestGo() {
	h := s.generate(Go, goSource)

	n, err := s.s.Resolve(h)
	s.NoError(err)
	s.Equal("source_file", n.Kind.String())
	s.True(n.Size > 10)

	labels := s.labels(h)
	s.Contains(labels, "main")
	s.Contains(labels, "x")
	s.Contains(labels, "1")
	s.Contains(labels, `"hello world"`)
	s.NotContains(labels, "func")
}

func (s *TreeSitterSuite) TestDeterministic() {
	a := s.generate(Go, goSource)
	b := s.generate(Go, goSource)
	s.Equal(a, b)

	c := s.generate(Go, strings.Replace(goSource, "x := 1", "x := 2", 1))
	s.NotEqual(a, c)
}

func (s *TreeSitterSuite) TestLiteralChangeIsSingleUpdate() {
	src := s.generate(Go, goSource)
	dst := s.generate(Go, strings.Replace(goSource, "x := 1", "x := 2", 1))

	m, err := merkletrie.Match(context.Background(), s.s, src, dst, nil)
	s.NoError(err)

	script, err := difftree.Generate(m)
	s.NoError(err)
	s.Equal(difftree.Stats{Updates: 1}, script.Stats())
	s.Equal("1", script[0].OldLabel)
	s.Equal("2", script[0].Label)
}

func (s *TreeSitterSuite) TestOtherLanguages() {
	for _, tc := range []struct {
		lang Language
		src  string
		root string
	}{
		{Python, "def f(a):\n    return a + 1\n", "module"},
		{JavaScript, "function f(a) { return a + 1; }\n", "program"},
		{TypeScript, "function f(a: number): number { return a + 1; }\n", "program"},
		{Ruby, "def f(a)\n  a + 1\nend\n", "program"},
	} {
		h := s.generate(tc.lang, tc.src)
		n, err := s.s.Resolve(h)
		s.NoError(err)
		s.Equal(tc.root, n.Kind.String(), tc.lang.Name)
		s.Contains(s.labels(h), "f", tc.lang.Name)
	}
}

func (s *TreeSitterSuite) TestSyntaxErrors() {
	broken := "package main\n\nfunc main( {\n"

	_, err := New(Go, WithSyntaxErrors(true)).Generate(context.Background(), s.s, []byte(broken))
	s.ErrorIs(err, ErrSyntax)

	h, err := New(Go).Generate(context.Background(), s.s, []byte(broken))
	s.NoError(err)
	s.False(h.IsZero())
}

func (s *TreeSitterSuite) TestLimits() {
	_, err := New(Go, WithMaxFileSize(8)).Generate(context.Background(), s.s, []byte(goSource))
	s.ErrorIs(err, ErrFileTooLarge)

	_, err = New(Go).Generate(context.Background(), s.s, []byte{0xff, 0xfe})
	s.ErrorIs(err, ErrInvalidContent)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New(Go).Generate(ctx, s.s, []byte(goSource))
	s.ErrorIs(err, context.Canceled)
}

func (s *TreeSitterSuite) TestRegistry() {
	r := generator.NewRegistry(Generators(nil)...)
	s.Equal([]string{"go", "javascript", "python", "ruby", "typescript"}, r.Languages())

	h, err := r.Generate(context.Background(), s.s, "cmd/main.go", []byte(goSource))
	s.NoError(err)
	s.Equal(s.generate(Go, goSource), h)

	_, err = r.Generate(context.Background(), s.s, "README.md", []byte("# title"))
	s.ErrorIs(err, generator.ErrUnsupportedLanguage)

	gens := Generators([]Language{Python})
	s.Len(gens, 1)
	s.Equal("python", gens[0].Language())
	s.Equal([]string{".py"}, gens[0].Extensions())
}
