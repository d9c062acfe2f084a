package noder

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/hyperast/go-hyperast/plumbing"
	"github.com/hyperast/go-hyperast/plumbing/format/sexp"
	"github.com/hyperast/go-hyperast/storage/memory"
)

type TreeSuite struct {
	suite.Suite
	s *memory.Storage
	t *Tree
}

func TestTreeSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(TreeSuite))
}

func (s *TreeSuite) SetupTest() {
	s.s = memory.NewStorage()

	root := sexp.MustParse(s.s, `(a (b "1") (c (d "2")) (b "1"))`)
	t, err := New(s.s, root)
	s.Require().NoError(err)
	s.t = t
}

func (s *TreeSuite) TestPreOrder() {
	s.Equal(5, s.t.Len())
	s.Equal(4, s.s.Len(), "shared leaf is stored once")

	var kinds, labels []string
	for id := 0; id < s.t.Len(); id++ {
		kinds = append(kinds, s.t.Node(id).Kind.String())
		labels = append(labels, s.t.Node(id).Label)
	}

	s.Equal([]string{"a", "b", "c", "d", "b"}, kinds)
	s.Equal([]string{"", "1", "", "2", "1"}, labels)
	s.Equal(s.t.Node(1).Handle, s.t.Node(4).Handle)
}

func (s *TreeSuite) TestStructure() {
	root := s.t.Node(0)
	s.Equal(-1, root.Parent)
	s.Equal([]int{1, 2, 4}, root.Children)
	s.Equal(5, root.Size)
	s.Equal(3, root.Height)
	s.Equal(s.t.Root(), root.Handle)

	d := s.t.Node(3)
	s.Equal(2, d.Parent)
	s.Equal(0, d.Index)
	s.Equal(2, d.Depth)
	s.True(d.IsLeaf())

	s.Equal(2, s.t.Node(4).Index)
}

func (s *TreeSuite) TestPostOrder() {
	s.Equal([]int{1, 3, 2, 4, 0}, s.t.PostOrder())
	for rank, id := range s.t.PostOrder() {
		s.Equal(rank, s.t.Node(id).Post)
	}
}

func (s *TreeSuite) TestDescendants() {
	from, to := s.t.Descendants(0)
	s.Equal(1, from)
	s.Equal(5, to)

	s.True(s.t.IsDescendant(2, 3))
	s.False(s.t.IsDescendant(2, 4))
	s.False(s.t.IsDescendant(2, 2))
	s.False(s.t.IsDescendant(3, 2))
}

func (s *TreeSuite) TestPathAndLookup() {
	s.Equal(Path{0}, s.t.Path(0))
	s.Equal(Path{0, 1, 0}, s.t.Path(3))
	s.Equal(Path{0, 2}, s.t.Path(4))

	for id := 0; id < s.t.Len(); id++ {
		got, ok := s.t.Lookup(s.t.Path(id))
		s.True(ok)
		s.Equal(id, got)
	}

	_, ok := s.t.Lookup(Path{})
	s.False(ok)
	_, ok = s.t.Lookup(Path{1})
	s.False(ok)
	_, ok = s.t.Lookup(Path{0, 3})
	s.False(ok)
}

func (s *TreeSuite) TestEmpty() {
	t, err := New(s.s, plumbing.ZeroHandle)
	s.NoError(err)
	s.Equal(0, t.Len())
	s.Empty(t.PostOrder())

	_, ok := t.Lookup(Path{0})
	s.False(ok)
}

func (s *TreeSuite) TestUnknownHandle() {
	other := memory.NewStorage()
	h := sexp.MustParse(other, `(a)`)

	_, err := New(s.s, h)
	s.ErrorIs(err, plumbing.ErrUnknownHandle)
}
