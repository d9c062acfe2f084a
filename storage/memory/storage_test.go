package memory

import (
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"github.com/hyperast/go-hyperast/plumbing"
)

var (
	blockKind = plumbing.KindFor("memory_block")
	stmtKind  = plumbing.KindFor("memory_stmt")
	exprKind  = plumbing.KindFor("memory_expr")
)

type StorageSuite struct {
	suite.Suite
	s *Storage
}

func TestStorageSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.s = NewStorage()
}

func (s *StorageSuite) intern(kind plumbing.Kind, label string, children ...plumbing.Handle) plumbing.Handle {
	h, err := s.s.Intern(kind, label, children)
	s.Require().NoError(err)
	return h
}

// block interns Block(Stmt(label)...) for the given labels.
func (s *StorageSuite) block(labels ...string) plumbing.Handle {
	var children []plumbing.Handle
	for _, l := range labels {
		children = append(children, s.intern(stmtKind, l))
	}

	return s.intern(blockKind, "", children...)
}

func (s *StorageSuite) TestInternDedup() {
	a := s.block("x=1", "y=2")
	b := s.block("x=1", "y=2")
	s.Equal(a, b)
	s.Equal(3, s.s.Len())

	st := s.s.Stats()
	s.Equal(3, st.Nodes)
	s.Equal(2, st.Labels)
	s.Equal(uint64(6), st.Interns)
	s.Equal(uint64(3), st.Hits)
}

func (s *StorageSuite) TestResolve() {
	x := s.intern(stmtKind, "x=1")
	y := s.intern(stmtKind, "y=2")
	b := s.intern(blockKind, "", x, y)

	n, err := s.s.Resolve(b)
	s.NoError(err)
	s.Equal(blockKind, n.Kind)
	s.Equal("", n.Label)
	s.Equal([]plumbing.Handle{x, y}, n.Children)
	s.Equal(3, n.Size)
	s.Equal(2, n.Height)
	s.False(n.IsLeaf())

	n, err = s.s.Resolve(x)
	s.NoError(err)
	s.Equal("x=1", n.Label)
	s.Equal(1, n.Size)
	s.Equal(1, n.Height)
	s.True(n.IsLeaf())
}

func (s *StorageSuite) TestHeightUsesDeepestChild() {
	leaf := s.intern(exprKind, "a")
	deep := s.intern(stmtKind, "", s.intern(exprKind, "", leaf))
	root := s.intern(blockKind, "", leaf, deep)

	n, err := s.s.Resolve(root)
	s.NoError(err)
	s.Equal(4, n.Height)
	s.Equal(5, n.Size)
}

func (s *StorageSuite) TestChildrenAreCopied() {
	children := []plumbing.Handle{s.intern(stmtKind, "a")}
	h := s.intern(blockKind, "", children...)
	children[0] = plumbing.ZeroHandle

	n, err := s.s.Resolve(h)
	s.NoError(err)
	s.False(n.Children[0].IsZero())

	n.Children[0] = plumbing.ZeroHandle
	n, err = s.s.Resolve(h)
	s.NoError(err)
	s.False(n.Children[0].IsZero())
}

func (s *StorageSuite) TestStoreIDsAreNotReused() {
	var ids atomic.Uint32
	id, err := nextID(&ids)
	s.NoError(err)
	s.Equal(uint32(1), id)

	ids.Store(plumbing.MaxStoreID - 1)
	id, err = nextID(&ids)
	s.NoError(err)
	s.Equal(uint32(plumbing.MaxStoreID), id)

	_, err = nextID(&ids)
	s.ErrorIs(err, ErrStoreIDsExhausted)
	s.Equal(uint32(plumbing.MaxStoreID), ids.Load())

	s.NotEqual(NewStorage().ID(), NewStorage().ID())
}

func (s *StorageSuite) TestFingerprintSensitivity() {
	x1 := s.intern(stmtKind, "x=1")
	x2 := s.intern(stmtKind, "x=2")
	y := s.intern(stmtKind, "y=2")
	s.NotEqual(x1, x2)

	a := s.intern(blockKind, "", x1, y)
	b := s.intern(blockKind, "", x2, y)
	c := s.intern(blockKind, "", y, x1)
	d := s.intern(stmtKind, "", x1, y)

	fp := func(h plumbing.Handle) string {
		n, err := s.s.Resolve(h)
		s.Require().NoError(err)
		return n.Fingerprint.String()
	}

	s.NotEqual(fp(a), fp(b), "label change")
	s.NotEqual(fp(a), fp(c), "child order change")
	s.NotEqual(fp(a), fp(d), "kind change")

	// the untouched sibling keeps its fingerprint, only ancestors change
	na, _ := s.s.Resolve(a)
	nb, _ := s.s.Resolve(b)
	s.Equal(na.Children[1], nb.Children[1])

	// label changes keep the structure hash
	s.Equal(na.Structure, nb.Structure)
}

func (s *StorageSuite) TestResolveUnknownHandle() {
	other := NewStorage()
	h, err := other.Intern(stmtKind, "x", nil)
	s.NoError(err)

	_, err = s.s.Resolve(h)
	s.ErrorIs(err, plumbing.ErrUnknownHandle)

	_, err = s.s.Resolve(plumbing.ZeroHandle)
	s.ErrorIs(err, plumbing.ErrUnknownHandle)

	_, err = s.s.Resolve(plumbing.NewHandle(s.s.ID(), 1000))
	s.ErrorIs(err, plumbing.ErrUnknownHandle)
}

func (s *StorageSuite) TestInternMalformed() {
	other := NewStorage()
	foreign, err := other.Intern(stmtKind, "x", nil)
	s.NoError(err)

	_, err = s.s.Intern(blockKind, "", []plumbing.Handle{foreign})
	s.ErrorIs(err, plumbing.ErrUnknownHandle)

	_, err = s.s.Intern(blockKind, "", []plumbing.Handle{plumbing.ZeroHandle})
	s.ErrorIs(err, plumbing.ErrMalformedInput)

	_, err = s.s.Intern(blockKind, "", []plumbing.Handle{plumbing.NewHandle(s.s.ID(), 42)})
	s.ErrorIs(err, plumbing.ErrMalformedInput)

	_, err = s.s.Intern(plumbing.InvalidKind, "x", nil)
	s.ErrorIs(err, plumbing.ErrMalformedInput)

	s.Equal(0, s.s.Len())
}

func (s *StorageSuite) TestCapacityExceeded() {
	st := NewStorage(WithMaxNodes(2))
	a, err := st.Intern(stmtKind, "a", nil)
	s.NoError(err)
	b, err := st.Intern(stmtKind, "b", nil)
	s.NoError(err)

	_, err = st.Intern(blockKind, "", []plumbing.Handle{a, b})
	s.ErrorIs(err, plumbing.ErrCapacityExceeded)

	var cerr *plumbing.CapacityExceededError
	s.ErrorAs(err, &cerr)
	s.Equal(2, cerr.Limit)

	// known nodes are still returned
	again, err := st.Intern(stmtKind, "a", nil)
	s.NoError(err)
	s.Equal(a, again)
	s.Equal(2, st.Len())
}

func (s *StorageSuite) TestCollisionCheck() {
	st := NewStorage(WithCollisionCheck(true))
	a, err := st.Intern(stmtKind, "a", nil)
	s.NoError(err)
	b, err := st.Intern(stmtKind, "a", nil)
	s.NoError(err)
	s.Equal(a, b)
}

func (s *StorageSuite) TestLabelNormalization() {
	composed := "caf\u00e9"
	decomposed := "cafe\u0301"

	st := NewStorage(WithLabelNormalization(true))
	a, err := st.Intern(stmtKind, composed, nil)
	s.NoError(err)
	b, err := st.Intern(stmtKind, decomposed, nil)
	s.NoError(err)
	s.Equal(a, b)

	a, err = s.s.Intern(stmtKind, composed, nil)
	s.NoError(err)
	b, err = s.s.Intern(stmtKind, decomposed, nil)
	s.NoError(err)
	s.NotEqual(a, b)
}

func (s *StorageSuite) TestLookup() {
	h := s.block("a")
	n, err := s.s.Resolve(h)
	s.NoError(err)

	got, ok := s.s.Lookup(n.Fingerprint)
	s.True(ok)
	s.Equal(h, got)

	var missing [20]byte
	_, ok = s.s.Lookup(missing)
	s.False(ok)
}

func (s *StorageSuite) TestWithShards() {
	o := newOptions()
	WithShards(5)(&o)
	s.Equal(8, o.shards)
	WithShards(0)(&o)
	s.Equal(8, o.shards)
	WithShards(1)(&o)
	s.Equal(1, o.shards)

	st := NewStorage(WithShards(1))
	a, err := st.Intern(stmtKind, "a", nil)
	s.NoError(err)
	b, err := st.Intern(stmtKind, "b", nil)
	s.NoError(err)
	again, err := st.Intern(stmtKind, "a", nil)
	s.NoError(err)
	s.Equal(a, again)
	s.NotEqual(a, b)
}

func (s *StorageSuite) TestConcurrentIntern() {
	const workers = 16
	results := make([]plumbing.Handle, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()

			var stmts []plumbing.Handle
			for i := 0; i < 50; i++ {
				h, err := s.s.Intern(stmtKind, strings.Repeat("x", i+1), nil)
				if err != nil {
					s.Fail(err.Error())
					return
				}
				stmts = append(stmts, h)
			}

			h, err := s.s.Intern(blockKind, "", stmts)
			if err != nil {
				s.Fail(err.Error())
				return
			}
			results[w] = h
		}(w)
	}
	wg.Wait()

	for _, h := range results {
		s.Equal(results[0], h)
	}
	s.Equal(51, s.s.Len())
	s.Equal(50, s.s.Stats().Labels)
}

func (s *StorageSuite) TestConcurrentResolve() {
	h := s.block("a", "b")

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				n, err := s.s.Resolve(h)
				s.NoError(err)
				s.Equal(3, n.Size)

				_, err = s.s.Intern(stmtKind, strings.Repeat("y", w*200+i+1), nil)
				s.NoError(err)
			}
		}(w)
	}
	wg.Wait()

	s.Equal(3+8*200, s.s.Len())
}

func (s *StorageSuite) TestArenaGrowsAcrossChunks() {
	var last plumbing.Handle
	for i := 0; i < chunkSize+10; i++ {
		last = s.intern(stmtKind, strings.Repeat("z", i+1))
	}

	n, err := s.s.Resolve(last)
	s.NoError(err)
	s.Equal(chunkSize+10, len(n.Label))
}

func (s *StorageSuite) TestLabelStorage() {
	l := NewLabelStorage()
	id, canonical := l.Intern("foo")
	s.Equal("foo", canonical)
	s.NotEqual(LabelID(0), id)

	again, _ := l.Intern("foo")
	s.Equal(id, again)

	got, ok := l.Get("foo")
	s.True(ok)
	s.Equal(id, got)

	_, ok = l.Get("bar")
	s.False(ok)

	name, ok := l.Resolve(id)
	s.True(ok)
	s.Equal("foo", name)

	name, ok = l.Resolve(0)
	s.True(ok)
	s.Equal("", name)

	_, ok = l.Resolve(99)
	s.False(ok)
	s.Equal(1, l.Len())
}

func (s *StorageSuite) TestCollector() {
	s.block("a", "b")
	s.block("a", "b")

	c := NewCollector(s.s, prometheus.Labels{"store": "test"})
	s.Equal(4, testutil.CollectAndCount(c))

	expected := `
# HELP hyperast_store_nodes Number of distinct nodes in the store.
# TYPE hyperast_store_nodes gauge
hyperast_store_nodes{store="test"} 3
# HELP hyperast_store_intern_hits_total Total intern calls answered with an existing node.
# TYPE hyperast_store_intern_hits_total counter
hyperast_store_intern_hits_total{store="test"} 3
`
	s.NoError(testutil.CollectAndCompare(c, strings.NewReader(expected),
		"hyperast_store_nodes", "hyperast_store_intern_hits_total"))
}
