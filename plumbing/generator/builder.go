package generator

import (
	"github.com/hyperast/go-hyperast/plumbing"
	"github.com/hyperast/go-hyperast/plumbing/storer"
)

// Builder helps generators intern a tree while walking it in document
// order: a node is opened when entered and interned when closed, once all
// its children have been interned.
type Builder struct {
	s      storer.NodeInterner
	frames []frame
	root   plumbing.Handle
}

type frame struct {
	kind     plumbing.Kind
	label    string
	children []plumbing.Handle
}

// NewBuilder returns a Builder interning into s.
func NewBuilder(s storer.NodeInterner) *Builder {
	return &Builder{s: s}
}

// Open starts a node. Its children are the nodes closed before the
// matching call to Close.
func (b *Builder) Open(kind plumbing.Kind, label string) {
	b.frames = append(b.frames, frame{kind: kind, label: label})
}

// SetLabel replaces the label of the innermost open node.
func (b *Builder) SetLabel(label string) {
	if len(b.frames) != 0 {
		b.frames[len(b.frames)-1].label = label
	}
}

// Close interns the innermost open node and attaches it to its parent.
func (b *Builder) Close() (plumbing.Handle, error) {
	if len(b.frames) == 0 {
		return plumbing.ZeroHandle, plumbing.NewMalformedInputError("close without a matching open")
	}

	top := b.frames[len(b.frames)-1]
	b.frames = b.frames[:len(b.frames)-1]

	h, err := b.s.Intern(top.kind, top.label, top.children)
	if err != nil {
		return plumbing.ZeroHandle, err
	}

	b.attach(h)
	return h, nil
}

// Leaf interns a node without children and attaches it to the innermost
// open node.
func (b *Builder) Leaf(kind plumbing.Kind, label string) (plumbing.Handle, error) {
	h, err := b.s.Intern(kind, label, nil)
	if err != nil {
		return plumbing.ZeroHandle, err
	}

	b.attach(h)
	return h, nil
}

// Attach adds an already interned subtree to the innermost open node.
func (b *Builder) Attach(h plumbing.Handle) {
	b.attach(h)
}

func (b *Builder) attach(h plumbing.Handle) {
	if len(b.frames) == 0 {
		b.root = h
		return
	}

	top := &b.frames[len(b.frames)-1]
	top.children = append(top.children, h)
}

// Depth returns the number of open nodes.
func (b *Builder) Depth() int {
	return len(b.frames)
}

// Root returns the last node closed at depth zero. It fails if nodes are
// still open or nothing was built.
func (b *Builder) Root() (plumbing.Handle, error) {
	if len(b.frames) != 0 {
		return plumbing.ZeroHandle, plumbing.NewMalformedInputError("%d nodes left open", len(b.frames))
	}

	if b.root.IsZero() {
		return plumbing.ZeroHandle, plumbing.NewMalformedInputError("empty tree")
	}

	return b.root, nil
}
