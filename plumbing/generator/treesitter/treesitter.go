// Package treesitter implements generators for the languages supported by
// the tree-sitter grammars bundled with github.com/smacker/go-tree-sitter.
//
// Every syntax node becomes a stored node whose kind is the grammar type of
// the syntax node. Named leaves are labeled with their source text, so
// identifiers and literals take part in the fingerprints while punctuation
// and keywords are identified by their kind alone.
package treesitter

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/hyperast/go-hyperast/plumbing"
	"github.com/hyperast/go-hyperast/plumbing/generator"
	"github.com/hyperast/go-hyperast/plumbing/storer"
	"github.com/hyperast/go-hyperast/utils/trace"
)

// DefaultMaxFileSize is the size of the largest file parsed by default.
const DefaultMaxFileSize = 10 * 1024 * 1024

// nodes walked between two context checks
const checkInterval = 4096

var (
	// ErrSyntax is returned when syntax errors are rejected and the
	// content holds some.
	ErrSyntax = errors.New("syntax error")
	// ErrFileTooLarge is returned for content larger than the configured
	// limit.
	ErrFileTooLarge = errors.New("file exceeds maximum size limit")
	// ErrInvalidContent is returned for content that is not valid UTF-8.
	ErrInvalidContent = errors.New("content is not valid UTF-8")
)

// Option configures a Generator.
type Option func(*Generator)

// WithMaxFileSize sets the size of the largest file parsed. Values lower
// than 1 are ignored.
func WithMaxFileSize(bytes int64) Option {
	return func(g *Generator) {
		if bytes > 0 {
			g.maxFileSize = bytes
		}
	}
}

// WithSyntaxErrors makes Generate fail with ErrSyntax when reject is true
// and the content has syntax errors. By default the error nodes produced
// by tree-sitter are stored like any other node.
func WithSyntaxErrors(reject bool) Option {
	return func(g *Generator) {
		g.rejectErrors = reject
	}
}

// Generator is a generator.Generator backed by a tree-sitter grammar. It
// is safe for concurrent use: every call to Generate uses its own parser.
type Generator struct {
	lang         Language
	atoms        map[string]bool
	maxFileSize  int64
	rejectErrors bool
}

var _ generator.Generator = (*Generator)(nil)

// New returns a Generator for the given language.
func New(l Language, opts ...Option) *Generator {
	g := &Generator{
		lang:        l,
		atoms:       make(map[string]bool, len(l.Atoms)),
		maxFileSize: DefaultMaxFileSize,
	}

	for _, a := range l.Atoms {
		g.atoms[a] = true
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Generators returns a generator for each of the given languages, or for
// all the bundled languages when none is given.
func Generators(langs []Language, opts ...Option) []generator.Generator {
	if len(langs) == 0 {
		langs = Languages()
	}

	gens := make([]generator.Generator, len(langs))
	for i, l := range langs {
		gens[i] = New(l, opts...)
	}

	return gens
}

// Language implements generator.Generator.
func (g *Generator) Language() string {
	return g.lang.Name
}

// Extensions implements generator.Generator.
func (g *Generator) Extensions() []string {
	return g.lang.Extensions
}

// Generate implements generator.Generator.
func (g *Generator) Generate(ctx context.Context, s storer.NodeInterner, content []byte) (plumbing.Handle, error) {
	if err := ctx.Err(); err != nil {
		return plumbing.ZeroHandle, err
	}

	if int64(len(content)) > g.maxFileSize {
		return plumbing.ZeroHandle, fmt.Errorf("%w: size %d exceeds limit %d", ErrFileTooLarge, len(content), g.maxFileSize)
	}

	if !utf8.Valid(content) {
		return plumbing.ZeroHandle, ErrInvalidContent
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(g.lang.Grammar)

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return plumbing.ZeroHandle, fmt.Errorf("%s: parse failed: %w", g.lang.Name, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		p := firstError(root).StartPoint()
		if g.rejectErrors {
			return plumbing.ZeroHandle, fmt.Errorf("%w at %d:%d", ErrSyntax, p.Row+1, p.Column+1)
		}

		trace.General.Printf("%s: syntax error at %d:%d kept in tree", g.lang.Name, p.Row+1, p.Column+1)
	}

	return g.build(ctx, s, root, content)
}

// build interns the tree in post-order, walking it with a cursor so deep
// trees do not grow the stack.
func (g *Generator) build(ctx context.Context, s storer.NodeInterner, root *sitter.Node, content []byte) (plumbing.Handle, error) {
	c := sitter.NewTreeCursor(root)
	defer c.Close()

	b := generator.NewBuilder(s)
	for walked := 1; ; walked++ {
		if walked%checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return plumbing.ZeroHandle, err
			}
		}

		n := c.CurrentNode()
		kind := plumbing.KindFor(n.Type())
		if !g.atoms[n.Type()] && c.GoToFirstChild() {
			b.Open(kind, "")
			continue
		}

		if _, err := b.Leaf(kind, g.label(n, content)); err != nil {
			return plumbing.ZeroHandle, err
		}

		for !c.GoToNextSibling() {
			if !c.GoToParent() {
				return b.Root()
			}

			if _, err := b.Close(); err != nil {
				return plumbing.ZeroHandle, err
			}
		}
	}
}

func (g *Generator) label(n *sitter.Node, content []byte) string {
	if !n.IsNamed() && !g.atoms[n.Type()] {
		return ""
	}

	return n.Content(content)
}

// firstError returns the first error or missing node under n in document
// order, or n itself if there is none.
func firstError(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.HasError() || c.IsMissing() {
			return firstError(c)
		}
	}

	return n
}
