package sexp

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/hyperast/go-hyperast/plumbing"
	"github.com/hyperast/go-hyperast/plumbing/storer"
)

// An Encoder writes stored trees to an output stream.
type Encoder struct {
	w      *bufio.Writer
	indent string
}

// NewEncoder returns a new encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

// SetIndent makes the encoder write every child on its own line, indented
// with the given string per level. An empty indent writes trees on a
// single line.
func (e *Encoder) SetIndent(indent string) {
	e.indent = indent
}

// Encode writes the tree rooted at h followed by a newline.
func (e *Encoder) Encode(r storer.NodeResolver, h plumbing.Handle) error {
	if err := e.encode(r, h, 0); err != nil {
		return err
	}

	if err := e.w.WriteByte('\n'); err != nil {
		return err
	}

	return e.w.Flush()
}

func (e *Encoder) encode(r storer.NodeResolver, h plumbing.Handle, depth int) error {
	n, err := r.Resolve(h)
	if err != nil {
		return err
	}

	e.w.WriteByte(nodeStartMark)
	e.w.WriteString(kindString(n.Kind))
	if n.HasLabel() {
		e.w.WriteByte(' ')
		e.w.WriteString(strconv.Quote(n.Label))
	}

	for _, c := range n.Children {
		if e.indent == "" {
			e.w.WriteByte(' ')
		} else {
			e.w.WriteByte('\n')
			e.w.WriteString(strings.Repeat(e.indent, depth+1))
		}

		if err := e.encode(r, c, depth+1); err != nil {
			return err
		}
	}

	_, err = e.w.WriteRune(nodeEndMark)
	return err
}

// String returns the single line notation of the tree rooted at h.
func String(r storer.NodeResolver, h plumbing.Handle) (string, error) {
	var buf strings.Builder
	if err := NewEncoder(&buf).Encode(r, h); err != nil {
		return "", err
	}

	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// kindString quotes the kinds that cannot be written bare.
func kindString(k plumbing.Kind) string {
	name := k.String()
	if name == "" || strings.IndexFunc(name, func(r rune) bool {
		return unicode.IsSpace(r) || r == nodeStartMark || r == nodeEndMark || r == labelMark || r == escapeMark
	}) >= 0 {
		return strconv.Quote(name)
	}

	return name
}
