package sexp

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/hyperast/go-hyperast/plumbing"
	"github.com/hyperast/go-hyperast/plumbing/generator"
	"github.com/hyperast/go-hyperast/plumbing/storer"
)

const (
	nodeStartMark = '('
	nodeEndMark   = ')'
	labelMark     = '"'
	escapeMark    = '\\'
)

// ErrSyntax is returned when the input is not a valid tree description.
var ErrSyntax = errors.New("sexp: syntax error")

// A Decoder reads trees from an input stream and interns them.
type Decoder struct {
	r      *bufio.Reader
	offset int
	last   int
}

// NewDecoder returns a new decoder that reads from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Decode reads the next tree from the input and interns it into s. It
// returns io.EOF when the input holds no more trees.
func (d *Decoder) Decode(s storer.NodeInterner) (plumbing.Handle, error) {
	c, err := d.skipSpace()
	if err != nil {
		return plumbing.ZeroHandle, err
	}

	if c != nodeStartMark {
		return plumbing.ZeroHandle, d.errorf("%q found, %q expected", c, nodeStartMark)
	}

	b := generator.NewBuilder(s)
	if err := d.decodeNode(b); err != nil {
		return plumbing.ZeroHandle, err
	}

	return b.Root()
}

// decodeNode reads a node whose start mark was already consumed.
func (d *Decoder) decodeNode(b *generator.Builder) error {
	kind, err := d.readKind()
	if err != nil {
		return err
	}

	b.Open(plumbing.KindFor(kind), "")
	labeled := false
	for {
		c, err := d.skipSpace()
		if err == io.EOF {
			return d.errorf("unexpected end of input in %q", kind)
		}
		if err != nil {
			return err
		}

		switch c {
		case nodeEndMark:
			_, err := b.Close()
			return err
		case nodeStartMark:
			if err := d.decodeNode(b); err != nil {
				return err
			}
		case labelMark:
			if labeled {
				return d.errorf("second label in %q", kind)
			}
			label, err := d.readLabel()
			if err != nil {
				return err
			}
			b.SetLabel(label)
			labeled = true
		default:
			return d.errorf("unexpected %q in %q", c, kind)
		}
	}
}

func (d *Decoder) readKind() (string, error) {
	c, err := d.readRune()
	if err != nil && err != io.EOF {
		return "", err
	}

	if err == nil && c == labelMark {
		kind, err := d.readLabel()
		if err == nil && kind == "" {
			return "", d.errorf("missing kind")
		}
		return kind, err
	}

	if err == nil {
		d.unreadRune()
	}

	var buf strings.Builder
	for {
		c, err := d.readRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		if unicode.IsSpace(c) || c == nodeStartMark || c == nodeEndMark || c == labelMark {
			d.unreadRune()
			break
		}

		buf.WriteRune(c)
	}

	if buf.Len() == 0 {
		return "", d.errorf("missing kind")
	}

	return buf.String(), nil
}

// readLabel reads a quoted label whose opening mark was already consumed.
func (d *Decoder) readLabel() (string, error) {
	var buf bytes.Buffer
	buf.WriteRune(labelMark)

	escaped := false
	for {
		c, err := d.readRune()
		if err == io.EOF {
			return "", d.errorf("unterminated label")
		}
		if err != nil {
			return "", err
		}

		buf.WriteRune(c)
		switch {
		case escaped:
			escaped = false
		case c == escapeMark:
			escaped = true
		case c == labelMark:
			label, err := strconv.Unquote(buf.String())
			if err != nil {
				return "", d.errorf("invalid label %s: %s", buf.String(), err)
			}
			return label, nil
		}
	}
}

func (d *Decoder) skipSpace() (rune, error) {
	for {
		c, err := d.readRune()
		if err != nil {
			return 0, err
		}

		if !unicode.IsSpace(c) {
			return c, nil
		}
	}
}

func (d *Decoder) readRune() (rune, error) {
	c, n, err := d.r.ReadRune()
	d.offset += n
	d.last = n
	return c, err
}

func (d *Decoder) unreadRune() {
	if err := d.r.UnreadRune(); err == nil {
		d.offset -= d.last
	}
}

func (d *Decoder) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w at byte %d: %s", ErrSyntax, d.offset, fmt.Sprintf(format, args...))
}

// Parse interns the single tree described by text.
func Parse(s storer.NodeInterner, text string) (plumbing.Handle, error) {
	d := NewDecoder(strings.NewReader(text))
	h, err := d.Decode(s)
	if err == io.EOF {
		return plumbing.ZeroHandle, fmt.Errorf("%w: empty input", ErrSyntax)
	}
	if err != nil {
		return plumbing.ZeroHandle, err
	}

	if _, err := d.skipSpace(); err != io.EOF {
		return plumbing.ZeroHandle, d.errorf("trailing data after tree")
	}

	return h, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s storer.NodeInterner, text string) plumbing.Handle {
	h, err := Parse(s, text)
	if err != nil {
		panic(err)
	}

	return h
}

// Generator is a generator.Generator for files written in the sexp
// notation.
type Generator struct{}

var _ generator.Generator = Generator{}

// Language implements generator.Generator.
func (Generator) Language() string { return "sexp" }

// Extensions implements generator.Generator.
func (Generator) Extensions() []string { return []string{".sexp"} }

// Generate implements generator.Generator.
func (Generator) Generate(ctx context.Context, s storer.NodeInterner, content []byte) (plumbing.Handle, error) {
	if err := ctx.Err(); err != nil {
		return plumbing.ZeroHandle, err
	}

	return Parse(s, string(content))
}
