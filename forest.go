package hyperast

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hyperast/go-hyperast/plumbing"
	"github.com/hyperast/go-hyperast/plumbing/difftree"
	"github.com/hyperast/go-hyperast/plumbing/storer"
	"github.com/hyperast/go-hyperast/storage/memory"
	"github.com/hyperast/go-hyperast/utils/merkletrie"
	"github.com/hyperast/go-hyperast/utils/merkletrie/noder"
)

const tracerName = "github.com/hyperast/go-hyperast"

// ErrChildNotFound is returned when a node has no child with the
// requested label or kind.
var ErrChildNotFound = errors.New("child not found")

var (
	diffTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hyperast_diff_total",
		Help: "Total diffs computed by result",
	}, []string{"result"})

	diffDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hyperast_diff_duration_seconds",
		Help:    "Diff duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
	})

	diffOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hyperast_diff_operations_total",
		Help: "Total edit operations produced by action",
	}, []string{"action"})
)

// Forest is a store of syntax trees able to compare any two of them. It
// is safe for concurrent use.
type Forest struct {
	s      *memory.Storage
	o      Options
	tracer trace.Tracer
}

var _ storer.NodeStorer = (*Forest)(nil)

// New returns an empty Forest. o may be nil to use the default options.
func New(o *Options) (*Forest, error) {
	if o == nil {
		o = &Options{}
	}

	opts := *o
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	return &Forest{
		s:      memory.NewStorage(opts.storageOptions()...),
		o:      opts,
		tracer: opts.TracerProvider.Tracer(tracerName),
	}, nil
}

// Storage returns the store holding the trees of the forest.
func (f *Forest) Storage() *memory.Storage {
	return f.s
}

// Options returns the options of the forest, defaults included.
func (f *Forest) Options() Options {
	return f.o
}

// Intern implements storer.NodeInterner.
func (f *Forest) Intern(kind plumbing.Kind, label string, children []plumbing.Handle) (plumbing.Handle, error) {
	return f.s.Intern(kind, label, children)
}

// Resolve implements storer.NodeResolver.
func (f *Forest) Resolve(h plumbing.Handle) (plumbing.Node, error) {
	return f.s.Resolve(h)
}

// ChildByLabel returns the first child of h with the given label.
func (f *Forest) ChildByLabel(h plumbing.Handle, label string) (plumbing.Handle, error) {
	return f.child(h, func(n plumbing.Node) bool { return n.Label == label })
}

// ChildByKind returns the first child of h of the given kind.
func (f *Forest) ChildByKind(h plumbing.Handle, kind plumbing.Kind) (plumbing.Handle, error) {
	return f.child(h, func(n plumbing.Node) bool { return n.Kind == kind })
}

func (f *Forest) child(h plumbing.Handle, match func(plumbing.Node) bool) (plumbing.Handle, error) {
	n, err := f.s.Resolve(h)
	if err != nil {
		return plumbing.ZeroHandle, err
	}

	for _, c := range n.Children {
		cn, err := f.s.Resolve(c)
		if err != nil {
			return plumbing.ZeroHandle, err
		}

		if match(cn) {
			return c, nil
		}
	}

	return plumbing.ZeroHandle, ErrChildNotFound
}

// Match computes the mapping between the trees rooted at src and dst.
func (f *Forest) Match(ctx context.Context, src, dst plumbing.Handle) (*merkletrie.Mapping, error) {
	o := f.o.Match
	return merkletrie.Match(ctx, f.s, src, dst, &o)
}

// EditScript returns the edit script turning src into dst, given the
// mapping computed for them.
func (f *Forest) EditScript(m *merkletrie.Mapping, src, dst plumbing.Handle) (difftree.Script, error) {
	for _, h := range []plumbing.Handle{src, dst} {
		if h.IsZero() {
			continue
		}

		if _, err := f.s.Resolve(h); err != nil {
			return nil, err
		}
	}

	if m.Src().Root() != src || m.Dst().Root() != dst {
		return nil, plumbing.ErrMappingMismatch
	}

	return difftree.Generate(m)
}

// Diff is the comparison of two trees.
type Diff struct {
	Src, Dst plumbing.Handle
	Mapping  *merkletrie.Mapping
	Script   difftree.Script
}

// Diff matches the trees rooted at src and dst and computes the edit
// script between them.
func (f *Forest) Diff(ctx context.Context, src, dst plumbing.Handle) (*Diff, error) {
	ctx, span := f.tracer.Start(ctx, "hyperast.Forest.Diff", trace.WithAttributes(
		attribute.String("src", src.String()),
		attribute.String("dst", dst.String()),
	))
	defer span.End()

	start := time.Now()
	d, err := f.diff(ctx, src, dst)
	diffDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		diffTotal.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "diff failed")
		return nil, err
	}

	st := d.Script.Stats()
	diffTotal.WithLabelValues("ok").Inc()
	diffOperations.WithLabelValues(difftree.Insert.String()).Add(float64(st.Inserts))
	diffOperations.WithLabelValues(difftree.Delete.String()).Add(float64(st.Deletes))
	diffOperations.WithLabelValues(difftree.Move.String()).Add(float64(st.Moves))
	diffOperations.WithLabelValues(difftree.Update.String()).Add(float64(st.Updates))

	span.SetAttributes(
		attribute.Int("mapping.size", d.Mapping.Len()),
		attribute.Int("script.inserts", st.Inserts),
		attribute.Int("script.deletes", st.Deletes),
		attribute.Int("script.moves", st.Moves),
		attribute.Int("script.updates", st.Updates),
	)
	span.SetStatus(codes.Ok, "")
	return d, nil
}

func (f *Forest) diff(ctx context.Context, src, dst plumbing.Handle) (*Diff, error) {
	m, err := f.Match(ctx, src, dst)
	if err != nil {
		return nil, err
	}

	trace.SpanFromContext(ctx).AddEvent("matched", trace.WithAttributes(
		attribute.Int("mapping.size", m.Len()),
	))

	script, err := f.EditScript(m, src, dst)
	if err != nil {
		return nil, err
	}

	return &Diff{Src: src, Dst: dst, Mapping: m, Script: script}, nil
}

// ForEachPair calls fn with the paths of every mapped pair of nodes, in
// source document order. It stops at the first error returned by fn.
func (d *Diff) ForEachPair(fn func(src, dst noder.Path) error) error {
	return d.Mapping.ForEach(func(p merkletrie.Pair) error {
		return fn(d.Mapping.Src().Path(p.Src), d.Mapping.Dst().Path(p.Dst))
	})
}

// Stats returns the number of operations of the script by action.
func (d *Diff) Stats() difftree.Stats {
	return d.Script.Stats()
}
