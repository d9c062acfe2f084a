package merkletrie

import (
	"context"

	"github.com/hyperast/go-hyperast/plumbing"
	"github.com/hyperast/go-hyperast/plumbing/storer"
	"github.com/hyperast/go-hyperast/utils/merkletrie/noder"
	"github.com/hyperast/go-hyperast/utils/trace"
)

// Match computes the mapping between the trees rooted at src and dst.
// Both handles must come from r; a zero handle is an empty tree. o may be
// nil to use the default options.
func Match(ctx context.Context, r storer.NodeResolver, src, dst plumbing.Handle, o *Options) (*Mapping, error) {
	from, err := noder.New(r, src)
	if err != nil {
		return nil, err
	}

	to, err := noder.New(r, dst)
	if err != nil {
		return nil, err
	}

	return MatchTrees(ctx, from, to, o)
}

// MatchTrees is like Match for already decompressed trees.
func MatchTrees(ctx context.Context, src, dst *noder.Tree, o *Options) (*Mapping, error) {
	if o == nil {
		o = &Options{}
	}

	if err := o.Validate(); err != nil {
		return nil, err
	}

	mt := &matcher{
		ctx: ctx,
		o:   o,
		m:   NewMapping(src, dst),
		src: src,
		dst: dst,
	}

	if src.Len() == 0 || dst.Len() == 0 {
		return mt.m, nil
	}

	if err := mt.topDown(); err != nil {
		return nil, err
	}
	trace.Match.Printf("top-down: %d of %d/%d nodes mapped", mt.m.Len(), src.Len(), dst.Len())

	if err := mt.bottomUp(); err != nil {
		return nil, err
	}
	trace.Match.Printf("bottom-up: %d of %d/%d nodes mapped", mt.m.Len(), src.Len(), dst.Len())

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mt.leaves()
	trace.Match.Printf("leaves: %d of %d/%d nodes mapped", mt.m.Len(), src.Len(), dst.Len())

	return mt.m, nil
}

type matcher struct {
	ctx      context.Context
	o        *Options
	m        *Mapping
	src, dst *noder.Tree
}

// tryLink maps s to d if both are unmapped. Identical subtrees are mapped
// as a whole, which requires them to be entirely unmapped.
func (mt *matcher) tryLink(s, d int) bool {
	if mt.m.IsSrcMapped(s) || mt.m.IsDstMapped(d) {
		return false
	}

	sn := mt.src.Node(s)
	if sn.Fingerprint == mt.dst.Node(d).Fingerprint {
		if !mt.m.isFree(s, d) {
			return false
		}

		mt.m.n += mt.m.linkRange(s, d, sn.Size)
		return true
	}

	mt.m.link(s, d)
	return true
}
