// Package hyperast stores the syntax trees of many versions of source
// files in a single deduplicated store and computes structural diffs
// between any two of them.
//
// Trees are interned bottom-up into a content-addressed store: a subtree
// occurring in several files or versions is stored once and referenced by
// the same Handle. Two trees are compared by matching their nodes
// (utils/merkletrie), identical subtrees being recognized from their
// fingerprints without visiting them, and by deriving an edit script from
// the mapping (plumbing/difftree).
//
// A Forest bundles a store with the matching options:
//
//	f, _ := hyperast.New(nil)
//	src, _ := sexp.Parse(f, `(block (stmt "a") (stmt "b"))`)
//	dst, _ := sexp.Parse(f, `(block (stmt "b") (stmt "a"))`)
//	d, _ := f.Diff(ctx, src, dst)
//	fmt.Print(d.Script)
package hyperast
