/*
Package merkletrie computes a correspondence between the nodes of two
stored trees.

Trees interned in a store are merkle trees: every node carries a
fingerprint of its whole subtree. The matcher uses them to pair identical
subtrees without visiting their content, then falls back to similarity
heuristics for the parts of the trees that changed.

Matching runs in three phases:

 1. Top-down: both trees are explored from the highest subtrees down.
    Subtrees with the same fingerprint are mapped together with all their
    descendants. When several subtrees share a fingerprint the largest
    ones go first and, among equals, they are paired in document order.

 2. Bottom-up: source nodes still unmapped are paired with destination
    nodes of the same kind whose descendants are mostly mapped to their
    own descendants (Dice coefficient over mapped descendants). Pairs are
    taken greedily, best similarity first, one height level at a time.
    The children of every pair found this way are then recovered: equal
    subtrees, subtrees differing only by labels and unique kinds are
    paired.

 3. Leaves: remaining leaves with the same kind and label are paired by
    proximity in document order.

The result is a Mapping, which the difftree package turns into an edit
script.
*/
package merkletrie
