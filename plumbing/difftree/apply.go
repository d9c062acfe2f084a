package difftree

import (
	"fmt"

	"github.com/hyperast/go-hyperast/utils/merkletrie/noder"
)

// Apply replays s on a copy of src and returns the resulting forest.
// Applying the script generated for a mapping gives a forest holding a
// tree equal to the destination of the mapping.
func Apply(src *noder.Tree, s Script) (*Forest, error) {
	f := NewForest(src)
	for i, o := range s {
		if err := f.apply(o); err != nil {
			return nil, fmt.Errorf("operation %d (%s): %w", i, o, err)
		}
	}

	return f, nil
}

func (f *Forest) apply(o Operation) error {
	switch o.Action {
	case Insert:
		return f.insertAt(&Node{Kind: o.Kind, Label: o.Label, src: -1, dst: o.Dst}, o.To)
	case Delete:
		n, err := f.node(o.Path)
		if err != nil {
			return err
		}

		if len(n.Children) != 0 {
			return fmt.Errorf("%w: deleted node at %s has children", ErrInvalidOperation, o.Path)
		}

		n.detach()
		return nil
	case Move:
		n, err := f.node(o.Path)
		if err != nil {
			return err
		}

		n.detach()
		return f.insertAt(n, o.To)
	case Update:
		n, err := f.node(o.Path)
		if err != nil {
			return err
		}

		if n.Label != o.OldLabel {
			return fmt.Errorf("%w: label at %s is %q, not %q", ErrInvalidOperation, o.Path, n.Label, o.OldLabel)
		}

		n.Label = o.Label
		return nil
	default:
		return fmt.Errorf("%w: unknown action %d", ErrInvalidOperation, o.Action)
	}
}

func (f *Forest) node(p noder.Path) (*Node, error) {
	n, ok := f.Node(p)
	if !ok {
		return nil, fmt.Errorf("%w: no node at %q", ErrInvalidOperation, p)
	}

	return n, nil
}

func (f *Forest) insertAt(n *Node, to Position) error {
	parent, ok := f.lookup(to.Parent)
	if !ok {
		return fmt.Errorf("%w: no node at %q", ErrInvalidOperation, to.Parent)
	}

	if to.Index < 0 || to.Index > len(parent.Children) {
		return fmt.Errorf("%w: index %d out of range at %q", ErrInvalidOperation, to.Index, to.Parent)
	}

	parent.insert(n, to.Index)
	return nil
}
