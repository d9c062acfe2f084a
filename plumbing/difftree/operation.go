package difftree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/hyperast/go-hyperast/plumbing"
	"github.com/hyperast/go-hyperast/utils/merkletrie/noder"
)

// ErrInvalidOperation is returned when an operation cannot be replayed on
// the forest it is applied to.
var ErrInvalidOperation = errors.New("invalid operation")

// Action is the kind of an edit operation.
type Action int

const (
	_ Action = iota
	Insert
	Delete
	Move
	Update
)

func (a Action) String() string {
	switch a {
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	case Move:
		return "move"
	case Update:
		return "update"
	default:
		panic(fmt.Sprintf("unsupported action: %d", a))
	}
}

func parseAction(s string) (Action, error) {
	for _, a := range []Action{Insert, Delete, Move, Update} {
		if a.String() == s {
			return a, nil
		}
	}

	return 0, fmt.Errorf("%w: unknown action %q", ErrInvalidOperation, s)
}

// Position is a child slot of a forest: the Index-th child of the node at
// Parent, or the Index-th tree of the forest when Parent is empty.
type Position struct {
	Parent noder.Path
	Index  int
}

// Path returns the path a node gets when inserted at p.
func (p Position) Path() noder.Path {
	return p.Parent.Child(p.Index)
}

func (p Position) String() string {
	return p.Path().String()
}

// Operation is a single step of an edit script. Paths and positions are
// valid in the forest the script is being replayed on, right before the
// operation is applied.
type Operation struct {
	Action Action
	// Src is the id of the source node the operation acts on, -1 for
	// inserts.
	Src int
	// Dst is the id of the destination node the operation produces, -1
	// for deletes.
	Dst int
	// Path locates the node acted on, unused by inserts.
	Path noder.Path
	// To is where inserted and moved nodes are placed. A moved node is
	// detached first, so To is relative to the forest without it.
	To Position

	Kind     plumbing.Kind
	Label    string
	OldLabel string
}

func (o Operation) String() string {
	switch o.Action {
	case Insert:
		if o.Label == "" {
			return fmt.Sprintf("insert %s at %s", o.Kind, o.To)
		}
		return fmt.Sprintf("insert %s %q at %s", o.Kind, o.Label, o.To)
	case Delete:
		return fmt.Sprintf("delete %s at %s", o.Kind, o.Path)
	case Move:
		return fmt.Sprintf("move %s from %s to %s", o.Kind, o.Path, o.To)
	case Update:
		return fmt.Sprintf("update %s at %s: %q -> %q", o.Kind, o.Path, o.OldLabel, o.Label)
	default:
		return fmt.Sprintf("<invalid operation %d>", o.Action)
	}
}

// LabelDiff renders the character changes of an update in word-diff
// style, "[-removed-]{+added+}". It is empty for other actions.
func (o Operation) LabelDiff() string {
	if o.Action != Update {
		return ""
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(o.OldLabel, o.Label, false))

	var buf strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			buf.WriteString(d.Text)
		case diffmatchpatch.DiffDelete:
			buf.WriteString("[-" + d.Text + "-]")
		case diffmatchpatch.DiffInsert:
			buf.WriteString("{+" + d.Text + "+}")
		}
	}

	return buf.String()
}

// Script is an ordered list of operations.
type Script []Operation

// Stats counts the operations of a script by action.
type Stats struct {
	Inserts int
	Deletes int
	Moves   int
	Updates int
}

// Total returns the number of operations.
func (s Stats) Total() int {
	return s.Inserts + s.Deletes + s.Moves + s.Updates
}

func (s Stats) String() string {
	return fmt.Sprintf("%d insertions(+), %d deletions(-), %d moves, %d updates",
		s.Inserts, s.Deletes, s.Moves, s.Updates)
}

// Stats returns the number of operations of each action.
func (s Script) Stats() Stats {
	var st Stats
	for _, o := range s {
		switch o.Action {
		case Insert:
			st.Inserts++
		case Delete:
			st.Deletes++
		case Move:
			st.Moves++
		case Update:
			st.Updates++
		}
	}

	return st
}

func (s Script) String() string {
	var buf strings.Builder
	for _, o := range s {
		buf.WriteString(o.String())
		buf.WriteByte('\n')
	}

	return buf.String()
}
