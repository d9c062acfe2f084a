package difftree

import (
	"bufio"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/hyperast/go-hyperast/plumbing"
	"github.com/hyperast/go-hyperast/utils/merkletrie/noder"
)

// jsonOperation is the wire form of an Operation, one JSON object per
// line tagged by "op".
type jsonOperation struct {
	Op       string        `json:"op"`
	Path     string        `json:"path,omitempty"`
	To       *jsonPosition `json:"to,omitempty"`
	Kind     string        `json:"kind"`
	Label    string        `json:"label,omitempty"`
	OldLabel string        `json:"old_label,omitempty"`
	Src      *int          `json:"src,omitempty"`
	Dst      *int          `json:"dst,omitempty"`
}

type jsonPosition struct {
	Parent string `json:"parent"`
	Index  int    `json:"index"`
}

// An Encoder writes operations to an output stream as JSON lines.
type Encoder struct {
	w   *bufio.Writer
	enc *json.Encoder
}

// NewEncoder returns a new encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	bw := bufio.NewWriter(w)
	return &Encoder{w: bw, enc: json.NewEncoder(bw)}
}

// Encode writes every operation of s.
func (e *Encoder) Encode(s Script) error {
	for _, o := range s {
		if err := e.enc.Encode(toJSON(o)); err != nil {
			return err
		}
	}

	return e.w.Flush()
}

func toJSON(o Operation) *jsonOperation {
	j := &jsonOperation{
		Op:       o.Action.String(),
		Kind:     o.Kind.String(),
		Label:    o.Label,
		OldLabel: o.OldLabel,
	}

	if o.Action != Insert {
		j.Path = o.Path.String()
	}

	if o.Action == Insert || o.Action == Move {
		j.To = &jsonPosition{Parent: o.To.Parent.String(), Index: o.To.Index}
	}

	if o.Src >= 0 {
		src := o.Src
		j.Src = &src
	}

	if o.Dst >= 0 {
		dst := o.Dst
		j.Dst = &dst
	}

	return j
}

// A Decoder reads operations written by an Encoder.
type Decoder struct {
	dec *json.Decoder
}

// NewDecoder returns a new decoder that reads from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: json.NewDecoder(r)}
}

// Decode reads the next operation. It returns io.EOF when the input is
// exhausted.
func (d *Decoder) Decode() (Operation, error) {
	var j jsonOperation
	if err := d.dec.Decode(&j); err != nil {
		return Operation{}, err
	}

	return fromJSON(&j)
}

// DecodeAll reads operations until the end of the input.
func (d *Decoder) DecodeAll() (Script, error) {
	var s Script
	for {
		o, err := d.Decode()
		if err == io.EOF {
			return s, nil
		}

		if err != nil {
			return nil, err
		}

		s = append(s, o)
	}
}

func fromJSON(j *jsonOperation) (Operation, error) {
	a, err := parseAction(j.Op)
	if err != nil {
		return Operation{}, err
	}

	kind := plumbing.KindFor(j.Kind)
	if !kind.Valid() {
		return Operation{}, fmt.Errorf("%w: missing kind", ErrInvalidOperation)
	}

	o := Operation{Action: a, Src: -1, Dst: -1, Kind: kind, Label: j.Label, OldLabel: j.OldLabel}
	if j.Src != nil {
		o.Src = *j.Src
	}

	if j.Dst != nil {
		o.Dst = *j.Dst
	}

	if a != Insert {
		if o.Path, err = noder.ParsePath(j.Path); err != nil {
			return Operation{}, fmt.Errorf("%w: %s", ErrInvalidOperation, err)
		}
	}

	if a == Insert || a == Move {
		if j.To == nil {
			return Operation{}, fmt.Errorf("%w: %s without target position", ErrInvalidOperation, a)
		}

		parent, err := noder.ParsePath(j.To.Parent)
		if err != nil {
			return Operation{}, fmt.Errorf("%w: %s", ErrInvalidOperation, err)
		}

		o.To = Position{Parent: parent, Index: j.To.Index}
	}

	return o, nil
}
