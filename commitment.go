package api

import (
	"fmt"
	"io"

	"github.com/bwesterb/go-ristretto"
)

const COMMITMENT_SIZE = 32

// Commitment is a Pedersen commitment value * B + blinding * B_blinding.
type Commitment struct {
	Point *ristretto.Point
}

// Opening is what the committer keeps to open a commitment later.
type Opening struct {
	Value    *ristretto.Scalar
	Blinding *ristretto.Scalar
}

func Commit(value, blinding *ristretto.Scalar, gens *PedersenGens) (*Commitment, *Opening) {
	return &Commitment{Point: gens.Commit(value, blinding)}, &Opening{
		Value:    cloneScalar(value),
		Blinding: cloneScalar(blinding),
	}
}

// CommitWithRNG draws a uniform blinding factor from rng.
func CommitWithRNG(value *ristretto.Scalar, rng io.Reader, gens *PedersenGens) (*Commitment, *Opening, error) {
	blinding, err := randomScalar(rng)
	if err != nil {
		return nil, nil, err
	}
	c, o := Commit(value, blinding, gens)
	return c, o, nil
}

func (c *Commitment) Bytes() []byte {
	return c.Point.Bytes()
}

func CommitmentFromBytes(data []byte) (*Commitment, error) {
	if len(data) != COMMITMENT_SIZE {
		return nil, fmt.Errorf("CommitmentFromBytes %w: length %d", ErrDecode, len(data))
	}
	p, err := pointFromBytes(data)
	if err != nil {
		return nil, err
	}
	return &Commitment{Point: p}, nil
}

func (c *Commitment) Equal(other *Commitment) bool {
	return pointsEqual(c.Point, other.Point)
}

// Add returns the commitment to the sum of both openings.
func (c *Commitment) Add(other *Commitment) *Commitment {
	var p ristretto.Point
	return &Commitment{Point: p.Add(c.Point, other.Point)}
}

func (c *Commitment) Sub(other *Commitment) *Commitment {
	var p ristretto.Point
	return &Commitment{Point: p.Sub(c.Point, other.Point)}
}

func (o *Opening) Add(other *Opening) *Opening {
	var v, b ristretto.Scalar
	return &Opening{
		Value:    v.Add(o.Value, other.Value),
		Blinding: b.Add(o.Blinding, other.Blinding),
	}
}

func (o *Opening) Verify(c *Commitment, gens *PedersenGens) bool {
	return pointsEqual(c.Point, gens.Commit(o.Value, o.Blinding))
}
