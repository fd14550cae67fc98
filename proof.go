package api

import (
	"fmt"

	"github.com/bwesterb/go-ristretto"
)

const (
	ONE_PHASE_COMMITMENTS byte = 0
	TWO_PHASE_COMMITMENTS byte = 1

	// A_I1, A_O1, S1, T_1, T_3, T_4, T_5, T_6
	R1CS_PROOF_POINTS = 8
	// t_x, t_x_blinding, e_blinding
	R1CS_PROOF_SCALARS = 3
)

// R1CSProof is a one-phase constraint system proof.
type R1CSProof struct {
	AI1 *ristretto.Point
	AO1 *ristretto.Point
	S1  *ristretto.Point

	T1 *ristretto.Point
	T3 *ristretto.Point
	T4 *ristretto.Point
	T5 *ristretto.Point
	T6 *ristretto.Point

	TX         *ristretto.Scalar
	TXBlinding *ristretto.Scalar
	EBlinding  *ristretto.Scalar

	IPPProof *InnerProductProof
}

// complete reports whether every element of the proof is present.
func (p *R1CSProof) complete() bool {
	if p == nil || p.IPPProof == nil {
		return false
	}
	for _, point := range []*ristretto.Point{p.AI1, p.AO1, p.S1, p.T1, p.T3, p.T4, p.T5, p.T6} {
		if point == nil {
			return false
		}
	}
	ipp := p.IPPProof
	for _, s := range []*ristretto.Scalar{p.TX, p.TXBlinding, p.EBlinding, ipp.A, ipp.B} {
		if s == nil {
			return false
		}
	}
	if len(ipp.LVec) != len(ipp.RVec) {
		return false
	}
	for i := range ipp.LVec {
		if ipp.LVec[i] == nil || ipp.RVec[i] == nil {
			return false
		}
	}
	return true
}

func (p *R1CSProof) SerializedSize() int {
	return 1 + (R1CS_PROOF_POINTS+R1CS_PROOF_SCALARS)*32 + p.IPPProof.SerializedSize()
}

// ToBytes encodes the proof as a version byte followed by the points, the
// scalars and the inner product proof, 32 bytes per element.
func (p *R1CSProof) ToBytes() []byte {
	buf := make([]byte, 0, p.SerializedSize())
	buf = append(buf, ONE_PHASE_COMMITMENTS)
	for _, point := range []*ristretto.Point{p.AI1, p.AO1, p.S1, p.T1, p.T3, p.T4, p.T5, p.T6} {
		buf = append(buf, point.Bytes()...)
	}
	for _, s := range []*ristretto.Scalar{p.TX, p.TXBlinding, p.EBlinding} {
		buf = append(buf, s.Bytes()...)
	}
	return append(buf, p.IPPProof.ToBytes()...)
}

func ProofFromBytes(data []byte) (*R1CSProof, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("ProofFromBytes %w: empty", ErrDecode)
	}
	switch data[0] {
	case ONE_PHASE_COMMITMENTS:
	case TWO_PHASE_COMMITMENTS:
		return nil, fmt.Errorf("ProofFromBytes %w: two phase proofs unsupported", ErrDecode)
	default:
		return nil, fmt.Errorf("ProofFromBytes %w: version %d", ErrDecode, data[0])
	}
	slice := data[1:]
	if len(slice)%32 != 0 {
		return nil, fmt.Errorf("ProofFromBytes %w: length %d", ErrDecode, len(data))
	}
	if len(slice)/32 < R1CS_PROOF_POINTS+R1CS_PROOF_SCALARS+2 {
		return nil, fmt.Errorf("ProofFromBytes %w: elements %d", ErrDecode, len(slice)/32)
	}

	points := make([]*ristretto.Point, R1CS_PROOF_POINTS)
	for i := range points {
		p, err := pointFromBytes(slice[i*32 : (i+1)*32])
		if err != nil {
			return nil, err
		}
		points[i] = p
	}
	slice = slice[R1CS_PROOF_POINTS*32:]

	scalars := make([]*ristretto.Scalar, R1CS_PROOF_SCALARS)
	for i := range scalars {
		s, err := scalarFromCanonicalBytes(slice[i*32 : (i+1)*32])
		if err != nil {
			return nil, err
		}
		scalars[i] = s
	}
	slice = slice[R1CS_PROOF_SCALARS*32:]

	ipp, err := InnerProductProofFromBytes(slice)
	if err != nil {
		return nil, err
	}

	return &R1CSProof{
		AI1:        points[0],
		AO1:        points[1],
		S1:         points[2],
		T1:         points[3],
		T3:         points[4],
		T4:         points[5],
		T5:         points[6],
		T6:         points[7],
		TX:         scalars[0],
		TXBlinding: scalars[1],
		EBlinding:  scalars[2],
		IPPProof:   ipp,
	}, nil
}
