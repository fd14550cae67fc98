package api

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/bwesterb/go-ristretto"
)

// Verifier replays the prover's constraint system over public commitments
// and checks an R1CS proof against it.
type Verifier struct {
	params     *PublicParameters
	transcript *Transcript
	rng        io.Reader

	constraints []*LinearCombination
	V           []*ristretto.Point
	numVars     int

	finalized bool
}

type VerifierOption func(*Verifier)

// WithVerifierRNG replaces crypto/rand as the source of the batching weight.
func WithVerifierRNG(rng io.Reader) VerifierOption {
	return func(v *Verifier) {
		v.rng = rng
	}
}

func NewVerifier(params *PublicParameters, transcript *Transcript, opts ...VerifierOption) *Verifier {
	v := &Verifier{
		params:     params,
		transcript: transcript,
		rng:        rand.Reader,
	}
	for _, opt := range opts {
		opt(v)
	}

	R1CSDomainSep(transcript)
	appendBytes([]byte("params"), params.Fingerprint(), transcript)
	return v
}

func (v *Verifier) Transcript() *Transcript {
	return v.transcript
}

func (v *Verifier) Commit(commitment *Commitment) Variable {
	i := len(v.V)
	v.V = append(v.V, commitment.Point)
	AppendPoint("V", commitment.Point, v.transcript)
	return Variable{Kind: VariableCommitted, Index: i}
}

func (v *Verifier) Multiply(left, right *LinearCombination) (Variable, Variable, Variable) {
	lVar, rVar, oVar := v.pushMultiplier()
	v.Constrain(left.Sub(lVar.LC()))
	v.Constrain(right.Sub(rVar.LC()))
	return lVar, rVar, oVar
}

// Allocate ignores the assignment, the verifier never knows it.
func (v *Verifier) Allocate(_, _ *ristretto.Scalar) (Variable, Variable, Variable, error) {
	l, r, o := v.pushMultiplier()
	return l, r, o, nil
}

func (v *Verifier) Constrain(lc *LinearCombination) {
	v.constraints = append(v.constraints, lc)
}

func (v *Verifier) pushMultiplier() (Variable, Variable, Variable) {
	i := v.numVars
	v.numVars++
	return Variable{Kind: VariableMultiplierLeft, Index: i},
		Variable{Kind: VariableMultiplierRight, Index: i},
		Variable{Kind: VariableMultiplierOutput, Index: i}
}

// Verify consumes the session. Every rejection is reported as
// ErrVerification.
func (v *Verifier) Verify(proof *R1CSProof) error {
	if v.finalized {
		return fmt.Errorf("Verify %w", ErrSessionFinalized)
	}
	v.finalized = true
	defer v.transcript.Finalize()

	if !proof.complete() {
		return fmt.Errorf("Verify %w: incomplete proof", ErrVerification)
	}
	if err := v.verify(proof); err != nil {
		return fmt.Errorf("Verify %w: %w", ErrVerification, err)
	}
	return nil
}

func (v *Verifier) verify(proof *R1CSProof) error {
	n1 := v.numVars
	n := n1
	paddedN := nextPowerOfTwo(n)
	pad := paddedN - n
	bp := v.params.bp
	if bp.GensCapacity < int64(paddedN) {
		return fmt.Errorf("%w: GensCapacity %d, n %d", ErrInvalidGeneratorsLength, bp.GensCapacity, paddedN)
	}
	if bp.PartyCapacity < 1 {
		return fmt.Errorf("%w: PartyCapacity %d", ErrInvalidGeneratorsLength, bp.PartyCapacity)
	}
	pc := v.params.pc
	gens := bp.Share(0)

	appendInt64("m", uint64(len(v.V)), v.transcript)

	if err := ValidateAndAppendPoint("A_I1", proof.AI1, v.transcript); err != nil {
		return err
	}
	if err := ValidateAndAppendPoint("A_O1", proof.AO1, v.transcript); err != nil {
		return err
	}
	if err := ValidateAndAppendPoint("S1", proof.S1, v.transcript); err != nil {
		return err
	}

	R1CS1PhaseDomainSep(v.transcript)

	y := ChallengeScalar("y", v.transcript)
	z := ChallengeScalar("z", v.transcript)

	for _, t := range []struct {
		label string
		point *ristretto.Point
	}{
		{"T_1", proof.T1},
		{"T_3", proof.T3},
		{"T_4", proof.T4},
		{"T_5", proof.T5},
		{"T_6", proof.T6},
	} {
		if err := ValidateAndAppendPoint(t.label, t.point, v.transcript); err != nil {
			return err
		}
	}

	u := ChallengeScalar("u", v.transcript)
	x := ChallengeScalar("x", v.transcript)

	AppendScalar("t_x", proof.TX, v.transcript)
	AppendScalar("t_x_blinding", proof.TXBlinding, v.transcript)
	AppendScalar("e_blinding", proof.EBlinding, v.transcript)

	w := ChallengeScalar("w", v.transcript)

	wL, wR, wO, wV, wc, err := flattenConstraints(v.constraints, z, n, len(v.V))
	if err != nil {
		return err
	}

	uSq, uInvSq, s, err := proof.IPPProof.VerificationScalars(paddedN, v.transcript)
	if err != nil {
		return err
	}

	a := proof.IPPProof.A
	b := proof.IPPProof.B

	var yInv ristretto.Scalar
	yInv.Inverse(y)
	yInvVec := powers(&yInv, paddedN)

	ynegWR := make([]*ristretto.Scalar, 0, paddedN)
	for i := 0; i < n; i++ {
		var r ristretto.Scalar
		ynegWR = append(ynegWR, r.Mul(wR[i], yInvVec[i]))
	}
	delta := innerProduct(ynegWR, wL)
	for i := 0; i < pad; i++ {
		ynegWR = append(ynegWR, zeroScalar())
		wL = append(wL, zeroScalar())
		wO = append(wO, zeroScalar())
	}

	gScalars := make([]*ristretto.Scalar, paddedN)
	hScalars := make([]*ristretto.Scalar, paddedN)
	for i := 0; i < paddedN; i++ {
		uOr1 := oneScalar()
		if i >= n1 {
			uOr1 = cloneScalar(u)
		}

		// u_or_1 * (x * y^-i * wR_i - a * s_i)
		var g, as ristretto.Scalar
		g.Mul(x, ynegWR[i])
		g.Sub(&g, as.Mul(a, s[i]))
		gScalars[i] = g.Mul(uOr1, &g)

		// u_or_1 * (y^-i * (x * wL_i + wO_i - b / s_i) - 1)
		var h, bs ristretto.Scalar
		h.Mul(x, wL[i])
		h.Add(&h, wO[i])
		h.Sub(&h, bs.Mul(b, s[paddedN-1-i]))
		h.Mul(yInvVec[i], &h)
		h.Sub(&h, oneScalar())
		hScalars[i] = h.Mul(uOr1, &h)
	}

	r, err := randomScalar(v.rng)
	if err != nil {
		return err
	}

	var xx, rxx, xxx ristretto.Scalar
	xx.Mul(x, x)
	rxx.Mul(r, &xx)
	xxx.Mul(x, &xx)

	// T_1, T_3 .. T_6 are weighted by r * x^k.
	tScalars := make([]*ristretto.Scalar, 0, 5)
	for _, k := range []uint64{1, 3, 4, 5, 6} {
		var t ristretto.Scalar
		tScalars = append(tScalars, t.Mul(r, ScalarExpVartime(x, k)))
	}

	// w * (t_x - a * b) + r * (x^2 * (wc + delta) - t_x)
	var bScalar, ab, rhs ristretto.Scalar
	bScalar.Sub(proof.TX, ab.Mul(a, b))
	bScalar.Mul(w, &bScalar)
	rhs.Add(wc, delta)
	rhs.Mul(&xx, &rhs)
	rhs.Sub(&rhs, proof.TX)
	rhs.Mul(r, &rhs)
	bScalar.Add(&bScalar, &rhs)

	// -e_blinding - r * t_x_blinding
	var bBlindingScalar, rtx ristretto.Scalar
	bBlindingScalar.Sub(negScalar(proof.EBlinding), rtx.Mul(r, proof.TXBlinding))

	scalars := []*ristretto.Scalar{x, &xx, &xxx}
	points := []*ristretto.Point{proof.AI1, proof.AO1, proof.S1}
	for i := range wV {
		var s ristretto.Scalar
		scalars = append(scalars, s.Mul(wV[i], &rxx))
	}
	points = append(points, v.V...)
	scalars = append(scalars, tScalars...)
	points = append(points, proof.T1, proof.T3, proof.T4, proof.T5, proof.T6)
	scalars = append(scalars, &bScalar, &bBlindingScalar)
	points = append(points, pc.B, pc.BBlinding)
	scalars = append(scalars, gScalars...)
	points = append(points, gens.G(paddedN)...)
	scalars = append(scalars, hScalars...)
	points = append(points, gens.H(paddedN)...)
	scalars = append(scalars, uSq...)
	points = append(points, proof.IPPProof.LVec...)
	scalars = append(scalars, uInvSq...)
	points = append(points, proof.IPPProof.RVec...)

	if !isIdentity(multiscalarMul(scalars, points)) {
		return fmt.Errorf("mega check failed")
	}
	return nil
}
