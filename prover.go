package api

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/bwesterb/go-ristretto"
)

// Prover builds an R1CS proof over secret committed values. It is a
// single-use session: after Prove it refuses further work.
type Prover struct {
	params     *PublicParameters
	transcript *Transcript
	rng        io.Reader

	skipSatisfactionCheck bool

	constraints []*LinearCombination
	aL, aR, aO  []*ristretto.Scalar
	v           []*ristretto.Scalar
	vBlinding   []*ristretto.Scalar

	finalized bool
}

type ProverOption func(*Prover)

// WithRNG replaces crypto/rand as the source of the proof blindings.
func WithRNG(rng io.Reader) ProverOption {
	return func(p *Prover) {
		p.rng = rng
	}
}

// SkipSatisfactionCheck lets Prove emit a proof for an assignment that does
// not satisfy the constraints. Such a proof never verifies.
func SkipSatisfactionCheck() ProverOption {
	return func(p *Prover) {
		p.skipSatisfactionCheck = true
	}
}

func NewProver(params *PublicParameters, transcript *Transcript, opts ...ProverOption) *Prover {
	p := &Prover{
		params:     params,
		transcript: transcript,
		rng:        rand.Reader,
	}
	for _, opt := range opts {
		opt(p)
	}

	R1CSDomainSep(transcript)
	appendBytes([]byte("params"), params.Fingerprint(), transcript)
	return p
}

func (p *Prover) Transcript() *Transcript {
	return p.transcript
}

// Commit binds a secret value into the constraint system and returns its
// public commitment.
func (p *Prover) Commit(v, vBlinding *ristretto.Scalar) (*Commitment, Variable) {
	i := len(p.v)
	p.v = append(p.v, cloneScalar(v))
	p.vBlinding = append(p.vBlinding, cloneScalar(vBlinding))

	commitment, _ := Commit(v, vBlinding, p.params.pc)
	AppendPoint("V", commitment.Point, p.transcript)

	return commitment, Variable{Kind: VariableCommitted, Index: i}
}

func (p *Prover) Multiply(left, right *LinearCombination) (Variable, Variable, Variable) {
	l := p.eval(left)
	r := p.eval(right)
	var o ristretto.Scalar
	o.Mul(l, r)

	lVar, rVar, oVar := p.pushMultiplier(l, r, &o)

	p.Constrain(left.Sub(lVar.LC()))
	p.Constrain(right.Sub(rVar.LC()))
	return lVar, rVar, oVar
}

// Allocate adds a multiplier gate with an explicit assignment and no
// constraints on its inputs.
func (p *Prover) Allocate(left, right *ristretto.Scalar) (Variable, Variable, Variable, error) {
	if left == nil || right == nil {
		return Variable{}, Variable{}, Variable{}, fmt.Errorf("Prover Allocate %w", ErrMissingAssignment)
	}
	var o ristretto.Scalar
	o.Mul(left, right)
	l, r, out := p.pushMultiplier(left, right, &o)
	return l, r, out, nil
}

func (p *Prover) Constrain(lc *LinearCombination) {
	p.constraints = append(p.constraints, lc)
}

func (p *Prover) pushMultiplier(l, r, o *ristretto.Scalar) (Variable, Variable, Variable) {
	i := len(p.aL)
	p.aL = append(p.aL, cloneScalar(l))
	p.aR = append(p.aR, cloneScalar(r))
	p.aO = append(p.aO, cloneScalar(o))
	return Variable{Kind: VariableMultiplierLeft, Index: i},
		Variable{Kind: VariableMultiplierRight, Index: i},
		Variable{Kind: VariableMultiplierOutput, Index: i}
}

func (p *Prover) eval(lc *LinearCombination) *ristretto.Scalar {
	sum := zeroScalar()
	for _, term := range lc.Terms {
		var value *ristretto.Scalar
		i := term.Variable.Index
		switch term.Variable.Kind {
		case VariableCommitted:
			value = p.v[i]
		case VariableMultiplierLeft:
			value = p.aL[i]
		case VariableMultiplierRight:
			value = p.aR[i]
		case VariableMultiplierOutput:
			value = p.aO[i]
		case VariableOne:
			value = oneScalar()
		default:
			panic(fmt.Sprintf("Prover eval unknown variable %s", term.Variable))
		}
		var t ristretto.Scalar
		sum.Add(sum, t.Mul(term.Coefficient, value))
	}
	return sum
}

func (p *Prover) checkSatisfied() error {
	for i, lc := range p.constraints {
		if err := p.checkVariables(lc); err != nil {
			return err
		}
		if !p.eval(lc).Equals(zeroScalar()) {
			return fmt.Errorf("Prove %w: constraint %d", ErrUnsatisfiedConstraint, i)
		}
	}
	return nil
}

func (p *Prover) checkVariables(lc *LinearCombination) error {
	for _, term := range lc.Terms {
		i := term.Variable.Index
		limit := len(p.aL)
		switch term.Variable.Kind {
		case VariableCommitted:
			limit = len(p.v)
		case VariableOne:
			continue
		}
		if i < 0 || i >= limit {
			return fmt.Errorf("Prove %w: %s", ErrInvalidVariable, term.Variable)
		}
	}
	return nil
}

// Prove consumes the session and produces the proof.
func (p *Prover) Prove() (*R1CSProof, error) {
	if p.finalized {
		return nil, fmt.Errorf("Prove %w", ErrSessionFinalized)
	}
	p.finalized = true
	defer p.transcript.Finalize()

	if p.skipSatisfactionCheck {
		for _, lc := range p.constraints {
			if err := p.checkVariables(lc); err != nil {
				return nil, err
			}
		}
	} else if err := p.checkSatisfied(); err != nil {
		return nil, err
	}

	n1 := len(p.aL)
	n := n1
	paddedN := nextPowerOfTwo(n)
	bp := p.params.bp
	if bp.GensCapacity < int64(paddedN) {
		return nil, fmt.Errorf("Prove %w: GensCapacity %d, n %d", ErrInvalidGeneratorsLength, bp.GensCapacity, paddedN)
	}
	if bp.PartyCapacity < 1 {
		return nil, fmt.Errorf("Prove %w: PartyCapacity %d", ErrInvalidGeneratorsLength, bp.PartyCapacity)
	}
	pc := p.params.pc
	gens := bp.Share(0)

	appendInt64("m", uint64(len(p.v)), p.transcript)

	blindings, err := randomScalars(p.rng, 3)
	if err != nil {
		return nil, err
	}
	iBlinding, oBlinding, sBlinding := blindings[0], blindings[1], blindings[2]
	sL, err := randomScalars(p.rng, n1)
	if err != nil {
		return nil, err
	}
	sR, err := randomScalars(p.rng, n1)
	if err != nil {
		return nil, err
	}

	G := gens.G(n1)
	H := gens.H(n1)

	// A_I = <a_L, G> + <a_R, H> + i_blinding * B_blinding
	s1 := append([]*ristretto.Scalar{iBlinding}, p.aL...)
	s1 = append(s1, p.aR...)
	g1 := append([]*ristretto.Point{pc.BBlinding}, G...)
	g1 = append(g1, H...)
	AI1 := multiscalarMul(s1, g1)

	// A_O = <a_O, G> + o_blinding * B_blinding
	s2 := append([]*ristretto.Scalar{oBlinding}, p.aO...)
	g2 := append([]*ristretto.Point{pc.BBlinding}, G...)
	AO1 := multiscalarMul(s2, g2)

	// S = <s_L, G> + <s_R, H> + s_blinding * B_blinding
	s3 := append([]*ristretto.Scalar{sBlinding}, sL...)
	s3 = append(s3, sR...)
	S1 := multiscalarMul(s3, g1)

	AppendPoint("A_I1", AI1, p.transcript)
	AppendPoint("A_O1", AO1, p.transcript)
	AppendPoint("S1", S1, p.transcript)

	R1CS1PhaseDomainSep(p.transcript)

	y := ChallengeScalar("y", p.transcript)
	z := ChallengeScalar("z", p.transcript)

	wL, wR, wO, wV, _, err := flattenConstraints(p.constraints, z, n, len(p.v))
	if err != nil {
		return nil, err
	}

	lPoly := ZeroVecPoly3(n)
	rPoly := ZeroVecPoly3(n)

	var yInv ristretto.Scalar
	yInv.Inverse(y)
	expYInv := powers(&yInv, paddedN)

	expY := oneScalar()
	for i := 0; i < n; i++ {
		var t1, t2 ristretto.Scalar
		// l_poly.1 = a_L + y^-n * w_R
		lPoly.T1[i].Add(p.aL[i], t1.Mul(expYInv[i], wR[i]))
		// l_poly.2 = a_O
		lPoly.T2[i] = cloneScalar(p.aO[i])
		// l_poly.3 = s_L
		lPoly.T3[i] = sL[i]
		// r_poly.0 = w_O - y^n
		rPoly.T0[i].Sub(wO[i], expY)
		// r_poly.1 = y^n * a_R + w_L
		rPoly.T1[i].Add(t2.Mul(expY, p.aR[i]), wL[i])
		// r_poly.3 = y^n * s_R
		rPoly.T3[i].Mul(expY, sR[i])

		expY.Mul(expY, y)
	}

	tPoly := SpecialInnerProduct(lPoly, rPoly)

	tBlindings, err := randomScalars(p.rng, 5)
	if err != nil {
		return nil, err
	}
	t1Blinding, t3Blinding, t4Blinding, t5Blinding, t6Blinding := tBlindings[0], tBlindings[1], tBlindings[2], tBlindings[3], tBlindings[4]

	T1 := pc.Commit(tPoly.T1, t1Blinding)
	T3 := pc.Commit(tPoly.T3, t3Blinding)
	T4 := pc.Commit(tPoly.T4, t4Blinding)
	T5 := pc.Commit(tPoly.T5, t5Blinding)
	T6 := pc.Commit(tPoly.T6, t6Blinding)

	AppendPoint("T_1", T1, p.transcript)
	AppendPoint("T_3", T3, p.transcript)
	AppendPoint("T_4", T4, p.transcript)
	AppendPoint("T_5", T5, p.transcript)
	AppendPoint("T_6", T6, p.transcript)

	u := ChallengeScalar("u", p.transcript)
	x := ChallengeScalar("x", p.transcript)

	// t_2 carries the commitments: <w_V, v_blinding>
	tBlindingPoly := &Poly6{
		T1: t1Blinding,
		T2: innerProduct(wV, p.vBlinding),
		T3: t3Blinding,
		T4: t4Blinding,
		T5: t5Blinding,
		T6: t6Blinding,
	}

	tX := tPoly.Eval(x)
	tXBlinding := tBlindingPoly.Eval(x)

	lVec := lPoly.Eval(x)
	rVec := rPoly.Eval(x)
	for i := n; i < paddedN; i++ {
		lVec = append(lVec, zeroScalar())
		rVec = append(rVec, negScalar(expY))
		expY.Mul(expY, y)
	}

	// e_blinding = x * (i_blinding + x * (o_blinding + x * s_blinding))
	var eBlinding ristretto.Scalar
	eBlinding.Mul(x, sBlinding)
	eBlinding.Add(oBlinding, &eBlinding)
	eBlinding.Mul(x, &eBlinding)
	eBlinding.Add(iBlinding, &eBlinding)
	eBlinding.Mul(x, &eBlinding)

	AppendScalar("t_x", tX, p.transcript)
	AppendScalar("t_x_blinding", tXBlinding, p.transcript)
	AppendScalar("e_blinding", &eBlinding, p.transcript)

	w := ChallengeScalar("w", p.transcript)
	var Q ristretto.Point
	Q.ScalarMult(pc.B, w)

	// Generators past the first phase are scaled by u.
	gFactors := make([]*ristretto.Scalar, paddedN)
	hFactors := make([]*ristretto.Scalar, paddedN)
	for i := 0; i < paddedN; i++ {
		if i < n1 {
			gFactors[i] = oneScalar()
		} else {
			gFactors[i] = cloneScalar(u)
		}
		var h ristretto.Scalar
		hFactors[i] = h.Mul(expYInv[i], gFactors[i])
	}

	ippProof := CreateInnerProductProof(p.transcript, &Q, gFactors, hFactors, gens.G(paddedN), gens.H(paddedN), lVec, rVec)

	return &R1CSProof{
		AI1:        AI1,
		AO1:        AO1,
		S1:         S1,
		T1:         T1,
		T3:         T3,
		T4:         T4,
		T5:         T5,
		T6:         T6,
		TX:         tX,
		TXBlinding: tXBlinding,
		EBlinding:  &eBlinding,
		IPPProof:   ippProof,
	}, nil
}
