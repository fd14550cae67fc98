package api

import (
	"errors"
	"testing"

	"github.com/bwesterb/go-ristretto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// productGadget constrains a * b * c * d == product.
func productGadget(cs ConstraintSystem, vars []Variable, product uint64) {
	_, _, ab := cs.Multiply(vars[0].LC(), vars[1].LC())
	_, _, cd := cs.Multiply(vars[2].LC(), vars[3].LC())
	_, _, abcd := cs.Multiply(ab.LC(), cd.LC())
	cs.Constrain(abcd.LC().Sub(Constant(uint64ToScalar(product))))
}

func proveProduct(t *testing.T, params *PublicParameters, values []uint64, product uint64, opts ...ProverOption) ([]*Commitment, *R1CSProof, *Transcript, error) {
	rng := testRNG("product")
	transcript := NewTranscript("product")
	prover := NewProver(params, transcript, append([]ProverOption{WithRNG(rng)}, opts...)...)

	var commitments []*Commitment
	var vars []Variable
	for _, v := range values {
		blinding, err := randomScalar(rng)
		require.Nil(t, err)
		c, variable := prover.Commit(uint64ToScalar(v), blinding)
		commitments = append(commitments, c)
		vars = append(vars, variable)
	}
	productGadget(prover, vars, product)
	proof, err := prover.Prove()
	return commitments, proof, transcript, err
}

func verifyProduct(params *PublicParameters, commitments []*Commitment, product uint64, proof *R1CSProof) (*Transcript, error) {
	transcript := NewTranscript("product")
	verifier := NewVerifier(params, transcript, WithVerifierRNG(testRNG("verifier")))
	var vars []Variable
	for _, c := range commitments {
		vars = append(vars, verifier.Commit(c))
	}
	productGadget(verifier, vars, product)
	return transcript, verifier.Verify(proof)
}

func TestR1CSProductGadget(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	params := DefaultPublicParameters()
	commitments, proof, proverTranscript, err := proveProduct(t, params, []uint64{2, 3, 5, 7}, 210)
	require.Nil(err)
	// Three multipliers pad to four.
	assert.Len(proof.IPPProof.LVec, 2)

	verifierTranscript, err := verifyProduct(params, commitments, 210, proof)
	assert.Nil(err)
	assert.Equal(proverTranscript.Events(), verifierTranscript.Events())
	assert.Equal(TranscriptFinalized, proverTranscript.State())
	assert.Equal(TranscriptFinalized, verifierTranscript.State())

	_, err = verifyProduct(params, commitments, 211, proof)
	assert.True(errors.Is(err, ErrVerification))

	swapped := []*Commitment{commitments[1], commitments[0], commitments[3], commitments[2]}
	_, err = verifyProduct(params, swapped, 210, proof)
	assert.True(errors.Is(err, ErrVerification))

	other := NewPublicParameters(DefaultPedersenGens(), 32, 1)
	_, err = verifyProduct(other, commitments, 210, proof)
	assert.True(errors.Is(err, ErrVerification))
}

func TestR1CSUnsatisfied(t *testing.T) {
	assert := assert.New(t)

	params := DefaultPublicParameters()
	_, proof, _, err := proveProduct(t, params, []uint64{2, 3, 5, 7}, 211)
	assert.Nil(proof)
	assert.True(errors.Is(err, ErrUnsatisfiedConstraint))

	commitments, proof, _, err := proveProduct(t, params, []uint64{2, 3, 5, 7}, 211, SkipSatisfactionCheck())
	assert.Nil(err)
	_, err = verifyProduct(params, commitments, 211, proof)
	assert.True(errors.Is(err, ErrVerification))
}

func TestR1CSAllocate(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	params := DefaultPublicParameters()
	gadget := func(cs ConstraintSystem, v Variable, l, r *ristretto.Scalar) error {
		left, right, out, err := cs.Allocate(l, r)
		if err != nil {
			return err
		}
		cs.Constrain(left.LC().Sub(Constant(uint64ToScalar(6))))
		cs.Constrain(right.LC().Sub(v.LC()))
		cs.Constrain(out.LC().Sub(Constant(uint64ToScalar(42))))
		return nil
	}

	rng := testRNG("allocate")
	prover := NewProver(params, NewTranscript("allocate"), WithRNG(rng))
	blinding, err := randomScalar(rng)
	require.Nil(err)
	c, v := prover.Commit(uint64ToScalar(7), blinding)
	require.Nil(gadget(prover, v, uint64ToScalar(6), uint64ToScalar(7)))
	proof, err := prover.Prove()
	require.Nil(err)

	verifier := NewVerifier(params, NewTranscript("allocate"))
	require.Nil(gadget(verifier, verifier.Commit(c), nil, nil))
	assert.Nil(verifier.Verify(proof))

	_, _, _, err = NewProver(params, NewTranscript("allocate")).Allocate(nil, uint64ToScalar(1))
	assert.True(errors.Is(err, ErrMissingAssignment))
}

func TestR1CSSessionErrors(t *testing.T) {
	assert := assert.New(t)

	params := DefaultPublicParameters()
	prover := NewProver(params, NewTranscript("example"), WithRNG(testRNG("session")))
	_, v := prover.Commit(uint64ToScalar(1), uint64ToScalar(5))
	assert.Nil(DefaultConstraint().Apply(prover, []Variable{v}))
	_, err := prover.Prove()
	assert.Nil(err)
	_, err = prover.Prove()
	assert.True(errors.Is(err, ErrSessionFinalized))

	prover = NewProver(params, NewTranscript("example"))
	prover.Constrain(Variable{Kind: VariableCommitted, Index: 3}.LC())
	_, err = prover.Prove()
	assert.True(errors.Is(err, ErrInvalidVariable))

	// More multipliers than generators.
	small := NewPublicParameters(DefaultPedersenGens(), 2, 1)
	prover = NewProver(small, NewTranscript("capacity"))
	for i := 0; i < 3; i++ {
		_, _, _, err := prover.Allocate(oneScalar(), oneScalar())
		assert.Nil(err)
	}
	_, err = prover.Prove()
	assert.True(errors.Is(err, ErrInvalidGeneratorsLength))

	_, err = prover.Prove()
	assert.True(errors.Is(err, ErrSessionFinalized))

	err = DefaultConstraint().Apply(prover, nil)
	assert.True(errors.Is(err, ErrInvalidVariable))
}

func TestLinearCombination(t *testing.T) {
	assert := assert.New(t)

	a := Variable{Kind: VariableCommitted, Index: 0}
	lc := a.LC().Mul(uint64ToScalar(3))
	sum := lc.Add(Constant(uint64ToScalar(1)))
	assert.Len(lc.Terms, 1)
	assert.Len(sum.Terms, 2)
	assert.True(lc.Terms[0].Coefficient.Equals(uint64ToScalar(3)))

	neg := sum.Neg()
	assert.True(neg.Terms[1].Coefficient.Equals(negScalar(oneScalar())))
	assert.True(sum.Terms[1].Coefficient.Equals(oneScalar()))

	assert.Equal("Committed(0)", a.String())
	assert.Equal("One", One().String())
	assert.Equal("MultiplierOutput(2)", Variable{Kind: VariableMultiplierOutput, Index: 2}.String())
}

func TestVerifierCapacity(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	params := DefaultPublicParameters()
	commitments, proof, _, err := proveProduct(t, params, []uint64{2, 3, 5, 7}, 210)
	require.Nil(err)

	small := NewPublicParameters(DefaultPedersenGens(), 2, 1)
	_, err = verifyProduct(small, commitments, 210, proof)
	assert.True(errors.Is(err, ErrVerification))
	assert.True(errors.Is(err, ErrInvalidGeneratorsLength))
}

func TestVerifierIncompleteProof(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	params := DefaultPublicParameters()
	_, proof, err := proveValue(params, DefaultConstraint(), 1, testRNG("incomplete"))
	require.Nil(err)

	withoutIPP := *proof
	withoutIPP.IPPProof = nil
	withoutT := *proof
	withoutT.T4 = nil
	withoutScalar := *proof
	withoutScalar.EBlinding = nil
	ipp := *proof.IPPProof
	ipp.B = nil
	withoutB := *proof
	withoutB.IPPProof = &ipp

	for _, p := range []*R1CSProof{nil, {}, &withoutIPP, &withoutT, &withoutScalar, &withoutB} {
		verifier := NewVerifier(params, NewTranscript(DEFAULT_CONSTRAINT_DOMAIN))
		v := verifier.Commit(&Commitment{Point: params.PedersenGens().B})
		require.Nil(DefaultConstraint().Apply(verifier, []Variable{v}))
		assert.NotPanics(func() {
			assert.True(errors.Is(verifier.Verify(p), ErrVerification))
		})
	}
}
