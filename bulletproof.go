package api

import (
	"crypto/rand"
	"fmt"
	"io"
)

const (
	DEFAULT_CONSTRAINT_DOMAIN        = "example"
	DEFAULT_CONSTRAINT_TARGET uint64 = 1
)

// CreateProof commits to value and proves it satisfies the default
// constraint. It returns the encoded commitment and proof.
func CreateProof(value uint64) ([]byte, []byte, error) {
	return CreateProofWithSpec(DefaultPublicParameters(), DefaultConstraint(), value, rand.Reader)
}

// VerifyProof reports whether proof shows that com opens to a value
// satisfying the default constraint. Malformed input is simply false.
func VerifyProof(com, proof []byte) bool {
	return VerifyProofWithSpec(DefaultPublicParameters(), DefaultConstraint(), com, proof) == nil
}

func CreateProofWithSpec(params *PublicParameters, spec *ConstraintSpec, value uint64, rng io.Reader) ([]byte, []byte, error) {
	commitment, proof, err := proveValue(params, spec, value, rng)
	if err != nil {
		return nil, nil, err
	}
	return commitment.Bytes(), proof.ToBytes(), nil
}

func proveValue(params *PublicParameters, spec *ConstraintSpec, value uint64, rng io.Reader, opts ...ProverOption) (*Commitment, *R1CSProof, error) {
	if spec.Arity() > 1 {
		return nil, nil, fmt.Errorf("proveValue %w: arity %d for a single value", ErrInvalidVariable, spec.Arity())
	}
	blinding, err := randomScalar(rng)
	if err != nil {
		return nil, nil, err
	}

	prover := NewProver(params, NewTranscript(spec.Domain), append([]ProverOption{WithRNG(rng)}, opts...)...)
	commitment, v := prover.Commit(uint64ToScalar(value), blinding)
	if err := spec.Apply(prover, []Variable{v}); err != nil {
		return nil, nil, err
	}
	proof, err := prover.Prove()
	if err != nil {
		return nil, nil, err
	}
	return commitment, proof, nil
}

// VerifyProofWithSpec decodes both artifacts and verifies the proof. Every
// failure, decoding included, is reported as ErrVerification.
func VerifyProofWithSpec(params *PublicParameters, spec *ConstraintSpec, com, proof []byte) error {
	commitment, err := CommitmentFromBytes(com)
	if err != nil {
		return fmt.Errorf("VerifyProof %w: %v", ErrVerification, err)
	}
	p, err := ProofFromBytes(proof)
	if err != nil {
		return fmt.Errorf("VerifyProof %w: %v", ErrVerification, err)
	}
	return verifyValue(params, spec, commitment, p)
}

func verifyValue(params *PublicParameters, spec *ConstraintSpec, commitment *Commitment, proof *R1CSProof) error {
	verifier := NewVerifier(params, NewTranscript(spec.Domain))
	v := verifier.Commit(commitment)
	if err := spec.Apply(verifier, []Variable{v}); err != nil {
		return fmt.Errorf("VerifyProof %w: %v", ErrVerification, err)
	}
	return verifier.Verify(proof)
}
